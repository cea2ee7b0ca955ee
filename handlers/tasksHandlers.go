package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ThensiB/Task-Recommendation/analytics"
	"github.com/ThensiB/Task-Recommendation/models"
	"github.com/ThensiB/Task-Recommendation/storage"
	"github.com/ThensiB/Task-Recommendation/utilities"
)

// ListTasksHandler lista todas as tarefas do usuário autenticado
func ListTasksHandler(w http.ResponseWriter, r *http.Request) {
	username := currentUsername(r)

	tasks, err := store.ListTasks(r.Context(), username)
	if err != nil {
		utilities.LogError(err, "Erro ao listar tarefas")
		http.Error(w, "Erro ao listar tarefas", http.StatusInternalServerError)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	utilities.LogDebug("Tarefas listadas para %s - total: %d", username, len(tasks))
	writeJSON(w, http.StatusOK, tasks)
}

// CreateTaskHandler cria uma tarefa nova para o usuário autenticado
func CreateTaskHandler(w http.ResponseWriter, r *http.Request) {
	username := currentUsername(r)

	var task models.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		utilities.LogError(err, "Erro ao decodificar JSON da tarefa")
		http.Error(w, "Requisição inválida", http.StatusBadRequest)
		return
	}

	if task.Title == "" {
		http.Error(w, "Título é obrigatório", http.StatusBadRequest)
		return
	}
	if task.Priority != "" && !models.IsValidPriority(task.Priority) {
		http.Error(w, "Prioridade inválida", http.StatusBadRequest)
		return
	}
	if task.Status != "" && !models.IsValidStatus(task.Status) {
		http.Error(w, "Status inválido", http.StatusBadRequest)
		return
	}

	saved, err := store.SaveTask(r.Context(), username, task)
	if err != nil {
		utilities.LogError(err, "Erro ao salvar tarefa")
		http.Error(w, "Erro ao salvar tarefa", http.StatusInternalServerError)
		return
	}

	utilities.LogInfo("Tarefa criada com sucesso: %s (ID: %s)", saved.Title, saved.TaskID)
	writeJSON(w, http.StatusCreated, saved)
}

// CompleteTaskHandler marca uma tarefa do usuário como concluída
func CompleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	username := currentUsername(r)
	taskID := mux.Vars(r)["task_id"]

	// A verificação de posse usa a lista do próprio usuário; tarefa de outro
	// dono responde como inexistente.
	tasks, err := store.ListTasks(r.Context(), username)
	if err != nil {
		utilities.LogError(err, "Erro ao verificar posse da tarefa")
		http.Error(w, "Erro ao atualizar tarefa", http.StatusInternalServerError)
		return
	}
	owned := false
	for _, t := range tasks {
		if t.TaskID == taskID {
			owned = true
			break
		}
	}
	if !owned {
		http.Error(w, "Tarefa não encontrada", http.StatusNotFound)
		return
	}

	if _, err := store.UpdateTaskStatus(r.Context(), taskID, models.StatusCompleted); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			http.Error(w, "Tarefa não encontrada", http.StatusNotFound)
		case errors.Is(err, storage.ErrStatusTransition):
			http.Error(w, "Transição de status inválida", http.StatusConflict)
		default:
			utilities.LogError(err, "Erro ao atualizar status da tarefa")
			http.Error(w, "Erro ao atualizar tarefa", http.StatusInternalServerError)
		}
		return
	}

	utilities.LogInfo("Tarefa concluída: %s (%s)", taskID, username)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Task marked as completed",
	})
}

// UpdateTaskHandler aplica uma atualização parcial em uma tarefa do usuário
func UpdateTaskHandler(w http.ResponseWriter, r *http.Request) {
	username := currentUsername(r)
	taskID := mux.Vars(r)["task_id"]

	var update models.TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		utilities.LogError(err, "Erro ao decodificar JSON de atualização")
		http.Error(w, "Requisição inválida", http.StatusBadRequest)
		return
	}

	if update.Priority != nil && !models.IsValidPriority(*update.Priority) {
		http.Error(w, "Prioridade inválida", http.StatusBadRequest)
		return
	}
	if update.Status != nil && !models.IsValidStatus(*update.Status) {
		http.Error(w, "Status inválido", http.StatusBadRequest)
		return
	}

	ok, err := store.UpdateTask(r.Context(), username, taskID, update)
	if err != nil {
		utilities.LogError(err, "Erro ao atualizar tarefa")
		http.Error(w, "Erro ao atualizar tarefa", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "Tarefa não encontrada", http.StatusNotFound)
		return
	}

	utilities.LogInfo("Tarefa atualizada com sucesso: %s", taskID)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteTaskHandler remove uma tarefa do usuário
func DeleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	username := currentUsername(r)
	taskID := mux.Vars(r)["task_id"]

	ok, err := store.DeleteTask(r.Context(), username, taskID)
	if err != nil {
		utilities.LogError(err, "Erro ao excluir tarefa")
		http.Error(w, "Erro ao excluir tarefa", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "Tarefa não encontrada", http.StatusNotFound)
		return
	}

	utilities.LogInfo("Tarefa excluída com sucesso: %s", taskID)
	w.WriteHeader(http.StatusNoContent)
}

// DashboardHandler devolve as tarefas do usuário e o resumo do histórico.
// Sem nenhuma tarefa, task_history é a string sentinela, não um registro
// zerado.
func DashboardHandler(w http.ResponseWriter, r *http.Request) {
	username := currentUsername(r)

	tasks, err := store.ListTasks(r.Context(), username)
	if err != nil {
		utilities.LogError(err, "Erro ao montar dashboard")
		http.Error(w, "Erro ao carregar dashboard", http.StatusInternalServerError)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	stats, err := store.GetTaskStats(r.Context(), username)
	if err != nil {
		utilities.LogError(err, "Erro ao calcular estatísticas")
		http.Error(w, "Erro ao carregar dashboard", http.StatusInternalServerError)
		return
	}

	var history interface{}
	if stats == nil {
		history = storage.NoTaskHistoryMessage
	} else {
		history = stats
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"username":     username,
		"tasks":        tasks,
		"task_history": history,
	})
}

// InsightsHandler devolve o relatório de procrastinação e o sentimento da
// mensagem motivacional
func InsightsHandler(w http.ResponseWriter, r *http.Request) {
	username := currentUsername(r)

	tasks, err := store.ListTasks(r.Context(), username)
	if err != nil {
		utilities.LogError(err, "Erro ao carregar tarefas para insights")
		http.Error(w, "Erro ao gerar insights", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stats":           analytics.GetStats(tasks),
		"procrastination": analytics.DetectProcrastinationPatterns(tasks, now),
		"sentiment":       analytics.GenerateMotivationalSentiment(tasks, now),
	})
}

// RebalanceTasksHandler sugere uma redistribuição de prioridades para as
// tarefas pendentes. Só devolve sugestões; nada é persistido.
func RebalanceTasksHandler(w http.ResponseWriter, r *http.Request) {
	username := currentUsername(r)

	tasks, err := store.ListTasks(r.Context(), username)
	if err != nil {
		utilities.LogError(err, "Erro ao carregar tarefas para rebalanceamento")
		http.Error(w, "Erro ao rebalancear tarefas", http.StatusInternalServerError)
		return
	}

	var pending []models.Task
	for _, t := range tasks {
		if t.Status == models.StatusPending {
			pending = append(pending, t)
		}
	}

	suggestions := analytics.PrioritizeTasks(pending)
	if suggestions == nil {
		suggestions = []models.Task{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": suggestions})
}
