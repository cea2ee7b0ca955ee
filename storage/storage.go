package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ThensiB/Task-Recommendation/models"
	"github.com/ThensiB/Task-Recommendation/utilities"
)

// Erros sentinela devolvidos pela camada de persistência. Erros de
// conectividade do backend são embrulhados com %w e nunca viram panic.
var (
	// ErrUserExists indica conflito de nome de usuário no registro.
	ErrUserExists = errors.New("nome de usuário já existe")
	// ErrNotFound indica que o registro não existe. Nas mutações com dono a
	// ausência e a posse por outro usuário são propositalmente indistinguíveis.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrInvalidStatus indica um valor de status fora do enum aceito.
	ErrInvalidStatus = errors.New("status inválido")
	// ErrStatusTransition indica tentativa de reverter uma tarefa concluída
	// para pendente via UpdateTaskStatus.
	ErrStatusTransition = errors.New("tarefa concluída não pode voltar para pendente")
)

// NoTaskHistoryMessage é o valor sentinela devolvido no lugar das
// estatísticas quando o usuário não tem nenhuma tarefa. Consumidores da API
// dependem do texto literal.
const NoTaskHistoryMessage = "No task history found."

// TaskStore é o contrato único de CRUD sobre os dois backends
// intercambiáveis. A escolha do backend acontece uma única vez em Open; não
// há failover dinâmico depois disso.
type TaskStore interface {
	// CreateUser registra um usuário novo. Devolve ErrUserExists em conflito.
	CreateUser(ctx context.Context, username, hashedPassword, email string) (*models.User, error)
	// GetUser busca um usuário pelo nome. Devolve ErrNotFound se não existir.
	GetUser(ctx context.Context, username string) (*models.User, error)
	// SaveTask persiste uma tarefa nova já normalizada (id gerado, status
	// pendente por padrão, datas vazias removidas, created_at carimbado).
	SaveTask(ctx context.Context, username string, task models.Task) (*models.Task, error)
	// SaveTasks persiste várias tarefas. Falhas individuais não interrompem o
	// lote: devolve o subconjunto salvo junto com os erros agregados.
	SaveTasks(ctx context.Context, username string, tasks []models.Task) ([]models.Task, error)
	// ListTasks devolve todas as tarefas do usuário, sem ordem garantida.
	ListTasks(ctx context.Context, username string) ([]models.Task, error)
	// UpdateTaskStatus muda o status de uma tarefa. A transição
	// completed→pending é rejeitada com ErrStatusTransition.
	UpdateTaskStatus(ctx context.Context, taskID, status string) (*models.Task, error)
	// UpdateTask aplica uma atualização parcial depois de verificar que a
	// tarefa pertence ao usuário. Devolve false sem distinguir ausência de
	// posse por outro usuário. created_at original é preservado.
	UpdateTask(ctx context.Context, username, taskID string, update models.TaskUpdate) (bool, error)
	// DeleteTask remove a tarefa com a mesma verificação de posse do update.
	DeleteTask(ctx context.Context, username, taskID string) (bool, error)
	// GetTaskStats resume o histórico do usuário. Zero tarefas devolve
	// (nil, nil), nunca um registro zerado; ver NoTaskHistoryMessage.
	GetTaskStats(ctx context.Context, username string) (*models.TaskStats, error)
	Close() error
}

// InteractionLogger é implementado pelos backends que sabem registrar o
// histórico de chamadas ao gerador de texto. O registro é best-effort.
type InteractionLogger interface {
	LogAIInteraction(ctx context.Context, entry models.AIInteraction) error
}

// Config reúne as variáveis de ambiente que decidem o backend.
type Config struct {
	FirebaseCredentialsPath string
	FirestoreProjectID      string
	DataDir                 string
}

// LoadConfig lê a configuração do ambiente.
func LoadConfig() Config {
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	return Config{
		FirebaseCredentialsPath: os.Getenv("FIREBASE_CREDENTIALS_PATH"),
		FirestoreProjectID:      os.Getenv("FIRESTORE_PROJECT_ID"),
		DataDir:                 dataDir,
	}
}

// Open seleciona o backend uma única vez na inicialização do processo:
// Firestore quando há credenciais configuradas e o serviço responde à sonda
// de conectividade, caso contrário arquivos locais. Uma queda do serviço no
// meio da execução degrada chamadas individuais, não troca o backend.
func Open(ctx context.Context, cfg Config) (TaskStore, error) {
	if cfg.FirebaseCredentialsPath != "" {
		store, err := NewFirestoreStore(ctx, cfg)
		if err == nil {
			utilities.LogInfo("Armazenamento durável selecionado (Firestore)")
			return store, nil
		}
		utilities.LogError(err, "Falha ao conectar ao Firestore, recorrendo ao armazenamento local")
	} else {
		utilities.LogWarn("FIREBASE_CREDENTIALS_PATH não definido, usando armazenamento local")
	}

	store, err := NewLocalFileStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("erro ao inicializar armazenamento local: %w", err)
	}
	utilities.LogInfo("Armazenamento local selecionado (arquivos em %s)", cfg.DataDir)
	return store, nil
}

// normalizeNewTask preenche os campos obrigatórios de uma tarefa nova. Vale
// para os dois backends, que persistem o registro já normalizado.
func normalizeNewTask(username string, task models.Task, now time.Time) models.Task {
	if task.TaskID == "" {
		task.TaskID = uuid.NewString()
	}
	task.Username = username
	if !models.IsValidPriority(task.Priority) {
		task.Priority = models.PriorityMedium
	}
	if task.Status == "" {
		task.Status = models.StatusPending
	}
	task.DueDate = strings.TrimSpace(task.DueDate)
	task.DueTime = strings.TrimSpace(task.DueTime)
	task.CreatedAt = now.Format(time.RFC3339)
	task.UpdatedAt = ""
	return task
}

// applyTaskUpdate aplica uma atualização parcial sobre o registro existente,
// preservando id, dono e created_at. Status ausente mantém o atual.
func applyTaskUpdate(existing models.Task, update models.TaskUpdate, now time.Time) models.Task {
	if update.Title != nil {
		existing.Title = *update.Title
	}
	if update.Description != nil {
		existing.Description = *update.Description
	}
	if update.Priority != nil && models.IsValidPriority(*update.Priority) {
		existing.Priority = *update.Priority
	}
	if update.EstimatedDuration != nil {
		existing.EstimatedDuration = *update.EstimatedDuration
	}
	if update.Category != nil {
		existing.Category = *update.Category
	}
	if update.Status != nil && models.IsValidStatus(*update.Status) {
		existing.Status = *update.Status
	}
	if update.DueDate != nil {
		existing.DueDate = strings.TrimSpace(*update.DueDate)
	}
	if update.DueTime != nil {
		existing.DueTime = strings.TrimSpace(*update.DueTime)
	}
	if update.Reminder != nil {
		existing.Reminder = *update.Reminder
	}
	existing.UpdatedAt = now.Format(time.RFC3339)
	return existing
}

// statsFromTasks resume a lista de tarefas. Lista vazia devolve nil, que é o
// sentinela de "sem histórico".
func statsFromTasks(tasks []models.Task) *models.TaskStats {
	if len(tasks) == 0 {
		return nil
	}
	stats := &models.TaskStats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case models.StatusCompleted:
			stats.Completed++
		case models.StatusPending:
			stats.Pending++
		}
	}
	return stats
}
