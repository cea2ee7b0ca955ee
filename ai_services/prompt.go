package ai_services

import (
	"encoding/json"
	"fmt"

	"github.com/ThensiB/Task-Recommendation/models"
	"github.com/ThensiB/Task-Recommendation/utilities"
)

// Limite de tarefas existentes enviadas como contexto no prompt.
const maxTasksForPromptContext = 15

// taskSchema descreve o formato JSON que o gerador deve devolver.
const taskSchema = `{
  "tasks": [
    {
      "title": "Task title",
      "description": "Detailed description of the task",
      "priority": "high/medium/low",
      "estimated_duration": "estimated time to complete",
      "category": "optional category",
      "status": "pending"
    }
  ],
  "reasoning": "Explanation of why these tasks are recommended",
  "next_steps": ["Suggested next step 1", "Suggested next step 2"]
}`

const promptTemplate = `You are a task management assistant that helps users organize and prioritize their tasks.
Based on the user's input and existing task history, provide personalized task recommendations.
Consider the user's goals, priorities, and time constraints.

Each task should have a clear title, description, priority level (high, medium, or low), and estimated duration.

IMPORTANT: Return ONLY a valid JSON object with no extra text, markdown formatting, or code blocks.
Use exactly this JSON structure:

%s

USER QUERY: %s`

// taskContext é a visão reduzida de uma tarefa enviada no contexto do
// prompt. Só os campos úteis para o gerador, nada de dados do usuário.
type taskContext struct {
	Title    string `json:"title"`
	Status   string `json:"status,omitempty"`
	Priority string `json:"priority,omitempty"`
	DueDate  string `json:"due_date,omitempty"`
}

// BuildRecommendationPrompt monta o prompt com o esquema esperado, a
// consulta do usuário e um resumo das tarefas existentes.
func BuildRecommendationPrompt(query string, existing []models.Task) string {
	prompt := fmt.Sprintf(promptTemplate, taskSchema, query)

	if len(existing) == 0 {
		return prompt
	}
	if len(existing) > maxTasksForPromptContext {
		existing = existing[len(existing)-maxTasksForPromptContext:]
	}

	contextTasks := make([]taskContext, len(existing))
	for i, t := range existing {
		contextTasks[i] = taskContext{
			Title:    t.Title,
			Status:   t.Status,
			Priority: t.Priority,
			DueDate:  t.DueDate,
		}
	}

	contextJSON, err := json.Marshal(contextTasks)
	if err != nil {
		// Sem contexto o prompt continua válido, então só registra.
		utilities.LogWarn("Erro ao serializar contexto de tarefas para o prompt: %v", err)
		return prompt
	}
	return prompt + fmt.Sprintf("\n\nUser's existing tasks: %s\n", contextJSON)
}
