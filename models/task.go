package models

// Valores permitidos para prioridade e status de uma tarefa.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"

	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Formatos de data/hora usados nos registros persistidos. Timestamps são
// strings ISO-8601 para manter o mesmo formato nos dois backends.
const (
	DueDateLayout = "2006-01-02"
	DueTimeLayout = "15:04"
)

// Task é o registro persistido de uma tarefa, com o mesmo formato nos dois
// backends. Username é a referência fraca ao dono (sem chave estrangeira,
// a verificação é feita na camada de aplicação).
type Task struct {
	TaskID            string `json:"task_id" firestore:"task_id"`
	Username          string `json:"username" firestore:"username"`
	Title             string `json:"title" firestore:"title"`
	Description       string `json:"description" firestore:"description"`
	Priority          string `json:"priority" firestore:"priority"`
	EstimatedDuration string `json:"estimated_duration" firestore:"estimated_duration"`
	Status            string `json:"status" firestore:"status"`
	Category          string `json:"category,omitempty" firestore:"category"`
	DueDate           string `json:"due_date,omitempty" firestore:"due_date"`
	DueTime           string `json:"due_time,omitempty" firestore:"due_time"`
	Reminder          bool   `json:"reminder" firestore:"reminder"`
	CreatedAt         string `json:"created_at" firestore:"created_at"`
	UpdatedAt         string `json:"updated_at,omitempty" firestore:"updated_at,omitempty"`
}

// TaskUpdate descreve uma atualização parcial de tarefa. Campos nil não são
// alterados.
type TaskUpdate struct {
	Title             *string `json:"title"`
	Description       *string `json:"description"`
	Priority          *string `json:"priority"`
	EstimatedDuration *string `json:"estimated_duration"`
	Category          *string `json:"category"`
	Status            *string `json:"status"`
	DueDate           *string `json:"due_date"`
	DueTime           *string `json:"due_time"`
	Reminder          *bool   `json:"reminder"`
}

// TaskStats resume o histórico de tarefas de um usuário.
type TaskStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

// IsValidPriority verifica se o valor é uma das três prioridades aceitas.
func IsValidPriority(p string) bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// IsValidStatus verifica se o valor é um status aceito.
func IsValidStatus(s string) bool {
	return s == StatusPending || s == StatusCompleted
}
