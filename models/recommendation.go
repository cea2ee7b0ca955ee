package models

import "time"

// RecommendedTask é uma tarefa sugerida pelo gerador de texto, antes da
// normalização feita pela camada de persistência.
type RecommendedTask struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	Priority          string `json:"priority"`
	EstimatedDuration string `json:"estimated_duration"`
	Category          string `json:"category,omitempty"`
	Status            string `json:"status,omitempty"`
}

// RecommendationPayload é a estrutura que o gerador de texto deve devolver.
// O decoder garante que toda resposta, válida ou não, vira uma instância
// desta estrutura.
type RecommendationPayload struct {
	Tasks     []RecommendedTask `json:"tasks"`
	Reasoning string            `json:"reasoning"`
	NextSteps []string          `json:"next_steps"`
}

// AIInteraction registra uma chamada ao gerador de texto para auditoria.
// Gravado em modo best-effort: falha ao registrar não interrompe o fluxo.
type AIInteraction struct {
	Username    string    `json:"username" firestore:"username"`
	Query       string    `json:"query" firestore:"query"`
	RawLength   int       `json:"raw_response_len" firestore:"raw_response_len"`
	Fallback    bool      `json:"fallback" firestore:"fallback"`
	TasksSaved  int       `json:"tasks_saved" firestore:"tasks_saved"`
	GenError    string    `json:"gen_error,omitempty" firestore:"gen_error,omitempty"`
	RequestedAt time.Time `json:"requested_at" firestore:"requested_at"`
}
