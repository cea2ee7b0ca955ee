package ai_services

import (
	"context"
	"strings"
	"time"

	"github.com/ThensiB/Task-Recommendation/models"
	"github.com/ThensiB/Task-Recommendation/storage"
	"github.com/ThensiB/Task-Recommendation/utilities"
)

// Recommender liga o gerador de texto ao repositório: lista as tarefas do
// usuário para dar contexto, chama o gerador, decodifica a resposta e
// persiste as tarefas recomendadas.
type Recommender struct {
	store     storage.TaskStore
	generator Generator
}

// RecommendResult é o resultado de uma recomendação. Degraded true indica
// que o payload veio do fallback fixo, não do gerador.
type RecommendResult struct {
	Payload    models.RecommendationPayload
	Degraded   bool
	SavedTasks []models.Task
}

func NewRecommender(store storage.TaskStore, generator Generator) *Recommender {
	return &Recommender{store: store, generator: generator}
}

// Recommend gera recomendações de tarefas para a consulta do usuário.
// Respostas inaproveitáveis do gerador degradam para o payload fixo em vez
// de falhar; nesse caso nada é persistido, só o payload é devolvido.
func (r *Recommender) Recommend(ctx context.Context, username, query string) (*RecommendResult, error) {
	existing, err := r.store.ListTasks(ctx, username)
	if err != nil {
		// Sem o histórico o prompt perde contexto mas a recomendação ainda
		// funciona.
		utilities.LogWarn("Não foi possível carregar tarefas para o contexto de %s: %v", username, err)
		existing = nil
	}

	prompt := BuildRecommendationPrompt(query, existing)

	raw, genErr := r.generator.Generate(ctx, prompt)
	var decoded DecodeResult
	if genErr != nil || strings.TrimSpace(raw) == "" {
		if genErr != nil {
			utilities.LogError(genErr, "Gerador de texto indisponível, usando payload de fallback")
		}
		decoded = DecodeResult{Payload: FallbackPayload(), Fallback: true}
	} else {
		decoded = DecodeRecommendation(raw)
	}

	result := &RecommendResult{Payload: decoded.Payload, Degraded: decoded.Fallback}

	if !decoded.Fallback {
		toSave := make([]models.Task, 0, len(decoded.Payload.Tasks))
		for i := range decoded.Payload.Tasks {
			rec := &decoded.Payload.Tasks[i]
			if rec.Status == "" {
				rec.Status = models.StatusPending
			}
			toSave = append(toSave, models.Task{
				Title:             rec.Title,
				Description:       rec.Description,
				Priority:          rec.Priority,
				EstimatedDuration: rec.EstimatedDuration,
				Category:          rec.Category,
				Status:            rec.Status,
			})
		}

		saved, saveErr := r.store.SaveTasks(ctx, username, toSave)
		if saveErr != nil {
			utilities.LogError(saveErr, "Falha parcial ao salvar tarefas recomendadas")
		}
		result.SavedTasks = saved
	}

	r.logInteraction(ctx, username, query, len(raw), result, genErr)
	return result, nil
}

// logInteraction registra a chamada no histórico de auditoria quando o
// backend sabe fazê-lo. Best-effort: falha só gera log.
func (r *Recommender) logInteraction(ctx context.Context, username, query string, rawLen int, result *RecommendResult, genErr error) {
	logger, ok := r.store.(storage.InteractionLogger)
	if !ok {
		return
	}

	entry := models.AIInteraction{
		Username:    username,
		Query:       query,
		RawLength:   rawLen,
		Fallback:    result.Degraded,
		TasksSaved:  len(result.SavedTasks),
		RequestedAt: time.Now(),
	}
	if genErr != nil {
		entry.GenError = genErr.Error()
	}

	if err := logger.LogAIInteraction(ctx, entry); err != nil {
		utilities.LogWarn("Falha ao registrar histórico de IA: %v", err)
	}
}
