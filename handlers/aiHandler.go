package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ThensiB/Task-Recommendation/utilities"
)

// RecommendHandler gera recomendações de tarefas a partir da consulta do
// usuário e persiste as tarefas sugeridas. O campo degraded indica que a
// resposta veio do payload de fallback, não do gerador.
func RecommendHandler(w http.ResponseWriter, r *http.Request) {
	username := currentUsername(r)

	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utilities.LogError(err, "Erro ao decodificar JSON de recomendação")
		http.Error(w, "Requisição inválida", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		http.Error(w, "Consulta vazia", http.StatusBadRequest)
		return
	}

	result, err := recommender.Recommend(r.Context(), username, req.Query)
	if err != nil {
		utilities.LogError(err, "Erro ao gerar recomendações")
		http.Error(w, "Erro ao gerar recomendações", http.StatusInternalServerError)
		return
	}

	utilities.LogInfo("Recomendação gerada para %s - tarefas: %d, degraded: %v",
		username, len(result.Payload.Tasks), result.Degraded)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tasks":      result.Payload.Tasks,
		"reasoning":  result.Payload.Reasoning,
		"next_steps": result.Payload.NextSteps,
		"degraded":   result.Degraded,
	})
}
