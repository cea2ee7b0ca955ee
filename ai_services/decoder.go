package ai_services

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/ThensiB/Task-Recommendation/models"
	"github.com/ThensiB/Task-Recommendation/utilities"
)

// fencePattern remove os delimitadores de bloco de código que alguns
// geradores insistem em colocar ao redor do JSON.
var fencePattern = regexp.MustCompile("```(?:json)?[\\s\\n]*|```[\\s\\n]*$")

// DecodeResult é o resultado etiquetado do decoder: Fallback true indica que
// a resposta do gerador era inaproveitável e o payload fixo foi usado no
// lugar. Quem chama decide se expõe a degradação.
type DecodeResult struct {
	Payload  models.RecommendationPayload
	Fallback bool
}

// FallbackPayload devolve o payload fixo usado quando a resposta do gerador
// não pode ser decodificada. Os textos são parte do contrato com os
// consumidores e não devem mudar.
func FallbackPayload() models.RecommendationPayload {
	return models.RecommendationPayload{
		Tasks: []models.RecommendedTask{{
			Title:             "Default Task",
			Description:       "Please try a more specific request",
			Priority:          models.PriorityMedium,
			EstimatedDuration: "10 minutes",
		}},
		Reasoning: "I had trouble understanding that request.",
		NextSteps: []string{"Try a simpler request"},
	}
}

// DecodeRecommendation transforma o texto livre do gerador em um payload
// validado. Nunca falha: remove cercas de código, recorta do primeiro "{"
// ao último "}" quando ambos existem e tenta decodificar; qualquer problema
// devolve o payload de fallback.
func DecodeRecommendation(raw string) DecodeResult {
	cleaned := fencePattern.ReplaceAllString(raw, "")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end >= 0 {
		if end >= start {
			cleaned = cleaned[start : end+1]
		} else {
			cleaned = ""
		}
	}
	cleaned = strings.TrimSpace(cleaned)

	var payload models.RecommendationPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		utilities.LogWarn("Resposta do gerador não é JSON válido, usando fallback: %v", err)
		return DecodeResult{Payload: FallbackPayload(), Fallback: true}
	}
	return DecodeResult{Payload: payload}
}
