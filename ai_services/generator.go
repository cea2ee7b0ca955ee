package ai_services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const generatorTimeout = 30 * time.Second

// Generator é o gerador de texto externo, tratado como opaco: recebe um
// prompt e devolve texto livre. A validação do conteúdo é sempre do decoder.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// HTTPGenerator chama uma API de geração de texto no formato
// chat/completions via HTTP.
type HTTPGenerator struct {
	BaseURL string
	APIKey  string
	Model   string
	client  *http.Client
}

// NewHTTPGeneratorFromEnv monta o gerador a partir das variáveis de ambiente
// AI_API_BASE_URL, AI_API_KEY e AI_MODEL.
func NewHTTPGeneratorFromEnv() *HTTPGenerator {
	model := os.Getenv("AI_MODEL")
	if model == "" {
		model = "gpt-4"
	}
	return &HTTPGenerator{
		BaseURL: os.Getenv("AI_API_BASE_URL"),
		APIKey:  os.Getenv("AI_API_KEY"),
		Model:   model,
		client:  &http.Client{Timeout: generatorTimeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate envia o prompt e devolve o texto da primeira escolha.
func (g *HTTPGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.BaseURL == "" {
		return "", fmt.Errorf("AI_API_BASE_URL não está definido nas variáveis de ambiente")
	}

	payload := chatRequest{
		Model:    g.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("erro ao preparar dados para a API de IA: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("erro ao criar requisição para a API de IA: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.APIKey)
	}

	if g.client == nil {
		g.client = &http.Client{Timeout: generatorTimeout}
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("erro ao comunicar com a API de IA: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("erro ao ler resposta da API de IA: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("API de IA retornou status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var parsed chatResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return "", fmt.Errorf("erro ao processar resposta da API de IA: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("resposta da API de IA sem conteúdo")
	}
	return parsed.Choices[0].Message.Content, nil
}
