package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ThensiB/Task-Recommendation/utilities"
)

type contextKey string

const usernameKey contextKey = "username"

// LoggingMiddleware registra método, rota, origem, status e duração de cada
// requisição HTTP
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		utilities.LogRequest(r.Method, r.URL.Path, r.RemoteAddr, rw.statusCode, time.Since(start))
	})
}

// AuthMiddleware valida o token da sessão e injeta o username no contexto
// da requisição
func AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, err := usernameFromRequest(r)
		if err != nil {
			utilities.LogError(err, "Falha na autenticação")
			http.Error(w, "Não autorizado", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), usernameKey, username)
		next(w, r.WithContext(ctx))
	}
}

// currentUsername devolve o username injetado pelo AuthMiddleware.
func currentUsername(r *http.Request) string {
	username, _ := r.Context().Value(usernameKey).(string)
	return username
}

// writeJSON serializa a resposta com o status informado.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utilities.LogError(err, "Erro ao serializar resposta JSON")
	}
}

// responseWriter captura o status code escrito pelo handler
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
