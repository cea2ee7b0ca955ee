package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/ThensiB/Task-Recommendation/handlers"
	"github.com/ThensiB/Task-Recommendation/utilities"
)

func LoadRoutes() {
	r := mux.NewRouter()

	// Middleware de logging global em todas as rotas
	r.Use(handlers.LoggingMiddleware)

	// --- Rotas de autenticação (públicas) ---
	r.HandleFunc("/auth/register", handlers.RegisterHandler).Methods("POST")
	r.HandleFunc("/auth/login", handlers.LoginHandler).Methods("POST")
	r.HandleFunc("/auth/logout", handlers.AuthMiddleware(handlers.LogoutHandler)).Methods("POST")

	// --- Rotas de tarefas (protegidas) ---
	r.HandleFunc("/tasks", handlers.AuthMiddleware(handlers.ListTasksHandler)).Methods("GET")
	r.HandleFunc("/tasks", handlers.AuthMiddleware(handlers.CreateTaskHandler)).Methods("POST")
	r.HandleFunc("/tasks/insights", handlers.AuthMiddleware(handlers.InsightsHandler)).Methods("GET")
	r.HandleFunc("/tasks/rebalance", handlers.AuthMiddleware(handlers.RebalanceTasksHandler)).Methods("POST")
	r.HandleFunc("/tasks/{task_id}", handlers.AuthMiddleware(handlers.UpdateTaskHandler)).Methods("PUT")
	r.HandleFunc("/tasks/{task_id}", handlers.AuthMiddleware(handlers.DeleteTaskHandler)).Methods("DELETE")
	r.HandleFunc("/tasks/{task_id}/complete", handlers.AuthMiddleware(handlers.CompleteTaskHandler)).Methods("POST")

	// --- Dashboard e recomendações (protegidas) ---
	r.HandleFunc("/dashboard", handlers.AuthMiddleware(handlers.DashboardHandler)).Methods("GET")
	r.HandleFunc("/recommend", handlers.AuthMiddleware(handlers.RecommendHandler)).Methods("POST")

	// Configuração do CORS
	headers := gorillahandlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type", "Authorization"})
	methods := gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	credentials := gorillahandlers.AllowCredentials()

	allowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if allowedOriginsEnv == "" {
		allowedOrigins = []string{"*"}
		utilities.LogWarn("CORS_ALLOWED_ORIGINS não definida, permitindo todas as origens ('*'). Defina para maior segurança em produção.")
	} else {
		allowedOrigins = strings.Split(allowedOriginsEnv, ",")
	}
	origins := gorillahandlers.AllowedOrigins(allowedOrigins)
	utilities.LogInfo("Configurando CORS com origens permitidas: %v", allowedOrigins)

	handler := gorillahandlers.CORS(headers, methods, origins, credentials)(r)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	utilities.LogInfo("Servidor iniciado na porta %s", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
