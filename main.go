package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/ThensiB/Task-Recommendation/ai_services"
	"github.com/ThensiB/Task-Recommendation/handlers"
	"github.com/ThensiB/Task-Recommendation/storage"
	"github.com/ThensiB/Task-Recommendation/utilities"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Arquivo .env não encontrado, usando variáveis de ambiente do sistema")
	}
	utilities.InitLogger()

	// A escolha do backend acontece aqui, uma única vez por processo.
	ctx := context.Background()
	store, err := storage.Open(ctx, storage.LoadConfig())
	if err != nil {
		log.Fatalf("Erro ao inicializar o armazenamento: %v", err)
	}
	defer store.Close()

	generator := ai_services.NewHTTPGeneratorFromEnv()
	handlers.Init(store, ai_services.NewRecommender(store, generator))

	LoadRoutes()
}
