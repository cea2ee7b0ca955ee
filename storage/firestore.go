package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ThensiB/Task-Recommendation/models"
	"github.com/ThensiB/Task-Recommendation/utilities"
)

// Coleções do Firestore: users é indexada por username, tasks por task_id.
// A busca "todas as tarefas do dono" usa a query por campo username, que o
// Firestore indexa automaticamente (equivalente ao índice secundário).
const (
	usersCollection     = "users"
	tasksCollection     = "tasks"
	aiHistoryCollection = "ai_request_history"
)

const pingTimeout = 10 * time.Second

// FirestoreStore é o backend durável sobre o Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore inicializa o app Firebase, obtém o cliente do Firestore
// e confirma a conectividade com uma leitura limitada. Qualquer falha aqui
// faz o Open recuar para o armazenamento local.
func NewFirestoreStore(ctx context.Context, cfg Config) (*FirestoreStore, error) {
	opt := option.WithCredentialsFile(cfg.FirebaseCredentialsPath)
	var conf *firebase.Config
	if cfg.FirestoreProjectID != "" {
		conf = &firebase.Config{ProjectID: cfg.FirestoreProjectID}
	}

	app, err := firebase.NewApp(ctx, conf, opt)
	if err != nil {
		return nil, fmt.Errorf("erro ao inicializar Firebase: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("erro ao obter cliente do Firestore: %w", err)
	}

	store := &FirestoreStore{client: client}
	if err := store.ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("sonda de conectividade do Firestore falhou: %w", err)
	}
	return store, nil
}

// ping faz uma leitura limitada para confirmar que o serviço responde antes
// de o backend ser selecionado. O Firestore não exige criação de tabelas.
func (s *FirestoreStore) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	iter := s.client.Collection(usersCollection).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return err
	}
	return nil
}

func (s *FirestoreStore) CreateUser(ctx context.Context, username, hashedPassword, email string) (*models.User, error) {
	user := models.User{
		Username:  username,
		Password:  hashedPassword,
		Email:     email,
		CreatedAt: time.Now().Format(time.RFC3339),
	}

	// Create falha se o documento já existir, então o conflito de username é
	// detectado atomicamente pelo serviço, sem leitura prévia.
	_, err := s.client.Collection(usersCollection).Doc(username).Create(ctx, user)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("erro ao criar usuário no Firestore: %w", err)
	}
	return &user, nil
}

func (s *FirestoreStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	doc, err := s.client.Collection(usersCollection).Doc(username).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("erro ao buscar usuário no Firestore: %w", err)
	}

	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("erro ao converter documento de usuário: %w", err)
	}
	return &user, nil
}

func (s *FirestoreStore) SaveTask(ctx context.Context, username string, task models.Task) (*models.Task, error) {
	item := normalizeNewTask(username, task, time.Now())
	if _, err := s.client.Collection(tasksCollection).Doc(item.TaskID).Set(ctx, item); err != nil {
		return nil, fmt.Errorf("erro ao salvar tarefa no Firestore: %w", err)
	}
	return &item, nil
}

func (s *FirestoreStore) SaveTasks(ctx context.Context, username string, tasks []models.Task) ([]models.Task, error) {
	saved := make([]models.Task, 0, len(tasks))
	var errs []error
	for _, task := range tasks {
		item, err := s.SaveTask(ctx, username, task)
		if err != nil {
			utilities.LogError(err, fmt.Sprintf("Tarefa %q pulada no lote", task.Title))
			errs = append(errs, fmt.Errorf("tarefa %q: %w", task.Title, err))
			continue
		}
		saved = append(saved, *item)
	}
	return saved, errors.Join(errs...)
}

func (s *FirestoreStore) ListTasks(ctx context.Context, username string) ([]models.Task, error) {
	iter := s.client.Collection(tasksCollection).Where("username", "==", username).Documents(ctx)
	defer iter.Stop()

	var tasks []models.Task
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("erro ao listar tarefas no Firestore: %w", err)
		}

		var task models.Task
		if err := doc.DataTo(&task); err != nil {
			// Documento malformado não derruba a listagem inteira.
			utilities.LogWarn("Tarefa %s ignorada, documento malformado: %v", doc.Ref.ID, err)
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (s *FirestoreStore) UpdateTaskStatus(ctx context.Context, taskID, status string) (*models.Task, error) {
	if !models.IsValidStatus(status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	ref := s.client.Collection(tasksCollection).Doc(taskID)
	var updated models.Task

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var task models.Task
		if err := doc.DataTo(&task); err != nil {
			return fmt.Errorf("erro ao converter documento de tarefa: %w", err)
		}
		if task.Status == models.StatusCompleted && status == models.StatusPending {
			return ErrStatusTransition
		}
		task.Status = status
		task.UpdatedAt = time.Now().Format(time.RFC3339)
		updated = task
		return tx.Set(ref, task)
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		if errors.Is(err, ErrStatusTransition) {
			return nil, ErrStatusTransition
		}
		return nil, fmt.Errorf("erro ao atualizar status no Firestore: %w", err)
	}
	return &updated, nil
}

func (s *FirestoreStore) UpdateTask(ctx context.Context, username, taskID string, update models.TaskUpdate) (bool, error) {
	ref := s.client.Collection(tasksCollection).Doc(taskID)
	applied := false

	// A verificação de posse e a escrita acontecem na mesma transação, então
	// não há janela entre ler o dono e aplicar a mudança.
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var task models.Task
		if err := doc.DataTo(&task); err != nil {
			return fmt.Errorf("erro ao converter documento de tarefa: %w", err)
		}
		if task.Username != username {
			return nil
		}
		applied = true
		return tx.Set(ref, applyTaskUpdate(task, update, time.Now()))
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("erro ao atualizar tarefa no Firestore: %w", err)
	}
	return applied, nil
}

func (s *FirestoreStore) DeleteTask(ctx context.Context, username, taskID string) (bool, error) {
	ref := s.client.Collection(tasksCollection).Doc(taskID)
	deleted := false

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var task models.Task
		if err := doc.DataTo(&task); err != nil {
			return fmt.Errorf("erro ao converter documento de tarefa: %w", err)
		}
		if task.Username != username {
			return nil
		}
		deleted = true
		return tx.Delete(ref)
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("erro ao excluir tarefa no Firestore: %w", err)
	}
	return deleted, nil
}

func (s *FirestoreStore) GetTaskStats(ctx context.Context, username string) (*models.TaskStats, error) {
	tasks, err := s.ListTasks(ctx, username)
	if err != nil {
		return nil, err
	}
	return statsFromTasks(tasks), nil
}

// LogAIInteraction grava a interação na coleção de histórico.
func (s *FirestoreStore) LogAIInteraction(ctx context.Context, entry models.AIInteraction) error {
	if _, _, err := s.client.Collection(aiHistoryCollection).Add(ctx, entry); err != nil {
		return fmt.Errorf("erro ao gravar histórico de IA no Firestore: %w", err)
	}
	return nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
