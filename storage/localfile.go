package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ThensiB/Task-Recommendation/models"
	"github.com/ThensiB/Task-Recommendation/utilities"
)

// Nomes dos documentos locais, um por tipo de registro.
const (
	usersFileName   = "users.json"
	tasksFileName   = "tasks.json"
	historyFileName = "ai_history.json"
)

// LocalFileStore é o backend de contingência: cada coleção vive em um único
// arquivo JSON, lido por inteiro a cada chamada e reescrito por inteiro a
// cada mutação. O mutex serializa as chamadas dentro do processo; acesso
// concorrente por processos distintos ao mesmo diretório não é seguro.
type LocalFileStore struct {
	mu          sync.Mutex
	usersPath   string
	tasksPath   string
	historyPath string
}

// NewLocalFileStore prepara o diretório de dados e cria os arquivos vazios
// na primeira utilização.
func NewLocalFileStore(dir string) (*LocalFileStore, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("erro ao criar diretório de dados %s: %w", dir, err)
	}

	s := &LocalFileStore{
		usersPath:   filepath.Join(dir, usersFileName),
		tasksPath:   filepath.Join(dir, tasksFileName),
		historyPath: filepath.Join(dir, historyFileName),
	}

	for _, path := range []string{s.usersPath, s.tasksPath} {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if err := writeDocument(path, []struct{}{}); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// loadDocument lê a coleção inteira. Arquivo ausente ou corrompido vira
// coleção vazia, nunca erro: o comportamento herdado pelos consumidores é
// "sem dados", não "falha".
func loadDocument[T any](path string) []T {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			utilities.LogWarn("Erro ao ler %s, tratando como coleção vazia: %v", path, err)
		}
		return nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		utilities.LogWarn("Conteúdo inválido em %s, tratando como coleção vazia: %v", path, err)
		return nil
	}
	return items
}

func writeDocument(path string, items interface{}) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("erro ao serializar %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("erro ao gravar %s: %w", path, err)
	}
	return nil
}

func (s *LocalFileStore) CreateUser(ctx context.Context, username, hashedPassword, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := loadDocument[models.User](s.usersPath)
	for _, u := range users {
		if u.Username == username {
			return nil, ErrUserExists
		}
	}

	user := models.User{
		Username:  username,
		Password:  hashedPassword,
		Email:     email,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
	users = append(users, user)
	if err := writeDocument(s.usersPath, users); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *LocalFileStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range loadDocument[models.User](s.usersPath) {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (s *LocalFileStore) SaveTask(ctx context.Context, username string, task models.Task) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveTaskLocked(username, task)
}

func (s *LocalFileStore) saveTaskLocked(username string, task models.Task) (*models.Task, error) {
	all := loadDocument[models.Task](s.tasksPath)
	item := normalizeNewTask(username, task, time.Now())
	all = append(all, item)
	if err := writeDocument(s.tasksPath, all); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *LocalFileStore) SaveTasks(ctx context.Context, username string, tasks []models.Task) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := make([]models.Task, 0, len(tasks))
	var errs []error
	for _, task := range tasks {
		item, err := s.saveTaskLocked(username, task)
		if err != nil {
			errs = append(errs, fmt.Errorf("tarefa %q: %w", task.Title, err))
			continue
		}
		saved = append(saved, *item)
	}
	return saved, errors.Join(errs...)
}

func (s *LocalFileStore) ListTasks(ctx context.Context, username string) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listTasksLocked(username), nil
}

func (s *LocalFileStore) listTasksLocked(username string) []models.Task {
	var tasks []models.Task
	for _, t := range loadDocument[models.Task](s.tasksPath) {
		if t.Username == username {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

func (s *LocalFileStore) UpdateTaskStatus(ctx context.Context, taskID, status string) (*models.Task, error) {
	if !models.IsValidStatus(status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := loadDocument[models.Task](s.tasksPath)
	for i := range all {
		if all[i].TaskID != taskID {
			continue
		}
		if all[i].Status == models.StatusCompleted && status == models.StatusPending {
			return nil, ErrStatusTransition
		}
		all[i].Status = status
		all[i].UpdatedAt = time.Now().Format(time.RFC3339)
		if err := writeDocument(s.tasksPath, all); err != nil {
			return nil, err
		}
		task := all[i]
		return &task, nil
	}
	return nil, ErrNotFound
}

func (s *LocalFileStore) UpdateTask(ctx context.Context, username, taskID string, update models.TaskUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := loadDocument[models.Task](s.tasksPath)
	for i := range all {
		if all[i].TaskID != taskID || all[i].Username != username {
			continue
		}
		all[i] = applyTaskUpdate(all[i], update, time.Now())
		if err := writeDocument(s.tasksPath, all); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (s *LocalFileStore) DeleteTask(ctx context.Context, username, taskID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := loadDocument[models.Task](s.tasksPath)
	for i := range all {
		if all[i].TaskID != taskID || all[i].Username != username {
			continue
		}
		all = append(all[:i], all[i+1:]...)
		if err := writeDocument(s.tasksPath, all); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (s *LocalFileStore) GetTaskStats(ctx context.Context, username string) (*models.TaskStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return statsFromTasks(s.listTasksLocked(username)), nil
}

// LogAIInteraction acrescenta a interação ao documento de histórico local.
func (s *LocalFileStore) LogAIInteraction(ctx context.Context, entry models.AIInteraction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := loadDocument[models.AIInteraction](s.historyPath)
	history = append(history, entry)
	return writeDocument(s.historyPath, history)
}

func (s *LocalFileStore) Close() error {
	return nil
}
