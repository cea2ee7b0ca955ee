package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/ThensiB/Task-Recommendation/ai_services"
	"github.com/ThensiB/Task-Recommendation/models"
	"github.com/ThensiB/Task-Recommendation/storage"
)

// stubGenerator evita chamadas de rede nos testes de handler.
type stubGenerator struct {
	response string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return s.response, nil
}

func newTestRouter(t *testing.T, generatorResponse string) *mux.Router {
	t.Helper()

	localStore, err := storage.NewLocalFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new local store: %v", err)
	}
	t.Cleanup(func() { localStore.Close() })

	Init(localStore, ai_services.NewRecommender(localStore, &stubGenerator{response: generatorResponse}))

	r := mux.NewRouter()
	r.HandleFunc("/auth/register", RegisterHandler).Methods("POST")
	r.HandleFunc("/auth/login", LoginHandler).Methods("POST")
	r.HandleFunc("/tasks", AuthMiddleware(ListTasksHandler)).Methods("GET")
	r.HandleFunc("/tasks", AuthMiddleware(CreateTaskHandler)).Methods("POST")
	r.HandleFunc("/tasks/rebalance", AuthMiddleware(RebalanceTasksHandler)).Methods("POST")
	r.HandleFunc("/tasks/{task_id}", AuthMiddleware(UpdateTaskHandler)).Methods("PUT")
	r.HandleFunc("/tasks/{task_id}", AuthMiddleware(DeleteTaskHandler)).Methods("DELETE")
	r.HandleFunc("/tasks/{task_id}/complete", AuthMiddleware(CompleteTaskHandler)).Methods("POST")
	r.HandleFunc("/dashboard", AuthMiddleware(DashboardHandler)).Methods("GET")
	r.HandleFunc("/recommend", AuthMiddleware(RecommendHandler)).Methods("POST")
	return r
}

func doJSON(t *testing.T, router *mux.Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, router *mux.Router, username string) string {
	t.Helper()

	rec := doJSON(t, router, "POST", "/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "s3nha-forte",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, "POST", "/auth/login", "", map[string]string{
		"username": username,
		"password": "s3nha-forte",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.TokenType != "bearer" || resp.AccessToken == "" {
		t.Fatalf("unexpected login response: %s", rec.Body.String())
	}
	return resp.AccessToken
}

func TestRegisterConflictAndValidation(t *testing.T) {
	router := newTestRouter(t, "")

	registerAndLogin(t, router, "alice")

	rec := doJSON(t, router, "POST", "/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "outra-senha",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate username, got %d", rec.Code)
	}

	rec = doJSON(t, router, "POST", "/auth/register", "", map[string]string{
		"username": "bob",
		"email":    "not-an-email",
		"password": "senha",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on invalid email, got %d", rec.Code)
	}

	rec = doJSON(t, router, "POST", "/auth/login", "", map[string]string{
		"username": "alice",
		"password": "senha-errada",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on wrong password, got %d", rec.Code)
	}
}

func TestTaskLifecycle(t *testing.T) {
	router := newTestRouter(t, "")
	token := registerAndLogin(t, router, "alice")

	// Sem token o acesso é negado.
	if rec := doJSON(t, router, "GET", "/tasks", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec := doJSON(t, router, "POST", "/tasks", token, map[string]interface{}{
		"title":    "Write report",
		"priority": "urgent",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on invalid priority, got %d", rec.Code)
	}

	rec = doJSON(t, router, "POST", "/tasks", token, map[string]interface{}{
		"title":       "Write report",
		"description": "Quarterly numbers",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var created models.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created task: %v", err)
	}
	if created.TaskID == "" || created.Status != models.StatusPending || created.Priority != models.PriorityMedium {
		t.Fatalf("unexpected created task: %+v", created)
	}

	rec = doJSON(t, router, "GET", "/tasks", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var listed []models.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode task list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 task, got %d", len(listed))
	}

	rec = doJSON(t, router, "PUT", "/tasks/"+created.TaskID, token, map[string]interface{}{
		"priority": "high",
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("update: expected 204, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, "POST", "/tasks/"+created.TaskID+"/complete", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var completeResp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &completeResp); err != nil {
		t.Fatalf("decode complete response: %v", err)
	}
	if completeResp["message"] != "Task marked as completed" {
		t.Fatalf("unexpected complete response: %v", completeResp)
	}

	rec = doJSON(t, router, "DELETE", "/tasks/"+created.TaskID, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	rec = doJSON(t, router, "DELETE", "/tasks/"+created.TaskID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}
}

func TestTaskOwnershipHiddenAcrossUsers(t *testing.T) {
	router := newTestRouter(t, "")
	aliceToken := registerAndLogin(t, router, "alice")
	bobToken := registerAndLogin(t, router, "bob")

	rec := doJSON(t, router, "POST", "/tasks", aliceToken, map[string]interface{}{"title": "Private"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", rec.Code)
	}
	var created models.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created task: %v", err)
	}

	// Para outro usuário a tarefa simplesmente não existe.
	if rec := doJSON(t, router, "POST", "/tasks/"+created.TaskID+"/complete", bobToken, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 completing someone else's task, got %d", rec.Code)
	}
	if rec := doJSON(t, router, "DELETE", "/tasks/"+created.TaskID, bobToken, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 deleting someone else's task, got %d", rec.Code)
	}
	title := "Hijacked"
	if rec := doJSON(t, router, "PUT", "/tasks/"+created.TaskID, bobToken, map[string]interface{}{"title": title}); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 updating someone else's task, got %d", rec.Code)
	}
}

func TestCompleteTaskIsIdempotent(t *testing.T) {
	router := newTestRouter(t, "")
	token := registerAndLogin(t, router, "alice")

	rec := doJSON(t, router, "POST", "/tasks", token, map[string]interface{}{"title": "Once"})
	var created models.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created task: %v", err)
	}

	if rec := doJSON(t, router, "POST", "/tasks/"+created.TaskID+"/complete", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("first complete: expected 200, got %d", rec.Code)
	}
	if rec := doJSON(t, router, "POST", "/tasks/"+created.TaskID+"/complete", token, nil); rec.Code != http.StatusOK {
		// Concluir de novo é idempotente (completed→completed), não conflito.
		t.Fatalf("second complete: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestDashboardSentinelAndStats(t *testing.T) {
	router := newTestRouter(t, "")
	token := registerAndLogin(t, router, "alice")

	rec := doJSON(t, router, "GET", "/dashboard", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d", rec.Code)
	}
	var dash struct {
		Username    string          `json:"username"`
		Tasks       []models.Task   `json:"tasks"`
		TaskHistory json.RawMessage `json:"task_history"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	var sentinel string
	if err := json.Unmarshal(dash.TaskHistory, &sentinel); err != nil {
		t.Fatalf("expected string sentinel without history, got %s", dash.TaskHistory)
	}
	if sentinel != storage.NoTaskHistoryMessage {
		t.Fatalf("unexpected sentinel: %q", sentinel)
	}

	if rec := doJSON(t, router, "POST", "/tasks", token, map[string]interface{}{"title": "One"}); rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", rec.Code)
	}

	rec = doJSON(t, router, "GET", "/dashboard", token, nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	var stats models.TaskStats
	if err := json.Unmarshal(dash.TaskHistory, &stats); err != nil {
		t.Fatalf("expected stats record with history, got %s", dash.TaskHistory)
	}
	if stats.Total != 1 || stats.Pending != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRebalanceSuggestsWithoutPersisting(t *testing.T) {
	router := newTestRouter(t, "")
	token := registerAndLogin(t, router, "alice")

	for _, title := range []string{"A", "B", "C", "D"} {
		rec := doJSON(t, router, "POST", "/tasks", token, map[string]interface{}{
			"title":    title,
			"priority": "low",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %s: expected 201, got %d", title, rec.Code)
		}
	}

	rec := doJSON(t, router, "POST", "/tasks/rebalance", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("rebalance: expected 200, got %d", rec.Code)
	}
	var resp struct {
		Tasks []models.Task `json:"tasks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode rebalance: %v", err)
	}
	if len(resp.Tasks) != 4 {
		t.Fatalf("expected 4 suggestions, got %d", len(resp.Tasks))
	}
	if resp.Tasks[0].Priority != models.PriorityHigh {
		t.Fatalf("expected first suggestion high, got %q", resp.Tasks[0].Priority)
	}

	// As prioridades armazenadas não mudam.
	rec = doJSON(t, router, "GET", "/tasks", token, nil)
	var stored []models.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &stored); err != nil {
		t.Fatalf("decode task list: %v", err)
	}
	for _, task := range stored {
		if task.Priority != models.PriorityLow {
			t.Fatalf("rebalance must not persist, task %q became %q", task.Title, task.Priority)
		}
	}
}

func TestRecommendEndpoint(t *testing.T) {
	response := "```json\n{\"tasks\":[{\"title\":\"Stretch\",\"priority\":\"low\"}],\"reasoning\":\"take a break\",\"next_steps\":[\"Start now\"]}\n```"
	router := newTestRouter(t, response)
	token := registerAndLogin(t, router, "alice")

	if rec := doJSON(t, router, "POST", "/recommend", token, map[string]string{"query": "  "}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on empty query, got %d", rec.Code)
	}

	rec := doJSON(t, router, "POST", "/recommend", token, map[string]string{"query": "plan my afternoon"})
	if rec.Code != http.StatusOK {
		t.Fatalf("recommend: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Tasks     []models.RecommendedTask `json:"tasks"`
		Reasoning string                   `json:"reasoning"`
		Degraded  bool                     `json:"degraded"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode recommend: %v", err)
	}
	if resp.Degraded {
		t.Fatalf("expected non-degraded response")
	}
	if len(resp.Tasks) != 1 || resp.Tasks[0].Title != "Stretch" {
		t.Fatalf("unexpected recommendation: %+v", resp.Tasks)
	}

	// As tarefas recomendadas ficam persistidas como pendentes.
	rec = doJSON(t, router, "GET", "/tasks", token, nil)
	var stored []models.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &stored); err != nil {
		t.Fatalf("decode task list: %v", err)
	}
	if len(stored) != 1 || stored[0].Status != models.StatusPending {
		t.Fatalf("expected recommended task persisted as pending, got %+v", stored)
	}
}
