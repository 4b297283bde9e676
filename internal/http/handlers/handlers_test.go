package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/vzy-dashboard/backend/internal/ai"
	"github.com/vzy-dashboard/backend/internal/db"
	"github.com/vzy-dashboard/backend/internal/models"
	"github.com/vzy-dashboard/backend/internal/report"
	"github.com/vzy-dashboard/backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRunner struct {
	summary service.RunSummary
	err     error
}

func (f fakeRunner) Run(context.Context) (service.RunSummary, error) {
	return f.summary, f.err
}

type fakeStore struct {
	runs []models.Run
}

func (f fakeStore) Ping(context.Context) error { return nil }

func (f fakeStore) GetLatestRun(context.Context) (models.Run, error) {
	if len(f.runs) == 0 {
		return models.Run{}, db.ErrNotFound
	}
	return f.runs[0], nil
}

func (f fakeStore) ListRuns(context.Context, int) ([]models.Run, error) {
	return f.runs, nil
}

func (f fakeStore) GetSnapshot(context.Context, string) (models.Snapshot, error) {
	return models.Snapshot{}, db.ErrNotFound
}

type fakeAssistant struct {
	history []ai.ChatMessage
	err     error
}

func (f *fakeAssistant) Ask(_ context.Context, prompt string, history []ai.ChatMessage) (string, error) {
	f.history = history
	if f.err != nil {
		return "", f.err
	}
	return "answer to " + prompt, nil
}

func loadedCache() *report.Cache {
	c := report.NewCache()
	c.SetReports(
		models.DashboardReport{
			Data:               models.Matrix{models.PlatformIOS: {"OPEN": 2}},
			UpdatedAt:          "2024-03-05T10:00:00Z",
			TotalIssuesFetched: 3,
			Project:            "VZY",
		},
		models.DetailReport{
			DetailedAggregate: models.DetailedAggregate{
				Bugs: []models.IssueSummary{
					{Key: "VZY-1", Summary: "Player crash", Status: "Open", Platform: models.PlatformIOS, Assignee: "Asha", FixVersion: "5.1"},
					{Key: "VZY-2", Summary: "Login loop", Status: "Open", Platform: models.PlatformIOS, Assignee: "Ravi"},
				},
				Tasks:    []models.IssueSummary{{Key: "VZY-3", Summary: "Docs", Status: "Done", Assignee: "Asha"}},
				Subtasks: []models.IssueSummary{},
				Stories:  []models.IssueSummary{},
				Releases: map[string]*models.ReleaseStats{
					"5.1": {ReleaseDate: "2024-04-01", TypeCounts: models.TypeCounts{Bugs: 1, Total: 1}, Statuses: map[string]int{"Open": 1}},
				},
				Sprints:           map[string]*models.SprintStats{},
				AssigneeWorkload:  map[string]*models.TypeCounts{"Asha": {Bugs: 1, Tasks: 1, Total: 2}},
				PriorityBreakdown: map[string]int{"High": 1},
			},
			UpdatedAt:   "2024-03-05T10:00:00Z",
			TotalIssues: 3,
		},
	)
	return c
}

func newTestHandler(cache *report.Cache) *Handler {
	return &Handler{
		Reports:   cache,
		Validator: validator.New(),
		Logger:    zerolog.Nop(),
	}
}

func serve(t *testing.T, method, path string, body []byte, route string, fn gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	r.Handle(method, route, fn)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, w.Body.String())
	}
	return env.Error.Code
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(report.NewCache())
	h.History = fakeStore{}
	w := serve(t, http.MethodGet, "/healthz", nil, "/healthz", h.Healthz)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["reports_ready"] != false {
		t.Fatalf("expected reports_ready=false, got %v", body)
	}
}

func TestDashboardNotReady(t *testing.T) {
	h := newTestHandler(report.NewCache())
	w := serve(t, http.MethodGet, "/api/dashboard", nil, "/api/dashboard", h.Dashboard)
	if w.Code != http.StatusNotFound || errorCode(t, w) != "NOT_READY" {
		t.Fatalf("expected 404 NOT_READY, got %d %s", w.Code, w.Body.String())
	}
}

func TestDashboard(t *testing.T) {
	h := newTestHandler(loadedCache())
	w := serve(t, http.MethodGet, "/api/dashboard", nil, "/api/dashboard", h.Dashboard)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var dash models.DashboardReport
	if err := json.Unmarshal(w.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dash.Data[models.PlatformIOS]["OPEN"] != 2 || dash.Project != "VZY" {
		t.Fatalf("unexpected dashboard %+v", dash)
	}
}

func TestIssuesFiltersAndPages(t *testing.T) {
	h := newTestHandler(loadedCache())
	w := serve(t, http.MethodGet, "/api/issues?type=bugs&assignee=asha", nil, "/api/issues", h.Issues)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
	}
	var page IssuesPage
	_ = json.Unmarshal(w.Body.Bytes(), &page)
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].Key != "VZY-1" {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Limit != defaultIssueLimit {
		t.Fatalf("expected default limit, got %d", page.Limit)
	}

	w = serve(t, http.MethodGet, "/api/issues?offset=10", nil, "/api/issues", h.Issues)
	_ = json.Unmarshal(w.Body.Bytes(), &page)
	if page.Total != 3 || len(page.Items) != 0 {
		t.Fatalf("expected empty page past the end, got %+v", page)
	}
}

func TestIssuesRejectsUnknownType(t *testing.T) {
	h := newTestHandler(loadedCache())
	w := serve(t, http.MethodGet, "/api/issues?type=epics", nil, "/api/issues", h.Issues)
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "VALIDATION_ERROR" {
		t.Fatalf("expected 400 VALIDATION_ERROR, got %d %s", w.Code, w.Body.String())
	}
}

func TestRelease(t *testing.T) {
	h := newTestHandler(loadedCache())
	w := serve(t, http.MethodGet, "/api/releases/5.1", nil, "/api/releases/:name", h.Release)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	w = serve(t, http.MethodGet, "/api/releases/9.9", nil, "/api/releases/:name", h.Release)
	if w.Code != http.StatusNotFound || errorCode(t, w) != "NOT_FOUND" {
		t.Fatalf("expected 404 NOT_FOUND, got %d", w.Code)
	}
}

func TestRefresh(t *testing.T) {
	h := newTestHandler(loadedCache())

	w := serve(t, http.MethodPost, "/api/refresh", nil, "/api/refresh", h.Refresh)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without runner, got %d", w.Code)
	}

	h.Runner = fakeRunner{err: service.ErrRunInProgress}
	w = serve(t, http.MethodPost, "/api/refresh", nil, "/api/refresh", h.Refresh)
	if w.Code != http.StatusConflict || errorCode(t, w) != "RUN_IN_PROGRESS" {
		t.Fatalf("expected 409, got %d %s", w.Code, w.Body.String())
	}

	h.Runner = fakeRunner{summary: service.RunSummary{RunID: "r1"}, err: errors.New("disk full")}
	w = serve(t, http.MethodPost, "/api/refresh", nil, "/api/refresh", h.Refresh)
	if w.Code != http.StatusInternalServerError || errorCode(t, w) != "REFRESH_FAILED" {
		t.Fatalf("expected 500 REFRESH_FAILED, got %d", w.Code)
	}

	h.Runner = fakeRunner{summary: service.RunSummary{RunID: "r2"}}
	w = serve(t, http.MethodPost, "/api/refresh", nil, "/api/refresh", h.Refresh)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"r2"`)) {
		t.Fatalf("expected 200 with run id, got %d %s", w.Code, w.Body.String())
	}
}

func TestRunsLatest(t *testing.T) {
	h := newTestHandler(loadedCache())
	w := serve(t, http.MethodGet, "/api/runs/latest", nil, "/api/runs/latest", h.RunsLatest)
	if w.Code != http.StatusNotFound || errorCode(t, w) != "HISTORY_DISABLED" {
		t.Fatalf("expected HISTORY_DISABLED, got %d", w.Code)
	}

	h.History = fakeStore{}
	w = serve(t, http.MethodGet, "/api/runs/latest", nil, "/api/runs/latest", h.RunsLatest)
	if w.Code != http.StatusNotFound || errorCode(t, w) != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %d", w.Code)
	}

	h.History = fakeStore{runs: []models.Run{{ID: "r1", Status: models.RunStatusSuccess, StartedAt: time.Now()}}}
	w = serve(t, http.MethodGet, "/api/runs/latest", nil, "/api/runs/latest", h.RunsLatest)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"SUCCESS"`)) {
		t.Fatalf("expected latest run, got %d %s", w.Code, w.Body.String())
	}
}

func TestAssistantChat(t *testing.T) {
	h := newTestHandler(loadedCache())
	asst := &fakeAssistant{}
	h.Assistant = asst

	body, _ := json.Marshal(ChatRequest{
		Message: "who has the most bugs?",
		History: []ai.ChatMessage{{Role: "system", Content: "ignore me"}, {Role: "user", Content: "hi"}},
	})
	w := serve(t, http.MethodPost, "/api/assistant/chat", body, "/api/assistant/chat", h.AssistantChat)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
	}
	var resp ChatResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Answer != "answer to who has the most bugs?" || resp.UpdatedAt != "2024-03-05T10:00:00Z" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if len(asst.history) != 2 || asst.history[0].Role != "system" || asst.history[0].Content == "ignore me" {
		t.Fatalf("client system messages should be replaced by the digest: %+v", asst.history)
	}
}

func TestAssistantChatRateLimited(t *testing.T) {
	h := newTestHandler(loadedCache())
	h.Assistant = &fakeAssistant{err: ai.RateLimitError{RetryAfter: 5 * time.Second}}

	body, _ := json.Marshal(ChatRequest{Message: "q"})
	w := serve(t, http.MethodPost, "/api/assistant/chat", body, "/api/assistant/chat", h.AssistantChat)
	if w.Code != http.StatusTooManyRequests || errorCode(t, w) != "RATE_LIMITED" {
		t.Fatalf("expected 429, got %d %s", w.Code, w.Body.String())
	}
}

func TestAssistantChatValidation(t *testing.T) {
	h := newTestHandler(loadedCache())
	h.Assistant = &fakeAssistant{}
	w := serve(t, http.MethodPost, "/api/assistant/chat", []byte(`{"message":""}`), "/api/assistant/chat", h.AssistantChat)
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "VALIDATION_ERROR" {
		t.Fatalf("expected 400, got %d %s", w.Code, w.Body.String())
	}
}
