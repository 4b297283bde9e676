package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/vzy-dashboard/backend/internal/models"
)

func sampleReports() (models.DashboardReport, models.DetailReport) {
	dash := models.DashboardReport{
		Project:            "VZY",
		UpdatedAt:          "2024-03-05T10:00:00Z",
		TotalIssuesFetched: 2,
		Data: models.Matrix{
			models.PlatformIOS: {"OPEN": 1, "PARKED": 0},
			models.PlatformWeb: {"OPEN": 0, "PARKED": 0},
		},
	}
	detail := models.DetailReport{
		DetailedAggregate: models.DetailedAggregate{
			Bugs: []models.IssueSummary{
				{Key: "VZY-1", Summary: "Login loop", Status: "Open", Platform: models.PlatformIOS, Priority: "High", Assignee: "Asha", Sprint: "No Sprint"},
				{Key: "VZY-2", Summary: "Old crash", Status: "Closed", Platform: models.PlatformWeb, Priority: "Low", Assignee: "Ravi", Sprint: "No Sprint"},
			},
			AssigneeWorkload: map[string]*models.TypeCounts{"Asha": {Bugs: 1, Total: 1}, "Ravi": {Bugs: 1, Total: 1}},
		},
	}
	return dash, detail
}

func TestBuildContext(t *testing.T) {
	ctx := BuildContext(sampleReports())
	if !strings.Contains(ctx, "- IOS: 1 (OPEN 1)") {
		t.Fatalf("missing platform line:\n%s", ctx)
	}
	if strings.Contains(ctx, "- WEB:") {
		t.Fatalf("platforms without bugs should be skipped:\n%s", ctx)
	}
	if !strings.Contains(ctx, "VZY-1") || strings.Contains(ctx, "VZY-2") {
		t.Fatalf("only open bugs should be listed:\n%s", ctx)
	}
}

func TestLocalAssistant(t *testing.T) {
	digest := BuildContext(sampleReports())
	answer, err := LocalAssistant{}.Ask(context.Background(), "What is Asha working on?", []ChatMessage{{Role: "system", Content: digest}})
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if !strings.Contains(answer, "Asha") || strings.Contains(answer, "Ravi") {
		t.Fatalf("unexpected answer: %s", answer)
	}

	answer, _ = LocalAssistant{}.Ask(context.Background(), "hello", nil)
	if answer == "" {
		t.Fatalf("expected a fallback answer")
	}
}

func TestOpenAICompatAssistantCachesAnswers(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/chat/completions" || r.Header.Get("Authorization") != "Bearer k" {
			t.Errorf("unexpected request %s %s", r.URL.Path, r.Header.Get("Authorization"))
		}
		var req completionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) != 2 || req.Messages[1].Content != "how many bugs?" {
			t.Errorf("unexpected messages %+v", req.Messages)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"one"}}]}`))
	}))
	defer srv.Close()

	a := &OpenAICompatAssistant{BaseURL: srv.URL, Model: "m", APIKey: "k"}
	history := []ChatMessage{{Role: "system", Content: "digest"}}
	for i := 0; i < 2; i++ {
		answer, err := a.Ask(context.Background(), "how many bugs?", history)
		if err != nil || answer != "one" {
			t.Fatalf("ask: %q %v", answer, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected cached second answer, got %d calls", calls)
	}
}

func TestOpenAICompatAssistantRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := &OpenAICompatAssistant{BaseURL: srv.URL, Model: "m"}
	_, err := a.Ask(context.Background(), "q", nil)
	var rl RateLimitError
	if !errors.As(err, &rl) || rl.RetryAfter != 7*time.Second {
		t.Fatalf("expected RateLimitError with 7s, got %v", err)
	}
}

func TestAnswerCacheSweepsExpiredEntries(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	c := &answerCache{now: func() time.Time { return now }}

	c.set("a", "1")
	c.set("b", "2")
	now = now.Add(answerTTL + time.Second)
	c.set("c", "3")

	if len(c.entries) != 1 {
		t.Fatalf("expected expired entries to be swept, have %d", len(c.entries))
	}
	if v, ok := c.get("c"); !ok || v != "3" {
		t.Fatalf("expected fresh entry, got %q %v", v, ok)
	}
}

func TestAnswerCacheIsBounded(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	c := &answerCache{now: func() time.Time { return now }}

	for i := 0; i < maxCachedAnswers+10; i++ {
		c.set(strconv.Itoa(i), "v")
		now = now.Add(time.Millisecond)
	}
	if len(c.entries) != maxCachedAnswers {
		t.Fatalf("expected %d entries, have %d", maxCachedAnswers, len(c.entries))
	}
	if _, ok := c.get("0"); ok {
		t.Fatalf("oldest entry should have been evicted")
	}
	if _, ok := c.get(strconv.Itoa(maxCachedAnswers + 9)); !ok {
		t.Fatalf("newest entry should be cached")
	}
}
