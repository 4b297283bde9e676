package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vzy-dashboard/backend/internal/models"
)

const TimestampLayout = "2006-01-02T15:04:05Z"

var ErrRunInProgress = errors.New("a dashboard refresh is already running")

type IssueSource interface {
	FetchAll(ctx context.Context, jql string) ([]models.Issue, error)
}

type ReportWriter interface {
	WriteDashboard(ctx context.Context, doc models.DashboardReport) error
	WriteDetail(ctx context.Context, doc models.DetailReport) error
}

// RunHistory records runs. Failures are logged and never fail the run.
type RunHistory interface {
	CreateRun(ctx context.Context, id string, startedAt time.Time) error
	FinishRun(ctx context.Context, id string, status string, summary []byte) error
	SaveSnapshot(ctx context.Context, snap models.Snapshot) error
}

type RunObserver interface {
	RecordRun(ctx context.Context, status string, issues int, diag models.Diagnostics, elapsed time.Duration)
}

type Runner struct {
	Source   IssueSource
	Writer   ReportWriter
	Taxonomy Taxonomy
	Project  string
	JQL      string
	Logger   zerolog.Logger

	History    RunHistory
	Metrics    RunObserver
	OnComplete func(models.DashboardReport, models.DetailReport)
	Now        func() time.Time

	mu sync.Mutex
}

type RunSummary struct {
	RunID  string           `json:"run_id"`
	Events []map[string]any `json:"events"`
	Counts map[string]any   `json:"counts"`
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Run fetches every issue, builds both documents and hands them to the writer.
// Nothing is written when the fetch fails.
func (r *Runner) Run(ctx context.Context) (RunSummary, error) {
	if !r.mu.TryLock() {
		return RunSummary{}, ErrRunInProgress
	}
	defer r.mu.Unlock()

	summary := RunSummary{RunID: uuid.NewString(), Counts: map[string]any{}}
	start := r.now()
	log := r.Logger.With().Str("run_id", summary.RunID).Logger()

	if r.History != nil {
		if err := r.History.CreateRun(ctx, summary.RunID, start.UTC()); err != nil {
			log.Warn().Err(err).Msg("run history unavailable")
		}
	}

	summary, diag, issueCount, err := r.execute(ctx, summary, log)
	status := models.RunStatusSuccess
	if err != nil {
		status = models.RunStatusFailed
		summary.Events = append(summary.Events, map[string]any{
			"type":    "error",
			"message": err.Error(),
			"time":    r.now().UTC(),
		})
	}
	elapsed := r.now().Sub(start)
	summary.Counts["elapsed_ms"] = elapsed.Milliseconds()

	if r.Metrics != nil {
		r.Metrics.RecordRun(ctx, status, issueCount, diag, elapsed)
	}
	if r.History != nil {
		raw, _ := json.Marshal(summary)
		if herr := r.History.FinishRun(ctx, summary.RunID, status, raw); herr != nil {
			log.Warn().Err(herr).Msg("run history finish failed")
		}
	}
	return summary, err
}

func (r *Runner) execute(ctx context.Context, summary RunSummary, log zerolog.Logger) (RunSummary, models.Diagnostics, int, error) {
	issues, err := r.Source.FetchAll(ctx, r.JQL)
	if err != nil {
		return summary, models.Diagnostics{}, 0, fmt.Errorf("fetch issues: %w", err)
	}
	summary.Events = append(summary.Events, map[string]any{
		"type":    "fetch",
		"message": "Issues fetched",
		"count":   len(issues),
		"time":    r.now().UTC(),
	})

	matrix, diag := r.Taxonomy.BuildMatrix(issues)
	log.Info().
		Int("total_issues", diag.TotalIssues).
		Int("total_bugs", diag.TotalBugs).
		Int("matched_counted", diag.MatchedCounted).
		Int("status_untracked", diag.StatusUntracked).
		Int("platform_unmatched", diag.PlatformUnmatched).
		Interface("bug_statuses", diag.BugStatuses).
		Msg("fetch summary")

	updatedAt := r.now().UTC().Format(TimestampLayout)
	dash := models.DashboardReport{
		Data:               matrix,
		UpdatedAt:          updatedAt,
		TotalIssuesFetched: len(issues),
		Project:            r.Project,
	}
	if err := r.Writer.WriteDashboard(ctx, dash); err != nil {
		return summary, diag, len(issues), fmt.Errorf("write dashboard: %w", err)
	}

	detail := models.DetailReport{
		DetailedAggregate: r.Taxonomy.BuildDetail(issues),
		UpdatedAt:         updatedAt,
		TotalIssues:       len(issues),
	}
	if err := r.Writer.WriteDetail(ctx, detail); err != nil {
		return summary, diag, len(issues), fmt.Errorf("write detail: %w", err)
	}
	summary.Events = append(summary.Events, map[string]any{
		"type":    "write",
		"message": "Reports written",
		"time":    r.now().UTC(),
	})

	if r.History != nil {
		snap := models.Snapshot{
			RunID:       summary.RunID,
			Project:     r.Project,
			UpdatedAt:   r.now().UTC(),
			TotalIssues: len(issues),
			Matrix:      matrix,
			Diagnostics: diag,
		}
		if err := r.History.SaveSnapshot(ctx, snap); err != nil {
			log.Warn().Err(err).Msg("snapshot save failed")
		}
	}

	summary.Counts["issues_fetched"] = len(issues)
	summary.Counts["total_bugs"] = diag.TotalBugs
	summary.Counts["matched_counted"] = diag.MatchedCounted
	summary.Counts["status_untracked"] = diag.StatusUntracked
	summary.Counts["platform_unmatched"] = diag.PlatformUnmatched
	summary.Counts["bugs"] = len(detail.Bugs)
	summary.Counts["tasks"] = len(detail.Tasks)
	summary.Counts["subtasks"] = len(detail.Subtasks)
	summary.Counts["stories"] = len(detail.Stories)
	summary.Counts["releases"] = len(detail.Releases)
	summary.Counts["sprints"] = len(detail.Sprints)

	if r.OnComplete != nil {
		r.OnComplete(dash, detail)
	}
	return summary, diag, len(issues), nil
}
