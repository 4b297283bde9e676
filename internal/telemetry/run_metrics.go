package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/vzy-dashboard/backend/internal/models"
)

// RunMetrics records one data point set per dashboard refresh.
type RunMetrics struct {
	runs     metric.Int64Counter
	issues   metric.Int64Counter
	bugs     metric.Int64Counter
	duration metric.Float64Histogram
}

func NewRunMetrics(m metric.Meter) (*RunMetrics, error) {
	runs, err := m.Int64Counter("dashboard.runs", metric.WithDescription("Dashboard refresh runs"))
	if err != nil {
		return nil, err
	}
	issues, err := m.Int64Counter("dashboard.issues.fetched", metric.WithDescription("Issues fetched from Jira"))
	if err != nil {
		return nil, err
	}
	bugs, err := m.Int64Counter("dashboard.bugs", metric.WithDescription("Bugs by tally outcome"))
	if err != nil {
		return nil, err
	}
	duration, err := m.Float64Histogram("dashboard.run.duration_ms", metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	return &RunMetrics{runs: runs, issues: issues, bugs: bugs, duration: duration}, nil
}

func (r *RunMetrics) RecordRun(ctx context.Context, status string, issues int, diag models.Diagnostics, elapsed time.Duration) {
	r.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	r.issues.Add(ctx, int64(issues))
	r.bugs.Add(ctx, int64(diag.MatchedCounted), metric.WithAttributes(attribute.String("outcome", "counted")))
	r.bugs.Add(ctx, int64(diag.StatusUntracked), metric.WithAttributes(attribute.String("outcome", "status_untracked")))
	r.bugs.Add(ctx, int64(diag.PlatformUnmatched), metric.WithAttributes(attribute.String("outcome", "platform_unmatched")))
	r.duration.Record(ctx, float64(elapsed.Milliseconds()))
}
