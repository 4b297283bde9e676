package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/vzy-dashboard/backend/internal/service"
)

type countingRunner struct {
	calls int
	err   error
}

func (r *countingRunner) Run(ctx context.Context) (service.RunSummary, error) {
	r.calls++
	if _, ok := ctx.Deadline(); !ok {
		return service.RunSummary{}, errors.New("expected a deadline")
	}
	return service.RunSummary{RunID: "r1"}, r.err
}

func TestNewCronRejectsBadSpec(t *testing.T) {
	if _, err := NewCron("not a spec", "UTC", &countingRunner{}, zerolog.Nop()); err == nil {
		t.Fatalf("expected invalid spec error")
	}
	if _, err := NewCron("*/30 * * * *", "Mars/Olympus", &countingRunner{}, zerolog.Nop()); err == nil {
		t.Fatalf("expected invalid location error")
	}
}

func TestRefreshRunsWithTimeout(t *testing.T) {
	r := &countingRunner{}
	cr, err := NewCron("*/30 * * * *", "Asia/Kolkata", r, zerolog.Nop())
	if err != nil {
		t.Fatalf("new cron: %v", err)
	}
	cr.refresh()
	r.err = service.ErrRunInProgress
	cr.refresh()
	if r.calls != 2 {
		t.Fatalf("expected 2 runs, got %d", r.calls)
	}
	cr.Start()
	cr.Stop(context.Background())
}
