package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/vzy-dashboard/backend/internal/service"
)

const runTimeout = 10 * time.Minute

type runner interface {
	Run(ctx context.Context) (service.RunSummary, error)
}

// Cron refreshes the dashboard on a schedule.
type Cron struct {
	log    zerolog.Logger
	runner runner
	c      *cron.Cron
}

func NewCron(spec, tz string, r runner, log zerolog.Logger) (*Cron, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", tz, err)
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{log})),
	)
	cr := &Cron{log: log, runner: r, c: c}
	if _, err := c.AddFunc(spec, cr.refresh); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", spec, err)
	}
	return cr, nil
}

func (cr *Cron) Start() { cr.c.Start() }

// Stop waits for a running refresh to finish or ctx to end.
func (cr *Cron) Stop(ctx context.Context) {
	done := cr.c.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (cr *Cron) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	cr.log.Info().Msg("cron: dashboard refresh")
	summary, err := cr.runner.Run(ctx)
	if errors.Is(err, service.ErrRunInProgress) {
		cr.log.Info().Msg("cron: refresh already running")
		return
	}
	if err != nil {
		cr.log.Error().Err(err).Str("run_id", summary.RunID).Msg("cron: refresh failed")
		return
	}
	cr.log.Info().Str("run_id", summary.RunID).Interface("counts", summary.Counts).Msg("cron: refresh done")
}

type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
