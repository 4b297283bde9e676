package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vzy-dashboard/backend/internal/app"
	"github.com/vzy-dashboard/backend/internal/config"
	"github.com/vzy-dashboard/backend/internal/db"
	"github.com/vzy-dashboard/backend/internal/logger"
	"github.com/vzy-dashboard/backend/internal/report"
)

const credentialsMessage = "JIRA_EMAIL and JIRA_API_TOKEN environment variables required."

func runFetch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateJira(); err != nil {
		return err
	}
	log := logger.New(cfg.Env, cfg.LogLevel, "dashboard-fetch")
	ctx := cmd.Context()

	sink, err := app.Sink(ctx, cfg, log)
	if err != nil {
		return err
	}
	runner, err := app.Runner(cfg, report.Writer{Sink: sink, Log: log}, log)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL != "" {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			return err
		}
		store, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer store.Close()
		runner.History = store
	}

	summary, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, passStyle.Render("Dashboard updated")+" "+mutedStyle.Render(summary.RunID))
	keys := make([]string, 0, len(summary.Counts))
	for k := range summary.Counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  %s %v\n", boldStyle.Render(k+":"), summary.Counts[k])
	}
	return nil
}

// errorLine renders err for stderr. Missing Jira credentials always produce
// the same message so wrapper scripts can match it.
func errorLine(err error) string {
	var cerr *config.ConfigError
	if errors.As(err, &cerr) {
		if slices.Contains(cerr.Missing, "JIRA_EMAIL") || slices.Contains(cerr.Missing, "JIRA_API_TOKEN") {
			return "ERROR: " + credentialsMessage
		}
		return "ERROR: " + strings.Join(cerr.Missing, " and ") + " environment variables required."
	}
	return "ERROR: " + err.Error()
}
