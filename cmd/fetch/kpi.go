package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vzy-dashboard/backend/internal/app"
	"github.com/vzy-dashboard/backend/internal/logger"
	"github.com/vzy-dashboard/backend/internal/report"
)

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Refresh kpi_data.json from Firebase and CrUX",
	Long: `kpi merges auto-fetched app and web metrics into the manual kpi_data.json.
Without credentials the manual document is kept as is, or a template is
written when none exists.`,
	RunE: runKPI,
}

func runKPI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Env, cfg.LogLevel, "dashboard-kpi")
	ctx := cmd.Context()

	sink, err := app.Sink(ctx, cfg, log)
	if err != nil {
		return err
	}
	collector := app.KPICollector(cfg, report.Writer{Sink: sink, Log: log}, log)
	outcome, doc, err := collector.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), passStyle.Render(app.Describe(outcome, doc)))
	return nil
}
