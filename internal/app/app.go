// Package app assembles the pieces shared by the server and the fetch command.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vzy-dashboard/backend/internal/config"
	"github.com/vzy-dashboard/backend/internal/jira"
	"github.com/vzy-dashboard/backend/internal/kpi"
	"github.com/vzy-dashboard/backend/internal/models"
	"github.com/vzy-dashboard/backend/internal/report"
	"github.com/vzy-dashboard/backend/internal/service"
)

// Sink writes into OutputDir and, when S3_ENDPOINT is set, mirrors every
// document into the bucket.
func Sink(ctx context.Context, cfg config.Config, log zerolog.Logger) (report.Sink, error) {
	files := report.FileSink{Dir: cfg.OutputDir}
	if !cfg.ObjectMirrorEnabled() {
		return files, nil
	}
	obj, err := report.NewObjectSink(report.ObjectConfig{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		Prefix:    cfg.S3Prefix,
		Region:    cfg.S3Region,
		UseSSL:    cfg.S3UseSSL,
	})
	if err != nil {
		return nil, err
	}
	if err := obj.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	log.Info().Str("bucket", cfg.S3Bucket).Str("endpoint", cfg.S3Endpoint).Msg("mirroring reports to object storage")
	return report.MultiSink{files, obj}, nil
}

// Runner validates the Jira settings and builds a pipeline runner.
func Runner(cfg config.Config, writer report.Writer, log zerolog.Logger) (*service.Runner, error) {
	if err := cfg.ValidateJira(); err != nil {
		return nil, err
	}
	client := jira.NewClient(jira.Options{
		BaseURL:   cfg.JiraBaseURL(),
		Email:     cfg.JiraEmail,
		APIToken:  cfg.JiraAPIToken,
		PageSize:  cfg.JiraPageSize,
		RateLimit: cfg.JiraRateLimit,
		Timeout:   cfg.HTTPTimeout,
	}, log)
	return &service.Runner{
		Source:   client,
		Writer:   writer,
		Taxonomy: service.DefaultTaxonomy(),
		Project:  cfg.JiraProjectKey,
		JQL:      cfg.JQL(),
		Logger:   log,
	}, nil
}

// KPICollector wires the Firebase and CrUX sources into a collector writing
// through writer.
func KPICollector(cfg config.Config, writer report.Writer, log zerolog.Logger) *kpi.Collector {
	c := &kpi.Collector{
		Dir:    cfg.OutputDir,
		Writer: writer,
		Apps: kpi.FirebaseSource{
			ProjectID:       cfg.FirebaseProjectID,
			CredentialsJSON: cfg.FirebaseCredentialsJSON,
			Apps:            kpi.DefaultApps(),
			Log:             log,
		},
		Log: log,
	}
	if cfg.CrUXAPIKey != "" {
		c.Web = kpi.CrUXClient{APIKey: cfg.CrUXAPIKey, Origin: cfg.WebOrigin, Log: log}
	} else {
		log.Info().Msg("CRUX_API_KEY not set, skipping web vitals fetch")
	}
	return c
}

// Describe renders a one-line status for a KPI collector outcome.
func Describe(outcome kpi.Outcome, doc models.KPIDocument) string {
	return fmt.Sprintf("KPI document %s (%d app targets, %d web targets)", outcome, len(doc.Apps), len(doc.Web))
}
