package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/vzy-dashboard/backend/internal/ai"
	"github.com/vzy-dashboard/backend/internal/app"
	"github.com/vzy-dashboard/backend/internal/config"
	"github.com/vzy-dashboard/backend/internal/db"
	httpapi "github.com/vzy-dashboard/backend/internal/http"
	"github.com/vzy-dashboard/backend/internal/http/handlers"
	"github.com/vzy-dashboard/backend/internal/jobs"
	"github.com/vzy-dashboard/backend/internal/logger"
	"github.com/vzy-dashboard/backend/internal/report"
	"github.com/vzy-dashboard/backend/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.Env, cfg.LogLevel, "dashboard-server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := telemetry.Init(ctx, telemetry.Options{
		Enabled:     cfg.OTelEnabled,
		Stdout:      cfg.OTelStdout,
		Endpoint:    cfg.OTelEndpoint,
		ServiceName: "dashboard-server",
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to init telemetry")
	}

	var store *db.Store
	if cfg.DatabaseURL != "" {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate db")
		}
		store, err = db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect db")
		}
		defer store.Close()
	} else {
		log.Info().Msg("DATABASE_URL not set, run history disabled")
	}

	sink, err := app.Sink(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init report sink")
	}
	writer := report.Writer{Sink: sink, Log: log}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.OutputDir).Msg("failed to create output dir")
	}
	cache := report.NewCache()
	if err := cache.LoadDir(cfg.OutputDir); err != nil {
		log.Warn().Err(err).Str("dir", cfg.OutputDir).Msg("failed to load existing reports")
	}
	if err := cache.Watch(ctx, cfg.OutputDir, log); err != nil {
		log.Warn().Err(err).Msg("report watcher disabled")
	}

	h := &handlers.Handler{
		Reports:   cache,
		Assistant: assistant(cfg, log),
		Validator: validator.New(),
		Logger:    log,
	}
	if store != nil {
		h.History = store
	}

	var cron *jobs.Cron
	runner, err := app.Runner(cfg, writer, log)
	if err != nil {
		var cerr *config.ConfigError
		if !errors.As(err, &cerr) {
			log.Fatal().Err(err).Msg("failed to init runner")
		}
		log.Warn().Strs("missing", cerr.Missing).Msg("Jira not configured, refresh disabled")
	} else {
		runner.OnComplete = cache.SetReports
		if store != nil {
			runner.History = store
		}
		metrics, err := telemetry.NewRunMetrics(telemetry.Meter())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init run metrics")
		}
		runner.Metrics = metrics
		h.Runner = runner

		cron, err = jobs.NewCron(cfg.FetchCron, cfg.TZ, runner, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init scheduler")
		}
		cron.Start()

		if cfg.FetchOnStart {
			go func() {
				if _, err := runner.Run(ctx); err != nil {
					log.Error().Err(err).Msg("startup refresh failed")
				}
			}()
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.Router(cfg, h, log),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if cron != nil {
		cron.Stop(ctxShutdown)
	}
	_ = srv.Shutdown(ctxShutdown)
	telemetry.Shutdown(ctxShutdown)
	log.Info().Msg("server stopped")
}

func assistant(cfg config.Config, log zerolog.Logger) ai.Assistant {
	if cfg.AssistantBaseURL == "" {
		log.Info().Msg("using local assistant")
		return ai.LocalAssistant{}
	}
	return &ai.OpenAICompatAssistant{
		BaseURL:   cfg.AssistantBaseURL,
		Model:     cfg.AssistantModel,
		APIKey:    cfg.AssistantAPIKey,
		MaxTokens: cfg.AssistantMaxTokens,
		HTTP:      &http.Client{Timeout: cfg.HTTPTimeout},
	}
}
