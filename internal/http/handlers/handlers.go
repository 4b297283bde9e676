package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/vzy-dashboard/backend/internal/ai"
	"github.com/vzy-dashboard/backend/internal/models"
	"github.com/vzy-dashboard/backend/internal/report"
	"github.com/vzy-dashboard/backend/internal/service"
)

type Refresher interface {
	Run(ctx context.Context) (service.RunSummary, error)
}

type RunStore interface {
	Ping(ctx context.Context) error
	GetLatestRun(ctx context.Context) (models.Run, error)
	ListRuns(ctx context.Context, limit int) ([]models.Run, error)
	GetSnapshot(ctx context.Context, runID string) (models.Snapshot, error)
}

type Handler struct {
	Reports   *report.Cache
	Runner    Refresher
	History   RunStore
	Assistant ai.Assistant
	Validator *validator.Validate
	Logger    zerolog.Logger
}

// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	if h.History != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := h.History.Ping(ctx); err != nil {
			writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
			return
		}
	}
	_, ready := h.Reports.Dashboard()
	c.JSON(http.StatusOK, gin.H{"status": "ok", "reports_ready": ready})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

func notReady(c *gin.Context) {
	writeError(c, http.StatusNotFound, "NOT_READY", "No report has been generated yet", nil)
}
