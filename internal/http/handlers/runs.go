package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vzy-dashboard/backend/internal/db"
	"github.com/vzy-dashboard/backend/internal/jira"
	"github.com/vzy-dashboard/backend/internal/service"
)

// @Summary Refresh the dashboard from Jira
// @Tags runs
// @Produce json
// @Success 200 {object} service.RunSummary
// @Failure 409 {object} map[string]any
// @Failure 502 {object} map[string]any
// @Router /api/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	if h.Runner == nil {
		writeError(c, http.StatusServiceUnavailable, "REFRESH_DISABLED", "Jira credentials are not configured", nil)
		return
	}
	summary, err := h.Runner.Run(c.Request.Context())
	if errors.Is(err, service.ErrRunInProgress) {
		writeError(c, http.StatusConflict, "RUN_IN_PROGRESS", "A refresh is already running", nil)
		return
	}
	if err != nil {
		h.Logger.Error().Err(err).Str("run_id", summary.RunID).Msg("refresh failed")
		var terr *jira.TransportError
		if errors.As(err, &terr) {
			writeError(c, http.StatusBadGateway, "JIRA_ERROR", "Jira request failed", gin.H{"status": terr.StatusCode, "run_id": summary.RunID})
			return
		}
		writeError(c, http.StatusInternalServerError, "REFRESH_FAILED", "Refresh failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary Latest run
// @Tags runs
// @Produce json
// @Success 200 {object} models.Run
// @Router /api/runs/latest [get]
func (h *Handler) RunsLatest(c *gin.Context) {
	if h.History == nil {
		writeError(c, http.StatusNotFound, "HISTORY_DISABLED", "Run history is not configured", nil)
		return
	}
	run, err := h.History.GetLatestRun(c.Request.Context())
	if errors.Is(err, db.ErrNotFound) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "No runs found", nil)
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load run", err.Error())
		return
	}
	c.JSON(http.StatusOK, run)
}

// @Summary Recent runs
// @Tags runs
// @Produce json
// @Param limit query int false "Max runs (default 50)"
// @Success 200 {array} models.Run
// @Router /api/runs [get]
func (h *Handler) Runs(c *gin.Context) {
	if h.History == nil {
		writeError(c, http.StatusNotFound, "HISTORY_DISABLED", "Run history is not configured", nil)
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	runs, err := h.History.ListRuns(c.Request.Context(), limit)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list runs", err.Error())
		return
	}
	c.JSON(http.StatusOK, runs)
}

// @Summary Matrix snapshot of a run
// @Tags runs
// @Produce json
// @Param id path string true "Run id"
// @Success 200 {object} models.Snapshot
// @Router /api/runs/{id}/snapshot [get]
func (h *Handler) RunSnapshot(c *gin.Context) {
	if h.History == nil {
		writeError(c, http.StatusNotFound, "HISTORY_DISABLED", "Run history is not configured", nil)
		return
	}
	snap, err := h.History.GetSnapshot(c.Request.Context(), c.Param("id"))
	if errors.Is(err, db.ErrNotFound) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Snapshot not found", nil)
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load snapshot", err.Error())
		return
	}
	c.JSON(http.StatusOK, snap)
}
