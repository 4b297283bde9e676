package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vzy-dashboard/backend/internal/models"
	"github.com/vzy-dashboard/backend/internal/service"
)

const defaultIssueLimit = 100

type issuesQuery struct {
	service.IssueFilter
	Limit  int `form:"limit" validate:"omitempty,min=1,max=500"`
	Offset int `form:"offset" validate:"omitempty,min=0"`
}

type IssuesPage struct {
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
	Items  []models.IssueSummary `json:"items"`
}

// @Summary Platform x status bug matrix
// @Tags reports
// @Produce json
// @Success 200 {object} models.DashboardReport
// @Failure 404 {object} map[string]any
// @Router /api/dashboard [get]
func (h *Handler) Dashboard(c *gin.Context) {
	dash, ok := h.Reports.Dashboard()
	if !ok {
		notReady(c)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// @Summary Detailed issue document
// @Tags reports
// @Produce json
// @Success 200 {object} models.DetailReport
// @Failure 404 {object} map[string]any
// @Router /api/details [get]
func (h *Handler) Details(c *gin.Context) {
	detail, ok := h.Reports.Detail()
	if !ok {
		notReady(c)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// @Summary Search issues
// @Tags reports
// @Produce json
// @Param type query string false "bugs|tasks|subtasks|stories"
// @Param platform query string false "Platform"
// @Param status query string false "Status name"
// @Param assignee query string false "Assignee display name"
// @Param sprint query string false "Sprint name"
// @Param fixversion query string false "Fix version name"
// @Param q query string false "Text in key or summary"
// @Param limit query int false "Page size (max 500)"
// @Param offset query int false "Offset"
// @Success 200 {object} IssuesPage
// @Failure 400 {object} map[string]any
// @Router /api/issues [get]
func (h *Handler) Issues(c *gin.Context) {
	var q issuesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid query", err.Error())
		return
	}
	if err := h.Validator.Struct(q); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	detail, ok := h.Reports.Detail()
	if !ok {
		notReady(c)
		return
	}
	if q.Limit == 0 {
		q.Limit = defaultIssueLimit
	}

	all := service.FilterIssues(detail.DetailedAggregate, q.IssueFilter)
	page := IssuesPage{Total: len(all), Limit: q.Limit, Offset: q.Offset, Items: []models.IssueSummary{}}
	if q.Offset < len(all) {
		end := q.Offset + q.Limit
		if end > len(all) {
			end = len(all)
		}
		page.Items = all[q.Offset:end]
	}
	c.JSON(http.StatusOK, page)
}

// @Summary Releases by fix version
// @Tags reports
// @Produce json
// @Success 200 {object} map[string]models.ReleaseStats
// @Router /api/releases [get]
func (h *Handler) Releases(c *gin.Context) {
	detail, ok := h.Reports.Detail()
	if !ok {
		notReady(c)
		return
	}
	c.JSON(http.StatusOK, detail.Releases)
}

// @Summary One release
// @Tags reports
// @Produce json
// @Param name path string true "Fix version name"
// @Success 200 {object} models.ReleaseStats
// @Failure 404 {object} map[string]any
// @Router /api/releases/{name} [get]
func (h *Handler) Release(c *gin.Context) {
	detail, ok := h.Reports.Detail()
	if !ok {
		notReady(c)
		return
	}
	rel, ok := detail.Releases[c.Param("name")]
	if !ok {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Release not found", nil)
		return
	}
	c.JSON(http.StatusOK, rel)
}

// @Summary Sprints
// @Tags reports
// @Produce json
// @Success 200 {object} map[string]models.SprintStats
// @Router /api/sprints [get]
func (h *Handler) Sprints(c *gin.Context) {
	detail, ok := h.Reports.Detail()
	if !ok {
		notReady(c)
		return
	}
	c.JSON(http.StatusOK, detail.Sprints)
}

// @Summary Assignee workload
// @Tags reports
// @Produce json
// @Success 200 {object} map[string]models.TypeCounts
// @Router /api/workload [get]
func (h *Handler) Workload(c *gin.Context) {
	detail, ok := h.Reports.Detail()
	if !ok {
		notReady(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"assignee_workload":  detail.AssigneeWorkload,
		"priority_breakdown": detail.PriorityBreakdown,
	})
}

// @Summary KPI document
// @Tags reports
// @Produce json
// @Success 200 {object} models.KPIDocument
// @Failure 404 {object} map[string]any
// @Router /api/kpi [get]
func (h *Handler) KPI(c *gin.Context) {
	doc, ok := h.Reports.KPI()
	if !ok {
		notReady(c)
		return
	}
	c.JSON(http.StatusOK, doc)
}
