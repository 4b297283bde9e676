package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vzy-dashboard/backend/internal/ai"
)

type ChatRequest struct {
	Message string           `json:"message" validate:"required,max=2000"`
	History []ai.ChatMessage `json:"history" validate:"max=20,dive"`
}

type ChatResponse struct {
	Answer    string `json:"answer"`
	UpdatedAt string `json:"updated_at"`
}

// @Summary Ask about the dashboard
// @Tags assistant
// @Accept json
// @Produce json
// @Param body body ChatRequest true "Question"
// @Success 200 {object} ChatResponse
// @Failure 429 {object} map[string]any
// @Router /api/assistant/chat [post]
func (h *Handler) AssistantChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	dash, okDash := h.Reports.Dashboard()
	detail, okDetail := h.Reports.Detail()
	if !okDash || !okDetail {
		notReady(c)
		return
	}

	history := make([]ai.ChatMessage, 0, len(req.History)+1)
	history = append(history, ai.ChatMessage{Role: "system", Content: systemPrompt + ai.BuildContext(dash, detail)})
	for _, m := range req.History {
		if m.Role != "system" {
			history = append(history, m)
		}
	}

	answer, err := h.Assistant.Ask(c.Request.Context(), req.Message, history)
	if err != nil {
		var rl ai.RateLimitError
		if errors.As(err, &rl) {
			writeError(c, http.StatusTooManyRequests, "RATE_LIMITED", "Assistant is rate limited", gin.H{"retry_after_seconds": int(rl.RetryAfter.Seconds())})
			return
		}
		h.Logger.Error().Err(err).Msg("assistant failed")
		writeError(c, http.StatusBadGateway, "ASSISTANT_ERROR", "Assistant request failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, ChatResponse{Answer: answer, UpdatedAt: dash.UpdatedAt})
}

const systemPrompt = "You answer questions about the VZY bug dashboard. Use only the data below and say so when it does not cover the question.\n\n"
