package handlers

import (
	"net/http"
	"strconv"
	"strings"

	apperrors "techsupport-agent/errors"
	"techsupport-agent/types"
	"techsupport-agent/web/middleware"
	"techsupport-agent/web/services"
	webtypes "techsupport-agent/web/types"
	"techsupport-agent/web/views"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

type AskHandler struct {
	service *services.AskService
	logger  *zap.Logger
}

func NewAskHandler(service *services.AskService, logger *zap.Logger) *AskHandler {
	return &AskHandler{
		service: service,
		logger:  logger,
	}
}

// Ask handles POST /api/ask.
func (h *AskHandler) Ask(c *gin.Context) {
	var req webtypes.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "request body must be JSON with a question field")
		return
	}

	req.RequestID = middleware.RequestID(c)
	resp, err := h.service.Ask(c.Request.Context(), req)
	if err != nil {
		h.respondAskError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AskForm handles POST /ask and returns an HTML fragment.
func (h *AskHandler) AskForm(c *gin.Context) {
	var req webtypes.AskRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderFragment(c, http.StatusBadRequest, views.ErrorMessage("Please enter a question."))
		return
	}

	req.RequestID = middleware.RequestID(c)
	resp, err := h.service.Ask(c.Request.Context(), req)
	if err != nil {
		if apperrors.IsInvalidInput(err) {
			h.renderFragment(c, http.StatusBadRequest, views.ErrorMessage(clientMessage(err)))
			return
		}
		h.logger.Error("Request failed", zap.Error(err))
		h.renderFragment(c, http.StatusInternalServerError, views.ErrorMessage("Something went wrong. Please try again."))
		return
	}

	answers := make([]types.Answer, len(resp.Answers))
	for i, a := range resp.Answers {
		answers[i] = a.Answer
	}
	h.renderFragment(c, http.StatusOK, views.AnswerList(resp.Analysis.Question, answers))
}

// History handles GET /api/history?limit=N.
func (h *AskHandler) History(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondWithClientError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}
	c.JSON(http.StatusOK, gin.H{"history": h.service.History(c.Request.Context(), limit)})
}

func (h *AskHandler) respondAskError(c *gin.Context, err error) {
	if apperrors.IsInvalidInput(err) {
		respondWithClientError(c, http.StatusBadRequest, clientMessage(err))
		return
	}
	respondWithError(c, http.StatusInternalServerError, err, "failed to answer question", h.logger)
}

func (h *AskHandler) renderFragment(c *gin.Context, status int, component templ.Component) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		h.logger.Error("Failed to render fragment", zap.Error(err))
	}
}

// clientMessage strips the sentinel suffix from validation errors.
func clientMessage(err error) string {
	return strings.TrimSuffix(err.Error(), ": "+apperrors.ErrInvalidInput.Error())
}
