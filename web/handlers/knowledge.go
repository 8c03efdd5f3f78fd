package handlers

import (
	"net/http"

	"techsupport-agent/reasoning"

	"github.com/gin-gonic/gin"
)

type KnowledgeHandler struct {
	engine *reasoning.Engine
}

func NewKnowledgeHandler(engine *reasoning.Engine) *KnowledgeHandler {
	return &KnowledgeHandler{engine: engine}
}

// Stats handles GET /api/knowledge.
func (h *KnowledgeHandler) Stats(c *gin.Context) {
	stats := h.engine.KnowledgeBase().Stats()
	c.JSON(http.StatusOK, gin.H{
		"categories": stats.Categories,
		"questions":  stats.Questions,
		"labels":     stats.Labels,
		"symptoms":   h.engine.Registry().Names(),
	})
}

// Health handles GET /healthz.
func (h *KnowledgeHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"questions": h.engine.KnowledgeBase().Len(),
	})
}
