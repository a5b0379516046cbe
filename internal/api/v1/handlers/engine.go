package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"whisper-bridge/internal/api/v1/services"
)

// EngineHandler lists transcription engines
type EngineHandler struct {
	service services.EngineService
}

// NewEngineHandler creates a new engine handler
func NewEngineHandler(service services.EngineService) *EngineHandler {
	return &EngineHandler{service: service}
}

// List handles GET /api/engines
func (h *EngineHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"engines": h.service.ListEngines(c.Request.Context())})
}
