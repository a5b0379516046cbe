package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	apierrors "whisper-bridge/internal/api/errors"
	"whisper-bridge/internal/api/middleware"
	"whisper-bridge/internal/api/v1/dto"
	"whisper-bridge/internal/api/v1/services"
)

// HistoryHandler serves recorded runs
type HistoryHandler struct {
	service services.HistoryService
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(service services.HistoryService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// List handles GET /api/history?limit=N
func (h *HistoryHandler) List(c *gin.Context) {
	var q dto.HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleError(c, apierrors.NewValidationError("Invalid query parameters", map[string]string{
			"limit": "must be an integer between 1 and 1000",
		}))
		return
	}

	resp, err := h.service.Recent(c.Request.Context(), q.Limit)
	if err != nil {
		middleware.HandleError(c, apierrors.WrapError(err, apierrors.KindInternal, "Failed to list history"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Export handles GET /api/history/export and returns an xlsx workbook
func (h *HistoryHandler) Export(c *gin.Context) {
	tmpDir, err := os.MkdirTemp("", "history-export")
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "history.xlsx")
	if err := h.service.Export(c.Request.Context(), path); err != nil {
		_ = c.Error(err)
		middleware.HandleError(c, apierrors.WrapError(err, apierrors.KindInternal, "Failed to export history"))
		return
	}
	c.FileAttachment(path, "whisper-bridge-history.xlsx")
}
