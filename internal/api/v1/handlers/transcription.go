package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"whisper-bridge/internal/api/v1/dto"
	"whisper-bridge/internal/api/v1/services"
	"whisper-bridge/internal/app/bridge"
)

// TranscriptionHandler handles POST /api/transcribe
type TranscriptionHandler struct {
	service        services.TranscriptionService
	maxUploadBytes int64
	timeout        time.Duration
	logger         *zap.Logger
}

// NewTranscriptionHandler creates a new transcription handler
func NewTranscriptionHandler(service services.TranscriptionService, maxUploadBytes int64, timeout time.Duration, logger *zap.Logger) *TranscriptionHandler {
	return &TranscriptionHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		timeout:        timeout,
		logger:         logger,
	}
}

// Transcribe accepts a multipart "audio" field and returns its segments.
func (h *TranscriptionHandler) Transcribe(c *gin.Context) {
	file, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "No audio file provided"})
		return
	}

	if file.Size > h.maxUploadBytes {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: fmt.Sprintf("File too large (max %dMB)", h.maxUploadBytes>>20),
		})
		return
	}

	tmpDir, err := os.MkdirTemp("", "audio-upload")
	if err != nil {
		h.logger.Error("Error creating temp dir", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create temp directory"})
		return
	}
	defer os.RemoveAll(tmpDir)

	name := filepath.Base(file.Filename)
	if name == "." || name == string(filepath.Separator) {
		name = "audio"
	}
	audioPath := filepath.Join(tmpDir, name)
	if err := c.SaveUploadedFile(file, audioPath); err != nil {
		h.logger.Error("Error saving uploaded file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to save uploaded file"})
		return
	}

	resp, err := h.service.Transcribe(c.Request.Context(), &dto.TranscribeRequest{
		AudioPath: audioPath,
		FileName:  name,
		Size:      file.Size,
		WorkDir:   tmpDir,
	})
	if err != nil {
		_ = c.Error(err)
		status, body := h.errorResponse(err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *TranscriptionHandler) errorResponse(err error) (int, dto.ErrorResponse) {
	var (
		runErr   *bridge.RunError
		readErr  *bridge.ReadError
		parseErr *bridge.ParseError
		envErr   *services.EnvelopeError
	)

	switch {
	case errors.Is(err, bridge.ErrTimeout):
		return http.StatusRequestTimeout, dto.ErrorResponse{
			Error: fmt.Sprintf("Transcription timed out (%s limit)", describeLimit(h.timeout)),
		}
	case errors.As(err, &runErr):
		return http.StatusInternalServerError, dto.ErrorResponse{Error: runErr.Error(), Output: runErr.Output}
	case errors.As(err, &readErr):
		return http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Failed to read transcription results",
			Details: readErr.Err.Error(),
		}
	case errors.As(err, &parseErr):
		return http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Failed to parse transcription output",
			Details: parseErr.Err.Error(),
		}
	case errors.As(err, &envErr):
		return http.StatusInternalServerError, dto.ErrorResponse{Error: envErr.Message}
	default:
		return http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()}
	}
}

// describeLimit renders 3m as "3 minutes".
func describeLimit(d time.Duration) string {
	if d > 0 && d%time.Minute == 0 {
		if n := int(d / time.Minute); n != 1 {
			return fmt.Sprintf("%d minutes", n)
		}
		return "1 minute"
	}
	return d.String()
}
