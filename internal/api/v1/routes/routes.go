package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"whisper-bridge/internal/api/v1/handlers"
	"whisper-bridge/internal/api/v1/services"
)

// ServiceContainer holds all services needed by handlers
type ServiceContainer struct {
	TranscriptionService services.TranscriptionService
	HistoryService       services.HistoryService
	EngineService        services.EngineService

	MaxUploadBytes    int64
	TranscribeTimeout time.Duration
	Logger            *zap.Logger
}

// RegisterRoutes registers the /api routes
func RegisterRoutes(router *gin.RouterGroup, container *ServiceContainer) {
	transcriptionHandler := handlers.NewTranscriptionHandler(
		container.TranscriptionService,
		container.MaxUploadBytes,
		container.TranscribeTimeout,
		container.Logger,
	)
	router.POST("/transcribe", transcriptionHandler.Transcribe)

	if container.HistoryService != nil {
		historyHandler := handlers.NewHistoryHandler(container.HistoryService)
		history := router.Group("/history")
		{
			history.GET("", historyHandler.List)
			history.GET("/export", historyHandler.Export)
		}
	}

	if container.EngineService != nil {
		engineHandler := handlers.NewEngineHandler(container.EngineService)
		router.GET("/engines", engineHandler.List)
	}
}
