package services

import (
	"context"

	"whisper-bridge/internal/api/v1/dto"
	"whisper-bridge/internal/app/bridge"
	"whisper-bridge/internal/app/model"
)

// TranscriptionService runs uploaded audio through the bridge
type TranscriptionService interface {
	Transcribe(ctx context.Context, req *dto.TranscribeRequest) (*dto.TranscribeResponse, error)
}

// HistoryService reads recorded runs
type HistoryService interface {
	Recent(ctx context.Context, limit int) (*dto.HistoryResponse, error)
	// Export writes the runs as an xlsx workbook to path
	Export(ctx context.Context, path string) error
}

// EngineService reports which engines can be built
type EngineService interface {
	ListEngines(ctx context.Context) []bridge.EngineStatus
}

// BridgeRunner runs one transcription in a child process; *bridge.Client in production.
type BridgeRunner interface {
	Transcribe(ctx context.Context, input, output, modelName string) (*model.Envelope, error)
}
