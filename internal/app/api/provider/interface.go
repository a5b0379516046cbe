package provider

import (
	"context"
)

// TranscriptionProvider is the contract every transcription engine implements.
//
// LoadModel is called once before TranscriptWithOptions. Engines that keep the
// model in another process (a CLI binary, a remote server) only resolve and
// validate the name there.
type TranscriptionProvider interface {
	LoadModel(ctx context.Context, name string) error

	TranscriptWithOptions(ctx context.Context, request *TranscriptionRequest) (*TranscriptionResponse, error)

	GetProviderInfo() ProviderInfo

	ValidateConfiguration() error

	HealthCheck(ctx context.Context) error

	// Close releases the loaded model, if any
	Close() error
}
