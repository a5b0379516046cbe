package testutil

import (
	"context"
	"sync"
	"time"

	"whisper-bridge/internal/app/api/provider"
)

// MockEngineName is the engine name MockProvider registers under.
const MockEngineName = "mock"

// MockProvider is a configurable TranscriptionProvider for tests.
type MockProvider struct {
	mu sync.Mutex

	Segments []provider.TranscriptionSegment
	Language string
	Latency  time.Duration

	LoadErr       error
	TranscribeErr error
	// PanicWith makes TranscriptWithOptions panic with this value when non-nil.
	PanicWith interface{}

	LoadedModel string
	Requests    []provider.TranscriptionRequest
	Closed      bool
}

// NewMockProvider returns a provider that yields SampleSegments.
func NewMockProvider() *MockProvider {
	return &MockProvider{Segments: SampleSegments(), Language: "en"}
}

// RegisterMockProvider makes NewProvider("mock", ...) return p.
func RegisterMockProvider(p *MockProvider) {
	provider.RegisterProvider(MockEngineName, func(config map[string]interface{}) (provider.TranscriptionProvider, error) {
		return p, nil
	})
}

func (m *MockProvider) LoadModel(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return m.LoadErr
	}
	m.LoadedModel = name
	return nil
}

func (m *MockProvider) TranscriptWithOptions(ctx context.Context, request *provider.TranscriptionRequest) (*provider.TranscriptionResponse, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, *request)
	panicWith, err, latency := m.PanicWith, m.TranscribeErr, m.Latency
	segments := append([]provider.TranscriptionSegment(nil), m.Segments...)
	m.mu.Unlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if panicWith != nil {
		panic(panicWith)
	}
	if err != nil {
		return nil, err
	}

	return &provider.TranscriptionResponse{
		Segments:  segments,
		Language:  m.Language,
		ModelUsed: m.LoadedModel,
	}, nil
}

func (m *MockProvider) GetProviderInfo() provider.ProviderInfo {
	return provider.ProviderInfo{Name: MockEngineName, DisplayName: "Mock", Type: provider.ProviderTypeLocal, SupportsTimestamps: true}
}

func (m *MockProvider) ValidateConfiguration() error       { return nil }
func (m *MockProvider) HealthCheck(ctx context.Context) error { return nil }

func (m *MockProvider) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// RequestCount reports how many transcriptions were requested.
func (m *MockProvider) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}
