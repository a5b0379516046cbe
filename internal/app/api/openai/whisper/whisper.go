package whisper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"whisper-bridge/internal/app/api/provider"
	"whisper-bridge/internal/app/models"
)

const providerName = "openai"

// Config represents configuration specific to the OpenAI Whisper provider
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Language    string
	Prompt      string
	Temperature float32
}

// RemoteTranscriber implements remote transcription using the OpenAI API.
type RemoteTranscriber struct {
	client *openai.Client
	config Config
	model  string
	logger *zap.Logger
}

// NewRemoteTranscriber creates a new RemoteTranscriber instance.
func NewRemoteTranscriber(config Config) *RemoteTranscriber {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.Model == "" {
		config.Model = openai.Whisper1
	}

	return &RemoteTranscriber{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		model:  config.Model,
		logger: zap.L().Named(providerName),
	}
}

// LoadModel picks the API model. Local catalog names such as "tiny" mean
// nothing to the API, so they fall back to the configured model.
func (rt *RemoteTranscriber) LoadModel(ctx context.Context, name string) error {
	switch {
	case name == "" || models.IsCatalogName(name):
		rt.model = rt.config.Model
	default:
		rt.model = name
	}
	rt.logger.Debug("Using API model", zap.String("requested", name), zap.String("model", rt.model))
	return nil
}

// TranscriptWithOptions uploads the file and asks for verbose_json so segments carry timestamps.
func (rt *RemoteTranscriber) TranscriptWithOptions(ctx context.Context, request *provider.TranscriptionRequest) (*provider.TranscriptionResponse, error) {
	startTime := time.Now()

	if request.InputFilePath == "" {
		return nil, provider.NewError(providerName, "invalid_input", "input file path is required", false)
	}
	if _, err := os.Stat(request.InputFilePath); os.IsNotExist(err) {
		return nil, provider.NewError(providerName, "file_not_found", fmt.Sprintf("input file not found: %s", request.InputFilePath), false)
	}

	audioRequest := openai.AudioRequest{
		Model:       rt.model,
		FilePath:    request.InputFilePath,
		Format:      openai.AudioResponseFormatVerboseJSON,
		Prompt:      firstNonEmpty(request.Prompt, rt.config.Prompt),
		Temperature: rt.config.Temperature,
	}
	if request.Temperature > 0 {
		audioRequest.Temperature = request.Temperature
	}
	if lang := firstNonEmpty(request.Language, rt.config.Language); lang != "" && lang != "auto" {
		audioRequest.Language = lang
	}

	resp, err := rt.client.CreateTranscription(ctx, audioRequest)
	if err != nil {
		return nil, handleAPIError(err)
	}

	segments := make([]provider.TranscriptionSegment, 0, len(resp.Segments))
	for i, s := range resp.Segments {
		segments = append(segments, provider.TranscriptionSegment{
			ID:    i,
			Text:  s.Text,
			Start: s.Start,
			End:   s.End,
		})
	}
	if len(segments) == 0 && strings.TrimSpace(resp.Text) != "" {
		// some compatible servers ignore verbose_json and only send text
		segments = append(segments, provider.TranscriptionSegment{Text: resp.Text, End: resp.Duration})
	}

	return &provider.TranscriptionResponse{
		Text:           resp.Text,
		Language:       resp.Language,
		Duration:       time.Duration(resp.Duration * float64(time.Second)),
		Segments:       segments,
		ProcessingTime: time.Since(startTime),
		ModelUsed:      rt.model,
	}, nil
}

// handleAPIError converts OpenAI API errors to TranscriptionError
func handleAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized:
			terr := provider.NewError(providerName, "authentication_failed", "OpenAI API key is invalid or missing", false)
			terr.Suggestions = []string{"Check your OPENAI_API_KEY environment variable"}
			return terr
		case http.StatusTooManyRequests:
			return provider.NewError(providerName, "rate_limit_exceeded", "OpenAI API rate limit exceeded", true)
		case http.StatusRequestEntityTooLarge:
			return provider.NewError(providerName, "file_too_large", "Audio file is too large for OpenAI API", false)
		case http.StatusBadRequest:
			return provider.NewError(providerName, "invalid_file", fmt.Sprintf("OpenAI rejected the file: %s", apiErr.Message), false)
		default:
			return provider.NewError(providerName, "api_error", fmt.Sprintf("OpenAI API error: %s", apiErr.Message), apiErr.HTTPStatusCode >= 500)
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return provider.NewError(providerName, "api_error", fmt.Sprintf("OpenAI request failed (HTTP %d): %v", reqErr.HTTPStatusCode, reqErr.Err), reqErr.HTTPStatusCode >= 500)
	}

	return provider.NewError(providerName, "unknown_error", fmt.Sprintf("Transcription failed: %v", err), true)
}

// GetProviderInfo returns metadata about the OpenAI provider
func (rt *RemoteTranscriber) GetProviderInfo() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:        providerName,
		DisplayName: "OpenAI Whisper API",
		Type:        provider.ProviderTypeRemote,
		SupportedFormats: []provider.AudioFormat{
			provider.FormatMP3, provider.FormatM4A, provider.FormatWAV,
			provider.FormatWEBM, provider.FormatFLAC, provider.FormatOGG,
		},
		MaxFileSizeMB:      25,
		SupportsTimestamps: true,
		RequiresInternet:   true,
		RequiresAPIKey:     true,
		DefaultModel:       openai.Whisper1,
		AvailableModels:    []string{openai.Whisper1},
	}
}

// ValidateConfiguration validates the provider configuration
func (rt *RemoteTranscriber) ValidateConfiguration() error {
	if rt.config.APIKey == "" {
		return errors.New("OpenAI API key is required (auth.api_key or OPENAI_API_KEY)")
	}
	if rt.config.Temperature < 0 || rt.config.Temperature > 1 {
		return errors.New("temperature must be between 0.0 and 1.0")
	}
	return nil
}

// HealthCheck lists models, which is the cheapest authenticated call.
func (rt *RemoteTranscriber) HealthCheck(ctx context.Context) error {
	if err := rt.ValidateConfiguration(); err != nil {
		return err
	}
	if _, err := rt.client.ListModels(ctx); err != nil {
		return fmt.Errorf("OpenAI API health check failed: %w", err)
	}
	return nil
}

func (rt *RemoteTranscriber) Close() error { return nil }

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
