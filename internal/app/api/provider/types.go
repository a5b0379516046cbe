package provider

import (
	"path/filepath"
	"strings"
	"time"
)

// AudioFormat defines supported audio formats
type AudioFormat string

const (
	FormatWAV  AudioFormat = "wav"
	FormatMP3  AudioFormat = "mp3"
	FormatM4A  AudioFormat = "m4a"
	FormatFLAC AudioFormat = "flac"
	FormatOGG  AudioFormat = "ogg"
	FormatWEBM AudioFormat = "webm"
)

// ProviderType defines where a provider runs its model
type ProviderType string

const (
	ProviderTypeLocal  ProviderType = "local"
	ProviderTypeRemote ProviderType = "remote"
)

// TranscriptionRequest represents a single transcription request
type TranscriptionRequest struct {
	InputFilePath string `json:"input_file_path"`

	// Language is a whisper language code or "auto"
	Language string `json:"language,omitempty"`
	// Model is the name the caller asked for, e.g. "tiny"
	Model string `json:"model,omitempty"`

	Temperature float32 `json:"temperature,omitempty"`
	Prompt      string  `json:"prompt,omitempty"`

	ProviderOptions map[string]interface{} `json:"provider_options,omitempty"`
}

// TranscriptionResponse represents the response from a transcription provider
type TranscriptionResponse struct {
	Text     string                 `json:"text"`
	Language string                 `json:"language,omitempty"`
	Duration time.Duration          `json:"duration,omitempty"`
	Segments []TranscriptionSegment `json:"segments"`

	ProviderMetadata map[string]interface{} `json:"provider_metadata,omitempty"`

	ProcessingTime time.Duration `json:"processing_time,omitempty"`
	ModelUsed      string        `json:"model_used,omitempty"`
}

// TranscriptionSegment represents a time-segmented piece of transcription
type TranscriptionSegment struct {
	ID    int     `json:"id"`
	Text  string  `json:"text"`
	Start float64 `json:"start"` // seconds
	End   float64 `json:"end"`   // seconds
}

// ProviderInfo contains metadata about a transcription provider
type ProviderInfo struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"display_name"`
	Type        ProviderType `json:"type"`
	Version     string       `json:"version,omitempty"`

	SupportedFormats []AudioFormat `json:"supported_formats"`
	MaxFileSizeMB    int           `json:"max_file_size_mb,omitempty"` // 0 means no limit

	SupportsTimestamps bool `json:"supports_timestamps"`
	RequiresInternet   bool `json:"requires_internet"`
	RequiresAPIKey     bool `json:"requires_api_key"`
	RequiresBinary     bool `json:"requires_binary"`

	DefaultModel    string   `json:"default_model,omitempty"`
	AvailableModels []string `json:"available_models,omitempty"`
}

// TranscriptionError represents provider-specific errors
type TranscriptionError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Provider    string   `json:"provider"`
	Retryable   bool     `json:"retryable"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (e *TranscriptionError) Error() string {
	return e.Message
}

// NewError builds a TranscriptionError for the named provider.
func NewError(providerName, code, message string, retryable bool) *TranscriptionError {
	return &TranscriptionError{
		Code:      code,
		Message:   message,
		Provider:  providerName,
		Retryable: retryable,
	}
}

// GetAudioFormatFromFilename extracts audio format from filename
func GetAudioFormatFromFilename(filename string) AudioFormat {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	switch AudioFormat(ext) {
	case FormatWAV, FormatMP3, FormatM4A, FormatFLAC, FormatOGG, FormatWEBM:
		return AudioFormat(ext)
	default:
		return ""
	}
}

// SupportsFormat reports whether the provider lists the given format.
// Providers that list nothing accept anything.
func (i ProviderInfo) SupportsFormat(format AudioFormat) bool {
	if len(i.SupportedFormats) == 0 {
		return true
	}
	for _, f := range i.SupportedFormats {
		if f == format {
			return true
		}
	}
	return false
}
