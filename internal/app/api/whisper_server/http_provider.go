package whisper_server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"whisper-bridge/internal/app/api/provider"
)

const providerName = "whisper_server"

// WhisperServerProvider implements transcription via HTTP to a whisper-server instance
type WhisperServerProvider struct {
	config WhisperServerConfig
	client *http.Client
	model  string
	logger *zap.Logger
}

// WhisperServerConfig represents configuration for whisper-server HTTP API
type WhisperServerConfig struct {
	BaseURL       string
	InferencePath string
	LoadPath      string
	Timeout       time.Duration
	Language      string
	Temperature   float64
	Translate     bool
	MaxLength     int
	// LoadModels (setting load_model) makes LoadModel POST the model to the server's /load endpoint.
	// Off by default because most deployments pin one model at startup.
	LoadModels    bool
	CustomHeaders map[string]string
}

// WhisperServerResponse is the verbose_json document returned by /inference
type WhisperServerResponse struct {
	Text             string                 `json:"text"`
	Task             string                 `json:"task,omitempty"`
	Language         string                 `json:"language,omitempty"`
	Duration         float64                `json:"duration,omitempty"`
	Segments         []WhisperServerSegment `json:"segments"`
	DetectedLanguage string                 `json:"detected_language,omitempty"`
}

// WhisperServerSegment represents a segment in verbose response
type WhisperServerSegment struct {
	ID    int     `json:"id"`
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// NewWhisperServerProvider creates a new whisper-server HTTP provider
func NewWhisperServerProvider(config WhisperServerConfig) *WhisperServerProvider {
	if config.InferencePath == "" {
		config.InferencePath = "/inference"
	}
	if config.LoadPath == "" {
		config.LoadPath = "/load"
	}
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Minute
	}
	if config.CustomHeaders == nil {
		config.CustomHeaders = make(map[string]string)
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &WhisperServerProvider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: zap.L().Named(providerName),
	}
}

// TranscriptWithOptions posts the file to /inference and maps the verbose_json segments
func (wsp *WhisperServerProvider) TranscriptWithOptions(ctx context.Context, request *provider.TranscriptionRequest) (*provider.TranscriptionResponse, error) {
	startTime := time.Now()

	if request.InputFilePath == "" {
		return nil, provider.NewError(providerName, "invalid_input", "input file path is required", false)
	}
	if _, err := os.Stat(request.InputFilePath); os.IsNotExist(err) {
		return nil, provider.NewError(providerName, "file_not_found", fmt.Sprintf("input file not found: %s", request.InputFilePath), false)
	}

	body, contentType, err := wsp.createMultipartForm(request)
	if err != nil {
		return nil, provider.NewError(providerName, "form_creation_failed", fmt.Sprintf("failed to create multipart form: %v", err), false)
	}

	url := wsp.config.BaseURL + wsp.config.InferencePath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, provider.NewError(providerName, "request_creation_failed", fmt.Sprintf("failed to create HTTP request: %v", err), false)
	}
	httpReq.Header.Set("Content-Type", contentType)
	wsp.setHeaders(httpReq)

	wsp.logger.Debug("Posting audio to whisper-server", zap.String("url", url))
	resp, err := wsp.client.Do(httpReq)
	if err != nil {
		return nil, provider.NewError(providerName, "request_failed", fmt.Sprintf("HTTP request failed: %v", err), true)
	}
	defer resp.Body.Close()

	responseData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, provider.NewError(providerName, "response_read_failed", fmt.Sprintf("failed to read response: %v", err), true)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, provider.NewError(providerName, "api_error",
			fmt.Sprintf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(responseData))),
			resp.StatusCode >= 500)
	}

	var parsed WhisperServerResponse
	if err := json.Unmarshal(responseData, &parsed); err != nil {
		return nil, provider.NewError(providerName, "response_parse_failed", fmt.Sprintf("failed to parse response: %v", err), false)
	}

	segments := make([]provider.TranscriptionSegment, 0, len(parsed.Segments))
	for i, s := range parsed.Segments {
		segments = append(segments, provider.TranscriptionSegment{ID: i, Text: s.Text, Start: s.Start, End: s.End})
	}

	language := parsed.Language
	if language == "" {
		language = parsed.DetectedLanguage
	}

	return &provider.TranscriptionResponse{
		Text:           strings.TrimSpace(parsed.Text),
		Language:       language,
		Duration:       time.Duration(parsed.Duration * float64(time.Second)),
		Segments:       segments,
		ProcessingTime: time.Since(startTime),
		ModelUsed:      wsp.model,
		ProviderMetadata: map[string]interface{}{
			"base_url":    wsp.config.BaseURL,
			"http_status": resp.StatusCode,
		},
	}, nil
}

func (wsp *WhisperServerProvider) createMultipartForm(request *provider.TranscriptionRequest) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	file, err := os.Open(request.InputFilePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %v", err)
	}
	defer file.Close()

	part, err := writer.CreateFormFile("file", filepath.Base(request.InputFilePath))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %v", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("failed to copy file content: %v", err)
	}

	temperature := wsp.config.Temperature
	if request.Temperature > 0 {
		temperature = float64(request.Temperature)
	}

	params := [][2]string{
		{"response_format", "verbose_json"},
		{"temperature", fmt.Sprintf("%.2f", temperature)},
	}
	language := wsp.config.Language
	if request.Language != "" {
		language = request.Language
	}
	if language != "" {
		params = append(params, [2]string{"language", language})
	}
	if request.Prompt != "" {
		params = append(params, [2]string{"prompt", request.Prompt})
	}
	if wsp.config.Translate {
		params = append(params, [2]string{"translate", "true"})
	}
	if wsp.config.MaxLength > 0 {
		params = append(params, [2]string{"max_len", strconv.Itoa(wsp.config.MaxLength)})
	}

	for _, p := range params {
		if err := writer.WriteField(p[0], p[1]); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %v", p[0], err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %v", err)
	}

	return body, writer.FormDataContentType(), nil
}

func (wsp *WhisperServerProvider) setHeaders(req *http.Request) {
	for key, value := range wsp.config.CustomHeaders {
		req.Header.Set(key, value)
	}
}

// GetProviderInfo returns metadata about the whisper-server provider
func (wsp *WhisperServerProvider) GetProviderInfo() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:        providerName,
		DisplayName: "Whisper Server (HTTP API)",
		Type:        provider.ProviderTypeRemote,
		SupportedFormats: []provider.AudioFormat{
			provider.FormatWAV, provider.FormatMP3, provider.FormatM4A,
			provider.FormatFLAC, provider.FormatOGG, provider.FormatWEBM,
		},
		SupportsTimestamps: true,
		RequiresInternet:   true,
	}
}

// ValidateConfiguration validates the provider configuration
func (wsp *WhisperServerProvider) ValidateConfiguration() error {
	if wsp.config.BaseURL == "" {
		return errors.New("base_url is required")
	}
	if !strings.HasPrefix(wsp.config.BaseURL, "http://") && !strings.HasPrefix(wsp.config.BaseURL, "https://") {
		return errors.New("base_url must start with http:// or https://")
	}
	if wsp.config.Temperature < 0.0 || wsp.config.Temperature > 1.0 {
		return errors.New("temperature must be between 0.0 and 1.0")
	}
	return nil
}

// HealthCheck checks the server answers at all
func (wsp *WhisperServerProvider) HealthCheck(ctx context.Context) error {
	if err := wsp.ValidateConfiguration(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wsp.config.BaseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}
	wsp.setHeaders(req)

	resp, err := wsp.client.Do(req)
	if err != nil {
		return fmt.Errorf("server connectivity test failed: %w", err)
	}
	defer resp.Body.Close()

	// 503 shows up behind proxies while the server is still loading its model
	if resp.StatusCode >= 500 && resp.StatusCode != http.StatusServiceUnavailable {
		return fmt.Errorf("server returned error status: %d", resp.StatusCode)
	}
	return nil
}

// LoadModel records the model name and, when load_model is set, asks the
// server to switch to it.
func (wsp *WhisperServerProvider) LoadModel(ctx context.Context, name string) error {
	wsp.model = name
	if !wsp.config.LoadModels || name == "" {
		return nil
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("model", name); err != nil {
		return fmt.Errorf("failed to write model field: %v", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close multipart writer: %v", err)
	}

	url := wsp.config.BaseURL + wsp.config.LoadPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("failed to create load model request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	wsp.setHeaders(req)

	resp, err := wsp.client.Do(req)
	if err != nil {
		return fmt.Errorf("load model request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("load model failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	wsp.logger.Info("Server switched model", zap.String("model", name))
	return nil
}

func (wsp *WhisperServerProvider) Close() error {
	wsp.client.CloseIdleConnections()
	return nil
}
