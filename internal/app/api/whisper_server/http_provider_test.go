package whisper_server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whisper-bridge/internal/app/api/provider"
)

// createMockWhisperServer mimics the whisper.cpp example server
func createMockWhisperServer(t *testing.T, loaded *string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/inference":
			if r.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			if err := r.ParseMultipartForm(10 << 20); err != nil {
				http.Error(w, "Failed to parse form", http.StatusBadRequest)
				return
			}
			file, _, err := r.FormFile("file")
			if err != nil {
				http.Error(w, "No file uploaded", http.StatusBadRequest)
				return
			}
			file.Close()

			assert.Equal(t, "verbose_json", r.FormValue("response_format"))

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(WhisperServerResponse{
				Text:     " Hello there. General Kenobi.",
				Task:     "transcribe",
				Language: "english",
				Duration: 4.0,
				Segments: []WhisperServerSegment{
					{ID: 0, Text: " Hello there.", Start: 0.0, End: 1.5},
					{ID: 1, Text: " General Kenobi.", Start: 1.5, End: 4.0},
				},
			})

		case "/load":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				http.Error(w, "bad form", http.StatusBadRequest)
				return
			}
			model := r.FormValue("model")
			if model == "missing" {
				http.Error(w, "model not found", http.StatusNotFound)
				return
			}
			*loaded = model
			_, _ = w.Write([]byte(`{"status":"ok"}`))

		case "/boom":
			http.Error(w, "inference crashed", http.StatusInternalServerError)

		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
}

func createTestAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF fake wav"), 0o644))
	return path
}

func TestTranscriptWithOptions(t *testing.T) {
	var loaded string
	server := createMockWhisperServer(t, &loaded)
	defer server.Close()

	wsp := NewWhisperServerProvider(WhisperServerConfig{BaseURL: server.URL + "/"})
	require.NoError(t, wsp.ValidateConfiguration())
	require.NoError(t, wsp.LoadModel(context.Background(), "base"))
	assert.Empty(t, loaded, "load endpoint is only used when load_model is set")

	resp, err := wsp.TranscriptWithOptions(context.Background(), &provider.TranscriptionRequest{InputFilePath: createTestAudio(t)})
	require.NoError(t, err)

	require.Len(t, resp.Segments, 2)
	assert.Equal(t, " Hello there.", resp.Segments[0].Text)
	assert.Equal(t, 1.5, resp.Segments[1].Start)
	assert.Equal(t, 4.0, resp.Segments[1].End)
	assert.Equal(t, "Hello there. General Kenobi.", resp.Text)
	assert.Equal(t, "english", resp.Language)
	assert.Equal(t, "base", resp.ModelUsed)
}

func TestServerErrorIsRetryable(t *testing.T) {
	var loaded string
	server := createMockWhisperServer(t, &loaded)
	defer server.Close()

	wsp := NewWhisperServerProvider(WhisperServerConfig{BaseURL: server.URL, InferencePath: "/boom"})
	_, err := wsp.TranscriptWithOptions(context.Background(), &provider.TranscriptionRequest{InputFilePath: createTestAudio(t)})

	var terr *provider.TranscriptionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "api_error", terr.Code)
	assert.True(t, terr.Retryable)
	assert.Contains(t, terr.Message, "inference crashed")
}

func TestLoadModel(t *testing.T) {
	var loaded string
	server := createMockWhisperServer(t, &loaded)
	defer server.Close()

	wsp := NewWhisperServerProvider(WhisperServerConfig{BaseURL: server.URL, LoadModels: true})
	require.NoError(t, wsp.LoadModel(context.Background(), "models/ggml-small.bin"))
	assert.Equal(t, "models/ggml-small.bin", loaded)

	err := wsp.LoadModel(context.Background(), "missing")
	assert.ErrorContains(t, err, "status 404")
}

func TestFileNotFound(t *testing.T) {
	wsp := NewWhisperServerProvider(WhisperServerConfig{BaseURL: "http://localhost:1"})
	_, err := wsp.TranscriptWithOptions(context.Background(), &provider.TranscriptionRequest{InputFilePath: "/nope.wav"})

	var terr *provider.TranscriptionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "file_not_found", terr.Code)
}

func TestConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	wsp := NewWhisperServerProvider(WhisperServerConfig{BaseURL: url})
	_, err := wsp.TranscriptWithOptions(context.Background(), &provider.TranscriptionRequest{InputFilePath: createTestAudio(t)})

	var terr *provider.TranscriptionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "request_failed", terr.Code)
	assert.True(t, terr.Retryable)
}

func TestValidateConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		config  WhisperServerConfig
		wantErr string
	}{
		{name: "valid", config: WhisperServerConfig{BaseURL: "http://gpu-box:8080"}},
		{name: "missing url", config: WhisperServerConfig{}, wantErr: "base_url is required"},
		{name: "bad scheme", config: WhisperServerConfig{BaseURL: "ftp://x"}, wantErr: "must start with http"},
		{name: "bad temperature", config: WhisperServerConfig{BaseURL: "http://x", Temperature: 1.5}, wantErr: "temperature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewWhisperServerProvider(tt.config).ValidateConfiguration()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestHealthCheck(t *testing.T) {
	var loaded string
	server := createMockWhisperServer(t, &loaded)
	defer server.Close()

	wsp := NewWhisperServerProvider(WhisperServerConfig{BaseURL: server.URL})
	assert.NoError(t, wsp.HealthCheck(context.Background()))
}

func TestCreateFromSettings(t *testing.T) {
	p, err := provider.NewProvider(providerName, map[string]interface{}{
		"auth": map[string]interface{}{"token": "secret"},
		"settings": map[string]interface{}{
			"base_url":       "http://gpu-box:8080",
			"timeout":        "90s",
			"custom_headers": map[string]interface{}{"X-Team": "audio"},
		},
	})
	require.NoError(t, err)

	wsp := p.(*WhisperServerProvider)
	assert.Equal(t, "Bearer secret", wsp.config.CustomHeaders["Authorization"])
	assert.Equal(t, "audio", wsp.config.CustomHeaders["X-Team"])
	assert.Equal(t, "/inference", wsp.config.InferencePath)
	assert.Equal(t, float64(90), wsp.config.Timeout.Seconds())
}
