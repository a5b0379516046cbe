//go:build whispercpp

package whispercpp_go

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"go.uber.org/zap"

	"whisper-bridge/internal/app/api/provider"
	"whisper-bridge/internal/app/audio"
	"whisper-bridge/internal/app/models"
)

const providerName = "whispercpp_go"

// Config holds the in-process engine settings.
type Config struct {
	ModelsDir    string
	AutoDownload bool
	Language     string
	Threads      uint
}

// Transcriber keeps one whisper model in memory.
type Transcriber struct {
	config    Config
	resolver  *models.Resolver
	logger    *zap.Logger
	modelName string

	mu    sync.Mutex // whisper contexts share the model and are not reentrant
	model whisper.Model
}

// NewTranscriber creates an engine with no model loaded.
func NewTranscriber(config Config) *Transcriber {
	if config.Language == "" {
		config.Language = "auto"
	}
	logger := zap.L().Named(providerName)
	return &Transcriber{
		config: config,
		resolver: &models.Resolver{
			Dir:          config.ModelsDir,
			AutoDownload: config.AutoDownload,
			Logger:       logger,
		},
		logger: logger,
	}
}

func (t *Transcriber) LoadModel(ctx context.Context, name string) error {
	path, err := t.resolver.Resolve(ctx, name)
	if err != nil {
		return err
	}

	t.logger.Info("Loading whisper model", zap.String("path", path))
	model, err := whisper.New(path)
	if err != nil {
		return fmt.Errorf("load whisper model %s: %w", path, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.model != nil {
		t.model.Close()
	}
	t.model = model
	t.modelName = name
	t.logger.Info("Whisper model loaded", zap.Bool("multilingual", model.IsMultilingual()))
	return nil
}

func (t *Transcriber) TranscriptWithOptions(ctx context.Context, request *provider.TranscriptionRequest) (*provider.TranscriptionResponse, error) {
	startTime := time.Now()

	if _, err := os.Stat(request.InputFilePath); err != nil {
		return nil, provider.NewError(providerName, "file_not_found", fmt.Sprintf("input file not found: %s", request.InputFilePath), false)
	}

	samples, err := audio.ReadFloat32Samples(ctx, request.InputFilePath)
	if err != nil {
		return nil, provider.NewError(providerName, "audio_conversion_error", err.Error(), false)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.model == nil {
		return nil, provider.NewError(providerName, "model_not_loaded", "no model loaded", false)
	}

	wctx, err := t.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("create whisper context: %w", err)
	}

	language := t.config.Language
	if request.Language != "" {
		language = request.Language
	}
	if err := wctx.SetLanguage(language); err != nil {
		t.logger.Warn("Language not supported by model, using auto", zap.String("language", language), zap.Error(err))
		_ = wctx.SetLanguage("auto")
	}
	if t.config.Threads > 0 {
		wctx.SetThreads(t.config.Threads)
	}
	if request.Prompt != "" {
		wctx.SetInitialPrompt(request.Prompt)
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return nil, provider.NewError(providerName, "transcription_failed", err.Error(), true)
	}

	var segments []provider.TranscriptionSegment
	var text strings.Builder
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, provider.NewError(providerName, "transcription_failed", err.Error(), true)
		}
		segments = append(segments, provider.TranscriptionSegment{
			ID:    len(segments),
			Text:  segment.Text,
			Start: segment.Start.Seconds(),
			End:   segment.End.Seconds(),
		})
		text.WriteString(segment.Text)
	}

	return &provider.TranscriptionResponse{
		Text:           strings.TrimSpace(text.String()),
		Language:       wctx.DetectedLanguage(),
		Segments:       segments,
		ProcessingTime: time.Since(startTime),
		ModelUsed:      t.modelName,
	}, nil
}

func (t *Transcriber) GetProviderInfo() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:               providerName,
		DisplayName:        "Whisper.cpp (in-process)",
		Type:               provider.ProviderTypeLocal,
		SupportsTimestamps: true,
		DefaultModel:       "tiny",
		AvailableModels:    models.Names(),
	}
}

func (t *Transcriber) ValidateConfiguration() error {
	if !audio.FFmpegAvailable() {
		return errors.New("ffmpeg is required to decode audio for whispercpp_go")
	}
	return nil
}

func (t *Transcriber) HealthCheck(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.model == nil {
		return errors.New("no model loaded")
	}
	return nil
}

func (t *Transcriber) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.model == nil {
		return nil
	}
	err := t.model.Close()
	t.model = nil
	return err
}
