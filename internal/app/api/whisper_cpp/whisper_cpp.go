package whisper_cpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"whisper-bridge/internal/app/api/provider"
	"whisper-bridge/internal/app/audio"
	"whisper-bridge/internal/app/models"
)

const providerName = "whisper_cpp"

// Config holds the whisper.cpp CLI settings.
type Config struct {
	BinaryPath   string
	ModelsDir    string
	AutoDownload bool
	Language     string
	Prompt       string
	Threads      int
	TempDir      string
}

// commandRunner runs a binary and returns its combined output.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// audioPreparer returns a whisper.cpp readable copy of a file plus its cleanup.
type audioPreparer func(ctx context.Context, path string) (string, func(), error)

// durationProber returns the length of an audio file in seconds.
type durationProber func(ctx context.Context, path string) (float64, error)

// LocalTranscriber runs the whisper.cpp CLI on the CPU and reads its JSON output.
type LocalTranscriber struct {
	config    Config
	modelPath string
	modelName string
	resolver  *models.Resolver
	logger    *zap.Logger

	run      commandRunner
	prepare  audioPreparer
	duration durationProber
}

// NewLocalTranscriber creates a new instance of LocalTranscriber.
func NewLocalTranscriber(config Config) *LocalTranscriber {
	if config.BinaryPath == "" {
		config.BinaryPath = os.Getenv("WHISPER_CPP_BINARY")
	}
	if config.BinaryPath == "" {
		config.BinaryPath = "whisper-cli"
	}
	if config.Language == "" {
		config.Language = "auto"
	}
	if config.TempDir == "" {
		config.TempDir = os.TempDir()
	}

	logger := zap.L().Named(providerName)
	return &LocalTranscriber{
		config: config,
		resolver: &models.Resolver{
			Dir:          config.ModelsDir,
			AutoDownload: config.AutoDownload,
			Logger:       logger,
		},
		logger:  logger,
		run:      runCommand,
		prepare:  audio.PrepareForWhisper,
		duration: audio.GetAudioDuration,
	}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// LoadModel resolves the model to a ggml file, downloading it when allowed.
func (lt *LocalTranscriber) LoadModel(ctx context.Context, name string) error {
	path, err := lt.resolver.Resolve(ctx, name)
	if err != nil {
		return err
	}
	lt.modelName = name
	lt.modelPath = path
	lt.logger.Info("Model resolved", zap.String("model", name), zap.String("path", path))
	return nil
}

// TranscriptWithOptions runs whisper.cpp with GPU disabled and returns its segments.
func (lt *LocalTranscriber) TranscriptWithOptions(ctx context.Context, request *provider.TranscriptionRequest) (*provider.TranscriptionResponse, error) {
	startTime := time.Now()

	if request.InputFilePath == "" {
		return nil, provider.NewError(providerName, "invalid_input", "input file path is required", false)
	}
	if _, err := os.Stat(request.InputFilePath); os.IsNotExist(err) {
		return nil, provider.NewError(providerName, "file_not_found", fmt.Sprintf("input file not found: %s", request.InputFilePath), false)
	}
	if lt.modelPath == "" {
		return nil, provider.NewError(providerName, "model_not_loaded", "no model loaded", false)
	}

	wavPath, cleanup, err := lt.prepare(ctx, request.InputFilePath)
	if err != nil {
		return nil, provider.NewError(providerName, "audio_conversion_error", fmt.Sprintf("error converting input file: %v", err), false)
	}
	defer cleanup()

	outDir, err := os.MkdirTemp(lt.config.TempDir, "whisper-cpp-*")
	if err != nil {
		return nil, provider.NewError(providerName, "temp_dir_error", fmt.Sprintf("failed to create temp directory: %v", err), true)
	}
	defer os.RemoveAll(outDir)
	outputBase := filepath.Join(outDir, "transcription")

	args := lt.buildArgs(request, wavPath, outputBase)
	lt.logger.Debug("Running whisper.cpp", zap.String("binary", lt.config.BinaryPath), zap.Strings("args", args))

	if output, err := lt.run(ctx, lt.config.BinaryPath, args...); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, provider.NewError(providerName, "transcription_failed",
			fmt.Sprintf("command execution error: %v, output: %s", err, tail(string(output), 20)), true)
	}

	data, err := os.ReadFile(outputBase + ".json")
	if err != nil {
		return nil, provider.NewError(providerName, "output_missing", fmt.Sprintf("failed to read output file: %v", err), false)
	}

	result, err := parseOutput(data)
	if err != nil {
		return nil, provider.NewError(providerName, "output_invalid", err.Error(), false)
	}

	response := &provider.TranscriptionResponse{
		Text:           result.text(),
		Language:       result.Result.Language,
		Segments:       result.segments(),
		ProcessingTime: time.Since(startTime),
		Duration:       lt.audioDuration(ctx, wavPath),
		ModelUsed:      lt.modelName,
		ProviderMetadata: map[string]interface{}{
			"binary_path": lt.config.BinaryPath,
			"model_path":  lt.modelPath,
		},
	}
	lt.logger.Info("Transcription finished",
		zap.Int("segments", len(response.Segments)),
		zap.Duration("elapsed", response.ProcessingTime))
	return response, nil
}

// audioDuration is best effort; a missing ffprobe leaves it zero.
func (lt *LocalTranscriber) audioDuration(ctx context.Context, wavPath string) time.Duration {
	seconds, err := lt.duration(ctx, wavPath)
	if err != nil {
		lt.logger.Debug("Could not probe audio duration", zap.Error(err))
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

func (lt *LocalTranscriber) buildArgs(request *provider.TranscriptionRequest, wavPath, outputBase string) []string {
	language := lt.config.Language
	if request.Language != "" {
		language = request.Language
	}
	prompt := lt.config.Prompt
	if request.Prompt != "" {
		prompt = request.Prompt
	}

	args := []string{
		"-m", lt.modelPath,
		"-f", wavPath,
		"-l", language,
		"-ng",
		"-oj",
		"-of", outputBase,
		"-np",
	}
	if prompt != "" {
		args = append(args, "--prompt", prompt)
	}
	if lt.config.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(lt.config.Threads))
	}
	if request.Temperature > 0 {
		args = append(args, "-tp", strconv.FormatFloat(float64(request.Temperature), 'f', 2, 32))
	}
	return args
}

// GetProviderInfo returns metadata about the whisper.cpp provider
func (lt *LocalTranscriber) GetProviderInfo() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:        providerName,
		DisplayName: "Whisper.cpp (Local CLI)",
		Type:        provider.ProviderTypeLocal,
		SupportedFormats: []provider.AudioFormat{
			provider.FormatWAV, provider.FormatMP3, provider.FormatM4A,
			provider.FormatFLAC, provider.FormatOGG, provider.FormatWEBM,
		},
		SupportsTimestamps: true,
		RequiresBinary:     true,
		DefaultModel:       "tiny",
		AvailableModels:    models.Names(),
	}
}

// ValidateConfiguration checks that the whisper.cpp binary can be found
func (lt *LocalTranscriber) ValidateConfiguration() error {
	path, err := exec.LookPath(lt.config.BinaryPath)
	if err != nil {
		return fmt.Errorf("whisper.cpp binary not found at %s (set binary_path or WHISPER_CPP_BINARY)", lt.config.BinaryPath)
	}
	lt.config.BinaryPath = path
	return nil
}

// HealthCheck performs a health check on the provider
func (lt *LocalTranscriber) HealthCheck(ctx context.Context) error {
	if err := lt.ValidateConfiguration(); err != nil {
		return err
	}
	if lt.modelPath != "" {
		if _, err := os.Stat(lt.modelPath); err != nil {
			return fmt.Errorf("model file unavailable: %w", err)
		}
	}
	return nil
}

// Close is a no-op; the model lives in the child process.
func (lt *LocalTranscriber) Close() error { return nil }

// cliOutput is the document written by `whisper-cli -oj`.
type cliOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func parseOutput(data []byte) (*cliOutput, error) {
	var out cliOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse whisper.cpp output: %w", err)
	}
	return &out, nil
}

func (o *cliOutput) segments() []provider.TranscriptionSegment {
	segments := make([]provider.TranscriptionSegment, 0, len(o.Transcription))
	for i, t := range o.Transcription {
		segments = append(segments, provider.TranscriptionSegment{
			ID:    i,
			Text:  t.Text,
			Start: float64(t.Offsets.From) / 1000,
			End:   float64(t.Offsets.To) / 1000,
		})
	}
	return segments
}

func (o *cliOutput) text() string {
	var b strings.Builder
	for _, t := range o.Transcription {
		b.WriteString(t.Text)
	}
	return strings.TrimSpace(b.String())
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
