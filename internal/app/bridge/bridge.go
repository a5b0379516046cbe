// Package bridge transcribes one audio file and writes the result as a JSON
// envelope. It is what the whisper-bridge root command runs.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"whisper-bridge/internal/app/api/provider"
	"whisper-bridge/internal/app/config"
	apperrors "whisper-bridge/internal/app/errors"
	"whisper-bridge/internal/app/model"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Options is one bridge invocation.
type Options struct {
	Input    string `validate:"required"`
	Output   string `validate:"required"`
	Model    string `validate:"required"`
	Engine   string `validate:"required"`
	Language string

	ModelsDir    string
	AutoDownload bool
}

// ProviderFactory builds an engine; provider.NewProvider in production.
type ProviderFactory func(engineType string, config map[string]interface{}) (provider.TranscriptionProvider, error)

// Bridge runs single transcriptions.
type Bridge struct {
	logger      *zap.Logger
	engines     *config.EnginesConfig
	newProvider ProviderFactory
}

var validate = validator.New()

// New creates a Bridge. engines may be nil when no config file is used.
func New(logger *zap.Logger, engines *config.EnginesConfig) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{logger: logger, engines: engines, newProvider: provider.NewProvider}
}

// WithProviderFactory replaces how engines are built.
func (b *Bridge) WithProviderFactory(f ProviderFactory) *Bridge {
	b.newProvider = f
	return b
}

// Run transcribes opts.Input into opts.Output and returns the process exit code.
// Every path that returns ExitOK or ExitFailure leaves a JSON envelope at opts.Output.
func (b *Bridge) Run(ctx context.Context, opts Options) int {
	if opts.Input == "" || opts.Output == "" {
		b.logger.Error("Input and output paths are required")
		return ExitUsage
	}

	start := time.Now()

	if _, err := os.Stat(opts.Input); err != nil {
		err = apperrors.WithDetail(apperrors.ErrInputNotFound, opts.Input)
		b.logger.Error(err.Error())
		b.write(opts.Output, ErrorEnvelope(err.Error()))
		return ExitFailure
	}

	segments, err := b.transcribe(ctx, opts, start)
	if err != nil {
		b.write(opts.Output, FailureEnvelope(err.Error()))
		return ExitFailure
	}

	if err := WriteEnvelope(opts.Output, model.Envelope{Segments: segments}); err != nil {
		b.logger.Error("Error writing output", zap.Error(err))
		b.write(opts.Output, FailureEnvelope(err.Error()))
		return ExitFailure
	}

	b.logger.Info(fmt.Sprintf("Transcription completed in %.2f seconds", time.Since(start).Seconds()))
	b.logger.Info(fmt.Sprintf("Transcribed %d segments", len(segments)))
	return ExitOK
}

// transcribe does everything after the input check. Panics are turned into errors.
func (b *Bridge) transcribe(ctx context.Context, opts Options, start time.Time) (segments []model.Segment, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
			b.logger.Error("Error during transcription", zap.Error(err), zap.ByteString("stacktrace", debug.Stack()))
		}
	}()

	segments, err = b.doTranscribe(ctx, opts, start)
	if err != nil {
		b.logger.Error("Error during transcription", zap.Error(err), zap.Stack("stacktrace"))
		return nil, errorMessage(err)
	}
	return segments, nil
}

func (b *Bridge) doTranscribe(ctx context.Context, opts Options, start time.Time) ([]model.Segment, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	if info, err := os.Stat(opts.Input); err == nil {
		b.logger.Info(fmt.Sprintf("Input file size: %.2f MB", float64(info.Size())/(1024*1024)))
	}

	engineType, engineConfig, err := b.engines.Resolve(opts.Engine)
	if err != nil {
		return nil, err
	}
	applyDefaults(engineConfig, opts)

	engine, err := b.newProvider(engineType, engineConfig)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := engine.Close(); cerr != nil {
			b.logger.Warn("Error closing engine", zap.Error(cerr))
		}
	}()

	b.logger.Info(fmt.Sprintf("Loading whisper model: %s", opts.Model), zap.String("engine", opts.Engine))
	if err := engine.LoadModel(ctx, opts.Model); err != nil {
		return nil, err
	}
	b.logger.Info(fmt.Sprintf("Model loaded in %.2f seconds", time.Since(start).Seconds()))

	b.logger.Info(fmt.Sprintf("Transcribing: %s", opts.Input))
	resp, err := engine.TranscriptWithOptions(ctx, &provider.TranscriptionRequest{
		InputFilePath: opts.Input,
		Language:      opts.Language,
		Model:         opts.Model,
	})
	if err != nil {
		return nil, err
	}

	if resp.Duration > 0 {
		b.logger.Debug("Audio duration", zap.Duration("duration", resp.Duration))
	}
	return ToSegments(resp.Segments), nil
}

// validateOptions turns tag failures into "<field> is required" style errors.
func validateOptions(opts Options) error {
	err := validate.Struct(opts)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return apperrors.RequiredField(strings.ToLower(verrs[0].Field()))
}

// ToSegments reshapes engine segments into envelope segments.
func ToSegments(in []provider.TranscriptionSegment) []model.Segment {
	return lo.Map(in, func(s provider.TranscriptionSegment, _ int) model.Segment {
		return model.Segment{Text: s.Text, StartTime: s.Start, EndTime: s.End}
	})
}

// applyDefaults fills bridge-level settings the engine config left empty.
func applyDefaults(engineConfig map[string]interface{}, opts Options) {
	settings, ok := engineConfig["settings"].(map[string]interface{})
	if !ok {
		settings = map[string]interface{}{}
		engineConfig["settings"] = settings
	}
	if _, set := settings["models_dir"]; !set && opts.ModelsDir != "" {
		settings["models_dir"] = opts.ModelsDir
	}
	if _, set := settings["auto_download"]; !set && opts.AutoDownload {
		settings["auto_download"] = true
	}
}

// errorMessage keeps the engine's own message for TranscriptionErrors.
func errorMessage(err error) error {
	var terr *provider.TranscriptionError
	if errors.As(err, &terr) {
		return errors.New(terr.Message)
	}
	return err
}

func (b *Bridge) write(path string, env model.Envelope) {
	if err := WriteEnvelope(path, env); err != nil {
		b.logger.Error("Error writing output", zap.Error(err))
	}
}
