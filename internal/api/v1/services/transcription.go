package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"whisper-bridge/internal/api/v1/dto"
	"whisper-bridge/internal/app/bridge"
	"whisper-bridge/internal/app/cache"
	"whisper-bridge/internal/app/metrics"
	"whisper-bridge/internal/app/model"
	"whisper-bridge/internal/app/repository"
	"whisper-bridge/internal/app/storage"
)

// EnvelopeError is a bridge result that carries an error and no segments.
type EnvelopeError struct {
	Message string
}

func (e *EnvelopeError) Error() string { return e.Message }

// TranscriptionConfig names what every request runs with.
type TranscriptionConfig struct {
	Model    string `validate:"required"`
	Engine   string `validate:"required"`
	CacheTTL time.Duration
}

var validate = validator.New()

type transcriptionService struct {
	config   TranscriptionConfig
	runner   BridgeRunner
	cache    cache.ResultCache
	history  repository.RunDAO
	archiver storage.Archiver
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewTranscriptionService wires the bridge runner to the cache, history and archive.
func NewTranscriptionService(
	config TranscriptionConfig,
	runner BridgeRunner,
	resultCache cache.ResultCache,
	history repository.RunDAO,
	archiver storage.Archiver,
	m *metrics.Metrics,
	logger *zap.Logger,
) TranscriptionService {
	return &transcriptionService{
		config:   config,
		runner:   runner,
		cache:    resultCache,
		history:  history,
		archiver: archiver,
		metrics:  m,
		logger:   logger,
	}
}

func (s *transcriptionService) Transcribe(ctx context.Context, req *dto.TranscribeRequest) (*dto.TranscribeResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid transcribe request: %w", err)
	}

	start := time.Now()
	run := model.Run{
		RunID:     uuid.NewString(),
		InputName: req.FileName,
		Model:     s.config.Model,
		Engine:    s.config.Engine,
		CreatedAt: start.UTC(),
	}
	logger := s.logger.With(zap.String("run_id", run.RunID))
	logger.Info(fmt.Sprintf("Saved file: %s (size: %.2f MB)", req.FileName, float64(req.Size)/(1024*1024)))

	key := s.cacheKey(req.AudioPath, logger)
	if key != "" {
		env, hit, err := s.cache.Get(ctx, key)
		if err != nil {
			logger.Warn("Cache lookup failed", zap.Error(err))
		} else if hit {
			logger.Info("Returning cached transcription", zap.Int("segments", len(env.Segments)))
			s.finish(ctx, &run, env, nil, start, "cached", logger)
			return response(env, start), nil
		}
	}

	logger.Info("Running transcription with model: " + s.config.Model)
	output := filepath.Join(req.WorkDir, "output.json")
	env, err := s.runner.Transcribe(ctx, req.AudioPath, output, s.config.Model)
	if err != nil {
		status := "error"
		if errors.Is(err, bridge.ErrTimeout) {
			status = "timeout"
		}
		s.finish(ctx, &run, nil, err, start, status, logger)
		return nil, err
	}

	if env.HasError() {
		logger.Warn("Error from transcription service", zap.String("error", env.Error))
		if len(env.Segments) == 0 {
			err := &EnvelopeError{Message: env.Error}
			s.finish(ctx, &run, env, err, start, "error", logger)
			return nil, err
		}
	} else if key != "" {
		if err := s.cache.Set(ctx, key, env, s.config.CacheTTL); err != nil {
			logger.Warn("Cache store failed", zap.Error(err))
		}
	}

	s.finish(ctx, &run, env, nil, start, "ok", logger)
	logger.Info(fmt.Sprintf("Transcription completed in %v with %d segments", time.Since(start), len(env.Segments)))
	return response(env, start), nil
}

func (s *transcriptionService) cacheKey(audioPath string, logger *zap.Logger) string {
	if _, disabled := s.cache.(cache.Noop); disabled {
		return ""
	}
	f, err := os.Open(audioPath)
	if err != nil {
		logger.Warn("Cannot hash upload for cache", zap.Error(err))
		return ""
	}
	defer f.Close()

	key, err := cache.Key(f, s.config.Engine, s.config.Model)
	if err != nil {
		logger.Warn("Cannot hash upload for cache", zap.Error(err))
		return ""
	}
	return key
}

// finish records metrics, history and the archived envelope. Failures here
// are logged and never change the response.
func (s *transcriptionService) finish(ctx context.Context, run *model.Run, env *model.Envelope, runErr error, start time.Time, status string, logger *zap.Logger) {
	elapsed := time.Since(start)
	run.ProcessingMs = elapsed.Milliseconds()
	if env != nil {
		run.SegmentCount = len(env.Segments)
		if env.HasError() {
			run.HasError, run.ErrorMessage = true, env.Error
		}
	}
	if runErr != nil {
		run.HasError, run.ErrorMessage = true, runErr.Error()
	}

	s.metrics.ObserveTranscription(s.config.Engine, status, elapsed, run.SegmentCount)

	// the request context may already be cancelled on timeout
	bg := context.WithoutCancel(ctx)

	if _, err := s.history.Record(bg, *run); err != nil {
		logger.Warn("Failed to record run", zap.Error(err))
	}

	if env == nil || status == "cached" {
		return
	}
	data, err := bridge.EncodeEnvelope(*env)
	if err != nil {
		logger.Warn("Failed to encode envelope for archive", zap.Error(err))
		return
	}
	if key, err := s.archiver.Archive(bg, run.RunID, data); err != nil {
		logger.Warn("Failed to archive transcript", zap.Error(err))
	} else if key != "" {
		logger.Debug("Transcript archived", zap.String("key", key))
	}
}

func response(env *model.Envelope, start time.Time) *dto.TranscribeResponse {
	segments := env.Segments
	if segments == nil {
		segments = []model.Segment{}
	}
	return &dto.TranscribeResponse{
		Segments:              segments,
		ProcessingTimeSeconds: time.Since(start).Seconds(),
	}
}
