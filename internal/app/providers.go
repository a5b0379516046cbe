package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/wire"
	"go.uber.org/zap"

	"whisper-bridge/internal/api/server"
	v1routes "whisper-bridge/internal/api/v1/routes"
	"whisper-bridge/internal/api/v1/services"
	"whisper-bridge/internal/app/bridge"
	"whisper-bridge/internal/app/cache"
	appconfig "whisper-bridge/internal/app/config"
	"whisper-bridge/internal/app/metrics"
	"whisper-bridge/internal/app/repository"
	"whisper-bridge/internal/app/repository/pg"
	"whisper-bridge/internal/app/repository/sqlite"
	"whisper-bridge/internal/app/storage"
	"whisper-bridge/internal/config"
)

// ServerSet builds everything `serve` needs.
var ServerSet = wire.NewSet(
	ProvideRunDAO,
	ProvideResultCache,
	ProvideArchiver,
	metrics.New,
	ProvideEngineName,
	ProvideBridgeRunner,
	ProvideTranscriptionService,
	services.NewHistoryService,
	ProvideEngineService,
	ProvideServiceContainer,
	ProvideServerConfig,
	server.NewServer,
)

// OpenHistory opens the run history named by dsn. An empty dsn disables
// history, postgres:// and postgresql:// select postgres, anything else is a
// sqlite path with an optional sqlite:// prefix.
func OpenHistory(ctx context.Context, dsn string) (repository.RunDAO, error) {
	switch {
	case dsn == "":
		return repository.NoopDAO{}, nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		db, err := pg.NewPostgresDB(dsn)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	default:
		return sqlite.NewSQLiteDB(dsn)
	}
}

func ProvideRunDAO(ctx context.Context, settings *config.Settings, logger *zap.Logger) (repository.RunDAO, func(), error) {
	dao, err := OpenHistory(ctx, settings.HistoryDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open history: %w", err)
	}
	if _, disabled := dao.(repository.NoopDAO); disabled {
		logger.Info("History disabled, set HISTORY_DSN to record runs")
	}
	return dao, func() {
		if err := dao.Close(); err != nil {
			logger.Warn("Failed to close history", zap.Error(err))
		}
	}, nil
}

func ProvideResultCache(ctx context.Context, settings *config.Settings, logger *zap.Logger) (cache.ResultCache, func(), error) {
	if settings.RedisURL == "" {
		return cache.Noop{}, func() {}, nil
	}
	c, err := cache.NewRedisCache(ctx, settings.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Result cache enabled", zap.Duration("ttl", settings.CacheTTL))
	return c, func() { c.Close() }, nil
}

func ProvideArchiver(ctx context.Context, settings *config.Settings, logger *zap.Logger) (storage.Archiver, error) {
	if settings.MinIO.Endpoint == "" {
		return storage.Noop{}, nil
	}
	a, err := storage.NewMinioArchiver(ctx, settings.MinIO, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Transcript archive enabled",
		zap.String("endpoint", settings.MinIO.Endpoint),
		zap.String("bucket", settings.MinIO.Bucket))
	return a, nil
}

// EngineName is the engine every child bridge of the server runs.
type EngineName string

// ProvideEngineName applies the same precedence as the bridge command without
// an --engine flag.
func ProvideEngineName(settings *config.Settings, engines *appconfig.EnginesConfig) EngineName {
	fileDefault := ""
	if engines != nil {
		fileDefault = engines.DefaultEngine
	}
	return EngineName(settings.ResolveEngine(fileDefault))
}

// BridgeArgs are the flags the server passes to every child bridge process.
func BridgeArgs(settings *config.Settings, engine EngineName) []string {
	args := []string{"--engine", string(engine), "--language", settings.Language}
	if settings.ConfigPath != "" {
		args = append(args, "--config", settings.ConfigPath)
	}
	if settings.ModelsDir != "" {
		args = append(args, "--models-dir", settings.ModelsDir)
	}
	if settings.AutoDownload {
		args = append(args, "--auto-download")
	}
	return args
}

func ProvideBridgeRunner(settings *config.Settings, engine EngineName, logger *zap.Logger) services.BridgeRunner {
	return bridge.NewClient(settings.TranscribeTimeout, logger.Named("client"), BridgeArgs(settings, engine)...)
}

func ProvideTranscriptionService(
	settings *config.Settings,
	engine EngineName,
	runner services.BridgeRunner,
	resultCache cache.ResultCache,
	dao repository.RunDAO,
	archiver storage.Archiver,
	m *metrics.Metrics,
	logger *zap.Logger,
) services.TranscriptionService {
	return services.NewTranscriptionService(services.TranscriptionConfig{
		Model:    settings.Model,
		Engine:   string(engine),
		CacheTTL: settings.CacheTTL,
	}, runner, resultCache, dao, archiver, m, logger)
}

func ProvideEngineService(engines *appconfig.EnginesConfig, engine EngineName) services.EngineService {
	return services.NewEngineService(engines, string(engine))
}

func ProvideServiceContainer(
	settings *config.Settings,
	transcription services.TranscriptionService,
	history services.HistoryService,
	engines services.EngineService,
	logger *zap.Logger,
) *v1routes.ServiceContainer {
	return &v1routes.ServiceContainer{
		TranscriptionService: transcription,
		HistoryService:       history,
		EngineService:        engines,
		MaxUploadBytes:       settings.MaxUploadBytes(),
		TranscribeTimeout:    settings.TranscribeTimeout,
		Logger:               logger,
	}
}

func ProvideServerConfig(settings *config.Settings) server.Config {
	cfg := server.DefaultConfig(settings.Port, settings.TranscribeTimeout)
	cfg.StaticDir = settings.StaticDir
	return cfg
}
