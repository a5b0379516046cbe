package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appconfig "whisper-bridge/internal/app/config"
	"whisper-bridge/internal/app/repository"
	"whisper-bridge/internal/app/repository/pg"
	"whisper-bridge/internal/app/repository/sqlite"
	"whisper-bridge/internal/config"
)

func TestOpenHistory(t *testing.T) {
	ctx := context.Background()

	dao, err := OpenHistory(ctx, "")
	require.NoError(t, err)
	assert.IsType(t, repository.NoopDAO{}, dao)

	dao, err = OpenHistory(ctx, "sqlite://"+filepath.Join(t.TempDir(), "h.db"))
	require.NoError(t, err)
	assert.IsType(t, &sqlite.SQLiteDB{}, dao)
	require.NoError(t, dao.Close())

	dao, err = OpenHistory(ctx, filepath.Join(t.TempDir(), "plain.db"))
	require.NoError(t, err)
	assert.IsType(t, &sqlite.SQLiteDB{}, dao)
	require.NoError(t, dao.Close())

	var _ repository.RunDAO = (*pg.PostgresDB)(nil)
}

func TestBridgeArgs(t *testing.T) {
	s := &config.Settings{Engine: "openai", Language: "de"}
	assert.Equal(t, []string{"--engine", "openai", "--language", "de"}, BridgeArgs(s, "openai"))

	s.ConfigPath = "/etc/wb/engines.yaml"
	s.ModelsDir = "/models"
	s.AutoDownload = true
	assert.Equal(t, []string{
		"--engine", "openai", "--language", "de",
		"--config", "/etc/wb/engines.yaml",
		"--models-dir", "/models",
		"--auto-download",
	}, BridgeArgs(s, "openai"))
}

func TestEngineNameFollowsEnginesFile(t *testing.T) {
	engines, err := appconfig.ParseEnginesConfig([]byte(`
default_engine: openai
engines:
  openai:
    type: openai
    enabled: true
`))
	require.NoError(t, err)

	settings := &config.Settings{Engine: config.DefaultEngine, Language: "auto"}
	engine := ProvideEngineName(settings, engines)
	assert.Equal(t, EngineName("openai"), engine)
	assert.Equal(t, []string{"--engine", "openai", "--language", "auto"}, BridgeArgs(settings, engine))

	settings.Engine, settings.EngineFromEnv = "whisper_server", true
	assert.Equal(t, EngineName("whisper_server"), ProvideEngineName(settings, engines))

	assert.Equal(t, EngineName("whisper_cpp"), ProvideEngineName(&config.Settings{Engine: config.DefaultEngine}, nil))
}

func TestEngineServiceMarksFileDefault(t *testing.T) {
	engines, err := appconfig.ParseEnginesConfig([]byte(`
default_engine: openai
engines:
  openai:
    type: openai
    enabled: true
    auth:
      api_key: sk-test
`))
	require.NoError(t, err)

	svc := ProvideEngineService(engines, ProvideEngineName(&config.Settings{Engine: config.DefaultEngine}, engines))
	marked := 0
	for _, e := range svc.ListEngines(context.Background()) {
		assert.Equal(t, e.Name == "openai", e.Default, e.Name)
		if e.Default {
			marked++
		}
	}
	assert.Equal(t, 1, marked)
}

func TestInitializeServer(t *testing.T) {
	settings := &config.Settings{
		Model:             "tiny",
		Engine:            "whisper_cpp",
		Language:          "auto",
		Port:              "8080",
		TranscribeTimeout: time.Minute,
		MaxUploadMB:       25,
		HistoryDSN:        filepath.Join(t.TempDir(), "h.db"),
	}

	srv, cleanup, err := InitializeServer(context.Background(), settings, nil, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	routes := map[string]bool{}
	for _, r := range srv.Router().Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	assert.True(t, routes["POST /api/transcribe"])
	assert.True(t, routes["GET /api/history"])
	assert.True(t, routes["GET /api/history/export"])
	assert.True(t, routes["GET /api/engines"])
	assert.True(t, routes["GET /health"])
	assert.True(t, routes["GET /metrics"])
}
