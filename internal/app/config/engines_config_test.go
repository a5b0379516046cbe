package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "whisper-bridge/internal/app/errors"
)

const sampleConfig = `
default_engine: whisper_cpp
engines:
  whisper_cpp:
    enabled: true
    settings:
      binary_path: ${WHISPER_TEST_BIN}/whisper-cli
      threads: 4
  openai:
    type: openai
    enabled: true
    auth:
      api_key: ${WHISPER_TEST_KEY}
    settings:
      base_url: https://api.openai.com/v1
  gpu_box:
    type: whisper_server
    enabled: false
    settings:
      base_url: http://gpu:8080
      custom_headers:
        X-Token: ${WHISPER_TEST_KEY}
`

func TestParseEnginesConfig(t *testing.T) {
	t.Setenv("WHISPER_TEST_BIN", "/opt/whisper")
	t.Setenv("WHISPER_TEST_KEY", "sk-yaml")

	cfg, err := ParseEnginesConfig([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "whisper_cpp", cfg.DefaultEngine)
	assert.Equal(t, "whisper_cpp", cfg.Engines["whisper_cpp"].Type, "type defaults to the engine name")
	assert.Equal(t, "/opt/whisper/whisper-cli", cfg.Engines["whisper_cpp"].Settings["binary_path"])
	assert.Equal(t, "sk-yaml", cfg.Engines["openai"].Auth["api_key"])

	headers := cfg.Engines["gpu_box"].Settings["custom_headers"].(map[string]interface{})
	assert.Equal(t, "sk-yaml", headers["X-Token"])
}

func TestResolve(t *testing.T) {
	cfg, err := ParseEnginesConfig([]byte(sampleConfig))
	require.NoError(t, err)

	engineType, settings, err := cfg.Resolve("openai")
	require.NoError(t, err)
	assert.Equal(t, "openai", engineType)
	assert.Contains(t, settings, "auth")
	assert.Contains(t, settings, "settings")

	_, _, err = cfg.Resolve("gpu_box")
	assert.True(t, errors.Is(err, apperrors.ErrEngineDisabled))

	engineType, settings, err = cfg.Resolve("whisper_server")
	require.NoError(t, err)
	assert.Equal(t, "whisper_server", engineType)
	assert.Empty(t, settings)

	var none *EnginesConfig
	engineType, _, err = none.Resolve("whisper_cpp")
	require.NoError(t, err)
	assert.Equal(t, "whisper_cpp", engineType)
}

func TestParseEnginesConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "bad yaml", yaml: "engines: [\n"},
		{name: "unknown default", yaml: "default_engine: nope\nengines:\n  whisper_cpp:\n    enabled: true\n"},
		{name: "disabled default", yaml: "default_engine: openai\nengines:\n  openai:\n    enabled: false\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEnginesConfig([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadEnginesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engines.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := LoadEnginesConfig(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Engines, 3)

	_, err = LoadEnginesConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, apperrors.ErrInvalidConfig))
}
