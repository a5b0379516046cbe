package bridge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whisper-bridge/internal/app/api/provider"
	"whisper-bridge/internal/app/config"
	"whisper-bridge/internal/app/model"
	"whisper-bridge/internal/app/testutil"
)

func newTestBridge(p *testutil.MockProvider) *Bridge {
	return New(nil, nil).WithProviderFactory(func(engineType string, cfg map[string]interface{}) (provider.TranscriptionProvider, error) {
		return p, nil
	})
}

func readOutput(t *testing.T, path string) *model.Envelope {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	env, err := ReadEnvelope(data)
	require.NoError(t, err)
	return env
}

func TestRunSuccess(t *testing.T) {
	p := testutil.NewMockProvider()
	input := testutil.WriteAudioFile(t, "speech.wav", 2048)
	output := filepath.Join(t.TempDir(), "out.json")

	code := newTestBridge(p).Run(context.Background(), Options{Input: input, Output: output, Model: "tiny", Engine: "mock"})
	require.Equal(t, ExitOK, code)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	expected := `{
  "segments": [
    {
      "text": " And so my fellow Americans,",
      "start_time": 0,
      "end_time": 2.5
    },
    {
      "text": " ask not what your country can do for you.",
      "start_time": 2.5,
      "end_time": 7.25
    }
  ]
}
`
	assert.Equal(t, expected, string(data))
	assert.Equal(t, "tiny", p.LoadedModel)
	assert.True(t, p.Closed)
	require.Equal(t, 1, p.RequestCount())
	assert.Equal(t, input, p.Requests[0].InputFilePath)
}

func TestRunEmptyTranscript(t *testing.T) {
	p := testutil.NewMockProvider()
	p.Segments = nil
	input := testutil.WriteAudioFile(t, "silence.wav", 16)
	output := filepath.Join(t.TempDir(), "out.json")

	code := newTestBridge(p).Run(context.Background(), Options{Input: input, Output: output, Model: "tiny", Engine: "mock"})
	require.Equal(t, ExitOK, code)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.JSONEq(t, `{"segments": []}`, string(data))
}

func TestRunMissingInput(t *testing.T) {
	p := testutil.NewMockProvider()
	output := filepath.Join(t.TempDir(), "out.json")

	code := newTestBridge(p).Run(context.Background(), Options{Input: "/no/such/file.wav", Output: output, Model: "tiny", Engine: "mock"})
	assert.Equal(t, ExitFailure, code)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error": "Input file does not exist: /no/such/file.wav", "segments": []}`, string(data))
	assert.Empty(t, p.LoadedModel, "engine must not be touched before the input check")
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(p *testutil.MockProvider)
		message string
	}{
		{
			name:    "model load",
			setup:   func(p *testutil.MockProvider) { p.LoadErr = errors.New("model not found: huge") },
			message: "model not found: huge",
		},
		{
			name: "engine error",
			setup: func(p *testutil.MockProvider) {
				p.TranscribeErr = provider.NewError("mock", "transcription_failed", "decoder exploded", true)
			},
			message: "decoder exploded",
		},
		{
			name:    "panic",
			setup:   func(p *testutil.MockProvider) { p.PanicWith = "index out of range" },
			message: "index out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testutil.NewMockProvider()
			tt.setup(p)
			input := testutil.WriteAudioFile(t, "speech.wav", 64)
			output := filepath.Join(t.TempDir(), "out.json")

			code := newTestBridge(p).Run(context.Background(), Options{Input: input, Output: output, Model: "tiny", Engine: "mock"})
			assert.Equal(t, ExitFailure, code)

			env := readOutput(t, output)
			assert.Equal(t, tt.message, env.Error)
			require.Len(t, env.Segments, 1)
			assert.Equal(t, "Error transcribing audio: "+tt.message, env.Segments[0].Text)
			assert.Zero(t, env.Segments[0].StartTime)
			assert.Zero(t, env.Segments[0].EndTime)
		})
	}
}

func TestRunEngineConstructionFails(t *testing.T) {
	b := New(nil, nil).WithProviderFactory(func(string, map[string]interface{}) (provider.TranscriptionProvider, error) {
		return nil, errors.New("whisper.cpp binary not found at whisper-cli")
	})
	input := testutil.WriteAudioFile(t, "speech.wav", 64)
	output := filepath.Join(t.TempDir(), "out.json")

	assert.Equal(t, ExitFailure, b.Run(context.Background(), Options{Input: input, Output: output, Model: "tiny", Engine: "whisper_cpp"}))
	assert.Equal(t, "whisper.cpp binary not found at whisper-cli", readOutput(t, output).Error)
}

func TestRunUnknownEngine(t *testing.T) {
	input := testutil.WriteAudioFile(t, "speech.wav", 64)
	output := filepath.Join(t.TempDir(), "out.json")

	code := New(nil, nil).Run(context.Background(), Options{Input: input, Output: output, Model: "tiny", Engine: "no_such_engine"})
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, readOutput(t, output).Error, "engine not found")
}

func TestRunDisabledEngine(t *testing.T) {
	engines, err := config.ParseEnginesConfig([]byte("engines:\n  openai:\n    enabled: false\n"))
	require.NoError(t, err)

	input := testutil.WriteAudioFile(t, "speech.wav", 64)
	output := filepath.Join(t.TempDir(), "out.json")

	code := New(nil, engines).Run(context.Background(), Options{Input: input, Output: output, Model: "tiny", Engine: "openai"})
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, readOutput(t, output).Error, "engine is disabled")
}

func TestRunPassesSettingsToEngine(t *testing.T) {
	var got map[string]interface{}
	p := testutil.NewMockProvider()
	b := New(nil, nil).WithProviderFactory(func(engineType string, cfg map[string]interface{}) (provider.TranscriptionProvider, error) {
		got = cfg
		return p, nil
	})
	input := testutil.WriteAudioFile(t, "speech.wav", 64)
	output := filepath.Join(t.TempDir(), "out.json")

	code := b.Run(context.Background(), Options{Input: input, Output: output, Model: "base", Engine: "whisper_cpp", ModelsDir: "/models", AutoDownload: true})
	require.Equal(t, ExitOK, code)

	settings := provider.SettingsOf(got)
	assert.Equal(t, "/models", settings["models_dir"])
	assert.Equal(t, true, settings["auto_download"])
}

func TestRunUsageErrors(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.json")

	code := New(nil, nil).Run(context.Background(), Options{Output: output, Model: "tiny", Engine: "mock"})
	assert.Equal(t, ExitUsage, code)
	assert.NoFileExists(t, output)

	code = New(nil, nil).Run(context.Background(), Options{Input: "a.wav", Model: "tiny", Engine: "mock"})
	assert.Equal(t, ExitUsage, code)
}

func TestRunEmptyModelWritesFailure(t *testing.T) {
	p := testutil.NewMockProvider()
	input := testutil.WriteAudioFile(t, "talk.wav", 64)
	output := filepath.Join(t.TempDir(), "out.json")

	code := newTestBridge(p).Run(context.Background(), Options{Input: input, Output: output, Model: "", Engine: "mock"})
	assert.Equal(t, ExitFailure, code)
	assert.Empty(t, p.LoadedModel)

	env := readOutput(t, output)
	assert.Equal(t, "model is required", env.Error)
	require.Len(t, env.Segments, 1)
	assert.Equal(t, "Error transcribing audio: model is required", env.Segments[0].Text)
}

func TestRunMissingInputBeatsEmptyModel(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.json")

	code := newTestBridge(testutil.NewMockProvider()).Run(context.Background(), Options{Input: "/no/such/file.wav", Output: output, Engine: "mock"})
	assert.Equal(t, ExitFailure, code)

	env := readOutput(t, output)
	assert.Equal(t, "Input file does not exist: /no/such/file.wav", env.Error)
	assert.Empty(t, env.Segments)
}

func TestEncodeEnvelopeKeepsUnicode(t *testing.T) {
	data, err := EncodeEnvelope(model.Envelope{Segments: []model.Segment{{Text: "星巴克 <b>&", EndTime: 1}}})
	require.NoError(t, err)
	assert.Contains(t, string(data), "星巴克 <b>&")
	assert.NotContains(t, string(data), `"error"`)

	data, err = EncodeEnvelope(model.Envelope{Error: "x"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"segments": []`)
}

func TestWriteEnvelopeUnwritable(t *testing.T) {
	err := WriteEnvelope(filepath.Join(t.TempDir(), "missing-dir", "out.json"), ErrorEnvelope("x"))
	assert.ErrorContains(t, err, "failed to write output")
}
