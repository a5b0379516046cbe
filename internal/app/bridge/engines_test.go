package bridge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whisper-bridge/internal/app/api/provider"
	"whisper-bridge/internal/app/config"
	"whisper-bridge/internal/app/testutil"
)

func TestDescribeEngines(t *testing.T) {
	p := testutil.NewMockProvider()
	testutil.RegisterMockProvider(p)

	engines, err := config.ParseEnginesConfig([]byte(`
engines:
  broken:
    type: broken_type
    enabled: true
  off:
    type: mock
    enabled: false
`))
	require.NoError(t, err)

	factory := func(engineType string, cfg map[string]interface{}) (provider.TranscriptionProvider, error) {
		if engineType == "broken_type" {
			return nil, errors.New("binary not found")
		}
		return provider.NewProvider(engineType, cfg)
	}

	statuses := DescribeEngines(engines, "mock", factory)
	byName := map[string]EngineStatus{}
	for _, s := range statuses {
		byName[s.Name] = s
	}

	mock := byName["mock"]
	assert.True(t, mock.Ready)
	assert.True(t, mock.Default)
	require.NotNil(t, mock.Info)
	assert.Equal(t, "Mock", mock.Info.DisplayName)
	assert.True(t, p.Closed)

	assert.False(t, byName["broken"].Ready)
	assert.Equal(t, "broken_type", byName["broken"].Type)
	assert.Contains(t, byName["broken"].Error, "binary not found")

	assert.False(t, byName["off"].Ready)
	assert.Contains(t, byName["off"].Error, "disabled")

	for i := 1; i < len(statuses); i++ {
		assert.Less(t, statuses[i-1].Name, statuses[i].Name)
	}
}
