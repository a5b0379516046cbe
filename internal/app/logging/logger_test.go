package logging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	for _, development := range []bool{false, true} {
		logger, err := NewLogger(development)
		require.NoError(t, err)
		require.NotNil(t, logger)
		logger.Info("logger ready")
		Sync(logger)
	}
}

func TestLineShape(t *testing.T) {
	enc := newLineEncoder(productionEncoderConfig())
	at := time.Date(2024, 3, 1, 12, 30, 5, 0, time.UTC)

	buf, err := enc.EncodeEntry(zapcore.Entry{
		Time:       at,
		Level:      zapcore.InfoLevel,
		LoggerName: Name,
		Message:    "Model loaded in 0.42 seconds",
		Caller:     zapcore.NewEntryCaller(0, "bridge.go", 148, true),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T12:30:05.000Z - whisper_bridge - INFO - Model loaded in 0.42 seconds\n", buf.String())

	buf, err = enc.Clone().EncodeEntry(zapcore.Entry{Time: at, Level: zapcore.ErrorLevel, Message: "boom"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T12:30:05.000Z - ERROR - boom\n", buf.String())
}

func TestNopAndNilSync(t *testing.T) {
	logger := Nop()
	logger.Error("discarded")
	assert.NotPanics(t, func() { Sync(nil) })
}
