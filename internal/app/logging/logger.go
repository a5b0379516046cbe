package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// Name is the logger name stamped on every line.
const Name = "whisper_bridge"

// lineEncoding prints "time - name - LEVEL - message", the order zap's console
// encoder cannot produce on its own.
const lineEncoding = "whisper-bridge-console"

func init() {
	_ = zap.RegisterEncoder(lineEncoding, func(cfg zapcore.EncoderConfig) (zapcore.Encoder, error) {
		return newLineEncoder(cfg), nil
	})
}

type lineEncoder struct {
	zapcore.Encoder
}

func newLineEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	cfg.LevelKey = ""
	return lineEncoder{zapcore.NewConsoleEncoder(cfg)}
}

func (e lineEncoder) Clone() zapcore.Encoder {
	return lineEncoder{e.Encoder.Clone()}
}

// EncodeEntry moves the level after the logger name.
func (e lineEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	level := ent.Level.CapitalString()
	if ent.LoggerName == "" {
		ent.LoggerName = level
	} else {
		ent.LoggerName += " - " + level
	}
	return e.Encoder.EncodeEntry(ent, fields)
}

func productionEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.ConsoleSeparator = " - "
	cfg.CallerKey = zapcore.OmitKey
	return cfg
}

// NewLogger creates a zap logger that writes to stderr.
// stdout is left untouched because the host process may capture it separately.
func NewLogger(development bool) (*zap.Logger, error) {
	var config zap.Config

	if development {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.Encoding = lineEncoding
		config.EncoderConfig = productionEncoderConfig()
		config.DisableCaller = true
		config.Sampling = nil
	}

	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.DisableStacktrace = true

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	return logger.Named(Name), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// Sync flushes the logger, ignoring the EINVAL returned when stderr is a terminal.
func Sync(logger *zap.Logger) {
	if logger == nil {
		return
	}
	if err := logger.Sync(); err != nil && !isIgnorableSyncError(err) {
		_, _ = os.Stderr.WriteString("failed to flush logger: " + err.Error() + "\n")
	}
}
