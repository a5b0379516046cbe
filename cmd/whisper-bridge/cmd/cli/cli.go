// Package cli holds the state shared by the whisper-bridge subcommands.
package cli

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	appconfig "whisper-bridge/internal/app/config"
	"whisper-bridge/internal/app/logging"
	"whisper-bridge/internal/config"
)

// Persistent flags, bound by the root command.
var (
	Verbose    bool
	ConfigPath string
)

// ExitError ends the process with Code without printing anything.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// UsageError is a command-line mistake. It prints usage and exits 2.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

// Usagef builds a UsageError.
func Usagef(format string, args ...interface{}) error {
	return &UsageError{Err: fmt.Errorf(format, args...)}
}

var (
	loggerOnce sync.Once
	logger     *zap.Logger
)

// Logger builds the process logger on first use and installs it as zap's global.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		l, err := logging.NewLogger(Verbose)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
			l = zap.NewNop()
		}
		logger = l
		zap.ReplaceGlobals(logger)
	})
	return logger
}

// Sync flushes the logger if one was built.
func Sync() {
	if logger != nil {
		logging.Sync(logger)
	}
}

// Settings reads and validates the environment.
func Settings() (*config.Settings, error) {
	return config.FromEnv()
}

// SettingsOrDefaults is for the bridge, which must always reach the point of
// writing an envelope.
func SettingsOrDefaults() *config.Settings {
	s, err := config.FromEnv()
	if err != nil {
		Logger().Warn("Ignoring invalid environment settings", zap.Error(err))
		return config.Defaults()
	}
	return s
}

// EnginesFile is --config, else WHISPER_BRIDGE_CONFIG.
func EnginesFile(settings *config.Settings) string {
	if ConfigPath != "" {
		return ConfigPath
	}
	if settings != nil {
		return settings.ConfigPath
	}
	return ""
}

// LoadEngines loads the engines file, or returns nil when there is none.
func LoadEngines(settings *config.Settings) (*appconfig.EnginesConfig, error) {
	path := EnginesFile(settings)
	if path == "" {
		return nil, nil
	}
	engines, err := appconfig.LoadEnginesConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load engines config %s: %w", path, err)
	}
	return engines, nil
}

// ExitCode maps an error returned by a command to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return 2
	}
	return 1
}
