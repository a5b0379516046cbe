package bridge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"whisper-bridge/internal/app/model"
)

// ErrTimeout is returned when the bridge process outlives the client timeout.
var ErrTimeout = errors.New("transcription timed out")

// RunError means the bridge exited non-zero and left no output file.
type RunError struct {
	Err    error
	Output string
}

func (e *RunError) Error() string { return fmt.Sprintf("Transcription failed: %v", e.Err) }
func (e *RunError) Unwrap() error { return e.Err }

// ReadError means the output file could not be read.
type ReadError struct{ Err error }

func (e *ReadError) Error() string { return fmt.Sprintf("Failed to read transcription results: %v", e.Err) }
func (e *ReadError) Unwrap() error { return e.Err }

// ParseError means the output file was not a valid envelope.
type ParseError struct{ Err error }

func (e *ParseError) Error() string { return fmt.Sprintf("Failed to parse transcription output: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// Client runs the bridge as a child process, the way a host application would.
type Client struct {
	// Executable is the bridge binary. Empty means the running executable.
	Executable string
	// Args go before --input/--output/--model, e.g. {"--engine", "openai"}.
	Args    []string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewClient returns a client that re-executes the current binary.
func NewClient(timeout time.Duration, logger *zap.Logger, args ...string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{Args: args, Timeout: timeout, Logger: logger}
}

// Transcribe runs the bridge on input, reads the envelope written to output and returns it.
// The caller decides what an envelope carrying an error means.
func (c *Client) Transcribe(ctx context.Context, input, output, modelName string) (*model.Envelope, error) {
	exe := c.Executable
	if exe == "" {
		var err error
		if exe, err = os.Executable(); err != nil {
			return nil, fmt.Errorf("locate bridge executable: %w", err)
		}
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	args := append(append([]string{}, c.Args...), "--input", input, "--output", output, "--model", modelName)
	cmd := exec.CommandContext(ctx, exe, args...)

	start := time.Now()
	combined, err := cmd.CombinedOutput()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		c.Logger.Warn("Transcription timed out", zap.Duration("after", time.Since(start)))
		return nil, ErrTimeout
	}

	if err != nil {
		c.Logger.Error("Transcription error", zap.Duration("after", time.Since(start)), zap.Error(err))
		c.Logger.Debug("Command output", zap.String("output", string(combined)))

		if _, statErr := os.Stat(output); statErr != nil {
			return nil, &RunError{Err: err, Output: string(combined)}
		}
		c.Logger.Info("Output file exists despite error, trying to use it")
	}

	data, err := os.ReadFile(output)
	if err != nil {
		return nil, &ReadError{Err: err}
	}

	env, err := ReadEnvelope(data)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return env, nil
}
