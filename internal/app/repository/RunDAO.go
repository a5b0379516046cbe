package repository

import (
	"context"

	"whisper-bridge/internal/app/model"
)

// RunDAO stores one row per bridge invocation made by the server.
type RunDAO interface {
	Record(ctx context.Context, run model.Run) (int64, error)

	// Recent returns up to limit runs, newest first. limit <= 0 means all.
	Recent(ctx context.Context, limit int) ([]model.Run, error)

	Close() error
}

// NoopDAO is used when no history DSN is configured.
type NoopDAO struct{}

func (NoopDAO) Record(ctx context.Context, run model.Run) (int64, error)    { return 0, nil }
func (NoopDAO) Recent(ctx context.Context, limit int) ([]model.Run, error) { return []model.Run{}, nil }
func (NoopDAO) Close() error                                                { return nil }
