// Package migrate copies run history between stores, typically from a local
// sqlite file into a shared postgres database.
package migrate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"whisper-bridge/internal/app/repository"
)

// Copy writes every run in from into to, oldest first, and returns how many
// were copied. Runs whose run_id already exists in to are skipped.
func Copy(ctx context.Context, from, to repository.RunDAO, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	runs, err := from.Recent(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("read source history: %w", err)
	}

	existing, err := to.Recent(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("read target history: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		seen[r.RunID] = true
	}

	copied := 0
	for i := len(runs) - 1; i >= 0; i-- {
		run := runs[i]
		if seen[run.RunID] {
			continue
		}
		if _, err := to.Record(ctx, run); err != nil {
			return copied, fmt.Errorf("copy run %s: %w", run.RunID, err)
		}
		copied++
	}

	logger.Info("History migrated", zap.Int("copied", copied), zap.Int("skipped", len(runs)-copied))
	return copied, nil
}
