package pg

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"whisper-bridge/internal/app/repository"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id            BIGSERIAL PRIMARY KEY,
	run_id        TEXT        NOT NULL UNIQUE,
	input_name    TEXT        NOT NULL,
	model         TEXT        NOT NULL,
	engine        TEXT        NOT NULL,
	segment_count INTEGER     NOT NULL DEFAULT 0,
	processing_ms BIGINT      NOT NULL DEFAULT 0,
	has_error     BOOLEAN     NOT NULL DEFAULT FALSE,
	error_message TEXT        NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs (created_at);`

// PostgresDB is the run history stored in postgres.
type PostgresDB struct {
	*repository.CommonDB
}

// NewPostgresDB opens a connection. Nothing is sent to the server until Migrate.
func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newPostgresDB(db), nil
}

func newPostgresDB(db *sql.DB) *PostgresDB {
	return &PostgresDB{CommonDB: repository.NewCommonDB(db, "postgres")}
}

// Migrate creates the runs table if it is missing.
func (p *PostgresDB) Migrate(ctx context.Context) error {
	if _, err := p.DB().ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}
