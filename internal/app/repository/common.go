package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"whisper-bridge/internal/app/model"
)

// CommonDB holds the queries shared by the sqlite and postgres DAOs.
type CommonDB struct {
	db           *sql.DB
	driverName   string
	placeholders PlaceholderFunc
}

// PlaceholderFunc generates parameter placeholders for different SQL dialects
type PlaceholderFunc func(n int) string

// NewCommonDB creates a new CommonDB instance
func NewCommonDB(db *sql.DB, driverName string) *CommonDB {
	var placeholders PlaceholderFunc

	switch driverName {
	case "postgres":
		placeholders = func(n int) string { return fmt.Sprintf("$%d", n) }
	default:
		placeholders = func(n int) string { return "?" }
	}

	return &CommonDB{
		db:           db,
		driverName:   driverName,
		placeholders: placeholders,
	}
}

// DB exposes the underlying handle.
func (c *CommonDB) DB() *sql.DB { return c.db }

const runColumns = "run_id, input_name, model, engine, segment_count, processing_ms, has_error, error_message, created_at"

// Record inserts a run and returns its id.
func (c *CommonDB) Record(ctx context.Context, run model.Run) (int64, error) {
	ph := make([]string, 9)
	for i := range ph {
		ph[i] = c.placeholders(i + 1)
	}
	query := fmt.Sprintf("INSERT INTO runs (%s) VALUES (%s)", runColumns, strings.Join(ph, ", "))
	args := []interface{}{
		run.RunID, run.InputName, run.Model, run.Engine, run.SegmentCount,
		run.ProcessingMs, run.HasError, run.ErrorMessage, run.CreatedAt.UTC(),
	}

	if c.driverName == "postgres" {
		var id int64
		if err := c.db.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("insert run: %w", err)
		}
		return id, nil
	}

	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns the newest runs first.
func (c *CommonDB) Recent(ctx context.Context, limit int) ([]model.Run, error) {
	query := fmt.Sprintf("SELECT id, %s FROM runs ORDER BY created_at DESC, id DESC", runColumns)
	var args []interface{}
	if limit > 0 {
		query += " LIMIT " + c.placeholders(1)
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	runs := make([]model.Run, 0)
	for rows.Next() {
		var r model.Run
		if err := rows.Scan(&r.ID, &r.RunID, &r.InputName, &r.Model, &r.Engine, &r.SegmentCount,
			&r.ProcessingMs, &r.HasError, &r.ErrorMessage, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the database.
func (c *CommonDB) Close() error {
	return c.db.Close()
}
