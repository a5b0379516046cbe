package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"whisper-bridge/internal/app/repository"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT    NOT NULL UNIQUE,
	input_name    TEXT    NOT NULL,
	model         TEXT    NOT NULL,
	engine        TEXT    NOT NULL,
	segment_count INTEGER NOT NULL DEFAULT 0,
	processing_ms INTEGER NOT NULL DEFAULT 0,
	has_error     BOOLEAN NOT NULL DEFAULT 0,
	error_message TEXT    NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs (created_at);`

// SQLiteDB is the run history stored in a local file.
type SQLiteDB struct {
	*repository.CommonDB
}

// PathFromDSN strips an optional sqlite:// prefix.
func PathFromDSN(dsn string) string {
	return strings.TrimPrefix(dsn, "sqlite://")
}

// NewSQLiteDB opens (creating if needed) the database at dbFilePath.
func NewSQLiteDB(dbFilePath string) (*SQLiteDB, error) {
	dbFilePath = PathFromDSN(dbFilePath)
	if dir := filepath.Dir(dbFilePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?cache=shared&mode=rwc&_busy_timeout=5000", dbFilePath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite serialises writers anyway
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return &SQLiteDB{CommonDB: repository.NewCommonDB(db, "sqlite3")}, nil
}
