package testutil

import (
	"path/filepath"
	"testing"
)

// TempSQLitePath returns a database path inside a temp dir removed after the test.
func TempSQLitePath(t testing.TB) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "history.db")
}
