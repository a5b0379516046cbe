package migrate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whisper-bridge/internal/app/model"
	"whisper-bridge/internal/app/repository/sqlite"
	"whisper-bridge/internal/app/testutil"
)

func TestCopy(t *testing.T) {
	ctx := context.Background()
	from, err := sqlite.NewSQLiteDB(testutil.TempSQLitePath(t))
	require.NoError(t, err)
	defer from.Close()
	to, err := sqlite.NewSQLiteDB(testutil.TempSQLitePath(t))
	require.NoError(t, err)
	defer to.Close()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"r1", "r2", "r3"} {
		_, err := from.Record(ctx, model.Run{RunID: id, InputName: id + ".wav", Model: "tiny", Engine: "mock", CreatedAt: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}
	_, err = to.Record(ctx, model.Run{RunID: "r2", InputName: "r2.wav", Model: "tiny", Engine: "mock", CreatedAt: base})
	require.NoError(t, err)

	copied, err := Copy(ctx, from, to, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, copied)

	runs, err := to.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)

	copied, err = Copy(ctx, from, to, nil)
	require.NoError(t, err)
	assert.Zero(t, copied)
}
