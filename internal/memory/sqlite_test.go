package memory

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T, limit int) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "helpbot.db"), limit)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreAppendAndHistory(t *testing.T) {
	store := newTestSQLiteStore(t, 10)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "U1", "first question", "first answer"))
	require.NoError(t, store.Append(ctx, "U1", "second question", "second answer"))

	records, err := store.History(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "first question", records[0].Question)
	require.Equal(t, "second answer", records[1].Response)
	require.False(t, records[0].Timestamp.IsZero())
}

func TestSQLiteStoreTrimsToLimit(t *testing.T) {
	store := newTestSQLiteStore(t, 2)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, store.Append(ctx, "U1", fmt.Sprintf("question %d", i), "answer"))
		time.Sleep(time.Millisecond)
	}

	records, err := store.History(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "question 2", records[0].Question)
	require.Equal(t, "question 3", records[1].Question)
}

func TestSQLiteStorePruneBefore(t *testing.T) {
	store := newTestSQLiteStore(t, 10)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "U1", "question", "answer"))

	removed, err := store.PruneBefore(ctx, time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	records, err := store.History(ctx, "U1")
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestNewStoreSelectsBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	fileStore, err := NewStore(ctx, Options{Backend: "file", FilePath: filepath.Join(dir, "m.json"), Limit: 10}, testLogger())
	require.NoError(t, err)
	require.IsType(t, &FileStore{}, fileStore)

	sqliteStore, err := NewStore(ctx, Options{Backend: "sqlite", SQLitePath: filepath.Join(dir, "m.db"), Limit: 10}, testLogger())
	require.NoError(t, err)
	require.IsType(t, &SQLiteStore{}, sqliteStore)
	sqliteStore.Close()

	_, err = NewStore(ctx, Options{Backend: "postgres"}, testLogger())
	require.Error(t, err)

	_, err = NewStore(ctx, Options{Backend: "bogus"}, testLogger())
	require.Error(t, err)
}
