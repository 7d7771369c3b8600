package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	t.Run("creates directory and database", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "subdir", "test.db")

		ctx := context.Background()
		store, err := NewStore(ctx, dbPath)
		require.NoError(t, err)
		defer store.Close()

		_, err = os.Stat(dbPath)
		assert.NoError(t, err)

		var result int
		require.NoError(t, store.QueryRowContext(ctx, "SELECT 1").Scan(&result))
		assert.Equal(t, 1, result)
	})

	t.Run("sets WAL mode", func(t *testing.T) {
		ctx := context.Background()
		store, err := NewStore(ctx, filepath.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)
		defer store.Close()

		var mode string
		require.NoError(t, store.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
		assert.Equal(t, "wal", mode)
	})
}

func TestStore_Migrate(t *testing.T) {
	t.Run("creates runs table", func(t *testing.T) {
		store := NewTestStore(t)

		var name string
		err := store.QueryRowContext(context.Background(),
			"SELECT name FROM sqlite_master WHERE type='table' AND name='runs'").Scan(&name)
		require.NoError(t, err)
		assert.Equal(t, "runs", name)
	})

	t.Run("is idempotent", func(t *testing.T) {
		store := NewTestStore(t)
		ctx := context.Background()

		require.NoError(t, store.Migrate(ctx))

		var versions int
		require.NoError(t, store.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
		files, err := migrationFiles()
		require.NoError(t, err)
		assert.Equal(t, len(files), versions)

		count, err := store.CountRuns(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}

func TestUpSection(t *testing.T) {
	t.Run("drops down section", func(t *testing.T) {
		content := `-- +migrate Up
CREATE TABLE test (id INTEGER);

-- +migrate Down
DROP TABLE test;
`
		assert.Equal(t, "CREATE TABLE test (id INTEGER);", upSection(content))
	})

	t.Run("no markers", func(t *testing.T) {
		assert.Equal(t, "CREATE TABLE test (id INTEGER);", upSection("CREATE TABLE test (id INTEGER);"))
	})
}

func TestRuns(t *testing.T) {
	ctx := context.Background()

	t.Run("record is idempotent per day", func(t *testing.T) {
		store := NewTestStore(t)
		params := RecordRunParams{
			Day:        "2026-02-15",
			QuoteIndex: 7,
			Author:     "Seneca",
			Caption:    "\"Luck...\"\n— Seneca\n\naxitome.com/#2026-02-15",
			Platform:   "twitter",
		}

		first, created, err := store.RecordRun(ctx, params)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Len(t, first.ID, 26)
		assert.Equal(t, StatusPending, first.Status)
		assert.Equal(t, int64(7), first.QuoteIndex)
		assert.False(t, first.PublishedAt.Valid)

		params.QuoteIndex = 8
		second, created, err := store.RecordRun(ctx, params)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, int64(7), second.QuoteIndex)

		n, err := store.CountRuns(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("get missing day", func(t *testing.T) {
		store := NewTestStore(t)
		_, err := store.GetRunByDay(ctx, "1999-01-01")
		assert.ErrorIs(t, err, ErrRunNotFound)
	})

	t.Run("mark published", func(t *testing.T) {
		store := NewTestStore(t)
		_, _, err := store.RecordRun(ctx, RecordRunParams{Day: "2026-02-15", Author: "Seneca", Caption: "c", Platform: "twitter"})
		require.NoError(t, err)

		at := time.Date(2026, 2, 15, 9, 0, 0, 0, time.UTC)
		require.NoError(t, store.MarkRunPublished(ctx, MarkRunPublishedParams{
			Day:          "2026-02-15",
			PublishedRef: "outbox/2026-02-15.json",
			PublishedAt:  at,
		}))

		run, err := store.GetRunByDay(ctx, "2026-02-15")
		require.NoError(t, err)
		assert.True(t, run.Published())
		assert.Equal(t, "outbox/2026-02-15.json", run.PublishedRef.String)
		assert.True(t, run.PublishedAt.Time.Equal(at))

		// A later failure does not demote a published run.
		require.NoError(t, store.MarkRunFailed(ctx, MarkRunFailedParams{Day: "2026-02-15", Error: "boom"}))
		run, err = store.GetRunByDay(ctx, "2026-02-15")
		require.NoError(t, err)
		assert.Equal(t, StatusPublished, run.Status)

		err = store.MarkRunPublished(ctx, MarkRunPublishedParams{Day: "2000-01-01", PublishedAt: at})
		assert.ErrorIs(t, err, ErrRunNotFound)
	})

	t.Run("mark failed", func(t *testing.T) {
		store := NewTestStore(t)
		_, _, err := store.RecordRun(ctx, RecordRunParams{Day: "2026-02-16", Author: "Seneca", Caption: "c", Platform: "twitter"})
		require.NoError(t, err)

		require.NoError(t, store.MarkRunFailed(ctx, MarkRunFailedParams{Day: "2026-02-16", Error: "disk full"}))
		run, err := store.GetRunByDay(ctx, "2026-02-16")
		require.NoError(t, err)
		assert.Equal(t, StatusFailed, run.Status)
		assert.Equal(t, "disk full", run.Error.String)

		n, err := store.CountRunsByStatus(ctx, StatusFailed)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("list newest first", func(t *testing.T) {
		store := NewTestStore(t)
		for _, day := range []string{"2026-02-14", "2026-02-16", "2026-02-15"} {
			_, _, err := store.RecordRun(ctx, RecordRunParams{Day: day, Author: "Seneca", Caption: "c", Platform: "twitter"})
			require.NoError(t, err)
		}

		runs, err := store.ListRuns(ctx, 2)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, "2026-02-16", runs[0].Day)
		assert.Equal(t, "2026-02-15", runs[1].Day)
	})
}

// NewTestStore provides a migrated database in a temporary directory.
func NewTestStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	store, err := NewStore(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))

	t.Cleanup(func() {
		store.Close()
	})

	return store
}
