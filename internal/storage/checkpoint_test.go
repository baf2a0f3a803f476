package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCheckpoints(t *testing.T) (*SQLiteStorage, *CheckpointManager) {
	t.Helper()
	store, cleanup := createTestStorage(t)
	t.Cleanup(cleanup)

	cm, err := store.Checkpoints()
	require.NoError(t, err)

	clock := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	cm.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return store, cm
}

func TestCheckpoints_MemoryDatabase(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Checkpoints()
	assert.ErrorIs(t, err, ErrCheckpointUnsupported)
}

func TestCheckpoints_CreateAndRestore(t *testing.T) {
	ctx := context.Background()
	store, cm := newTestCheckpoints(t)

	require.NoError(t, store.SetMany(ctx, map[string]string{
		"transactions": `[{"id":1}]`,
		"categories":   `[]`,
	}))

	info, err := cm.Create(ctx, "before-cleanup", "monthly tidy")
	require.NoError(t, err)
	assert.Equal(t, "before-cleanup", info.ID)
	assert.Equal(t, "monthly tidy", info.Description)
	assert.Equal(t, 2, info.Entries)
	assert.Equal(t, ExpectedSchemaVersion, info.SchemaVersion)
	assert.Positive(t, info.FileSize)
	assert.False(t, info.IsAuto)
	assert.FileExists(t, filepath.Join(cm.Dir(), "before-cleanup.db"))

	require.NoError(t, store.Set(ctx, "transactions", `[]`))
	require.NoError(t, store.Delete(ctx, "categories"))
	require.NoError(t, store.Set(ctx, "extra", "x"))

	require.NoError(t, cm.Restore(ctx, "before-cleanup"))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"categories", "transactions"}, keys)

	value, ok, err := store.Get(ctx, "transactions")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, value)
}

func TestCheckpoints_CreateErrors(t *testing.T) {
	ctx := context.Background()
	_, cm := newTestCheckpoints(t)

	_, err := cm.Create(ctx, "weekly", "")
	require.NoError(t, err)

	_, err = cm.Create(ctx, "weekly", "")
	assert.ErrorIs(t, err, ErrCheckpointExists)

	for _, tag := range []string{"../escape", "a/b", `a\b`} {
		_, err = cm.Create(ctx, tag, "")
		assert.ErrorIs(t, err, ErrInvalidCheckpointID, tag)
	}

	info, err := cm.Create(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, "checkpoint-20240315-103002", info.ID)
}

func TestCheckpoints_ListGetDelete(t *testing.T) {
	ctx := context.Background()
	_, cm := newTestCheckpoints(t)

	_, err := cm.Create(ctx, "first", "")
	require.NoError(t, err)
	_, err = cm.Create(ctx, "second", "")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(cm.Dir(), "broken.meta.json"), []byte("{"), 0o600))

	list, err := cm.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].ID, "newest first")
	assert.Equal(t, "first", list[1].ID)

	info, err := cm.Get(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, "first", info.ID)

	_, err = cm.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCheckpointNotFound)

	require.NoError(t, cm.Delete(ctx, "first"))
	assert.ErrorIs(t, cm.Delete(ctx, "first"), ErrCheckpointNotFound)
	assert.ErrorIs(t, cm.Restore(ctx, "first"), ErrCheckpointNotFound)

	list, err = cm.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "second", list[0].ID)
}

func TestCheckpoints_AutoCheckpointPrunes(t *testing.T) {
	ctx := context.Background()
	_, cm := newTestCheckpoints(t)

	_, err := cm.Create(ctx, "manual", "")
	require.NoError(t, err)

	for range maxAutoCheckpoints + 2 {
		info, autoErr := cm.AutoCheckpoint(ctx, "reset")
		require.NoError(t, autoErr)
		assert.True(t, info.IsAuto)
		assert.Equal(t, "Automatic checkpoint before reset", info.Description)
	}

	list, err := cm.List(ctx)
	require.NoError(t, err)

	auto := 0
	for _, cp := range list {
		if cp.IsAuto {
			auto++
		}
	}
	assert.Equal(t, maxAutoCheckpoints, auto)
	assert.Len(t, list, maxAutoCheckpoints+1, "manual checkpoints are never pruned")
}

func TestCheckpoints_CorruptedFile(t *testing.T) {
	ctx := context.Background()
	_, cm := newTestCheckpoints(t)

	_, err := cm.Create(ctx, "damaged", "")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(cm.Dir(), "damaged.db"), []byte("not a database"), 0o600))

	assert.ErrorIs(t, cm.Restore(ctx, "damaged"), ErrCheckpointCorrupted)
}
