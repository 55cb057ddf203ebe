package indexdb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/rsckernel/internal/droplog"
	"github.com/udisondev/rsckernel/internal/model"
)

func openTemp(t *testing.T) (*SQLiteIndex, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "index.sqlite")
	idx, err := Open(path)
	require.NoError(t, err)
	return idx, path
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("")
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestSQLiteIndex_DropTotals(t *testing.T) {
	idx, _ := openTemp(t)
	defer idx.Close()
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	drops := []struct {
		npc  int32
		item int32
		amt  int32
	}{
		{62, 10, 5}, {62, 10, 7}, {62, 20, 1}, {477, 526, 1},
	}
	for _, d := range drops {
		require.NoError(t, idx.LogDrop(ctx, droplog.DropRecord{
			At: at, PlayerID: model.ObjectID(1), PlayerName: "a", NpcDefID: d.npc, ItemID: d.item, Amount: d.amt,
		}))
	}

	got, err := idx.DropTotals(ctx, 62)
	require.NoError(t, err)
	assert.Equal(t, []ItemTotal{
		{ItemID: 10, Drops: 2, Amount: 12},
		{ItemID: 20, Drops: 1, Amount: 1},
	}, got)

	none, err := idx.DropTotals(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteIndex_KillCountSurvivesReopen(t *testing.T) {
	idx, path := openTemp(t)
	ctx := context.Background()

	for i := range 3 {
		require.NoError(t, idx.LogKill(ctx, droplog.KillRecord{
			At:        time.Now(),
			PlayerID:  model.ObjectID(9),
			NpcDefID:  62,
			NpcName:   "Goblin",
			Location:  model.MustPoint(120, 640),
			KillCount: int32(i + 1),
		}))
	}
	require.NoError(t, idx.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.KillCount(ctx, model.ObjectID(9))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestSQLiteIndex_ErrorsAreStorageErrors(t *testing.T) {
	idx, _ := openTemp(t)
	require.NoError(t, idx.Close())

	err := idx.LogDrop(context.Background(), droplog.DropRecord{ItemID: 1, Amount: 1})
	require.Error(t, err)

	var se *droplog.StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "sqlite", se.Backend)
}
