package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/rsckernel/internal/droplog"
	"github.com/udisondev/rsckernel/internal/model"
)

func TestDropLogRepository_LogDrop(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewDropLogRepository(pool)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, item := range []int32{10, 20, 526} {
		err := repo.LogDrop(ctx, droplog.DropRecord{
			At:         at.Add(time.Duration(i) * time.Second),
			PlayerID:   model.ObjectID(42),
			PlayerName: "zezima",
			NpcID:      model.ObjectID(900),
			NpcDefID:   477,
			ItemID:     item,
			Amount:     int32(i + 1),
		})
		require.NoError(t, err)
	}
	require.NoError(t, repo.LogDrop(ctx, droplog.DropRecord{At: at, PlayerID: model.ObjectID(7), ItemID: 1, Amount: 1}))

	got, err := repo.DropsByPlayer(ctx, model.ObjectID(42), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int32(526), got[0].ItemID)
	assert.Equal(t, int32(3), got[0].Amount)
	assert.Equal(t, int32(20), got[1].ItemID)
	assert.Equal(t, "zezima", got[0].PlayerName)
	assert.Equal(t, model.ObjectID(900), got[0].NpcID)
	assert.Equal(t, int32(477), got[0].NpcDefID)
	assert.True(t, got[0].At.Equal(at.Add(2*time.Second)))
}

func TestDropLogRepository_LogKill(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewDropLogRepository(pool)
	ctx := context.Background()

	for i := range 3 {
		err := repo.LogKill(ctx, droplog.KillRecord{
			At:         time.Now(),
			PlayerID:   model.ObjectID(42),
			PlayerName: "zezima",
			NpcID:      model.ObjectID(900),
			NpcDefID:   62,
			NpcName:    "Goblin",
			Location:   model.MustPoint(120, 640),
			KillCount:  int32(i + 1),
		})
		require.NoError(t, err)
	}

	n, err := repo.KillCount(ctx, model.ObjectID(42), 62)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = repo.KillCount(ctx, model.ObjectID(42), 477)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDropLogRepository_ErrorsAreStorageErrors(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewDropLogRepository(pool)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.LogDrop(ctx, droplog.DropRecord{At: time.Now(), ItemID: 1, Amount: 1})
	require.Error(t, err)

	var se *droplog.StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "postgres", se.Backend)
	assert.Equal(t, "insert drop", se.Op)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, runMigrations(ctx, pool))

	sqlDB, err := openSQL(pool)
	require.NoError(t, err)
	defer sqlDB.Close()

	version, err := schemaVersion(ctx, sqlDB)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
}
