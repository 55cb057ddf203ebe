package journal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/rsckernel/internal/droplog"
	"github.com/udisondev/rsckernel/internal/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestJournal_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)}
	j := New(dir, clock.Now)
	ctx := context.Background()

	require.NoError(t, j.LogKill(ctx, droplog.KillRecord{PlayerID: model.ObjectID(1), NpcDefID: 62, NpcName: "Goblin", KillCount: 1}))
	require.NoError(t, j.LogDrop(ctx, droplog.DropRecord{PlayerID: model.ObjectID(1), NpcDefID: 62, ItemID: 10, Amount: 12}))
	require.NoError(t, j.Close())

	files, err := Files(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "drops-2024-03-01-12.jsonl.zst", filepath.Base(files[0]))

	entries, err := ReadFile(files[0])
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, KindKill, entries[0].Kind)
	assert.True(t, clock.Now().Equal(entries[0].At))
	require.NotNil(t, entries[0].Kill)
	assert.Equal(t, "Goblin", entries[0].Kill.NpcName)
	assert.Equal(t, KindDrop, entries[1].Kind)
	require.NotNil(t, entries[1].Drop)
	assert.Equal(t, int32(12), entries[1].Drop.Amount)
}

func TestJournal_RotatesHourly(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 59, 0, 0, time.UTC)}
	j := New(dir, clock.Now)
	ctx := context.Background()

	require.NoError(t, j.LogDrop(ctx, droplog.DropRecord{ItemID: 1, Amount: 1}))
	clock.Advance(2 * time.Minute)
	require.NoError(t, j.LogDrop(ctx, droplog.DropRecord{ItemID: 2, Amount: 1}))
	require.NoError(t, j.LogDrop(ctx, droplog.DropRecord{ItemID: 3, Amount: 1}))
	require.NoError(t, j.Close())

	files, err := Files(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)

	first, err := ReadFile(files[0])
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := ReadFile(files[1])
	require.NoError(t, err)
	assert.Len(t, second, 2)
}

func TestJournal_AppendsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	ctx := context.Background()

	for range 2 {
		j := New(dir, clock.Now)
		require.NoError(t, j.LogDrop(ctx, droplog.DropRecord{ItemID: 10, Amount: 1}))
		require.NoError(t, j.Close())
	}

	files, err := Files(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)

	entries, err := ReadFile(files[0])
	require.NoError(t, err)
	assert.Len(t, entries, 2, "concatenated zstd frames decode as one stream")
}

func TestJournal_WriteErrorIsStorageError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	j := New(filepath.Join(blocker, "sub"), nil)
	err := j.LogDrop(context.Background(), droplog.DropRecord{ItemID: 1, Amount: 1})
	require.Error(t, err)

	var se *droplog.StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "journal", se.Backend)
}

func TestJournal_ClosedRejectsWrites(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	j := New(dir, clock.Now)
	ctx := context.Background()

	require.NoError(t, j.LogDrop(ctx, droplog.DropRecord{ItemID: 10, Amount: 1}))
	require.NoError(t, j.Close())
	require.NoError(t, j.Close())

	err := j.LogKill(ctx, droplog.KillRecord{NpcDefID: 3})
	require.ErrorIs(t, err, ErrClosed)
	var se *droplog.StorageError
	require.True(t, errors.As(err, &se))

	files, err := Files(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	entries, err := ReadFile(files[0])
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
