package droplog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu    sync.Mutex
	drops []DropRecord
	kills []KillRecord
	err   error
}

func (r *recordingSink) LogDrop(_ context.Context, rec DropRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.drops = append(r.drops, rec)
	return nil
}

func (r *recordingSink) LogKill(_ context.Context, rec KillRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.kills = append(r.kills, rec)
	return nil
}

func (r *recordingSink) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.drops), len(r.kills)
}

func TestStorageError(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap("postgres", "insert drop", cause)

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "postgres", se.Backend)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "drop log postgres insert drop: connection refused", err.Error())

	assert.NoError(t, Wrap("postgres", "insert drop", nil))
	assert.Same(t, err, Wrap("sqlite", "other", err), "already wrapped errors pass through")
}

func TestFanout_WritesAllAndJoinsErrors(t *testing.T) {
	ok := &recordingSink{}
	broken := &recordingSink{err: Wrap("sqlite", "insert", errors.New("disk full"))}
	last := &recordingSink{}

	err := Fanout{ok, broken, last}.LogDrop(context.Background(), DropRecord{ItemID: 20, Amount: 1})
	require.Error(t, err)

	var se *StorageError
	assert.ErrorAs(t, err, &se)

	d1, _ := ok.counts()
	d3, _ := last.counts()
	assert.Equal(t, 1, d1)
	assert.Equal(t, 1, d3, "sinks after a failing one still receive the record")

	require.NoError(t, Fanout{ok, last}.LogKill(context.Background(), KillRecord{NpcDefID: 4}))
	_, k1 := ok.counts()
	assert.Equal(t, 1, k1)
}

func TestNop(t *testing.T) {
	var s Sink = Nop{}
	assert.NoError(t, s.LogDrop(context.Background(), DropRecord{}))
	assert.NoError(t, s.LogKill(context.Background(), KillRecord{}))
}

func TestAsync_QueueFull(t *testing.T) {
	a := NewAsync(&recordingSink{}, 1)

	require.NoError(t, a.LogDrop(context.Background(), DropRecord{ItemID: 1}))
	err := a.LogDrop(context.Background(), DropRecord{ItemID: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueueFull)

	_, dropped, _ := a.Stats()
	assert.Equal(t, int64(1), dropped)
}

func TestAsync_RunWritesAndDrainsOnClose(t *testing.T) {
	next := &recordingSink{}
	a := NewAsync(next, 16)

	for i := range 5 {
		require.NoError(t, a.LogDrop(context.Background(), DropRecord{ItemID: int32(i)}))
	}
	require.NoError(t, a.LogKill(context.Background(), KillRecord{NpcDefID: 4}))
	a.Close()

	require.NoError(t, a.Run(context.Background()))
	a.Wait()

	drops, kills := next.counts()
	assert.Equal(t, 5, drops)
	assert.Equal(t, 1, kills)

	written, _, _ := a.Stats()
	assert.Equal(t, int64(6), written)

	err := a.LogDrop(context.Background(), DropRecord{})
	assert.ErrorIs(t, err, ErrClosed)
	a.Close()
}

func TestAsync_RunStopsOnCancel(t *testing.T) {
	next := &recordingSink{}
	a := NewAsync(next, 16)
	require.NoError(t, a.LogDrop(context.Background(), DropRecord{ItemID: 10}))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		d, _ := next.counts()
		return d == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestAsync_FailuresCounted(t *testing.T) {
	next := &recordingSink{err: errors.New("boom")}
	a := NewAsync(next, 4)
	require.NoError(t, a.LogDrop(context.Background(), DropRecord{}))
	a.Close()
	require.NoError(t, a.Run(context.Background()))

	_, _, failed := a.Stats()
	assert.Equal(t, int64(1), failed)
}
