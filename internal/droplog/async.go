package droplog

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// DefaultQueueSize is the write queue capacity used when none is configured.
const DefaultQueueSize = 4096

type request struct {
	drop *DropRecord
	kill *KillRecord
}

// Async decouples a slow Sink from the simulation tick. Records are queued
// and written by a single goroutine started with Run; a full queue rejects
// the record instead of blocking.
type Async struct {
	next Sink
	ch   chan request

	mu      sync.RWMutex
	closed  bool
	done    chan struct{}
	written atomic.Int64
	dropped atomic.Int64
	failed  atomic.Int64
}

// NewAsync wraps next. queueSize <= 0 uses DefaultQueueSize.
func NewAsync(next Sink, queueSize int) *Async {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Async{
		next: next,
		ch:   make(chan request, queueSize),
		done: make(chan struct{}),
	}
}

// LogDrop implements Sink.
func (a *Async) LogDrop(_ context.Context, rec DropRecord) error {
	return a.enqueue("drop", request{drop: &rec})
}

// LogKill implements Sink.
func (a *Async) LogKill(_ context.Context, rec KillRecord) error {
	return a.enqueue("kill", request{kill: &rec})
}

func (a *Async) enqueue(op string, r request) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return &StorageError{Backend: "async", Op: op, Err: ErrClosed}
	}
	select {
	case a.ch <- r:
		return nil
	default:
		a.dropped.Add(1)
		return &StorageError{Backend: "async", Op: op, Err: ErrQueueFull}
	}
}

// Run writes queued records until ctx is cancelled or Close is called, then
// drains what is left. Always returns nil so it can run in an errgroup.
func (a *Async) Run(ctx context.Context) error {
	defer close(a.done)
	for {
		select {
		case <-ctx.Done():
			a.drain()
			return nil
		case r, ok := <-a.ch:
			if !ok {
				return nil
			}
			a.write(r)
		}
	}
}

// Close stops accepting records. Run drains the queue and returns.
func (a *Async) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.closed = true
	close(a.ch)
}

// Wait blocks until Run has returned.
func (a *Async) Wait() { <-a.done }

// Stats returns written, rejected and failed record counts.
func (a *Async) Stats() (written, dropped, failed int64) {
	return a.written.Load(), a.dropped.Load(), a.failed.Load()
}

func (a *Async) drain() {
	for {
		select {
		case r, ok := <-a.ch:
			if !ok {
				return
			}
			a.write(r)
		default:
			return
		}
	}
}

func (a *Async) write(r request) {
	// Background context: a shutdown must not abort records already accepted.
	ctx := context.Background()
	var err error
	switch {
	case r.drop != nil:
		err = a.next.LogDrop(ctx, *r.drop)
	case r.kill != nil:
		err = a.next.LogKill(ctx, *r.kill)
	}
	if err != nil {
		a.failed.Add(1)
		slog.Error("drop log write failed", "error", err)
		return
	}
	a.written.Add(1)
}
