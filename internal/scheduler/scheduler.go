// Package scheduler runs deferred and repeating world tasks on the game tick.
//
// Tasks are kept in a min-heap by due time with FIFO order for equal due
// times. Tick pops the whole due batch under the lock and runs it outside,
// so tasks submitted while a tick is running wait for the next tick.
package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultTick is the game tick length.
const DefaultTick = 640 * time.Millisecond

// Scheduler is a time-ordered task queue driven by Tick.
type Scheduler struct {
	tick time.Duration
	now  func() time.Time

	mu    sync.Mutex
	queue taskQueue
	seq   uint64

	executed atomic.Int64
	failed   atomic.Int64
}

// New creates a scheduler. A nil clock means time.Now.
func New(tick time.Duration, clock func() time.Time) *Scheduler {
	if tick <= 0 {
		tick = DefaultTick
	}
	if clock == nil {
		clock = time.Now
	}
	return &Scheduler{tick: tick, now: clock}
}

// Now returns the scheduler clock.
func (s *Scheduler) Now() time.Time { return s.now() }

// TickInterval returns the configured tick length.
func (s *Scheduler) TickInterval() time.Duration { return s.tick }

// Schedule submits a task due after delay. A repeating task fires every delay
// until cancelled or its action returns ErrStop.
func (s *Scheduler) Schedule(name string, delay time.Duration, repeat bool, action Action) *Task {
	if action == nil {
		panic("scheduler: nil action for task " + name)
	}
	if delay < 0 {
		delay = 0
	}
	if repeat && delay == 0 {
		// a zero period would re-arm into the same tick forever
		delay = s.tick
	}

	t := &Task{
		s:      s,
		name:   name,
		action: action,
		repeat: repeat,
		period: delay,
	}

	s.mu.Lock()
	t.due = s.now().Add(delay)
	s.push(t)
	s.mu.Unlock()

	slog.Debug("task scheduled", "task", name, "delay", delay, "repeat", repeat)
	return t
}

// Immediate submits a one-shot task for the next tick.
func (s *Scheduler) Immediate(name string, action Action) *Task {
	return s.Schedule(name, 0, false, action)
}

// Cancel stops a task. A pending task is removed and never fires. A task
// already picked for the current tick is not interrupted but will not be
// re-armed. Returns false when the task was already finished or cancelled.
func (s *Scheduler) Cancel(t *Task) bool {
	if t == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.cancelled || t.state == stateDone {
		return false
	}
	t.cancelled = true
	if t.state == statePending && t.index >= 0 {
		heap.Remove(&s.queue, t.index)
		t.state = stateDone
	}
	return true
}

// Pending returns number of queued tasks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Stats returns executed and failed action counts.
func (s *Scheduler) Stats() (executed, failed int64) {
	return s.executed.Load(), s.failed.Load()
}

// Tick runs every task due at or before now, in due order.
// Returns how many actions were executed.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) int {
	s.mu.Lock()
	var due []*Task
	for s.queue.Len() > 0 && !s.queue[0].due.After(now) {
		t := heap.Pop(&s.queue).(*Task)
		t.state = stateDue
		due = append(due, t)
	}
	s.mu.Unlock()

	ran := 0
	for _, t := range due {
		if s.run(ctx, t, now) {
			ran++
		}
	}
	return ran
}

// Start drives Tick from a ticker until ctx is cancelled (blocks).
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	slog.Info("scheduler started", "tick", s.tick)

	for {
		select {
		case <-ctx.Done():
			executed, failed := s.Stats()
			slog.Info("scheduler stopping", "executed", executed, "failed", failed, "pending", s.Pending())
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx, s.now())
		}
	}
}

func (s *Scheduler) run(ctx context.Context, t *Task, now time.Time) bool {
	s.mu.Lock()
	if t.cancelled {
		t.state = stateDone
		s.mu.Unlock()
		return false
	}
	t.runs++
	s.mu.Unlock()

	err := s.invoke(ctx, t)
	s.executed.Add(1)

	stop := errors.Is(err, ErrStop)
	if err != nil && !stop {
		s.failed.Add(1)
		slog.Error("scheduled task failed", "task", t.name, "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if t.repeat && !stop && !t.cancelled {
		t.due = now.Add(t.period)
		s.push(t)
		return true
	}
	t.state = stateDone
	return true
}

func (s *Scheduler) invoke(ctx context.Context, t *Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &TaskError{Task: t.name, Panic: true, Err: fmt.Errorf("%v", r)}
		}
	}()
	if err := t.action(ctx); err != nil {
		if errors.Is(err, ErrStop) {
			return err
		}
		return &TaskError{Task: t.name, Err: err}
	}
	return nil
}

// push requires s.mu.
func (s *Scheduler) push(t *Task) {
	s.seq++
	t.seq = s.seq
	t.state = statePending
	heap.Push(&s.queue, t)
}
