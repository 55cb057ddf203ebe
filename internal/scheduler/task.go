package scheduler

import (
	"context"
	"time"
)

// Action is the unit of work a task runs.
type Action func(ctx context.Context) error

type taskState uint8

const (
	statePending taskState = iota // waiting in the queue
	stateDue                      // popped for the current tick
	stateDone
)

// Task is a handle on scheduled work. Fields are owned by the Scheduler and
// guarded by its mutex; holders may only read the name and Cancel.
type Task struct {
	s      *Scheduler
	name   string
	action Action
	repeat bool
	period time.Duration

	due       time.Time
	seq       uint64
	index     int
	state     taskState
	cancelled bool
	runs      int64
}

// Name returns the task label used in logs.
func (t *Task) Name() string { return t.name }

// Cancel stops the task. See Scheduler.Cancel.
func (t *Task) Cancel() bool { return t.s.Cancel(t) }

// Due returns the next due time.
func (t *Task) Due() time.Time {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.due
}

// Runs returns how many times the action has been executed.
func (t *Task) Runs() int64 {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.runs
}

// Done reports whether the task will never run again.
func (t *Task) Done() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.state == stateDone || t.cancelled
}
