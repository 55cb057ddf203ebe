package scheduler

import (
	"errors"
	"fmt"
)

// ErrStop is returned by a repeating task's action to end the repetition.
// It is not logged as a failure.
var ErrStop = errors.New("stop repeating task")

// TaskError wraps a failure or panic raised by a task's action.
type TaskError struct {
	Task  string
	Panic bool
	Err   error
}

func (e *TaskError) Error() string {
	if e.Panic {
		return fmt.Sprintf("task %q panicked: %v", e.Task, e.Err)
	}
	return fmt.Sprintf("task %q: %v", e.Task, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }
