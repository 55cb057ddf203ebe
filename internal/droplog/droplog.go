// Package droplog records NPC kills and the items they drop.
//
// Gameplay never waits on storage: the lifecycle hands records to a Sink,
// failures come back as *StorageError and are logged by the caller.
package droplog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/udisondev/rsckernel/internal/model"
)

// ErrQueueFull is returned by Async when the write queue has no room.
var ErrQueueFull = errors.New("drop log queue full")

// ErrClosed is returned after a sink has been closed.
var ErrClosed = errors.New("drop log closed")

// DropRecord is one item granted to a player by an NPC death.
type DropRecord struct {
	At         time.Time      `json:"at"`
	PlayerID   model.ObjectID `json:"player_id"`
	PlayerName string         `json:"player_name"`
	NpcID      model.ObjectID `json:"npc_id"`
	NpcDefID   int32          `json:"npc_def_id"`
	ItemID     int32          `json:"item_id"`
	Amount     int32          `json:"amount"`
}

// KillRecord is one NPC kill credited to a player.
type KillRecord struct {
	At         time.Time      `json:"at"`
	PlayerID   model.ObjectID `json:"player_id"`
	PlayerName string         `json:"player_name"`
	NpcID      model.ObjectID `json:"npc_id"`
	NpcDefID   int32          `json:"npc_def_id"`
	NpcName    string         `json:"npc_name"`
	Location   model.Point    `json:"location"`
	Zone       string         `json:"zone,omitempty"`
	KillCount  int32          `json:"kill_count"`
}

// Sink stores drop and kill records.
type Sink interface {
	LogDrop(ctx context.Context, rec DropRecord) error
	LogKill(ctx context.Context, rec KillRecord) error
}

// StorageError wraps a backend failure.
type StorageError struct {
	Backend string
	Op      string
	Err     error
}

// Error implements error.
func (e *StorageError) Error() string {
	return fmt.Sprintf("drop log %s %s: %v", e.Backend, e.Op, e.Err)
}

// Unwrap returns the backend cause.
func (e *StorageError) Unwrap() error { return e.Err }

// Wrap turns a backend error into a *StorageError. Nil stays nil.
func Wrap(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Backend: backend, Op: op, Err: err}
}

// Nop discards every record.
type Nop struct{}

// LogDrop implements Sink.
func (Nop) LogDrop(context.Context, DropRecord) error { return nil }

// LogKill implements Sink.
func (Nop) LogKill(context.Context, KillRecord) error { return nil }

// Fanout writes every record to all sinks. One failing sink does not stop
// the others; failures are joined.
type Fanout []Sink

// LogDrop implements Sink.
func (f Fanout) LogDrop(ctx context.Context, rec DropRecord) error {
	var errs []error
	for _, s := range f {
		if err := s.LogDrop(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogKill implements Sink.
func (f Fanout) LogKill(ctx context.Context, rec KillRecord) error {
	var errs []error
	for _, s := range f {
		if err := s.LogKill(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
