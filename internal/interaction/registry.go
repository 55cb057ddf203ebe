// Package interaction implements "walk then act": a command against a
// distant target is parked per actor and re-validated every time the actor's
// movement settles. It fires once the actor is in range, or is silently
// discarded when the actor or target is no longer valid.
package interaction

import (
	"context"
	"log/slog"
	"sync"

	"github.com/udisondev/rsckernel/internal/model"
)

// DefaultRange is how close (in tiles) an actor must stand to act.
const DefaultRange int32 = 1

// State is the outcome of a settle check.
type State int32

const (
	StateNone State = iota // nothing pending for the actor
	StatePending
	StateFired
	StateDiscarded
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "NONE"
	case StatePending:
		return "PENDING"
	case StateFired:
		return "FIRED"
	case StateDiscarded:
		return "DISCARDED"
	default:
		return "UNKNOWN"
	}
}

// Fire is what an action receives when its interaction fires.
type Fire struct {
	Actor  *model.Player
	Target model.ObjectID
	Click  int32 // click option captured at registration
}

// Action runs once when the interaction fires.
type Action func(ctx context.Context, f Fire) error

// Resolver looks entities up by identity.
type Resolver interface {
	Player(id model.ObjectID) (*model.Player, bool)
	Locate(id model.ObjectID) (model.Point, bool)
}

type pending struct {
	target model.ObjectID
	click  int32
	action Action
}

// Registry holds at most one pending interaction per actor.
type Registry struct {
	resolver   Resolver
	rangeTiles int32

	mu      sync.Mutex
	pending map[model.ObjectID]*pending
}

// NewRegistry creates a registry. rangeTiles <= 0 means DefaultRange.
func NewRegistry(resolver Resolver, rangeTiles int32) *Registry {
	if rangeTiles <= 0 {
		rangeTiles = DefaultRange
	}
	return &Registry{
		resolver:   resolver,
		rangeTiles: rangeTiles,
		pending:    make(map[model.ObjectID]*pending),
	}
}

// Register parks an action for actor against target, discarding whatever
// was pending for the actor. The actor's current click option is captured.
// An actor in combat cannot queue an interaction.
func (r *Registry) Register(actorID, targetID model.ObjectID, action Action) bool {
	actor, ok := r.resolver.Player(actorID)
	if !ok || action == nil {
		return false
	}
	if actor.InCombat() {
		slog.Debug("interaction refused in combat", "actor", actorID, "target", targetID)
		return false
	}
	p := &pending{target: targetID, click: actor.Click(), action: action}

	r.mu.Lock()
	_, replaced := r.pending[actorID]
	r.pending[actorID] = p
	r.mu.Unlock()

	if replaced {
		slog.Debug("pending interaction replaced", "actor", actorID, "target", targetID)
	}
	return true
}

// Cancel drops the actor's pending interaction.
func (r *Registry) Cancel(actorID model.ObjectID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pending[actorID]; !ok {
		return false
	}
	delete(r.pending, actorID)
	return true
}

// Pending reports whether the actor has a parked interaction and its target.
func (r *Registry) Pending(actorID model.ObjectID) (model.ObjectID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pending[actorID]
	if !ok {
		return 0, false
	}
	return p.target, true
}

// OnMovementSettled re-validates the actor's pending interaction and fires
// it when the actor is in range. A busy, fighting or ranging actor loses
// it. Action errors are logged; a discard is not an error.
func (r *Registry) OnMovementSettled(ctx context.Context, actorID model.ObjectID) State {
	r.mu.Lock()
	p, ok := r.pending[actorID]
	if !ok {
		r.mu.Unlock()
		return StateNone
	}

	actor, ok := r.resolver.Player(actorID)
	if !ok || actor.IsBusy() || actor.InCombat() || actor.IsRanging() {
		delete(r.pending, actorID)
		r.mu.Unlock()
		return StateDiscarded
	}

	targetLoc, ok := r.resolver.Locate(p.target)
	if !ok {
		delete(r.pending, actorID)
		r.mu.Unlock()
		slog.Debug("interaction target gone", "actor", actorID, "target", p.target)
		return StateDiscarded
	}

	if !actor.Location().WithinRange(targetLoc, r.rangeTiles) {
		r.mu.Unlock()
		return StatePending
	}

	delete(r.pending, actorID)
	r.mu.Unlock()

	actor.ResetTransient()
	if err := p.action(ctx, Fire{Actor: actor, Target: p.target, Click: p.click}); err != nil {
		slog.Warn("interaction action failed", "actor", actorID, "target", p.target, "error", err)
	}
	return StateFired
}
