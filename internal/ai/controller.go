// Package ai runs per-NPC behaviour controllers on a fixed tick.
package ai

import (
	"context"
	"time"
)

// Intention is what a controller is currently doing.
type Intention int32

const (
	IntentionIdle Intention = iota
	IntentionWander
	// IntentionHold means the NPC is fighting, dying or gone; behaviour is
	// suspended until it is back in the Active state.
	IntentionHold
)

// String returns human-readable intention name.
func (i Intention) String() string {
	switch i {
	case IntentionIdle:
		return "IDLE"
	case IntentionWander:
		return "WANDER"
	case IntentionHold:
		return "HOLD"
	default:
		return "UNKNOWN"
	}
}

// Controller represents AI controller interface for NPCs
type Controller interface {
	// Start starts AI controller
	Start()

	// Stop stops AI controller
	Stop()

	// CurrentIntention returns current AI intention
	CurrentIntention() Intention

	// Tick performs one behaviour step. Controllers of different NPCs are
	// ticked in parallel.
	Tick(ctx context.Context, now time.Time)
}
