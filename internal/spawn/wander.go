package spawn

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/udisondev/rsckernel/internal/ai"
	"github.com/udisondev/rsckernel/internal/model"
	"github.com/udisondev/rsckernel/internal/world"
)

const (
	// WanderRadius is how far one wander step may go on each axis.
	WanderRadius int32 = 8
	// DefaultWanderEvery is how many AI ticks pass between wander steps.
	DefaultWanderEvery int32 = 5
)

// NPCs never wander into this area.
var forbiddenWander = model.NewRect(680, 491, 696, 511)

// WalkablePoint picks the next wander destination: a random tile at most
// WanderRadius away on each axis, inside bounds. A candidate in the
// forbidden area keeps the NPC where it is.
func WalkablePoint(rng model.Roller, current model.Point, bounds model.Rect) model.Point {
	candidate := bounds.Clamp(model.Point{
		X: between(rng, max(bounds.MinX, current.X-WanderRadius), min(bounds.MaxX, current.X+WanderRadius)),
		Y: between(rng, max(bounds.MinY, current.Y-WanderRadius), min(bounds.MaxY, current.Y+WanderRadius)),
	})
	if forbiddenWander.Contains(candidate) {
		return current
	}
	return candidate
}

// between returns a value in [lo, hi]; lo when the range is empty.
func between(rng model.Roller, lo, hi int32) int32 {
	if hi <= lo {
		return lo
	}
	return lo + int32(rng.IntN(int(hi-lo)+1))
}

// globalRoller draws from the goroutine-safe top-level generator.
type globalRoller struct{}

func (globalRoller) IntN(n int) int { return rand.IntN(n) }

// WanderAI walks an idle NPC around its spawn bounds.
type WanderAI struct {
	npc   *model.Npc
	world *world.World
	rng   model.Roller
	every int32

	isRunning atomic.Bool
	tickCount atomic.Int32
	intention atomic.Int32
}

// NewWanderAI creates a wander controller. every below 1 means DefaultWanderEvery.
func NewWanderAI(npc *model.Npc, w *world.World, rng model.Roller, every int32) *WanderAI {
	if rng == nil {
		rng = globalRoller{}
	}
	if every < 1 {
		every = DefaultWanderEvery
	}
	return &WanderAI{npc: npc, world: w, rng: rng, every: every}
}

// Start starts AI controller
func (a *WanderAI) Start() {
	a.isRunning.Store(true)
	a.setIntention(ai.IntentionIdle)
}

// Stop stops AI controller
func (a *WanderAI) Stop() {
	a.isRunning.Store(false)
	a.setIntention(ai.IntentionIdle)
}

// CurrentIntention returns current AI intention
func (a *WanderAI) CurrentIntention() ai.Intention {
	return ai.Intention(a.intention.Load())
}

// Tick takes one wander step every few ticks. Only Active NPCs move;
// engaged, dying and respawning ones hold still, and so does a fresh
// spawn until its immunity runs out.
func (a *WanderAI) Tick(_ context.Context, now time.Time) {
	if !a.isRunning.Load() {
		return
	}
	if a.npc.State() != model.StateActive || a.npc.IsImmune(now) {
		a.setIntention(ai.IntentionHold)
		return
	}
	if a.tickCount.Add(1)%a.every != 0 {
		a.setIntention(ai.IntentionIdle)
		return
	}

	from := a.npc.Location()
	dest := WalkablePoint(a.rng, from, a.npc.Spawn().Bounds)
	if dest == from {
		a.setIntention(ai.IntentionIdle)
		return
	}
	a.world.MoveNpc(a.npc, dest)
	a.setIntention(ai.IntentionWander)

	if ai.IsDebugEnabled() {
		slog.Debug("npc wandered",
			"npc", a.npc.Name(),
			"npcID", a.npc.ObjectID(),
			"from", from,
			"to", dest)
	}
}

func (a *WanderAI) setIntention(i ai.Intention) {
	a.intention.Store(int32(i))
}
