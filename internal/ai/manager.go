package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/rsckernel/internal/model"
)

// DefaultInterval is the AI tick period.
const DefaultInterval = time.Second

// TickManager manages AI ticks for all registered NPCs
type TickManager struct {
	controllers     sync.Map // map[model.ObjectID]Controller
	controllerCount atomic.Int32
	interval        time.Duration
	workers         int
	clock           func() time.Time
	ticks           atomic.Int64
}

// NewTickManager creates new AI tick manager. workers bounds how many
// controllers tick at once; values below 1 mean one.
func NewTickManager(interval time.Duration, workers int, clock func() time.Time) *TickManager {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if clock == nil {
		clock = time.Now
	}
	return &TickManager{
		interval: interval,
		workers:  max(workers, 1),
		clock:    clock,
	}
}

// Register registers AI controller for NPC. A controller already registered
// for the NPC is stopped and replaced.
func (m *TickManager) Register(npcID model.ObjectID, controller Controller) {
	if old, loaded := m.controllers.Swap(npcID, controller); loaded {
		old.(Controller).Stop()
	} else {
		m.controllerCount.Add(1)
	}
	controller.Start()

	slog.Debug("AI controller registered",
		"npcID", npcID,
		"intention", controller.CurrentIntention())
}

// Unregister unregisters AI controller
func (m *TickManager) Unregister(npcID model.ObjectID) {
	value, ok := m.controllers.LoadAndDelete(npcID)
	if !ok {
		return
	}
	m.controllerCount.Add(-1)
	value.(Controller).Stop()

	slog.Debug("AI controller unregistered", "npcID", npcID)
}

// Start runs the AI tick loop until ctx is cancelled (blocks).
func (m *TickManager) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	slog.Info("AI tick manager started", "interval", m.interval, "workers", m.workers)

	for {
		select {
		case <-ctx.Done():
			slog.Info("AI tick manager stopping", "ticks", m.ticks.Load())
			return ctx.Err()
		case <-ticker.C:
			m.TickAll(ctx)
		}
	}
}

// TickAll ticks every registered controller once and returns how many ran.
// Controllers run on at most workers goroutines; a panicking controller is
// logged and does not stop the others.
func (m *TickManager) TickAll(ctx context.Context) int {
	now := m.clock()
	m.ticks.Add(1)

	var g errgroup.Group
	g.SetLimit(m.workers)

	var count atomic.Int32
	m.controllers.Range(func(key, value any) bool {
		if ctx.Err() != nil {
			return false
		}
		npcID := key.(model.ObjectID)
		controller := value.(Controller)
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("AI controller panicked", "npcID", npcID, "panic", r)
				}
			}()
			controller.Tick(ctx, now)
			count.Add(1)
			return nil
		})
		return true
	})
	_ = g.Wait()

	n := int(count.Load())
	if n > 0 && IsDebugEnabled() {
		slog.Debug("AI tick completed", "controllers", n)
	}
	return n
}

// Count returns number of registered controllers
func (m *TickManager) Count() int {
	return int(m.controllerCount.Load())
}

// GetController returns controller for NPC
func (m *TickManager) GetController(npcID model.ObjectID) (Controller, error) {
	value, ok := m.controllers.Load(npcID)
	if !ok {
		return nil, fmt.Errorf("controller not found for npc %s", npcID)
	}
	return value.(Controller), nil
}
