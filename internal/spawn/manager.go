// Package spawn places catalog NPCs and scenery into the world and keeps
// their per-NPC background work: wandering, stat restoration and respawn
// bookkeeping.
package spawn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/rsckernel/internal/ai"
	"github.com/udisondev/rsckernel/internal/data"
	"github.com/udisondev/rsckernel/internal/model"
	"github.com/udisondev/rsckernel/internal/scheduler"
	"github.com/udisondev/rsckernel/internal/world"
)

// DefaultStatRestoreInterval is the period of the per-NPC stat restore task.
const DefaultStatRestoreInterval = 60 * time.Second

// ErrUnknownObject is returned for a scenery spawn without a definition.
var ErrUnknownObject = errors.New("unknown object definition")

// Source lists what to place at startup.
type Source interface {
	Spawns() []model.NpcSpawn
	ObjectSpawns() []data.ObjectSpawn
	ObjectDef(id int32) (*model.GameObjectDefinition, bool)
}

// Spawner creates and registers one NPC.
type Spawner interface {
	Spawn(spawn model.NpcSpawn) (*model.Npc, error)
}

// Deps are the collaborators of a Manager. AI and Respawns are optional.
type Deps struct {
	Source    Source
	Spawner   Spawner
	World     *world.World
	Scheduler *scheduler.Scheduler
	AI        *ai.TickManager
	Respawns  *RespawnTaskManager
	Rand      model.Roller
}

// Manager manages NPC and scenery spawns
type Manager struct {
	source          Source
	spawner         Spawner
	world           *world.World
	sched           *scheduler.Scheduler
	aiManager       *ai.TickManager
	respawns        *RespawnTaskManager
	rng             model.Roller
	restoreInterval time.Duration

	mu       sync.Mutex
	restores map[model.ObjectID]*scheduler.Task
	spawned  map[model.ObjectID]struct{} // spawned and not yet despawned

	objectCount atomic.Int32
}

// NewManager creates new spawn manager. Panics if a required dependency is nil.
func NewManager(deps Deps, restoreInterval time.Duration) *Manager {
	if deps.Source == nil || deps.Spawner == nil || deps.World == nil || deps.Scheduler == nil {
		panic("NewManager: source, spawner, world and scheduler are required")
	}
	if restoreInterval <= 0 {
		restoreInterval = DefaultStatRestoreInterval
	}
	rng := deps.Rand
	if rng == nil {
		rng = globalRoller{}
	}
	return &Manager{
		source:          deps.Source,
		spawner:         deps.Spawner,
		world:           deps.World,
		sched:           deps.Scheduler,
		aiManager:       deps.AI,
		respawns:        deps.Respawns,
		rng:             rng,
		restoreInterval: restoreInterval,
		restores:        make(map[model.ObjectID]*scheduler.Task),
		spawned:         make(map[model.ObjectID]struct{}),
	}
}

// DoSpawn spawns one NPC, attaches its wander controller and starts its
// stat restore task.
func (m *Manager) DoSpawn(spawn model.NpcSpawn) (*model.Npc, error) {
	npc, err := m.spawner.Spawn(spawn)
	if err != nil {
		return nil, err
	}

	if m.aiManager != nil {
		m.aiManager.Register(npc.ObjectID(), NewWanderAI(npc, m.world, m.rng, DefaultWanderEvery))
	}
	m.scheduleRestore(npc.ObjectID())
	m.mu.Lock()
	m.spawned[npc.ObjectID()] = struct{}{}
	m.mu.Unlock()

	slog.Debug("NPC spawned",
		"npcID", npc.ObjectID(),
		"name", npc.Name(),
		"defID", spawn.NpcID,
		"location", spawn.Start)
	return npc, nil
}

// DespawnNpc removes an NPC for good: behaviour, background tasks and world
// registration. The NPC may already be gone from the world (removed by the
// lifecycle); it still stops counting as spawned.
func (m *Manager) DespawnNpc(npcID model.ObjectID) {
	if m.aiManager != nil {
		m.aiManager.Unregister(npcID)
	}
	if m.respawns != nil {
		m.respawns.CancelRespawn(npcID)
	}

	m.mu.Lock()
	task, ok := m.restores[npcID]
	delete(m.restores, npcID)
	delete(m.spawned, npcID)
	m.mu.Unlock()
	if ok {
		task.Cancel()
	}

	if _, found := m.world.Npc(npcID); found {
		m.world.UnregisterNpc(npcID)
	}
	slog.Debug("NPC despawned", "npcID", npcID)
}

// scheduleRestore starts the repeating stat restore of one NPC. The task
// ends itself once the NPC leaves the world.
func (m *Manager) scheduleRestore(npcID model.ObjectID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var task *scheduler.Task
	task = m.sched.Schedule("restore npc stats", m.restoreInterval, true, func(context.Context) error {
		npc, ok := m.world.Npc(npcID)
		if !ok {
			m.mu.Lock()
			if m.restores[npcID] == task {
				delete(m.restores, npcID)
			}
			m.mu.Unlock()
			return scheduler.ErrStop
		}
		npc.RestoreSkills()
		return nil
	})
	m.restores[npcID] = task
}

// RestoreTaskCount returns number of running stat restore tasks.
func (m *Manager) RestoreTaskCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.restores)
}

// SpawnCount returns number of NPCs spawned and not despawned.
func (m *Manager) SpawnCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.spawned)
}

// ObjectCount returns number of placed scenery objects.
func (m *Manager) ObjectCount() int {
	return int(m.objectCount.Load())
}

// SpawnAll spawns every catalog NPC. A failing spawn is logged and skipped;
// the first error is returned after the rest were placed.
func (m *Manager) SpawnAll(ctx context.Context) error {
	count := 0
	var firstErr error

	for _, spawn := range m.source.Spawns() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("spawning all NPCs: %w", err)
		}
		if _, err := m.DoSpawn(spawn); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			slog.Error("failed to spawn NPC",
				"defID", spawn.NpcID,
				"location", spawn.Start,
				"error", err)
			continue
		}
		count++
	}

	if firstErr != nil {
		slog.Warn("SpawnAll completed with errors", "spawned", count, "error", firstErr)
		return fmt.Errorf("spawning all NPCs: %w", firstErr)
	}

	slog.Info("all NPCs spawned", "count", count)
	return nil
}

// SpawnObjects places every catalog scenery object. Unknown definitions are
// skipped and reported.
func (m *Manager) SpawnObjects() error {
	count := 0
	var errs []error

	for _, o := range m.source.ObjectSpawns() {
		def, ok := m.source.ObjectDef(o.ObjectID)
		if !ok {
			errs = append(errs, fmt.Errorf("object %d at %s: %w", o.ObjectID, o.Location, ErrUnknownObject))
			continue
		}
		m.world.AddObject(model.NewGameObject(m.world.IDs().NextObjectID(), def, o.Location))
		m.objectCount.Add(1)
		count++
	}

	slog.Info("scenery placed", "count", count, "failed", len(errs))
	return errors.Join(errs...)
}
