package spawn

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/rsckernel/internal/ai"
	"github.com/udisondev/rsckernel/internal/data"
	"github.com/udisondev/rsckernel/internal/model"
	"github.com/udisondev/rsckernel/internal/scheduler"
	"github.com/udisondev/rsckernel/internal/world"
)

// fixedRoller always returns the same value clamped to n-1.
type fixedRoller int

func (r fixedRoller) IntN(n int) int {
	return min(int(r), n-1)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

type fakeSource struct {
	spawns       []model.NpcSpawn
	objectSpawns []data.ObjectSpawn
	objects      map[int32]*model.GameObjectDefinition
}

func (s *fakeSource) Spawns() []model.NpcSpawn         { return s.spawns }
func (s *fakeSource) ObjectSpawns() []data.ObjectSpawn { return s.objectSpawns }

func (s *fakeSource) ObjectDef(id int32) (*model.GameObjectDefinition, bool) {
	d, ok := s.objects[id]
	return d, ok
}

type fakeSpawner struct {
	world *world.World
	defs  map[int32]*model.NpcDefinition
}

func (s *fakeSpawner) Spawn(spawn model.NpcSpawn) (*model.Npc, error) {
	def, ok := s.defs[spawn.NpcID]
	if !ok {
		return nil, fmt.Errorf("npc %d: not in catalog", spawn.NpcID)
	}
	npc := model.NewNpc(s.world.IDs().NextNpcID(), def, spawn)
	if err := s.world.AddNpc(npc); err != nil {
		return nil, err
	}
	return npc, nil
}

func goblinDef() *model.NpcDefinition {
	return &model.NpcDefinition{
		ID:          62,
		Name:        "Goblin",
		Attack:      5,
		Defense:     5,
		Strength:    5,
		Hits:        5,
		CombatLevel: 5,
		RespawnTime: 30,
	}
}

type fixture struct {
	clock    *fakeClock
	sched    *scheduler.Scheduler
	world    *world.World
	source   *fakeSource
	ai       *ai.TickManager
	respawns *RespawnTaskManager
	mgr      *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	w := world.New(clock.Now)
	sched := scheduler.New(600*time.Millisecond, clock.Now)
	source := &fakeSource{objects: make(map[int32]*model.GameObjectDefinition)}
	tick := ai.NewTickManager(time.Second, 2, clock.Now)
	respawns := NewRespawnTaskManager(sched)

	f := &fixture{
		clock:    clock,
		sched:    sched,
		world:    w,
		source:   source,
		ai:       tick,
		respawns: respawns,
	}
	f.mgr = NewManager(Deps{
		Source:    source,
		Spawner:   &fakeSpawner{world: w, defs: map[int32]*model.NpcDefinition{62: goblinDef()}},
		World:     w,
		Scheduler: sched,
		AI:        tick,
		Respawns:  respawns,
		Rand:      fixedRoller(0),
	}, time.Minute)
	require.NotNil(t, f.mgr)
	return f
}

func (f *fixture) tick(d time.Duration) int {
	return f.sched.Tick(context.Background(), f.clock.Advance(d))
}
