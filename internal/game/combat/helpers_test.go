package combat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/rsckernel/internal/command"
	"github.com/udisondev/rsckernel/internal/droplog"
	"github.com/udisondev/rsckernel/internal/model"
	"github.com/udisondev/rsckernel/internal/scheduler"
	"github.com/udisondev/rsckernel/internal/world"
)

const (
	itemDagger int32 = 1
	itemHerb   int32 = 165
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

type fakeCatalog struct {
	npcs       map[int32]*model.NpcDefinition
	items      map[int32]*model.ItemDefinition
	tables     map[string]*model.DropTable
	gold       map[int32][]int32
	rare       []*model.RareTable
	customRare map[int32]*model.RareTable
}

func newFakeCatalog() *fakeCatalog {
	c := &fakeCatalog{
		npcs:       make(map[int32]*model.NpcDefinition),
		items:      make(map[int32]*model.ItemDefinition),
		tables:     make(map[string]*model.DropTable),
		gold:       make(map[int32][]int32),
		customRare: make(map[int32]*model.RareTable),
	}
	for _, d := range []*model.ItemDefinition{
		{ID: model.ItemCoins, Name: "Coins", Stackable: true},
		{ID: model.ItemBones, Name: "Bones"},
		{ID: model.ItemDragonBones, Name: "Dragon bones"},
		{ID: model.ItemDragon2HandSword, Name: "Dragon 2-handed sword", MembersOnly: true},
		{ID: itemDagger, Name: "Bronze dagger"},
		{ID: itemHerb, Name: "Unidentified herb", MembersOnly: true},
	} {
		c.items[d.ID] = d
	}
	return c
}

func (c *fakeCatalog) NpcDef(id int32) (*model.NpcDefinition, bool) {
	d, ok := c.npcs[id]
	return d, ok
}

func (c *fakeCatalog) ItemDef(id int32) (*model.ItemDefinition, bool) {
	d, ok := c.items[id]
	return d, ok
}

func (c *fakeCatalog) DropTable(name string) (*model.DropTable, bool) {
	t, ok := c.tables[name]
	return t, ok
}

func (c *fakeCatalog) GoldDrops(npcID int32) []int32 { return c.gold[npcID] }

func (c *fakeCatalog) RareTables() []*model.RareTable { return c.rare }

func (c *fakeCatalog) CustomRareTable(npcID int32) (*model.RareTable, bool) {
	t, ok := c.customRare[npcID]
	return t, ok
}

type grantLog struct {
	mu     sync.Mutex
	grants []Grant
}

func (g *grantLog) GrantExperience(actorID model.ObjectID, skill model.Skill, amount int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.grants = append(g.grants, Grant{ActorID: actorID, Skill: skill, Amount: amount})
}

func (g *grantLog) len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.grants)
}

type memorySink struct {
	mu    sync.Mutex
	drops []droplog.DropRecord
	kills []droplog.KillRecord
	err   error
}

func (s *memorySink) LogDrop(_ context.Context, rec droplog.DropRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drops = append(s.drops, rec)
	return s.err
}

func (s *memorySink) LogKill(_ context.Context, rec droplog.KillRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kills = append(s.kills, rec)
	return s.err
}

type eventLog struct {
	mu     sync.Mutex
	events []model.WorldEvent
}

func (e *eventLog) Publish(ev model.WorldEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
}

func (e *eventLog) kinds() []model.WorldEventKind {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.WorldEventKind, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.Kind)
	}
	return out
}

type recordingDispatcher struct {
	mu    sync.Mutex
	calls []string
}

func (d *recordingDispatcher) Dispatch(_ context.Context, _ model.ObjectID, name string, _ command.Args) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, name)
	return true, nil
}

type fixture struct {
	clock    *fakeClock
	world    *world.World
	sched    *scheduler.Scheduler
	catalog  *fakeCatalog
	sink     *memorySink
	events   *eventLog
	commands *recordingDispatcher
	life     *Lifecycle
}

type fixtureOption func(*Config, *Deps)

func withRewards(r RewardSink) fixtureOption {
	return func(_ *Config, d *Deps) { d.Rewards = r }
}

func withRand(r model.Roller) fixtureOption {
	return func(_ *Config, d *Deps) { d.Rand = r }
}

func withConfig(fn func(*Config)) fixtureOption {
	return func(c *Config, _ *Deps) { fn(c) }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	f := &fixture{
		clock:    clock,
		world:    world.New(clock.Now),
		sched:    scheduler.New(time.Second, clock.Now),
		catalog:  newFakeCatalog(),
		sink:     &memorySink{},
		events:   &eventLog{},
		commands: &recordingDispatcher{},
	}

	cfg := DefaultConfig()
	deps := Deps{
		World:     f.world,
		Catalog:   f.catalog,
		Scheduler: f.sched,
		Commands:  f.commands,
		DropLog:   f.sink,
		Events:    f.events,
		Rand:      fixedRoller(0),
	}
	for _, opt := range opts {
		opt(&cfg, &deps)
	}
	f.life = NewLifecycle(cfg, deps)
	return f
}

// dummyDef is a boneless 10-hit NPC worth 30 experience.
func dummyDef(id int32) *model.NpcDefinition {
	return &model.NpcDefinition{
		ID:          id,
		Name:        "Dummy",
		Attack:      5,
		Defense:     5,
		Strength:    5,
		Hits:        10,
		CombatLevel: 5,
		RespawnTime: 30,
		Category:    model.NpcCategory{Boneless: true},
	}
}

func (f *fixture) spawn(t *testing.T, def *model.NpcDefinition) *model.Npc {
	t.Helper()
	f.catalog.npcs[def.ID] = def
	npc, err := f.life.Spawn(model.NewNpcSpawn(def.ID, model.MustPoint(120, 640), 4))
	require.NoError(t, err)
	return npc
}

func (f *fixture) player(t *testing.T, name string, stance model.CombatStance) *model.Player {
	t.Helper()
	p := model.NewPlayer(f.world.IDs().NextPlayerID(), name, model.MustPoint(121, 640))
	p.SetStance(stance)
	require.NoError(t, f.world.AddPlayer(p))
	return p
}

func (f *fixture) tick(d time.Duration) int {
	return f.sched.Tick(context.Background(), f.clock.Advance(d))
}
