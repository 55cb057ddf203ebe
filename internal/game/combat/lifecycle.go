// Package combat owns the NPC combat and death lifecycle: damage
// attribution, kill rewards, loot resolution and respawn.
package combat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/rsckernel/internal/command"
	"github.com/udisondev/rsckernel/internal/droplog"
	"github.com/udisondev/rsckernel/internal/model"
	"github.com/udisondev/rsckernel/internal/region"
	"github.com/udisondev/rsckernel/internal/scheduler"
	"github.com/udisondev/rsckernel/internal/spawn"
	"github.com/udisondev/rsckernel/internal/world"
)

// ErrUnknownNpc is returned when spawning an NPC missing from the catalog.
var ErrUnknownNpc = errors.New("unknown npc definition")

// Catalog is the definition data the lifecycle reads.
type Catalog interface {
	NpcDef(id int32) (*model.NpcDefinition, bool)
	ItemDef(id int32) (*model.ItemDefinition, bool)
	DropTable(name string) (*model.DropTable, bool)
	GoldDrops(npcID int32) []int32
	RareTables() []*model.RareTable
	CustomRareTable(npcID int32) (*model.RareTable, bool)
}

// Dispatcher resolves command names to script behavior.
type Dispatcher interface {
	Dispatch(ctx context.Context, actor model.ObjectID, name string, args command.Args) (bool, error)
}

// Deps are the collaborators of a Lifecycle. World, Catalog and Scheduler
// are required; the rest fall back to no-op or stock implementations.
type Deps struct {
	World        *world.World
	Catalog      Catalog
	Scheduler    *scheduler.Scheduler
	Commands     Dispatcher
	Rewards      RewardSink
	DropLog      droplog.Sink
	Events       model.EventPublisher
	Rand         model.Roller
	Interceptors []Interceptor
	Respawns     *spawn.RespawnTaskManager
	Regions      *region.Classifier
}

// Outcome is how a death resolution ended.
type Outcome int32

const (
	OutcomeRespawning Outcome = iota
	OutcomeRemoved
	// OutcomeScripted means a kill script took over; it finishes the NPC
	// with Lifecycle.Remove.
	OutcomeScripted
)

// String returns human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeRespawning:
		return "RESPAWNING"
	case OutcomeRemoved:
		return "REMOVED"
	case OutcomeScripted:
		return "SCRIPTED"
	default:
		return "UNKNOWN"
	}
}

// DeathReport describes one death resolution.
type DeathReport struct {
	NpcID       model.ObjectID
	KillerID    model.ObjectID
	OwnerID     model.ObjectID // resolved finishing player, zero if unresolved
	LootOwnerID model.ObjectID
	Unresolved  bool
	Grants      []Grant
	Drops       []*model.GroundItem
	Intercepted []model.Item
	Listeners   int
	Outcome     Outcome
	RespawnAt   time.Time
}

// HitResult is the outcome of one hit.
type HitResult struct {
	Remaining int32
	Killed    bool
	Death     *DeathReport
}

// Lifecycle drives NPCs through Active → Engaged → Dying → Respawning/Removed.
//
// Transitions of one NPC are serialised by the NPC's own lock and by
// Npc.BeginDying, which lets exactly one caller resolve a death. Different
// NPCs may be advanced from parallel workers.
type Lifecycle struct {
	cfg          Config
	world        *world.World
	catalog      Catalog
	sched        *scheduler.Scheduler
	commands     Dispatcher
	rewards      RewardSink
	drops        droplog.Sink
	events       model.EventPublisher
	rng          model.Roller
	interceptors []Interceptor
	stances      *AttackStanceManager
	respawns     *spawn.RespawnTaskManager
	regions      *region.Classifier
}

// NewLifecycle creates a lifecycle. Panics if a required dependency is nil.
func NewLifecycle(cfg Config, deps Deps) *Lifecycle {
	if deps.World == nil || deps.Catalog == nil || deps.Scheduler == nil {
		panic("NewLifecycle: world, catalog and scheduler are required")
	}

	l := &Lifecycle{
		cfg:          cfg,
		world:        deps.World,
		catalog:      deps.Catalog,
		sched:        deps.Scheduler,
		commands:     deps.Commands,
		rewards:      deps.Rewards,
		drops:        deps.DropLog,
		events:       deps.Events,
		rng:          deps.Rand,
		interceptors: deps.Interceptors,
		respawns:     deps.Respawns,
		regions:      deps.Regions,
	}
	if l.regions == nil {
		l.regions = region.NewClassifier(region.DefaultBands())
	}
	if l.respawns == nil {
		l.respawns = spawn.NewRespawnTaskManager(deps.Scheduler)
	}
	if l.rewards == nil {
		l.rewards = PlayerRewards{Players: deps.World}
	}
	if l.drops == nil {
		l.drops = droplog.Nop{}
	}
	if l.events == nil {
		l.events = model.NopPublisher{}
	}
	if l.rng == nil {
		l.rng = globalRand{}
	}
	if l.interceptors == nil {
		l.interceptors = DefaultInterceptors()
	}
	l.stances = NewAttackStanceManager(deps.World, cfg.CombatTime)
	return l
}

// Stances returns the player combat stance tracker.
func (l *Lifecycle) Stances() *AttackStanceManager { return l.stances }

// Start schedules the lifecycle's own periodic work.
func (l *Lifecycle) Start() *scheduler.Task {
	return l.stances.Start(l.sched)
}

// Spawn creates an NPC from the catalog at the spawn point and registers it.
func (l *Lifecycle) Spawn(sp model.NpcSpawn) (*model.Npc, error) {
	def, ok := l.catalog.NpcDef(sp.NpcID)
	if !ok {
		return nil, fmt.Errorf("spawn npc %d: %w", sp.NpcID, ErrUnknownNpc)
	}
	npc := model.NewNpc(l.world.IDs().NextNpcID(), def, sp)
	if err := l.world.AddNpc(npc); err != nil {
		return nil, fmt.Errorf("spawn npc %d: %w", sp.NpcID, err)
	}
	return npc, nil
}

func (l *Lifecycle) lookup(npcID model.ObjectID) (*model.Npc, error) {
	npc, ok := l.world.Npc(npcID)
	if !ok {
		return nil, fmt.Errorf("npc %s: %w", npcID, ErrNpcNotFound)
	}
	return npc, nil
}

// RecordDamage adds damage to the NPC's ledger and engages it.
// No upper bound applies here; rewards clamp to max health.
func (l *Lifecycle) RecordDamage(npcID model.ObjectID, ch model.DamageChannel, attackerID model.ObjectID, amount uint32) error {
	npc, err := l.lookup(npcID)
	if err != nil {
		return err
	}
	if !npc.State().Alive() {
		return fmt.Errorf("record damage on %s: %w", npcID, ErrNotAlive)
	}
	npc.MarkEngaged()
	npc.Ledger().Record(ch, attackerID, amount)
	return nil
}

// Hit records damage, lowers health and resolves the death when health
// reaches zero.
func (l *Lifecycle) Hit(ctx context.Context, npcID model.ObjectID, ch model.DamageChannel, attackerID model.ObjectID, amount int32) (HitResult, error) {
	amount = max(amount, 0)
	if err := l.RecordDamage(npcID, ch, attackerID, uint32(amount)); err != nil {
		return HitResult{}, err
	}

	npc, err := l.lookup(npcID)
	if err != nil {
		return HitResult{}, err
	}
	remaining, applied := npc.ReduceHealth(amount)
	if !applied {
		return HitResult{Remaining: remaining}, fmt.Errorf("hit %s: %w", npcID, ErrNotAlive)
	}
	if p, ok := l.world.Player(attackerID); ok {
		l.stances.AddAttackStance(p, l.sched.Now())
	}

	res := HitResult{Remaining: remaining}
	if remaining > 0 {
		return res, nil
	}

	report, err := l.TriggerDeath(ctx, npcID, attackerID)
	if errors.Is(err, ErrNotAlive) {
		// Another hit won the race to resolve this death.
		return res, nil
	}
	if err != nil {
		return res, err
	}
	res.Killed = true
	res.Death = report
	return res, nil
}

// RegisterDeathListener adds a listener notified once at the NPC's next death.
func (l *Lifecycle) RegisterDeathListener(npcID model.ObjectID, listener model.DeathListener) error {
	npc, err := l.lookup(npcID)
	if err != nil {
		return err
	}
	if !npc.State().Alive() || !npc.AddDeathListener(listener) {
		return fmt.Errorf("register death listener on %s: %w", npcID, ErrNotAlive)
	}
	return nil
}

// TriggerDeath resolves the death of an NPC killed by killerID.
//
// Idempotent: only the first call for an episode runs the pipeline, later
// calls return ErrNotAlive. Once started, resolution always completes;
// collaborator failures are logged and never abort it.
func (l *Lifecycle) TriggerDeath(ctx context.Context, npcID, killerID model.ObjectID) (*DeathReport, error) {
	npc, err := l.lookup(npcID)
	if err != nil {
		return nil, err
	}
	if !npc.BeginDying() {
		return nil, fmt.Errorf("trigger death %s: %w", npcID, ErrNotAlive)
	}

	def := npc.Definition()
	loc := npc.Location()
	rep := &DeathReport{NpcID: npcID, KillerID: killerID}

	l.events.Publish(model.WorldEvent{
		Kind:     model.EventNpcDeath,
		At:       l.sched.Now(),
		NpcID:    npcID,
		NpcDefID: def.ID,
		ActorID:  killerID,
		Location: loc,
	})

	if n := npc.Cure(); n > 0 {
		slog.Debug("afflictions cured on death", "npc", def.Name, "count", n)
	}

	owner, ok := l.resolveOwner(killerID)
	if !ok {
		l.unresolved(npc, rep, killerID)
		return rep, nil
	}
	rep.OwnerID = owner.ObjectID()

	if l.commands != nil {
		if _, err := l.commands.Dispatch(ctx, owner.ObjectID(), command.KillNpc, command.Args{Target: npcID}); err != nil {
			slog.Warn("kill script failed",
				"npc", def.Name,
				"owner", owner.Name(),
				"error", err)
		}
	}
	if def.ScriptedRemoval {
		rep.Outcome = OutcomeScripted
		slog.Debug("death handed to kill script", "npc", def.Name)
		return rep, nil
	}

	plan := planRewards(npc.Ledger().Snapshot(), def.CombatExperience(), npc.MaxHealth(), l.stanceOf, l.cfg)
	for _, g := range plan.grants {
		l.rewards.GrantExperience(g.ActorID, g.Skill, g.Amount)
	}
	rep.Grants = plan.grants

	lootOwner := owner
	if l.cfg.LootOwner == LootTopDamage && !plan.top.IsZero() {
		if lootOwner, ok = l.resolveOwner(plan.top); !ok {
			l.unresolved(npc, rep, plan.top)
			return rep, nil
		}
	}
	rep.LootOwnerID = lootOwner.ObjectID()

	kills := lootOwner.IncNpcKills()
	if err := l.drops.LogKill(ctx, droplog.KillRecord{
		At:         l.sched.Now(),
		PlayerID:   lootOwner.ObjectID(),
		PlayerName: lootOwner.Name(),
		NpcID:      npcID,
		NpcDefID:   def.ID,
		NpcName:    def.Name,
		Location:   loc,
		Zone:       l.regions.ZoneName(loc),
		KillCount:  kills,
	}); err != nil {
		slog.Error("log kill", "npc", def.Name, "error", err)
	}

	run := l.resolveLoot(ctx, npc, lootOwner, loc)
	rep.Drops = run.placed
	rep.Intercepted = run.intercepted

	listeners := npc.TakeDeathListeners()
	for _, ln := range listeners {
		l.notify(ln, killerID, npc)
	}
	rep.Listeners = len(listeners)

	l.finish(npc, rep)

	slog.Debug("npc died",
		"npc", def.Name,
		"npcID", npcID,
		"lootOwner", lootOwner.Name(),
		"drops", len(rep.Drops),
		"outcome", rep.Outcome)
	return rep, nil
}

// Remove finishes an NPC whose death was handed to a kill script.
func (l *Lifecycle) Remove(npcID model.ObjectID) (*DeathReport, error) {
	npc, err := l.lookup(npcID)
	if err != nil {
		return nil, err
	}
	if npc.State() != model.StateDying {
		return nil, fmt.Errorf("remove %s: %w", npcID, ErrNotDying)
	}
	rep := &DeathReport{NpcID: npcID}
	npc.TakeDeathListeners()
	l.finish(npc, rep)
	return rep, nil
}

// RespawnPending reports whether a respawn task is queued for the NPC.
func (l *Lifecycle) RespawnPending(npcID model.ObjectID) bool {
	_, ok := l.respawns.GetTask(npcID)
	return ok
}

// Respawns returns the respawn task index.
func (l *Lifecycle) Respawns() *spawn.RespawnTaskManager { return l.respawns }

// Poison starts a repeating poison affliction. Each hit deals power damage
// and weakens by one; it ends at zero power, at death, or on Cure.
func (l *Lifecycle) Poison(npcID, attackerID model.ObjectID, power int32) (*scheduler.Task, error) {
	npc, err := l.lookup(npcID)
	if err != nil {
		return nil, err
	}
	if !npc.State().Alive() {
		return nil, fmt.Errorf("poison %s: %w", npcID, ErrNotAlive)
	}

	task := l.sched.Schedule("poison npc", l.cfg.PoisonInterval, true, func(ctx context.Context) error {
		if power <= 0 {
			return scheduler.ErrStop
		}
		damage := power
		power--
		_, err := l.Hit(ctx, npcID, model.ChannelMelee, attackerID, damage)
		if errors.Is(err, ErrNotAlive) || errors.Is(err, ErrNpcNotFound) {
			return scheduler.ErrStop
		}
		return err
	})
	npc.AddAffliction(task)
	return task, nil
}

// resolveOwner maps an attacker to the player credited with the kill: the
// attacker itself, or the player controlling an attacking NPC.
func (l *Lifecycle) resolveOwner(attackerID model.ObjectID) (*model.Player, bool) {
	if p, ok := l.world.Player(attackerID); ok {
		return p, true
	}
	killer, ok := l.world.Npc(attackerID)
	if !ok {
		return nil, false
	}
	owner := killer.Owner()
	if owner.IsZero() {
		return nil, false
	}
	return l.world.Player(owner)
}

func (l *Lifecycle) stanceOf(id model.ObjectID) (model.CombatStance, bool) {
	p, ok := l.world.Player(id)
	if !ok {
		return 0, false
	}
	return p.Stance(), true
}

func (l *Lifecycle) unresolved(npc *model.Npc, rep *DeathReport, attackerID model.ObjectID) {
	slog.Warn("skipping rewards and loot",
		"npc", npc.Name(),
		"npcID", npc.ObjectID(),
		"attacker", attackerID,
		"error", ErrUnresolvedOwner)
	rep.Unresolved = true
	npc.TakeDeathListeners()
	l.finish(npc, rep)
}

// notify runs one listener. A panicking listener is logged and the death
// resolution carries on.
func (l *Lifecycle) notify(ln model.DeathListener, killerID model.ObjectID, npc *model.Npc) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("death listener panicked",
				"npc", npc.Name(),
				"panic", r)
		}
	}()
	ln.OnNpcDeath(killerID, npc)
}

// finish clears the episode and either queues the respawn or removes the
// NPC for good.
func (l *Lifecycle) finish(npc *model.Npc, rep *DeathReport) {
	def := npc.Definition()
	npc.Ledger().Clear()

	if !npc.ShouldRespawn() || def.RespawnTime <= 0 {
		npc.MarkRemoved()
		l.world.UnregisterNpc(npc.ObjectID())
		rep.Outcome = OutcomeRemoved
		l.events.Publish(model.WorldEvent{
			Kind:     model.EventNpcRemoved,
			At:       l.sched.Now(),
			NpcID:    npc.ObjectID(),
			NpcDefID: def.ID,
			Location: npc.Location(),
		})
		return
	}

	npc.EnterRespawning()
	l.world.RemoveNpcPosition(npc)

	id := npc.ObjectID()
	task := l.respawns.ScheduleRespawn(id, l.cfg.respawnDelay(def.RespawnTime), func(context.Context) error {
		return l.respawn(id)
	})

	rep.Outcome = OutcomeRespawning
	rep.RespawnAt = task.Due()
}

// respawn brings an NPC back at its spawn anchor with baseline skills.
// The task captures the identity only; an NPC gone from the world is skipped.
func (l *Lifecycle) respawn(id model.ObjectID) error {
	npc, ok := l.world.Npc(id)
	if !ok {
		return nil
	}
	now := l.sched.Now()
	if !npc.Respawn(now.Add(l.cfg.SpawnImmunity)) {
		return fmt.Errorf("respawn %s in state %s", id, npc.State())
	}
	l.world.SetNpcPosition(npc)

	l.events.Publish(model.WorldEvent{
		Kind:     model.EventNpcRespawn,
		At:       now,
		NpcID:    id,
		NpcDefID: npc.Definition().ID,
		Location: npc.Location(),
	})
	slog.Debug("npc respawned", "npc", npc.Name(), "npcID", id)
	return nil
}
