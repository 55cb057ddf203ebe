package model

import (
	"sync"
	"time"
)

// DeathListener is notified once when an NPC dies, then dropped.
type DeathListener interface {
	OnNpcDeath(killer ObjectID, npc *Npc)
}

// DeathListenerFunc adapts a function to DeathListener.
type DeathListenerFunc func(killer ObjectID, npc *Npc)

// OnNpcDeath implements DeathListener.
func (f DeathListenerFunc) OnNpcDeath(killer ObjectID, npc *Npc) {
	f(killer, npc)
}

// Cancelable is a handle on scheduled work (affliction ticks).
type Cancelable interface {
	Cancel() bool
}

// NpcSpawn is where an NPC spawns and how far it may wander.
type NpcSpawn struct {
	NpcID  int32 `yaml:"npc_id" json:"npc_id"`
	Start  Point `yaml:"start" json:"start"`
	Bounds Rect  `yaml:"bounds" json:"bounds"`
}

// NewNpcSpawn creates a spawn with a square wander area of the given radius.
func NewNpcSpawn(npcID int32, start Point, radius int32) NpcSpawn {
	return NpcSpawn{
		NpcID: npcID,
		Start: start,
		Bounds: NewRect(
			max(start.X-radius, 0), max(start.Y-radius, 0),
			start.X+radius, start.Y+radius,
		),
	}
}

// Npc is a non-player entity with a combat/death lifecycle.
// Every state transition goes through mu: one NPC never runs two
// transitions at once.
type Npc struct {
	objectID ObjectID
	def      *NpcDefinition
	spawn    NpcSpawn
	ledger   *DamageLedger

	mu            sync.Mutex
	location      Point
	skills        Skills
	state         LifecycleState
	shouldRespawn bool
	owner         ObjectID // controlling player for summons/pets
	listeners     []DeathListener
	afflictions   []Cancelable
	immuneUntil   time.Time
}

// NewNpc creates an Active NPC at its spawn start point.
func NewNpc(objectID ObjectID, def *NpcDefinition, spawn NpcSpawn) *Npc {
	if def == nil {
		panic("NewNpc: definition cannot be nil")
	}
	return &Npc{
		objectID:      objectID,
		def:           def,
		spawn:         spawn,
		ledger:        NewDamageLedger(),
		location:      spawn.Start,
		skills:        NewSkills(def.BaseSkills()),
		state:         StateActive,
		shouldRespawn: true,
	}
}

// ObjectID returns the arena identity (immutable).
func (n *Npc) ObjectID() ObjectID { return n.objectID }

// Definition returns the catalog definition.
func (n *Npc) Definition() *NpcDefinition { return n.def }

// Name returns definition name.
func (n *Npc) Name() string { return n.def.Name }

// Spawn returns spawn anchor and wander bounds.
func (n *Npc) Spawn() NpcSpawn { return n.spawn }

// Ledger returns the damage ledger of the current episode.
func (n *Npc) Ledger() *DamageLedger { return n.ledger }

// Location returns current position.
func (n *Npc) Location() Point {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

// SetLocation moves the NPC.
func (n *Npc) SetLocation(p Point) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.location = p
}

// Health returns current hits.
func (n *Npc) Health() int32 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.skills.Current(SkillHits)
}

// MaxHealth returns baseline hits from the definition.
func (n *Npc) MaxHealth() int32 {
	return n.def.Hits
}

// SkillLevel returns the current level of a skill.
func (n *Npc) SkillLevel(skill Skill) int32 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.skills.Current(skill)
}

// DrainSkill lowers a skill (e.g. weaken spells), floored at 0.
func (n *Npc) DrainSkill(skill Skill, amount int32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.skills.SetCurrent(skill, n.skills.Current(skill)-amount)
}

// RestoreSkills moves drained skills one step back toward baseline.
func (n *Npc) RestoreSkills() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.state.Alive() {
		return false
	}
	return n.skills.RestoreStep()
}

// ReduceHealth applies damage to a living NPC, health never drops below 0.
// Returns remaining health and whether damage was applied.
func (n *Npc) ReduceHealth(amount int32) (int32, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.state.Alive() {
		return n.skills.Current(SkillHits), false
	}
	n.skills.SetCurrent(SkillHits, n.skills.Current(SkillHits)-max(amount, 0))
	return n.skills.Current(SkillHits), true
}

// State returns the lifecycle state.
func (n *Npc) State() LifecycleState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// MarkEngaged moves Active → Engaged. Returns false in any other state.
func (n *Npc) MarkEngaged() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state != StateActive {
		return false
	}
	n.state = StateEngaged
	return true
}

// BeginDying moves Active/Engaged → Dying. Returns true only for the first
// caller, so death resolution runs once per episode.
func (n *Npc) BeginDying() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.state.Alive() {
		return false
	}
	n.state = StateDying
	n.skills.SetCurrent(SkillHits, 0)
	return true
}

// EnterRespawning moves Dying → Respawning.
func (n *Npc) EnterRespawning() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state != StateDying {
		return false
	}
	n.state = StateRespawning
	return true
}

// MarkRemoved moves Dying or Respawning → Removed (terminal).
func (n *Npc) MarkRemoved() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state != StateDying && n.state != StateRespawning {
		return false
	}
	n.state = StateRemoved
	return true
}

// Respawn moves Respawning → Active: baseline skills, spawn start position,
// fresh ledger, no listeners, attack immunity until immuneUntil.
func (n *Npc) Respawn(immuneUntil time.Time) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state != StateRespawning {
		return false
	}
	n.skills.Normalize()
	n.location = n.spawn.Start
	n.listeners = nil
	n.immuneUntil = immuneUntil
	n.ledger.Clear()
	n.state = StateActive
	return true
}

// ShouldRespawn reports whether the NPC comes back after death.
func (n *Npc) ShouldRespawn() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.shouldRespawn
}

// SetShouldRespawn toggles respawning (quest NPCs, temporary summons).
func (n *Npc) SetShouldRespawn(v bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.shouldRespawn = v
}

// Owner returns the controlling player of a summon, zero when unowned.
func (n *Npc) Owner() ObjectID {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.owner
}

// SetOwner sets the controlling player.
func (n *Npc) SetOwner(id ObjectID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.owner = id
}

// AddDeathListener registers a listener for the current episode.
func (n *Npc) AddDeathListener(l DeathListener) bool {
	if l == nil {
		return false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state == StateRemoved {
		return false
	}
	n.listeners = append(n.listeners, l)
	return true
}

// TakeDeathListeners returns registered listeners in order and clears them.
func (n *Npc) TakeDeathListeners() []DeathListener {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.listeners
	n.listeners = nil
	return out
}

// DeathListenerCount returns number of pending listeners.
func (n *Npc) DeathListenerCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}

// AddAffliction tracks scheduled status work (poison) so Cure can stop it.
func (n *Npc) AddAffliction(c Cancelable) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.afflictions = append(n.afflictions, c)
}

// Cure cancels every tracked affliction. Returns how many were still pending.
func (n *Npc) Cure() int {
	n.mu.Lock()
	list := n.afflictions
	n.afflictions = nil
	n.mu.Unlock()

	cancelled := 0
	for _, c := range list {
		if c.Cancel() {
			cancelled++
		}
	}
	return cancelled
}

// AfflictionCount returns number of tracked afflictions.
func (n *Npc) AfflictionCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.afflictions)
}

// IsImmune reports whether the post-spawn attack immunity is still running.
func (n *Npc) IsImmune(now time.Time) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return now.Before(n.immuneUntil)
}
