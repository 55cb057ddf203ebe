package model

import "sync"

// NoClick means no object/NPC option is selected.
const NoClick int32 = -1

// Player is the acting entity for deferred interactions and the recipient of
// kill rewards. Only the state the kernel reads or writes lives here.
type Player struct {
	objectID ObjectID
	name     string

	mu         sync.RWMutex
	location   Point
	busy       bool
	inCombat   bool
	ranging    bool
	stance     CombatStance
	equipped   map[int32]struct{}
	click      int32
	experience [SkillCount]int64
	carried    []Item
	npcKills   int32
}

// NewPlayer creates a player at the given location.
func NewPlayer(objectID ObjectID, name string, loc Point) *Player {
	return &Player{
		objectID: objectID,
		name:     name,
		location: loc,
		equipped: make(map[int32]struct{}),
		click:    NoClick,
	}
}

// ObjectID returns the arena identity (immutable).
func (p *Player) ObjectID() ObjectID { return p.objectID }

// Name returns the character name.
func (p *Player) Name() string { return p.name }

// Location returns current position.
func (p *Player) Location() Point {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.location
}

// SetLocation moves the player.
func (p *Player) SetLocation(loc Point) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.location = loc
}

// IsBusy reports whether a blocking activity (dialogue, skilling) is running.
func (p *Player) IsBusy() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.busy
}

// SetBusy toggles the blocking-activity flag.
func (p *Player) SetBusy(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.busy = v
}

// InCombat reports whether the player is fighting.
func (p *Player) InCombat() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.inCombat
}

// SetInCombat toggles the combat flag.
func (p *Player) SetInCombat(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inCombat = v
}

// IsRanging reports whether the player is firing at a target.
func (p *Player) IsRanging() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ranging
}

// SetRanging toggles the ranging flag.
func (p *Player) SetRanging(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ranging = v
}

// Stance returns the melee combat stance.
func (p *Player) Stance() CombatStance {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stance
}

// SetStance changes the melee combat stance.
func (p *Player) SetStance(s CombatStance) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stance = s
}

// Equip marks an item as worn.
func (p *Player) Equip(itemID int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.equipped[itemID] = struct{}{}
}

// Unequip removes a worn item.
func (p *Player) Unequip(itemID int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.equipped, itemID)
}

// HasEquipped reports whether itemID is worn.
func (p *Player) HasEquipped(itemID int32) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.equipped[itemID]
	return ok
}

// Click returns the selected menu option of the last click.
func (p *Player) Click() int32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.click
}

// SetClick records the selected menu option.
func (p *Player) SetClick(option int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.click = option
}

// ResetTransient clears per-click state so a queued action cannot replay it.
func (p *Player) ResetTransient() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.click = NoClick
}

// AddExperience grants experience to a skill.
func (p *Player) AddExperience(skill Skill, amount int64) {
	if skill < 0 || skill >= SkillCount || amount <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.experience[skill] += amount
}

// Experience returns total experience of a skill.
func (p *Player) Experience(skill Skill) int64 {
	if skill < 0 || skill >= SkillCount {
		return 0
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.experience[skill]
}

// Carry puts an item into the carried items, merging stacks by ID and form.
func (p *Player) Carry(item Item) {
	if item.IsNothing() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.carried {
		if p.carried[i].ItemID == item.ItemID && p.carried[i].Noted == item.Noted {
			p.carried[i].Amount += item.Amount
			return
		}
	}
	p.carried = append(p.carried, item)
}

// Carried returns a copy of the carried items.
func (p *Player) Carried() []Item {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Item, len(p.carried))
	copy(out, p.carried)
	return out
}

// IncNpcKills bumps the kill counter and returns the new value.
func (p *Player) IncNpcKills() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.npcKills++
	return p.npcKills
}

// NpcKills returns the kill counter.
func (p *Player) NpcKills() int32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.npcKills
}
