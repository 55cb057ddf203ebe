package model

// RareAccess is the gate in front of a rare table: Chance in OutOf, raised to
// WealthChance when the owner wears a ring of wealth.
type RareAccess struct {
	Chance       int32
	OutOf        int32
	WealthChance int32
}

// RareTable is a shared drop table reached only through an access roll.
type RareTable struct {
	name   string
	custom bool
	npcs   map[int32]struct{}
	access RareAccess
	table  *DropTable
}

// NewRareTable creates a rare table. An empty npcs list makes the table
// reachable from every NPC. Custom tables belong to specific NPCs and are
// rolled before the shared ones.
func NewRareTable(name string, custom bool, npcs []int32, access RareAccess, entries []DropEntry) *RareTable {
	t := &RareTable{
		name:   name,
		custom: custom,
		npcs:   make(map[int32]struct{}, len(npcs)),
		access: access,
		table:  NewDropTable(name, entries),
	}
	for _, id := range npcs {
		t.npcs[id] = struct{}{}
	}
	return t
}

// Name returns table name.
func (t *RareTable) Name() string { return t.name }

// IsCustom reports whether the table is NPC-specific.
func (t *RareTable) IsCustom() bool { return t.custom }

// Access returns the access gate.
func (t *RareTable) Access() RareAccess { return t.access }

// NpcIDs returns the NPCs that may reach the table, empty for all.
func (t *RareTable) NpcIDs() []int32 {
	out := make([]int32, 0, len(t.npcs))
	for id := range t.npcs {
		out = append(out, id)
	}
	return out
}

// Entries returns a copy of the table entries.
func (t *RareTable) Entries() []DropEntry { return t.table.Entries() }

// Eligible reports whether npcID may roll this table.
func (t *RareTable) Eligible(npcID int32) bool {
	if len(t.npcs) == 0 {
		return true
	}
	_, ok := t.npcs[npcID]
	return ok
}

// RollAccess rolls the gate for npcID.
func (t *RareTable) RollAccess(npcID int32, ringOfWealth bool, rng Roller) bool {
	if !t.Eligible(npcID) {
		return false
	}
	chance := t.access.Chance
	if ringOfWealth && t.access.WealthChance > chance {
		chance = t.access.WealthChance
	}
	if chance <= 0 || t.access.OutOf <= 0 {
		return false
	}
	return int32(rng.IntN(int(t.access.OutOf))) < chance
}

// RollItem rolls the table once. A ring of wealth removes the empty slots.
func (t *RareTable) RollItem(ringOfWealth bool, rng Roller) []Item {
	table := t.table
	if ringOfWealth {
		table = t.table.Clone()
		table.RemoveEmptySlots()
	}
	return table.Roll(rng)
}
