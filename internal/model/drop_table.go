package model

// Roller is the random source used by drop rolls.
// *math/rand/v2.Rand satisfies it.
type Roller interface {
	IntN(n int) int
}

// DropKind classifies a drop table entry.
type DropKind int32

const (
	// DropWeighted entries take part in the weighted roll.
	DropWeighted DropKind = iota
	// DropInvariable entries always drop.
	DropInvariable
	// DropCustomRare entries are weighted slots that lead to the shared rare
	// tables; removed when dedicated rare tables are enabled.
	DropCustomRare
)

// String returns human-readable kind name.
func (k DropKind) String() string {
	switch k {
	case DropWeighted:
		return "WEIGHTED"
	case DropInvariable:
		return "INVARIABLE"
	case DropCustomRare:
		return "CUSTOM_RARE"
	default:
		return "UNKNOWN"
	}
}

// DropEntry is one line of a drop table.
type DropEntry struct {
	ItemID int32
	Min    int32
	Max    int32
	Weight int32
	Noted  bool
	Kind   DropKind
}

// rollAmount returns a quantity in [Min, Max].
func (e DropEntry) rollAmount(rng Roller) int32 {
	lo := max(e.Min, 1)
	hi := max(e.Max, lo)
	if hi == lo {
		return lo
	}
	return lo + int32(rng.IntN(int(hi-lo+1)))
}

// DropTable is a weighted list of drops plus an invariable subset.
// Tables from the catalog are shared: clone before mutating.
type DropTable struct {
	name    string
	entries []DropEntry
}

// NewDropTable creates a drop table. Entries are copied.
func NewDropTable(name string, entries []DropEntry) *DropTable {
	t := &DropTable{name: name, entries: make([]DropEntry, len(entries))}
	copy(t.entries, entries)
	return t
}

// Name returns table name.
func (t *DropTable) Name() string {
	return t.name
}

// Clone returns an independent copy so per-kill removals never touch the catalog.
func (t *DropTable) Clone() *DropTable {
	return NewDropTable(t.name, t.entries)
}

// Entries returns a copy of the entries.
func (t *DropTable) Entries() []DropEntry {
	out := make([]DropEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// InvariableItems rolls the amount of every invariable entry.
func (t *DropTable) InvariableItems(rng Roller) []Item {
	var items []Item
	for _, e := range t.entries {
		if e.Kind != DropInvariable || e.ItemID == ItemNothing {
			continue
		}
		items = append(items, Item{ItemID: e.ItemID, Amount: e.rollAmount(rng), Noted: e.Noted})
	}
	return items
}

// RemoveItemDrop removes the invariable entries granting itemID.
func (t *DropTable) RemoveItemDrop(itemID int32) {
	t.removeIf(func(e DropEntry) bool {
		return e.Kind == DropInvariable && e.ItemID == itemID
	})
}

// RemoveCustomRareTableDrops removes every custom rare slot.
func (t *DropTable) RemoveCustomRareTableDrops() {
	t.removeIf(func(e DropEntry) bool {
		return e.Kind == DropCustomRare
	})
}

// TotalWeight sums the weight of every rollable entry.
func (t *DropTable) TotalWeight() int32 {
	var total int32
	for _, e := range t.entries {
		if e.Kind != DropInvariable && e.Weight > 0 {
			total += e.Weight
		}
	}
	return total
}

// Roll picks one rollable entry by weight. An empty result means the roll
// landed on an empty slot or the table has no weight.
func (t *DropTable) Roll(rng Roller) []Item {
	total := t.TotalWeight()
	if total <= 0 {
		return nil
	}

	hit := int32(rng.IntN(int(total)))
	var acc int32
	for _, e := range t.entries {
		if e.Kind == DropInvariable || e.Weight <= 0 {
			continue
		}
		acc += e.Weight
		if hit >= acc {
			continue
		}
		if e.ItemID == ItemNothing {
			return nil
		}
		return []Item{{ItemID: e.ItemID, Amount: e.rollAmount(rng), Noted: e.Noted}}
	}
	return nil
}

func (t *DropTable) removeIf(pred func(DropEntry) bool) {
	kept := t.entries[:0]
	for _, e := range t.entries {
		if !pred(e) {
			kept = append(kept, e)
		}
	}
	clear(t.entries[len(kept):])
	t.entries = kept
}

// RemoveEmptySlots drops every ItemNothing entry so a roll always yields an item.
func (t *DropTable) RemoveEmptySlots() {
	t.removeIf(func(e DropEntry) bool {
		return e.ItemID == ItemNothing
	})
}
