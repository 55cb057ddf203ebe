// Package data loads the static game catalog (items, NPCs, drop tables,
// rare tables, gold drops, scenery and spawns) from YAML files validated
// against an embedded JSON schema.
package data

import (
	"slices"

	"github.com/udisondev/rsckernel/internal/model"
)

// ObjectSpawn places a scenery object in the world.
type ObjectSpawn struct {
	ObjectID int32
	Location model.Point
}

// Catalog is the read-only definition set. Safe for concurrent reads.
type Catalog struct {
	items        map[int32]*model.ItemDefinition
	npcs         map[int32]*model.NpcDefinition
	dropTables   map[string]*model.DropTable
	goldDrops    map[int32][]int32
	rareTables   []*model.RareTable // shared tables, roll order
	customRare   map[int32]*model.RareTable
	customCount  int
	objects      map[int32]*model.GameObjectDefinition
	spawns       []model.NpcSpawn
	objectSpawns []ObjectSpawn
}

func newCatalog() *Catalog {
	return &Catalog{
		items:      make(map[int32]*model.ItemDefinition),
		npcs:       make(map[int32]*model.NpcDefinition),
		dropTables: make(map[string]*model.DropTable),
		goldDrops:  make(map[int32][]int32),
		customRare: make(map[int32]*model.RareTable),
		objects:    make(map[int32]*model.GameObjectDefinition),
	}
}

// NpcDef returns an NPC definition.
func (c *Catalog) NpcDef(id int32) (*model.NpcDefinition, bool) {
	d, ok := c.npcs[id]
	return d, ok
}

// ItemDef returns an item definition.
func (c *Catalog) ItemDef(id int32) (*model.ItemDefinition, bool) {
	d, ok := c.items[id]
	return d, ok
}

// DropTable returns the shared drop table by name. Clone before mutating.
func (c *Catalog) DropTable(name string) (*model.DropTable, bool) {
	t, ok := c.dropTables[name]
	return t, ok
}

// GoldDrops returns the possible coin amounts for an NPC, nil when unset.
func (c *Catalog) GoldDrops(npcID int32) []int32 {
	return c.goldDrops[npcID]
}

// RareTables returns the shared rare tables in roll order.
func (c *Catalog) RareTables() []*model.RareTable {
	return slices.Clone(c.rareTables)
}

// CustomRareTable returns the NPC-specific rare table.
func (c *Catalog) CustomRareTable(npcID int32) (*model.RareTable, bool) {
	t, ok := c.customRare[npcID]
	return t, ok
}

// ObjectDef returns a scenery object definition.
func (c *Catalog) ObjectDef(id int32) (*model.GameObjectDefinition, bool) {
	d, ok := c.objects[id]
	return d, ok
}

// Spawns returns every NPC spawn.
func (c *Catalog) Spawns() []model.NpcSpawn {
	return slices.Clone(c.spawns)
}

// ObjectSpawns returns every scenery placement.
func (c *Catalog) ObjectSpawns() []ObjectSpawn {
	return slices.Clone(c.objectSpawns)
}

// Stats summarises catalog size for logs.
type Stats struct {
	Items, Npcs, DropTables, RareTables, Objects, Spawns int
}

// Stats returns catalog counts.
func (c *Catalog) Stats() Stats {
	return Stats{
		Items:      len(c.items),
		Npcs:       len(c.npcs),
		DropTables: len(c.dropTables),
		RareTables: len(c.rareTables) + c.customCount,
		Objects:    len(c.objects),
		Spawns:     len(c.spawns) + len(c.objectSpawns),
	}
}
