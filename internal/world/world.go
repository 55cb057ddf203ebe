// Package world is the entity arena: identity-keyed tables of players, NPCs,
// scenery objects and ground items plus a spatial index for view queries.
// Lookups return (T, bool) so a vanished entity is always an explicit case.
package world

import (
	"fmt"
	"sync"
	"time"

	"github.com/udisondev/rsckernel/internal/model"
)

// World holds every live entity. Safe for concurrent use.
type World struct {
	ids *ObjectIDGenerator
	now func() time.Time

	players sync.Map // model.ObjectID → *model.Player
	npcs    sync.Map // model.ObjectID → *model.Npc
	objects sync.Map // model.ObjectID → *model.GameObject

	groundMu sync.RWMutex
	ground   map[model.ObjectID]*model.GroundItem

	indexMu sync.Mutex
	regions map[regionKey]*Region
	where   map[model.ObjectID]regionKey
}

// New creates an empty world. A nil clock means time.Now.
func New(clock func() time.Time) *World {
	if clock == nil {
		clock = time.Now
	}
	return &World{
		ids:     NewObjectIDGenerator(),
		now:     clock,
		ground:  make(map[model.ObjectID]*model.GroundItem),
		regions: make(map[regionKey]*Region),
		where:   make(map[model.ObjectID]regionKey),
	}
}

// IDs returns the identity generator.
func (w *World) IDs() *ObjectIDGenerator { return w.ids }

// AddPlayer registers a player and indexes its position.
func (w *World) AddPlayer(p *model.Player) error {
	if p.ObjectID().Kind() != model.KindPlayer {
		return fmt.Errorf("add player %s: wrong identity kind %s", p.ObjectID(), p.ObjectID().Kind())
	}
	w.players.Store(p.ObjectID(), p)
	w.index(p.ObjectID(), p.Location())
	return nil
}

// RemovePlayer unregisters a player (logout).
func (w *World) RemovePlayer(id model.ObjectID) {
	w.players.Delete(id)
	w.unindex(id)
}

// Player looks up a player by identity.
func (w *World) Player(id model.ObjectID) (*model.Player, bool) {
	v, ok := w.players.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*model.Player), true
}

// MovePlayer updates a player's position and index entry.
func (w *World) MovePlayer(p *model.Player, loc model.Point) {
	p.SetLocation(loc)
	if _, ok := w.players.Load(p.ObjectID()); ok {
		w.index(p.ObjectID(), loc)
	}
}

// AddNpc registers an NPC and indexes its position.
func (w *World) AddNpc(npc *model.Npc) error {
	if npc.ObjectID().Kind() != model.KindNpc {
		return fmt.Errorf("add npc %s: wrong identity kind %s", npc.ObjectID(), npc.ObjectID().Kind())
	}
	w.npcs.Store(npc.ObjectID(), npc)
	w.index(npc.ObjectID(), npc.Location())
	return nil
}

// Npc looks up an NPC by identity.
func (w *World) Npc(id model.ObjectID) (*model.Npc, bool) {
	v, ok := w.npcs.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*model.Npc), true
}

// UnregisterNpc removes an NPC from the arena for good.
func (w *World) UnregisterNpc(id model.ObjectID) {
	w.npcs.Delete(id)
	w.unindex(id)
}

// RemoveNpcPosition takes an NPC out of the spatial index but keeps it in the
// arena (dead, awaiting respawn).
func (w *World) RemoveNpcPosition(npc *model.Npc) {
	w.unindex(npc.ObjectID())
}

// SetNpcPosition re-enters an NPC into the spatial index at its location.
func (w *World) SetNpcPosition(npc *model.Npc) {
	if _, ok := w.npcs.Load(npc.ObjectID()); !ok {
		return
	}
	w.index(npc.ObjectID(), npc.Location())
}

// MoveNpc changes an NPC's position and index entry.
func (w *World) MoveNpc(npc *model.Npc, loc model.Point) {
	npc.SetLocation(loc)
	w.SetNpcPosition(npc)
}

// ForEachNpc visits every registered NPC until fn returns false.
func (w *World) ForEachNpc(fn func(*model.Npc) bool) {
	w.npcs.Range(func(_, v any) bool {
		return fn(v.(*model.Npc))
	})
}

// AddObject places a scenery object.
func (w *World) AddObject(o *model.GameObject) {
	w.objects.Store(o.ObjectID(), o)
}

// Object looks up a scenery object. Removed objects are not returned.
func (w *World) Object(id model.ObjectID) (*model.GameObject, bool) {
	v, ok := w.objects.Load(id)
	if !ok {
		return nil, false
	}
	o := v.(*model.GameObject)
	if o.IsRemoved() {
		return nil, false
	}
	return o, true
}

// RemoveObject marks a scenery object removed and drops it from the arena.
func (w *World) RemoveObject(id model.ObjectID) {
	v, ok := w.objects.LoadAndDelete(id)
	if !ok {
		return
	}
	v.(*model.GameObject).MarkRemoved()
}

// PlaceGroundItem puts an item on the ground. npcID tags it as an NPC drop
// when non-zero.
func (w *World) PlaceGroundItem(item model.Item, loc model.Point, owner, npcID model.ObjectID) *model.GroundItem {
	id := w.ids.NextItemID()
	var g *model.GroundItem
	if npcID != 0 {
		g = model.NewNpcDrop(id, item, loc, owner, npcID, w.now())
	} else {
		g = model.NewGroundItem(id, item, loc, owner, w.now())
	}

	w.groundMu.Lock()
	w.ground[id] = g
	w.groundMu.Unlock()
	return g
}

// GroundItem looks up a ground item.
func (w *World) GroundItem(id model.ObjectID) (*model.GroundItem, bool) {
	w.groundMu.RLock()
	defer w.groundMu.RUnlock()
	g, ok := w.ground[id]
	return g, ok
}

// RemoveGroundItem picks an item up. Returns false if it was already gone.
func (w *World) RemoveGroundItem(id model.ObjectID) bool {
	w.groundMu.Lock()
	defer w.groundMu.Unlock()
	if _, ok := w.ground[id]; !ok {
		return false
	}
	delete(w.ground, id)
	return true
}

// GroundItemsAt returns the items lying on one tile.
func (w *World) GroundItemsAt(loc model.Point) []*model.GroundItem {
	w.groundMu.RLock()
	defer w.groundMu.RUnlock()
	var out []*model.GroundItem
	for _, g := range w.ground {
		if g.Location() == loc {
			out = append(out, g)
		}
	}
	return out
}

// GroundItemCount returns number of items on the ground.
func (w *World) GroundItemCount() int {
	w.groundMu.RLock()
	defer w.groundMu.RUnlock()
	return len(w.ground)
}

// PlayersInViewOf returns players within ViewRadius of loc.
func (w *World) PlayersInViewOf(loc model.Point) []*model.Player {
	var out []*model.Player
	for _, r := range w.surrounding(loc) {
		for _, id := range r.Snapshot() {
			if id.Kind() != model.KindPlayer {
				continue
			}
			p, ok := w.Player(id)
			if !ok || !p.Location().WithinRange(loc, ViewRadius) {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}

// Locate resolves any live entity to its position. Dead NPCs, removed
// objects and picked-up items do not resolve.
func (w *World) Locate(id model.ObjectID) (model.Point, bool) {
	switch id.Kind() {
	case model.KindPlayer:
		if p, ok := w.Player(id); ok {
			return p.Location(), true
		}
	case model.KindNpc:
		if npc, ok := w.Npc(id); ok && npc.State().Alive() {
			return npc.Location(), true
		}
	case model.KindGameObject:
		if o, ok := w.Object(id); ok {
			return o.Location(), true
		}
	case model.KindGroundItem:
		if g, ok := w.GroundItem(id); ok {
			return g.Location(), true
		}
	}
	return model.Point{}, false
}

// IsIndexed reports whether an entity has a position in the spatial index.
func (w *World) IsIndexed(id model.ObjectID) bool {
	w.indexMu.Lock()
	defer w.indexMu.Unlock()
	_, ok := w.where[id]
	return ok
}

func (w *World) index(id model.ObjectID, loc model.Point) {
	key := keyOf(loc)

	w.indexMu.Lock()
	defer w.indexMu.Unlock()

	if old, ok := w.where[id]; ok {
		if old == key {
			return
		}
		w.regions[old].Remove(id)
	}
	r, ok := w.regions[key]
	if !ok {
		r = NewRegion(key.rx, key.ry)
		w.regions[key] = r
	}
	r.Add(id)
	w.where[id] = key
}

func (w *World) unindex(id model.ObjectID) {
	w.indexMu.Lock()
	defer w.indexMu.Unlock()

	key, ok := w.where[id]
	if !ok {
		return
	}
	w.regions[key].Remove(id)
	delete(w.where, id)
}

// surrounding returns the existing regions of the 3×3 window around loc.
func (w *World) surrounding(loc model.Point) []*Region {
	center := keyOf(loc)

	w.indexMu.Lock()
	defer w.indexMu.Unlock()

	out := make([]*Region, 0, 9)
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			if r, ok := w.regions[regionKey{rx: center.rx + dx, ry: center.ry + dy}]; ok {
				out = append(out, r)
			}
		}
	}
	return out
}
