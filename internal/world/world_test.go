package world

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/rsckernel/internal/model"
)

var testNpcDef = &model.NpcDefinition{ID: 11, Name: "Goblin", Hits: 10, CombatLevel: 5}

func newTestWorld() *World {
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return New(func() time.Time { return fixed })
}

func TestWorld_PlayerLookup(t *testing.T) {
	w := newTestWorld()
	p := model.NewPlayer(w.IDs().NextPlayerID(), "alice", model.MustPoint(120, 648))

	require.NoError(t, w.AddPlayer(p))
	got, ok := w.Player(p.ObjectID())
	require.True(t, ok)
	assert.Same(t, p, got)

	w.RemovePlayer(p.ObjectID())
	_, ok = w.Player(p.ObjectID())
	assert.False(t, ok)
	assert.False(t, w.IsIndexed(p.ObjectID()))
}

func TestWorld_RejectsWrongKind(t *testing.T) {
	w := newTestWorld()

	p := model.NewPlayer(w.IDs().NextNpcID(), "impostor", model.MustPoint(1, 1))
	assert.Error(t, w.AddPlayer(p))

	npc := model.NewNpc(w.IDs().NextPlayerID(), testNpcDef, model.NpcSpawn{})
	assert.Error(t, w.AddNpc(npc))
}

func TestWorld_NpcPosition(t *testing.T) {
	w := newTestWorld()
	npc := model.NewNpc(w.IDs().NextNpcID(), testNpcDef, model.NewNpcSpawn(11, model.MustPoint(120, 648), 4))
	require.NoError(t, w.AddNpc(npc))
	assert.True(t, w.IsIndexed(npc.ObjectID()))

	w.RemoveNpcPosition(npc)
	assert.False(t, w.IsIndexed(npc.ObjectID()))
	_, ok := w.Npc(npc.ObjectID())
	assert.True(t, ok, "dead NPC stays in the arena")

	w.SetNpcPosition(npc)
	assert.True(t, w.IsIndexed(npc.ObjectID()))

	w.UnregisterNpc(npc.ObjectID())
	_, ok = w.Npc(npc.ObjectID())
	assert.False(t, ok)
	assert.False(t, w.IsIndexed(npc.ObjectID()))

	w.SetNpcPosition(npc)
	assert.False(t, w.IsIndexed(npc.ObjectID()), "unregistered NPC is not re-indexed")
}

func TestWorld_PlayersInViewOf(t *testing.T) {
	w := newTestWorld()
	center := model.MustPoint(120, 648)

	near := model.NewPlayer(w.IDs().NextPlayerID(), "near", model.MustPoint(125, 650))
	edge := model.NewPlayer(w.IDs().NextPlayerID(), "edge", model.MustPoint(120, 664))
	far := model.NewPlayer(w.IDs().NextPlayerID(), "far", model.MustPoint(120, 680))
	for _, p := range []*model.Player{near, edge, far} {
		require.NoError(t, w.AddPlayer(p))
	}
	npc := model.NewNpc(w.IDs().NextNpcID(), testNpcDef, model.NewNpcSpawn(11, center, 4))
	require.NoError(t, w.AddNpc(npc))

	got := w.PlayersInViewOf(center)
	assert.ElementsMatch(t, []*model.Player{near, edge}, got)

	w.MovePlayer(far, model.MustPoint(121, 649))
	assert.Len(t, w.PlayersInViewOf(center), 3)
}

func TestWorld_GroundItems(t *testing.T) {
	w := newTestWorld()
	loc := model.MustPoint(120, 648)
	owner := w.IDs().NextPlayerID()
	npcID := w.IDs().NextNpcID()

	coins := w.PlaceGroundItem(model.NewItem(model.ItemCoins, 50), loc, owner, npcID)
	bones := w.PlaceGroundItem(model.NewItem(model.ItemBones, 1), loc, owner, 0)

	assert.True(t, coins.IsNpcDrop())
	assert.Equal(t, npcID, coins.SourceID())
	assert.False(t, bones.IsNpcDrop())
	assert.Equal(t, model.KindGroundItem, coins.ObjectID().Kind())
	assert.Equal(t, 2, w.GroundItemCount())
	assert.Len(t, w.GroundItemsAt(loc), 2)
	assert.Empty(t, w.GroundItemsAt(model.MustPoint(1, 1)))

	assert.True(t, w.RemoveGroundItem(coins.ObjectID()))
	assert.False(t, w.RemoveGroundItem(coins.ObjectID()))
	_, ok := w.GroundItem(coins.ObjectID())
	assert.False(t, ok)
}

func TestWorld_Objects(t *testing.T) {
	w := newTestWorld()
	def := &model.GameObjectDefinition{ID: 1, Name: "Door", Command1: "open", Command2: "close"}
	o := model.NewGameObject(w.IDs().NextObjectID(), def, model.MustPoint(130, 650))
	w.AddObject(o)

	got, ok := w.Object(o.ObjectID())
	require.True(t, ok)
	assert.Same(t, o, got)

	w.RemoveObject(o.ObjectID())
	_, ok = w.Object(o.ObjectID())
	assert.False(t, ok)
	assert.True(t, o.IsRemoved())
}

func TestWorld_Locate(t *testing.T) {
	w := newTestWorld()
	loc := model.MustPoint(120, 648)

	p := model.NewPlayer(w.IDs().NextPlayerID(), "alice", loc)
	require.NoError(t, w.AddPlayer(p))
	npc := model.NewNpc(w.IDs().NextNpcID(), testNpcDef, model.NewNpcSpawn(11, loc, 4))
	require.NoError(t, w.AddNpc(npc))
	o := model.NewGameObject(w.IDs().NextObjectID(), nil, loc)
	w.AddObject(o)
	g := w.PlaceGroundItem(model.NewItem(model.ItemBones, 1), loc, 0, 0)

	for _, id := range []model.ObjectID{p.ObjectID(), npc.ObjectID(), o.ObjectID(), g.ObjectID()} {
		got, ok := w.Locate(id)
		require.True(t, ok, "id %s", id)
		assert.Equal(t, loc, got)
	}

	require.True(t, npc.BeginDying())
	_, ok := w.Locate(npc.ObjectID())
	assert.False(t, ok, "dead NPC does not resolve")

	_, ok = w.Locate(0)
	assert.False(t, ok)
}
