package world

import (
	"sync/atomic"

	"github.com/udisondev/rsckernel/internal/model"
)

// ObjectIDGenerator hands out unique arena identities, one range per entity
// kind (see model.PlayerIDBase and friends). 0 is never issued.
type ObjectIDGenerator struct {
	nextPlayerID atomic.Uint32
	nextNpcID    atomic.Uint32
	nextItemID   atomic.Uint32
	nextObjectID atomic.Uint32
}

// NewObjectIDGenerator creates a new ID generator.
func NewObjectIDGenerator() *ObjectIDGenerator {
	gen := &ObjectIDGenerator{}
	gen.nextPlayerID.Store(uint32(model.PlayerIDBase))
	gen.nextNpcID.Store(uint32(model.NpcIDBase))
	gen.nextItemID.Store(uint32(model.ItemIDBase))
	gen.nextObjectID.Store(uint32(model.ObjectIDBase))
	return gen
}

// NextPlayerID generates next player identity.
func (g *ObjectIDGenerator) NextPlayerID() model.ObjectID {
	return model.ObjectID(g.nextPlayerID.Add(1))
}

// NextNpcID generates next NPC identity.
func (g *ObjectIDGenerator) NextNpcID() model.ObjectID {
	return model.ObjectID(g.nextNpcID.Add(1))
}

// NextItemID generates next ground item identity.
func (g *ObjectIDGenerator) NextItemID() model.ObjectID {
	return model.ObjectID(g.nextItemID.Add(1))
}

// NextObjectID generates next scenery object identity.
func (g *ObjectIDGenerator) NextObjectID() model.ObjectID {
	return model.ObjectID(g.nextObjectID.Add(1))
}
