package model

import "time"

// GroundItem represents an item lying on the ground in the world.
// Immutable after creation; the world registry owns its lifetime.
type GroundItem struct {
	objectID  ObjectID
	item      Item
	location  Point
	ownerID   ObjectID // player the drop is reserved for (0 = anyone)
	sourceID  ObjectID // NPC that dropped it (0 = player drop)
	npcDrop   bool
	droppedAt time.Time
}

// NewGroundItem creates a player-dropped or generic ground item.
func NewGroundItem(objectID ObjectID, item Item, loc Point, ownerID ObjectID, droppedAt time.Time) *GroundItem {
	return &GroundItem{
		objectID:  objectID,
		item:      item,
		location:  loc,
		ownerID:   ownerID,
		droppedAt: droppedAt,
	}
}

// NewNpcDrop creates a ground item tagged as dropped by an NPC.
func NewNpcDrop(objectID ObjectID, item Item, loc Point, ownerID, npcID ObjectID, droppedAt time.Time) *GroundItem {
	g := NewGroundItem(objectID, item, loc, ownerID, droppedAt)
	g.sourceID = npcID
	g.npcDrop = true
	return g
}

// ObjectID returns the arena identity.
func (g *GroundItem) ObjectID() ObjectID { return g.objectID }

// Item returns the item data.
func (g *GroundItem) Item() Item { return g.item }

// Location returns where the item lies.
func (g *GroundItem) Location() Point { return g.location }

// OwnerID returns the player the item is reserved for.
func (g *GroundItem) OwnerID() ObjectID { return g.ownerID }

// SourceID returns the NPC that dropped the item.
func (g *GroundItem) SourceID() ObjectID { return g.sourceID }

// IsNpcDrop reports whether the item came from an NPC death.
func (g *GroundItem) IsNpcDrop() bool { return g.npcDrop }

// DroppedAt returns drop time.
func (g *GroundItem) DroppedAt() time.Time { return g.droppedAt }
