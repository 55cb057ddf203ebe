package model

import "strconv"

// ObjectID identifies a live entity in the world arena.
// Zero is never assigned and means "no entity".
//
// ID ranges (convention):
//
//	0x10000000 - 0x1FFFFFFF: Players
//	0x20000000 - 0x2FFFFFFF: NPCs
//	0x30000000 - 0x3FFFFFFF: Ground items
//	0x40000000 - 0x4FFFFFFF: Game objects (scenery)
type ObjectID uint32

// Range bases.
const (
	PlayerIDBase ObjectID = 0x10000000
	NpcIDBase    ObjectID = 0x20000000
	ItemIDBase   ObjectID = 0x30000000
	ObjectIDBase ObjectID = 0x40000000
	rangeTop     ObjectID = 0x50000000
)

// EntityKind classifies an ObjectID by its range.
type EntityKind int32

const (
	KindUnknown EntityKind = iota
	KindPlayer
	KindNpc
	KindGroundItem
	KindGameObject
)

// String returns human-readable kind name.
func (k EntityKind) String() string {
	switch k {
	case KindPlayer:
		return "PLAYER"
	case KindNpc:
		return "NPC"
	case KindGroundItem:
		return "GROUND_ITEM"
	case KindGameObject:
		return "GAME_OBJECT"
	default:
		return "UNKNOWN"
	}
}

// Kind returns the entity kind encoded in the ID range.
func (id ObjectID) Kind() EntityKind {
	switch {
	case id >= PlayerIDBase && id < NpcIDBase:
		return KindPlayer
	case id >= NpcIDBase && id < ItemIDBase:
		return KindNpc
	case id >= ItemIDBase && id < ObjectIDBase:
		return KindGroundItem
	case id >= ObjectIDBase && id < rangeTop:
		return KindGameObject
	default:
		return KindUnknown
	}
}

// IsZero reports whether the ID is unset.
func (id ObjectID) IsZero() bool {
	return id == 0
}

// String implements fmt.Stringer.
func (id ObjectID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}
