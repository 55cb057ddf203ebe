package model

import "time"

// WorldEventKind identifies a lifecycle event published to observers.
type WorldEventKind string

const (
	EventNpcDeath   WorldEventKind = "npc_death"
	EventDrop       WorldEventKind = "drop"
	EventNpcRespawn WorldEventKind = "npc_respawn"
	EventNpcRemoved WorldEventKind = "npc_removed"
)

// WorldEvent is a flat record of something that happened in the world.
// Zero fields are omitted from the JSON form.
type WorldEvent struct {
	Kind     WorldEventKind `json:"kind"`
	At       time.Time      `json:"at"`
	NpcID    ObjectID       `json:"npc_id,omitempty"`
	NpcDefID int32          `json:"npc_def_id,omitempty"`
	ActorID  ObjectID       `json:"actor_id,omitempty"`
	ItemID   int32          `json:"item_id,omitempty"`
	Amount   int32          `json:"amount,omitempty"`
	Location Point          `json:"location"`
}

// EventPublisher receives world events. Implementations must not block.
type EventPublisher interface {
	Publish(ev WorldEvent)
}

// NopPublisher discards every event.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(WorldEvent) {}
