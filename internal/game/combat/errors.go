package combat

import "errors"

var (
	// ErrNpcNotFound is returned when an identity resolves to no NPC.
	ErrNpcNotFound = errors.New("npc not found")

	// ErrNotAlive is returned for damage or listeners against a dead NPC.
	ErrNotAlive = errors.New("npc not alive")

	// ErrNotDying is returned by Remove when the NPC is not awaiting removal.
	ErrNotDying = errors.New("npc not dying")

	// ErrUnresolvedOwner means the kill maps to no player: rewards and loot
	// are skipped and the NPC goes straight to cleanup.
	ErrUnresolvedOwner = errors.New("unresolved owner")
)
