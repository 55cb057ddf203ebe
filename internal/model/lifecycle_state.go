package model

// LifecycleState is the NPC combat/death state.
type LifecycleState int32

const (
	// StateActive - NPC is alive and not in combat
	StateActive LifecycleState = iota
	// StateEngaged - NPC has taken damage in the current episode
	StateEngaged
	// StateDying - death resolution is running
	StateDying
	// StateRespawning - NPC is out of the world waiting for its respawn task
	StateRespawning
	// StateRemoved - terminal, NPC never comes back
	StateRemoved
)

// String returns human-readable state name
func (s LifecycleState) String() string {
	switch s {
	case StateActive:
		return "ACTIVE"
	case StateEngaged:
		return "ENGAGED"
	case StateDying:
		return "DYING"
	case StateRespawning:
		return "RESPAWNING"
	case StateRemoved:
		return "REMOVED"
	default:
		return "UNKNOWN"
	}
}

// Alive reports whether the NPC can take damage and act.
func (s LifecycleState) Alive() bool {
	return s == StateActive || s == StateEngaged
}
