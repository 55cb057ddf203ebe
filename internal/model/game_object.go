package model

import "sync"

// GameObjectDefinition describes a static scenery object players can operate.
type GameObjectDefinition struct {
	ID       int32  `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Command1 string `yaml:"command1" json:"command1"`
	Command2 string `yaml:"command2" json:"command2"`
}

// Command returns the command for a click option (0 = primary, 1 = secondary).
func (d *GameObjectDefinition) Command(click int32) string {
	if click == 1 {
		return d.Command2
	}
	return d.Command1
}

// GameObject is a placed scenery object (door, ladder, bank booth).
type GameObject struct {
	objectID ObjectID
	def      *GameObjectDefinition
	location Point

	mu      sync.RWMutex
	removed bool
}

// NewGameObject places a scenery object.
func NewGameObject(objectID ObjectID, def *GameObjectDefinition, loc Point) *GameObject {
	return &GameObject{objectID: objectID, def: def, location: loc}
}

// ObjectID returns the arena identity.
func (o *GameObject) ObjectID() ObjectID { return o.objectID }

// Definition returns catalog data, nil for objects without a definition.
func (o *GameObject) Definition() *GameObjectDefinition { return o.def }

// Location returns the object position.
func (o *GameObject) Location() Point { return o.location }

// IsRemoved reports whether the object was taken out of the world.
func (o *GameObject) IsRemoved() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.removed
}

// MarkRemoved flags the object as gone. Pending interactions against it are
// discarded on their next check.
func (o *GameObject) MarkRemoved() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.removed = true
}
