package combat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/udisondev/rsckernel/internal/model"
	"github.com/udisondev/rsckernel/internal/scheduler"
)

// DefaultCombatTime is how long a player stays in combat after a hit.
const DefaultCombatTime = 10 * time.Second

// stanceSweepInterval is how often expired stances are cleared.
const stanceSweepInterval = time.Second

// AttackStanceManager tracks which players are in combat.
// A player enters combat on every hit and leaves after the combat window
// passes without another one.
type AttackStanceManager struct {
	players PlayerLookup
	window  time.Duration

	mu      sync.Mutex
	stances map[model.ObjectID]time.Time // last hit
}

// NewAttackStanceManager creates a tracker. window <= 0 uses DefaultCombatTime.
func NewAttackStanceManager(players PlayerLookup, window time.Duration) *AttackStanceManager {
	if window <= 0 {
		window = DefaultCombatTime
	}
	return &AttackStanceManager{
		players: players,
		window:  window,
		stances: make(map[model.ObjectID]time.Time),
	}
}

// AddAttackStance puts the player in combat, extending the window.
func (m *AttackStanceManager) AddAttackStance(player *model.Player, now time.Time) {
	player.SetInCombat(true)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stances[player.ObjectID()] = now
}

// RemoveAttackStance takes the player out of combat immediately.
func (m *AttackStanceManager) RemoveAttackStance(player *model.Player) {
	player.SetInCombat(false)

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stances, player.ObjectID())
}

// HasAttackStance reports whether the player is in combat.
func (m *AttackStanceManager) HasAttackStance(id model.ObjectID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.stances[id]
	return ok
}

// Expire clears stances older than the combat window. Returns how many ended.
func (m *AttackStanceManager) Expire(now time.Time) int {
	m.mu.Lock()
	var expired []model.ObjectID
	for id, last := range m.stances {
		if now.Sub(last) > m.window {
			expired = append(expired, id)
			delete(m.stances, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		if p, ok := m.players.Player(id); ok {
			p.SetInCombat(false)
			slog.Debug("combat stance expired", "player", p.Name())
		}
	}
	return len(expired)
}

// Start schedules the periodic sweep.
func (m *AttackStanceManager) Start(s *scheduler.Scheduler) *scheduler.Task {
	return s.Schedule("attack stance sweep", stanceSweepInterval, true, func(context.Context) error {
		m.Expire(s.Now())
		return nil
	})
}
