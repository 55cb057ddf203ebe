package model

import (
	"math"
	"sync"
)

// DamageChannel is the attack style that produced damage.
type DamageChannel int32

const (
	ChannelMelee DamageChannel = iota
	ChannelRanged
	ChannelMagic
	ChannelCount
)

// String returns human-readable channel name.
func (c DamageChannel) String() string {
	switch c {
	case ChannelMelee:
		return "MELEE"
	case ChannelRanged:
		return "RANGED"
	case ChannelMagic:
		return "MAGIC"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether c is one of the three known channels.
func (c DamageChannel) Valid() bool {
	return c >= ChannelMelee && c < ChannelCount
}

// LedgerEntry is the damage one attacker dealt through one channel.
type LedgerEntry struct {
	Attacker ObjectID
	Damage   uint64
}

// LedgerSnapshot is an immutable copy of a ledger, entries in first-hit order.
type LedgerSnapshot [ChannelCount][]LedgerEntry

// IsEmpty reports whether no channel holds an entry.
func (s LedgerSnapshot) IsEmpty() bool {
	for ch := range ChannelCount {
		if len(s[ch]) > 0 {
			return false
		}
	}
	return true
}

type channelLedger struct {
	order  []ObjectID
	damage map[ObjectID]uint64
}

// DamageLedger accumulates damage received per channel per attacker for one
// encounter episode. Nothing is clamped on record; callers clamp to max health
// when computing rewards.
// Thread-safe.
type DamageLedger struct {
	mu       sync.Mutex
	channels [ChannelCount]channelLedger
}

// NewDamageLedger creates an empty ledger.
func NewDamageLedger() *DamageLedger {
	l := &DamageLedger{}
	for ch := range ChannelCount {
		l.channels[ch].damage = make(map[ObjectID]uint64)
	}
	return l
}

// Record adds damage from attacker through channel. Zero amounts still
// register the attacker so first-hit order reflects engagement, not damage.
func (l *DamageLedger) Record(ch DamageChannel, attacker ObjectID, amount uint32) {
	if !ch.Valid() || attacker.IsZero() {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	c := &l.channels[ch]
	prev, ok := c.damage[attacker]
	if !ok {
		c.order = append(c.order, attacker)
	}
	c.damage[attacker] = saturatingAdd(prev, uint64(amount))
}

// Damage returns the raw (unclamped) damage an attacker dealt through channel.
func (l *DamageLedger) Damage(ch DamageChannel, attacker ObjectID) uint64 {
	if !ch.Valid() {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.channels[ch].damage[attacker]
}

// Contribution returns attacker's damage through channel clamped to maxHealth.
func (l *DamageLedger) Contribution(ch DamageChannel, attacker ObjectID, maxHealth uint64) uint64 {
	return min(l.Damage(ch, attacker), maxHealth)
}

// Attackers returns attackers of a channel in first-hit order.
func (l *DamageLedger) Attackers(ch DamageChannel) []ObjectID {
	if !ch.Valid() {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]ObjectID, len(l.channels[ch].order))
	copy(out, l.channels[ch].order)
	return out
}

// Snapshot copies the ledger so callers can compute rewards without holding the lock.
func (l *DamageLedger) Snapshot() LedgerSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	var snap LedgerSnapshot
	for ch := range ChannelCount {
		c := &l.channels[ch]
		entries := make([]LedgerEntry, 0, len(c.order))
		for _, id := range c.order {
			entries = append(entries, LedgerEntry{Attacker: id, Damage: c.damage[id]})
		}
		snap[ch] = entries
	}
	return snap
}

// Clear removes all entries from every channel.
func (l *DamageLedger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for ch := range ChannelCount {
		l.channels[ch].order = nil
		clear(l.channels[ch].damage)
	}
}

// IsEmpty returns true if no attacker is recorded in any channel.
func (l *DamageLedger) IsEmpty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for ch := range ChannelCount {
		if len(l.channels[ch].order) > 0 {
			return false
		}
	}
	return true
}

func saturatingAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}
