package combat

import (
	"fmt"
	"time"
)

// LootOwnerRule decides who receives the loot of a kill.
type LootOwnerRule int32

const (
	// LootTopDamage gives loot to the biggest single-channel contributor.
	LootTopDamage LootOwnerRule = iota
	// LootFinishingBlow gives loot to whoever landed the killing hit.
	LootFinishingBlow
)

// String returns the config spelling of the rule.
func (r LootOwnerRule) String() string {
	switch r {
	case LootTopDamage:
		return "top_damage"
	case LootFinishingBlow:
		return "finishing_blow"
	default:
		return "unknown"
	}
}

// ParseLootOwnerRule parses the config spelling.
func ParseLootOwnerRule(s string) (LootOwnerRule, error) {
	switch s {
	case "", "top_damage":
		return LootTopDamage, nil
	case "finishing_blow":
		return LootFinishingBlow, nil
	default:
		return 0, fmt.Errorf("unknown loot owner rule %q", s)
	}
}

// Config holds the world rules the death pipeline depends on.
type Config struct {
	// MemberWorld allows members-only drops.
	MemberWorld bool
	// CustomRareTables enables NPC-specific rare tables (the dragon table).
	CustomRareTables bool
	// SharedRareTables enables the ultra rare / rare tables and strips the
	// legacy rare slots from the regular drop tables.
	SharedRareTables bool
	// LootOwner defaults to LootTopDamage, the glossary rule. When two
	// attackers split the damage and the smaller share lands the last
	// hit, top damage picks the bigger contributor while the two-attacker
	// death scenario expects the finisher; LootFinishingBlow reproduces
	// that scenario.
	LootOwner LootOwnerRule

	RespawnMultiplier float64
	CombatMultiplier  float64
	RangedMultiplier  float64
	MagicMultiplier   float64

	// SpawnImmunity is how long a fresh spawn refrains from attacking.
	SpawnImmunity time.Duration
	// PoisonInterval is the delay between poison hits.
	PoisonInterval time.Duration
	// CombatTime is how long a player stays in combat after a hit.
	CombatTime time.Duration
}

// DefaultConfig returns the stock rules.
func DefaultConfig() Config {
	return Config{
		MemberWorld:       true,
		CustomRareTables:  true,
		SharedRareTables:  true,
		LootOwner:         LootTopDamage,
		RespawnMultiplier: 1.0,
		CombatMultiplier:  1.0,
		RangedMultiplier:  1.0,
		MagicMultiplier:   1.0,
		SpawnImmunity:     640 * time.Millisecond,
		PoisonInterval:    20 * time.Second,
		CombatTime:        10 * time.Second,
	}
}

// respawnDelay converts a definition respawn time (seconds) to a delay.
func (c Config) respawnDelay(seconds int32) time.Duration {
	mult := c.RespawnMultiplier
	if mult <= 0 {
		mult = 1
	}
	return time.Duration(float64(seconds) * mult * float64(time.Second))
}
