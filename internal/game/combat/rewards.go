package combat

import (
	"math/rand/v2"
	"sync"

	"github.com/udisondev/rsckernel/internal/model"
)

// RewardSink applies experience grants to actors.
type RewardSink interface {
	GrantExperience(actorID model.ObjectID, skill model.Skill, amount int64)
}

// PlayerLookup resolves player identities.
type PlayerLookup interface {
	Player(id model.ObjectID) (*model.Player, bool)
}

// PlayerRewards grants experience directly to online players.
// Grants for identities that are not online are dropped.
type PlayerRewards struct {
	Players PlayerLookup
}

// GrantExperience implements RewardSink.
func (r PlayerRewards) GrantExperience(actorID model.ObjectID, skill model.Skill, amount int64) {
	if p, ok := r.Players.Player(actorID); ok {
		p.AddExperience(skill, amount)
	}
}

// Grant is one experience award of a kill.
type Grant struct {
	ActorID model.ObjectID
	Skill   model.Skill
	Amount  int64
}

// rewardPlan is the outcome of splitting the reward pool.
type rewardPlan struct {
	grants []Grant
	// top is the biggest single-channel contributor, zero when nobody
	// dealt damage.
	top model.ObjectID
}

// planRewards splits total across every attacker in the ledger.
//
// Each contribution is clamped to maxHealth. The pool is divided by
// max(maxHealth, sum of clamped contributions), so grants never exceed total
// even when attackers overkill or the NPC healed mid-fight.
//
// Melee is spread over the skills of the attacker's stance, ranged and magic
// each feed their own skill. Attackers that are not players (stanceOf
// reports false) earn nothing but still compete for top contributor.
func planRewards(
	snap model.LedgerSnapshot,
	total int64,
	maxHealth int32,
	stanceOf func(model.ObjectID) (model.CombatStance, bool),
	cfg Config,
) rewardPlan {
	maxHP := uint64(max(maxHealth, 1))

	var dealt uint64
	for ch := range model.ChannelCount {
		for _, e := range snap[ch] {
			dealt += min(e.Damage, maxHP)
		}
	}
	denom := max(maxHP, dealt)

	var plan rewardPlan
	var best uint64
	for ch := range model.ChannelCount {
		for _, e := range snap[ch] {
			contribution := min(e.Damage, maxHP)
			if contribution > best {
				best = contribution
				plan.top = e.Attacker
			}
			if total <= 0 {
				continue
			}

			share := int64(uint64(total) * contribution / denom)
			if share <= 0 {
				continue
			}
			stance, ok := stanceOf(e.Attacker)
			if !ok {
				continue
			}

			switch ch {
			case model.ChannelMelee:
				plan.grants = append(plan.grants, splitMelee(e.Attacker, scale(share, cfg.CombatMultiplier), stance)...)
			case model.ChannelRanged:
				plan.grants = appendGrant(plan.grants, e.Attacker, model.SkillRanged, scale(share, cfg.RangedMultiplier))
			case model.ChannelMagic:
				plan.grants = appendGrant(plan.grants, e.Attacker, model.SkillMagic, scale(share, cfg.MagicMultiplier))
			}
		}
	}
	return plan
}

// splitMelee spreads amount over the stance weights. The integer remainder
// goes to the first weighted skill so nothing is lost to rounding.
func splitMelee(actor model.ObjectID, amount int64, stance model.CombatStance) []Grant {
	weights := stance.MeleeWeights()

	var sum int64
	for _, w := range weights {
		sum += w
	}
	if sum == 0 || amount <= 0 {
		return nil
	}

	var amounts [model.SkillCount]int64
	var given int64
	first := model.Skill(-1)
	for skill := range model.SkillCount {
		w := weights[skill]
		if w == 0 {
			continue
		}
		if first < 0 {
			first = skill
		}
		amounts[skill] = amount * w / sum
		given += amounts[skill]
	}
	amounts[first] += amount - given

	var grants []Grant
	for skill := range model.SkillCount {
		grants = appendGrant(grants, actor, skill, amounts[skill])
	}
	return grants
}

func appendGrant(grants []Grant, actor model.ObjectID, skill model.Skill, amount int64) []Grant {
	if amount <= 0 {
		return grants
	}
	return append(grants, Grant{ActorID: actor, Skill: skill, Amount: amount})
}

func scale(amount int64, mult float64) int64 {
	if mult <= 0 {
		mult = 1
	}
	return int64(float64(amount) * mult)
}

// lockedRand makes a seeded generator safe for parallel NPC updates.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand returns a concurrency-safe roller seeded for reproducible loot.
func NewRand(seed uint64) model.Roller {
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// IntN implements model.Roller.
func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// globalRand uses the runtime-seeded package generator.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }
