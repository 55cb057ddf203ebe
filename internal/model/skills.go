package model

// Skill indexes a combat-relevant skill.
type Skill int32

const (
	SkillAttack Skill = iota
	SkillDefense
	SkillStrength
	SkillHits
	SkillRanged
	SkillMagic
	SkillCount
)

// String returns human-readable skill name.
func (s Skill) String() string {
	switch s {
	case SkillAttack:
		return "ATTACK"
	case SkillDefense:
		return "DEFENSE"
	case SkillStrength:
		return "STRENGTH"
	case SkillHits:
		return "HITS"
	case SkillRanged:
		return "RANGED"
	case SkillMagic:
		return "MAGIC"
	default:
		return "UNKNOWN"
	}
}

// CombatStance is the melee style chosen by a player.
// It decides which skills receive melee experience.
type CombatStance int32

const (
	StanceControlled CombatStance = iota
	StanceAggressive
	StanceAccurate
	StanceDefensive
)

// String returns human-readable stance name.
func (s CombatStance) String() string {
	switch s {
	case StanceControlled:
		return "CONTROLLED"
	case StanceAggressive:
		return "AGGRESSIVE"
	case StanceAccurate:
		return "ACCURATE"
	case StanceDefensive:
		return "DEFENSIVE"
	default:
		return "UNKNOWN"
	}
}

// MeleeWeights returns the experience weights per skill for a stance.
// Hits always receives weight 1.
func (s CombatStance) MeleeWeights() [SkillCount]int64 {
	var w [SkillCount]int64
	switch s {
	case StanceControlled:
		w[SkillAttack] = 1
		w[SkillDefense] = 1
		w[SkillStrength] = 1
	case StanceAggressive:
		w[SkillStrength] = 3
	case StanceAccurate:
		w[SkillAttack] = 3
	case StanceDefensive:
		w[SkillDefense] = 3
	}
	w[SkillHits] = 1
	return w
}

// Skills holds current and base levels. Not thread-safe; owners guard it.
type Skills struct {
	current [SkillCount]int32
	base    [SkillCount]int32
}

// NewSkills creates skills with current levels equal to base levels.
func NewSkills(base [SkillCount]int32) Skills {
	return Skills{current: base, base: base}
}

// Current returns the current level of a skill.
func (s *Skills) Current(skill Skill) int32 {
	return s.current[skill]
}

// Base returns the baseline level of a skill.
func (s *Skills) Base(skill Skill) int32 {
	return s.base[skill]
}

// SetCurrent sets the current level of a skill, floored at 0.
func (s *Skills) SetCurrent(skill Skill, level int32) {
	s.current[skill] = max(level, 0)
}

// Normalize restores every skill to its base level.
func (s *Skills) Normalize() {
	s.current = s.base
}

// RestoreStep moves every drained or boosted skill one level toward base.
// Hits is excluded: health regenerates through combat rules, not restoration.
// Returns true if any level changed.
func (s *Skills) RestoreStep() bool {
	changed := false
	for i := range SkillCount {
		if i == SkillHits {
			continue
		}
		switch {
		case s.current[i] < s.base[i]:
			s.current[i]++
			changed = true
		case s.current[i] > s.base[i]:
			s.current[i]--
			changed = true
		}
	}
	return changed
}
