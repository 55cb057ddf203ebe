package model

// BoneKind is the bone-type drop an NPC always leaves on death.
type BoneKind int32

const (
	BonesNone BoneKind = iota
	BonesStandard
	BonesBig
	BonesBat
	BonesDragon
	BonesDemonAshes
)

// ItemID returns the item dropped for this bone kind, ItemNothing for none.
func (b BoneKind) ItemID() int32 {
	switch b {
	case BonesStandard:
		return ItemBones
	case BonesBig:
		return ItemBigBones
	case BonesBat:
		return ItemBatBones
	case BonesDragon:
		return ItemDragonBones
	case BonesDemonAshes:
		return ItemAshes
	default:
		return ItemNothing
	}
}

// NpcCategory holds the flags that decide the bone drop.
type NpcCategory struct {
	BigBoned bool `yaml:"big_boned" json:"big_boned"`
	BatBoned bool `yaml:"bat_boned" json:"bat_boned"`
	Dragon   bool `yaml:"dragon" json:"dragon"`
	Demon    bool `yaml:"demon" json:"demon"`
	Boneless bool `yaml:"boneless" json:"boneless"`
}

// Bones resolves the bone drop by fixed precedence:
// big > bat > dragon > demon ashes > standard > none.
func (c NpcCategory) Bones() BoneKind {
	switch {
	case c.BigBoned:
		return BonesBig
	case c.BatBoned:
		return BonesBat
	case c.Dragon:
		return BonesDragon
	case c.Demon:
		return BonesDemonAshes
	case !c.Boneless:
		return BonesStandard
	default:
		return BonesNone
	}
}

// NpcDefinition represents NPC stats and death rules from the catalog.
type NpcDefinition struct {
	ID          int32       `yaml:"id" json:"id"`
	Name        string      `yaml:"name" json:"name"`
	Attack      int32       `yaml:"attack" json:"attack"`
	Defense     int32       `yaml:"defense" json:"defense"`
	Strength    int32       `yaml:"strength" json:"strength"`
	Hits        int32       `yaml:"hits" json:"hits"`
	Ranged      int32       `yaml:"ranged" json:"ranged"`
	CombatLevel int32       `yaml:"combat_level" json:"combat_level"`
	RespawnTime int32       `yaml:"respawn_time" json:"respawn_time"` // seconds, 0 = never
	DropTable   string      `yaml:"drop_table" json:"drop_table"`
	Category    NpcCategory `yaml:"category" json:"category"`

	// ScriptedRemoval NPCs hand their death over to the kill script,
	// which finishes the lifecycle itself.
	ScriptedRemoval bool `yaml:"scripted_removal" json:"scripted_removal"`
}

// BaseSkills returns the baseline skill levels of a fresh spawn.
func (d *NpcDefinition) BaseSkills() [SkillCount]int32 {
	var base [SkillCount]int32
	base[SkillAttack] = d.Attack
	base[SkillDefense] = d.Defense
	base[SkillStrength] = d.Strength
	base[SkillHits] = d.Hits
	base[SkillRanged] = d.Ranged
	return base
}

// CombatExperience is the total reward pool for killing this NPC.
func (d *NpcDefinition) CombatExperience() int64 {
	return int64(float64(d.CombatLevel*2+10) * 1.5)
}
