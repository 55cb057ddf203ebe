package combat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/rsckernel/internal/model"
)

func killFor(t *testing.T, f *fixture, def *model.NpcDefinition, owner *model.Player) *DeathReport {
	t.Helper()
	npc := f.spawn(t, def)
	rep, err := f.life.TriggerDeath(context.Background(), npc.ObjectID(), owner.ObjectID())
	require.NoError(t, err)
	return rep
}

func dropIDs(rep *DeathReport) []int32 {
	ids := make([]int32, 0, len(rep.Drops))
	for _, g := range rep.Drops {
		ids = append(ids, g.Item().ItemID)
	}
	return ids
}

func TestLoot_BonesByCategory(t *testing.T) {
	tests := []struct {
		name string
		cat  model.NpcCategory
		want []int32
	}{
		{"standard", model.NpcCategory{}, []int32{model.ItemBones}},
		{"dragon", model.NpcCategory{Dragon: true, Demon: true}, []int32{model.ItemDragonBones}},
		{"boneless", model.NpcCategory{Boneless: true}, []int32{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			def := dummyDef(920)
			def.Category = tt.cat
			rep := killFor(t, f, def, f.player(t, "alice", model.StanceControlled))
			assert.Equal(t, tt.want, dropIDs(rep))
		})
	}
}

func TestLoot_MembersItemSkippedOnFreeWorld(t *testing.T) {
	for _, member := range []bool{true, false} {
		f := newFixture(t, withConfig(func(c *Config) { c.MemberWorld = member }))
		def := dummyDef(921)
		def.DropTable = "herbs"
		f.catalog.tables["herbs"] = model.NewDropTable("herbs", []model.DropEntry{
			{ItemID: itemHerb, Min: 2, Max: 2, Kind: model.DropInvariable},
		})
		rep := killFor(t, f, def, f.player(t, "alice", model.StanceControlled))

		if member {
			assert.Len(t, rep.Drops, 2)
		} else {
			assert.Empty(t, rep.Drops)
			assert.Empty(t, f.sink.drops)
		}
	}
}

func TestLoot_GoldDropAndSplendor(t *testing.T) {
	tests := []struct {
		name     string
		splendor bool
		want     int32
	}{
		{"plain", false, 100},
		{"ring of splendor", true, 110},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			def := dummyDef(922)
			def.DropTable = "gold"
			f.catalog.tables["gold"] = model.NewDropTable("gold", []model.DropEntry{
				{ItemID: model.ItemCoins, Min: 1, Max: 1, Weight: 1, Kind: model.DropWeighted},
			})
			f.catalog.gold[922] = []int32{100, 200}

			p := f.player(t, "alice", model.StanceControlled)
			if tt.splendor {
				p.Equip(model.ItemRingOfSplendor)
			}
			rep := killFor(t, f, def, p)

			require.Len(t, rep.Drops, 1)
			assert.Equal(t, tt.want, rep.Drops[0].Item().Amount)
		})
	}
}

func TestLoot_InvariableCoinsKeepRolledAmount(t *testing.T) {
	f := newFixture(t)
	def := dummyDef(923)
	def.DropTable = "fixed"
	f.catalog.tables["fixed"] = model.NewDropTable("fixed", []model.DropEntry{
		{ItemID: model.ItemCoins, Min: 15, Max: 15, Kind: model.DropInvariable},
	})
	f.catalog.gold[923] = []int32{500}

	rep := killFor(t, f, def, f.player(t, "alice", model.StanceControlled))
	require.Len(t, rep.Drops, 1)
	assert.Equal(t, int32(15), rep.Drops[0].Item().Amount)
}

func TestLoot_AvariceTakesStackables(t *testing.T) {
	f := newFixture(t)
	def := dummyDef(924)
	def.DropTable = "mixed"
	f.catalog.tables["mixed"] = model.NewDropTable("mixed", []model.DropEntry{
		{ItemID: model.ItemCoins, Min: 40, Max: 40, Kind: model.DropInvariable},
		{ItemID: itemDagger, Min: 1, Max: 1, Kind: model.DropInvariable},
	})
	p := f.player(t, "alice", model.StanceControlled)
	p.Equip(model.ItemRingOfAvarice)

	rep := killFor(t, f, def, p)

	assert.Equal(t, []int32{itemDagger}, dropIDs(rep))
	assert.Equal(t, []model.Item{model.NewItem(model.ItemCoins, 40)}, rep.Intercepted)
	assert.Equal(t, []model.Item{model.NewItem(model.ItemCoins, 40)}, p.Carried())
	assert.Len(t, f.sink.drops, 2, "intercepted drops are still logged")
}

func TestLoot_CustomInterceptorConverts(t *testing.T) {
	f := newFixture(t, func(_ *Config, d *Deps) {
		d.Interceptors = []Interceptor{InterceptorFunc(func(_ *model.Player, item model.Item, _ *model.ItemDefinition) (model.Item, bool) {
			if item.ItemID == model.ItemBones {
				return model.NewItem(model.ItemCoins, 5), true
			}
			return item, true
		})}
	})
	def := dummyDef(925)
	def.Category = model.NpcCategory{}

	rep := killFor(t, f, def, f.player(t, "alice", model.StanceControlled))
	require.Len(t, rep.Drops, 1)
	assert.Equal(t, model.NewItem(model.ItemCoins, 5), rep.Drops[0].Item())
}

func TestLoot_SharedRareTables(t *testing.T) {
	newRareFixture := func(t *testing.T, enabled bool) (*fixture, *model.NpcDefinition) {
		f := newFixture(t, withConfig(func(c *Config) { c.SharedRareTables = enabled }))
		def := dummyDef(926)
		def.DropTable = "legacy"
		f.catalog.tables["legacy"] = model.NewDropTable("legacy", []model.DropEntry{
			{ItemID: itemDagger, Min: 1, Max: 1, Weight: 1, Kind: model.DropCustomRare},
		})
		f.catalog.rare = []*model.RareTable{
			model.NewRareTable("ultra_rare", false, nil, model.RareAccess{Chance: 1, OutOf: 512},
				[]model.DropEntry{{ItemID: model.ItemDragon2HandSword, Min: 1, Max: 1, Weight: 1}}),
			model.NewRareTable("rare", false, nil, model.RareAccess{Chance: 1, OutOf: 128},
				[]model.DropEntry{{ItemID: itemHerb, Min: 1, Max: 1, Weight: 1}}),
		}
		return f, def
	}

	t.Run("enabled", func(t *testing.T) {
		f, def := newRareFixture(t, true)
		rep := killFor(t, f, def, f.player(t, "alice", model.StanceControlled))
		// fixedRoller(0) passes the first access gate; legacy slots are gone
		assert.Equal(t, []int32{model.ItemDragon2HandSword}, dropIDs(rep))
	})

	t.Run("disabled", func(t *testing.T) {
		f, def := newRareFixture(t, false)
		rep := killFor(t, f, def, f.player(t, "alice", model.StanceControlled))
		assert.Equal(t, []int32{itemDagger}, dropIDs(rep))
	})
}

func TestLoot_CustomRareTable(t *testing.T) {
	custom := model.NewRareTable("dragon_custom", true, []int32{927}, model.RareAccess{Chance: 1, OutOf: 64, WealthChance: 2},
		[]model.DropEntry{{ItemID: model.ItemDragon2HandSword, Min: 1, Max: 1, Weight: 1}})

	t.Run("rolled for its npc", func(t *testing.T) {
		f := newFixture(t)
		f.catalog.customRare[927] = custom
		rep := killFor(t, f, dummyDef(927), f.player(t, "alice", model.StanceControlled))
		assert.Equal(t, []int32{model.ItemDragon2HandSword}, dropIDs(rep))
	})

	t.Run("gate fails", func(t *testing.T) {
		f := newFixture(t, withRand(fixedRoller(1)))
		f.catalog.customRare[927] = custom
		rep := killFor(t, f, dummyDef(927), f.player(t, "alice", model.StanceControlled))
		assert.Empty(t, rep.Drops)
	})

	t.Run("ring of wealth widens the gate", func(t *testing.T) {
		f := newFixture(t, withRand(fixedRoller(1)))
		f.catalog.customRare[927] = custom
		p := f.player(t, "alice", model.StanceControlled)
		p.Equip(model.ItemRingOfWealth)
		rep := killFor(t, f, dummyDef(927), p)
		assert.Equal(t, []int32{model.ItemDragon2HandSword}, dropIDs(rep))
	})

	t.Run("disabled", func(t *testing.T) {
		f := newFixture(t, withConfig(func(c *Config) { c.CustomRareTables = false }))
		f.catalog.customRare[927] = custom
		rep := killFor(t, f, dummyDef(927), f.player(t, "alice", model.StanceControlled))
		assert.Empty(t, rep.Drops)
	})
}

func TestLoot_EmptyWeightSkipsRoll(t *testing.T) {
	f := newFixture(t)
	def := dummyDef(928)
	def.DropTable = "only_legacy"
	f.catalog.tables["only_legacy"] = model.NewDropTable("only_legacy", []model.DropEntry{
		{ItemID: itemDagger, Min: 1, Max: 1, Weight: 5, Kind: model.DropCustomRare},
	})

	rep := killFor(t, f, def, f.player(t, "alice", model.StanceControlled))
	assert.Empty(t, rep.Drops)
}

func TestLoot_MissingDropTableStillNotifies(t *testing.T) {
	f := newFixture(t)
	def := dummyDef(929)
	def.DropTable = "nope"
	npc := f.spawn(t, def)
	p := f.player(t, "alice", model.StanceControlled)

	called := 0
	require.NoError(t, f.life.RegisterDeathListener(npc.ObjectID(), model.DeathListenerFunc(func(model.ObjectID, *model.Npc) {
		called++
	})))
	rep, err := f.life.TriggerDeath(context.Background(), npc.ObjectID(), p.ObjectID())
	require.NoError(t, err)
	assert.Empty(t, rep.Drops)
	assert.Equal(t, 1, called)
}
