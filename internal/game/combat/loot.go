package combat

import (
	"context"
	"log/slog"

	"github.com/udisondev/rsckernel/internal/droplog"
	"github.com/udisondev/rsckernel/internal/model"
)

// lootRun resolves the drops of one kill for one owner.
type lootRun struct {
	l     *Lifecycle
	npc   *model.Npc
	owner *model.Player
	loc   model.Point

	wealth      bool
	placed      []*model.GroundItem
	intercepted []model.Item
}

// resolveLoot runs the drop pipeline: bones, invariable drops, the NPC's
// own rare table, the shared rare tables, then one weighted roll.
func (l *Lifecycle) resolveLoot(ctx context.Context, npc *model.Npc, owner *model.Player, loc model.Point) *lootRun {
	r := &lootRun{
		l:      l,
		npc:    npc,
		owner:  owner,
		loc:    loc,
		wealth: owner.HasEquipped(model.ItemRingOfWealth),
	}
	def := npc.Definition()

	if bones := def.Category.Bones().ItemID(); bones != model.ItemNothing {
		r.drop(ctx, model.NewItem(bones, 1), false)
	}

	var table *model.DropTable
	if def.DropTable != "" {
		shared, ok := l.catalog.DropTable(def.DropTable)
		if ok {
			table = shared.Clone()
		} else {
			slog.Warn("drop table not found",
				"npc", def.Name,
				"table", def.DropTable)
		}
	}

	if table != nil {
		for _, item := range table.InvariableItems(l.rng) {
			table.RemoveItemDrop(item.ItemID)
			r.drop(ctx, item, false)
		}
	}

	if l.cfg.CustomRareTables {
		if custom, ok := l.catalog.CustomRareTable(def.ID); ok && custom.RollAccess(def.ID, r.wealth, l.rng) {
			for _, item := range custom.RollItem(r.wealth, l.rng) {
				r.drop(ctx, item, false)
			}
		}
	}

	if table == nil {
		return r
	}

	if l.cfg.SharedRareTables {
		r.rollSharedRare(ctx)
		table.RemoveCustomRareTableDrops()
	}

	if table.TotalWeight() > 0 {
		for _, item := range table.Roll(l.rng) {
			r.drop(ctx, item, true)
		}
	}
	return r
}

// rollSharedRare tries the shared rare tables in order; the first table
// whose access roll succeeds is rolled and the rest are skipped.
func (r *lootRun) rollSharedRare(ctx context.Context) {
	npcID := r.npc.Definition().ID
	for _, rare := range r.l.catalog.RareTables() {
		if !rare.RollAccess(npcID, r.wealth, r.l.rng) {
			continue
		}
		for _, item := range rare.RollItem(r.wealth, r.l.rng) {
			r.drop(ctx, item, false)
		}
		return
	}
}

// drop places one produced item. rolled marks the weighted roll, the only
// source whose coins are replaced by the NPC's gold drop amount.
func (r *lootRun) drop(ctx context.Context, item model.Item, rolled bool) {
	if item.IsNothing() {
		return
	}

	def, ok := r.l.catalog.ItemDef(item.ItemID)
	if !ok {
		slog.Warn("drop skipped, unknown item",
			"npc", r.npc.Name(),
			"itemID", item.ItemID)
		return
	}
	if def.MembersOnly && !r.l.cfg.MemberWorld {
		slog.Debug("members drop skipped",
			"npc", r.npc.Name(),
			"itemID", item.ItemID)
		return
	}

	if rolled && item.ItemID == model.ItemCoins {
		item.Amount = r.goldAmount(item.Amount)
	}

	for _, ic := range r.l.interceptors {
		out, keep := ic.Intercept(r.owner, item, def)
		if !keep {
			r.intercepted = append(r.intercepted, item)
			r.log(ctx, item)
			return
		}
		if out.ItemID != item.ItemID {
			if def, ok = r.l.catalog.ItemDef(out.ItemID); !ok {
				return
			}
		}
		item = out
	}
	if item.IsNothing() {
		return
	}

	r.log(ctx, item)

	// Non-stackable items land one per ground entry unless noted.
	if def.Stackable || item.Noted || item.Amount == 1 {
		r.place(item)
		return
	}
	for range item.Amount {
		r.place(model.Item{ItemID: item.ItemID, Amount: 1})
	}
}

// goldAmount picks the coin amount from the NPC's gold drop list. The ring
// of splendor adds a tenth on top.
func (r *lootRun) goldAmount(rolled int32) int32 {
	amount := rolled
	if amounts := r.l.catalog.GoldDrops(r.npc.Definition().ID); len(amounts) > 0 {
		amount = amounts[r.l.rng.IntN(len(amounts))]
	}
	if r.owner.HasEquipped(model.ItemRingOfSplendor) {
		amount += amount / 10
	}
	return amount
}

func (r *lootRun) place(item model.Item) {
	g := r.l.world.PlaceGroundItem(item, r.loc, r.owner.ObjectID(), r.npc.ObjectID())
	r.placed = append(r.placed, g)
	r.l.events.Publish(model.WorldEvent{
		Kind:     model.EventDrop,
		At:       g.DroppedAt(),
		NpcID:    r.npc.ObjectID(),
		NpcDefID: r.npc.Definition().ID,
		ActorID:  r.owner.ObjectID(),
		ItemID:   item.ItemID,
		Amount:   item.Amount,
		Location: r.loc,
	})
}

func (r *lootRun) log(ctx context.Context, item model.Item) {
	err := r.l.drops.LogDrop(ctx, droplog.DropRecord{
		At:         r.l.sched.Now(),
		PlayerID:   r.owner.ObjectID(),
		PlayerName: r.owner.Name(),
		NpcID:      r.npc.ObjectID(),
		NpcDefID:   r.npc.Definition().ID,
		ItemID:     item.ItemID,
		Amount:     item.Amount,
	})
	if err != nil {
		slog.Error("log drop",
			"npc", r.npc.Name(),
			"itemID", item.ItemID,
			"error", err)
	}
}
