package interaction

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/udisondev/rsckernel/internal/command"
	"github.com/udisondev/rsckernel/internal/model"
	"github.com/udisondev/rsckernel/internal/scheduler"
)

// Dispatcher resolves command names to script behavior.
type Dispatcher interface {
	Dispatch(ctx context.Context, actor model.ObjectID, name string, args command.Args) (bool, error)
}

// Scheduler queues work for the next tick.
type Scheduler interface {
	Immediate(name string, action scheduler.Action) *scheduler.Task
}

// Entities looks up interaction targets.
type Entities interface {
	Object(id model.ObjectID) (*model.GameObject, bool)
	Npc(id model.ObjectID) (*model.Npc, bool)
}

// Actions builds the stock deferred interactions on top of a Registry.
type Actions struct {
	reg      *Registry
	entities Entities
	commands Dispatcher
	sched    Scheduler
}

// NewActions wires the stock interactions.
func NewActions(reg *Registry, entities Entities, commands Dispatcher, sched Scheduler) *Actions {
	return &Actions{reg: reg, entities: entities, commands: commands, sched: sched}
}

// WalkToObject parks an object option click. When the actor arrives the
// object's command for the captured click is dispatched as "oploc".
func (a *Actions) WalkToObject(actorID, objectID model.ObjectID) bool {
	return a.reg.Register(actorID, objectID, func(ctx context.Context, f Fire) error {
		obj, ok := a.entities.Object(f.Target)
		if !ok || f.Actor.IsBusy() {
			return nil
		}
		def := obj.Definition()
		if def == nil {
			return nil
		}

		cmd := def.Command(f.Click)
		handled, err := a.commands.Dispatch(ctx, f.Actor.ObjectID(), command.OpLoc, command.Args{
			Target:  f.Target,
			Command: cmd,
			Click:   f.Click,
		})
		if err != nil {
			return fmt.Errorf("object %s command %q: %w", f.Target, cmd, err)
		}
		if !handled {
			slog.Debug("nothing interesting happens", "actor", f.Actor.ObjectID(), "object", def.Name, "command", cmd)
		}
		return nil
	})
}

// TalkToNpc parks a talk click. On arrival a "talknpc" dispatch is queued
// for the next tick.
func (a *Actions) TalkToNpc(actorID, npcID model.ObjectID) bool {
	return a.reg.Register(actorID, npcID, func(_ context.Context, f Fire) error {
		a.sched.Immediate(command.TalkNpc, func(ctx context.Context) error {
			npc, ok := a.entities.Npc(npcID)
			if !ok || !npc.State().Alive() {
				return nil
			}
			if _, err := a.commands.Dispatch(ctx, actorID, command.TalkNpc, command.Args{Target: npcID, Click: f.Click}); err != nil {
				return fmt.Errorf("talk to npc %s: %w", npcID, err)
			}
			return nil
		})
		return nil
	})
}
