// Package kernel assembles the NPC lifecycle kernel from a loaded
// configuration and catalog, and runs its tick loops.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/rsckernel/internal/ai"
	"github.com/udisondev/rsckernel/internal/command"
	"github.com/udisondev/rsckernel/internal/config"
	"github.com/udisondev/rsckernel/internal/data"
	"github.com/udisondev/rsckernel/internal/db"
	"github.com/udisondev/rsckernel/internal/droplog"
	"github.com/udisondev/rsckernel/internal/game/combat"
	"github.com/udisondev/rsckernel/internal/interaction"
	"github.com/udisondev/rsckernel/internal/model"
	"github.com/udisondev/rsckernel/internal/observer"
	"github.com/udisondev/rsckernel/internal/persistence/indexdb"
	"github.com/udisondev/rsckernel/internal/persistence/journal"
	"github.com/udisondev/rsckernel/internal/region"
	"github.com/udisondev/rsckernel/internal/scheduler"
	"github.com/udisondev/rsckernel/internal/spawn"
	"github.com/udisondev/rsckernel/internal/world"
)

// ErrUnknownBackend is returned for a drop log backend name with no sink.
var ErrUnknownBackend = errors.New("unknown drop log backend")

// Kernel holds every component of a running world.
type Kernel struct {
	Config       config.Kernel
	Catalog      *data.Catalog
	World        *world.World
	Scheduler    *scheduler.Scheduler
	Commands     *command.Registry
	Regions      *region.Classifier
	Respawns     *spawn.RespawnTaskManager
	Lifecycle    *combat.Lifecycle
	AI           *ai.TickManager
	Spawns       *spawn.Manager
	Interactions *interaction.Registry
	Actions      *interaction.Actions
	Events       *observer.Hub
	DropLog      *droplog.Async

	closers []func() error
}

// New wires the kernel. Drop log backends are opened here; Close releases
// them. A nil clock means time.Now.
func New(ctx context.Context, cfg config.Kernel, catalog *data.Catalog, clock func() time.Time) (*Kernel, error) {
	if catalog == nil {
		return nil, errors.New("kernel: catalog is required")
	}
	if clock == nil {
		clock = time.Now
	}

	bands, err := cfg.Bands()
	if err != nil {
		return nil, fmt.Errorf("wilderness bands: %w", err)
	}

	sink, closers, err := openDropLog(ctx, cfg, clock)
	if err != nil {
		return nil, fmt.Errorf("opening drop log: %w", err)
	}

	k := &Kernel{
		Config:   cfg,
		Catalog:  catalog,
		World:    world.New(clock),
		Commands: command.NewRegistry(),
		Regions:  region.NewClassifier(bands),
		Events:   observer.NewHub(cfg.Observer.Buffer),
		DropLog:  droplog.NewAsync(sink, cfg.DropLog.QueueSize),
		closers:  closers,
	}
	k.Scheduler = scheduler.New(cfg.GameTick, clock)
	k.Respawns = spawn.NewRespawnTaskManager(k.Scheduler)

	k.Lifecycle = combat.NewLifecycle(cfg.Combat(), combat.Deps{
		World:     k.World,
		Catalog:   catalog,
		Scheduler: k.Scheduler,
		Commands:  k.Commands,
		DropLog:   k.DropLog,
		Events:    despawnOnRemoval{next: k.Events, despawn: func(id model.ObjectID) { k.Spawns.DespawnNpc(id) }},
		Respawns:  k.Respawns,
		Regions:   k.Regions,
	})

	k.AI = ai.NewTickManager(cfg.AITick, cfg.Workers, clock)
	k.Spawns = spawn.NewManager(spawn.Deps{
		Source:    catalog,
		Spawner:   k.Lifecycle,
		World:     k.World,
		Scheduler: k.Scheduler,
		AI:        k.AI,
		Respawns:  k.Respawns,
	}, cfg.StatRestoreInterval)

	k.Interactions = interaction.NewRegistry(k.World, cfg.InteractionRange)
	k.Actions = interaction.NewActions(k.Interactions, k.World, k.Commands, k.Scheduler)
	return k, nil
}

// Populate places every catalog spawn and scenery object and starts the
// lifecycle's periodic work.
func (k *Kernel) Populate(ctx context.Context) error {
	k.Lifecycle.Start()

	if err := k.Spawns.SpawnAll(ctx); err != nil {
		return err
	}
	if err := k.Spawns.SpawnObjects(); err != nil {
		return fmt.Errorf("spawning objects: %w", err)
	}

	slog.Info("world populated",
		"npcs", k.Spawns.SpawnCount(),
		"objects", k.Spawns.ObjectCount(),
		"controllers", k.AI.Count())
	return nil
}

// Run drives the scheduler, the AI ticks, the drop log writer and, when
// enabled, the observer feed until ctx is cancelled. Cancellation is a
// clean exit.
func (k *Kernel) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting drop log writer", "backends", k.Config.DropLog.Backends)
		return k.DropLog.Run(gctx)
	})

	g.Go(func() error {
		slog.Info("starting scheduler", "tick", k.Scheduler.TickInterval())
		return k.Scheduler.Start(gctx)
	})

	g.Go(func() error {
		slog.Info("starting AI tick manager", "controllers", k.AI.Count())
		return k.AI.Start(gctx)
	})

	if k.Config.Observer.Enabled {
		srv := observer.NewServer(k.Events, k.Config.Observer.AllowRemote)
		g.Go(func() error {
			slog.Info("starting observer feed", "address", k.Config.Observer.Addr)
			return srv.ListenAndServe(gctx, k.Config.Observer.Addr)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Close stops the drop log queue and releases the backends. Call it after
// Run has returned.
func (k *Kernel) Close() error {
	k.DropLog.Close()
	return closeAll(k.closers)
}

// despawnOnRemoval releases the behaviour and background tasks of an NPC the
// lifecycle removed for good, then forwards the event.
type despawnOnRemoval struct {
	next    model.EventPublisher
	despawn func(model.ObjectID)
}

// Publish implements model.EventPublisher.
func (p despawnOnRemoval) Publish(ev model.WorldEvent) {
	if ev.Kind == model.EventNpcRemoved {
		p.despawn(ev.NpcID)
	}
	p.next.Publish(ev)
}

func openDropLog(ctx context.Context, cfg config.Kernel, clock func() time.Time) (droplog.Sink, []func() error, error) {
	var (
		sinks   droplog.Fanout
		closers []func() error
	)
	fail := func(err error) (droplog.Sink, []func() error, error) {
		return nil, nil, errors.Join(err, closeAll(closers))
	}

	for _, backend := range cfg.DropLog.Backends {
		switch backend {
		case config.BackendPostgres:
			dsn := cfg.Database.DSN()
			if err := db.RunMigrations(ctx, dsn); err != nil {
				return fail(err)
			}
			conn, err := db.New(ctx, dsn)
			if err != nil {
				return fail(err)
			}
			sinks = append(sinks, db.NewDropLogRepository(conn.Pool()))
			closers = append(closers, func() error {
				conn.Close()
				return nil
			})

		case config.BackendSQLite:
			idx, err := indexdb.Open(cfg.DropLog.SQLitePath)
			if err != nil {
				return fail(err)
			}
			sinks = append(sinks, idx)
			closers = append(closers, idx.Close)

		case config.BackendJournal:
			j := journal.New(cfg.DropLog.JournalDir, clock)
			sinks = append(sinks, j)
			closers = append(closers, j.Close)

		default:
			return fail(fmt.Errorf("%q: %w", backend, ErrUnknownBackend))
		}
		slog.Info("drop log backend opened", "backend", backend)
	}

	switch len(sinks) {
	case 0:
		return droplog.Nop{}, nil, nil
	case 1:
		return sinks[0], closers, nil
	default:
		return sinks, closers, nil
	}
}

// closeAll closes in reverse opening order.
func closeAll(closers []func() error) error {
	var errs []error
	for _, c := range slices.Backward(closers) {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
