package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/udisondev/rsckernel/internal/ai"
	"github.com/udisondev/rsckernel/internal/config"
	"github.com/udisondev/rsckernel/internal/data"
	"github.com/udisondev/rsckernel/internal/kernel"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) (err error) {
	// config first: it decides the log level
	cfg, err := config.LoadKernel(config.Path())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	ai.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("rsckernel starting", "log_level", cfg.LogLevel, "member_world", cfg.MemberWorld)

	catalog, err := data.LoadDir(cfg.CatalogDir)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	stats := catalog.Stats()
	slog.Info("catalog loaded",
		"items", stats.Items,
		"npcs", stats.Npcs,
		"drop_tables", stats.DropTables,
		"rare_tables", stats.RareTables,
		"spawns", stats.Spawns)

	k, err := kernel.New(ctx, cfg, catalog, nil)
	if err != nil {
		return fmt.Errorf("creating kernel: %w", err)
	}
	defer func() {
		if cerr := k.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("closing kernel: %w", cerr))
		}
	}()

	if err := k.Populate(ctx); err != nil {
		// partial spawns are logged; keep running with what was placed
		slog.Warn("world populated with errors", "error", err)
	}

	if err := k.Run(ctx); err != nil {
		return err
	}

	written, dropped, failed := k.DropLog.Stats()
	slog.Info("rsckernel stopped",
		"drop_log_written", written,
		"drop_log_rejected", dropped,
		"drop_log_failed", failed)
	return nil
}
