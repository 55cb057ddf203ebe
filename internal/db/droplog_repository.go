package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/rsckernel/internal/droplog"
	"github.com/udisondev/rsckernel/internal/model"
)

const backend = "postgres"

// DropLogRepository persists drop and kill records in PostgreSQL.
// Implements droplog.Sink.
type DropLogRepository struct {
	pool *pgxpool.Pool
}

// NewDropLogRepository creates a new drop log repository
func NewDropLogRepository(pool *pgxpool.Pool) *DropLogRepository {
	return &DropLogRepository{pool: pool}
}

// LogDrop inserts one drop record.
func (r *DropLogRepository) LogDrop(ctx context.Context, rec droplog.DropRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO drop_log (logged_at, player_id, player_name, npc_id, npc_def_id, item_id, amount)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.At, int64(rec.PlayerID), rec.PlayerName, int64(rec.NpcID), rec.NpcDefID, rec.ItemID, rec.Amount,
	)
	return droplog.Wrap(backend, "insert drop", err)
}

// LogKill inserts one kill record.
func (r *DropLogRepository) LogKill(ctx context.Context, rec droplog.KillRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO kill_log (logged_at, player_id, player_name, npc_id, npc_def_id, npc_name, x, y, zone, kill_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.At, int64(rec.PlayerID), rec.PlayerName, int64(rec.NpcID), rec.NpcDefID, rec.NpcName,
		rec.Location.X, rec.Location.Y, rec.Zone, rec.KillCount,
	)
	return droplog.Wrap(backend, "insert kill", err)
}

// DropsByPlayer returns the newest drops of a player, newest first.
func (r *DropLogRepository) DropsByPlayer(ctx context.Context, playerID model.ObjectID, limit int) ([]droplog.DropRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT logged_at, player_id, player_name, npc_id, npc_def_id, item_id, amount
		 FROM drop_log
		 WHERE player_id = $1
		 ORDER BY logged_at DESC, id DESC
		 LIMIT $2`,
		int64(playerID), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying drops of player %s: %w", playerID, err)
	}

	recs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (droplog.DropRecord, error) {
		var (
			rec            droplog.DropRecord
			player, npcObj int64
		)
		if err := row.Scan(&rec.At, &player, &rec.PlayerName, &npcObj, &rec.NpcDefID, &rec.ItemID, &rec.Amount); err != nil {
			return rec, err
		}
		rec.PlayerID = model.ObjectID(player)
		rec.NpcID = model.ObjectID(npcObj)
		return rec, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning drops of player %s: %w", playerID, err)
	}
	return recs, nil
}

// KillCount returns how many kills were logged for a player and NPC definition.
func (r *DropLogRepository) KillCount(ctx context.Context, playerID model.ObjectID, npcDefID int32) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM kill_log WHERE player_id = $1 AND npc_def_id = $2`,
		int64(playerID), npcDefID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting kills of player %s: %w", playerID, err)
	}
	return n, nil
}
