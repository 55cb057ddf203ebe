// Package indexdb keeps a local SQLite index of drops and kills for
// offline queries (rare drop rates, kill counts) without a database server.
package indexdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/udisondev/rsckernel/internal/droplog"
	"github.com/udisondev/rsckernel/internal/model"
)

const backend = "sqlite"

// ErrEmptyPath is returned by Open without a database path.
var ErrEmptyPath = errors.New("empty db path")

// SQLiteIndex implements droplog.Sink on a single-connection SQLite file.
type SQLiteIndex struct {
	db *sql.DB
}

// Open opens (or creates) the index at path and applies the schema.
func Open(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating index dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteIndex{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("applying %q: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS drops (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			at TEXT NOT NULL,
			player_id INTEGER NOT NULL,
			player_name TEXT NOT NULL,
			npc_id INTEGER NOT NULL,
			npc_def_id INTEGER NOT NULL,
			item_id INTEGER NOT NULL,
			amount INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_drops_npc_item ON drops(npc_def_id, item_id);`,
		`CREATE TABLE IF NOT EXISTS kills (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			at TEXT NOT NULL,
			player_id INTEGER NOT NULL,
			player_name TEXT NOT NULL,
			npc_id INTEGER NOT NULL,
			npc_def_id INTEGER NOT NULL,
			npc_name TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			zone TEXT NOT NULL,
			kill_count INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_kills_npc ON kills(npc_def_id);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

// LogDrop implements droplog.Sink.
func (s *SQLiteIndex) LogDrop(ctx context.Context, rec droplog.DropRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO drops(at,player_id,player_name,npc_id,npc_def_id,item_id,amount) VALUES(?,?,?,?,?,?,?)`,
		rec.At.UTC().Format(timeLayout), int64(rec.PlayerID), rec.PlayerName, int64(rec.NpcID), rec.NpcDefID, rec.ItemID, rec.Amount,
	)
	return droplog.Wrap(backend, "insert drop", err)
}

// LogKill implements droplog.Sink.
func (s *SQLiteIndex) LogKill(ctx context.Context, rec droplog.KillRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kills(at,player_id,player_name,npc_id,npc_def_id,npc_name,x,y,zone,kill_count) VALUES(?,?,?,?,?,?,?,?,?,?)`,
		rec.At.UTC().Format(timeLayout), int64(rec.PlayerID), rec.PlayerName, int64(rec.NpcID), rec.NpcDefID, rec.NpcName,
		rec.Location.X, rec.Location.Y, rec.Zone, rec.KillCount,
	)
	return droplog.Wrap(backend, "insert kill", err)
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// ItemTotal is how often and how much of an item one NPC type dropped.
type ItemTotal struct {
	ItemID int32
	Drops  int64
	Amount int64
}

// DropTotals summarises drops of one NPC definition per item, most frequent
// first.
func (s *SQLiteIndex) DropTotals(ctx context.Context, npcDefID int32) ([]ItemTotal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, COUNT(*), SUM(amount) FROM drops WHERE npc_def_id = ?
		 GROUP BY item_id ORDER BY COUNT(*) DESC, item_id`,
		npcDefID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying drop totals of npc %d: %w", npcDefID, err)
	}
	defer rows.Close()

	var out []ItemTotal
	for rows.Next() {
		var t ItemTotal
		if err := rows.Scan(&t.ItemID, &t.Drops, &t.Amount); err != nil {
			return nil, fmt.Errorf("scanning drop total: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating drop totals: %w", err)
	}
	return out, nil
}

// KillCount returns the number of logged kills of a player, all NPCs.
func (s *SQLiteIndex) KillCount(ctx context.Context, playerID model.ObjectID) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kills WHERE player_id = ?`, int64(playerID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting kills of player %s: %w", playerID, err)
	}
	return n, nil
}
