// Package queststore persists one quest row per player in sqlite. Calls are
// synchronous: the world loop issues them directly, and at quest-event rates
// (accept, spawn, kill, turn-in) a local sqlite write is far below a tick.
package queststore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Jolva/SuperQuester-sub001/internal/sim/hunt"
)

type SQLiteStore struct {
	db *sql.DB
}

func Open(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
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
	return &SQLiteStore{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	// WAL keeps the frequent small writes cheap; NORMAL is an acceptable
	// durability tradeoff because the live world state stays authoritative
	// within a session.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS quests (
		player_id TEXT PRIMARY KEY,
		quest_id TEXT NOT NULL,
		json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`)
	return err
}

// Load returns the player's quest row, or (nil, nil) when there is none.
func (s *SQLiteStore) Load(playerID string) (*hunt.QuestInstance, error) {
	var raw string
	err := s.db.QueryRow(`SELECT json FROM quests WHERE player_id = ?`, playerID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var q hunt.QuestInstance
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return nil, fmt.Errorf("quest row for %s: %w", playerID, err)
	}
	return &q, nil
}

func (s *SQLiteStore) Save(playerID string, q *hunt.QuestInstance) error {
	if q == nil {
		return s.Delete(playerID)
	}
	raw, err := json.Marshal(q)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO quests (player_id, quest_id, json, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(player_id) DO UPDATE SET
			quest_id = excluded.quest_id,
			json = excluded.json,
			updated_at = excluded.updated_at`,
		playerID, q.ID, string(raw), time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

func (s *SQLiteStore) Delete(playerID string) error {
	_, err := s.db.Exec(`DELETE FROM quests WHERE player_id = ?`, playerID)
	return err
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
