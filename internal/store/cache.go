// Package store persists deterministic equity results in SQLite so repeated
// exhaustive calculations are served without re-enumerating.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/lox/pokerequity/equity"
	"github.com/lox/pokerequity/poker"
)

// Cache is a SQLite-backed result cache. Only complete exhaustive results are
// stored: they are a pure function of the request.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at path and runs migrations.
// Use ":memory:" for a throwaway cache.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serialises writers anyway; one connection also keeps ":memory:" shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	c := &Cache{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS results (
			id TEXT PRIMARY KEY,
			request_key TEXT NOT NULL UNIQUE,
			variant TEXT NOT NULL,
			players INTEGER NOT NULL,
			trials INTEGER NOT NULL,
			payload TEXT NOT NULL,
			hits INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_variant ON results(variant)`,
	}

	for _, migration := range migrations {
		if _, err := c.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Key returns the canonical cache key of a request. Card order within a hand or
// the board does not matter; the order of hands does.
func Key(req equity.Request) string {
	hands := make([]string, len(req.Hands))
	for i, h := range req.Hands {
		hands[i] = poker.FormatCards(poker.SortCards(h))
	}
	return fmt.Sprintf("%s|%s|%s", req.Rules, strings.Join(hands, ","), poker.FormatCards(poker.SortCards(req.Board)))
}

// Cacheable reports whether result may be stored.
func Cacheable(result *equity.Result) bool {
	return result != nil && result.Strategy == equity.StrategyExhaustive && !result.Partial
}

// Get returns the stored result for req, if any. The returned result carries the
// request's own card order.
func (c *Cache) Get(ctx context.Context, req equity.Request) (*equity.Result, bool, error) {
	key := Key(req)

	var payload string
	err := c.db.QueryRowContext(ctx, `SELECT payload FROM results WHERE request_key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached result: %w", err)
	}

	var result equity.Result
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached result: %w", err)
	}
	if len(result.Players) != len(req.Hands) {
		return nil, false, fmt.Errorf("cached result for %s has %d players", key, len(result.Players))
	}

	result.Board = append([]poker.Card{}, req.Board...)
	for i := range result.Players {
		result.Players[i].Hand = append([]poker.Card{}, req.Hands[i]...)
	}

	if _, err := c.db.ExecContext(ctx, `UPDATE results SET hits = hits + 1 WHERE request_key = ?`, key); err != nil {
		return nil, false, fmt.Errorf("failed to record cache hit: %w", err)
	}
	return &result, true, nil
}

// Put stores result under req's key. Results that are not Cacheable are ignored,
// as is a second result for a key already present.
func (c *Cache) Put(ctx context.Context, req equity.Request, result *equity.Result) error {
	if !Cacheable(result) {
		return nil
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	query := `INSERT INTO results (id, request_key, variant, players, trials, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(request_key) DO NOTHING`
	_, err = c.db.ExecContext(ctx, query,
		result.ID.String(), Key(req), req.Rules.String(),
		len(req.Hands), result.Iterations, string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return nil
}

// Stats summarises cache usage.
type Stats struct {
	Entries int64 `json:"entries"`
	Hits    int64 `json:"hits"`
}

// Stats returns the number of stored results and total hits served.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(hits), 0) FROM results`).Scan(&s.Entries, &s.Hits)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read cache stats: %w", err)
	}
	return s, nil
}
