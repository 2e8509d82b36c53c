package results

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/geodle/geodle/internal/catalog"
	"github.com/geodle/geodle/internal/scoring"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (and if needed creates) the results database.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// WAL keeps concurrent emitter writes and CLI reads from tripping over
	// each other.
	dsn := dbPath + "?_journal=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS session_results (
		session_id  TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		variant     TEXT NOT NULL,
		entity_id   TEXT NOT NULL,
		outcome     TEXT NOT NULL,
		turn_count  INTEGER NOT NULL,
		score       INTEGER NOT NULL,
		finished_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_results_user_variant
		ON session_results(user_id, variant, finished_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SaveResult implements Store. Saving the same session twice is a no-op so
// emitter retries stay idempotent.
func (s *SQLiteStore) SaveResult(ctx context.Context, r SessionResult) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO session_results
			(session_id, user_id, variant, entity_id, outcome, turn_count, score, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.UserID, string(r.Variant), r.EntityID, string(r.Outcome),
		r.TurnCount, r.Score, r.FinishedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	return nil
}

// RecentResults implements Store, newest first.
func (s *SQLiteStore) RecentResults(ctx context.Context, userID string, variant catalog.Variant, limit int) ([]SessionResult, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, user_id, variant, entity_id, outcome, turn_count, score, finished_at
		FROM session_results
		WHERE user_id = ? AND variant = ?
		ORDER BY finished_at DESC
		LIMIT ?`,
		userID, string(variant), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	defer rows.Close()

	var out []SessionResult
	for rows.Next() {
		var r SessionResult
		var variantStr, outcomeStr string
		var finishedMs int64
		if err := rows.Scan(&r.SessionID, &r.UserID, &variantStr, &r.EntityID,
			&outcomeStr, &r.TurnCount, &r.Score, &finishedMs); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Variant = catalog.Variant(variantStr)
		r.Outcome = scoring.Outcome(outcomeStr)
		r.FinishedAt = time.UnixMilli(finishedMs).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
