// Package results packages finished-session records and hands them to the
// persistence collaborator. Persistence failures never block the player:
// records are retried in the background a bounded number of times and then
// dropped with a recorded metric.
package results

import (
	"context"
	"errors"
	"time"

	"github.com/geodle/geodle/internal/catalog"
	"github.com/geodle/geodle/internal/scoring"
)

// ErrUnavailable marks a persistence failure.
var ErrUnavailable = errors.New("results: persistence unavailable")

// SessionResult is the immutable record of one finished session.
type SessionResult struct {
	SessionID  string          `json:"session_id"`
	UserID     string          `json:"user_id"`
	Variant    catalog.Variant `json:"variant"`
	EntityID   string          `json:"entity_id"`
	Outcome    scoring.Outcome `json:"outcome"`
	TurnCount  int             `json:"turn_count"`
	Score      int             `json:"score"`
	FinishedAt time.Time       `json:"finished_at"`
}

// Store is the durable persistence collaborator for finished sessions. The
// engine only ever appends records and reads back a user's recent history; it
// never runs aggregate leaderboard queries.
type Store interface {
	SaveResult(ctx context.Context, result SessionResult) error
	RecentResults(ctx context.Context, userID string, variant catalog.Variant, limit int) ([]SessionResult, error)
}
