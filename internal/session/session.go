package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/geodle/geodle/internal/catalog"
	"github.com/geodle/geodle/internal/oracle"
	"github.com/geodle/geodle/internal/results"
	"github.com/geodle/geodle/internal/scoring"
)

// Status is the session lifecycle state. Active is the only non-terminal
// state; no transition ever leaves a terminal state.
type Status string

const (
	StatusActive    Status = "active"
	StatusWon       Status = "won"
	StatusLost      Status = "lost"
	StatusAbandoned Status = "abandoned"
)

func (s Status) String() string { return string(s) }

// Terminal reports whether the status is final.
func (s Status) Terminal() bool { return s != StatusActive }

// Outcome maps a terminal status to its scoring outcome.
func (s Status) Outcome() scoring.Outcome {
	switch s {
	case StatusWon:
		return scoring.Won
	case StatusLost:
		return scoring.Lost
	default:
		return scoring.Abandoned
	}
}

// TurnKind distinguishes the two exchange types within a round.
type TurnKind string

const (
	TurnQuestion TurnKind = "question"
	TurnGuess    TurnKind = "guess"
)

// Turn is one permanently logged question-or-guess exchange.
type Turn struct {
	Index        int                 `json:"index"`
	Kind         TurnKind            `json:"kind"`
	Prompt       string              `json:"prompt"`
	Verdict      oracle.Verdict      `json:"verdict,omitempty"`
	GuessVerdict oracle.GuessVerdict `json:"guess_verdict,omitempty"`
	At           time.Time           `json:"at"`
}

// Rules are the per-variant session parameters.
type Rules struct {
	MaxTurns    int
	Scoring     scoring.Rules
	IdleTimeout time.Duration
	Cooldown    int
}

// DefaultRules returns the design defaults: 20 turns, 30-minute idle
// timeout, 5-round entity cool-down.
func DefaultRules() Rules {
	return Rules{
		MaxTurns:    20,
		Scoring:     scoring.DefaultRules(),
		IdleTimeout: 30 * time.Minute,
		Cooldown:    5,
	}
}

// Session is one round's state machine. All access goes through the Manager,
// which holds mu across every mutation, so methods below assume the lock.
type Session struct {
	mu sync.Mutex

	id        string
	userID    string
	variant   catalog.Variant
	entity    catalog.Entity // hidden from the player while Active
	status    Status
	turns     []Turn
	createdAt time.Time
	expiresAt time.Time
	rules     Rules
	score     int // set by finish; zero unless Won
}

func newSession(userID string, entity catalog.Entity, rules Rules, now time.Time) *Session {
	return &Session{
		id:        newID(),
		userID:    userID,
		variant:   entity.Variant,
		entity:    entity,
		status:    StatusActive,
		createdAt: now,
		expiresAt: now.Add(rules.IdleTimeout),
		rules:     rules,
	}
}

// expired reports whether the idle deadline passed. Lock held.
func (s *Session) expired(now time.Time) bool {
	return s.status == StatusActive && !now.Before(s.expiresAt)
}

// touch extends the idle deadline after turn activity. Lock held.
func (s *Session) touch(now time.Time) {
	s.expiresAt = now.Add(s.rules.IdleTimeout)
}

// submitQuestion asks the oracle and appends a Question turn. An oracle
// failure appends nothing and leaves the state unchanged, so the player can
// retry the same turn index for free. Lock held.
func (s *Session) submitQuestion(ctx context.Context, gw Gateway, now time.Time, text string) (Turn, error) {
	if s.status.Terminal() {
		return Turn{}, ErrTerminal
	}
	if len(s.turns) >= s.rules.MaxTurns {
		return Turn{}, ErrTurnBudget
	}

	verdict, err := gw.Ask(ctx, s.entity.ID, text)
	if err != nil {
		return Turn{}, fmt.Errorf("question on session %s: %w", s.id, err)
	}

	turn := Turn{
		Index:   len(s.turns),
		Kind:    TurnQuestion,
		Prompt:  text,
		Verdict: verdict,
		At:      now,
	}
	s.turns = append(s.turns, turn)
	s.touch(now)
	return turn, nil
}

// submitGuess verifies a guess and always appends a Guess turn: guesses
// consume their slot even when the oracle is down, so guess-spamming is
// never free. A guess at a full budget is accepted as the round's resolution
// and always terminates. Returns the session result when the guess ended the
// round. Lock held.
func (s *Session) submitGuess(ctx context.Context, gw Gateway, now time.Time, text string) (Turn, *results.SessionResult, error) {
	if s.status.Terminal() {
		return Turn{}, nil, ErrTerminal
	}

	verdict, verr := gw.VerifyGuess(ctx, s.entity.ID, text)
	if verr != nil {
		// An unresolved guess still burns its slot; record it as incorrect
		// and surface the transient error alongside.
		verdict = oracle.Incorrect
	}

	turn := Turn{
		Index:        len(s.turns),
		Kind:         TurnGuess,
		Prompt:       text,
		GuessVerdict: verdict,
		At:           now,
	}
	s.turns = append(s.turns, turn)
	s.touch(now)

	var result *results.SessionResult
	switch {
	case verdict == oracle.Correct:
		result = s.finish(StatusWon, now)
	case len(s.turns) >= s.rules.MaxTurns:
		result = s.finish(StatusLost, now)
	}

	if verr != nil {
		return turn, result, fmt.Errorf("guess on session %s: %w", s.id, verr)
	}
	return turn, result, nil
}

// abandon transitions to Abandoned. Terminal sessions are left untouched and
// report transitioned=false, making duplicate abandon calls no-ops. Lock
// held.
func (s *Session) abandon(now time.Time) (result *results.SessionResult, transitioned bool) {
	if s.status.Terminal() {
		return nil, false
	}
	return s.finish(StatusAbandoned, now), true
}

// finish performs the terminal transition and builds the session result
// exactly once. Lock held; status must be Active.
func (s *Session) finish(status Status, now time.Time) *results.SessionResult {
	s.status = status

	breakdown := scoring.Compute(len(s.turns), s.rules.MaxTurns, status.Outcome(), s.rules.Scoring)
	s.score = breakdown.Total
	return &results.SessionResult{
		SessionID:  s.id,
		UserID:     s.userID,
		Variant:    s.variant,
		EntityID:   s.entity.ID,
		Outcome:    status.Outcome(),
		TurnCount:  len(s.turns),
		Score:      breakdown.Total,
		FinishedAt: now,
	}
}
