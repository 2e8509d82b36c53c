package session

import "errors"

// Error kinds surfaced by the engine. Callers branch with errors.Is; none of
// these leave a session in an ambiguous state.
var (
	// ErrConflict: an Active session already exists for the (user, variant)
	// pair. Finish or abandon it first.
	ErrConflict = errors.New("session: active session already exists")

	// ErrNotFound: no active session for the (user, variant) pair, or an
	// unknown game variant.
	ErrNotFound = errors.New("session: not found")

	// ErrTurnBudget: the turn budget is exhausted; the question was rejected
	// without appending a turn.
	ErrTurnBudget = errors.New("session: turn budget exceeded")

	// ErrTerminal: the session already finished. Mostly internal; player
	// actions against retired sessions surface ErrNotFound instead.
	ErrTerminal = errors.New("session: already finished")
)
