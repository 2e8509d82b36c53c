package session

import (
	"time"

	"github.com/geodle/geodle/internal/catalog"
)

// View is the player-facing snapshot of a session. The secret entity is
// revealed only once the session is terminal.
type View struct {
	SessionID      string          `json:"session_id"`
	Variant        catalog.Variant `json:"variant"`
	Status         Status          `json:"status"`
	Turns          []Turn          `json:"turns"`
	TurnsRemaining int             `json:"turns_remaining"`
	MaxTurns       int             `json:"max_turns"`
	CreatedAt      time.Time       `json:"created_at"`
	ExpiresAt      time.Time       `json:"expires_at"`

	// Populated only when Status is terminal.
	EntityID   string `json:"entity_id,omitempty"`
	EntityName string `json:"entity_name,omitempty"`
	Score      int    `json:"score,omitempty"`
}

// view builds a snapshot with copied turn data. Lock held.
func (s *Session) view(locale string) View {
	turns := make([]Turn, len(s.turns))
	copy(turns, s.turns)

	remaining := s.rules.MaxTurns - len(s.turns)
	if remaining < 0 {
		remaining = 0
	}

	v := View{
		SessionID:      s.id,
		Variant:        s.variant,
		Status:         s.status,
		Turns:          turns,
		TurnsRemaining: remaining,
		MaxTurns:       s.rules.MaxTurns,
		CreatedAt:      s.createdAt,
		ExpiresAt:      s.expiresAt,
	}

	if s.status.Terminal() {
		v.EntityID = s.entity.ID
		v.EntityName = s.entity.DisplayName(locale)
		v.Score = s.score
	}
	return v
}
