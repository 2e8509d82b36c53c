package oracle

import "context"

// Mode distinguishes the two request kinds on the collaborator boundary.
type Mode string

const (
	ModeQuestion Mode = "question"
	ModeGuess    Mode = "guess"
)

// Client is the external knowledge oracle: it answers questions about one
// entity from that entity's reference document, and resolves free-text
// guesses the alias matcher could not settle. Implementations own the
// transport; the engine only needs this contract.
type Client interface {
	// Ask classifies a natural-language question about the entity.
	Ask(ctx context.Context, entityID, text string) (Verdict, error)

	// CheckGuess resolves a free-text guess. It never returns Unknown; a
	// guess is always Correct or Incorrect.
	CheckGuess(ctx context.Context, entityID, text string) (GuessVerdict, error)
}
