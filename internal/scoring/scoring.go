// Package scoring maps round outcomes to point values. Everything here is
// pure: identical inputs always produce identical breakdowns.
package scoring

import "math"

// Outcome is the terminal result of a session.
type Outcome string

const (
	Won       Outcome = "won"
	Lost      Outcome = "lost"
	Abandoned Outcome = "abandoned"
)

func (o Outcome) String() string { return string(o) }

// Rules are the variant-specific scoring constants.
type Rules struct {
	BasePoints    int
	PenaltyFactor float64
	MinimumFloor  int
}

// DefaultRules returns the design-default scoring constants.
func DefaultRules() Rules {
	return Rules{
		BasePoints:    100,
		PenaltyFactor: 0.6,
		MinimumFloor:  10,
	}
}

// Breakdown is the derived score for one finished session.
type Breakdown struct {
	BasePoints      int `json:"base_points"`
	QuestionPenalty int `json:"question_penalty"`
	Bonus           int `json:"bonus"`
	Total           int `json:"total"`
}

// Compute derives the score breakdown for a finished round. Lost and
// abandoned rounds score zero; abandonment earns no partial credit so that
// farming oracle answers without committing to a guess is never rewarded.
// For wins the penalty grows with turns used, and MinimumFloor guarantees a
// correct guess always earns something.
func Compute(turnCount, maxTurns int, outcome Outcome, rules Rules) Breakdown {
	if outcome != Won {
		return Breakdown{}
	}

	penalty := 0
	if maxTurns > 0 {
		ratio := float64(turnCount) / float64(maxTurns)
		penalty = int(math.Floor(ratio * float64(rules.BasePoints) * rules.PenaltyFactor))
	}

	total := rules.BasePoints - penalty
	if total < rules.MinimumFloor {
		total = rules.MinimumFloor
	}

	return Breakdown{
		BasePoints:      rules.BasePoints,
		QuestionPenalty: penalty,
		Total:           total,
	}
}
