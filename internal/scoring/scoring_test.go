package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeWinScenarios(t *testing.T) {
	rules := Rules{BasePoints: 100, PenaltyFactor: 0.6, MinimumFloor: 10}

	tests := []struct {
		name        string
		turnCount   int
		maxTurns    int
		wantPenalty int
		wantTotal   int
	}{
		{"win on last turn of three", 3, 3, 60, 40},
		{"win on first turn of three", 1, 3, 20, 80},
		{"win on first turn of twenty", 1, 20, 3, 97},
		{"win on last turn of twenty", 20, 20, 60, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Compute(tt.turnCount, tt.maxTurns, Won, rules)
			assert.Equal(t, 100, b.BasePoints)
			assert.Equal(t, tt.wantPenalty, b.QuestionPenalty)
			assert.Equal(t, tt.wantTotal, b.Total)
		})
	}
}

func TestComputeLostAndAbandonedScoreZero(t *testing.T) {
	rules := DefaultRules()

	for _, outcome := range []Outcome{Lost, Abandoned} {
		b := Compute(5, 20, outcome, rules)
		assert.Zero(t, b.Total, "outcome %s must score zero", outcome)
		assert.Zero(t, b.QuestionPenalty)
		assert.Zero(t, b.BasePoints)
	}
}

func TestComputeMinimumFloor(t *testing.T) {
	// A penalty factor above 1.0 would otherwise drive the total negative.
	rules := Rules{BasePoints: 100, PenaltyFactor: 1.5, MinimumFloor: 10}
	b := Compute(20, 20, Won, rules)
	assert.Equal(t, 10, b.Total)
}

func TestScoringMonotonicity(t *testing.T) {
	rules := DefaultRules()
	maxTurns := 20

	prev := Compute(1, maxTurns, Won, rules).Total
	for turns := 2; turns <= maxTurns; turns++ {
		cur := Compute(turns, maxTurns, Won, rules).Total
		assert.LessOrEqual(t, cur, prev, "score must not increase with more turns (t=%d)", turns)
		prev = cur
	}
}

func TestComputeDeterministic(t *testing.T) {
	rules := DefaultRules()
	a := Compute(7, 20, Won, rules)
	b := Compute(7, 20, Won, rules)
	assert.Equal(t, a, b)
}
