package oracle

import "fmt"

// Verdict is the classified answer to a question about the secret entity.
// The set is closed: consumers switch over it exhaustively.
type Verdict string

const (
	Yes           Verdict = "yes"
	No            Verdict = "no"
	PartiallyTrue Verdict = "partially_true"
	Unknown       Verdict = "unknown"
	Irrelevant    Verdict = "irrelevant"
)

func (v Verdict) String() string { return string(v) }

// Valid reports whether v is a member of the closed verdict set.
func (v Verdict) Valid() bool {
	switch v {
	case Yes, No, PartiallyTrue, Unknown, Irrelevant:
		return true
	}
	return false
}

// ParseVerdict converts a wire-format verdict string.
func ParseVerdict(s string) (Verdict, error) {
	v := Verdict(s)
	if !v.Valid() {
		return "", fmt.Errorf("oracle: unknown verdict %q", s)
	}
	return v, nil
}

// GuessVerdict is the resolution of a guess. Guesses are always resolved one
// way or the other; there is no unknown.
type GuessVerdict string

const (
	Correct   GuessVerdict = "correct"
	Incorrect GuessVerdict = "incorrect"
)

func (g GuessVerdict) String() string { return string(g) }

// ParseGuessVerdict converts a wire-format guess verdict string.
func ParseGuessVerdict(s string) (GuessVerdict, error) {
	switch GuessVerdict(s) {
	case Correct:
		return Correct, nil
	case Incorrect:
		return Incorrect, nil
	}
	return "", fmt.Errorf("oracle: unknown guess verdict %q", s)
}
