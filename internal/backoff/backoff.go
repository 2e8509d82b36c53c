// Package backoff defines the explicit bounded-attempt retry policy threaded
// into the oracle gateway and the result emitter.
package backoff

import (
	"math/rand"
	"time"
)

// Policy bounds retries: total attempts, base delay before the second
// attempt, and the jitter fraction applied to each delay.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	Jitter    float64
}

// Default retries a failed call once, 500ms later.
func Default() Policy {
	return Policy{
		Attempts:  2,
		BaseDelay: 500 * time.Millisecond,
		Jitter:    0.2,
	}
}

// Delay returns the backoff before attempt n (0-based: Delay(0) precedes the
// first retry). The delay doubles per attempt with +/- Jitter applied.
func (p Policy) Delay(attempt int, rng *rand.Rand) time.Duration {
	d := p.BaseDelay << uint(attempt)
	if p.Jitter > 0 && rng != nil {
		spread := float64(d) * p.Jitter
		d += time.Duration((rng.Float64()*2 - 1) * spread)
	}
	if d < 0 {
		d = 0
	}
	return d
}
