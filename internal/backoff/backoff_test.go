package backoff

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDelayDoublesWithoutJitter(t *testing.T) {
	p := Policy{Attempts: 3, BaseDelay: 100 * time.Millisecond}

	assert.Equal(t, 100*time.Millisecond, p.Delay(0, nil))
	assert.Equal(t, 200*time.Millisecond, p.Delay(1, nil))
	assert.Equal(t, 400*time.Millisecond, p.Delay(2, nil))
}

func TestDelayJitterStaysWithinSpread(t *testing.T) {
	p := Policy{Attempts: 3, BaseDelay: 100 * time.Millisecond, Jitter: 0.2}
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 50; i++ {
		d := p.Delay(0, rng)
		assert.GreaterOrEqual(t, d, 80*time.Millisecond)
		assert.LessOrEqual(t, d, 120*time.Millisecond)
	}
}

func TestDelayNeverNegative(t *testing.T) {
	p := Policy{Attempts: 1, BaseDelay: time.Nanosecond, Jitter: 1.0}
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 100; i++ {
		assert.GreaterOrEqual(t, p.Delay(0, rng), time.Duration(0))
	}
}

func TestDefault(t *testing.T) {
	p := Default()
	assert.Equal(t, 2, p.Attempts)
	assert.Equal(t, 500*time.Millisecond, p.BaseDelay)
}
