// Package oracle wraps the external knowledge oracle behind a gateway that
// enforces timeouts, bounded retries, and local guess matching. The gateway
// is stateless and shared across all sessions.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/geodle/geodle/internal/backoff"
	"github.com/geodle/geodle/internal/catalog"
)

var (
	// ErrTimeout marks an oracle call that exceeded the hard deadline. The
	// turn is not consumed; the caller may retry the same turn.
	ErrTimeout = errors.New("oracle: timeout")

	// ErrUnavailable marks an oracle transport failure that persisted
	// through the retry policy.
	ErrUnavailable = errors.New("oracle: unavailable")
)

const defaultTimeout = 10 * time.Second

// GatewayConfig tunes the gateway's deadline and retry behavior.
type GatewayConfig struct {
	Timeout time.Duration
	Retry   backoff.Policy
}

// Gateway mediates all oracle traffic for the engine.
type Gateway struct {
	logger  zerolog.Logger
	client  Client
	catalog *catalog.Catalog
	timeout time.Duration
	retry   backoff.Policy
	clock   quartz.Clock

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewGateway wires a gateway around the collaborator client. A nil clock
// falls back to the real clock; a nil rng gets a time-seeded one.
func NewGateway(logger zerolog.Logger, client Client, cat *catalog.Catalog, cfg GatewayConfig, clock quartz.Clock, rng *rand.Rand) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Retry.Attempts <= 0 {
		cfg.Retry = backoff.Default()
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Gateway{
		logger:  logger.With().Str("component", "oracle_gateway").Logger(),
		client:  client,
		catalog: cat,
		timeout: cfg.Timeout,
		retry:   cfg.Retry,
		clock:   clock,
		rng:     rng,
	}
}

// Ask classifies a question about the entity. Timeouts surface ErrTimeout
// without retrying; other transport failures are retried per the policy and
// then surface ErrUnavailable.
func (g *Gateway) Ask(ctx context.Context, entityID, question string) (Verdict, error) {
	var verdict Verdict
	err := g.do(ctx, func(cctx context.Context) error {
		v, err := g.client.Ask(cctx, entityID, question)
		if err != nil {
			return err
		}
		if !v.Valid() {
			return fmt.Errorf("invalid verdict %q", v)
		}
		verdict = v
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ask %s: %w", entityID, err)
	}
	return verdict, nil
}

// VerifyGuess resolves a guess against the true entity. Canonical and alias
// names are matched locally (case/diacritic/spacing-insensitive); anything
// else is forwarded to the oracle for a fuzzy determination.
func (g *Gateway) VerifyGuess(ctx context.Context, entityID, guess string) (GuessVerdict, error) {
	ent, err := g.catalog.Get(entityID)
	if err != nil {
		return "", err
	}

	if matchesAny(guess, ent.AllNames()) {
		g.logger.Debug().Str("entity", entityID).Msg("guess matched alias locally")
		return Correct, nil
	}

	var verdict GuessVerdict
	err = g.do(ctx, func(cctx context.Context) error {
		v, err := g.client.CheckGuess(cctx, entityID, guess)
		if err != nil {
			return err
		}
		verdict = v
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("verify guess %s: %w", entityID, err)
	}
	return verdict, nil
}

// do runs one oracle call under the hard timeout, applying the retry policy
// to non-timeout failures.
func (g *Gateway) do(ctx context.Context, call func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < g.retry.Attempts; attempt++ {
		cctx, cancel := context.WithTimeout(ctx, g.timeout)
		err := call(cctx)
		cancel()

		if err == nil {
			return nil
		}
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			// Hard deadline hit; timeouts are not retried.
			g.logger.Warn().Dur("timeout", g.timeout).Msg("oracle call timed out")
			return ErrTimeout
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		lastErr = err
		if attempt < g.retry.Attempts-1 {
			delay := g.retry.Delay(attempt, g.lockedRNG())
			g.logger.Warn().Err(err).Dur("backoff", delay).Int("attempt", attempt+1).
				Msg("oracle call failed, retrying")
			timer := g.clock.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}

	g.logger.Error().Err(lastErr).Int("attempts", g.retry.Attempts).Msg("oracle unavailable")
	return fmt.Errorf("%w: %s", ErrUnavailable, lastErr)
}

// lockedRNG returns a rand source safe for this call. The gateway is shared,
// so jitter draws are serialized.
func (g *Gateway) lockedRNG() *rand.Rand {
	g.rngMu.Lock()
	defer g.rngMu.Unlock()
	// Draw a child seed rather than sharing the rand across goroutines.
	return rand.New(rand.NewSource(g.rng.Int63()))
}
