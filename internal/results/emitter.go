package results

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/geodle/geodle/internal/backoff"
)

const defaultQueueSize = 128

// Emitter hands finished-session records to the store without ever blocking
// the caller. Records are delivered by a background worker with a bounded
// retry policy; a record that exhausts its retries is dropped and counted.
type Emitter struct {
	logger  zerolog.Logger
	store   Store
	retry   backoff.Policy
	clock   quartz.Clock
	queue   chan SessionResult
	rng     *rand.Rand
	dropped atomic.Uint64
}

// NewEmitter builds an emitter around the persistence store.
func NewEmitter(logger zerolog.Logger, store Store, retry backoff.Policy, clock quartz.Clock) *Emitter {
	if retry.Attempts <= 0 {
		retry = backoff.Policy{Attempts: 3, BaseDelay: 500 * time.Millisecond, Jitter: 0.2}
	}
	if clock == nil {
		clock = quartz.NewReal()
	}

	return &Emitter{
		logger: logger.With().Str("component", "result_emitter").Logger(),
		store:  store,
		retry:  retry,
		clock:  clock,
		queue:  make(chan SessionResult, defaultQueueSize),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Emit enqueues a record for background delivery. It never blocks: if the
// queue is full the record is dropped and the drop metric recorded.
func (e *Emitter) Emit(result SessionResult) {
	select {
	case e.queue <- result:
	default:
		e.dropped.Add(1)
		e.logger.Error().Str("session_id", result.SessionID).Msg("emit queue full, result dropped")
	}
}

// Run delivers queued records until the context is canceled. Intended to be
// launched once, alongside the session manager's background loops.
func (e *Emitter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case result := <-e.queue:
			e.deliver(ctx, result)
		}
	}
}

// Dropped returns how many records were discarded after exhausting retries
// or overflowing the queue. Exposed as the observability signal for the
// accepted data-loss edge case.
func (e *Emitter) Dropped() uint64 {
	return e.dropped.Load()
}

func (e *Emitter) deliver(ctx context.Context, result SessionResult) {
	for attempt := 0; attempt < e.retry.Attempts; attempt++ {
		err := e.store.SaveResult(ctx, result)
		if err == nil {
			e.logger.Debug().Str("session_id", result.SessionID).Msg("result persisted")
			return
		}

		if attempt < e.retry.Attempts-1 {
			delay := e.retry.Delay(attempt, e.rng)
			e.logger.Warn().Err(err).Str("session_id", result.SessionID).
				Dur("backoff", delay).Int("attempt", attempt+1).
				Msg("persist failed, retrying")

			timer := e.clock.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				e.dropped.Add(1)
				return
			}
		} else {
			e.dropped.Add(1)
			e.logger.Error().Err(err).Str("session_id", result.SessionID).
				Int("attempts", e.retry.Attempts).
				Msg("result dropped after exhausting retries")
		}
	}
}
