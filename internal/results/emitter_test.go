package results

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geodle/geodle/internal/backoff"
	"github.com/geodle/geodle/internal/catalog"
	"github.com/geodle/geodle/internal/scoring"
)

// flakyStore fails a set number of saves, then succeeds.
type flakyStore struct {
	mu       sync.Mutex
	failures int
	saved    []SessionResult
}

func (f *flakyStore) SaveResult(ctx context.Context, r SessionResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("disk on fire")
	}
	f.saved = append(f.saved, r)
	return nil
}

func (f *flakyStore) RecentResults(ctx context.Context, userID string, variant catalog.Variant, limit int) ([]SessionResult, error) {
	return nil, nil
}

func (f *flakyStore) savedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func testResult(id string) SessionResult {
	return SessionResult{
		SessionID:  id,
		UserID:     "user-1",
		Variant:    catalog.Countries,
		EntityID:   "country-poland",
		Outcome:    scoring.Won,
		TurnCount:  3,
		Score:      40,
		FinishedAt: time.Now().UTC(),
	}
}

func fastRetry(attempts int) backoff.Policy {
	return backoff.Policy{Attempts: attempts, BaseDelay: time.Millisecond}
}

func TestDeliverFirstTry(t *testing.T) {
	store := &flakyStore{}
	e := NewEmitter(zerolog.Nop(), store, fastRetry(3), nil)

	e.deliver(context.Background(), testResult("s1"))

	assert.Equal(t, 1, store.savedCount())
	assert.Zero(t, e.Dropped())
}

func TestDeliverRetriesThenSucceeds(t *testing.T) {
	store := &flakyStore{failures: 2}
	e := NewEmitter(zerolog.Nop(), store, fastRetry(3), nil)

	e.deliver(context.Background(), testResult("s2"))

	assert.Equal(t, 1, store.savedCount())
	assert.Zero(t, e.Dropped())
}

func TestDeliverDropsAfterBoundedRetries(t *testing.T) {
	store := &flakyStore{failures: 10}
	e := NewEmitter(zerolog.Nop(), store, fastRetry(3), nil)

	e.deliver(context.Background(), testResult("s3"))

	assert.Zero(t, store.savedCount())
	assert.Equal(t, uint64(1), e.Dropped())
}

func TestRunDeliversEmittedResults(t *testing.T) {
	store := &flakyStore{failures: 1}
	e := NewEmitter(zerolog.Nop(), store, fastRetry(3), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = e.Run(ctx)
	}()

	e.Emit(testResult("s4"))
	e.Emit(testResult("s5"))

	require.Eventually(t, func() bool {
		return store.savedCount() == 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.Zero(t, e.Dropped())
}

func TestEmitNeverBlocksWhenQueueFull(t *testing.T) {
	store := &flakyStore{}
	e := NewEmitter(zerolog.Nop(), store, fastRetry(1), nil)

	// No worker running: fill the queue past capacity.
	for i := 0; i < defaultQueueSize+5; i++ {
		e.Emit(testResult("overflow"))
	}

	assert.Equal(t, uint64(5), e.Dropped())
}
