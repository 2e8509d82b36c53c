package oracle

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geodle/geodle/internal/backoff"
	"github.com/geodle/geodle/internal/catalog"
)

// scriptedClient replays canned results in order, one per call.
type scriptedClient struct {
	askResults   []askResult
	guessResults []guessResult
	askCalls     int
	guessCalls   int
}

type askResult struct {
	verdict Verdict
	err     error
}

type guessResult struct {
	verdict GuessVerdict
	err     error
}

func (s *scriptedClient) Ask(ctx context.Context, entityID, text string) (Verdict, error) {
	r := s.askResults[s.askCalls]
	s.askCalls++
	return r.verdict, r.err
}

func (s *scriptedClient) CheckGuess(ctx context.Context, entityID, text string) (GuessVerdict, error) {
	r := s.guessResults[s.guessCalls]
	s.guessCalls++
	return r.verdict, r.err
}

func testGateway(t *testing.T, client Client) *Gateway {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)

	cfg := GatewayConfig{
		Timeout: time.Second,
		Retry:   backoff.Policy{Attempts: 2, BaseDelay: time.Millisecond},
	}
	return NewGateway(zerolog.Nop(), client, cat, cfg, nil, rand.New(rand.NewSource(1)))
}

func TestAskSuccess(t *testing.T) {
	client := &scriptedClient{askResults: []askResult{{verdict: Yes}}}
	gw := testGateway(t, client)

	v, err := gw.Ask(context.Background(), "country-poland", "Is it in Europe?")
	require.NoError(t, err)
	assert.Equal(t, Yes, v)
	assert.Equal(t, 1, client.askCalls)
}

func TestAskTimeoutIsNotRetried(t *testing.T) {
	client := &scriptedClient{askResults: []askResult{{err: context.DeadlineExceeded}}}
	gw := testGateway(t, client)

	_, err := gw.Ask(context.Background(), "country-poland", "Is it big?")
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 1, client.askCalls, "timeouts must not be retried")
}

func TestAskRetriesTransportFailureOnce(t *testing.T) {
	client := &scriptedClient{askResults: []askResult{
		{err: errors.New("connection refused")},
		{verdict: No},
	}}
	gw := testGateway(t, client)

	v, err := gw.Ask(context.Background(), "country-poland", "Is it landlocked?")
	require.NoError(t, err)
	assert.Equal(t, No, v)
	assert.Equal(t, 2, client.askCalls)
}

func TestAskUnavailableAfterRetries(t *testing.T) {
	client := &scriptedClient{askResults: []askResult{
		{err: errors.New("connection refused")},
		{err: errors.New("connection refused")},
	}}
	gw := testGateway(t, client)

	_, err := gw.Ask(context.Background(), "country-poland", "Is it an island?")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 2, client.askCalls)
}

func TestAskRejectsInvalidVerdict(t *testing.T) {
	client := &scriptedClient{askResults: []askResult{
		{verdict: Verdict("maybe")},
		{verdict: Verdict("maybe")},
	}}
	gw := testGateway(t, client)

	_, err := gw.Ask(context.Background(), "country-poland", "Is it warm?")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestVerifyGuessLocalAliasMatch(t *testing.T) {
	// No scripted guess results: a local match must never reach the oracle.
	client := &scriptedClient{}
	gw := testGateway(t, client)

	tests := []struct {
		entityID string
		guess    string
	}{
		{"country-poland", "poland"},
		{"country-poland", "RZECZPOSPOLITA POLSKA"},
		{"country-united-kingdom", "wielka brytania"},
		{"woj-slaskie", "slaskie"},
		{"woj-lodzkie", "lodzkie"},
		{"us-new-york", "nowy jork"},
	}

	for _, tt := range tests {
		v, err := gw.VerifyGuess(context.Background(), tt.entityID, tt.guess)
		require.NoError(t, err, "guess %q", tt.guess)
		assert.Equal(t, Correct, v, "guess %q for %s", tt.guess, tt.entityID)
	}
	assert.Zero(t, client.guessCalls)
}

func TestVerifyGuessForwardsToOracle(t *testing.T) {
	client := &scriptedClient{guessResults: []guessResult{{verdict: Incorrect}}}
	gw := testGateway(t, client)

	v, err := gw.VerifyGuess(context.Background(), "country-poland", "the country with Warsaw's neighbor")
	require.NoError(t, err)
	assert.Equal(t, Incorrect, v)
	assert.Equal(t, 1, client.guessCalls)
}

func TestVerifyGuessUnknownEntity(t *testing.T) {
	gw := testGateway(t, &scriptedClient{})

	_, err := gw.VerifyGuess(context.Background(), "country-atlantis", "atlantis")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestDoHonorsCallerCancellation(t *testing.T) {
	client := &scriptedClient{askResults: []askResult{{err: errors.New("boom")}}}
	gw := testGateway(t, client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gw.Ask(ctx, "country-poland", "Is it flat?")
	assert.ErrorIs(t, err, context.Canceled)
}
