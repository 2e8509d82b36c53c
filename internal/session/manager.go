package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/geodle/geodle/internal/catalog"
	"github.com/geodle/geodle/internal/oracle"
	"github.com/geodle/geodle/internal/results"
)

// Gateway is the oracle surface the engine consumes. *oracle.Gateway
// satisfies it.
type Gateway interface {
	Ask(ctx context.Context, entityID, question string) (oracle.Verdict, error)
	VerifyGuess(ctx context.Context, entityID, guess string) (oracle.GuessVerdict, error)
}

// Emitter receives the record of every finished session. Implementations
// must not block; the manager calls Emit while serving player requests.
type Emitter interface {
	Emit(results.SessionResult)
}

// key scopes the one-active-session rule: a user may run one round per
// variant at a time.
type key struct {
	userID  string
	variant catalog.Variant
}

const defaultSweepInterval = time.Minute

// ManagerConfig tunes the manager. Zero values fall back to defaults.
type ManagerConfig struct {
	Defaults      Rules
	Variants      map[catalog.Variant]Rules // per-variant overrides
	SweepInterval time.Duration
	Locale        string
}

// Manager owns all live sessions. Lookups take mu briefly; per-session work,
// including the oracle call, runs under the session's own mutex so that
// independent sessions never wait on each other.
//
// Lock order is mu before Session.mu. No path acquires mu while holding a
// session lock.
type Manager struct {
	logger  zerolog.Logger
	catalog *catalog.Catalog
	gateway Gateway
	emitter Emitter
	clock   quartz.Clock
	cfg     ManagerConfig

	mu       sync.RWMutex
	sessions map[key]*Session
	recent   map[key][]string // cool-down ring of recent entity IDs
	rng      *rand.Rand       // guarded by mu
}

// NewManager wires the engine together. A nil clock falls back to the real
// clock; a nil rng gets a time-seeded one.
func NewManager(logger zerolog.Logger, cat *catalog.Catalog, gw Gateway, emitter Emitter, cfg ManagerConfig, clock quartz.Clock, rng *rand.Rand) *Manager {
	if cfg.Defaults.MaxTurns <= 0 {
		cfg.Defaults = DefaultRules()
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}
	if cfg.Locale == "" {
		cfg.Locale = "en"
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Manager{
		logger:   logger.With().Str("component", "session_manager").Logger(),
		catalog:  cat,
		gateway:  gw,
		emitter:  emitter,
		clock:    clock,
		cfg:      cfg,
		sessions: make(map[key]*Session),
		recent:   make(map[key][]string),
		rng:      rng,
	}
}

func (m *Manager) rulesFor(v catalog.Variant) Rules {
	if r, ok := m.cfg.Variants[v]; ok {
		return r
	}
	return m.cfg.Defaults
}

// Start creates a new round for the (user, variant) pair. A stale occupant
// (expired or already terminal) is evicted first; a genuinely active one
// makes Start fail with ErrConflict.
func (m *Manager) Start(userID string, variant catalog.Variant) (View, error) {
	if !variant.Valid() {
		return View{}, fmt.Errorf("variant %q: %w", variant, ErrNotFound)
	}
	k := key{userID: userID, variant: variant}

	for {
		if existing := m.lookup(k); existing != nil {
			if err := m.evictStale(k, existing); err != nil {
				return View{}, err
			}
			continue
		}

		m.mu.Lock()
		if _, occupied := m.sessions[k]; occupied {
			// Lost the race to another Start; re-check the occupant.
			m.mu.Unlock()
			continue
		}

		rules := m.rulesFor(variant)
		exclude := make(map[string]struct{}, len(m.recent[k]))
		for _, id := range m.recent[k] {
			exclude[id] = struct{}{}
		}
		entity, err := m.catalog.Pick(m.rng, variant, exclude)
		if err != nil {
			m.mu.Unlock()
			return View{}, err
		}

		s := newSession(userID, entity, rules, m.clock.Now())
		m.sessions[k] = s
		m.rememberEntityLocked(k, entity.ID, rules.Cooldown)
		m.mu.Unlock()

		m.logger.Info().Str("session_id", s.id).Str("user_id", userID).
			Str("variant", variant.String()).Msg("session started")

		s.mu.Lock()
		v := s.view(m.cfg.Locale)
		s.mu.Unlock()
		return v, nil
	}
}

// Get returns the current snapshot. An idle-expired session is finalized as
// Abandoned on the spot and reported as ErrNotFound.
func (m *Manager) Get(userID string, variant catalog.Variant) (View, error) {
	k := key{userID: userID, variant: variant}
	s := m.lookup(k)
	if s == nil {
		return View{}, ErrNotFound
	}

	s.mu.Lock()
	now := m.clock.Now()
	if s.expired(now) {
		result, _ := s.abandon(now)
		s.mu.Unlock()
		m.retire(k, s, result, "idle expiry")
		return View{}, fmt.Errorf("session expired: %w", ErrNotFound)
	}
	if s.status.Terminal() {
		s.mu.Unlock()
		m.removeIfSame(k, s)
		return View{}, ErrNotFound
	}
	v := s.view(m.cfg.Locale)
	s.mu.Unlock()
	return v, nil
}

// SubmitQuestion plays one question turn. The turn is consumed only when the
// oracle answers; transport failures leave the session untouched.
func (m *Manager) SubmitQuestion(ctx context.Context, userID string, variant catalog.Variant, text string) (Turn, View, error) {
	k := key{userID: userID, variant: variant}
	s := m.lookup(k)
	if s == nil {
		return Turn{}, View{}, ErrNotFound
	}

	s.mu.Lock()
	now := m.clock.Now()
	if s.expired(now) {
		result, _ := s.abandon(now)
		s.mu.Unlock()
		m.retire(k, s, result, "idle expiry")
		return Turn{}, View{}, fmt.Errorf("session expired: %w", ErrNotFound)
	}
	if s.status.Terminal() {
		s.mu.Unlock()
		m.removeIfSame(k, s)
		return Turn{}, View{}, ErrNotFound
	}

	turn, err := s.submitQuestion(ctx, m.gateway, now, text)
	v := s.view(m.cfg.Locale)
	s.mu.Unlock()
	return turn, v, err
}

// SubmitGuess plays one guess turn. Guesses always consume a turn, and a
// terminating guess retires the session and emits its result.
func (m *Manager) SubmitGuess(ctx context.Context, userID string, variant catalog.Variant, text string) (Turn, View, error) {
	k := key{userID: userID, variant: variant}
	s := m.lookup(k)
	if s == nil {
		return Turn{}, View{}, ErrNotFound
	}

	s.mu.Lock()
	now := m.clock.Now()
	if s.expired(now) {
		result, _ := s.abandon(now)
		s.mu.Unlock()
		m.retire(k, s, result, "idle expiry")
		return Turn{}, View{}, fmt.Errorf("session expired: %w", ErrNotFound)
	}
	if s.status.Terminal() {
		s.mu.Unlock()
		m.removeIfSame(k, s)
		return Turn{}, View{}, ErrNotFound
	}

	turn, result, err := s.submitGuess(ctx, m.gateway, now, text)
	v := s.view(m.cfg.Locale)
	s.mu.Unlock()

	if result != nil {
		m.retire(k, s, result, string(v.Status))
	}
	return turn, v, err
}

// Abandon voluntarily ends the round. Scoring records zero points.
func (m *Manager) Abandon(userID string, variant catalog.Variant) (View, error) {
	k := key{userID: userID, variant: variant}
	s := m.lookup(k)
	if s == nil {
		return View{}, ErrNotFound
	}

	s.mu.Lock()
	now := m.clock.Now()
	if s.expired(now) {
		result, _ := s.abandon(now)
		s.mu.Unlock()
		m.retire(k, s, result, "idle expiry")
		return View{}, fmt.Errorf("session expired: %w", ErrNotFound)
	}
	result, transitioned := s.abandon(now)
	v := s.view(m.cfg.Locale)
	s.mu.Unlock()

	if !transitioned {
		m.removeIfSame(k, s)
		return View{}, ErrNotFound
	}
	m.retire(k, s, result, "abandoned")
	return v, nil
}

// ActiveCount reports how many sessions are currently tracked.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Run sweeps for idle-expired sessions until the context is canceled, so
// rounds nobody touches again are still finalized and persisted.
func (m *Manager) Run(ctx context.Context) error {
	waiter := m.clock.TickerFunc(ctx, m.cfg.SweepInterval, func() error {
		m.sweep()
		return nil
	}, "expiry_sweep")

	if err := waiter.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (m *Manager) sweep() {
	now := m.clock.Now()

	m.mu.RLock()
	snapshot := make(map[key]*Session, len(m.sessions))
	for k, s := range m.sessions {
		snapshot[k] = s
	}
	m.mu.RUnlock()

	for k, s := range snapshot {
		s.mu.Lock()
		if !s.expired(now) {
			s.mu.Unlock()
			continue
		}
		result, _ := s.abandon(now)
		s.mu.Unlock()
		m.retire(k, s, result, "idle expiry")
	}
}

// lookup fetches the tracked session without claiming it.
func (m *Manager) lookup(k key) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[k]
}

// evictStale clears a terminal or expired occupant so a new round can start.
// Returns ErrConflict if the occupant is genuinely active.
func (m *Manager) evictStale(k key, s *Session) error {
	s.mu.Lock()
	now := m.clock.Now()
	switch {
	case s.expired(now):
		result, _ := s.abandon(now)
		s.mu.Unlock()
		m.retire(k, s, result, "idle expiry")
		return nil
	case s.status.Terminal():
		s.mu.Unlock()
		m.removeIfSame(k, s)
		return nil
	default:
		s.mu.Unlock()
		return ErrConflict
	}
}

// retire emits the finished session's result and stops tracking it.
func (m *Manager) retire(k key, s *Session, result *results.SessionResult, reason string) {
	if result != nil {
		m.emitter.Emit(*result)
		m.logger.Info().Str("session_id", s.id).Str("outcome", string(result.Outcome)).
			Int("turns", result.TurnCount).Int("score", result.Score).
			Str("reason", reason).Msg("session finished")
	}
	m.removeIfSame(k, s)
}

// removeIfSame deletes the map entry only if it still points at s, so a
// replacement session started in the meantime is never clobbered.
func (m *Manager) removeIfSame(k key, s *Session) {
	m.mu.Lock()
	if m.sessions[k] == s {
		delete(m.sessions, k)
	}
	m.mu.Unlock()
}

// rememberEntityLocked records the picked entity in the cool-down ring.
// Caller holds mu.
func (m *Manager) rememberEntityLocked(k key, entityID string, cooldown int) {
	if cooldown <= 0 {
		return
	}
	ring := append(m.recent[k], entityID)
	if len(ring) > cooldown {
		ring = ring[len(ring)-cooldown:]
	}
	m.recent[k] = ring
}
