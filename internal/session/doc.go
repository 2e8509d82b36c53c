// Package session owns the lifecycle of one guessing round: entity
// selection, question/answer turns, guess resolution, and termination.
//
// The main types are Session, the single-round state machine, and Manager,
// which creates, looks up, and retires sessions. A session moves from Active
// to exactly one of Won, Lost, or Abandoned; terminal sessions are immutable.
//
// # Concurrency
//
// Each session carries its own mutex and all mutation funnels through the
// Manager, so concurrent actions against one session apply one at a time in
// arrival order while independent sessions proceed in parallel. The oracle
// call inside a question or guess is the only blocking operation and runs
// under the session's critical section, which is what serializes turns.
//
// # Deterministic testing
//
// The Manager takes an injected quartz.Clock and *rand.Rand. Tests use the
// mock clock to drive idle expiry and a seeded RNG for entity selection.
package session
