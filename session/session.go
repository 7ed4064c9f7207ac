// Package session wraps a chessclock.Clock in a concurrency-safe handle for
// game drivers. A session serializes all clock access behind one mutex,
// carries a unique identity, and reports clock lifecycle changes on an event
// bus so that metrics and notifications can observe play without touching
// the clock itself.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mleonard/chessclock"
	"github.com/mleonard/chessclock/event"
	"github.com/mleonard/chessclock/eventbus"
	"github.com/mleonard/chessclock/internal/logger"
	"github.com/mleonard/chessclock/timesource"
)

// Session owns one clock for one game. All methods are safe for concurrent
// use; the underlying clock is never exposed.
type Session struct {
	mu    sync.Mutex
	id    string
	clock *chessclock.Clock
	bus   eventbus.Publisher
}

// PlayerSnapshot is one player's accounting at a point in time.
type PlayerSnapshot struct {
	ElapsedMS   int64  `json:"elapsed_ms"`
	RemainingMS uint32 `json:"remaining_ms"`
}

// Snapshot is a consistent view of the whole session.
type Snapshot struct {
	SessionID     string                                `json:"session_id"`
	Running       bool                                  `json:"running"`
	CurrentPlayer int                                   `json:"current_player"`
	Players       [chessclock.NumPlayers]PlayerSnapshot `json:"players"`
}

// New creates a session around a fresh clock. bus may be nil, in which case
// no events are published. Construction fails only on a clock settings
// conflict.
func New(direction chessclock.Direction, maxTimeMS []uint32, adjustOnSwitchMS []int64, bus eventbus.Publisher) (*Session, error) {
	return NewWithSource(direction, maxTimeMS, adjustOnSwitchMS, bus, timesource.NewRealClock())
}

// NewWithSource is New with an injected time source.
func NewWithSource(direction chessclock.Direction, maxTimeMS []uint32, adjustOnSwitchMS []int64, bus eventbus.Publisher, src timesource.Source) (*Session, error) {
	clock, err := chessclock.NewWithSource(direction, maxTimeMS, adjustOnSwitchMS, src)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:    uuid.NewString(),
		clock: clock,
		bus:   bus,
	}

	// The expiry hook runs inside clock mutations, which only happen with
	// s.mu held, so it must not lock.
	clock.SetNotifyFunc(func(player int) {
		logger.Warnf("session %s: player %d flag fell", s.id, player)
		s.publish(event.TimeExpired, player, nil)
	})

	logger.Debugf("session %s: created (%s counting)", s.id, direction)
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Start begins or resumes the clock and reports who is now on the move.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasRunning := s.clock.Running()
	s.clock.Start()
	if wasRunning {
		return
	}

	current, _ := s.clock.CurrentPlayer()
	logger.Debugf("session %s: started, player %d on the move", s.id, current)
	s.publish(event.ClockStarted, current, nil)
}

// Stop halts the clock, charging the pending interval to the current player.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.clock.Running() {
		return
	}
	s.clock.Stop()

	current, _ := s.clock.CurrentPlayer()
	elapsed, _ := s.clock.ElapsedTime(current)
	logger.Debugf("session %s: stopped, player %d at %dms", s.id, current, elapsed)
	s.publish(event.ClockStopped, current, map[string]interface{}{
		"elapsed_ms": elapsed,
	})
}

// SwitchToPlayer hands the move to the given player and reports how much net
// time the outgoing player was charged. Unknown players are ignored.
func (s *Session) SwitchToPlayer(player int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.switchLocked(player)
}

// SwitchToNextPlayer hands the move to the next player in index order.
func (s *Session) SwitchToNextPlayer() {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.clock.CurrentPlayer()
	if !ok {
		return
	}
	next := current + 1
	if next >= chessclock.NumPlayers {
		next = 0
	}
	s.switchLocked(next)
}

func (s *Session) switchLocked(player int) {
	outgoing, ok := s.clock.CurrentPlayer()
	if !ok {
		return
	}
	before, _ := s.clock.ElapsedTime(outgoing)

	s.clock.SwitchToPlayer(player)

	current, _ := s.clock.CurrentPlayer()
	if current != player {
		// out-of-range switch: the clock ignored it
		return
	}

	after, _ := s.clock.ElapsedTime(outgoing)
	charged := after - before

	logger.Debugf("session %s: player %d -> %d, charged %dms", s.id, outgoing, player, charged)
	s.publish(event.PlayerSwitched, player, map[string]interface{}{
		"outgoing":   outgoing,
		"charged_ms": charged,
	})
}

// AdjustElapsedTime applies a manual correction to a player's accumulator.
// Unknown players are ignored, matching the clock's behavior.
func (s *Session) AdjustElapsedTime(player int, deltaMS int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clock.ElapsedTime(player); !ok {
		return
	}
	s.clock.AdjustElapsedTime(player, deltaMS)

	s.publish(event.TimeAdjusted, player, map[string]interface{}{
		"delta_ms": deltaMS,
	})
}

// CurrentPlayer reports whose time bank is charged next.
func (s *Session) CurrentPlayer() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.CurrentPlayer()
}

// ElapsedTime reports a player's charged milliseconds.
func (s *Session) ElapsedTime(player int) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.ElapsedTime(player)
}

// RemainingTime reports a player's remaining budget in milliseconds.
func (s *Session) RemainingTime(player int) (uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.RemainingTime(player)
}

// Running reports whether the clock is accruing time.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.Running()
}

// Snapshot returns a consistent view of all players under one lock hold.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SessionID: s.id,
		Running:   s.clock.Running(),
	}
	snap.CurrentPlayer, _ = s.clock.CurrentPlayer()

	for player := 0; player < chessclock.NumPlayers; player++ {
		elapsed, _ := s.clock.ElapsedTime(player)
		remaining, _ := s.clock.RemainingTime(player)
		snap.Players[player] = PlayerSnapshot{
			ElapsedMS:   elapsed,
			RemainingMS: remaining,
		}
	}
	return snap
}

func (s *Session) publish(eventType event.Type, player int, data map[string]interface{}) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(event.Event{
		SessionID: s.id,
		Type:      eventType,
		Player:    player,
		Data:      data,
	})
}
