// Package chessclock implements a two-player game clock: per-player elapsed
// time accounting, count-down and count-up modes, per-switch time adjustments
// (increments, delays, penalties) and a notification hook that fires when a
// player's time budget is exhausted.
//
// The clock never ticks in the background. Elapsed time is charged lazily
// when Stop, AdjustElapsedTime or one of the switch operations runs, so the
// hot path is allocation-free and deterministic. A Clock is meant to be owned
// by a single game loop and does no locking of its own; the session package
// provides a mutex-guarded handle for drivers that need one.
package chessclock

import (
	"time"

	"github.com/mleonard/chessclock/timesource"
)

// Direction selects how a Clock accounts time.
type Direction int

const (
	// CountDown depletes a finite per-player budget; reaching it fires the
	// notify hook and stops the clock.
	CountDown Direction = iota
	// CountUp accumulates time without a cap, e.g. for post-game accounting.
	CountUp
)

// String returns the direction name for logs and error messages.
func (d Direction) String() string {
	switch d {
	case CountDown:
		return "down"
	case CountUp:
		return "up"
	default:
		return "unknown"
	}
}

// NumPlayers is the number of players a Clock tracks. Player indices are
// 0..NumPlayers-1; every other index is ignored by mutators and reported as
// not-ok by accessors.
const NumPlayers = 2

// NotifyFunc receives the index of a player whose time has expired.
type NotifyFunc func(player int)

const noPlayer = -1

// Clock is a two-player game clock. Construct with New or NewWithSource.
type Clock struct {
	src       timesource.Source
	direction Direction

	// runningSince is zero while the clock is stopped. lastSwitchAt marks the
	// most recent start or player switch and is the benchmark for the next
	// charge.
	runningSince time.Time
	lastSwitchAt time.Time

	current int
	last    int

	elapsedMS        [NumPlayers]int64
	maxTimeMS        [NumPlayers]uint32
	adjustOnSwitchMS [NumPlayers]int64

	notify NotifyFunc
}

// New creates a Clock using the real system time. maxTimeMS is the per-player
// budget in milliseconds and is required for CountDown; nil means absent.
// adjustOnSwitchMS is the signed per-player delta credited to a player each
// time they relinquish control; nil defaults every entry to zero. Non-nil
// slices must carry one entry per player.
func New(direction Direction, maxTimeMS []uint32, adjustOnSwitchMS []int64) (*Clock, error) {
	return NewWithSource(direction, maxTimeMS, adjustOnSwitchMS, timesource.NewRealClock())
}

// NewWithSource is New with an injected time source.
func NewWithSource(direction Direction, maxTimeMS []uint32, adjustOnSwitchMS []int64, src timesource.Source) (*Clock, error) {
	c := &Clock{
		src:       src,
		direction: direction,
		current:   0,
		last:      noPlayer,
		notify:    func(int) {},
	}

	switch {
	case maxTimeMS == nil:
		if direction == CountDown {
			return nil, &SettingsConflictError{Msg: "down counting clock requires a max time"}
		}
	case len(maxTimeMS) != NumPlayers:
		return nil, &SettingsConflictError{Msg: "max time requires one entry per player"}
	default:
		copy(c.maxTimeMS[:], maxTimeMS)
	}

	switch {
	case adjustOnSwitchMS == nil:
		// every player defaults to zero adjustment
	case len(adjustOnSwitchMS) != NumPlayers:
		return nil, &SettingsConflictError{Msg: "switch adjustment requires one entry per player"}
	default:
		copy(c.adjustOnSwitchMS[:], adjustOnSwitchMS)
	}

	return c, nil
}

// SetNotifyFunc registers fn as the expiry hook. The hook is single-slot:
// registering replaces any previous hook. A nil fn restores the no-op default.
func (c *Clock) SetNotifyFunc(fn NotifyFunc) {
	if fn == nil {
		fn = func(int) {}
	}
	c.notify = fn
}

// Direction reports the counting mode the clock was constructed with.
func (c *Clock) Direction() Direction {
	return c.direction
}

// Running reports whether the clock is currently accruing time.
func (c *Clock) Running() bool {
	return !c.runningSince.IsZero()
}

// Start begins (or resumes) accruing time. Calling Start on a running clock
// is a no-op so that repeated calls cannot reset the benchmark timestamps.
// If the clock was previously stopped, the player who was active at the stop
// becomes active again.
func (c *Clock) Start() {
	// capture the time once at entry for internal consistency
	now := c.src.Now()

	if !c.runningSince.IsZero() {
		return
	}

	if c.last != noPlayer {
		c.current = c.last
		c.last = noPlayer
	}

	c.runningSince = now
	c.lastSwitchAt = now
}

// Stop charges the interval since the last start or switch to the current
// player and halts accrual. Stopping a stopped clock is a no-op. The current
// player is preserved so a later Start resumes with the same player.
func (c *Clock) Stop() {
	now := c.src.Now()

	if c.runningSince.IsZero() {
		return
	}

	if c.current != noPlayer {
		benchmark := c.lastSwitchAt
		if benchmark.IsZero() {
			benchmark = c.runningSince
		}

		// Mark the clock stopped before charging: the charge may expire the
		// player, and the expiry path calls Stop again.
		c.runningSince = time.Time{}

		c.AdjustElapsedTime(c.current, now.Sub(benchmark).Milliseconds())
		c.lastSwitchAt = now
	}
}

// AdjustElapsedTime adds deltaMS (which may be negative) to a player's
// elapsed-time accumulator. Out-of-range players are silently ignored. For
// CountDown the accumulator is clamped at the player's budget, though it may
// legally go negative when time is handed back. If the result meets or
// exceeds the budget the notify hook fires for that player and the clock
// stops; the hook fires on every such call, not just the first crossing.
func (c *Clock) AdjustElapsedTime(player int, deltaMS int64) {
	if !playerSupported(player) {
		return
	}

	if c.direction == CountDown {
		next := c.elapsedMS[player] + deltaMS
		if max := int64(c.maxTimeMS[player]); next > max {
			next = max
		}
		c.elapsedMS[player] = next
	} else {
		c.elapsedMS[player] += deltaMS
	}

	if c.elapsedMS[player] >= int64(c.maxTimeMS[player]) {
		c.notify(player)
		c.Stop()
	}
}

// CurrentPlayer returns the index of the player currently being charged.
// The ok result is false only if the clock has no current player, which does
// not happen through the public API.
func (c *Clock) CurrentPlayer() (int, bool) {
	if c.current == noPlayer {
		return 0, false
	}
	return c.current, true
}

// ElapsedTime returns the total milliseconds charged to the player so far.
// Negative values represent banked bonus time. Time accrued since the last
// start or switch is not included until the next charge; stop or switch
// first to fold it in.
func (c *Clock) ElapsedTime(player int) (int64, bool) {
	if !playerSupported(player) {
		return 0, false
	}
	return c.elapsedMS[player], true
}

// RemainingTime returns the player's remaining budget in milliseconds,
// computed with the saturating conversion of ElapsedToRemaining. Only
// meaningful for CountDown clocks; CountUp budgets are zero.
func (c *Clock) RemainingTime(player int) (uint32, bool) {
	elapsed, ok := c.ElapsedTime(player)
	if !ok {
		return 0, false
	}
	return ElapsedToRemaining(elapsed, c.maxTimeMS[player]), true
}

// SwitchToPlayer hands control to the given player. The wall-clock interval
// since the last start or switch, minus the outgoing player's configured
// switch adjustment, is charged to the outgoing player. A large enough
// positive adjustment therefore banks time (elapsed goes negative). Switching
// to an out-of-range player is a no-op.
func (c *Clock) SwitchToPlayer(player int) {
	now := c.src.Now()

	if !playerSupported(player) {
		return
	}

	if !c.lastSwitchAt.IsZero() && c.current != noPlayer {
		sinceSwitch := now.Sub(c.lastSwitchAt).Milliseconds()
		c.AdjustElapsedTime(c.current, sinceSwitch-c.adjustOnSwitchMS[c.current])
	}

	c.last = c.current
	c.lastSwitchAt = now
	c.current = player
}

// SwitchToNextPlayer hands control to the next player in index order,
// wrapping back to player 0. A no-op if there is no current player.
func (c *Clock) SwitchToNextPlayer() {
	if c.current == noPlayer {
		return
	}

	next := c.current + 1
	if next >= NumPlayers {
		next = 0
	}
	c.SwitchToPlayer(next)
}

func playerSupported(player int) bool {
	return player >= 0 && player < NumPlayers
}
