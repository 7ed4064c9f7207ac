// Package event defines the clock lifecycle events exchanged over the event
// bus by the session, metrics and notifier packages.
package event

import (
	"time"
)

// Type identifies a clock lifecycle event.
type Type string

const (
	ClockStarted   Type = "ClockStarted"
	ClockStopped   Type = "ClockStopped"
	PlayerSwitched Type = "PlayerSwitched" // Data: charged_ms for the outgoing player
	TimeAdjusted   Type = "TimeAdjusted"   // Data: delta_ms
	TimeExpired    Type = "TimeExpired"    // a player's budget is exhausted
)

// Event is a single clock lifecycle occurrence. Player is the index the
// event concerns; for PlayerSwitched it is the incoming player, with the
// outgoing one carried in Data.
type Event struct {
	SessionID string                 `json:"session_id"`
	Type      Type                   `json:"type"`
	Player    int                    `json:"player"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// =============================================================================
// Type-safe event data accessors
// These helpers provide compile-time safety when extracting data from events.
// =============================================================================

// GetString safely extracts a string field from Data.
// Returns the value and true if found and is a string, otherwise empty string and false.
func (e *Event) GetString(key string) (string, bool) {
	if e.Data == nil {
		return "", false
	}
	v, ok := e.Data[key].(string)
	return v, ok
}

// GetStringOr extracts a string field or returns the default value.
func (e *Event) GetStringOr(key, defaultVal string) string {
	if v, ok := e.GetString(key); ok {
		return v
	}
	return defaultVal
}

// GetInt64 safely extracts an int64 field from Data.
// Handles both int64 and float64 (JSON unmarshaling produces float64).
func (e *Event) GetInt64(key string) (int64, bool) {
	if e.Data == nil {
		return 0, false
	}
	switch v := e.Data[key].(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// GetInt64Or extracts an int64 field or returns the default value.
func (e *Event) GetInt64Or(key string, defaultVal int64) int64 {
	if v, ok := e.GetInt64(key); ok {
		return v
	}
	return defaultVal
}
