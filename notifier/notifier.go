// Package notifier pushes flag-fall notifications to external services via
// shoutrrr URLs (discord, gotify, ntfy, email, ...). It observes the event
// bus; the clock itself never knows notifications exist.
package notifier

import (
	"fmt"
	"sync"
	"time"

	"github.com/containrrr/shoutrrr"

	"github.com/mleonard/chessclock/event"
	"github.com/mleonard/chessclock/eventbus"
	"github.com/mleonard/chessclock/internal/config"
	"github.com/mleonard/chessclock/internal/logger"
	"github.com/mleonard/chessclock/timesource"
)

// SendFunc delivers a message to a single shoutrrr URL. Replaceable in tests.
type SendFunc func(rawURL, message string) error

// Notifier sends clock notifications to a fixed set of service URLs, with
// per-event-type throttling.
type Notifier struct {
	bus      eventbus.Publisher
	urls     []string
	throttle time.Duration
	src      timesource.Source
	send     SendFunc

	mu       sync.Mutex
	lastSent map[event.Type]time.Time
}

// New creates a Notifier for the given shoutrrr URLs. An empty url list
// disables sending. A zero throttle disables throttling.
func New(bus eventbus.Publisher, urls []string, throttle time.Duration) *Notifier {
	return &Notifier{
		bus:      bus,
		urls:     urls,
		throttle: throttle,
		src:      timesource.NewRealClock(),
		send:     shoutrrr.Send,
		lastSent: make(map[event.Type]time.Time),
	}
}

// NewFromConfig creates a Notifier from the CHESSCLOCK_* environment config.
func NewFromConfig(bus eventbus.Publisher) *Notifier {
	cfg := config.Get()
	return New(bus, cfg.NotifyURLs, time.Duration(cfg.NotifyThrottleSeconds)*time.Second)
}

// Start subscribes to the events worth telling a human about.
func (n *Notifier) Start() {
	n.bus.Subscribe(event.TimeExpired, n.handleTimeExpired)

	if len(n.urls) == 0 {
		logger.Debugf("Notifier started with no URLs configured, sending disabled")
		return
	}
	logger.Infof("Notifier started with %d notification URL(s)", len(n.urls))
}

func (n *Notifier) handleTimeExpired(ev event.Event) {
	n.deliver(ev.Type, formatTimeExpired(ev))
}

func (n *Notifier) deliver(eventType event.Type, message string) {
	if len(n.urls) == 0 {
		return
	}
	if !n.canSend(eventType) {
		logger.Debugf("Notification throttled for %s", eventType)
		return
	}

	for _, url := range n.urls {
		if err := n.send(url, message); err != nil {
			logger.Errorf("Failed to send notification to %s: %v", redactURL(url), err)
			continue
		}
		logger.Debugf("Notification sent to %s", redactURL(url))
	}
}

// canSend enforces the per-event-type throttle window.
func (n *Notifier) canSend(eventType event.Type) bool {
	if n.throttle <= 0 {
		return true
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.src.Now()
	if last, ok := n.lastSent[eventType]; ok && now.Sub(last) < n.throttle {
		return false
	}
	n.lastSent[eventType] = now
	return true
}

func formatTimeExpired(ev event.Event) string {
	return fmt.Sprintf("♟️ Chess clock: player %d ran out of time (session %s)", ev.Player, ev.SessionID)
}

// redactURL strips everything past the scheme so tokens never hit the logs.
func redactURL(url string) string {
	for i := 0; i < len(url)-2; i++ {
		if url[i] == ':' && url[i+1] == '/' && url[i+2] == '/' {
			return url[:i+3] + "..."
		}
	}
	return "..."
}
