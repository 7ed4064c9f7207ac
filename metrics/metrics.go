// Package metrics exposes Prometheus metrics for chess clock sessions, fed
// from event bus subscriptions.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mleonard/chessclock/event"
	"github.com/mleonard/chessclock/eventbus"
	"github.com/mleonard/chessclock/internal/logger"
)

// Service collects clock metrics from an event bus.
type Service struct {
	bus eventbus.Publisher

	// Counters
	expirationsTotal *prometheus.CounterVec
	switchesTotal    prometheus.Counter
	adjustmentsTotal prometheus.Counter

	// Gauges
	runningClocks prometheus.Gauge

	// Histograms
	moveDuration prometheus.Histogram
}

// NewService creates and registers the clock metrics. A nil registerer uses
// the default Prometheus registry; tests pass their own.
func NewService(bus eventbus.Publisher, reg prometheus.Registerer) *Service {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Service{
		bus: bus,

		expirationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chessclock_expirations_total",
				Help: "Total number of flag falls (exhausted time budgets) by player index",
			},
			[]string{"player"},
		),

		switchesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "chessclock_switches_total",
				Help: "Total number of player switches",
			},
		),

		adjustmentsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "chessclock_adjustments_total",
				Help: "Total number of manual elapsed-time adjustments",
			},
		),

		runningClocks: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "chessclock_running_clocks",
				Help: "Number of clocks currently accruing time",
			},
		),

		moveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "chessclock_move_duration_seconds",
				Help:    "Net time charged to the outgoing player per switch",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 12), // 250ms to ~8.5min
			},
		),
	}

	// Register all metrics
	reg.MustRegister(
		m.expirationsTotal,
		m.switchesTotal,
		m.adjustmentsTotal,
		m.runningClocks,
		m.moveDuration,
	)

	return m
}

// Start subscribes to events and updates metrics
func (m *Service) Start() {
	m.bus.Subscribe(event.ClockStarted, m.handleClockStarted)
	m.bus.Subscribe(event.ClockStopped, m.handleClockStopped)
	m.bus.Subscribe(event.PlayerSwitched, m.handlePlayerSwitched)
	m.bus.Subscribe(event.TimeAdjusted, m.handleTimeAdjusted)
	m.bus.Subscribe(event.TimeExpired, m.handleTimeExpired)

	logger.Infof("Metrics service started")
}

// Handler returns the Prometheus HTTP handler for the default registry.
// Mounting it anywhere is the embedding application's business.
func (m *Service) Handler() http.Handler {
	return promhttp.Handler()
}

// Event handlers

func (m *Service) handleClockStarted(event.Event) {
	m.runningClocks.Inc()
}

func (m *Service) handleClockStopped(event.Event) {
	m.runningClocks.Dec()
}

func (m *Service) handlePlayerSwitched(ev event.Event) {
	m.switchesTotal.Inc()

	// negative charges are banked bonus time, not think time
	if charged, ok := ev.GetInt64("charged_ms"); ok && charged >= 0 {
		m.moveDuration.Observe(float64(charged) / 1000.0)
	}
}

func (m *Service) handleTimeAdjusted(event.Event) {
	m.adjustmentsTotal.Inc()
}

func (m *Service) handleTimeExpired(ev event.Event) {
	m.expirationsTotal.WithLabelValues(strconv.Itoa(ev.Player)).Inc()
}
