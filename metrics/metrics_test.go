package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mleonard/chessclock/event"
	"github.com/mleonard/chessclock/eventbus"
)

func newTestService(t *testing.T) (*Service, *eventbus.Bus) {
	t.Helper()

	bus := eventbus.New()
	t.Cleanup(bus.Shutdown)

	service := NewService(bus, prometheus.NewRegistry())
	service.Start()
	return service, bus
}

// waitForValue polls a gauge/counter until it reaches want or the timeout passes.
func waitForValue(t *testing.T, c prometheus.Collector, want float64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if testutil.ToFloat64(c) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("metric never reached %v (last: %v)", want, testutil.ToFloat64(c))
}

func TestNewService_RegistersAllMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewService(eventbus.New(), reg)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
	}

	// counter vecs with no children do not gather until first use
	assert.True(t, names["chessclock_switches_total"])
	assert.True(t, names["chessclock_adjustments_total"])
	assert.True(t, names["chessclock_running_clocks"])
	assert.True(t, names["chessclock_move_duration_seconds"])
}

func TestService_CountsExpirations(t *testing.T) {
	service, bus := newTestService(t)

	bus.Publish(event.Event{SessionID: "s1", Type: event.TimeExpired, Player: 1})
	bus.Publish(event.Event{SessionID: "s2", Type: event.TimeExpired, Player: 1})
	bus.Publish(event.Event{SessionID: "s3", Type: event.TimeExpired, Player: 0})

	waitForValue(t, service.expirationsTotal.WithLabelValues("1"), 2)
	waitForValue(t, service.expirationsTotal.WithLabelValues("0"), 1)
}

func TestService_CountsSwitchesAndObservesMoveDuration(t *testing.T) {
	service, bus := newTestService(t)

	bus.Publish(event.Event{
		SessionID: "s1",
		Type:      event.PlayerSwitched,
		Player:    1,
		Data:      map[string]interface{}{"outgoing": 0, "charged_ms": int64(40)},
	})
	// a banked-time switch counts but is not observed as think time
	bus.Publish(event.Event{
		SessionID: "s1",
		Type:      event.PlayerSwitched,
		Player:    0,
		Data:      map[string]interface{}{"outgoing": 1, "charged_ms": int64(-4960)},
	})

	waitForValue(t, service.switchesTotal, 2)

	count := testutil.CollectAndCount(service.moveDuration)
	assert.Equal(t, 1, count, "histogram should be collectable")
}

func TestService_TracksRunningClocks(t *testing.T) {
	service, bus := newTestService(t)

	bus.Publish(event.Event{SessionID: "s1", Type: event.ClockStarted})
	bus.Publish(event.Event{SessionID: "s2", Type: event.ClockStarted})
	waitForValue(t, service.runningClocks, 2)

	bus.Publish(event.Event{SessionID: "s1", Type: event.ClockStopped})
	waitForValue(t, service.runningClocks, 1)
}

func TestService_CountsAdjustments(t *testing.T) {
	service, bus := newTestService(t)

	bus.Publish(event.Event{SessionID: "s1", Type: event.TimeAdjusted, Player: 0})
	waitForValue(t, service.adjustmentsTotal, 1)
}

func TestService_HandlerServesMetrics(t *testing.T) {
	service := NewService(eventbus.New(), prometheus.NewRegistry())
	assert.NotNil(t, service.Handler())
}
