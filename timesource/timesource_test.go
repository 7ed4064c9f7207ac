package timesource

import (
	"sync"
	"testing"
	"time"
)

// =============================================================================
// RealClock tests
// =============================================================================

func TestNewRealClock(t *testing.T) {
	clock := NewRealClock()
	if clock == nil {
		t.Fatal("NewRealClock() should not return nil")
	}
}

func TestRealClock_Now(t *testing.T) {
	clock := NewRealClock()

	before := time.Now()
	got := clock.Now()
	after := time.Now()

	if got.Before(before) {
		t.Errorf("clock.Now() returned %v which is before %v", got, before)
	}
	if got.After(after) {
		t.Errorf("clock.Now() returned %v which is after %v", got, after)
	}
}

func TestRealClock_Now_Advances(t *testing.T) {
	clock := NewRealClock()

	first := clock.Now()
	time.Sleep(10 * time.Millisecond)
	second := clock.Now()

	if !second.After(first) {
		t.Errorf("clock.Now() should advance over time: first=%v, second=%v", first, second)
	}
}

// =============================================================================
// Mock tests
// =============================================================================

func TestMock_Now_DoesNotAdvance(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mock := NewMock(start)

	first := mock.Now()
	time.Sleep(5 * time.Millisecond)
	second := mock.Now()

	if !first.Equal(start) || !second.Equal(start) {
		t.Errorf("Mock time should stay frozen at %v, got %v then %v", start, first, second)
	}
}

func TestMock_Advance(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mock := NewMock(start)

	mock.Advance(40 * time.Millisecond)

	want := start.Add(40 * time.Millisecond)
	if got := mock.Now(); !got.Equal(want) {
		t.Errorf("after Advance, Now() = %v, want %v", got, want)
	}
}

func TestMock_Set(t *testing.T) {
	mock := NewMock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	want := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.Set(want)

	if got := mock.Now(); !got.Equal(want) {
		t.Errorf("after Set, Now() = %v, want %v", got, want)
	}
}

// =============================================================================
// Interface compliance tests
// =============================================================================

func TestRealClock_ImplementsSource(t *testing.T) {
	t.Helper()
	var _ Source = (*RealClock)(nil)
}

func TestMock_ImplementsSource(t *testing.T) {
	t.Helper()
	var _ Source = (*Mock)(nil)
}

// =============================================================================
// Concurrent usage tests
// =============================================================================

func TestMock_ConcurrentAccess(t *testing.T) {
	mock := NewMock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	const goroutines = 100
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(n int) {
			defer wg.Done()
			if n%2 == 0 {
				mock.Advance(time.Millisecond)
			} else {
				_ = mock.Now()
			}
		}(i)
	}

	wg.Wait()

	elapsed := mock.Now().Sub(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	if elapsed != 50*time.Millisecond {
		t.Errorf("expected 50ms of advances, got %v", elapsed)
	}
}
