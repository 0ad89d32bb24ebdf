package timeutil

import (
	"testing"
	"time"
)

func TestRealClock_Now(t *testing.T) {
	clock := RealClock{}
	before := time.Now()
	now := clock.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("RealClock.Now() returned time outside expected range")
	}
}

func TestRealClock_Since(t *testing.T) {
	clock := RealClock{}
	past := time.Now().Add(-time.Second)
	if since := clock.Since(past); since < time.Second {
		t.Errorf("RealClock.Since() = %v, want >= 1s", since)
	}
}

func TestMockClock_Now(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	if !clock.Now().Equal(start) {
		t.Errorf("MockClock.Now() = %v, want %v", clock.Now(), start)
	}
}

func TestMockClock_Set(t *testing.T) {
	clock := NewMockClock(time.Time{})
	target := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	clock.Set(target)

	if !clock.Now().Equal(target) {
		t.Errorf("MockClock.Now() after Set = %v, want %v", clock.Now(), target)
	}
}

func TestMockClock_Advance(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)
	clock.Advance(90 * time.Second)

	if got := clock.Since(start); got != 90*time.Second {
		t.Errorf("MockClock.Since() = %v, want 90s", got)
	}
}

func TestMockClock_Step(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)
	clock.SetStep(time.Millisecond)

	t0 := clock.Now()
	if got := clock.Since(t0); got != time.Millisecond {
		t.Errorf("Since after one stepped Now = %v, want 1ms", got)
	}
	clock.Now()
	if got := clock.Since(t0); got != 2*time.Millisecond {
		t.Errorf("Since after two stepped Now calls = %v, want 2ms", got)
	}
}
