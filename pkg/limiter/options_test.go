package limiter

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_Options(t *testing.T) {
	t.Run("WithClock", func(t *testing.T) {
		clock := newFakeClock()
		limiter := NewMemoryLimiter(WithClock(clock.Now), WithoutSweeper())

		limit := Limit{Rate: 10, Period: time.Second, Burst: 1}
		id := Identity{Namespace: "options", Key: "clock"}

		limiter.Allow(context.Background(), id, limit)
		dec, _ := limiter.Allow(context.Background(), id, limit)
		if dec.Allow {
			t.Fatal("Second request should be denied while the injected clock is frozen")
		}

		clock.Advance(time.Second)
		dec, _ = limiter.Allow(context.Background(), id, limit)
		if !dec.Allow {
			t.Error("Advancing the injected clock should have refilled the bucket")
		}
	})

	t.Run("WithMaxIdle", func(t *testing.T) {
		clock := newFakeClock()
		limiter := NewMemoryLimiter(
			WithClock(clock.Now),
			WithoutSweeper(),
			WithMaxIdle(time.Second),
		)

		limit := Limit{Rate: 10, Period: time.Second, Burst: 10}
		limiter.Allow(context.Background(), Identity{Namespace: "options", Key: "idle"}, limit)

		clock.Advance(2 * time.Second)
		limiter.sweep()

		if limiter.Len() != 0 {
			t.Errorf("Expected the bucket to be reaped after the custom idle TTL, store holds %d", limiter.Len())
		}
	})

	t.Run("WithoutSweeper", func(t *testing.T) {
		limiter := NewMemoryLimiter(WithoutSweeper())
		if limiter.sweepInterval != 0 {
			t.Error("WithoutSweeper should zero the sweep interval")
		}
	})

	t.Run("NilOptionsIgnored", func(t *testing.T) {
		limiter := NewMemoryLimiter(WithClock(nil), WithRecorder(nil), WithoutSweeper())
		if limiter.clock == nil {
			t.Error("WithClock(nil) must not clear the default clock")
		}
		if limiter.recorder == nil {
			t.Error("WithRecorder(nil) must not clear the default recorder")
		}
	})
}
