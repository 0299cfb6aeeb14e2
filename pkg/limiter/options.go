package limiter

import "time"

// Option configures a MemoryLimiter.
type Option func(*MemoryLimiter)

// WithRecorder injects a custom metrics backend.
func WithRecorder(r MetricsRecorder) Option {
	return func(m *MemoryLimiter) {
		if r != nil {
			m.recorder = r
		}
	}
}

// WithClock overrides the wall-clock source (default time.Now). Useful in
// tests that need deterministic refill arithmetic.
func WithClock(clock func() time.Time) Option {
	return func(m *MemoryLimiter) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithSweepInterval sets how often idle buckets are reaped (default 1m).
func WithSweepInterval(d time.Duration) Option {
	return func(m *MemoryLimiter) {
		if d > 0 {
			m.sweepInterval = d
		}
	}
}

// WithMaxIdle sets how long a bucket may go untouched before the sweeper
// drops it (default 5m).
func WithMaxIdle(d time.Duration) Option {
	return func(m *MemoryLimiter) {
		if d > 0 {
			m.maxIdle = d
		}
	}
}

// WithoutSweeper disables the background sweeper entirely. The bucket map
// then grows with the number of distinct identities ever seen.
func WithoutSweeper() Option {
	return func(m *MemoryLimiter) {
		m.sweepInterval = 0
	}
}
