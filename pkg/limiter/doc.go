// Package limiter provides in-process rate limiting based on the Token Bucket
// algorithm.
//
// The primary entry point is the RateLimiter interface:
//
//	dec, err := limiter.Allow(ctx, id, limit)
//
// The returned Decision contains whether the request is allowed, how many whole
// tokens remain, and timing hints for callers that want to set rate-limit
// headers (for example, Retry-After).
//
// # Overview
//
// This package implements a Token Bucket:
//
//   - Each identity has a "bucket" holding tokens.
//   - The bucket refills over time up to a maximum capacity (Burst).
//   - Each Allow call consumes 1 token when available; AllowN charges an
//     explicit per-request cost.
//
// Unlike fixed-window counters, token buckets naturally support bursts while
// still enforcing a long-term average rate. Refill happens lazily at request
// time rather than on a background timer, so a bucket's state is fully
// determined by its token balance, its last-refill stamp, and the clock.
// Tokens are fractional, so sub-second arrival patterns are not rounded in
// either direction.
//
// # Core Types
//
// Limit defines the policy:
//
//   - Rate: tokens earned per Period (for example, 10 per second)
//   - Period: the time window Rate is measured over
//   - Burst: maximum number of tokens the bucket can hold (also the maximum
//     immediate burst)
//
// Identity defines "who" is being rate-limited. It is split into:
//
//   - Namespace: a logical grouping (for example, "ip", "user", "api_key")
//   - Key: the identifier within that namespace (for example, "203.0.113.9")
//
// # Concurrency
//
// MemoryLimiter is safe for concurrent use by multiple goroutines. The bucket
// map is guarded by a read-write lock that covers only lookup and insert;
// creation re-checks under the write lock so concurrent first-time requests
// for the same identity converge on a single bucket. The refill-and-charge
// sequence itself runs under a per-bucket mutex, so requests for unrelated
// identities never serialize against each other. When a bucket holds fewer
// tokens than there are concurrent requests, exactly the covered number are
// admitted; the check and the charge are one critical section.
//
// # Decision Semantics
//
// Decision fields are intended to be directly consumable by application code:
//
//   - Allow reports whether the current request is permitted.
//   - Remaining is the number of whole tokens remaining after the decision is
//     applied (floored to an int64).
//   - RetryAfter is 0 when allowed; when denied it is the approximate duration
//     until enough tokens are expected to be available.
//   - ResetTime is the absolute timestamp corresponding to now+RetryAfter.
//
// Denial is an expected outcome, not a failure: it is reported through
// Decision.Allow, and the error return of Allow/AllowN is always nil for the
// in-memory implementation.
//
// # Storage Details
//
// MemoryLimiter stores state in a process-local map keyed by:
//
//	"{namespace}:{key}"
//
// A background sweeper reaps buckets that have gone untouched longer than a
// configurable idle TTL, so the map does not grow without bound for
// high-cardinality keys. The TTL should exceed Burst/Rate seconds; a bucket
// idle that long has refilled to capacity, so dropping and later recreating
// it is indistinguishable from keeping it.
//
// # Clock Behavior
//
// The wall clock is read once per decision. A clock that appears to move
// backwards (NTP step, VM migration) adds no tokens and does not move the
// last-refill stamp, so a time regression can never shrink a balance or
// inflate a later refill.
//
// # Configuration
//
// MemoryLimiter is configured using the Functional Options pattern:
//
//	l := limiter.NewMemoryLimiter(
//		limiter.WithMaxIdle(10*time.Minute),
//		limiter.WithRecorder(myMetrics),
//	)
//	defer l.Stop()
//
// Supported options:
//
//   - WithRecorder(MetricsRecorder): Injects a custom metrics backend
//     (PrometheusRecorder adapts it to a Prometheus registry).
//   - WithClock(func() time.Time): Overrides the clock source, mainly for
//     deterministic tests.
//   - WithSweepInterval(time.Duration): How often idle buckets are reaped
//     (default 1m).
//   - WithMaxIdle(time.Duration): Idle TTL before a bucket is reaped
//     (default 5m).
//   - WithoutSweeper(): Disables reaping entirely.
//
// # Usage
//
// For a runnable example, see ExampleMemoryLimiter in example_test.go.
package limiter
