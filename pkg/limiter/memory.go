package limiter

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is an in-process token-bucket rate limiter.
//
// It is safe for concurrent use by multiple goroutines, but its state is local
// to the process and is not shared across replicas. The bucket map is guarded
// by a read-write lock that covers only lookup and insert; the refill-and-
// charge sequence runs under each bucket's own mutex.
type MemoryLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*bucket

	clock         func() time.Time
	recorder      MetricsRecorder
	sweepInterval time.Duration
	maxIdle       time.Duration

	stopOnce sync.Once
	done     chan struct{}
}

// NewMemoryLimiter constructs a MemoryLimiter with empty state and starts its
// background sweeper unless WithoutSweeper is given. Call Stop when the
// limiter is no longer needed.
func NewMemoryLimiter(opts ...Option) *MemoryLimiter {
	m := &MemoryLimiter{
		buckets:       make(map[string]*bucket),
		clock:         time.Now,
		recorder:      &NoOpMetricsRecorder{},
		sweepInterval: time.Minute,
		maxIdle:       5 * time.Minute,
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.sweepInterval > 0 {
		go m.sweepLoop()
	}
	return m
}

// Allow checks whether a request for the given identity should be allowed under
// the provided limit. Each call has a fixed cost of 1 token.
func (m *MemoryLimiter) Allow(ctx context.Context, id Identity, limit Limit) (Decision, error) {
	return m.AllowN(ctx, id, limit, 1)
}

// AllowN is Allow with an explicit per-request cost. In-memory admission never
// fails; the error return exists for interface parity with backends that can.
func (m *MemoryLimiter) AllowN(ctx context.Context, id Identity, limit Limit, cost float64) (Decision, error) {
	start := time.Now()
	now := m.clock()

	b := m.getOrCreate(id.storageKey(), now, limit)
	dec := b.take(now, limit, cost)

	status := "allowed"
	if !dec.Allow {
		status = "denied"
	}
	tags := map[string]string{"namespace": string(id.Namespace), "status": status}
	m.recorder.Add("ratelimit.call", 1, tags)
	m.recorder.Observe("ratelimit.latency", time.Since(start).Seconds(), tags)

	return dec, nil
}

// getOrCreate returns the bucket for key, creating a full one on first sight.
// The read path takes only the shared lock; creation re-checks under the write
// lock so concurrent first-time requests converge on one bucket.
func (m *MemoryLimiter) getOrCreate(key string, now time.Time, limit Limit) *bucket {
	m.mu.RLock()
	b, ok := m.buckets[key]
	m.mu.RUnlock()
	if ok {
		return b
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok = m.buckets[key]; ok {
		return b
	}
	b = newBucket(now, limit)
	m.buckets[key] = b
	return b
}

// Len returns the current number of tracked identities (for testing/metrics).
func (m *MemoryLimiter) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.buckets)
}

// Stop terminates the background sweeper. It is safe to call more than once.
func (m *MemoryLimiter) Stop() {
	m.stopOnce.Do(func() { close(m.done) })
}

func (m *MemoryLimiter) sweepLoop() {
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

// sweep drops buckets that have not been touched within maxIdle. An idle
// period that long exceeds the time needed to refill from empty to capacity,
// so a reaped bucket would have been full anyway and recreating it later is
// indistinguishable from having kept it.
func (m *MemoryLimiter) sweep() {
	now := m.clock()

	m.mu.Lock()
	defer m.mu.Unlock()
	for key, b := range m.buckets {
		if b.idle(now) > m.maxIdle {
			delete(m.buckets, key)
		}
	}
}
