package limiter

import (
	"sync"
	"time"
)

// bucket holds the token balance for a single identity. All mutation happens
// in take under the bucket's own mutex, so requests for unrelated identities
// never contend with each other.
type bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
	lastSeen   time.Time
}

func newBucket(now time.Time, limit Limit) *bucket {
	return &bucket{
		tokens:     float64(limit.Burst),
		lastRefill: now,
		lastSeen:   now,
	}
}

// take refills the bucket for the wall-clock time elapsed since the last
// refill, then tries to charge cost tokens. A clock reading at or before
// lastRefill adds nothing and never moves lastRefill backwards, so a clock
// step can't shrink the balance.
func (b *bucket) take(now time.Time, limit Limit, cost float64) Decision {
	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := now.Sub(b.lastRefill)
	if elapsed > 0 {
		delta := float64(elapsed) / float64(limit.Period)
		balance := b.tokens + delta*float64(limit.Rate)
		if balance > float64(limit.Burst) {
			balance = float64(limit.Burst)
		}
		b.tokens = balance
		b.lastRefill = now
	}
	if now.After(b.lastSeen) {
		b.lastSeen = now
	}

	if b.tokens >= cost {
		b.tokens -= cost
		return Decision{
			Allow:      true,
			Remaining:  int64(b.tokens),
			RetryAfter: 0,
			ResetTime:  now,
		}
	}

	costPerToken := float64(limit.Period) / float64(limit.Rate)
	wait := time.Duration((cost - b.tokens) * costPerToken)
	return Decision{
		Allow:      false,
		Remaining:  int64(b.tokens),
		RetryAfter: wait,
		ResetTime:  now.Add(wait),
	}
}

func (b *bucket) idle(now time.Time) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return now.Sub(b.lastSeen)
}
