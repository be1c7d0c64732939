package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-chi/httprate"
)

// Result is the outcome of a guard evaluation.
type Result struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Guard   string `json:"guard,omitempty"` // which guard blocked
}

// RateLimiter is a sliding window rate limiter for keys that do not come from
// the request itself (for example the email in a login body). Counts live in
// an httprate counter that only keeps the current and previous windows, so
// keys are forgotten once they go quiet.
type RateLimiter struct {
	mu      sync.Mutex
	counter httprate.LimitCounter
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewRateLimiter creates a rate limiter with the given limit per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		counter: httprate.NewLocalLimitCounter(window),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Check returns a Result indicating whether the key is within rate limits.
// An allowed check consumes one slot.
func (rl *RateLimiter) Check(_ context.Context, key string) Result {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now().UTC()
	current := now.Truncate(rl.window)
	previous := current.Add(-rl.window)

	curr, prev, err := rl.counter.Get(key, current, previous)
	if err != nil {
		// The local counter never fails; a shared one failing must not lock
		// everybody out.
		return Result{Allowed: true}
	}

	// Weight the previous window by how much of it still overlaps.
	overlap := float64(rl.window-now.Sub(current)) / float64(rl.window)
	rate := float64(prev)*overlap + float64(curr)
	if rate >= float64(rl.limit) {
		return Result{
			Allowed: false,
			Reason:  fmt.Sprintf("rate limit exceeded: %d/%s", rl.limit, rl.window),
			Guard:   "rate_limiter",
		}
	}

	_ = rl.counter.IncrementBy(key, current, 1)
	return Result{Allowed: true}
}
