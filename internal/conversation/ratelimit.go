package conversation

import (
	"sync"
	"time"
)

// RateLimiter tracks auto-response timestamps per phone number over a
// sliding one-hour window. Allow only reads; callers record a stamp
// after a successful send, so denied or failed attempts never consume
// budget.
type RateLimiter struct {
	mu      sync.Mutex
	limit   int
	stamps  map[string][]time.Time
	nowFunc func() time.Time
}

// NewRateLimiter caps auto-responses per phone number per trailing
// hour. A non-positive limit disables responses entirely.
func NewRateLimiter(limit int) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		stamps:  make(map[string][]time.Time),
		nowFunc: time.Now,
	}
}

// Allow reports whether another response to this number is within
// budget, pruning stamps older than an hour as a side effect.
func (r *RateLimiter) Allow(phone string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	recent := r.prune(phone)
	return len(recent) < r.limit
}

// Record registers one sent response for the number.
func (r *RateLimiter) Record(phone string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stamps[phone] = append(r.prune(phone), r.nowFunc())
}

func (r *RateLimiter) prune(phone string) []time.Time {
	cutoff := r.nowFunc().Add(-time.Hour)
	recent := r.stamps[phone][:0]
	for _, t := range r.stamps[phone] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	r.stamps[phone] = recent
	return recent
}
