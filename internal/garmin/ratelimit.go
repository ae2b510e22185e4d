package garmin

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Conservative request budget for the Connect API:
// - 60 requests per minute
// - 10000 requests per day

// RateLimiter manages Garmin Connect API request pacing
type RateLimiter struct {
	mu sync.Mutex

	// Per-minute window
	minuteLimit    int
	minuteUsage    int
	minuteResetsAt time.Time

	// Daily window
	dailyLimit    int
	dailyUsage    int
	dailyResetsAt time.Time

	// Minimum interval between requests
	minInterval time.Duration
	lastRequest time.Time
}

// NewRateLimiter creates a new rate limiter with default limits
func NewRateLimiter() *RateLimiter {
	now := time.Now()
	return &RateLimiter{
		minuteLimit:    60,
		minuteResetsAt: now.Add(time.Minute),
		dailyLimit:     10000,
		dailyResetsAt:  now.Truncate(24 * time.Hour).Add(24 * time.Hour),
		minInterval:    200 * time.Millisecond,
	}
}

// Wait blocks until a request can be made without exceeding rate limits
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()

	// Reset windows if expired
	if now.After(r.minuteResetsAt) {
		r.minuteUsage = 0
		r.minuteResetsAt = now.Add(time.Minute)
	}
	if now.After(r.dailyResetsAt) {
		r.dailyUsage = 0
		r.dailyResetsAt = now.Truncate(24 * time.Hour).Add(24 * time.Hour)
	}

	// Check per-minute limit. The lock is dropped while sleeping and must
	// be re-acquired on every exit path so the deferred unlock stays paired.
	if r.minuteUsage >= r.minuteLimit {
		waitTime := time.Until(r.minuteResetsAt)
		r.mu.Unlock()
		select {
		case <-time.After(waitTime):
		case <-ctx.Done():
			r.mu.Lock()
			return ctx.Err()
		}
		r.mu.Lock()
		r.minuteUsage = 0
		r.minuteResetsAt = time.Now().Add(time.Minute)
	}

	// Check daily limit
	if r.dailyUsage >= r.dailyLimit {
		waitTime := time.Until(r.dailyResetsAt)
		r.mu.Unlock()
		select {
		case <-time.After(waitTime):
		case <-ctx.Done():
			r.mu.Lock()
			return ctx.Err()
		}
		r.mu.Lock()
		r.dailyUsage = 0
		r.dailyResetsAt = time.Now().Truncate(24 * time.Hour).Add(24 * time.Hour)
	}

	// Enforce minimum interval between requests
	elapsed := time.Since(r.lastRequest)
	if elapsed < r.minInterval {
		waitTime := r.minInterval - elapsed
		r.mu.Unlock()
		select {
		case <-time.After(waitTime):
		case <-ctx.Done():
			r.mu.Lock()
			return ctx.Err()
		}
		r.mu.Lock()
	}

	r.minuteUsage++
	r.dailyUsage++
	r.lastRequest = time.Now()

	return nil
}

// UpdateFromHeaders updates limits from standard rate limit headers
// when the platform returns them.
func (r *RateLimiter) UpdateFromHeaders(h http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit := h.Get("X-RateLimit-Limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			r.minuteLimit = n
		}
	}
	if remaining := h.Get("X-RateLimit-Remaining"); remaining != "" {
		if n, err := strconv.Atoi(remaining); err == nil {
			usage := r.minuteLimit - n
			if usage >= 0 {
				r.minuteUsage = usage
			}
		}
	}
}

// Status returns current rate limit status
func (r *RateLimiter) Status() (minuteRemaining, dailyRemaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.minuteLimit - r.minuteUsage, r.dailyLimit - r.dailyUsage
}
