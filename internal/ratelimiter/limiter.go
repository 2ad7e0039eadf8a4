package ratelimiter

import (
	"golang.org/x/time/rate"
)

// ProbeLimiter is a single token bucket shared by every dependency probe,
// so a burst of readiness checks cannot turn into a burst of database or
// bucket round trips. Burst equals the rate.
type ProbeLimiter struct {
	limiter *rate.Limiter
}

// New creates a ProbeLimiter allowing ratePerSec probes per second.
// A non-positive rate disables limiting.
func New(ratePerSec int) *ProbeLimiter {
	if ratePerSec <= 0 {
		return &ProbeLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	return &ProbeLimiter{limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec)}
}

// Allow reports whether a probe may run now. It never blocks.
func (pl *ProbeLimiter) Allow() bool {
	return pl.limiter.Allow()
}
