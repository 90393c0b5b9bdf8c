package crawler

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/masahif/sitescribe/internal/config"
)

// NewPacer returns the pacer for the configured mode
func NewPacer(mode string, delay time.Duration) Pacer {
	if mode == config.PacingInterval {
		return NewRateLimiter(delay)
	}
	return NewSleepPacer(delay)
}

// SleepPacer sleeps a fixed delay between fetches, so the effective
// spacing is delay plus the fetch latency. The first Wait does not sleep.
type SleepPacer struct {
	mu      sync.Mutex
	delay   time.Duration
	started bool
}

// NewSleepPacer creates a flat sleep pacer
func NewSleepPacer(delay time.Duration) *SleepPacer {
	return &SleepPacer{delay: delay}
}

// Wait sleeps for the delay or until ctx is done
func (s *SleepPacer) Wait(ctx context.Context) error {
	s.mu.Lock()
	first := !s.started
	s.started = true
	delay := s.delay
	s.mu.Unlock()

	if first || delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Delay returns the current delay
func (s *SleepPacer) Delay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delay
}

// SetDelay changes the delay
func (s *SleepPacer) SetDelay(delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = delay
}

// RateLimiter keeps fetch starts at least delay apart, measured from the
// previous fetch start, using a token bucket of size one.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	delay   time.Duration
}

// NewRateLimiter creates a new measured-interval pacer
func NewRateLimiter(delay time.Duration) *RateLimiter {
	r := &RateLimiter{}
	r.SetDelay(delay)
	return r
}

// Wait blocks until the next fetch may start
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	limiter := r.limiter
	r.mu.Unlock()

	return limiter.Wait(ctx)
}

// Delay returns the current interval
func (r *RateLimiter) Delay() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.delay
}

// SetDelay changes the interval. The first Wait after construction takes
// the single token and returns immediately; later ones wait out the interval.
func (r *RateLimiter) SetDelay(delay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.delay = delay
	if delay <= 0 {
		r.limiter = rate.NewLimiter(rate.Inf, 1)
		return
	}
	if r.limiter == nil {
		r.limiter = rate.NewLimiter(rate.Every(delay), 1)
		return
	}
	r.limiter.SetLimit(rate.Every(delay))
}

// delayAdjuster is implemented by pacers whose delay can be raised at runtime
type delayAdjuster interface {
	Delay() time.Duration
	SetDelay(time.Duration)
}

var (
	_ Pacer         = (*SleepPacer)(nil)
	_ Pacer         = (*RateLimiter)(nil)
	_ delayAdjuster = (*SleepPacer)(nil)
	_ delayAdjuster = (*RateLimiter)(nil)
)
