// Package retrylimit paces calls to a rate-limited API and retries the ones
// that fail with a rate-limit or server error.
//
//	lim := retrylimit.NewAdaptiveLimiter(40, 1, 40, 1, 0.5)
//	err := retrylimit.Do(ctx, lim, retrylimit.Config{Status: statusOf}, func() error {
//	    return createCommand()
//	})
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// AdaptiveLimiter is a rate limiter that slows down after rate-limit errors
// and speeds up again after a quiet period.
type AdaptiveLimiter struct {
	mu        sync.Mutex
	limiter   *rate.Limiter
	minLimit  rate.Limit
	maxLimit  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	lastError time.Time
}

// quietPeriod is how long after the last rate-limit error the limiter stays
// at its reduced rate.
const quietPeriod = 10 * time.Second

// NewAdaptiveLimiter returns a limiter starting at initial requests per
// second, kept within [lo, hi]. Each success adds stepUp; each rate-limit
// error multiplies the rate by stepDown.
func NewAdaptiveLimiter(initial, lo, hi, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	if lo <= 0 {
		lo = 1
	}
	if initial < lo {
		initial = lo
	}
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, 1),
		minLimit: lo,
		maxLimit: hi,
		stepUp:   stepUp,
		stepDown: stepDown,
	}
}

// Wait blocks until the next call may go out or ctx is done.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success records a successful call.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastError) > quietPeriod {
		a.setLimit(a.limiter.Limit() + a.stepUp)
	}
}

// RateLimited records a rate-limit response.
func (a *AdaptiveLimiter) RateLimited() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = time.Now()
	a.setLimit(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// Limit returns the current rate in requests per second.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.limiter.Limit()
}

func (a *AdaptiveLimiter) setLimit(l rate.Limit) {
	l = min(max(l, a.minLimit), a.maxLimit)
	if l != a.limiter.Limit() {
		a.limiter.SetLimit(l)
	}
}

// Config controls Do.
type Config struct {
	// MaxAttempts defaults to 3.
	MaxAttempts int
	// InitialDelay defaults to 500ms and doubles up to MaxDelay.
	InitialDelay time.Duration
	// MaxDelay defaults to 10s.
	MaxDelay time.Duration
	// Status extracts an HTTP status code from an error, 0 when there is
	// none. Errors without a retryable status fail immediately.
	Status func(error) int
	Log    zerolog.Logger
}

func (c *Config) defaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = 500 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 10 * time.Second
	}
}

// ErrMaxAttempts is wrapped around the last error when all attempts failed.
var ErrMaxAttempts = errors.New("max attempts exceeded")

// Do calls fn, pacing each attempt with lim, and retries on 429 and 5xx
// responses with jittered exponential backoff. lim may be nil.
func Do(ctx context.Context, lim *AdaptiveLimiter, cfg Config, fn func() error) error {
	cfg.defaults()
	delay := cfg.InitialDelay

	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if lim != nil {
			if werr := lim.Wait(ctx); werr != nil {
				return werr
			}
		}

		err = fn()
		if err == nil {
			if lim != nil {
				lim.Success()
			}
			return nil
		}

		status := 0
		if cfg.Status != nil {
			status = cfg.Status(err)
		}
		switch {
		case status == http.StatusTooManyRequests:
			if lim != nil {
				lim.RateLimited()
			}
		case status >= 500 && status < 600:
		default:
			return err
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		wait := jitter(delay)
		cfg.Log.Warn().Err(err).Int("attempt", attempt).Int("status", status).Dur("wait", wait).Msg("retrying request")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		delay = min(delay*2, cfg.MaxDelay)
	}

	return fmt.Errorf("%w (%d): %w", ErrMaxAttempts, cfg.MaxAttempts, err)
}

// jitter adds up to 25% to d.
func jitter(d time.Duration) time.Duration {
	if d < 4 {
		return d
	}
	return d + time.Duration(rand.Int63n(int64(d/4)))
}
