// Package retrylimit paces bursts of API calls with an adaptive rate limit
// and retries transient failures with exponential backoff. The limiter speeds
// up while calls succeed and backs off when they fail, so a long fan-out
// (e.g. pushing state to many guilds) settles at whatever rate the remote
// end tolerates.
package retrylimit

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"golang.org/x/time/rate"
)

// AdaptiveLimiter adjusts its rate based on call outcomes: Success nudges
// the limit up by a fixed step, Failure multiplies it down. Safe for
// concurrent use.
type AdaptiveLimiter struct {
	limiter  *rate.Limiter
	min, max rate.Limit
	stepUp   rate.Limit
	stepDown float64
}

// NewAdaptiveLimiter starts at initial requests per second, bounded by
// [min, max]. stepUp is added per success; stepDown (e.g. 0.5) multiplies
// the rate per failure.
func NewAdaptiveLimiter(initial, min, max, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	if min < 1 {
		min = 1
	}
	if initial < min {
		initial = min
	}
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, 1),
		min:      min,
		max:      max,
		stepUp:   stepUp,
		stepDown: stepDown,
	}
}

// Wait blocks until the limiter admits a call or the context is done.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success raises the rate one step, up to the maximum.
func (a *AdaptiveLimiter) Success() {
	a.adjust(a.limiter.Limit() + a.stepUp)
}

// Failure cuts the rate, down to the minimum.
func (a *AdaptiveLimiter) Failure() {
	a.adjust(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// Limit reports the current rate in requests per second.
func (a *AdaptiveLimiter) Limit() float64 {
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) adjust(to rate.Limit) {
	if to > a.max {
		to = a.max
	}
	if to < a.min {
		to = a.min
	}
	if to != a.limiter.Limit() {
		a.limiter.SetLimit(to)
	}
}

// FatalError wraps an error that must not be retried.
type FatalError struct {
	Err error
}

func (f *FatalError) Error() string { return f.Err.Error() }
func (f *FatalError) Unwrap() error { return f.Err }

// Fatal marks err as non-retryable.
func Fatal(err error) error {
	return &FatalError{Err: err}
}

// Config controls retry behavior.
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool
	// Retryable decides whether an error is worth another attempt. Nil
	// means every non-fatal error is retried.
	Retryable func(error) bool
	// OnRetry, if set, is called before each backoff sleep.
	OnRetry func(attempt int, err error)
}

// DefaultConfig retries up to 5 times with jittered exponential backoff.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// WithRetry runs fn under the limiter with DefaultConfig.
func WithRetry(ctx context.Context, fn func() error, lim *AdaptiveLimiter) error {
	return WithRetryConfig(ctx, fn, lim, DefaultConfig())
}

// WithRetryConfig runs fn until it succeeds, returns a fatal or
// non-retryable error, exhausts attempts, or the context ends. Each
// attempt first waits on the limiter; outcomes feed the limiter's
// adaptation.
func WithRetryConfig(ctx context.Context, fn func() error, lim *AdaptiveLimiter, cfg Config) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}

	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return err
			}
		}

		err := fn()
		if err == nil {
			if lim != nil {
				lim.Success()
			}
			return nil
		}
		lastErr = err

		var fatal *FatalError
		if errors.As(err, &fatal) {
			return fatal.Err
		}
		if cfg.Retryable != nil && !cfg.Retryable(err) {
			return err
		}
		if lim != nil {
			lim.Failure()
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}

		sleep := delay
		if cfg.Jitter {
			sleep += time.Duration(rand.Int63n(int64(delay)/2 + 1))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return lastErr
}
