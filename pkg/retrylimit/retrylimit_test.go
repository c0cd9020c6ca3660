package retrylimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func fastConfig() Config {
	return Config{
		MaxAttempts:  4,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestWithRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, nil, fastConfig())

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	boom := errors.New("still broken")
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return boom
	}, nil, fastConfig())

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 4, calls)
}

func TestWithRetryStopsOnFatal(t *testing.T) {
	calls := 0
	boom := errors.New("unauthorized")
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return Fatal(boom)
	}, nil, fastConfig())

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestWithRetryHonorsClassifier(t *testing.T) {
	calls := 0
	cfg := fastConfig()
	cfg.Retryable = func(error) bool { return false }

	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return errors.New("not worth retrying")
	}, nil, cfg)

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetryConfig(ctx, func() error {
		return errors.New("transient")
	}, nil, fastConfig())

	assert.ErrorIs(t, err, context.Canceled)
}

func TestAdaptiveLimiterAdjustsWithinBounds(t *testing.T) {
	lim := NewAdaptiveLimiter(4, 1, 8, 2, 0.5)

	lim.Success()
	assert.Equal(t, 6.0, lim.Limit())
	lim.Success()
	lim.Success()
	assert.Equal(t, 8.0, lim.Limit()) // capped at max

	lim.Failure()
	assert.Equal(t, 4.0, lim.Limit())
	for i := 0; i < 10; i++ {
		lim.Failure()
	}
	assert.Equal(t, 1.0, lim.Limit()) // floored at min
}

func TestNewAdaptiveLimiterClampsInitial(t *testing.T) {
	lim := NewAdaptiveLimiter(0, 2, 8, 1, 0.5)
	assert.Equal(t, rate.Limit(2), rate.Limit(lim.Limit()))
}
