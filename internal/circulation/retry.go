package circulation

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/snnyvrz/locallibrary/internal/apperr"
)

const (
	defaultMaxAttempts  = 6
	defaultBaseDelay    = 10 * time.Millisecond
	defaultJitterFactor = 0.3
)

var (
	ErrInvalidMaxAttempts  = errors.New("max attempts must be positive")
	ErrNegativeBaseDelay   = errors.New("base delay must not be negative")
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

type retryConfig struct {
	maxAttempts  int
	baseDelay    time.Duration
	jitterFactor float64
}

// RetryOption configures retry behavior.
type RetryOption func(*retryConfig) error

func WithMaxAttempts(attempts int) RetryOption {
	return func(c *retryConfig) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		c.maxAttempts = attempts
		return nil
	}
}

func WithBaseDelay(delay time.Duration) RetryOption {
	return func(c *retryConfig) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}
		c.baseDelay = delay
		return nil
	}
}

func WithJitterFactor(factor float64) RetryOption {
	return func(c *retryConfig) error {
		if factor < 0 || factor > 1 {
			return ErrInvalidJitterFactor
		}
		c.jitterFactor = factor
		return nil
	}
}

// retryOnConflict runs fn until it succeeds, fails with anything other than
// apperr.ErrConflict, or runs out of attempts. Delays double from the base
// delay with random jitter added.
func retryOnConflict(ctx context.Context, fn func(ctx context.Context) error, options ...RetryOption) (attempts int, err error) {
	cfg := &retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}
	for _, option := range options {
		if err := option(cfg); err != nil {
			return 0, err
		}
	}

	var lastErr error
	for attempt := 0; attempt < cfg.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := cfg.baseDelay * time.Duration(1<<(attempt-1))
			jitter := rand.Float64() * float64(delay) * cfg.jitterFactor //nolint:gosec // jitter only

			select {
			case <-time.After(delay + time.Duration(jitter)):
			case <-ctx.Done():
				return attempt, ctx.Err()
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil || !errors.Is(lastErr, apperr.ErrConflict) {
			return attempt + 1, lastErr
		}
	}

	return cfg.maxAttempts, lastErr
}
