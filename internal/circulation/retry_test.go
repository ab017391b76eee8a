package circulation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/snnyvrz/locallibrary/internal/apperr"
	"github.com/stretchr/testify/assert"
)

func Test_retryOnConflict_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	attempts, err := retryOnConflict(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return fmt.Errorf("save: %w", apperr.ErrConflict)
		}
		return nil
	}, WithBaseDelay(time.Millisecond))

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, calls)
}

func Test_retryOnConflict_FailsFastOnOtherErrors(t *testing.T) {
	calls := 0
	_, err := retryOnConflict(context.Background(), func(ctx context.Context) error {
		calls++
		return apperr.ErrNotAvailable
	})

	assert.ErrorIs(t, err, apperr.ErrNotAvailable)
	assert.Equal(t, 1, calls)
}

func Test_retryOnConflict_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	attempts, err := retryOnConflict(context.Background(), func(ctx context.Context) error {
		calls++
		return apperr.ErrConflict
	}, WithMaxAttempts(2), WithBaseDelay(0))

	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 2, calls)
}

func Test_retryOnConflict_RejectsBadOptions(t *testing.T) {
	noop := func(ctx context.Context) error { return nil }

	_, err := retryOnConflict(context.Background(), noop, WithMaxAttempts(0))
	assert.True(t, errors.Is(err, ErrInvalidMaxAttempts))

	_, err = retryOnConflict(context.Background(), noop, WithJitterFactor(1.5))
	assert.True(t, errors.Is(err, ErrInvalidJitterFactor))

	_, err = retryOnConflict(context.Background(), noop, WithBaseDelay(-time.Second))
	assert.True(t, errors.Is(err, ErrNegativeBaseDelay))
}
