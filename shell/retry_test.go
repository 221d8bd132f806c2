package shell

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openshelf/circulation-engine-go/circulation"
)

func Test_RetryWithExponentialBackoff_Success_NoRetries(t *testing.T) {
	ctx := context.Background()
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		return nil // Success on the first attempt
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn)

	assert.NoError(t, err)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, 1, meta.Attempts)
	assert.Equal(t, time.Duration(0), meta.TotalDelay)
	assert.Equal(t, "none", meta.LastErrorType)
	assert.False(t, meta.RetriesExhausted)
}

func Test_RetryWithExponentialBackoff_RetryOnConcurrencyConflict(t *testing.T) {
	ctx := context.Background()
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		if callCount < 3 {
			return circulation.ErrConcurrencyConflict // Fail twice
		}
		return nil // Success on the third attempt
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn)

	assert.NoError(t, err)
	assert.Equal(t, 3, callCount)
	assert.Equal(t, 3, meta.Attempts)
	assert.Greater(t, meta.TotalDelay, time.Duration(0))
	assert.Equal(t, "none", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_NonRetryableErrorFailsFast(t *testing.T) {
	ctx := context.Background()
	callCount := 0
	businessErr := circulation.IneligibleError("borrowing limit reached: %d of %d books issued", 5, 5)

	fn := func(_ context.Context) error {
		callCount++
		return businessErr
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn)

	assert.ErrorIs(t, err, circulation.ErrIneligible)
	assert.Equal(t, 1, callCount, "Business errors must not be retried")
	assert.Equal(t, 1, meta.Attempts)
	assert.Equal(t, "other", meta.LastErrorType)
	assert.False(t, meta.RetriesExhausted)
}

func Test_RetryWithExponentialBackoff_ExhaustsAttemptsOnPersistentConflict(t *testing.T) {
	ctx := context.Background()
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		return circulation.ErrConcurrencyConflict
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn,
		WithMaxAttempts(3),
		WithBaseDelay(time.Millisecond),
	)

	assert.ErrorIs(t, err, circulation.ErrConcurrencyConflict)
	assert.Equal(t, 3, callCount)
	assert.Equal(t, 3, meta.Attempts)
	assert.Equal(t, "concurrency_conflict", meta.LastErrorType)
	assert.True(t, meta.RetriesExhausted)
}

func Test_RetryWithExponentialBackoff_WithAllOptions(t *testing.T) {
	ctx := context.Background()
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		if callCount < 2 {
			return circulation.ErrConcurrencyConflict
		}
		return nil
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn,
		WithMaxAttempts(3),
		WithBaseDelay(5*time.Millisecond),
		WithJitterFactor(0.1),
	)

	assert.NoError(t, err)
	assert.Equal(t, 2, callCount)
	assert.Equal(t, 2, meta.Attempts)
	assert.Greater(t, meta.TotalDelay, time.Duration(0))
	assert.Equal(t, "none", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_ContextCancellationStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		cancel() // Cancel while the backoff delay is pending
		return circulation.ErrConcurrencyConflict
	}

	_, err := RetryWithExponentialBackoff(ctx, fn, WithBaseDelay(50*time.Millisecond))

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, callCount)
}

func Test_RetryWithExponentialBackoff_InvalidOptions(t *testing.T) {
	ctx := context.Background()
	fn := func(_ context.Context) error { return nil }

	// Test invalid max attempts
	_, err := RetryWithExponentialBackoff(ctx, fn, WithMaxAttempts(0))
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)

	// Test negative base delay
	_, err = RetryWithExponentialBackoff(ctx, fn, WithBaseDelay(-1*time.Second))
	assert.ErrorIs(t, err, ErrNegativeBaseDelay)

	// Test invalid jitter factor
	_, err = RetryWithExponentialBackoff(ctx, fn, WithJitterFactor(1.5))
	assert.ErrorIs(t, err, ErrInvalidJitterFactor)

	// Test nil metrics collector
	_, err = RetryWithExponentialBackoff(ctx, fn, WithMetrics(nil, "IssueBookCopy"))
	assert.ErrorIs(t, err, ErrNilMetricsCollector)

	// Test empty command type
	_, err = RetryWithExponentialBackoff(ctx, fn, WithMetrics(noopCollector{}, ""))
	assert.ErrorIs(t, err, ErrEmptyCommandType)
}

type noopCollector struct{}

func (noopCollector) RecordDuration(string, time.Duration, map[string]string) {}
func (noopCollector) IncrementCounter(string, map[string]string)              {}
func (noopCollector) RecordValue(string, float64, map[string]string)          {}
