package feishu

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(attempts int) Policy {
	return Policy{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond}
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, time.Second, backoff(time.Second, 10*time.Second, 0))
	assert.Equal(t, 2*time.Second, backoff(time.Second, 10*time.Second, 1))
	assert.Equal(t, 8*time.Second, backoff(time.Second, 10*time.Second, 3))
	assert.Equal(t, 10*time.Second, backoff(time.Second, 10*time.Second, 4))
	assert.Equal(t, 10*time.Second, backoff(time.Second, 10*time.Second, 60))
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastPolicy(3), IsRetryable, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &APIError{StatusCode: 503}
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestDo_ReturnsLastErrorWhenExhausted(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastPolicy(2), IsRetryable, func(context.Context) (int, error) {
		calls++
		return 0, &NetworkError{Op: "get", Err: errors.New("reset")}
	})
	var ne *NetworkError
	assert.ErrorAs(t, err, &ne)
	assert.Equal(t, 2, calls)
}

func TestRetry_NonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastPolicy(5), IsRetryable, func(context.Context) error {
		calls++
		return &NotFoundError{Code: CodeDocNotFound}
	})
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
	assert.Equal(t, 1, calls)
}

func TestRetry_CancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{MaxAttempts: 3, InitialDelay: time.Hour, MaxDelay: time.Hour}

	err := Retry(ctx, p, IsRetryable, func(context.Context) error {
		cancel()
		return &APIError{StatusCode: 500}
	})
	assert.ErrorIs(t, err, context.Canceled)
}
