package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brennhill/calibrator/internal/coreerr"
)

func TestWithRetry_SuccessOnSecondAttempt(t *testing.T) {
	t.Parallel()
	calls := 0
	var sleeps []time.Duration

	value, err := WithRetry(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, coreerr.New(coreerr.KindTimeout, "timed out")
		}
		return 42, nil
	}, Options{
		MaxRetries: Retries(2),
		Sleep:      func(d time.Duration) { sleeps = append(sleeps, d) },
	})

	require.NoError(t, err)
	assert.Equal(t, 42, value)
	assert.Equal(t, 2, calls)
	require.Len(t, sleeps, 1)
	assert.Equal(t, 1500*time.Millisecond, sleeps[0])
}

func TestWithRetry_FatalBypassesRetry(t *testing.T) {
	t.Parallel()
	calls := 0
	sleptAt := 0

	_, err := WithRetry(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		return 0, coreerr.New(coreerr.KindBrowserCrash, "crashed")
	}, Options{
		MaxRetries: Retries(2),
		Sleep:      func(d time.Duration) { sleptAt++ },
	})

	require.Error(t, err)
	assert.Equal(t, coreerr.KindBrowserCrash, coreerr.KindOf(err))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, sleptAt)
}

func TestWithRetry_PropertyRetryCounts(t *testing.T) {
	t.Parallel()
	for _, n := range []int{0, 1, 2, 4} {
		calls := 0
		sleeps := 0
		_, err := WithRetry(context.Background(), func(ctx context.Context) (int, error) {
			calls++
			return 0, coreerr.New(coreerr.KindTimeout, "always fails")
		}, Options{
			MaxRetries: Retries(n),
			Sleep:      func(time.Duration) { sleeps++ },
		})
		require.Error(t, err)
		assert.Equal(t, n+1, calls, "maxRetries=%d", n)
		assert.Equal(t, n, sleeps, "maxRetries=%d", n)
		assert.Equal(t, coreerr.KindRetryExhausted, coreerr.KindOf(err))
	}
}

func TestWithRetry_OptionalExhaustionSkips(t *testing.T) {
	t.Parallel()
	_, err := WithRetry(context.Background(), func(ctx context.Context) (int, error) {
		return 0, coreerr.New(coreerr.KindLocatorNotFound, "not found")
	}, Options{MaxRetries: Retries(0), Optional: true, Sleep: func(time.Duration) {}})

	require.Error(t, err)
	assert.Equal(t, coreerr.KindRetrySkipped, coreerr.KindOf(err))
}

func TestWithRetryResult_WrapsOutcome(t *testing.T) {
	t.Parallel()
	res := WithRetryResult(context.Background(), func(ctx context.Context) (string, error) {
		return "ok", nil
	}, Options{Sleep: func(time.Duration) {}})
	assert.True(t, res.Success)
	assert.Equal(t, "ok", res.Value)
}

func TestWithRetry_EmitsAttemptAndExhaustedEvents(t *testing.T) {
	t.Parallel()
	var events []string
	_, _ = WithRetry(context.Background(), func(ctx context.Context) (int, error) {
		return 0, coreerr.New(coreerr.KindTimeout, "fail")
	}, Options{
		MaxRetries: Retries(1),
		Sleep:      func(time.Duration) {},
		Emit:       func(event string, fields map[string]any) { events = append(events, event) },
	})
	assert.Equal(t, []string{"retry_attempt", "retry_exhausted"}, events)
}
