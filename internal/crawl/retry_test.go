package crawl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestShouldRetryTransientOnly(t *testing.T) {
	t.Parallel()

	p := &ExponentialRetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond}

	transient := &FetchError{URL: "http://x", Err: errors.New("connection reset")}
	require.True(t, p.ShouldRetry(transient, 0))

	// The server answered; a 404 will not improve on retry.
	notFound := &FetchError{URL: "http://x", StatusCode: 404}
	require.False(t, p.ShouldRetry(notFound, 0))

	require.False(t, p.ShouldRetry(ErrNoObservationTable, 0))
	require.False(t, p.ShouldRetry(&ParseError{URL: "http://x", Reason: "bad markup"}, 0))
	require.False(t, p.ShouldRetry(context.Canceled, 0))
	require.False(t, p.ShouldRetry(nil, 0))
}

func TestShouldRetryRespectsMaxRetries(t *testing.T) {
	t.Parallel()

	p := &ExponentialRetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond}
	transient := &FetchError{URL: "http://x", Err: errors.New("timeout")}

	require.True(t, p.ShouldRetry(transient, 0))
	require.True(t, p.ShouldRetry(transient, 1))
	require.False(t, p.ShouldRetry(transient, 2))
}

func TestBackoffIsBounded(t *testing.T) {
	t.Parallel()

	p := &ExponentialRetryPolicy{MaxRetries: 10, BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second}

	for attempt := 0; attempt < 10; attempt++ {
		d := p.Backoff(attempt)
		require.GreaterOrEqual(t, d, time.Duration(0))
		require.LessOrEqual(t, d, time.Second)
	}
}

func TestFetchWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	p := &ExponentialRetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	attempts := 0
	err := fetchWithRetry(context.Background(), p, func() error {
		attempts++
		if attempts <= 2 {
			return &FetchError{URL: "http://x", Err: errors.New("transient")}
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

func TestFetchWithRetryGivesUp(t *testing.T) {
	t.Parallel()

	p := &ExponentialRetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	attempts := 0
	err := fetchWithRetry(context.Background(), p, func() error {
		attempts++
		return &FetchError{URL: "http://x", Err: errors.New("still down")}
	})

	require.Error(t, err)
	require.Equal(t, 3, attempts) // first try + two retries
}

func TestFetchWithRetryNeverRetriesSentinel(t *testing.T) {
	t.Parallel()

	p := NewExponentialRetryPolicy()

	attempts := 0
	err := fetchWithRetry(context.Background(), p, func() error {
		attempts++
		return ErrNoObservationTable
	})

	require.ErrorIs(t, err, ErrNoObservationTable)
	require.Equal(t, 1, attempts)
}

func TestFetchWithRetryNilPolicy(t *testing.T) {
	t.Parallel()

	attempts := 0
	err := fetchWithRetry(context.Background(), nil, func() error {
		attempts++
		return errors.New("boom")
	})

	require.Error(t, err)
	require.Equal(t, 1, attempts)
}
