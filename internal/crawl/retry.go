package crawl

import (
	"context"
	"crypto/rand"
	"errors"
	"math"
	"math/big"
	"time"
)

// RetryPolicy decides whether a failed fetch is retried and how long to wait
// before the next attempt.
type RetryPolicy interface {
	ShouldRetry(err error, attempt int) bool
	Backoff(attempt int) time.Duration
}

// ExponentialRetryPolicy retries transient transport failures with jittered
// exponential backoff. Non-200 responses, missing-table sentinels, and parse
// failures are never retried: the server answered, it just did not answer
// with data.
type ExponentialRetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// NewExponentialRetryPolicy builds a policy with sane defaults.
func NewExponentialRetryPolicy() *ExponentialRetryPolicy {
	return &ExponentialRetryPolicy{
		MaxRetries: 3,
		BaseDelay:  250 * time.Millisecond,
		MaxDelay:   5 * time.Second,
	}
}

// ShouldRetry reports whether attempt+1 should be made after err.
func (p *ExponentialRetryPolicy) ShouldRetry(err error, attempt int) bool {
	if err == nil || attempt >= p.MaxRetries {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrNoObservationTable) {
		return false
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Transient()
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return false
	}
	return false
}

// Backoff returns the wait before the given retry attempt (0-based).
func (p *ExponentialRetryPolicy) Backoff(attempt int) time.Duration {
	delay := float64(p.BaseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	half := time.Duration(delay / 2)
	return half + randomJitter(half)
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	if err != nil {
		return limit / 2
	}
	return time.Duration(n.Int64())
}

// NoRetryPolicy disables retries entirely.
type NoRetryPolicy struct{}

// ShouldRetry always returns false.
func (NoRetryPolicy) ShouldRetry(error, int) bool { return false }

// Backoff always returns zero.
func (NoRetryPolicy) Backoff(int) time.Duration { return 0 }

// fetchWithRetry runs fn under the policy, sleeping the backoff between
// attempts. The last error is returned when the policy gives up.
func fetchWithRetry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	if policy == nil {
		policy = NoRetryPolicy{}
	}
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !policy.ShouldRetry(err, attempt) {
			return err
		}
		timer := time.NewTimer(policy.Backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
