package connection

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Retryer decides how long to wait between failed attempts of one request.
type Retryer interface {
	// NextDelay returns the delay before the next attempt.
	// retry is 0-based (0 before the second attempt, 1 before the third, etc.)
	// Returns the delay duration and whether to continue retrying
	NextDelay(retry int, lastErr error) (time.Duration, bool)
}

// ExponentialBackoffRetryer waits Factor * 2^retry seconds.
type ExponentialBackoffRetryer struct {
	// Factor is the delay before the first retry, in seconds
	Factor float64

	// MaxDelay caps the delay (0 for no cap)
	MaxDelay time.Duration

	// Jitter adds randomness to the delay to avoid thundering herd
	Jitter bool

	// JitterFactor is the maximum jitter as a fraction of the delay (0.0 to 1.0)
	JitterFactor float64
}

// NewExponentialBackoffRetryer creates an exponential backoff retryer without jitter or cap.
func NewExponentialBackoffRetryer(factor float64) *ExponentialBackoffRetryer {
	return &ExponentialBackoffRetryer{
		Factor: math.Max(0, factor),
	}
}

// NextDelay implements Retryer
func (r *ExponentialBackoffRetryer) NextDelay(retry int, lastErr error) (time.Duration, bool) {
	delay := r.Factor * math.Pow(2, float64(retry)) * float64(time.Second)

	if r.MaxDelay > 0 && delay > float64(r.MaxDelay) {
		delay = float64(r.MaxDelay)
	}

	if r.Jitter && r.JitterFactor > 0 {
		//nolint:gosec // math/rand is fine for jitter, not security-critical
		jitter := delay * r.JitterFactor * (2*rand.Float64() - 1) // -jitterFactor to +jitterFactor
		delay += jitter
		if delay < 0 {
			delay = 0
		}
	}

	return time.Duration(delay), true
}

// FixedDelayRetryer waits the same delay before every retry.
type FixedDelayRetryer struct {
	// Delay is the fixed delay between retries
	Delay time.Duration

	// MaxRetries stops retrying early (0 defers to the connection's MaxRetry)
	MaxRetries int
}

// NewFixedDelayRetryer creates a new fixed delay retryer
func NewFixedDelayRetryer(delay time.Duration, maxRetries int) *FixedDelayRetryer {
	return &FixedDelayRetryer{
		Delay:      delay,
		MaxRetries: maxRetries,
	}
}

// NextDelay implements Retryer
func (r *FixedDelayRetryer) NextDelay(retry int, lastErr error) (time.Duration, bool) {
	if r.MaxRetries > 0 && retry >= r.MaxRetries {
		return 0, false
	}
	return r.Delay, true
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
