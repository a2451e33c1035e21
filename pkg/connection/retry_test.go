package connection

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoffRetryer(t *testing.T) {
	t.Run("default factor", func(t *testing.T) {
		retryer := NewExponentialBackoffRetryer(0.5)

		delay, shouldRetry := retryer.NextDelay(0, nil)
		assert.True(t, shouldRetry)
		assert.Equal(t, 500*time.Millisecond, delay)

		delay, shouldRetry = retryer.NextDelay(1, nil)
		assert.True(t, shouldRetry)
		assert.Equal(t, 1*time.Second, delay)

		delay, shouldRetry = retryer.NextDelay(2, nil)
		assert.True(t, shouldRetry)
		assert.Equal(t, 2*time.Second, delay)
	})

	t.Run("zero factor", func(t *testing.T) {
		retryer := NewExponentialBackoffRetryer(0)

		for retry := 0; retry < 5; retry++ {
			delay, shouldRetry := retryer.NextDelay(retry, nil)
			assert.True(t, shouldRetry)
			assert.Zero(t, delay)
		}
	})

	t.Run("negative factor", func(t *testing.T) {
		retryer := NewExponentialBackoffRetryer(-1)
		assert.Zero(t, retryer.Factor)
	})

	t.Run("with max delay", func(t *testing.T) {
		retryer := &ExponentialBackoffRetryer{
			Factor:   0.1,
			MaxDelay: 1 * time.Second,
		}

		delay, _ := retryer.NextDelay(3, nil)
		assert.Equal(t, 800*time.Millisecond, delay)

		delay, _ = retryer.NextDelay(4, nil)
		assert.Equal(t, 1*time.Second, delay)

		delay, _ = retryer.NextDelay(10, nil)
		assert.Equal(t, 1*time.Second, delay)
	})

	t.Run("with jitter", func(t *testing.T) {
		retryer := &ExponentialBackoffRetryer{
			Factor:       1,
			Jitter:       true,
			JitterFactor: 0.3,
		}

		for i := 0; i < 10; i++ {
			delay, shouldRetry := retryer.NextDelay(0, errors.New("boom"))
			assert.True(t, shouldRetry)
			assert.GreaterOrEqual(t, delay, 700*time.Millisecond) // 1s - 30% jitter
			assert.LessOrEqual(t, delay, 1300*time.Millisecond)   // 1s + 30% jitter
		}
	})
}

func TestFixedDelayRetryer(t *testing.T) {
	t.Run("unlimited", func(t *testing.T) {
		retryer := NewFixedDelayRetryer(250*time.Millisecond, 0)

		for retry := 0; retry < 5; retry++ {
			delay, shouldRetry := retryer.NextDelay(retry, nil)
			assert.True(t, shouldRetry)
			assert.Equal(t, 250*time.Millisecond, delay)
		}
	})

	t.Run("with max retries", func(t *testing.T) {
		retryer := NewFixedDelayRetryer(time.Second, 2)

		_, shouldRetry := retryer.NextDelay(0, nil)
		assert.True(t, shouldRetry)
		_, shouldRetry = retryer.NextDelay(1, nil)
		assert.True(t, shouldRetry)
		_, shouldRetry = retryer.NextDelay(2, nil)
		assert.False(t, shouldRetry)
	})
}
