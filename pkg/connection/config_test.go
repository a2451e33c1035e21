package connection

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubika-bot/rubika.go/pkg/constants"
	"github.com/rubika-bot/rubika.go/pkg/logger"
)

func TestNewConfig(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		conf := NewConfig("token")

		assert.Equal(t, "token", conf.Token)
		assert.Equal(t, constants.DefaultBaseURL, conf.BaseURL)
		assert.Equal(t, Timeout{Total: 10 * time.Second}, conf.Timeout)
		assert.Equal(t, 3, conf.MaxRetry)
		assert.Equal(t, 0.5, conf.BackoffFactor)
		assert.Nil(t, conf.Proxy)
		assert.NotNil(t, conf.Logger)
		assert.NotNil(t, conf.Marshaler)
	})

	t.Run("with options", func(t *testing.T) {
		l := logger.New(slog.NewTextHandler(new(bytes.Buffer), nil))
		proxy := mustParseURL("http://127.0.0.1:3128")
		retryer := NewFixedDelayRetryer(time.Second, 0)

		conf := NewConfig("token",
			WithBaseURL("https://example.test/v3"),
			WithTimeout(5*time.Second),
			WithMaxRetry(7),
			WithBackoffFactor(1.5),
			WithProxy(proxy),
			WithLogger(l),
			WithRetryer(retryer),
		)

		assert.Equal(t, "https://example.test/v3", conf.BaseURL)
		assert.Equal(t, Timeout{Total: 5 * time.Second}, conf.Timeout)
		assert.Equal(t, 7, conf.MaxRetry)
		assert.Equal(t, 1.5, conf.BackoffFactor)
		assert.Same(t, proxy, conf.Proxy)
		assert.Same(t, l, conf.Logger)
		assert.Same(t, retryer, conf.Retryer)
	})

	t.Run("structured timeout", func(t *testing.T) {
		timeout := Timeout{Total: 30 * time.Second, Connect: 2 * time.Second}
		conf := NewConfig("token", WithTimeoutConfig(timeout))
		assert.Equal(t, timeout, conf.Timeout)
	})
}

func TestTimeoutSeconds(t *testing.T) {
	assert.Equal(t, Timeout{Total: 2500 * time.Millisecond}, TimeoutSeconds(2.5))
	assert.Equal(t, Timeout{Total: 10 * time.Second}, TimeoutSeconds(10))
}

func TestNewClampsLimits(t *testing.T) {
	tests := []struct {
		name        string
		maxRetry    int
		backoff     float64
		wantRetry   int
		wantBackoff float64
	}{
		{name: "defaults kept", maxRetry: 3, backoff: 0.5, wantRetry: 3, wantBackoff: 0.5},
		{name: "zero retry means default", maxRetry: 0, backoff: 0, wantRetry: 3, wantBackoff: 0},
		{name: "negative retry clamped", maxRetry: -2, backoff: 1, wantRetry: 1, wantBackoff: 1},
		{name: "negative backoff clamped", maxRetry: 1, backoff: -3.5, wantRetry: 1, wantBackoff: 0},
		{name: "large values kept", maxRetry: 12, backoff: 4, wantRetry: 12, wantBackoff: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := New(NewConfig("token",
				WithMaxRetry(tt.maxRetry),
				WithBackoffFactor(tt.backoff),
				WithLogger(logger.Nop()),
			))

			assert.Equal(t, tt.wantRetry, conn.MaxRetry())
			assert.Equal(t, tt.wantBackoff, conn.BackoffFactor())
			assert.GreaterOrEqual(t, conn.MaxRetry(), 1)
			assert.GreaterOrEqual(t, conn.BackoffFactor(), 0.0)
			assert.False(t, conn.IsConnected())
		})
	}
}

func TestNewFromZeroConfig(t *testing.T) {
	conn := New(&Config{Token: "token", Logger: logger.Nop()})

	assert.Equal(t, constants.DefaultBaseURL, conn.BaseURL())
	assert.Equal(t, Timeout{Total: constants.DefaultHTTPTimeout}, conn.Timeout())
	assert.Equal(t, constants.DefaultMaxRetry, conn.MaxRetry())
	assert.Zero(t, conn.BackoffFactor())

	delay, ok := conn.retryer.NextDelay(0, nil)
	require.True(t, ok)
	assert.Zero(t, delay)
}

func TestNewNilConfig(t *testing.T) {
	var conn *Connection
	require.NotPanics(t, func() {
		conn = New(nil)
	})

	assert.Equal(t, constants.DefaultBaseURL, conn.BaseURL())
	assert.Equal(t, Timeout{Total: constants.DefaultHTTPTimeout}, conn.Timeout())
	assert.Equal(t, constants.DefaultMaxRetry, conn.MaxRetry())
	assert.False(t, conn.IsConnected())
	assert.Equal(t, constants.DefaultBaseURL+"//getMe", conn.RequestURL("getMe"))
}

func TestNewDoesNotMutateConfig(t *testing.T) {
	conf := &Config{Token: "token", MaxRetry: -1, BackoffFactor: -1, Logger: logger.Nop()}
	_ = New(conf)

	assert.Equal(t, -1, conf.MaxRetry)
	assert.Equal(t, -1.0, conf.BackoffFactor)
	assert.Empty(t, conf.BaseURL)
}
