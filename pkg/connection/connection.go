package connection

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gofrs/uuid"

	"github.com/rubika-bot/rubika.go/internal/codec"
	"github.com/rubika-bot/rubika.go/pkg/constants"
	"github.com/rubika-bot/rubika.go/pkg/logger"
)

// Connection issues requests against the Bot API for a single bot token.
//
// Connect must be called before Request, and Disconnect releases the
// underlying HTTP client. Request is safe for concurrent use; all
// concurrent requests share one *http.Client.
type Connection struct {
	token         string
	baseURL       string
	timeout       Timeout
	maxRetry      int
	backoffFactor float64
	proxy         *url.URL

	transport http.RoundTripper
	retryer   Retryer
	logger    logger.Logger
	metrics   *Metrics
	marshaler codec.Marshaler

	mu        sync.RWMutex
	client    *http.Client
	connected bool

	// sleep waits between attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a disconnected Connection from conf. It performs no I/O.
// A nil conf is treated as an empty Config, so every default applies.
func New(conf *Config) *Connection {
	if conf == nil {
		conf = &Config{}
	}
	c := conf.normalize()

	return &Connection{
		token:         c.Token,
		baseURL:       c.BaseURL,
		timeout:       c.Timeout,
		maxRetry:      c.MaxRetry,
		backoffFactor: c.BackoffFactor,
		proxy:         c.Proxy,
		transport:     c.Transport,
		retryer:       c.Retryer,
		logger:        c.Logger,
		metrics:       c.Metrics,
		marshaler:     c.Marshaler,
		sleep:         sleepContext,
	}
}

// BaseURL returns the URL prefix requests are sent under.
func (c *Connection) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-attempt timeout.
func (c *Connection) Timeout() Timeout {
	return c.timeout
}

// MaxRetry returns the number of attempts per request, at least 1.
func (c *Connection) MaxRetry() int {
	return c.maxRetry
}

// BackoffFactor returns the backoff factor in seconds.
func (c *Connection) BackoffFactor() float64 {
	return c.backoffFactor
}

// IsConnected reports whether Connect succeeded and Disconnect has not been called since.
func (c *Connection) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Connect creates the HTTP client requests are issued with.
// It fails with a *ConnectionError when already connected.
func (c *Connection) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return &ConnectionError{Op: "connect", Err: constants.ErrAlreadyConnected}
	}

	c.client = newHTTPClient(c.timeout, c.proxy, c.transport)
	c.connected = true

	c.logger.Debug("connection established", "base_url", c.baseURL)

	return nil
}

// Disconnect closes idle connections and drops the HTTP client. Requests
// already in flight finish on the client they started with.
// It fails with a *ConnectionError when not connected.
func (c *Connection) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return &ConnectionError{Op: "disconnect", Err: constants.ErrAlreadyDisconnected}
	}

	c.connected = false
	c.client.CloseIdleConnections()
	c.client = nil

	c.logger.Debug("connection closed", "base_url", c.baseURL)

	return nil
}

// RequestURL returns {baseURL}/{token}/{endpoint}. The endpoint is not validated.
func (c *Connection) RequestURL(endpoint string) string {
	return c.baseURL + "/" + c.token + "/" + endpoint
}

func (c *Connection) redactedURL(endpoint string) string {
	return c.baseURL + "/" + constants.RedactedToken + "/" + endpoint
}

// Post calls endpoint with payload as the JSON body.
func (c *Connection) Post(ctx context.Context, endpoint string, payload any) (Data, error) {
	return c.Request(ctx, endpoint, MethodPost, payload)
}

// Get calls endpoint without a body.
func (c *Connection) Get(ctx context.Context, endpoint string) (Data, error) {
	return c.Request(ctx, endpoint, MethodGet, nil)
}

// Request calls endpoint and returns the data field of the response envelope.
//
// Transport errors and non-2xx responses are retried up to MaxRetry attempts
// in total, waiting between attempts as decided by the Retryer. A response
// that is not a JSON object, or an envelope whose status is not OK, fails
// immediately with an *APIError. A non-nil payload is sent as the JSON body
// for both GET and POST.
//
// Only the per-attempt timeout is enforced; bound the whole call, retries
// and backoff included, with a deadline on ctx.
func (c *Connection) Request(ctx context.Context, endpoint string, method Method, payload any) (Data, error) {
	client, err := c.httpClient()
	if err != nil {
		return nil, err
	}

	if endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint is empty", constants.ErrInvalidRequest)
	}
	if !method.valid() {
		return nil, fmt.Errorf("%w: unsupported method %q", constants.ErrInvalidRequest, method)
	}

	var body []byte
	if payload != nil {
		body, err = c.marshaler.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: encoding payload: %v", constants.ErrInvalidRequest, err)
		}
	}

	start := time.Now()
	defer func() {
		c.metrics.observeDuration(endpoint, time.Since(start))
	}()

	requestURL := c.RequestURL(endpoint)
	fields := []any{
		"request_id", newRequestID(),
		"endpoint", endpoint,
		"method", string(method),
		"url", c.redactedURL(endpoint),
	}
	if payload != nil {
		fields = append(fields, "payload", payload)
	}

	var lastErr error
	attempts := 0

	for attempt := 1; attempt <= c.maxRetry; attempt++ {
		attempts = attempt
		c.logger.Debug("sending request", append(fields, "attempt", attempt, "max_attempts", c.maxRetry)...)

		req, err := newRequest(ctx, method, requestURL, body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", constants.ErrInvalidRequest, err)
		}

		respBody, err := MakeRequest(client, req)
		if err == nil {
			return c.handleResponse(endpoint, respBody)
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			c.metrics.observeAttempt(endpoint, OutcomeCanceled)
			return nil, fmt.Errorf("[%s] %w", endpoint, ctxErr)
		}

		lastErr = err
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			c.metrics.observeAttempt(endpoint, OutcomeHTTPStatus)
			c.logger.Error("HTTP status error",
				"endpoint", endpoint,
				"status_code", statusErr.StatusCode,
				"body", truncate(statusErr.Body),
				"attempt", attempt,
				"max_attempts", c.maxRetry,
			)
		} else {
			c.metrics.observeAttempt(endpoint, OutcomeTransport)
			c.logger.Warn("network error",
				"endpoint", endpoint,
				"error", err,
				"attempt", attempt,
				"max_attempts", c.maxRetry,
			)
		}

		if attempt == c.maxRetry {
			break
		}

		delay, ok := c.retryer.NextDelay(attempt-1, err)
		if !ok {
			break
		}

		c.logger.Debug("waiting before retrying", "endpoint", endpoint, "delay", delay.String())
		if err := c.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("[%s] %w", endpoint, err)
		}
	}

	c.metrics.observeExhausted(endpoint)
	apiErr := &APIError{
		Kind:     KindRetriesExhausted,
		Endpoint: endpoint,
		Attempts: attempts,
		Err:      lastErr,
	}
	c.logger.Error("request failed", "endpoint", endpoint, "attempts", attempts, "error", apiErr)

	return nil, apiErr
}

// handleResponse validates the envelope of a 2xx response. Its failures are
// final: the server answered, so another attempt would not help.
func (c *Connection) handleResponse(endpoint string, body []byte) (Data, error) {
	env, err := parseEnvelope(body)
	if err != nil {
		c.metrics.observeAttempt(endpoint, OutcomeMalformed)
		c.logger.Warn("invalid response from Bot API", "endpoint", endpoint, "body", truncate(body))
		return nil, &APIError{Kind: KindMalformedResponse, Endpoint: endpoint, Err: err}
	}

	if !env.ok() {
		c.metrics.observeAttempt(endpoint, OutcomeAPIStatus)
		c.logger.Error("API error", "endpoint", endpoint, "status", env.status, "message", env.devMessage)
		return nil, &APIError{
			Kind:     KindStatus,
			Endpoint: endpoint,
			Status:   env.status,
			Message:  env.devMessage,
		}
	}

	c.metrics.observeAttempt(endpoint, OutcomeOK)
	return env.data, nil
}

// httpClient returns the client of a connected Connection.
func (c *Connection) httpClient() (*http.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return nil, &ConnectionError{Op: "request", Err: constants.ErrNotConnected}
	}
	return c.client, nil
}

func newRequestID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return ""
	}
	return id.String()
}
