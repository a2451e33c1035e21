package connection

import (
	"net/http"
	"net/url"
	"time"

	"github.com/rubika-bot/rubika.go/internal/codec"
	"github.com/rubika-bot/rubika.go/pkg/constants"
	"github.com/rubika-bot/rubika.go/pkg/logger"
)

// Timeout is the structured per-attempt timeout descriptor.
// Zero fields leave the corresponding net/http default in place.
type Timeout struct {
	// Total bounds one attempt end to end, including reading the body.
	Total time.Duration
	// Connect bounds dialing the TCP connection.
	Connect time.Duration
	// TLSHandshake bounds the TLS handshake.
	TLSHandshake time.Duration
	// ResponseHeader bounds waiting for response headers once the request is written.
	ResponseHeader time.Duration
}

// TimeoutSeconds returns a Timeout whose Total is the given number of seconds.
func TimeoutSeconds(seconds float64) Timeout {
	return Timeout{Total: time.Duration(seconds * float64(time.Second))}
}

// Config holds everything a Connection is constructed from.
//
// It is recommended to create a Config with NewConfig, which fills every
// default. Fields left at their zero value are defaulted by New as well,
// except BackoffFactor where zero is a meaningful "retry immediately".
type Config struct {
	// Token identifies the bot and is embedded in every request URL.
	Token string
	// BaseURL defaults to constants.DefaultBaseURL.
	BaseURL string
	Timeout Timeout
	// MaxRetry is the number of attempts per request. Values below 1 are clamped to 1.
	MaxRetry int
	// BackoffFactor scales the exponential delay between attempts, in seconds.
	// Negative values are clamped to 0.
	BackoffFactor float64
	// Proxy routes every request through the given proxy when set.
	// http, https and socks5 schemes are supported.
	Proxy *url.URL

	Logger logger.Logger
	// Transport replaces the transport built from Timeout and Proxy.
	Transport http.RoundTripper
	// Retryer overrides the delay policy derived from BackoffFactor.
	Retryer   Retryer
	Metrics   *Metrics
	Marshaler codec.Marshaler
}

// Option configures a Config.
type Option func(*Config)

// NewConfig creates a Config for the bot identified by token with all
// defaults applied, then applies opts in order.
func NewConfig(token string, opts ...Option) *Config {
	conf := &Config{
		Token:         token,
		BaseURL:       constants.DefaultBaseURL,
		Timeout:       Timeout{Total: constants.DefaultHTTPTimeout},
		MaxRetry:      constants.DefaultMaxRetry,
		BackoffFactor: constants.DefaultBackoffFactor,
		Logger:        logger.Default(),
		Marshaler:     codec.JSON{},
	}

	for _, opt := range opts {
		opt(conf)
	}

	return conf
}

// WithBaseURL overrides the API origin.
func WithBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.BaseURL = baseURL
	}
}

// WithTimeout sets the total per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = Timeout{Total: d}
	}
}

// WithTimeoutConfig sets the structured per-attempt timeout.
func WithTimeoutConfig(t Timeout) Option {
	return func(c *Config) {
		c.Timeout = t
	}
}

// WithMaxRetry sets the number of attempts per request.
func WithMaxRetry(n int) Option {
	return func(c *Config) {
		c.MaxRetry = n
	}
}

// WithBackoffFactor sets the backoff factor in seconds.
func WithBackoffFactor(f float64) Option {
	return func(c *Config) {
		c.BackoffFactor = f
	}
}

// WithProxy routes requests through proxy.
func WithProxy(proxy *url.URL) Option {
	return func(c *Config) {
		c.Proxy = proxy
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithTransport sets a custom round tripper, bypassing Proxy and the
// dial/TLS/header parts of Timeout.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Config) {
		c.Transport = rt
	}
}

// WithRetryer sets a custom delay policy.
func WithRetryer(r Retryer) Option {
	return func(c *Config) {
		c.Retryer = r
	}
}

// WithMetrics records request metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(c *Config) {
		c.Metrics = m
	}
}

// normalize returns a copy of c with defaults applied and limits clamped.
func (c Config) normalize() Config {
	if c.BaseURL == "" {
		c.BaseURL = constants.DefaultBaseURL
	}
	if c.Timeout == (Timeout{}) {
		c.Timeout.Total = constants.DefaultHTTPTimeout
	}
	if c.MaxRetry == 0 {
		c.MaxRetry = constants.DefaultMaxRetry
	}
	if c.MaxRetry < 1 {
		c.MaxRetry = 1
	}
	if c.BackoffFactor < 0 {
		c.BackoffFactor = 0
	}
	if c.Logger == nil {
		c.Logger = logger.Default()
	}
	if c.Marshaler == nil {
		c.Marshaler = codec.JSON{}
	}
	if c.Retryer == nil {
		c.Retryer = NewExponentialBackoffRetryer(c.BackoffFactor)
	}
	return c
}
