// Package rubikacall issues a single Bot API request from the command line.
//
// Settings are read from RUBIKA_* environment variables and, optionally, a
// YAML file whose keys match the lower-cased names without the prefix
// (token, base_url, timeout, ...). Environment variables take precedence.
//
// timeout accepts a number of seconds (10, 2.5) or a duration string (1m30s).
package rubikacall

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/rubika-bot/rubika.go/pkg/connection"
	"github.com/rubika-bot/rubika.go/pkg/constants"
)

// EnvPrefix prefixes every environment variable Load reads.
const EnvPrefix = "RUBIKA"

// Config holds the settings of one rubikacall invocation.
type Config struct {
	Token         string        `validate:"required"`
	BaseURL       string        `validate:"required,url"`
	Timeout       time.Duration `validate:"gt=0"`
	MaxRetry      int           `validate:"gte=0"`
	BackoffFactor float64       `validate:"gte=0"`
	Proxy         string        `validate:"omitempty,url"`
	LogLevel      string        `validate:"oneof=debug info warn error disabled"`
	// LogFile redirects logs from stderr to a file.
	LogFile string
}

// Load reads the configuration from the environment and, when path is not
// empty, from the YAML file at path. The result is validated.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("token", "")
	v.SetDefault("base_url", constants.DefaultBaseURL)
	v.SetDefault("timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("max_retry", constants.DefaultMaxRetry)
	v.SetDefault("backoff_factor", constants.DefaultBackoffFactor)
	v.SetDefault("proxy", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_file", "")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Token:         v.GetString("token"),
		BaseURL:       strings.TrimRight(v.GetString("base_url"), "/"),
		Timeout:       timeout(v),
		MaxRetry:      v.GetInt("max_retry"),
		BackoffFactor: v.GetFloat64("backoff_factor"),
		Proxy:         v.GetString("proxy"),
		LogLevel:      strings.ToLower(v.GetString("log_level")),
		LogFile:       v.GetString("log_file"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// timeout reads the timeout key. Bare numbers are seconds; values with a
// unit are parsed as durations. An unparsable value yields 0, which fails
// validation.
func timeout(v *viper.Viper) time.Duration {
	switch raw := v.Get("timeout").(type) {
	case time.Duration:
		return raw
	case string:
		seconds, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return v.GetDuration("timeout")
		}
		return connection.TimeoutSeconds(seconds).Total
	}
	return connection.TimeoutSeconds(v.GetFloat64("timeout")).Total
}

// Validate checks the struct tags of c.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// Options converts c into connection options. The logger is configured by Run.
func (c *Config) Options() ([]connection.Option, error) {
	opts := []connection.Option{
		connection.WithBaseURL(c.BaseURL),
		connection.WithTimeout(c.Timeout),
		connection.WithMaxRetry(c.MaxRetry),
		connection.WithBackoffFactor(c.BackoffFactor),
	}

	if c.Proxy != "" {
		proxy, err := url.Parse(c.Proxy)
		if err != nil {
			return nil, fmt.Errorf("parsing proxy url: %w", err)
		}
		opts = append(opts, connection.WithProxy(proxy))
	}

	return opts, nil
}

func (c *Config) level() zerolog.Level {
	switch c.LogLevel {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}
