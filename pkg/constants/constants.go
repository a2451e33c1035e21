package constants

import "time"

const (
	// DefaultBaseURL is the Rubika Bot API origin requests are sent to.
	DefaultBaseURL = "https://botapi.rubika.ir/v3"
	// DefaultHTTPTimeout bounds a single HTTP attempt.
	DefaultHTTPTimeout = 10 * time.Second
	// DefaultMaxRetry is the number of attempts per request.
	DefaultMaxRetry = 3
	// DefaultBackoffFactor scales the exponential delay between attempts, in seconds.
	DefaultBackoffFactor = 0.5
)

// Envelope
const (
	StatusOK              = "OK"
	DefaultDevMessage     = "Unknown error"
	EnvelopeStatusField   = "status"
	EnvelopeDataField     = "data"
	EnvelopeMessageField  = "dev_message"
	RedactedToken         = "***"
	ContentTypeJSON       = "application/json"
	MaxLoggedResponseBody = 1024
)
