package connection

import (
	"fmt"

	"github.com/rubika-bot/rubika.go/pkg/constants"
)

// ConnectionError reports misuse of the connection lifecycle. Err is one of
// constants.ErrAlreadyConnected, constants.ErrNotConnected or
// constants.ErrAlreadyDisconnected.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies an APIError.
type ErrorKind int

const (
	// KindMalformedResponse means a 2xx response body was not a JSON object.
	KindMalformedResponse ErrorKind = iota + 1
	// KindStatus means the envelope reported a status other than OK.
	KindStatus
	// KindRetriesExhausted means every attempt failed with a transport or HTTP status error.
	KindRetriesExhausted
)

func (k ErrorKind) String() string {
	switch k {
	case KindMalformedResponse:
		return "malformed_response"
	case KindStatus:
		return "status"
	case KindRetriesExhausted:
		return "retries_exhausted"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindMalformedResponse:
		return constants.ErrMalformedResponse
	case KindStatus:
		return constants.ErrAPIStatus
	case KindRetriesExhausted:
		return constants.ErrRetriesExhausted
	default:
		return nil
	}
}

// APIError is returned by Request when the remote API could not produce a
// usable answer. errors.Is matches it against the sentinel of its Kind.
type APIError struct {
	Kind     ErrorKind
	Endpoint string
	// Status and Message are set for KindStatus.
	Status  string
	Message string
	// Attempts is set for KindRetriesExhausted.
	Attempts int
	// Err is the underlying cause, if any.
	Err error
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindMalformedResponse:
		return fmt.Sprintf("[%s] %v", e.Endpoint, constants.ErrMalformedResponse)
	case KindStatus:
		return fmt.Sprintf("[%s] %v: %s - %s", e.Endpoint, constants.ErrAPIStatus, e.Status, e.Message)
	case KindRetriesExhausted:
		if e.Err != nil {
			return fmt.Sprintf("[%s] request failed after %d attempts: %v", e.Endpoint, e.Attempts, e.Err)
		}
		return fmt.Sprintf("[%s] request failed after %d attempts", e.Endpoint, e.Attempts)
	default:
		return fmt.Sprintf("[%s] api error", e.Endpoint)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func (e *APIError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// StatusError is an attempt that completed with a non-2xx HTTP status.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v %d: %s", constants.ErrUnexpectedHTTPCode, e.StatusCode, truncate(e.Body))
}

func (e *StatusError) Is(target error) bool {
	return target == constants.ErrUnexpectedHTTPCode
}

func truncate(body []byte) string {
	if len(body) > constants.MaxLoggedResponseBody {
		return string(body[:constants.MaxLoggedResponseBody]) + "..."
	}
	return string(body)
}
