package constants

import "errors"

// Lifecycle errors
var (
	ErrAlreadyConnected    = errors.New("already connected")
	ErrNotConnected        = errors.New("not connected, call Connect first")
	ErrAlreadyDisconnected = errors.New("already disconnected")
)

// Request errors
var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrMalformedResponse  = errors.New("could not parse JSON from response")
	ErrAPIStatus          = errors.New("API returned error status")
	ErrRetriesExhausted   = errors.New("request failed after all attempts")
	ErrUnexpectedHTTPCode = errors.New("unexpected HTTP status")
)
