// The [rubika] package is a client for the Rubika Bot API.
//
// # Connections
//
// A [connection.Connection] owns the HTTP client for one bot token. Build one with
// [Connect], or with [connection.New] when you want to call [connection.Connection.Connect]
// yourself. Every request is sent to {baseURL}/{token}/{endpoint}.
//
// # Responses
//
// The Bot API wraps every answer in an envelope carrying a status, the data and,
// on failure, a dev_message. A request succeeds only when the status is OK
// (compared case-insensitively), and the caller receives the data field.
// Use [Call] to decode it into your own type.
//
// # Errors
//
// Requests fail with a *[connection.ConnectionError] when the connection is not
// open, and with a *[connection.APIError] when the API could not produce a usable
// answer. Match them with errors.Is against the sentinels in
// [github.com/rubika-bot/rubika.go/pkg/constants]:
//
//   - [constants.ErrMalformedResponse] the body was not a JSON object. Not retried.
//   - [constants.ErrAPIStatus] the envelope status was not OK. Not retried.
//   - [constants.ErrRetriesExhausted] every attempt failed at the transport or HTTP status level.
//
// # Retries
//
// Transport errors and non-2xx HTTP responses are retried up to MaxRetry attempts.
// Before attempt n+1 the connection waits BackoffFactor * 2^(n-1) seconds,
// and never waits after the last attempt. Use [connection.WithRetryer]
// to plug in a different delay policy.
package rubika
