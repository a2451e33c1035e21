// Package contrib provides additional functionality and utilities
// for the Rubika Bot API Go client.
//
// Everything in this package is intended to extend the core client with
// tools that are not part of the core library.
//
// Note that this package is outside of the backward compatibility guarantees
// provided by the core client. Changes to this package may
// introduce breaking changes without following semantic versioning.
//
// [github.com/rubika-bot/rubika.go/contrib/rubikacall] is a command line tool that
// sends a single request and prints the data of the response.
package contrib
