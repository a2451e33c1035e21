// Package codec encodes request payloads and decodes response data.
package codec

import (
	"bytes"

	"github.com/goccy/go-json"
)

type Marshaler interface {
	Marshal(v any) ([]byte, error)
}

type Unmarshaler interface {
	Unmarshal(data []byte, dst any) error
}

// JSON implements Marshaler and Unmarshaler with goccy/go-json.
type JSON struct{}

var _ Marshaler = JSON{}
var _ Unmarshaler = JSON{}

func (JSON) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSON) Unmarshal(data []byte, dst any) error {
	return json.Unmarshal(data, dst)
}

// Valid reports whether data is a single well-formed JSON value.
func Valid(data []byte) bool {
	return json.Valid(bytes.TrimSpace(data))
}
