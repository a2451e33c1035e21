package connection

import "github.com/rubika-bot/rubika.go/internal/codec"

// Data is the raw JSON value of a successful envelope's data field.
type Data []byte

// Decode unmarshals the data into v.
func (d Data) Decode(v any) error {
	return codec.JSON{}.Unmarshal(d, v)
}

// Map decodes the data as a JSON object.
func (d Data) Map() (map[string]any, error) {
	var m map[string]any
	if err := d.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

func (d Data) String() string {
	return string(d)
}

// MarshalJSON returns the data verbatim.
func (d Data) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	return d, nil
}
