package connection

import (
	"strings"

	"github.com/buger/jsonparser"

	"github.com/rubika-bot/rubika.go/internal/codec"
	"github.com/rubika-bot/rubika.go/pkg/constants"
)

// envelope is the top-level object every API response is wrapped in:
//
//	{"status": "OK", "data": {...}, "dev_message": "..."}
type envelope struct {
	status     string
	data       Data
	devMessage string
}

func (e envelope) ok() bool {
	return strings.EqualFold(e.status, constants.StatusOK)
}

// parseEnvelope extracts the envelope fields from body. It fails with
// constants.ErrMalformedResponse unless body is a well-formed JSON object.
func parseEnvelope(body []byte) (envelope, error) {
	if !codec.Valid(body) {
		return envelope{}, constants.ErrMalformedResponse
	}
	if _, dataType, _, err := jsonparser.Get(body); err != nil || dataType != jsonparser.Object {
		return envelope{}, constants.ErrMalformedResponse
	}

	env := envelope{
		status:     rawField(body, constants.EnvelopeStatusField),
		data:       Data("{}"),
		devMessage: constants.DefaultDevMessage,
	}

	if value, dataType, end, err := jsonparser.Get(body, constants.EnvelopeDataField); err == nil {
		if dataType == jsonparser.String {
			// jsonparser strips the quotes of string values.
			value = body[end-len(value)-2 : end]
		}
		env.data = append(Data(nil), value...)
	}

	if msg, err := jsonparser.GetString(body, constants.EnvelopeMessageField); err == nil {
		env.devMessage = msg
	}

	return env, nil
}

// rawField returns a string field unquoted, any other JSON value as its
// literal text, and "" when the field is missing.
func rawField(body []byte, key string) string {
	value, dataType, _, err := jsonparser.Get(body, key)
	if err != nil {
		return ""
	}
	if dataType == jsonparser.String {
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return string(value)
		}
		return s
	}
	return string(value)
}
