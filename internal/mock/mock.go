package mock

import (
	"bytes"
	"errors"
	"io"
	"net/http"
)

type transport struct {
	body []byte
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		if _, err := io.Copy(io.Discard, req.Body); err != nil {
			return nil, err
		}
		req.Body.Close()
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(t.body)),
		Request:    req,
	}, nil
}

type failing struct{}

func (failing) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("mock transport is down")
}

// Create returns a transport that answers every request with an OK envelope
// carrying data.
func Create(data string) http.RoundTripper {
	return &transport{body: []byte(`{"status":"OK","data":` + data + `}`)}
}

// Failing returns a transport whose every round trip fails.
func Failing() http.RoundTripper {
	return failing{}
}
