package connection

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rubika-bot/rubika.go/pkg/constants"
)

const dialKeepAlive = 30 * time.Second

// newHTTPClient builds the transport handle owned by a connected Connection.
func newHTTPClient(timeout Timeout, proxy *url.URL, rt http.RoundTripper) *http.Client {
	if rt == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if proxy != nil {
			transport.Proxy = http.ProxyURL(proxy)
		}
		if timeout.Connect > 0 {
			transport.DialContext = (&net.Dialer{
				Timeout:   timeout.Connect,
				KeepAlive: dialKeepAlive,
			}).DialContext
		}
		if timeout.TLSHandshake > 0 {
			transport.TLSHandshakeTimeout = timeout.TLSHandshake
		}
		if timeout.ResponseHeader > 0 {
			transport.ResponseHeaderTimeout = timeout.ResponseHeader
		}
		rt = transport
	}

	return &http.Client{
		Transport: rt,
		Timeout:   timeout.Total,
	}
}

// newRequest builds the request of one attempt. The body is re-read for
// every attempt, so each call gets a fresh reader.
func newRequest(ctx context.Context, method Method, url string, body []byte) (*http.Request, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, string(method), url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", constants.ContentTypeJSON)
	if body != nil {
		req.Header.Set("Content-Type", constants.ContentTypeJSON)
	}

	return req, nil
}

// MakeRequest performs one attempt. It returns the body of a 2xx response,
// a *StatusError for any other status, or the transport error.
func MakeRequest(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making HTTP request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading HTTP response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBytes, nil
	}

	return nil, &StatusError{
		StatusCode: resp.StatusCode,
		Body:       respBytes,
	}
}
