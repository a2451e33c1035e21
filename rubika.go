package rubika

import (
	"context"
	"fmt"

	"github.com/rubika-bot/rubika.go/pkg/connection"
)

// Requester is the part of *connection.Connection that Call and Send need.
type Requester interface {
	Request(ctx context.Context, endpoint string, method connection.Method, payload any) (connection.Data, error)
}

var _ Requester = (*connection.Connection)(nil)

// Connect creates a Connection for token and opens it.
func Connect(ctx context.Context, token string, opts ...connection.Option) (*connection.Connection, error) {
	conn := connection.New(connection.NewConfig(token, opts...))
	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}
	return conn, nil
}

// Call POSTs payload to endpoint and decodes the data of the response into a new T.
func Call[T any](ctx context.Context, r Requester, endpoint string, payload any) (*T, error) {
	var res T
	if err := Send(ctx, r, &res, endpoint, connection.MethodPost, payload); err != nil {
		return nil, err
	}
	return &res, nil
}

// Send calls endpoint with method and decodes the data of the response into res.
// A nil res discards the data.
func Send(ctx context.Context, r Requester, res any, endpoint string, method connection.Method, payload any) error {
	data, err := r.Request(ctx, endpoint, method, payload)
	if err != nil {
		return err
	}

	if res == nil {
		return nil
	}

	if err := data.Decode(res); err != nil {
		return fmt.Errorf("[%s] decoding data: %w", endpoint, err)
	}
	return nil
}
