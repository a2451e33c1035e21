package rubika

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubika-bot/rubika.go/internal/fakebotapi"
	"github.com/rubika-bot/rubika.go/pkg/connection"
	"github.com/rubika-bot/rubika.go/pkg/constants"
	"github.com/rubika-bot/rubika.go/pkg/logger"
)

type requesterFunc func(ctx context.Context, endpoint string, method connection.Method, payload any) (connection.Data, error)

func (f requesterFunc) Request(ctx context.Context, endpoint string, method connection.Method, payload any) (connection.Data, error) {
	return f(ctx, endpoint, method, payload)
}

type message struct {
	MessageID string `json:"message_id"`
}

func TestCall(t *testing.T) {
	var gotEndpoint string
	var gotMethod connection.Method
	var gotPayload any
	r := requesterFunc(func(_ context.Context, endpoint string, method connection.Method, payload any) (connection.Data, error) {
		gotEndpoint, gotMethod, gotPayload = endpoint, method, payload
		return connection.Data(`{"message_id":"m1"}`), nil
	})

	res, err := Call[message](context.Background(), r, "sendMessage", map[string]any{"text": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "m1", res.MessageID)
	assert.Equal(t, "sendMessage", gotEndpoint)
	assert.Equal(t, connection.MethodPost, gotMethod)
	assert.Equal(t, map[string]any{"text": "hi"}, gotPayload)
}

func TestCallPropagatesRequestError(t *testing.T) {
	want := &connection.APIError{Kind: connection.KindStatus, Endpoint: "getMe", Status: "ERROR", Message: "nope"}
	r := requesterFunc(func(context.Context, string, connection.Method, any) (connection.Data, error) {
		return nil, want
	})

	res, err := Call[message](context.Background(), r, "getMe", nil)
	assert.Nil(t, res)
	assert.Same(t, want, err)
	assert.ErrorIs(t, err, constants.ErrAPIStatus)
}

func TestCallDecodeError(t *testing.T) {
	r := requesterFunc(func(context.Context, string, connection.Method, any) (connection.Data, error) {
		return connection.Data(`"just a string"`), nil
	})

	res, err := Call[message](context.Background(), r, "getMe", nil)
	assert.Nil(t, res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[getMe] decoding data")
}

func TestSendNilResult(t *testing.T) {
	r := requesterFunc(func(_ context.Context, _ string, method connection.Method, _ any) (connection.Data, error) {
		assert.Equal(t, connection.MethodGet, method)
		return connection.Data(`not decoded`), nil
	})

	assert.NoError(t, Send(context.Background(), r, nil, "getMe", connection.MethodGet, nil))
}

func TestConnect(t *testing.T) {
	server := fakebotapi.NewServer("127.0.0.1:0", "T")
	server.AddStubResponse(fakebotapi.SimpleStubResponse("sendMessage", map[string]any{"message_id": "m7"}))
	require.NoError(t, server.Start())
	defer func() {
		assert.NoError(t, server.Stop())
	}()

	ctx := context.Background()
	conn, err := Connect(ctx, "T",
		connection.WithBaseURL(server.BaseURL()),
		connection.WithLogger(logger.Nop()),
	)
	require.NoError(t, err)
	assert.True(t, conn.IsConnected())

	res, err := Call[message](ctx, conn, "sendMessage", map[string]any{"chat_id": "c1", "text": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "m7", res.MessageID)

	require.NoError(t, conn.Disconnect(ctx))

	_, err = Call[message](ctx, conn, "sendMessage", nil)
	var connErr *connection.ConnectionError
	assert.True(t, errors.As(err, &connErr))
	assert.ErrorIs(t, err, constants.ErrNotConnected)
}
