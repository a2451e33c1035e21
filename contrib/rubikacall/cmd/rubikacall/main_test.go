package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubika-bot/rubika.go/internal/fakebotapi"
)

func TestRootCmd(t *testing.T) {
	server := fakebotapi.NewServer("127.0.0.1:0", "T")
	server.AddStubResponse(fakebotapi.SimpleStubResponse("sendMessage", map[string]any{"message_id": "m1"}))
	require.NoError(t, server.Start())
	defer server.Stop()

	t.Setenv("RUBIKA_TOKEN", "T")
	t.Setenv("RUBIKA_BASE_URL", server.BaseURL())
	t.Setenv("RUBIKA_LOG_LEVEL", "disabled")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--payload", `{"chat_id":"c1","text":"hi"}`, "sendMessage"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.JSONEq(t, `{"message_id":"m1"}`, out.String())
}

func TestRootCmdRequiresEndpoint(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	assert.Error(t, cmd.Execute())
}

func TestRootCmdMissingToken(t *testing.T) {
	t.Setenv("RUBIKA_TOKEN", "")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"getMe"})
	cmd.SetOut(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}
