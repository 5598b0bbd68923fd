package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/devicekey/pkg/push"
)

func TestNewMux_LogsVerifiedMessages(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	mux, err := newMux(sinkConfig{SigningSecret: "shh", MaxAge: time.Minute}, slog.New(slog.NewJSONHandler(&logs, nil)))
	require.NoError(t, err)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	sender, err := push.NewGatewaySender(srv.URL+"/push", push.WithSigningSecret("shh"))
	require.NoError(t, err)
	require.NoError(t, sender.Push(context.Background(), push.Message{Token: "tok-1", Title: "Sign-in request"}))
	assert.Contains(t, logs.String(), `"token":"tok-1"`)

	unsigned, err := push.NewGatewaySender(srv.URL + "/push")
	require.NoError(t, err)
	assert.ErrorIs(t, unsigned.Push(context.Background(), push.Message{Token: "tok-2"}), push.ErrDeliveryFailed)
	assert.NotContains(t, logs.String(), "tok-2")
}

func TestNewMux_RequiresSecret(t *testing.T) {
	t.Parallel()
	_, err := newMux(sinkConfig{}, slog.Default())
	assert.ErrorIs(t, err, push.ErrInvalidSecret)
}
