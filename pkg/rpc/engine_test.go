// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package rpc

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatchPing(t *testing.T) {
	e := newTestEngine(t)

	raw, err := e.Dispatch(context.Background(), "ping", nil)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	require.True(t, env.Success)

	var data struct {
		Pong bool `json:"pong"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.True(t, data.Pong)
}

func TestDispatchUnknownMethod(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Dispatch(context.Background(), "doesNotExist", nil)
	require.Error(t, err)
}

func TestDispatchCreateLocalRepo(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	params, _ := json.Marshal(CreateLocalRepoOptions{Key: "alice/proj", AuthorName: "Alice", AuthorEmail: "alice@example.com"})
	raw, err := e.Dispatch(ctx, "createLocalRepo", params)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	require.True(t, env.Success)
}

func TestDispatchSetAuthConfigSucceeds(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	params, _ := json.Marshal(setAuthConfigParams{})
	raw, err := e.Dispatch(ctx, "setAuthConfig", params)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	require.True(t, env.Success)
}

func TestDispatchMalformedParamsFailsGracefully(t *testing.T) {
	e := newTestEngine(t)

	raw, err := e.Dispatch(context.Background(), "getStatus", json.RawMessage(`{"key":`))
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	require.False(t, env.Success)
	require.NotEmpty(t, env.Error)
}
