// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package integration

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nostr-git/engine/pkg/rpc"
)

func dispatch(t *testing.T, e *rpc.Engine, method string, params any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	resp, err := e.Dispatch(context.Background(), method, raw)
	require.NoError(t, err)

	var env struct {
		Success bool            `json:"success"`
		Error   string          `json:"error"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp, &env))
	require.Truef(t, env.Success, "dispatch %s failed: %s", method, env.Error)
	return env.Data
}

// TestCreateLocalRepoThenQueryRoundTrip exercises the path a host actually
// takes: scaffold a repository entirely locally through the RPC surface,
// seeding an initial file over the wire, then read it back through the
// query methods — without ever touching a remote.
func TestCreateLocalRepoThenQueryRoundTrip(t *testing.T) {
	e, _ := newEngine(t, nil)
	key := "alice/proj"

	dispatch(t, e, "createLocalRepo", map[string]any{
		"key":           key,
		"initialBranch": "main",
		"authorName":    "Alice",
		"authorEmail":   "alice@example.com",
		"commitMessage": "initial",
		"files": map[string][]byte{
			"README.md": []byte("# proj\n"),
		},
	})

	var status struct {
		DataLevel  string `json:"dataLevel"`
		HeadCommit string `json:"headCommit"`
	}
	require.NoError(t, json.Unmarshal(dispatch(t, e, "getStatus", map[string]any{"key": key}), &status))

	branches := dispatch(t, e, "listBranches", map[string]any{"key": key})
	var branchList []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(branches, &branchList))
	require.Len(t, branchList, 1)
	require.Equal(t, "main", branchList[0].Name)

	// Re-querying the same, already-local repo twice must return identical
	// results without requiring any fetch.
	levelOnce := dispatch(t, e, "getRepoDataLevel", map[string]any{"key": key})
	levelTwice := dispatch(t, e, "getRepoDataLevel", map[string]any{"key": key})
	require.JSONEq(t, string(levelOnce), string(levelTwice))
}

// TestUnknownRepoQueriesFailGracefully confirms the engine reports a
// structured failure envelope — not a panic — when asked to query a
// repository key that was never initialized.
func TestUnknownRepoQueriesFailGracefully(t *testing.T) {
	e, _ := newEngine(t, nil)

	raw, err := e.Dispatch(context.Background(), "listBranches", mustJSON(t, map[string]any{"key": "nobody/nothing"}))
	require.NoError(t, err)

	var env struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	require.False(t, env.Success)
	require.NotEmpty(t, env.Error)
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}
