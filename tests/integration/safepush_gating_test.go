// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package integration

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSafePushBlockedOnUncommittedChanges confirms safePushToRemote's
// preflight gate fires, and the RPC surface reports it as a structured
// failure, before ever dialing a remote — a dirty working tree is
// detected purely from the local repository the engine already has.
func TestSafePushBlockedOnUncommittedChanges(t *testing.T) {
	key := "alice/dirty"
	fs := seedGreetingRepo(t, key)

	// seedGreetingRepo's Engine and this one are distinct instances, so
	// reopen the same repo through a fresh Engine over the same adapter —
	// exactly what a second process attaching to the same store would do.
	reEngine := engineOverAdapter(t, fs, nil)

	// Dirty the working tree directly, the way an external editor would,
	// without going through any RPC method.
	writeFile(t, fs, rootDir+"/"+key+"/greeting.txt", "hello\nmars\n")

	raw, err := reEngine.Dispatch(context.Background(), "safePushToRemote", mustJSON(t, map[string]any{
		"key":                key,
		"branch":             "main",
		"remoteUrl":          "https://example.invalid/alice/dirty.git",
		"blockIfUncommitted": true,
	}))
	require.NoError(t, err)

	var env struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
		Code    string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	require.False(t, env.Success)
	require.NotEmpty(t, env.Error)
}

// TestSafePushBlockedOnShallowClone confirms a repo that never reached
// LevelFull (every repo scaffolded by createLocalRepo starts this way)
// is rejected by BlockIfShallow before any push is attempted.
func TestSafePushBlockedOnShallowClone(t *testing.T) {
	key := "alice/shallow"
	fs := seedGreetingRepo(t, key)
	reEngine := engineOverAdapter(t, fs, nil)

	raw, err := reEngine.Dispatch(context.Background(), "safePushToRemote", mustJSON(t, map[string]any{
		"key":            key,
		"branch":         "main",
		"remoteUrl":      "https://example.invalid/alice/shallow.git",
		"blockIfShallow": true,
	}))
	require.NoError(t, err)

	var env struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	require.False(t, env.Success)
	require.NotEmpty(t, env.Error)
}
