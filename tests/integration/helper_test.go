// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package integration exercises complete cross-component flows — the RPC
// dispatch surface driving session management, patch classification, and
// safe-push gating together — rather than any single package in isolation.
package integration

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nostr-git/engine/pkg/fsadapter"
	"github.com/nostr-git/engine/pkg/repocache"
	"github.com/nostr-git/engine/pkg/rpc"
	"github.com/nostr-git/engine/pkg/vendor"
)

// rootDir is the fsadapter root every Engine built by newEngine shares,
// so tests that need to reach the working tree directly (bypassing
// Dispatch) can reconstruct a repo's path the same way session.Manager's
// RepoDir doc comment promises: rootDir + "/" + key.
const rootDir = "/root"

// newEngine builds an Engine over an in-memory filesystem, mirroring how a
// host embeds the module: one Engine per process, talking only through
// Dispatch or the handful of methods tests reach into directly. It
// returns the backing adapter too, for tests that need filesystem-level
// access a host would never have.
func newEngine(t *testing.T, providers map[string]vendor.Provider) (*rpc.Engine, fsadapter.Adapter) {
	t.Helper()
	fs := fsadapter.NewMemory()
	return engineOverAdapter(t, fs, providers), fs
}

// engineOverAdapter builds a second Engine sharing an already-populated
// adapter, simulating a process restart (or a second host tab) that
// reopens repositories another Engine instance wrote to disk.
func engineOverAdapter(t *testing.T, fs fsadapter.Adapter, providers map[string]vendor.Provider) *rpc.Engine {
	t.Helper()
	cache, err := repocache.New(repocache.NewFilePersister(fs, "/cache.json"))
	require.NoError(t, err)
	return rpc.New(fs, rootDir, cache, providers)
}

// writeFile writes directly to the adapter's backing filesystem, the way
// an external editor (not this engine) would dirty a working tree.
func writeFile(t *testing.T, fs fsadapter.Adapter, path, content string) {
	t.Helper()
	require.NoError(t, fs.WriteFile(path, []byte(content), 0o644))
}
