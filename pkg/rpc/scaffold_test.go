// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package rpc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nostr-git/engine/pkg/fsadapter"
	"github.com/nostr-git/engine/pkg/repocache"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	fs := fsadapter.NewMemory()
	cache, err := repocache.New(repocache.NewFilePersister(fs, "/cache.json"))
	require.NoError(t, err)
	return New(fs, "/root", cache, nil)
}

func TestCreateLocalRepoWithoutFilesSkipsCommit(t *testing.T) {
	e := newTestEngine(t)

	result, err := e.createLocalRepo(CreateLocalRepoOptions{Key: "alice/proj"})
	require.NoError(t, err)
	require.Empty(t, result.InitialCommitOID)
}

func TestCreateLocalRepoWithFilesCommits(t *testing.T) {
	e := newTestEngine(t)

	result, err := e.createLocalRepo(CreateLocalRepoOptions{
		Key:           "alice/proj",
		InitialBranch: "main",
		AuthorName:    "Alice",
		AuthorEmail:   "alice@example.com",
		Files: map[string][]byte{
			"README.md": []byte("# proj\n"),
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.InitialCommitOID)

	branches, err := e.listBranches("alice/proj")
	require.NoError(t, err)
	require.Len(t, branches, 1)
	require.Equal(t, "main", branches[0].Name)
}

func TestCreateLocalRepoRejectsKeyWithoutSlash(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.createLocalRepo(CreateLocalRepoOptions{Key: "notakey"})
	require.Error(t, err)
}

func TestGetGitignoreTemplateKnownAndUnknown(t *testing.T) {
	e := newTestEngine(t)

	body, err := e.getGitignoreTemplate("Go")
	require.NoError(t, err)
	require.Contains(t, body, "*.test")

	_, err = e.getGitignoreTemplate("Nonexistent")
	require.Error(t, err)
}

func TestGetLicenseTemplateInterpolatesHolderAndYear(t *testing.T) {
	e := newTestEngine(t)

	body, err := e.getLicenseTemplate("MIT", "Alice", 2026)
	require.NoError(t, err)
	require.Contains(t, body, "2026")
	require.Contains(t, body, "Alice")
}
