// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package rpc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nostr-git/engine/pkg/repocache"
)

func seedRepo(t *testing.T, e *Engine, key string) string {
	t.Helper()
	result, err := e.createLocalRepo(CreateLocalRepoOptions{
		Key:           key,
		InitialBranch: "main",
		AuthorName:    "Alice",
		AuthorEmail:   "alice@example.com",
		CommitMessage: "initial",
		Files: map[string][]byte{
			"README.md": []byte("# hello\n"),
		},
	})
	require.NoError(t, err)
	return result.InitialCommitOID
}

func TestGetCommitHistoryReturnsSeedCommit(t *testing.T) {
	e := newTestEngine(t)
	seedRepo(t, e, "alice/proj")

	commits, err := e.getCommitHistory(context.Background(), "alice/proj", "main", 0)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	require.Equal(t, "initial", commits[0].Message)
}

func TestGetCommitDetailsListsChangedFiles(t *testing.T) {
	e := newTestEngine(t)
	oid := seedRepo(t, e, "alice/proj")

	details, err := e.getCommitDetails(context.Background(), "alice/proj", oid)
	require.NoError(t, err)
	require.Contains(t, details.ChangedFiles, "README.md")
}

func TestListTreeAtCommitFindsSeedFile(t *testing.T) {
	e := newTestEngine(t)
	oid := seedRepo(t, e, "alice/proj")

	entries, err := e.listTreeAtCommit("alice/proj", oid)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "README.md", entries[0].Path)
}

func TestFileExistsAtCommit(t *testing.T) {
	e := newTestEngine(t)
	oid := seedRepo(t, e, "alice/proj")

	exists, err := e.fileExistsAtCommit("alice/proj", oid, "README.md")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = e.fileExistsAtCommit("alice/proj", oid, "missing.txt")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestReadFileAtCommitReturnsContent(t *testing.T) {
	e := newTestEngine(t)
	oid := seedRepo(t, e, "alice/proj")

	content, err := e.readFileAtCommit("alice/proj", oid, "README.md")
	require.NoError(t, err)
	require.Equal(t, "# hello\n", string(content))
}

func TestGetFileHistoryFindsInitialCommit(t *testing.T) {
	e := newTestEngine(t)
	seedRepo(t, e, "alice/proj")

	history, err := e.getFileHistory(context.Background(), "alice/proj", "main", "README.md")
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestResolveBranchReturnsRequestedBranchWhenPresent(t *testing.T) {
	e := newTestEngine(t)
	seedRepo(t, e, "alice/proj")

	resolved, err := e.resolveBranch("alice/proj", "main")
	require.NoError(t, err)
	require.Contains(t, resolved, "main")
}

func TestGetCommitHistoryPopulatesCache(t *testing.T) {
	e := newTestEngine(t)
	seedRepo(t, e, "alice/proj")

	_, err := e.getCommitHistory(context.Background(), "alice/proj", "main", 0)
	require.NoError(t, err)

	snap, ok, err := e.sessions.Cache().GetCommitHistory("alice/proj", "main")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, snap.Commits, 1)
}

func TestGetCommitHistoryServesFromFreshCache(t *testing.T) {
	e := newTestEngine(t)
	seedRepo(t, e, "alice/proj")

	require.NoError(t, e.sessions.Cache().SetCommitHistory("alice/proj", "main", repocache.CommitHistorySnapshot{
		Branch: "main",
		Commits: []repocache.CommitDescriptor{
			{OID: "cached-sha", Message: "from cache", Author: "Someone", When: time.Now()},
		},
		Depth:       0,
		LastUpdated: time.Now(),
	}))

	commits, err := e.getCommitHistory(context.Background(), "alice/proj", "main", 0)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	require.Equal(t, "cached-sha", commits[0].SHA)
	require.Equal(t, "from cache", commits[0].Message)
}

func TestSnapshotCoversCommitRequest(t *testing.T) {
	require.False(t, snapshotCoversCommitRequest(nil, 10))

	unbounded := &repocache.CommitHistorySnapshot{Depth: 0}
	require.True(t, snapshotCoversCommitRequest(unbounded, 0))
	require.True(t, snapshotCoversCommitRequest(unbounded, 10))

	bounded := &repocache.CommitHistorySnapshot{Depth: 5}
	require.True(t, snapshotCoversCommitRequest(bounded, 5))
	require.False(t, snapshotCoversCommitRequest(bounded, 6))
	require.False(t, snapshotCoversCommitRequest(bounded, 0))
}
