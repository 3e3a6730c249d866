// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package remotesync

import (
	"errors"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nostr-git/engine/pkg/engineerr"
	"github.com/nostr-git/engine/pkg/repocache"
)

func TestNeedsUpdateNilEntryAlwaysTrue(t *testing.T) {
	s := New(nil, nil)
	needs, err := s.NeedsUpdate(nil, "https://host/a.git", nil)
	require.NoError(t, err)
	assert.True(t, needs)
}

func TestNeedsUpdateMissingHeadAlwaysTrue(t *testing.T) {
	s := New(nil, nil)
	needs, err := s.NeedsUpdate(nil, "https://host/a.git", &repocache.Entry{Key: "k"})
	require.NoError(t, err)
	assert.True(t, needs)
}

func TestNeedsUpdateFreshWithinStalenessWindowSkipsRemoteCheck(t *testing.T) {
	s := New(nil, nil)
	entry := &repocache.Entry{Key: "k", LastHeadCommit: "abc123", LastSyncAt: time.Now()}
	needs, err := s.NeedsUpdate(nil, "https://host/a.git", entry)
	require.NoError(t, err)
	assert.False(t, needs, "a sync younger than MinStaleness must not trigger a remote round-trip")
}

func TestClassifyFetchErrUnknownBecomesNetworkError(t *testing.T) {
	err := classifyFetchErr(errors.New("connection reset"))
	var e *engineerr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, engineerr.KindNetworkError, e.Kind)
}

func TestClassifyFetchErrPassesThroughGitSentinels(t *testing.T) {
	err := classifyFetchErr(git.ErrRepositoryAlreadyExists)
	var e *engineerr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, engineerr.KindRepoAlreadyExists, e.Kind)
}
