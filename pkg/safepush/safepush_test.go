// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package safepush

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBranchRefSpecNonForce(t *testing.T) {
	spec := branchRefSpec("main", false)
	assert.Equal(t, "refs/heads/main:refs/heads/main", string(spec))
}

func TestBranchRefSpecForce(t *testing.T) {
	spec := branchRefSpec("main", true)
	assert.Equal(t, "+refs/heads/main:refs/heads/main", string(spec))
}

func TestRelayBaseFromPushURLConvertsHTTPS(t *testing.T) {
	base, err := relayBaseFromPushURL("https://example.com/owner/repo.git")
	require.NoError(t, err)
	assert.Equal(t, "wss://example.com", base)
}

func TestRelayBaseFromPushURLConvertsHTTP(t *testing.T) {
	base, err := relayBaseFromPushURL("http://example.com/owner/repo.git")
	require.NoError(t, err)
	assert.Equal(t, "ws://example.com", base)
}
