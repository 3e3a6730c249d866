// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package engineconfig

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nostr-git/engine/pkg/auth"
)

func TestExportYAMLRoundTripsThroughLoadConfigYAML(t *testing.T) {
	s := New()
	s.SetAuth(auth.Config{
		Tokens:  []auth.TokenCredential{{Host: "github.com", Token: "ghp_xxx"}},
		SSHUser: "git",
	})
	s.SetIdentity(GitIdentity{Name: "Alice", Email: "alice@example.com"})

	data, err := s.ExportYAML()
	require.NoError(t, err)

	loaded, err := LoadConfigYAML(data)
	require.NoError(t, err)
	require.Equal(t, s.Get(), loaded)
}

func TestLoadConfigYAMLRejectsMalformedInput(t *testing.T) {
	_, err := LoadConfigYAML([]byte("auth: [this is not a mapping"))
	require.Error(t, err)
}
