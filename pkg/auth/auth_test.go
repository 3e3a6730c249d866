// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package auth

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/stretchr/testify/require"
)

func TestResolveGitHubTokenUsesXAccessToken(t *testing.T) {
	cfg := Config{Tokens: []TokenCredential{{Host: "github.com", Token: "abc123"}}}
	method, err := Resolve("https://github.com/alice/proj.git", cfg)
	require.NoError(t, err)
	basic, ok := method.(*githttp.BasicAuth)
	require.True(t, ok)
	require.Equal(t, "x-access-token", basic.Username)
	require.Equal(t, "abc123", basic.Password)
}

func TestResolveGitLabTokenUsesOAuth2(t *testing.T) {
	cfg := Config{Tokens: []TokenCredential{{Host: "gitlab.com", Token: "tok"}}}
	method, err := Resolve("https://gitlab.com/alice/proj.git", cfg)
	require.NoError(t, err)
	basic, ok := method.(*githttp.BasicAuth)
	require.True(t, ok)
	require.Equal(t, "oauth2", basic.Username)
}

func TestResolveNoTokenReturnsNil(t *testing.T) {
	method, err := Resolve("https://example.com/alice/proj.git", Config{})
	require.NoError(t, err)
	require.Nil(t, method)
}

func TestResolveIsPure(t *testing.T) {
	cfg := Config{Tokens: []TokenCredential{{Host: "github.com", Token: "tok"}}}
	m1, _ := Resolve("https://github.com/a/b.git", cfg)
	m2, _ := Resolve("https://github.com/a/b.git", cfg)
	require.Equal(t, m1, m2)
}

func TestCompositeFallsThroughOnDecline(t *testing.T) {
	c := NewComposite()
	c.Add(declineProvider{}, "")
	c.Add(tokenProvider{cfg: Config{Tokens: []TokenCredential{{Host: "github.com", Token: "x"}}}})
	method, err := c.Method("https://github.com/a/b.git")
	require.NoError(t, err)
	require.NotNil(t, method)
}

type declineProvider struct{}

func (declineProvider) Method(string) (transport.AuthMethod, error) {
	return nil, nil
}
