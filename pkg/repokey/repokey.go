// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package repokey constructs the canonical repository key every cache,
// session, and directory layout is keyed on. Construction is a pure,
// deterministic function of an owner/name pair.
package repokey

import (
	"net/url"
	"strings"

	"github.com/nostr-git/engine/internal/gitvalidate"
)

// Canonical builds the canonical key for (owner, name). Equivalent inputs
// (case-insensitive, decoded) yield byte-identical keys; ambiguous inputs
// (a slash embedded in either component) are rejected.
func Canonical(owner, name string) (string, error) {
	owner, err := url.PathUnescape(owner)
	if err != nil {
		return "", err
	}
	name, err = url.PathUnescape(name)
	if err != nil {
		return "", err
	}
	if err := gitvalidate.RepoKeyComponent(owner); err != nil {
		return "", err
	}
	if err := gitvalidate.RepoKeyComponent(name); err != nil {
		return "", err
	}
	return strings.ToLower(owner) + "/" + strings.ToLower(name), nil
}

// Split reverses Canonical, returning the owner and name components of a
// well-formed canonical key.
func Split(key string) (owner, name string, ok bool) {
	owner, name, found := strings.Cut(key, "/")
	if !found || owner == "" || name == "" {
		return "", "", false
	}
	return owner, name, true
}
