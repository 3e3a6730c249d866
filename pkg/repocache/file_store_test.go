// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package repocache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nostr-git/engine/pkg/fsadapter"
)

func TestFilePersisterRoundTrip(t *testing.T) {
	fs := fsadapter.NewMemory()
	persister := NewFilePersister(fs, "/cache/repocache.json")

	s, err := New(persister)
	require.NoError(t, err)
	require.NoError(t, s.Put("alice/proj", &Entry{CloneURLs: []string{"https://host/a/b.git"}}))

	reloaded, err := New(NewFilePersister(fs, "/cache/repocache.json"))
	require.NoError(t, err)
	entry, ok, err := reloaded.Get("alice/proj")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"https://host/a/b.git"}, entry.CloneURLs)
}

func TestFilePersisterLoadMissingIsEmpty(t *testing.T) {
	fs := fsadapter.NewMemory()
	s, err := New(NewFilePersister(fs, "/cache/does-not-exist.json"))
	require.NoError(t, err)
	_, ok, _ := s.Get("anything")
	require.False(t, ok)
}
