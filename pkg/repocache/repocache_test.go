// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package repocache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memPersister struct {
	entries map[string]*Entry
}

func newMemPersister() *memPersister { return &memPersister{entries: map[string]*Entry{}} }

func (m *memPersister) Load() (map[string]*Entry, error) { return m.entries, nil }
func (m *memPersister) Save(entries map[string]*Entry) error {
	m.entries = entries
	return nil
}

func TestPutGetRoundTrip(t *testing.T) {
	s, err := New(newMemPersister())
	require.NoError(t, err)

	entry := newEntry("alice/proj")
	entry.CloneURLs = []string{"https://host/alice/proj.git"}
	require.NoError(t, s.Put("alice/proj", entry))

	got, ok, err := s.Get("alice/proj")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"https://host/alice/proj.git"}, got.CloneURLs)
}

func TestDeleteRemovesEntry(t *testing.T) {
	s, _ := New(newMemPersister())
	require.NoError(t, s.Put("k", newEntry("k")))
	require.NoError(t, s.Delete("k"))
	_, ok, _ := s.Get("k")
	require.False(t, ok)
}

func TestCommitHistoryTTLExpiry(t *testing.T) {
	impl := &store{persist: newMemPersister(), entries: map[string]*Entry{}, now: time.Now}
	require.NoError(t, impl.SetCommitHistory("k", "main", CommitHistorySnapshot{
		Branch:      "main",
		LastUpdated: time.Now().Add(-10 * time.Minute),
	}))

	snap, ok, err := impl.GetCommitHistory("k", "main")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, snap)
}

func TestCommitHistoryFreshWithinTTL(t *testing.T) {
	impl := &store{persist: newMemPersister(), entries: map[string]*Entry{}, now: time.Now}
	require.NoError(t, impl.SetCommitHistory("k", "main", CommitHistorySnapshot{
		Branch:      "main",
		LastUpdated: time.Now(),
	}))

	snap, ok, err := impl.GetCommitHistory("k", "main")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "main", snap.Branch)
}

func TestMergeAnalysisInvalidatedByTipChange(t *testing.T) {
	s, _ := New(newMemPersister())
	payload, _ := json.Marshal(map[string]string{"analysis": "clean"})
	require.NoError(t, s.SetMergeAnalysis("k", MergeAnalysisSnapshot{
		PatchID:      "p1",
		TargetBranch: "main",
		TargetTip:    "aaa",
		Result:       payload,
		LastUpdated:  time.Now(),
	}))

	_, ok, err := GetFreshMergeAnalysis(s, "k", "p1", "main", "aaa")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = GetFreshMergeAnalysis(s, "k", "p1", "main", "bbb")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestClearOldCacheSweepsExpiredHistoryOnly(t *testing.T) {
	impl := &store{persist: newMemPersister(), entries: map[string]*Entry{}, now: time.Now}
	require.NoError(t, impl.Put("k", &Entry{Key: "k", LastHeadCommit: "abc"}))
	require.NoError(t, impl.SetCommitHistory("k", "main", CommitHistorySnapshot{
		Branch: "main", LastUpdated: time.Now().Add(-10 * time.Minute),
	}))

	require.NoError(t, impl.ClearOldCache())

	entry, ok, err := impl.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "abc", entry.LastHeadCommit)
}
