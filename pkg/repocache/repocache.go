// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package repocache persists per-repository metadata — clone URLs, last
// known HEAD, commit-history snapshots, and merge-analysis results — keyed
// by canonical repository key, with TTL-aware freshness checks.
package repocache

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// CommitHistoryTTL is how long a cached commit-history snapshot remains
// fresh before a reader must treat it as absent.
const CommitHistoryTTL = 5 * time.Minute

// CommitDescriptor is the minimal commit identity recorded in a history
// snapshot.
type CommitDescriptor struct {
	OID       string    `json:"oid"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Email     string    `json:"email,omitempty"`
	When      time.Time `json:"when"`
	ParentOID []string  `json:"parentOid,omitempty"`
}

// CommitHistorySnapshot is a bounded slice of a branch's history as of
// LastUpdated.
type CommitHistorySnapshot struct {
	Branch      string             `json:"branch"`
	Commits     []CommitDescriptor `json:"commits"`
	Depth       int                `json:"depth"`
	LastUpdated time.Time          `json:"lastUpdated"`
}

func (s CommitHistorySnapshot) expired(now time.Time) bool {
	return now.Sub(s.LastUpdated) > CommitHistoryTTL
}

// MergeAnalysisSnapshot caches the result of analyzePatchMerge. It is
// valid only while TargetTip matches the target branch's current tip; the
// result payload is opaque JSON so this package does not need to import
// the patch-engine's result type.
type MergeAnalysisSnapshot struct {
	PatchID      string          `json:"patchId"`
	TargetBranch string          `json:"targetBranch"`
	TargetTip    string          `json:"targetTip"`
	Result       json.RawMessage `json:"result"`
	LastUpdated  time.Time       `json:"lastUpdated"`
}

// Entry is one canonical-key's worth of persisted repo metadata.
type Entry struct {
	Key               string                           `json:"key"`
	CloneURLs         []string                          `json:"cloneUrls"`
	LastHeadCommit    string                            `json:"lastHeadCommit"`
	LastSyncAt        time.Time                         `json:"lastSyncAt"`
	FailedCloneURLs   map[string]time.Time              `json:"failedCloneUrls,omitempty"`
	CommitHistory     map[string]CommitHistorySnapshot   `json:"commitHistory,omitempty"`
	MergeAnalyses     map[string]MergeAnalysisSnapshot    `json:"mergeAnalyses,omitempty"`
}

func newEntry(key string) *Entry {
	return &Entry{
		Key:             key,
		FailedCloneURLs: map[string]time.Time{},
		CommitHistory:   map[string]CommitHistorySnapshot{},
		MergeAnalyses:   map[string]MergeAnalysisSnapshot{},
	}
}

func mergeAnalysisKey(patchID, targetBranch string) string {
	return patchID + "\x00" + targetBranch
}

// Store is the repo cache contract from the data model: get/put/delete a
// whole entry, read/write the two TTL'd sub-caches, and sweep expired
// sub-entries.
type Store interface {
	Get(key string) (*Entry, bool, error)
	Put(key string, entry *Entry) error
	Delete(key string) error

	SetCommitHistory(key, branch string, snapshot CommitHistorySnapshot) error
	GetCommitHistory(key, branch string) (*CommitHistorySnapshot, bool, error)

	SetMergeAnalysis(key string, snapshot MergeAnalysisSnapshot) error
	GetMergeAnalysis(key, patchID, targetBranch string) (*MergeAnalysisSnapshot, bool, error)

	ClearOldCache() error
}

// Persister is the minimal durability contract a Store implementation
// needs: load the full entry set once, and atomically replace it.
// FilePersister (in file_store.go) implements this over pkg/fsadapter; tests
// may substitute an in-memory fake.
type Persister interface {
	Load() (map[string]*Entry, error)
	Save(entries map[string]*Entry) error
}

// store is the single Store implementation: an in-memory map mirrored to
// a Persister on every mutation, exactly as the teacher's FileStateStore
// mirrors an in-memory RunState to disk on every Save.
type store struct {
	mu      sync.Mutex
	persist Persister
	entries map[string]*Entry
	now     func() time.Time
}

// New returns a Store backed by persist, loading any existing entries
// immediately.
func New(persist Persister) (Store, error) {
	entries, err := persist.Load()
	if err != nil {
		return nil, fmt.Errorf("load repo cache: %w", err)
	}
	if entries == nil {
		entries = map[string]*Entry{}
	}
	return &store{persist: persist, entries: entries, now: time.Now}, nil
}

func (s *store) saveLocked() error {
	return s.persist.Save(s.entries)
}

func (s *store) Get(key string) (*Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	return entry, ok, nil
}

func (s *store) Put(key string, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.Key = key
	s.entries[key] = entry
	return s.saveLocked()
}

func (s *store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return s.saveLocked()
}

func (s *store) SetCommitHistory(key, branch string, snapshot CommitHistorySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		entry = newEntry(key)
		s.entries[key] = entry
	}
	if entry.CommitHistory == nil {
		entry.CommitHistory = map[string]CommitHistorySnapshot{}
	}
	entry.CommitHistory[branch] = snapshot
	return s.saveLocked()
}

func (s *store) GetCommitHistory(key, branch string) (*CommitHistorySnapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	snap, ok := entry.CommitHistory[branch]
	if !ok || snap.expired(s.now()) {
		return nil, false, nil
	}
	return &snap, true, nil
}

func (s *store) SetMergeAnalysis(key string, snapshot MergeAnalysisSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		entry = newEntry(key)
		s.entries[key] = entry
	}
	if entry.MergeAnalyses == nil {
		entry.MergeAnalyses = map[string]MergeAnalysisSnapshot{}
	}
	entry.MergeAnalyses[mergeAnalysisKey(snapshot.PatchID, snapshot.TargetBranch)] = snapshot
	return s.saveLocked()
}

func (s *store) GetMergeAnalysis(key, patchID, targetBranch string) (*MergeAnalysisSnapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	snap, ok := entry.MergeAnalyses[mergeAnalysisKey(patchID, targetBranch)]
	if !ok {
		return nil, false, nil
	}
	return &snap, true, nil
}

// invalidateIfStale returns snap only while its recorded target branch
// tip matches currentTip, and nil otherwise (or when snap is nil), per the
// data model's invalidation rule. Callers pass the tip they just resolved.
// The stored snapshot itself is left in place.
func (s *store) invalidateIfStale(snap *MergeAnalysisSnapshot, currentTip string) *MergeAnalysisSnapshot {
	if snap == nil || snap.TargetTip != currentTip {
		return nil
	}
	return snap
}

// GetFreshMergeAnalysis returns the cached snapshot only if its recorded
// target tip still matches currentTip.
func GetFreshMergeAnalysis(s Store, key, patchID, targetBranch, currentTip string) (*MergeAnalysisSnapshot, bool, error) {
	snap, ok, err := s.GetMergeAnalysis(key, patchID, targetBranch)
	if err != nil || !ok {
		return nil, false, err
	}
	if snap.TargetTip != currentTip {
		return nil, false, nil
	}
	return snap, true, nil
}

func (s *store) ClearOldCache() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, entry := range s.entries {
		for branch, snap := range entry.CommitHistory {
			if snap.expired(now) {
				delete(entry.CommitHistory, branch)
			}
		}
	}
	return s.saveLocked()
}
