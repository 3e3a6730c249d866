// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package refresolve picks an authoritative branch name given a hint and
// the set of known refs, and merges signed "repo state" announcements
// from a repo's maintainer set into one authoritative ref map.
package refresolve

import (
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/nostr-git/engine/pkg/engineerr"
)

// commonDefaults are tried, in order, after the caller's explicit request
// and its origin/refs/heads variants are exhausted.
var commonDefaults = []string{"main", "master", "develop", "dev"}

// ResolveBranch returns the name of an existing local branch that most
// plausibly matches requested, by trying: the exact request;
// "origin/<request>"; "refs/heads/<request>"; the common defaults in each
// of those forms; any local head; then any remote head. Each candidate is
// validated by resolving it to an object id; the first that resolves
// wins.
func ResolveBranch(repo *git.Repository, requested string) (string, error) {
	candidates := candidateNames(requested)
	for _, name := range candidates {
		if resolvesToCommit(repo, name) {
			return name, nil
		}
	}

	if name, ok := anyLocalHead(repo); ok {
		return name, nil
	}
	if name, ok := anyRemoteHead(repo); ok {
		return name, nil
	}

	return "", engineerr.New(engineerr.KindInvalidRefspec, "no-branches").
		WithHint("repository has no local or remote heads to resolve against")
}

func candidateNames(requested string) []string {
	var names []string
	add := func(n string) {
		if n != "" {
			names = append(names, n)
		}
	}

	if requested != "" {
		add(requested)
		add("origin/" + requested)
		add("refs/heads/" + requested)
	}
	for _, def := range commonDefaults {
		add(def)
		add("origin/" + def)
		add("refs/heads/" + def)
	}
	return names
}

// resolvesToCommit tries a handful of reference shapes for name and
// reports whether any resolves to a commit object id.
func resolvesToCommit(repo *git.Repository, name string) bool {
	candidates := []string{
		name,
		"refs/heads/" + name,
		"refs/remotes/" + name,
		"refs/remotes/origin/" + name,
		"refs/tags/" + name,
	}
	for _, ref := range candidates {
		if _, err := repo.ResolveRevision(plumbing.Revision(ref)); err == nil {
			return true
		}
	}
	return false
}

func anyLocalHead(repo *git.Repository) (string, bool) {
	branches, err := repo.Branches()
	if err != nil {
		return "", false
	}
	defer branches.Close()

	var found string
	_ = branches.ForEach(func(ref *plumbing.Reference) error {
		if found == "" {
			found = ref.Name().Short()
		}
		return nil
	})
	return found, found != ""
}

func anyRemoteHead(repo *git.Repository) (string, bool) {
	refs, err := repo.References()
	if err != nil {
		return "", false
	}
	defer refs.Close()

	var found string
	_ = refs.ForEach(func(ref *plumbing.Reference) error {
		if found == "" && ref.Name().IsRemote() {
			found = ref.Name().Short()
		}
		return nil
	})
	return found, found != ""
}

// RefRecord is one (type, name) -> commit-oid tuple from a signed state
// announcement, with an optional lineage list for renamed/rebased refs.
type RefRecord struct {
	Type      string
	Name      string
	CommitOID string
	Lineage   []string
}

// refKey identifies a RefRecord slot in the merged map.
type refKey struct {
	Type string
	Name string
}

// Announcement is a single signed "repo state" message concerning one
// repo, as delivered by the host's event-IO adapter.
type Announcement struct {
	RepoAddress string
	HeadRef     string
	Refs        []RefRecord
	Author      string
	Timestamp   int64
}

// LegacyAnnouncement encodes its ref set as adjacent tag pairs (a
// "<type>:<name>" marker tag immediately followed by the commit-oid tag)
// rather than as structured RefRecords; ReconstructLegacy turns it into
// an ordinary Announcement before merging.
type LegacyAnnouncement struct {
	RepoAddress string
	HeadRef     string
	TagPairs    [][2]string // [marker, oid] pairs, marker = "<type>:<name>"
	Author      string
	Timestamp   int64
}

// ReconstructLegacy rebuilds the structured ref list a LegacyAnnouncement
// implies, splitting each marker on its first ':'.
func ReconstructLegacy(a LegacyAnnouncement) Announcement {
	refs := make([]RefRecord, 0, len(a.TagPairs))
	for _, pair := range a.TagPairs {
		marker, oid := pair[0], pair[1]
		refType, name, ok := splitMarker(marker)
		if !ok {
			continue
		}
		refs = append(refs, RefRecord{Type: refType, Name: name, CommitOID: oid})
	}
	return Announcement{
		RepoAddress: a.RepoAddress,
		HeadRef:     a.HeadRef,
		Refs:        refs,
		Author:      a.Author,
		Timestamp:   a.Timestamp,
	}
}

func splitMarker(marker string) (refType, name string, ok bool) {
	for i := 0; i < len(marker); i++ {
		if marker[i] == ':' {
			return marker[:i], marker[i+1:], true
		}
	}
	return "", "", false
}

// MergeSignedState filters announcements to those authored by a member of
// maintainers, then for each (type, name) keeps the record from the
// announcement with the greatest logical timestamp, ties broken by
// lexical order of author identity. The result depends only on the
// filtered subset and is independent of iteration order.
func MergeSignedState(announcements []Announcement, maintainers map[string]bool) map[string]RefRecord {
	type winner struct {
		record    RefRecord
		timestamp int64
		author    string
	}

	winners := map[refKey]winner{}

	for _, ann := range announcements {
		if !maintainers[ann.Author] {
			continue
		}
		for _, ref := range ann.Refs {
			key := refKey{Type: ref.Type, Name: ref.Name}
			current, exists := winners[key]
			if !exists ||
				ann.Timestamp > current.timestamp ||
				(ann.Timestamp == current.timestamp && ann.Author < current.author) {
				winners[key] = winner{record: ref, timestamp: ann.Timestamp, author: ann.Author}
			}
		}
	}

	out := make(map[string]RefRecord, len(winners))
	keys := make([]refKey, 0, len(winners))
	for k := range winners {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Type != keys[j].Type {
			return keys[i].Type < keys[j].Type
		}
		return keys[i].Name < keys[j].Name
	})
	for _, k := range keys {
		out[k.Type+":"+k.Name] = winners[k].record
	}
	return out
}
