// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package rpc

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/nostr-git/engine/pkg/refresolve"
	"github.com/nostr-git/engine/pkg/remotesync"
	"github.com/nostr-git/engine/pkg/repocache"
)

// StatusResult answers getStatus: the repo's current data level and
// resolved HEAD, the cheapest facts this engine can report without a
// network round trip.
type StatusResult struct {
	DataLevel  string `json:"dataLevel"`
	HeadCommit string `json:"headCommit,omitempty"`
}

func (e *Engine) getStatus(key string) (*StatusResult, error) {
	level := e.sessions.GetDataLevel(key)
	entry, _, _ := e.sessions.Cache().Get(key)
	head := ""
	if entry != nil {
		head = entry.LastHeadCommit
	}
	return &StatusResult{DataLevel: level.String(), HeadCommit: head}, nil
}

// CommitSummary is one entry in getCommitHistory's result.
type CommitSummary struct {
	SHA       string    `json:"sha"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Email     string    `json:"email"`
	When      time.Time `json:"when"`
	ParentSHA []string  `json:"parentSha,omitempty"`
}

func (e *Engine) openRepo(key string) (*git.Repository, error) {
	repo, _, err := remotesync.OpenRepository(e.sessions.Filesystem().Raw(), e.sessions.RepoDir(key))
	return repo, err
}

// autoEscalationDepthCap bounds a getCommitHistory-triggered depth
// escalation: a shallow clone whose log falls short of the request is
// deepened exactly once, to at most this many commits, then retried —
// never to satisfy the request unboundedly in a single automatic step.
const autoEscalationDepthCap = 1000

// getCommitHistory answers a branch's commit log, newest first, capped at
// maxCount (0 means unbounded). A fresh cache entry covering this request
// is served directly. Otherwise the log is walked from the repo; if the
// walk comes up short of maxCount (the local clone is shallower than the
// request), one deepening fetch is issued via session.Manager and the walk
// is retried once before the result — however long it ended up — is
// cached.
func (e *Engine) getCommitHistory(ctx context.Context, key, branch string, maxCount int) ([]CommitSummary, error) {
	repo, err := e.openRepo(key)
	if err != nil {
		return nil, err
	}
	resolved, err := refresolve.ResolveBranch(repo, branch)
	if err != nil {
		return nil, err
	}

	if snap, ok, err := e.sessions.Cache().GetCommitHistory(key, resolved); err == nil && ok && snapshotCoversCommitRequest(snap, maxCount) {
		return commitSummariesFromSnapshot(snap, maxCount), nil
	}

	out, err := walkCommitLog(repo, resolved, maxCount)
	if err != nil {
		return nil, err
	}

	if maxCount > 0 && len(out) < maxCount {
		escalateTo := maxCount
		if escalateTo > autoEscalationDepthCap {
			escalateTo = autoEscalationDepthCap
		}
		if err := e.sessions.EnsureFullClone(ctx, key, e.cloneURLsFor(key), resolved, escalateTo); err != nil {
			return nil, fmt.Errorf("deepen shallow clone to satisfy history depth %d: %w", maxCount, err)
		}
		repo, err = e.openRepo(key)
		if err != nil {
			return nil, err
		}
		out, err = walkCommitLog(repo, resolved, maxCount)
		if err != nil {
			return nil, err
		}
	}

	_ = e.sessions.Cache().SetCommitHistory(key, resolved, commitHistorySnapshot(resolved, out, maxCount))
	return out, nil
}

// walkCommitLog reads at most maxCount (0 means unbounded) commits reachable
// from resolved, newest first.
func walkCommitLog(repo *git.Repository, resolved string, maxCount int) ([]CommitSummary, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(resolved))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", resolved, err)
	}
	iter, err := repo.Log(&git.LogOptions{From: *hash})
	if err != nil {
		return nil, fmt.Errorf("open commit log: %w", err)
	}
	defer iter.Close()

	var out []CommitSummary
	err = iter.ForEach(func(c *object.Commit) error {
		if maxCount > 0 && len(out) >= maxCount {
			return storer.ErrStop
		}
		var parents []string
		for _, p := range c.ParentHashes {
			parents = append(parents, p.String())
		}
		out = append(out, CommitSummary{
			SHA:       c.Hash.String(),
			Message:   c.Message,
			Author:    c.Author.Name,
			Email:     c.Author.Email,
			When:      c.Author.When,
			ParentSHA: parents,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk commit log: %w", err)
	}
	return out, nil
}

// cloneURLsFor returns the clone URLs this engine last recorded for key, so
// an escalation fetch can reuse them without the caller re-supplying them.
func (e *Engine) cloneURLsFor(key string) []string {
	if entry, ok, _ := e.sessions.Cache().Get(key); ok && entry != nil && len(entry.CloneURLs) > 0 {
		return entry.CloneURLs
	}
	return nil
}

// snapshotCoversCommitRequest reports whether snap already holds enough
// history to answer a getCommitHistory(maxCount) request without a fresh
// walk. A snapshot cached as unbounded (Depth<=0) covers any request; a
// snapshot bounded to N commits only covers a request for N or fewer, never
// an unbounded one.
func snapshotCoversCommitRequest(snap *repocache.CommitHistorySnapshot, maxCount int) bool {
	if snap == nil {
		return false
	}
	if snap.Depth <= 0 {
		return true
	}
	return maxCount > 0 && maxCount <= snap.Depth
}

func commitSummariesFromSnapshot(snap *repocache.CommitHistorySnapshot, maxCount int) []CommitSummary {
	commits := snap.Commits
	if maxCount > 0 && len(commits) > maxCount {
		commits = commits[:maxCount]
	}
	out := make([]CommitSummary, 0, len(commits))
	for _, c := range commits {
		out = append(out, CommitSummary{
			SHA:       c.OID,
			Message:   c.Message,
			Author:    c.Author,
			Email:     c.Email,
			When:      c.When,
			ParentSHA: c.ParentOID,
		})
	}
	return out
}

func commitHistorySnapshot(branch string, commits []CommitSummary, maxCount int) repocache.CommitHistorySnapshot {
	descriptors := make([]repocache.CommitDescriptor, 0, len(commits))
	for _, c := range commits {
		descriptors = append(descriptors, repocache.CommitDescriptor{
			OID:       c.SHA,
			Message:   c.Message,
			Author:    c.Author,
			Email:     c.Email,
			When:      c.When,
			ParentOID: c.ParentSHA,
		})
	}
	return repocache.CommitHistorySnapshot{
		Branch:      branch,
		Commits:     descriptors,
		Depth:       maxCount,
		LastUpdated: time.Now(),
	}
}

func (e *Engine) getCommitCount(ctx context.Context, key, branch string) (int, error) {
	commits, err := e.getCommitHistory(ctx, key, branch, 0)
	if err != nil {
		return 0, err
	}
	return len(commits), nil
}

// CommitDetails is getCommitDetails' result: a summary plus the file
// paths it touched.
type CommitDetails struct {
	CommitSummary
	ChangedFiles []string `json:"changedFiles"`
}

func (e *Engine) getCommitDetails(ctx context.Context, key, sha string) (*CommitDetails, error) {
	repo, err := e.openRepo(key)
	if err != nil {
		return nil, err
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(sha))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", sha, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("load commit %s: %w", sha, err)
	}

	var parents []string
	for _, p := range commit.ParentHashes {
		parents = append(parents, p.String())
	}
	details := &CommitDetails{
		CommitSummary: CommitSummary{
			SHA:       commit.Hash.String(),
			Message:   commit.Message,
			Author:    commit.Author.Name,
			Email:     commit.Author.Email,
			When:      commit.Author.When,
			ParentSHA: parents,
		},
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("load tree for %s: %w", sha, err)
	}
	if commit.NumParents() == 0 {
		err = tree.Files().ForEach(func(f *object.File) error {
			details.ChangedFiles = append(details.ChangedFiles, f.Name)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return details, nil
	}

	parent, err := commit.Parent(0)
	if err != nil {
		return nil, fmt.Errorf("load parent of %s: %w", sha, err)
	}
	parentTree, err := parent.Tree()
	if err != nil {
		return nil, err
	}
	changes, err := parentTree.Diff(tree)
	if err != nil {
		return nil, fmt.Errorf("diff %s against parent: %w", sha, err)
	}
	for _, c := range changes {
		from, to, err := c.Files()
		if err != nil {
			continue
		}
		if to != nil {
			details.ChangedFiles = append(details.ChangedFiles, to.Name)
		} else if from != nil {
			details.ChangedFiles = append(details.ChangedFiles, from.Name)
		}
	}
	return details, nil
}

// BranchSummary is one entry in listBranches' result.
type BranchSummary struct {
	Name string `json:"name"`
	SHA  string `json:"sha"`
}

func (e *Engine) listBranches(key string) ([]BranchSummary, error) {
	repo, err := e.openRepo(key)
	if err != nil {
		return nil, err
	}
	refs, err := repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer refs.Close()

	var out []BranchSummary
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		out = append(out, BranchSummary{Name: ref.Name().Short(), SHA: ref.Hash().String()})
		return nil
	})
	return out, err
}

func (e *Engine) resolveBranch(key, requested string) (string, error) {
	repo, err := e.openRepo(key)
	if err != nil {
		return "", err
	}
	return refresolve.ResolveBranch(repo, requested)
}

// RemoteRef is one entry in listServerRefs' result.
type RemoteRef struct {
	Name string `json:"name"`
	SHA  string `json:"sha"`
}

func (e *Engine) listServerRefs(ctx context.Context, cloneURL string) ([]RemoteRef, error) {
	remote := git.NewRemote(nil, &config.RemoteConfig{Name: "origin", URLs: []string{cloneURL}})
	refs, err := remote.ListContext(ctx, &git.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list refs at %s: %w", cloneURL, err)
	}
	out := make([]RemoteRef, 0, len(refs))
	for _, ref := range refs {
		out = append(out, RemoteRef{Name: ref.Name().String(), SHA: ref.Hash().String()})
	}
	return out, nil
}

func (e *Engine) fileExistsAtCommit(key, sha, path string) (bool, error) {
	content, err := e.readFileAtCommit(key, sha, path)
	if err != nil {
		return false, nil
	}
	return content != nil, nil
}

func (e *Engine) readFileAtCommit(key, sha, path string) ([]byte, error) {
	repo, err := e.openRepo(key)
	if err != nil {
		return nil, err
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(sha))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", sha, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, err
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, err
	}
	file, err := tree.File(path)
	if err != nil {
		return nil, fmt.Errorf("file %s not found at %s: %w", path, sha, err)
	}
	reader, err := file.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

// FileHistoryEntry is one entry in getFileHistory's result: a commit that
// touched path, newest first.
type FileHistoryEntry struct {
	SHA     string    `json:"sha"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	When    time.Time `json:"when"`
}

func (e *Engine) getFileHistory(ctx context.Context, key, branch, path string) ([]FileHistoryEntry, error) {
	repo, err := e.openRepo(key)
	if err != nil {
		return nil, err
	}
	resolved, err := refresolve.ResolveBranch(repo, branch)
	if err != nil {
		return nil, err
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(resolved))
	if err != nil {
		return nil, err
	}
	iter, err := repo.Log(&git.LogOptions{
		From:       *hash,
		PathFilter: func(p string) bool { return p == path },
	})
	if err != nil {
		return nil, fmt.Errorf("open file history for %s: %w", path, err)
	}
	defer iter.Close()

	var out []FileHistoryEntry
	err = iter.ForEach(func(c *object.Commit) error {
		out = append(out, FileHistoryEntry{SHA: c.Hash.String(), Message: c.Message, Author: c.Author.Name, When: c.Author.When})
		return nil
	})
	return out, err
}

// TreeEntry is one entry in listTreeAtCommit's result.
type TreeEntry struct {
	Path  string `json:"path"`
	IsDir bool   `json:"isDir"`
	Size  int64  `json:"size,omitempty"`
}

func (e *Engine) listTreeAtCommit(key, sha string) ([]TreeEntry, error) {
	repo, err := e.openRepo(key)
	if err != nil {
		return nil, err
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(sha))
	if err != nil {
		return nil, err
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, err
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, err
	}
	// Recursive mode yields each subtree's own entry before descending
	// into it; those entries are reported with IsDir set and no size.
	var out []TreeEntry
	walker := object.NewTreeWalker(tree, true, nil)
	defer walker.Close()
	for {
		name, entry, err := walker.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if entry.Mode == filemode.Dir {
			out = append(out, TreeEntry{Path: name, IsDir: true})
			continue
		}
		size, _ := tree.Size(name)
		out = append(out, TreeEntry{Path: name, Size: size})
	}
	return out, nil
}

// listBranchesFromEvent, listRepoFilesFromEvent, and
// getRepoFileContentFromEvent answer the "from event" query variants: the
// engine does not speak relay protocol and there is no file-content event
// kind in the signed-event schema, so the cheapest available source for
// these is the locally tracked branch/tree data, the same git-plumbing
// reads above. Their RPC handlers call straight through without ensuring
// any data level first, so they read whatever is already on disk.
func (e *Engine) listBranchesFromEvent(key string) ([]BranchSummary, error) {
	return e.listBranches(key)
}

func (e *Engine) listRepoFilesFromEvent(key, sha string) ([]TreeEntry, error) {
	return e.listTreeAtCommit(key, sha)
}

func (e *Engine) getRepoFileContentFromEvent(key, sha, path string) ([]byte, error) {
	return e.readFileAtCommit(key, sha, path)
}
