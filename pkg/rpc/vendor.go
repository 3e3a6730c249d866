// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package rpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/nostr-git/engine/pkg/engineerr"
	"github.com/nostr-git/engine/pkg/remotesync"
	"github.com/nostr-git/engine/pkg/vendor"
)

// forkAndCloneRepo implements forkAndCloneRepo/cloneAndFork: fork the
// source repo on destBackend (importing across backends when source and
// dest differ), then pull the result into a local working tree keyed by
// key.
func (e *Engine) forkAndCloneRepo(ctx context.Context, p forkParams) (*vendor.Repository, error) {
	source, err := e.provider(p.SourceBackend)
	if err != nil {
		return nil, err
	}
	dest, err := e.provider(p.DestBackend)
	if err != nil {
		return nil, err
	}

	forked, err := vendor.ForkAcrossProviders(ctx, source, dest, p.SourceOwner, p.SourceRepo, p.SourceCloneURL, p.ForkOptions, vendor.DefaultPollOptions)
	if err != nil {
		return nil, err
	}

	if p.Key != "" && forked.CloneURL != "" {
		if _, err := e.sessions.SmartInitializeRepo(ctx, p.Key, []string{forked.CloneURL}, false); err != nil {
			return forked, fmt.Errorf("fork succeeded but clone failed: %w", err)
		}
	}
	return forked, nil
}

// UpdateAndPushResult is updateAndPushFiles' result.
type UpdateAndPushResult struct {
	CommitOID string `json:"commitOid,omitempty"`
	Pushed    bool   `json:"pushed"`
}

// updateAndPushFiles writes/deletes files in the working tree for key,
// commits, and pushes to RemoteURL (or every configured remote if empty).
func (e *Engine) updateAndPushFiles(ctx context.Context, p updateAndPushParams) (*UpdateAndPushResult, error) {
	repo, worktreeFS, err := remotesync.OpenRepository(e.sessions.Filesystem().Raw(), e.sessions.RepoDir(p.Key))
	if err != nil {
		return nil, engineerr.Wrap(engineerr.KindFSError, err, "open repository")
	}
	tree, err := repo.Worktree()
	if err != nil {
		return nil, engineerr.Wrap(engineerr.KindFSError, err, "open worktree")
	}

	for path, content := range p.Files {
		f, err := worktreeFS.Create(path)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", path, err)
		}
		if _, err := f.Write(content); err != nil {
			f.Close()
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		f.Close()
		if _, err := tree.Add(path); err != nil {
			return nil, fmt.Errorf("stage %s: %w", path, err)
		}
	}
	for _, path := range p.Deletes {
		if _, err := tree.Remove(path); err != nil {
			return nil, fmt.Errorf("remove %s: %w", path, err)
		}
	}

	status, err := tree.Status()
	if err != nil {
		return nil, engineerr.Wrap(engineerr.KindFSError, err, "read worktree status")
	}
	if status.IsClean() {
		return &UpdateAndPushResult{}, nil
	}

	msg := p.CommitMessage
	if msg == "" {
		msg = "Update files"
	}
	hash, err := tree.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: p.AuthorName, Email: p.AuthorEmail, When: time.Now()},
	})
	if err != nil {
		return nil, engineerr.Wrap(engineerr.KindFSError, err, "commit changes")
	}
	result := &UpdateAndPushResult{CommitOID: hash.String()}

	remotes, err := repo.Remotes()
	if err != nil {
		return result, engineerr.Wrap(engineerr.KindFSError, err, "list remotes")
	}
	for _, remote := range remotes {
		name := remote.Config().Name
		if p.RemoteURL != "" {
			urls := remote.Config().URLs
			matches := false
			for _, u := range urls {
				if u == p.RemoteURL {
					matches = true
					break
				}
			}
			if !matches {
				continue
			}
		}
		pushOpts := &git.PushOptions{RemoteName: name}
		if err := repo.PushContext(ctx, pushOpts); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return result, engineerr.Wrap(engineerr.Classify(err), err, "push "+name)
		}
		result.Pushed = true
	}
	return result, nil
}

// resetRepoToRemote implements resetRepoToRemote(key, branch): hard-reset
// the local working tree and branch ref to the remote tracking branch's
// current tip, discarding any local divergence.
func (e *Engine) resetRepoToRemote(ctx context.Context, key, branch string) error {
	repo, err := e.openRepo(key)
	if err != nil {
		return err
	}
	remoteRef := plumbing.NewRemoteReferenceName("origin", branch)
	ref, err := repo.Reference(remoteRef, true)
	if err != nil {
		return engineerr.Wrap(engineerr.KindInvalidRefspec, err, "resolve remote-tracking ref")
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return engineerr.Wrap(engineerr.KindFSError, err, "open worktree")
	}
	if err := worktree.Reset(&git.ResetOptions{Commit: ref.Hash(), Mode: git.HardReset}); err != nil {
		return engineerr.Wrap(engineerr.KindFSError, err, "hard reset to remote tip")
	}
	localRef := plumbing.NewHashReference(plumbing.NewBranchReferenceName(branch), ref.Hash())
	if err := repo.Storer.SetReference(localRef); err != nil {
		return engineerr.Wrap(engineerr.KindFSError, err, "update local branch ref")
	}
	return nil
}
