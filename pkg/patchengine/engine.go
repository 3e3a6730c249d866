// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package patchengine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/nostr-git/engine/pkg/auth"
	"github.com/nostr-git/engine/pkg/engineerr"
	"github.com/nostr-git/engine/pkg/refresolve"
	"github.com/nostr-git/engine/pkg/remotesync"
	"github.com/nostr-git/engine/pkg/repocache"
	"github.com/nostr-git/engine/pkg/session"
)

// Author is the commit identity applyPatchAndPush uses for the merge
// commit it creates.
type Author struct {
	Name  string
	Email string
}

// PushOutcome is one remote's result from applyPatchAndPush's push fan-out.
type PushOutcome struct {
	Remote string `json:"remote"`
	Detail string `json:"detail,omitempty"`
}

// PushResult is the full record applyPatchAndPush returns.
type PushResult struct {
	Success        bool          `json:"success"`
	MergeCommitOID string        `json:"mergeCommitOid,omitempty"`
	PushedRemotes  []PushOutcome `json:"pushedRemotes,omitempty"`
	PushErrors     []PushOutcome `json:"pushErrors,omitempty"`
	SkippedRemotes []PushOutcome `json:"skippedRemotes,omitempty"`
}

// Engine implements analyzePatchMerge and applyPatchAndPush against a
// session.Manager's working trees, sharing its repo cache.
type Engine struct {
	sessions *session.Manager
	cache    repocache.Store
	authCfg  func() auth.Config
}

// New returns an Engine sharing sessions' filesystem and cache.
func New(sessions *session.Manager, authConfig func() auth.Config) *Engine {
	return &Engine{sessions: sessions, cache: sessions.Cache(), authCfg: authConfig}
}

// initialPatchCloneDepth is what AnalyzePatchMerge/ApplyPatchAndPush ask
// for up front: enough to classify or apply against the target branch's
// current tip. depthEscalationCap is the one-shot fallback depth requested
// if that tip turns out unresolvable at the shallow depth — a shallower
// clone than the target branch's history actually needs, detected the
// same way getCommitHistory detects an insufficient shallow log: the
// commit can't be loaded.
const (
	initialPatchCloneDepth = 1
	depthEscalationCap     = 1000
)

// ensurePatchBaseClone brings key to at least initialPatchCloneDepth at
// targetBranch, then probes whether the branch tip actually resolves. A
// shallow clone whose grafted boundary excludes the tip (e.g. a branch
// pointer that moved since the last shallow fetch) fails that probe; in
// that case it escalates once to depthEscalationCap and returns, letting
// the caller's own OpenRepository pick up the deepened history.
func (e *Engine) ensurePatchBaseClone(ctx context.Context, key, targetBranch string) error {
	urls := e.cloneURLsFor(key)
	if err := e.sessions.EnsureFullClone(ctx, key, urls, targetBranch, initialPatchCloneDepth); err != nil {
		return err
	}
	if _, err := e.probeTargetBranch(key, targetBranch); err == nil {
		return nil
	}
	return e.sessions.EnsureFullClone(ctx, key, urls, targetBranch, depthEscalationCap)
}

// probeTargetBranch reports whether targetBranch's tip commit is loadable
// from the on-disk clone right now.
func (e *Engine) probeTargetBranch(key, targetBranch string) (plumbing.Hash, error) {
	repo, _, err := remotesync.OpenRepository(e.sessions.Filesystem().Raw(), e.sessions.RepoDir(key))
	if err != nil {
		return plumbing.ZeroHash, err
	}
	resolvedBranch, err := refresolve.ResolveBranch(repo, targetBranch)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(resolvedBranch))
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if _, err := repo.CommitObject(*hash); err != nil {
		return plumbing.ZeroHash, err
	}
	return *hash, nil
}

// AnalyzePatchMerge implements analyzePatchMerge(key, patch, targetBranch?).
func (e *Engine) AnalyzePatchMerge(ctx context.Context, key, patchID, patch, targetBranch string, progress func(session.Event)) (*Analysis, error) {
	emit := func(phase session.Phase, msg string) {
		if progress != nil {
			progress(session.Event{Key: key, Phase: phase, Message: msg})
		}
	}
	emit(session.PhaseStart, "")

	diffs, err := ParsePatch(patch)
	if err != nil {
		emit(session.PhaseError, err.Error())
		return nil, engineerr.Wrap(engineerr.KindInvalidInput, err, "parse patch")
	}

	if err := e.ensurePatchBaseClone(ctx, key, targetBranch); err != nil {
		emit(session.PhaseError, err.Error())
		return nil, err
	}

	repo, _, err := remotesync.OpenRepository(e.sessions.Filesystem().Raw(), e.sessions.RepoDir(key))
	if err != nil {
		emit(session.PhaseError, err.Error())
		return nil, engineerr.Wrap(engineerr.KindFSError, err, "open repository")
	}

	resolvedBranch, err := refresolve.ResolveBranch(repo, targetBranch)
	if err != nil {
		emit(session.PhaseError, err.Error())
		return nil, err
	}

	targetHash, err := repo.ResolveRevision(plumbing.Revision(resolvedBranch))
	if err != nil {
		emit(session.PhaseError, err.Error())
		return nil, engineerr.Wrap(engineerr.KindInvalidRefspec, err, "resolve target ref")
	}
	targetTip := targetHash.String()

	if cached, hit, _ := repocache.GetFreshMergeAnalysis(e.cache, key, patchID, resolvedBranch, targetTip); hit {
		var analysis Analysis
		if err := json.Unmarshal(cached.Result, &analysis); err == nil {
			emit(session.PhaseComplete, "cache-hit")
			return &analysis, nil
		}
	}

	emit(session.PhaseAnalyzing, "")
	commit, err := repo.CommitObject(*targetHash)
	if err != nil {
		emit(session.PhaseError, err.Error())
		return nil, engineerr.Wrap(engineerr.KindCorruptObject, err, "load target commit")
	}
	tree, err := commit.Tree()
	if err != nil {
		emit(session.PhaseError, err.Error())
		return nil, engineerr.Wrap(engineerr.KindCorruptObject, err, "load target tree")
	}

	analysis, err := Classify(CommitTreeReader{Tree: tree}, diffs, true)
	if err != nil {
		emit(session.PhaseError, err.Error())
		return nil, engineerr.Wrap(engineerr.KindFSError, err, "classify patch")
	}

	emit(session.PhasePersisting, "")
	payload, _ := json.Marshal(analysis)
	_ = e.cache.SetMergeAnalysis(key, repocache.MergeAnalysisSnapshot{
		PatchID:      patchID,
		TargetBranch: resolvedBranch,
		TargetTip:    targetTip,
		Result:       payload,
		LastUpdated:  time.Now(),
	})

	emit(session.PhaseComplete, "")
	return analysis, nil
}

// ApplyPatchAndPush implements applyPatchAndPush(key, patch, targetBranch?,
// mergeCommitMessage?, author).
func (e *Engine) ApplyPatchAndPush(ctx context.Context, key, patch, targetBranch, mergeCommitMessage string, author Author) (*PushResult, error) {
	if err := e.ensurePatchBaseClone(ctx, key, targetBranch); err != nil {
		return nil, err
	}

	diffs, err := ParsePatch(patch)
	if err != nil {
		return nil, engineerr.Wrap(engineerr.KindInvalidInput, err, "parse patch")
	}

	repo, worktreeFS, err := remotesync.OpenRepository(e.sessions.Filesystem().Raw(), e.sessions.RepoDir(key))
	if err != nil {
		return nil, engineerr.Wrap(engineerr.KindFSError, err, "open repository")
	}

	resolvedBranch, err := refresolve.ResolveBranch(repo, targetBranch)
	if err != nil {
		return nil, err
	}

	targetHash, err := repo.ResolveRevision(plumbing.Revision(resolvedBranch))
	if err != nil {
		return nil, engineerr.Wrap(engineerr.KindInvalidRefspec, err, "resolve target ref")
	}
	localBranch := localBranchName(resolvedBranch)
	localRef := plumbing.NewBranchReferenceName(localBranch)
	if err := repo.Storer.SetReference(plumbing.NewHashReference(localRef, *targetHash)); err != nil {
		return nil, engineerr.Wrap(engineerr.KindFSError, err, "update local branch ref")
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, engineerr.Wrap(engineerr.KindFSError, err, "open worktree")
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Branch: localRef, Force: true}); err != nil {
		return nil, engineerr.Wrap(engineerr.KindInvalidRefspec, err, "checkout target branch")
	}

	if err := applyDiffsToWorktree(worktreeFS, diffs); err != nil {
		_ = worktree.Reset(&git.ResetOptions{Mode: git.HardReset})
		return nil, engineerr.New(engineerr.KindMergeConflict, "patch does not apply cleanly").WithHint(err.Error())
	}

	for _, d := range diffs {
		path := d.NewPath
		if path == "" {
			path = d.OldPath
		}
		if d.IsDelete {
			_, _ = worktree.Remove(path)
		} else {
			if _, err := worktree.Add(path); err != nil {
				_ = worktree.Reset(&git.ResetOptions{Mode: git.HardReset})
				return nil, engineerr.Wrap(engineerr.KindFSError, err, "stage patched file")
			}
		}
	}

	if mergeCommitMessage == "" {
		mergeCommitMessage = "Apply patch"
	}
	commitHash, err := worktree.Commit(mergeCommitMessage, &git.CommitOptions{
		Author: &object.Signature{Name: author.Name, Email: author.Email, When: time.Now()},
	})
	if err != nil {
		return nil, engineerr.Wrap(engineerr.KindFSError, err, "create merge commit")
	}

	result := &PushResult{MergeCommitOID: commitHash.String()}
	remotes, err := repo.Remotes()
	if err != nil {
		return nil, engineerr.Wrap(engineerr.KindFSError, err, "list remotes")
	}

	for _, remote := range remotes {
		name := remote.Config().Name
		url := ""
		if urls := remote.Config().URLs; len(urls) > 0 {
			url = urls[0]
		}
		if !isPushableScheme(url) {
			result.SkippedRemotes = append(result.SkippedRemotes, PushOutcome{Remote: name, Detail: "unsupported scheme"})
			continue
		}

		authMethod, authErr := e.authMethod(url)
		if authErr != nil {
			result.PushErrors = append(result.PushErrors, PushOutcome{Remote: name, Detail: authErr.Error()})
			continue
		}

		err := repo.PushContext(ctx, &git.PushOptions{RemoteName: name, Auth: authMethod})
		switch {
		case err == nil, errors.Is(err, git.NoErrAlreadyUpToDate):
			result.PushedRemotes = append(result.PushedRemotes, PushOutcome{Remote: name})
		default:
			result.PushErrors = append(result.PushErrors, PushOutcome{Remote: name, Detail: err.Error()})
		}
	}

	result.Success = len(result.PushedRemotes) > 0
	return result, nil
}

func (e *Engine) authMethod(url string) (transport.AuthMethod, error) {
	if e.authCfg == nil {
		return nil, nil
	}
	return auth.Resolve(url, e.authCfg())
}

func (e *Engine) cloneURLsFor(key string) []string {
	if entry, ok, _ := e.cache.Get(key); ok && entry != nil && len(entry.CloneURLs) > 0 {
		return entry.CloneURLs
	}
	return nil
}

// localBranchName strips the origin/ and refs/heads/ forms ResolveBranch
// may return so the result is a bare branch name suitable for
// plumbing.NewBranchReferenceName.
func localBranchName(resolved string) string {
	name := strings.TrimPrefix(resolved, "refs/heads/")
	name = strings.TrimPrefix(name, "origin/")
	return name
}

func isPushableScheme(url string) bool {
	for _, prefix := range []string{"https://", "http://", "ssh://", "git@"} {
		if len(url) >= len(prefix) && url[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

// applyDiffsToWorktree test-applies every hunk of every diff against the
// working tree's current on-disk content; a file that fails to apply
// aborts the whole series before any file is written, so the working
// tree is left clean on conflict.
func applyDiffsToWorktree(fs billy.Filesystem, diffs []FileDiff) error {
	type pending struct {
		path    string
		delete  bool
		content []byte
	}
	var writes []pending

	for _, d := range diffs {
		path := d.NewPath
		if path == "" {
			path = d.OldPath
		}
		readPath := d.OldPath
		if readPath == "" {
			readPath = d.NewPath
		}

		var content []byte
		if !d.IsNew {
			f, err := fs.Open(readPath)
			if err != nil {
				return fmt.Errorf("open %s: %w", readPath, err)
			}
			content, err = io.ReadAll(f)
			_ = f.Close()
			if err != nil {
				return fmt.Errorf("read %s: %w", readPath, err)
			}
		}

		lines := splitLines(content)
		for _, hunk := range d.Hunks {
			applied, ok := applyHunk(lines, hunk)
			if !ok {
				return fmt.Errorf("hunk does not apply to %s", path)
			}
			lines = applied
		}

		if d.IsDelete {
			writes = append(writes, pending{path: readPath, delete: true})
			continue
		}
		writes = append(writes, pending{path: path, content: joinLines(lines)})
	}

	for _, w := range writes {
		if w.delete {
			if err := fs.Remove(w.path); err != nil {
				return fmt.Errorf("remove %s: %w", w.path, err)
			}
			continue
		}
		out, err := fs.Create(w.path)
		if err != nil {
			return fmt.Errorf("create %s: %w", w.path, err)
		}
		_, writeErr := out.Write(w.content)
		closeErr := out.Close()
		if writeErr != nil {
			return fmt.Errorf("write %s: %w", w.path, writeErr)
		}
		if closeErr != nil {
			return fmt.Errorf("close %s: %w", w.path, closeErr)
		}
	}
	return nil
}

