// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package remotesync compares local state to a remote, decides whether a
// fetch is needed, and performs the actual clone/fetch/fast-forward work
// the session manager orchestrates.
package remotesync

import (
	"context"
	"errors"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/nostr-git/engine/pkg/auth"
	"github.com/nostr-git/engine/pkg/engineerr"
	"github.com/nostr-git/engine/pkg/repocache"
	"github.com/nostr-git/engine/pkg/session"
)

// MinStaleness is the minimum age a cached sync timestamp must reach
// before NeedsUpdate considers it possibly stale.
const MinStaleness = 30 * time.Second

// Syncer implements session.Fetcher against go-git, and additionally
// exposes the needsUpdate/syncWithRemote operations the spec names
// directly for already-initialized repos.
type Syncer struct {
	fs      billy.Filesystem
	authCfg func() auth.Config
}

// New returns a Syncer whose working trees live under fs, resolving
// credentials from the Config returned by authConfig at call time (so a
// later setAuthConfig RPC is observed by every subsequent operation).
func New(fs billy.Filesystem, authConfig func() auth.Config) *Syncer {
	return &Syncer{fs: fs, authCfg: authConfig}
}

func (s *Syncer) authMethod(url string) (transport.AuthMethod, error) {
	if s.authCfg == nil {
		return nil, nil
	}
	return auth.Resolve(url, s.authCfg())
}

func (s *Syncer) open(dir string) (*git.Repository, billy.Filesystem, error) {
	return OpenRepository(s.fs, dir)
}

// OpenRepository opens the repository rooted at dir within fs, returning
// both the *git.Repository and its worktree filesystem so a caller (e.g.
// pkg/patchengine) can read or write working-tree files directly. Other
// packages that need an already-cloned repository's handle should use
// this rather than re-deriving the storer/worktree chroot dance.
func OpenRepository(fs billy.Filesystem, dir string) (*git.Repository, billy.Filesystem, error) {
	worktree, err := fs.Chroot(dir)
	if err != nil {
		return nil, nil, err
	}
	dotGit, err := worktree.Chroot(".git")
	if err != nil {
		return nil, nil, err
	}
	storer := filesystem.NewStorage(dotGit, cache.NewObjectLRUDefault())
	repo, err := git.Open(storer, worktree)
	return repo, worktree, err
}

// Fetch satisfies session.Fetcher: it clones if dir has no repository
// yet, otherwise fetches; depth is honored only at session.LevelFull.
func (s *Syncer) Fetch(ctx context.Context, dir string, req session.FetchRequest, progress func(session.Event)) (session.FetchResult, error) {
	url := req.CloneURLs[0]
	progress(session.Event{Key: req.Key, Phase: session.PhaseStart})

	repo, _, err := s.open(dir)
	switch {
	case errors.Is(err, git.ErrRepositoryNotExists):
		repo, err = s.clone(ctx, dir, url, req)
	case err == nil:
		err = s.fetch(ctx, repo, url, req)
	}
	if err != nil {
		progress(session.Event{Key: req.Key, Phase: session.PhaseError, Message: err.Error()})
		return session.FetchResult{}, classifyFetchErr(err)
	}

	head, headErr := repo.Head()
	result := session.FetchResult{UsedURL: url}
	if headErr == nil {
		result.HeadCommit = head.Hash().String()
	}
	progress(session.Event{Key: req.Key, Phase: session.PhaseComplete})
	return result, nil
}

func (s *Syncer) clone(ctx context.Context, dir, url string, req session.FetchRequest) (*git.Repository, error) {
	authMethod, err := s.authMethod(url)
	if err != nil {
		return nil, err
	}

	opts := &git.CloneOptions{URL: url, Auth: authMethod}
	switch req.Level {
	case session.LevelRefs, session.LevelShallow:
		// A refs-only level is better served by a ls-remote style query
		// than a clone; when a clone does happen on the way to it (e.g.
		// because a shallow clone was also requested), a depth-1
		// single-branch clone is the cheapest approximation that still
		// yields a usable HEAD.
		opts.Depth = 1
		opts.SingleBranch = true
	case session.LevelFull:
		if req.Depth > 0 {
			opts.Depth = req.Depth
		}
	}
	if req.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(req.Branch)
	}

	worktree, err := s.fs.Chroot(dir)
	if err != nil {
		return nil, err
	}
	dotGit, err := worktree.Chroot(".git")
	if err != nil {
		return nil, err
	}
	storer := filesystem.NewStorage(dotGit, cache.NewObjectLRUDefault())
	return git.CloneContext(ctx, storer, worktree, opts)
}

func (s *Syncer) fetch(ctx context.Context, repo *git.Repository, url string, req session.FetchRequest) error {
	authMethod, err := s.authMethod(url)
	if err != nil {
		return err
	}

	opts := &git.FetchOptions{RemoteName: "origin", Auth: authMethod}
	if req.Level == session.LevelFull && req.Depth > 0 {
		opts.Depth = req.Depth
	}

	err = repo.FetchContext(ctx, opts)
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return err
	}
	return nil
}

// SyncWithRemote performs a plain fetch from cloneURL into the repository
// at dir (cloning if dir holds none yet), honoring an optional branch
// hint, without rewriting history — a divergence is reported to the
// caller, never silently resolved (callers use pkg/safepush for that).
func (s *Syncer) SyncWithRemote(ctx context.Context, dir, cloneURL, branch string) (session.FetchResult, error) {
	req := session.FetchRequest{CloneURLs: []string{cloneURL}, Branch: branch, Level: session.LevelFull}
	return s.Fetch(ctx, dir, req, func(session.Event) {})
}

// NeedsUpdate reports whether a fetch is warranted. It returns true when
// there is no cached entry or the entry records no HEAD. A last sync
// younger than MinStaleness returns false without contacting the remote,
// so a remote HEAD that moved inside that window is not detected. Past
// that age a stale timestamp alone does not return true: the result is
// whether the server's advertised HEAD differs from the cached one, read
// with a refs-only remote query (an ls-remote equivalent), never a fetch.
func (s *Syncer) NeedsUpdate(ctx context.Context, cloneURL string, cached *repocache.Entry) (bool, error) {
	if cached == nil || cached.LastHeadCommit == "" {
		return true, nil
	}
	if time.Since(cached.LastSyncAt) < MinStaleness {
		return false, nil
	}

	remoteHead, err := s.remoteHead(ctx, cloneURL)
	if err != nil {
		return false, err
	}
	return remoteHead != cached.LastHeadCommit, nil
}

func (s *Syncer) remoteHead(ctx context.Context, cloneURL string) (string, error) {
	remote := git.NewRemote(nil, &config.RemoteConfig{Name: "origin", URLs: []string{cloneURL}})
	authMethod, err := s.authMethod(cloneURL)
	if err != nil {
		return "", err
	}
	refs, err := remote.ListContext(ctx, &git.ListOptions{Auth: authMethod})
	if err != nil {
		return "", err
	}
	for _, ref := range refs {
		if ref.Name() == plumbing.HEAD {
			return ref.Hash().String(), nil
		}
	}
	if len(refs) > 0 {
		return refs[0].Hash().String(), nil
	}
	return "", engineerr.New(engineerr.KindRepoNotFound, "remote advertised no refs")
}

func classifyFetchErr(err error) error {
	kind := engineerr.Classify(err)
	if kind == engineerr.KindUnknown {
		return engineerr.Wrap(engineerr.KindNetworkError, err, "")
	}
	return engineerr.Wrap(kind, err, "")
}
