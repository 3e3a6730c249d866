// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package safepush runs the preflight checks, confirmation gating, and
// (for the decentralized backend) signed-state-then-push dance that
// every push must go through before bytes reach a remote.
package safepush

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/client"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/nostr-git/engine/pkg/auth"
	"github.com/nostr-git/engine/pkg/engineerr"
	"github.com/nostr-git/engine/pkg/eventio"
	"github.com/nostr-git/engine/pkg/logging"
	"github.com/nostr-git/engine/pkg/refresolve"
	"github.com/nostr-git/engine/pkg/remotesync"
	"github.com/nostr-git/engine/pkg/session"
)

// userAgent is sent on the unauthenticated decentralized-backend push;
// real git clients send the analogous "git/<version>" string.
const userAgent = "git/nostr-git-engine"

// publishTimeout bounds how long safePushToRemote waits for the signed
// state event to reach a relay before proceeding with the pack push
// regardless of the publish outcome.
const publishTimeout = 3 * time.Second

func init() {
	// The decentralized backend pushes unauthenticated, identified only
	// by this User-Agent; install it once as the default http/https
	// transport so every push through go-git's http transport carries it.
	httpClient := &http.Client{Transport: &userAgentTransport{rt: http.DefaultTransport}}
	transportClient := githttp.NewClient(httpClient)
	client.InstallProtocol("http", transportClient)
	client.InstallProtocol("https", transportClient)
}

type userAgentTransport struct{ rt http.RoundTripper }

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	return t.rt.RoundTrip(req)
}

// Options configures one safePushToRemote call.
type Options struct {
	Key       string
	Branch    string
	RemoteURL string

	BlockIfUncommitted bool
	RequireUpToDate    bool
	BlockIfShallow     bool
	AllowForce         bool
	ConfirmDestructive bool

	// Decentralized, when true, runs the signed-state-publish-then-push
	// dance; RepoAddress is the kind 30618 coordinate the state event is
	// addressed to, and Events is required.
	Decentralized bool
	RepoAddress   string
	Events        eventio.Adapter
}

// Result is what safePushToRemote returns.
type Result struct {
	Pushed          bool
	Forced          bool
	StatePublished  bool
	StatePublishErr string
}

// Pusher bundles the collaborators safePushToRemote needs: a session
// manager to read/escalate data level, a syncer for needsUpdate and
// repository access, and an auth config source for credentials.
type Pusher struct {
	sessions *session.Manager
	syncer   *remotesync.Syncer
	authCfg  func() auth.Config
	logger   logging.Logger
}

// New returns a Pusher sharing sessions' and syncer's state, logging to
// logging.Noop until SetLogger installs something else.
func New(sessions *session.Manager, syncer *remotesync.Syncer, authConfig func() auth.Config) *Pusher {
	return &Pusher{sessions: sessions, syncer: syncer, authCfg: authConfig, logger: logging.Noop}
}

// SetLogger installs the Logger subsequent SafePushToRemote calls report
// preflight blocks and push outcomes to.
func (p *Pusher) SetLogger(l logging.Logger) {
	if l == nil {
		l = logging.Noop
	}
	p.logger = l
}

// SafePushToRemote implements safePushToRemote(options) → result.
func (p *Pusher) SafePushToRemote(ctx context.Context, opts Options) (*Result, error) {
	repo, _, err := remotesync.OpenRepository(p.sessions.Filesystem().Raw(), p.sessions.RepoDir(opts.Key))
	if err != nil {
		return nil, engineerr.Wrap(engineerr.KindFSError, err, "open repository").
			WithContext(engineerr.Context{RepoKey: opts.Key, Operation: "safePushToRemote"})
	}

	if opts.BlockIfUncommitted {
		dirty, err := hasUncommittedChanges(repo)
		if err != nil {
			return nil, engineerr.Wrap(engineerr.KindFSError, err, "check working tree status")
		}
		if dirty {
			p.logger.Warn("safe push blocked: uncommitted changes", "repo", opts.Key)
			return nil, engineerr.New(engineerr.KindUncommittedChanges, "working tree has uncommitted changes").
				WithContext(engineerr.Context{RepoKey: opts.Key, Operation: "safePushToRemote"})
		}
	}

	if opts.RequireUpToDate {
		entry, _, _ := p.sessions.Cache().Get(opts.Key)
		needs, err := p.syncer.NeedsUpdate(ctx, opts.RemoteURL, entry)
		if err != nil {
			return nil, err
		}
		if needs {
			p.logger.Warn("safe push blocked: remote ahead", "repo", opts.Key, "remote", opts.RemoteURL)
			return nil, engineerr.New(engineerr.KindRemoteAhead, "remote has commits not present locally").
				WithContext(engineerr.Context{RepoKey: opts.Key, Remote: opts.RemoteURL, Operation: "safePushToRemote"})
		}
	}

	if opts.BlockIfShallow && p.sessions.GetDataLevel(opts.Key) != session.LevelFull {
		p.logger.Warn("safe push blocked: shallow clone", "repo", opts.Key)
		return nil, engineerr.New(engineerr.KindShallowClone, "local data level is not full").
			WithContext(engineerr.Context{RepoKey: opts.Key, Operation: "safePushToRemote"})
	}

	branch, err := refresolve.ResolveBranch(repo, opts.Branch)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	if opts.Decentralized {
		published, pubErr := publishStateEvent(ctx, repo, opts)
		result.StatePublished = published
		if pubErr != nil {
			result.StatePublishErr = pubErr.Error()
		}
	}

	authMethod, err := p.authMethodFor(opts)
	if err != nil {
		return nil, err
	}
	remoteName := remoteNameFor(repo, opts.RemoteURL)

	pushErr := repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{branchRefSpec(branch, false)},
		Auth:       authMethod,
	})
	if pushErr == nil || errors.Is(pushErr, git.NoErrAlreadyUpToDate) {
		result.Pushed = true
		p.logger.Info("pushed", "repo", opts.Key, "branch", branch, "remote", opts.RemoteURL)
		return result, nil
	}

	if !errors.Is(pushErr, git.ErrNonFastForwardUpdate) {
		return nil, engineerr.Wrap(engineerr.Classify(pushErr), pushErr, "push rejected").
			WithContext(engineerr.Context{RepoKey: opts.Key, Remote: opts.RemoteURL, Ref: branch, Operation: "safePushToRemote"})
	}

	if !opts.AllowForce {
		return nil, engineerr.New(engineerr.KindNotFastForward, "non-fast-forward update rejected").
			WithContext(engineerr.Context{RepoKey: opts.Key, Remote: opts.RemoteURL, Ref: branch, Operation: "safePushToRemote"})
	}
	if !opts.ConfirmDestructive {
		return nil, engineerr.New(engineerr.KindRequiresConfirm, "force push requires explicit confirmation").
			WithContext(engineerr.Context{RepoKey: opts.Key, Remote: opts.RemoteURL, Ref: branch, Operation: "safePushToRemote"})
	}

	if err := repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{branchRefSpec(branch, true)},
		Auth:       authMethod,
		Force:      true,
	}); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil, engineerr.Wrap(engineerr.Classify(err), err, "force push failed").
			WithContext(engineerr.Context{RepoKey: opts.Key, Remote: opts.RemoteURL, Ref: branch, Operation: "safePushToRemote"})
	}

	result.Pushed = true
	result.Forced = true
	p.logger.Warn("force pushed", "repo", opts.Key, "branch", branch, "remote", opts.RemoteURL)
	return result, nil
}

func branchRefSpec(branch string, force bool) config.RefSpec {
	spec := fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch)
	if force {
		spec = "+" + spec
	}
	return config.RefSpec(spec)
}

func (p *Pusher) authMethodFor(opts Options) (transport.AuthMethod, error) {
	if opts.Decentralized {
		// Authorization for the decentralized backend is governed by the
		// signed state event, not HTTP credentials.
		return nil, nil
	}
	if p.authCfg == nil {
		return nil, nil
	}
	return auth.Resolve(opts.RemoteURL, p.authCfg())
}

func remoteNameFor(repo *git.Repository, remoteURL string) string {
	remotes, err := repo.Remotes()
	if err != nil {
		return "origin"
	}
	for _, r := range remotes {
		for _, u := range r.Config().URLs {
			if u == remoteURL {
				return r.Config().Name
			}
		}
	}
	return "origin"
}

func hasUncommittedChanges(repo *git.Repository) (bool, error) {
	worktree, err := repo.Worktree()
	if err != nil {
		return false, err
	}
	status, err := worktree.Status()
	if err != nil {
		return false, err
	}
	return !status.IsClean(), nil
}

// publishStateEvent constructs a signed "repo state" event listing local
// heads and tags with their oids and a HEAD tag, addressed to
// opts.RepoAddress, and races publishing it against publishTimeout. The
// caller proceeds with the pack push regardless of the outcome.
func publishStateEvent(ctx context.Context, repo *git.Repository, opts Options) (bool, error) {
	if opts.Events == nil {
		return false, fmt.Errorf("decentralized push requires an event-IO adapter")
	}

	tags, err := stateTags(repo)
	if err != nil {
		return false, err
	}
	tags = append(tags, []string{"d", opts.RepoAddress})

	if relayBase, err := relayBaseFromPushURL(opts.RemoteURL); err == nil {
		tags = append(tags, []string{"relay", relayBase})
	}

	unsigned := eventio.Event{
		Kind:      eventio.KindRepoState,
		CreatedAt: time.Now().Unix(),
		Tags:      tags,
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	_, err = opts.Events.PublishEvent(publishCtx, unsigned)
	if err != nil {
		return false, err
	}
	return true, nil
}

func stateTags(repo *git.Repository) ([][]string, error) {
	var tags [][]string

	refs, err := repo.References()
	if err != nil {
		return nil, err
	}
	defer refs.Close()

	err = refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name()
		switch {
		case name.IsBranch():
			tags = append(tags, []string{"refs/heads/" + name.Short(), ref.Hash().String()})
		case name.IsTag():
			tags = append(tags, []string{"refs/tags/" + name.Short(), ref.Hash().String()})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if head, err := repo.Head(); err == nil {
		tags = append(tags, []string{"HEAD", head.Name().Short()})
	}
	return tags, nil
}

// relayBaseFromPushURL derives a relay base URL from a Smart-HTTP push
// URL by converting the scheme to a websocket scheme and stripping the
// path, e.g. https://host/owner/repo.git -> wss://host.
func relayBaseFromPushURL(pushURL string) (string, error) {
	u, err := url.Parse(pushURL)
	if err != nil {
		return "", err
	}
	scheme := "wss"
	if u.Scheme == "http" {
		scheme = "ws"
	}
	return scheme + "://" + u.Host, nil
}
