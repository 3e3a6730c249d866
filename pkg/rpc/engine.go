// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package rpc is the single external entry point this module exposes to
// a host application: a JSON-envelope method-dispatch table covering
// every operation named across the config, lifecycle, query, sync,
// patch, push, vendor, scaffold, and health method groups. A host never
// imports pkg/session, pkg/patchengine, or pkg/vendor directly — it
// calls Engine.Dispatch with a method name and a json.RawMessage
// payload and gets back a json.RawMessage result or a structured
// engineerr.Result failure envelope.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nostr-git/engine/pkg/engineconfig"
	"github.com/nostr-git/engine/pkg/engineerr"
	"github.com/nostr-git/engine/pkg/eventio"
	"github.com/nostr-git/engine/pkg/fsadapter"
	"github.com/nostr-git/engine/pkg/logging"
	"github.com/nostr-git/engine/pkg/patchengine"
	"github.com/nostr-git/engine/pkg/remotesync"
	"github.com/nostr-git/engine/pkg/repocache"
	"github.com/nostr-git/engine/pkg/safepush"
	"github.com/nostr-git/engine/pkg/session"
	"github.com/nostr-git/engine/pkg/vendor"
)

// Engine aggregates every collaborator a dispatched method might need.
// It owns no network connections of its own beyond what session.Manager
// and the vendor providers open per call.
type Engine struct {
	sessions   *session.Manager
	syncer     *remotesync.Syncer
	patches    *patchengine.Engine
	pusher     *safepush.Pusher
	config     *engineconfig.Store
	events     *engineconfig.EventIOStore
	logger     logging.Logger

	mu        sync.RWMutex
	providers map[string]vendor.Provider
}

// New builds an Engine backed by cache (durable repo-state storage) and
// fs (the root filesystem working trees are chrooted under rootDir).
// providers keys vendor operations by backend name ("github", "gitlab",
// "gitea", "relay").
func New(fs fsadapter.Adapter, rootDir string, cache repocache.Store, providers map[string]vendor.Provider) *Engine {
	cfg := engineconfig.New()
	events := engineconfig.NewEventIOStore()
	syncer := remotesync.New(fs.Raw(), cfg.AuthConfig)
	sessions := session.New(fs, rootDir, cache, syncer)
	if providers == nil {
		providers = map[string]vendor.Provider{}
	}
	return &Engine{
		sessions:  sessions,
		syncer:    syncer,
		patches:   patchengine.New(sessions, cfg.AuthConfig),
		pusher:    safepush.New(sessions, syncer, cfg.AuthConfig),
		config:    cfg,
		events:    events,
		logger:    logging.Noop,
		providers: providers,
	}
}

// RegisterProvider installs or replaces the vendor.Provider used for
// backend's Vendor-group operations.
func (e *Engine) RegisterProvider(backend string, p vendor.Provider) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.providers[backend] = p
}

// SetLogger installs the Logger this Engine and its collaborators
// (session.Manager, safepush.Pusher) report operations to. Until
// called, every operation logs to logging.Noop.
func (e *Engine) SetLogger(l logging.Logger) {
	if l == nil {
		l = logging.Noop
	}
	e.mu.Lock()
	e.logger = l
	e.mu.Unlock()
	e.sessions.SetLogger(l)
	e.pusher.SetLogger(l)
}

func (e *Engine) provider(backend string) (vendor.Provider, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.providers[backend]
	if !ok {
		return nil, engineerr.New(engineerr.KindInvalidInput, fmt.Sprintf("no vendor provider registered for backend %q", backend))
	}
	return p, nil
}

// envelope is the outer shape every Dispatch response takes: either data
// is populated (success) or the error fields are (failure), mirroring
// engineerr.Result so callers parse one shape regardless of method.
type envelope struct {
	engineerr.Result
	Data json.RawMessage `json:"data,omitempty"`
}

func ok(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(envelope{Result: engineerr.Result{Success: true}, Data: data})
	return out, err
}

func fail(err error, op string) (json.RawMessage, error) {
	res := engineerr.ToResult(err, engineerr.Context{Operation: op})
	return json.Marshal(envelope{Result: res})
}

// Dispatch decodes params per method, invokes the matching handler, and
// returns a JSON envelope. It never returns a Go error for a domain
// failure or for malformed params — those are carried inside the
// envelope — only for an unknown method or an envelope that cannot be
// marshaled.
func (e *Engine) Dispatch(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, error) {
	handler, ok := handlers[method]
	if !ok {
		return nil, fmt.Errorf("unknown rpc method %q", method)
	}
	return handler(ctx, e, params)
}

type handlerFunc func(ctx context.Context, e *Engine, params json.RawMessage) (json.RawMessage, error)

var handlers map[string]handlerFunc

func init() {
	handlers = map[string]handlerFunc{
		"setAuthConfig": h(func(e *Engine, p setAuthConfigParams) (any, error) {
			e.config.SetAuth(p.Auth)
			return struct{}{}, nil
		}),
		"setGitConfig": h(func(e *Engine, p setGitConfigParams) (any, error) {
			e.config.SetIdentity(p.Identity)
			return struct{}{}, nil
		}),
		"setEventIO": h(func(e *Engine, p setEventIOParams) (any, error) {
			return struct{}{}, fmt.Errorf("setEventIO takes a live adapter; call Engine.SetEventIO directly, not over the wire")
		}),

		"initializeRepo": hc(func(ctx context.Context, e *Engine, p lifecycleParams) (any, error) {
			return struct{}{}, e.sessions.InitializeRepo(ctx, p.Key, p.CloneURLs)
		}),
		"smartInitializeRepo": hc(func(ctx context.Context, e *Engine, p smartInitParams) (any, error) {
			return e.sessions.SmartInitializeRepo(ctx, p.Key, p.CloneURLs, p.ForceUpdate)
		}),
		"ensureShallowClone": hc(func(ctx context.Context, e *Engine, p lifecycleParams) (any, error) {
			return struct{}{}, e.sessions.EnsureShallowClone(ctx, p.Key, p.CloneURLs, p.Branch)
		}),
		"ensureFullClone": hc(func(ctx context.Context, e *Engine, p fullCloneParams) (any, error) {
			return struct{}{}, e.sessions.EnsureFullClone(ctx, p.Key, p.CloneURLs, p.Branch, p.Depth)
		}),
		"clone": hc(func(ctx context.Context, e *Engine, p smartInitParams) (any, error) {
			return e.sessions.SmartInitializeRepo(ctx, p.Key, p.CloneURLs, false)
		}),
		"deleteRepo": hc(func(ctx context.Context, e *Engine, p keyParams) (any, error) {
			return struct{}{}, e.sessions.DeleteRepo(ctx, p.Key)
		}),
		"clearCloneCache": hc(func(ctx context.Context, e *Engine, p keyParams) (any, error) {
			return struct{}{}, e.sessions.Cache().Delete(p.Key)
		}),
		"getRepoDataLevel": h(func(e *Engine, p keyParams) (any, error) {
			return struct {
				DataLevel string `json:"dataLevel"`
			}{e.sessions.GetDataLevel(p.Key).String()}, nil
		}),

		"getStatus": h(func(e *Engine, p keyParams) (any, error) { return e.getStatus(p.Key) }),
		"getCommitHistory": hc(func(ctx context.Context, e *Engine, p commitHistoryParams) (any, error) {
			return e.getCommitHistory(ctx, p.Key, p.Branch, p.MaxCount)
		}),
		"getCommitCount": hc(func(ctx context.Context, e *Engine, p branchParams) (any, error) {
			return e.getCommitCount(ctx, p.Key, p.Branch)
		}),
		"getCommitDetails": hc(func(ctx context.Context, e *Engine, p commitParams) (any, error) {
			return e.getCommitDetails(ctx, p.Key, p.SHA)
		}),
		"listBranches": h(func(e *Engine, p keyParams) (any, error) { return e.listBranches(p.Key) }),
		"resolveBranch": h(func(e *Engine, p branchParams) (any, error) {
			resolved, err := e.resolveBranch(p.Key, p.Branch)
			if err != nil {
				return nil, err
			}
			return struct {
				Resolved string `json:"resolved"`
			}{resolved}, nil
		}),
		"listServerRefs": hc(func(ctx context.Context, e *Engine, p cloneURLParams) (any, error) {
			return e.listServerRefs(ctx, p.CloneURL)
		}),
		"listRepoFilesFromEvent": h(func(e *Engine, p commitParams) (any, error) {
			return e.listRepoFilesFromEvent(p.Key, p.SHA)
		}),
		"getRepoFileContentFromEvent": h(func(e *Engine, p fileAtCommitParams) (any, error) {
			content, err := e.getRepoFileContentFromEvent(p.Key, p.SHA, p.Path)
			if err != nil {
				return nil, err
			}
			return struct {
				Content []byte `json:"content"`
			}{content}, nil
		}),
		"listBranchesFromEvent": h(func(e *Engine, p keyParams) (any, error) { return e.listBranchesFromEvent(p.Key) }),
		"fileExistsAtCommit": h(func(e *Engine, p fileAtCommitParams) (any, error) {
			exists, err := e.fileExistsAtCommit(p.Key, p.SHA, p.Path)
			if err != nil {
				return nil, err
			}
			return struct {
				Exists bool `json:"exists"`
			}{exists}, nil
		}),
		"getFileHistory": hc(func(ctx context.Context, e *Engine, p fileHistoryParams) (any, error) {
			return e.getFileHistory(ctx, p.Key, p.Branch, p.Path)
		}),
		"listTreeAtCommit": h(func(e *Engine, p commitParams) (any, error) { return e.listTreeAtCommit(p.Key, p.SHA) }),

		"syncWithRemote": hc(func(ctx context.Context, e *Engine, p syncParams) (any, error) {
			return e.syncer.SyncWithRemote(ctx, e.sessions.RepoDir(p.Key), p.CloneURL, p.Branch)
		}),
		"needsUpdate": hc(func(ctx context.Context, e *Engine, p needsUpdateParams) (any, error) {
			entry, _, _ := e.sessions.Cache().Get(p.Key)
			needs, err := e.syncer.NeedsUpdate(ctx, p.CloneURL, entry)
			if err != nil {
				return nil, err
			}
			return struct {
				NeedsUpdate bool `json:"needsUpdate"`
			}{needs}, nil
		}),
		"resetRepoToRemote": hc(func(ctx context.Context, e *Engine, p syncParams) (any, error) {
			return struct{}{}, e.resetRepoToRemote(ctx, p.Key, p.Branch)
		}),

		"analyzePatchMerge": hc(func(ctx context.Context, e *Engine, p analyzeParams) (any, error) {
			return e.patches.AnalyzePatchMerge(ctx, p.Key, p.PatchID, p.Patch, p.TargetBranch, nil)
		}),
		"applyPatchAndPush": hc(func(ctx context.Context, e *Engine, p applyPatchParams) (any, error) {
			return e.patches.ApplyPatchAndPush(ctx, p.Key, p.Patch, p.TargetBranch, p.MergeCommitMessage, p.Author)
		}),

		"pushToRemote": hc(func(ctx context.Context, e *Engine, p safePushParams) (any, error) {
			p.AllowForce = true
			return e.pusher.SafePushToRemote(ctx, p.toOptions(e.events.Get()))
		}),
		"safePushToRemote": hc(func(ctx context.Context, e *Engine, p safePushParams) (any, error) {
			return e.pusher.SafePushToRemote(ctx, p.toOptions(e.events.Get()))
		}),

		"createRemoteRepo": hc(func(ctx context.Context, e *Engine, p createRemoteRepoParams) (any, error) {
			prov, err := e.provider(p.Backend)
			if err != nil {
				return nil, err
			}
			return prov.CreateRepo(ctx, p.Owner, p.Edit)
		}),
		"updateRemoteRepoMetadata": hc(func(ctx context.Context, e *Engine, p updateRemoteRepoParams) (any, error) {
			prov, err := e.provider(p.Backend)
			if err != nil {
				return nil, err
			}
			return prov.UpdateRepo(ctx, p.Owner, p.Repo, p.Edit)
		}),
		"forkAndCloneRepo": hc(func(ctx context.Context, e *Engine, p forkParams) (any, error) {
			return e.forkAndCloneRepo(ctx, p)
		}),
		"cloneAndFork": hc(func(ctx context.Context, e *Engine, p forkParams) (any, error) {
			return e.forkAndCloneRepo(ctx, p)
		}),
		"cloneRemoteRepo": hc(func(ctx context.Context, e *Engine, p lifecycleParams) (any, error) {
			return e.sessions.SmartInitializeRepo(ctx, p.Key, p.CloneURLs, false)
		}),
		"updateAndPushFiles": hc(func(ctx context.Context, e *Engine, p updateAndPushParams) (any, error) {
			return e.updateAndPushFiles(ctx, p)
		}),

		"getGitignoreTemplate": h(func(e *Engine, p templateParams) (any, error) {
			body, err := e.getGitignoreTemplate(p.Name)
			if err != nil {
				return nil, err
			}
			return struct {
				Body string `json:"body"`
			}{body}, nil
		}),
		"getLicenseTemplate": h(func(e *Engine, p licenseTemplateParams) (any, error) {
			body, err := e.getLicenseTemplate(p.Name, p.Holder, p.Year)
			if err != nil {
				return nil, err
			}
			return struct {
				Body string `json:"body"`
			}{body}, nil
		}),
		"createLocalRepo": h(func(e *Engine, p CreateLocalRepoOptions) (any, error) {
			return e.createLocalRepo(p)
		}),

		"ping": h(func(e *Engine, p struct{}) (any, error) {
			return struct {
				Pong bool `json:"pong"`
			}{true}, nil
		}),
	}
}

// h adapts a (decoded-params) handler with no context dependency into a
// handlerFunc.
func h[P any](fn func(e *Engine, p P) (any, error)) handlerFunc {
	return func(_ context.Context, e *Engine, raw json.RawMessage) (json.RawMessage, error) {
		var params P
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &params); err != nil {
				return fail(engineerr.Wrap(engineerr.KindInvalidInput, err, "decode params"), "dispatch")
			}
		}
		result, err := fn(e, params)
		if err != nil {
			return fail(err, "dispatch")
		}
		return ok(result)
	}
}

// hc is h for handlers that need ctx.
func hc[P any](fn func(ctx context.Context, e *Engine, p P) (any, error)) handlerFunc {
	return func(ctx context.Context, e *Engine, raw json.RawMessage) (json.RawMessage, error) {
		var params P
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &params); err != nil {
				return fail(engineerr.Wrap(engineerr.KindInvalidInput, err, "decode params"), "dispatch")
			}
		}
		result, err := fn(ctx, e, params)
		if err != nil {
			return fail(err, "dispatch")
		}
		return ok(result)
	}
}

// SetEventIO installs the live event-network adapter the host wants
// subsequent decentralized push/vendor-relay calls to use. Unlike the
// other Config-group setters this isn't reachable through Dispatch: an
// eventio.Adapter is a live object, not something that survives a
// json.RawMessage round trip.
func (e *Engine) SetEventIO(adapter eventio.Adapter) {
	e.events.Set(adapter)
}
