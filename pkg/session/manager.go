// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package session tracks per-repository data level, deduplicates
// concurrent initializations by canonical key, and escalates fetch depth
// on demand.
package session

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nostr-git/engine/pkg/engineerr"
	"github.com/nostr-git/engine/pkg/fsadapter"
	"github.com/nostr-git/engine/pkg/logging"
	"github.com/nostr-git/engine/pkg/repocache"
)

// fullDepth marks a key as satisfied for any depth request: an
// EnsureFullClone(depth<=0) ("however much history the fetcher gives us")
// was satisfied.
const fullDepth = math.MaxInt

// FetchRequest describes the Git work a Fetcher must perform to bring a
// repo up to Level.
type FetchRequest struct {
	Key       string
	CloneURLs []string
	Branch    string
	Level     DataLevel
	Depth     int // only meaningful at LevelFull
}

// FetchResult is what a Fetcher reports back after satisfying a
// FetchRequest.
type FetchResult struct {
	HeadCommit string
	UsedURL    string
	Depth      int // commits actually reachable from Branch after the fetch
}

// Fetcher performs the actual clone/fetch Git work; pkg/remotesync
// implements it against go-git. The session manager only orchestrates
// which request is needed and against which candidate URL.
type Fetcher interface {
	Fetch(ctx context.Context, dir string, req FetchRequest, progress func(Event)) (FetchResult, error)
}

// Manager is the keyed job registry the spec names: it deduplicates
// concurrent operations on the same canonical key via singleflight,
// tracks each key's current data level, and consults/update the repo
// cache as operations complete.
type Manager struct {
	mu     sync.Mutex
	levels map[string]DataLevel
	depths map[string]int // satisfied depth at LevelFull; see fullDepth
	group  singleflight.Group

	fs      fsadapter.Adapter
	rootDir string
	cache   repocache.Store
	fetcher Fetcher
	sink    Sink
	logger  logging.Logger
}

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithSink installs a progress sink.
func WithSink(sink Sink) Option {
	return func(m *Manager) { m.sink = sink }
}

// WithLogger installs the Logger doFetch and data-level escalations
// report to.
func WithLogger(logger logging.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// SetLogger replaces the Logger after construction, for callers (such as
// pkg/rpc.Engine.SetLogger) that install a host-supplied Logger after the
// Manager already exists.
func (m *Manager) SetLogger(logger logging.Logger) {
	if logger == nil {
		logger = logging.Noop
	}
	m.logger = logger
}

// New returns a Manager rooted at rootDir (a path within fs under which
// "<rootDir>/<canonicalKey>" holds each repo's working copy).
func New(fs fsadapter.Adapter, rootDir string, cache repocache.Store, fetcher Fetcher, opts ...Option) *Manager {
	m := &Manager{
		levels:  map[string]DataLevel{},
		depths:  map[string]int{},
		fs:      fs,
		rootDir: rootDir,
		cache:   cache,
		fetcher: fetcher,
		sink:    NoopSink{},
		logger:  logging.Noop,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) repoDir(key string) string {
	return m.rootDir + "/" + key
}

// RepoDir returns the working-directory path key's fetcher writes to,
// for callers (e.g. pkg/patchengine) that need to open the same
// repository directly rather than through a Fetcher.
func (m *Manager) RepoDir(key string) string {
	return m.repoDir(key)
}

// Filesystem returns the adapter repos are rooted under, so a caller that
// already holds a Manager can open a repo's working tree itself.
func (m *Manager) Filesystem() fsadapter.Adapter {
	return m.fs
}

// Cache returns the repo cache store the Manager persists sync state
// into, so related components (patch analysis, safe push) share one
// cache instance instead of each holding their own handle.
func (m *Manager) Cache() repocache.Store {
	return m.cache
}

// GetDataLevel returns key's current level, rebuilding it from the cache
// if this is the first reference to key in this process lifetime.
func (m *Manager) GetDataLevel(key string) DataLevel {
	m.mu.Lock()
	defer m.mu.Unlock()
	level, ok := m.levels[key]
	if ok {
		return level
	}
	if entry, found, _ := m.cache.Get(key); found && entry.LastHeadCommit != "" {
		level = LevelRefs
	} else {
		level = LevelNone
	}
	m.levels[key] = level
	return level
}

func (m *Manager) setLevel(key string, level DataLevel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.levels[key]; ok && current > level {
		return // monotonic: never downgrade
	}
	m.levels[key] = level
}

// normalizeDepth maps the "however much history the fetcher gives us"
// sentinel (depth<=0) to fullDepth so it compares correctly against a
// previously satisfied depth.
func normalizeDepth(depth int) int {
	if depth <= 0 {
		return fullDepth
	}
	return depth
}

// satisfiedDepth returns the deepest LevelFull depth key has on record,
// 0 if key has never reached LevelFull.
func (m *Manager) satisfiedDepth(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.depths[key]
}

// recordDepth widens key's satisfied depth monotonically: a shallower
// fetch than what was already recorded never narrows it.
func (m *Manager) recordDepth(key string, depth int) {
	nd := normalizeDepth(depth)
	m.mu.Lock()
	defer m.mu.Unlock()
	if nd > m.depths[key] {
		m.depths[key] = nd
	}
}

// isSatisfied reports whether key already meets target at depth without
// any further fetch. Below LevelFull, level alone decides it — depth is
// meaningless there. At LevelFull, the round-trip law in play is:
// ensureFullClone(K,B,d) followed by ensureFullClone(K,B,d') with d'<=d
// must perform no fetch, so the previously satisfied depth must also
// cover the new request.
func (m *Manager) isSatisfied(key string, target DataLevel, depth int) bool {
	if m.GetDataLevel(key) < target {
		return false
	}
	if target != LevelFull {
		return true
	}
	return m.satisfiedDepth(key) >= normalizeDepth(depth)
}

// InitializeRepo ensures key is at least at LevelRefs.
func (m *Manager) InitializeRepo(ctx context.Context, key string, cloneURLs []string) error {
	return m.ensure(ctx, key, cloneURLs, "", LevelRefs, 0)
}

// EnsureShallowClone ensures key is at least at LevelShallow at branch.
func (m *Manager) EnsureShallowClone(ctx context.Context, key string, cloneURLs []string, branch string) error {
	return m.ensure(ctx, key, cloneURLs, branch, LevelShallow, 0)
}

// EnsureFullClone ensures key is at least at LevelFull at branch with at
// least depth commits reachable.
func (m *Manager) EnsureFullClone(ctx context.Context, key string, cloneURLs []string, branch string, depth int) error {
	return m.ensure(ctx, key, cloneURLs, branch, LevelFull, depth)
}

// SmartInitResult reports what smartInitializeRepo decided.
type SmartInitResult struct {
	DataLevel  DataLevel
	FromCache  bool
	HeadCommit string
}

// SmartInitializeRepo decides from the cache alone: unless forceUpdate is
// set, a cached entry with a recorded HEAD at LevelRefs or above is
// returned as-is with no fetch; otherwise InitializeRepo runs. The
// remote's current HEAD is not queried, so a remote that moved since the
// cached sync is not detected here.
func (m *Manager) SmartInitializeRepo(ctx context.Context, key string, cloneURLs []string, forceUpdate bool) (SmartInitResult, error) {
	if !forceUpdate {
		if entry, ok, _ := m.cache.Get(key); ok && entry.LastHeadCommit != "" {
			level := m.GetDataLevel(key)
			if level >= LevelRefs {
				return SmartInitResult{DataLevel: level, FromCache: true, HeadCommit: entry.LastHeadCommit}, nil
			}
		}
	}

	if err := m.InitializeRepo(ctx, key, cloneURLs); err != nil {
		return SmartInitResult{}, err
	}
	entry, _, _ := m.cache.Get(key)
	head := ""
	if entry != nil {
		head = entry.LastHeadCommit
	}
	return SmartInitResult{DataLevel: m.GetDataLevel(key), FromCache: false, HeadCommit: head}, nil
}

// DeleteRepo atomically resets key: the working directory, the cache
// entry, and the level map are all cleared before any subsequent
// re-initialization can observe partial state.
func (m *Manager) DeleteRepo(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fs.RemoveAll(m.repoDir(key)); err != nil {
		return engineerr.Wrap(engineerr.KindFSError, err, "").WithContext(engineerr.Context{RepoKey: key, Operation: "deleteRepo"})
	}
	if err := m.cache.Delete(key); err != nil {
		return fmt.Errorf("delete cache entry for %s: %w", key, err)
	}
	delete(m.levels, key)
	delete(m.depths, key)
	return nil
}

// ensure is the escalation entry point shared by every ensure* method. A
// request for a level the key already satisfies is a no-op; otherwise it
// funnels through singleflight keyed on the canonical key so concurrent
// callers for the same key share one outcome.
func (m *Manager) ensure(ctx context.Context, key string, cloneURLs []string, branch string, target DataLevel, depth int) error {
	if m.isSatisfied(key, target, depth) {
		return nil
	}

	result, err, _ := m.group.Do(key, func() (interface{}, error) {
		return m.doFetch(ctx, key, cloneURLs, branch, target, depth)
	})
	if err != nil {
		return err
	}
	_ = result
	return nil
}

func (m *Manager) doFetch(ctx context.Context, key string, cloneURLs []string, branch string, target DataLevel, depth int) (FetchResult, error) {
	if ctx.Err() != nil {
		return FetchResult{}, engineerr.Wrap(engineerr.KindOperationAborted, ctx.Err(), "")
	}

	// Re-check under the singleflight key: a latecomer whose need was
	// already satisfied by the in-flight call must not refetch.
	if m.isSatisfied(key, target, depth) {
		entry, _, _ := m.cache.Get(key)
		head := ""
		if entry != nil {
			head = entry.LastHeadCommit
		}
		return FetchResult{HeadCommit: head}, nil
	}

	entry, _, _ := m.cache.Get(key)
	failed := map[string]time.Time{}
	if entry != nil && entry.FailedCloneURLs != nil {
		failed = entry.FailedCloneURLs
	}
	ordered := orderCloneURLs(cloneURLs, failed)

	emit(m.sink, Event{Key: key, Phase: PhaseStart})
	m.logger.Debug("fetch starting", "repo", key, "target", target.String(), "candidates", len(ordered))

	var lastErr error
	for _, url := range ordered {
		if ctx.Err() != nil {
			return FetchResult{}, engineerr.Wrap(engineerr.KindOperationAborted, ctx.Err(), "")
		}

		req := FetchRequest{Key: key, CloneURLs: []string{url}, Branch: branch, Level: target, Depth: depth}
		result, err := m.fetcher.Fetch(ctx, m.repoDir(key), req, func(e Event) { emit(m.sink, e) })
		if err != nil {
			lastErr = err
			failed[url] = time.Now()
			m.logger.Warn("fetch candidate failed", "repo", key, "url", url, "error", errString(err))
			continue
		}

		m.setLevel(key, target)
		if target == LevelFull {
			achieved := depth
			if result.Depth > achieved {
				achieved = result.Depth
			}
			m.recordDepth(key, achieved)
		}
		m.persistSuccess(key, url, result, failed)
		emit(m.sink, Event{Key: key, Phase: PhaseComplete})
		m.logger.Info("fetch complete", "repo", key, "url", url, "level", target.String())
		return result, nil
	}

	emit(m.sink, Event{Key: key, Phase: PhaseError, Message: errString(lastErr)})
	m.logger.Error("fetch exhausted all candidates", "repo", key, "error", errString(lastErr))
	if lastErr == nil {
		lastErr = engineerr.New(engineerr.KindInvalidInput, "no clone URLs provided")
	}
	return FetchResult{}, lastErr
}

func (m *Manager) persistSuccess(key, url string, result FetchResult, failed map[string]time.Time) {
	entry, ok, _ := m.cache.Get(key)
	if !ok || entry == nil {
		entry = &repocache.Entry{Key: key}
	}
	entry.CloneURLs = promoteURL(entry.CloneURLs, url)
	entry.LastHeadCommit = result.HeadCommit
	entry.LastSyncAt = time.Now()
	entry.FailedCloneURLs = failed
	_ = m.cache.Put(key, entry)
}

// promoteURL moves url to the front of urls (or inserts it), recording it
// as the preferred clone URL for subsequent attempts.
func promoteURL(urls []string, url string) []string {
	out := make([]string, 0, len(urls)+1)
	out = append(out, url)
	for _, u := range urls {
		if u != url {
			out = append(out, u)
		}
	}
	return out
}

// orderCloneURLs tries never-failed URLs first, in their given order,
// then previously-failed URLs ordered oldest-failure-first so a URL that
// failed long ago gets a chance to redeem itself before one that failed
// moments ago, which is tried last.
func orderCloneURLs(urls []string, failed map[string]time.Time) []string {
	var fresh, tried []string
	for _, u := range urls {
		if _, wasFailure := failed[u]; wasFailure {
			tried = append(tried, u)
		} else {
			fresh = append(fresh, u)
		}
	}
	sort.SliceStable(tried, func(i, j int) bool {
		return failed[tried[i]].Before(failed[tried[j]])
	})
	return append(fresh, tried...)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
