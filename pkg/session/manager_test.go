// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nostr-git/engine/pkg/fsadapter"
	"github.com/nostr-git/engine/pkg/repocache"
)

type fakeFetcher struct {
	calls  int32
	headOf string
	delay  time.Duration
}

func (f *fakeFetcher) Fetch(ctx context.Context, dir string, req FetchRequest, progress func(Event)) (FetchResult, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return FetchResult{HeadCommit: f.headOf, UsedURL: req.CloneURLs[0]}, nil
}

func newMemCache(t *testing.T) repocache.Store {
	t.Helper()
	fs := fsadapter.NewMemory()
	s, err := repocache.New(repocache.NewFilePersister(fs, "/cache.json"))
	require.NoError(t, err)
	return s
}

func TestInitializeRepoSetsRefsLevel(t *testing.T) {
	fs := fsadapter.NewMemory()
	cache := newMemCache(t)
	fetcher := &fakeFetcher{headOf: "abc"}
	mgr := New(fs, "/root", cache, fetcher)

	err := mgr.InitializeRepo(context.Background(), "alice/proj", []string{"https://host/a.git"})
	require.NoError(t, err)
	require.Equal(t, LevelRefs, mgr.GetDataLevel("alice/proj"))
}

func TestEnsureIsNoOpWhenAlreadySatisfied(t *testing.T) {
	fs := fsadapter.NewMemory()
	cache := newMemCache(t)
	fetcher := &fakeFetcher{headOf: "abc"}
	mgr := New(fs, "/root", cache, fetcher)

	ctx := context.Background()
	require.NoError(t, mgr.EnsureFullClone(ctx, "k", []string{"u"}, "main", 10))
	callsAfterFirst := fetcher.calls
	require.NoError(t, mgr.InitializeRepo(ctx, "k", []string{"u"}))
	require.Equal(t, callsAfterFirst, fetcher.calls, "lower-level request on higher-level repo must be a no-op")
}

func TestEnsureFullCloneIsNoOpWhenDepthAlreadySatisfied(t *testing.T) {
	fs := fsadapter.NewMemory()
	cache := newMemCache(t)
	fetcher := &fakeFetcher{headOf: "abc"}
	mgr := New(fs, "/root", cache, fetcher)

	ctx := context.Background()
	require.NoError(t, mgr.EnsureFullClone(ctx, "k", []string{"u"}, "main", 10))
	require.Equal(t, int32(1), fetcher.calls)

	require.NoError(t, mgr.EnsureFullClone(ctx, "k", []string{"u"}, "main", 5))
	require.Equal(t, int32(1), fetcher.calls, "re-requesting a shallower depth on an already-full repo must be a no-op")

	require.NoError(t, mgr.EnsureFullClone(ctx, "k", []string{"u"}, "main", 20))
	require.Equal(t, int32(2), fetcher.calls, "a deeper depth than what was satisfied must still trigger a fetch")
}

func TestDeleteRepoResetsToNone(t *testing.T) {
	fs := fsadapter.NewMemory()
	cache := newMemCache(t)
	fetcher := &fakeFetcher{headOf: "abc"}
	mgr := New(fs, "/root", cache, fetcher)

	ctx := context.Background()
	require.NoError(t, mgr.InitializeRepo(ctx, "k", []string{"u"}))
	require.NoError(t, mgr.DeleteRepo(ctx, "k"))
	require.Equal(t, LevelNone, mgr.GetDataLevel("k"))
}

func TestCloneURLFallback(t *testing.T) {
	fs := fsadapter.NewMemory()
	cache := newMemCache(t)
	fetcher := &fakeFetcherFirstFails{}
	mgr := New(fs, "/root", cache, fetcher)

	err := mgr.InitializeRepo(context.Background(), "k", []string{"bad", "good"})
	require.NoError(t, err)
	require.Equal(t, []string{"bad"}, fetcher.attempted[:1])
	require.Contains(t, fetcher.attempted, "good")
}

type fakeFetcherFirstFails struct {
	attempted []string
}

func (f *fakeFetcherFirstFails) Fetch(ctx context.Context, dir string, req FetchRequest, progress func(Event)) (FetchResult, error) {
	url := req.CloneURLs[0]
	f.attempted = append(f.attempted, url)
	if url == "bad" {
		return FetchResult{}, errTest
	}
	return FetchResult{HeadCommit: "ok"}, nil
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Debug(msg string, args ...interface{}) { l.record("DEBUG", msg) }
func (l *recordingLogger) Info(msg string, args ...interface{})  { l.record("INFO", msg) }
func (l *recordingLogger) Warn(msg string, args ...interface{})  { l.record("WARN", msg) }
func (l *recordingLogger) Error(msg string, args ...interface{}) { l.record("ERROR", msg) }

func (l *recordingLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+": "+msg)
}

func TestFetchLogsStartAndCompletion(t *testing.T) {
	fs := fsadapter.NewMemory()
	cache := newMemCache(t)
	fetcher := &fakeFetcher{headOf: "abc"}
	logger := &recordingLogger{}
	mgr := New(fs, "/root", cache, fetcher, WithLogger(logger))

	require.NoError(t, mgr.InitializeRepo(context.Background(), "alice/proj", []string{"https://host/a.git"}))

	require.Contains(t, logger.lines, "DEBUG: fetch starting")
	require.Contains(t, logger.lines, "INFO: fetch complete")
}

var errTest = &testError{"fetch failed"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }

func TestDedupSingleInFlightPerKey(t *testing.T) {
	fs := fsadapter.NewMemory()
	cache := newMemCache(t)
	fetcher := &fakeFetcher{headOf: "abc", delay: 20 * time.Millisecond}
	mgr := New(fs, "/root", cache, fetcher)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = mgr.InitializeRepo(context.Background(), "k", []string{"u"})
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), fetcher.calls)
}
