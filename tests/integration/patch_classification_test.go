// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package integration

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nostr-git/engine/pkg/fsadapter"
	"github.com/nostr-git/engine/pkg/patchengine"
	"github.com/nostr-git/engine/pkg/remotesync"
)

const seedContent = "hello\nworld\n"

// seedGreetingRepo scaffolds a repo through the RPC surface and returns
// the fsadapter it lives on, so a test can open it again directly.
func seedGreetingRepo(t *testing.T, key string) fsadapter.Adapter {
	t.Helper()
	e, fs := newEngine(t, nil)
	dispatch(t, e, "createLocalRepo", map[string]any{
		"key":           key,
		"initialBranch": "main",
		"authorName":    "Alice",
		"authorEmail":   "alice@example.com",
		"commitMessage": "initial",
		"files": map[string][]byte{
			"greeting.txt": []byte(seedContent),
		},
	})
	return fs
}

// TestPatchClassificationCleanAgainstScaffoldedTree proves pkg/patchengine
// classifies a patch correctly against a tree that pkg/rpc's scaffold
// path (createLocalRepo) wrote to disk, not just against fixtures built
// by patchengine's own unit tests.
func TestPatchClassificationCleanAgainstScaffoldedTree(t *testing.T) {
	key := "alice/greet"
	fs := seedGreetingRepo(t, key)

	repo, _, err := remotesync.OpenRepository(fs.Raw(), rootDir+"/"+key)
	require.NoError(t, err)

	head, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	tree, err := commit.Tree()
	require.NoError(t, err)

	patch := `diff --git a/greeting.txt b/greeting.txt
--- a/greeting.txt
+++ b/greeting.txt
@@ -1,2 +1,2 @@
 hello
-world
+there
`
	diffs, err := patchengine.ParsePatch(patch)
	require.NoError(t, err)

	analysis, err := patchengine.Classify(patchengine.CommitTreeReader{Tree: tree}, diffs, true)
	require.NoError(t, err)
	require.Equal(t, patchengine.ClassClean, analysis.Classification)
	require.Empty(t, analysis.ConflictPaths)
}

// TestPatchClassificationConflictAgainstScaffoldedTree mirrors the clean
// case but with a hunk whose removed line no longer matches the tree's
// content, which must classify as a conflict rather than silently
// applying the wrong lines.
func TestPatchClassificationConflictAgainstScaffoldedTree(t *testing.T) {
	key := "alice/greet-conflict"
	fs := seedGreetingRepo(t, key)

	repo, _, err := remotesync.OpenRepository(fs.Raw(), rootDir+"/"+key)
	require.NoError(t, err)

	head, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	tree, err := commit.Tree()
	require.NoError(t, err)

	patch := `diff --git a/greeting.txt b/greeting.txt
--- a/greeting.txt
+++ b/greeting.txt
@@ -1,2 +1,2 @@
 goodbye
-world
+there
`
	diffs, err := patchengine.ParsePatch(patch)
	require.NoError(t, err)

	analysis, err := patchengine.Classify(patchengine.CommitTreeReader{Tree: tree}, diffs, true)
	require.NoError(t, err)
	require.Equal(t, patchengine.ClassConflict, analysis.Classification)
	require.Contains(t, analysis.ConflictPaths, "greeting.txt")
}
