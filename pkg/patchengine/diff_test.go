// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package patchengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePatch = `diff --git a/greeting.txt b/greeting.txt
index e69de29..4b825dc 100644
--- a/greeting.txt
+++ b/greeting.txt
@@ -1,2 +1,2 @@
 hello
-world
+there
`

func TestParsePatchSingleFile(t *testing.T) {
	diffs, err := ParsePatch(samplePatch)
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, "greeting.txt", diffs[0].OldPath)
	assert.Equal(t, "greeting.txt", diffs[0].NewPath)
	require.Len(t, diffs[0].Hunks, 1)
	assert.Equal(t, 1, diffs[0].Hunks[0].OldStart)
}

func TestParsePatchNewFile(t *testing.T) {
	patch := `diff --git a/new.txt b/new.txt
new file mode 100644
--- /dev/null
+++ b/new.txt
@@ -0,0 +1,1 @@
+hello
`
	diffs, err := ParsePatch(patch)
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.True(t, diffs[0].IsNew)
}

func TestParsePatchDeletedFile(t *testing.T) {
	patch := `diff --git a/gone.txt b/gone.txt
deleted file mode 100644
--- a/gone.txt
+++ /dev/null
@@ -1,1 +0,0 @@
-bye
`
	diffs, err := ParsePatch(patch)
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.True(t, diffs[0].IsDelete)
}

func TestParsePatchRejectsBinary(t *testing.T) {
	patch := `diff --git a/image.png b/image.png
GIT binary patch
literal 10
`
	_, err := ParsePatch(patch)
	require.ErrorIs(t, err, ErrBinaryPatch)
}

func TestParsePatchEmptyRejected(t *testing.T) {
	_, err := ParsePatch("not a patch at all")
	require.ErrorIs(t, err, ErrEmptyPatch)
}
