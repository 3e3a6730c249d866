// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package patchengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTree map[string][]byte

func (f fakeTree) ReadFile(path string) ([]byte, bool, error) {
	content, ok := f[path]
	return content, ok, nil
}

func TestClassifyClean(t *testing.T) {
	diffs, err := ParsePatch(samplePatch)
	require.NoError(t, err)
	tree := fakeTree{"greeting.txt": []byte("hello\nworld\n")}

	analysis, err := Classify(tree, diffs, true)
	require.NoError(t, err)
	assert.Equal(t, ClassClean, analysis.Classification)
	assert.Empty(t, analysis.ConflictPaths)
}

func TestClassifyAlreadyApplied(t *testing.T) {
	diffs, err := ParsePatch(samplePatch)
	require.NoError(t, err)
	tree := fakeTree{"greeting.txt": []byte("hello\nthere\n")}

	analysis, err := Classify(tree, diffs, true)
	require.NoError(t, err)
	assert.Equal(t, ClassAlreadyApplied, analysis.Classification)
}

func TestClassifyUpToDateWhenBaseNotAncestor(t *testing.T) {
	diffs, err := ParsePatch(samplePatch)
	require.NoError(t, err)
	tree := fakeTree{"greeting.txt": []byte("hello\nthere\n")}

	analysis, err := Classify(tree, diffs, false)
	require.NoError(t, err)
	assert.Equal(t, ClassUpToDate, analysis.Classification)
}

func TestClassifyConflict(t *testing.T) {
	diffs, err := ParsePatch(samplePatch)
	require.NoError(t, err)
	tree := fakeTree{"greeting.txt": []byte("totally\nunrelated\ncontent\n")}

	analysis, err := Classify(tree, diffs, true)
	require.NoError(t, err)
	assert.Equal(t, ClassConflict, analysis.Classification)
	assert.Contains(t, analysis.ConflictPaths, "greeting.txt")
}

func TestClassifyConflictWhenFileMissingAndNotNew(t *testing.T) {
	diffs, err := ParsePatch(samplePatch)
	require.NoError(t, err)
	tree := fakeTree{}

	analysis, err := Classify(tree, diffs, true)
	require.NoError(t, err)
	assert.Equal(t, ClassConflict, analysis.Classification)
}
