// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package patchengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyHunkExactPosition(t *testing.T) {
	lines := []string{"hello", "world"}
	hunk := Hunk{
		OldStart: 1, OldLines: 2, NewStart: 1, NewLines: 2,
		Body: []HunkLine{
			{Kind: ' ', Content: "hello"},
			{Kind: '-', Content: "world"},
			{Kind: '+', Content: "there"},
		},
	}
	out, ok := applyHunk(lines, hunk)
	require.True(t, ok)
	assert.Equal(t, []string{"hello", "there"}, out)
}

func TestApplyHunkFailsOnMismatch(t *testing.T) {
	lines := []string{"a", "b", "c"}
	hunk := Hunk{
		OldStart: 1, OldLines: 1, NewStart: 1, NewLines: 1,
		Body: []HunkLine{
			{Kind: '-', Content: "zzz"},
			{Kind: '+', Content: "yyy"},
		},
	}
	_, ok := applyHunk(lines, hunk)
	assert.False(t, ok)
}

func TestAlreadyAppliedDetectsForwardResult(t *testing.T) {
	lines := []string{"hello", "there"}
	hunk := Hunk{
		OldStart: 1, OldLines: 2, NewStart: 1, NewLines: 2,
		Body: []HunkLine{
			{Kind: ' ', Content: "hello"},
			{Kind: '-', Content: "world"},
			{Kind: '+', Content: "there"},
		},
	}
	assert.True(t, alreadyApplied(lines, hunk))
}

func TestSplitAndJoinLinesRoundTrip(t *testing.T) {
	content := []byte("a\nb\nc\n")
	lines := splitLines(content)
	assert.Equal(t, []string{"a", "b", "c"}, lines)
	assert.Equal(t, content, joinLines(lines))
}

func TestSplitLinesEmptyContent(t *testing.T) {
	assert.Nil(t, splitLines(nil))
}
