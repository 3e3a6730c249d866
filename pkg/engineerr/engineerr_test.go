// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package engineerr

import (
	"errors"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyGitSentinels(t *testing.T) {
	assert.Equal(t, KindNotFastForward, Classify(git.ErrNonFastForwardUpdate))
	assert.Equal(t, KindRepoNotFound, Classify(git.ErrRepositoryNotExists))
	assert.Equal(t, KindRepoAlreadyExists, Classify(git.ErrRepositoryAlreadyExists))
}

func TestClassifyUnknown(t *testing.T) {
	assert.Equal(t, KindUnknown, Classify(errors.New("whatever")))
}

func TestClassifyNil(t *testing.T) {
	assert.Equal(t, Kind(""), Classify(nil))
}

func TestToResultSuccess(t *testing.T) {
	res := ToResult(nil, Context{})
	assert.True(t, res.Success)
}

func TestToResultCarriesKindAndContext(t *testing.T) {
	err := New(KindUncommittedChanges, "working tree dirty").WithHint("commit or stash first")
	res := ToResult(err, Context{RepoKey: "alice/proj", Operation: "safePushToRemote"})
	require.False(t, res.Success)
	assert.Equal(t, KindUncommittedChanges, res.Code)
	assert.Equal(t, "user-actionable", res.Category)
	assert.Equal(t, "commit or stash first", res.Hint)
	require.NotNil(t, res.Context)
	assert.Equal(t, "alice/proj", res.Context.RepoKey)
}

func TestCategoryBuckets(t *testing.T) {
	assert.Equal(t, "user-actionable", Category(KindMergeConflict))
	assert.Equal(t, "retriable", Category(KindNetworkError))
	assert.Equal(t, "fatal", Category(KindCorruptObject))
	assert.Equal(t, "fatal", Category(Kind("made-up-kind")))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	wrapped := Wrap(KindNetworkError, cause, "")
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, cause.Error(), wrapped.Message)
}
