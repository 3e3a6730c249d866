// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package patchengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalBranchNameStripsKnownPrefixes(t *testing.T) {
	assert.Equal(t, "main", localBranchName("main"))
	assert.Equal(t, "main", localBranchName("origin/main"))
	assert.Equal(t, "main", localBranchName("refs/heads/main"))
}

func TestIsPushableScheme(t *testing.T) {
	assert.True(t, isPushableScheme("https://host/repo.git"))
	assert.True(t, isPushableScheme("git@host:repo.git"))
	assert.False(t, isPushableScheme("file:///local/repo.git"))
	assert.False(t, isPushableScheme(""))
}
