// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package fsadapter

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	a := NewMemory()
	require.NoError(t, a.MkdirAll("/repo/sub", 0o755))
	require.NoError(t, a.WriteFile("/repo/sub/file.txt", []byte("hello"), 0o644))

	data, err := a.ReadFile("/repo/sub/file.txt")
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))

	require.True(t, a.Exists("/repo/sub/file.txt"))
	require.False(t, a.Exists("/repo/sub/missing.txt"))
}

func TestMemoryReadDir(t *testing.T) {
	a := NewMemory()
	require.NoError(t, a.MkdirAll("/repo", 0o755))
	require.NoError(t, a.WriteFile("/repo/a.txt", []byte("a"), 0o644))
	require.NoError(t, a.WriteFile("/repo/b.txt", []byte("b"), 0o644))

	entries, err := a.ReadDir("/repo")
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestMemoryRemoveAll(t *testing.T) {
	a := NewMemory()
	require.NoError(t, a.MkdirAll("/repo/sub", 0o755))
	require.NoError(t, a.WriteFile("/repo/sub/file.txt", []byte("x"), 0o644))

	require.NoError(t, a.RemoveAll("/repo"))
	require.False(t, a.Exists("/repo/sub/file.txt"))
}

func TestReadFileMissingIsClassified(t *testing.T) {
	a := NewMemory()
	_, err := a.ReadFile("/nope.txt")
	require.Error(t, err)
}

func TestOnDiskRoundTrip(t *testing.T) {
	dir := t.TempDir()
	a := NewOnDisk(dir)
	require.NoError(t, a.WriteFile("file.txt", []byte("disk"), 0o644))

	data, err := a.ReadFile("file.txt")
	require.NoError(t, err)
	require.Equal(t, "disk", string(data))

	_, err = os.Stat(dir + "/file.txt")
	require.NoError(t, err)
}
