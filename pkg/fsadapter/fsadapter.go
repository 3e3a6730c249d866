// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package fsadapter presents a minimal POSIX-style file API over an
// injected backend, either in-memory or the host OS. Every other component
// reaches the filesystem only through this adapter.
package fsadapter

import (
	"io"
	"io/fs"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/nostr-git/engine/pkg/engineerr"
)

// DirEntry describes one entry returned by ReadDir.
type DirEntry struct {
	Name  string
	IsDir bool
	Size  int64
}

// Adapter is the uniform filesystem surface every component depends on.
// Implementations may be backed by an async store on one platform (browser
// persistence) and a synchronous one on another; this interface always
// looks synchronous to the caller, who is expected to run it off the
// engine's cooperative scheduling loop when that matters.
type Adapter interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
	Stat(path string) (fs.FileInfo, error)
	ReadDir(path string) ([]DirEntry, error)
	Remove(path string) error
	RemoveAll(path string) error
	Exists(path string) bool

	// Raw exposes the underlying billy.Filesystem so go-git can open a
	// repository directly against this adapter's root.
	Raw() billy.Filesystem
}

// billyAdapter wraps a billy.Filesystem, translating its errors into the
// engine's error taxonomy. Both the in-memory and on-disk adapters share
// this implementation; only the underlying billy.Filesystem differs.
type billyAdapter struct {
	fs billy.Filesystem
}

// NewMemory returns an in-memory adapter, suitable for browser-hosted or
// test sessions that never touch the host disk.
func NewMemory() Adapter {
	return &billyAdapter{fs: memfs.New()}
}

// NewOnDisk returns an adapter rooted at root on the host filesystem.
func NewOnDisk(root string) Adapter {
	return &billyAdapter{fs: osfs.New(root)}
}

func (a *billyAdapter) Raw() billy.Filesystem { return a.fs }

func (a *billyAdapter) ReadFile(path string) ([]byte, error) {
	f, err := a.fs.Open(path)
	if err != nil {
		return nil, translateErr(err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, translateErr(err)
	}
	return data, nil
}

func (a *billyAdapter) WriteFile(path string, data []byte, perm os.FileMode) error {
	f, err := a.fs.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return translateErr(err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return translateErr(err)
	}
	return nil
}

func (a *billyAdapter) MkdirAll(path string, perm os.FileMode) error {
	if err := a.fs.MkdirAll(path, perm); err != nil {
		return translateErr(err)
	}
	return nil
}

func (a *billyAdapter) Stat(path string) (fs.FileInfo, error) {
	info, err := a.fs.Stat(path)
	if err != nil {
		return nil, translateErr(err)
	}
	return info, nil
}

func (a *billyAdapter) ReadDir(path string) ([]DirEntry, error) {
	infos, err := a.fs.ReadDir(path)
	if err != nil {
		return nil, translateErr(err)
	}
	entries := make([]DirEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, DirEntry{Name: info.Name(), IsDir: info.IsDir(), Size: info.Size()})
	}
	return entries, nil
}

func (a *billyAdapter) Remove(path string) error {
	if err := a.fs.Remove(path); err != nil {
		return translateErr(err)
	}
	return nil
}

func (a *billyAdapter) RemoveAll(path string) error {
	infos, err := a.fs.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return translateErr(err)
	}
	for _, info := range infos {
		child := path + "/" + info.Name()
		if info.IsDir() {
			if err := a.RemoveAll(child); err != nil {
				return err
			}
			continue
		}
		if err := a.fs.Remove(child); err != nil {
			return translateErr(err)
		}
	}
	if err := a.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return translateErr(err)
	}
	return nil
}

func (a *billyAdapter) Exists(path string) bool {
	_, err := a.fs.Stat(path)
	return err == nil
}

func translateErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case os.IsNotExist(err):
		return engineerr.Wrap(engineerr.KindFSError, err, "not-found")
	case os.IsPermission(err):
		return engineerr.New(engineerr.KindPermissionDenied, "permission-denied").WithHint(err.Error())
	default:
		return engineerr.Wrap(engineerr.KindFSError, err, "")
	}
}
