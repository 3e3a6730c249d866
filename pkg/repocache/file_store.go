// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package repocache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nostr-git/engine/pkg/fsadapter"
)

// FilePersister persists all cache entries as one JSON document, written
// via a temp-file-plus-rename so a crash mid-write never corrupts the
// previous snapshot — the same discipline the teacher's FileStateStore
// uses for run-state persistence.
type FilePersister struct {
	fs   fsadapter.Adapter
	path string
}

// NewFilePersister returns a Persister storing its document at path
// (e.g. "<cacheDir>/repocache.json") through fs.
func NewFilePersister(fs fsadapter.Adapter, path string) *FilePersister {
	return &FilePersister{fs: fs, path: path}
}

func (p *FilePersister) Load() (map[string]*Entry, error) {
	data, err := p.fs.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*Entry{}, nil
		}
		// fsadapter wraps not-found in engineerr.Error, not a bare
		// os.ErrNotExist; fall back to an existence check.
		if !p.fs.Exists(p.path) {
			return map[string]*Entry{}, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return map[string]*Entry{}, nil
	}
	var entries map[string]*Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse repo cache %s: %w", p.path, err)
	}
	return entries, nil
}

func (p *FilePersister) Save(entries map[string]*Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal repo cache: %w", err)
	}

	dir := filepath.Dir(p.path)
	if dir != "." && dir != "/" {
		if err := p.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir %s: %w", dir, err)
		}
	}

	tmpPath := p.path + ".tmp"
	if err := p.fs.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp cache file: %w", err)
	}

	if err := p.fs.Raw().Rename(tmpPath, p.path); err != nil {
		return fmt.Errorf("rename temp cache file: %w", err)
	}
	return nil
}
