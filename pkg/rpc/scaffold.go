// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package rpc

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/nostr-git/engine/internal/gitvalidate"
)

// CreateLocalRepoOptions configures createLocalRepo. Files is keyed by
// repo-relative path; encoding/json marshals each []byte value as
// standard base64, so a wire caller supplies file content as base64
// strings without any extra encoding step on this end.
type CreateLocalRepoOptions struct {
	Key           string            `json:"key"`
	InitialBranch string            `json:"initialBranch"`
	CommitMessage string            `json:"commitMessage"`
	AuthorName    string            `json:"authorName"`
	AuthorEmail   string            `json:"authorEmail"`
	Files         map[string][]byte `json:"files,omitempty"`
}

// CreateLocalRepoResult is createLocalRepo's result.
type CreateLocalRepoResult struct {
	InitialCommitOID string `json:"initialCommitOid,omitempty"`
}

// createLocalRepo initializes a fresh repository at the session's
// directory for key (not a clone of any remote), writes the requested
// seed files, and makes an initial commit when at least one file was
// given. This is the one scaffold operation template catalogs don't
// cover: git init plus the first commit is domain logic, not a gitignore
// or license body.
func (e *Engine) createLocalRepo(opts CreateLocalRepoOptions) (*CreateLocalRepoResult, error) {
	owner, name, ok := strings.Cut(opts.Key, "/")
	if !ok {
		return nil, fmt.Errorf("repo key %q must be owner/name", opts.Key)
	}
	if err := gitvalidate.RepoKeyComponent(owner); err != nil {
		return nil, err
	}
	if err := gitvalidate.RepoKeyComponent(name); err != nil {
		return nil, err
	}
	dir := e.sessions.RepoDir(opts.Key)
	root := e.sessions.Filesystem().Raw()

	worktree, err := root.Chroot(dir)
	if err != nil {
		return nil, fmt.Errorf("chroot repo dir %s: %w", dir, err)
	}
	dotGit, err := worktree.Chroot(".git")
	if err != nil {
		return nil, fmt.Errorf("chroot .git dir: %w", err)
	}
	storer := filesystem.NewStorage(dotGit, cache.NewObjectLRUDefault())

	branch := opts.InitialBranch
	if branch == "" {
		branch = "main"
	} else if err := gitvalidate.BranchName(branch); err != nil {
		return nil, err
	}

	repo, err := git.Init(storer, worktree)
	if err != nil {
		return nil, fmt.Errorf("init repository: %w", err)
	}
	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(branch))
	if err := repo.Storer.SetReference(head); err != nil {
		return nil, fmt.Errorf("point HEAD at %s: %w", branch, err)
	}
	if err := repo.CreateBranch(&config.Branch{Name: branch}); err != nil {
		return nil, fmt.Errorf("create initial branch %s: %w", branch, err)
	}

	tree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}

	if len(opts.Files) == 0 {
		return &CreateLocalRepoResult{}, nil
	}

	for path, content := range opts.Files {
		if err := gitvalidate.Path(path); err != nil {
			return nil, err
		}
		f, err := worktree.Create(path)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", path, err)
		}
		if _, err := f.Write(content); err != nil {
			f.Close()
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		f.Close()
		if _, err := tree.Add(path); err != nil {
			return nil, fmt.Errorf("stage %s: %w", path, err)
		}
	}

	msg := opts.CommitMessage
	if msg == "" {
		msg = "Initial commit"
	} else if err := gitvalidate.CommitMessage(msg); err != nil {
		return nil, err
	}
	hash, err := tree.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: opts.AuthorName, Email: opts.AuthorEmail, When: time.Now()},
	})
	if err != nil {
		return nil, fmt.Errorf("create initial commit: %w", err)
	}

	return &CreateLocalRepoResult{InitialCommitOID: hash.String()}, nil
}

// gitignoreTemplates and licenseTemplates are a small embedded fallback
// catalog. The host's own scaffold UI is expected to have a richer,
// regularly-refreshed template source (e.g. the GitHub gitignore/license
// APIs via a vendor.Provider); these exist so createLocalRepo's caller
// always has something to seed a brand new repository with even when no
// such source is wired up.
var gitignoreTemplates = map[string]string{
	"Go": "# Binaries\n*.exe\n*.dll\n*.so\n*.dylib\n\n# Test binaries\n*.test\n\n# Output of go coverage\n*.out\n\nvendor/\n",
	"Node": "node_modules/\nnpm-debug.log*\ndist/\n.env\n",
	"Python": "__pycache__/\n*.py[cod]\n.venv/\n*.egg-info/\ndist/\n",
}

var licenseTemplates = map[string]string{
	"MIT": "MIT License\n\nCopyright (c) %d %s\n\nPermission is hereby granted, free of charge, to any person obtaining a copy\nof this software and associated documentation files (the \"Software\"), to deal\nin the Software without restriction, including without limitation the rights\nto use, copy, modify, merge, publish, distribute, sublicense, and/or sell\ncopies of the Software, and to permit persons to whom the Software is\nfurnished to do so, subject to the following conditions:\n\nThe above copyright notice and this permission notice shall be included in all\ncopies or substantial portions of the Software.\n\nTHE SOFTWARE IS PROVIDED \"AS IS\", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR\nIMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,\nFITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.\n",
	"Apache-2.0": "Apache License\nVersion 2.0, January 2004\nhttp://www.apache.org/licenses/\n\nCopyright %d %s\n\nLicensed under the Apache License, Version 2.0 (the \"License\");\nyou may not use this file except in compliance with the License.\n",
}

func (e *Engine) getGitignoreTemplate(name string) (string, error) {
	body, ok := gitignoreTemplates[name]
	if !ok {
		return "", fmt.Errorf("no gitignore template named %q", name)
	}
	return body, nil
}

func (e *Engine) getLicenseTemplate(name, holder string, year int) (string, error) {
	tmpl, ok := licenseTemplates[name]
	if !ok {
		return "", fmt.Errorf("no license template named %q", name)
	}
	return fmt.Sprintf(tmpl, year, holder), nil
}
