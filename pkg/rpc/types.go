// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package rpc

import (
	"github.com/nostr-git/engine/pkg/auth"
	"github.com/nostr-git/engine/pkg/engineconfig"
	"github.com/nostr-git/engine/pkg/eventio"
	"github.com/nostr-git/engine/pkg/patchengine"
	"github.com/nostr-git/engine/pkg/safepush"
	"github.com/nostr-git/engine/pkg/vendor"
)

type setAuthConfigParams struct {
	Auth auth.Config `json:"auth"`
}

type setGitConfigParams struct {
	Identity engineconfig.GitIdentity `json:"identity"`
}

// setEventIOParams exists only so setEventIO has an entry in the method
// table and produces a clear error when called over the wire; the real
// installation path is Engine.SetEventIO, called in-process by a host
// that embeds this engine directly.
type setEventIOParams struct{}

type keyParams struct {
	Key string `json:"key"`
}

type lifecycleParams struct {
	Key       string   `json:"key"`
	CloneURLs []string `json:"cloneUrls"`
	Branch    string   `json:"branch,omitempty"`
}

type smartInitParams struct {
	Key         string   `json:"key"`
	CloneURLs   []string `json:"cloneUrls"`
	ForceUpdate bool     `json:"forceUpdate,omitempty"`
}

type fullCloneParams struct {
	Key       string   `json:"key"`
	CloneURLs []string `json:"cloneUrls"`
	Branch    string   `json:"branch,omitempty"`
	Depth     int      `json:"depth,omitempty"`
}

type commitHistoryParams struct {
	Key      string `json:"key"`
	Branch   string `json:"branch,omitempty"`
	MaxCount int    `json:"maxCount,omitempty"`
}

type branchParams struct {
	Key    string `json:"key"`
	Branch string `json:"branch,omitempty"`
}

type commitParams struct {
	Key string `json:"key"`
	SHA string `json:"sha"`
}

type cloneURLParams struct {
	CloneURL string `json:"cloneUrl"`
}

type fileAtCommitParams struct {
	Key  string `json:"key"`
	SHA  string `json:"sha"`
	Path string `json:"path"`
}

type fileHistoryParams struct {
	Key    string `json:"key"`
	Branch string `json:"branch,omitempty"`
	Path   string `json:"path"`
}

type syncParams struct {
	Key      string `json:"key"`
	CloneURL string `json:"cloneUrl"`
	Branch   string `json:"branch,omitempty"`
}

type needsUpdateParams struct {
	Key      string `json:"key"`
	CloneURL string `json:"cloneUrl"`
}

type analyzeParams struct {
	Key          string `json:"key"`
	PatchID      string `json:"patchId"`
	Patch        string `json:"patch"`
	TargetBranch string `json:"targetBranch,omitempty"`
}

type applyPatchParams struct {
	Key                string              `json:"key"`
	Patch              string              `json:"patch"`
	TargetBranch       string              `json:"targetBranch,omitempty"`
	MergeCommitMessage string              `json:"mergeCommitMessage,omitempty"`
	Author             patchengine.Author  `json:"author"`
}

type safePushParams struct {
	Key       string `json:"key"`
	Branch    string `json:"branch,omitempty"`
	RemoteURL string `json:"remoteUrl"`

	BlockIfUncommitted bool `json:"blockIfUncommitted,omitempty"`
	RequireUpToDate    bool `json:"requireUpToDate,omitempty"`
	BlockIfShallow     bool `json:"blockIfShallow,omitempty"`
	AllowForce         bool `json:"allowForce,omitempty"`
	ConfirmDestructive bool `json:"confirmDestructive,omitempty"`

	Decentralized bool   `json:"decentralized,omitempty"`
	RepoAddress   string `json:"repoAddress,omitempty"`
}

func (p safePushParams) toOptions(events eventio.Adapter) safepush.Options {
	return safepush.Options{
		Key:                p.Key,
		Branch:             p.Branch,
		RemoteURL:          p.RemoteURL,
		BlockIfUncommitted: p.BlockIfUncommitted,
		RequireUpToDate:    p.RequireUpToDate,
		BlockIfShallow:     p.BlockIfShallow,
		AllowForce:         p.AllowForce,
		ConfirmDestructive: p.ConfirmDestructive,
		Decentralized:      p.Decentralized,
		RepoAddress:        p.RepoAddress,
		Events:             events,
	}
}

type createRemoteRepoParams struct {
	Backend string               `json:"backend"`
	Owner   string               `json:"owner"`
	Edit    vendor.RepositoryEdit `json:"edit"`
}

type updateRemoteRepoParams struct {
	Backend string               `json:"backend"`
	Owner   string               `json:"owner"`
	Repo    string               `json:"repo"`
	Edit    vendor.RepositoryEdit `json:"edit"`
}

type forkParams struct {
	Key             string            `json:"key"`
	SourceBackend   string            `json:"sourceBackend"`
	DestBackend     string            `json:"destBackend"`
	SourceOwner     string            `json:"sourceOwner"`
	SourceRepo      string            `json:"sourceRepo"`
	SourceCloneURL  string            `json:"sourceCloneUrl"`
	ForkOptions     vendor.ForkOptions `json:"forkOptions"`
}

type updateAndPushParams struct {
	Key                string            `json:"key"`
	Branch             string            `json:"branch,omitempty"`
	Files              map[string][]byte `json:"files"`
	Deletes            []string          `json:"deletes,omitempty"`
	CommitMessage      string            `json:"commitMessage"`
	AuthorName         string            `json:"authorName"`
	AuthorEmail        string            `json:"authorEmail"`
	RemoteURL          string            `json:"remoteUrl,omitempty"`
}

type templateParams struct {
	Name string `json:"name"`
}

type licenseTemplateParams struct {
	Name   string `json:"name"`
	Holder string `json:"holder"`
	Year   int    `json:"year"`
}
