// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package engineconfig holds the host-supplied configuration an engine
// instance runs with: auth credentials, the git identity used for
// commits, and the event-network adapter used for repo-state
// publishing. Unlike the teacher's five-layer (flag/env/file/default)
// precedence, an embedded engine has no flags or config file of its
// own — every value arrives over the RPC boundary via a set* call, so
// Config collapses that stack down to "whatever was set last, else the
// zero value."
package engineconfig

import (
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/nostr-git/engine/pkg/auth"
	"github.com/nostr-git/engine/pkg/eventio"
)

// GitIdentity is the author/committer identity used when the engine
// creates commits on the caller's behalf (merge commits, scaffolded
// initial commits).
type GitIdentity struct {
	Name  string `yaml:"name" json:"name"`
	Email string `yaml:"email" json:"email"`
}

// Config is the full set of host-supplied configuration. It is
// immutable once read: callers mutate it only by replacing the whole
// value through Store.Set, never by mutating a Config in place.
type Config struct {
	Auth     auth.Config `yaml:"auth" json:"auth"`
	Identity GitIdentity `yaml:"identity" json:"identity"`
}

// Store holds the current Config behind a mutex and swaps it
// atomically per set* RPC call, so concurrent readers (an
// in-flight clone, a push in progress) never observe a half-written
// value.
type Store struct {
	mu  sync.RWMutex
	cfg Config
}

// New returns a Store seeded with the zero Config: no tokens, no SSH
// key, no git identity, until the host issues its first set* call.
func New() *Store {
	return &Store{}
}

// Get returns the current configuration.
func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// SetAuth replaces the auth configuration wholesale — matching
// setAuthConfig's "whole object in, whole object out" semantics rather
// than a field-by-field merge, so a host that wants to revoke a token
// can do so by omitting it from the next call.
func (s *Store) SetAuth(cfg auth.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Auth = cfg
}

// SetIdentity replaces the git author/committer identity used for
// commits the engine creates.
func (s *Store) SetIdentity(identity GitIdentity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Identity = identity
}

// AuthConfig is a convenience accessor matching the
// `func() auth.Config` shape that patchengine.New and safepush.New
// expect, so a *Store can be handed to them directly as
// s.AuthConfig.
func (s *Store) AuthConfig() auth.Config {
	return s.Get().Auth
}

// ExportYAML serializes the current snapshot the way a host would persist
// it to a config file between process restarts.
func (s *Store) ExportYAML() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return yaml.Marshal(s.cfg)
}

// LoadConfigYAML parses a config file a host hands back on startup. It does
// not apply the result to any Store; callers pass the decoded Config to
// SetAuth/SetIdentity (or construct a Store around it) once parsed.
func LoadConfigYAML(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config yaml: %w", err)
	}
	return cfg, nil
}

// EventIOStore holds the host-injected event-network adapter. It is
// separate from Config because an Adapter is a live object (an open
// connection, a subscription registry), not serializable state — it
// cannot round-trip through yaml/json the way Config can.
type EventIOStore struct {
	mu      sync.RWMutex
	adapter eventio.Adapter
}

// NewEventIOStore returns a store with no adapter installed; callers
// must check Get() for nil before using it, since an engine can run
// with event publishing disabled entirely (local-only mode).
func NewEventIOStore() *EventIOStore {
	return &EventIOStore{}
}

// Set installs the adapter the host wants subsequent publish/fetch
// calls to use.
func (s *EventIOStore) Set(adapter eventio.Adapter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adapter = adapter
}

// Get returns the currently installed adapter, or nil if none has
// been set yet.
func (s *EventIOStore) Get() eventio.Adapter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adapter
}
