// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package engineerr defines the error taxonomy every operation on the RPC
// surface categorizes into before crossing the host boundary.
package engineerr

import (
	"errors"
	"net/http"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// Kind is one of the fixed error kinds in the taxonomy. Kinds, not Go type
// names, are what crosses the RPC boundary.
type Kind string

// User-actionable kinds: the host can resolve these by changing input or
// re-authenticating.
const (
	KindAuthRequired        Kind = "auth-required"
	KindAuthExpired         Kind = "auth-expired"
	KindAuthInvalid         Kind = "auth-invalid"
	KindNotFastForward      Kind = "not-fast-forward"
	KindMergeConflict       Kind = "merge-conflict"
	KindRepoNotFound        Kind = "repo-not-found"
	KindRepoAlreadyExists   Kind = "repo-already-exists"
	KindQuotaExceeded       Kind = "quota-exceeded"
	KindPermissionDenied    Kind = "permission-denied"
	KindRefLocked           Kind = "ref-locked"
	KindInvalidRefspec      Kind = "invalid-refspec"
	KindInvalidInput        Kind = "invalid-input"
	KindUncommittedChanges  Kind = "uncommitted-changes"
	KindRemoteAhead         Kind = "remote-ahead"
	KindShallowClone        Kind = "shallow-clone"
	KindRequiresConfirm     Kind = "requires-confirmation"
)

// Retriable kinds: the caller may re-invoke the same operation.
const (
	KindNetworkError     Kind = "network-error"
	KindTimeout          Kind = "timeout"
	KindRelayTimeout     Kind = "relay-timeout"
	KindRelayError       Kind = "relay-error"
	KindServer5xx        Kind = "server-5xx"
	KindTemporaryFailure Kind = "temporary-failure"
	KindRateLimited      Kind = "rate-limited"
)

// Fatal kinds: the engine cannot proceed without a reset.
const (
	KindCorruptPack      Kind = "corrupt-pack"
	KindCorruptObject    Kind = "corrupt-object"
	KindFSError          Kind = "fs-error"
	KindOperationAborted Kind = "operation-aborted"
	KindUnknown          Kind = "unknown-error"
)

// Context carries the operation metadata an error occurred under.
type Context struct {
	RepoKey   string `json:"repoKey,omitempty"`
	Ref       string `json:"ref,omitempty"`
	Remote    string `json:"remote,omitempty"`
	Operation string `json:"operation,omitempty"`
}

// Error is the carrier type for every categorized failure. It implements
// error and Unwrap so callers may still use errors.Is/As against the
// original cause.
type Error struct {
	Kind    Kind
	Message string
	Hint    string
	Ctx     Context
	Cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return string(e.Kind) + ": " + e.Cause.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error of the given kind with a message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap categorizes cause under kind, keeping it in the error chain.
func Wrap(kind Kind, cause error, message string) *Error {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// WithHint attaches a remediation hint and returns the same error for
// chaining at the construction site.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// WithContext attaches operation context and returns the same error.
func (e *Error) WithContext(ctx Context) *Error {
	e.Ctx = ctx
	return e
}

// Classify inspects an arbitrary error returned by the Git library, the
// filesystem, or an HTTP transport and assigns it a Kind. Unknown errors
// default to KindUnknown and keep their original message.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, git.ErrNonFastForwardUpdate):
		return KindNotFastForward
	case errors.Is(err, git.ErrRemoteNotFound):
		return KindRepoNotFound
	case errors.Is(err, git.ErrRepositoryNotExists):
		return KindRepoNotFound
	case errors.Is(err, git.ErrRepositoryAlreadyExists):
		return KindRepoAlreadyExists
	case errors.Is(err, transport.ErrAuthenticationRequired):
		return KindAuthRequired
	case errors.Is(err, transport.ErrAuthorizationFailed):
		return KindAuthInvalid
	case errors.Is(err, transport.ErrRepositoryNotFound):
		return KindRepoNotFound
	case errors.Is(err, transport.ErrEmptyRemoteRepository):
		return KindRepoNotFound
	}

	var engErr *Error
	if errors.As(err, &engErr) {
		return engErr.Kind
	}

	var httpErr interface{ StatusCode() int }
	if errors.As(err, &httpErr) {
		return classifyHTTPStatus(httpErr.StatusCode())
	}

	return KindUnknown
}

func classifyHTTPStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuthRequired
	case status == http.StatusForbidden:
		return KindPermissionDenied
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 500:
		return KindServer5xx
	default:
		return KindUnknown
	}
}

// Result is the structured, JSON-serializable failure envelope every
// RPC handler returns instead of propagating a raw error.
type Result struct {
	Success  bool     `json:"success"`
	Error    string   `json:"error,omitempty"`
	Code     Kind     `json:"code,omitempty"`
	Category string   `json:"category,omitempty"`
	Hint     string   `json:"hint,omitempty"`
	Context  *Context `json:"context,omitempty"`
}

// Category buckets a Kind into "user-actionable", "retriable", or "fatal".
func Category(kind Kind) string {
	switch kind {
	case KindAuthRequired, KindAuthExpired, KindAuthInvalid, KindNotFastForward,
		KindMergeConflict, KindRepoNotFound, KindRepoAlreadyExists, KindQuotaExceeded,
		KindPermissionDenied, KindRefLocked, KindInvalidRefspec, KindInvalidInput,
		KindUncommittedChanges, KindRemoteAhead, KindShallowClone, KindRequiresConfirm:
		return "user-actionable"
	case KindNetworkError, KindTimeout, KindRelayTimeout, KindRelayError,
		KindServer5xx, KindTemporaryFailure, KindRateLimited:
		return "retriable"
	default:
		return "fatal"
	}
}

// ToResult converts any error into the RPC-facing failure envelope,
// classifying it first if it is not already an *Error.
func ToResult(err error, ctx Context) Result {
	if err == nil {
		return Result{Success: true}
	}

	var engErr *Error
	if !errors.As(err, &engErr) {
		engErr = &Error{Kind: Classify(err), Message: err.Error(), Ctx: ctx}
	}
	if engErr.Ctx == (Context{}) {
		engErr.Ctx = ctx
	}

	res := Result{
		Success:  false,
		Error:    engErr.Error(),
		Code:     engErr.Kind,
		Category: Category(engErr.Kind),
		Hint:     engErr.Hint,
	}
	if engErr.Ctx != (Context{}) {
		c := engErr.Ctx
		res.Context = &c
	}
	return res
}
