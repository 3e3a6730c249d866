// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package gitvalidate validates the strings the engine accepts from a host
// process before they reach a filesystem path, a clone URL, a branch name,
// or a commit message.
package gitvalidate

import (
	"fmt"
	"regexp"
	"strings"
)

// dangerousPatterns catches path traversal, null bytes, and embedded
// newlines in any string that will end up as part of a path or URL.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\.\./`),
	regexp.MustCompile(`\x00`),
	regexp.MustCompile(`\r|\n`),
}

// Path validates a filesystem path relative to the adapter's root. It
// rejects traversal outside the root and access to absolute system paths.
func Path(path string) error {
	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(path) {
			return fmt.Errorf("path contains dangerous pattern: %s", path)
		}
	}

	systemDirs := []string{"/etc/", "/usr/", "/bin/", "/sbin/", "/sys/", "/proc/"}
	for _, sysDir := range systemDirs {
		if strings.HasPrefix(path, sysDir) {
			return fmt.Errorf("access to system directory not allowed: %s", path)
		}
	}

	return nil
}

// URL validates a Git clone/push URL scheme.
func URL(url string) error {
	if url == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(url) {
			return fmt.Errorf("URL contains dangerous pattern")
		}
	}

	validSchemes := []string{"https://", "http://", "ssh://", "git://", "git@", "file://"}
	for _, scheme := range validSchemes {
		if strings.HasPrefix(url, scheme) {
			if strings.HasPrefix(url, "git@") && !strings.Contains(url, ":") {
				return fmt.Errorf("invalid SSH URL format: %s", url)
			}
			return nil
		}
	}

	return fmt.Errorf("URL has invalid or unsupported scheme: %s", url)
}

// CommitMessage validates a commit message.
func CommitMessage(message string) error {
	if message == "" {
		return fmt.Errorf("commit message cannot be empty")
	}
	if strings.Contains(message, "\x00") {
		return fmt.Errorf("commit message contains null byte")
	}
	if len(message) > 10000 {
		return fmt.Errorf("commit message too long (max 10000 characters)")
	}
	return nil
}

// branchNamePatterns are the invalid-pattern checks from Git's own
// check-ref-format rules, the subset relevant to user-supplied branch
// names (not full refs).
var branchNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\.`),
	regexp.MustCompile(`\.\.`),
	regexp.MustCompile(`[~^:?*\[\]\\]`),
	regexp.MustCompile(`\s`),
	regexp.MustCompile(`^/|/$|//`),
	regexp.MustCompile(`\.lock$`),
}

// BranchName validates a Git branch name against check-ref-format rules.
func BranchName(name string) error {
	if name == "" {
		return fmt.Errorf("branch name cannot be empty")
	}

	for _, pattern := range branchNamePatterns {
		if pattern.MatchString(name) {
			return fmt.Errorf("branch name contains invalid pattern: %s", name)
		}
	}

	if len(name) > 255 {
		return fmt.Errorf("branch name too long (max 255 characters)")
	}

	return nil
}

// RepoKeyComponent validates a single owner or name component of a
// canonical repository key: no slashes (which would make the key
// ambiguous) and no path traversal.
func RepoKeyComponent(component string) error {
	if component == "" {
		return fmt.Errorf("component cannot be empty")
	}
	if strings.Contains(component, "/") {
		return fmt.Errorf("component must not contain a slash: %s", component)
	}
	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(component) {
			return fmt.Errorf("component contains dangerous pattern: %s", component)
		}
	}
	return nil
}
