// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package gitvalidate

import "testing"

func TestPathRejectsTraversal(t *testing.T) {
	if err := Path("../../etc/passwd"); err == nil {
		t.Error("expected error for path traversal")
	}
}

func TestPathRejectsSystemDir(t *testing.T) {
	if err := Path("/etc/shadow"); err == nil {
		t.Error("expected error for system directory")
	}
}

func TestPathAllowsOrdinary(t *testing.T) {
	if err := Path("repos/alice/proj"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestURLSchemes(t *testing.T) {
	valid := []string{"https://host/a/b.git", "ssh://git@host/a/b.git", "git@host:a/b.git"}
	for _, u := range valid {
		if err := URL(u); err != nil {
			t.Errorf("expected %s to be valid, got %v", u, err)
		}
	}
	invalid := []string{"", "ftp://host/a", "git@host-without-colon"}
	for _, u := range invalid {
		if err := URL(u); err == nil {
			t.Errorf("expected %s to be invalid", u)
		}
	}
}

func TestBranchNameRules(t *testing.T) {
	bad := []string{"", ".hidden", "a..b", "has space", "/leading", "trailing/", "x.lock"}
	for _, n := range bad {
		if err := BranchName(n); err == nil {
			t.Errorf("expected %q to be invalid", n)
		}
	}
	if err := BranchName("feature/add-thing"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRepoKeyComponent(t *testing.T) {
	if err := RepoKeyComponent("alice/proj"); err == nil {
		t.Error("expected error for slash in component")
	}
	if err := RepoKeyComponent("alice"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
