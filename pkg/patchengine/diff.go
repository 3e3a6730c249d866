// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package patchengine parses unified-diff patch series and determines
// whether they apply cleanly against a target tree.
package patchengine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nostr-git/engine/pkg/engineerr"
)

// HunkLine is one line of a hunk body, tagged with its +/-/context role.
type HunkLine struct {
	Kind    byte // ' ', '+', or '-'
	Content string
}

// Hunk is one `@@ -x,y +u,v @@` block.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Body     []HunkLine
}

// FileDiff is one `diff --git a/... b/...` section of a patch series.
type FileDiff struct {
	OldPath  string
	NewPath  string
	IsNew    bool
	IsDelete bool
	IsRename bool
	IsBinary bool
	Hunks    []Hunk
}

var (
	// ErrEmptyPatch is returned when a patch payload has no file sections.
	ErrEmptyPatch = engineerr.New(engineerr.KindInvalidInput, "patch contains no file changes")
	// ErrBinaryPatch is returned when a section is a binary patch; the
	// engine refuses to test-apply binary content.
	ErrBinaryPatch = engineerr.New(engineerr.KindInvalidInput, "binary patches are not supported")
)

// ParsePatch splits a unified-diff payload into its per-file sections.
// Sections are recognized by a `diff --git a/<old> b/<new>` header line or,
// failing that, a bare `--- a/<old>` / `+++ b/<new>` pair.
func ParsePatch(payload string) ([]FileDiff, error) {
	lines := strings.Split(strings.ReplaceAll(payload, "\r\n", "\n"), "\n")

	var diffs []FileDiff
	var cur *FileDiff
	var hunk *Hunk

	flushHunk := func() {
		if hunk != nil && cur != nil {
			cur.Hunks = append(cur.Hunks, *hunk)
			hunk = nil
		}
	}
	flushFile := func() {
		flushHunk()
		if cur != nil {
			diffs = append(diffs, *cur)
			cur = nil
		}
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "diff --git "):
			flushFile()
			old, new_, ok := parseDiffGitHeader(line)
			if !ok {
				return nil, fmt.Errorf("%w: malformed diff header %q", ErrEmptyPatch, line)
			}
			cur = &FileDiff{OldPath: old, NewPath: new_}

		case strings.HasPrefix(line, "GIT binary patch"):
			if cur == nil {
				return nil, ErrBinaryPatch
			}
			cur.IsBinary = true

		case strings.HasPrefix(line, "new file mode"):
			if cur != nil {
				cur.IsNew = true
			}
		case strings.HasPrefix(line, "deleted file mode"):
			if cur != nil {
				cur.IsDelete = true
			}
		case strings.HasPrefix(line, "rename from"), strings.HasPrefix(line, "rename to"):
			if cur != nil {
				cur.IsRename = true
			}

		case strings.HasPrefix(line, "--- "):
			if cur == nil {
				cur = &FileDiff{}
			}
			path := strings.TrimPrefix(line, "--- ")
			if path == "/dev/null" {
				cur.IsNew = true
			} else {
				cur.OldPath = stripABPrefix(path)
			}
		case strings.HasPrefix(line, "+++ "):
			if cur == nil {
				cur = &FileDiff{}
			}
			path := strings.TrimPrefix(line, "+++ ")
			if path == "/dev/null" {
				cur.IsDelete = true
			} else {
				cur.NewPath = stripABPrefix(path)
			}

		case strings.HasPrefix(line, "@@"):
			flushHunk()
			h, err := parseHunkHeader(line)
			if err != nil {
				return nil, err
			}
			hunk = h

		default:
			if hunk != nil && len(line) > 0 {
				switch line[0] {
				case '+', '-', ' ':
					hunk.Body = append(hunk.Body, HunkLine{Kind: line[0], Content: line[1:]})
				case '\\':
					// "\ No newline at end of file" — not tracked.
				}
			}
		}
	}
	flushFile()

	if len(diffs) == 0 {
		return nil, ErrEmptyPatch
	}
	for _, d := range diffs {
		if d.IsBinary {
			return nil, ErrBinaryPatch
		}
	}
	return diffs, nil
}

func stripABPrefix(path string) string {
	if strings.HasPrefix(path, "a/") || strings.HasPrefix(path, "b/") {
		return path[2:]
	}
	return path
}

func parseDiffGitHeader(line string) (oldPath, newPath string, ok bool) {
	rest := strings.TrimPrefix(line, "diff --git ")
	parts := strings.SplitN(rest, " b/", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	old := strings.TrimPrefix(parts[0], "a/")
	return old, parts[1], true
}

func parseHunkHeader(line string) (*Hunk, error) {
	// @@ -oldStart,oldLines +newStart,newLines @@ optional section heading
	body := strings.TrimPrefix(line, "@@ ")
	end := strings.Index(body, " @@")
	if end < 0 {
		return nil, fmt.Errorf("%w: malformed hunk header %q", ErrEmptyPatch, line)
	}
	fields := strings.Fields(body[:end])
	if len(fields) != 2 {
		return nil, fmt.Errorf("%w: malformed hunk header %q", ErrEmptyPatch, line)
	}
	oldStart, oldLines, err := parseRange(fields[0], '-')
	if err != nil {
		return nil, err
	}
	newStart, newLines, err := parseRange(fields[1], '+')
	if err != nil {
		return nil, err
	}
	return &Hunk{OldStart: oldStart, OldLines: oldLines, NewStart: newStart, NewLines: newLines}, nil
}

func parseRange(field string, want byte) (start, count int, err error) {
	if len(field) == 0 || field[0] != want {
		return 0, 0, fmt.Errorf("%w: malformed range %q", ErrEmptyPatch, field)
	}
	spec := field[1:]
	parts := strings.SplitN(spec, ",", 2)
	start, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrEmptyPatch, err)
	}
	count = 1
	if len(parts) == 2 {
		count, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %v", ErrEmptyPatch, err)
		}
	}
	return start, count, nil
}
