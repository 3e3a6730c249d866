// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package patchengine

import "strings"

// applyHunk attempts to apply hunk to lines (0-indexed, no trailing
// newlines), returning the resulting lines. It first tries the exact
// position the hunk header names, then searches a small window around it
// to tolerate lines that shifted because an earlier hunk in the same file
// already changed the line count.
func applyHunk(lines []string, hunk Hunk) ([]string, bool) {
	pos := hunk.OldStart - 1
	if pos < 0 {
		pos = 0
	}
	for _, candidate := range searchWindow(pos, len(lines)) {
		if out, ok := tryApplyAt(lines, hunk, candidate); ok {
			return out, true
		}
	}
	return nil, false
}

// searchWindow yields candidate start offsets closest to pos first, within
// bounds, to tolerate small drift before giving up.
func searchWindow(pos, n int) []int {
	var out []int
	for delta := 0; delta <= 3; delta++ {
		if pos+delta <= n {
			out = append(out, pos+delta)
		}
		if delta > 0 && pos-delta >= 0 {
			out = append(out, pos-delta)
		}
	}
	return out
}

func tryApplyAt(lines []string, hunk Hunk, start int) ([]string, bool) {
	out := make([]string, 0, len(lines)+hunk.NewLines)
	out = append(out, lines[:start]...)

	cursor := start
	for _, hl := range hunk.Body {
		switch hl.Kind {
		case ' ':
			if cursor >= len(lines) || lines[cursor] != hl.Content {
				return nil, false
			}
			out = append(out, lines[cursor])
			cursor++
		case '-':
			if cursor >= len(lines) || lines[cursor] != hl.Content {
				return nil, false
			}
			cursor++
		case '+':
			out = append(out, hl.Content)
		}
	}
	out = append(out, lines[cursor:]...)
	return out, true
}

// alreadyApplied reports whether content already equals what forward-
// applying hunk would produce: every added ('+') and context (' ') line in
// the hunk body, in order, already appears contiguously in content.
// Removed ('-') lines are not checked.
func alreadyApplied(lines []string, hunk Hunk) bool {
	pos := hunk.NewStart - 1
	if pos < 0 {
		pos = 0
	}
	for _, candidate := range searchWindow(pos, len(lines)) {
		if matchesForwardResult(lines, hunk, candidate) {
			return true
		}
	}
	return false
}

func matchesForwardResult(lines []string, hunk Hunk, start int) bool {
	cursor := start
	for _, hl := range hunk.Body {
		if hl.Kind == '-' {
			continue
		}
		if cursor >= len(lines) || lines[cursor] != hl.Content {
			return false
		}
		cursor++
	}
	return true
}

func splitLines(content []byte) []string {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func joinLines(lines []string) []byte {
	if len(lines) == 0 {
		return nil
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}
