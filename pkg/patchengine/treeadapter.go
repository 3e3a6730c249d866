// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package patchengine

import (
	"errors"

	"github.com/go-git/go-git/v5/plumbing/object"
)

// CommitTreeReader reads file content out of a single commit's tree,
// implementing TreeReader against go-git's object model.
type CommitTreeReader struct {
	Tree *object.Tree
}

func (r CommitTreeReader) ReadFile(path string) ([]byte, bool, error) {
	file, err := r.Tree.File(path)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	content, err := file.Contents()
	if err != nil {
		return nil, false, err
	}
	return []byte(content), true, nil
}
