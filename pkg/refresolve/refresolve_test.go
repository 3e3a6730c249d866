// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package refresolve

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeSignedStateFiltersNonMaintainers(t *testing.T) {
	anns := []Announcement{
		{Author: "outsider", Timestamp: 100, Refs: []RefRecord{{Type: "heads", Name: "main", CommitOID: "bad"}}},
		{Author: "owner", Timestamp: 50, Refs: []RefRecord{{Type: "heads", Name: "main", CommitOID: "good"}}},
	}
	merged := MergeSignedState(anns, map[string]bool{"owner": true})
	require.Equal(t, "good", merged["heads:main"].CommitOID)
}

func TestMergeSignedStateLastWriteWinsByTimestamp(t *testing.T) {
	anns := []Announcement{
		{Author: "owner", Timestamp: 1, Refs: []RefRecord{{Type: "heads", Name: "main", CommitOID: "old"}}},
		{Author: "owner", Timestamp: 2, Refs: []RefRecord{{Type: "heads", Name: "main", CommitOID: "new"}}},
	}
	merged := MergeSignedState(anns, map[string]bool{"owner": true})
	require.Equal(t, "new", merged["heads:main"].CommitOID)
}

func TestMergeSignedStateTieBreakByAuthorLexical(t *testing.T) {
	anns := []Announcement{
		{Author: "zeta", Timestamp: 5, Refs: []RefRecord{{Type: "heads", Name: "main", CommitOID: "from-zeta"}}},
		{Author: "alpha", Timestamp: 5, Refs: []RefRecord{{Type: "heads", Name: "main", CommitOID: "from-alpha"}}},
	}
	merged := MergeSignedState(anns, map[string]bool{"zeta": true, "alpha": true})
	require.Equal(t, "from-alpha", merged["heads:main"].CommitOID)
}

func TestMergeSignedStateIndependentOfOrder(t *testing.T) {
	maintainers := map[string]bool{"a": true, "b": true}
	anns1 := []Announcement{
		{Author: "a", Timestamp: 1, Refs: []RefRecord{{Type: "heads", Name: "main", CommitOID: "x"}}},
		{Author: "b", Timestamp: 2, Refs: []RefRecord{{Type: "heads", Name: "main", CommitOID: "y"}}},
	}
	anns2 := []Announcement{anns1[1], anns1[0]}

	m1 := MergeSignedState(anns1, maintainers)
	m2 := MergeSignedState(anns2, maintainers)
	require.Equal(t, m1, m2)
}

func TestReconstructLegacyTagPairs(t *testing.T) {
	legacy := LegacyAnnouncement{
		Author:    "owner",
		Timestamp: 1,
		TagPairs: [][2]string{
			{"heads:main", "abc123"},
			{"tags:v1.0", "def456"},
		},
	}
	ann := ReconstructLegacy(legacy)
	require.Len(t, ann.Refs, 2)
	require.Equal(t, "heads", ann.Refs[0].Type)
	require.Equal(t, "main", ann.Refs[0].Name)
	require.Equal(t, "abc123", ann.Refs[0].CommitOID)
}
