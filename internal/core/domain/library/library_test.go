package library

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLabelHistory(t *testing.T) {
	got := LabelHistory([]*SearchHistoryEntry{{Query: "subject:Horror"}, {Query: "dune"}})
	require.Equal(t, []SearchLabel{
		{Query: "subject:Horror", Label: "Category: Horror"},
		{Query: "dune", Label: "dune"},
	}, got)
	require.NotNil(t, LabelHistory(nil))
}

func TestDedupeViewed(t *testing.T) {
	views := []*RecentlyViewed{{BookID: "a", Title: "new"}, {BookID: "b"}, {BookID: "a", Title: "old"}}
	got := DedupeViewed(views)
	require.Len(t, got, 2)
	require.Equal(t, "new", got[0].Title)
	require.Equal(t, "b", got[1].BookID)
}
