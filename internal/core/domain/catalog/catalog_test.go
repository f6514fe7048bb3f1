package catalog

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func item(title string) Item {
	return MustItem(fmt.Sprintf(`{"id":"%s","volumeInfo":{"title":%q}}`, title, title))
}

func itemTitles(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title()
	}
	return out
}

func TestNewItem_KeepsRawRecord(t *testing.T) {
	raw := `{"id":"zyTCAlFPjgYC","etag":"x","volumeInfo":{"title":"The Google Story","authors":["David A. Vise"],"categories":["Business & Economics"],"imageLinks":{"thumbnail":"http://books.google.com/t.jpg"}}}`
	it, err := NewItem([]byte(raw))
	require.NoError(t, err)
	require.Equal(t, "zyTCAlFPjgYC", it.ID())
	require.Equal(t, "The Google Story", it.Title())
	require.True(t, it.HasVolumeInfo())
	require.JSONEq(t, raw, string(it.Raw()))

	info := it.Info()
	require.Equal(t, []string{"David A. Vise"}, info.Authors)
	require.Equal(t, []string{"Business & Economics"}, info.Categories)
	require.Equal(t, "http://books.google.com/t.jpg", info.ImageLinks.Thumbnail)

	out, err := json.Marshal([]Item{it})
	require.NoError(t, err)
	require.JSONEq(t, "["+raw+"]", string(out))
}

func TestNewItem_WithoutVolumeInfo(t *testing.T) {
	it, err := NewItem([]byte(`{"id":"x"}`))
	require.NoError(t, err)
	require.False(t, it.HasVolumeInfo())
	require.Empty(t, it.Title())
	require.Empty(t, it.Info().Title)

	_, err = NewItem([]byte(`not json`))
	require.Error(t, err)
}

func TestDedupeByTitle(t *testing.T) {
	untitled := MustItem(`{"id":"u"}`)
	got := DedupeByTitle([]Item{item("Dune"), item(" dune "), item("Emma"), untitled, untitled})
	require.Equal(t, []string{"Dune", "Emma", "", ""}, itemTitles(got))
}

func TestSupplement(t *testing.T) {
	fresh := []Item{item("A"), item("B"), item("C")}
	prior := []Item{item("c"), item("D"), item("E"), item("F")}

	require.Equal(t, []string{"A", "B", "C", "D", "E"}, itemTitles(Supplement(fresh, prior, 5)))
	require.Equal(t, []string{"A", "B", "C", "D", "E", "F"}, itemTitles(Supplement(fresh, prior, 12)))

	// fresh is never truncated
	require.Len(t, Supplement(fresh, prior, 2), 3)
}

func TestRankGenres(t *testing.T) {
	genres := RankGenres([]string{
		"Fiction / Fantasy, Horror",
		"fiction",
		"Sci, Horror",
	})

	require.Equal(t, "Fiction", genres[0].Name)
	require.Equal(t, 2, genres[0].Count)
	require.Equal(t, "Fiction", genres[0].Link)
	require.Equal(t, "Horror", genres[1].Name)
	require.Equal(t, 2, genres[1].Count)
	// "Sci" is too short to count
	for _, g := range genres {
		require.NotEqual(t, "Sci", g.Name)
	}
	require.Len(t, genres, len(DefaultGenres)+1)
	require.Equal(t, []string{"Fiction", "Horror", "Romance"}, TopGenreNames(genres, 3))
}

func TestRankGenres_Defaults(t *testing.T) {
	genres := RankGenres(nil)
	require.Len(t, genres, len(DefaultGenres))
	require.Equal(t, DefaultGenres[:3], TopGenreNames(genres, 3))
	require.Len(t, TopGenreNames(genres, 100), len(DefaultGenres))
}

func TestRankGenres_CapsList(t *testing.T) {
	var cats []string
	for i := 0; i < 20; i++ {
		cats = append(cats, fmt.Sprintf("Category %c", 'a'+i))
	}
	require.Len(t, RankGenres(cats), MaxGenres)
}

func TestTitleCase(t *testing.T) {
	require.Equal(t, "Science Fiction", normalizeCategory("SCIENCE fiction / Space Opera"))
	require.Equal(t, "Young-Adult", normalizeCategory(" young-adult "))
	require.Empty(t, normalizeCategory("Art"))
}

func TestQueryLabel(t *testing.T) {
	require.Equal(t, "Author: Tolkien", QueryLabel("inauthor:Tolkien"))
	require.Equal(t, "Title: Dune", QueryLabel("intitle:Dune"))
	require.Equal(t, "Category: Fantasy", QueryLabel("subject:Fantasy"))
	require.Equal(t, "dune", QueryLabel("dune"))
}

func TestFilteredQuery(t *testing.T) {
	require.Equal(t, "inauthor:Tolkien", FilteredQuery("inauthor", "Tolkien"))
	require.Equal(t, "Tolkien", FilteredQuery("", "Tolkien"))
	require.Equal(t, "", FilteredQuery("inauthor", ""))
}
