package catalog

import (
	"sort"
	"strings"
	"unicode"
)

// MaxGenres caps the ranked genre list.
const MaxGenres = 15

// DefaultGenres seed every ranking with a zero count.
var DefaultGenres = []string{
	"Romance",
	"Mystery",
	"Fantasy",
	"Action",
	"Science Fiction",
	"Horror",
	"Adventure",
	"Western",
}

// Genre is one entry of the home page genre ranking. Link is the subject
// term used to search the genre.
type Genre struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Link  string `json:"link"`

	userAdded bool
}

func newGenre(name string, userAdded bool) *Genre {
	return &Genre{
		Name:      name,
		Link:      name,
		userAdded: userAdded,
	}
}

// RankGenres counts favorite categories on top of the defaults and orders
// the result by count, then by whether the user contributed the genre.
// Each element of categoryLists is one favorite's comma separated category
// string, for example "Fiction / Fantasy, Juvenile Fiction".
func RankGenres(categoryLists []string) []Genre {
	byKey := make(map[string]*Genre, len(DefaultGenres))
	ordered := make([]*Genre, 0, len(DefaultGenres))
	for _, name := range DefaultGenres {
		g := newGenre(name, false)
		byKey[strings.ToLower(name)] = g
		ordered = append(ordered, g)
	}

	for _, list := range categoryLists {
		for _, part := range strings.Split(list, ",") {
			name := normalizeCategory(part)
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			g, ok := byKey[key]
			if !ok {
				g = newGenre(name, true)
				byKey[key] = g
				ordered = append(ordered, g)
			}
			g.Count++
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Count != ordered[j].Count {
			return ordered[i].Count > ordered[j].Count
		}
		return ordered[i].userAdded && !ordered[j].userAdded
	})

	if len(ordered) > MaxGenres {
		ordered = ordered[:MaxGenres]
	}
	out := make([]Genre, len(ordered))
	for i, g := range ordered {
		out[i] = *g
	}
	return out
}

// TopGenreNames returns the first n genre names.
func TopGenreNames(genres []Genre, n int) []string {
	if n > len(genres) {
		n = len(genres)
	}
	names := make([]string, 0, n)
	for _, g := range genres[:n] {
		names = append(names, g.Name)
	}
	return names
}

// normalizeCategory keeps the part before "/" and title-cases it. Parts
// shorter than four characters are dropped.
func normalizeCategory(raw string) string {
	main, _, _ := strings.Cut(raw, "/")
	main = strings.TrimSpace(main)
	if len([]rune(main)) < 4 {
		return ""
	}
	return titleCase(main)
}

func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		prevLetter = false
		b.WriteRune(r)
	}
	return b.String()
}
