package catalog

import "strings"

var queryLabels = []struct {
	prefix string
	label  string
}{
	{"inauthor:", "Author: "},
	{"intitle:", "Title: "},
	{"subject:", "Category: "},
}

// QueryLabel renders a stored search query for display.
func QueryLabel(query string) string {
	for _, l := range queryLabels {
		if rest, ok := strings.CutPrefix(query, l.prefix); ok {
			return l.label + rest
		}
	}
	return query
}

// FilteredQuery joins a search filter and a query the way the catalog expects.
func FilteredQuery(filter, q string) string {
	if filter == "" || q == "" {
		return q
	}
	return filter + ":" + q
}
