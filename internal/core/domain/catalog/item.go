package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by catalog lookups that matched nothing.
var ErrNotFound = errors.New("catalog: volume not found")

// Item is one catalog record. The raw JSON returned by the catalog is kept
// verbatim; only the identifier and the title are read out of it.
type Item struct {
	raw           json.RawMessage
	id            string
	title         string
	hasVolumeInfo bool
}

type itemHeader struct {
	ID         string `json:"id"`
	VolumeInfo *struct {
		Title string `json:"title"`
	} `json:"volumeInfo"`
}

// VolumeInfo is the subset of volume metadata the application reads.
type VolumeInfo struct {
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Categories  []string `json:"categories"`
	Description string   `json:"description"`
	ImageLinks  struct {
		Thumbnail string `json:"thumbnail"`
	} `json:"imageLinks"`
}

// NewItem wraps a raw catalog record.
func NewItem(raw []byte) (Item, error) {
	var h itemHeader
	if err := json.Unmarshal(raw, &h); err != nil {
		return Item{}, fmt.Errorf("catalog: malformed item: %w", err)
	}
	it := Item{
		raw:           append(json.RawMessage(nil), raw...),
		id:            h.ID,
		hasVolumeInfo: h.VolumeInfo != nil,
	}
	if h.VolumeInfo != nil {
		it.title = h.VolumeInfo.Title
	}
	return it, nil
}

// MustItem is NewItem for literals known to be valid.
func MustItem(raw string) Item {
	it, err := NewItem([]byte(raw))
	if err != nil {
		panic(err)
	}
	return it
}

func (i Item) ID() string    { return i.id }
func (i Item) Title() string { return i.title }

// HasVolumeInfo reports whether the record carries a volumeInfo object.
func (i Item) HasVolumeInfo() bool { return i.hasVolumeInfo }

// Raw returns the record exactly as the catalog sent it.
func (i Item) Raw() json.RawMessage { return i.raw }

// Info decodes the volume metadata. Missing or malformed metadata yields a zero value.
func (i Item) Info() VolumeInfo {
	var env struct {
		VolumeInfo VolumeInfo `json:"volumeInfo"`
	}
	if len(i.raw) > 0 {
		_ = json.Unmarshal(i.raw, &env)
	}
	return env.VolumeInfo
}

func (i Item) MarshalJSON() ([]byte, error) {
	if len(i.raw) == 0 {
		return []byte("null"), nil
	}
	return i.raw, nil
}

func (i *Item) UnmarshalJSON(b []byte) error {
	it, err := NewItem(b)
	if err != nil {
		return err
	}
	*i = it
	return nil
}

// TitleKey normalizes a title for duplicate detection.
func TitleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// DedupeByTitle keeps the first item for every title. Untitled items are
// never treated as duplicates.
func DedupeByTitle(items []Item) []Item {
	out := make([]Item, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		k := TitleKey(it.title)
		if k != "" {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
		}
		out = append(out, it)
	}
	return out
}

// Supplement returns fresh followed by prior items whose title is not
// already present, stopping once the result holds max items. Fresh items
// are never dropped.
func Supplement(fresh, prior []Item, max int) []Item {
	out := make([]Item, 0, max)
	out = append(out, fresh...)
	seen := make(map[string]struct{}, len(fresh)+len(prior))
	for _, it := range fresh {
		if k := TitleKey(it.title); k != "" {
			seen[k] = struct{}{}
		}
	}
	for _, it := range prior {
		if len(out) >= max {
			break
		}
		k := TitleKey(it.title)
		if k != "" {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
		}
		out = append(out, it)
	}
	return out
}
