package contentcache

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avatarctic/bookshelf/internal/core/domain/catalog"
)

func items(prefix string, n int) []catalog.Item {
	out := make([]catalog.Item, n)
	for i := range out {
		out[i] = catalog.MustItem(fmt.Sprintf(`{"id":"%s%d","volumeInfo":{"title":"%s %d"}}`, prefix, i, prefix, i))
	}
	return out
}

func TestEntryValid(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	e := &Entry{SubjectKey: "k", Signature: []string{"a", "b"}, UpdatedAt: now.Add(-5 * time.Hour)}

	require.True(t, e.Valid([]string{"a", "b"}, 6*time.Hour, now))
	require.False(t, e.Valid([]string{"b", "a"}, 6*time.Hour, now))
	require.False(t, e.Valid(nil, 6*time.Hour, now))
	require.False(t, e.Valid([]string{"a", "b"}, 5*time.Hour, now))
	require.False(t, e.MarkedInvalid("k").Valid([]string{"a", "b"}, 6*time.Hour, now))

	var missing *Entry
	require.False(t, missing.Valid(nil, time.Hour, now))
}

func TestMarkedInvalid_CopiesEntry(t *testing.T) {
	e := &Entry{SubjectKey: "k", Payload: items("x", 2)}
	inv := e.MarkedInvalid("k")
	require.True(t, inv.Invalidated)
	require.False(t, e.Invalidated)
	require.Len(t, inv.Payload, 2)

	var missing *Entry
	tomb := missing.MarkedInvalid("gone")
	require.Equal(t, "gone", tomb.SubjectKey)
	require.True(t, tomb.Invalidated)
	require.Empty(t, tomb.Payload)
}

func TestMergePolicyApply(t *testing.T) {
	p := DefaultMergePolicy

	fresh := items("fresh", 10)
	got, supplemented := p.Apply(fresh, items("prior", 12))
	require.False(t, supplemented)
	require.Len(t, got, 10)

	got, supplemented = p.Apply(items("fresh", 3), nil)
	require.False(t, supplemented)
	require.Len(t, got, 3)

	got, supplemented = p.Apply(items("fresh", 3), items("prior", 12))
	require.True(t, supplemented)
	require.Len(t, got, 12)
}

func TestStorageErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("wrapped: %w", &StorageError{Op: "write", SubjectKey: "top", Err: cause})
	require.ErrorIs(t, err, ErrStorage)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), `write "top"`)
}
