package contentcache

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/avatarctic/bookshelf/internal/core/domain/catalog"
)

var (
	// ErrStorage marks failures of the durable tier. Reads still return a
	// usable payload alongside it.
	ErrStorage = errors.New("content cache storage failure")
	// ErrInvalidRequest is returned for an empty key, a non-positive ttl or a nil rebuild.
	ErrInvalidRequest = errors.New("invalid content cache request")
	// ErrUnauthorized is returned by admin refreshes with a wrong or unset token.
	ErrUnauthorized = errors.New("invalid refresh token")
)

// StorageError describes a failed durable tier operation.
type StorageError struct {
	Op         string
	SubjectKey string
	Err        error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("content cache %s %q: %v", e.Op, e.SubjectKey, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

// Entry is one cached payload together with the inputs that produced it.
// Entries are immutable once published; updates replace the whole entry.
type Entry struct {
	SubjectKey  string
	Signature   []string
	Payload     []catalog.Item
	UpdatedAt   time.Time
	Invalidated bool
}

// Valid reports whether the entry may be served for signature at now.
func (e *Entry) Valid(signature []string, ttl time.Duration, now time.Time) bool {
	if e == nil || e.Invalidated {
		return false
	}
	if !slices.Equal(e.Signature, signature) {
		return false
	}
	return now.Sub(e.UpdatedAt) < ttl
}

// MarkedInvalid returns a copy of e flagged as invalidated. A nil entry
// yields a payload-less tombstone for key.
func (e *Entry) MarkedInvalid(key string) *Entry {
	if e == nil {
		return &Entry{SubjectKey: key, Invalidated: true}
	}
	cp := *e
	cp.Invalidated = true
	return &cp
}

// MergePolicy bounds how a thin rebuild is topped up from the prior payload.
type MergePolicy struct {
	MinResults int
	MaxResults int
}

var DefaultMergePolicy = MergePolicy{MinResults: 10, MaxResults: 12}

// Apply returns fresh unchanged when it is large enough or nothing prior
// exists, otherwise fresh topped up with non-duplicate prior items.
func (p MergePolicy) Apply(fresh, prior []catalog.Item) ([]catalog.Item, bool) {
	if len(fresh) >= p.MinResults || len(prior) == 0 {
		return fresh, false
	}
	return catalog.Supplement(fresh, prior, p.MaxResults), true
}
