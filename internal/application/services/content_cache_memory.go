package services

import (
	"sync"

	"github.com/avatarctic/bookshelf/internal/core/domain/contentcache"
)

// memoryTier is the process-local tier. Entries are published by pointer
// swap and never mutated afterwards, so readers can hold them without locks.
// Each key carries a generation that Invalidate bumps; a rebuild started in
// an older generation may not publish a valid entry.
type memoryTier struct {
	mu      sync.RWMutex
	entries map[string]*contentcache.Entry
	gens    map[string]uint64
}

func newMemoryTier() *memoryTier {
	return &memoryTier{
		entries: make(map[string]*contentcache.Entry),
		gens:    make(map[string]uint64),
	}
}

func (m *memoryTier) load(key string) *contentcache.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[key]
}

// snapshot returns the entry and generation for key under one lock.
func (m *memoryTier) snapshot(key string) (*contentcache.Entry, uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[key], m.gens[key]
}

func (m *memoryTier) generation(key string) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gens[key]
}

// publish stores e only if key is still in generation gen.
func (m *memoryTier) publish(e *contentcache.Entry, gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gens[e.SubjectKey] != gen {
		return false
	}
	m.entries[e.SubjectKey] = e
	return true
}

func (m *memoryTier) invalidate(key string) {
	m.mu.Lock()
	m.entries[key] = m.entries[key].MarkedInvalid(key)
	m.gens[key]++
	m.mu.Unlock()
}
