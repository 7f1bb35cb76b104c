package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
	tags      []string
}

// MemoryStore is an in-process Store. Expired entries are dropped lazily when
// they are read.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	tags    map[string]map[string]struct{}
	now     func() time.Time

	// gens counts InvalidateByTag calls per tag; epoch counts InvalidateAll.
	gens  map[string]uint64
	epoch uint64
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		tags:    make(map[string]map[string]struct{}),
		now:     time.Now,
		gens:    make(map[string]uint64),
	}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !s.now().Before(e.expiresAt) {
		s.mu.Lock()
		// Re-check: a concurrent Set may have refreshed the entry.
		if cur, ok := s.entries[key]; ok && !s.now().Before(cur.expiresAt) {
			s.deleteLocked(key)
		}
		s.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration, tags ...string) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(key, value, ttl, tags)
}

// SetIfCurrent implements Store.
func (s *MemoryStore) SetIfCurrent(_ context.Context, key string, value []byte, ttl time.Duration, tag string, gen uint64) bool {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generationLocked(tag) != gen {
		return false
	}
	s.setLocked(key, value, ttl, []string{tag})
	return true
}

// Generation implements Store.
func (s *MemoryStore) Generation(_ context.Context, tag string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generationLocked(tag)
}

func (s *MemoryStore) generationLocked(tag string) uint64 {
	return s.epoch + s.gens[tag]
}

func (s *MemoryStore) setLocked(key string, value []byte, ttl time.Duration, tags []string) {
	s.deleteLocked(key)
	s.entries[key] = entry{value: value, expiresAt: s.now().Add(ttl), tags: tags}
	for _, tag := range tags {
		keys, ok := s.tags[tag]
		if !ok {
			keys = make(map[string]struct{})
			s.tags[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

// InvalidateAll implements Store.
func (s *MemoryStore) InvalidateAll(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.entries)
	clear(s.tags)
	s.epoch++
}

// InvalidateByTag implements Store.
func (s *MemoryStore) InvalidateByTag(_ context.Context, tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.tags[tag] {
		s.deleteLocked(key)
	}
	delete(s.tags, tag)
	s.gens[tag]++
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) deleteLocked(key string) {
	e, ok := s.entries[key]
	if !ok {
		return
	}
	delete(s.entries, key)
	for _, tag := range e.tags {
		if keys, ok := s.tags[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(s.tags, tag)
			}
		}
	}
}
