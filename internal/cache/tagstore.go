package cache

import (
	"context"
	"sync"
	"time"
)

// TagStore caches opaque values under keys, grouped by tags for bulk invalidation
type TagStore interface {
	// Get returns the value and true when key is present and not expired
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for ttl and associates key with every tag
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags []string) error
	// InvalidateTag drops every key associated with tag and returns how many were dropped
	InvalidateTag(ctx context.Context, tag string) (int, error)
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time
	tags      []string
}

// MemoryTagStore is a process-local TagStore
type MemoryTagStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	tags  map[string]map[string]struct{}
	now   func() time.Time
}

var _ TagStore = (*MemoryTagStore)(nil)

// NewMemoryTagStore creates an empty in-memory store
func NewMemoryTagStore() *MemoryTagStore {
	return &MemoryTagStore{
		items: make(map[string]memoryItem),
		tags:  make(map[string]map[string]struct{}),
		now:   time.Now,
	}
}

func (s *MemoryTagStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	if !s.now().Before(item.expiresAt) {
		s.removeLocked(key, item)
		return nil, false, nil
	}
	return item.value, true, nil
}

func (s *MemoryTagStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags []string) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.items[key]; ok {
		s.removeLocked(key, old)
	}
	s.items[key] = memoryItem{value: value, expiresAt: s.now().Add(ttl), tags: tags}
	for _, tag := range tags {
		keys, ok := s.tags[tag]
		if !ok {
			keys = make(map[string]struct{})
			s.tags[tag] = keys
		}
		keys[key] = struct{}{}
	}
	return nil
}

func (s *MemoryTagStore) InvalidateTag(ctx context.Context, tag string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := s.tags[tag]
	n := 0
	for key := range keys {
		if item, ok := s.items[key]; ok {
			s.removeLocked(key, item)
			n++
		}
	}
	delete(s.tags, tag)
	return n, nil
}

// Len returns the number of stored keys
func (s *MemoryTagStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *MemoryTagStore) removeLocked(key string, item memoryItem) {
	delete(s.items, key)
	for _, tag := range item.tags {
		if keys, ok := s.tags[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(s.tags, tag)
			}
		}
	}
}
