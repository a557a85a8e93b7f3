package stores

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/polocloud/polocloud/pkg/fault"
)

// MemoryStore keeps entities in process. It is safe for concurrent use.
type MemoryStore[K comparable, E any] struct {
	name   string
	format func(K) string

	mu   sync.RWMutex
	data map[K]memoryEntry[E]
	next uint64
}

// memoryEntry remembers when its key was first inserted. Replace keeps seq.
type memoryEntry[E any] struct {
	e   E
	seq uint64
}

// NewMemoryStore returns an empty store. name labels errors; format renders
// keys in errors.
func NewMemoryStore[K comparable, E any](name string, format func(K) string) *MemoryStore[K, E] {
	return &MemoryStore[K, E]{
		name:   name,
		format: format,
		data:   make(map[K]memoryEntry[E]),
	}
}

func (s *MemoryStore[K, E]) notFound(key K) error {
	return fault.NotFound(fmt.Sprintf("%s %q not found", s.name, s.format(key))).WithEntity(s.name)
}

// Get returns the entity under key.
func (s *MemoryStore[K, E]) Get(_ context.Context, key K) (E, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ent, ok := s.data[key]
	if !ok {
		return ent.e, s.notFound(key)
	}
	return ent.e, nil
}

// List returns every entity in insertion order.
func (s *MemoryStore[K, E]) List(_ context.Context) ([]E, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := slices.SortedFunc(maps.Values(s.data), func(a, b memoryEntry[E]) int {
		return cmp.Compare(a.seq, b.seq)
	})
	out := make([]E, 0, len(entries))
	for _, ent := range entries {
		out = append(out, ent.e)
	}
	return out, nil
}

// Insert stores e under a key that must not exist.
func (s *MemoryStore[K, E]) Insert(_ context.Context, key K, e E) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; ok {
		return fault.Conflict(fmt.Sprintf("%s %q already exists", s.name, s.format(key))).WithEntity(s.name)
	}
	s.data[key] = memoryEntry[E]{e: e, seq: s.next}
	s.next++
	return nil
}

// Replace stores e under a key that must exist.
func (s *MemoryStore[K, E]) Replace(_ context.Context, key K, e E) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.data[key]
	if !ok {
		return s.notFound(key)
	}
	ent.e = e
	s.data[key] = ent
	return nil
}

// Remove deletes and returns the entity under key.
func (s *MemoryStore[K, E]) Remove(_ context.Context, key K) (E, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.data[key]
	if !ok {
		return ent.e, s.notFound(key)
	}
	delete(s.data, key)
	return ent.e, nil
}

// Len returns the number of stored entities.
func (s *MemoryStore[K, E]) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data), nil
}
