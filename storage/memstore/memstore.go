// Package memstore provides an in-memory storage.Store used in tests and
// local development. It mirrors the object-store contract exactly, including
// idempotent deletes and lexicographic listing.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/c360/workplan/errors"
	"github.com/c360/workplan/storage"
)

// Store is a concurrency-safe in-memory object store.
type Store struct {
	mu      sync.RWMutex
	objects map[string][]byte

	// failGets marks keys whose reads fail, for exercising skip-on-error
	// paths in tests. failLists does the same for listing prefixes.
	failGets  map[string]bool
	failLists map[string]bool
}

var _ storage.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		objects:   make(map[string][]byte),
		failGets:  make(map[string]bool),
		failLists: make(map[string]bool),
	}
}

// Put stores data at key.
func (s *Store) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[key] = buf
	return nil
}

// Get retrieves the value at key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failGets[key] {
		return nil, errors.WrapDependency(errors.ErrStorageUnavailable, "memstore", "Get", "read "+key)
	}

	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", key, errors.ErrKeyNotFound)
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

// Delete removes the value at key. Missing keys are a no-op.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Exists reports whether key holds a value.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

// List returns all keys with the given prefix in lexicographic order.
func (s *Store) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failLists[prefix] {
		return nil, errors.WrapDependency(errors.ErrStorageUnavailable, "memstore", "List", "list "+prefix)
	}

	keys := make([]string, 0)
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// FailReadsOf makes subsequent Gets of key fail, simulating a corrupt or
// unreadable object.
func (s *Store) FailReadsOf(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failGets[key] = true
}

// FailListsOf makes subsequent Lists of exactly prefix fail.
func (s *Store) FailListsOf(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLists[prefix] = true
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
