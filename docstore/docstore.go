// Package docstore layers JSON document semantics over a raw object store:
// typed encode/decode, marker management, prefix listings filtered down to
// data documents, and retry on transient backend failures.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/c360/workplan/errors"
	"github.com/c360/workplan/pkg/retry"
	"github.com/c360/workplan/resource"
	"github.com/c360/workplan/storage"
)

const component = "docstore"

// Store wraps a storage backend with document-level operations.
type Store struct {
	backend storage.Store
	retry   retry.Config
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithRetry overrides the retry policy applied to backend calls.
func WithRetry(cfg retry.Config) Option {
	return func(s *Store) { s.retry = cfg }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates a Store over backend.
func New(backend storage.Store, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		retry:   retry.DefaultConfig(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// do runs op under the retry policy. Terminal errors (validation, conflict,
// not-found) abort immediately; only dependency failures are retried.
func (s *Store) do(ctx context.Context, op func() error) error {
	return retry.Do(ctx, s.retry, func() error {
		err := op()
		if err != nil && !errors.IsTransient(err) {
			return retry.NonRetryable(err)
		}
		return err
	})
}

// PutJSON marshals v and writes it at key.
func (s *Store) PutJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.WrapDependency(err, component, "put", "encode document "+key)
	}
	return s.do(ctx, func() error {
		return s.backend.Put(ctx, key, data)
	})
}

// GetJSON reads the document at key into out. A missing key surfaces as a
// not-found error; an undecodable body is reported as invalid data so scan
// callers can choose to skip it.
func (s *Store) GetJSON(ctx context.Context, key string, out any) error {
	var data []byte
	err := s.do(ctx, func() error {
		var err error
		data, err = s.backend.Get(ctx, key)
		return err
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.WrapDependency(fmt.Errorf("%w: %v", errors.ErrInvalidData, err),
			component, "get", "decode document "+key)
	}
	return nil
}

// Delete removes the object at key. Deleting a missing key is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.do(ctx, func() error {
		return s.backend.Delete(ctx, key)
	})
}

// Exists reports whether an object exists at key.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	var found bool
	err := s.do(ctx, func() error {
		var err error
		found, err = s.backend.Exists(ctx, key)
		return err
	})
	return found, err
}

// ListDocuments returns the data-document keys under prefix, in lexicographic
// order, with partition markers filtered out.
func (s *Store) ListDocuments(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.ListAll(ctx, prefix)
	if err != nil {
		return nil, err
	}
	docs := keys[:0]
	for _, key := range keys {
		if resource.IsDocument(key) {
			docs = append(docs, key)
		}
	}
	return docs, nil
}

// ListAll returns every object key under prefix, markers included.
func (s *Store) ListAll(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.do(ctx, func() error {
		var err error
		keys, err = s.backend.List(ctx, prefix)
		return err
	})
	return keys, err
}

// PutMarker writes the zero-byte partition marker at key. The key must end
// with a slash.
func (s *Store) PutMarker(ctx context.Context, key string) error {
	return s.do(ctx, func() error {
		return s.backend.Put(ctx, key, nil)
	})
}

// DeletePrefix removes every object under prefix, documents and markers
// alike. The marker at the prefix itself is part of the listing, so it goes
// too. Returns the number of objects removed.
func (s *Store) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	keys, err := s.ListAll(ctx, prefix)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, key := range keys {
		if err := s.Delete(ctx, key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
