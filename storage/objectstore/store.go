// Package objectstore implements storage.Store over NATS JetStream
// ObjectStore. One Store instance wraps one bucket; keys map directly to
// object names, so the hierarchical "clients/..." and "workloads/..." layout
// is preserved bit-exact.
package objectstore

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/workplan/errors"
	"github.com/c360/workplan/natsclient"
	"github.com/c360/workplan/storage"
)

// Store is a NATS JetStream ObjectStore backend.
type Store struct {
	bucket  jetstream.ObjectStore
	logger  *slog.Logger
	metrics *storeMetrics
}

var _ storage.Store = (*Store)(nil)

// NewStore opens (or creates) the configured bucket and returns a Store.
func NewStore(ctx context.Context, client *natsclient.Client, cfg Config, opts ...StoreOption) (*Store, error) {
	if client == nil {
		return nil, errors.WrapDependency(nil, "objectstore", "NewStore", "nats client cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bucket, err := client.ObjectStore(ctx, jetstream.ObjectStoreConfig{
		Bucket:      cfg.Bucket,
		Description: cfg.Description,
		Replicas:    cfg.Replicas,
	})
	if err != nil {
		return nil, errors.WrapDependency(err, "objectstore", "NewStore",
			fmt.Sprintf("open bucket %s", cfg.Bucket))
	}

	s := &Store{
		bucket: bucket,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger for store operations.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// Put stores data at key, overwriting any existing object.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	start := time.Now()
	_, err := s.bucket.PutBytes(ctx, key, data)
	s.observe("put", start, err)
	if err != nil {
		return errors.WrapDependency(err, "objectstore", "Put", "write "+key)
	}
	return nil
}

// Get retrieves the object at key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	data, err := s.bucket.GetBytes(ctx, key)
	s.observe("get", start, err)
	if err != nil {
		if stderrors.Is(err, jetstream.ErrObjectNotFound) {
			return nil, fmt.Errorf("get %s: %w", key, errors.ErrKeyNotFound)
		}
		return nil, errors.WrapDependency(err, "objectstore", "Get", "read "+key)
	}
	return data, nil
}

// Delete removes the object at key. Missing objects are a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.bucket.Delete(ctx, key)
	if stderrors.Is(err, jetstream.ErrObjectNotFound) {
		err = nil
	}
	s.observe("delete", start, err)
	if err != nil {
		return errors.WrapDependency(err, "objectstore", "Delete", "delete "+key)
	}
	return nil
}

// Exists reports whether key holds an object.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	start := time.Now()
	_, err := s.bucket.GetInfo(ctx, key)
	if stderrors.Is(err, jetstream.ErrObjectNotFound) {
		s.observe("exists", start, nil)
		return false, nil
	}
	s.observe("exists", start, err)
	if err != nil {
		return false, errors.WrapDependency(err, "objectstore", "Exists", "stat "+key)
	}
	return true, nil
}

// List returns all object names with the given prefix in lexicographic
// order. JetStream ObjectStore has no server-side prefix listing, so the
// full bucket listing is filtered here; the bucket holds one tenant's
// documents, which keeps this affordable.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	start := time.Now()
	infos, err := s.bucket.List(ctx)
	if stderrors.Is(err, jetstream.ErrNoObjectsFound) {
		s.observe("list", start, nil)
		return []string{}, nil
	}
	s.observe("list", start, err)
	if err != nil {
		return nil, errors.WrapDependency(err, "objectstore", "List", "list prefix "+prefix)
	}

	keys := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.Deleted {
			continue
		}
		if strings.HasPrefix(info.Name, prefix) {
			keys = append(keys, info.Name)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) observe(op string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.ops.WithLabelValues(op, status).Inc()
	s.metrics.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
