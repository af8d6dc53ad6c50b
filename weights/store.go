// Package weights owns the model weight store: an opaque handle-to-blob
// lookup, the fixed blob-length schedule, the pack loader, and the
// versioned registry whose snapshot gates every inference entry point.
package weights

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	// ErrNotFound reports a handle with no blob behind it.
	ErrNotFound = errors.New("weights: blob not found")
	// ErrNotReady reports an inference attempt before any pack install.
	ErrNotReady = errors.New("weights: model not installed")
	// ErrBadLength reports a blob whose length disagrees with the
	// schedule. Treated as a precondition violation, never retried.
	ErrBadLength = errors.New("weights: blob length mismatch")
)

// Store is a key-to-blob lookup. Blobs are immutable once written;
// concurrent Gets against an installed set need no coordination.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, blob []byte) error
	Close() error
}

// MemStore is an in-memory Store for tests and ephemeral runs.
type MemStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{blobs: make(map[string][]byte)}
}

func (s *MemStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return blob, nil
}

func (s *MemStore) Put(key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), blob...)
	return nil
}

func (s *MemStore) Close() error { return nil }

// CachingStore memoizes Gets from a slower underlying store. Installed
// blobs never change, so entries are kept until the store is dropped
// with its snapshot.
type CachingStore struct {
	mu    sync.Mutex
	inner Store
	blobs map[string][]byte
}

func NewCachingStore(inner Store) *CachingStore {
	return &CachingStore{inner: inner, blobs: make(map[string][]byte)}
}

func (s *CachingStore) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if blob, ok := s.blobs[key]; ok {
		return blob, nil
	}
	log.Debug().Str("key", key).Msg("loading blob into cache")
	blob, err := s.inner.Get(key)
	if err != nil {
		return nil, err
	}
	s.blobs[key] = blob
	return blob, nil
}

func (s *CachingStore) Put(key string, blob []byte) error {
	s.mu.Lock()
	delete(s.blobs, key)
	s.mu.Unlock()
	return s.inner.Put(key, blob)
}

func (s *CachingStore) Close() error { return s.inner.Close() }
