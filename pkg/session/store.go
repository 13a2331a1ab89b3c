package session

import (
	"context"
	"errors"
	"sync"
)

// Persisted storage keys. They match the keys the web console kept in
// browser local storage so a store can be shared between the two.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// ErrNotFound is returned by Store.Get when the key is absent. Absence of a
// key is treated as "no session".
var ErrNotFound = errors.New("session: key not found")

// Store is the key/value capability the session persists into. It replaces
// the ambient browser storage with something passed in explicitly.
type Store interface {
	// Get returns the value stored at key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Put writes every entry of kv in one atomic step. The token pair is
	// always written through a single Put so the two never diverge.
	Put(ctx context.Context, kv map[string]string) error

	// Delete removes the given keys in one atomic step. Missing keys are not
	// an error.
	Delete(ctx context.Context, keys ...string) error
}

// MemoryStore is a process-local Store. It is what tests and one-shot CLI
// invocations with no session file use.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) Put(_ context.Context, kv map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range kv {
		s.data[k] = v
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

// Snapshot returns a copy of everything stored.
func (s *MemoryStore) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}
