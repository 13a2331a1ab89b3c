package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/budadmin/pkg/session"
)

// ErrNotFound is the session package's sentinel so drivers and callers agree
// on what an absent key looks like.
var ErrNotFound = session.ErrNotFound

// Store is a persistent session store. Concrete drivers (sqlite) implement
// it on top of the key/value capability the session manager needs.
type Store interface {
	session.Store

	ApplyMigrations() error

	// UpdatedAt reports when key was last written.
	UpdatedAt(ctx context.Context, key string) (time.Time, error)

	// Ping verifies the underlying database is reachable.
	Ping(ctx context.Context) error

	// Close releases any underlying resources.
	Close() error
}

// Sealer encrypts values before they reach the driver. *cryptox.Sealer
// implements it.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(value string) (string, error)
	IsSealed(value string) bool
}

// SealedStore wraps a session.Store and seals the listed keys at rest. Other
// keys pass through unchanged. Values written before sealing was enabled are
// returned as is and sealed in place on first read.
type SealedStore struct {
	inner  session.Store
	sealer Sealer
	sealed map[string]struct{}
}

// NewSealedStore seals keys, or the token keys when none are given.
func NewSealedStore(inner session.Store, sealer Sealer, keys ...string) *SealedStore {
	if len(keys) == 0 {
		keys = []string{session.KeyAccessToken, session.KeyRefreshToken}
	}
	sealed := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		sealed[k] = struct{}{}
	}
	return &SealedStore{inner: inner, sealer: sealer, sealed: sealed}
}

func (s *SealedStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if _, ok := s.sealed[key]; !ok {
		return v, nil
	}

	if !s.sealer.IsSealed(v) {
		if err := s.Put(ctx, map[string]string{key: v}); err != nil {
			return "", err
		}
		return v, nil
	}

	plain, err := s.sealer.Open(v)
	if err != nil {
		return "", fmt.Errorf("store: open %s: %w", key, err)
	}
	return plain, nil
}

func (s *SealedStore) Put(ctx context.Context, kv map[string]string) error {
	out := make(map[string]string, len(kv))
	for k, v := range kv {
		if _, ok := s.sealed[k]; !ok {
			out[k] = v
			continue
		}
		sealed, err := s.sealer.Seal(v)
		if err != nil {
			return fmt.Errorf("store: seal %s: %w", k, err)
		}
		out[k] = sealed
	}
	return s.inner.Put(ctx, out)
}

func (s *SealedStore) Delete(ctx context.Context, keys ...string) error {
	return s.inner.Delete(ctx, keys...)
}
