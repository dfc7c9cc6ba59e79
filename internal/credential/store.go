// Package credential owns the persisted bearer token proving identity to
// the MediPro API. The store itself has no logic beyond get/set/clear; the
// claims decoder reads the token without verifying its signature, since the
// console holds no signing key and trusts the token until its expiry or a
// 401 from the API.
package credential

import (
	"context"
	"errors"

	"github.com/medipro/console/internal/storage"
)

// StorageKey is the fixed key the bearer token persists under.
const StorageKey = "medipro-token"

// ErrNoCredential indicates no token is currently persisted.
var ErrNoCredential = errors.New("credential: no token stored")

// Store wraps the single persisted token string.
type Store struct {
	kv storage.KV
}

// NewStore constructs a Store over the given persistence boundary.
func NewStore(kv storage.KV) *Store {
	return &Store{kv: kv}
}

// Get returns the persisted token, or ErrNoCredential.
func (s *Store) Get(ctx context.Context) (string, error) {
	token, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrNoCredential
		}
		return "", err
	}
	if token == "" {
		return "", ErrNoCredential
	}
	return token, nil
}

// Set replaces the persisted token. Tokens are replaced wholesale, never
// mutated in place.
func (s *Store) Set(ctx context.Context, token string) error {
	return s.kv.Set(ctx, StorageKey, token)
}

// Clear removes the persisted token.
func (s *Store) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, StorageKey)
}
