package auth

import (
	"context"
	"fmt"

	"feedback-capture/storage"
)

// StorageKey is the key the bearer token is persisted under.
const StorageKey = "access_token"

// TokenStore persists the bearer credential across restarts. The credential
// gates access to the recording flow; upload requests do not attach it.
type TokenStore struct {
	store storage.KeyValueStore
}

// NewTokenStore creates a token store backed by the durable key-value store
func NewTokenStore(store storage.KeyValueStore) *TokenStore {
	return &TokenStore{store: store}
}

// Token returns the stored credential
func (s *TokenStore) Token(ctx context.Context) (string, bool, error) {
	token, ok, err := s.store.Get(ctx, StorageKey)
	if err != nil {
		return "", false, fmt.Errorf("failed to read access token: %w", err)
	}
	return token, ok, nil
}

// SetToken stores the credential, replacing any previous one
func (s *TokenStore) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("refusing to store an empty token")
	}
	if err := s.store.Set(ctx, StorageKey, token); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}
	return nil
}

// ClearToken removes the stored credential
func (s *TokenStore) ClearToken(ctx context.Context) error {
	if err := s.store.Remove(ctx, StorageKey); err != nil {
		return fmt.Errorf("failed to clear access token: %w", err)
	}
	return nil
}
