package token

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ssogate/internal/auth/models"
	"ssogate/internal/sentinel"
)

// InMemoryStore stores persistent tokens in memory for tests/dev.
// It upholds the same invariant as the PostgreSQL store: at most one live
// token per (ObjectID, ObjectType) identity.
type InMemoryStore struct {
	mu     sync.Mutex
	tokens map[string]*models.TokenRecord
}

// NewMemory constructs an empty in-memory token store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{tokens: make(map[string]*models.TokenRecord)}
}

// Replace atomically removes any prior token for the record's identity and
// stores the new one. Last writer wins.
func (s *InMemoryStore) Replace(_ context.Context, rec *models.TokenRecord) error {
	if rec == nil {
		return fmt.Errorf("token record is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, existing := range s.tokens {
		if existing.ObjectID == rec.ObjectID && existing.ObjectType == rec.ObjectType {
			delete(s.tokens, key)
		}
	}
	copied := *rec
	s.tokens[rec.Token] = &copied
	return nil
}

// FindValid returns the record for a token that has not expired as of now.
func (s *InMemoryStore) FindValid(_ context.Context, token string, now time.Time) (*models.TokenRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tokens[token]
	if !ok {
		return nil, fmt.Errorf("token not found: %w", sentinel.ErrNotFound)
	}
	if rec.IsExpired(now) {
		return nil, fmt.Errorf("token expired: %w", sentinel.ErrExpired)
	}
	copied := *rec
	return &copied, nil
}

// TouchLastUsage stamps the token's last usage time.
func (s *InMemoryStore) TouchLastUsage(_ context.Context, token string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tokens[token]
	if !ok {
		return fmt.Errorf("token not found: %w", sentinel.ErrNotFound)
	}
	at := now
	rec.LastUsedAt = &at
	return nil
}

// DeleteExpired removes all tokens expired as of the given time.
// The time parameter is injected for testability (no hidden time.Now() calls).
func (s *InMemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for key, rec := range s.tokens {
		if rec.IsExpired(now) {
			delete(s.tokens, key)
			deleted++
		}
	}
	return deleted, nil
}

// CountByIdentity reports how many live rows exist for one identity.
// Test helper for the single-live-token invariant.
func (s *InMemoryStore) CountByIdentity(objectID int64, objectType models.PrincipalKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, rec := range s.tokens {
		if rec.ObjectID == objectID && rec.ObjectType == objectType {
			count++
		}
	}
	return count
}
