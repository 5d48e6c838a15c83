package user

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ssogate/internal/auth/models"
	"ssogate/internal/sentinel"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return wrapped sentinel.ErrNotFound when the requested row does not exist
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures

// InMemoryStore stores registered users in memory for tests/dev.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[int64]*models.User
}

// NewMemory constructs an empty in-memory user store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{users: make(map[int64]*models.User)}
}

// Seed inserts users directly, bypassing any business rules.
func (s *InMemoryStore) Seed(users ...*models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		copied := *u
		s.users[u.ID] = &copied
	}
}

func (s *InMemoryStore) FindByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) TouchLastLogin(_ context.Context, id int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	at := now
	u.LastLoginAt = &at
	return nil
}
