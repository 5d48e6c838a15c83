package guest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ssogate/internal/auth/models"
	"ssogate/internal/sentinel"
)

// InMemoryStore stores guest accounts in memory for tests/dev.
// Profiles are seeded whole, including the creating administrator's
// address, mirroring the join the PostgreSQL store performs.
type InMemoryStore struct {
	mu     sync.RWMutex
	guests map[int64]*models.GuestProfile
}

// NewMemory constructs an empty in-memory guest store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{guests: make(map[int64]*models.GuestProfile)}
}

// Seed inserts guest profiles directly, bypassing any business rules.
func (s *InMemoryStore) Seed(profiles ...*models.GuestProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range profiles {
		copied := *p
		s.guests[p.ID] = &copied
	}
}

func (s *InMemoryStore) FindByID(_ context.Context, id int64) (*models.Guest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.guests[id]; ok {
		copied := p.Guest
		return &copied, nil
	}
	return nil, fmt.Errorf("guest not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) FindByCode(_ context.Context, code string) (*models.Guest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.guests {
		if p.Code == code {
			copied := p.Guest
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("guest not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) ProfileByID(_ context.Context, id int64) (*models.GuestProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.guests[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, fmt.Errorf("guest not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) TouchLastLogin(_ context.Context, id int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.guests[id]
	if !ok {
		return fmt.Errorf("guest not found: %w", sentinel.ErrNotFound)
	}
	at := now
	p.LastLoginAt = &at
	return nil
}
