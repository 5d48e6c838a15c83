package verification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ssogate/internal/auth/models"
	"ssogate/internal/sentinel"
)

// InMemoryStore keeps two-factor pins in memory for tests/dev.
type InMemoryStore struct {
	mu   sync.Mutex
	pins []*models.VerificationPin
}

// NewMemory constructs an empty in-memory verification store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{}
}

// Create stores a new pin. Prior pins for the same email and reason are
// removed first so only the latest issued pin can verify.
func (s *InMemoryStore) Create(_ context.Context, pin *models.VerificationPin) error {
	if pin == nil {
		return fmt.Errorf("verification pin is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.pins[:0]
	for _, existing := range s.pins {
		if existing.Email == pin.Email && existing.Reason == pin.Reason {
			continue
		}
		kept = append(kept, existing)
	}
	copied := *pin
	s.pins = append(kept, &copied)
	return nil
}

// Find returns the pin matching email, pin value and reason.
func (s *InMemoryStore) Find(_ context.Context, email, pin, reason string) (*models.VerificationPin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.pins {
		if existing.Email == email && existing.Pin == pin && existing.Reason == reason {
			copied := *existing
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("verification pin not found: %w", sentinel.ErrNotFound)
}

// Delete consumes a pin. Missing rows are not an error; consumption is
// best effort.
func (s *InMemoryStore) Delete(_ context.Context, email, pin, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.pins[:0]
	for _, existing := range s.pins {
		if existing.Email == email && existing.Pin == pin && existing.Reason == reason {
			continue
		}
		kept = append(kept, existing)
	}
	s.pins = kept
	return nil
}

// DeleteStale removes pins created before the cutoff.
func (s *InMemoryStore) DeleteStale(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	kept := s.pins[:0]
	for _, existing := range s.pins {
		if existing.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, existing)
	}
	s.pins = kept
	return deleted, nil
}
