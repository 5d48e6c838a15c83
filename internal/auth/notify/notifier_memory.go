package notify

import (
	"context"
	"sync"
)

// Sent records one delivered notification for inspection in tests.
type Sent struct {
	Address   string
	Subject   string
	Template  string
	Variables []Variable
}

// MemoryNotifier records notifications in memory for tests/dev.
type MemoryNotifier struct {
	mu   sync.Mutex
	sent []Sent
	fail error
}

// NewMemory constructs an empty in-memory notifier.
func NewMemory() *MemoryNotifier {
	return &MemoryNotifier{}
}

// FailWith makes every subsequent Send return err.
func (m *MemoryNotifier) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

// Send records the notification or returns the configured failure.
func (m *MemoryNotifier) Send(_ context.Context, address, subject, templateKey string, vars []Variable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, Sent{
		Address:   address,
		Subject:   subject,
		Template:  templateKey,
		Variables: vars,
	})
	return nil
}

// All returns a copy of the recorded notifications.
func (m *MemoryNotifier) All() []Sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Sent, len(m.sent))
	copy(out, m.sent)
	return out
}
