package audit

import (
	"context"
	"slices"
	"sync"
)

// MemoryStorage keeps events in process. Suitable for development and tests.
type MemoryStorage struct {
	mu     sync.RWMutex
	events []Event
	limit  int
}

// NewMemoryStorage keeps at most limit events, dropping the oldest. A limit
// of zero or less keeps everything.
func NewMemoryStorage(limit int) *MemoryStorage {
	return &MemoryStorage{limit: limit}
}

func (m *MemoryStorage) Store(_ context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.append(event)
	return nil
}

func (m *MemoryStorage) StoreBatch(_ context.Context, events []Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range events {
		m.append(e)
	}
	return nil
}

// ListUserEvents returns at most limit events for userID, newest first. A
// limit of zero or less returns all of them.
func (m *MemoryStorage) ListUserEvents(_ context.Context, userID string, limit int) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Event
	for i := len(m.events) - 1; i >= 0; i-- {
		if m.events[i].UserID != userID {
			continue
		}
		out = append(out, m.events[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Events returns a copy of the stored events, oldest first.
func (m *MemoryStorage) Events() []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.events)
}

func (m *MemoryStorage) append(e Event) {
	m.events = append(m.events, e)
	if m.limit > 0 && len(m.events) > m.limit {
		m.events = slices.Delete(m.events, 0, len(m.events)-m.limit)
	}
}
