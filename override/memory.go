package override

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store keyed by subject and measure.
type MemoryStore struct {
	mu        sync.RWMutex
	overrides map[string][]Override
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{overrides: make(map[string][]Override)}
}

// Add records an override. Malformed overrides are stored as-is; the
// resolver ignores them at read time.
func (s *MemoryStore) Add(o Override) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := o.SubjectID + "\x00" + o.MeasureKey
	s.overrides[key] = append(s.overrides[key], o)
}

// ActiveOverrides implements Store.
func (s *MemoryStore) ActiveOverrides(ctx context.Context, subjectID, measureKey string) ([]Override, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.overrides[subjectID+"\x00"+measureKey]
	out := make([]Override, len(stored))
	copy(out, stored)
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
