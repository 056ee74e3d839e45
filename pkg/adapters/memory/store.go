package memory

import (
	"context"
	"sync"

	"github.com/aretw0/schemacheck/pkg/domain"
)

// Store implements ports.ReportStore in memory.
// Safe for concurrent use.
type Store struct {
	data  map[string]*domain.Report
	order []string
	limit int
	mu    sync.RWMutex
}

// Option configures a Store.
type Option func(*Store)

// WithLimit caps the number of kept reports; the oldest are evicted first.
// Zero means unlimited.
func WithLimit(n int) Option {
	return func(s *Store) {
		s.limit = n
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		data: make(map[string]*domain.Report),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save persists a copy of the report in memory.
func (s *Store) Save(ctx context.Context, report *domain.Report) error {
	copied := report.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[report.ID]; !exists {
		s.order = append(s.order, report.ID)
	}
	s.data[report.ID] = copied

	for s.limit > 0 && len(s.order) > s.limit {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.data, oldest)
	}
	return nil
}

// Load retrieves a copy of the report, so callers can't mutate the stored one.
func (s *Store) Load(ctx context.Context, id string) (*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.data[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	return report.Snapshot(), nil
}

// Delete removes the report.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[id]; !ok {
		return nil
	}
	delete(s.data, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns stored report ids, oldest first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids, nil
}
