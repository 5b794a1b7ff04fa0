package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/vigil/demo-requests/internal/demo"
)

// MemoryStore is an in-process Store, used as a fake by callers' tests and
// by the "memory" backend.
type MemoryStore struct {
	mu       sync.Mutex
	reqs     []demo.Request
	writeErr error
	options
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{options: newOptions(opts)}
}

var _ Store = (*MemoryStore)(nil)

// FailWrites makes every later mutation fail with err. A nil err restores writes.
func (s *MemoryStore) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

func (s *MemoryStore) List(_ context.Context) []demo.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]demo.Request{}, s.reqs...)
}

func (s *MemoryStore) Append(_ context.Context, fields demo.Fields) (*demo.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := demo.New(s.uniqueID(s.reqs), fields, s.now())
	if s.writeErr != nil {
		s.log.Error().Err(s.writeErr).Msg("failed to save demo request")
		return nil, fmt.Errorf("%w: %w", ErrNotSaved, s.writeErr)
	}
	s.reqs = append([]demo.Request{created}, s.reqs...)
	return &created, nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id, status string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.reqs, id)
	if i < 0 {
		return false, nil
	}
	if s.writeErr != nil {
		s.log.Error().Err(s.writeErr).Str("id", id).Msg("failed to update demo request")
		return false, fmt.Errorf("%w: %w", ErrNotSaved, s.writeErr)
	}
	s.reqs[i].SetStatus(status, s.now())
	return true, nil
}
