package manager

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/vigil/demo-requests/internal/demo"
	"github.com/vigil/demo-requests/internal/store"
)

var (
	// ErrNotFound is returned when no demo request has the given id.
	ErrNotFound = errors.New("demo request not found")

	// ErrInvalidStatus is returned when a status is outside the configured allow-list.
	ErrInvalidStatus = errors.New("status not allowed")
)

// ListOptions filters and paginates List.
type ListOptions struct {
	// Status keeps only matching requests. "" and "all" keep everything.
	Status string
	// Limit caps the result size when positive.
	Limit  int
	Offset int
}

// RequestManager is the entry point for callers of the demo request store.
// It publishes an Event on the broker after every successful mutation.
type RequestManager struct {
	store   store.Store
	broker  *Broker
	allowed []string
}

// NewRequestManager wraps s. A non-empty allowed list restricts SetStatus.
func NewRequestManager(s store.Store, broker *Broker, allowed []string) *RequestManager {
	if broker == nil {
		broker = NewBroker()
	}
	return &RequestManager{
		store:   s,
		broker:  broker,
		allowed: allowed,
	}
}

// Broker returns the event broker.
func (m *RequestManager) Broker() *Broker {
	return m.broker
}

func (m *RequestManager) Submit(ctx context.Context, fields demo.Fields) (*demo.Request, error) {
	req, err := m.store.Append(ctx, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to submit demo request: %w", err)
	}
	m.broker.Publish(Event{Type: EventCreated, Request: *req})
	return req, nil
}

func (m *RequestManager) List(ctx context.Context, opts ListOptions) []demo.Request {
	reqs := m.store.List(ctx)

	status := strings.TrimSpace(opts.Status)
	if status != "" && status != "all" {
		filtered := reqs[:0]
		for _, r := range reqs {
			if r.Status == status {
				filtered = append(filtered, r)
			}
		}
		reqs = filtered
	}

	if opts.Offset > 0 {
		if opts.Offset >= len(reqs) {
			return []demo.Request{}
		}
		reqs = reqs[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(reqs) {
		reqs = reqs[:opts.Limit]
	}
	return reqs
}

func (m *RequestManager) Get(ctx context.Context, id string) (*demo.Request, error) {
	for _, r := range m.store.List(ctx) {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// SetStatus updates the status of request id. It returns false with a nil
// error when the id is unknown.
func (m *RequestManager) SetStatus(ctx context.Context, id, status string) (bool, error) {
	if len(m.allowed) > 0 && !slices.Contains(m.allowed, status) {
		return false, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	ok, err := m.store.UpdateStatus(ctx, id, status)
	if err != nil {
		return false, fmt.Errorf("failed to update demo request %s: %w", id, err)
	}
	if !ok {
		return false, nil
	}

	if req, err := m.Get(ctx, id); err == nil {
		m.broker.Publish(Event{Type: EventStatusChanged, Request: *req})
	}
	return true, nil
}
