// Package store persists demo requests as an ordered, newest-first collection.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vigil/demo-requests/internal/demo"
)

// ErrNotSaved is returned when a mutation could not be written to the backing store.
var ErrNotSaved = errors.New("demo request not saved")

// Store is the persistence contract for demo requests.
//
// List never fails: unreadable backing data is logged and reported as an
// empty collection. Append returns a nil request and an ErrNotSaved error when
// nothing was persisted. UpdateStatus returns false with a nil error when no
// request has the given id, and false with ErrNotSaved when the write failed.
type Store interface {
	List(ctx context.Context) []demo.Request
	Append(ctx context.Context, fields demo.Fields) (*demo.Request, error)
	UpdateStatus(ctx context.Context, id, status string) (bool, error)
}

type options struct {
	log   zerolog.Logger
	now   func() time.Time
	newID func() string
}

// Option configures a Store implementation.
type Option func(*options)

// WithLogger sets the logger used for read and write diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator replaces the random UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

func newOptions(opts []Option) options {
	o := options{
		log:   log.Logger,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// uniqueID draws ids until one is not already present in reqs.
func (o options) uniqueID(reqs []demo.Request) string {
	for {
		id := o.newID()
		if indexOf(reqs, id) < 0 {
			return id
		}
	}
}

func indexOf(reqs []demo.Request, id string) int {
	for i := range reqs {
		if reqs[i].ID == id {
			return i
		}
	}
	return -1
}
