// Package store owns the mirror state. Every change goes through Dispatch,
// which folds one event into a new immutable snapshot under a lock; readers
// load the current snapshot without blocking writers.
package store

import (
	"context"
	"log"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/connection"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/event"
)

const tracerName = "github.com/laviddichterman/wario-ux-shared/internal/services/mirror/store"

// Listener observes each committed snapshot.
type Listener func(prev, next connection.State)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the wall clock used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTracer overrides the tracer used for dispatch spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Store) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// Store is the single owner of the mirror state.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[connection.State]
	now     func() time.Time
	tracer  trace.Tracer

	listenersMu sync.Mutex
	listeners   map[uint64]Listener
	nextID      uint64
}

// New returns a store holding the initial state.
func New(opts ...Option) *Store {
	s := &Store{
		now:       time.Now,
		tracer:    otel.Tracer(tracerName),
		listeners: make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	initial := connection.Initial()
	s.current.Store(&initial)
	return s
}

// State returns the current snapshot.
func (s *Store) State() connection.State {
	return *s.current.Load()
}

// Now returns the store's wall clock reading.
func (s *Store) Now() time.Time {
	return s.now()
}

// Subscribe registers fn to run after every committed change, in commit
// order. Listeners run synchronously while the write lock is held and must
// not call Dispatch. The returned func removes the listener.
func (s *Store) Subscribe(fn Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

// Dispatch folds evt into the state. An event that fails to fold is dropped:
// the state is unchanged and the error is returned.
func (s *Store) Dispatch(ctx context.Context, evt event.Event) (connection.State, error) {
	if evt.ReceivedAt.IsZero() {
		evt.ReceivedAt = s.now()
	}
	_, span := s.tracer.Start(ctx, "mirror.store.dispatch", trace.WithAttributes(
		attribute.String("mirror.event.type", string(evt.Type)),
		attribute.Int("mirror.event.payload_bytes", len(evt.PayloadJSON)),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := *s.current.Load()
	next, err := connection.Fold(prev, evt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Printf("store: drop event type=%s: %v", evt.Type, err)
		return prev, err
	}
	s.current.Store(&next)
	span.SetAttributes(
		attribute.String("mirror.status", string(next.Status)),
		attribute.Int64("mirror.catalog.version", int64(next.Versions.Catalog)),
	)
	s.notify(prev, next)
	return next, nil
}

func (s *Store) notify(prev, next connection.State) {
	s.listenersMu.Lock()
	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]Listener, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.listenersMu.Unlock()
	for _, fn := range fns {
		fn(prev, next)
	}
}
