package store

import (
	"context"

	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/connection"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/event"
)

// StartConnection marks the start of a connection attempt.
func (s *Store) StartConnection(ctx context.Context) (connection.State, error) {
	return s.Dispatch(ctx, event.Event{Type: event.TypeConnectionStarted})
}

// SetConnected marks the socket connected.
func (s *Store) SetConnected(ctx context.Context) (connection.State, error) {
	return s.Dispatch(ctx, event.Event{Type: event.TypeConnectionConnected})
}

// SetFailed marks the socket disconnected.
func (s *Store) SetFailed(ctx context.Context) (connection.State, error) {
	return s.Dispatch(ctx, event.Event{Type: event.TypeConnectionFailed})
}

// Receive folds a raw server payload.
func (s *Store) Receive(ctx context.Context, t event.Type, payload []byte) (connection.State, error) {
	return s.Dispatch(ctx, event.Event{Type: t, PayloadJSON: payload})
}

// SetCurrentTime reconciles the clock with the store's wall clock, advancing
// by at least ticksElapsed milliseconds.
func (s *Store) SetCurrentTime(ctx context.Context, ticksElapsed int64) (connection.State, error) {
	now := s.now()
	evt, err := event.New(event.TypeClockTicked, event.ClockTickPayload{
		LocalTime:    now.UnixMilli(),
		TicksElapsed: ticksElapsed,
	}, now)
	if err != nil {
		return s.State(), err
	}
	return s.Dispatch(ctx, evt)
}
