// Package storage defines persistence contracts for the mirror's snapshot
// cache.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/event"
)

// ErrNotFound indicates a requested cache record is missing.
var ErrNotFound = errors.New("record not found")

// Payload is the last raw payload received for one event type.
type Payload struct {
	EventType  event.Type
	Payload    []byte
	ReceivedAt time.Time
}

// PayloadStore keeps the latest payload per server event type so a restart
// can serve the previous catalog before the socket reconnects.
type PayloadStore interface {
	SavePayload(ctx context.Context, payload Payload) error
	GetPayload(ctx context.Context, eventType event.Type) (Payload, error)
	ListPayloads(ctx context.Context) ([]Payload, error)
}
