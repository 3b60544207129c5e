package event

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/catalog"
)

// Type identifies the kind of event.
type Type string

// Server pushed event names, as they appear on the socket.
const (
	TypeServerTime   Type = "WCP_SERVER_TIME"
	TypeCatalog      Type = "WCP_CATALOG"
	TypeFulfillments Type = "WCP_FULFILLMENTS"
	TypeSettings     Type = "WCP_SETTINGS"
)

// Local actions issued by the connection supervisor and the clock ticker.
const (
	TypeConnectionStarted   Type = "connection.started"
	TypeConnectionConnected Type = "connection.connected"
	TypeConnectionFailed    Type = "connection.failed"
	TypeClockTicked         Type = "clock.ticked"
)

// ServerTypes returns the event types the server pushes.
func ServerTypes() []Type {
	return []Type{TypeServerTime, TypeCatalog, TypeFulfillments, TypeSettings}
}

// IsServer reports whether t is pushed by the server.
func (t Type) IsServer() bool {
	switch t {
	case TypeServerTime, TypeCatalog, TypeFulfillments, TypeSettings:
		return true
	default:
		return false
	}
}

// Cacheable reports whether the payload may be replayed on a later start.
// Server time is excluded because replaying it would seed a stale clock.
func (t Type) Cacheable() bool {
	return t == TypeCatalog || t == TypeFulfillments || t == TypeSettings
}

// Event is one input to the state fold.
type Event struct {
	// Type identifies the kind of event.
	Type Type
	// PayloadJSON is the raw payload as received.
	PayloadJSON []byte
	// ReceivedAt is the local wall clock when the event entered the process.
	ReceivedAt time.Time
}

// ServerTimePayload is the body of WCP_SERVER_TIME.
type ServerTimePayload struct {
	Time string `json:"time"`
	TZ   string `json:"tz"`
}

// UnmarshalJSON accepts the timezone under either "tz" or "timezone".
func (p *ServerTimePayload) UnmarshalJSON(data []byte) error {
	var raw struct {
		Time     string `json:"time"`
		TZ       string `json:"tz"`
		Timezone string `json:"timezone"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Time = raw.Time
	p.TZ = raw.TZ
	if p.TZ == "" {
		p.TZ = raw.Timezone
	}
	return nil
}

// zonelessLayout is used when the server omits the offset; the time is then
// read in the payload's zone.
const zonelessLayout = "2006-01-02T15:04:05.999999999"

// Parse returns the server time. It accepts RFC 3339 and, when the offset is
// missing, interprets the value in the payload's timezone.
func (p ServerTimePayload) Parse() (time.Time, error) {
	value := strings.TrimSpace(p.Time)
	if value == "" {
		return time.Time{}, fmt.Errorf("server time is required")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	loc := time.UTC
	if p.TZ != "" {
		l, err := time.LoadLocation(p.TZ)
		if err != nil {
			return time.Time{}, fmt.Errorf("load timezone %q: %w", p.TZ, err)
		}
		loc = l
	}
	t, err := time.ParseInLocation(zonelessLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse server time %q: %w", value, err)
	}
	return t, nil
}

// FulfillmentsPayload is the body of WCP_FULFILLMENTS.
type FulfillmentsPayload = catalog.Collection[catalog.Fulfillment]

// ClockTickPayload is the body of a local clock tick.
type ClockTickPayload struct {
	LocalTime    int64 `json:"local_time"`
	TicksElapsed int64 `json:"ticks_elapsed"`
}

// New builds an event with a JSON encoded payload.
func New(t Type, payload any, receivedAt time.Time) (Event, error) {
	evt := Event{Type: t, ReceivedAt: receivedAt}
	if payload == nil {
		return evt, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s payload: %w", t, err)
	}
	evt.PayloadJSON = data
	return evt, nil
}
