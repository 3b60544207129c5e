package connection

import (
	"encoding/json"
	"fmt"

	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/catalog"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/event"
)

// FoldHandledTypes returns the event types handled by Fold.
func FoldHandledTypes() []event.Type {
	return []event.Type{
		event.TypeConnectionStarted,
		event.TypeConnectionConnected,
		event.TypeConnectionFailed,
		event.TypeServerTime,
		event.TypeCatalog,
		event.TypeFulfillments,
		event.TypeSettings,
		event.TypeClockTicked,
	}
}

// Fold applies an event to the mirror state. A recognized event whose payload
// cannot be decoded returns the input state unchanged alongside the error.
// Unknown event types are ignored.
func Fold(state State, evt event.Event) (State, error) {
	switch evt.Type {
	case event.TypeConnectionStarted:
		state.Status = StatusStart
	case event.TypeConnectionConnected:
		state.Status = StatusConnected
	case event.TypeConnectionFailed:
		state.Status = StatusFailed
	case event.TypeServerTime:
		if state.ServerTime != nil {
			return state, nil
		}
		var payload event.ServerTimePayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("connection fold %s: %w", evt.Type, err)
		}
		serverNow, err := payload.Parse()
		if err != nil {
			return state, fmt.Errorf("connection fold %s: %w", evt.Type, err)
		}
		localNow := evt.ReceivedAt.UnixMilli()
		state.ServerTime = &payload
		state.PageLoadTime = serverNow.UnixMilli()
		state.CurrentTime = state.PageLoadTime
		state.PageLoadTimeLocal = localNow
		state.CurrentLocalTime = localNow
		state.RoughTicksSinceLoad = 0
	case event.TypeCatalog:
		var payload catalog.Payload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("connection fold %s: %w", evt.Type, err)
		}
		next, err := catalog.New(state.Versions.Catalog+1, payload)
		if err != nil {
			return state, fmt.Errorf("connection fold %s: %w", evt.Type, err)
		}
		state.Catalog = next
		state.Versions.Catalog = next.Version
	case event.TypeFulfillments:
		var payload event.FulfillmentsPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("connection fold %s: %w", evt.Type, err)
		}
		state.Versions.Fulfillments++
		state.Fulfillments = catalog.NewFulfillments(state.Versions.Fulfillments, payload)
	case event.TypeSettings:
		var payload catalog.Settings
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("connection fold %s: %w", evt.Type, err)
		}
		if payload.Config == nil {
			payload.Config = map[string]json.RawMessage{}
		}
		state.Versions.Settings++
		state.Settings = &payload
	case event.TypeClockTicked:
		var payload event.ClockTickPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("connection fold %s: %w", evt.Type, err)
		}
		// A tick before seeding has no base to add to.
		if state.ServerTime == nil {
			return state, nil
		}
		state = ReconcileClock(state, payload.LocalTime, payload.TicksElapsed)
	}
	return state, nil
}

// ReconcileClock advances the ticks since load by at least pollInterval and
// never to less than the local wall clock delta since seeding, then derives
// the current server time. Ticks never decrease, whatever order localNow
// readings arrive in.
func ReconcileClock(state State, localNow, pollInterval int64) State {
	ticks := max(state.RoughTicksSinceLoad+max(pollInterval, 0), localNow-state.PageLoadTimeLocal)
	state.RoughTicksSinceLoad = ticks
	state.CurrentLocalTime = localNow
	state.CurrentTime = state.PageLoadTime + ticks
	return state
}
