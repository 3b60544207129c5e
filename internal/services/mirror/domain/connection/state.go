// Package connection holds the mirrored storefront state: socket lifecycle,
// reconciled server clock, and the latest catalog, fulfillment, and settings
// snapshots.
package connection

import (
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/catalog"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/event"
)

// Status is the socket lifecycle state.
type Status string

const (
	StatusNone      Status = "NONE"
	StatusStart     Status = "START"
	StatusConnected Status = "CONNECTED"
	StatusFailed    Status = "FAILED"
)

// Versions counts the pushes applied per slice. Selector caches key on them.
type Versions struct {
	Catalog      uint64 `json:"catalog"`
	Fulfillments uint64 `json:"fulfillments"`
	Settings     uint64 `json:"settings"`
}

// State is an immutable snapshot of the mirror. Fold returns a new value; the
// pointers it holds are never mutated after construction.
type State struct {
	Status Status
	// ServerTime is the first server time payload received, nil until seeded.
	ServerTime *event.ServerTimePayload
	// PageLoadTime is the server clock at seeding, epoch milliseconds.
	PageLoadTime int64
	// PageLoadTimeLocal is the local clock at seeding, epoch milliseconds.
	PageLoadTimeLocal   int64
	RoughTicksSinceLoad int64
	CurrentTime         int64
	CurrentLocalTime    int64

	Catalog      *catalog.Catalog
	Fulfillments *catalog.Fulfillments
	Settings     *catalog.Settings
	Versions     Versions
}

// Initial returns the state before any event.
func Initial() State {
	return State{Status: StatusNone}
}

// IsLoaded reports whether every slice needed for derived reads has arrived.
func (s State) IsLoaded() bool {
	return s.ServerTime != nil && s.Fulfillments != nil && s.Catalog != nil && s.Settings != nil
}

// Seeded reports whether the clock has been seeded by a server time payload.
func (s State) Seeded() bool {
	return s.ServerTime != nil
}
