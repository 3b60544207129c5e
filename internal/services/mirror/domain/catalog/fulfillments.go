package catalog

// Fulfillments is an immutable snapshot of the fulfillment configs.
type Fulfillments struct {
	Version uint64
	byID    map[string]Fulfillment
}

// NewFulfillments indexes a fulfillment push by id.
func NewFulfillments(version uint64, list []Fulfillment) *Fulfillments {
	f := &Fulfillments{Version: version, byID: make(map[string]Fulfillment, len(list))}
	for _, cfg := range list {
		f.byID[cfg.ID] = cfg
	}
	return f
}

// IDs returns fulfillment ids ordered by id.
func (f *Fulfillments) IDs() []string {
	if f == nil {
		return nil
	}
	return sortedKeys(f.byID)
}

// Get looks up a fulfillment config.
func (f *Fulfillments) Get(id string) (Fulfillment, bool) {
	if f == nil {
		return Fulfillment{}, false
	}
	v, ok := f.byID[id]
	return v, ok
}

// Len returns the number of configs.
func (f *Fulfillments) Len() int {
	if f == nil {
		return 0
	}
	return len(f.byID)
}
