package catalog

import (
	"fmt"
	"slices"
)

// Selectors is the read surface that derivations consume. *Catalog
// implements it; tests may supply smaller fakes.
type Selectors interface {
	Category(id string) (CategoryEntry, bool)
	ModifierEntry(id string) (ModifierEntry, bool)
	Option(id string) (Option, bool)
	ProductEntry(id string) (ProductEntry, bool)
	ProductInstance(id string) (ProductInstance, bool)
	ProductInstanceFunction(id string) (ProductInstanceFunction, bool)
	OrderInstanceFunction(id string) (OrderInstanceFunction, bool)
}

// Catalog is an immutable, normalized snapshot of one catalog push.
type Catalog struct {
	// Version increases with every push applied by the state container.
	Version uint64
	// Revision is the server supplied catalog version string, if any.
	Revision string

	categories               map[string]CategoryEntry
	modifiers                map[string]ModifierEntry
	options                  map[string]Option
	products                 map[string]ProductEntry
	productInstances         map[string]ProductInstance
	productInstanceFunctions map[string]ProductInstanceFunction
	orderInstanceFunctions   map[string]OrderInstanceFunction
}

// New normalizes a catalog payload. Duplicate ids keep the last record, as a
// set-all on an entity adapter would.
func New(version uint64, payload Payload) (*Catalog, error) {
	c := &Catalog{
		Version:                  version,
		Revision:                 payload.Version,
		categories:               make(map[string]CategoryEntry, len(payload.Categories)),
		modifiers:                make(map[string]ModifierEntry, len(payload.Modifiers)),
		options:                  make(map[string]Option, len(payload.Options)),
		products:                 make(map[string]ProductEntry, len(payload.Products)),
		productInstances:         make(map[string]ProductInstance, len(payload.ProductInstances)),
		productInstanceFunctions: make(map[string]ProductInstanceFunction, len(payload.ProductInstanceFunctions)),
		orderInstanceFunctions:   make(map[string]OrderInstanceFunction, len(payload.OrderInstanceFunctions)),
	}
	for _, entry := range payload.Categories {
		if entry.Category.ID == "" {
			return nil, fmt.Errorf("category id is required")
		}
		c.categories[entry.Category.ID] = entry
	}
	for _, entry := range payload.Modifiers {
		if entry.ModifierType.ID == "" {
			return nil, fmt.Errorf("modifier type id is required")
		}
		c.modifiers[entry.ModifierType.ID] = entry
	}
	for _, option := range payload.Options {
		if option.ID == "" {
			return nil, fmt.Errorf("option id is required")
		}
		c.options[option.ID] = option
	}
	for _, entry := range payload.Products {
		if entry.Product.ID == "" {
			return nil, fmt.Errorf("product id is required")
		}
		c.products[entry.Product.ID] = entry
	}
	for _, pi := range payload.ProductInstances {
		if pi.ID == "" {
			return nil, fmt.Errorf("product instance id is required")
		}
		c.productInstances[pi.ID] = pi
	}
	for _, fn := range payload.ProductInstanceFunctions {
		if fn.ID == "" {
			return nil, fmt.Errorf("product instance function id is required")
		}
		c.productInstanceFunctions[fn.ID] = fn
	}
	for _, fn := range payload.OrderInstanceFunctions {
		if fn.ID == "" {
			return nil, fmt.Errorf("order instance function id is required")
		}
		c.orderInstanceFunctions[fn.ID] = fn
	}
	return c, nil
}

// Empty returns a catalog with no entities.
func Empty() *Catalog {
	c, _ := New(0, Payload{})
	return c
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (c *Catalog) CategoryIDs() []string                { return sortedKeys(c.categories) }
func (c *Catalog) ModifierEntryIDs() []string           { return sortedKeys(c.modifiers) }
func (c *Catalog) OptionIDs() []string                  { return sortedKeys(c.options) }
func (c *Catalog) ProductEntryIDs() []string            { return sortedKeys(c.products) }
func (c *Catalog) ProductInstanceIDs() []string         { return sortedKeys(c.productInstances) }
func (c *Catalog) ProductInstanceFunctionIDs() []string { return sortedKeys(c.productInstanceFunctions) }
func (c *Catalog) OrderInstanceFunctionIDs() []string   { return sortedKeys(c.orderInstanceFunctions) }

func (c *Catalog) Category(id string) (CategoryEntry, bool) {
	v, ok := c.categories[id]
	return v, ok
}

func (c *Catalog) ModifierEntry(id string) (ModifierEntry, bool) {
	v, ok := c.modifiers[id]
	return v, ok
}

func (c *Catalog) Option(id string) (Option, bool) {
	v, ok := c.options[id]
	return v, ok
}

func (c *Catalog) ProductEntry(id string) (ProductEntry, bool) {
	v, ok := c.products[id]
	return v, ok
}

func (c *Catalog) ProductInstance(id string) (ProductInstance, bool) {
	v, ok := c.productInstances[id]
	return v, ok
}

func (c *Catalog) ProductInstanceFunction(id string) (ProductInstanceFunction, bool) {
	v, ok := c.productInstanceFunctions[id]
	return v, ok
}

func (c *Catalog) OrderInstanceFunction(id string) (OrderInstanceFunction, bool) {
	v, ok := c.orderInstanceFunctions[id]
	return v, ok
}

// ProductEntries returns all product entries ordered by id.
func (c *Catalog) ProductEntries() []ProductEntry {
	out := make([]ProductEntry, 0, len(c.products))
	for _, id := range sortedKeys(c.products) {
		out = append(out, c.products[id])
	}
	return out
}
