// Package selector derives menu and cart views from a mirror snapshot. Every
// selector is a pure function of the snapshot and its arguments; results are
// cached in bounded LRU caches keyed by catalog version.
package selector

import (
	"fmt"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/catalog"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/connection"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/product"
)

const (
	// MetadataCacheSize bounds the product metadata cache.
	MetadataCacheSize = 1000
	// ProductListCacheSize bounds the not permanently disabled product cache.
	ProductListCacheSize = 10
	// PopulationCacheSize bounds the category population cache.
	PopulationCacheSize = 4096
	// UndefinedName is returned when a product has no resolvable base name.
	UndefinedName = "UNDEFINED"
)

type metadataKey struct {
	version       uint64
	productID     string
	modifiers     string
	serviceTime   int64
	fulfillmentID string
}

type metadataResult struct {
	meta product.Metadata
	err  error
}

// Selectors holds the bounded caches shared across snapshots. It is safe for
// concurrent use.
type Selectors struct {
	metadata    *lru.Cache[metadataKey, metadataResult]
	products    *lru.Cache[uint64, []catalog.ProductEntry]
	populations *lru.Cache[populationKey, []string]
}

// New builds selectors with the default cache sizes.
func New() (*Selectors, error) {
	return NewWithSizes(MetadataCacheSize, ProductListCacheSize, PopulationCacheSize)
}

// NewWithSizes builds selectors with explicit cache sizes.
func NewWithSizes(metadataSize, productListSize, populationSize int) (*Selectors, error) {
	metadata, err := lru.New[metadataKey, metadataResult](metadataSize)
	if err != nil {
		return nil, fmt.Errorf("metadata cache: %w", err)
	}
	products, err := lru.New[uint64, []catalog.ProductEntry](productListSize)
	if err != nil {
		return nil, fmt.Errorf("product list cache: %w", err)
	}
	populations, err := lru.New[populationKey, []string](populationSize)
	if err != nil {
		return nil, fmt.Errorf("population cache: %w", err)
	}
	return &Selectors{metadata: metadata, products: products, populations: populations}, nil
}

// Catalog returns the snapshot's catalog, or an empty one before the first
// push so lookups still miss cleanly.
func Catalog(state connection.State) *catalog.Catalog {
	if state.Catalog == nil {
		return catalog.Empty()
	}
	return state.Catalog
}

// ParentProductEntryFromProductInstanceID resolves the product owning an
// instance.
func ParentProductEntryFromProductInstanceID(c *catalog.Catalog, productInstanceID string) (catalog.ProductEntry, bool) {
	pi, ok := c.ProductInstance(productInstanceID)
	if !ok {
		return catalog.ProductEntry{}, false
	}
	return c.ProductEntry(pi.ProductID)
}

// BaseProductByProductID resolves a product's base instance.
func BaseProductByProductID(c *catalog.Catalog, productID string) (catalog.ProductInstance, bool) {
	entry, ok := c.ProductEntry(productID)
	if !ok {
		return catalog.ProductInstance{}, false
	}
	return c.ProductInstance(entry.Product.BaseProductID)
}

// BaseProductNameByProductID returns the base instance's display name, or
// UndefinedName.
func BaseProductNameByProductID(c *catalog.Catalog, productID string) string {
	pi, ok := BaseProductByProductID(c, productID)
	if !ok {
		return UndefinedName
	}
	return pi.DisplayName
}

// ProductMetadata returns the cached metadata for a product and selection.
// The returned value is shared with the cache and must not be mutated.
func (s *Selectors) ProductMetadata(c *catalog.Catalog, productID string, modifiers []catalog.ModifierSelection, serviceTime int64, fulfillmentID string) (product.Metadata, error) {
	key := metadataKey{
		version:       c.Version,
		productID:     productID,
		modifiers:     product.Key(modifiers),
		serviceTime:   serviceTime,
		fulfillmentID: fulfillmentID,
	}
	if res, ok := s.metadata.Get(key); ok {
		return res.meta, res.err
	}
	meta, err := product.Generate(c, productID, modifiers, serviceTime, fulfillmentID)
	s.metadata.Add(key, metadataResult{meta: meta, err: err})
	return meta, err
}

// ProductsNotPermanentlyDisabled lists product entries that are enabled or
// only temporarily disabled, ordered by id.
func (s *Selectors) ProductsNotPermanentlyDisabled(c *catalog.Catalog) []catalog.ProductEntry {
	if list, ok := s.products.Get(c.Version); ok {
		return slices.Clone(list)
	}
	var list []catalog.ProductEntry
	for _, entry := range c.ProductEntries() {
		if !entry.Product.Disabled.PermanentlyDisabled() {
			list = append(list, entry)
		}
	}
	s.products.Add(c.Version, list)
	return slices.Clone(list)
}

// ProductIDsNotPermanentlyDisabled lists the ids of
// ProductsNotPermanentlyDisabled.
func (s *Selectors) ProductIDsNotPermanentlyDisabled(c *catalog.Catalog) []string {
	entries := s.ProductsNotPermanentlyDisabled(c)
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.Product.ID)
	}
	return ids
}
