package selector

import (
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/cart"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/catalog"
)

// GroupedAndOrderedCart buckets cart entries by category, ordered by the
// catalog's category ordinal. An entry naming an unknown category is an
// error.
func GroupedAndOrderedCart(c *catalog.Catalog, entries []cart.Entry) ([]cart.Group[cart.Entry], error) {
	return cart.GroupByCategory(entries, func(e cart.Entry) string { return e.CategoryID }, func(id string) (int, bool) {
		entry, ok := c.Category(id)
		return entry.Category.Ordinal, ok
	})
}
