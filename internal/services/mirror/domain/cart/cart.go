// Package cart groups cart entries for display and summarizes their totals.
package cart

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/catalog"
)

// ErrUnknownCategory is returned when an entry names a category the catalog
// does not have.
var ErrUnknownCategory = errors.New("unknown cart category")

// Product is the product half of a cart line.
type Product struct {
	ProductID string                      `json:"productId"`
	Modifiers []catalog.ModifierSelection `json:"modifiers"`
	Name      string                      `json:"name,omitempty"`
	Price     catalog.Money               `json:"price"`
}

// Entry is one cart line.
type Entry struct {
	ID         string  `json:"id,omitempty"`
	CategoryID string  `json:"categoryId"`
	Quantity   int     `json:"quantity"`
	Product    Product `json:"product"`
}

// Group is the entries of one category.
type Group[T any] struct {
	CategoryID string `json:"category_id"`
	Entries    []T    `json:"entries"`
}

// OrdinalFunc resolves a category's ordinal.
type OrdinalFunc func(categoryID string) (int, bool)

// GroupByCategory buckets entries by category and orders the buckets by
// category ordinal ascending. Entries keep their relative order inside a
// bucket. Every category must resolve.
func GroupByCategory[T any](entries []T, categoryOf func(T) string, ordinal OrdinalFunc) ([]Group[T], error) {
	index := make(map[string]int)
	var groups []Group[T]
	for _, entry := range entries {
		id := categoryOf(entry)
		i, ok := index[id]
		if !ok {
			i = len(groups)
			index[id] = i
			groups = append(groups, Group[T]{CategoryID: id})
		}
		groups[i].Entries = append(groups[i].Entries, entry)
	}
	ordinals := make(map[string]int, len(groups))
	for _, g := range groups {
		o, ok := ordinal(g.CategoryID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, g.CategoryID)
		}
		ordinals[g.CategoryID] = o
	}
	slices.SortStableFunc(groups, func(a, b Group[T]) int {
		return cmp.Compare(ordinals[a.CategoryID], ordinals[b.CategoryID])
	})
	return groups, nil
}
