package selector

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/catalog"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/product"
)

// Filter is the display context a category listing is computed for.
type Filter string

const (
	FilterNone  Filter = ""
	FilterMenu  Filter = "Menu"
	FilterOrder Filter = "Order"
)

// ParseFilter accepts "menu", "order", or empty, case insensitively.
func ParseFilter(raw string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "none":
		return FilterNone, nil
	case "menu":
		return FilterMenu, nil
	case "order":
		return FilterOrder, nil
	default:
		return FilterNone, fmt.Errorf("unknown filter %q", raw)
	}
}

func (f Filter) hideFlag() product.HideFlag {
	switch f {
	case FilterMenu:
		return product.MenuHideFlag
	case FilterOrder:
		return product.OrderHideFlag
	default:
		return product.IgnoreHideFlags
	}
}

type populationKind uint8

const (
	kindInstances populationKind = iota
	kindSubcategories
)

type populationKey struct {
	version       uint64
	kind          populationKind
	categoryID    string
	filter        Filter
	orderTime     int64
	fulfillmentID string
}

// ProductInstanceIDsInCategory lists the visible product instances directly
// under a category, in the filter's ordinal order. FilterNone keeps catalog
// order. A category disabled for the fulfillment, or unknown, is empty.
func (s *Selectors) ProductInstanceIDsInCategory(c *catalog.Catalog, categoryID string, filter Filter, orderTime int64, fulfillmentID string) []string {
	key := populationKey{version: c.Version, kind: kindInstances, categoryID: categoryID, filter: filter, orderTime: orderTime, fulfillmentID: fulfillmentID}
	if ids, ok := s.populations.Get(key); ok {
		return slices.Clone(ids)
	}
	ids := s.instancesInCategory(c, categoryID, filter, orderTime, fulfillmentID)
	s.populations.Add(key, ids)
	return slices.Clone(ids)
}

func (s *Selectors) instancesInCategory(c *catalog.Catalog, categoryID string, filter Filter, orderTime int64, fulfillmentID string) []string {
	entry, ok := c.Category(categoryID)
	if !ok || entry.Category.DisabledFor(fulfillmentID) {
		return []string{}
	}
	hide := filter.hideFlag()
	var visible []catalog.ProductInstance
	for _, productID := range entry.Products {
		pe, ok := c.ProductEntry(productID)
		if !ok || pe.Product.Disabled.PermanentlyDisabled() {
			continue
		}
		for _, piID := range pe.Instances {
			pi, ok := c.ProductInstance(piID)
			if !ok {
				continue
			}
			meta, err := s.ProductMetadata(c, productID, pi.Modifiers, orderTime, fulfillmentID)
			if err != nil {
				continue
			}
			if product.PassesFilter(meta, pe.Product, pi, hide, fulfillmentID) {
				visible = append(visible, pi)
			}
		}
	}
	switch filter {
	case FilterMenu:
		slices.SortStableFunc(visible, func(a, b catalog.ProductInstance) int {
			return cmp.Compare(a.DisplayFlags.Menu.Ordinal, b.DisplayFlags.Menu.Ordinal)
		})
	case FilterOrder:
		slices.SortStableFunc(visible, func(a, b catalog.ProductInstance) int {
			return cmp.Compare(a.DisplayFlags.Order.Ordinal, b.DisplayFlags.Order.Ordinal)
		})
	}
	ids := make([]string, 0, len(visible))
	for _, pi := range visible {
		ids = append(ids, pi.ID)
	}
	return ids
}

// PopulatedSubcategoryIDsInCategory lists the child categories that hold a
// visible instance somewhere below them, sorted by category ordinal. The
// tree is walked iteratively and each visited category's result is cached
// under the catalog version. A category reached again while it is still being
// expanded is treated as unpopulated, so a cyclic graph terminates.
func (s *Selectors) PopulatedSubcategoryIDsInCategory(c *catalog.Catalog, categoryID string, filter Filter, orderTime int64, fulfillmentID string) []string {
	key := func(id string) populationKey {
		return populationKey{version: c.Version, kind: kindSubcategories, categoryID: id, filter: filter, orderTime: orderTime, fulfillmentID: fulfillmentID}
	}
	if ids, ok := s.populations.Get(key(categoryID)); ok {
		return slices.Clone(ids)
	}

	type frame struct {
		id       string
		expanded bool
	}
	resolved := make(map[string][]string)
	onStack := make(map[string]bool)
	stack := []frame{{id: categoryID}}
	for len(stack) > 0 {
		top := len(stack) - 1
		f := stack[top]
		if _, done := resolved[f.id]; done {
			stack = stack[:top]
			continue
		}
		if !f.expanded {
			if ids, ok := s.populations.Get(key(f.id)); ok {
				resolved[f.id] = ids
				stack = stack[:top]
				continue
			}
			entry, ok := c.Category(f.id)
			if !ok || entry.Category.DisabledFor(fulfillmentID) {
				resolved[f.id] = []string{}
				s.populations.Add(key(f.id), resolved[f.id])
				stack = stack[:top]
				continue
			}
			stack[top].expanded = true
			onStack[f.id] = true
			for _, child := range slices.Backward(entry.Children) {
				if _, done := resolved[child]; !done && !onStack[child] {
					stack = append(stack, frame{id: child})
				}
			}
			continue
		}

		stack = stack[:top]
		delete(onStack, f.id)
		entry, _ := c.Category(f.id)
		var populated []catalog.CategoryEntry
		for _, child := range entry.Children {
			ce, ok := c.Category(child)
			if !ok || ce.Category.DisabledFor(fulfillmentID) {
				continue
			}
			if len(s.ProductInstanceIDsInCategory(c, child, filter, orderTime, fulfillmentID)) > 0 || len(resolved[child]) > 0 {
				populated = append(populated, ce)
			}
		}
		slices.SortStableFunc(populated, func(a, b catalog.CategoryEntry) int {
			return cmp.Compare(a.Category.Ordinal, b.Category.Ordinal)
		})
		ids := make([]string, 0, len(populated))
		for _, ce := range populated {
			ids = append(ids, ce.Category.ID)
		}
		resolved[f.id] = ids
		s.populations.Add(key(f.id), ids)
	}
	return slices.Clone(resolved[categoryID])
}
