package query

import (
	"fmt"
	"strings"

	apperrors "github.com/laviddichterman/wario-ux-shared/internal/platform/errors"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/catalog"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/connection"
)

// Kind names one collection of the mirrored catalog.
type Kind string

const (
	KindCategories               Kind = "categories"
	KindModifiers                Kind = "modifiers"
	KindOptions                  Kind = "options"
	KindProducts                 Kind = "products"
	KindProductInstances         Kind = "product_instances"
	KindProductInstanceFunctions Kind = "product_instance_functions"
	KindOrderInstanceFunctions   Kind = "order_instance_functions"
	KindFulfillments             Kind = "fulfillments"
)

// Kinds lists every collection, in display order.
func Kinds() []Kind {
	return []Kind{
		KindCategories,
		KindModifiers,
		KindOptions,
		KindProducts,
		KindProductInstances,
		KindProductInstanceFunctions,
		KindOrderInstanceFunctions,
		KindFulfillments,
	}
}

type collection struct {
	ids    func(connection.State) []string
	lookup func(connection.State, string) (any, bool)
}

func lookupIn[T any](get func(*catalog.Catalog, string) (T, bool)) func(connection.State, string) (any, bool) {
	return func(state connection.State, id string) (any, bool) {
		v, ok := get(state.Catalog, id)
		return v, ok
	}
}

var collections = map[Kind]collection{
	KindCategories: {
		ids:    func(s connection.State) []string { return s.Catalog.CategoryIDs() },
		lookup: lookupIn((*catalog.Catalog).Category),
	},
	KindModifiers: {
		ids:    func(s connection.State) []string { return s.Catalog.ModifierEntryIDs() },
		lookup: lookupIn((*catalog.Catalog).ModifierEntry),
	},
	KindOptions: {
		ids:    func(s connection.State) []string { return s.Catalog.OptionIDs() },
		lookup: lookupIn((*catalog.Catalog).Option),
	},
	KindProducts: {
		ids:    func(s connection.State) []string { return s.Catalog.ProductEntryIDs() },
		lookup: lookupIn((*catalog.Catalog).ProductEntry),
	},
	KindProductInstances: {
		ids:    func(s connection.State) []string { return s.Catalog.ProductInstanceIDs() },
		lookup: lookupIn((*catalog.Catalog).ProductInstance),
	},
	KindProductInstanceFunctions: {
		ids:    func(s connection.State) []string { return s.Catalog.ProductInstanceFunctionIDs() },
		lookup: lookupIn((*catalog.Catalog).ProductInstanceFunction),
	},
	KindOrderInstanceFunctions: {
		ids:    func(s connection.State) []string { return s.Catalog.OrderInstanceFunctionIDs() },
		lookup: lookupIn((*catalog.Catalog).OrderInstanceFunction),
	},
	KindFulfillments: {
		ids: func(s connection.State) []string { return s.Fulfillments.IDs() },
		lookup: func(s connection.State, id string) (any, bool) {
			v, ok := s.Fulfillments.Get(id)
			return v, ok
		},
	},
}

func collectionFor(raw string) (Kind, collection, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(raw)))
	c, ok := collections[kind]
	if !ok {
		return kind, collection{}, apperrors.New(apperrors.CodeUnknownKind, fmt.Sprintf("unknown catalog kind %q", raw))
	}
	return kind, c, nil
}

// CatalogIDs lists every id of a collection, sorted.
func (s *Service) CatalogIDs(kind string) ([]string, error) {
	state, err := s.loaded()
	if err != nil {
		return nil, err
	}
	_, c, err := collectionFor(kind)
	if err != nil {
		return nil, err
	}
	ids := c.ids(state)
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// CatalogRecord returns one record of a collection.
func (s *Service) CatalogRecord(kind, id string) (any, error) {
	state, err := s.loaded()
	if err != nil {
		return nil, err
	}
	k, c, err := collectionFor(kind)
	if err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	record, ok := c.lookup(state, id)
	if !ok {
		return nil, apperrors.WithMetadata(
			apperrors.CodeNotFound,
			fmt.Sprintf("%s %q not found", k, id),
			map[string]string{"kind": string(k), "id": id},
		)
	}
	return record, nil
}
