// Package testkit provides storefront payload fixtures and a loaded store for
// tests of the mirror's read surfaces.
package testkit

import (
	"context"
	"testing"

	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/event"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/store"
)

// ServerTime is a server time push at 2026-03-03T18:00:00Z.
const ServerTime = `{"time":"2026-03-03T18:00:00Z","tz":"UTC"}`

// ServerTimeMillis is ServerTime as epoch milliseconds.
const ServerTimeMillis int64 = 1772560800000

// Catalog has a pizza category with one product and two instances, and a
// sides subcategory with a single garlic knots instance.
const Catalog = `{
  "version": "rev-1",
  "categories": {
    "pizza": {"category": {"id": "pizza", "name": "Pizza", "ordinal": 1, "serviceDisable": []}, "children": ["drinks", "sides"], "products": ["p1"]},
    "sides": {"category": {"id": "sides", "name": "Sides", "ordinal": 2, "parent_id": "pizza", "serviceDisable": []}, "children": [], "products": ["p2"]},
    "drinks": {"category": {"id": "drinks", "name": "Drinks", "ordinal": 0, "parent_id": "pizza", "serviceDisable": []}, "children": [], "products": []}
  },
  "modifiers": [
    {"modifierType": {"id": "top", "name": "toppings", "displayName": "Toppings", "ordinal": 1, "min_selected": 0, "max_selected": null, "displayFlags": {}}, "options": ["pep"]}
  ],
  "options": [
    {"id": "pep", "modifierTypeId": "top", "displayName": "Pepperoni", "shortcode": "P", "price": {"amount": 150, "currency": "USD"}, "ordinal": 1, "metadata": {"can_split": true}, "displayFlags": {}}
  ],
  "products": [
    {"product": {"id": "p1", "price": {"amount": 1000, "currency": "USD"}, "serviceDisable": [], "category_ids": ["pizza"], "baseProductId": "pi1", "modifiers": [{"mtid": "top", "serviceDisable": []}]}, "instances": ["pi1", "pi1b"]},
    {"product": {"id": "p2", "price": {"amount": 300, "currency": "USD"}, "serviceDisable": [], "category_ids": ["sides"], "baseProductId": "pi2", "modifiers": []}, "instances": ["pi2"]}
  ],
  "productInstances": [
    {"id": "pi1b", "productId": "p1", "ordinal": 2, "displayName": "Pepperoni Pizza", "shortcode": "PEP", "modifiers": [{"modifierTypeId": "top", "options": [{"optionId": "pep", "placement": 3, "qualifier": 0}]}], "displayFlags": {"menu": {"ordinal": 2, "price_display": "ALWAYS"}, "order": {"ordinal": 1, "price_display": "ALWAYS"}}},
    {"id": "pi1", "productId": "p1", "ordinal": 1, "displayName": "Cheese Pizza", "shortcode": "CHZ", "modifiers": [], "displayFlags": {"menu": {"ordinal": 1, "price_display": "ALWAYS"}, "order": {"ordinal": 2, "price_display": "ALWAYS"}}},
    {"id": "pi2", "productId": "p2", "ordinal": 1, "displayName": "Garlic Knots", "shortcode": "GK", "modifiers": [], "displayFlags": {"menu": {"ordinal": 1, "price_display": "ALWAYS"}, "order": {"ordinal": 1, "hide": true, "price_display": "ALWAYS"}}}
  ],
  "productInstanceFunctions": [],
  "orderInstanceFunctions": []
}`

// Fulfillments has a pickup and a delivery fulfillment.
const Fulfillments = `[
  {"id": "pickup", "displayName": "Pickup", "shortcode": "P", "ordinal": 0, "service": "PICKUP", "minDuration": 0, "maxDuration": 0, "leadTime": 15, "timeStep": 15, "menuBaseCategoryId": "pizza", "orderBaseCategoryId": "pizza"},
  {"id": "delivery", "displayName": "Delivery", "shortcode": "D", "ordinal": 1, "service": "DELIVERY", "minDuration": 30, "maxDuration": 60, "leadTime": 45, "timeStep": 15, "menuBaseCategoryId": "pizza", "orderBaseCategoryId": "pizza"}
]`

// Settings defaults the fulfillment to pickup.
const Settings = `{"config": {"DEFAULT_FULFILLMENTID": "pickup", "TAX_RATE": 0.1, "TIP_PREAMBLE": "Thanks!"}}`

// Push is one server payload.
type Push struct {
	Type    event.Type
	Payload string
}

// Pushes returns every server payload needed to satisfy readiness.
func Pushes() []Push {
	return []Push{
		{Type: event.TypeServerTime, Payload: ServerTime},
		{Type: event.TypeCatalog, Payload: Catalog},
		{Type: event.TypeFulfillments, Payload: Fulfillments},
		{Type: event.TypeSettings, Payload: Settings},
	}
}

// LoadedStore returns a store that has received every fixture payload.
func LoadedStore(t testing.TB, opts ...store.Option) *store.Store {
	t.Helper()
	s := store.New(opts...)
	for _, push := range Pushes() {
		if _, err := s.Receive(context.Background(), push.Type, []byte(push.Payload)); err != nil {
			t.Fatalf("receive %s: %v", push.Type, err)
		}
	}
	if !s.State().IsLoaded() {
		t.Fatal("expected fixture store to be loaded")
	}
	return s
}
