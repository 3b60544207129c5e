package product

import (
	"encoding/json"
	"testing"

	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/catalog"
)

func intPtr(v int) *int { return &v }

func usd(cents int64) catalog.Money { return catalog.Money{Amount: cents, Currency: "USD"} }

func whole(mtid string, ids ...string) catalog.ModifierSelection {
	return placed(mtid, catalog.PlacementWhole, ids...)
}

func placed(mtid string, p catalog.OptionPlacement, ids ...string) catalog.ModifierSelection {
	sel := catalog.ModifierSelection{ModifierTypeID: mtid}
	for _, id := range ids {
		sel.Options = append(sel.Options, catalog.OptionSelection{OptionID: id, Placement: p})
	}
	return sel
}

// pizzaCatalog has a pizza with toppings (optional, splittable) and a
// required crust, plus a pepperoni instance.
func pizzaCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	needsThick := json.RawMessage(`{"discriminator":"Logical","expr":{"operator":"EQ",` +
		`"operandA":{"discriminator":"ModifierPlacement","expr":{"mtid":"crust","moid":"thick"}},` +
		`"operandB":{"discriminator":"ConstLiteral","expr":{"discriminator":"MODIFIER_PLACEMENT","value":3}}}}`)
	c, err := catalog.New(1, catalog.Payload{
		Categories: catalog.Collection[catalog.CategoryEntry]{
			{Category: catalog.Category{ID: "pizza", Name: "Pizza"}, Products: []string{"p1"}},
		},
		Modifiers: catalog.Collection[catalog.ModifierEntry]{
			{ModifierType: catalog.ModifierType{ID: "top", Name: "Toppings", Ordinal: 2, MinSelected: 0, MaxSelected: intPtr(5)}, Options: []string{"pep", "mush", "xcheese"}},
			{ModifierType: catalog.ModifierType{ID: "crust", Name: "Crust", Ordinal: 1, MinSelected: 1, MaxSelected: intPtr(1)}, Options: []string{"thin", "thick"}},
		},
		Options: catalog.Collection[catalog.Option]{
			{ID: "pep", ModifierTypeID: "top", DisplayName: "Pepperoni", Shortcode: "P", Price: usd(200), Ordinal: 1, Metadata: catalog.OptionMetadata{CanSplit: true}},
			{ID: "mush", ModifierTypeID: "top", DisplayName: "Mushroom", Shortcode: "M", Price: usd(100), Ordinal: 2, Metadata: catalog.OptionMetadata{CanSplit: true}},
			{ID: "xcheese", ModifierTypeID: "top", DisplayName: "Extra Cheese", Shortcode: "XC", Price: usd(150), Ordinal: 3, Enable: "needs-thick"},
			{ID: "thin", ModifierTypeID: "crust", DisplayName: "Thin Crust", Shortcode: "", Price: usd(0), Ordinal: 1, DisplayFlags: catalog.OptionDisplayFlags{OmitFromShortname: true}},
			{ID: "thick", ModifierTypeID: "crust", DisplayName: "Thick Crust", Shortcode: "TK", Price: usd(200), Ordinal: 2},
		},
		Products: catalog.Collection[catalog.ProductEntry]{
			{
				Product: catalog.Product{
					ID: "p1", Price: usd(1000), BaseProductID: "pi-base",
					Modifiers: []catalog.ProductModifier{{ModifierTypeID: "top"}, {ModifierTypeID: "crust"}},
				},
				Instances: []string{"pi-base", "pi-pep"},
			},
		},
		ProductInstances: catalog.Collection[catalog.ProductInstance]{
			{ID: "pi-base", ProductID: "p1", DisplayName: "Cheese Pizza", Shortcode: "Z", Description: "Red sauce and mozzarella"},
			{ID: "pi-pep", ProductID: "p1", DisplayName: "Pepperoni Pizza", Shortcode: "PZ", Modifiers: []catalog.ModifierSelection{whole("top", "pep")}},
		},
		ProductInstanceFunctions: catalog.Collection[catalog.ProductInstanceFunction]{
			{ID: "needs-thick", Name: "Needs thick crust", Expression: needsThick},
		},
	})
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return c
}

// sizeCatalog has a product whose only open choice is a required size.
func sizeCatalog(t *testing.T, minSelected int, prices ...int64) *catalog.Catalog {
	t.Helper()
	entry := catalog.ModifierEntry{ModifierType: catalog.ModifierType{ID: "size", MinSelected: minSelected}}
	var options catalog.Collection[catalog.Option]
	for i, p := range prices {
		id := string(rune('a' + i))
		entry.Options = append(entry.Options, id)
		options = append(options, catalog.Option{ID: id, ModifierTypeID: "size", DisplayName: id, Price: usd(p), Ordinal: i})
	}
	c, err := catalog.New(1, catalog.Payload{
		Modifiers: catalog.Collection[catalog.ModifierEntry]{entry},
		Options:   options,
		Products: catalog.Collection[catalog.ProductEntry]{{
			Product:   catalog.Product{ID: "drink", Price: usd(500), BaseProductID: "pi-drink", Modifiers: []catalog.ProductModifier{{ModifierTypeID: "size"}}},
			Instances: []string{"pi-drink"},
		}},
		ProductInstances: catalog.Collection[catalog.ProductInstance]{
			{ID: "pi-drink", ProductID: "drink", DisplayName: "Soda"},
		},
	})
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return c
}
