package product

import (
	"fmt"
	"slices"
	"testing"

	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/catalog"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{500, "$5.00"},
		{1, "$0.01"},
		{123450, "$1,234.50"},
		{-250, "-$2.50"},
	}
	for _, tt := range tests {
		if got := FormatCents(tt.cents); got != tt.want {
			t.Fatalf("FormatCents(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
	if got := FormatMoney(usd(700)); got != "$7.00" {
		t.Fatalf("FormatMoney = %q", got)
	}
}

func TestPotentialPrices(t *testing.T) {
	c := sizeCatalog(t, 1, 0, 0, 200)
	meta, err := Generate(c, "drink", nil, 0, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got := PotentialPrices(meta, c).Prices; !slices.Equal(got, []int64{500, 500, 700}) {
		t.Fatalf("prices = %v", got)
	}

	complete, err := Generate(c, "drink", []catalog.ModifierSelection{whole("size", "c")}, 0, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got := PotentialPrices(complete, c).Prices; !slices.Equal(got, []int64{700}) {
		t.Fatalf("complete prices = %v", got)
	}
}

func TestPotentialPricesChoosesMissingCount(t *testing.T) {
	c := sizeCatalog(t, 2, 100, 200, 300)
	meta, err := Generate(c, "drink", nil, 0, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got := PotentialPrices(meta, c).Prices; !slices.Equal(got, []int64{800, 900, 1000}) {
		t.Fatalf("prices = %v", got)
	}

	partial, err := Generate(c, "drink", []catalog.ModifierSelection{whole("size", "b")}, 0, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got := PotentialPrices(partial, c).Prices; !slices.Equal(got, []int64{800, 1000}) {
		t.Fatalf("partial prices = %v", got)
	}
}

// wideCatalog has a product with two required modifier types of n options
// each, priced i and i*100 cents, so it has n*n completions.
func wideCatalog(t *testing.T, n int) *catalog.Catalog {
	t.Helper()
	small := catalog.ModifierEntry{ModifierType: catalog.ModifierType{ID: "small", MinSelected: 1, MaxSelected: intPtr(1)}}
	large := catalog.ModifierEntry{ModifierType: catalog.ModifierType{ID: "large", MinSelected: 1, MaxSelected: intPtr(1)}}
	var options catalog.Collection[catalog.Option]
	for i := range n {
		sid, lid := fmt.Sprintf("s%d", i), fmt.Sprintf("l%d", i)
		small.Options = append(small.Options, sid)
		large.Options = append(large.Options, lid)
		options = append(options,
			catalog.Option{ID: sid, ModifierTypeID: "small", DisplayName: sid, Price: usd(int64(i)), Ordinal: i},
			catalog.Option{ID: lid, ModifierTypeID: "large", DisplayName: lid, Price: usd(int64(i) * 100), Ordinal: i},
		)
	}
	c, err := catalog.New(1, catalog.Payload{
		Modifiers: catalog.Collection[catalog.ModifierEntry]{small, large},
		Options:   options,
		Products: catalog.Collection[catalog.ProductEntry]{{
			Product: catalog.Product{ID: "combo", Price: usd(500), BaseProductID: "pi-combo", Modifiers: []catalog.ProductModifier{
				{ModifierTypeID: "small"}, {ModifierTypeID: "large"},
			}},
			Instances: []string{"pi-combo"},
		}},
		ProductInstances: catalog.Collection[catalog.ProductInstance]{
			{ID: "pi-combo", ProductID: "combo", DisplayName: "Combo"},
		},
	})
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return c
}

func TestPotentialPricesRangeExactBeyondEnumerationCap(t *testing.T) {
	c := wideCatalog(t, 100)
	meta, err := Generate(c, "combo", nil, 0, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	set := PotentialPrices(meta, c)
	if !set.Partial {
		t.Fatal("expected partial enumeration for 10000 completions")
	}
	if len(set.Prices) != maxPotentialPrices {
		t.Fatalf("enumerated %d prices, want %d", len(set.Prices), maxPotentialPrices)
	}
	if set.Min != 500 || set.Max != 10499 {
		t.Fatalf("range = %d..%d, want 500..10499", set.Min, set.Max)
	}
	if got := PriceText(meta, MinToMax{}, c); got != "from $5.00 to $104.99" {
		t.Fatalf("min to max text = %q", got)
	}
	if got := PriceText(meta, List{}, c); got != "from $5.00 to $104.99" {
		t.Fatalf("partial list text = %q", got)
	}
}

func TestPotentialPricesCompleteEnumerationUnderCap(t *testing.T) {
	c := wideCatalog(t, 3)
	meta, err := Generate(c, "combo", nil, 0, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	set := PotentialPrices(meta, c)
	if set.Partial || len(set.Prices) != 9 {
		t.Fatalf("unexpected set %+v", set)
	}
	if set.Min != set.Prices[0] || set.Max != set.Prices[len(set.Prices)-1] {
		t.Fatalf("range %d..%d disagrees with prices %v", set.Min, set.Max, set.Prices)
	}
	if set.Max != 702 {
		t.Fatalf("max = %d, want 702", set.Max)
	}
}

func TestPriceTextModes(t *testing.T) {
	varied := sizeCatalog(t, 1, 0, 0, 200)
	flat := sizeCatalog(t, 1, 0, 0)
	tests := []struct {
		name string
		c    *catalog.Catalog
		mode PriceMode
		want string
	}{
		{name: "always", c: varied, mode: Always{}, want: "$5.00"},
		{name: "from x", c: varied, mode: FromX{}, want: "from $5.00"},
		{name: "varies", c: varied, mode: Varies{}, want: "MP"},
		{name: "min to max range", c: varied, mode: MinToMax{}, want: "from $5.00 to $7.00"},
		{name: "min to max single", c: flat, mode: MinToMax{}, want: "$5.00"},
		{name: "list", c: varied, mode: List{}, want: "$5.00/$7.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := Generate(tt.c, "drink", nil, 0, "")
			if err != nil {
				t.Fatalf("generate: %v", err)
			}
			if got := PriceText(meta, tt.mode, tt.c); got != tt.want {
				t.Fatalf("price text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPriceTextCompleteIgnoresMode(t *testing.T) {
	c := sizeCatalog(t, 1, 0, 0, 200)
	meta, err := Generate(c, "drink", []catalog.ModifierSelection{whole("size", "c")}, 0, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, mode := range []PriceMode{Always{}, FromX{}, Varies{}, MinToMax{}, List{}} {
		if got := PriceText(meta, mode, c); got != "$7.00" {
			t.Fatalf("%T: price text = %q", mode, got)
		}
	}
}

func TestModeFor(t *testing.T) {
	tests := []struct {
		display catalog.PriceDisplay
		want    PriceMode
	}{
		{catalog.PriceDisplayAlways, Always{}},
		{catalog.PriceDisplayFromX, FromX{}},
		{catalog.PriceDisplayVaries, Varies{}},
		{catalog.PriceDisplayMinToMax, MinToMax{}},
		{catalog.PriceDisplayList, List{}},
		{"", Always{}},
	}
	for _, tt := range tests {
		if got := ModeFor(tt.display); got != tt.want {
			t.Fatalf("ModeFor(%q) = %T, want %T", tt.display, got, tt.want)
		}
	}
}
