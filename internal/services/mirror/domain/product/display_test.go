package product

import (
	"testing"

	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/catalog"
)

func TestPassesFilterHideFlagsAndOptions(t *testing.T) {
	c := pizzaCatalog(t)
	entry, _ := c.ProductEntry("p1")
	base, _ := c.ProductInstance("pi-base")
	passes := func(pi catalog.ProductInstance, hide HideFlag) bool {
		t.Helper()
		meta, err := Generate(c, pi.ProductID, pi.Modifiers, 0, "f1")
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		return PassesFilter(meta, entry.Product, pi, hide, "f1")
	}
	if !passes(base, MenuHideFlag) {
		t.Fatal("base instance should pass")
	}

	hidden := base
	hidden.DisplayFlags.Menu.Hide = true
	tests := []struct {
		name string
		hide HideFlag
		want bool
	}{
		{name: "menu", hide: MenuHideFlag, want: false},
		{name: "order", hide: OrderHideFlag, want: true},
		{name: "ignore", hide: IgnoreHideFlags, want: true},
		{name: "nil", hide: nil, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := passes(hidden, tt.hide); got != tt.want {
				t.Fatalf("passes = %v, want %v", got, tt.want)
			}
		})
	}

	// Extra cheese is only enabled on a thick crust.
	gated := base
	gated.Modifiers = []catalog.ModifierSelection{whole("top", "xcheese"), whole("crust", "thin")}
	if passes(gated, IgnoreHideFlags) {
		t.Fatal("instance with a disabled option should be filtered")
	}
}

func TestPassesFilterServiceDisabled(t *testing.T) {
	c := pizzaCatalog(t)
	entry, _ := c.ProductEntry("p1")
	base, _ := c.ProductInstance("pi-base")
	meta, err := Generate(c, "p1", nil, 0, "delivery")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	product := entry.Product
	product.ServiceDisable = []string{"delivery"}
	if PassesFilter(meta, product, base, IgnoreHideFlags, "delivery") {
		t.Fatal("product disabled for delivery should be filtered")
	}
	if !PassesFilter(meta, product, base, IgnoreHideFlags, "pickup") {
		t.Fatal("product should pass for pickup")
	}
}

func TestDisplayOptions(t *testing.T) {
	c := pizzaCatalog(t)
	sections := DisplayOptions(c, ExhaustiveModifiers{
		Whole: []string{"pep", "thin"},
		Right: []string{"mush"},
	})
	if len(sections) != 2 {
		t.Fatalf("sections = %+v", sections)
	}
	if sections[0] != (Section{Label: "Whole", Text: "Thin Crust + Pepperoni"}) {
		t.Fatalf("whole = %+v", sections[0])
	}
	if sections[1] != (Section{Label: "Right", Text: "Mushroom"}) {
		t.Fatalf("right = %+v", sections[1])
	}
}

func TestProductDisplay(t *testing.T) {
	c := pizzaCatalog(t)
	meta, err := Generate(c, "p1", []catalog.ModifierSelection{whole("crust", "thick")}, 0, "f1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	got := ProductDisplay(c, meta, ContextMenu, DisplayOpts{Description: true, Adornment: true, Price: true})
	if got.Name != "Cheese Pizza + Thick Crust" {
		t.Fatalf("name = %q", got.Name)
	}
	if got.Price != "$12.00" {
		t.Fatalf("price = %q", got.Price)
	}
	if len(got.Sections) != 1 || got.Sections[0].Text != "Thick Crust" {
		t.Fatalf("sections = %+v", got.Sections)
	}
	if got.LabelSections {
		t.Fatal("unsplit product should not label sections")
	}
}

func TestProductDisplayCollapsesSectionEqualToName(t *testing.T) {
	c := pizzaCatalog(t)
	meta := Metadata{
		Name:                "Mushroom",
		Instances:           [2]string{"pi-base", "pi-base"},
		Price:               usd(100),
		ExhaustiveModifiers: ExhaustiveModifiers{Whole: []string{"mush"}},
	}
	got := ProductDisplay(c, meta, ContextOrder, DisplayOpts{Description: true})
	if len(got.Sections) != 0 {
		t.Fatalf("sections = %+v", got.Sections)
	}
	if got.Price != "" {
		t.Fatalf("price should be omitted, got %q", got.Price)
	}
}
