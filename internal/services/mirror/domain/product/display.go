package product

import (
	"cmp"
	"slices"
	"strings"

	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/catalog"
)

// Context is the display context a product is rendered in.
type Context string

const (
	ContextMenu  Context = "menu"
	ContextOrder Context = "order"
)

// PriceDisplayFor returns the instance's price display mode in ctx.
func PriceDisplayFor(pi catalog.ProductInstance, ctx Context) catalog.PriceDisplay {
	if ctx == ContextOrder {
		return pi.DisplayFlags.Order.PriceDisplay
	}
	return pi.DisplayFlags.Menu.PriceDisplay
}

func adornmentFor(pi catalog.ProductInstance, ctx Context) string {
	if ctx == ContextOrder {
		return pi.DisplayFlags.Order.Adornment
	}
	return pi.DisplayFlags.Menu.Adornment
}

func suppressFor(pi catalog.ProductInstance, ctx Context) bool {
	if ctx == ContextOrder {
		return pi.DisplayFlags.Order.SuppressExhaustiveModifierList
	}
	return pi.DisplayFlags.Menu.SuppressExhaustiveModifierList
}

// Section is one labeled group of selected options.
type Section struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// DisplayOptions renders the exhaustive modifiers as sections for the whole
// product and each half, ordered by modifier type then option ordinal.
func DisplayOptions(sel catalog.Selectors, ex ExhaustiveModifiers) []Section {
	var out []Section
	for _, group := range []struct {
		label string
		ids   []string
	}{
		{"Whole", ex.Whole},
		{"Left", ex.Left},
		{"Right", ex.Right},
	} {
		if len(group.ids) == 0 {
			continue
		}
		options := make([]catalog.Option, 0, len(group.ids))
		for _, id := range group.ids {
			if option, ok := sel.Option(id); ok {
				options = append(options, option)
			}
		}
		slices.SortStableFunc(options, func(a, b catalog.Option) int {
			return cmp.Or(
				cmp.Compare(typeOrdinal(sel, a.ModifierTypeID), typeOrdinal(sel, b.ModifierTypeID)),
				cmp.Compare(a.Ordinal, b.Ordinal),
			)
		})
		names := make([]string, 0, len(options))
		for _, option := range options {
			names = append(names, option.DisplayName)
		}
		if len(names) > 0 {
			out = append(out, Section{Label: group.label, Text: strings.Join(names, " + ")})
		}
	}
	return out
}

func typeOrdinal(sel catalog.Selectors, modifierTypeID string) int {
	mt, _ := sel.ModifierEntry(modifierTypeID)
	return mt.ModifierType.Ordinal
}

// DisplayOpts toggles the optional parts of a product display.
type DisplayOpts struct {
	Description bool
	Adornment   bool
	Price       bool
}

// Display is the composed text of a product card.
type Display struct {
	Name        string    `json:"name"`
	Adornment   string    `json:"adornment,omitempty"`
	Description string    `json:"description,omitempty"`
	Price       string    `json:"price,omitempty"`
	Sections    []Section `json:"sections,omitempty"`
	// LabelSections is set for split products, whose sections are attributed
	// to a half.
	LabelSections bool `json:"label_sections"`
}

// ProductDisplay composes the name, adornment, description, price, and option
// sections of a product in a display context.
func ProductDisplay(sel catalog.Selectors, meta Metadata, ctx Context, opts DisplayOpts) Display {
	out := Display{Name: meta.Name, LabelSections: meta.IsSplit}
	pi, ok := sel.ProductInstance(meta.Instances[0])
	if opts.Adornment && ok {
		out.Adornment = adornmentFor(pi, ctx)
	}
	if opts.Description {
		out.Description = meta.Description
		if ok && !suppressFor(pi, ctx) {
			sections := DisplayOptions(sel, meta.ExhaustiveModifiers)
			if !(len(sections) == 1 && sections[0].Text == meta.Name) {
				out.Sections = sections
			}
		}
	}
	if opts.Price {
		var mode PriceMode = Always{}
		if ok {
			mode = ModeFor(PriceDisplayFor(pi, ctx))
		}
		out.Price = PriceText(meta, mode, sel)
	}
	return out
}
