package product

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/catalog"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/expression"
)

var (
	// ErrProductNotFound is returned when the product id is not in the catalog.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidSelection is returned when the selection does not fit the product.
	ErrInvalidSelection = errors.New("invalid modifier selection")
)

// OptionEnable is the availability of one option per placement.
type OptionEnable struct {
	Left  bool `json:"left"`
	Right bool `json:"right"`
	Whole bool `json:"whole"`
}

// At reports availability for a placement. NONE is always allowed.
func (e OptionEnable) At(p catalog.OptionPlacement) bool {
	switch p {
	case catalog.PlacementLeft:
		return e.Left
	case catalog.PlacementRight:
		return e.Right
	case catalog.PlacementWhole:
		return e.Whole
	default:
		return true
	}
}

// ModifierState summarizes one modifier type attached to the product.
type ModifierState struct {
	MeetsMinimum  bool                    `json:"meets_minimum"`
	HasSelectable bool                    `json:"has_selectable"`
	Selected      int                     `json:"selected"`
	Options       map[string]OptionEnable `json:"options"`
}

// ExhaustiveModifiers lists the selected option ids by placement.
type ExhaustiveModifiers struct {
	Whole []string `json:"whole"`
	Left  []string `json:"left"`
	Right []string `json:"right"`
}

// Metadata is the derived view of a product with a selection.
type Metadata struct {
	ProductID   string        `json:"product_id"`
	Name        string        `json:"name"`
	Shortname   string        `json:"shortname"`
	Description string        `json:"description"`
	Price       catalog.Money `json:"price"`
	// Instances holds the product instance matched for the left and right
	// halves. Both entries are equal for an unsplit product.
	Instances           [2]string                   `json:"pi"`
	IsSplit             bool                        `json:"is_split"`
	Incomplete          bool                        `json:"incomplete"`
	ModifierMap         map[string]ModifierState    `json:"modifier_map"`
	ExhaustiveModifiers ExhaustiveModifiers         `json:"exhaustive_modifiers"`
	Modifiers           []catalog.ModifierSelection `json:"modifiers"`
}

// Generate computes the metadata for productID with the given selection at
// serviceTime (epoch milliseconds) for a fulfillment.
func Generate(sel catalog.Selectors, productID string, modifiers []catalog.ModifierSelection, serviceTime int64, fulfillmentID string) (Metadata, error) {
	entry, ok := sel.ProductEntry(productID)
	if !ok {
		return Metadata{}, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	mods := Canonical(modifiers)
	meta := Metadata{
		ProductID:   productID,
		Price:       entry.Product.Price,
		ModifierMap: make(map[string]ModifierState, len(entry.Product.Modifiers)),
		Modifiers:   mods,
	}

	attached := make(map[string]bool, len(entry.Product.Modifiers))
	for _, pm := range entry.Product.Modifiers {
		attached[pm.ModifierTypeID] = true
	}
	for _, group := range mods {
		if !attached[group.ModifierTypeID] {
			return Metadata{}, fmt.Errorf("%w: modifier type %s is not attached to product %s", ErrInvalidSelection, group.ModifierTypeID, productID)
		}
		mt, ok := sel.ModifierEntry(group.ModifierTypeID)
		if !ok {
			return Metadata{}, fmt.Errorf("%w: unknown modifier type %s", ErrInvalidSelection, group.ModifierTypeID)
		}
		if limit := mt.ModifierType.MaxSelected; limit != nil && len(group.Options) > *limit {
			return Metadata{}, fmt.Errorf("%w: %d options selected for %s, at most %d allowed", ErrInvalidSelection, len(group.Options), group.ModifierTypeID, *limit)
		}
		for _, opt := range group.Options {
			option, ok := sel.Option(opt.OptionID)
			if !ok || option.ModifierTypeID != group.ModifierTypeID {
				return Metadata{}, fmt.Errorf("%w: unknown option %s for %s", ErrInvalidSelection, opt.OptionID, group.ModifierTypeID)
			}
			meta.Price = meta.Price.Add(option.Price.Amount)
		}
	}

	for _, pm := range entry.Product.Modifiers {
		mt, ok := sel.ModifierEntry(pm.ModifierTypeID)
		if !ok {
			continue
		}
		typeEnabled := !slices.Contains(pm.ServiceDisable, fulfillmentID) && enabled(sel, pm.Enable, mods)
		state := ModifierState{
			Selected: selectedCount(mods, pm.ModifierTypeID),
			Options:  make(map[string]OptionEnable, len(mt.Options)),
		}
		for _, oid := range mt.Options {
			option, ok := sel.Option(oid)
			if !ok {
				continue
			}
			available := typeEnabled && !option.Disabled.Covers(serviceTime) && enabled(sel, option.Enable, mods)
			splittable := available && option.Metadata.CanSplit
			state.Options[oid] = OptionEnable{Left: splittable, Right: splittable, Whole: available}
			if available {
				state.HasSelectable = true
			}
		}
		// A type with nothing to choose cannot hold the product back.
		state.MeetsMinimum = !state.HasSelectable || state.Selected >= mt.ModifierType.MinSelected
		if !state.MeetsMinimum {
			meta.Incomplete = true
		}
		meta.ModifierMap[pm.ModifierTypeID] = state
	}

	for _, group := range mods {
		for _, opt := range group.Options {
			switch opt.Placement {
			case catalog.PlacementLeft, catalog.PlacementRight:
				meta.IsSplit = true
			}
		}
	}

	left, leftExtras := matchInstance(sel, entry, half(mods, catalog.PlacementLeft))
	right, rightExtras := left, leftExtras
	if meta.IsSplit {
		right, rightExtras = matchInstance(sel, entry, half(mods, catalog.PlacementRight))
	}
	meta.Instances = [2]string{left.ID, right.ID}

	leftName, leftShort := halfNames(sel, left, leftExtras)
	if meta.IsSplit {
		rightName, rightShort := halfNames(sel, right, rightExtras)
		meta.Name = leftName + " / " + rightName
		meta.Shortname = leftShort + " / " + rightShort
	} else {
		meta.Name = leftName
		meta.Shortname = leftShort
	}
	meta.Description = left.Description
	if left.ID != right.ID {
		var parts []string
		for _, d := range []string{left.Description, right.Description} {
			if d != "" {
				parts = append(parts, d)
			}
		}
		meta.Description = strings.Join(parts, " / ")
	}

	meta.ExhaustiveModifiers = exhaustive(sel, mods)
	return meta, nil
}

// enabled evaluates an enable function. An unknown or failing function
// disables the gated item.
func enabled(sel catalog.Selectors, functionID string, mods []catalog.ModifierSelection) bool {
	if functionID == "" {
		return true
	}
	fn, ok := sel.ProductInstanceFunction(functionID)
	if !ok {
		return false
	}
	v, err := expression.EvaluateProduct(fn.Expression, expression.Modifiers(mods))
	if err != nil {
		return false
	}
	return v.Truthy()
}

// matchInstance picks the product instance whose own selection is the
// largest subset of the half selection. Ties keep the earlier instance. When
// nothing fits the base product instance is used and every option is extra.
func matchInstance(sel catalog.Selectors, entry catalog.ProductEntry, side []optionRef) (catalog.ProductInstance, []optionRef) {
	want := make(map[optionRef]bool, len(side))
	for _, ref := range side {
		want[ref] = true
	}
	var (
		best      catalog.ProductInstance
		bestScore = -1
		bestSet   map[optionRef]bool
	)
	for _, id := range entry.Instances {
		pi, ok := sel.ProductInstance(id)
		if !ok {
			continue
		}
		own := make(map[optionRef]bool)
		fits := true
		for _, group := range pi.Modifiers {
			for _, opt := range group.Options {
				if opt.Placement == catalog.PlacementNone {
					continue
				}
				ref := optionRef{modifierTypeID: group.ModifierTypeID, optionID: opt.OptionID}
				if !want[ref] {
					fits = false
					break
				}
				own[ref] = true
			}
			if !fits {
				break
			}
		}
		if fits && len(own) > bestScore {
			best, bestScore, bestSet = pi, len(own), own
		}
	}
	if bestScore < 0 {
		base, _ := sel.ProductInstance(entry.Product.BaseProductID)
		if base.ID == "" {
			base.ID = entry.Product.BaseProductID
		}
		return base, side
	}
	var extras []optionRef
	for _, ref := range side {
		if !bestSet[ref] {
			extras = append(extras, ref)
		}
	}
	return best, extras
}

func halfNames(sel catalog.Selectors, pi catalog.ProductInstance, extras []optionRef) (string, string) {
	names := []string{pi.DisplayName}
	shorts := []string{pi.Shortcode}
	for _, ref := range extras {
		option, ok := sel.Option(ref.optionID)
		if !ok {
			continue
		}
		if !option.DisplayFlags.OmitFromName {
			names = append(names, option.DisplayName)
		}
		if !option.DisplayFlags.OmitFromShortname && option.Shortcode != "" {
			shorts = append(shorts, option.Shortcode)
		}
	}
	return strings.Join(names, " + "), strings.TrimSpace(strings.Join(shorts, " "))
}

func exhaustive(sel catalog.Selectors, mods []catalog.ModifierSelection) ExhaustiveModifiers {
	var out ExhaustiveModifiers
	for _, group := range mods {
		if mt, ok := sel.ModifierEntry(group.ModifierTypeID); ok && mt.ModifierType.DisplayFlags.Hidden {
			continue
		}
		for _, opt := range group.Options {
			switch opt.Placement {
			case catalog.PlacementWhole:
				out.Whole = append(out.Whole, opt.OptionID)
			case catalog.PlacementLeft:
				out.Left = append(out.Left, opt.OptionID)
			case catalog.PlacementRight:
				out.Right = append(out.Right, opt.OptionID)
			}
		}
	}
	return out
}
