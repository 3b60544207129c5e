package product

import "github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/catalog"

// HideFlag reads the hide flag that applies to a display context.
type HideFlag func(catalog.InstanceDisplayFlags) bool

// MenuHideFlag consults the menu hide flag.
func MenuHideFlag(flags catalog.InstanceDisplayFlags) bool { return flags.Menu.Hide }

// OrderHideFlag consults the order hide flag.
func OrderHideFlag(flags catalog.InstanceDisplayFlags) bool { return flags.Order.Hide }

// IgnoreHideFlags never hides.
func IgnoreHideFlags(catalog.InstanceDisplayFlags) bool { return false }

// PassesFilter reports whether a product instance with already generated
// metadata should be shown: the product is not disabled for the fulfillment,
// the context does not hide the instance, and every selected option is
// available at its placement.
func PassesFilter(meta Metadata, product catalog.Product, pi catalog.ProductInstance, hide HideFlag, fulfillmentID string) bool {
	if product.DisabledFor(fulfillmentID) {
		return false
	}
	if hide != nil && hide(pi.DisplayFlags) {
		return false
	}
	for _, group := range meta.Modifiers {
		state, ok := meta.ModifierMap[group.ModifierTypeID]
		if !ok {
			return false
		}
		for _, opt := range group.Options {
			if !state.Options[opt.OptionID].At(opt.Placement) {
				return false
			}
		}
	}
	return true
}
