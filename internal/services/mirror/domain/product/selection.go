package product

import (
	"slices"
	"strconv"
	"strings"

	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/catalog"
)

// Canonical returns the selection sorted by modifier type and option id with
// NONE placements and empty groups removed. A repeated option keeps its last
// placement.
func Canonical(modifiers []catalog.ModifierSelection) []catalog.ModifierSelection {
	byType := make(map[string]map[string]catalog.OptionSelection)
	for _, sel := range modifiers {
		for _, opt := range sel.Options {
			if _, ok := byType[sel.ModifierTypeID]; !ok {
				byType[sel.ModifierTypeID] = make(map[string]catalog.OptionSelection)
			}
			if opt.Placement == catalog.PlacementNone {
				delete(byType[sel.ModifierTypeID], opt.OptionID)
				continue
			}
			byType[sel.ModifierTypeID][opt.OptionID] = opt
		}
	}
	types := make([]string, 0, len(byType))
	for mtid, opts := range byType {
		if len(opts) > 0 {
			types = append(types, mtid)
		}
	}
	slices.Sort(types)
	out := make([]catalog.ModifierSelection, 0, len(types))
	for _, mtid := range types {
		ids := make([]string, 0, len(byType[mtid]))
		for id := range byType[mtid] {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		opts := make([]catalog.OptionSelection, 0, len(ids))
		for _, id := range ids {
			opts = append(opts, byType[mtid][id])
		}
		out = append(out, catalog.ModifierSelection{ModifierTypeID: mtid, Options: opts})
	}
	return out
}

// Key renders a canonical selection as a stable cache key.
func Key(modifiers []catalog.ModifierSelection) string {
	var b strings.Builder
	for i, sel := range Canonical(modifiers) {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(sel.ModifierTypeID)
		b.WriteByte(':')
		for j, opt := range sel.Options {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(opt.OptionID)
			b.WriteByte('@')
			b.WriteString(strconv.Itoa(int(opt.Placement)))
			b.WriteByte('.')
			b.WriteString(strconv.Itoa(int(opt.Qualifier)))
		}
	}
	return b.String()
}

type optionRef struct {
	modifierTypeID string
	optionID       string
}

// half projects a canonical selection onto one side of a product. WHOLE
// options belong to both sides.
func half(modifiers []catalog.ModifierSelection, side catalog.OptionPlacement) []optionRef {
	var out []optionRef
	for _, sel := range modifiers {
		for _, opt := range sel.Options {
			if opt.Placement == catalog.PlacementWhole || opt.Placement == side {
				out = append(out, optionRef{modifierTypeID: sel.ModifierTypeID, optionID: opt.OptionID})
			}
		}
	}
	return out
}

func selectedCount(modifiers []catalog.ModifierSelection, modifierTypeID string) int {
	for _, sel := range modifiers {
		if sel.ModifierTypeID == modifierTypeID {
			return len(sel.Options)
		}
	}
	return 0
}

func isSelected(modifiers []catalog.ModifierSelection, modifierTypeID, optionID string) bool {
	for _, sel := range modifiers {
		if sel.ModifierTypeID != modifierTypeID {
			continue
		}
		for _, opt := range sel.Options {
			if opt.OptionID == optionID {
				return true
			}
		}
	}
	return false
}
