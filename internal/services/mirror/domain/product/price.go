package product

import (
	"slices"
	"strings"

	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/catalog"
)

// maxPotentialPrices caps the completions enumerated for one product.
const maxPotentialPrices = 4096

// PriceSet is the set of prices reachable by completing a product.
type PriceSet struct {
	// Prices holds enumerated completion prices in cents, sorted ascending
	// with duplicates kept.
	Prices []int64 `json:"prices"`
	// Partial is set when enumeration stopped at maxPotentialPrices. Prices
	// is then a subset; Min and Max remain exact.
	Partial bool  `json:"partial,omitempty"`
	Min     int64 `json:"min"`
	Max     int64 `json:"max"`
}

// openChoice is an unmet modifier type: the prices of its selectable options
// in ascending order and how many more must be chosen.
type openChoice struct {
	prices  []int64
	missing int
}

func openChoices(meta Metadata, sel catalog.Selectors) []openChoice {
	types := make([]string, 0, len(meta.ModifierMap))
	for mtid := range meta.ModifierMap {
		types = append(types, mtid)
	}
	slices.Sort(types)
	var out []openChoice
	for _, mtid := range types {
		state := meta.ModifierMap[mtid]
		if state.MeetsMinimum {
			continue
		}
		mt, ok := sel.ModifierEntry(mtid)
		if !ok {
			continue
		}
		var candidates []int64
		for _, oid := range mt.Options {
			if !state.Options[oid].Whole || isSelected(meta.Modifiers, mtid, oid) {
				continue
			}
			option, ok := sel.Option(oid)
			if !ok {
				continue
			}
			candidates = append(candidates, option.Price.Amount)
		}
		slices.Sort(candidates)
		out = append(out, openChoice{
			prices:  candidates,
			missing: min(mt.ModifierType.MinSelected-state.Selected, len(candidates)),
		})
	}
	return out
}

// PotentialPrices returns the prices reachable by completing the open
// choices of an incomplete product. A complete product yields its single
// price. Min and Max are computed from the cheapest and dearest options of
// each open choice, so they hold even when enumeration is partial.
func PotentialPrices(meta Metadata, sel catalog.Selectors) PriceSet {
	base := meta.Price.Amount
	if !meta.Incomplete {
		return PriceSet{Prices: []int64{base}, Min: base, Max: base}
	}
	set := PriceSet{Min: base, Max: base}
	sums := []int64{0}
	for _, choice := range openChoices(meta, sel) {
		k := choice.missing
		if k <= 0 {
			continue
		}
		n := len(choice.prices)
		for _, p := range choice.prices[:k] {
			set.Min += p
		}
		for _, p := range choice.prices[n-k:] {
			set.Max += p
		}
		choices, truncated := combinationSums(choice.prices, k)
		set.Partial = set.Partial || truncated
		next := make([]int64, 0, min(len(sums)*len(choices), maxPotentialPrices))
	cross:
		for _, s := range sums {
			for _, c := range choices {
				if len(next) == maxPotentialPrices {
					set.Partial = true
					break cross
				}
				next = append(next, s+c)
			}
		}
		sums = next
	}
	for i := range sums {
		sums[i] += base
	}
	slices.Sort(sums)
	set.Prices = sums
	return set
}

// combinationSums returns the sum of every k element subset of values, up to
// maxPotentialPrices of them. truncated reports that subsets were left out.
func combinationSums(values []int64, k int) (sums []int64, truncated bool) {
	if k <= 0 {
		return []int64{0}, false
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		if len(sums) == maxPotentialPrices {
			return sums, true
		}
		var sum int64
		for _, i := range idx {
			sum += values[i]
		}
		sums = append(sums, sum)
		// advance to the next combination in lexicographic order
		i := k - 1
		for i >= 0 && idx[i] == len(values)-k+i {
			i--
		}
		if i < 0 {
			return sums, false
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// PriceMode is a price display mode. The set of modes is closed: only the
// types in this package implement it.
type PriceMode interface {
	priceText(meta Metadata, prices func() PriceSet) string
}

type (
	// Always shows the computed price.
	Always struct{}
	// FromX shows "from" and the computed price.
	FromX struct{}
	// Varies shows the market price placeholder.
	Varies struct{}
	// MinToMax shows the range of potential prices.
	MinToMax struct{}
	// List shows each distinct potential price.
	List struct{}
)

func (Always) priceText(meta Metadata, _ func() PriceSet) string {
	return FormatMoney(meta.Price)
}

func (FromX) priceText(meta Metadata, _ func() PriceSet) string {
	return "from " + FormatMoney(meta.Price)
}

func (Varies) priceText(Metadata, func() PriceSet) string {
	return "MP"
}

func (MinToMax) priceText(_ Metadata, prices func() PriceSet) string {
	return rangeText(prices())
}

func rangeText(set PriceSet) string {
	if set.Min != set.Max {
		return "from " + FormatCents(set.Min) + " to " + FormatCents(set.Max)
	}
	return FormatCents(set.Min)
}

// List falls back to the range when the enumeration is partial, since the
// enumerated prices would not be every price on offer.
func (List) priceText(meta Metadata, prices func() PriceSet) string {
	set := prices()
	if set.Partial {
		return rangeText(set)
	}
	p := slices.Compact(slices.Clone(set.Prices))
	if len(p) == 0 {
		return FormatMoney(meta.Price)
	}
	parts := make([]string, len(p))
	for i, cents := range p {
		parts[i] = FormatCents(cents)
	}
	return strings.Join(parts, "/")
}

// ModeFor maps a wire price display value to its mode. Unknown values fall
// back to Always.
func ModeFor(display catalog.PriceDisplay) PriceMode {
	switch display {
	case catalog.PriceDisplayFromX:
		return FromX{}
	case catalog.PriceDisplayVaries:
		return Varies{}
	case catalog.PriceDisplayMinToMax:
		return MinToMax{}
	case catalog.PriceDisplayList:
		return List{}
	default:
		return Always{}
	}
}

// PriceText renders the price of meta. The display mode only applies to
// incomplete products; a complete product always shows its computed price.
func PriceText(meta Metadata, mode PriceMode, sel catalog.Selectors) string {
	if !meta.Incomplete || mode == nil {
		return FormatMoney(meta.Price)
	}
	return mode.priceText(meta, func() PriceSet { return PotentialPrices(meta, sel) })
}
