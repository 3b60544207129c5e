package catalog

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Money is an amount in the smallest currency unit.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Add returns m plus cents, keeping the currency.
func (m Money) Add(cents int64) Money {
	return Money{Amount: m.Amount + cents, Currency: m.Currency}
}

// Interval is a closed range of epoch milliseconds.
type Interval struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// PermanentlyDisabled reports whether the interval marks an entity disabled
// regardless of time. The server encodes this as start after end.
func (iv *Interval) PermanentlyDisabled() bool {
	return iv != nil && iv.Start > iv.End
}

// Covers reports whether t falls inside a disable interval. A permanent
// disable covers every instant.
func (iv *Interval) Covers(t int64) bool {
	if iv == nil {
		return false
	}
	if iv.PermanentlyDisabled() {
		return true
	}
	return iv.Start <= t && t <= iv.End
}

// OptionPlacement says which part of a product a modifier option applies to.
type OptionPlacement int

const (
	PlacementNone OptionPlacement = iota
	PlacementLeft
	PlacementRight
	PlacementWhole
)

func (p OptionPlacement) String() string {
	switch p {
	case PlacementLeft:
		return "LEFT"
	case PlacementRight:
		return "RIGHT"
	case PlacementWhole:
		return "WHOLE"
	default:
		return "NONE"
	}
}

// OptionQualifier is the amount of a modifier option.
type OptionQualifier int

const (
	QualifierRegular OptionQualifier = iota
	QualifierLite
	QualifierHeavy
	QualifierOTS
)

func (q OptionQualifier) String() string {
	switch q {
	case QualifierLite:
		return "LITE"
	case QualifierHeavy:
		return "HEAVY"
	case QualifierOTS:
		return "OTS"
	default:
		return "REGULAR"
	}
}

// PriceDisplay is the wire name of a price display mode.
type PriceDisplay string

const (
	PriceDisplayFromX    PriceDisplay = "FROM_X"
	PriceDisplayVaries   PriceDisplay = "VARIES"
	PriceDisplayAlways   PriceDisplay = "ALWAYS"
	PriceDisplayMinToMax PriceDisplay = "MIN_TO_MAX"
	PriceDisplayList     PriceDisplay = "LIST"
)

// FulfillmentType is the service kind of a fulfillment.
type FulfillmentType string

const (
	FulfillmentPickup   FulfillmentType = "PICKUP"
	FulfillmentDineIn   FulfillmentType = "DINEIN"
	FulfillmentDelivery FulfillmentType = "DELIVERY"
)

// CategoryDisplayFlags carries the rendering hints of a category.
type CategoryDisplayFlags struct {
	CallLineName    string `json:"call_line_name,omitempty"`
	CallLineDisplay string `json:"call_line_display,omitempty"`
	NestedDisplay   string `json:"nesting,omitempty"`
}

// Category is a node in the menu tree.
type Category struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	Description    string               `json:"description,omitempty"`
	Subheading     string               `json:"subheading,omitempty"`
	Footnotes      string               `json:"footnotes,omitempty"`
	Ordinal        int                  `json:"ordinal"`
	ParentID       string               `json:"parent_id,omitempty"`
	DisplayFlags   CategoryDisplayFlags `json:"display_flags"`
	ServiceDisable []string             `json:"serviceDisable"`
}

// DisabledFor reports whether the category is turned off for a fulfillment.
func (c Category) DisabledFor(fulfillmentID string) bool {
	return slices.Contains(c.ServiceDisable, fulfillmentID)
}

// CategoryEntry is a category with its ordered children and products.
type CategoryEntry struct {
	Category Category `json:"category"`
	Children []string `json:"children"`
	Products []string `json:"products"`
}

// ProductModifier attaches a modifier type to a product.
type ProductModifier struct {
	ModifierTypeID string   `json:"mtid"`
	Enable         string   `json:"enable,omitempty"`
	ServiceDisable []string `json:"serviceDisable"`
}

// ProductDisplayFlags carries product level rendering hints.
type ProductDisplayFlags struct {
	Flavors struct {
		Max float64 `json:"max"`
		Min float64 `json:"min"`
	} `json:"flavors"`
	Bake struct {
		Max float64 `json:"max"`
		Min float64 `json:"min"`
	} `json:"bake"`
	SingularNoun string `json:"singular_noun,omitempty"`
}

// Product is a sellable item class.
type Product struct {
	ID             string              `json:"id"`
	Price          Money               `json:"price"`
	Disabled       *Interval           `json:"disabled,omitempty"`
	ServiceDisable []string            `json:"serviceDisable"`
	DisplayFlags   ProductDisplayFlags `json:"displayFlags"`
	CategoryIDs    []string            `json:"category_ids"`
	BaseProductID  string              `json:"baseProductId"`
	Modifiers      []ProductModifier   `json:"modifiers"`
}

// DisabledFor reports whether the product is turned off for a fulfillment.
func (p Product) DisabledFor(fulfillmentID string) bool {
	return slices.Contains(p.ServiceDisable, fulfillmentID)
}

// ProductEntry is a product with its ordered instance ids.
type ProductEntry struct {
	Product   Product  `json:"product"`
	Instances []string `json:"instances"`
}

// OptionSelection is one selected option of a modifier type.
type OptionSelection struct {
	OptionID  string          `json:"optionId"`
	Placement OptionPlacement `json:"placement"`
	Qualifier OptionQualifier `json:"qualifier"`
}

// ModifierSelection is the set of options chosen for a modifier type.
type ModifierSelection struct {
	ModifierTypeID string            `json:"modifierTypeId"`
	Options        []OptionSelection `json:"options"`
}

// MenuDisplayFlags are the menu context flags of a product instance.
type MenuDisplayFlags struct {
	Ordinal                        int          `json:"ordinal"`
	Hide                           bool         `json:"hide"`
	PriceDisplay                   PriceDisplay `json:"price_display"`
	Adornment                      string       `json:"adornment"`
	SuppressExhaustiveModifierList bool         `json:"suppress_exhaustive_modifier_list"`
	ShowModifierOptions            bool         `json:"show_modifier_options"`
}

// OrderDisplayFlags are the order context flags of a product instance.
type OrderDisplayFlags struct {
	Ordinal                        int          `json:"ordinal"`
	Hide                           bool         `json:"hide"`
	SkipCustomization              bool         `json:"skip_customization"`
	PriceDisplay                   PriceDisplay `json:"price_display"`
	Adornment                      string       `json:"adornment"`
	SuppressExhaustiveModifierList bool         `json:"suppress_exhaustive_modifier_list"`
}

// InstanceDisplayFlags groups the per-context flags.
type InstanceDisplayFlags struct {
	Menu  MenuDisplayFlags  `json:"menu"`
	Order OrderDisplayFlags `json:"order"`
}

// ProductInstance is a named, preconfigured selection of a product.
type ProductInstance struct {
	ID           string               `json:"id"`
	ProductID    string               `json:"productId"`
	Ordinal      int                  `json:"ordinal"`
	Modifiers    []ModifierSelection  `json:"modifiers"`
	DisplayFlags InstanceDisplayFlags `json:"displayFlags"`
	Description  string               `json:"description"`
	DisplayName  string               `json:"displayName"`
	Shortcode    string               `json:"shortcode"`
}

// OptionMetadata describes how an option behaves on split products.
type OptionMetadata struct {
	FlavorFactor float64 `json:"flavor_factor"`
	BakeFactor   float64 `json:"bake_factor"`
	CanSplit     bool    `json:"can_split"`
}

// OptionDisplayFlags control how an option appears in generated names.
type OptionDisplayFlags struct {
	OmitFromShortname bool `json:"omit_from_shortname"`
	OmitFromName      bool `json:"omit_from_name"`
}

// Option is a modifier option.
type Option struct {
	ID             string             `json:"id"`
	ModifierTypeID string             `json:"modifierTypeId"`
	DisplayName    string             `json:"displayName"`
	Description    string             `json:"description"`
	Shortcode      string             `json:"shortcode"`
	Price          Money              `json:"price"`
	Disabled       *Interval          `json:"disabled,omitempty"`
	Ordinal        int                `json:"ordinal"`
	Metadata       OptionMetadata     `json:"metadata"`
	Enable         string             `json:"enable,omitempty"`
	DisplayFlags   OptionDisplayFlags `json:"displayFlags"`
}

// ModifierTypeDisplayFlags control how a modifier type renders.
type ModifierTypeDisplayFlags struct {
	OmitSectionIfNoAvailable  bool   `json:"omit_section_if_no_available_options"`
	OmitOptionsIfNotAvailable bool   `json:"omit_options_if_not_available"`
	UseToggleIfOnlyTwoOptions bool   `json:"use_toggle_if_only_two_options"`
	Hidden                    bool   `json:"hidden"`
	EmptyDisplayAs            string `json:"empty_display_as"`
	ModifierClass             string `json:"modifier_class"`
	TemplateString            string `json:"template_string"`
	MultipleItemSeparator     string `json:"multiple_item_separator"`
	NonEmptyGroupPrefix       string `json:"non_empty_group_prefix"`
	NonEmptyGroupSuffix       string `json:"non_empty_group_suffix"`
}

// ModifierType is a group of options with selection bounds.
type ModifierType struct {
	ID           string                   `json:"id"`
	Name         string                   `json:"name"`
	DisplayName  string                   `json:"displayName"`
	Ordinal      int                      `json:"ordinal"`
	MinSelected  int                      `json:"min_selected"`
	MaxSelected  *int                     `json:"max_selected"`
	DisplayFlags ModifierTypeDisplayFlags `json:"displayFlags"`
}

// ModifierEntry is a modifier type with its ordered option ids.
type ModifierEntry struct {
	ModifierType ModifierType `json:"modifierType"`
	Options      []string     `json:"options"`
}

// ProductInstanceFunction is a named expression over a product selection.
type ProductInstanceFunction struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Expression json.RawMessage `json:"expression"`
}

// OrderInstanceFunction is a named expression over an order.
type OrderInstanceFunction struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Expression json.RawMessage `json:"expression"`
}

// Fulfillment is a configured service method.
type Fulfillment struct {
	ID                  string          `json:"id"`
	DisplayName         string          `json:"displayName"`
	Shortcode           string          `json:"shortcode"`
	Ordinal             int             `json:"ordinal"`
	Service             FulfillmentType `json:"service"`
	MinDuration         int             `json:"minDuration"`
	MaxDuration         int             `json:"maxDuration"`
	LeadTime            int             `json:"leadTime"`
	TimeStep            int             `json:"timeStep"`
	AllowPrepayment     bool            `json:"allowPrepayment"`
	AllowTipping        bool            `json:"allowTipping"`
	MenuBaseCategoryID  string          `json:"menuBaseCategoryId"`
	OrderBaseCategoryID string          `json:"orderBaseCategoryId"`
}

// Settings is the global storefront configuration object.
type Settings struct {
	Config map[string]json.RawMessage `json:"config"`
}

// Collection decodes either a JSON array or an id keyed JSON object into a
// slice. The server has sent both shapes over time.
type Collection[T any] []T

// UnmarshalJSON implements json.Unmarshaler.
func (c *Collection[T]) UnmarshalJSON(data []byte) error {
	var list []T
	if err := json.Unmarshal(data, &list); err == nil {
		*c = list
		return nil
	}
	var keyed map[string]T
	if err := json.Unmarshal(data, &keyed); err != nil {
		return fmt.Errorf("decode collection: %w", err)
	}
	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, keyed[k])
	}
	*c = out
	return nil
}

// Payload is the wire shape of a full catalog push.
type Payload struct {
	Version                  string                              `json:"version,omitempty"`
	Categories               Collection[CategoryEntry]           `json:"categories"`
	Modifiers                Collection[ModifierEntry]           `json:"modifiers"`
	Options                  Collection[Option]                  `json:"options"`
	Products                 Collection[ProductEntry]            `json:"products"`
	ProductInstances         Collection[ProductInstance]         `json:"productInstances"`
	ProductInstanceFunctions Collection[ProductInstanceFunction] `json:"productInstanceFunctions"`
	OrderInstanceFunctions   Collection[OrderInstanceFunction]   `json:"orderInstanceFunctions"`
}
