// Package query answers read requests against the current mirror snapshot.
// Every method checks readiness first and reports failures as domain errors
// so the HTTP and MCP surfaces map them the same way.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/laviddichterman/wario-ux-shared/internal/platform/errors"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/credit"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/cart"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/catalog"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/connection"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/fulfillment"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/product"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/selector"
)

// StateSource exposes the latest snapshot.
type StateSource interface {
	State() connection.State
}

// CreditValidator validates store credit codes.
type CreditValidator interface {
	Validate(ctx context.Context, code string) (credit.ValidateResponse, error)
}

// Service runs selectors over the current snapshot.
type Service struct {
	source    StateSource
	selectors *selector.Selectors
	credit    CreditValidator
}

// New builds a query service. credit may be nil, in which case credit
// validation reports the upstream as unavailable.
func New(source StateSource, selectors *selector.Selectors, validator CreditValidator) (*Service, error) {
	if source == nil {
		return nil, errors.New("state source is required")
	}
	if selectors == nil {
		return nil, errors.New("selectors are required")
	}
	return &Service{source: source, selectors: selectors, credit: validator}, nil
}

// Status summarizes the connection and clock.
type Status struct {
	Status         connection.Status   `json:"status"`
	Loaded         bool                `json:"loaded"`
	PageLoadTime   int64               `json:"page_load_time,omitempty"`
	CurrentTime    int64               `json:"current_time,omitempty"`
	TicksSinceLoad int64               `json:"ticks_since_load"`
	TimeZone       string              `json:"time_zone,omitempty"`
	Versions       connection.Versions `json:"versions"`
	Revision       string              `json:"catalog_revision,omitempty"`
}

// Status never fails; it reports what has been received so far.
func (s *Service) Status() Status {
	state := s.source.State()
	out := Status{
		Status:         state.Status,
		Loaded:         state.IsLoaded(),
		PageLoadTime:   state.PageLoadTime,
		CurrentTime:    state.CurrentTime,
		TicksSinceLoad: state.RoughTicksSinceLoad,
		Versions:       state.Versions,
	}
	if state.ServerTime != nil {
		out.TimeZone = state.ServerTime.TZ
	}
	if state.Catalog != nil {
		out.Revision = state.Catalog.Revision
	}
	return out
}

// Ready reports whether every server slice has arrived.
func (s *Service) Ready() bool {
	return s.source.State().IsLoaded()
}

func (s *Service) loaded() (connection.State, error) {
	state := s.source.State()
	if !state.IsLoaded() {
		return state, apperrors.New(apperrors.CodeNotReady, "storefront data has not loaded")
	}
	return state, nil
}

// resolveTime defaults a zero time to the mirrored server clock.
func resolveTime(state connection.State, orderTime int64) int64 {
	if orderTime > 0 {
		return orderTime
	}
	return state.CurrentTime
}

// resolveFulfillment defaults an empty fulfillment to the configured one.
func resolveFulfillment(state connection.State, fulfillmentID string) string {
	if id := strings.TrimSpace(fulfillmentID); id != "" {
		return id
	}
	if id, ok := selector.DefaultFulfillmentID(state.Settings); ok {
		return id
	}
	return ""
}

// CategoryQuery selects a category listing.
type CategoryQuery struct {
	CategoryID    string
	Filter        string
	OrderTime     int64
	FulfillmentID string
}

// CategoryListing is a resolved category listing.
type CategoryListing struct {
	CategoryID    string   `json:"category_id"`
	Filter        string   `json:"filter"`
	OrderTime     int64    `json:"order_time"`
	FulfillmentID string   `json:"fulfillment_id"`
	IDs           []string `json:"ids"`
}

func (s *Service) category(q CategoryQuery) (connection.State, selector.Filter, CategoryListing, error) {
	state, err := s.loaded()
	if err != nil {
		return state, "", CategoryListing{}, err
	}
	filter, err := selector.ParseFilter(q.Filter)
	if err != nil {
		return state, "", CategoryListing{}, apperrors.Wrap(apperrors.CodeInvalidFilter, err.Error(), err)
	}
	categoryID := strings.TrimSpace(q.CategoryID)
	if _, ok := state.Catalog.Category(categoryID); !ok {
		return state, "", CategoryListing{}, apperrors.WithMetadata(
			apperrors.CodeUnknownCategory,
			fmt.Sprintf("category %q not found", categoryID),
			map[string]string{"category_id": categoryID},
		)
	}
	listing := CategoryListing{
		CategoryID:    categoryID,
		Filter:        string(filter),
		OrderTime:     resolveTime(state, q.OrderTime),
		FulfillmentID: resolveFulfillment(state, q.FulfillmentID),
	}
	return state, filter, listing, nil
}

// CategoryProducts lists the visible product instances of a category.
func (s *Service) CategoryProducts(q CategoryQuery) (CategoryListing, error) {
	state, filter, listing, err := s.category(q)
	if err != nil {
		return CategoryListing{}, err
	}
	listing.IDs = s.selectors.ProductInstanceIDsInCategory(state.Catalog, listing.CategoryID, filter, listing.OrderTime, listing.FulfillmentID)
	return listing, nil
}

// Subcategories lists the populated child categories of a category.
func (s *Service) Subcategories(q CategoryQuery) (CategoryListing, error) {
	state, filter, listing, err := s.category(q)
	if err != nil {
		return CategoryListing{}, err
	}
	listing.IDs = s.selectors.PopulatedSubcategoryIDsInCategory(state.Catalog, listing.CategoryID, filter, listing.OrderTime, listing.FulfillmentID)
	return listing, nil
}

// MetadataQuery selects a product with modifiers.
type MetadataQuery struct {
	ProductID     string                      `json:"-"`
	Modifiers     []catalog.ModifierSelection `json:"modifiers"`
	ServiceTime   int64                       `json:"time,omitempty"`
	FulfillmentID string                      `json:"fulfillment,omitempty"`
	Context       string                      `json:"context,omitempty"`
}

// ProductView is product metadata with its rendered display.
type ProductView struct {
	Metadata        product.Metadata `json:"metadata"`
	PotentialPrices product.PriceSet `json:"potential_prices"`
	Display         product.Display  `json:"display"`
}

// ProductMetadata computes the metadata and display of a product selection.
func (s *Service) ProductMetadata(q MetadataQuery) (ProductView, error) {
	state, err := s.loaded()
	if err != nil {
		return ProductView{}, err
	}
	ctx, err := parseContext(q.Context)
	if err != nil {
		return ProductView{}, err
	}
	c := state.Catalog
	meta, err := s.selectors.ProductMetadata(
		c,
		strings.TrimSpace(q.ProductID),
		q.Modifiers,
		resolveTime(state, q.ServiceTime),
		resolveFulfillment(state, q.FulfillmentID),
	)
	switch {
	case errors.Is(err, product.ErrProductNotFound):
		return ProductView{}, apperrors.Wrap(apperrors.CodeProductNotFound, fmt.Sprintf("product %q not found", q.ProductID), err)
	case errors.Is(err, product.ErrInvalidSelection):
		return ProductView{}, apperrors.Wrap(apperrors.CodeInvalidSelection, err.Error(), err)
	case err != nil:
		return ProductView{}, err
	}
	return ProductView{
		Metadata:        meta,
		PotentialPrices: product.PotentialPrices(meta, c),
		Display:         product.ProductDisplay(c, meta, ctx, product.DisplayOpts{Description: true, Adornment: true, Price: true}),
	}, nil
}

func parseContext(raw string) (product.Context, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(product.ContextMenu):
		return product.ContextMenu, nil
	case string(product.ContextOrder):
		return product.ContextOrder, nil
	default:
		return "", apperrors.New(apperrors.CodeInvalidRequest, fmt.Sprintf("unknown display context %q", raw))
	}
}

// GroupedCart groups cart entries by category ordinal.
func (s *Service) GroupedCart(entries []cart.Entry) ([]cart.Group[cart.Entry], error) {
	state, err := s.loaded()
	if err != nil {
		return nil, err
	}
	groups, err := selector.GroupedAndOrderedCart(state.Catalog, entries)
	if errors.Is(err, cart.ErrUnknownCategory) {
		return nil, apperrors.Wrap(apperrors.CodeUnknownCategory, err.Error(), err)
	}
	return groups, err
}

// SummaryRequest is a cart with its adjustments.
type SummaryRequest struct {
	Entries   []cart.Entry    `json:"entries"`
	Discounts []cart.Discount `json:"discounts"`
	Payments  []cart.Payment  `json:"payments"`
	Totals    cart.Totals     `json:"totals"`
}

// CartSummary computes line subtotals and the balance of a cart.
func (s *Service) CartSummary(req SummaryRequest) (cart.Summary, error) {
	if _, err := s.loaded(); err != nil {
		return cart.Summary{}, err
	}
	for _, entry := range req.Entries {
		if entry.Quantity <= 0 {
			return cart.Summary{}, apperrors.New(apperrors.CodeInvalidRequest, "cart entry quantity must be positive")
		}
	}
	return cart.Summarize(req.Entries, req.Discounts, req.Payments, req.Totals), nil
}

// Settings reads the typed storefront settings.
func (s *Service) Settings() (selector.View, error) {
	state, err := s.loaded()
	if err != nil {
		return selector.View{}, err
	}
	return selector.SettingsView(state.Settings), nil
}

// ServiceInfoRequest describes an order's fulfillment.
type ServiceInfoRequest struct {
	FulfillmentID       string                   `json:"-"`
	Customer            fulfillment.CustomerInfo `json:"customer"`
	Selection           fulfillment.Selection    `json:"selection"`
	SpecialInstructions string                   `json:"special_instructions"`
}

// ServiceInfo renders the service summary table of an order.
func (s *Service) ServiceInfo(req ServiceInfoRequest) ([]fulfillment.Row, error) {
	state, err := s.loaded()
	if err != nil {
		return nil, err
	}
	cfg, ok := state.Fulfillments.Get(strings.TrimSpace(req.FulfillmentID))
	if !ok {
		return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("fulfillment %q not found", req.FulfillmentID))
	}
	loc := time.UTC
	if tz := state.ServerTime.TZ; tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}
	rows, err := fulfillment.ServiceInfo(req.Customer, cfg, req.Selection, req.SpecialInstructions, loc)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidTime, err.Error(), err)
	}
	return rows, nil
}

// ValidateCredit validates and locks a store credit code.
func (s *Service) ValidateCredit(ctx context.Context, code string) (credit.ValidateResponse, error) {
	if s.credit == nil {
		return credit.ValidateResponse{}, apperrors.New(apperrors.CodeCreditUnavailable, "credit validation is not configured")
	}
	return s.credit.Validate(ctx, code)
}
