package cart

import (
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/catalog"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/product"
)

// DiscountMethod identifies how a discount was applied.
type DiscountMethod string

const (
	DiscountCreditCodeAmount DiscountMethod = "CreditCodeAmount"
	DiscountManualAmount     DiscountMethod = "ManualAmount"
	DiscountManualPercentage DiscountMethod = "ManualPercentage"
)

// Discount is an order level discount.
type Discount struct {
	Method     DiscountMethod `json:"t"`
	Code       string         `json:"code,omitempty"`
	Percentage float64        `json:"percentage,omitempty"`
	Amount     catalog.Money  `json:"amount"`
}

// PaymentMethod identifies a tender.
type PaymentMethod string

const (
	PaymentCreditCard  PaymentMethod = "CreditCard"
	PaymentStoreCredit PaymentMethod = "StoreCredit"
	PaymentCash        PaymentMethod = "Cash"
)

// PaymentStatusProposed marks a card payment that has not been captured.
const PaymentStatusProposed = "PROPOSED"

// Payment is a tender applied to the order.
type Payment struct {
	Method         PaymentMethod `json:"t"`
	Status         string        `json:"status,omitempty"`
	Amount         catalog.Money `json:"amount"`
	Last4          string        `json:"last4,omitempty"`
	Code           string        `json:"code,omitempty"`
	AmountTendered catalog.Money `json:"amountTendered"`
}

// Totals carries the server computed order amounts, any of which may be
// absent.
type Totals struct {
	Tax           *catalog.Money `json:"tax,omitempty"`
	Tip           *catalog.Money `json:"tip,omitempty"`
	ServiceCharge *catalog.Money `json:"serviceCharge,omitempty"`
	Total         *catalog.Money `json:"total,omitempty"`
}

// Line is a cart entry with its computed subtotal.
type Line struct {
	Entry    Entry         `json:"entry"`
	Each     string        `json:"each"`
	Subtotal catalog.Money `json:"subtotal"`
	Display  string        `json:"subtotal_display"`
}

// Adjustment is a labeled discount or payment line.
type Adjustment struct {
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

// Summary is the rendered cart table.
type Summary struct {
	Lines       []Line         `json:"lines"`
	Subtotal    catalog.Money  `json:"subtotal"`
	Discounts   []Adjustment   `json:"discounts"`
	Payments    []Adjustment   `json:"payments"`
	Balance     *catalog.Money `json:"balance,omitempty"`
	BalanceText string         `json:"balance_display,omitempty"`
}

// Summarize computes line subtotals, labels discounts and payments, and the
// remaining balance. The balance is only present when a total is known and
// at least one payment was applied.
func Summarize(entries []Entry, discounts []Discount, payments []Payment, totals Totals) Summary {
	var out Summary
	for _, entry := range entries {
		sub := catalog.Money{Currency: entry.Product.Price.Currency, Amount: entry.Product.Price.Amount * int64(entry.Quantity)}
		out.Subtotal.Currency = sub.Currency
		out.Subtotal.Amount += sub.Amount
		out.Lines = append(out.Lines, Line{
			Entry:    entry,
			Each:     product.FormatMoney(entry.Product.Price),
			Subtotal: sub,
			Display:  product.FormatMoney(sub),
		})
	}
	for _, d := range discounts {
		out.Discounts = append(out.Discounts, Adjustment{Label: DiscountLabel(d), Amount: "-" + product.FormatMoney(d.Amount)})
	}
	for _, p := range payments {
		label := PaymentLabel(p)
		if label == "" {
			continue
		}
		out.Payments = append(out.Payments, Adjustment{Label: label, Amount: "-" + product.FormatMoney(p.Amount)})
	}
	if totals.Total != nil && len(payments) > 0 {
		balance := *totals.Total
		for _, p := range payments {
			balance.Amount -= p.Amount.Amount
		}
		out.Balance = &balance
		out.BalanceText = product.FormatMoney(balance)
	}
	return out
}

// DiscountLabel describes a discount line.
func DiscountLabel(d Discount) string {
	switch d.Method {
	case DiscountCreditCodeAmount:
		return "Discount Code Applied (" + d.Code + ")"
	case DiscountManualAmount:
		return product.FormatMoney(d.Amount) + " off"
	case DiscountManualPercentage:
		return product.FormatPercent(d.Percentage) + " off"
	default:
		return "Discount"
	}
}

// PaymentLabel describes a payment line. A proposed card payment has no line.
func PaymentLabel(p Payment) string {
	switch p.Method {
	case PaymentCreditCard:
		if p.Status == PaymentStatusProposed {
			return ""
		}
		if p.Last4 != "" {
			return "Payment received from card ending in: " + p.Last4
		}
		return "Payment received from credit card."
	case PaymentStoreCredit:
		return "Digital Gift Applied (" + p.Code + ")"
	case PaymentCash:
		return "Cash payment of " + product.FormatMoney(p.AmountTendered)
	default:
		return "Payment"
	}
}
