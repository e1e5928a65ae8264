// Package pricing computes cart totals under an explicit, injectable policy.
package pricing

import (
	"github.com/shopspring/decimal"

	"go-storefront/models"
)

// Policy holds the tax and discount parameters applied to a cart. It is a
// plain value so callers can substitute their own rates without touching
// shared state.
type Policy struct {
	DiscountThreshold decimal.Decimal
	DiscountRate      decimal.Decimal
	TaxRate           decimal.Decimal
}

// DefaultPolicy returns the storefront's standard policy: 10% discount on
// subtotals above 50.00, then 5% tax on the discounted base.
func DefaultPolicy() Policy {
	return Policy{
		DiscountThreshold: decimal.NewFromFloat(50.00),
		DiscountRate:      decimal.NewFromFloat(0.10),
		TaxRate:           decimal.NewFromFloat(0.05),
	}
}

// Totals is the derived breakdown for a cart. Values are exact decimals;
// rounding to currency precision is left to the presentation layer.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Compute derives the totals for a set of cart lines.
//
//	subtotal = Σ price×quantity
//	discount = subtotal > threshold ? subtotal×rate : 0
//	tax      = (subtotal − discount) × taxRate
//	total    = (subtotal − discount) + tax
func Compute(items []models.CartItem, p Policy) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}

	discount := decimal.Zero
	if subtotal.GreaterThan(p.DiscountThreshold) {
		discount = subtotal.Mul(p.DiscountRate)
	}

	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(p.TaxRate)

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    taxable.Add(tax),
	}
}

// Rounded is the 2-decimal presentation form of Totals, used in API responses.
type Rounded struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// Round converts exact totals to currency precision.
func (t Totals) Round() Rounded {
	return Rounded{
		Subtotal: t.Subtotal.Round(2).InexactFloat64(),
		Discount: t.Discount.Round(2).InexactFloat64(),
		Tax:      t.Tax.Round(2).InexactFloat64(),
		Total:    t.Total.Round(2).InexactFloat64(),
	}
}
