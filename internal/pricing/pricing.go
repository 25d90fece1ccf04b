// Package pricing computes sale prices and invoice breakdowns. All
// functions are pure: the owning account is passed in explicitly and the
// result never depends on who is asking.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shivam-website/gold-shop/internal/model"
)

// RateFor returns the account's per-tola rate for the given material.
func RateFor(material string, owner *model.Account) (decimal.Decimal, error) {
	switch material {
	case model.MaterialGold:
		return owner.GoldRatePerTola, nil
	case model.MaterialSilver:
		return owner.SilverRatePerTola, nil
	default:
		return decimal.Decimal{}, fmt.Errorf("unknown material %q", material)
	}
}

// Price returns the undiscounted price of an item using its owner's rates:
// weight * rate + labor cost. The result is unrounded; callers round at
// display time.
func Price(item *model.Item, owner *model.Account) (decimal.Decimal, error) {
	rate, err := RateFor(item.Material, owner)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return item.WeightTola.Mul(rate).Add(item.LaborCost), nil
}

// Quote is the full invoice breakdown for an item. Callers need all four
// figures, not just the total.
type Quote struct {
	Rate     decimal.Decimal
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Invoice computes the invoice quote for an item with an optional discount.
// The discount must be non-negative and is clamped so the total never goes
// below zero.
func Invoice(item *model.Item, owner *model.Account, discount decimal.Decimal) (*Quote, error) {
	if discount.IsNegative() {
		return nil, fmt.Errorf("discount must not be negative")
	}

	rate, err := RateFor(item.Material, owner)
	if err != nil {
		return nil, err
	}

	subtotal := item.WeightTola.Mul(rate).Add(item.LaborCost)
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return &Quote{
		Rate:     rate,
		Subtotal: subtotal,
		Discount: discount,
		Total:    total,
	}, nil
}
