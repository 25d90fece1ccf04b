package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/shivam-website/gold-shop/internal/model"
	"github.com/shivam-website/gold-shop/internal/money"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("NewFromString(%q): %v", s, err)
	}
	return d
}

func testOwner(t *testing.T) *model.Account {
	t.Helper()
	return &model.Account{
		ID:                1,
		ShopName:          "Test Shop",
		GoldRatePerTola:   dec(t, "70000"),
		SilverRatePerTola: dec(t, "1000"),
	}
}

func TestPriceGold(t *testing.T) {
	owner := testOwner(t)
	item := &model.Item{
		WeightTola: dec(t, "2.5"),
		Material:   model.MaterialGold,
		LaborCost:  dec(t, "500"),
	}

	price, err := Price(item, owner)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	// 2.5 * 70000 + 500 = 175500.00
	if got := money.Format(price); got != "175500.00" {
		t.Errorf("expected price 175500.00, got %s", got)
	}
}

func TestPriceSilver(t *testing.T) {
	owner := testOwner(t)
	item := &model.Item{
		WeightTola: dec(t, "10"),
		Material:   model.MaterialSilver,
		LaborCost:  dec(t, "250"),
	}

	price, err := Price(item, owner)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if got := money.Format(price); got != "10250.00" {
		t.Errorf("expected price 10250.00, got %s", got)
	}
}

func TestPriceUnknownMaterial(t *testing.T) {
	owner := testOwner(t)
	item := &model.Item{
		WeightTola: dec(t, "1"),
		Material:   "platinum",
		LaborCost:  dec(t, "0"),
	}

	if _, err := Price(item, owner); err == nil {
		t.Error("expected error for unknown material")
	}
}

func TestPriceMonotonicInWeight(t *testing.T) {
	owner := testOwner(t)
	prev := decimal.Zero
	for _, w := range []string{"0.1", "0.5", "1", "2.5", "10"} {
		item := &model.Item{
			WeightTola: dec(t, w),
			Material:   model.MaterialGold,
			LaborCost:  dec(t, "500"),
		}
		price, err := Price(item, owner)
		if err != nil {
			t.Fatalf("Price(weight=%s): %v", w, err)
		}
		if !price.GreaterThan(prev) {
			t.Errorf("price not increasing at weight %s: %s <= %s", w, price, prev)
		}
		prev = price
	}
}

func TestPriceMonotonicInLaborCost(t *testing.T) {
	owner := testOwner(t)
	prev := decimal.Zero
	for _, lc := range []string{"0", "100", "500", "1234.56"} {
		item := &model.Item{
			WeightTola: dec(t, "1"),
			Material:   model.MaterialSilver,
			LaborCost:  dec(t, lc),
		}
		price, err := Price(item, owner)
		if err != nil {
			t.Fatalf("Price(labor=%s): %v", lc, err)
		}
		if !price.GreaterThan(prev) {
			t.Errorf("price not increasing at labor cost %s: %s <= %s", lc, price, prev)
		}
		prev = price
	}
}

func TestInvoiceBreakdown(t *testing.T) {
	owner := testOwner(t)
	item := &model.Item{
		WeightTola: dec(t, "2.5"),
		Material:   model.MaterialGold,
		LaborCost:  dec(t, "500"),
	}

	quote, err := Invoice(item, owner, dec(t, "1000"))
	if err != nil {
		t.Fatalf("Invoice: %v", err)
	}
	if got := money.Format(quote.Rate); got != "70000.00" {
		t.Errorf("expected rate 70000.00, got %s", got)
	}
	if got := money.Format(quote.Subtotal); got != "175500.00" {
		t.Errorf("expected subtotal 175500.00, got %s", got)
	}
	if got := money.Format(quote.Discount); got != "1000.00" {
		t.Errorf("expected discount 1000.00, got %s", got)
	}
	if got := money.Format(quote.Total); got != "174500.00" {
		t.Errorf("expected total 174500.00, got %s", got)
	}
}

func TestInvoiceZeroDiscount(t *testing.T) {
	owner := testOwner(t)
	item := &model.Item{
		WeightTola: dec(t, "2.5"),
		Material:   model.MaterialGold,
		LaborCost:  dec(t, "500"),
	}

	quote, err := Invoice(item, owner, decimal.Zero)
	if err != nil {
		t.Fatalf("Invoice: %v", err)
	}
	if !quote.Total.Equal(quote.Subtotal) {
		t.Errorf("expected total == subtotal with zero discount, got %s and %s", quote.Total, quote.Subtotal)
	}
}

func TestInvoiceClampsAtZero(t *testing.T) {
	owner := testOwner(t)
	item := &model.Item{
		WeightTola: dec(t, "0.01"),
		Material:   model.MaterialSilver,
		LaborCost:  dec(t, "10"),
	}

	quote, err := Invoice(item, owner, dec(t, "999999"))
	if err != nil {
		t.Fatalf("Invoice: %v", err)
	}
	if !quote.Total.IsZero() {
		t.Errorf("expected total clamped to 0, got %s", quote.Total)
	}
	// The breakdown still shows the requested discount.
	if got := money.Format(quote.Discount); got != "999999.00" {
		t.Errorf("expected discount 999999.00, got %s", got)
	}
}

func TestInvoiceNegativeDiscountRejected(t *testing.T) {
	owner := testOwner(t)
	item := &model.Item{
		WeightTola: dec(t, "1"),
		Material:   model.MaterialGold,
		LaborCost:  dec(t, "0"),
	}

	if _, err := Invoice(item, owner, dec(t, "-5")); err == nil {
		t.Error("expected error for negative discount")
	}
}

func TestInvoiceNeverNegative(t *testing.T) {
	owner := testOwner(t)
	item := &model.Item{
		WeightTola: dec(t, "1"),
		Material:   model.MaterialGold,
		LaborCost:  dec(t, "500"),
	}

	for _, d := range []string{"0", "500", "70500", "70501", "1000000"} {
		quote, err := Invoice(item, owner, dec(t, d))
		if err != nil {
			t.Fatalf("Invoice(discount=%s): %v", d, err)
		}
		if quote.Total.IsNegative() {
			t.Errorf("total negative for discount %s: %s", d, quote.Total)
		}
	}
}
