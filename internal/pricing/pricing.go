// Package pricing computes line and order totals. Every currency value is
// rounded half-up to two decimal places at each step.
package pricing

import (
	"fmt"
	"math"

	"github.com/rookgm/homechef/internal/models"
	"github.com/shopspring/decimal"
)

// ServiceFeeRate is the share of the subtotal charged as service fee
var ServiceFeeRate = decimal.RequireFromString("0.10")

const moneyPlaces = 2

// Line is a priced cart or order line
type Line struct {
	Quantity   int
	ItemPrice  decimal.Decimal
	Total      decimal.Decimal
	Condiments []models.Condiment
}

// Summary aggregates order totals
type Summary struct {
	Subtotal   decimal.Decimal
	ServiceFee decimal.Decimal
	Total      decimal.Decimal
}

// Round2 rounds half-up to two decimal places
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// Money converts a catalog price to decimal. NaN, infinities and negative
// values are coerced to zero.
func Money(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// Quantity coerces a non-positive quantity to one
func Quantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}

// Price prices one line. Every selected condiment must exist in catalog,
// otherwise models.ErrUnknownCondiment is returned.
func Price(basePrice float64, quantity int, selected []string, catalog []models.CatalogCondiment) (Line, error) {
	condiments, err := ValidateCondiments(selected, catalog)
	if err != nil {
		return Line{}, err
	}

	itemPrice := Money(basePrice)
	for _, c := range condiments {
		itemPrice = itemPrice.Add(c.Price)
	}

	qty := Quantity(quantity)

	return Line{
		Quantity:   qty,
		ItemPrice:  itemPrice,
		Total:      Round2(itemPrice.Mul(decimal.NewFromInt(int64(qty)))),
		Condiments: condiments,
	}, nil
}

// ValidateCondiments resolves selected condiment ids against the catalog entry
// and returns snapshots of them.
func ValidateCondiments(selected []string, catalog []models.CatalogCondiment) ([]models.Condiment, error) {
	byID := make(map[string]models.CatalogCondiment, len(catalog))
	for _, c := range catalog {
		byID[c.ID] = c
	}

	condiments := make([]models.Condiment, 0, len(selected))
	for _, id := range selected {
		c, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %q", models.ErrUnknownCondiment, id)
		}
		condiments = append(condiments, models.Condiment{
			ID:    c.ID,
			Name:  c.Name,
			Price: Money(c.Price),
		})
	}

	return condiments, nil
}

// Summarize computes subtotal, service fee and total from line totals
func Summarize(lineTotals ...decimal.Decimal) Summary {
	subtotal := decimal.Zero
	for _, t := range lineTotals {
		subtotal = subtotal.Add(t)
	}
	subtotal = Round2(subtotal)
	fee := Round2(subtotal.Mul(ServiceFeeRate))

	return Summary{
		Subtotal:   subtotal,
		ServiceFee: fee,
		Total:      Round2(subtotal.Add(fee)),
	}
}

// SummarizeItems computes totals over order items
func SummarizeItems(items []models.OrderItem) Summary {
	totals := make([]decimal.Decimal, 0, len(items))
	for _, item := range items {
		totals = append(totals, item.Subtotal)
	}
	return Summarize(totals...)
}
