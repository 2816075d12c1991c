package services

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/shopdesk/pkg/domain/entities"
)

var hundred = decimal.NewFromInt(100)

// LineAmounts holds every intermediate amount of a line computation
type LineAmounts struct {
	RawSubtotal    decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableAmount  decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// ComputeLine prices one line. Discount is taken off the raw subtotal before
// tax is applied; the order of operations is fixed.
func ComputeLine(quantity entities.Quantity, unitPrice, taxPercent, discountPercent decimal.Decimal) LineAmounts {
	raw := decimal.NewFromInt(int64(quantity)).Mul(unitPrice)
	discount := raw.Mul(discountPercent.Div(hundred))
	taxable := raw.Sub(discount)
	tax := taxable.Mul(taxPercent.Div(hundred))

	return LineAmounts{
		RawSubtotal:    raw,
		DiscountAmount: discount,
		TaxableAmount:  taxable,
		TaxAmount:      tax,
		Total:          taxable.Add(tax),
	}
}

// LineTotal returns the total of one line
func LineTotal(quantity entities.Quantity, unitPrice, taxPercent, discountPercent decimal.Decimal) decimal.Decimal {
	return ComputeLine(quantity, unitPrice, taxPercent, discountPercent).Total
}

// PriceLine stamps the line total computed from the line's own inputs
func PriceLine(line *entities.LineItem) {
	line.LineTotal = LineTotal(line.Quantity, line.UnitPrice, line.TaxPercent, line.Discount)
}

// DocumentTotals recomputes the aggregates of a document from all of its
// lines. Stored line totals are not trusted.
func DocumentTotals(lines []entities.LineItem) entities.Totals {
	totals := entities.Totals{
		Subtotal:      decimal.Zero,
		TotalDiscount: decimal.Zero,
		TotalTax:      decimal.Zero,
	}

	for _, line := range lines {
		amounts := ComputeLine(line.Quantity, line.UnitPrice, line.TaxPercent, line.Discount)
		totals.Subtotal = totals.Subtotal.Add(amounts.RawSubtotal)
		totals.TotalDiscount = totals.TotalDiscount.Add(amounts.DiscountAmount)
		totals.TotalTax = totals.TotalTax.Add(amounts.TaxAmount)
	}

	totals.GrandTotal = totals.Subtotal.Sub(totals.TotalDiscount).Add(totals.TotalTax)
	return totals
}

// ValidPercent reports whether p lies in [0, 100]
func ValidPercent(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(hundred)
}
