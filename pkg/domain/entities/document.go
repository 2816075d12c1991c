package entities

import (
	"github.com/shopspring/decimal"
)

// Client holds the contact fields copied onto quotations and invoices
type Client struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// LineInput is a caller-supplied request for one line of a document.
// UnitPrice defaults to the product's selling price when nil.
type LineInput struct {
	ProductID string           `json:"product_id" validate:"required"`
	Quantity  Quantity         `json:"quantity" validate:"gte=1"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal  `json:"discount"`
}

// LineItem is one priced product row of a quotation or invoice
type LineItem struct {
	ID          string
	ProductID   string
	ProductCode string
	ProductName string
	Quantity    Quantity
	UnitPrice   decimal.Decimal
	TaxPercent  decimal.Decimal
	Discount    decimal.Decimal // percent
	LineTotal   decimal.Decimal
}

// QuotationItem is a line of a quotation
type QuotationItem struct {
	LineItem
}

// InvoiceItem is a line of an invoice. CostPrice is the product cost at the
// time of sale and is never looked up again.
type InvoiceItem struct {
	LineItem
	CostPrice decimal.Decimal
}

// Totals are the aggregate amounts of a document
type Totals struct {
	Subtotal      decimal.Decimal
	TotalDiscount decimal.Decimal
	TotalTax      decimal.Decimal
	GrandTotal    decimal.Decimal
}

// QuotationLines returns the priced lines of quotation items
func QuotationLines(items []QuotationItem) []LineItem {
	lines := make([]LineItem, len(items))
	for i, item := range items {
		lines[i] = item.LineItem
	}
	return lines
}

// InvoiceLines returns the priced lines of invoice items
func InvoiceLines(items []InvoiceItem) []LineItem {
	lines := make([]LineItem, len(items))
	for i, item := range items {
		lines[i] = item.LineItem
	}
	return lines
}
