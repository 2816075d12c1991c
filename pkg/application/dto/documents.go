package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/shopdesk/pkg/domain/entities"
)

// NewQuotation is the input for creating a quotation.
// ValidityDays falls back to the configured default when nil.
type NewQuotation struct {
	Client       entities.Client      `json:"client"`
	Items        []entities.LineInput `json:"items" validate:"required,min=1,dive"`
	ValidityDays *int                 `json:"validity_days" validate:"omitempty,gte=0"`
	Notes        string               `json:"notes"`
	CreatedBy    entities.Actor       `json:"-"`
}

// QuotationUpdate lists the quotation fields to change. A non-nil Items
// replaces every line and recomputes the totals.
type QuotationUpdate struct {
	Client       *entities.Client     `json:"client"`
	Items        []entities.LineInput `json:"items" validate:"omitempty,min=1,dive"`
	ValidityDays *int                 `json:"validity_days" validate:"omitempty,gte=0"`
	Notes        *string              `json:"notes"`
}

// NewInvoice is the input for creating an invoice directly
type NewInvoice struct {
	Client      entities.Client        `json:"client"`
	Items       []entities.LineInput   `json:"items" validate:"required,min=1,dive"`
	PaymentMode entities.PaymentMode   `json:"payment_mode" validate:"required,oneof=cash online bank"`
	Status      entities.InvoiceStatus `json:"status" validate:"omitempty,oneof=pending paid"`
	CreatedBy   entities.Actor         `json:"-"`
	PaidAt      *time.Time             `json:"paid_at"`
}

// OrderLine is one row of an order script: a single-line invoice request
// grouped with its siblings by Ref.
type OrderLine struct {
	Ref         string
	Client      entities.Client
	ProductCode string
	Quantity    entities.Quantity
	Discount    decimal.Decimal
	PaymentMode entities.PaymentMode
	Status      entities.InvoiceStatus
}

// OrderFailure records an order that could not be invoiced
type OrderFailure struct {
	Ref   string
	Error string
}

// ShopReport is a read-only snapshot of every collection
type ShopReport struct {
	GeneratedAt time.Time
	Products    []ProductView
	Logs        []*entities.InventoryLog
	Quotations  []*entities.Quotation
	Invoices    []*entities.Invoice
	Deliveries  []*entities.Delivery
	Failures    []OrderFailure
}

// Summary returns a one-line overview of the report
func (r *ShopReport) Summary() string {
	low := 0
	for _, p := range r.Products {
		if p.StockStatus != entities.InStock {
			low++
		}
	}
	return fmt.Sprintf("%d products (%d low or out of stock), %d ledger entries, %d quotations, %d invoices, %d deliveries, %d failed orders",
		len(r.Products), low, len(r.Logs), len(r.Quotations), len(r.Invoices), len(r.Deliveries), len(r.Failures))
}
