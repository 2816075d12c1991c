package entities

import (
	"time"
)

// PaymentMode is how the client settles an invoice
type PaymentMode string

const (
	PaymentCash   PaymentMode = "cash"
	PaymentOnline PaymentMode = "online"
	PaymentBank   PaymentMode = "bank"
)

// Valid reports whether the payment mode is known
func (m PaymentMode) Valid() bool {
	return m == PaymentCash || m == PaymentOnline || m == PaymentBank
}

// InvoiceStatus represents where an invoice is in its lifecycle
type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "pending"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// Valid reports whether the status is known
func (s InvoiceStatus) Valid() bool {
	return s == InvoicePending || s == InvoicePaid || s == InvoiceCancelled
}

// Invoice is a bill issued to a client. Client fields are a snapshot and do
// not follow later edits of the originating quotation.
type Invoice struct {
	ID            string
	InvoiceNumber string
	QuotationID   string
	Client        Client
	Items         []InvoiceItem
	Totals        Totals
	PaymentMode   PaymentMode
	Status        InvoiceStatus
	CreatedBy     string
	CreatedAt     time.Time
	PaidAt        *time.Time
	CancelledAt   *time.Time
}

// IsCancelled reports whether the invoice stock effects have been reversed
func (inv *Invoice) IsCancelled() bool {
	return inv.Status == InvoiceCancelled
}

// Clone returns a deep copy of the invoice
func (inv *Invoice) Clone() *Invoice {
	if inv == nil {
		return nil
	}
	c := *inv
	c.Items = append([]InvoiceItem(nil), inv.Items...)
	c.PaidAt = cloneTime(inv.PaidAt)
	c.CancelledAt = cloneTime(inv.CancelledAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
