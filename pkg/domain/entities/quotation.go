package entities

import (
	"time"
)

// QuotationStatus represents where a quotation is in its lifecycle
type QuotationStatus string

const (
	QuotationDraft     QuotationStatus = "draft"
	QuotationSent      QuotationStatus = "sent"
	QuotationAccepted  QuotationStatus = "accepted"
	QuotationRejected  QuotationStatus = "rejected"
	QuotationConverted QuotationStatus = "converted"
)

var quotationTransitions = map[QuotationStatus][]QuotationStatus{
	QuotationDraft:    {QuotationSent},
	QuotationSent:     {QuotationAccepted, QuotationRejected, QuotationConverted},
	QuotationAccepted: {QuotationConverted},
}

// Valid reports whether the status is known
func (s QuotationStatus) Valid() bool {
	switch s {
	case QuotationDraft, QuotationSent, QuotationAccepted, QuotationRejected, QuotationConverted:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether moving from s to next is allowed
func (s QuotationStatus) CanTransitionTo(next QuotationStatus) bool {
	for _, allowed := range quotationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsEditable reports whether the quotation content may still change
func (s QuotationStatus) IsEditable() bool {
	return s == QuotationDraft || s == QuotationSent
}

// IsConvertible reports whether an invoice can be produced from the quotation
func (s QuotationStatus) IsConvertible() bool {
	return s.CanTransitionTo(QuotationConverted)
}

// Quotation is a priced offer to a client
type Quotation struct {
	ID                 string
	QuotationNumber    string
	Client             Client
	Items              []QuotationItem
	Totals             Totals
	Status             QuotationStatus
	ValidUntil         time.Time
	Notes              string
	CreatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	ConvertedInvoiceID string
}

// IsExpired reports whether the validity deadline has passed at now
func (q *Quotation) IsExpired(now time.Time) bool {
	return now.After(q.ValidUntil)
}

// Clone returns a deep copy of the quotation
func (q *Quotation) Clone() *Quotation {
	if q == nil {
		return nil
	}
	c := *q
	c.Items = append([]QuotationItem(nil), q.Items...)
	return &c
}
