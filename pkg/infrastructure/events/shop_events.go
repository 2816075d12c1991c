package events

import (
	"time"

	"github.com/vsinha/shopdesk/pkg/domain/entities"
)

const (
	ProductCreatedEvent  = "product.created"
	ProductUpdatedEvent  = "product.updated"
	ProductArchivedEvent = "product.archived"

	StockAdjustedEvent = "stock.adjusted"

	QuotationCreatedEvent       = "quotation.created"
	QuotationUpdatedEvent       = "quotation.updated"
	QuotationStatusChangedEvent = "quotation.status_changed"

	InvoiceCreatedEvent   = "invoice.created"
	InvoicePaidEvent      = "invoice.paid"
	InvoiceCancelledEvent = "invoice.cancelled"

	DeliveryCreatedEvent        = "delivery.created"
	DeliveryStageAdvancedEvent  = "delivery.stage_advanced"
	DeliveryPersonAssignedEvent = "delivery.person_assigned"
)

type ProductCreated struct {
	ProductID   string               `json:"product_id"`
	ProductCode string               `json:"product_code"`
	Barcode     string               `json:"barcode"`
	Name        string               `json:"name"`
	Type        entities.ProductType `json:"type"`
}

type ProductUpdated struct {
	ProductID string   `json:"product_id"`
	Fields    []string `json:"fields"`
}

type ProductArchived struct {
	ProductID   string `json:"product_id"`
	ProductCode string `json:"product_code"`
}

type StockAdjusted struct {
	LogID         string                `json:"log_id"`
	ProductID     string                `json:"product_id"`
	ProductCode   string                `json:"product_code"`
	Change        entities.Quantity     `json:"change"`
	Reason        entities.ChangeReason `json:"reason"`
	QuantityAfter entities.Quantity     `json:"quantity_after"`
}

type QuotationCreated struct {
	QuotationID     string `json:"quotation_id"`
	QuotationNumber string `json:"quotation_number"`
	GrandTotal      string `json:"grand_total"`
}

type QuotationUpdated struct {
	QuotationID  string `json:"quotation_id"`
	ItemsChanged bool   `json:"items_changed"`
}

type QuotationStatusChanged struct {
	QuotationID string                   `json:"quotation_id"`
	From        entities.QuotationStatus `json:"from"`
	To          entities.QuotationStatus `json:"to"`
	InvoiceID   string                   `json:"invoice_id,omitempty"`
}

type InvoiceCreated struct {
	InvoiceID     string                 `json:"invoice_id"`
	InvoiceNumber string                 `json:"invoice_number"`
	QuotationID   string                 `json:"quotation_id,omitempty"`
	Status        entities.InvoiceStatus `json:"status"`
	GrandTotal    string                 `json:"grand_total"`
	Items         int                    `json:"items"`
}

type InvoicePaid struct {
	InvoiceID     string    `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	PaidAt        time.Time `json:"paid_at"`
}

type InvoiceCancelled struct {
	InvoiceID     string                 `json:"invoice_id"`
	InvoiceNumber string                 `json:"invoice_number"`
	From          entities.InvoiceStatus `json:"from"`
}

type DeliveryCreated struct {
	DeliveryID  string            `json:"delivery_id"`
	InvoiceID   string            `json:"invoice_id"`
	ProductCode string            `json:"product_code"`
	Quantity    entities.Quantity `json:"quantity"`
}

type DeliveryStageAdvanced struct {
	DeliveryID string                  `json:"delivery_id"`
	From       entities.DeliveryStage  `json:"from"`
	To         entities.DeliveryStage  `json:"to"`
	Status     entities.DeliveryStatus `json:"status"`
	UpdatedBy  string                  `json:"updated_by"`
}

type DeliveryPersonAssigned struct {
	DeliveryID string                  `json:"delivery_id"`
	Person     entities.DeliveryPerson `json:"person"`
}

func NewProductCreatedEvent(p *entities.Product, at time.Time) Event {
	return NewEvent(ProductCreatedEvent, p.ID, ProductCreated{
		ProductID:   p.ID,
		ProductCode: p.ProductCode,
		Barcode:     p.Barcode,
		Name:        p.Name,
		Type:        p.Type(),
	}, at)
}

func NewProductUpdatedEvent(productID string, fields []string, at time.Time) Event {
	return NewEvent(ProductUpdatedEvent, productID, ProductUpdated{ProductID: productID, Fields: fields}, at)
}

func NewProductArchivedEvent(p *entities.Product, at time.Time) Event {
	return NewEvent(ProductArchivedEvent, p.ID, ProductArchived{ProductID: p.ID, ProductCode: p.ProductCode}, at)
}

func NewStockAdjustedEvent(log *entities.InventoryLog, quantityAfter entities.Quantity) Event {
	return NewEvent(StockAdjustedEvent, log.ProductID, StockAdjusted{
		LogID:         log.ID,
		ProductID:     log.ProductID,
		ProductCode:   log.ProductCode,
		Change:        log.Change,
		Reason:        log.Reason,
		QuantityAfter: quantityAfter,
	}, log.Timestamp)
}

func NewQuotationCreatedEvent(q *entities.Quotation) Event {
	return NewEvent(QuotationCreatedEvent, q.ID, QuotationCreated{
		QuotationID:     q.ID,
		QuotationNumber: q.QuotationNumber,
		GrandTotal:      q.Totals.GrandTotal.StringFixed(2),
	}, q.CreatedAt)
}

func NewQuotationUpdatedEvent(q *entities.Quotation, itemsChanged bool) Event {
	return NewEvent(QuotationUpdatedEvent, q.ID, QuotationUpdated{
		QuotationID:  q.ID,
		ItemsChanged: itemsChanged,
	}, q.UpdatedAt)
}

func NewQuotationStatusChangedEvent(q *entities.Quotation, from entities.QuotationStatus) Event {
	return NewEvent(QuotationStatusChangedEvent, q.ID, QuotationStatusChanged{
		QuotationID: q.ID,
		From:        from,
		To:          q.Status,
		InvoiceID:   q.ConvertedInvoiceID,
	}, q.UpdatedAt)
}

func NewInvoiceCreatedEvent(inv *entities.Invoice) Event {
	return NewEvent(InvoiceCreatedEvent, inv.ID, InvoiceCreated{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		QuotationID:   inv.QuotationID,
		Status:        inv.Status,
		GrandTotal:    inv.Totals.GrandTotal.StringFixed(2),
		Items:         len(inv.Items),
	}, inv.CreatedAt)
}

func NewInvoicePaidEvent(inv *entities.Invoice) Event {
	var paidAt time.Time
	if inv.PaidAt != nil {
		paidAt = *inv.PaidAt
	}
	return NewEvent(InvoicePaidEvent, inv.ID, InvoicePaid{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		PaidAt:        paidAt,
	}, paidAt)
}

func NewInvoiceCancelledEvent(inv *entities.Invoice, from entities.InvoiceStatus, at time.Time) Event {
	return NewEvent(InvoiceCancelledEvent, inv.ID, InvoiceCancelled{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		From:          from,
	}, at)
}

func NewDeliveryCreatedEvent(d *entities.Delivery) Event {
	return NewEvent(DeliveryCreatedEvent, d.ID, DeliveryCreated{
		DeliveryID:  d.ID,
		InvoiceID:   d.InvoiceID,
		ProductCode: d.ProductCode,
		Quantity:    d.Quantity,
	}, d.CreatedAt)
}

func NewDeliveryStageAdvancedEvent(d *entities.Delivery, from entities.DeliveryStage, event entities.DeliveryTrackingEvent) Event {
	return NewEvent(DeliveryStageAdvancedEvent, d.ID, DeliveryStageAdvanced{
		DeliveryID: d.ID,
		From:       from,
		To:         d.CurrentStage,
		Status:     d.Status,
		UpdatedBy:  event.UpdatedBy,
	}, event.Timestamp)
}

func NewDeliveryPersonAssignedEvent(d *entities.Delivery, at time.Time) Event {
	var person entities.DeliveryPerson
	if d.DeliveryPerson != nil {
		person = *d.DeliveryPerson
	}
	return NewEvent(DeliveryPersonAssignedEvent, d.ID, DeliveryPersonAssigned{
		DeliveryID: d.ID,
		Person:     person,
	}, at)
}
