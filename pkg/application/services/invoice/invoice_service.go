package invoice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vsinha/shopdesk/pkg/application/dto"
	"github.com/vsinha/shopdesk/pkg/application/services/quotation"
	"github.com/vsinha/shopdesk/pkg/application/services/shared"
	"github.com/vsinha/shopdesk/pkg/domain/entities"
	"github.com/vsinha/shopdesk/pkg/domain/repositories"
	"github.com/vsinha/shopdesk/pkg/domain/services"
	"github.com/vsinha/shopdesk/pkg/infrastructure/events"
	"github.com/vsinha/shopdesk/pkg/infrastructure/logging"
)

const module = "invoice"

// StockLedger resolves products and applies all-or-nothing stock batches
type StockLedger interface {
	shared.ProductLookup
	ApplyStockBatch(ctx context.Context, adjustments []dto.StockAdjustment) (*dto.StockBatchResult, error)
}

// QuotationConverter hands out a quotation for conversion and marks it
// converted once the invoice is issued
type QuotationConverter interface {
	ConvertWith(ctx context.Context, id string, issue quotation.ConvertFunc) (*entities.Quotation, error)
}

// DeliverySpawner creates the deliveries of a freshly issued invoice
type DeliverySpawner interface {
	SpawnForInvoice(ctx context.Context, inv *entities.Invoice) ([]*entities.Delivery, error)
}

// Config holds invoice numbering
type Config struct {
	NumberPrefix string
	PhoneRegion  string
}

// Service issues, settles and cancels invoices. Every stock-affecting
// operation runs under mu so a create and a cancel never interleave.
type Service struct {
	mu         sync.Mutex
	repo       repositories.InvoiceRepository
	stock      StockLedger
	quotations QuotationConverter
	deliveries DeliverySpawner
	numbers    *services.DocumentNumberer
	config     Config
	deps       shared.Deps
}

// NewService creates an invoice service
func NewService(
	repo repositories.InvoiceRepository,
	stock StockLedger,
	quotations QuotationConverter,
	deliveries DeliverySpawner,
	config Config,
	deps shared.Deps,
) *Service {
	if config.NumberPrefix == "" {
		config.NumberPrefix = "INV"
	}
	return &Service{
		repo:       repo,
		stock:      stock,
		quotations: quotations,
		deliveries: deliveries,
		numbers:    services.NewDocumentNumberer(config.NumberPrefix),
		config:     config,
		deps:       deps.WithDefaults(),
	}
}

// CreateInvoice issues an invoice directly, debiting stock for every line
// and creating one delivery per line. When the stock debit is rejected
// nothing is stored.
func (s *Service) CreateInvoice(ctx context.Context, req dto.NewInvoice) (inv *entities.Invoice, err error) {
	ctx, span := shared.StartSpan(ctx, module, "CreateInvoice", attribute.Int("items", len(req.Items)))
	defer func() { shared.EndSpan(span, err) }()
	defer s.deps.Metrics.TrackOperation("create_invoice")(time.Now())

	verr := services.ValidateStruct("invoice", req)
	req.Client.Name = strings.TrimSpace(req.Client.Name)
	if req.Client.Name == "" {
		verr.Add("client.name", "required")
	}
	phone, perr := services.NormalizePhone(req.Client.Phone, s.config.PhoneRegion)
	if perr != nil {
		verr.Add("client.phone", "phone")
	}
	req.Client.Phone = phone
	lines, err := shared.BuildLines(ctx, s.stock, req.Items, s.deps.NewID, verr)
	if err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = entities.InvoicePending
	}

	items := make([]entities.InvoiceItem, len(lines))
	for i, l := range lines {
		items[i] = entities.InvoiceItem{LineItem: l.Line, CostPrice: l.Product.CostPrice}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.deps.Clock.Now()
	inv = &entities.Invoice{
		ID:          s.deps.NewID(),
		Client:      req.Client,
		Items:       items,
		PaymentMode: req.PaymentMode,
		Status:      status,
		CreatedBy:   req.CreatedBy.ID,
		CreatedAt:   now,
	}
	inv.Totals = services.DocumentTotals(entities.InvoiceLines(items))
	if status == entities.InvoicePaid {
		paidAt := now
		if req.PaidAt != nil {
			paidAt = *req.PaidAt
		}
		inv.PaidAt = &paidAt
	}

	if err := s.issueLocked(ctx, inv); err != nil {
		return nil, err
	}
	return inv.Clone(), s.spawnLocked(ctx, inv)
}

// ConvertQuotation issues a pending invoice from a sent or accepted quotation.
// Client and totals are copied verbatim and the stock and delivery effects are
// the same as for a direct invoice. If the stock debit is rejected the
// quotation stays unconverted.
func (s *Service) ConvertQuotation(
	ctx context.Context,
	quotationID string,
	paymentMode entities.PaymentMode,
	actor entities.Actor,
) (inv *entities.Invoice, err error) {
	ctx, span := shared.StartSpan(ctx, module, "ConvertQuotation", attribute.String("quotation.id", quotationID))
	defer func() { shared.EndSpan(span, err) }()

	if !paymentMode.Valid() {
		verr := entities.NewValidationError("invoice")
		verr.Add("payment_mode", "oneof")
		return nil, verr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.quotations.ConvertWith(ctx, quotationID, func(q *entities.Quotation) (string, error) {
		items, err := s.snapshotItems(ctx, q.Items)
		if err != nil {
			return "", err
		}

		createdBy := actor.ID
		if createdBy == "" {
			createdBy = q.CreatedBy
		}
		inv = &entities.Invoice{
			ID:          s.deps.NewID(),
			QuotationID: q.ID,
			Client:      q.Client,
			Items:       items,
			Totals:      q.Totals,
			PaymentMode: paymentMode,
			Status:      entities.InvoicePending,
			CreatedBy:   createdBy,
			CreatedAt:   s.deps.Clock.Now(),
		}
		if err := s.issueLocked(ctx, inv); err != nil {
			return "", err
		}
		return inv.ID, nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.Metrics.RecordInvoice("converted")
	return inv.Clone(), s.spawnLocked(ctx, inv)
}

// snapshotItems copies quotation lines onto an invoice, capturing each
// product's current cost. A product that no longer exists costs zero.
func (s *Service) snapshotItems(ctx context.Context, lines []entities.QuotationItem) ([]entities.InvoiceItem, error) {
	items := make([]entities.InvoiceItem, len(lines))
	for i, line := range lines {
		cost := decimal.Zero
		product, err := s.stock.GetProduct(ctx, line.ProductID)
		switch {
		case err == nil:
			cost = product.CostPrice
		case !errors.Is(err, entities.ErrNotFound):
			return nil, fmt.Errorf("failed to resolve product %s: %w", line.ProductID, err)
		}

		item := entities.InvoiceItem{LineItem: line.LineItem, CostPrice: cost}
		item.ID = s.deps.NewID()
		items[i] = item
	}
	return items, nil
}

// issueLocked numbers the invoice, debits its stock and stores it. Callers
// hold mu. A rejected debit consumes the number.
func (s *Service) issueLocked(ctx context.Context, inv *entities.Invoice) error {
	inv.InvoiceNumber = s.numbers.Next()

	actor := entities.Actor{ID: inv.CreatedBy, Name: entities.SystemActorName}
	note := "Invoice " + inv.InvoiceNumber
	debits := make([]dto.StockAdjustment, len(inv.Items))
	for i, item := range inv.Items {
		debits[i] = dto.StockAdjustment{
			ProductID: item.ProductID,
			Change:    -item.Quantity,
			Reason:    entities.ReasonSale,
			Actor:     actor,
			Notes:     note,
		}
	}
	if _, err := s.stock.ApplyStockBatch(ctx, debits); err != nil {
		return fmt.Errorf("failed to debit stock for invoice %s: %w", inv.InvoiceNumber, err)
	}

	if err := s.repo.SaveInvoice(inv); err != nil {
		if rerr := s.reverse(ctx, inv, entities.ReasonAdjustment, note+" voided"); rerr != nil {
			logging.LogError(s.deps.Logger, module, "issueLocked", inv.InvoiceNumber, "reverse debit", rerr)
		}
		return fmt.Errorf("failed to save invoice %s: %w", inv.InvoiceNumber, err)
	}

	s.deps.Publish(module, events.NewInvoiceCreatedEvent(inv))
	s.deps.Metrics.RecordInvoice("created")
	s.deps.Logger.WithFields(logrus.Fields{
		"module":      module,
		"invoice":     inv.InvoiceNumber,
		"quotation":   inv.QuotationID,
		"status":      inv.Status,
		"grand_total": inv.Totals.GrandTotal.StringFixed(2),
	}).Info("invoice issued")
	return nil
}

// spawnLocked creates the deliveries of an issued invoice. The invoice and
// its stock debit stand even when this fails.
func (s *Service) spawnLocked(ctx context.Context, inv *entities.Invoice) error {
	if _, err := s.deliveries.SpawnForInvoice(ctx, inv.Clone()); err != nil {
		logging.LogError(s.deps.Logger, module, "SpawnForInvoice", inv.InvoiceNumber, len(inv.Items), err)
		return fmt.Errorf("invoice %s issued but deliveries failed: %w", inv.InvoiceNumber, err)
	}
	return nil
}

// reverse credits an invoice's quantities back to stock
func (s *Service) reverse(ctx context.Context, inv *entities.Invoice, reason entities.ChangeReason, note string) error {
	actor := entities.Actor{ID: inv.CreatedBy, Name: entities.SystemActorName}
	credits := make([]dto.StockAdjustment, len(inv.Items))
	for i, item := range inv.Items {
		credits[i] = dto.StockAdjustment{
			ProductID: item.ProductID,
			Change:    item.Quantity,
			Reason:    reason,
			Actor:     actor,
			Notes:     note,
		}
	}
	_, err := s.stock.ApplyStockBatch(ctx, credits)
	return err
}

// CancelInvoice returns an invoice's stock and marks it cancelled. Cancelling
// an already cancelled invoice changes nothing.
func (s *Service) CancelInvoice(ctx context.Context, id string) (inv *entities.Invoice, err error) {
	ctx, span := shared.StartSpan(ctx, module, "CancelInvoice", attribute.String("invoice.id", id))
	defer func() { shared.EndSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	inv, err = s.repo.GetInvoice(id)
	if err != nil {
		return nil, err
	}
	if inv.IsCancelled() {
		return inv, nil
	}

	if err := s.reverse(ctx, inv, entities.ReasonReturn, "Invoice "+inv.InvoiceNumber+" cancelled"); err != nil {
		return nil, fmt.Errorf("failed to return stock for invoice %s: %w", inv.InvoiceNumber, err)
	}

	from := inv.Status
	now := s.deps.Clock.Now()
	inv.Status = entities.InvoiceCancelled
	inv.CancelledAt = &now
	if err := s.repo.UpdateInvoice(inv); err != nil {
		return nil, fmt.Errorf("failed to update invoice %s: %w", inv.InvoiceNumber, err)
	}

	s.deps.Publish(module, events.NewInvoiceCancelledEvent(inv, from, now))
	s.deps.Metrics.RecordInvoice("cancelled")
	s.deps.Logger.WithFields(logrus.Fields{
		"module":  module,
		"invoice": inv.InvoiceNumber,
		"from":    from,
	}).Info("invoice cancelled")

	return inv.Clone(), nil
}

// MarkPaid settles a pending invoice. A zero at means now.
func (s *Service) MarkPaid(ctx context.Context, id string, at time.Time) (inv *entities.Invoice, err error) {
	_, span := shared.StartSpan(ctx, module, "MarkPaid", attribute.String("invoice.id", id))
	defer func() { shared.EndSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	inv, err = s.repo.GetInvoice(id)
	if err != nil {
		return nil, err
	}
	if inv.Status != entities.InvoicePending {
		return nil, &entities.InvalidTransitionError{
			Entity: "invoice",
			ID:     id,
			From:   string(inv.Status),
			To:     string(entities.InvoicePaid),
		}
	}

	if at.IsZero() {
		at = s.deps.Clock.Now()
	}
	inv.Status = entities.InvoicePaid
	inv.PaidAt = &at
	if err := s.repo.UpdateInvoice(inv); err != nil {
		return nil, fmt.Errorf("failed to update invoice %s: %w", inv.InvoiceNumber, err)
	}

	s.deps.Publish(module, events.NewInvoicePaidEvent(inv))
	s.deps.Metrics.RecordInvoice("paid")
	return inv.Clone(), nil
}

// GetInvoice returns the invoice with the given id
func (s *Service) GetInvoice(ctx context.Context, id string) (*entities.Invoice, error) {
	return s.repo.GetInvoice(id)
}

// GetByNumber returns the invoice with the given number
func (s *Service) GetByNumber(ctx context.Context, number string) (*entities.Invoice, error) {
	return s.repo.GetInvoiceByNumber(number)
}

// ListInvoices returns every invoice in creation order
func (s *Service) ListInvoices(ctx context.Context) ([]*entities.Invoice, error) {
	return s.repo.GetAllInvoices()
}

func (s *Service) ListByStatus(ctx context.Context, status entities.InvoiceStatus) ([]*entities.Invoice, error) {
	all, err := s.repo.GetAllInvoices()
	if err != nil {
		return nil, err
	}
	var matched []*entities.Invoice
	for _, inv := range all {
		if inv.Status == status {
			matched = append(matched, inv)
		}
	}
	return matched, nil
}
