package quotation

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vsinha/shopdesk/pkg/application/dto"
	"github.com/vsinha/shopdesk/pkg/application/services/shared"
	"github.com/vsinha/shopdesk/pkg/domain/entities"
	"github.com/vsinha/shopdesk/pkg/domain/repositories"
	"github.com/vsinha/shopdesk/pkg/domain/services"
	"github.com/vsinha/shopdesk/pkg/infrastructure/events"
)

const module = "quotation"

// Config holds quotation numbering and defaults
type Config struct {
	NumberPrefix        string
	DefaultValidityDays int
	PhoneRegion         string
}

// Service owns quotations and their status machine
type Service struct {
	mu       sync.Mutex
	repo     repositories.QuotationRepository
	products shared.ProductLookup
	numbers  *services.DocumentNumberer
	config   Config
	deps     shared.Deps
}

// NewService creates a quotation service
func NewService(
	repo repositories.QuotationRepository,
	products shared.ProductLookup,
	config Config,
	deps shared.Deps,
) *Service {
	if config.NumberPrefix == "" {
		config.NumberPrefix = "QT"
	}
	return &Service{
		repo:     repo,
		products: products,
		numbers:  services.NewDocumentNumberer(config.NumberPrefix),
		config:   config,
		deps:     deps.WithDefaults(),
	}
}

// CreateQuotation prices the requested lines and stores a draft quotation
func (s *Service) CreateQuotation(ctx context.Context, req dto.NewQuotation) (q *entities.Quotation, err error) {
	ctx, span := shared.StartSpan(ctx, module, "CreateQuotation", attribute.Int("items", len(req.Items)))
	defer func() { shared.EndSpan(span, err) }()

	verr := services.ValidateStruct("quotation", req)
	client := s.checkClient(req.Client, "client", verr)
	lines, err := shared.BuildLines(ctx, s.products, req.Items, s.deps.NewID, verr)
	if err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	validity := s.config.DefaultValidityDays
	if req.ValidityDays != nil {
		validity = *req.ValidityDays
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.deps.Clock.Now()
	q = &entities.Quotation{
		ID:              s.deps.NewID(),
		QuotationNumber: s.numbers.Next(),
		Client:          client,
		Items:           quotationItems(lines),
		Status:          entities.QuotationDraft,
		ValidUntil:      now.AddDate(0, 0, validity),
		Notes:           req.Notes,
		CreatedBy:       req.CreatedBy.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	q.Totals = services.DocumentTotals(entities.QuotationLines(q.Items))

	if err := s.repo.SaveQuotation(q); err != nil {
		return nil, fmt.Errorf("failed to save quotation: %w", err)
	}

	s.deps.Publish(module, events.NewQuotationCreatedEvent(q))
	s.deps.Metrics.RecordQuotation("created")
	s.deps.Logger.WithFields(logrus.Fields{
		"module":      module,
		"quotation":   q.QuotationNumber,
		"grand_total": q.Totals.GrandTotal.StringFixed(2),
	}).Info("quotation created")

	return q.Clone(), nil
}

// checkClient validates what the tags cannot express and normalises the phone
func (s *Service) checkClient(client entities.Client, prefix string, verr *entities.ValidationError) entities.Client {
	client.Name = strings.TrimSpace(client.Name)
	client.Email = strings.TrimSpace(client.Email)

	if client.Name == "" {
		verr.Add(prefix+".name", "required")
	}
	if client.Email == "" {
		verr.Add(prefix+".email", "required")
	}
	phone, err := services.NormalizePhone(client.Phone, s.config.PhoneRegion)
	if err != nil {
		verr.Add(prefix+".phone", "phone")
	} else {
		client.Phone = phone
	}
	return client
}

func quotationItems(lines []shared.PricedLine) []entities.QuotationItem {
	items := make([]entities.QuotationItem, len(lines))
	for i, l := range lines {
		items[i] = entities.QuotationItem{LineItem: l.Line}
	}
	return items
}

// UpdateQuotation merges the update into a draft or sent quotation. When
// items are replaced every aggregate is recomputed from the new item set.
func (s *Service) UpdateQuotation(ctx context.Context, id string, update dto.QuotationUpdate) (q *entities.Quotation, err error) {
	ctx, span := shared.StartSpan(ctx, module, "UpdateQuotation", attribute.String("quotation.id", id))
	defer func() { shared.EndSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	q, err = s.repo.GetQuotation(id)
	if err != nil {
		return nil, err
	}
	if !q.Status.IsEditable() {
		return nil, &entities.InvalidTransitionError{Entity: "quotation", ID: id, From: string(q.Status), To: "updated"}
	}

	verr := services.ValidateStruct("quotation", update)
	if update.Client != nil {
		q.Client = s.checkClient(*update.Client, "client", verr)
	}

	itemsChanged := update.Items != nil
	if itemsChanged {
		if len(update.Items) == 0 {
			verr.Add("items", "min")
		}
		lines, err := shared.BuildLines(ctx, s.products, update.Items, s.deps.NewID, verr)
		if err != nil {
			return nil, err
		}
		q.Items = quotationItems(lines)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	now := s.deps.Clock.Now()
	if update.ValidityDays != nil {
		q.ValidUntil = now.AddDate(0, 0, *update.ValidityDays)
	}
	if update.Notes != nil {
		q.Notes = *update.Notes
	}
	if itemsChanged {
		q.Totals = services.DocumentTotals(entities.QuotationLines(q.Items))
	}
	q.UpdatedAt = now

	if err := s.repo.UpdateQuotation(q); err != nil {
		return nil, fmt.Errorf("failed to update quotation %s: %w", id, err)
	}

	s.deps.Publish(module, events.NewQuotationUpdatedEvent(q, itemsChanged))
	s.deps.Metrics.RecordQuotation("updated")
	return q.Clone(), nil
}

// Send moves a draft quotation to sent
func (s *Service) Send(ctx context.Context, id string) (*entities.Quotation, error) {
	return s.TransitionStatus(ctx, id, entities.QuotationSent)
}

// Accept records the client's acceptance of a sent quotation
func (s *Service) Accept(ctx context.Context, id string) (*entities.Quotation, error) {
	return s.TransitionStatus(ctx, id, entities.QuotationAccepted)
}

// Reject records the client's refusal of a sent quotation
func (s *Service) Reject(ctx context.Context, id string) (*entities.Quotation, error) {
	return s.TransitionStatus(ctx, id, entities.QuotationRejected)
}

// TransitionStatus moves a quotation along its status machine. Converted is
// reachable only through ConvertWith.
func (s *Service) TransitionStatus(ctx context.Context, id string, next entities.QuotationStatus) (q *entities.Quotation, err error) {
	_, span := shared.StartSpan(ctx, module, "TransitionStatus",
		attribute.String("quotation.id", id), attribute.String("quotation.status", string(next)))
	defer func() { shared.EndSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	q, err = s.repo.GetQuotation(id)
	if err != nil {
		return nil, err
	}
	if next == entities.QuotationConverted || !q.Status.CanTransitionTo(next) {
		return nil, &entities.InvalidTransitionError{Entity: "quotation", ID: id, From: string(q.Status), To: string(next)}
	}

	from := q.Status
	q.Status = next
	q.UpdatedAt = s.deps.Clock.Now()
	if err := s.repo.UpdateQuotation(q); err != nil {
		return nil, fmt.Errorf("failed to update quotation %s: %w", id, err)
	}

	s.deps.Publish(module, events.NewQuotationStatusChangedEvent(q, from))
	s.deps.Metrics.RecordQuotation(string(next))
	s.deps.Logger.WithFields(logrus.Fields{
		"module":    module,
		"quotation": q.QuotationNumber,
		"from":      from,
		"to":        next,
	}).Info("quotation status changed")

	return q.Clone(), nil
}

// ConvertFunc issues the invoice for a quotation and returns its id
type ConvertFunc func(q *entities.Quotation) (invoiceID string, err error)

// ConvertWith marks a sent or accepted quotation converted once issue has
// succeeded. The quotation stays locked while issue runs, so a quotation is
// never converted twice. If issue fails the quotation is left unchanged.
func (s *Service) ConvertWith(ctx context.Context, id string, issue ConvertFunc) (q *entities.Quotation, err error) {
	_, span := shared.StartSpan(ctx, module, "ConvertWith", attribute.String("quotation.id", id))
	defer func() { shared.EndSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	q, err = s.repo.GetQuotation(id)
	if err != nil {
		return nil, err
	}
	if !q.Status.IsConvertible() {
		return nil, &entities.InvalidTransitionError{Entity: "quotation", ID: id, From: string(q.Status), To: string(entities.QuotationConverted)}
	}

	invoiceID, err := issue(q.Clone())
	if err != nil {
		return nil, err
	}

	from := q.Status
	q.Status = entities.QuotationConverted
	q.ConvertedInvoiceID = invoiceID
	q.UpdatedAt = s.deps.Clock.Now()
	if err := s.repo.UpdateQuotation(q); err != nil {
		return nil, fmt.Errorf("failed to mark quotation %s converted: %w", id, err)
	}

	s.deps.Publish(module, events.NewQuotationStatusChangedEvent(q, from))
	s.deps.Metrics.RecordQuotation(string(entities.QuotationConverted))
	return q.Clone(), nil
}

// IsExpired reports whether the quotation's validity has passed
func (s *Service) IsExpired(q *entities.Quotation) bool {
	return q.IsExpired(s.deps.Clock.Now())
}

// GetQuotation returns the quotation with the given id
func (s *Service) GetQuotation(ctx context.Context, id string) (*entities.Quotation, error) {
	return s.repo.GetQuotation(id)
}

// GetByNumber returns the quotation with the given number
func (s *Service) GetByNumber(ctx context.Context, number string) (*entities.Quotation, error) {
	return s.repo.GetQuotationByNumber(number)
}

// ListQuotations returns every quotation in creation order
func (s *Service) ListQuotations(ctx context.Context) ([]*entities.Quotation, error) {
	return s.repo.GetAllQuotations()
}

// ListByStatus returns the quotations currently in status
func (s *Service) ListByStatus(ctx context.Context, status entities.QuotationStatus) ([]*entities.Quotation, error) {
	all, err := s.repo.GetAllQuotations()
	if err != nil {
		return nil, err
	}
	var matched []*entities.Quotation
	for _, q := range all {
		if q.Status == status {
			matched = append(matched, q)
		}
	}
	return matched, nil
}
