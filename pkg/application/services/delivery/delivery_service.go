package delivery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vsinha/shopdesk/pkg/application/services/shared"
	"github.com/vsinha/shopdesk/pkg/domain/entities"
	"github.com/vsinha/shopdesk/pkg/domain/repositories"
	"github.com/vsinha/shopdesk/pkg/domain/services"
	"github.com/vsinha/shopdesk/pkg/infrastructure/events"
)

const module = "delivery"

const (
	createdNote  = "Order created, ready for dispatch"
	returnedNote = "Item returned to inventory"
)

// Config controls stage ordering and phone parsing
type Config struct {
	StrictStageOrder bool
	PhoneRegion      string
}

// Service tracks deliveries through their stages
type Service struct {
	mu     sync.Mutex
	repo   repositories.DeliveryRepository
	config Config
	deps   shared.Deps
}

// NewService creates a delivery service
func NewService(repo repositories.DeliveryRepository, config Config, deps shared.Deps) *Service {
	return &Service{
		repo:   repo,
		config: config,
		deps:   deps.WithDefaults(),
	}
}

// SpawnForInvoice creates one delivery per invoice item, each waiting in
// inventory with its opening tracking event.
func (s *Service) SpawnForInvoice(ctx context.Context, inv *entities.Invoice) (deliveries []*entities.Delivery, err error) {
	_, span := shared.StartSpan(ctx, module, "SpawnForInvoice",
		attribute.String("invoice.number", inv.InvoiceNumber), attribute.Int("items", len(inv.Items)))
	defer func() { shared.EndSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.deps.Clock.Now()
	deliveries = make([]*entities.Delivery, 0, len(inv.Items))
	for _, item := range inv.Items {
		d := &entities.Delivery{
			ID:              s.deps.NewID(),
			InvoiceID:       inv.ID,
			InvoiceNumber:   inv.InvoiceNumber,
			ProductCode:     item.ProductCode,
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			RecipientName:   inv.Client.Name,
			RecipientPhone:  inv.Client.Phone,
			DeliveryAddress: inv.Client.Address,
			CreatedAt:       now,
		}
		if err := d.Record(entities.DeliveryTrackingEvent{
			ID:        s.deps.NewID(),
			Stage:     entities.StageInInventory,
			Timestamp: now,
			Notes:     createdNote,
			UpdatedBy: entities.SystemActorName,
		}); err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}

	if err := s.repo.SaveDeliveries(deliveries); err != nil {
		return nil, fmt.Errorf("failed to save deliveries for invoice %s: %w", inv.InvoiceNumber, err)
	}

	for _, d := range deliveries {
		s.deps.Publish(module, events.NewDeliveryCreatedEvent(d))
		s.deps.Metrics.RecordDeliveryTransition(string(d.CurrentStage))
	}
	s.deps.Logger.WithFields(logrus.Fields{
		"module":     module,
		"invoice":    inv.InvoiceNumber,
		"deliveries": len(deliveries),
	}).Info("deliveries created")

	result := make([]*entities.Delivery, len(deliveries))
	for i, d := range deliveries {
		result[i] = d.Clone()
	}
	return result, nil
}

// AdvanceStage moves a delivery to stage and appends the tracking event
func (s *Service) AdvanceStage(
	ctx context.Context,
	id string,
	stage entities.DeliveryStage,
	actor entities.Actor,
	notes, location string,
) (d *entities.Delivery, err error) {
	_, span := shared.StartSpan(ctx, module, "AdvanceStage",
		attribute.String("delivery.id", id), attribute.String("delivery.stage", string(stage)))
	defer func() { shared.EndSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err = s.repo.GetDelivery(id)
	if err != nil {
		return nil, err
	}
	if !entities.CanAdvance(d.CurrentStage, stage, s.config.StrictStageOrder) {
		return nil, &entities.InvalidTransitionError{
			Entity: "delivery",
			ID:     id,
			From:   string(d.CurrentStage),
			To:     string(stage),
		}
	}

	updatedBy := actor.Name
	if updatedBy == "" {
		updatedBy = entities.SystemActorName
	}
	from := d.CurrentStage
	event := entities.DeliveryTrackingEvent{
		ID:        s.deps.NewID(),
		Stage:     stage,
		Timestamp: s.deps.Clock.Now(),
		Notes:     notes,
		UpdatedBy: updatedBy,
		Location:  location,
	}
	if err := d.Record(event); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateDelivery(d); err != nil {
		return nil, fmt.Errorf("failed to update delivery %s: %w", id, err)
	}

	s.deps.Publish(module, events.NewDeliveryStageAdvancedEvent(d, from, event))
	s.deps.Metrics.RecordDeliveryTransition(string(stage))
	s.deps.Logger.WithFields(logrus.Fields{
		"module":   module,
		"delivery": id,
		"invoice":  d.InvoiceNumber,
		"from":     from,
		"to":       stage,
		"status":   d.Status,
	}).Info("delivery stage advanced")

	return d.Clone(), nil
}

// MarkReturned moves a delivery to the returned stage
func (s *Service) MarkReturned(ctx context.Context, id string, actor entities.Actor, notes string) (*entities.Delivery, error) {
	if strings.TrimSpace(notes) == "" {
		notes = returnedNote
	}
	return s.AdvanceStage(ctx, id, entities.StageReturned, actor, notes, "")
}

// NextStage returns the stage a delivery moves to next on the forward path.
// ok is false once the delivery has reached a terminal stage.
func (s *Service) NextStage(ctx context.Context, id string) (stage entities.DeliveryStage, ok bool, err error) {
	d, err := s.repo.GetDelivery(id)
	if err != nil {
		return "", false, err
	}
	stage, ok = entities.NextStage(d.CurrentStage)
	return stage, ok, nil
}

// AssignDeliveryPerson replaces the delivery person without touching the stage
func (s *Service) AssignDeliveryPerson(ctx context.Context, id string, person entities.DeliveryPerson) (d *entities.Delivery, err error) {
	_, span := shared.StartSpan(ctx, module, "AssignDeliveryPerson", attribute.String("delivery.id", id))
	defer func() { shared.EndSpan(span, err) }()

	person.Name = strings.TrimSpace(person.Name)
	verr := services.ValidateStruct("delivery_person", person)
	phone, perr := services.NormalizePhone(person.Phone, s.config.PhoneRegion)
	if perr != nil {
		verr.Add("phone", "phone")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	person.Phone = phone

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err = s.repo.GetDelivery(id)
	if err != nil {
		return nil, err
	}
	if person.ID == "" {
		person.ID = s.deps.NewID()
	}
	d.DeliveryPerson = &person
	if err := s.repo.UpdateDelivery(d); err != nil {
		return nil, fmt.Errorf("failed to update delivery %s: %w", id, err)
	}

	s.deps.Publish(module, events.NewDeliveryPersonAssignedEvent(d, s.deps.Clock.Now()))
	return d.Clone(), nil
}

// SetEstimatedDeliveryDate records when the delivery is expected to arrive
func (s *Service) SetEstimatedDeliveryDate(ctx context.Context, id string, date time.Time) (*entities.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.repo.GetDelivery(id)
	if err != nil {
		return nil, err
	}
	d.EstimatedDeliveryDate = &date
	if err := s.repo.UpdateDelivery(d); err != nil {
		return nil, fmt.Errorf("failed to update delivery %s: %w", id, err)
	}
	return d.Clone(), nil
}

// GetDelivery returns the delivery with the given id
func (s *Service) GetDelivery(ctx context.Context, id string) (*entities.Delivery, error) {
	return s.repo.GetDelivery(id)
}

// ListDeliveries returns every delivery in creation order
func (s *Service) ListDeliveries(ctx context.Context) ([]*entities.Delivery, error) {
	return s.repo.GetAllDeliveries()
}

// ListByInvoice returns the deliveries spawned by an invoice
func (s *Service) ListByInvoice(ctx context.Context, invoiceID string) ([]*entities.Delivery, error) {
	return s.repo.GetDeliveriesByInvoice(invoiceID)
}

func (s *Service) ListByStatus(ctx context.Context, status entities.DeliveryStatus) ([]*entities.Delivery, error) {
	all, err := s.repo.GetAllDeliveries()
	if err != nil {
		return nil, err
	}
	var matched []*entities.Delivery
	for _, d := range all {
		if d.Status == status {
			matched = append(matched, d)
		}
	}
	return matched, nil
}
