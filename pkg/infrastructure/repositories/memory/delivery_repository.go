package memory

import (
	"fmt"
	"sync"

	"github.com/vsinha/shopdesk/pkg/domain/entities"
	"github.com/vsinha/shopdesk/pkg/domain/repositories"
)

// DeliveryRepository provides in-memory delivery storage indexed by invoice
type DeliveryRepository struct {
	mu         sync.RWMutex
	deliveries []*entities.Delivery
	byID       map[string]int
	byInvoice  map[string][]int
}

// NewDeliveryRepository creates a new in-memory delivery repository
func NewDeliveryRepository() *DeliveryRepository {
	return &DeliveryRepository{
		deliveries: []*entities.Delivery{},
		byID:       make(map[string]int),
		byInvoice:  make(map[string][]int),
	}
}

// Verify interface compliance
var _ repositories.DeliveryRepository = (*DeliveryRepository)(nil)

// SaveDeliveries adds all deliveries or none of them
func (r *DeliveryRepository) SaveDeliveries(deliveries []*entities.Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := make(map[string]struct{}, len(deliveries))
	for _, d := range deliveries {
		if d.ID == "" {
			return fmt.Errorf("delivery id cannot be empty")
		}
		_, stored := r.byID[d.ID]
		_, repeated := batch[d.ID]
		if stored || repeated {
			return fmt.Errorf("delivery %s: %w", d.ID, entities.ErrDuplicate)
		}
		batch[d.ID] = struct{}{}
	}

	for _, d := range deliveries {
		index := len(r.deliveries)
		r.deliveries = append(r.deliveries, d.Clone())
		r.byID[d.ID] = index
		r.byInvoice[d.InvoiceID] = append(r.byInvoice[d.InvoiceID], index)
	}
	return nil
}

// UpdateDelivery replaces a stored delivery. The invoice link cannot change.
func (r *DeliveryRepository) UpdateDelivery(delivery *entities.Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	index, exists := r.byID[delivery.ID]
	if !exists {
		return entities.NotFoundError("delivery", delivery.ID)
	}
	if r.deliveries[index].InvoiceID != delivery.InvoiceID {
		return fmt.Errorf("delivery %s: invoice cannot change", delivery.ID)
	}
	r.deliveries[index] = delivery.Clone()
	return nil
}

// GetDelivery returns a copy of the delivery with the given id
func (r *DeliveryRepository) GetDelivery(id string) (*entities.Delivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index, exists := r.byID[id]
	if !exists {
		return nil, entities.NotFoundError("delivery", id)
	}
	return r.deliveries[index].Clone(), nil
}

// GetDeliveriesByInvoice returns copies of an invoice's deliveries in line order
func (r *DeliveryRepository) GetDeliveriesByInvoice(invoiceID string) ([]*entities.Delivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	indexes := r.byInvoice[invoiceID]
	deliveries := make([]*entities.Delivery, 0, len(indexes))
	for _, index := range indexes {
		deliveries = append(deliveries, r.deliveries[index].Clone())
	}
	return deliveries, nil
}

// GetAllDeliveries returns copies of all deliveries in creation order
func (r *DeliveryRepository) GetAllDeliveries() ([]*entities.Delivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	deliveries := make([]*entities.Delivery, 0, len(r.deliveries))
	for _, d := range r.deliveries {
		deliveries = append(deliveries, d.Clone())
	}
	return deliveries, nil
}
