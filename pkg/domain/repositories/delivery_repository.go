package repositories

import "github.com/vsinha/shopdesk/pkg/domain/entities"

// DeliveryRepository provides access to delivery tracking records
type DeliveryRepository interface {
	GetDelivery(id string) (*entities.Delivery, error)
	GetDeliveriesByInvoice(invoiceID string) ([]*entities.Delivery, error)
	GetAllDeliveries() ([]*entities.Delivery, error)
	SaveDeliveries(deliveries []*entities.Delivery) error
	UpdateDelivery(delivery *entities.Delivery) error
}
