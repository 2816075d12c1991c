package repositories

import "github.com/vsinha/shopdesk/pkg/domain/entities"

// InvoiceRepository provides access to invoices
type InvoiceRepository interface {
	GetInvoice(id string) (*entities.Invoice, error)
	GetInvoiceByNumber(number string) (*entities.Invoice, error)
	GetAllInvoices() ([]*entities.Invoice, error)
	SaveInvoice(invoice *entities.Invoice) error
	UpdateInvoice(invoice *entities.Invoice) error
}
