package memory

import (
	"fmt"
	"sync"

	"github.com/vsinha/shopdesk/pkg/domain/entities"
	"github.com/vsinha/shopdesk/pkg/domain/repositories"
)

// InvoiceRepository provides in-memory invoice storage
type InvoiceRepository struct {
	mu       sync.RWMutex
	invoices []*entities.Invoice
	byID     map[string]int
	byNumber map[string]int
}

// NewInvoiceRepository creates a new in-memory invoice repository
func NewInvoiceRepository() *InvoiceRepository {
	return &InvoiceRepository{
		invoices: []*entities.Invoice{},
		byID:     make(map[string]int),
		byNumber: make(map[string]int),
	}
}

// Verify interface compliance
var _ repositories.InvoiceRepository = (*InvoiceRepository)(nil)

// SaveInvoice adds a new invoice
func (r *InvoiceRepository) SaveInvoice(invoice *entities.Invoice) error {
	if invoice.ID == "" {
		return fmt.Errorf("invoice id cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[invoice.ID]; exists {
		return fmt.Errorf("invoice %s: %w", invoice.ID, entities.ErrDuplicate)
	}
	if _, exists := r.byNumber[invoice.InvoiceNumber]; exists {
		return fmt.Errorf("invoice number %s: %w", invoice.InvoiceNumber, entities.ErrDuplicate)
	}

	r.byID[invoice.ID] = len(r.invoices)
	r.byNumber[invoice.InvoiceNumber] = len(r.invoices)
	r.invoices = append(r.invoices, invoice.Clone())
	return nil
}

// UpdateInvoice replaces a stored invoice
func (r *InvoiceRepository) UpdateInvoice(invoice *entities.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	index, exists := r.byID[invoice.ID]
	if !exists {
		return entities.NotFoundError("invoice", invoice.ID)
	}
	if r.invoices[index].InvoiceNumber != invoice.InvoiceNumber {
		return fmt.Errorf("invoice %s: number cannot change", invoice.ID)
	}
	r.invoices[index] = invoice.Clone()
	return nil
}

// GetInvoice returns a copy of the invoice with the given id
func (r *InvoiceRepository) GetInvoice(id string) (*entities.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index, exists := r.byID[id]
	if !exists {
		return nil, entities.NotFoundError("invoice", id)
	}
	return r.invoices[index].Clone(), nil
}

// GetInvoiceByNumber returns a copy of the invoice with the given number
func (r *InvoiceRepository) GetInvoiceByNumber(number string) (*entities.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index, exists := r.byNumber[number]
	if !exists {
		return nil, entities.NotFoundError("invoice number", number)
	}
	return r.invoices[index].Clone(), nil
}

// GetAllInvoices returns copies of all invoices in creation order
func (r *InvoiceRepository) GetAllInvoices() ([]*entities.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	invoices := make([]*entities.Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		invoices = append(invoices, inv.Clone())
	}
	return invoices, nil
}
