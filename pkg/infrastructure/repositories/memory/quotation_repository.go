package memory

import (
	"fmt"
	"sync"

	"github.com/vsinha/shopdesk/pkg/domain/entities"
	"github.com/vsinha/shopdesk/pkg/domain/repositories"
)

// QuotationRepository provides in-memory quotation storage
type QuotationRepository struct {
	mu         sync.RWMutex
	quotations []*entities.Quotation
	byID       map[string]int
	byNumber   map[string]int
}

// NewQuotationRepository creates a new in-memory quotation repository
func NewQuotationRepository() *QuotationRepository {
	return &QuotationRepository{
		quotations: []*entities.Quotation{},
		byID:       make(map[string]int),
		byNumber:   make(map[string]int),
	}
}

// Verify interface compliance
var _ repositories.QuotationRepository = (*QuotationRepository)(nil)

// SaveQuotation adds a new quotation
func (r *QuotationRepository) SaveQuotation(quotation *entities.Quotation) error {
	if quotation.ID == "" {
		return fmt.Errorf("quotation id cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[quotation.ID]; exists {
		return fmt.Errorf("quotation %s: %w", quotation.ID, entities.ErrDuplicate)
	}
	if _, exists := r.byNumber[quotation.QuotationNumber]; exists {
		return fmt.Errorf("quotation number %s: %w", quotation.QuotationNumber, entities.ErrDuplicate)
	}

	r.byID[quotation.ID] = len(r.quotations)
	r.byNumber[quotation.QuotationNumber] = len(r.quotations)
	r.quotations = append(r.quotations, quotation.Clone())
	return nil
}

// UpdateQuotation replaces a stored quotation
func (r *QuotationRepository) UpdateQuotation(quotation *entities.Quotation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	index, exists := r.byID[quotation.ID]
	if !exists {
		return entities.NotFoundError("quotation", quotation.ID)
	}
	if r.quotations[index].QuotationNumber != quotation.QuotationNumber {
		return fmt.Errorf("quotation %s: number cannot change", quotation.ID)
	}
	r.quotations[index] = quotation.Clone()
	return nil
}

// GetQuotation returns a copy of the quotation with the given id
func (r *QuotationRepository) GetQuotation(id string) (*entities.Quotation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index, exists := r.byID[id]
	if !exists {
		return nil, entities.NotFoundError("quotation", id)
	}
	return r.quotations[index].Clone(), nil
}

// GetQuotationByNumber returns a copy of the quotation with the given number
func (r *QuotationRepository) GetQuotationByNumber(number string) (*entities.Quotation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index, exists := r.byNumber[number]
	if !exists {
		return nil, entities.NotFoundError("quotation number", number)
	}
	return r.quotations[index].Clone(), nil
}

// GetAllQuotations returns copies of all quotations in creation order
func (r *QuotationRepository) GetAllQuotations() ([]*entities.Quotation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	quotations := make([]*entities.Quotation, 0, len(r.quotations))
	for _, q := range r.quotations {
		quotations = append(quotations, q.Clone())
	}
	return quotations, nil
}
