package repositories

import "github.com/vsinha/shopdesk/pkg/domain/entities"

// QuotationRepository provides access to quotations
type QuotationRepository interface {
	GetQuotation(id string) (*entities.Quotation, error)
	GetQuotationByNumber(number string) (*entities.Quotation, error)
	GetAllQuotations() ([]*entities.Quotation, error)
	SaveQuotation(quotation *entities.Quotation) error
	UpdateQuotation(quotation *entities.Quotation) error
}
