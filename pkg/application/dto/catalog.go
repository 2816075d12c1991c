package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/shopdesk/pkg/domain/entities"
)

// NewProduct is the input for adding a catalog product. Hardware fields are
// ignored for software products and the other way round.
type NewProduct struct {
	Type            entities.ProductType `json:"type" validate:"required,oneof=hardware software"`
	Name            string               `json:"name" validate:"required"`
	Category        string               `json:"category" validate:"required"`
	CostPrice       *decimal.Decimal     `json:"cost_price" validate:"required"`
	SellingPrice    *decimal.Decimal     `json:"selling_price" validate:"required"`
	TaxPercent      decimal.Decimal      `json:"tax_percent"`
	Description     string               `json:"description"`
	InitialQuantity entities.Quantity    `json:"quantity" validate:"gte=0"`

	Supplier       string `json:"supplier"`
	WarrantyMonths int    `json:"warranty_months" validate:"gte=0"`

	LicenseType entities.LicenseType `json:"license_type" validate:"omitempty,oneof=single multi-user"`
	ExpiryDate  *time.Time           `json:"expiry_date"`

	Actor entities.Actor `json:"-"`
}

// ProductUpdate lists the product fields to change. Nil fields are kept.
// Quantities are changed only through stock adjustments.
type ProductUpdate struct {
	Name         *string                 `json:"name" validate:"omitempty,min=1"`
	Category     *string                 `json:"category" validate:"omitempty,min=1"`
	CostPrice    *decimal.Decimal        `json:"cost_price"`
	SellingPrice *decimal.Decimal        `json:"selling_price"`
	TaxPercent   *decimal.Decimal        `json:"tax_percent"`
	Description  *string                 `json:"description"`
	Status       *entities.ProductStatus `json:"status" validate:"omitempty,oneof=active inactive"`

	Supplier       *string `json:"supplier"`
	WarrantyMonths *int    `json:"warranty_months" validate:"omitempty,gte=0"`

	LicenseType *entities.LicenseType `json:"license_type" validate:"omitempty,oneof=single multi-user"`
	ExpiryDate  *time.Time            `json:"expiry_date"`
}

// StockAdjustment is one signed quantity change requested of the ledger
type StockAdjustment struct {
	ProductID string
	Change    entities.Quantity
	Reason    entities.ChangeReason
	Actor     entities.Actor
	Notes     string
}

// StockBatchOutcome tells whether a batch was applied
type StockBatchOutcome string

const (
	StockBatchApplied  StockBatchOutcome = "applied"
	StockBatchRejected StockBatchOutcome = "rejected"
)

// StockBatchResult reports an all-or-nothing stock batch. When Rejected,
// Err holds the cause and nothing was written.
type StockBatchResult struct {
	Outcome  StockBatchOutcome
	Logs     []*entities.InventoryLog
	Products []*entities.Product
	Err      error
}

// Applied reports whether every adjustment of the batch took effect
func (r *StockBatchResult) Applied() bool {
	return r != nil && r.Outcome == StockBatchApplied
}

// ProductView is a product with its current quantity and stock status
type ProductView struct {
	Product     *entities.Product
	Quantity    entities.Quantity
	StockStatus entities.StockStatus
}
