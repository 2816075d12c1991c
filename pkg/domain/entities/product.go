package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Variant is the type-specific part of a product. It is implemented only by
// HardwareDetails and SoftwareDetails.
type Variant interface {
	Type() ProductType
	// Quantity returns the tracked on-hand quantity (stock units or licenses)
	Quantity() Quantity
	withQuantity(q Quantity) Variant
	clone() Variant
}

// HardwareDetails holds the attributes of a physical product
type HardwareDetails struct {
	StockQuantity  Quantity
	Supplier       string
	WarrantyMonths int
}

func (h HardwareDetails) Type() ProductType  { return Hardware }
func (h HardwareDetails) Quantity() Quantity { return h.StockQuantity }

func (h HardwareDetails) withQuantity(q Quantity) Variant {
	h.StockQuantity = q
	return h
}

func (h HardwareDetails) clone() Variant { return h }

// SoftwareDetails holds the attributes of a licensed product
type SoftwareDetails struct {
	LicenseType     LicenseType
	LicenseQuantity Quantity
	ExpiryDate      *time.Time
}

func (s SoftwareDetails) Type() ProductType  { return Software }
func (s SoftwareDetails) Quantity() Quantity { return s.LicenseQuantity }

func (s SoftwareDetails) withQuantity(q Quantity) Variant {
	s.LicenseQuantity = q
	return s
}

func (s SoftwareDetails) clone() Variant {
	if s.ExpiryDate != nil {
		expiry := *s.ExpiryDate
		s.ExpiryDate = &expiry
	}
	return s
}

// Product represents a catalog entry sold by the shop
type Product struct {
	ID           string
	ProductCode  string
	Barcode      string
	Name         string
	Category     string
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
	TaxPercent   decimal.Decimal
	Status       ProductStatus
	Description  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Variant      Variant
}

// Type returns the variant tag of the product
func (p *Product) Type() ProductType {
	if p.Variant == nil {
		return ""
	}
	return p.Variant.Type()
}

// Hardware returns the hardware details when the product is hardware
func (p *Product) Hardware() (HardwareDetails, bool) {
	h, ok := p.Variant.(HardwareDetails)
	return h, ok
}

// Software returns the software details when the product is software
func (p *Product) Software() (SoftwareDetails, bool) {
	s, ok := p.Variant.(SoftwareDetails)
	return s, ok
}

// IsActive reports whether the product can be offered for sale
func (p *Product) IsActive() bool {
	return p.Status == ProductActive
}

// QuantityOf returns the type-appropriate quantity of a product
func QuantityOf(p *Product) Quantity {
	if p == nil || p.Variant == nil {
		return 0
	}
	return p.Variant.Quantity()
}

// WithQuantityDelta returns a copy of the product with delta applied to its
// tracked quantity. The receiver is not modified.
func (p *Product) WithQuantityDelta(delta Quantity) *Product {
	next := p.Clone()
	if next.Variant != nil {
		next.Variant = next.Variant.withQuantity(next.Variant.Quantity() + delta)
	}
	return next
}

// Clone returns a deep copy of the product
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	if p.Variant != nil {
		c.Variant = p.Variant.clone()
	}
	return &c
}

// StockStatusOf classifies the product's quantity against the low-stock threshold
func StockStatusOf(p *Product, threshold Quantity) StockStatus {
	qty := QuantityOf(p)
	switch {
	case qty <= 0:
		return OutOfStock
	case qty <= threshold:
		return LowStock
	default:
		return InStock
	}
}

// Validate checks the structural invariants of a product
func (p *Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("product id cannot be empty")
	}
	if p.Name == "" {
		return fmt.Errorf("product name cannot be empty")
	}
	if p.Variant == nil {
		return fmt.Errorf("product %s has no variant", p.ID)
	}
	if p.CostPrice.IsNegative() {
		return fmt.Errorf("cost price cannot be negative, got %s", p.CostPrice)
	}
	if p.SellingPrice.IsNegative() {
		return fmt.Errorf("selling price cannot be negative, got %s", p.SellingPrice)
	}
	return nil
}
