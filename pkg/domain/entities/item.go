package entities

// Quantity represents an integer count of units or licenses
type Quantity int64

// Actor identifies the user performing a mutating operation.
// The core trusts the caller's identity assertion.
type Actor struct {
	ID   string
	Name string
}

// SystemActorName is recorded when the engine itself performs a side effect
const SystemActorName = "System"

// ProductType tags the product variant
type ProductType string

const (
	Hardware ProductType = "hardware"
	Software ProductType = "software"
)

// Valid reports whether the product type is known
func (t ProductType) Valid() bool {
	return t == Hardware || t == Software
}

// ProductStatus represents whether a product can still be sold
type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
)

// Valid reports whether the product status is known
func (s ProductStatus) Valid() bool {
	return s == ProductActive || s == ProductInactive
}

// LicenseType represents how a software license may be used
type LicenseType string

const (
	SingleUser LicenseType = "single"
	MultiUser  LicenseType = "multi-user"
)

// Valid reports whether the license type is known
func (l LicenseType) Valid() bool {
	return l == SingleUser || l == MultiUser
}

// StockStatus classifies a product by its on-hand quantity
type StockStatus string

const (
	InStock    StockStatus = "in-stock"
	LowStock   StockStatus = "low-stock"
	OutOfStock StockStatus = "out-of-stock"
)

// DefaultLowStockThreshold is the quantity at or below which a product is low on stock
const DefaultLowStockThreshold Quantity = 5

// NegativeStockPolicy decides whether a decrement may drive quantity below zero
type NegativeStockPolicy string

const (
	RejectNegativeStock NegativeStockPolicy = "reject"
	AllowNegativeStock  NegativeStockPolicy = "allow"
)

// Valid reports whether the policy is known
func (p NegativeStockPolicy) Valid() bool {
	return p == RejectNegativeStock || p == AllowNegativeStock
}
