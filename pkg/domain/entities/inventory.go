package entities

import (
	"fmt"
	"time"
)

// ChangeReason explains why a product's quantity changed
type ChangeReason string

const (
	ReasonSale       ChangeReason = "sale"
	ReasonReturn     ChangeReason = "return"
	ReasonManual     ChangeReason = "manual"
	ReasonAdjustment ChangeReason = "adjustment"
	ReasonPurchase   ChangeReason = "purchase"
)

// Valid reports whether the reason is known
func (r ChangeReason) Valid() bool {
	switch r {
	case ReasonSale, ReasonReturn, ReasonManual, ReasonAdjustment, ReasonPurchase:
		return true
	default:
		return false
	}
}

// InventoryLog is one immutable entry of the stock ledger
type InventoryLog struct {
	ID          string
	ProductID   string
	ProductCode string
	ProductName string
	Change      Quantity
	Reason      ChangeReason
	UserID      string
	UserName    string
	Timestamp   time.Time
	Notes       string
}

// NewInventoryLog creates a validated InventoryLog for a product
func NewInventoryLog(
	id string,
	product *Product,
	change Quantity,
	reason ChangeReason,
	actor Actor,
	timestamp time.Time,
	notes string,
) (*InventoryLog, error) {
	if id == "" {
		return nil, fmt.Errorf("log id cannot be empty")
	}
	if product == nil {
		return nil, fmt.Errorf("product cannot be nil")
	}
	if change == 0 {
		return nil, fmt.Errorf("change cannot be zero")
	}
	if !reason.Valid() {
		return nil, fmt.Errorf("unknown change reason %q", reason)
	}

	return &InventoryLog{
		ID:          id,
		ProductID:   product.ID,
		ProductCode: product.ProductCode,
		ProductName: product.Name,
		Change:      change,
		Reason:      reason,
		UserID:      actor.ID,
		UserName:    actor.Name,
		Timestamp:   timestamp,
		Notes:       notes,
	}, nil
}
