package entities

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newHardwareProduct(qty Quantity) *Product {
	return &Product{
		ID:           "p-1",
		ProductCode:  "HW-MIC-0001",
		Name:         "Mouse",
		Category:     "Mice",
		CostPrice:    decimal.NewFromInt(5),
		SellingPrice: decimal.NewFromInt(10),
		TaxPercent:   decimal.NewFromInt(10),
		Status:       ProductActive,
		Variant:      HardwareDetails{StockQuantity: qty, Supplier: "Logi", WarrantyMonths: 12},
	}
}

func newSoftwareProduct(qty Quantity) *Product {
	expiry := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	return &Product{
		ID:          "p-2",
		ProductCode: "SW-ANT-0001",
		Name:        "Antivirus",
		Category:    "Antivirus",
		Status:      ProductActive,
		Variant:     SoftwareDetails{LicenseType: MultiUser, LicenseQuantity: qty, ExpiryDate: &expiry},
	}
}

func TestQuantityOf_PerVariant(t *testing.T) {
	testCases := []struct {
		name     string
		product  *Product
		expected Quantity
		typ      ProductType
	}{
		{"hardware stock", newHardwareProduct(20), 20, Hardware},
		{"software licenses", newSoftwareProduct(7), 7, Software},
		{"nil product", nil, 0, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := QuantityOf(tc.product); got != tc.expected {
				t.Errorf("Expected quantity %d, got %d", tc.expected, got)
			}
			if tc.product != nil && tc.product.Type() != tc.typ {
				t.Errorf("Expected type %s, got %s", tc.typ, tc.product.Type())
			}
		})
	}
}

func TestWithQuantityDelta_DoesNotMutateReceiver(t *testing.T) {
	hw := newHardwareProduct(20)
	next := hw.WithQuantityDelta(-3)

	if QuantityOf(hw) != 20 {
		t.Errorf("Expected original quantity 20, got %d", QuantityOf(hw))
	}
	if QuantityOf(next) != 17 {
		t.Errorf("Expected new quantity 17, got %d", QuantityOf(next))
	}
	details, ok := next.Hardware()
	if !ok {
		t.Fatal("Expected hardware variant to survive the delta")
	}
	if details.Supplier != "Logi" || details.WarrantyMonths != 12 {
		t.Errorf("Expected hardware attributes preserved, got %+v", details)
	}

	sw := newSoftwareProduct(7)
	nextSW := sw.WithQuantityDelta(3)
	if QuantityOf(nextSW) != 10 {
		t.Errorf("Expected license quantity 10, got %d", QuantityOf(nextSW))
	}
	if _, ok := nextSW.Hardware(); ok {
		t.Error("Software product must not expose hardware details")
	}
}

func TestProductClone_CopiesExpiryDate(t *testing.T) {
	sw := newSoftwareProduct(1)
	clone := sw.Clone()

	details, _ := clone.Software()
	*details.ExpiryDate = details.ExpiryDate.AddDate(1, 0, 0)

	original, _ := sw.Software()
	if original.ExpiryDate.Year() != 2027 {
		t.Errorf("Expected original expiry untouched, got %v", original.ExpiryDate)
	}
}

func TestStockStatusOf(t *testing.T) {
	testCases := []struct {
		qty      Quantity
		expected StockStatus
	}{
		{0, OutOfStock},
		{-2, OutOfStock},
		{1, LowStock},
		{5, LowStock},
		{6, InStock},
	}

	for _, tc := range testCases {
		got := StockStatusOf(newHardwareProduct(tc.qty), DefaultLowStockThreshold)
		if got != tc.expected {
			t.Errorf("StockStatusOf(%d) = %s, want %s", tc.qty, got, tc.expected)
		}
	}
}

func TestProduct_Validate(t *testing.T) {
	valid := newHardwareProduct(1)
	if err := valid.Validate(); err != nil {
		t.Fatalf("Expected valid product, got %v", err)
	}

	testCases := []struct {
		name        string
		mutate      func(p *Product)
		expectError string
	}{
		{"empty id", func(p *Product) { p.ID = "" }, "product id cannot be empty"},
		{"empty name", func(p *Product) { p.Name = "" }, "product name cannot be empty"},
		{"no variant", func(p *Product) { p.Variant = nil }, "product p-1 has no variant"},
		{"negative cost", func(p *Product) { p.CostPrice = decimal.NewFromInt(-1) }, "cost price cannot be negative, got -1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := newHardwareProduct(1)
			tc.mutate(p)
			err := p.Validate()
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}
