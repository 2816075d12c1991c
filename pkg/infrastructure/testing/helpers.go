package testing

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/shopdesk/pkg/domain/entities"
	"github.com/vsinha/shopdesk/pkg/infrastructure/repositories/memory"
)

// FixtureTime is the instant every fixture is created at
var FixtureTime = time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

// Fixture product ids
const (
	MouseID     = "prod-mouse"
	LaptopID    = "prod-laptop"
	AntivirusID = "prod-antivirus"
	RAMID       = "prod-ram"
)

// Dec parses a decimal literal - panics on malformed input
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DecPtr returns a pointer to a parsed decimal
func DecPtr(s string) *decimal.Decimal {
	d := Dec(s)
	return &d
}

// SequentialIDs returns a deterministic id generator: prefix-1, prefix-2, ...
func SequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// mustValidate is a helper for fixtures - panics on validation error
func mustValidate(p *entities.Product) *entities.Product {
	if err := p.Validate(); err != nil {
		panic(err)
	}
	return p
}

// NewHardwareProduct builds an active hardware product
func NewHardwareProduct(id, code, barcode, name, cost, price, tax string, qty entities.Quantity) *entities.Product {
	return mustValidate(&entities.Product{
		ID:           id,
		ProductCode:  code,
		Barcode:      barcode,
		Name:         name,
		Category:     "Accessories",
		CostPrice:    Dec(cost),
		SellingPrice: Dec(price),
		TaxPercent:   Dec(tax),
		Status:       entities.ProductActive,
		CreatedAt:    FixtureTime,
		UpdatedAt:    FixtureTime,
		Variant: entities.HardwareDetails{
			StockQuantity:  qty,
			Supplier:       "Kathmandu Distributors",
			WarrantyMonths: 12,
		},
	})
}

// NewSoftwareProduct builds an active software product
func NewSoftwareProduct(id, code, barcode, name, cost, price, tax string, licenses entities.Quantity) *entities.Product {
	expiry := FixtureTime.AddDate(1, 0, 0)
	return mustValidate(&entities.Product{
		ID:           id,
		ProductCode:  code,
		Barcode:      barcode,
		Name:         name,
		Category:     "Antivirus",
		CostPrice:    Dec(cost),
		SellingPrice: Dec(price),
		TaxPercent:   Dec(tax),
		Status:       entities.ProductActive,
		CreatedAt:    FixtureTime,
		UpdatedAt:    FixtureTime,
		Variant: entities.SoftwareDetails{
			LicenseType:     entities.MultiUser,
			LicenseQuantity: licenses,
			ExpiryDate:      &expiry,
		},
	})
}

// SampleCatalog returns a small IT shop catalog. The mouse matches the
// worked pricing examples: cost 5, price 10, tax 10%, 20 in stock.
func SampleCatalog() []*entities.Product {
	laptop := NewHardwareProduct(LaptopID, "HW-LAP-0001", "2000000000022", "ThinkPad E14", "650", "799.99", "13", 4)
	laptop.Category = "Laptops"

	ram := NewHardwareProduct(RAMID, "HW-RAM-0001", "2000000000046", "16GB DDR4", "30", "45", "13", 0)
	ram.Category = "RAM"

	return []*entities.Product{
		NewHardwareProduct(MouseID, "HW-ACC-0001", "2000000000015", "Mouse", "5", "10", "10", 20),
		laptop,
		NewSoftwareProduct(AntivirusID, "SW-ANT-0001", "2000000000039", "Kaspersky Total Security", "20", "35", "13", 50),
		ram,
	}
}

// Repositories bundles one of each in-memory repository
type Repositories struct {
	Products   *memory.ProductRepository
	Logs       *memory.InventoryLogRepository
	Quotations *memory.QuotationRepository
	Invoices   *memory.InvoiceRepository
	Deliveries *memory.DeliveryRepository
}

// NewRepositories creates empty repositories
func NewRepositories() *Repositories {
	return &Repositories{
		Products:   memory.NewProductRepository(16),
		Logs:       memory.NewInventoryLogRepository(),
		Quotations: memory.NewQuotationRepository(),
		Invoices:   memory.NewInvoiceRepository(),
		Deliveries: memory.NewDeliveryRepository(),
	}
}

// BuildSampleRepositories creates repositories with the sample catalog loaded
func BuildSampleRepositories() *Repositories {
	repos := NewRepositories()
	if err := repos.Products.LoadProducts(SampleCatalog()); err != nil {
		panic(err)
	}
	return repos
}
