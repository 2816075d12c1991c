package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vsinha/shopdesk/pkg/application/dto"
	"github.com/vsinha/shopdesk/pkg/application/services/shared"
	"github.com/vsinha/shopdesk/pkg/domain/entities"
	"github.com/vsinha/shopdesk/pkg/domain/repositories"
	"github.com/vsinha/shopdesk/pkg/domain/services"
	"github.com/vsinha/shopdesk/pkg/infrastructure/events"
	"github.com/vsinha/shopdesk/pkg/infrastructure/logging"
)

const module = "catalog"

// Config holds stock ledger policy
type Config struct {
	NegativeStock     entities.NegativeStockPolicy
	LowStockThreshold entities.Quantity
}

// Service owns the product catalog and is the only writer of product
// quantities. Every quantity change is paired with one InventoryLog entry.
type Service struct {
	// mu serialises every product write so batches see a stable catalog
	mu sync.Mutex

	products repositories.ProductRepository
	logs     repositories.InventoryLogRepository
	codes    *services.ProductCodeGenerator
	barcodes *services.BarcodeGenerator
	config   Config
	deps     shared.Deps
}

// NewService creates a catalog service
func NewService(
	products repositories.ProductRepository,
	logs repositories.InventoryLogRepository,
	config Config,
	deps shared.Deps,
) *Service {
	if config.NegativeStock == "" {
		config.NegativeStock = entities.RejectNegativeStock
	}
	return &Service{
		products: products,
		logs:     logs,
		codes:    services.NewProductCodeGenerator(),
		barcodes: services.NewBarcodeGenerator(),
		config:   config,
		deps:     deps.WithDefaults(),
	}
}

// Seed loads existing products verbatim and reserves their codes and barcodes
func (s *Service) Seed(products []*entities.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.products.LoadProducts(products); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	for _, p := range products {
		s.codes.Observe(p.ProductCode)
		s.barcodes.Observe(p.Barcode)
	}
	s.refreshLowStock()
	return nil
}

// AddProduct validates and creates a product with a generated code and
// barcode. A positive initial quantity is booked as a purchase.
func (s *Service) AddProduct(ctx context.Context, req dto.NewProduct) (product *entities.Product, err error) {
	_, span := shared.StartSpan(ctx, module, "AddProduct", attribute.String("product.name", req.Name))
	defer func() { shared.EndSpan(span, err) }()

	if err := validateNewProduct(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.deps.Clock.Now()
	product = &entities.Product{
		ID:           s.deps.NewID(),
		ProductCode:  s.codes.Next(req.Type, req.Category),
		Barcode:      s.barcodes.Next(),
		Name:         strings.TrimSpace(req.Name),
		Category:     strings.TrimSpace(req.Category),
		CostPrice:    *req.CostPrice,
		SellingPrice: *req.SellingPrice,
		TaxPercent:   req.TaxPercent,
		Status:       entities.ProductActive,
		Description:  req.Description,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	switch req.Type {
	case entities.Hardware:
		product.Variant = entities.HardwareDetails{
			Supplier:       req.Supplier,
			WarrantyMonths: req.WarrantyMonths,
		}
	case entities.Software:
		licenseType := req.LicenseType
		if licenseType == "" {
			licenseType = entities.SingleUser
		}
		product.Variant = entities.SoftwareDetails{
			LicenseType: licenseType,
			ExpiryDate:  req.ExpiryDate,
		}
	}

	if err := s.products.SaveProduct(product); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}
	s.deps.Publish(module, events.NewProductCreatedEvent(product, now))

	if req.InitialQuantity > 0 {
		result, err := s.applyLocked([]dto.StockAdjustment{{
			ProductID: product.ID,
			Change:    req.InitialQuantity,
			Reason:    entities.ReasonPurchase,
			Actor:     req.Actor,
			Notes:     "Initial stock",
		}})
		if err != nil {
			return nil, fmt.Errorf("failed to book initial stock for %s: %w", product.ProductCode, err)
		}
		product = result.Products[0]
	} else {
		s.refreshLowStock()
	}

	s.deps.Logger.WithFields(logrus.Fields{
		"module":       module,
		"product_id":   product.ID,
		"product_code": product.ProductCode,
		"quantity":     entities.QuantityOf(product),
	}).Info("product added")

	return product.Clone(), nil
}

func validateNewProduct(req dto.NewProduct) error {
	verr := services.ValidateStruct("product", req)
	if strings.TrimSpace(req.Name) == "" {
		verr.Add("name", "required")
	}
	if strings.TrimSpace(req.Category) == "" {
		verr.Add("category", "required")
	}
	if req.CostPrice != nil && req.CostPrice.IsNegative() {
		verr.Add("cost_price", "gte")
	}
	if req.SellingPrice != nil && req.SellingPrice.IsNegative() {
		verr.Add("selling_price", "gte")
	}
	if !services.ValidPercent(req.TaxPercent) {
		verr.Add("tax_percent", "percent")
	}
	return verr.OrNil()
}

// UpdateProduct merges the non-nil fields of update into the product
func (s *Service) UpdateProduct(ctx context.Context, id string, update dto.ProductUpdate) (product *entities.Product, err error) {
	_, span := shared.StartSpan(ctx, module, "UpdateProduct", attribute.String("product.id", id))
	defer func() { shared.EndSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	product, err = s.products.GetProduct(id)
	if err != nil {
		return nil, err
	}

	changed, err := applyUpdate(product, update)
	if err != nil {
		return nil, err
	}
	if len(changed) == 0 {
		return product, nil
	}

	product.UpdatedAt = s.deps.Clock.Now()
	if err := s.products.UpdateProduct(product); err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}

	s.deps.Publish(module, events.NewProductUpdatedEvent(product.ID, changed, product.UpdatedAt))
	s.refreshLowStock()
	s.deps.Logger.WithFields(logrus.Fields{
		"module":     module,
		"product_id": product.ID,
		"fields":     changed,
	}).Info("product updated")

	return product.Clone(), nil
}

// applyUpdate mutates p and returns the names of the fields it changed
func applyUpdate(p *entities.Product, u dto.ProductUpdate) ([]string, error) {
	verr := services.ValidateStruct("product", u)
	var changed []string

	if u.Name != nil {
		if strings.TrimSpace(*u.Name) == "" {
			verr.Add("name", "required")
		}
		p.Name = strings.TrimSpace(*u.Name)
		changed = append(changed, "name")
	}
	if u.Category != nil {
		if strings.TrimSpace(*u.Category) == "" {
			verr.Add("category", "required")
		}
		p.Category = strings.TrimSpace(*u.Category)
		changed = append(changed, "category")
	}
	if u.CostPrice != nil {
		if u.CostPrice.IsNegative() {
			verr.Add("cost_price", "gte")
		}
		p.CostPrice = *u.CostPrice
		changed = append(changed, "cost_price")
	}
	if u.SellingPrice != nil {
		if u.SellingPrice.IsNegative() {
			verr.Add("selling_price", "gte")
		}
		p.SellingPrice = *u.SellingPrice
		changed = append(changed, "selling_price")
	}
	if u.TaxPercent != nil {
		if !services.ValidPercent(*u.TaxPercent) {
			verr.Add("tax_percent", "percent")
		}
		p.TaxPercent = *u.TaxPercent
		changed = append(changed, "tax_percent")
	}
	if u.Description != nil {
		p.Description = *u.Description
		changed = append(changed, "description")
	}
	if u.Status != nil {
		p.Status = *u.Status
		changed = append(changed, "status")
	}

	switch v := p.Variant.(type) {
	case entities.HardwareDetails:
		if u.LicenseType != nil {
			verr.Add("license_type", "software_only")
		}
		if u.ExpiryDate != nil {
			verr.Add("expiry_date", "software_only")
		}
		if u.Supplier != nil {
			v.Supplier = *u.Supplier
			changed = append(changed, "supplier")
		}
		if u.WarrantyMonths != nil {
			v.WarrantyMonths = *u.WarrantyMonths
			changed = append(changed, "warranty_months")
		}
		p.Variant = v
	case entities.SoftwareDetails:
		if u.Supplier != nil {
			verr.Add("supplier", "hardware_only")
		}
		if u.WarrantyMonths != nil {
			verr.Add("warranty_months", "hardware_only")
		}
		if u.LicenseType != nil {
			v.LicenseType = *u.LicenseType
			changed = append(changed, "license_type")
		}
		if u.ExpiryDate != nil {
			expiry := *u.ExpiryDate
			v.ExpiryDate = &expiry
			changed = append(changed, "expiry_date")
		}
		p.Variant = v
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return changed, nil
}

// ArchiveProduct marks a product inactive. Quantities are not touched.
func (s *Service) ArchiveProduct(ctx context.Context, id string) (err error) {
	_, span := shared.StartSpan(ctx, module, "ArchiveProduct", attribute.String("product.id", id))
	defer func() { shared.EndSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.products.GetProduct(id)
	if err != nil {
		return err
	}
	if !product.IsActive() {
		return nil
	}

	product.Status = entities.ProductInactive
	product.UpdatedAt = s.deps.Clock.Now()
	if err := s.products.UpdateProduct(product); err != nil {
		return fmt.Errorf("failed to archive product %s: %w", id, err)
	}

	s.deps.Publish(module, events.NewProductArchivedEvent(product, product.UpdatedAt))
	s.refreshLowStock()
	return nil
}

// GetProduct returns the product with the given id
func (s *Service) GetProduct(ctx context.Context, id string) (*entities.Product, error) {
	return s.products.GetProduct(id)
}

// GetProductByCode returns the product with exactly the given product code
func (s *Service) GetProductByCode(ctx context.Context, code string) (*entities.Product, error) {
	return s.products.GetProductByCode(code)
}

// GetProductByBarcode returns the product with exactly the given barcode
func (s *Service) GetProductByBarcode(ctx context.Context, barcode string) (*entities.Product, error) {
	return s.products.GetProductByBarcode(barcode)
}

// ListProducts returns every product including archived ones
func (s *Service) ListProducts(ctx context.Context) ([]*entities.Product, error) {
	return s.products.GetAllProducts()
}

// ListActiveProducts returns the products that can be put on a document
func (s *Service) ListActiveProducts(ctx context.Context) ([]*entities.Product, error) {
	all, err := s.products.GetAllProducts()
	if err != nil {
		return nil, err
	}
	active := make([]*entities.Product, 0, len(all))
	for _, p := range all {
		if p.IsActive() {
			active = append(active, p)
		}
	}
	return active, nil
}

// InventoryLogs returns the whole stock ledger, newest first
func (s *Service) InventoryLogs(ctx context.Context) ([]*entities.InventoryLog, error) {
	return s.logs.GetAllLogs()
}

// LogsForProduct returns a product's ledger entries, newest first
func (s *Service) LogsForProduct(ctx context.Context, productID string) ([]*entities.InventoryLog, error) {
	if _, err := s.products.GetProduct(productID); err != nil {
		return nil, err
	}
	return s.logs.GetLogsForProduct(productID)
}

// Threshold returns the configured low-stock threshold
func (s *Service) Threshold() entities.Quantity {
	return s.config.LowStockThreshold
}

// StockStatus classifies a product against the configured threshold
func (s *Service) StockStatus(p *entities.Product) entities.StockStatus {
	return entities.StockStatusOf(p, s.config.LowStockThreshold)
}

// LowStockProducts returns active products at or below threshold, lowest
// quantity first
func (s *Service) LowStockProducts(ctx context.Context, threshold entities.Quantity) ([]*entities.Product, error) {
	active, err := s.ListActiveProducts(ctx)
	if err != nil {
		return nil, err
	}
	return lowStock(active, threshold), nil
}

func lowStock(products []*entities.Product, threshold entities.Quantity) []*entities.Product {
	var low []*entities.Product
	for _, p := range products {
		if p.IsActive() && entities.StockStatusOf(p, threshold) != entities.InStock {
			low = append(low, p)
		}
	}
	sort.SliceStable(low, func(i, j int) bool {
		return entities.QuantityOf(low[i]) < entities.QuantityOf(low[j])
	})
	return low
}

// refreshLowStock updates the low-stock gauge. Callers hold mu.
func (s *Service) refreshLowStock() {
	if s.deps.Metrics == nil {
		return
	}
	all, err := s.products.GetAllProducts()
	if err != nil {
		logging.LogError(s.deps.Logger, module, "refreshLowStock", "list products", nil, err)
		return
	}
	s.deps.Metrics.SetLowStockProducts(len(lowStock(all, s.config.LowStockThreshold)))
}
