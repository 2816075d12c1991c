package memory

import (
	"fmt"
	"sync"

	"github.com/vsinha/shopdesk/pkg/domain/entities"
	"github.com/vsinha/shopdesk/pkg/domain/repositories"
)

// ProductRepository provides in-memory product storage indexed by id, code and barcode
type ProductRepository struct {
	mu        sync.RWMutex
	products  []*entities.Product
	byID      map[string]int
	byCode    map[string]int
	byBarcode map[string]int
}

// NewProductRepository creates a new in-memory product repository
func NewProductRepository(expectedProducts int) *ProductRepository {
	return &ProductRepository{
		products:  make([]*entities.Product, 0, expectedProducts),
		byID:      make(map[string]int, expectedProducts),
		byCode:    make(map[string]int, expectedProducts),
		byBarcode: make(map[string]int, expectedProducts),
	}
}

// Verify interface compliance
var _ repositories.ProductRepository = (*ProductRepository)(nil)

// LoadProducts loads products into the repository, stopping at the first conflict
func (r *ProductRepository) LoadProducts(products []*entities.Product) error {
	for _, product := range products {
		if err := r.SaveProduct(product); err != nil {
			return fmt.Errorf("failed to load product %s: %w", product.ID, err)
		}
	}
	return nil
}

// SaveProduct adds a new product. Id, code and barcode must all be unused.
func (r *ProductRepository) SaveProduct(product *entities.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[product.ID]; exists {
		return fmt.Errorf("product id %s: %w", product.ID, entities.ErrDuplicate)
	}
	if _, exists := r.byCode[product.ProductCode]; exists && product.ProductCode != "" {
		return fmt.Errorf("product code %s: %w", product.ProductCode, entities.ErrDuplicate)
	}
	if _, exists := r.byBarcode[product.Barcode]; exists && product.Barcode != "" {
		return fmt.Errorf("barcode %s: %w", product.Barcode, entities.ErrDuplicate)
	}

	index := len(r.products)
	r.products = append(r.products, product.Clone())
	r.byID[product.ID] = index
	if product.ProductCode != "" {
		r.byCode[product.ProductCode] = index
	}
	if product.Barcode != "" {
		r.byBarcode[product.Barcode] = index
	}
	return nil
}

// UpdateProduct replaces a stored product. Code and barcode are immutable.
func (r *ProductRepository) UpdateProduct(product *entities.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	index, exists := r.byID[product.ID]
	if !exists {
		return entities.NotFoundError("product", product.ID)
	}
	current := r.products[index]
	if current.ProductCode != product.ProductCode || current.Barcode != product.Barcode {
		return fmt.Errorf("product %s: code and barcode cannot change", product.ID)
	}
	r.products[index] = product.Clone()
	return nil
}

// GetProduct returns a copy of the product with the given id
func (r *ProductRepository) GetProduct(id string) (*entities.Product, error) {
	return r.lookup(r.byID, id, "product")
}

// GetProductByCode returns a copy of the product with the given product code
func (r *ProductRepository) GetProductByCode(code string) (*entities.Product, error) {
	return r.lookup(r.byCode, code, "product code")
}

// GetProductByBarcode returns a copy of the product with the given barcode
func (r *ProductRepository) GetProductByBarcode(barcode string) (*entities.Product, error) {
	return r.lookup(r.byBarcode, barcode, "barcode")
}

func (r *ProductRepository) lookup(index map[string]int, key, kind string) (*entities.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, exists := index[key]
	if !exists {
		return nil, entities.NotFoundError(kind, key)
	}
	return r.products[i].Clone(), nil
}

// GetAllProducts returns copies of all products in insertion order
func (r *ProductRepository) GetAllProducts() ([]*entities.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]*entities.Product, 0, len(r.products))
	for _, p := range r.products {
		products = append(products, p.Clone())
	}
	return products, nil
}
