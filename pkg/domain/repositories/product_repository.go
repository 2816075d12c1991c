package repositories

import "github.com/vsinha/shopdesk/pkg/domain/entities"

// ProductRepository provides access to the product catalog.
// Returned products are copies; changes are persisted with UpdateProduct.
type ProductRepository interface {
	GetProduct(id string) (*entities.Product, error)
	GetProductByCode(code string) (*entities.Product, error)
	GetProductByBarcode(barcode string) (*entities.Product, error)
	GetAllProducts() ([]*entities.Product, error)
	SaveProduct(product *entities.Product) error
	UpdateProduct(product *entities.Product) error
	LoadProducts(products []*entities.Product) error
}
