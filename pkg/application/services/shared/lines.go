package shared

import (
	"context"
	"errors"
	"fmt"

	"github.com/vsinha/shopdesk/pkg/domain/entities"
	"github.com/vsinha/shopdesk/pkg/domain/services"
)

// ProductLookup resolves products for document lines
type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (*entities.Product, error)
}

// PricedLine is a line ready for a document together with the product it was
// priced from
type PricedLine struct {
	Line    entities.LineItem
	Product *entities.Product
}

// BuildLines resolves every input against the catalog and prices it. The unit
// price defaults to the product's selling price and the tax is always the
// product's. Failures are collected into verr under items[i].<field>.
func BuildLines(
	ctx context.Context,
	products ProductLookup,
	inputs []entities.LineInput,
	newID func() string,
	verr *entities.ValidationError,
) ([]PricedLine, error) {
	lines := make([]PricedLine, 0, len(inputs))

	for i, in := range inputs {
		field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }

		if in.Quantity < 1 {
			verr.Add(field("quantity"), "gte")
		}
		if !services.ValidPercent(in.Discount) {
			verr.Add(field("discount"), "percent")
		}
		if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
			verr.Add(field("unit_price"), "gte")
		}
		if in.ProductID == "" {
			verr.Add(field("product_id"), "required")
			continue
		}

		product, err := products.GetProduct(ctx, in.ProductID)
		if errors.Is(err, entities.ErrNotFound) {
			verr.Add(field("product_id"), "exists")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve product %s: %w", in.ProductID, err)
		}
		if !product.IsActive() {
			verr.Add(field("product_id"), "active")
			continue
		}

		unitPrice := product.SellingPrice
		if in.UnitPrice != nil {
			unitPrice = *in.UnitPrice
		}

		line := entities.LineItem{
			ID:          newID(),
			ProductID:   product.ID,
			ProductCode: product.ProductCode,
			ProductName: product.Name,
			Quantity:    in.Quantity,
			UnitPrice:   unitPrice,
			TaxPercent:  product.TaxPercent,
			Discount:    in.Discount,
		}
		services.PriceLine(&line)
		lines = append(lines, PricedLine{Line: line, Product: product})
	}

	return lines, nil
}
