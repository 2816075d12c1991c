package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/shopdesk/pkg/application/dto"
	"github.com/vsinha/shopdesk/pkg/domain/entities"
)

var productHeader = []string{
	"type", "name", "category", "cost_price", "selling_price", "tax_percent", "quantity",
	"supplier", "warranty_months", "license_type", "expiry_date", "description",
}

var orderHeader = []string{
	"order_ref", "client_name", "client_email", "client_phone", "client_address",
	"product_code", "quantity", "discount", "payment_mode", "status",
}

// Loader handles loading shop fixtures from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadProducts loads product definitions from a CSV file. Codes and barcodes
// are assigned by the catalog when the products are added.
func (l *Loader) LoadProducts(filename string) ([]dto.NewProduct, error) {
	records, err := readTable(filename, "products", productHeader)
	if err != nil {
		return nil, err
	}

	products := make([]dto.NewProduct, 0, len(records))
	for i, record := range records {
		product, err := parseProduct(record)
		if err != nil {
			return nil, fmt.Errorf("products CSV row %d: %w", i+2, err)
		}
		products = append(products, product)
	}
	return products, nil
}

// LoadOrders loads an order script from a CSV file. Rows sharing an
// order_ref belong to the same invoice.
func (l *Loader) LoadOrders(filename string) ([]dto.OrderLine, error) {
	records, err := readTable(filename, "orders", orderHeader)
	if err != nil {
		return nil, err
	}

	lines := make([]dto.OrderLine, 0, len(records))
	for i, record := range records {
		line, err := parseOrderLine(record)
		if err != nil {
			return nil, fmt.Errorf("orders CSV row %d: %w", i+2, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// readTable returns the data rows of a CSV file after checking its header
func readTable(filename, kind string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
	}
	return records[1:], nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseProduct(record []string) (dto.NewProduct, error) {
	productType := entities.ProductType(strings.ToLower(strings.TrimSpace(record[0])))
	if productType != entities.Hardware && productType != entities.Software {
		return dto.NewProduct{}, fmt.Errorf("invalid type: %s (expected hardware or software)", record[0])
	}

	costPrice, err := decimal.NewFromString(strings.TrimSpace(record[3]))
	if err != nil {
		return dto.NewProduct{}, fmt.Errorf("invalid cost_price: %s", record[3])
	}
	sellingPrice, err := decimal.NewFromString(strings.TrimSpace(record[4]))
	if err != nil {
		return dto.NewProduct{}, fmt.Errorf("invalid selling_price: %s", record[4])
	}
	taxPercent, err := parseOptionalDecimal(record[5])
	if err != nil {
		return dto.NewProduct{}, fmt.Errorf("invalid tax_percent: %s", record[5])
	}
	quantity, err := parseOptionalInt(record[6])
	if err != nil {
		return dto.NewProduct{}, fmt.Errorf("invalid quantity: %s", record[6])
	}

	product := dto.NewProduct{
		Type:            productType,
		Name:            strings.TrimSpace(record[1]),
		Category:        strings.TrimSpace(record[2]),
		CostPrice:       &costPrice,
		SellingPrice:    &sellingPrice,
		TaxPercent:      taxPercent,
		InitialQuantity: entities.Quantity(quantity),
		Description:     strings.TrimSpace(record[11]),
	}

	switch productType {
	case entities.Hardware:
		warranty, err := parseOptionalInt(record[8])
		if err != nil {
			return dto.NewProduct{}, fmt.Errorf("invalid warranty_months: %s", record[8])
		}
		product.Supplier = strings.TrimSpace(record[7])
		product.WarrantyMonths = int(warranty)

	case entities.Software:
		product.LicenseType = entities.LicenseType(strings.ToLower(strings.TrimSpace(record[9])))
		if expiry := strings.TrimSpace(record[10]); expiry != "" {
			date, err := time.Parse("2006-01-02", expiry)
			if err != nil {
				return dto.NewProduct{}, fmt.Errorf("invalid expiry_date format: %s (expected YYYY-MM-DD)", expiry)
			}
			product.ExpiryDate = &date
		}
	}

	return product, nil
}

func parseOrderLine(record []string) (dto.OrderLine, error) {
	ref := strings.TrimSpace(record[0])
	if ref == "" {
		return dto.OrderLine{}, fmt.Errorf("order_ref is required")
	}

	quantity, err := strconv.ParseInt(strings.TrimSpace(record[6]), 10, 64)
	if err != nil {
		return dto.OrderLine{}, fmt.Errorf("invalid quantity: %s", record[6])
	}
	discount, err := parseOptionalDecimal(record[7])
	if err != nil {
		return dto.OrderLine{}, fmt.Errorf("invalid discount: %s", record[7])
	}

	paymentMode := entities.PaymentMode(strings.ToLower(strings.TrimSpace(record[8])))
	if !paymentMode.Valid() {
		return dto.OrderLine{}, fmt.Errorf("invalid payment_mode: %s (expected cash, online or bank)", record[8])
	}

	status := entities.InvoiceStatus(strings.ToLower(strings.TrimSpace(record[9])))
	if status != "" && status != entities.InvoicePending && status != entities.InvoicePaid {
		return dto.OrderLine{}, fmt.Errorf("invalid status: %s (expected pending or paid)", record[9])
	}

	return dto.OrderLine{
		Ref: ref,
		Client: entities.Client{
			Name:    strings.TrimSpace(record[1]),
			Email:   strings.TrimSpace(record[2]),
			Phone:   strings.TrimSpace(record[3]),
			Address: strings.TrimSpace(record[4]),
		},
		ProductCode: strings.TrimSpace(record[5]),
		Quantity:    entities.Quantity(quantity),
		Discount:    discount,
		PaymentMode: paymentMode,
		Status:      status,
	}, nil
}

func parseOptionalDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func parseOptionalInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
