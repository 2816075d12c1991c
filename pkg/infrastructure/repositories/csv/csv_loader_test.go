package csv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vsinha/shopdesk/pkg/domain/entities"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadProducts(t *testing.T) {
	path := writeFile(t, "products.csv", strings.Join([]string{
		"type,name,category,cost_price,selling_price,tax_percent,quantity,supplier,warranty_months,license_type,expiry_date,description",
		"Hardware,Wireless Mouse,Accessories,5,10,10,20,Logitech,12,,,optical",
		"software,Endpoint Antivirus,Antivirus,20,35.50,,50,,,Multi-User,2026-12-31,",
	}, "\n"))

	products, err := NewLoader().LoadProducts(path)
	if err != nil {
		t.Fatalf("Failed to load products: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("Expected 2 products, got %d", len(products))
	}

	mouse := products[0]
	if mouse.Type != entities.Hardware || mouse.Name != "Wireless Mouse" || mouse.InitialQuantity != 20 {
		t.Errorf("Unexpected hardware product %+v", mouse)
	}
	if mouse.Supplier != "Logitech" || mouse.WarrantyMonths != 12 {
		t.Errorf("Expected supplier and warranty, got %s %d", mouse.Supplier, mouse.WarrantyMonths)
	}
	if !mouse.TaxPercent.Equal(decimal.NewFromInt(10)) || !mouse.CostPrice.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Unexpected prices cost=%s tax=%s", mouse.CostPrice, mouse.TaxPercent)
	}

	av := products[1]
	if av.LicenseType != entities.MultiUser {
		t.Errorf("Expected multi-user license, got %s", av.LicenseType)
	}
	if av.ExpiryDate == nil || av.ExpiryDate.Year() != 2026 {
		t.Errorf("Expected 2026 expiry, got %v", av.ExpiryDate)
	}
	if !av.TaxPercent.IsZero() || !av.SellingPrice.Equal(decimal.RequireFromString("35.5")) {
		t.Errorf("Expected empty tax as zero and price 35.5, got %s %s", av.TaxPercent, av.SellingPrice)
	}
}

func TestLoadProducts_Errors(t *testing.T) {
	header := "type,name,category,cost_price,selling_price,tax_percent,quantity,supplier,warranty_months,license_type,expiry_date,description"

	testCases := []struct {
		name     string
		content  string
		contains string
	}{
		{"header only", header, "at least one data row"},
		{"wrong header", "kind,name\nhardware,Mouse", "header mismatch"},
		{"bad type", header + "\nfirmware,X,Misc,1,2,0,0,,,,,", "invalid type"},
		{"bad price", header + "\nhardware,X,Misc,abc,2,0,0,,,,,", "invalid cost_price"},
		{"bad quantity", header + "\nhardware,X,Misc,1,2,0,many,,,,,", "invalid quantity"},
		{"bad expiry", header + "\nsoftware,X,Misc,1,2,0,1,,,single,31/12/2026,", "invalid expiry_date"},
		{"short row", header + "\nhardware,X,Misc", "wrong number of fields"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, "products.csv", tc.content)
			_, err := NewLoader().LoadProducts(path)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tc.contains) {
				t.Errorf("Expected error containing %q, got %v", tc.contains, err)
			}
		})
	}

	if _, err := NewLoader().LoadProducts(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadOrders(t *testing.T) {
	path := writeFile(t, "orders.csv", strings.Join([]string{
		"order_ref,client_name,client_email,client_phone,client_address,product_code,quantity,discount,payment_mode,status",
		"ORD-1,Acme Ltd,buyer@acme.test,,Thamel,HW-ACC-0001,3,12.5,Cash,PAID",
		"ORD-1,Acme Ltd,buyer@acme.test,,Thamel,SW-ANT-0001,1,,cash,paid",
		"ORD-2,Walk-in,,,,HW-LAP-0001,1,0,online,",
	}, "\n"))

	lines, err := NewLoader().LoadOrders(path)
	if err != nil {
		t.Fatalf("Failed to load orders: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(lines))
	}

	first := lines[0]
	if first.Ref != "ORD-1" || first.Client.Name != "Acme Ltd" || first.ProductCode != "HW-ACC-0001" {
		t.Errorf("Unexpected first line %+v", first)
	}
	if first.PaymentMode != entities.PaymentCash || first.Status != entities.InvoicePaid {
		t.Errorf("Expected cash/paid, got %s/%s", first.PaymentMode, first.Status)
	}
	if !first.Discount.Equal(decimal.RequireFromString("12.5")) || first.Quantity != 3 {
		t.Errorf("Expected quantity 3 discount 12.5, got %d %s", first.Quantity, first.Discount)
	}
	if !lines[1].Discount.IsZero() {
		t.Errorf("Expected empty discount as zero, got %s", lines[1].Discount)
	}
	if lines[2].Status != "" {
		t.Errorf("Expected empty status to be left for the invoice default, got %s", lines[2].Status)
	}
}

func TestLoadOrders_Errors(t *testing.T) {
	header := "order_ref,client_name,client_email,client_phone,client_address,product_code,quantity,discount,payment_mode,status"

	testCases := []struct {
		name     string
		row      string
		contains string
	}{
		{"missing ref", ",Acme,,,,HW-ACC-0001,1,0,cash,", "order_ref is required"},
		{"bad quantity", "O1,Acme,,,,HW-ACC-0001,x,0,cash,", "invalid quantity"},
		{"bad payment", "O1,Acme,,,,HW-ACC-0001,1,0,cheque,", "invalid payment_mode"},
		{"cancelled status", "O1,Acme,,,,HW-ACC-0001,1,0,cash,cancelled", "invalid status"},
		{"bad discount", "O1,Acme,,,,HW-ACC-0001,1,ten,cash,", "invalid discount"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, "orders.csv", header+"\n"+tc.row)
			_, err := NewLoader().LoadOrders(path)
			if err == nil || !strings.Contains(err.Error(), tc.contains) {
				t.Errorf("Expected error containing %q, got %v", tc.contains, err)
			}
			if err != nil && !strings.Contains(err.Error(), "row 2") {
				t.Errorf("Expected row number in error, got %v", err)
			}
		})
	}
}
