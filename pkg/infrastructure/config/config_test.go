package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vsinha/shopdesk/pkg/domain/entities"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"SHOP_LOG_LEVEL", "SHOP_LOG_FORMAT", "SHOP_NEGATIVE_STOCK", "SHOP_STRICT_STAGE_ORDER",
		"SHOP_LOW_STOCK_THRESHOLD", "SHOP_QUOTATION_VALIDITY_DAYS", "SHOP_PHONE_REGION",
		"SHOP_QUOTATION_PREFIX", "SHOP_INVOICE_PREFIX",
	} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Stock.NegativeStock != entities.RejectNegativeStock {
		t.Errorf("Expected reject policy by default, got %s", cfg.Stock.NegativeStock)
	}
	if cfg.Delivery.StrictStageOrder {
		t.Error("Expected forward-only stage order by default")
	}
	if cfg.Stock.LowStockThreshold != 5 || cfg.Documents.QuotationValidityDays != 30 {
		t.Errorf("Unexpected defaults %+v", cfg)
	}
	if cfg.Documents.QuotationPrefix != "QT" || cfg.Documents.InvoicePrefix != "INV" || cfg.Documents.PhoneRegion != "NP" {
		t.Errorf("Unexpected document defaults %+v", cfg.Documents)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("SHOP_NEGATIVE_STOCK", "ALLOW")
	t.Setenv("SHOP_STRICT_STAGE_ORDER", "yes")
	t.Setenv("SHOP_LOW_STOCK_THRESHOLD", "2")
	t.Setenv("SHOP_QUOTATION_VALIDITY_DAYS", "7")
	t.Setenv("SHOP_PHONE_REGION", "us")
	t.Setenv("SHOP_LOG_LEVEL", "debug")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Stock.NegativeStock != entities.AllowNegativeStock {
		t.Errorf("Expected allow policy, got %s", cfg.Stock.NegativeStock)
	}
	if !cfg.Delivery.StrictStageOrder {
		t.Error("Expected strict stage order")
	}
	if cfg.Stock.LowStockThreshold != 2 || cfg.Documents.QuotationValidityDays != 7 {
		t.Errorf("Expected overrides applied, got %+v", cfg)
	}
	if cfg.Documents.PhoneRegion != "US" || cfg.Log.Level != "debug" {
		t.Errorf("Expected US region and debug level, got %s %s", cfg.Documents.PhoneRegion, cfg.Log.Level)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown policy", "SHOP_NEGATIVE_STOCK", "clamp"},
		{"negative threshold", "SHOP_LOW_STOCK_THRESHOLD", "-1"},
		{"same prefix", "SHOP_INVOICE_PREFIX", "QT"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := FromEnv(); err == nil {
				t.Errorf("Expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	t.Setenv("SHOP_QUOTATION_PREFIX", "")
	os.Unsetenv("SHOP_QUOTATION_PREFIX")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SHOP_QUOTATION_PREFIX=QUO\n"), 0o600); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Documents.QuotationPrefix != "QUO" {
		t.Errorf("Expected prefix from .env, got %s", cfg.Documents.QuotationPrefix)
	}
}
