package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/vsinha/shopdesk/pkg/domain/entities"
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// StockConfig holds catalog and ledger configuration
type StockConfig struct {
	NegativeStock     entities.NegativeStockPolicy
	LowStockThreshold entities.Quantity
}

// DocumentConfig holds quotation and invoice configuration
type DocumentConfig struct {
	QuotationPrefix       string
	InvoicePrefix         string
	QuotationValidityDays int
	PhoneRegion           string
}

// DeliveryConfig holds delivery tracking configuration
type DeliveryConfig struct {
	StrictStageOrder bool
}

// Config holds all configuration
type Config struct {
	Log       LogConfig
	Stock     StockConfig
	Documents DocumentConfig
	Delivery  DeliveryConfig
}

// Default returns the configuration used when no environment is set
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "json"},
		Stock: StockConfig{
			NegativeStock:     entities.RejectNegativeStock,
			LowStockThreshold: entities.DefaultLowStockThreshold,
		},
		Documents: DocumentConfig{
			QuotationPrefix:       "QT",
			InvoicePrefix:         "INV",
			QuotationValidityDays: 30,
			PhoneRegion:           "NP",
		},
		Delivery: DeliveryConfig{StrictStageOrder: false},
	}
}

// Load reads an optional .env file and then the SHOP_* environment variables
func Load(envFiles ...string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load(envFiles...)
	return FromEnv()
}

// FromEnv builds the configuration from the environment over the defaults
func FromEnv() (*Config, error) {
	def := Default()

	cfg := &Config{
		Log: LogConfig{
			Level:  getEnv("SHOP_LOG_LEVEL", def.Log.Level),
			Format: getEnv("SHOP_LOG_FORMAT", def.Log.Format),
		},
		Stock: StockConfig{
			NegativeStock:     entities.NegativeStockPolicy(strings.ToLower(getEnv("SHOP_NEGATIVE_STOCK", string(def.Stock.NegativeStock)))),
			LowStockThreshold: entities.Quantity(getEnvAsInt("SHOP_LOW_STOCK_THRESHOLD", int(def.Stock.LowStockThreshold))),
		},
		Documents: DocumentConfig{
			QuotationPrefix:       getEnv("SHOP_QUOTATION_PREFIX", def.Documents.QuotationPrefix),
			InvoicePrefix:         getEnv("SHOP_INVOICE_PREFIX", def.Documents.InvoicePrefix),
			QuotationValidityDays: getEnvAsInt("SHOP_QUOTATION_VALIDITY_DAYS", def.Documents.QuotationValidityDays),
			PhoneRegion:           strings.ToUpper(getEnv("SHOP_PHONE_REGION", def.Documents.PhoneRegion)),
		},
		Delivery: DeliveryConfig{
			StrictStageOrder: getEnvAsBool("SHOP_STRICT_STAGE_ORDER", def.Delivery.StrictStageOrder),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no sensible fallback
func (c *Config) Validate() error {
	if !c.Stock.NegativeStock.Valid() {
		return fmt.Errorf("SHOP_NEGATIVE_STOCK must be reject or allow, got %q", c.Stock.NegativeStock)
	}
	if c.Stock.LowStockThreshold < 0 {
		return fmt.Errorf("SHOP_LOW_STOCK_THRESHOLD cannot be negative, got %d", c.Stock.LowStockThreshold)
	}
	if c.Documents.QuotationValidityDays < 0 {
		return fmt.Errorf("SHOP_QUOTATION_VALIDITY_DAYS cannot be negative, got %d", c.Documents.QuotationValidityDays)
	}
	if c.Documents.QuotationPrefix == "" || c.Documents.InvoicePrefix == "" {
		return fmt.Errorf("document number prefixes cannot be empty")
	}
	if c.Documents.QuotationPrefix == c.Documents.InvoicePrefix {
		return fmt.Errorf("quotation and invoice prefixes must differ, both are %q", c.Documents.InvoicePrefix)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	switch strings.ToLower(getEnv(key, "")) {
	case "1", "true", "yes", "y":
		return true
	case "0", "false", "no", "n":
		return false
	default:
		return defaultValue
	}
}
