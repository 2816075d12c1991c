package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vsinha/shopdesk/pkg/application/dto"
	"github.com/vsinha/shopdesk/pkg/application/services/orchestration"
	"github.com/vsinha/shopdesk/pkg/domain/entities"
	"github.com/vsinha/shopdesk/pkg/infrastructure/config"
	"github.com/vsinha/shopdesk/pkg/infrastructure/logging"
	"github.com/vsinha/shopdesk/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/shopdesk/pkg/interfaces/cli/output"
)

// cliActor is recorded as the creator of replayed orders
var cliActor = entities.Actor{ID: "cli", Name: "CLI"}

// Config holds configuration for the shop command
type Config struct {
	ScenarioDir  string
	ProductsFile string
	OrdersFile   string
	EnvFile      string
	OutputDir    string
	Format       string
	Verbose      bool
	Help         bool
	Stdout       io.Writer
}

// ShopCommand loads fixtures into a fresh shop, replays orders and reports
type ShopCommand struct {
	config Config
	out    io.Writer
}

// NewShopCommand creates a new shop command with the given configuration
func NewShopCommand(config Config) *ShopCommand {
	out := config.Stdout
	if out == nil {
		out = os.Stdout
	}
	return &ShopCommand{
		config: config,
		out:    out,
	}
}

// Execute runs the shop command
func (c *ShopCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	if err := c.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	files, err := c.resolveInputFiles()
	if err != nil {
		return fmt.Errorf("failed to resolve input files: %w", err)
	}

	var envFiles []string
	if c.config.EnvFile != "" {
		envFiles = append(envFiles, c.config.EnvFile)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if c.config.Verbose {
		cfg.Log.Level = "debug"
		c.printHeader(files)
	}

	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	shop, err := orchestration.NewShop(cfg, orchestration.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create shop: %w", err)
	}

	loader := csv.NewLoader()

	products, err := loader.LoadProducts(files["Products"])
	if err != nil {
		return fmt.Errorf("error loading products: %w", err)
	}
	if _, err := shop.LoadProducts(ctx, products); err != nil {
		return fmt.Errorf("error adding products: %w", err)
	}
	if c.config.Verbose {
		fmt.Fprintf(c.out, "✅ Loaded %d products\n", len(products))
	}

	var failures []dto.OrderFailure
	if path, ok := files["Orders"]; ok {
		orders, err := loader.LoadOrders(path)
		if err != nil {
			return fmt.Errorf("error loading orders: %w", err)
		}

		startTime := time.Now()
		invoices, failed := shop.ReplayOrders(ctx, orders, cliActor)
		failures = failed
		if c.config.Verbose {
			fmt.Fprintf(c.out, "✅ Replayed %d order lines into %d invoices in %v (%d failed)\n\n",
				len(orders), len(invoices), time.Since(startTime), len(failures))
		}
	}

	report, err := shop.Report(ctx, failures)
	if err != nil {
		return fmt.Errorf("error building report: %w", err)
	}

	err = output.Generate(report, output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
		Writer:    c.out,
	})
	if err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	if c.config.Verbose {
		fmt.Fprintln(c.out, "🏁 Shop run complete!")
	}
	return nil
}

// validateInputs validates the command configuration
func (c *ShopCommand) validateInputs() error {
	if c.config.ScenarioDir == "" && c.config.ProductsFile == "" {
		return fmt.Errorf("must specify either -scenario directory or -products file")
	}
	return nil
}

// resolveInputFiles determines the files to load. The orders file is
// optional when a scenario directory is used.
func (c *ShopCommand) resolveInputFiles() (map[string]string, error) {
	files := make(map[string]string)

	if c.config.ScenarioDir != "" {
		files["Products"] = filepath.Join(c.config.ScenarioDir, "products.csv")
		orders := filepath.Join(c.config.ScenarioDir, "orders.csv")
		if _, err := os.Stat(orders); err == nil {
			files["Orders"] = orders
		}
	}
	if c.config.ProductsFile != "" {
		files["Products"] = c.config.ProductsFile
	}
	if c.config.OrdersFile != "" {
		files["Orders"] = c.config.OrdersFile
	}

	for name, path := range files {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s file not found: %s", name, path)
		}
	}

	return files, nil
}

// printHeader prints the command header information
func (c *ShopCommand) printHeader(files map[string]string) {
	fmt.Fprintf(c.out, "🚀 Shopdesk CLI\n")
	fmt.Fprintf(c.out, "Input files:\n")
	fmt.Fprintf(c.out, "  Products: %s\n", files["Products"])
	if orders, ok := files["Orders"]; ok {
		fmt.Fprintf(c.out, "  Orders: %s\n", orders)
	}
	fmt.Fprintf(c.out, "Output format: %s\n", c.config.Format)
	if c.config.OutputDir != "" {
		fmt.Fprintf(c.out, "Output directory: %s\n", c.config.OutputDir)
	}
	fmt.Fprintln(c.out)
}

// showHelp displays the help message
func (c *ShopCommand) showHelp() {
	fmt.Fprintf(c.out, `Shopdesk CLI - catalog, invoicing and delivery tracking for an IT retail shop

USAGE:
    shopdesk -scenario <directory>                  # Use scenario directory with CSV files
    shopdesk -products <file> [-orders <file>]      # Use individual CSV files

OPTIONS:
    -scenario <dir>     Path to scenario directory containing products.csv and orders.csv
    -products <file>    Path to products CSV file
    -orders <file>      Path to orders CSV file (optional)
    -env <file>         Path to .env file (default: .env if present)
    -output <dir>       Output directory for results (required for csv and xlsx)
    -format <fmt>       Output format: text, json, csv, xlsx (default: text)
    -verbose            Enable verbose output
    -help               Show this help message

CSV FILE FORMATS:

products.csv:
    type,name,category,cost_price,selling_price,tax_percent,quantity,supplier,warranty_months,license_type,expiry_date,description
    hardware,Wireless Mouse,Accessories,5,10,10,20,Logitech,12,,,2.4GHz optical mouse
    software,Endpoint Antivirus,Antivirus,20,35,13,50,,,multi-user,2026-12-31,

orders.csv (rows sharing order_ref become one invoice):
    order_ref,client_name,client_email,client_phone,client_address,product_code,quantity,discount,payment_mode,status
    ORD-1,Acme Ltd,buyer@acme.test,,Kathmandu,HW-ACC-0001,3,0,cash,paid

ENVIRONMENT:
    SHOP_LOG_LEVEL, SHOP_LOG_FORMAT, SHOP_NEGATIVE_STOCK (reject|allow),
    SHOP_STRICT_STAGE_ORDER, SHOP_LOW_STOCK_THRESHOLD, SHOP_QUOTATION_VALIDITY_DAYS,
    SHOP_PHONE_REGION, SHOP_QUOTATION_PREFIX, SHOP_INVOICE_PREFIX

EXAMPLES:
    # Run the demo scenario
    shopdesk -scenario scenarios/demo -verbose

    # Export a workbook
    shopdesk -scenario scenarios/demo -format xlsx -output results/
`)
}
