package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/vsinha/shopdesk/pkg/interfaces/cli/commands"
)

func main() {
	// Command line flags
	var (
		scenarioDir = flag.String(
			"scenario",
			"",
			"Path to scenario directory containing products.csv and orders.csv",
		)
		productsFile = flag.String("products", "", "Path to products CSV file")
		ordersFile   = flag.String("orders", "", "Path to orders CSV file")
		envFile      = flag.String("env", "", "Path to .env file")
		outputDir    = flag.String("output", "", "Output directory for results (optional)")
		format       = flag.String("format", "text", "Output format: text, json, csv, xlsx")
		verbose      = flag.Bool("verbose", false, "Enable verbose output")
		help         = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	config := commands.Config{
		ScenarioDir:  *scenarioDir,
		ProductsFile: *productsFile,
		OrdersFile:   *ordersFile,
		EnvFile:      *envFile,
		OutputDir:    *outputDir,
		Format:       *format,
		Verbose:      *verbose,
		Help:         *help,
	}

	cmd := commands.NewShopCommand(config)
	ctx := context.Background()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
