package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/vsinha/shopdesk/pkg/application/dto"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	Writer    io.Writer
}

func (c Config) writer() io.Writer {
	if c.Writer != nil {
		return c.Writer
	}
	return os.Stdout
}

// Generate renders the report in the configured format
func Generate(report *dto.ShopReport, config Config) error {
	switch config.Format {
	case "", "text":
		return generateTextOutput(report, config)
	case "json":
		return generateJSONOutput(report, config)
	case "csv":
		return generateCSVOutput(report, config)
	case "xlsx":
		return generateXLSXOutput(report, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput prints every table in aligned columns
func generateTextOutput(report *dto.ShopReport, config Config) error {
	w := config.writer()

	fmt.Fprintf(w, "📊 Shop Report\n")
	fmt.Fprintf(w, "==============\n\n")
	fmt.Fprintf(w, "Generated: %s\n", report.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "%s\n\n", report.Summary())

	for _, t := range buildTables(report) {
		if len(t.Rows) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s %s:\n", t.Icon, t.Title)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(t.Header, "\t"))
		for _, row := range t.Rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return fmt.Errorf("failed to write %s table: %w", t.Title, err)
		}
		fmt.Fprintln(w)
	}

	return nil
}

// generateJSONOutput writes the report as JSON to the writer or a file
func generateJSONOutput(report *dto.ShopReport, config Config) error {
	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.writer(), string(jsonData))
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(config.OutputDir, "shop_report.json")
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes one CSV file per table
func generateCSVOutput(report *dto.ShopReport, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, t := range buildTables(report) {
		filename := filepath.Join(config.OutputDir, t.File+".csv")
		if err := writeTableCSV(t, filename); err != nil {
			return fmt.Errorf("failed to write %s CSV: %w", t.Title, err)
		}
		if config.Verbose {
			fmt.Fprintf(config.writer(), "💾 %s saved to: %s\n", t.Title, filename)
		}
	}

	return nil
}

func writeTableCSV(t table, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(t.Header); err != nil {
		return err
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return err
	}
	return file.Close()
}
