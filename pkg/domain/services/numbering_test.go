package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/vsinha/shopdesk/pkg/domain/entities"
)

func TestProductCodeGenerator_Next(t *testing.T) {
	g := NewProductCodeGenerator()

	tests := []struct {
		productType entities.ProductType
		category    string
		expected    string
	}{
		{entities.Hardware, "Laptops", "HW-LAP-0001"},
		{entities.Hardware, "Laptops", "HW-LAP-0002"},
		{entities.Software, "Antivirus", "SW-ANT-0001"},
		{entities.Hardware, "Graphics Cards", "HW-GRA-0001"},
		{entities.Hardware, "RAM", "HW-RAM-0001"},
		{entities.Hardware, "PC", "HW-PCX-0001"},
	}

	for _, tt := range tests {
		if got := g.Next(tt.productType, tt.category); got != tt.expected {
			t.Errorf("Next(%s, %s) = %s, want %s", tt.productType, tt.category, got, tt.expected)
		}
	}
}

func TestProductCodeGenerator_ObserveSkipsSeededCodes(t *testing.T) {
	g := NewProductCodeGenerator()
	g.Observe("HW-MON-0007")
	g.Observe("HW-MON-0003")
	g.Observe("garbage")

	if got := g.Next(entities.Hardware, "Monitors"); got != "HW-MON-0008" {
		t.Errorf("Expected HW-MON-0008 after observing 0007, got %s", got)
	}
}

func TestEAN13CheckDigit(t *testing.T) {
	if got := EAN13CheckDigit("400638133393"); got != 1 {
		t.Errorf("Expected check digit 1, got %d", got)
	}
	if !ValidEAN13("4006381333931") {
		t.Error("Expected 4006381333931 to be a valid EAN-13")
	}
	if ValidEAN13("4006381333932") {
		t.Error("Expected wrong check digit to be rejected")
	}
	if ValidEAN13("40063813339A1") {
		t.Error("Expected non-digit barcode to be rejected")
	}
}

func TestBarcodeGenerator_UniqueAndValid(t *testing.T) {
	g := NewBarcodeGenerator()
	g.Observe("2000000000109")

	seen := make(map[string]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code := g.Next()
			mu.Lock()
			defer mu.Unlock()
			if seen[code] {
				t.Errorf("Duplicate barcode %s", code)
			}
			seen[code] = true
		}()
	}
	wg.Wait()

	for code := range seen {
		if !ValidEAN13(code) {
			t.Errorf("Generated barcode %s is not a valid EAN-13", code)
		}
		if code[:3] != "200" {
			t.Errorf("Expected in-store prefix 200, got %s", code)
		}
		if code <= "2000000000109" {
			t.Errorf("Barcode %s reuses the observed range", code)
		}
	}
}

func TestDocumentNumberer(t *testing.T) {
	n := NewDocumentNumberer("QT")
	if got := n.Next(); got != "QT-0001" {
		t.Errorf("Expected QT-0001, got %s", got)
	}
	n.Observe("QT-0041")
	n.Observe("INV-0900")
	if got := n.Next(); got != "QT-0042" {
		t.Errorf("Expected QT-0042 after observing QT-0041, got %s", got)
	}

	inv := NewDocumentNumberer("INV")
	var wg sync.WaitGroup
	numbers := make([]string, 100)
	for i := range numbers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			numbers[i] = inv.Next()
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, num := range numbers {
		if seen[num] {
			t.Fatalf("Duplicate invoice number %s", num)
		}
		seen[num] = true
	}
	if !seen[fmt.Sprintf("INV-%04d", 100)] {
		t.Error("Expected INV-0100 to be issued")
	}
}
