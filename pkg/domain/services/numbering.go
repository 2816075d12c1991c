package services

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/vsinha/shopdesk/pkg/domain/entities"
)

// ProductCodeGenerator issues codes like HW-LAP-0001. Each type/category
// prefix keeps its own counter so codes never collide within a catalog.
type ProductCodeGenerator struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewProductCodeGenerator creates a generator with empty counters
func NewProductCodeGenerator() *ProductCodeGenerator {
	return &ProductCodeGenerator{counters: make(map[string]int)}
}

// Next returns the next code for a product type and category
func (g *ProductCodeGenerator) Next(productType entities.ProductType, category string) string {
	prefix := ProductCodePrefix(productType, category)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.counters[prefix]++
	return fmt.Sprintf("%s-%04d", prefix, g.counters[prefix])
}

// Observe advances the counters past an existing code, so seeded fixtures
// are never reissued
func (g *ProductCodeGenerator) Observe(code string) {
	idx := strings.LastIndex(code, "-")
	if idx <= 0 {
		return
	}
	seq, err := strconv.Atoi(code[idx+1:])
	if err != nil {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if seq > g.counters[code[:idx]] {
		g.counters[code[:idx]] = seq
	}
}

// ProductCodePrefix derives the deterministic code prefix of a product
func ProductCodePrefix(productType entities.ProductType, category string) string {
	typeCode := "SW"
	if productType == entities.Hardware {
		typeCode = "HW"
	}
	return typeCode + "-" + CategoryAbbreviation(category)
}

// CategoryAbbreviation returns the first three letters or digits of a category, upper-cased
func CategoryAbbreviation(category string) string {
	var b strings.Builder
	for _, r := range category {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
			if b.Len() == 3 {
				break
			}
		}
	}
	for b.Len() < 3 {
		b.WriteByte('X')
	}
	return b.String()
}

// BarcodeGenerator issues EAN-13 barcodes in the in-store 200 range
type BarcodeGenerator struct {
	mu     sync.Mutex
	prefix string
	last   int64
}

const barcodePrefix = "200"

// NewBarcodeGenerator creates a barcode generator
func NewBarcodeGenerator() *BarcodeGenerator {
	return &BarcodeGenerator{prefix: barcodePrefix}
}

// Next returns a new unique barcode
func (g *BarcodeGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last++
	body := fmt.Sprintf("%s%09d", g.prefix, g.last)
	return body + strconv.Itoa(EAN13CheckDigit(body))
}

// Observe advances the sequence past an existing in-store barcode
func (g *BarcodeGenerator) Observe(barcode string) {
	if len(barcode) != 13 || !strings.HasPrefix(barcode, g.prefix) {
		return
	}
	seq, err := strconv.ParseInt(barcode[len(g.prefix):12], 10, 64)
	if err != nil {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if seq > g.last {
		g.last = seq
	}
}

// EAN13CheckDigit computes the GS1 check digit of a 12-digit body
func EAN13CheckDigit(body string) int {
	sum := 0
	for i, r := range body {
		digit := int(r - '0')
		if i%2 == 1 {
			digit *= 3
		}
		sum += digit
	}
	return (10 - sum%10) % 10
}

// ValidEAN13 reports whether a barcode is 13 digits with a correct check digit
func ValidEAN13(barcode string) bool {
	if len(barcode) != 13 {
		return false
	}
	for _, r := range barcode {
		if r < '0' || r > '9' {
			return false
		}
	}
	return EAN13CheckDigit(barcode[:12]) == int(barcode[12]-'0')
}

// DocumentNumberer issues sequential human-readable numbers such as QT-0001
type DocumentNumberer struct {
	mu     sync.Mutex
	prefix string
	last   int
}

// NewDocumentNumberer creates a numberer for a prefix
func NewDocumentNumberer(prefix string) *DocumentNumberer {
	return &DocumentNumberer{prefix: prefix}
}

// Next returns the next number in the sequence
func (n *DocumentNumberer) Next() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.last++
	return fmt.Sprintf("%s-%04d", n.prefix, n.last)
}

// Observe advances the sequence past an existing number with the same prefix
func (n *DocumentNumberer) Observe(number string) {
	rest, ok := strings.CutPrefix(number, n.prefix+"-")
	if !ok {
		return
	}
	seq, err := strconv.Atoi(rest)
	if err != nil {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if seq > n.last {
		n.last = seq
	}
}
