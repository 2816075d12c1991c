package orchestration

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/vsinha/shopdesk/pkg/application/dto"
	"github.com/vsinha/shopdesk/pkg/domain/entities"
	"github.com/vsinha/shopdesk/pkg/infrastructure/clock"
	"github.com/vsinha/shopdesk/pkg/infrastructure/config"
	testhelpers "github.com/vsinha/shopdesk/pkg/infrastructure/testing"
)

func newTestShop(t *testing.T, cfg *config.Config) (*Shop, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	shop, err := NewShop(cfg,
		WithClock(clock.NewStepping(testhelpers.FixtureTime, time.Minute)),
		WithLogger(logger),
		WithIDs(testhelpers.SequentialIDs("id")),
	)
	if err != nil {
		t.Fatalf("Failed to create shop: %v", err)
	}
	return shop, hook
}

func mouseProduct() dto.NewProduct {
	return dto.NewProduct{
		Type:            entities.Hardware,
		Name:            "Mouse",
		Category:        "Accessories",
		CostPrice:       testhelpers.DecPtr("5"),
		SellingPrice:    testhelpers.DecPtr("10"),
		TaxPercent:      testhelpers.Dec("10"),
		InitialQuantity: 20,
	}
}

func TestShop_QuotationToDeliveryLifecycle(t *testing.T) {
	shop, _ := newTestShop(t, nil)
	ctx := context.Background()
	staff := entities.Actor{ID: "u-1", Name: "Sita"}

	products, err := shop.LoadProducts(ctx, []dto.NewProduct{mouseProduct()})
	if err != nil {
		t.Fatalf("Failed to load products: %v", err)
	}
	mouse := products[0]

	// quotation for two mice
	q, err := shop.Quotations.CreateQuotation(ctx, dto.NewQuotation{
		Client:    entities.Client{Name: "Acme Ltd", Email: "buyer@acme.test"},
		Items:     []entities.LineInput{{ProductID: mouse.ID, Quantity: 2}},
		CreatedBy: staff,
	})
	if err != nil {
		t.Fatalf("Failed to create quotation: %v", err)
	}
	if !q.Items[0].LineTotal.Equal(testhelpers.Dec("22")) || !q.Totals.GrandTotal.Equal(testhelpers.Dec("22")) {
		t.Errorf("Expected line and grand total 22, got %s and %s", q.Items[0].LineTotal, q.Totals.GrandTotal)
	}

	// direct invoice for three mice
	inv, err := shop.Invoices.CreateInvoice(ctx, dto.NewInvoice{
		Client:      entities.Client{Name: "Walk-in"},
		Items:       []entities.LineInput{{ProductID: mouse.ID, Quantity: 3}},
		PaymentMode: entities.PaymentCash,
		CreatedBy:   staff,
	})
	if err != nil {
		t.Fatalf("Failed to create invoice: %v", err)
	}
	stocked, _ := shop.Catalog.GetProduct(ctx, mouse.ID)
	if got := entities.QuantityOf(stocked); got != 17 {
		t.Errorf("Expected 17 mice after sale, got %d", got)
	}
	logs, _ := shop.Catalog.LogsForProduct(ctx, mouse.ID)
	if len(logs) != 2 || logs[0].Change != -3 || logs[0].Reason != entities.ReasonSale {
		t.Fatalf("Expected purchase then sale of -3, got %d logs", len(logs))
	}
	deliveries, _ := shop.Deliveries.ListByInvoice(ctx, inv.ID)
	if len(deliveries) != 1 || deliveries[0].CurrentStage != entities.StageInInventory {
		t.Fatalf("Expected one delivery in inventory, got %d", len(deliveries))
	}

	// the delivery skips arrived_at_location under the default forward-only order
	d := deliveries[0]
	for _, stage := range []entities.DeliveryStage{
		entities.StageCollectedByDriver,
		entities.StageInTransit,
		entities.StageCollectedByReceiver,
	} {
		if d, err = shop.Deliveries.AdvanceStage(ctx, d.ID, stage, staff, "", ""); err != nil {
			t.Fatalf("Failed to advance to %s: %v", stage, err)
		}
	}
	if d.Status != entities.DeliveryCompleted || d.ActualDeliveryDate == nil || len(d.TrackingHistory) != 4 {
		t.Errorf("Expected completed delivery with 4 events, got %s with %d", d.Status, len(d.TrackingHistory))
	}

	// cancelling puts the stock back
	cancelled, err := shop.Invoices.CancelInvoice(ctx, inv.ID)
	if err != nil {
		t.Fatalf("Failed to cancel invoice: %v", err)
	}
	if cancelled.Status != entities.InvoiceCancelled {
		t.Errorf("Expected cancelled invoice, got %s", cancelled.Status)
	}
	restored, _ := shop.Catalog.GetProduct(ctx, mouse.ID)
	if got := entities.QuantityOf(restored); got != 20 {
		t.Errorf("Expected 20 mice after cancel, got %d", got)
	}
	logs, _ = shop.Catalog.LogsForProduct(ctx, mouse.ID)
	if logs[0].Change != 3 || logs[0].Reason != entities.ReasonReturn {
		t.Errorf("Expected return of +3, got %s %d", logs[0].Reason, logs[0].Change)
	}

	// the quotation converts through the same path
	if _, err := shop.Quotations.Send(ctx, q.ID); err != nil {
		t.Fatalf("Failed to send quotation: %v", err)
	}
	converted, err := shop.Invoices.ConvertQuotation(ctx, q.ID, entities.PaymentOnline, staff)
	if err != nil {
		t.Fatalf("Failed to convert quotation: %v", err)
	}
	if converted.InvoiceNumber != "INV-0002" {
		t.Errorf("Expected INV-0002, got %s", converted.InvoiceNumber)
	}
	final, _ := shop.Catalog.GetProduct(ctx, mouse.ID)
	if got := entities.QuantityOf(final); got != 18 {
		t.Errorf("Expected 18 mice after conversion, got %d", got)
	}
}

func TestShop_StrictStageOrderRejectsSkips(t *testing.T) {
	cfg := config.Default()
	cfg.Delivery.StrictStageOrder = true
	shop, _ := newTestShop(t, cfg)
	ctx := context.Background()

	products, err := shop.LoadProducts(ctx, []dto.NewProduct{mouseProduct()})
	if err != nil {
		t.Fatalf("Failed to load products: %v", err)
	}
	inv, err := shop.Invoices.CreateInvoice(ctx, dto.NewInvoice{
		Client:      entities.Client{Name: "Walk-in"},
		Items:       []entities.LineInput{{ProductID: products[0].ID, Quantity: 1}},
		PaymentMode: entities.PaymentCash,
	})
	if err != nil {
		t.Fatalf("Failed to create invoice: %v", err)
	}
	deliveries, _ := shop.Deliveries.ListByInvoice(ctx, inv.ID)

	_, err = shop.Deliveries.AdvanceStage(ctx, deliveries[0].ID, entities.StageInTransit, entities.Actor{}, "", "")
	if !errors.Is(err, entities.ErrInvalidTransition) {
		t.Errorf("Expected skip to be rejected in strict mode, got %v", err)
	}
}

func TestShop_ReplayOrdersAndReport(t *testing.T) {
	shop, hook := newTestShop(t, nil)
	ctx := context.Background()

	products, err := shop.LoadProducts(ctx, []dto.NewProduct{mouseProduct()})
	if err != nil {
		t.Fatalf("Failed to load products: %v", err)
	}
	code := products[0].ProductCode
	client := entities.Client{Name: "Acme Ltd", Email: "buyer@acme.test"}

	lines := []dto.OrderLine{
		{Ref: "A", Client: client, ProductCode: code, Quantity: 2, PaymentMode: entities.PaymentCash},
		{Ref: "B", Client: client, ProductCode: code, Quantity: 50, PaymentMode: entities.PaymentCash},
		{Ref: "A", Client: client, ProductCode: code, Quantity: 1, Discount: testhelpers.Dec("10"), PaymentMode: entities.PaymentCash},
		{Ref: "C", Client: client, ProductCode: "HW-NOPE-0001", Quantity: 1, PaymentMode: entities.PaymentBank},
		{Ref: "D", Client: client, ProductCode: code, Quantity: 4, PaymentMode: entities.PaymentBank, Status: entities.InvoicePaid},
	}

	invoices, failures := shop.ReplayOrders(ctx, lines, entities.Actor{ID: "batch"})
	if len(invoices) != 2 || len(failures) != 2 {
		t.Fatalf("Expected 2 invoices and 2 failures, got %d and %d", len(invoices), len(failures))
	}
	if len(invoices[0].Items) != 2 {
		t.Errorf("Expected order A to become one invoice with 2 lines, got %d", len(invoices[0].Items))
	}
	if invoices[1].Status != entities.InvoicePaid || invoices[1].PaidAt == nil {
		t.Errorf("Expected order D paid, got %s", invoices[1].Status)
	}
	if failures[0].Ref != "B" || !strings.Contains(failures[0].Error, "insufficient") {
		t.Errorf("Expected order B to fail on stock, got %+v", failures[0])
	}
	if failures[1].Ref != "C" {
		t.Errorf("Expected order C to fail on unknown product, got %+v", failures[1])
	}

	last := hook.LastEntry()
	if last == nil || last.Message != "orders replayed" || last.Level != logrus.InfoLevel {
		t.Errorf("Expected replay summary log, got %+v", last)
	}
	if last != nil && last.Data["failed"] != 2 {
		t.Errorf("Expected 2 failed orders logged, got %v", last.Data["failed"])
	}

	report, err := shop.Report(ctx, failures)
	if err != nil {
		t.Fatalf("Failed to build report: %v", err)
	}
	if len(report.Products) != 1 || report.Products[0].Quantity != 13 {
		t.Errorf("Expected 13 mice left, got %+v", report.Products)
	}
	if report.Products[0].StockStatus != entities.InStock {
		t.Errorf("Expected in-stock, got %s", report.Products[0].StockStatus)
	}
	if len(report.Logs) != 4 || len(report.Deliveries) != 3 {
		t.Errorf("Expected 4 ledger entries and 3 deliveries, got %d and %d", len(report.Logs), len(report.Deliveries))
	}
	if !strings.Contains(report.Summary(), "2 invoices") {
		t.Errorf("Unexpected summary %q", report.Summary())
	}

	if shop.Events.Position() == 0 {
		t.Error("Expected domain events to be recorded")
	}
}

func TestNewShop_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Stock.NegativeStock = "sometimes"
	if _, err := NewShop(cfg); err == nil {
		t.Error("Expected invalid negative stock policy to be rejected")
	}
}
