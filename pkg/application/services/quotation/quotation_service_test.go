package quotation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vsinha/shopdesk/pkg/application/dto"
	"github.com/vsinha/shopdesk/pkg/application/services/catalog"
	"github.com/vsinha/shopdesk/pkg/application/services/shared"
	"github.com/vsinha/shopdesk/pkg/domain/entities"
	"github.com/vsinha/shopdesk/pkg/infrastructure/clock"
	"github.com/vsinha/shopdesk/pkg/infrastructure/events"
	"github.com/vsinha/shopdesk/pkg/infrastructure/logging"
	"github.com/vsinha/shopdesk/pkg/infrastructure/metrics"
	testhelpers "github.com/vsinha/shopdesk/pkg/infrastructure/testing"
)

type fixture struct {
	svc      *Service
	catalog  *catalog.Service
	clock    *clock.Stepping
	recorder *metrics.Recorder
	store    *events.InMemoryEventStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := testhelpers.NewRepositories()
	recorder := metrics.NewRecorder()
	store := events.NewInMemoryEventStore(logging.Discard())
	clk := clock.NewStepping(testhelpers.FixtureTime, 0)
	deps := shared.Deps{
		Clock:   clk,
		Events:  store,
		Metrics: recorder,
		NewID:   testhelpers.SequentialIDs("id"),
	}

	cat := catalog.NewService(repos.Products, repos.Logs, catalog.Config{
		NegativeStock:     entities.RejectNegativeStock,
		LowStockThreshold: entities.DefaultLowStockThreshold,
	}, deps)
	if err := cat.Seed(testhelpers.SampleCatalog()); err != nil {
		t.Fatalf("Failed to seed catalog: %v", err)
	}

	svc := NewService(repos.Quotations, cat, Config{
		NumberPrefix:        "QT",
		DefaultValidityDays: 30,
		PhoneRegion:         "US",
	}, deps)
	return &fixture{svc: svc, catalog: cat, clock: clk, recorder: recorder, store: store}
}

func acme() entities.Client {
	return entities.Client{Name: "Acme Ltd", Email: "buyer@acme.test", Phone: "(650) 253-0000"}
}

func mouseQuote(f *fixture, t *testing.T) *entities.Quotation {
	t.Helper()
	q, err := f.svc.CreateQuotation(context.Background(), dto.NewQuotation{
		Client:    acme(),
		Items:     []entities.LineInput{{ProductID: testhelpers.MouseID, Quantity: 2}},
		CreatedBy: entities.Actor{ID: "u-1", Name: "Ram"},
	})
	if err != nil {
		t.Fatalf("Failed to create quotation: %v", err)
	}
	return q
}

func TestCreateQuotation_PricesMouseLine(t *testing.T) {
	f := newFixture(t)
	q := mouseQuote(f, t)

	if q.QuotationNumber != "QT-0001" {
		t.Errorf("Expected QT-0001, got %s", q.QuotationNumber)
	}
	if q.Status != entities.QuotationDraft {
		t.Errorf("Expected draft, got %s", q.Status)
	}
	if len(q.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(q.Items))
	}
	item := q.Items[0]
	if !item.LineTotal.Equal(testhelpers.Dec("22")) {
		t.Errorf("Expected line total 22, got %s", item.LineTotal)
	}
	if item.ProductCode != "HW-ACC-0001" || !item.UnitPrice.Equal(testhelpers.Dec("10")) {
		t.Errorf("Expected the product's code and selling price, got %s at %s", item.ProductCode, item.UnitPrice)
	}
	if !q.Totals.GrandTotal.Equal(testhelpers.Dec("22")) {
		t.Errorf("Expected grand total 22, got %s", q.Totals.GrandTotal)
	}
	if !q.Totals.Subtotal.Equal(testhelpers.Dec("20")) || !q.Totals.TotalTax.Equal(testhelpers.Dec("2")) {
		t.Errorf("Expected subtotal 20 and tax 2, got %+v", q.Totals)
	}
	if q.Client.Phone != "+16502530000" {
		t.Errorf("Expected normalised phone, got %s", q.Client.Phone)
	}
	if !q.ValidUntil.Equal(testhelpers.FixtureTime.AddDate(0, 0, 30)) {
		t.Errorf("Expected default validity of 30 days, got %v", q.ValidUntil)
	}
	if q.CreatedBy != "u-1" {
		t.Errorf("Expected creator u-1, got %s", q.CreatedBy)
	}

	if got := testutil.ToFloat64(f.recorder.Quotations.WithLabelValues("created")); got != 1 {
		t.Errorf("Expected 1 created quotation metric, got %v", got)
	}
	evts, err := f.store.ReadEvents(q.ID, 1)
	if err != nil {
		t.Fatalf("Failed to read events: %v", err)
	}
	if len(evts) != 1 || evts[0].Type() != events.QuotationCreatedEvent {
		t.Errorf("Expected one quotation.created event, got %d", len(evts))
	}
}

func TestCreateQuotation_Validation(t *testing.T) {
	f := newFixture(t)

	testCases := []struct {
		name          string
		req           dto.NewQuotation
		expectedField string
	}{
		{
			name:          "missing client name",
			req:           dto.NewQuotation{Client: entities.Client{Email: "a@b.test"}, Items: []entities.LineInput{{ProductID: testhelpers.MouseID, Quantity: 1}}},
			expectedField: "client.name",
		},
		{
			name:          "missing client email",
			req:           dto.NewQuotation{Client: entities.Client{Name: "Acme"}, Items: []entities.LineInput{{ProductID: testhelpers.MouseID, Quantity: 1}}},
			expectedField: "client.email",
		},
		{
			name:          "malformed email",
			req:           dto.NewQuotation{Client: entities.Client{Name: "Acme", Email: "nope"}, Items: []entities.LineInput{{ProductID: testhelpers.MouseID, Quantity: 1}}},
			expectedField: "client.email",
		},
		{
			name:          "bad phone",
			req:           dto.NewQuotation{Client: entities.Client{Name: "Acme", Email: "a@b.test", Phone: "call me"}, Items: []entities.LineInput{{ProductID: testhelpers.MouseID, Quantity: 1}}},
			expectedField: "client.phone",
		},
		{
			name:          "no items",
			req:           dto.NewQuotation{Client: acme()},
			expectedField: "items",
		},
		{
			name:          "zero quantity",
			req:           dto.NewQuotation{Client: acme(), Items: []entities.LineInput{{ProductID: testhelpers.MouseID, Quantity: 0}}},
			expectedField: "items[0].quantity",
		},
		{
			name:          "discount above 100",
			req:           dto.NewQuotation{Client: acme(), Items: []entities.LineInput{{ProductID: testhelpers.MouseID, Quantity: 1, Discount: testhelpers.Dec("120")}}},
			expectedField: "items[0].discount",
		},
		{
			name:          "unknown product",
			req:           dto.NewQuotation{Client: acme(), Items: []entities.LineInput{{ProductID: "ghost", Quantity: 1}}},
			expectedField: "items[0].product_id",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateQuotation(context.Background(), tc.req)
			var verr *entities.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected validation error, got %v", err)
			}
			if _, ok := verr.Fields[tc.expectedField]; !ok {
				t.Errorf("Expected failure on %s, got %v", tc.expectedField, verr.Fields)
			}
		})
	}

	all, _ := f.svc.ListQuotations(context.Background())
	if len(all) != 0 {
		t.Errorf("Expected no quotations stored after failures, got %d", len(all))
	}
}

func TestUpdateQuotation_RecomputesTotals(t *testing.T) {
	f := newFixture(t)
	q := mouseQuote(f, t)

	notes := "bulk order"
	days := 7
	f.clock.Advance(time.Hour)
	updated, err := f.svc.UpdateQuotation(context.Background(), q.ID, dto.QuotationUpdate{
		Items: []entities.LineInput{
			{ProductID: testhelpers.MouseID, Quantity: 5},
			{ProductID: testhelpers.LaptopID, Quantity: 1, UnitPrice: testhelpers.DecPtr("100"), Discount: testhelpers.Dec("20")},
		},
		ValidityDays: &days,
		Notes:        &notes,
	})
	if err != nil {
		t.Fatalf("Failed to update quotation: %v", err)
	}

	// 5 x 10 x 1.10 = 55, plus 100 less 20% plus 13% = 90.4
	if !updated.Totals.GrandTotal.Equal(testhelpers.Dec("145.4")) {
		t.Errorf("Expected grand total 145.4, got %s", updated.Totals.GrandTotal)
	}
	if !updated.Totals.TotalDiscount.Equal(testhelpers.Dec("20")) {
		t.Errorf("Expected total discount 20, got %s", updated.Totals.TotalDiscount)
	}
	if updated.Notes != notes {
		t.Errorf("Expected notes %q, got %q", notes, updated.Notes)
	}
	expectedValidity := testhelpers.FixtureTime.Add(time.Hour).AddDate(0, 0, 7)
	if !updated.ValidUntil.Equal(expectedValidity) {
		t.Errorf("Expected validity %v, got %v", expectedValidity, updated.ValidUntil)
	}
	if updated.QuotationNumber != q.QuotationNumber {
		t.Error("Quotation number must not change on update")
	}
}

func TestUpdateQuotation_OnlyWhileEditable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := mouseQuote(f, t)

	if _, err := f.svc.Send(ctx, q.ID); err != nil {
		t.Fatalf("Failed to send: %v", err)
	}
	notes := "still editable"
	if _, err := f.svc.UpdateQuotation(ctx, q.ID, dto.QuotationUpdate{Notes: &notes}); err != nil {
		t.Errorf("Expected sent quotation to be editable, got %v", err)
	}

	if _, err := f.svc.Accept(ctx, q.ID); err != nil {
		t.Fatalf("Failed to accept: %v", err)
	}
	_, err := f.svc.UpdateQuotation(ctx, q.ID, dto.QuotationUpdate{Notes: &notes})
	if !errors.Is(err, entities.ErrInvalidTransition) {
		t.Errorf("Expected invalid transition for accepted quotation, got %v", err)
	}
}

func TestTransitionStatus(t *testing.T) {
	testCases := []struct {
		name  string
		path  []entities.QuotationStatus
		valid bool
	}{
		{"draft to sent", []entities.QuotationStatus{entities.QuotationSent}, true},
		{"sent to accepted", []entities.QuotationStatus{entities.QuotationSent, entities.QuotationAccepted}, true},
		{"sent to rejected", []entities.QuotationStatus{entities.QuotationSent, entities.QuotationRejected}, true},
		{"draft to accepted", []entities.QuotationStatus{entities.QuotationAccepted}, false},
		{"rejected is terminal", []entities.QuotationStatus{entities.QuotationSent, entities.QuotationRejected, entities.QuotationAccepted}, false},
		{"converted only via conversion", []entities.QuotationStatus{entities.QuotationSent, entities.QuotationConverted}, false},
		{"back to draft", []entities.QuotationStatus{entities.QuotationSent, entities.QuotationDraft}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			q := mouseQuote(f, t)

			var err error
			for _, next := range tc.path {
				if _, err = f.svc.TransitionStatus(ctx, q.ID, next); err != nil {
					break
				}
			}
			if tc.valid && err != nil {
				t.Errorf("Expected path to succeed, got %v", err)
			}
			if !tc.valid && !errors.Is(err, entities.ErrInvalidTransition) {
				t.Errorf("Expected invalid transition, got %v", err)
			}
		})
	}
}

func TestTransitionStatus_UnknownQuotation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Send(context.Background(), "missing")
	if !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestConvertWith(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := mouseQuote(f, t)

	issue := func(q *entities.Quotation) (string, error) { return "inv-1", nil }

	if _, err := f.svc.ConvertWith(ctx, q.ID, issue); !errors.Is(err, entities.ErrInvalidTransition) {
		t.Errorf("Expected draft quotation to be unconvertible, got %v", err)
	}

	if _, err := f.svc.Send(ctx, q.ID); err != nil {
		t.Fatalf("Failed to send: %v", err)
	}

	failing := func(q *entities.Quotation) (string, error) { return "", errors.New("stock unavailable") }
	if _, err := f.svc.ConvertWith(ctx, q.ID, failing); err == nil {
		t.Error("Expected the issue failure to propagate")
	}
	stored, _ := f.svc.GetQuotation(ctx, q.ID)
	if stored.Status != entities.QuotationSent {
		t.Errorf("Expected quotation to stay sent after failed conversion, got %s", stored.Status)
	}

	converted, err := f.svc.ConvertWith(ctx, q.ID, issue)
	if err != nil {
		t.Fatalf("Failed to convert: %v", err)
	}
	if converted.Status != entities.QuotationConverted || converted.ConvertedInvoiceID != "inv-1" {
		t.Errorf("Expected converted with invoice inv-1, got %s/%s", converted.Status, converted.ConvertedInvoiceID)
	}

	if _, err := f.svc.ConvertWith(ctx, q.ID, issue); !errors.Is(err, entities.ErrInvalidTransition) {
		t.Errorf("Expected second conversion to fail, got %v", err)
	}
}

func TestIsExpired(t *testing.T) {
	f := newFixture(t)
	days := 1
	q, err := f.svc.CreateQuotation(context.Background(), dto.NewQuotation{
		Client:       acme(),
		Items:        []entities.LineInput{{ProductID: testhelpers.MouseID, Quantity: 1}},
		ValidityDays: &days,
	})
	if err != nil {
		t.Fatalf("Failed to create quotation: %v", err)
	}

	if f.svc.IsExpired(q) {
		t.Error("Expected fresh quotation to be valid")
	}
	f.clock.Advance(48 * time.Hour)
	if !f.svc.IsExpired(q) {
		t.Error("Expected quotation to expire after its validity")
	}
}

func TestListByStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := mouseQuote(f, t)
	mouseQuote(f, t)

	if _, err := f.svc.Send(ctx, first.ID); err != nil {
		t.Fatalf("Failed to send: %v", err)
	}

	drafts, _ := f.svc.ListByStatus(ctx, entities.QuotationDraft)
	sent, _ := f.svc.ListByStatus(ctx, entities.QuotationSent)
	if len(drafts) != 1 || len(sent) != 1 {
		t.Errorf("Expected 1 draft and 1 sent, got %d and %d", len(drafts), len(sent))
	}

	byNumber, err := f.svc.GetByNumber(ctx, "QT-0002")
	if err != nil {
		t.Fatalf("Failed to find QT-0002: %v", err)
	}
	if byNumber.Status != entities.QuotationDraft {
		t.Errorf("Expected QT-0002 to be a draft, got %s", byNumber.Status)
	}
}
