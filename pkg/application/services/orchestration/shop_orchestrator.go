package orchestration

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/vsinha/shopdesk/pkg/application/dto"
	"github.com/vsinha/shopdesk/pkg/application/services/catalog"
	"github.com/vsinha/shopdesk/pkg/application/services/delivery"
	"github.com/vsinha/shopdesk/pkg/application/services/invoice"
	"github.com/vsinha/shopdesk/pkg/application/services/quotation"
	"github.com/vsinha/shopdesk/pkg/application/services/shared"
	"github.com/vsinha/shopdesk/pkg/domain/entities"
	"github.com/vsinha/shopdesk/pkg/infrastructure/clock"
	"github.com/vsinha/shopdesk/pkg/infrastructure/config"
	"github.com/vsinha/shopdesk/pkg/infrastructure/events"
	"github.com/vsinha/shopdesk/pkg/infrastructure/logging"
	"github.com/vsinha/shopdesk/pkg/infrastructure/metrics"
	"github.com/vsinha/shopdesk/pkg/infrastructure/repositories/memory"
)

// Shop wires the catalog, quotation, invoice and delivery engines over one
// set of repositories
type Shop struct {
	Catalog    *catalog.Service
	Quotations *quotation.Service
	Invoices   *invoice.Service
	Deliveries *delivery.Service
	Events     *events.InMemoryEventStore
	Metrics    *metrics.Recorder

	clock  clock.Clock
	logger *logrus.Logger
}

type options struct {
	clock   clock.Clock
	logger  *logrus.Logger
	metrics *metrics.Recorder
	events  *events.InMemoryEventStore
	newID   func() string
}

// Option customises a Shop
type Option func(*options)

// WithClock sets the time source for every engine
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger replaces the logger built from configuration
func WithLogger(logger *logrus.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics records into an existing recorder
func WithMetrics(r *metrics.Recorder) Option {
	return func(o *options) { o.metrics = r }
}

// WithEventStore appends domain events to an existing store
func WithEventStore(store *events.InMemoryEventStore) Option {
	return func(o *options) { o.events = store }
}

// WithIDs sets the identifier generator
func WithIDs(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

// NewShop creates a shop with empty in-memory repositories
func NewShop(cfg *config.Config, opts ...Option) (*Shop, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	}
	if o.metrics == nil {
		o.metrics = metrics.NewRecorder()
	}
	if o.events == nil {
		o.events = events.NewInMemoryEventStore(o.logger)
	}

	deps := shared.Deps{
		Clock:   o.clock,
		Logger:  o.logger,
		Events:  o.events,
		Metrics: o.metrics,
		NewID:   o.newID,
	}.WithDefaults()

	products := memory.NewProductRepository(64)
	logs := memory.NewInventoryLogRepository()

	cat := catalog.NewService(products, logs, catalog.Config{
		NegativeStock:     cfg.Stock.NegativeStock,
		LowStockThreshold: cfg.Stock.LowStockThreshold,
	}, deps)
	quotes := quotation.NewService(memory.NewQuotationRepository(), cat, quotation.Config{
		NumberPrefix:        cfg.Documents.QuotationPrefix,
		DefaultValidityDays: cfg.Documents.QuotationValidityDays,
		PhoneRegion:         cfg.Documents.PhoneRegion,
	}, deps)
	deliveries := delivery.NewService(memory.NewDeliveryRepository(), delivery.Config{
		StrictStageOrder: cfg.Delivery.StrictStageOrder,
		PhoneRegion:      cfg.Documents.PhoneRegion,
	}, deps)
	invoices := invoice.NewService(memory.NewInvoiceRepository(), cat, quotes, deliveries, invoice.Config{
		NumberPrefix: cfg.Documents.InvoicePrefix,
		PhoneRegion:  cfg.Documents.PhoneRegion,
	}, deps)

	return &Shop{
		Catalog:    cat,
		Quotations: quotes,
		Invoices:   invoices,
		Deliveries: deliveries,
		Events:     o.events,
		Metrics:    o.metrics,
		clock:      deps.Clock,
		logger:     deps.Logger,
	}, nil
}

// LoadProducts adds every product in order and stops at the first failure
func (s *Shop) LoadProducts(ctx context.Context, products []dto.NewProduct) ([]*entities.Product, error) {
	created := make([]*entities.Product, 0, len(products))
	for i, req := range products {
		p, err := s.Catalog.AddProduct(ctx, req)
		if err != nil {
			return created, fmt.Errorf("failed to add product %d (%s): %w", i+1, req.Name, err)
		}
		created = append(created, p)
	}
	return created, nil
}

// ReplayOrders issues one invoice per order reference. Lines sharing a
// reference become one invoice; client, payment mode and status come from
// the first line. Orders that fail are reported and skipped; an invoice whose
// deliveries failed is both returned and reported.
func (s *Shop) ReplayOrders(ctx context.Context, lines []dto.OrderLine, actor entities.Actor) ([]*entities.Invoice, []dto.OrderFailure) {
	var refs []string
	grouped := make(map[string][]dto.OrderLine)
	for _, line := range lines {
		if _, seen := grouped[line.Ref]; !seen {
			refs = append(refs, line.Ref)
		}
		grouped[line.Ref] = append(grouped[line.Ref], line)
	}

	var issued []*entities.Invoice
	var failures []dto.OrderFailure
	for _, ref := range refs {
		inv, err := s.replayOrder(ctx, grouped[ref], actor)
		if inv != nil {
			issued = append(issued, inv)
		}
		if err != nil {
			logging.LogError(s.logger, "orchestration", "ReplayOrders", ref, len(grouped[ref]), err)
			failures = append(failures, dto.OrderFailure{Ref: ref, Error: err.Error()})
		}
	}

	s.logger.WithFields(logrus.Fields{
		"module":   "orchestration",
		"orders":   len(refs),
		"invoiced": len(issued),
		"failed":   len(failures),
	}).Info("orders replayed")

	return issued, failures
}

func (s *Shop) replayOrder(ctx context.Context, lines []dto.OrderLine, actor entities.Actor) (*entities.Invoice, error) {
	first := lines[0]
	req := dto.NewInvoice{
		Client:      first.Client,
		PaymentMode: first.PaymentMode,
		Status:      first.Status,
		CreatedBy:   actor,
	}
	for _, line := range lines {
		product, err := s.Catalog.GetProductByCode(ctx, line.ProductCode)
		if err != nil {
			return nil, err
		}
		req.Items = append(req.Items, entities.LineInput{
			ProductID: product.ID,
			Quantity:  line.Quantity,
			Discount:  line.Discount,
		})
	}
	return s.Invoices.CreateInvoice(ctx, req)
}

// Report snapshots every collection
func (s *Shop) Report(ctx context.Context, failures []dto.OrderFailure) (*dto.ShopReport, error) {
	products, err := s.Catalog.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	logs, err := s.Catalog.InventoryLogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory logs: %w", err)
	}
	quotations, err := s.Quotations.ListQuotations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotations: %w", err)
	}
	invoices, err := s.Invoices.ListInvoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	deliveries, err := s.Deliveries.ListDeliveries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}

	report := &dto.ShopReport{
		GeneratedAt: s.clock.Now(),
		Logs:        logs,
		Quotations:  quotations,
		Invoices:    invoices,
		Deliveries:  deliveries,
		Failures:    failures,
	}
	for _, p := range products {
		report.Products = append(report.Products, dto.ProductView{
			Product:     p,
			Quantity:    entities.QuantityOf(p),
			StockStatus: s.Catalog.StockStatus(p),
		})
	}
	return report, nil
}
