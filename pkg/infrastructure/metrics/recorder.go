package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shop"

// Recorder owns the shop's business counters. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry *prometheus.Registry

	StockAdjustments    *prometheus.CounterVec
	Invoices            *prometheus.CounterVec
	Quotations          *prometheus.CounterVec
	DeliveryTransitions *prometheus.CounterVec
	LowStockProducts    prometheus.Gauge
	OperationDuration   *prometheus.HistogramVec
}

// NewRecorder creates a recorder with its own registry
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		StockAdjustments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stock_adjustments_total",
				Help:      "Total number of stock ledger entries",
			},
			[]string{"reason"},
		),
		Invoices: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invoices_total",
				Help:      "Total number of invoice lifecycle events",
			},
			[]string{"event"},
		),
		Quotations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "quotations_total",
				Help:      "Total number of quotation lifecycle events",
			},
			[]string{"event"},
		),
		DeliveryTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "delivery_transitions_total",
				Help:      "Total number of delivery stage changes by target stage",
			},
			[]string{"stage"},
		),
		LowStockProducts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "low_stock_products",
			Help:      "Number of active products at or below the low-stock threshold",
		}),
		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of engine operations in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	r.registry.MustRegister(
		r.StockAdjustments,
		r.Invoices,
		r.Quotations,
		r.DeliveryTransitions,
		r.LowStockProducts,
		r.OperationDuration,
	)
	return r
}

// Registry exposes the recorder's registry for gathering
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) RecordStockAdjustment(reason string) {
	if r == nil {
		return
	}
	r.StockAdjustments.WithLabelValues(reason).Inc()
}

func (r *Recorder) RecordInvoice(event string) {
	if r == nil {
		return
	}
	r.Invoices.WithLabelValues(event).Inc()
}

func (r *Recorder) RecordQuotation(event string) {
	if r == nil {
		return
	}
	r.Quotations.WithLabelValues(event).Inc()
}

func (r *Recorder) RecordDeliveryTransition(stage string) {
	if r == nil {
		return
	}
	r.DeliveryTransitions.WithLabelValues(stage).Inc()
}

func (r *Recorder) SetLowStockProducts(count int) {
	if r == nil {
		return
	}
	r.LowStockProducts.Set(float64(count))
}

// TrackOperation returns a function that observes the duration since start
//
//	defer recorder.TrackOperation("create_invoice")(time.Now())
func (r *Recorder) TrackOperation(operation string) func(time.Time) {
	return func(start time.Time) {
		if r == nil {
			return
		}
		r.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
