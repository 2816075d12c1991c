package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vsinha/shopdesk/pkg/application/dto"
	"github.com/vsinha/shopdesk/pkg/application/services/shared"
	"github.com/vsinha/shopdesk/pkg/domain/entities"
	"github.com/vsinha/shopdesk/pkg/infrastructure/events"
	"github.com/vsinha/shopdesk/pkg/infrastructure/logging"
)

// AdjustStock applies one signed quantity change and appends its ledger entry
func (s *Service) AdjustStock(ctx context.Context, adj dto.StockAdjustment) (*entities.InventoryLog, error) {
	result, err := s.ApplyStockBatch(ctx, []dto.StockAdjustment{adj})
	if err != nil {
		return nil, err
	}
	return result.Logs[0], nil
}

// ApplyStockBatch validates every adjustment against the cumulative effect on
// each product and then applies all of them, or none. The returned result is
// never nil; on rejection err is also returned.
func (s *Service) ApplyStockBatch(ctx context.Context, adjustments []dto.StockAdjustment) (result *dto.StockBatchResult, err error) {
	_, span := shared.StartSpan(ctx, module, "ApplyStockBatch", attribute.Int("batch.size", len(adjustments)))
	defer func() { shared.EndSpan(span, err) }()
	defer s.deps.Metrics.TrackOperation("apply_stock_batch")(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.applyLocked(adjustments)
}

// plannedChange is one adjustment resolved against the working catalog
type plannedChange struct {
	log           *entities.InventoryLog
	quantityAfter entities.Quantity
}

// applyLocked plans, validates and commits a batch. Callers hold mu.
func (s *Service) applyLocked(adjustments []dto.StockAdjustment) (*dto.StockBatchResult, error) {
	reject := func(err error) (*dto.StockBatchResult, error) {
		logging.LogError(s.deps.Logger, module, "ApplyStockBatch", "batch rejected", len(adjustments), err)
		return &dto.StockBatchResult{Outcome: dto.StockBatchRejected, Err: err}, err
	}

	if len(adjustments) == 0 {
		return &dto.StockBatchResult{Outcome: dto.StockBatchApplied}, nil
	}

	now := s.deps.Clock.Now()
	originals := make(map[string]*entities.Product)
	working := make(map[string]*entities.Product)
	var order []string
	planned := make([]plannedChange, 0, len(adjustments))

	for i, adj := range adjustments {
		if !adj.Reason.Valid() {
			verr := entities.NewValidationError("stock adjustment")
			verr.Add(fmt.Sprintf("adjustments[%d].reason", i), "oneof")
			return reject(verr)
		}

		current, seen := working[adj.ProductID]
		if !seen {
			product, err := s.products.GetProduct(adj.ProductID)
			if err != nil {
				return reject(err)
			}
			originals[adj.ProductID] = product
			current = product
			order = append(order, adj.ProductID)
		}

		available := entities.QuantityOf(current)
		next := current.WithQuantityDelta(adj.Change)
		if adj.Change < 0 && entities.QuantityOf(next) < 0 && s.config.NegativeStock != entities.AllowNegativeStock {
			return reject(&entities.InsufficientStockError{
				ProductCode: current.ProductCode,
				Available:   available,
				Requested:   -adj.Change,
			})
		}

		actor := adj.Actor
		if actor.Name == "" {
			actor.Name = entities.SystemActorName
		}
		log, err := entities.NewInventoryLog(s.deps.NewID(), current, adj.Change, adj.Reason, actor, now, adj.Notes)
		if err != nil {
			verr := entities.NewValidationError("stock adjustment")
			verr.Add(fmt.Sprintf("adjustments[%d]", i), err.Error())
			return reject(verr)
		}

		next.UpdatedAt = now
		working[adj.ProductID] = next
		planned = append(planned, plannedChange{log: log, quantityAfter: entities.QuantityOf(next)})
	}

	// Commit products first, restoring the touched ones if a later write fails
	var written []string
	rollback := func() {
		for _, id := range written {
			if err := s.products.UpdateProduct(originals[id]); err != nil {
				logging.LogError(s.deps.Logger, module, "ApplyStockBatch", "rollback", id, err)
			}
		}
	}
	for _, id := range order {
		if err := s.products.UpdateProduct(working[id]); err != nil {
			rollback()
			return reject(fmt.Errorf("failed to write product %s: %w", id, err))
		}
		written = append(written, id)
	}

	logs := make([]*entities.InventoryLog, len(planned))
	for i, p := range planned {
		logs[i] = p.log
	}
	if err := s.logs.AppendLogs(logs); err != nil {
		rollback()
		return reject(fmt.Errorf("failed to append inventory logs: %w", err))
	}

	result := &dto.StockBatchResult{Outcome: dto.StockBatchApplied, Logs: logs}
	for _, id := range order {
		result.Products = append(result.Products, working[id].Clone())
	}

	for _, p := range planned {
		s.deps.Publish(module, events.NewStockAdjustedEvent(p.log, p.quantityAfter))
		s.deps.Metrics.RecordStockAdjustment(string(p.log.Reason))
		s.deps.Logger.WithFields(logrus.Fields{
			"module":         module,
			"product_code":   p.log.ProductCode,
			"change":         p.log.Change,
			"reason":         p.log.Reason,
			"quantity_after": p.quantityAfter,
		}).Info("stock adjusted")
	}
	s.refreshLowStock()

	return result, nil
}
