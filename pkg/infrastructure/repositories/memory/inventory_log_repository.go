package memory

import (
	"fmt"
	"sync"

	"github.com/vsinha/shopdesk/pkg/domain/entities"
	"github.com/vsinha/shopdesk/pkg/domain/repositories"
)

// InventoryLogRepository provides an append-only in-memory stock ledger
type InventoryLogRepository struct {
	mu        sync.RWMutex
	logs      []entities.InventoryLog
	ids       map[string]struct{}
	byProduct map[string][]int
}

// NewInventoryLogRepository creates a new in-memory ledger
func NewInventoryLogRepository() *InventoryLogRepository {
	return &InventoryLogRepository{
		logs:      []entities.InventoryLog{},
		ids:       make(map[string]struct{}),
		byProduct: make(map[string][]int),
	}
}

// Verify interface compliance
var _ repositories.InventoryLogRepository = (*InventoryLogRepository)(nil)

// LoadLogs appends historical log entries in the order given (oldest first)
func (r *InventoryLogRepository) LoadLogs(logs []*entities.InventoryLog) error {
	return r.AppendLogs(logs)
}

// AppendLogs appends all entries or none of them
func (r *InventoryLogRepository) AppendLogs(logs []*entities.InventoryLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := make(map[string]struct{}, len(logs))
	for _, log := range logs {
		if log == nil {
			return fmt.Errorf("inventory log cannot be nil")
		}
		if log.ID == "" {
			return fmt.Errorf("inventory log id cannot be empty")
		}
		_, stored := r.ids[log.ID]
		_, repeated := batch[log.ID]
		if stored || repeated {
			return fmt.Errorf("inventory log %s: %w", log.ID, entities.ErrDuplicate)
		}
		batch[log.ID] = struct{}{}
	}

	for _, log := range logs {
		r.ids[log.ID] = struct{}{}
		r.byProduct[log.ProductID] = append(r.byProduct[log.ProductID], len(r.logs))
		r.logs = append(r.logs, *log)
	}
	return nil
}

// GetAllLogs returns every entry, newest first
func (r *InventoryLogRepository) GetAllLogs() ([]*entities.InventoryLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	logs := make([]*entities.InventoryLog, 0, len(r.logs))
	for i := len(r.logs) - 1; i >= 0; i-- {
		log := r.logs[i]
		logs = append(logs, &log)
	}
	return logs, nil
}

// GetLogsForProduct returns the entries of one product, newest first
func (r *InventoryLogRepository) GetLogsForProduct(productID string) ([]*entities.InventoryLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	indexes := r.byProduct[productID]
	logs := make([]*entities.InventoryLog, 0, len(indexes))
	for i := len(indexes) - 1; i >= 0; i-- {
		log := r.logs[indexes[i]]
		logs = append(logs, &log)
	}
	return logs, nil
}
