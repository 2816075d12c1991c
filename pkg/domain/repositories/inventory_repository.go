package repositories

import "github.com/vsinha/shopdesk/pkg/domain/entities"

// InventoryLogRepository provides append-only access to the stock ledger.
// Logs are returned newest first.
type InventoryLogRepository interface {
	AppendLogs(logs []*entities.InventoryLog) error
	GetAllLogs() ([]*entities.InventoryLog, error)
	GetLogsForProduct(productID string) ([]*entities.InventoryLog, error)
	LoadLogs(logs []*entities.InventoryLog) error
}
