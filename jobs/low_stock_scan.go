package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/kechei-store/warehouse-api/internal/stock"
)

// LowStockLister reads items at or below their reorder level.
type LowStockLister interface {
	LowStock(ctx context.Context) ([]stock.Level, error)
}

// LowStockScanner reports depleted items on a schedule.
type LowStockScanner struct {
	logger *slog.Logger
	repo   LowStockLister
}

// NewLowStockScanner constructs the scanner.
func NewLowStockScanner(logger *slog.Logger, repo LowStockLister) *LowStockScanner {
	return &LowStockScanner{logger: logger, repo: repo}
}

// Handle processes TaskLowStockScan tasks.
func (s *LowStockScanner) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	levels, err := s.repo.LowStock(ctx)
	if err != nil {
		return err
	}
	for _, level := range levels {
		s.logger.Warn("low stock",
			slog.String("item_code", level.ItemCode),
			slog.String("item_name", level.ItemName),
			slog.Float64("quantity", level.Quantity),
			slog.Float64("reorder_level", level.ReorderLevel))
	}
	s.logger.Info("low stock scan finished", slog.Int("flagged", len(levels)))
	return nil
}
