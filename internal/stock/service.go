package stock

import (
	"context"
	"errors"
)

// ReadRepository abstracts the read-side queries used by Service.
type ReadRepository interface {
	Levels(ctx context.Context) ([]Level, error)
	LowStock(ctx context.Context) ([]Level, error)
	Movements(ctx context.Context, itemID string, limit int) ([]Movement, error)
}

// Service serves stock level and movement queries.
type Service struct {
	repo ReadRepository
}

// NewService builds Service.
func NewService(repo ReadRepository) *Service {
	return &Service{repo: repo}
}

// Levels returns current quantities for all active items.
func (s *Service) Levels(ctx context.Context) ([]Level, error) {
	return s.repo.Levels(ctx)
}

// LowStock returns active items at or below their reorder level.
func (s *Service) LowStock(ctx context.Context) ([]Level, error) {
	return s.repo.LowStock(ctx)
}

// Movements returns the latest ledger entries for one item.
func (s *Service) Movements(ctx context.Context, itemID string, limit int) ([]Movement, error) {
	if itemID == "" {
		return nil, errors.New("stock: item id required")
	}
	return s.repo.Movements(ctx, itemID, limit)
}
