package items

import (
	"context"
	"fmt"
	"strings"

	"github.com/kechei-store/warehouse-api/internal/shared"
)

// RepositoryPort abstracts item persistence for the service.
type RepositoryPort interface {
	List(ctx context.Context, filter ListFilter) ([]Item, error)
	Get(ctx context.Context, id string) (Item, error)
	Create(ctx context.Context, input CreateItemInput) (Item, error)
	Update(ctx context.Context, id string, input UpdateItemInput) (Item, error)
}

// AuditPort records committed mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service manages the item catalogue.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService constructs the item service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// List returns items matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Item, error) {
	return s.repo.List(ctx, filter)
}

// Get returns one item.
func (s *Service) Get(ctx context.Context, id string) (Item, error) {
	if id == "" {
		return Item{}, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// Create registers a new item together with its zero stock row.
func (s *Service) Create(ctx context.Context, input CreateItemInput) (Item, error) {
	input.ItemCode = strings.TrimSpace(input.ItemCode)
	input.Name = strings.TrimSpace(input.Name)
	if input.ItemCode == "" {
		return Item{}, fmt.Errorf("%w: item code required", ErrValidation)
	}
	if input.Name == "" {
		return Item{}, fmt.Errorf("%w: name required", ErrValidation)
	}
	if input.ReorderLevel < 0 {
		return Item{}, fmt.Errorf("%w: reorder level cannot be negative", ErrValidation)
	}

	item, err := s.repo.Create(ctx, input)
	if err != nil {
		return Item{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.CreatedBy,
			Action:   "item:create",
			Entity:   "item",
			EntityID: item.ID,
			Meta:     map[string]any{"item_code": item.ItemCode},
		})
	}
	return item, nil
}

// Update overwrites the mutable fields of an item.
func (s *Service) Update(ctx context.Context, id string, input UpdateItemInput) (Item, error) {
	if id == "" {
		return Item{}, ErrNotFound
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Item{}, fmt.Errorf("%w: name required", ErrValidation)
	}
	if input.ReorderLevel < 0 {
		return Item{}, fmt.Errorf("%w: reorder level cannot be negative", ErrValidation)
	}
	return s.repo.Update(ctx, id, input)
}
