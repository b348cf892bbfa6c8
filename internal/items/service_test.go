package items

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/kechei-store/warehouse-api/testing"
)

type memoryRepo struct {
	items  map[string]Item
	stock  map[string]float64
	codes  map[string]bool
	nextID int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[string]Item), stock: make(map[string]float64), codes: make(map[string]bool)}
}

func (r *memoryRepo) List(ctx context.Context, filter ListFilter) ([]Item, error) {
	list := []Item{}
	for _, item := range r.items {
		if filter.CategoryID != "" && item.CategoryID != filter.CategoryID {
			continue
		}
		if filter.Active != nil && item.IsActive != *filter.Active {
			continue
		}
		list = append(list, item)
	}
	return list, nil
}

func (r *memoryRepo) Get(ctx context.Context, id string) (Item, error) {
	item, ok := r.items[id]
	if !ok {
		return Item{}, ErrNotFound
	}
	return item, nil
}

func (r *memoryRepo) Create(ctx context.Context, input CreateItemInput) (Item, error) {
	if r.codes[input.ItemCode] {
		return Item{}, ErrDuplicateCode
	}
	r.codes[input.ItemCode] = true
	r.nextID++
	item := Item{
		ID:              fmt.Sprintf("item-%d", r.nextID),
		ItemCode:        input.ItemCode,
		Name:            input.Name,
		Description:     input.Description,
		CategoryID:      input.CategoryID,
		UnitOfMeasureID: input.UnitOfMeasureID,
		ReorderLevel:    input.ReorderLevel,
		HasExpiry:       input.HasExpiry,
		IsActive:        true,
		CreatedBy:       input.CreatedBy,
	}
	r.items[item.ID] = item
	r.stock[item.ID] = 0
	return item, nil
}

func (r *memoryRepo) Update(ctx context.Context, id string, input UpdateItemInput) (Item, error) {
	item, ok := r.items[id]
	if !ok {
		return Item{}, ErrNotFound
	}
	item.Name = input.Name
	item.Description = input.Description
	item.CategoryID = input.CategoryID
	item.UnitOfMeasureID = input.UnitOfMeasureID
	item.ReorderLevel = input.ReorderLevel
	item.HasExpiry = input.HasExpiry
	item.IsActive = input.IsActive
	r.items[id] = item
	return item, nil
}

func TestCreateItem(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	item, err := svc.Create(context.Background(), CreateItemInput{
		ItemCode:        "MED-001",
		Name:            "Paracetamol 500mg",
		CategoryID:      "cat-1",
		UnitOfMeasureID: "uom-1",
		ReorderLevel:    20,
		CreatedBy:       "user-1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, item.ID)
	require.True(t, item.IsActive)

	// stock row initialised at zero alongside the item
	qty, ok := repo.stock[item.ID]
	require.True(t, ok)
	require.InDelta(t, 0.0, qty, 0.0001)
}

func TestCreateItemDuplicateCode(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateItemInput{ItemCode: "MED-001", Name: "First", CategoryID: "cat-1", UnitOfMeasureID: "uom-1"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateItemInput{ItemCode: "MED-001", Name: "Second", CategoryID: "cat-1", UnitOfMeasureID: "uom-1"})
	require.ErrorIs(t, err, ErrDuplicateCode)
}

func TestCreateItemValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateItemInput{Name: "No code"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, CreateItemInput{ItemCode: "X", Name: " "})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, CreateItemInput{ItemCode: "X", Name: "Y", ReorderLevel: -1})
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateItem(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	item, err := svc.Create(ctx, CreateItemInput{ItemCode: "MED-001", Name: "Old name", CategoryID: "cat-1", UnitOfMeasureID: "uom-1"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, item.ID, UpdateItemInput{Name: "New name", CategoryID: "cat-2", UnitOfMeasureID: "uom-1", IsActive: false})
	require.NoError(t, err)
	require.Equal(t, "New name", updated.Name)
	require.False(t, updated.IsActive)

	_, err = svc.Update(ctx, "missing", UpdateItemInput{Name: "X"})
	require.ErrorIs(t, err, ErrNotFound)
}
