package items

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kechei-store/warehouse-api/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for items.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const itemColumns = `i.id, i.item_code, i.name, COALESCE(i.description, ''), COALESCE(i.category_id::text, ''), COALESCE(c.name, ''), COALESCE(i.unit_of_measure_id::text, ''), COALESCE(u.name, ''), COALESCE(u.abbreviation, ''), i.reorder_level, i.has_expiry, i.is_active, COALESCE(s.quantity, 0), COALESCE(i.created_by::text, ''), i.created_at, i.updated_at`

const itemJoins = `
FROM items i
LEFT JOIN categories c ON i.category_id = c.id
LEFT JOIN units_of_measure u ON i.unit_of_measure_id = u.id
LEFT JOIN stock s ON i.id = s.item_id`

// List returns items with category, unit and current stock, filtered as
// requested.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Item, error) {
	query := `SELECT ` + itemColumns + itemJoins + ` WHERE 1=1`
	args := []any{}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		query += fmt.Sprintf(" AND i.category_id = $%d", len(args))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		query += fmt.Sprintf(" AND i.is_active = $%d", len(args))
	}
	query += " ORDER BY i.name"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

// Get returns one item by id.
func (r *Repository) Get(ctx context.Context, id string) (Item, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+itemColumns+itemJoins+` WHERE i.id = $1`, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, ErrNotFound
		}
		return Item{}, err
	}
	return item, nil
}

// Create inserts the item and its zero stock row in one transaction.
func (r *Repository) Create(ctx context.Context, input CreateItemInput) (Item, error) {
	var id string
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO items (item_code, name, description, category_id, unit_of_measure_id, reorder_level, has_expiry, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
			input.ItemCode, input.Name, input.Description, input.CategoryID, input.UnitOfMeasureID, input.ReorderLevel, input.HasExpiry, input.CreatedBy).Scan(&id)
		if err != nil {
			return mapPgError(err)
		}
		_, err = tx.Exec(ctx, `INSERT INTO stock (item_id, quantity) VALUES ($1, 0)`, id)
		return err
	})
	if err != nil {
		return Item{}, err
	}
	return r.Get(ctx, id)
}

// Update overwrites the mutable item fields.
func (r *Repository) Update(ctx context.Context, id string, input UpdateItemInput) (Item, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE items
SET name = $1, description = $2, category_id = $3, unit_of_measure_id = $4, reorder_level = $5, has_expiry = $6, is_active = $7, updated_at = NOW()
WHERE id = $8`,
		input.Name, input.Description, input.CategoryID, input.UnitOfMeasureID, input.ReorderLevel, input.HasExpiry, input.IsActive, id)
	if err != nil {
		return Item{}, mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return Item{}, ErrNotFound
	}
	return r.Get(ctx, id)
}

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	err := row.Scan(&item.ID, &item.ItemCode, &item.Name, &item.Description, &item.CategoryID, &item.CategoryName, &item.UnitOfMeasureID, &item.UnitName, &item.UnitAbbr, &item.ReorderLevel, &item.HasExpiry, &item.IsActive, &item.CurrentStock, &item.CreatedBy, &item.CreatedAt, &item.UpdatedAt)
	return item, err
}

func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrDuplicateCode
		case "23503":
			return fmt.Errorf("%w: unknown category or unit", ErrValidation)
		}
	}
	return err
}
