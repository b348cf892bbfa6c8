package stock

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository serves the read side of the stock module from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Levels lists current stock positions for active items.
func (r *Repository) Levels(ctx context.Context) ([]Level, error) {
	return r.queryLevels(ctx, `SELECT s.item_id, i.item_code, i.name, COALESCE(c.name, ''), COALESCE(u.abbreviation, ''), s.quantity, i.reorder_level, s.last_updated
FROM stock s
JOIN items i ON s.item_id = i.id
LEFT JOIN categories c ON i.category_id = c.id
LEFT JOIN units_of_measure u ON i.unit_of_measure_id = u.id
WHERE i.is_active = true
ORDER BY i.name`)
}

// LowStock lists active items at or below their reorder level, most depleted
// first.
func (r *Repository) LowStock(ctx context.Context) ([]Level, error) {
	return r.queryLevels(ctx, `SELECT s.item_id, i.item_code, i.name, COALESCE(c.name, ''), COALESCE(u.abbreviation, ''), s.quantity, i.reorder_level, s.last_updated
FROM stock s
JOIN items i ON s.item_id = i.id
LEFT JOIN categories c ON i.category_id = c.id
LEFT JOIN units_of_measure u ON i.unit_of_measure_id = u.id
WHERE i.is_active = true AND s.quantity <= i.reorder_level
ORDER BY (s.quantity - i.reorder_level), i.name`)
}

// Movements returns the most recent ledger entries for an item.
func (r *Repository) Movements(ctx context.Context, itemID string, limit int) ([]Movement, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `SELECT id, item_id, movement_type, quantity, balance_after, reference_type, reference_id, performed_by, COALESCE(reason, ''), movement_date, created_at
FROM stock_movements
WHERE item_id = $1
ORDER BY movement_date DESC, created_at DESC
LIMIT $2`, itemID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movements := []Movement{}
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.ItemID, &m.Type, &m.Quantity, &m.BalanceAfter, &m.ReferenceType, &m.ReferenceID, &m.PerformedBy, &m.Reason, &m.MovementDate, &m.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func (r *Repository) queryLevels(ctx context.Context, query string) ([]Level, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	levels := []Level{}
	for rows.Next() {
		var l Level
		if err := rows.Scan(&l.ItemID, &l.ItemCode, &l.ItemName, &l.CategoryName, &l.Unit, &l.Quantity, &l.ReorderLevel, &l.LastUpdated); err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}
	return levels, rows.Err()
}

type txStore struct {
	tx pgx.Tx
}

// NewTxStore binds a TxStore to an open transaction. Orchestrators hand the
// result to Ledger.Adjust so stock writes share the caller's transaction.
func NewTxStore(tx pgx.Tx) TxStore {
	return &txStore{tx: tx}
}

func (s *txStore) Quantity(ctx context.Context, itemID string) (float64, error) {
	var qty float64
	err := s.tx.QueryRow(ctx, `SELECT quantity FROM stock WHERE item_id = $1`, itemID).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrItemNotFound
		}
		return 0, err
	}
	return qty, nil
}

func (s *txStore) QuantityForUpdate(ctx context.Context, itemID string) (float64, error) {
	var qty float64
	err := s.tx.QueryRow(ctx, `SELECT quantity FROM stock WHERE item_id = $1 FOR UPDATE`, itemID).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrItemNotFound
		}
		return 0, err
	}
	return qty, nil
}

func (s *txStore) SetQuantity(ctx context.Context, itemID string, quantity float64) error {
	tag, err := s.tx.Exec(ctx, `UPDATE stock SET quantity = $1, last_updated = NOW() WHERE item_id = $2`, quantity, itemID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (s *txStore) AppendMovement(ctx context.Context, m Movement) error {
	_, err := s.tx.Exec(ctx, `INSERT INTO stock_movements (item_id, movement_type, quantity, balance_after, reference_type, reference_id, performed_by, reason, movement_date, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())`,
		m.ItemID, string(m.Type), m.Quantity, m.BalanceAfter, string(m.ReferenceType), m.ReferenceID, m.PerformedBy, m.Reason, m.MovementDate)
	return err
}
