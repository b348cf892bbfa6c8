package receiving

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kechei-store/warehouse-api/internal/stock"
)

// Repository provides PostgreSQL backed persistence for goods received notes.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the transactional operations used by Service.Receive.
type TxRepository interface {
	InsertGRN(ctx context.Context, grn GoodsReceivedNote) (string, error)
	InsertLine(ctx context.Context, line GRNLine) error
	Stock() stock.TxStore
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx wraps the callback in a repeatable-read transaction. Rollback is
// deferred so every exit path releases the transaction; commit happens only
// after the callback returns nil.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(ctx, &txRepository{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *txRepository) InsertGRN(ctx context.Context, grn GoodsReceivedNote) (string, error) {
	var id string
	err := r.tx.QueryRow(ctx, `INSERT INTO goods_received_notes (grn_number, supplier_id, delivery_note_number, received_date, received_by, notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW()) RETURNING id`,
		grn.GRNNumber, nullString(grn.SupplierID), grn.DeliveryNoteNumber, grn.ReceivedDate, grn.ReceivedBy, grn.Notes).Scan(&id)
	if err != nil {
		return "", mapPgError(err)
	}
	return id, nil
}

func (r *txRepository) InsertLine(ctx context.Context, line GRNLine) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO grn_items (grn_id, item_id, quantity, expiry_date, batch_number, notes)
VALUES ($1, $2, $3, $4, $5, $6)`,
		line.GRNID, line.ItemID, line.Quantity, line.ExpiryDate, line.BatchNumber, line.Notes)
	return mapPgError(err)
}

func (r *txRepository) Stock() stock.TxStore {
	return stock.NewTxStore(r.tx)
}

// List returns note headers with supplier and receiver names plus line counts,
// newest first.
func (r *Repository) List(ctx context.Context) ([]GoodsReceivedNote, error) {
	rows, err := r.pool.Query(ctx, `SELECT g.id, g.grn_number, COALESCE(g.supplier_id::text, ''), COALESCE(s.name, ''), COALESCE(g.delivery_note_number, ''), g.received_date, g.received_by, COALESCE(u.full_name, ''), COALESCE(g.notes, ''), COUNT(gi.id), g.created_at
FROM goods_received_notes g
LEFT JOIN suppliers s ON g.supplier_id = s.id
LEFT JOIN users u ON g.received_by = u.id
LEFT JOIN grn_items gi ON g.id = gi.grn_id
GROUP BY g.id, s.name, u.full_name
ORDER BY g.received_date DESC, g.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []GoodsReceivedNote{}
	for rows.Next() {
		var g GoodsReceivedNote
		if err := rows.Scan(&g.ID, &g.GRNNumber, &g.SupplierID, &g.SupplierName, &g.DeliveryNoteNumber, &g.ReceivedDate, &g.ReceivedBy, &g.ReceivedByName, &g.Notes, &g.ItemCount, &g.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, g)
	}
	return notes, rows.Err()
}

// Get returns one note and its lines.
func (r *Repository) Get(ctx context.Context, id string) (GoodsReceivedNote, []GRNLine, error) {
	var g GoodsReceivedNote
	err := r.pool.QueryRow(ctx, `SELECT g.id, g.grn_number, COALESCE(g.supplier_id::text, ''), COALESCE(s.name, ''), COALESCE(g.delivery_note_number, ''), g.received_date, g.received_by, COALESCE(u.full_name, ''), COALESCE(g.notes, ''), g.created_at
FROM goods_received_notes g
LEFT JOIN suppliers s ON g.supplier_id = s.id
LEFT JOIN users u ON g.received_by = u.id
WHERE g.id = $1`, id).Scan(&g.ID, &g.GRNNumber, &g.SupplierID, &g.SupplierName, &g.DeliveryNoteNumber, &g.ReceivedDate, &g.ReceivedBy, &g.ReceivedByName, &g.Notes, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return GoodsReceivedNote{}, nil, ErrNotFound
		}
		return GoodsReceivedNote{}, nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT gi.id, gi.grn_id, gi.item_id, i.item_code, i.name, COALESCE(u.abbreviation, ''), gi.quantity, gi.expiry_date, COALESCE(gi.batch_number, ''), COALESCE(gi.notes, '')
FROM grn_items gi
JOIN items i ON gi.item_id = i.id
LEFT JOIN units_of_measure u ON i.unit_of_measure_id = u.id
WHERE gi.grn_id = $1`, id)
	if err != nil {
		return GoodsReceivedNote{}, nil, err
	}
	defer rows.Close()

	lines := []GRNLine{}
	for rows.Next() {
		var l GRNLine
		if err := rows.Scan(&l.ID, &l.GRNID, &l.ItemID, &l.ItemCode, &l.ItemName, &l.Unit, &l.Quantity, &l.ExpiryDate, &l.BatchNumber, &l.Notes); err != nil {
			return GoodsReceivedNote{}, nil, err
		}
		lines = append(lines, l)
	}
	return g, lines, rows.Err()
}

func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrDuplicateNumber
		case "23503":
			return stock.ErrItemNotFound
		}
	}
	return err
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
