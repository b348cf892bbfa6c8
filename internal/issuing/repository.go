package issuing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kechei-store/warehouse-api/internal/stock"
)

// Repository provides PostgreSQL backed persistence for stock issues.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the transactional operations used by Service.Issue.
type TxRepository interface {
	InsertIssue(ctx context.Context, issue StockIssue) (string, error)
	InsertLine(ctx context.Context, line IssueLine) error
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

func (r *txRepository) InsertIssue(ctx context.Context, issue StockIssue) (string, error) {
	var id string
	err := r.tx.QueryRow(ctx, `INSERT INTO stock_issues (issue_number, department_id, issued_to, issued_by, issue_date, purpose, status, notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW()) RETURNING id`,
		issue.IssueNumber, issue.DepartmentID, issue.IssuedTo, issue.IssuedBy, issue.IssueDate, issue.Purpose, issue.Status, issue.Notes).Scan(&id)
	if err != nil {
		return "", mapPgError(err)
	}
	return id, nil
}

func (r *txRepository) InsertLine(ctx context.Context, line IssueLine) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO stock_issue_items (issue_id, item_id, quantity_requested, quantity_issued, notes)
VALUES ($1, $2, $3, $4, $5)`,
		line.IssueID, line.ItemID, line.QuantityRequested, line.QuantityIssued, line.Notes)
	return mapPgError(err)
}

func (r *txRepository) Stock() stock.TxStore {
	return stock.NewTxStore(r.tx)
}

// List returns issue headers with department and issuer names plus line
// counts, newest first.
func (r *Repository) List(ctx context.Context) ([]StockIssue, error) {
	rows, err := r.pool.Query(ctx, `SELECT si.id, si.issue_number, si.department_id::text, COALESCE(d.name, ''), si.issued_to, si.issued_by, COALESCE(u.full_name, ''), si.issue_date, COALESCE(si.purpose, ''), si.status, COALESCE(si.notes, ''), COUNT(sii.id), si.created_at
FROM stock_issues si
LEFT JOIN departments d ON si.department_id = d.id
LEFT JOIN users u ON si.issued_by = u.id
LEFT JOIN stock_issue_items sii ON si.id = sii.issue_id
GROUP BY si.id, d.name, u.full_name
ORDER BY si.issue_date DESC, si.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	issues := []StockIssue{}
	for rows.Next() {
		var issue StockIssue
		if err := rows.Scan(&issue.ID, &issue.IssueNumber, &issue.DepartmentID, &issue.DepartmentName, &issue.IssuedTo, &issue.IssuedBy, &issue.IssuedByName, &issue.IssueDate, &issue.Purpose, &issue.Status, &issue.Notes, &issue.ItemCount, &issue.CreatedAt); err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

// Get returns one issue and its lines.
func (r *Repository) Get(ctx context.Context, id string) (StockIssue, []IssueLine, error) {
	var issue StockIssue
	err := r.pool.QueryRow(ctx, `SELECT si.id, si.issue_number, si.department_id::text, COALESCE(d.name, ''), si.issued_to, si.issued_by, COALESCE(u.full_name, ''), si.issue_date, COALESCE(si.purpose, ''), si.status, COALESCE(si.notes, ''), si.created_at
FROM stock_issues si
LEFT JOIN departments d ON si.department_id = d.id
LEFT JOIN users u ON si.issued_by = u.id
WHERE si.id = $1`, id).Scan(&issue.ID, &issue.IssueNumber, &issue.DepartmentID, &issue.DepartmentName, &issue.IssuedTo, &issue.IssuedBy, &issue.IssuedByName, &issue.IssueDate, &issue.Purpose, &issue.Status, &issue.Notes, &issue.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StockIssue{}, nil, ErrNotFound
		}
		return StockIssue{}, nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT sii.id, sii.issue_id, sii.item_id, i.item_code, i.name, COALESCE(u.abbreviation, ''), sii.quantity_requested, sii.quantity_issued, COALESCE(sii.notes, '')
FROM stock_issue_items sii
JOIN items i ON sii.item_id = i.id
LEFT JOIN units_of_measure u ON i.unit_of_measure_id = u.id
WHERE sii.issue_id = $1`, id)
	if err != nil {
		return StockIssue{}, nil, err
	}
	defer rows.Close()

	lines := []IssueLine{}
	for rows.Next() {
		var l IssueLine
		if err := rows.Scan(&l.ID, &l.IssueID, &l.ItemID, &l.ItemCode, &l.ItemName, &l.Unit, &l.QuantityRequested, &l.QuantityIssued, &l.Notes); err != nil {
			return StockIssue{}, nil, err
		}
		lines = append(lines, l)
	}
	return issue, lines, rows.Err()
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
