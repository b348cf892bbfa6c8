package reports

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository runs the report aggregation queries against PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// DashboardStats counts active items, items at or below reorder level, and
// documents from the last 30 days.
func (r *Repository) DashboardStats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	err := r.pool.QueryRow(ctx, `SELECT
  (SELECT COUNT(*) FROM items WHERE is_active = true),
  (SELECT COUNT(*) FROM stock s JOIN items i ON s.item_id = i.id WHERE i.is_active = true AND s.quantity <= i.reorder_level),
  (SELECT COUNT(*) FROM goods_received_notes WHERE received_date >= CURRENT_DATE - INTERVAL '30 days'),
  (SELECT COUNT(*) FROM stock_issues WHERE issue_date >= CURRENT_DATE - INTERVAL '30 days')`).
		Scan(&stats.TotalItems, &stats.LowStockItems, &stats.RecentGRNs, &stats.RecentIssues)
	return stats, err
}

// StockByCategory aggregates active item counts and quantities per category.
func (r *Repository) StockByCategory(ctx context.Context) ([]CategoryStock, error) {
	rows, err := r.pool.Query(ctx, `SELECT c.name, COUNT(i.id), COALESCE(SUM(s.quantity), 0)
FROM categories c
LEFT JOIN items i ON c.id = i.category_id AND i.is_active = true
LEFT JOIN stock s ON i.id = s.item_id
WHERE c.is_active = true
GROUP BY c.id, c.name
ORDER BY c.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	report := []CategoryStock{}
	for rows.Next() {
		var row CategoryStock
		if err := rows.Scan(&row.Category, &row.ItemCount, &row.TotalQuantity); err != nil {
			return nil, err
		}
		report = append(report, row)
	}
	return report, rows.Err()
}

// DepartmentConsumption counts issues per department over the last 30 days.
func (r *Repository) DepartmentConsumption(ctx context.Context) ([]DepartmentConsumption, error) {
	rows, err := r.pool.Query(ctx, `SELECT d.name, COUNT(si.id), COUNT(DISTINCT si.id)
FROM departments d
LEFT JOIN stock_issues si ON d.id = si.department_id AND si.issue_date >= CURRENT_DATE - INTERVAL '30 days'
WHERE d.is_active = true
GROUP BY d.id, d.name
ORDER BY COUNT(si.id) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	report := []DepartmentConsumption{}
	for rows.Next() {
		var row DepartmentConsumption
		if err := rows.Scan(&row.Department, &row.IssueCount, &row.TotalIssues); err != nil {
			return nil, err
		}
		report = append(report, row)
	}
	return report, rows.Err()
}
