// Package reports serves aggregated read models for dashboards. Results are
// cached in Redis for a short window; concurrent cache misses for the same
// report collapse into a single query.
package reports

// DashboardStats summarises the warehouse for the landing page.
type DashboardStats struct {
	TotalItems    int `json:"total_items"`
	LowStockItems int `json:"low_stock_items"`
	RecentGRNs    int `json:"recent_grns"`
	RecentIssues  int `json:"recent_issues"`
}

// CategoryStock aggregates quantity per category.
type CategoryStock struct {
	Category      string  `json:"category"`
	ItemCount     int     `json:"item_count"`
	TotalQuantity float64 `json:"total_quantity"`
}

// DepartmentConsumption counts recent issues per department.
type DepartmentConsumption struct {
	Department  string `json:"department"`
	IssueCount  int    `json:"issue_count"`
	TotalIssues int    `json:"total_issues"`
}
