package reports

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	_ "github.com/kechei-store/warehouse-api/testing"
)

type countingRepo struct {
	stats DashboardStats
	calls int
}

func (r *countingRepo) DashboardStats(ctx context.Context) (DashboardStats, error) {
	r.calls++
	return r.stats, nil
}

func (r *countingRepo) StockByCategory(ctx context.Context) ([]CategoryStock, error) {
	r.calls++
	return []CategoryStock{{Category: "Medical", ItemCount: 3, TotalQuantity: 42}}, nil
}

func (r *countingRepo) DepartmentConsumption(ctx context.Context) ([]DepartmentConsumption, error) {
	r.calls++
	return []DepartmentConsumption{{Department: "Pharmacy", IssueCount: 5, TotalIssues: 5}}, nil
}

func newTestService(t *testing.T, repo RepositoryPort) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(nil, repo, client, time.Minute), mr
}

func TestDashboardStatsCached(t *testing.T) {
	repo := &countingRepo{stats: DashboardStats{TotalItems: 12, LowStockItems: 2, RecentGRNs: 4, RecentIssues: 7}}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	stats, err := svc.DashboardStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 12, stats.TotalItems)
	require.Equal(t, 1, repo.calls)

	// second call comes from cache
	stats, err = svc.DashboardStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 7, stats.RecentIssues)
	require.Equal(t, 1, repo.calls)
}

func TestCacheExpiry(t *testing.T) {
	repo := &countingRepo{stats: DashboardStats{TotalItems: 1}}
	svc, mr := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.DashboardStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls)

	mr.FastForward(2 * time.Minute)

	_, err = svc.DashboardStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls)
}

func TestStockByCategoryWithoutCache(t *testing.T) {
	repo := &countingRepo{}
	svc := NewService(nil, repo, nil, time.Minute)

	report, err := svc.StockByCategory(context.Background())
	require.NoError(t, err)
	require.Len(t, report, 1)
	require.Equal(t, "Medical", report[0].Category)
	require.InDelta(t, 42.0, report[0].TotalQuantity, 0.0001)
}

func TestDepartmentConsumption(t *testing.T) {
	repo := &countingRepo{}
	svc, _ := newTestService(t, repo)

	report, err := svc.DepartmentConsumption(context.Background())
	require.NoError(t, err)
	require.Len(t, report, 1)
	require.Equal(t, "Pharmacy", report[0].Department)
}
