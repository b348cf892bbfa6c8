package reports

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheKeyPrefix = "warehouse:report:"

// RepositoryPort abstracts the aggregation queries for the service.
type RepositoryPort interface {
	DashboardStats(ctx context.Context) (DashboardStats, error)
	StockByCategory(ctx context.Context) ([]CategoryStock, error)
	DepartmentConsumption(ctx context.Context) ([]DepartmentConsumption, error)
}

// Service serves reports through a Redis cache. A nil client disables caching
// and every call hits the repository.
type Service struct {
	logger *slog.Logger
	repo   RepositoryPort
	cache  *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewService constructs the reports service.
func NewService(logger *slog.Logger, repo RepositoryPort, cache *redis.Client, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Service{logger: logger, repo: repo, cache: cache, ttl: ttl}
}

// DashboardStats returns the dashboard counters.
func (s *Service) DashboardStats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	err := s.cached(ctx, "dashboard", &stats, func(ctx context.Context) (any, error) {
		return s.repo.DashboardStats(ctx)
	})
	return stats, err
}

// StockByCategory returns quantity aggregates per category.
func (s *Service) StockByCategory(ctx context.Context) ([]CategoryStock, error) {
	var report []CategoryStock
	err := s.cached(ctx, "stock-by-category", &report, func(ctx context.Context) (any, error) {
		return s.repo.StockByCategory(ctx)
	})
	return report, err
}

// DepartmentConsumption returns recent issue counts per department.
func (s *Service) DepartmentConsumption(ctx context.Context) ([]DepartmentConsumption, error) {
	var report []DepartmentConsumption
	err := s.cached(ctx, "department-consumption", &report, func(ctx context.Context) (any, error) {
		return s.repo.DepartmentConsumption(ctx)
	})
	return report, err
}

// cached serves key from Redis when possible. Misses go through singleflight
// so concurrent requests for the same report run one query between them.
func (s *Service) cached(ctx context.Context, key string, dest any, fetch func(context.Context) (any, error)) error {
	if s.cache == nil {
		value, err := fetch(ctx)
		if err != nil {
			return err
		}
		return reencode(value, dest)
	}

	redisKey := cacheKeyPrefix + key
	payload, err := s.cache.Get(ctx, redisKey).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) && s.logger != nil {
		s.logger.Warn("report cache read", slog.String("key", key), slog.Any("error", err))
	}

	resultChan := s.group.DoChan(key, func() (any, error) {
		value, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(context.WithoutCancel(ctx), redisKey, encoded, s.ttl).Err(); err != nil && s.logger != nil {
			s.logger.Warn("report cache write", slog.String("key", key), slog.Any("error", err))
		}
		return encoded, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), dest)
	}
}

func reencode(value, dest any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, dest)
}
