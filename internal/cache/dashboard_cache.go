package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stockiq/backend-go/internal/config"
	"github.com/stockiq/backend-go/internal/domain"
)

const (
	dashboardKeyPrefix     = "dashboard:"
	dashboardKPIsKey       = "dashboard:kpis"
	warehouseStatsKeyBase  = "dashboard:warehouse_stats"
	dashboardScanBatchSize = 100
)

// DashboardCache holds the expensive dashboard aggregates between requests.
// Listings with workflow state stay uncached, a PATCH must be visible on the
// next read.
type DashboardCache interface {
	GetKPIs(ctx context.Context) (*domain.DashboardKPIs, bool, error)
	SetKPIs(ctx context.Context, kpis *domain.DashboardKPIs) error
	GetWarehouseStats(ctx context.Context, date time.Time) ([]domain.WarehouseStats, bool, error)
	SetWarehouseStats(ctx context.Context, date time.Time, stats []domain.WarehouseStats) error
	InvalidateAll(ctx context.Context) error
}

type redisDashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopDashboardCache struct{}

func NewDashboardCache(cfg config.CacheConfig) (DashboardCache, error) {
	if !cfg.Enabled {
		return &noopDashboardCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisDashboardCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopDashboardCache() DashboardCache {
	return &noopDashboardCache{}
}

func (c *redisDashboardCache) GetKPIs(ctx context.Context) (*domain.DashboardKPIs, bool, error) {
	payload, err := c.client.Get(ctx, dashboardKPIsKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var kpis domain.DashboardKPIs
	if err := json.Unmarshal(payload, &kpis); err != nil {
		return nil, false, fmt.Errorf("decode kpi cache: %w", err)
	}
	return &kpis, true, nil
}

func (c *redisDashboardCache) SetKPIs(ctx context.Context, kpis *domain.DashboardKPIs) error {
	payload, err := json.Marshal(kpis)
	if err != nil {
		return fmt.Errorf("encode kpi cache: %w", err)
	}
	if err := c.client.Set(ctx, dashboardKPIsKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisDashboardCache) GetWarehouseStats(ctx context.Context, date time.Time) ([]domain.WarehouseStats, bool, error) {
	payload, err := c.client.Get(ctx, warehouseStatsKey(date)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var stats []domain.WarehouseStats
	if err := json.Unmarshal(payload, &stats); err != nil {
		return nil, false, fmt.Errorf("decode warehouse stats cache: %w", err)
	}
	return stats, true, nil
}

func (c *redisDashboardCache) SetWarehouseStats(ctx context.Context, date time.Time, stats []domain.WarehouseStats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode warehouse stats cache: %w", err)
	}
	if err := c.client.Set(ctx, warehouseStatsKey(date), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisDashboardCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, dashboardKeyPrefix, dashboardScanBatchSize)
}

func (n *noopDashboardCache) GetKPIs(ctx context.Context) (*domain.DashboardKPIs, bool, error) {
	return nil, false, nil
}

func (n *noopDashboardCache) SetKPIs(ctx context.Context, kpis *domain.DashboardKPIs) error {
	return nil
}

func (n *noopDashboardCache) GetWarehouseStats(ctx context.Context, date time.Time) ([]domain.WarehouseStats, bool, error) {
	return nil, false, nil
}

func (n *noopDashboardCache) SetWarehouseStats(ctx context.Context, date time.Time, stats []domain.WarehouseStats) error {
	return nil
}

func (n *noopDashboardCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func warehouseStatsKey(date time.Time) string {
	return fmt.Sprintf("%s:%s", warehouseStatsKeyBase, date.Format("2006-01-02"))
}
