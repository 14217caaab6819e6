package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockiq/backend-go/internal/cache"
	"github.com/stockiq/backend-go/internal/domain"
	"github.com/stockiq/backend-go/internal/engine"
	"github.com/stockiq/backend-go/internal/repository"
	"github.com/stockiq/backend-go/pkg/logger"
)

// AnalyticsService backs the dashboard API. Aggregates go through the
// cache, listings hit the database directly.
type AnalyticsService struct {
	repo  repository.AnalyticsRepository
	cache cache.DashboardCache
	th    engine.Thresholds
	log   zerolog.Logger
}

func NewAnalyticsService(repo repository.AnalyticsRepository, dashCache cache.DashboardCache, th engine.Thresholds) *AnalyticsService {
	return &AnalyticsService{
		repo:  repo,
		cache: dashCache,
		th:    th,
		log:   logger.Log.With().Str("component", "analytics_service").Logger(),
	}
}

func (s *AnalyticsService) DashboardKPIs(ctx context.Context) (*domain.DashboardKPIs, error) {
	if kpis, ok, err := s.cache.GetKPIs(ctx); err != nil {
		s.log.Warn().Err(err).Msg("kpi cache read failed")
	} else if ok {
		return kpis, nil
	}

	kpis, err := s.repo.DashboardKPIs(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetKPIs(ctx, kpis); err != nil {
		s.log.Warn().Err(err).Msg("kpi cache write failed")
	}
	return kpis, nil
}

func (s *AnalyticsService) Alerts(ctx context.Context, filter domain.AlertFilter) ([]domain.AlertView, error) {
	return s.repo.Alerts(ctx, filter)
}

func (s *AnalyticsService) AlertSummary(ctx context.Context) ([]domain.AlertSummary, error) {
	return s.repo.AlertSummary(ctx)
}

func (s *AnalyticsService) UpdateAlertStatus(ctx context.Context, id int64, status domain.AlertStatus, user string) error {
	if err := s.repo.UpdateAlertStatus(ctx, id, status, user); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *AnalyticsService) Transfers(ctx context.Context, filter domain.TransferFilter) ([]domain.TransferView, error) {
	return s.repo.Transfers(ctx, filter)
}

func (s *AnalyticsService) UpdateTransferStatus(ctx context.Context, id int64, status domain.RecommendationStatus) error {
	if err := s.repo.UpdateTransferStatus(ctx, id, status); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Purchases serves the persisted recommendations when the engine has run,
// and falls back to live sizing from current demand when it has not.
func (s *AnalyticsService) Purchases(ctx context.Context, filter domain.PurchaseFilter) ([]domain.PurchaseView, error) {
	pending, err := s.repo.PendingPurchaseCount(ctx)
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		return s.repo.Purchases(ctx, filter)
	}
	return s.livePurchases(ctx, filter)
}

func (s *AnalyticsService) livePurchases(ctx context.Context, filter domain.PurchaseFilter) ([]domain.PurchaseView, error) {
	demands, err := s.repo.LiveNetworkDemand(ctx)
	if err != nil {
		return nil, err
	}
	if filter.BrandCode != "" {
		filtered := demands[:0]
		for _, d := range demands {
			if d.BrandCode == filter.BrandCode {
				filtered = append(filtered, d)
			}
		}
		demands = filtered
	}

	names := make(map[string][2]string, len(demands))
	for _, d := range demands {
		names[d.ProductRef] = [2]string{d.ProductName, d.BrandName}
	}

	recs := engine.SizeLive(demands, s.th)

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	views := make([]domain.PurchaseView, 0, limit)
	for _, rec := range recs {
		if filter.Priority != "" && string(rec.Priority) != filter.Priority {
			continue
		}
		n := names[rec.ProductRef]
		views = append(views, domain.PurchaseView{
			PurchaseRecommendation: rec,
			ProductName:            n[0],
			BrandName:              n[1],
		})
		if len(views) == limit {
			break
		}
	}
	return views, nil
}

func (s *AnalyticsService) WarehouseStats(ctx context.Context, date time.Time) ([]domain.WarehouseStats, error) {
	if stats, ok, err := s.cache.GetWarehouseStats(ctx, date); err != nil {
		s.log.Warn().Err(err).Msg("warehouse stats cache read failed")
	} else if ok {
		return stats, nil
	}

	stats, err := s.repo.WarehouseStats(ctx, date)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetWarehouseStats(ctx, date, stats); err != nil {
		s.log.Warn().Err(err).Msg("warehouse stats cache write failed")
	}
	return stats, nil
}

func (s *AnalyticsService) DailySales(ctx context.Context, days int) ([]domain.DailySalesPoint, error) {
	return s.repo.DailySales(ctx, days)
}

func (s *AnalyticsService) TopProducts(ctx context.Context, days, limit int) ([]domain.TopProduct, error) {
	return s.repo.TopProducts(ctx, days, limit)
}

func (s *AnalyticsService) StockTrend(ctx context.Context, productRef string, days int) ([]domain.StockTrendPoint, error) {
	return s.repo.StockTrend(ctx, productRef, days)
}

func (s *AnalyticsService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.log.Warn().Err(err).Msg("cache invalidation failed")
	}
}
