package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/stockiq/backend-go/internal/domain"
	"github.com/stockiq/backend-go/internal/repository"
	"github.com/stockiq/backend-go/pkg/logger"
)

// MetricStage computes and persists the per-position metric rows. It runs
// first; every later stage reads its output instead of the raw facts.
type MetricStage struct {
	store repository.EngineStore
	calc  *MetricCalculator
	log   zerolog.Logger
}

func NewMetricStage(store repository.EngineStore, calc *MetricCalculator) *MetricStage {
	return &MetricStage{
		store: store,
		calc:  calc,
		log:   logger.Log.With().Str("stage", "metrics").Logger(),
	}
}

// Run recomputes calcDate's metric rows from the current inventory and sales
// facts. Re-running for the same date overwrites the previous rows.
func (s *MetricStage) Run(ctx context.Context, calcDate time.Time) (int, error) {
	positions, err := s.store.InventoryPositions(ctx, calcDate)
	if err != nil {
		return 0, fmt.Errorf("loading inventory positions: %w", err)
	}
	s.log.Info().Int("positions", len(positions)).Time("calc_date", calcDate).Msg("computing metrics")

	rows := make([]domain.MetricRow, 0, len(positions))
	for i := range positions {
		pos := &positions[i]
		m := s.calc.Calculate(pos)
		rows = append(rows, domain.MetricRow{
			CalcDate:         calcDate,
			ProductRef:       pos.ProductRef,
			WarehouseCode:    pos.WarehouseCode,
			Stock:            pos.Stock,
			StockValue:       pos.UnitCost.Mul(decimal.NewFromFloat(pos.Stock)),
			Sales7d:          pos.Sales7d,
			Sales30d:         pos.Sales30d,
			Sales90d:         pos.Sales90d,
			DailySales:       m.DailySales,
			DaysOfInventory:  m.DaysOfInventory,
			MonthlyRotation:  m.MonthlyRotation,
			ReorderPoint:     m.ReorderPoint,
			SafetyStock:      m.SafetyStock,
			MaxStock:         m.MaxStock,
			State:            m.State,
			RequiresTransfer: m.RequiresTransfer,
			RequiresPurchase: m.RequiresPurchase,
		})
	}

	if err := s.store.UpsertMetrics(ctx, calcDate, rows); err != nil {
		return 0, fmt.Errorf("persisting metrics: %w", err)
	}
	return len(rows), nil
}
