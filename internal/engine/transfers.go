package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockiq/backend-go/internal/domain"
	"github.com/stockiq/backend-go/internal/repository"
	"github.com/stockiq/backend-go/pkg/logger"
)

// TransferMatcher pairs surplus warehouses with deficit sales floors per
// product. Every (surplus, deficit) combination with a positive movable
// quantity becomes a recommendation; quantities are not reserved across
// pairs, the planner approving them resolves the contention.
type TransferMatcher struct {
	store repository.EngineStore
	th    Thresholds
	log   zerolog.Logger
}

func NewTransferMatcher(store repository.EngineStore, th Thresholds) *TransferMatcher {
	return &TransferMatcher{
		store: store,
		th:    th,
		log:   logger.Log.With().Str("stage", "transfers").Logger(),
	}
}

type transferNeed struct {
	row      *domain.MetricRow
	quantity float64
}

type transferSurplus struct {
	row      *domain.MetricRow
	quantity float64
}

// Run rebuilds calcDate's pending transfer recommendations from that date's
// metric rows.
func (s *TransferMatcher) Run(ctx context.Context, calcDate time.Time) (int, error) {
	rows, err := s.store.MetricsForDate(ctx, calcDate)
	if err != nil {
		return 0, fmt.Errorf("loading metrics: %w", err)
	}

	var needs []transferNeed
	surpluses := make(map[string][]transferSurplus)
	for i := range rows {
		m := &rows[i]
		if m.WarehouseType == domain.WarehouseSales &&
			m.DaysOfInventory < s.th.MediumDays && m.DailySales > 0 {
			qty := m.ReorderPoint - m.Stock
			if qty < 0 {
				qty = 0
			}
			needs = append(needs, transferNeed{row: m, quantity: qty})
		}
		if m.Stock > m.MaxStock && m.Stock > 0 {
			surpluses[m.ProductRef] = append(surpluses[m.ProductRef], transferSurplus{row: m, quantity: m.Stock - m.MaxStock})
		}
	}

	var recs []domain.TransferRecommendation
	for _, n := range needs {
		need := n.row
		for _, sp := range surpluses[need.ProductRef] {
			if sp.row.WarehouseCode == need.WarehouseCode {
				continue
			}
			qty := sp.quantity
			if n.quantity < qty {
				qty = n.quantity
			}
			if qty <= 0 {
				continue
			}
			recs = append(recs, domain.TransferRecommendation{
				ProductRef:          need.ProductRef,
				SourceCode:          sp.row.WarehouseCode,
				DestinationCode:     need.WarehouseCode,
				DestinationRegion:   need.WarehouseRegion,
				Quantity:            qty,
				SourceDays:          sp.row.DaysOfInventory,
				DestinationDays:     need.DaysOfInventory,
				BrandCategory:       need.BrandCategory,
				BrandClassification: need.BrandClassification,
				Priority:            s.priority(need),
				Status:              domain.StatusPending,
				GeneratedAt:         calcDate,
			})
		}
	}

	// Most important destinations first: principal A-class brands, then
	// other principals, then by how close the destination is to stockout.
	sort.SliceStable(recs, func(i, j int) bool {
		ti := domain.TransferTier(recs[i].BrandCategory, recs[i].BrandClassification)
		tj := domain.TransferTier(recs[j].BrandCategory, recs[j].BrandClassification)
		if ti != tj {
			return ti < tj
		}
		return recs[i].DestinationDays < recs[j].DestinationDays
	})

	if err := s.store.ReplacePendingTransfers(ctx, calcDate, recs); err != nil {
		return 0, fmt.Errorf("persisting transfer recommendations: %w", err)
	}
	s.log.Info().Int("recommendations", len(recs)).Msg("transfer matching done")
	return len(recs), nil
}

func (s *TransferMatcher) priority(need *domain.MetricRow) domain.Priority {
	principal := need.BrandCategory == domain.BrandCategoryPrincipal
	switch {
	case need.DaysOfInventory < s.th.CriticalDays && principal && need.BrandClassification == "A":
		return domain.PriorityUrgent
	case need.DaysOfInventory < s.th.LowDays && principal:
		return domain.PriorityHigh
	case need.DaysOfInventory < s.th.MediumDays:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}
