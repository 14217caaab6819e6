package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/stockiq/backend-go/internal/domain"
	"github.com/stockiq/backend-go/internal/repository"
	"github.com/stockiq/backend-go/pkg/logger"
)

// PurchaseSizer sizes network-wide purchase orders for principal brands.
// It works on aggregate demand, not per-warehouse metrics: purchasing is a
// network decision, distribution to floors is the transfer matcher's job.
type PurchaseSizer struct {
	store repository.EngineStore
	th    Thresholds
	log   zerolog.Logger
}

func NewPurchaseSizer(store repository.EngineStore, th Thresholds) *PurchaseSizer {
	return &PurchaseSizer{
		store: store,
		th:    th,
		log:   logger.Log.With().Str("stage", "purchases").Logger(),
	}
}

// Run rebuilds calcDate's pending purchase recommendations. A product
// qualifies when it belongs to a principal brand, sells, and its network
// coverage runway is shorter than target coverage plus lead time.
func (s *PurchaseSizer) Run(ctx context.Context, calcDate time.Time) (int, error) {
	demands, err := s.store.NetworkDemand(ctx, calcDate)
	if err != nil {
		return 0, fmt.Errorf("loading network demand: %w", err)
	}

	var recs []domain.PurchaseRecommendation
	for i := range demands {
		if rec := s.size(&demands[i], calcDate); rec != nil {
			recs = append(recs, *rec)
		}
	}

	// Most valuable classifications first, shortest runway first.
	sort.SliceStable(recs, func(i, j int) bool {
		ri := purchaseRank(recs[i].BrandClassification)
		rj := purchaseRank(recs[j].BrandClassification)
		if ri != rj {
			return ri < rj
		}
		return recs[i].CoverageDays < recs[j].CoverageDays
	})

	if err := s.store.ReplacePendingPurchases(ctx, calcDate, recs); err != nil {
		return 0, fmt.Errorf("persisting purchase recommendations: %w", err)
	}
	s.log.Info().Int("recommendations", len(recs)).Msg("purchase sizing done")
	return len(recs), nil
}

func (s *PurchaseSizer) size(d *domain.NetworkDemand, calcDate time.Time) *domain.PurchaseRecommendation {
	if d.BrandCategory != domain.BrandCategoryPrincipal {
		return nil
	}
	velocity := d.Sales30d / 30.0
	if velocity <= 0 {
		return nil
	}

	coverage := round2(d.NetworkStock / velocity)
	target := float64(d.CoverageDays)
	lead := float64(d.LeadTimeDays)
	if coverage >= target+lead {
		return nil
	}

	qty := math.Round((target+lead)*velocity - d.NetworkStock)
	if qty <= 0 {
		return nil
	}

	// Back-date the order so the goods land before the runway ends,
	// keeping a fixed buffer. Fractional days truncate.
	buffer := coverage - lead - s.th.OrderDateBufferDays
	if buffer < 0 {
		buffer = 0
	}
	orderBy := calcDate.AddDate(0, 0, int(buffer))

	quantity := decimal.NewFromFloat(qty)
	return &domain.PurchaseRecommendation{
		ProductRef:          d.ProductRef,
		BrandCode:           d.BrandCode,
		BrandCategory:       d.BrandCategory,
		BrandClassification: d.BrandClassification,
		NetworkStock:        d.NetworkStock,
		ProjectedSales:      velocity * 30,
		Quantity:            qty,
		CoverageDays:        coverage,
		TargetCoverageDays:  target,
		UnitCost:            d.AvgUnitCost,
		EstimatedCost:       d.AvgUnitCost.Mul(quantity),
		OrderByDate:         orderBy,
		EstimatedArrival:    orderBy.AddDate(0, 0, d.LeadTimeDays),
		Priority:            s.priority(coverage, target, lead),
		Status:              domain.StatusPending,
		GeneratedAt:         calcDate,
	}
}

func (s *PurchaseSizer) priority(coverage, target, lead float64) domain.Priority {
	switch {
	case coverage < lead:
		return domain.PriorityUrgent
	case coverage < lead+s.th.OrderDateBufferDays:
		return domain.PriorityHigh
	case coverage < target:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

// purchaseRank orders persisted recommendations: A, B, everything else.
func purchaseRank(classification string) int {
	switch classification {
	case "A":
		return 1
	case "B":
		return 2
	default:
		return 3
	}
}

// SizeLive computes on-the-fly purchase suggestions from live network
// demand, for serving reads before the engine has persisted a batch.
// Sizing rounds up instead of to nearest, coverage reports to one decimal,
// all brand categories qualify, and nothing is persisted: rows come back in
// CALCULATED state with no order dates.
func SizeLive(demands []domain.NetworkDemand, th Thresholds) []domain.PurchaseRecommendation {
	var recs []domain.PurchaseRecommendation
	for i := range demands {
		d := &demands[i]
		velocity := d.Sales30d / 30.0
		if velocity <= 0 {
			continue
		}
		target := float64(d.CoverageDays)
		lead := float64(d.LeadTimeDays)
		if d.NetworkStock >= (target+lead)*velocity {
			continue
		}

		qty := math.Ceil((target+lead)*velocity - d.NetworkStock)
		if qty < 0 {
			qty = 0
		}
		runway := 0.0
		if velocity > 0 {
			runway = d.NetworkStock / velocity
		}

		priority := domain.PriorityLow
		switch {
		case d.NetworkStock == 0:
			priority = domain.PriorityUrgent
		case runway < lead:
			priority = domain.PriorityUrgent
		case runway < lead+th.OrderDateBufferDays:
			priority = domain.PriorityHigh
		case runway < target:
			priority = domain.PriorityMedium
		}

		recs = append(recs, domain.PurchaseRecommendation{
			ProductRef:          d.ProductRef,
			BrandCode:           d.BrandCode,
			BrandCategory:       d.BrandCategory,
			BrandClassification: d.BrandClassification,
			NetworkStock:        d.NetworkStock,
			ProjectedSales:      d.Sales30d,
			Quantity:            qty,
			CoverageDays:        math.Round(runway*10) / 10,
			TargetCoverageDays:  target,
			UnitCost:            d.AvgUnitCost,
			EstimatedCost:       d.AvgUnitCost.Mul(decimal.NewFromFloat(qty)),
			Priority:            priority,
			Status:              domain.StatusCalculated,
		})
	}

	// Stockouts first, then principal brands, then classification and the
	// shortest runway.
	sort.SliceStable(recs, func(i, j int) bool {
		si, sj := recs[i].NetworkStock == 0, recs[j].NetworkStock == 0
		if si != sj {
			return si
		}
		pi := recs[i].BrandCategory == domain.BrandCategoryPrincipal
		pj := recs[j].BrandCategory == domain.BrandCategoryPrincipal
		if pi != pj {
			return pi
		}
		ci := domain.ClassificationRank(recs[i].BrandClassification)
		cj := domain.ClassificationRank(recs[j].BrandClassification)
		if ci != cj {
			return ci < cj
		}
		return recs[i].CoverageDays < recs[j].CoverageDays
	})
	return recs
}
