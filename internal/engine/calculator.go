package engine

import (
	"math"

	"github.com/stockiq/backend-go/internal/domain"
)

// Metrics holds the derived figures for one (product, warehouse) position.
type Metrics struct {
	DailySales       float64
	DaysOfInventory  float64
	MonthlyRotation  float64
	ReorderPoint     float64
	SafetyStock      float64
	MaxStock         float64
	State            domain.StockState
	RequiresTransfer bool
	RequiresPurchase bool
}

// MetricCalculator derives stock-health metrics from a single inventory
// position. It is pure and carries no connection state.
type MetricCalculator struct {
	th Thresholds
}

func NewMetricCalculator(th Thresholds) *MetricCalculator {
	return &MetricCalculator{th: th}
}

// Calculate derives the full metric set for one position. Daily sales is the
// unrounded 30-day average; the dependent figures round to two decimals and
// rotation to four.
func (c *MetricCalculator) Calculate(pos *domain.InventoryPosition) Metrics {
	velocity := pos.Sales30d / 30.0

	days := c.th.InfiniteCoverageDays
	if velocity > 0 {
		days = round2(pos.Stock / velocity)
	}

	rotation := 0.0
	if pos.Stock > 0 {
		rotation = round4(pos.Sales30d / pos.Stock)
	}

	m := Metrics{
		DailySales:      velocity,
		DaysOfInventory: days,
		MonthlyRotation: rotation,
		ReorderPoint:    round2(velocity * float64(pos.LeadTimeDays) * c.th.ReorderSafetyMargin),
		SafetyStock:     round2(velocity * c.th.SafetyStockDays),
		MaxStock:        round2(velocity * float64(pos.CoverageDays)),
	}
	m.State = c.classify(days, float64(pos.CoverageDays))
	m.RequiresTransfer = m.State == domain.StateCritical || m.State == domain.StateLow || m.State == domain.StateExcess
	m.RequiresPurchase = m.State == domain.StateCritical || m.State == domain.StateLow
	return m
}

func (c *MetricCalculator) classify(days, targetDays float64) domain.StockState {
	switch {
	case days < c.th.CriticalDays:
		return domain.StateCritical
	case days < c.th.LowDays:
		return domain.StateLow
	case days < c.th.MediumDays:
		return domain.StateMedium
	case days > targetDays*c.th.OverstockFactor:
		return domain.StateExcess
	case days > targetDays:
		return domain.StateOver
	default:
		return domain.StateNormal
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
