package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockiq/backend-go/internal/domain"
	"github.com/stockiq/backend-go/internal/repository"
	"github.com/stockiq/backend-go/pkg/logger"
)

// AlertClassifier turns the day's metric rows into pending alerts. Alerts
// for the same date still in PENDING are replaced wholesale; ones a user has
// already acted on are left alone.
type AlertClassifier struct {
	store repository.EngineStore
	th    Thresholds
	log   zerolog.Logger
}

func NewAlertClassifier(store repository.EngineStore, th Thresholds) *AlertClassifier {
	return &AlertClassifier{
		store: store,
		th:    th,
		log:   logger.Log.With().Str("stage", "alerts").Logger(),
	}
}

// Run classifies calcDate's metric rows in three passes: low stock on
// sales floors, overstock anywhere, then low rotation. Output order follows
// the passes, each in metric-row order.
func (s *AlertClassifier) Run(ctx context.Context, calcDate time.Time) (domain.AlertCounts, error) {
	var counts domain.AlertCounts

	rows, err := s.store.MetricsForDate(ctx, calcDate)
	if err != nil {
		return counts, fmt.Errorf("loading metrics: %w", err)
	}

	alerts := make([]domain.Alert, 0, len(rows)/4)
	for i := range rows {
		if a := s.lowStock(&rows[i], calcDate); a != nil {
			alerts = append(alerts, *a)
			counts.LowStock++
		}
	}
	for i := range rows {
		if a := s.overstock(&rows[i], calcDate); a != nil {
			alerts = append(alerts, *a)
			counts.Overstock++
		}
	}
	for i := range rows {
		if a := s.lowRotation(&rows[i], calcDate); a != nil {
			alerts = append(alerts, *a)
			counts.LowRotation++
		}
	}
	counts.Total = counts.LowStock + counts.Overstock + counts.LowRotation

	if err := s.store.ReplacePendingAlerts(ctx, calcDate, alerts); err != nil {
		return domain.AlertCounts{}, fmt.Errorf("persisting alerts: %w", err)
	}
	s.log.Info().
		Int("low_stock", counts.LowStock).
		Int("overstock", counts.Overstock).
		Int("low_rotation", counts.LowRotation).
		Msg("alerts generated")
	return counts, nil
}

// lowStock fires on sales floors selling the product with fewer days of
// inventory than the medium threshold.
func (s *AlertClassifier) lowStock(m *domain.MetricRow, calcDate time.Time) *domain.Alert {
	if m.WarehouseType != domain.WarehouseSales {
		return nil
	}
	if m.DaysOfInventory >= s.th.MediumDays || m.DailySales <= 0 {
		return nil
	}

	alertType := domain.AlertMediumStock
	severity := domain.SeverityMedium
	switch {
	case m.DaysOfInventory < s.th.CriticalDays:
		alertType = domain.AlertCriticalStock
		severity = domain.SeverityCritical
	case m.DaysOfInventory < s.th.LowDays:
		alertType = domain.AlertLowStock
		severity = domain.SeverityHigh
	}

	a := s.newAlert(m, calcDate, alertType, severity)
	a.Message = fmt.Sprintf("Stock for %.1f days. Daily sales: %.2f units. Restock recommended.",
		m.DaysOfInventory, m.DailySales)
	return a
}

// overstock fires anywhere days of inventory exceed the brand's target
// coverage by the overstock factor.
func (s *AlertClassifier) overstock(m *domain.MetricRow, calcDate time.Time) *domain.Alert {
	if m.DaysOfInventory <= float64(m.CoverageDays)*s.th.OverstockFactor || m.DailySales <= 0 {
		return nil
	}

	severity := domain.SeverityMedium
	if m.DaysOfInventory > m.MaxStock*2 {
		severity = domain.SeverityHigh
	}

	a := s.newAlert(m, calcDate, domain.AlertOverstock, severity)
	a.Message = fmt.Sprintf("Stock for %.0f days (target: %d). Consider transferring to another warehouse.",
		m.DaysOfInventory, m.CoverageDays)
	return a
}

// lowRotation fires on slow movers outside class D, where slow rotation is
// the expected profile.
func (s *AlertClassifier) lowRotation(m *domain.MetricRow, calcDate time.Time) *domain.Alert {
	if m.Stock <= 0 || m.BrandClassification == "D" {
		return nil
	}
	if m.Sales90d >= s.th.LowRotationUnits90d && m.MonthlyRotation >= s.th.MinMonthlyRotation {
		return nil
	}

	severity := domain.SeverityMedium
	message := fmt.Sprintf("Only %.0f units sold in 90 days. Consider promotion or discontinuation.", m.Sales90d)
	if m.Sales90d == 0 {
		severity = domain.SeverityHigh
		message = fmt.Sprintf("No movement in 90 days. Stock value: $%.0f", m.StockValue.InexactFloat64())
	}

	a := s.newAlert(m, calcDate, domain.AlertLowRotation, severity)
	a.Message = message
	return a
}

func (s *AlertClassifier) newAlert(m *domain.MetricRow, calcDate time.Time, t domain.AlertType, sev domain.Severity) *domain.Alert {
	return &domain.Alert{
		Type:                t,
		Severity:            sev,
		ProductRef:          m.ProductRef,
		WarehouseCode:       m.WarehouseCode,
		Stock:               m.Stock,
		DaysOfInventory:     m.DaysOfInventory,
		DailySales:          m.DailySales,
		BrandCategory:       m.BrandCategory,
		BrandClassification: m.BrandClassification,
		GeneratedAt:         calcDate,
		Status:              domain.AlertPending,
	}
}
