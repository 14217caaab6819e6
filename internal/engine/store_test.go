package engine

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/stockiq/backend-go/internal/domain"
)

// memStore is an in-memory EngineStore for exercising the stages without a
// database. Metric reads rejoin warehouse and brand attributes the way the
// SQL layer does.
type memStore struct {
	positions []domain.InventoryPosition
	demands   []domain.NetworkDemand

	warehouses map[string]domain.Warehouse
	brands     map[string]brandAttrs // keyed by product ref

	metrics   map[string]domain.MetricRow
	alerts    []domain.Alert
	transfers []domain.TransferRecommendation
	purchases []domain.PurchaseRecommendation
	runs      []domain.EngineRun

	failMetrics bool
}

type brandAttrs struct {
	category       string
	classification string
	coverageDays   int
	leadTimeDays   int
}

func newMemStore() *memStore {
	return &memStore{
		warehouses: make(map[string]domain.Warehouse),
		brands:     make(map[string]brandAttrs),
		metrics:    make(map[string]domain.MetricRow),
	}
}

func (s *memStore) addWarehouse(code string, wtype domain.WarehouseType, region string) {
	s.warehouses[code] = domain.Warehouse{Code: code, Type: wtype, Region: region}
}

func (s *memStore) addBrand(productRef, category, classification string, coverage, lead int) {
	s.brands[productRef] = brandAttrs{
		category:       category,
		classification: classification,
		coverageDays:   coverage,
		leadTimeDays:   lead,
	}
}

func (s *memStore) attrs(productRef string) brandAttrs {
	if b, ok := s.brands[productRef]; ok {
		return b
	}
	return brandAttrs{coverageDays: 30, leadTimeDays: 15}
}

func (s *memStore) InventoryPositions(ctx context.Context, calcDate time.Time) ([]domain.InventoryPosition, error) {
	out := append([]domain.InventoryPosition(nil), s.positions...)
	return out, nil
}

func (s *memStore) UpsertMetrics(ctx context.Context, calcDate time.Time, rows []domain.MetricRow) error {
	if s.failMetrics {
		return errors.New("metrics write refused")
	}
	for _, row := range rows {
		s.metrics[row.ProductRef+"|"+row.WarehouseCode] = row
	}
	return nil
}

func (s *memStore) MetricsForDate(ctx context.Context, calcDate time.Time) ([]domain.MetricRow, error) {
	rows := make([]domain.MetricRow, 0, len(s.metrics))
	for _, row := range s.metrics {
		w := s.warehouses[row.WarehouseCode]
		b := s.attrs(row.ProductRef)
		row.WarehouseType = w.Type
		row.WarehouseRegion = w.Region
		row.BrandCategory = b.category
		row.BrandClassification = b.classification
		row.CoverageDays = b.coverageDays
		row.LeadTimeDays = b.leadTimeDays
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].WarehouseCode != rows[j].WarehouseCode {
			return rows[i].WarehouseCode < rows[j].WarehouseCode
		}
		return rows[i].ProductRef < rows[j].ProductRef
	})
	return rows, nil
}

// setMetric seeds a metric row directly, for testing downstream stages in
// isolation.
func (s *memStore) setMetric(row domain.MetricRow) {
	s.metrics[row.ProductRef+"|"+row.WarehouseCode] = row
}

func (s *memStore) ReplacePendingAlerts(ctx context.Context, calcDate time.Time, alerts []domain.Alert) error {
	s.alerts = append([]domain.Alert(nil), alerts...)
	return nil
}

func (s *memStore) ReplacePendingTransfers(ctx context.Context, calcDate time.Time, recs []domain.TransferRecommendation) error {
	s.transfers = append([]domain.TransferRecommendation(nil), recs...)
	return nil
}

func (s *memStore) NetworkDemand(ctx context.Context, calcDate time.Time) ([]domain.NetworkDemand, error) {
	return append([]domain.NetworkDemand(nil), s.demands...), nil
}

func (s *memStore) ReplacePendingPurchases(ctx context.Context, calcDate time.Time, recs []domain.PurchaseRecommendation) error {
	s.purchases = append([]domain.PurchaseRecommendation(nil), recs...)
	return nil
}

func (s *memStore) CreateEngineRun(ctx context.Context, run *domain.EngineRun) error {
	run.ID = int64(len(s.runs) + 1)
	s.runs = append(s.runs, *run)
	return nil
}

func (s *memStore) UpdateEngineRun(ctx context.Context, run *domain.EngineRun) error {
	for i := range s.runs {
		if s.runs[i].RunID == run.RunID {
			s.runs[i] = *run
			return nil
		}
	}
	return errors.New("run not found")
}
