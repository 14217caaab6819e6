package engine

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockiq/backend-go/internal/domain"
)

func seedNetwork(store *memStore) {
	store.addWarehouse("SHOP-N", domain.WarehouseSales, "NORTH")
	store.addWarehouse("SHOP-S", domain.WarehouseSales, "SOUTH")
	store.addWarehouse("DC", domain.WarehouseDistribution, "CENTRAL")
	store.addBrand("SKU-FAST", "PRINCIPAL", "A", 30, 15)
	store.addBrand("SKU-SLOW", "SECONDARY", "C", 30, 15)

	pos := func(ref, warehouse string, stock, s7, s30, s90 float64) domain.InventoryPosition {
		w := store.warehouses[warehouse]
		b := store.attrs(ref)
		return domain.InventoryPosition{
			ProductRef:          ref,
			WarehouseCode:       warehouse,
			WarehouseType:       w.Type,
			WarehouseRegion:     w.Region,
			Stock:               stock,
			UnitCost:            decimal.NewFromInt(10),
			Sales7d:             s7,
			Sales30d:            s30,
			Sales90d:            s90,
			CoverageDays:        b.coverageDays,
			LeadTimeDays:        b.leadTimeDays,
			BrandCategory:       b.category,
			BrandClassification: b.classification,
		}
	}

	store.positions = []domain.InventoryPosition{
		// Selling fast on the north floor, nearly out.
		pos("SKU-FAST", "SHOP-N", 10, 35, 150, 450),
		// The DC sits on a pile of the same product.
		pos("SKU-FAST", "DC", 800, 0, 0, 0),
		// Dead stock on the south floor.
		pos("SKU-SLOW", "SHOP-S", 100, 0, 0, 1),
	}
	store.demands = []domain.NetworkDemand{
		{
			ProductRef:          "SKU-FAST",
			BrandCode:           "BR1",
			BrandCategory:       "PRINCIPAL",
			BrandClassification: "A",
			CoverageDays:        30,
			LeadTimeDays:        15,
			NetworkStock:        810,
			Sales30d:            150,
			AvgUnitCost:         decimal.NewFromInt(10),
		},
	}
}

func TestOrchestratorRunsAllStages(t *testing.T) {
	store := newMemStore()
	seedNetwork(store)

	orch := NewOrchestrator(store, DefaultThresholds())
	report, err := orch.Run(context.Background(), testDate)
	require.NoError(t, err)

	assert.Equal(t, "2026-08-20", report.CalcDate)
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, 3, report.MetricRows)

	// SKU-FAST on the floor is critical; the DC pile and SKU-SLOW have no
	// movement, which reads as low rotation rather than overstock since
	// overstock needs a sales velocity.
	assert.Equal(t, 1, report.Alerts.LowStock)
	assert.Equal(t, 0, report.Alerts.Overstock)
	assert.Equal(t, 2, report.Alerts.LowRotation)
	assert.Equal(t, 3, report.Alerts.Total)

	// The DC surplus covers the floor's shortfall.
	require.Equal(t, 1, report.Transfers)
	assert.Equal(t, "DC", store.transfers[0].SourceCode)
	assert.Equal(t, "SHOP-N", store.transfers[0].DestinationCode)

	// 810 units network-wide give 162 days of coverage, nothing to buy.
	assert.Zero(t, report.Purchases)

	require.Len(t, store.runs, 1)
	run := store.runs[0]
	assert.Equal(t, domain.RunStatusCompleted, run.Status)
	assert.Equal(t, 3, run.MetricRows)
	assert.Equal(t, 3, run.AlertCount)
	assert.NotNil(t, run.CompletedAt)
}

func TestOrchestratorIsIdempotent(t *testing.T) {
	store := newMemStore()
	seedNetwork(store)

	orch := NewOrchestrator(store, DefaultThresholds())
	first, err := orch.Run(context.Background(), testDate)
	require.NoError(t, err)

	alerts := append([]domain.Alert(nil), store.alerts...)
	transfers := append([]domain.TransferRecommendation(nil), store.transfers...)
	metrics, err := store.MetricsForDate(context.Background(), testDate)
	require.NoError(t, err)

	second, err := orch.Run(context.Background(), testDate)
	require.NoError(t, err)

	assert.Equal(t, first.MetricRows, second.MetricRows)
	assert.Equal(t, first.Alerts, second.Alerts)
	assert.Equal(t, first.Transfers, second.Transfers)
	assert.Equal(t, first.Purchases, second.Purchases)

	assert.Equal(t, alerts, store.alerts)
	assert.Equal(t, transfers, store.transfers)

	again, err := store.MetricsForDate(context.Background(), testDate)
	require.NoError(t, err)
	assert.Equal(t, metrics, again)

	assert.Len(t, store.runs, 2)
}

func TestOrchestratorRecordsFailure(t *testing.T) {
	store := newMemStore()
	seedNetwork(store)
	store.failMetrics = true

	orch := NewOrchestrator(store, DefaultThresholds())
	_, err := orch.Run(context.Background(), testDate)
	require.Error(t, err)

	require.Len(t, store.runs, 1)
	run := store.runs[0]
	assert.Equal(t, domain.RunStatusFailed, run.Status)
	assert.Contains(t, run.ErrorMessage, "metrics write refused")
	assert.NotNil(t, run.CompletedAt)
}
