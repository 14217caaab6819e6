package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockiq/backend-go/internal/domain"
)

func needRow(ref, warehouse string, stock, days, reorder float64) domain.MetricRow {
	return domain.MetricRow{
		CalcDate:        testDate,
		ProductRef:      ref,
		WarehouseCode:   warehouse,
		Stock:           stock,
		DailySales:      5,
		DaysOfInventory: days,
		ReorderPoint:    reorder,
		MaxStock:        reorder * 2,
	}
}

func surplusRow(ref, warehouse string, stock, maxStock, days float64) domain.MetricRow {
	return domain.MetricRow{
		CalcDate:        testDate,
		ProductRef:      ref,
		WarehouseCode:   warehouse,
		Stock:           stock,
		DailySales:      1,
		DaysOfInventory: days,
		MaxStock:        maxStock,
	}
}

func TestTransferMatcherPairsSurplusWithNeed(t *testing.T) {
	store := newMemStore()
	store.addWarehouse("SHOP", domain.WarehouseSales, "NORTH")
	store.addWarehouse("DC", domain.WarehouseDistribution, "CENTRAL")
	store.addBrand("SKU-1", "PRINCIPAL", "A", 30, 15)

	// Destination is 80 short of its reorder point; the DC holds 300 over max.
	store.setMetric(needRow("SKU-1", "SHOP", 20, 2, 100))
	store.setMetric(surplusRow("SKU-1", "DC", 500, 200, 100))

	n, err := NewTransferMatcher(store, DefaultThresholds()).Run(context.Background(), testDate)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	rec := store.transfers[0]
	assert.Equal(t, "DC", rec.SourceCode)
	assert.Equal(t, "SHOP", rec.DestinationCode)
	assert.Equal(t, "NORTH", rec.DestinationRegion)
	assert.Equal(t, 80.0, rec.Quantity)
	assert.Equal(t, 100.0, rec.SourceDays)
	assert.Equal(t, 2.0, rec.DestinationDays)
	assert.Equal(t, domain.PriorityUrgent, rec.Priority)
	assert.Equal(t, domain.StatusPending, rec.Status)
	assert.Equal(t, testDate, rec.GeneratedAt)
}

func TestTransferMatcherQuantityCappedBySurplus(t *testing.T) {
	store := newMemStore()
	store.addWarehouse("SHOP", domain.WarehouseSales, "NORTH")
	store.addWarehouse("DC", domain.WarehouseDistribution, "CENTRAL")

	// Needs 80 but only 30 are movable.
	store.setMetric(needRow("SKU-1", "SHOP", 20, 2, 100))
	store.setMetric(surplusRow("SKU-1", "DC", 230, 200, 100))

	_, err := NewTransferMatcher(store, DefaultThresholds()).Run(context.Background(), testDate)
	require.NoError(t, err)
	require.Len(t, store.transfers, 1)
	assert.Equal(t, 30.0, store.transfers[0].Quantity)
}

func TestTransferMatcherDoesNotReserveSurplus(t *testing.T) {
	store := newMemStore()
	store.addWarehouse("SHOP-A", domain.WarehouseSales, "NORTH")
	store.addWarehouse("SHOP-B", domain.WarehouseSales, "SOUTH")
	store.addWarehouse("DC", domain.WarehouseDistribution, "CENTRAL")

	// Both destinations see the full 300-unit surplus; approving both
	// would oversubscribe the source, which is the planner's call.
	store.setMetric(needRow("SKU-1", "SHOP-A", 20, 2, 100))
	store.setMetric(needRow("SKU-1", "SHOP-B", 10, 4, 100))
	store.setMetric(surplusRow("SKU-1", "DC", 500, 200, 100))

	n, err := NewTransferMatcher(store, DefaultThresholds()).Run(context.Background(), testDate)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	quantities := map[string]float64{}
	for _, rec := range store.transfers {
		quantities[rec.DestinationCode] = rec.Quantity
	}
	assert.Equal(t, 80.0, quantities["SHOP-A"])
	assert.Equal(t, 90.0, quantities["SHOP-B"])
}

func TestTransferMatcherSkipsSameWarehouse(t *testing.T) {
	store := newMemStore()
	store.addWarehouse("SHOP", domain.WarehouseSales, "NORTH")

	// A single row both under reorder and over max never ships to itself.
	row := needRow("SKU-1", "SHOP", 20, 2, 100)
	row.MaxStock = 10
	store.setMetric(row)

	n, err := NewTransferMatcher(store, DefaultThresholds()).Run(context.Background(), testDate)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTransferMatcherNeedsSalesFloorDestination(t *testing.T) {
	store := newMemStore()
	store.addWarehouse("DC-A", domain.WarehouseDistribution, "NORTH")
	store.addWarehouse("DC-B", domain.WarehouseDistribution, "CENTRAL")

	// Distribution centers never appear as destinations.
	store.setMetric(needRow("SKU-1", "DC-A", 20, 2, 100))
	store.setMetric(surplusRow("SKU-1", "DC-B", 500, 200, 100))

	n, err := NewTransferMatcher(store, DefaultThresholds()).Run(context.Background(), testDate)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTransferMatcherPriorities(t *testing.T) {
	store := newMemStore()
	store.addWarehouse("SHOP-A", domain.WarehouseSales, "NORTH")
	store.addWarehouse("SHOP-B", domain.WarehouseSales, "NORTH")
	store.addWarehouse("SHOP-C", domain.WarehouseSales, "NORTH")
	store.addWarehouse("DC", domain.WarehouseDistribution, "CENTRAL")
	store.addBrand("SKU-A", "PRINCIPAL", "A", 30, 15)
	store.addBrand("SKU-B", "PRINCIPAL", "B", 30, 15)
	store.addBrand("SKU-C", "SECONDARY", "A", 30, 15)

	store.setMetric(needRow("SKU-A", "SHOP-A", 20, 2, 100))
	store.setMetric(surplusRow("SKU-A", "DC", 500, 200, 100))
	store.setMetric(needRow("SKU-B", "SHOP-B", 20, 5, 100))
	store.setMetric(surplusRow("SKU-B", "DC", 500, 200, 100))
	store.setMetric(needRow("SKU-C", "SHOP-C", 20, 10, 100))
	store.setMetric(surplusRow("SKU-C", "DC", 500, 200, 100))

	_, err := NewTransferMatcher(store, DefaultThresholds()).Run(context.Background(), testDate)
	require.NoError(t, err)

	priorities := map[string]domain.Priority{}
	for _, rec := range store.transfers {
		priorities[rec.ProductRef] = rec.Priority
	}
	assert.Equal(t, domain.PriorityUrgent, priorities["SKU-A"])
	assert.Equal(t, domain.PriorityHigh, priorities["SKU-B"])
	assert.Equal(t, domain.PriorityMedium, priorities["SKU-C"])
}

func TestTransferMatcherOrdering(t *testing.T) {
	store := newMemStore()
	store.addWarehouse("SHOP-A", domain.WarehouseSales, "NORTH")
	store.addWarehouse("SHOP-B", domain.WarehouseSales, "NORTH")
	store.addWarehouse("SHOP-C", domain.WarehouseSales, "NORTH")
	store.addWarehouse("DC", domain.WarehouseDistribution, "CENTRAL")
	store.addBrand("SKU-SEC", "SECONDARY", "A", 30, 15)
	store.addBrand("SKU-PRIN", "PRINCIPAL", "B", 30, 15)
	store.addBrand("SKU-PRIN-A", "PRINCIPAL", "A", 30, 15)

	store.setMetric(needRow("SKU-SEC", "SHOP-A", 20, 2, 100))
	store.setMetric(surplusRow("SKU-SEC", "DC", 500, 200, 100))
	store.setMetric(needRow("SKU-PRIN", "SHOP-B", 20, 5, 100))
	store.setMetric(surplusRow("SKU-PRIN", "DC", 500, 200, 100))
	store.setMetric(needRow("SKU-PRIN-A", "SHOP-C", 20, 10, 100))
	store.setMetric(surplusRow("SKU-PRIN-A", "DC", 500, 200, 100))

	_, err := NewTransferMatcher(store, DefaultThresholds()).Run(context.Background(), testDate)
	require.NoError(t, err)
	require.Len(t, store.transfers, 3)

	// Principal A-class first even with the longest runway, secondary last.
	assert.Equal(t, "SKU-PRIN-A", store.transfers[0].ProductRef)
	assert.Equal(t, "SKU-PRIN", store.transfers[1].ProductRef)
	assert.Equal(t, "SKU-SEC", store.transfers[2].ProductRef)
}
