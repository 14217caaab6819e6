package engine

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockiq/backend-go/internal/domain"
)

func demand(ref, category, classification string, stock, s30 float64) domain.NetworkDemand {
	return domain.NetworkDemand{
		ProductRef:          ref,
		ProductName:         ref + " name",
		BrandCode:           "BR1",
		BrandCategory:       category,
		BrandClassification: classification,
		CoverageDays:        30,
		LeadTimeDays:        15,
		NetworkStock:        stock,
		Sales30d:            s30,
		AvgUnitCost:         decimal.NewFromInt(10),
	}
}

func TestPurchaseSizerSizesToTargetCoverage(t *testing.T) {
	store := newMemStore()
	// 10/day velocity, 50 on hand: 5 days of runway against a 45-day
	// target horizon, so 400 units close the gap.
	store.demands = []domain.NetworkDemand{demand("SKU-1", "PRINCIPAL", "A", 50, 300)}

	n, err := NewPurchaseSizer(store, DefaultThresholds()).Run(context.Background(), testDate)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	rec := store.purchases[0]
	assert.Equal(t, 400.0, rec.Quantity)
	assert.Equal(t, 5.0, rec.CoverageDays)
	assert.Equal(t, 30.0, rec.TargetCoverageDays)
	assert.Equal(t, 300.0, rec.ProjectedSales)
	assert.Equal(t, domain.PriorityUrgent, rec.Priority)
	assert.Equal(t, domain.StatusPending, rec.Status)
	assert.True(t, decimal.NewFromInt(4000).Equal(rec.EstimatedCost))
	assert.Equal(t, testDate, rec.GeneratedAt)
}

func TestPurchaseSizerOrderDates(t *testing.T) {
	store := newMemStore()
	// 5 days of coverage: the buffered order date clamps to the
	// calculation date itself.
	store.demands = []domain.NetworkDemand{demand("SKU-1", "PRINCIPAL", "A", 50, 300)}

	_, err := NewPurchaseSizer(store, DefaultThresholds()).Run(context.Background(), testDate)
	require.NoError(t, err)

	rec := store.purchases[0]
	assert.Equal(t, testDate, rec.OrderByDate)
	assert.Equal(t, testDate.AddDate(0, 0, 15), rec.EstimatedArrival)
}

func TestPurchaseSizerBacksDatesOffRunway(t *testing.T) {
	store := newMemStore()
	// 25 days of runway: order 25 - 15 - 7 = 3 days out.
	store.demands = []domain.NetworkDemand{demand("SKU-1", "PRINCIPAL", "A", 250, 300)}

	_, err := NewPurchaseSizer(store, DefaultThresholds()).Run(context.Background(), testDate)
	require.NoError(t, err)

	require.Len(t, store.purchases, 1)
	rec := store.purchases[0]
	assert.Equal(t, domain.PriorityMedium, rec.Priority)
	assert.Equal(t, testDate.AddDate(0, 0, 3), rec.OrderByDate)
}

func TestPurchaseSizerOnlyPrincipalBrands(t *testing.T) {
	store := newMemStore()
	store.demands = []domain.NetworkDemand{
		demand("SKU-P", "PRINCIPAL", "A", 50, 300),
		demand("SKU-S", "SECONDARY", "A", 50, 300),
		demand("SKU-NONE", "", "", 50, 300),
	}

	n, err := NewPurchaseSizer(store, DefaultThresholds()).Run(context.Background(), testDate)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "SKU-P", store.purchases[0].ProductRef)
}

func TestPurchaseSizerSkipsCoveredProducts(t *testing.T) {
	store := newMemStore()
	// 50 days of runway exceeds the 45-day horizon.
	store.demands = []domain.NetworkDemand{demand("SKU-1", "PRINCIPAL", "A", 500, 300)}

	n, err := NewPurchaseSizer(store, DefaultThresholds()).Run(context.Background(), testDate)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPurchaseSizerOrdering(t *testing.T) {
	store := newMemStore()
	store.demands = []domain.NetworkDemand{
		demand("SKU-C", "PRINCIPAL", "C", 50, 300),
		demand("SKU-B", "PRINCIPAL", "B", 100, 300),
		demand("SKU-A", "PRINCIPAL", "A", 200, 300),
	}

	_, err := NewPurchaseSizer(store, DefaultThresholds()).Run(context.Background(), testDate)
	require.NoError(t, err)
	require.Len(t, store.purchases, 3)

	// Classification outranks runway.
	assert.Equal(t, "SKU-A", store.purchases[0].ProductRef)
	assert.Equal(t, "SKU-B", store.purchases[1].ProductRef)
	assert.Equal(t, "SKU-C", store.purchases[2].ProductRef)
}

func TestSizeLiveRoundsUpAndKeepsAllBrands(t *testing.T) {
	th := DefaultThresholds()
	demands := []domain.NetworkDemand{
		demand("SKU-S", "SECONDARY", "B", 53, 301),
	}

	recs := SizeLive(demands, th)
	require.Len(t, recs, 1)

	rec := recs[0]
	// (45 * 301/30) - 53 = 398.5, rounded up.
	assert.Equal(t, 399.0, rec.Quantity)
	assert.Equal(t, domain.StatusCalculated, rec.Status)
	assert.True(t, rec.OrderByDate.IsZero())
	// 53 / (301/30) = 5.2823..., reported to one decimal.
	assert.Equal(t, 5.3, rec.CoverageDays)
	assert.Equal(t, domain.PriorityUrgent, rec.Priority)
}

func TestSizeLiveOrdering(t *testing.T) {
	th := DefaultThresholds()
	demands := []domain.NetworkDemand{
		demand("SKU-SEC", "SECONDARY", "A", 50, 300),
		demand("SKU-PRIN", "PRINCIPAL", "C", 100, 300),
		demand("SKU-OUT", "SECONDARY", "D", 0, 300),
	}

	recs := SizeLive(demands, th)
	require.Len(t, recs, 3)

	// Stockouts come first regardless of brand, then principal brands.
	assert.Equal(t, "SKU-OUT", recs[0].ProductRef)
	assert.Equal(t, domain.PriorityUrgent, recs[0].Priority)
	assert.Equal(t, "SKU-PRIN", recs[1].ProductRef)
	assert.Equal(t, "SKU-SEC", recs[2].ProductRef)
}

func TestSizeLivePriorities(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		name  string
		stock float64
		want  domain.Priority
	}{
		{"no stock", 0, domain.PriorityUrgent},
		{"inside lead time", 100, domain.PriorityUrgent},   // 10 days
		{"inside lead plus buffer", 200, domain.PriorityHigh}, // 20 days
		{"inside target coverage", 250, domain.PriorityMedium}, // 25 days
		{"past target", 350, domain.PriorityLow}, // 35 days
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := SizeLive([]domain.NetworkDemand{demand("SKU", "PRINCIPAL", "A", tt.stock, 300)}, th)
			require.Len(t, recs, 1)
			assert.Equal(t, tt.want, recs[0].Priority)
		})
	}
}

func TestSizeLiveSkipsFullyCovered(t *testing.T) {
	recs := SizeLive([]domain.NetworkDemand{demand("SKU", "PRINCIPAL", "A", 450, 300)}, DefaultThresholds())
	assert.Empty(t, recs)
}
