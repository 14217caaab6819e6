package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stockiq/backend-go/internal/domain"
)

func position(stock, s30 float64) *domain.InventoryPosition {
	return &domain.InventoryPosition{
		ProductRef:    "SKU-1",
		WarehouseCode: "W1",
		Stock:         stock,
		Sales30d:      s30,
		CoverageDays:  30,
		LeadTimeDays:  15,
	}
}

func TestCalculateDerivedFigures(t *testing.T) {
	calc := NewMetricCalculator(DefaultThresholds())

	m := calc.Calculate(position(10, 150))

	assert.Equal(t, 5.0, m.DailySales)
	assert.Equal(t, 2.0, m.DaysOfInventory)
	assert.Equal(t, 15.0, m.MonthlyRotation)
	assert.Equal(t, 90.0, m.ReorderPoint) // 5 * 15 * 1.2
	assert.Equal(t, 35.0, m.SafetyStock)  // 5 * 7
	assert.Equal(t, 150.0, m.MaxStock)    // 5 * 30
}

func TestCalculateRounding(t *testing.T) {
	calc := NewMetricCalculator(DefaultThresholds())

	m := calc.Calculate(position(10, 90))
	assert.Equal(t, 3.33, m.DaysOfInventory)

	m = calc.Calculate(position(3, 1))
	assert.Equal(t, 0.3333, m.MonthlyRotation)
}

func TestCalculateNoSalesSentinel(t *testing.T) {
	calc := NewMetricCalculator(DefaultThresholds())

	m := calc.Calculate(position(100, 0))

	assert.Equal(t, 9999.0, m.DaysOfInventory)
	assert.Equal(t, 0.0, m.MonthlyRotation)
	// 9999 days blows past any coverage target.
	assert.Equal(t, domain.StateExcess, m.State)
	assert.True(t, m.RequiresTransfer)
	assert.False(t, m.RequiresPurchase)
}

func TestClassifyStates(t *testing.T) {
	calc := NewMetricCalculator(DefaultThresholds())

	tests := []struct {
		name  string
		stock float64
		s30   float64
		want  domain.StockState
	}{
		{"below critical threshold", 10, 150, domain.StateCritical},  // 2 days
		{"exactly critical boundary", 15, 150, domain.StateLow},      // 3 days
		{"below low threshold", 25, 150, domain.StateLow},            // 5 days
		{"exactly low boundary", 35, 150, domain.StateMedium},        // 7 days
		{"below medium threshold", 50, 150, domain.StateMedium},      // 10 days
		{"exactly medium boundary", 75, 150, domain.StateNormal},     // 15 days
		{"within target coverage", 125, 150, domain.StateNormal},     // 25 days
		{"over target coverage", 200, 150, domain.StateOver},         // 40 days
		{"past the overstock factor", 250, 150, domain.StateExcess},  // 50 days
		{"exactly at overstock factor", 225, 150, domain.StateOver},  // 45 days
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := calc.Calculate(position(tt.stock, tt.s30))
			assert.Equal(t, tt.want, m.State)
		})
	}
}

func TestActionFlags(t *testing.T) {
	calc := NewMetricCalculator(DefaultThresholds())

	critical := calc.Calculate(position(10, 150))
	assert.True(t, critical.RequiresTransfer)
	assert.True(t, critical.RequiresPurchase)

	medium := calc.Calculate(position(50, 150))
	assert.False(t, medium.RequiresTransfer)
	assert.False(t, medium.RequiresPurchase)

	excess := calc.Calculate(position(250, 150))
	assert.True(t, excess.RequiresTransfer)
	assert.False(t, excess.RequiresPurchase)

	over := calc.Calculate(position(200, 150))
	assert.False(t, over.RequiresTransfer)
	assert.False(t, over.RequiresPurchase)
}
