package engine

// Thresholds are the tunable parameters of the analytics engine. All
// day-based values compare against days of inventory.
type Thresholds struct {
	// Stock state boundaries, in days of inventory.
	CriticalDays float64
	LowDays      float64
	MediumDays   float64

	// OverstockFactor multiplies the brand's target coverage to find the
	// overstock boundary.
	OverstockFactor float64

	// Low-rotation triggers: fewer units sold in 90 days than
	// LowRotationUnits90d, or monthly rotation below MinMonthlyRotation.
	LowRotationUnits90d float64
	MinMonthlyRotation  float64

	// Substituted when a product has no brand or the brand omits the value.
	DefaultCoverageDays int
	DefaultLeadTimeDays int

	// ReorderSafetyMargin pads the reorder point over lead-time demand.
	ReorderSafetyMargin float64

	// SafetyStockDays is the demand window held as safety stock.
	SafetyStockDays float64

	// OrderDateBufferDays is subtracted when back-dating the suggested
	// order date from coverage runway.
	OrderDateBufferDays float64

	// InfiniteCoverageDays is the sentinel for rows with no sales velocity.
	InfiniteCoverageDays float64
}

// DefaultThresholds returns the production parameter set.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CriticalDays:         3,
		LowDays:              7,
		MediumDays:           15,
		OverstockFactor:      1.5,
		LowRotationUnits90d:  3,
		MinMonthlyRotation:   0.5,
		DefaultCoverageDays:  30,
		DefaultLeadTimeDays:  15,
		ReorderSafetyMargin:  1.2,
		SafetyStockDays:      7,
		OrderDateBufferDays:  7,
		InfiniteCoverageDays: 9999,
	}
}
