package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// A sale landing exactly on the boundary day counts, in every query that
// reads a sales window. Mixing conventions would make the network velocity
// disagree with the per-warehouse figures it aggregates.
func TestSalesWindowBoundariesAreInclusive(t *testing.T) {
	assert.Contains(t, inventoryPositionsQuery, "s.sale_date >= $1::date - INTERVAL '90 days'")
	assert.Contains(t, inventoryPositionsQuery, "s.sale_date >= $1::date - INTERVAL '7 days'")
	assert.Contains(t, inventoryPositionsQuery, "s.sale_date >= $1::date - INTERVAL '30 days'")
	assert.Contains(t, networkDemandQuery, "s.sale_date >= $1::date - INTERVAL '30 days'")

	for _, q := range []string{inventoryPositionsQuery, networkDemandQuery} {
		assert.NotContains(t, q, "sale_date > ")
	}
}

func TestWarehouseStatsSentinelIsConfigured(t *testing.T) {
	assert.Contains(t, warehouseStatsQuery, "m.days_of_inventory < $2")
	assert.NotContains(t, warehouseStatsQuery, "9999")
}
