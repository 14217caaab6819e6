package repository

import (
	"context"
	"time"

	"github.com/stockiq/backend-go/internal/domain"
)

// EngineStore is everything the analytics engine needs from the fact store.
// Reads return fully typed, joined rows with brand/warehouse defaults
// already substituted; writes are scoped to one calculation date and are
// atomic per stage (clear scope, then bulk-write, in one transaction).
type EngineStore interface {
	// InventoryPositions returns one row per (product, warehouse) with
	// positive stock, joined with trailing 7/30/90-day sales windows ending
	// at calcDate and the owning brand's policy parameters.
	InventoryPositions(ctx context.Context, calcDate time.Time) ([]domain.InventoryPosition, error)

	// UpsertMetrics replaces the metric rows for calcDate. Conflicting
	// (date, product, warehouse) keys overwrite all derived fields.
	UpsertMetrics(ctx context.Context, calcDate time.Time, rows []domain.MetricRow) error

	// MetricsForDate returns calcDate's metric rows rejoined with warehouse
	// type/region and brand policy attributes.
	MetricsForDate(ctx context.Context, calcDate time.Time) ([]domain.MetricRow, error)

	// ReplacePendingAlerts deletes calcDate's pending alerts and inserts the
	// given ones in order, in a single transaction.
	ReplacePendingAlerts(ctx context.Context, calcDate time.Time, alerts []domain.Alert) error

	// ReplacePendingTransfers deletes calcDate's pending transfer
	// recommendations and inserts the given ones in order.
	ReplacePendingTransfers(ctx context.Context, calcDate time.Time, recs []domain.TransferRecommendation) error

	// NetworkDemand returns one row per product with any sales-floor sales
	// in the trailing 30 days, with network-wide stock and average cost.
	NetworkDemand(ctx context.Context, calcDate time.Time) ([]domain.NetworkDemand, error)

	// ReplacePendingPurchases deletes calcDate's pending purchase
	// recommendations and inserts the given ones in order.
	ReplacePendingPurchases(ctx context.Context, calcDate time.Time, recs []domain.PurchaseRecommendation) error

	// CreateEngineRun and UpdateEngineRun track one orchestrator execution.
	CreateEngineRun(ctx context.Context, run *domain.EngineRun) error
	UpdateEngineRun(ctx context.Context, run *domain.EngineRun) error
}
