package repository

import (
	"context"
	"time"

	"github.com/stockiq/backend-go/internal/domain"
)

// AnalyticsRepository is the read side the dashboard API is built on.
type AnalyticsRepository interface {
	DashboardKPIs(ctx context.Context) (*domain.DashboardKPIs, error)

	Alerts(ctx context.Context, filter domain.AlertFilter) ([]domain.AlertView, error)
	AlertSummary(ctx context.Context) ([]domain.AlertSummary, error)
	UpdateAlertStatus(ctx context.Context, id int64, status domain.AlertStatus, user string) error

	Transfers(ctx context.Context, filter domain.TransferFilter) ([]domain.TransferView, error)
	UpdateTransferStatus(ctx context.Context, id int64, status domain.RecommendationStatus) error

	PendingPurchaseCount(ctx context.Context) (int, error)
	Purchases(ctx context.Context, filter domain.PurchaseFilter) ([]domain.PurchaseView, error)
	// LiveNetworkDemand feeds the on-demand purchase fallback; unlike the
	// engine's NetworkDemand it averages only non-zero unit costs and sums
	// only positive stock rows.
	LiveNetworkDemand(ctx context.Context) ([]domain.NetworkDemand, error)

	WarehouseStats(ctx context.Context, date time.Time) ([]domain.WarehouseStats, error)
	DailySales(ctx context.Context, days int) ([]domain.DailySalesPoint, error)
	TopProducts(ctx context.Context, days, limit int) ([]domain.TopProduct, error)
	StockTrend(ctx context.Context, productRef string, days int) ([]domain.StockTrendPoint, error)
}
