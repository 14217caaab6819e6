package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/stockiq/backend-go/internal/domain"
	"github.com/stockiq/backend-go/internal/repository"
)

const defaultListLimit = 50

// AnalyticsRepository serves the dashboard reads. Listings are filtered
// dynamically; every query caps its result set.
type AnalyticsRepository struct {
	db               *DB
	defaultCoverage  int
	defaultLeadTime  int
	infiniteCoverage float64
}

func NewAnalyticsRepository(db *DB, defaultCoverageDays, defaultLeadTimeDays int, infiniteCoverageDays float64) repository.AnalyticsRepository {
	return &AnalyticsRepository{
		db:               db,
		defaultCoverage:  defaultCoverageDays,
		defaultLeadTime:  defaultLeadTimeDays,
		infiniteCoverage: infiniteCoverageDays,
	}
}

func (r *AnalyticsRepository) DashboardKPIs(ctx context.Context) (*domain.DashboardKPIs, error) {
	var kpis domain.DashboardKPIs

	// Inventory figures count sales floors only, the distribution centers
	// would double the network totals.
	err := r.db.GetContext(ctx, &kpis.Inventory, `
        SELECT COUNT(DISTINCT i.product_ref) AS products,
               COUNT(DISTINCT i.warehouse_code) AS warehouses,
               COALESCE(SUM(i.quantity), 0) AS units,
               COALESCE(SUM(i.quantity * i.unit_cost), 0) AS value
        FROM inventory i
        JOIN warehouses w ON w.code = i.warehouse_code AND w.type = 'SALES'`)
	if err != nil {
		return nil, fmt.Errorf("selecting inventory kpis: %w", err)
	}

	err = r.db.GetContext(ctx, &kpis.Sales30d, `
        SELECT COUNT(*) AS transactions,
               COALESCE(SUM(quantity), 0) AS units,
               COALESCE(SUM(total_value), 0) AS value
        FROM sales
        WHERE sale_date >= CURRENT_DATE - INTERVAL '30 days'`)
	if err != nil {
		return nil, fmt.Errorf("selecting sales kpis: %w", err)
	}

	err = r.db.GetContext(ctx, &kpis.Alerts, `
        SELECT COUNT(*) FILTER (WHERE alert_type = 'CRITICAL_STOCK') AS critical,
               COUNT(*) FILTER (WHERE alert_type = 'LOW_STOCK') AS low,
               COUNT(*) FILTER (WHERE alert_type = 'OVERSTOCK') AS overstock,
               COUNT(*) AS total
        FROM alerts
        WHERE status = 'PENDING'`)
	if err != nil {
		return nil, fmt.Errorf("selecting alert kpis: %w", err)
	}

	err = r.db.GetContext(ctx, &kpis.PendingTransfers,
		`SELECT COUNT(*) FROM transfer_recommendations WHERE status = 'PENDING'`)
	if err != nil {
		return nil, fmt.Errorf("counting pending transfers: %w", err)
	}

	err = r.db.GetContext(ctx, &kpis.PendingPurchases, `
        SELECT COUNT(*) AS total,
               COALESCE(SUM(estimated_cost), 0) AS estimated_value
        FROM purchase_recommendations
        WHERE status = 'PENDING'`)
	if err != nil {
		return nil, fmt.Errorf("selecting purchase kpis: %w", err)
	}
	return &kpis, nil
}

func (r *AnalyticsRepository) Alerts(ctx context.Context, filter domain.AlertFilter) ([]domain.AlertView, error) {
	query := `
        SELECT a.id, a.alert_type, a.severity, a.product_ref, a.warehouse_code,
               a.stock, a.days_of_inventory, a.daily_sales,
               a.brand_category, a.brand_classification, a.message,
               a.generated_at, a.status, COALESCE(a.resolved_by, '') AS resolved_by, a.resolved_at,
               COALESCE(p.name, '') AS product_name,
               COALESCE(w.name, '') AS warehouse_name
        FROM alerts a
        LEFT JOIN products p ON p.reference = a.product_ref
        LEFT JOIN warehouses w ON w.code = a.warehouse_code
        WHERE a.status = 'PENDING'`
	var args []interface{}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(" AND a.alert_type = $%d", len(args))
	}
	if filter.Severity != "" {
		args = append(args, filter.Severity)
		query += fmt.Sprintf(" AND a.severity = $%d", len(args))
	}
	args = append(args, listLimit(filter.Limit))
	query += fmt.Sprintf(" ORDER BY a.generated_at DESC, a.id LIMIT $%d", len(args))

	var alerts []domain.AlertView
	if err := r.db.SelectContext(ctx, &alerts, query, args...); err != nil {
		return nil, fmt.Errorf("selecting alerts: %w", err)
	}
	return alerts, nil
}

func (r *AnalyticsRepository) AlertSummary(ctx context.Context) ([]domain.AlertSummary, error) {
	var summary []domain.AlertSummary
	err := r.db.SelectContext(ctx, &summary, `
        SELECT alert_type, severity, COUNT(*) AS count
        FROM alerts
        WHERE status = 'PENDING'
        GROUP BY alert_type, severity
        ORDER BY alert_type, severity`)
	if err != nil {
		return nil, fmt.Errorf("selecting alert summary: %w", err)
	}
	return summary, nil
}

func (r *AnalyticsRepository) UpdateAlertStatus(ctx context.Context, id int64, status domain.AlertStatus, user string) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE alerts
        SET status = $1, resolved_by = $2, resolved_at = NOW()
        WHERE id = $3`, status, user, id)
	if err != nil {
		return fmt.Errorf("updating alert %d: %w", id, err)
	}
	return requireRow(res, "alert", id)
}

func (r *AnalyticsRepository) Transfers(ctx context.Context, filter domain.TransferFilter) ([]domain.TransferView, error) {
	status := filter.Status
	if status == "" {
		status = string(domain.StatusPending)
	}
	query := `
        SELECT t.id, t.product_ref, t.source_code, t.destination_code,
               t.destination_region, t.quantity, t.source_days, t.destination_days,
               t.brand_category, t.brand_classification, t.priority, t.status,
               t.executed, t.executed_at, t.generated_at,
               COALESCE(p.name, '') AS product_name,
               COALESCE(ws.name, '') AS source_name,
               COALESCE(wd.name, '') AS destination_name
        FROM transfer_recommendations t
        LEFT JOIN products p ON p.reference = t.product_ref
        LEFT JOIN warehouses ws ON ws.code = t.source_code
        LEFT JOIN warehouses wd ON wd.code = t.destination_code
        WHERE t.status = $1`
	args := []interface{}{status}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		query += fmt.Sprintf(" AND t.priority = $%d", len(args))
	}
	if filter.Region != "" {
		args = append(args, filter.Region)
		query += fmt.Sprintf(" AND t.destination_region = $%d", len(args))
	}
	args = append(args, listLimit(filter.Limit))
	query += fmt.Sprintf(" ORDER BY t.destination_days ASC, t.id LIMIT $%d", len(args))

	var transfers []domain.TransferView
	if err := r.db.SelectContext(ctx, &transfers, query, args...); err != nil {
		return nil, fmt.Errorf("selecting transfers: %w", err)
	}
	return transfers, nil
}

func (r *AnalyticsRepository) UpdateTransferStatus(ctx context.Context, id int64, status domain.RecommendationStatus) error {
	executed := status == domain.StatusExecuted
	res, err := r.db.ExecContext(ctx, `
        UPDATE transfer_recommendations
        SET status = $1,
            executed = $2,
            executed_at = CASE WHEN $2 THEN NOW() ELSE executed_at END
        WHERE id = $3`, status, executed, id)
	if err != nil {
		return fmt.Errorf("updating transfer %d: %w", id, err)
	}
	return requireRow(res, "transfer recommendation", id)
}

func (r *AnalyticsRepository) PendingPurchaseCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM purchase_recommendations WHERE status = 'PENDING'`)
	if err != nil {
		return 0, fmt.Errorf("counting pending purchases: %w", err)
	}
	return count, nil
}

func (r *AnalyticsRepository) Purchases(ctx context.Context, filter domain.PurchaseFilter) ([]domain.PurchaseView, error) {
	query := `
        SELECT c.id, c.product_ref, c.brand_code, c.brand_category,
               c.brand_classification, c.network_stock, c.projected_sales,
               c.quantity, c.coverage_days, c.target_coverage_days,
               c.unit_cost, c.estimated_cost, c.order_by_date,
               c.estimated_arrival, c.priority, c.status, c.generated_at,
               COALESCE(p.name, '') AS product_name,
               COALESCE(b.name, '') AS brand_name
        FROM purchase_recommendations c
        LEFT JOIN products p ON p.reference = c.product_ref
        LEFT JOIN brands b ON b.code = c.brand_code
        WHERE c.status = 'PENDING'`
	var args []interface{}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		query += fmt.Sprintf(" AND c.priority = $%d", len(args))
	}
	if filter.BrandCode != "" {
		args = append(args, filter.BrandCode)
		query += fmt.Sprintf(" AND c.brand_code = $%d", len(args))
	}
	args = append(args, listLimit(filter.Limit))
	query += fmt.Sprintf(` ORDER BY
            CASE c.priority WHEN 'URGENT' THEN 1 WHEN 'HIGH' THEN 2 WHEN 'MEDIUM' THEN 3 ELSE 4 END,
            c.coverage_days ASC LIMIT $%d`, len(args))

	var purchases []domain.PurchaseView
	if err := r.db.SelectContext(ctx, &purchases, query, args...); err != nil {
		return nil, fmt.Errorf("selecting purchases: %w", err)
	}
	return purchases, nil
}

func (r *AnalyticsRepository) LiveNetworkDemand(ctx context.Context) ([]domain.NetworkDemand, error) {
	var demands []domain.NetworkDemand
	err := r.db.SelectContext(ctx, &demands, `
        WITH network_sales AS (
            SELECT s.product_ref, SUM(s.quantity) AS sales_30d
            FROM sales s
            JOIN warehouses w ON w.code = s.warehouse_code AND w.type = 'SALES'
            WHERE s.sale_date >= CURRENT_DATE - INTERVAL '30 days'
            GROUP BY s.product_ref
            HAVING SUM(s.quantity) > 0
        ),
        network_stock AS (
            SELECT product_ref,
                   SUM(quantity) AS network_stock,
                   AVG(NULLIF(unit_cost, 0)) AS avg_unit_cost
            FROM inventory
            WHERE quantity > 0
            GROUP BY product_ref
        )
        SELECT p.reference AS product_ref,
               p.name AS product_name,
               COALESCE(p.brand_code, '') AS brand_code,
               COALESCE(b.name, '') AS brand_name,
               COALESCE(b.category, '') AS brand_category,
               COALESCE(b.classification, '') AS brand_classification,
               COALESCE(b.coverage_days, $1) AS coverage_days,
               COALESCE(b.lead_time_days, $2) AS lead_time_days,
               COALESCE(ns.network_stock, 0) AS network_stock,
               nv.sales_30d AS sales_30d,
               COALESCE(ns.avg_unit_cost, 0) AS avg_unit_cost
        FROM network_sales nv
        JOIN products p ON p.reference = nv.product_ref
        LEFT JOIN brands b ON b.code = p.brand_code
        LEFT JOIN network_stock ns ON ns.product_ref = nv.product_ref
        ORDER BY p.reference`, r.defaultCoverage, r.defaultLeadTime)
	if err != nil {
		return nil, fmt.Errorf("selecting live network demand: %w", err)
	}
	return demands, nil
}

// Rows at the no-velocity sentinel would drag the average to four digits,
// the FILTER keeps them out of it.
const warehouseStatsQuery = `
        SELECT w.code, w.name, w.type, w.region, w.is_distribution_center,
               COUNT(DISTINCT m.product_ref) AS products,
               COALESCE(SUM(m.stock), 0) AS units,
               COALESCE(SUM(m.stock_value), 0) AS value,
               COALESCE(AVG(m.days_of_inventory) FILTER (WHERE m.days_of_inventory < $2), 0) AS avg_days_of_inventory
        FROM warehouses w
        LEFT JOIN product_metrics m ON m.warehouse_code = w.code AND m.calc_date = $1
        GROUP BY w.code, w.name, w.type, w.region, w.is_distribution_center
        ORDER BY value DESC`

func (r *AnalyticsRepository) WarehouseStats(ctx context.Context, date time.Time) ([]domain.WarehouseStats, error) {
	var stats []domain.WarehouseStats
	err := r.db.SelectContext(ctx, &stats, warehouseStatsQuery, date, r.infiniteCoverage)
	if err != nil {
		return nil, fmt.Errorf("selecting warehouse stats: %w", err)
	}
	return stats, nil
}

func (r *AnalyticsRepository) DailySales(ctx context.Context, days int) ([]domain.DailySalesPoint, error) {
	var points []domain.DailySalesPoint
	err := r.db.SelectContext(ctx, &points, `
        SELECT sale_date,
               COUNT(*) AS transactions,
               COALESCE(SUM(quantity), 0) AS units,
               COALESCE(SUM(total_value), 0) AS value
        FROM sales
        WHERE sale_date >= CURRENT_DATE - $1 * INTERVAL '1 day'
        GROUP BY sale_date
        ORDER BY sale_date`, days)
	if err != nil {
		return nil, fmt.Errorf("selecting daily sales: %w", err)
	}
	return points, nil
}

func (r *AnalyticsRepository) TopProducts(ctx context.Context, days, limit int) ([]domain.TopProduct, error) {
	var products []domain.TopProduct
	err := r.db.SelectContext(ctx, &products, `
        SELECT s.product_ref,
               COALESCE(p.name, '') AS product_name,
               COALESCE(SUM(s.quantity), 0) AS units_sold,
               COALESCE(SUM(s.total_value), 0) AS value_sold,
               COUNT(DISTINCT s.warehouse_code) AS warehouses_sold
        FROM sales s
        LEFT JOIN products p ON p.reference = s.product_ref
        WHERE s.sale_date >= CURRENT_DATE - $1 * INTERVAL '1 day'
        GROUP BY s.product_ref, p.name
        ORDER BY units_sold DESC
        LIMIT $2`, days, limit)
	if err != nil {
		return nil, fmt.Errorf("selecting top products: %w", err)
	}
	return products, nil
}

func (r *AnalyticsRepository) StockTrend(ctx context.Context, productRef string, days int) ([]domain.StockTrendPoint, error) {
	var points []domain.StockTrendPoint
	err := r.db.SelectContext(ctx, &points, `
        SELECT snapshot_date,
               COALESCE(SUM(quantity), 0) AS units
        FROM inventory_snapshots
        WHERE product_ref = $1
          AND snapshot_date >= CURRENT_DATE - $2 * INTERVAL '1 day'
        GROUP BY snapshot_date
        ORDER BY snapshot_date`, productRef, days)
	if err != nil {
		return nil, fmt.Errorf("selecting stock trend: %w", err)
	}
	return points, nil
}

func requireRow(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, repository.ErrNotFound)
	}
	return nil
}

func listLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}
