package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/stockiq/backend-go/internal/domain"
	"github.com/stockiq/backend-go/internal/repository"
)

// EngineRepository is the postgres implementation of the engine's fact
// store. Brand policy defaults are substituted in SQL so the stages only
// ever see complete rows.
type EngineRepository struct {
	db              *DB
	defaultCoverage int
	defaultLeadTime int
}

func NewEngineRepository(db *DB, defaultCoverageDays, defaultLeadTimeDays int) repository.EngineStore {
	return &EngineRepository{
		db:              db,
		defaultCoverage: defaultCoverageDays,
		defaultLeadTime: defaultLeadTimeDays,
	}
}

// Sales windows are anchored on the calculation date, not the wall clock,
// so re-running a past date reproduces that date's inputs.
const inventoryPositionsQuery = `
WITH sales_windows AS (
    SELECT
        s.product_ref,
        s.warehouse_code,
        SUM(CASE WHEN s.sale_date >= $1::date - INTERVAL '7 days' THEN s.quantity ELSE 0 END) AS sales_7d,
        SUM(CASE WHEN s.sale_date >= $1::date - INTERVAL '30 days' THEN s.quantity ELSE 0 END) AS sales_30d,
        SUM(s.quantity) AS sales_90d
    FROM sales s
    JOIN warehouses w ON w.code = s.warehouse_code AND w.type = 'SALES'
    WHERE s.sale_date >= $1::date - INTERVAL '90 days'
      AND s.sale_date <= $1::date
    GROUP BY s.product_ref, s.warehouse_code
)
SELECT
    i.product_ref,
    i.warehouse_code,
    w.type AS warehouse_type,
    w.region AS warehouse_region,
    w.is_distribution_center,
    i.quantity AS stock,
    i.unit_cost,
    COALESCE(sw.sales_7d, 0) AS sales_7d,
    COALESCE(sw.sales_30d, 0) AS sales_30d,
    COALESCE(sw.sales_90d, 0) AS sales_90d,
    COALESCE(b.coverage_days, $2) AS coverage_days,
    COALESCE(b.lead_time_days, $3) AS lead_time_days,
    COALESCE(b.category, '') AS brand_category,
    COALESCE(b.classification, '') AS brand_classification
FROM inventory i
JOIN warehouses w ON w.code = i.warehouse_code
LEFT JOIN sales_windows sw ON sw.product_ref = i.product_ref AND sw.warehouse_code = i.warehouse_code
LEFT JOIN products p ON p.reference = i.product_ref
LEFT JOIN brands b ON b.code = p.brand_code
WHERE i.quantity > 0
ORDER BY i.warehouse_code, i.product_ref`

func (r *EngineRepository) InventoryPositions(ctx context.Context, calcDate time.Time) ([]domain.InventoryPosition, error) {
	var positions []domain.InventoryPosition
	err := r.db.SelectContext(ctx, &positions, inventoryPositionsQuery,
		calcDate, r.defaultCoverage, r.defaultLeadTime)
	if err != nil {
		return nil, fmt.Errorf("selecting inventory positions: %w", err)
	}
	return positions, nil
}

const upsertMetricQuery = `
INSERT INTO product_metrics (
    calc_date, product_ref, warehouse_code,
    stock, stock_value, sales_7d, sales_30d, sales_90d,
    daily_sales, days_of_inventory, monthly_rotation,
    reorder_point, safety_stock, max_stock,
    state, requires_transfer, requires_purchase
) VALUES (
    :calc_date, :product_ref, :warehouse_code,
    :stock, :stock_value, :sales_7d, :sales_30d, :sales_90d,
    :daily_sales, :days_of_inventory, :monthly_rotation,
    :reorder_point, :safety_stock, :max_stock,
    :state, :requires_transfer, :requires_purchase
)
ON CONFLICT (calc_date, product_ref, warehouse_code) DO UPDATE SET
    stock = EXCLUDED.stock,
    stock_value = EXCLUDED.stock_value,
    sales_7d = EXCLUDED.sales_7d,
    sales_30d = EXCLUDED.sales_30d,
    sales_90d = EXCLUDED.sales_90d,
    daily_sales = EXCLUDED.daily_sales,
    days_of_inventory = EXCLUDED.days_of_inventory,
    monthly_rotation = EXCLUDED.monthly_rotation,
    reorder_point = EXCLUDED.reorder_point,
    safety_stock = EXCLUDED.safety_stock,
    max_stock = EXCLUDED.max_stock,
    state = EXCLUDED.state,
    requires_transfer = EXCLUDED.requires_transfer,
    requires_purchase = EXCLUDED.requires_purchase`

func (r *EngineRepository) UpsertMetrics(ctx context.Context, calcDate time.Time, rows []domain.MetricRow) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for i := range rows {
			if _, err := tx.NamedExecContext(ctx, upsertMetricQuery, &rows[i]); err != nil {
				return fmt.Errorf("upserting metric row %s/%s: %w",
					rows[i].ProductRef, rows[i].WarehouseCode, err)
			}
		}
		return nil
	})
}

const metricsForDateQuery = `
SELECT
    m.calc_date, m.product_ref, m.warehouse_code,
    m.stock, m.stock_value, m.sales_7d, m.sales_30d, m.sales_90d,
    m.daily_sales, m.days_of_inventory, m.monthly_rotation,
    m.reorder_point, m.safety_stock, m.max_stock,
    m.state, m.requires_transfer, m.requires_purchase,
    w.type AS warehouse_type,
    w.region AS warehouse_region,
    COALESCE(b.coverage_days, $2) AS coverage_days,
    COALESCE(b.lead_time_days, $3) AS lead_time_days,
    COALESCE(b.category, '') AS brand_category,
    COALESCE(b.classification, '') AS brand_classification
FROM product_metrics m
JOIN warehouses w ON w.code = m.warehouse_code
LEFT JOIN products p ON p.reference = m.product_ref
LEFT JOIN brands b ON b.code = p.brand_code
WHERE m.calc_date = $1
ORDER BY m.warehouse_code, m.product_ref`

func (r *EngineRepository) MetricsForDate(ctx context.Context, calcDate time.Time) ([]domain.MetricRow, error) {
	var rows []domain.MetricRow
	err := r.db.SelectContext(ctx, &rows, metricsForDateQuery,
		calcDate, r.defaultCoverage, r.defaultLeadTime)
	if err != nil {
		return nil, fmt.Errorf("selecting metrics: %w", err)
	}
	return rows, nil
}

const insertAlertQuery = `
INSERT INTO alerts (
    alert_type, severity, product_ref, warehouse_code,
    stock, days_of_inventory, daily_sales,
    brand_category, brand_classification, message, generated_at, status
) VALUES (
    :alert_type, :severity, :product_ref, :warehouse_code,
    :stock, :days_of_inventory, :daily_sales,
    :brand_category, :brand_classification, :message, :generated_at, :status
)`

func (r *EngineRepository) ReplacePendingAlerts(ctx context.Context, calcDate time.Time, alerts []domain.Alert) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM alerts WHERE DATE(generated_at) = $1 AND status = 'PENDING'`, calcDate)
		if err != nil {
			return fmt.Errorf("clearing pending alerts: %w", err)
		}
		for i := range alerts {
			if _, err := tx.NamedExecContext(ctx, insertAlertQuery, &alerts[i]); err != nil {
				return fmt.Errorf("inserting alert for %s/%s: %w",
					alerts[i].ProductRef, alerts[i].WarehouseCode, err)
			}
		}
		return nil
	})
}

const insertTransferQuery = `
INSERT INTO transfer_recommendations (
    product_ref, source_code, destination_code, destination_region,
    quantity, source_days, destination_days,
    brand_category, brand_classification, priority, status, generated_at
) VALUES (
    :product_ref, :source_code, :destination_code, :destination_region,
    :quantity, :source_days, :destination_days,
    :brand_category, :brand_classification, :priority, :status, :generated_at
)`

func (r *EngineRepository) ReplacePendingTransfers(ctx context.Context, calcDate time.Time, recs []domain.TransferRecommendation) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM transfer_recommendations WHERE DATE(generated_at) = $1 AND status = 'PENDING'`, calcDate)
		if err != nil {
			return fmt.Errorf("clearing pending transfers: %w", err)
		}
		for i := range recs {
			if _, err := tx.NamedExecContext(ctx, insertTransferQuery, &recs[i]); err != nil {
				return fmt.Errorf("inserting transfer for %s: %w", recs[i].ProductRef, err)
			}
		}
		return nil
	})
}

const networkDemandQuery = `
WITH network_stock AS (
    SELECT product_ref, SUM(quantity) AS network_stock, AVG(unit_cost) AS avg_unit_cost
    FROM inventory
    GROUP BY product_ref
),
network_sales AS (
    SELECT s.product_ref, SUM(s.quantity) AS sales_30d
    FROM sales s
    JOIN warehouses w ON w.code = s.warehouse_code AND w.type = 'SALES'
    WHERE s.sale_date >= $1::date - INTERVAL '30 days'
      AND s.sale_date <= $1::date
    GROUP BY s.product_ref
)
SELECT
    p.reference AS product_ref,
    p.name AS product_name,
    COALESCE(p.brand_code, '') AS brand_code,
    COALESCE(b.name, '') AS brand_name,
    COALESCE(b.category, '') AS brand_category,
    COALESCE(b.classification, '') AS brand_classification,
    COALESCE(b.coverage_days, $2) AS coverage_days,
    COALESCE(b.lead_time_days, $3) AS lead_time_days,
    COALESCE(ns.network_stock, 0) AS network_stock,
    COALESCE(nv.sales_30d, 0) AS sales_30d,
    COALESCE(ns.avg_unit_cost, 0) AS avg_unit_cost
FROM products p
LEFT JOIN brands b ON b.code = p.brand_code
LEFT JOIN network_stock ns ON ns.product_ref = p.reference
LEFT JOIN network_sales nv ON nv.product_ref = p.reference
WHERE COALESCE(nv.sales_30d, 0) > 0
ORDER BY p.reference`

func (r *EngineRepository) NetworkDemand(ctx context.Context, calcDate time.Time) ([]domain.NetworkDemand, error) {
	var demands []domain.NetworkDemand
	err := r.db.SelectContext(ctx, &demands, networkDemandQuery,
		calcDate, r.defaultCoverage, r.defaultLeadTime)
	if err != nil {
		return nil, fmt.Errorf("selecting network demand: %w", err)
	}
	return demands, nil
}

const insertPurchaseQuery = `
INSERT INTO purchase_recommendations (
    product_ref, brand_code, brand_category, brand_classification,
    network_stock, projected_sales, quantity,
    coverage_days, target_coverage_days,
    unit_cost, estimated_cost,
    order_by_date, estimated_arrival, priority, status, generated_at
) VALUES (
    :product_ref, :brand_code, :brand_category, :brand_classification,
    :network_stock, :projected_sales, :quantity,
    :coverage_days, :target_coverage_days,
    :unit_cost, :estimated_cost,
    :order_by_date, :estimated_arrival, :priority, :status, :generated_at
)`

func (r *EngineRepository) ReplacePendingPurchases(ctx context.Context, calcDate time.Time, recs []domain.PurchaseRecommendation) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM purchase_recommendations WHERE DATE(generated_at) = $1 AND status = 'PENDING'`, calcDate)
		if err != nil {
			return fmt.Errorf("clearing pending purchases: %w", err)
		}
		for i := range recs {
			if _, err := tx.NamedExecContext(ctx, insertPurchaseQuery, &recs[i]); err != nil {
				return fmt.Errorf("inserting purchase for %s: %w", recs[i].ProductRef, err)
			}
		}
		return nil
	})
}

func (r *EngineRepository) CreateEngineRun(ctx context.Context, run *domain.EngineRun) error {
	const query = `
        INSERT INTO engine_runs (run_id, calc_date, status, started_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id`
	if err := r.db.QueryRowContext(ctx, query,
		run.RunID, run.CalcDate, run.Status, run.StartedAt).Scan(&run.ID); err != nil {
		return fmt.Errorf("creating engine run: %w", err)
	}
	return nil
}

func (r *EngineRepository) UpdateEngineRun(ctx context.Context, run *domain.EngineRun) error {
	const query = `
        UPDATE engine_runs SET
            status = :status,
            metric_rows = :metric_rows,
            alert_count = :alert_count,
            transfer_count = :transfer_count,
            purchase_count = :purchase_count,
            completed_at = :completed_at,
            error_message = :error_message
        WHERE run_id = :run_id`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("updating engine run: %w", err)
	}
	return nil
}
