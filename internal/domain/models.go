package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WarehouseType distinguishes sales-floor warehouses from distribution centers.
type WarehouseType string

const (
	WarehouseSales        WarehouseType = "SALES"
	WarehouseDistribution WarehouseType = "DISTRIBUTION"
)

// Product is the catalog entry for a sellable reference.
type Product struct {
	Reference string    `json:"reference" db:"reference"`
	Name      string    `json:"name" db:"name"`
	Unit      string    `json:"unit" db:"unit"`
	Class     string    `json:"class" db:"class"`
	Group     string    `json:"group" db:"product_group"`
	Line      string    `json:"line" db:"line"`
	BrandCode string    `json:"brand_code" db:"brand_code"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Warehouse is a stocking location in the network.
type Warehouse struct {
	Code                 string        `json:"code" db:"code"`
	Name                 string        `json:"name" db:"name"`
	Type                 WarehouseType `json:"type" db:"type"`
	Region               string        `json:"region" db:"region"`
	IsDistributionCenter bool          `json:"is_distribution_center" db:"is_distribution_center"`
}

// Brand carries the replenishment policy parameters the engine works with.
type Brand struct {
	Code              string `json:"code" db:"code"`
	Name              string `json:"name" db:"name"`
	Category          string `json:"category" db:"category"`
	Classification    string `json:"classification" db:"classification"`
	CoverageDays      int    `json:"coverage_days" db:"coverage_days"`
	LeadTimeDays      int    `json:"lead_time_days" db:"lead_time_days"`
	PurchaseCycleDays int    `json:"purchase_cycle_days" db:"purchase_cycle_days"`
}

// InventoryFact is the current on-hand snapshot for one product in one
// warehouse, overwritten on every collection cycle.
type InventoryFact struct {
	WarehouseCode string          `json:"warehouse_code" db:"warehouse_code"`
	ProductRef    string          `json:"product_ref" db:"product_ref"`
	Quantity      float64         `json:"quantity" db:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost" db:"unit_cost"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// InventorySnapshot is the append-only history of InventoryFact, keyed
// additionally by snapshot date. Used for trend charts only.
type InventorySnapshot struct {
	SnapshotDate  time.Time       `json:"snapshot_date" db:"snapshot_date"`
	WarehouseCode string          `json:"warehouse_code" db:"warehouse_code"`
	ProductRef    string          `json:"product_ref" db:"product_ref"`
	Quantity      float64         `json:"quantity" db:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost" db:"unit_cost"`
}

// SalesFact is an immutable transaction-level sale record.
type SalesFact struct {
	Document      string          `json:"document" db:"document"`
	ProductRef    string          `json:"product_ref" db:"product_ref"`
	WarehouseCode string          `json:"warehouse_code" db:"warehouse_code"`
	Date          time.Time       `json:"date" db:"sale_date"`
	Quantity      float64         `json:"quantity" db:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalValue    decimal.Decimal `json:"total_value" db:"total_value"`
}

// InventoryPosition is the joined engine input row: current stock for one
// (product, warehouse) plus trailing sales windows and the brand policy,
// with defaults already substituted for missing brand or warehouse metadata.
type InventoryPosition struct {
	ProductRef           string          `db:"product_ref"`
	WarehouseCode        string          `db:"warehouse_code"`
	WarehouseType        WarehouseType   `db:"warehouse_type"`
	WarehouseRegion      string          `db:"warehouse_region"`
	IsDistributionCenter bool            `db:"is_distribution_center"`
	Stock                float64         `db:"stock"`
	UnitCost             decimal.Decimal `db:"unit_cost"`
	Sales7d              float64         `db:"sales_7d"`
	Sales30d             float64         `db:"sales_30d"`
	Sales90d             float64         `db:"sales_90d"`
	CoverageDays         int             `db:"coverage_days"`
	LeadTimeDays         int             `db:"lead_time_days"`
	BrandCategory        string          `db:"brand_category"`
	BrandClassification  string          `db:"brand_classification"`
}

// MetricRow is the engine's primary derived entity, keyed by
// (calc date, product, warehouse). The persisted columns are the metric
// fields; the brand and warehouse attributes are rejoined on read so the
// downstream stages never look policy up a second time.
type MetricRow struct {
	CalcDate         time.Time       `db:"calc_date"`
	ProductRef       string          `db:"product_ref"`
	WarehouseCode    string          `db:"warehouse_code"`
	Stock            float64         `db:"stock"`
	StockValue       decimal.Decimal `db:"stock_value"`
	Sales7d          float64         `db:"sales_7d"`
	Sales30d         float64         `db:"sales_30d"`
	Sales90d         float64         `db:"sales_90d"`
	DailySales       float64         `db:"daily_sales"`
	DaysOfInventory  float64         `db:"days_of_inventory"`
	MonthlyRotation  float64         `db:"monthly_rotation"`
	ReorderPoint     float64         `db:"reorder_point"`
	SafetyStock      float64         `db:"safety_stock"`
	MaxStock         float64         `db:"max_stock"`
	State            StockState      `db:"state"`
	RequiresTransfer bool            `db:"requires_transfer"`
	RequiresPurchase bool            `db:"requires_purchase"`

	// Joined attributes, not persisted on product_metrics.
	WarehouseType       WarehouseType `db:"warehouse_type"`
	WarehouseRegion     string        `db:"warehouse_region"`
	CoverageDays        int           `db:"coverage_days"`
	LeadTimeDays        int           `db:"lead_time_days"`
	BrandCategory       string        `db:"brand_category"`
	BrandClassification string        `db:"brand_classification"`
}

// Alert is one out-of-band stock condition detected for a calculation date.
type Alert struct {
	ID                  int64       `json:"id" db:"id"`
	Type                AlertType   `json:"type" db:"alert_type"`
	Severity            Severity    `json:"severity" db:"severity"`
	ProductRef          string      `json:"product_ref" db:"product_ref"`
	WarehouseCode       string      `json:"warehouse_code" db:"warehouse_code"`
	Stock               float64     `json:"stock" db:"stock"`
	DaysOfInventory     float64     `json:"days_of_inventory" db:"days_of_inventory"`
	DailySales          float64     `json:"daily_sales" db:"daily_sales"`
	BrandCategory       string      `json:"brand_category" db:"brand_category"`
	BrandClassification string      `json:"brand_classification" db:"brand_classification"`
	Message             string      `json:"message" db:"message"`
	GeneratedAt         time.Time   `json:"generated_at" db:"generated_at"`
	Status              AlertStatus `json:"status" db:"status"`
	ResolvedBy          string      `json:"resolved_by" db:"resolved_by"`
	ResolvedAt          *time.Time  `json:"resolved_at" db:"resolved_at"`
}

// TransferRecommendation pairs a surplus warehouse with a deficit warehouse
// for one product.
type TransferRecommendation struct {
	ID                  int64                `json:"id" db:"id"`
	ProductRef          string               `json:"product_ref" db:"product_ref"`
	SourceCode          string               `json:"source_code" db:"source_code"`
	DestinationCode     string               `json:"destination_code" db:"destination_code"`
	DestinationRegion   string               `json:"destination_region" db:"destination_region"`
	Quantity            float64              `json:"quantity" db:"quantity"`
	SourceDays          float64              `json:"source_days" db:"source_days"`
	DestinationDays     float64              `json:"destination_days" db:"destination_days"`
	BrandCategory       string               `json:"brand_category" db:"brand_category"`
	BrandClassification string               `json:"brand_classification" db:"brand_classification"`
	Priority            Priority             `json:"priority" db:"priority"`
	Status              RecommendationStatus `json:"status" db:"status"`
	Executed            bool                 `json:"executed" db:"executed"`
	ExecutedAt          *time.Time           `json:"executed_at" db:"executed_at"`
	GeneratedAt         time.Time            `json:"generated_at" db:"generated_at"`
}

// PurchaseRecommendation is the network-wide purchase sizing for one product.
type PurchaseRecommendation struct {
	ID                  int64                `json:"id" db:"id"`
	ProductRef          string               `json:"product_ref" db:"product_ref"`
	BrandCode           string               `json:"brand_code" db:"brand_code"`
	BrandCategory       string               `json:"brand_category" db:"brand_category"`
	BrandClassification string               `json:"brand_classification" db:"brand_classification"`
	NetworkStock        float64              `json:"network_stock" db:"network_stock"`
	ProjectedSales      float64              `json:"projected_sales" db:"projected_sales"`
	Quantity            float64              `json:"quantity" db:"quantity"`
	CoverageDays        float64              `json:"coverage_days" db:"coverage_days"`
	TargetCoverageDays  float64              `json:"target_coverage_days" db:"target_coverage_days"`
	UnitCost            decimal.Decimal      `json:"unit_cost" db:"unit_cost"`
	EstimatedCost       decimal.Decimal      `json:"estimated_cost" db:"estimated_cost"`
	OrderByDate         time.Time            `json:"order_by_date" db:"order_by_date"`
	EstimatedArrival    time.Time            `json:"estimated_arrival" db:"estimated_arrival"`
	Priority            Priority             `json:"priority" db:"priority"`
	Status              RecommendationStatus `json:"status" db:"status"`
	GeneratedAt         time.Time            `json:"generated_at" db:"generated_at"`
}

// NetworkDemand is the purchase sizer input: one product aggregated over the
// whole network, with brand policy defaults substituted.
type NetworkDemand struct {
	ProductRef          string          `db:"product_ref"`
	ProductName         string          `db:"product_name"`
	BrandCode           string          `db:"brand_code"`
	BrandName           string          `db:"brand_name"`
	BrandCategory       string          `db:"brand_category"`
	BrandClassification string          `db:"brand_classification"`
	CoverageDays        int             `db:"coverage_days"`
	LeadTimeDays        int             `db:"lead_time_days"`
	NetworkStock        float64         `db:"network_stock"`
	Sales30d            float64         `db:"sales_30d"`
	AvgUnitCost         decimal.Decimal `db:"avg_unit_cost"`
}

// EngineRunStatus is the lifecycle state of one orchestrator execution.
type EngineRunStatus string

const (
	RunStatusRunning   EngineRunStatus = "running"
	RunStatusCompleted EngineRunStatus = "completed"
	RunStatusFailed    EngineRunStatus = "failed"
)

// EngineRun tracks a single orchestrator execution for a calculation date.
type EngineRun struct {
	ID            int64           `db:"id"`
	RunID         string          `db:"run_id"`
	CalcDate      time.Time       `db:"calc_date"`
	Status        EngineRunStatus `db:"status"`
	MetricRows    int             `db:"metric_rows"`
	AlertCount    int             `db:"alert_count"`
	TransferCount int             `db:"transfer_count"`
	PurchaseCount int             `db:"purchase_count"`
	StartedAt     time.Time       `db:"started_at"`
	CompletedAt   *time.Time      `db:"completed_at"`
	ErrorMessage  string          `db:"error_message"`
}

// AlertCounts breaks down how many alerts each classifier emission produced.
type AlertCounts struct {
	LowStock    int `json:"low_stock"`
	Overstock   int `json:"overstock"`
	LowRotation int `json:"low_rotation"`
	Total       int `json:"total"`
}
