package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardKPIs is the headline figures block for the dashboard.
type DashboardKPIs struct {
	Inventory        InventoryKPIs `json:"inventory"`
	Sales30d         SalesKPIs     `json:"sales_30d"`
	Alerts           AlertKPIs     `json:"alerts"`
	PendingTransfers int           `json:"pending_transfers"`
	PendingPurchases PurchaseKPIs  `json:"pending_purchases"`
}

type InventoryKPIs struct {
	Products   int             `json:"products" db:"products"`
	Warehouses int             `json:"warehouses" db:"warehouses"`
	Units      float64         `json:"units" db:"units"`
	Value      decimal.Decimal `json:"value" db:"value"`
}

type SalesKPIs struct {
	Transactions int             `json:"transactions" db:"transactions"`
	Units        float64         `json:"units" db:"units"`
	Value        decimal.Decimal `json:"value" db:"value"`
}

type AlertKPIs struct {
	Critical  int `json:"critical" db:"critical"`
	Low       int `json:"low" db:"low"`
	Overstock int `json:"overstock" db:"overstock"`
	Total     int `json:"total" db:"total"`
}

type PurchaseKPIs struct {
	Total          int             `json:"total" db:"total"`
	EstimatedValue decimal.Decimal `json:"estimated_value" db:"estimated_value"`
}

// AlertView is an alert joined with product and warehouse display names.
type AlertView struct {
	Alert
	ProductName   string `json:"product_name" db:"product_name"`
	WarehouseName string `json:"warehouse_name" db:"warehouse_name"`
}

// AlertSummary is the pending-alert count per (type, severity).
type AlertSummary struct {
	Type     AlertType `json:"type" db:"alert_type"`
	Severity Severity  `json:"severity" db:"severity"`
	Count    int       `json:"count" db:"count"`
}

// TransferView is a transfer recommendation joined with display names.
type TransferView struct {
	TransferRecommendation
	ProductName     string `json:"product_name" db:"product_name"`
	SourceName      string `json:"source_name" db:"source_name"`
	DestinationName string `json:"destination_name" db:"destination_name"`
}

// PurchaseView is a purchase recommendation joined with display names.
type PurchaseView struct {
	PurchaseRecommendation
	ProductName string `json:"product_name" db:"product_name"`
	BrandName   string `json:"brand_name" db:"brand_name"`
}

// WarehouseStats aggregates the current calculation date's metrics per
// sales-floor warehouse.
type WarehouseStats struct {
	Code                 string          `json:"code" db:"code"`
	Name                 string          `json:"name" db:"name"`
	Type                 WarehouseType   `json:"type" db:"type"`
	Region               string          `json:"region" db:"region"`
	IsDistributionCenter bool            `json:"is_distribution_center" db:"is_distribution_center"`
	Products             int             `json:"products" db:"products"`
	Units                float64         `json:"units" db:"units"`
	Value                decimal.Decimal `json:"value" db:"value"`
	AvgDaysOfInventory   float64         `json:"avg_days_of_inventory" db:"avg_days_of_inventory"`
}

// DailySalesPoint is one day of the sales time series.
type DailySalesPoint struct {
	Date         time.Time       `json:"date" db:"sale_date"`
	Transactions int             `json:"transactions" db:"transactions"`
	Units        float64         `json:"units" db:"units"`
	Value        decimal.Decimal `json:"value" db:"value"`
}

// TopProduct is one row of the best-sellers listing.
type TopProduct struct {
	ProductRef     string          `json:"product_ref" db:"product_ref"`
	ProductName    string          `json:"product_name" db:"product_name"`
	UnitsSold      float64         `json:"units_sold" db:"units_sold"`
	ValueSold      decimal.Decimal `json:"value_sold" db:"value_sold"`
	WarehousesSold int             `json:"warehouses_sold" db:"warehouses_sold"`
}

// StockTrendPoint is one point of a product's historical stock series,
// read from the append-only inventory snapshots.
type StockTrendPoint struct {
	Date  time.Time `json:"date" db:"snapshot_date"`
	Units float64   `json:"units" db:"units"`
}

// AlertFilter narrows alert listings.
type AlertFilter struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Limit    int    `json:"limit"`
}

// TransferFilter narrows transfer recommendation listings.
type TransferFilter struct {
	Priority string `json:"priority"`
	Region   string `json:"region"`
	Status   string `json:"status"`
	Limit    int    `json:"limit"`
}

// PurchaseFilter narrows purchase recommendation listings.
type PurchaseFilter struct {
	Priority  string `json:"priority"`
	BrandCode string `json:"brand_code"`
	Limit     int    `json:"limit"`
}
