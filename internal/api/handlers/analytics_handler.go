package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/stockiq/backend-go/internal/domain"
	"github.com/stockiq/backend-go/internal/repository"
	"github.com/stockiq/backend-go/internal/service"
)

type AnalyticsHandler struct {
	service *service.AnalyticsService
}

func NewAnalyticsHandler(s *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: s}
}

// GetKPIs handles GET /api/v1/kpis
func (h *AnalyticsHandler) GetKPIs(c *gin.Context) {
	kpis, err := h.service.DashboardKPIs(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load dashboard kpis")
		return
	}
	c.JSON(http.StatusOK, kpis)
}

// GetAlerts handles GET /api/v1/alerts
func (h *AnalyticsHandler) GetAlerts(c *gin.Context) {
	filter := domain.AlertFilter{
		Type:     c.Query("type"),
		Severity: c.Query("severity"),
		Limit:    intQuery(c, "limit", 50),
	}
	alerts, err := h.service.Alerts(c.Request.Context(), filter)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load alerts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

// GetAlertSummary handles GET /api/v1/alerts/summary
func (h *AnalyticsHandler) GetAlertSummary(c *gin.Context) {
	summary, err := h.service.AlertSummary(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load alert summary")
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

type statusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
	User   string `json:"user"`
}

// UpdateAlertStatus handles PATCH /api/v1/alerts/:id/status
func (h *AnalyticsHandler) UpdateAlertStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid alert id")
		return
	}
	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	status, ok := domain.ParseAlertStatus(req.Status)
	if !ok {
		errorResponse(c, http.StatusBadRequest, "status must be SEEN, RESOLVED or IGNORED")
		return
	}

	if err := h.service.UpdateAlertStatus(c.Request.Context(), id, status, req.User); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			errorResponse(c, http.StatusNotFound, "alert not found")
			return
		}
		errorResponse(c, http.StatusInternalServerError, "failed to update alert")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": status})
}

// GetTransfers handles GET /api/v1/transfers
func (h *AnalyticsHandler) GetTransfers(c *gin.Context) {
	filter := domain.TransferFilter{
		Priority: c.Query("priority"),
		Region:   c.Query("region"),
		Status:   c.Query("status"),
		Limit:    intQuery(c, "limit", 50),
	}
	transfers, err := h.service.Transfers(c.Request.Context(), filter)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load transfer recommendations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"transfers": transfers, "count": len(transfers)})
}

// UpdateTransferStatus handles PATCH /api/v1/transfers/:id/status
func (h *AnalyticsHandler) UpdateTransferStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid transfer id")
		return
	}
	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	status, ok := domain.ParseRecommendationStatus(req.Status)
	if !ok {
		errorResponse(c, http.StatusBadRequest, "status must be APPROVED, REJECTED or EXECUTED")
		return
	}

	if err := h.service.UpdateTransferStatus(c.Request.Context(), id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			errorResponse(c, http.StatusNotFound, "transfer recommendation not found")
			return
		}
		errorResponse(c, http.StatusInternalServerError, "failed to update transfer recommendation")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": status})
}

// GetPurchases handles GET /api/v1/purchases
func (h *AnalyticsHandler) GetPurchases(c *gin.Context) {
	filter := domain.PurchaseFilter{
		Priority:  c.Query("priority"),
		BrandCode: c.Query("brand"),
		Limit:     intQuery(c, "limit", 50),
	}
	purchases, err := h.service.Purchases(c.Request.Context(), filter)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load purchase recommendations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchases": purchases, "count": len(purchases)})
}

// GetWarehouses handles GET /api/v1/warehouses
func (h *AnalyticsHandler) GetWarehouses(c *gin.Context) {
	date := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}
	stats, err := h.service.WarehouseStats(c.Request.Context(), date)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load warehouse stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{"warehouses": stats})
}

// GetDailySales handles GET /api/v1/sales/daily
func (h *AnalyticsHandler) GetDailySales(c *gin.Context) {
	days := intQuery(c, "days", 30)
	points, err := h.service.DailySales(c.Request.Context(), days)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load daily sales")
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": points})
}

// GetTopProducts handles GET /api/v1/sales/top-products
func (h *AnalyticsHandler) GetTopProducts(c *gin.Context) {
	days := intQuery(c, "days", 30)
	limit := intQuery(c, "limit", 20)
	products, err := h.service.TopProducts(c.Request.Context(), days, limit)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load top products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetStockTrend handles GET /api/v1/products/:ref/stock-trend
func (h *AnalyticsHandler) GetStockTrend(c *gin.Context) {
	ref := c.Param("ref")
	days := intQuery(c, "days", 30)
	points, err := h.service.StockTrend(c.Request.Context(), ref, days)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load stock trend")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_ref": ref, "trend": points})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	log.Error().Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
}
