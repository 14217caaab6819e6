package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/stockiq/backend-go/internal/api/handlers"
	"github.com/stockiq/backend-go/internal/api/middleware"
	"github.com/stockiq/backend-go/internal/service"
)

func NewRouter(analytics *service.AnalyticsService, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	handler := handlers.NewAnalyticsHandler(analytics)
	{
		apiGroup.GET("/kpis", handler.GetKPIs)

		alertGroup := apiGroup.Group("/alerts")
		{
			alertGroup.GET("", handler.GetAlerts)
			alertGroup.GET("/summary", handler.GetAlertSummary)
			alertGroup.PATCH("/:id/status", handler.UpdateAlertStatus)
		}

		transferGroup := apiGroup.Group("/transfers")
		{
			transferGroup.GET("", handler.GetTransfers)
			transferGroup.PATCH("/:id/status", handler.UpdateTransferStatus)
		}

		apiGroup.GET("/purchases", handler.GetPurchases)
		apiGroup.GET("/warehouses", handler.GetWarehouses)

		salesGroup := apiGroup.Group("/sales")
		{
			salesGroup.GET("/daily", handler.GetDailySales)
			salesGroup.GET("/top-products", handler.GetTopProducts)
		}

		apiGroup.GET("/products/:ref/stock-trend", handler.GetStockTrend)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
