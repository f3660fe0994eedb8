// internal/interfaces/http/handlers/analytics.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pawverse/petstore-backend/internal/domain/analytics"
)

// AnalyticsHandler handles admin reporting endpoints
type AnalyticsHandler struct {
	analyticsService *analytics.Service
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// GetDashboard handles GET /admin/analytics/dashboard
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	stats, err := h.analyticsService.GetDashboardStats()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"total_revenue":            money(stats.TotalRevenue),
			"collected_revenue":        money(stats.CollectedRevenue),
			"revenue_this_month":       money(stats.RevenueThisMonth),
			"revenue_growth":           stats.RevenueGrowth,
			"avg_order_value":          money(stats.AvgOrderValue),
			"total_orders":             stats.TotalOrders,
			"orders_today":             stats.OrdersToday,
			"orders_this_week":         stats.OrdersThisWeek,
			"orders_this_month":        stats.OrdersThisMonth,
			"order_growth":             stats.OrderGrowth,
			"total_users":              stats.TotalUsers,
			"new_users_this_month":     stats.NewUsersThisMonth,
			"total_pets":               stats.TotalPets,
			"total_products":           stats.TotalProducts,
			"orders_by_payment_status": statusRows(stats.OrdersByPaymentStatus),
			"orders_by_payment_method": statusRows(stats.OrdersByPaymentMethod),
			"bookings_by_status":       statusRows(stats.BookingsByStatus),
		},
	})
}

// GetSales handles GET /admin/analytics/sales?days=N
func (h *AnalyticsHandler) GetSales(c *gin.Context) {
	sales, err := h.analyticsService.GetSalesAnalytics(queryInt(c, "days", 30))
	if err != nil {
		respondError(c, err)
		return
	}

	daily := make([]gin.H, 0, len(sales.DailyRevenue))
	for _, d := range sales.DailyRevenue {
		daily = append(daily, gin.H{"date": d.Date, "revenue": money(d.Value), "orders": d.Count})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"days":            sales.Days,
			"daily_revenue":   daily,
			"total_sales":     sales.TotalSales,
			"total_revenue":   money(sales.TotalRevenue),
			"avg_order_value": money(sales.AvgOrderValue),
		},
	})
}

func statusRows(rows []analytics.StatusData) []gin.H {
	out := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		out = append(out, gin.H{"status": r.Status, "count": r.Count, "value": money(r.Value)})
	}
	return out
}
