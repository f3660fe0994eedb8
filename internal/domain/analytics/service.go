// internal/domain/analytics/service.go
package analytics

import (
	"fmt"
	"time"

	"github.com/pawverse/petstore-backend/internal/domain/booking"
	"github.com/pawverse/petstore-backend/internal/domain/catalog"
	"github.com/pawverse/petstore-backend/internal/domain/order"
	"github.com/pawverse/petstore-backend/internal/domain/payment"
	"github.com/pawverse/petstore-backend/internal/domain/user"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service computes admin dashboard figures
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService creates a new analytics service
func NewService(db *gorm.DB) *Service {
	return &Service{
		db:  db,
		now: time.Now,
	}
}

// DashboardStats represents overall dashboard statistics. Revenue counts
// every order whose payment has not failed.
type DashboardStats struct {
	// Sales metrics
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	CollectedRevenue decimal.Decimal `json:"collected_revenue"`
	RevenueThisMonth decimal.Decimal `json:"revenue_this_month"`
	RevenueGrowth    float64         `json:"revenue_growth"` // Percentage
	AvgOrderValue    decimal.Decimal `json:"avg_order_value"`

	// Order metrics
	TotalOrders     int64   `json:"total_orders"`
	OrdersToday     int64   `json:"orders_today"`
	OrdersThisWeek  int64   `json:"orders_this_week"`
	OrdersThisMonth int64   `json:"orders_this_month"`
	OrderGrowth     float64 `json:"order_growth"` // Percentage

	// User metrics
	TotalUsers        int64 `json:"total_users"`
	NewUsersThisMonth int64 `json:"new_users_this_month"`

	// Catalog metrics
	TotalPets     int64 `json:"total_pets"`
	TotalProducts int64 `json:"total_products"`

	OrdersByPaymentStatus []StatusData `json:"orders_by_payment_status"`
	OrdersByPaymentMethod []StatusData `json:"orders_by_payment_method"`
	BookingsByStatus      []StatusData `json:"bookings_by_status"`
}

// StatusData is one group of a breakdown
type StatusData struct {
	Status string          `json:"status"`
	Count  int64           `json:"count"`
	Value  decimal.Decimal `json:"value"`
}

// SalesAnalytics is the daily revenue series for a period
type SalesAnalytics struct {
	Days          int              `json:"days"`
	DailyRevenue  []TimeSeriesData `json:"daily_revenue"`
	TotalSales    int64            `json:"total_sales"`
	TotalRevenue  decimal.Decimal  `json:"total_revenue"`
	AvgOrderValue decimal.Decimal  `json:"avg_order_value"`
}

// TimeSeriesData is one day of the series
type TimeSeriesData struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
	Count int64           `json:"count"`
}

// GetDashboardStats retrieves overall dashboard statistics
func (s *Service) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}
	now := s.now().UTC()

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	thisWeek := today.AddDate(0, 0, -int(today.Weekday()))
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonth := thisMonth.AddDate(0, -1, 0)

	orders := func() *gorm.DB { return s.db.Model(&order.Order{}) }
	billable := func() *gorm.DB { return orders().Where("payment_status <> ?", payment.StatusFailed) }

	counts := []struct {
		query *gorm.DB
		dest  *int64
	}{
		{orders(), &stats.TotalOrders},
		{orders().Where("created_at >= ?", today), &stats.OrdersToday},
		{orders().Where("created_at >= ?", thisWeek), &stats.OrdersThisWeek},
		{orders().Where("created_at >= ?", thisMonth), &stats.OrdersThisMonth},
		{s.db.Model(&user.User{}), &stats.TotalUsers},
		{s.db.Model(&user.User{}).Where("created_at >= ?", thisMonth), &stats.NewUsersThisMonth},
		{s.db.Model(&catalog.Pet{}), &stats.TotalPets},
		{s.db.Model(&catalog.Product{}), &stats.TotalProducts},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count dashboard metrics: %w", err)
		}
	}

	var err error
	if stats.TotalRevenue, err = sumAmount(billable()); err != nil {
		return nil, err
	}
	if stats.CollectedRevenue, err = sumAmount(orders().Where("payment_status = ?", payment.StatusPaid)); err != nil {
		return nil, err
	}
	if stats.RevenueThisMonth, err = sumAmount(billable().Where("created_at >= ?", thisMonth)); err != nil {
		return nil, err
	}
	lastMonthRevenue, err := sumAmount(billable().Where("created_at >= ? AND created_at < ?", lastMonth, thisMonth))
	if err != nil {
		return nil, err
	}
	if lastMonthRevenue.IsPositive() {
		stats.RevenueGrowth = stats.RevenueThisMonth.Sub(lastMonthRevenue).Div(lastMonthRevenue).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}

	var lastMonthOrders int64
	if err := orders().Where("created_at >= ? AND created_at < ?", lastMonth, thisMonth).Count(&lastMonthOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count last month orders: %w", err)
	}
	if lastMonthOrders > 0 {
		stats.OrderGrowth = float64(stats.OrdersThisMonth-lastMonthOrders) / float64(lastMonthOrders) * 100
	}

	var billableCount int64
	if err := billable().Count(&billableCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count billable orders: %w", err)
	}
	if billableCount > 0 {
		stats.AvgOrderValue = stats.TotalRevenue.Div(decimal.NewFromInt(billableCount)).Round(2)
	}

	if stats.OrdersByPaymentStatus, err = breakdown(orders(), "payment_status", true); err != nil {
		return nil, err
	}
	if stats.OrdersByPaymentMethod, err = breakdown(orders(), "payment_method", true); err != nil {
		return nil, err
	}
	if stats.BookingsByStatus, err = breakdown(s.db.Model(&booking.Booking{}), "status", false); err != nil {
		return nil, err
	}

	return stats, nil
}

// GetSalesAnalytics returns billable revenue per day for the last days
// days, today included. Days without orders are present with zero values.
func (s *Service) GetSalesAnalytics(days int) (*SalesAnalytics, error) {
	if days <= 0 || days > 366 {
		days = 30
	}

	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(days - 1))

	var rows []struct {
		Amount    decimal.Decimal
		CreatedAt time.Time
	}
	err := s.db.Model(&order.Order{}).
		Select("amount, created_at").
		Where("created_at >= ? AND payment_status <> ?", start, payment.StatusFailed).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get daily revenue: %w", err)
	}

	analytics := &SalesAnalytics{
		Days:         days,
		DailyRevenue: make([]TimeSeriesData, days),
		TotalRevenue: decimal.Zero,
	}
	for i := range analytics.DailyRevenue {
		analytics.DailyRevenue[i] = TimeSeriesData{
			Date:  start.AddDate(0, 0, i).Format("2006-01-02"),
			Value: decimal.Zero,
		}
	}

	for _, row := range rows {
		idx := int(row.CreatedAt.UTC().Sub(start).Hours() / 24)
		if idx < 0 || idx >= days {
			continue
		}
		day := &analytics.DailyRevenue[idx]
		day.Value = day.Value.Add(row.Amount)
		day.Count++
		analytics.TotalSales++
		analytics.TotalRevenue = analytics.TotalRevenue.Add(row.Amount)
	}

	if analytics.TotalSales > 0 {
		analytics.AvgOrderValue = analytics.TotalRevenue.Div(decimal.NewFromInt(analytics.TotalSales)).Round(2)
	}

	return analytics, nil
}

func sumAmount(query *gorm.DB) (decimal.Decimal, error) {
	var agg struct {
		Total decimal.NullDecimal
	}
	if err := query.Select("SUM(amount) AS total").Scan(&agg).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum order amounts: %w", err)
	}
	if !agg.Total.Valid {
		return decimal.Zero, nil
	}
	return agg.Total.Decimal, nil
}

func breakdown(query *gorm.DB, column string, withAmount bool) ([]StatusData, error) {
	selectSQL := column + " AS status, COUNT(*) AS count"
	if withAmount {
		selectSQL += ", COALESCE(SUM(amount), 0) AS value"
	}

	var rows []StatusData
	if err := query.Select(selectSQL).Group(column).Order(column).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to group by %s: %w", column, err)
	}
	return rows, nil
}
