package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookstore-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDashboard returns canned rows and records the arguments it was queried with
type stubDashboard struct {
	err error

	lowThreshold, lowLimit int
	orderLimits            []int
	topLimits              []int
	reviewLimits           []int
	since                  []time.Time
	stockLow, stockHigh    int
	topUsersLimit          int
}

func (d *stubDashboard) DashboardCounts(ctx context.Context) (*models.DashboardCounts, error) {
	if d.err != nil {
		return nil, d.err
	}
	return &models.DashboardCounts{TotalUsers: 3, TotalBooks: 7, TotalOrders: 2, TotalRevenue: decimal.RequireFromString("42.50")}, nil
}

func (d *stubDashboard) LowStockBooks(ctx context.Context, threshold, limit int) ([]models.Book, error) {
	d.lowThreshold, d.lowLimit = threshold, limit
	return []models.Book{{ID: 1, Stock: 1}}, nil
}

func (d *stubDashboard) TopSellingBooks(ctx context.Context, limit int) ([]models.TopSellingBook, error) {
	d.topLimits = append(d.topLimits, limit)
	return []models.TopSellingBook{{Book: models.Book{ID: 2}, TotalSold: 9}}, nil
}

func (d *stubDashboard) RecentReviews(ctx context.Context, limit int) ([]models.ReviewDetail, error) {
	d.reviewLimits = append(d.reviewLimits, limit)
	return []models.ReviewDetail{}, nil
}

func (d *stubDashboard) ListOrderDetails(ctx context.Context, limit int) ([]models.OrderDetail, error) {
	d.orderLimits = append(d.orderLimits, limit)
	return []models.OrderDetail{}, nil
}

func (d *stubDashboard) OrdersByStatus(ctx context.Context) ([]models.StatusCount, error) {
	return []models.StatusCount{{Status: models.OrderStatusPending, Count: 2}}, nil
}

func (d *stubDashboard) OrdersByDate(ctx context.Context, since time.Time) ([]models.DateCount, error) {
	d.since = append(d.since, since)
	return []models.DateCount{}, nil
}

func (d *stubDashboard) BooksByGenre(ctx context.Context) ([]models.GenreCount, error) {
	return []models.GenreCount{{Genre: "Fiction", Count: 4}}, nil
}

func (d *stubDashboard) StockDistribution(ctx context.Context, low, high int) (*models.StockDistribution, error) {
	d.stockLow, d.stockHigh = low, high
	return &models.StockDistribution{OutOfStock: 1, LowStock: 2, AdequateStock: 3, HighStock: 1}, nil
}

func (d *stubDashboard) UsersByMonth(ctx context.Context, since time.Time) ([]models.MonthCount, error) {
	d.since = append(d.since, since)
	return []models.MonthCount{}, nil
}

func (d *stubDashboard) UsersByRole(ctx context.Context) ([]models.RoleCount, error) {
	return []models.RoleCount{{Role: models.RoleUser, Count: 3}}, nil
}

func (d *stubDashboard) TopUsersByOrders(ctx context.Context, limit int) ([]models.UserOrderCount, error) {
	d.topUsersLimit = limit
	return []models.UserOrderCount{}, nil
}

func (d *stubDashboard) RevenueByMonth(ctx context.Context, since time.Time) ([]models.MonthRevenue, error) {
	d.since = append(d.since, since)
	return []models.MonthRevenue{}, nil
}

func (d *stubDashboard) RevenueByPaymentMethod(ctx context.Context) ([]models.MethodRevenue, error) {
	return []models.MethodRevenue{{Method: "card", Revenue: decimal.RequireFromString("42.50")}}, nil
}

func newTestDashboard(store DashboardStore, threshold int) (*DashboardService, time.Time) {
	svc := NewDashboardService(store, threshold)
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, now
}

func TestDashboardStats(t *testing.T) {
	stub := &stubDashboard{}
	svc, _ := newTestDashboard(stub, 0)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), stats.Stats.TotalBooks)
	assert.Equal(t, "42.50", stats.Stats.TotalRevenue.StringFixed(2))
	assert.Len(t, stats.LowStockBooks, 1)
	assert.Len(t, stats.TopSellingBooks, 1)

	assert.Equal(t, 5, stub.lowThreshold)
	assert.Equal(t, 10, stub.lowLimit)
	assert.Equal(t, []int{5}, stub.orderLimits)
	assert.Equal(t, []int{5}, stub.topLimits)
	assert.Equal(t, []int{5}, stub.reviewLimits)
}

func TestDashboardStatsFailure(t *testing.T) {
	boom := errors.New("connection reset")
	svc, _ := newTestDashboard(&stubDashboard{err: boom}, 5)

	_, err := svc.Stats(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "error fetching dashboard statistics")
}

func TestDashboardBreakdownWindows(t *testing.T) {
	ctx := context.Background()
	stub := &stubDashboard{}
	svc, now := newTestDashboard(stub, 3)

	orders, err := svc.OrderStats(ctx)
	require.NoError(t, err)
	assert.Len(t, orders.OrdersByStatus, 1)

	books, err := svc.BookStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), books.StockDistribution.LowStock)
	assert.Equal(t, 5, stub.stockLow)
	assert.Equal(t, 20, stub.stockHigh)

	users, err := svc.UserStats(ctx)
	require.NoError(t, err)
	assert.Len(t, users.UsersByRole, 1)
	assert.Equal(t, 10, stub.topUsersLimit)

	revenue, err := svc.RevenueStats(ctx)
	require.NoError(t, err)
	assert.Len(t, revenue.RevenueByPayment, 1)

	require.Len(t, stub.since, 3)
	assert.Equal(t, now.AddDate(0, 0, -30), stub.since[0])
	assert.Equal(t, now.AddDate(0, -6, 0), stub.since[1])
	assert.Equal(t, now.AddDate(0, -12, 0), stub.since[2])
}

func TestDashboardLists(t *testing.T) {
	ctx := context.Background()
	stub := &stubDashboard{}
	svc, _ := newTestDashboard(stub, 3)

	_, err := svc.LowStockBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stub.lowThreshold)
	assert.Equal(t, 0, stub.lowLimit)

	_, err = svc.RecentOrders(ctx, 0)
	require.NoError(t, err)
	_, err = svc.RecentOrders(ctx, 500)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 100}, stub.orderLimits)

	_, err = svc.TopSellingBooks(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, stub.topLimits)

	_, err = svc.RecentReviews(ctx, -1)
	require.NoError(t, err)
	assert.Equal(t, []int{10}, stub.reviewLimits)
}
