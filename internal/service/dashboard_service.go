package service

import (
	"context"
	"fmt"
	"time"

	"bookstore-service/internal/models"
	"bookstore-service/internal/util"

	"go.uber.org/zap"
)

// DashboardStore runs the admin aggregation queries
type DashboardStore interface {
	DashboardCounts(ctx context.Context) (*models.DashboardCounts, error)
	LowStockBooks(ctx context.Context, threshold, limit int) ([]models.Book, error)
	TopSellingBooks(ctx context.Context, limit int) ([]models.TopSellingBook, error)
	RecentReviews(ctx context.Context, limit int) ([]models.ReviewDetail, error)
	ListOrderDetails(ctx context.Context, limit int) ([]models.OrderDetail, error)
	OrdersByStatus(ctx context.Context) ([]models.StatusCount, error)
	OrdersByDate(ctx context.Context, since time.Time) ([]models.DateCount, error)
	BooksByGenre(ctx context.Context) ([]models.GenreCount, error)
	StockDistribution(ctx context.Context, low, high int) (*models.StockDistribution, error)
	UsersByMonth(ctx context.Context, since time.Time) ([]models.MonthCount, error)
	UsersByRole(ctx context.Context) ([]models.RoleCount, error)
	TopUsersByOrders(ctx context.Context, limit int) ([]models.UserOrderCount, error)
	RevenueByMonth(ctx context.Context, since time.Time) ([]models.MonthRevenue, error)
	RevenueByPaymentMethod(ctx context.Context) ([]models.MethodRevenue, error)
}

// Stock buckets used by the book statistics
const (
	lowStockCeiling      = 5
	adequateStockCeiling = 20
)

// DashboardService assembles admin statistics
type DashboardService struct {
	store             DashboardStore
	lowStockThreshold int
	now               func() time.Time
	logger            *zap.Logger
}

// NewDashboardService creates a new dashboard service. Books with stock below
// lowStockThreshold are reported as low stock.
func NewDashboardService(store DashboardStore, lowStockThreshold int) *DashboardService {
	if lowStockThreshold <= 0 {
		lowStockThreshold = 5
	}
	return &DashboardService{
		store:             store,
		lowStockThreshold: lowStockThreshold,
		now:               time.Now,
		logger:            util.GetLogger(),
	}
}

// DashboardStats is the dashboard landing page
type DashboardStats struct {
	Stats           *models.DashboardCounts `json:"stats"`
	LowStockBooks   []models.Book           `json:"lowStockBooks"`
	RecentOrders    []models.OrderDetail    `json:"recentOrders"`
	TopSellingBooks []models.TopSellingBook `json:"topSellingBooks"`
	RecentReviews   []models.ReviewDetail   `json:"recentReviews"`
}

// OrderStats breaks orders down by status and by day
type OrderStats struct {
	OrdersByStatus []models.StatusCount `json:"ordersByStatus"`
	OrdersByDate   []models.DateCount   `json:"ordersByDate"`
}

// BookStats breaks books down by genre and stock level
type BookStats struct {
	BooksByGenre      []models.GenreCount       `json:"booksByGenre"`
	StockDistribution *models.StockDistribution `json:"stockDistribution"`
}

// UserStats breaks users down by sign-up month and role
type UserStats struct {
	UsersByMonth     []models.MonthCount     `json:"usersByMonth"`
	UsersByRole      []models.RoleCount      `json:"usersByRole"`
	TopUsersByOrders []models.UserOrderCount `json:"topUsersByOrders"`
}

// RevenueStats breaks revenue down by month and payment method
type RevenueStats struct {
	RevenueByMonth   []models.MonthRevenue  `json:"revenueByMonth"`
	RevenueByPayment []models.MethodRevenue `json:"revenueByPayment"`
}

// Stats returns headline counts with short lists of notable books, orders and reviews
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	ctx, span := util.StartSpan(ctx, "DashboardService.Stats")
	defer span.End()

	var (
		out DashboardStats
		err error
	)
	if out.Stats, err = s.store.DashboardCounts(ctx); err != nil {
		return nil, s.failed("dashboard statistics", err)
	}
	if out.LowStockBooks, err = s.store.LowStockBooks(ctx, s.lowStockThreshold, 10); err != nil {
		return nil, s.failed("dashboard statistics", err)
	}
	if out.RecentOrders, err = s.store.ListOrderDetails(ctx, 5); err != nil {
		return nil, s.failed("dashboard statistics", err)
	}
	if out.TopSellingBooks, err = s.store.TopSellingBooks(ctx, 5); err != nil {
		return nil, s.failed("dashboard statistics", err)
	}
	if out.RecentReviews, err = s.store.RecentReviews(ctx, 5); err != nil {
		return nil, s.failed("dashboard statistics", err)
	}
	return &out, nil
}

// OrderStats counts orders per status, and per day over the last 30 days
func (s *DashboardService) OrderStats(ctx context.Context) (*OrderStats, error) {
	ctx, span := util.StartSpan(ctx, "DashboardService.OrderStats")
	defer span.End()

	byStatus, err := s.store.OrdersByStatus(ctx)
	if err != nil {
		return nil, s.failed("order statistics", err)
	}
	byDate, err := s.store.OrdersByDate(ctx, s.now().AddDate(0, 0, -30))
	if err != nil {
		return nil, s.failed("order statistics", err)
	}
	return &OrderStats{OrdersByStatus: byStatus, OrdersByDate: byDate}, nil
}

// BookStats counts books per genre and per stock bucket
func (s *DashboardService) BookStats(ctx context.Context) (*BookStats, error) {
	ctx, span := util.StartSpan(ctx, "DashboardService.BookStats")
	defer span.End()

	byGenre, err := s.store.BooksByGenre(ctx)
	if err != nil {
		return nil, s.failed("book statistics", err)
	}
	dist, err := s.store.StockDistribution(ctx, lowStockCeiling, adequateStockCeiling)
	if err != nil {
		return nil, s.failed("book statistics", err)
	}
	return &BookStats{BooksByGenre: byGenre, StockDistribution: dist}, nil
}

// UserStats counts sign-ups over the last 6 months, users per role, and the top 10 customers
func (s *DashboardService) UserStats(ctx context.Context) (*UserStats, error) {
	ctx, span := util.StartSpan(ctx, "DashboardService.UserStats")
	defer span.End()

	byMonth, err := s.store.UsersByMonth(ctx, s.now().AddDate(0, -6, 0))
	if err != nil {
		return nil, s.failed("user statistics", err)
	}
	byRole, err := s.store.UsersByRole(ctx)
	if err != nil {
		return nil, s.failed("user statistics", err)
	}
	top, err := s.store.TopUsersByOrders(ctx, 10)
	if err != nil {
		return nil, s.failed("user statistics", err)
	}
	return &UserStats{UsersByMonth: byMonth, UsersByRole: byRole, TopUsersByOrders: top}, nil
}

// RevenueStats sums completed revenue per month over the last 12 months and
// successful payments per method
func (s *DashboardService) RevenueStats(ctx context.Context) (*RevenueStats, error) {
	ctx, span := util.StartSpan(ctx, "DashboardService.RevenueStats")
	defer span.End()

	byMonth, err := s.store.RevenueByMonth(ctx, s.now().AddDate(0, -12, 0))
	if err != nil {
		return nil, s.failed("revenue statistics", err)
	}
	byMethod, err := s.store.RevenueByPaymentMethod(ctx)
	if err != nil {
		return nil, s.failed("revenue statistics", err)
	}
	return &RevenueStats{RevenueByMonth: byMonth, RevenueByPayment: byMethod}, nil
}

// LowStockBooks lists every book below the low stock threshold, scarcest first
func (s *DashboardService) LowStockBooks(ctx context.Context) ([]models.Book, error) {
	ctx, span := util.StartSpan(ctx, "DashboardService.LowStockBooks")
	defer span.End()

	books, err := s.store.LowStockBooks(ctx, s.lowStockThreshold, 0)
	if err != nil {
		return nil, s.failed("low stock books", err)
	}
	return books, nil
}

// RecentOrders lists the newest orders
func (s *DashboardService) RecentOrders(ctx context.Context, limit int) ([]models.OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "DashboardService.RecentOrders")
	defer span.End()

	orders, err := s.store.ListOrderDetails(ctx, listLimit(limit))
	if err != nil {
		return nil, s.failed("recent orders", err)
	}
	return orders, nil
}

// TopSellingBooks ranks books by copies sold
func (s *DashboardService) TopSellingBooks(ctx context.Context, limit int) ([]models.TopSellingBook, error) {
	ctx, span := util.StartSpan(ctx, "DashboardService.TopSellingBooks")
	defer span.End()

	books, err := s.store.TopSellingBooks(ctx, listLimit(limit))
	if err != nil {
		return nil, s.failed("top selling books", err)
	}
	return books, nil
}

// RecentReviews lists the newest reviews
func (s *DashboardService) RecentReviews(ctx context.Context, limit int) ([]models.ReviewDetail, error) {
	ctx, span := util.StartSpan(ctx, "DashboardService.RecentReviews")
	defer span.End()

	reviews, err := s.store.RecentReviews(ctx, listLimit(limit))
	if err != nil {
		return nil, s.failed("recent reviews", err)
	}
	return reviews, nil
}

func (s *DashboardService) failed(what string, err error) error {
	s.logger.Error("Dashboard query failed", zap.String("section", what), zap.Error(err))
	return fmt.Errorf("error fetching %s: %w", what, err)
}

// listLimit defaults dashboard lists to 10 rows and caps them
func listLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}
