package store

import (
	"context"
	"time"

	"bookstore-service/internal/models"
)

// DashboardCounts returns user, book and order totals and completed revenue
func (s *Store) DashboardCounts(ctx context.Context) (*models.DashboardCounts, error) {
	var counts models.DashboardCounts
	err := s.db.GetContext(ctx, &counts, `
		SELECT
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM books) AS total_books,
			(SELECT COUNT(*) FROM orders) AS total_orders,
			(SELECT COALESCE(SUM(total_price), 0) FROM orders WHERE status = 'COMPLETED') AS total_revenue`)
	if err != nil {
		return nil, err
	}
	return &counts, nil
}

// LowStockBooks returns books with stock below threshold, scarcest first; limit <= 0 means no limit
func (s *Store) LowStockBooks(ctx context.Context, threshold, limit int) ([]models.Book, error) {
	query := "SELECT * FROM books WHERE stock < $1 ORDER BY stock ASC, id ASC"
	args := []interface{}{threshold}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	books := []models.Book{}
	err := s.db.SelectContext(ctx, &books, query, args...)
	return books, err
}

// TopSellingBooks ranks books by quantity sold
func (s *Store) TopSellingBooks(ctx context.Context, limit int) ([]models.TopSellingBook, error) {
	books := []models.TopSellingBook{}
	err := s.db.SelectContext(ctx, &books, `
		SELECT b.*, s.total_sold
		FROM (
			SELECT book_id, SUM(quantity) AS total_sold
			FROM order_items
			GROUP BY book_id
			ORDER BY total_sold DESC, book_id ASC
			LIMIT $1
		) s
		JOIN books b ON b.id = s.book_id
		ORDER BY s.total_sold DESC, b.id ASC`, limit)
	return books, err
}

// RecentReviews returns the newest reviews with reviewer and book labels
func (s *Store) RecentReviews(ctx context.Context, limit int) ([]models.ReviewDetail, error) {
	reviews := []models.ReviewDetail{}
	err := s.db.SelectContext(ctx, &reviews, `
		SELECT r.*, u.username, b.title AS book_title
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		JOIN books b ON b.id = r.book_id
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $1`, limit)
	return reviews, err
}

// OrdersByStatus counts orders per status
func (s *Store) OrdersByStatus(ctx context.Context) ([]models.StatusCount, error) {
	counts := []models.StatusCount{}
	err := s.db.SelectContext(ctx, &counts,
		"SELECT status, COUNT(*) AS count FROM orders GROUP BY status ORDER BY status")
	return counts, err
}

// OrdersByDate counts orders per day since the given time
func (s *Store) OrdersByDate(ctx context.Context, since time.Time) ([]models.DateCount, error) {
	counts := []models.DateCount{}
	err := s.db.SelectContext(ctx, &counts, `
		SELECT to_char(order_date, 'YYYY-MM-DD') AS date, COUNT(*) AS count
		FROM orders
		WHERE order_date >= $1
		GROUP BY 1
		ORDER BY 1`, since)
	return counts, err
}

// BooksByGenre counts books per genre, largest first
func (s *Store) BooksByGenre(ctx context.Context) ([]models.GenreCount, error) {
	counts := []models.GenreCount{}
	err := s.db.SelectContext(ctx, &counts,
		"SELECT genre, COUNT(*) AS count FROM books GROUP BY genre ORDER BY count DESC, genre")
	return counts, err
}

// StockDistribution buckets books into out (0), low (1..low), adequate (..high) and high stock
func (s *Store) StockDistribution(ctx context.Context, low, high int) (*models.StockDistribution, error) {
	var dist models.StockDistribution
	err := s.db.GetContext(ctx, &dist, `
		SELECT
			COUNT(*) FILTER (WHERE stock = 0) AS out_of_stock,
			COUNT(*) FILTER (WHERE stock > 0 AND stock <= $1) AS low_stock,
			COUNT(*) FILTER (WHERE stock > $1 AND stock <= $2) AS adequate_stock,
			COUNT(*) FILTER (WHERE stock > $2) AS high_stock
		FROM books`, low, high)
	if err != nil {
		return nil, err
	}
	return &dist, nil
}

// UsersByMonth counts sign-ups per month since the given time
func (s *Store) UsersByMonth(ctx context.Context, since time.Time) ([]models.MonthCount, error) {
	counts := []models.MonthCount{}
	err := s.db.SelectContext(ctx, &counts, `
		SELECT to_char(created_at, 'YYYY-MM') AS month, COUNT(*) AS count
		FROM users
		WHERE created_at >= $1
		GROUP BY 1
		ORDER BY 1`, since)
	return counts, err
}

// UsersByRole counts users per role
func (s *Store) UsersByRole(ctx context.Context) ([]models.RoleCount, error) {
	counts := []models.RoleCount{}
	err := s.db.SelectContext(ctx, &counts,
		"SELECT role, COUNT(*) AS count FROM users GROUP BY role ORDER BY role")
	return counts, err
}

// TopUsersByOrders ranks users by number of orders
func (s *Store) TopUsersByOrders(ctx context.Context, limit int) ([]models.UserOrderCount, error) {
	users := []models.UserOrderCount{}
	err := s.db.SelectContext(ctx, &users, `
		SELECT u.id, u.username, u.email, COUNT(o.id) AS order_count
		FROM orders o
		JOIN users u ON u.id = o.user_id
		GROUP BY u.id, u.username, u.email
		ORDER BY order_count DESC, u.id ASC
		LIMIT $1`, limit)
	return users, err
}

// RevenueByMonth sums completed order totals per month since the given time
func (s *Store) RevenueByMonth(ctx context.Context, since time.Time) ([]models.MonthRevenue, error) {
	rows := []models.MonthRevenue{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT to_char(order_date, 'YYYY-MM') AS month, SUM(total_price) AS revenue
		FROM orders
		WHERE status = 'COMPLETED' AND order_date >= $1
		GROUP BY 1
		ORDER BY 1`, since)
	return rows, err
}

// RevenueByPaymentMethod sums successful payments per method
func (s *Store) RevenueByPaymentMethod(ctx context.Context) ([]models.MethodRevenue, error) {
	rows := []models.MethodRevenue{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT method, SUM(paid_amount) AS revenue
		FROM payments
		WHERE status = 'SUCCESS'
		GROUP BY method
		ORDER BY method`)
	return rows, err
}
