package store

import (
	"context"
	"fmt"

	"bookstore-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	if err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id); err != nil {
		return nil, mapError(err)
	}
	return &order, nil
}

// GetOrderIDByIdempotencyKey returns the order userID placed under key, or ErrNotFound
func (s *Store) GetOrderIDByIdempotencyKey(ctx context.Context, userID int64, key string) (int64, error) {
	var id int64
	query := "SELECT id FROM orders WHERE user_id = $1 AND idempotency_key = $2"
	if err := s.db.GetContext(ctx, &id, query, userID, key); err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

// GetOrderDetail retrieves an order with items, books, payment and owner
func (s *Store) GetOrderDetail(ctx context.Context, id int64) (*models.OrderDetail, error) {
	order, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	details, err := s.loadOrderDetails(ctx, []models.Order{*order}, true)
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// ListOrderDetailsByUser retrieves a user's orders, newest first
func (s *Store) ListOrderDetailsByUser(ctx context.Context, userID int64) ([]models.OrderDetail, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY order_date DESC, id DESC", userID)
	if err != nil {
		return nil, err
	}
	return s.loadOrderDetails(ctx, orders, false)
}

// ListOrderDetails retrieves all orders newest first; limit <= 0 means no limit
func (s *Store) ListOrderDetails(ctx context.Context, limit int) ([]models.OrderDetail, error) {
	query := "SELECT * FROM orders ORDER BY order_date DESC, id DESC"
	var args []interface{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	var orders []models.Order
	if err := s.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, err
	}
	return s.loadOrderDetails(ctx, orders, true)
}

type orderItemRow struct {
	models.OrderItem
	Book models.Book `db:"book"`
}

// loadOrderDetails attaches items, payments and optionally users to orders
// with one query per relation.
func (s *Store) loadOrderDetails(ctx context.Context, orders []models.Order, withUser bool) ([]models.OrderDetail, error) {
	details := make([]models.OrderDetail, len(orders))
	if len(orders) == 0 {
		return details, nil
	}

	orderIDs := make([]int64, len(orders))
	userIDs := make([]int64, 0, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		details[i] = models.OrderDetail{Order: o, Items: []models.OrderItemDetail{}}
		orderIDs[i] = o.ID
		userIDs = append(userIDs, o.UserID)
		index[o.ID] = i
	}

	itemQuery, args, err := sqlx.In(fmt.Sprintf(`
		SELECT oi.id, oi.order_id, oi.book_id, oi.quantity, oi.price, %s
		FROM order_items oi
		JOIN books b ON b.id = oi.book_id
		WHERE oi.order_id IN (?)
		ORDER BY oi.id`, prefixedBookColumns("b", "book")), orderIDs)
	if err != nil {
		return nil, err
	}

	var items []orderItemRow
	if err := s.db.SelectContext(ctx, &items, s.db.Rebind(itemQuery), args...); err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	for i := range items {
		book := items[i].Book
		d := &details[index[items[i].OrderID]]
		d.Items = append(d.Items, models.OrderItemDetail{OrderItem: items[i].OrderItem, Book: &book})
	}

	payQuery, args, err := sqlx.In("SELECT * FROM payments WHERE order_id IN (?)", orderIDs)
	if err != nil {
		return nil, err
	}
	var payments []models.Payment
	if err := s.db.SelectContext(ctx, &payments, s.db.Rebind(payQuery), args...); err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	for i := range payments {
		p := payments[i]
		details[index[p.OrderID]].Payment = &p
	}

	if !withUser {
		return details, nil
	}

	userQuery, args, err := sqlx.In("SELECT id, username, email FROM users WHERE id IN (?)", userIDs)
	if err != nil {
		return nil, err
	}
	var users []models.UserSummary
	if err := s.db.SelectContext(ctx, &users, s.db.Rebind(userQuery), args...); err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	byID := make(map[int64]*models.UserSummary, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	for i := range details {
		details[i].User = byID[details[i].UserID]
	}

	return details, nil
}
