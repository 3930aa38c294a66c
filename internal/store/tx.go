package store

import (
	"context"
	"fmt"

	"bookstore-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// OrderTx is the set of writes the order workflow performs inside one transaction
type OrderTx interface {
	// LockCartLines returns the user's cart joined with its books, locking the
	// cart and book rows in ascending book id order.
	LockCartLines(ctx context.Context, userID int64) ([]models.CartLine, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateOrderItem(ctx context.Context, item *models.OrderItem) error
	// DecrementStock fails with ErrInsufficientStock rather than going negative
	DecrementStock(ctx context.Context, bookID int64, quantity int) error
	IncrementStock(ctx context.Context, bookID int64, quantity int) error
	CreatePayment(ctx context.Context, payment *models.Payment) error
	ClearCart(ctx context.Context, userID int64) (int64, error)

	// LockOrder returns the order row locked FOR UPDATE, or ErrNotFound
	LockOrder(ctx context.Context, orderID int64) (*models.Order, error)
	GetOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error)
	// GetPayment returns ErrNotFound when the order has no payment
	GetPayment(ctx context.Context, orderID int64) (*models.Payment, error)
	SetOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error
	SetPaymentStatus(ctx context.Context, orderID int64, status models.PaymentStatus) error
}

type txStore struct {
	tx *sqlx.Tx
}

var _ OrderTx = (*txStore)(nil)

func (t *txStore) LockCartLines(ctx context.Context, userID int64) ([]models.CartLine, error) {
	query := fmt.Sprintf(`
		SELECT c.id, c.user_id, c.book_id, c.quantity, c.created_at, %s
		FROM cart_entries c
		JOIN books b ON b.id = c.book_id
		WHERE c.user_id = $1
		ORDER BY b.id
		FOR UPDATE`, prefixedBookColumns("b", "book"))

	var lines []models.CartLine
	if err := t.tx.SelectContext(ctx, &lines, query, userID); err != nil {
		return nil, fmt.Errorf("failed to lock cart: %w", err)
	}
	return lines, nil
}

func (t *txStore) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (user_id, total_price, status, shipping_details, idempotency_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, order_date, updated_at`

	row := t.tx.QueryRowxContext(ctx, query,
		order.UserID, order.TotalPrice, order.Status, order.ShippingDetails, order.IdempotencyKey)
	return mapError(row.Scan(&order.ID, &order.OrderDate, &order.UpdatedAt))
}

func (t *txStore) CreateOrderItem(ctx context.Context, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, book_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	return mapError(t.tx.GetContext(ctx, &item.ID, query,
		item.OrderID, item.BookID, item.Quantity, item.Price))
}

func (t *txStore) DecrementStock(ctx context.Context, bookID int64, quantity int) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE books
		SET stock = stock - $1,
		    status = CASE WHEN stock - $1 = 0 THEN 'out_of_stock' ELSE 'available' END,
		    updated_at = NOW()
		WHERE id = $2 AND stock >= $1`,
		quantity, bookID)
	if err := expectOne(res, err); err != nil {
		if err == ErrNotFound {
			return ErrInsufficientStock
		}
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	return nil
}

func (t *txStore) IncrementStock(ctx context.Context, bookID int64, quantity int) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE books
		SET stock = stock + $1, status = 'available', updated_at = NOW()
		WHERE id = $2`,
		quantity, bookID)
	if err := expectOne(res, err); err != nil {
		return fmt.Errorf("failed to restore stock for book %d: %w", bookID, err)
	}
	return nil
}

func (t *txStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (order_id, method, status, paid_amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	row := t.tx.QueryRowxContext(ctx, query,
		payment.OrderID, payment.Method, payment.Status, payment.PaidAmount)
	return mapError(row.Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt))
}

func (t *txStore) ClearCart(ctx context.Context, userID int64) (int64, error) {
	res, err := t.tx.ExecContext(ctx, "DELETE FROM cart_entries WHERE user_id = $1", userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	return res.RowsAffected()
}

func (t *txStore) LockOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	var order models.Order
	err := t.tx.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1 FOR UPDATE", orderID)
	if err != nil {
		return nil, mapError(err)
	}
	return &order, nil
}

func (t *txStore) GetOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := t.tx.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY book_id", orderID)
	return items, err
}

func (t *txStore) GetPayment(ctx context.Context, orderID int64) (*models.Payment, error) {
	var payment models.Payment
	err := t.tx.GetContext(ctx, &payment, "SELECT * FROM payments WHERE order_id = $1", orderID)
	if err != nil {
		return nil, mapError(err)
	}
	return &payment, nil
}

func (t *txStore) SetOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID)
	return expectOne(res, err)
}

func (t *txStore) SetPaymentStatus(ctx context.Context, orderID int64, status models.PaymentStatus) error {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE payments SET status = $1, updated_at = NOW() WHERE order_id = $2",
		status, orderID)
	return expectOne(res, err)
}
