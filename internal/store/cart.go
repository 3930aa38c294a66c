package store

import (
	"context"
	"fmt"

	"bookstore-service/internal/models"
)

// GetCartLines returns a user's cart entries with their books
func (s *Store) GetCartLines(ctx context.Context, userID int64) ([]models.CartLine, error) {
	query := fmt.Sprintf(`
		SELECT c.id, c.user_id, c.book_id, c.quantity, c.created_at, %s
		FROM cart_entries c
		JOIN books b ON b.id = c.book_id
		WHERE c.user_id = $1
		ORDER BY c.created_at, c.id`, prefixedBookColumns("b", "book"))

	lines := []models.CartLine{}
	err := s.db.SelectContext(ctx, &lines, query, userID)
	return lines, err
}

// AddToCart inserts an entry or increments the quantity of the existing
// (user, book) entry. created reports which happened.
func (s *Store) AddToCart(ctx context.Context, userID, bookID int64, quantity int) (entry *models.CartEntry, created bool, err error) {
	var row struct {
		models.CartEntry
		Inserted bool `db:"inserted"`
	}

	err = s.db.GetContext(ctx, &row, `
		INSERT INTO cart_entries (user_id, book_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, book_id)
		DO UPDATE SET quantity = cart_entries.quantity + EXCLUDED.quantity
		RETURNING id, user_id, book_id, quantity, created_at, (xmax = 0) AS inserted`,
		userID, bookID, quantity)
	if err != nil {
		return nil, false, mapError(err)
	}
	return &row.CartEntry, row.Inserted, nil
}

// SetCartQuantity replaces the quantity of one cart entry
func (s *Store) SetCartQuantity(ctx context.Context, id int64, quantity int) (*models.CartEntry, error) {
	var entry models.CartEntry
	err := s.db.GetContext(ctx, &entry,
		"UPDATE cart_entries SET quantity = $1 WHERE id = $2 RETURNING *", quantity, id)
	if err != nil {
		return nil, mapError(err)
	}
	return &entry, nil
}

// DeleteCartEntry removes one cart entry
func (s *Store) DeleteCartEntry(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM cart_entries WHERE id = $1", id)
	return expectOne(res, err)
}

// ClearCart removes every entry of a user's cart
func (s *Store) ClearCart(ctx context.Context, userID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM cart_entries WHERE user_id = $1", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
