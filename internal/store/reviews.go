package store

import (
	"context"
	"fmt"

	"bookstore-service/internal/models"
)

// CreateReview inserts a review. A second review of the same book by the same user yields ErrConflict.
func (s *Store) CreateReview(ctx context.Context, review *models.Review) error {
	row := s.db.QueryRowxContext(ctx, `
		INSERT INTO reviews (user_id, book_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		review.UserID, review.BookID, review.Rating, review.Comment)
	return mapError(row.Scan(&review.ID, &review.CreatedAt))
}

// GetReview retrieves a review by ID
func (s *Store) GetReview(ctx context.Context, id int64) (*models.Review, error) {
	var review models.Review
	if err := s.db.GetContext(ctx, &review, "SELECT * FROM reviews WHERE id = $1", id); err != nil {
		return nil, mapError(err)
	}
	return &review, nil
}

// ListReviewsByBook returns one page of a book's reviews with reviewer names
func (s *Store) ListReviewsByBook(ctx context.Context, bookID int64, limit, offset int, ascending bool) ([]models.ReviewDetail, int64, error) {
	var total int64
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM reviews WHERE book_id = $1", bookID); err != nil {
		return nil, 0, err
	}

	direction := "DESC"
	if ascending {
		direction = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT r.*, u.username, b.title AS book_title
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		JOIN books b ON b.id = r.book_id
		WHERE r.book_id = $1
		ORDER BY r.created_at %s, r.id %s
		LIMIT $2 OFFSET $3`, direction, direction)

	reviews := []models.ReviewDetail{}
	if err := s.db.SelectContext(ctx, &reviews, query, bookID, limit, offset); err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// UpdateReview overwrites rating and comment
func (s *Store) UpdateReview(ctx context.Context, review *models.Review) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE reviews SET rating = $1, comment = $2 WHERE id = $3",
		review.Rating, review.Comment, review.ID)
	return expectOne(res, err)
}

// DeleteReview removes a review
func (s *Store) DeleteReview(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM reviews WHERE id = $1", id)
	return expectOne(res, err)
}

// AverageRating returns the mean rating of a book, 0 when unrated
func (s *Store) AverageRating(ctx context.Context, bookID int64) (float64, error) {
	var avg float64
	err := s.db.GetContext(ctx, &avg,
		"SELECT COALESCE(AVG(rating), 0)::float8 FROM reviews WHERE book_id = $1", bookID)
	return avg, err
}
