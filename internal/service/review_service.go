package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookstore-service/internal/models"
	"bookstore-service/internal/store"
	"bookstore-service/internal/util"

	"go.uber.org/zap"
)

// ReviewStore is the persistence reviews need
type ReviewStore interface {
	CreateReview(ctx context.Context, review *models.Review) error
	GetReview(ctx context.Context, id int64) (*models.Review, error)
	ListReviewsByBook(ctx context.Context, bookID int64, limit, offset int, ascending bool) ([]models.ReviewDetail, int64, error)
	UpdateReview(ctx context.Context, review *models.Review) error
	DeleteReview(ctx context.Context, id int64) error
	AverageRating(ctx context.Context, bookID int64) (float64, error)
}

// ReviewService manages book ratings
type ReviewService struct {
	store  ReviewStore
	logger *zap.Logger
}

// NewReviewService creates a new review service
func NewReviewService(store ReviewStore) *ReviewService {
	return &ReviewService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// AddReviewRequest rates a book
type AddReviewRequest struct {
	UserID  int64  `json:"userId" binding:"required,min=1"`
	BookID  int64  `json:"bookId" binding:"required,min=1"`
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// UpdateReviewRequest is a partial review edit
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

// ListReviewsRequest carries review query parameters
type ListReviewsRequest struct {
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
	Sort  string `form:"sort"`
}

// ReviewPage is one page of a book's reviews
type ReviewPage struct {
	Reviews    []models.ReviewDetail `json:"reviews"`
	Pagination Pagination            `json:"pagination"`
}

// AddReview records a rating. Each user may review a book once.
func (s *ReviewService) AddReview(ctx context.Context, req *AddReviewRequest) (*models.Review, error) {
	ctx, span := util.StartSpan(ctx, "ReviewService.AddReview")
	defer span.End()

	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}

	review := &models.Review{
		UserID:  req.UserID,
		BookID:  req.BookID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	if err := s.store.CreateReview(ctx, review); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			return nil, ErrDuplicateReview
		case errors.Is(err, store.ErrInvalidReference):
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to add review: %w", err)
	}

	s.logger.Info("Review added",
		zap.Int64("review_id", review.ID),
		zap.Int64("book_id", review.BookID),
		zap.Int("rating", review.Rating))
	return review, nil
}

// ListReviews returns one page of a book's reviews
func (s *ReviewService) ListReviews(ctx context.Context, bookID int64, req *ListReviewsRequest) (*ReviewPage, error) {
	ctx, span := util.StartSpan(ctx, "ReviewService.ListReviews")
	defer span.End()

	page, limit := normalizePage(req.Page, req.Limit)
	reviews, total, err := s.store.ListReviewsByBook(ctx, bookID, limit, (page-1)*limit, strings.EqualFold(req.Sort, "asc"))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	return &ReviewPage{
		Reviews:    reviews,
		Pagination: newPagination(total, page, limit),
	}, nil
}

// UpdateReview changes rating and/or comment
func (s *ReviewService) UpdateReview(ctx context.Context, id int64, req *UpdateReviewRequest) (*models.Review, error) {
	ctx, span := util.StartSpan(ctx, "ReviewService.UpdateReview")
	defer span.End()

	review, err := s.store.GetReview(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	if req.Rating != nil {
		if *req.Rating < 1 || *req.Rating > 5 {
			return nil, ErrInvalidRating
		}
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = *req.Comment
	}

	if err := s.store.UpdateReview(ctx, review); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	return review, nil
}

// DeleteReview removes a review
func (s *ReviewService) DeleteReview(ctx context.Context, id int64) error {
	ctx, span := util.StartSpan(ctx, "ReviewService.DeleteReview")
	defer span.End()

	err := s.store.DeleteReview(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrReviewNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}

// AverageRating returns a book's mean rating, 0 when it has none
func (s *ReviewService) AverageRating(ctx context.Context, bookID int64) (float64, error) {
	ctx, span := util.StartSpan(ctx, "ReviewService.AverageRating")
	defer span.End()

	avg, err := s.store.AverageRating(ctx, bookID)
	if err != nil {
		return 0, fmt.Errorf("failed to calculate average rating: %w", err)
	}
	return avg, nil
}
