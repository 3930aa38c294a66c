package service

import (
	"context"
	"testing"

	"bookstore-service/internal/models"
	"bookstore-service/internal/store/storetest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviews(t *testing.T) {
	ctx := context.Background()
	mem := storetest.New()
	svc := NewReviewService(mem)
	book := mem.AddBook(models.Book{Title: "Walden", Author: "Thoreau", Price: decimal.RequireFromString("6"), Stock: 3})
	alice := mem.AddUser(models.User{Username: "alice", Email: "alice@example.com"})
	bob := mem.AddUser(models.User{Username: "bob", Email: "bob@example.com"})

	avg, err := svc.AverageRating(ctx, book)
	require.NoError(t, err)
	assert.Zero(t, avg)

	first, err := svc.AddReview(ctx, &AddReviewRequest{UserID: alice, BookID: book, Rating: 5, Comment: "calm"})
	require.NoError(t, err)
	_, err = svc.AddReview(ctx, &AddReviewRequest{UserID: bob, BookID: book, Rating: 2})
	require.NoError(t, err)

	_, err = svc.AddReview(ctx, &AddReviewRequest{UserID: alice, BookID: book, Rating: 4})
	assert.ErrorIs(t, err, ErrDuplicateReview)
	_, err = svc.AddReview(ctx, &AddReviewRequest{UserID: alice, BookID: 999, Rating: 4})
	assert.ErrorIs(t, err, ErrBookNotFound)
	_, err = svc.AddReview(ctx, &AddReviewRequest{UserID: bob, BookID: book, Rating: 6})
	assert.ErrorIs(t, err, ErrInvalidRating)

	avg, err = svc.AverageRating(ctx, book)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, avg, 0.001)

	page, err := svc.ListReviews(ctx, book, &ListReviewsRequest{Sort: "ASC"})
	require.NoError(t, err)
	require.Len(t, page.Reviews, 2)
	assert.Equal(t, "alice", page.Reviews[0].Username)
	assert.Equal(t, int64(2), page.Pagination.Total)

	three := 3
	updated, err := svc.UpdateReview(ctx, first.ID, &UpdateReviewRequest{Rating: &three})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Rating)
	assert.Equal(t, "calm", updated.Comment)

	zero := 0
	_, err = svc.UpdateReview(ctx, first.ID, &UpdateReviewRequest{Rating: &zero})
	assert.ErrorIs(t, err, ErrInvalidRating)
	_, err = svc.UpdateReview(ctx, 999, &UpdateReviewRequest{})
	assert.ErrorIs(t, err, ErrReviewNotFound)

	require.NoError(t, svc.DeleteReview(ctx, first.ID))
	assert.ErrorIs(t, svc.DeleteReview(ctx, first.ID), ErrReviewNotFound)
}
