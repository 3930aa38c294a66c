package api

import (
	"net/http"

	"bookstore-service/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) addReview(c *gin.Context) {
	var req service.AddReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "User ID, Book ID, and rating are required!")
		return
	}

	review, err := h.reviews.AddReview(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to add review")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Review added successfully", "review": review})
}

func (h *Handler) listReviews(c *gin.Context) {
	bookID, ok := idParam(c, "bookId", "book ID")
	if !ok {
		return
	}

	var req service.ListReviewsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "Invalid query parameters")
		return
	}

	page, err := h.reviews.ListReviews(c.Request.Context(), bookID, &req)
	if err != nil {
		respondError(c, err, "Failed to fetch reviews")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) updateReview(c *gin.Context) {
	id, ok := idParam(c, "id", "review ID")
	if !ok {
		return
	}

	var req service.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	review, err := h.reviews.UpdateReview(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update review")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review updated successfully", "review": review})
}

func (h *Handler) deleteReview(c *gin.Context) {
	id, ok := idParam(c, "id", "review ID")
	if !ok {
		return
	}

	if err := h.reviews.DeleteReview(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete review")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
}

func (h *Handler) averageRating(c *gin.Context) {
	bookID, ok := idParam(c, "bookId", "book ID")
	if !ok {
		return
	}

	avg, err := h.reviews.AverageRating(c.Request.Context(), bookID)
	if err != nil {
		respondError(c, err, "Failed to calculate average rating")
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookId": bookID, "averageRating": avg})
}
