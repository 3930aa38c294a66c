package api

import (
	"errors"
	"net/http"

	"bookstore-service/internal/service"
	"bookstore-service/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps service errors to HTTP status codes. Zero means unexpected.
func statusFor(err error) int {
	var (
		stockErr      *service.InsufficientStockError
		transitionErr *service.TransitionError
		validationErr *service.ValidationError
	)

	switch {
	case errors.As(err, &stockErr),
		errors.As(err, &transitionErr),
		errors.As(err, &validationErr):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrDuplicateBook),
		errors.Is(err, service.ErrBookReferenced),
		errors.Is(err, service.ErrInvalidStock),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrNotEnoughStock),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrDuplicateReview),
		errors.Is(err, service.ErrInvalidRating):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrBookNotFound),
		errors.Is(err, service.ErrCartItemMissing),
		errors.Is(err, service.ErrReviewNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrWrongPassword),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenRevoked):
		return http.StatusUnauthorized
	}
	return 0
}

// respondError writes {"error": message}. Unexpected errors are logged and
// answered with fallback so persistence detail never reaches the client.
func respondError(c *gin.Context, err error, fallback string) {
	if status := statusFor(err); status != 0 {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	util.GetLogger().Error(fallback,
		zap.Error(err),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()))
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
