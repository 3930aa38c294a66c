package service

import (
	"errors"
	"fmt"

	"bookstore-service/internal/models"
)

var (
	ErrEmptyCart     = errors.New("your cart is empty")
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid status value")

	ErrBookNotFound    = errors.New("book not found")
	ErrDuplicateBook   = errors.New("book already exists")
	ErrBookReferenced  = errors.New("book is referenced by existing orders")
	ErrInvalidStock    = errors.New("stock must be a non-negative number")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrNotEnoughStock  = errors.New("not enough stock available")
	ErrCartItemMissing = errors.New("cart item not found")

	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token has been revoked")

	ErrDuplicateReview = errors.New("you have already reviewed this book")
	ErrReviewNotFound  = errors.New("review not found")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
)

// InsufficientStockError reports the first cart line that cannot be served
type InsufficientStockError struct {
	BookID    int64
	Title     string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%q has only %d copies available", e.Title, e.Available)
}

// Operations that can reject an order status change
const (
	OpCancel       = "cancel"
	OpUpdateStatus = "update_status"
)

// TransitionError is returned for order status changes the lifecycle forbids
type TransitionError struct {
	Op   string
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *TransitionError) Error() string {
	if e.Op == OpCancel {
		return "only pending orders can be cancelled"
	}
	return fmt.Sprintf("cannot change order status from %s to %s", e.From, e.To)
}

// ValidationError wraps a request that failed input checks
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
