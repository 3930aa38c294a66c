package service

import (
	"context"
	"errors"
	"fmt"

	"bookstore-service/internal/models"
	"bookstore-service/internal/store"
	"bookstore-service/internal/util"

	"go.uber.org/zap"
)

// CartStore is the persistence the cart needs
type CartStore interface {
	GetBookByID(ctx context.Context, id int64) (*models.Book, error)
	GetCartLines(ctx context.Context, userID int64) ([]models.CartLine, error)
	AddToCart(ctx context.Context, userID, bookID int64, quantity int) (*models.CartEntry, bool, error)
	SetCartQuantity(ctx context.Context, id int64, quantity int) (*models.CartEntry, error)
	DeleteCartEntry(ctx context.Context, id int64) error
	ClearCart(ctx context.Context, userID int64) (int64, error)
}

// CartService manages users' pending purchases
type CartService struct {
	store  CartStore
	logger *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(store CartStore) *CartService {
	return &CartService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// AddToCartRequest puts a quantity of a book into a user's cart
type AddToCartRequest struct {
	UserID   int64 `json:"userId" binding:"required,min=1"`
	BookID   int64 `json:"bookId" binding:"required,min=1"`
	Quantity int   `json:"quantity"`
}

// AddToCart adds a book to the cart, merging with an existing entry for the
// same book. created is false when the quantity was merged.
func (s *CartService) AddToCart(ctx context.Context, req *AddToCartRequest) (entry *models.CartEntry, created bool, err error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddToCart")
	defer span.End()

	if req.Quantity < 1 {
		return nil, false, ErrInvalidQuantity
	}

	book, err := s.store.GetBookByID(ctx, req.BookID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, ErrBookNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to add item to cart: %w", err)
	}
	if book.Stock < req.Quantity {
		return nil, false, ErrNotEnoughStock
	}

	entry, created, err = s.store.AddToCart(ctx, req.UserID, req.BookID, req.Quantity)
	if err != nil {
		if errors.Is(err, store.ErrInvalidReference) {
			return nil, false, ErrBookNotFound
		}
		return nil, false, fmt.Errorf("failed to add item to cart: %w", err)
	}

	s.logger.Debug("Cart updated",
		zap.Int64("user_id", req.UserID),
		zap.Int64("book_id", req.BookID),
		zap.Int("quantity", entry.Quantity),
		zap.Bool("created", created))
	return entry, created, nil
}

// GetCart returns a user's cart entries with their books
func (s *CartService) GetCart(ctx context.Context, userID int64) ([]models.CartLine, error) {
	ctx, span := util.StartSpan(ctx, "CartService.GetCart")
	defer span.End()

	lines, err := s.store.GetCartLines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cart items: %w", err)
	}
	return lines, nil
}

// UpdateQuantity replaces the quantity of one cart entry
func (s *CartService) UpdateQuantity(ctx context.Context, entryID int64, quantity int) (*models.CartEntry, error) {
	ctx, span := util.StartSpan(ctx, "CartService.UpdateQuantity")
	defer span.End()

	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	entry, err := s.store.SetCartQuantity(ctx, entryID, quantity)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCartItemMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	return entry, nil
}

// RemoveItem deletes one cart entry
func (s *CartService) RemoveItem(ctx context.Context, entryID int64) error {
	ctx, span := util.StartSpan(ctx, "CartService.RemoveItem")
	defer span.End()

	err := s.store.DeleteCartEntry(ctx, entryID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrCartItemMissing
	}
	if err != nil {
		return fmt.Errorf("failed to remove item from cart: %w", err)
	}
	return nil
}

// ClearCart empties a user's cart
func (s *CartService) ClearCart(ctx context.Context, userID int64) error {
	ctx, span := util.StartSpan(ctx, "CartService.ClearCart")
	defer span.End()

	n, err := s.store.ClearCart(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	s.logger.Debug("Cart cleared", zap.Int64("user_id", userID), zap.Int64("removed", n))
	return nil
}
