package api

import (
	"net/http"

	"bookstore-service/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) addToCart(c *gin.Context) {
	var req service.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "userId and bookId are required")
		return
	}

	entry, created, err := h.cart.AddToCart(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to add item to cart")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, entry)
}

func (h *Handler) getCart(c *gin.Context) {
	userID, ok := idParam(c, "userId", "user ID")
	if !ok {
		return
	}

	lines, err := h.cart.GetCart(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to fetch cart items")
		return
	}
	c.JSON(http.StatusOK, lines)
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) updateCartItem(c *gin.Context) {
	id, ok := idParam(c, "id", "cart item ID")
	if !ok {
		return
	}

	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, service.ErrInvalidQuantity.Error())
		return
	}

	entry, err := h.cart.UpdateQuantity(c.Request.Context(), id, req.Quantity)
	if err != nil {
		respondError(c, err, "Failed to update cart item")
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) removeFromCart(c *gin.Context) {
	id, ok := idParam(c, "id", "cart item ID")
	if !ok {
		return
	}

	if err := h.cart.RemoveItem(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to remove item from cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}

func (h *Handler) clearCart(c *gin.Context) {
	userID, ok := idParam(c, "userId", "user ID")
	if !ok {
		return
	}

	if err := h.cart.ClearCart(c.Request.Context(), userID); err != nil {
		respondError(c, err, "Failed to clear cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared successfully"})
}
