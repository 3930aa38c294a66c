package api

import (
	"net/http"

	"bookstore-service/internal/service"

	"github.com/gin-gonic/gin"
)

// placeOrder handles checkout of the user's cart
func (h *Handler) placeOrder(c *gin.Context) {
	var req service.PlaceOrderRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	resp, err := h.orders.PlaceOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to place order")
		return
	}

	status, message := http.StatusCreated, "Order placed successfully"
	if resp.Replayed {
		status, message = http.StatusOK, "Order already placed"
	}
	c.JSON(status, gin.H{
		"message":    message,
		"orderId":    resp.OrderID,
		"totalPrice": resp.TotalPrice,
	})
}

// listUserOrders handles GET /orders/user/:userId
func (h *Handler) listUserOrders(c *gin.Context) {
	userID, ok := idParam(c, "userId", "user ID")
	if !ok {
		return
	}

	orders, err := h.orders.ListUserOrders(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to fetch orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

// listAllOrders handles GET /getOrders
func (h *Handler) listAllOrders(c *gin.Context) {
	orders, err := h.orders.ListAllOrders(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	orderID, ok := idParam(c, "orderId", "order ID")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err, "Failed to fetch order details")
		return
	}
	c.JSON(http.StatusOK, order)
}

// getOrderHistory handles GET /orders/:orderId/history
func (h *Handler) getOrderHistory(c *gin.Context) {
	orderID, ok := idParam(c, "orderId", "order ID")
	if !ok {
		return
	}

	history, err := h.orders.GetOrderHistory(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err, "Failed to fetch order history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orderId": orderID, "history": history})
}

// cancelOrder handles PUT /orders/:orderId/cancel
func (h *Handler) cancelOrder(c *gin.Context) {
	orderID, ok := idParam(c, "orderId", "order ID")
	if !ok {
		return
	}

	if err := h.orders.CancelOrder(c.Request.Context(), orderID); err != nil {
		respondError(c, err, "Failed to cancel order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully"})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// updateOrderStatus handles PUT /orders/:orderId/status
func (h *Handler) updateOrderStatus(c *gin.Context) {
	orderID, ok := idParam(c, "orderId", "order ID")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, service.ErrInvalidStatus.Error())
		return
	}

	status, err := h.orders.UpdateOrderStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		respondError(c, err, "Failed to update order status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated to " + string(status)})
}
