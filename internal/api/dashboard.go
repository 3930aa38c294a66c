package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) dashboardStats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error fetching dashboard statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) dashboardOrders(c *gin.Context) {
	stats, err := h.dashboard.OrderStats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error fetching order statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) dashboardBooks(c *gin.Context) {
	stats, err := h.dashboard.BookStats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error fetching book statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) dashboardUsers(c *gin.Context) {
	stats, err := h.dashboard.UserStats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error fetching user statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) dashboardRevenue(c *gin.Context) {
	stats, err := h.dashboard.RevenueStats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error fetching revenue statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) dashboardLowStock(c *gin.Context) {
	books, err := h.dashboard.LowStockBooks(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error fetching low stock books")
		return
	}
	c.JSON(http.StatusOK, books)
}

func (h *Handler) dashboardRecentOrders(c *gin.Context) {
	orders, err := h.dashboard.RecentOrders(c.Request.Context(), limitQuery(c))
	if err != nil {
		respondError(c, err, "Error fetching recent orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) dashboardTopSelling(c *gin.Context) {
	books, err := h.dashboard.TopSellingBooks(c.Request.Context(), limitQuery(c))
	if err != nil {
		respondError(c, err, "Error fetching top selling books")
		return
	}
	c.JSON(http.StatusOK, books)
}

func (h *Handler) dashboardRecentReviews(c *gin.Context) {
	reviews, err := h.dashboard.RecentReviews(c.Request.Context(), limitQuery(c))
	if err != nil {
		respondError(c, err, "Error fetching recent reviews")
		return
	}
	c.JSON(http.StatusOK, reviews)
}
