package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"bookstore-service/internal/models"
	"bookstore-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services are the application services exposed over HTTP
type Services struct {
	Orders    *service.OrderService
	Catalog   *service.CatalogService
	Cart      *service.CartService
	Auth      *service.AuthService
	Users     *service.UserService
	Reviews   *service.ReviewService
	Dashboard *service.DashboardService
}

// ReadinessCheck reports whether a dependency can serve traffic
type ReadinessCheck func(ctx context.Context) error

// Handler contains HTTP handlers
type Handler struct {
	orders    *service.OrderService
	catalog   *service.CatalogService
	cart      *service.CartService
	auth      *service.AuthService
	users     *service.UserService
	reviews   *service.ReviewService
	dashboard *service.DashboardService

	secureCookies bool
	checks        map[string]ReadinessCheck
}

// NewHandler creates a new HTTP handler. secureCookies marks the auth cookie Secure.
func NewHandler(svc Services, secureCookies bool) *Handler {
	return &Handler{
		orders:        svc.Orders,
		catalog:       svc.Catalog,
		cart:          svc.Cart,
		auth:          svc.Auth,
		users:         svc.Users,
		reviews:       svc.Reviews,
		dashboard:     svc.Dashboard,
		secureCookies: secureCookies,
		checks:        make(map[string]ReadinessCheck),
	}
}

// AddReadinessCheck registers a dependency probed by /ready
func (h *Handler) AddReadinessCheck(name string, check ReadinessCheck) {
	h.checks[name] = check
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/auth/signup", h.signup)
	router.POST("/auth/login", h.login)
	router.POST("/auth/logout", h.logout)

	router.POST("/books/add", h.addBook)
	router.GET("/books", h.listBooks)
	router.GET("/books/:id", h.getBook)
	router.PUT("/books/edit/:id", h.updateBook)
	router.DELETE("/books/delete/:id", h.deleteBook)
	router.PATCH("/books/stock/:id", h.updateStock)

	router.POST("/cart", h.addToCart)
	router.GET("/cart/:userId", h.getCart)
	router.PUT("/cart/:id", h.updateCartItem)
	router.DELETE("/cart/:id", h.removeFromCart)
	router.DELETE("/cart/clear/:userId", h.clearCart)

	router.POST("/orders", h.placeOrder)
	router.GET("/getOrders", h.listAllOrders)
	router.GET("/orders/user/:userId", h.listUserOrders)
	router.GET("/orders/:orderId", h.getOrder)
	router.GET("/orders/:orderId/history", h.getOrderHistory)
	router.PUT("/orders/:orderId/cancel", h.cancelOrder)
	router.PUT("/orders/:orderId/status", h.updateOrderStatus)

	authed := router.Group("/", h.authMiddleware())
	{
		authed.GET("/profile", h.getProfile)
		authed.PUT("/profile", h.updateProfile)
		authed.PUT("/change-password", h.changePassword)
	}

	router.POST("/reviews", h.addReview)
	router.GET("/reviews/:bookId", h.listReviews)
	router.PATCH("/reviews/:id", h.updateReview)
	router.DELETE("/reviews/:id", h.deleteReview)
	router.GET("/reviews/average/:bookId", h.averageRating)

	dashboard := router.Group("/dashboard", h.authMiddleware(), requireRole(models.RoleAdmin))
	{
		dashboard.GET("/stats", h.dashboardStats)
		dashboard.GET("/orders", h.dashboardOrders)
		dashboard.GET("/books", h.dashboardBooks)
		dashboard.GET("/users", h.dashboardUsers)
		dashboard.GET("/revenue", h.dashboardRevenue)
		dashboard.GET("/low-stock", h.dashboardLowStock)
		dashboard.GET("/recent-orders", h.dashboardRecentOrders)
		dashboard.GET("/top-selling", h.dashboardTopSelling)
		dashboard.GET("/recent-reviews", h.dashboardRecentReviews)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports 503 while any registered dependency is unreachable
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failing := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failing[name] = err.Error()
		}
	}

	if len(failing) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not ready",
			"failing": failing,
			"time":    time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// idParam parses a positive integer path parameter, answering 400 when malformed
func idParam(c *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		badRequest(c, "Invalid "+label)
		return 0, false
	}
	return id, true
}

func limitQuery(c *gin.Context) int {
	limit, _ := strconv.Atoi(c.Query("limit"))
	return limit
}
