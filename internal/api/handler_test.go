package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"bookstore-service/internal/models"
	"bookstore-service/internal/service"
	"bookstore-service/internal/store/storetest"
	"bookstore-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	util.SetLogger(zap.NewNop())
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

// emptyDashboard answers every aggregate with no rows
type emptyDashboard struct{}

func (emptyDashboard) DashboardCounts(ctx context.Context) (*models.DashboardCounts, error) {
	return &models.DashboardCounts{}, nil
}
func (emptyDashboard) LowStockBooks(ctx context.Context, threshold, limit int) ([]models.Book, error) {
	return []models.Book{}, nil
}
func (emptyDashboard) TopSellingBooks(ctx context.Context, limit int) ([]models.TopSellingBook, error) {
	return []models.TopSellingBook{}, nil
}
func (emptyDashboard) RecentReviews(ctx context.Context, limit int) ([]models.ReviewDetail, error) {
	return []models.ReviewDetail{}, nil
}
func (emptyDashboard) ListOrderDetails(ctx context.Context, limit int) ([]models.OrderDetail, error) {
	return []models.OrderDetail{}, nil
}
func (emptyDashboard) OrdersByStatus(ctx context.Context) ([]models.StatusCount, error) {
	return []models.StatusCount{}, nil
}
func (emptyDashboard) OrdersByDate(ctx context.Context, since time.Time) ([]models.DateCount, error) {
	return []models.DateCount{}, nil
}
func (emptyDashboard) BooksByGenre(ctx context.Context) ([]models.GenreCount, error) {
	return []models.GenreCount{}, nil
}
func (emptyDashboard) StockDistribution(ctx context.Context, low, high int) (*models.StockDistribution, error) {
	return &models.StockDistribution{}, nil
}
func (emptyDashboard) UsersByMonth(ctx context.Context, since time.Time) ([]models.MonthCount, error) {
	return []models.MonthCount{}, nil
}
func (emptyDashboard) UsersByRole(ctx context.Context) ([]models.RoleCount, error) {
	return []models.RoleCount{}, nil
}
func (emptyDashboard) TopUsersByOrders(ctx context.Context, limit int) ([]models.UserOrderCount, error) {
	return []models.UserOrderCount{}, nil
}
func (emptyDashboard) RevenueByMonth(ctx context.Context, since time.Time) ([]models.MonthRevenue, error) {
	return []models.MonthRevenue{}, nil
}
func (emptyDashboard) RevenueByPaymentMethod(ctx context.Context) ([]models.MethodRevenue, error) {
	return []models.MethodRevenue{}, nil
}

type HandlerSuite struct {
	suite.Suite
	mem     *storetest.Memory
	handler *Handler
	router  *gin.Engine
	userID  int64
	bookID  int64
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.mem = storetest.New()
	auth := service.NewAuthService(s.mem, nil, service.AuthConfig{
		Secret:     "handler-test",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	})

	s.handler = NewHandler(Services{
		Orders:    service.NewOrderService(s.mem, nil, nil, time.Hour),
		Catalog:   service.NewCatalogService(s.mem),
		Cart:      service.NewCartService(s.mem),
		Auth:      auth,
		Users:     service.NewUserService(s.mem, bcrypt.MinCost),
		Reviews:   service.NewReviewService(s.mem),
		Dashboard: service.NewDashboardService(emptyDashboard{}, 5),
	}, false)
	s.router = gin.New()
	s.handler.SetupRoutes(s.router)

	s.userID = s.addAccount("reader", "reader@example.com", "pw", models.RoleUser)
	s.bookID = s.mem.AddBook(models.Book{Title: "Dune", Author: "Frank Herbert", Price: decimal.RequireFromString("250"), Stock: 5})
}

func (s *HandlerSuite) addAccount(name, email, password, role string) int64 {
	id := s.mem.AddUser(models.User{Username: name, Email: email, Role: role})
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	s.Require().NoError(err)
	s.Require().NoError(s.mem.UpdateUserPassword(context.Background(), id, string(hash)))
	return id
}

func (s *HandlerSuite) do(method, path string, body interface{}, headers map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	out := map[string]interface{}{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func (s *HandlerSuite) login(email, password string) string {
	w, body := s.do(http.MethodPost, "/auth/login", gin.H{"email": email, "password": password}, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	token, _ := body["token"].(string)
	s.Require().NotEmpty(token)
	return token
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func (s *HandlerSuite) TestHealth() {
	w, body := s.do(http.MethodGet, "/health", nil, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("healthy", body["status"])
}

func (s *HandlerSuite) TestReadinessReportsFailingChecks() {
	w, _ := s.do(http.MethodGet, "/ready", nil, nil)
	s.Equal(http.StatusOK, w.Code)

	s.handler.AddReadinessCheck("postgres", func(ctx context.Context) error { return errors.New("dial tcp: refused") })
	w, body := s.do(http.MethodGet, "/ready", nil, nil)
	s.Equal(http.StatusServiceUnavailable, w.Code)
	s.Equal(map[string]interface{}{"postgres": "dial tcp: refused"}, body["failing"])
}

func (s *HandlerSuite) TestPlaceOrderThenReplay() {
	s.mem.PutCart(s.userID, s.bookID, 2)
	req := gin.H{"userId": s.userID, "paymentMethod": "COD", "totalPrice": "1.00", "shippingDetails": gin.H{"city": "Pune"}}
	headers := map[string]string{"Idempotency-Key": "checkout-1"}

	w, body := s.do(http.MethodPost, "/orders", req, headers)
	s.Require().Equal(http.StatusCreated, w.Code)
	s.Equal("Order placed successfully", body["message"])
	s.Equal("500", body["totalPrice"])
	orderID := body["orderId"]

	w, body = s.do(http.MethodPost, "/orders", req, headers)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("Order already placed", body["message"])
	s.Equal(orderID, body["orderId"])

	orders, _, _ := s.mem.Counts()
	s.Equal(1, orders)
	s.Equal(3, s.mem.Book(s.bookID).Stock)
}

func (s *HandlerSuite) TestPlaceOrderErrors() {
	w, body := s.do(http.MethodPost, "/orders", gin.H{"userId": s.userID}, nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Invalid request body", body["error"])

	w, body = s.do(http.MethodPost, "/orders", gin.H{"userId": s.userID, "paymentMethod": "card"}, nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(service.ErrEmptyCart.Error(), body["error"])

	s.mem.PutCart(s.userID, s.bookID, 9)
	w, body = s.do(http.MethodPost, "/orders", gin.H{"userId": s.userID, "paymentMethod": "card"}, nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(body["error"], "Dune")
	s.Equal(5, s.mem.Book(s.bookID).Stock)
}

func (s *HandlerSuite) TestOrderLifecycle() {
	s.mem.PutCart(s.userID, s.bookID, 1)
	w, body := s.do(http.MethodPost, "/orders", gin.H{"userId": s.userID, "paymentMethod": "card"}, nil)
	s.Require().Equal(http.StatusCreated, w.Code)
	id := int64(body["orderId"].(float64))
	path := "/orders/" + strconv.FormatInt(id, 10)

	w, body = s.do(http.MethodGet, path, nil, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("PENDING", body["status"])

	w, body = s.do(http.MethodPut, path+"/status", gin.H{"status": "shipped"}, nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(service.ErrInvalidStatus.Error(), body["error"])

	w, _ = s.do(http.MethodPut, path+"/cancel", nil, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(5, s.mem.Book(s.bookID).Stock)

	w, _ = s.do(http.MethodPut, path+"/cancel", nil, nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w, body = s.do(http.MethodPut, path+"/status", gin.H{"status": "PENDING"}, nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(body["error"], "CANCELED")

	w, _ = s.do(http.MethodGet, "/orders/999", nil, nil)
	s.Equal(http.StatusNotFound, w.Code)
	w, body = s.do(http.MethodGet, "/orders/abc", nil, nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Invalid order ID", body["error"])
}

func (s *HandlerSuite) TestProfileRequiresToken() {
	w, body := s.do(http.MethodGet, "/profile", nil, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Authentication failed: no token provided", body["error"])

	w, _ = s.do(http.MethodGet, "/profile", nil, bearer("garbage"))
	s.Equal(http.StatusUnauthorized, w.Code)

	token := s.login("reader@example.com", "pw")
	w, body = s.do(http.MethodGet, "/profile", nil, bearer(token))
	s.Equal(http.StatusOK, w.Code)
	s.Equal("reader", body["username"])
	s.NotContains(body, "password")
}

func (s *HandlerSuite) TestLoginSetsCookie() {
	w, _ := s.do(http.MethodPost, "/auth/login", gin.H{"email": "reader@example.com", "password": "pw"}, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == authCookie {
			cookie = c
		}
	}
	s.Require().NotNil(cookie)
	s.True(cookie.HttpOnly)
	s.Equal(http.SameSiteStrictMode, cookie.SameSite)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: authCookie, Value: cookie.Value})
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusOK, rec.Code)

	w, _ = s.do(http.MethodPost, "/auth/login", gin.H{"email": "reader@example.com", "password": "nope"}, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerSuite) TestDashboardRequiresAdmin() {
	w, _ := s.do(http.MethodGet, "/dashboard/stats", nil, nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	token := s.login("reader@example.com", "pw")
	w, body := s.do(http.MethodGet, "/dashboard/stats", nil, bearer(token))
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("Access denied", body["error"])

	s.addAccount("admin", "admin@example.com", "root", models.RoleAdmin)
	admin := s.login("admin@example.com", "root")
	w, body = s.do(http.MethodGet, "/dashboard/stats", nil, bearer(admin))
	s.Equal(http.StatusOK, w.Code)
	s.Contains(body, "stats")
	s.Contains(body, "lowStockBooks")
}

func (s *HandlerSuite) TestBooksAndCart() {
	w, body := s.do(http.MethodPost, "/books/add", gin.H{"title": "Emma", "author": "Jane Austen", "price": "8.5", "stock": 2}, nil)
	s.Require().Equal(http.StatusCreated, w.Code)
	book := body["book"].(map[string]interface{})
	bookPath := strconv.FormatInt(int64(book["id"].(float64)), 10)

	w, _ = s.do(http.MethodPost, "/books/add", gin.H{"title": "Emma", "author": "Jane Austen", "price": "9", "stock": 1}, nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPost, "/cart", gin.H{"userId": s.userID, "bookId": book["id"], "quantity": 1}, nil)
	s.Equal(http.StatusCreated, w.Code)
	w, _ = s.do(http.MethodPost, "/cart", gin.H{"userId": s.userID, "bookId": book["id"], "quantity": 1}, nil)
	s.Equal(http.StatusOK, w.Code)
	w, _ = s.do(http.MethodPost, "/cart", gin.H{"userId": s.userID, "bookId": book["id"], "quantity": 5}, nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPatch, "/books/stock/"+bookPath, gin.H{"stock": -1}, nil)
	s.Equal(http.StatusBadRequest, w.Code)
	w, body = s.do(http.MethodPatch, "/books/stock/"+bookPath, gin.H{"stock": 0}, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(models.BookStatusOutOfStock, body["book"].(map[string]interface{})["status"])

	w, _ = s.do(http.MethodGet, "/books/999", nil, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerSuite) TestStatusMapping() {
	s.Equal(http.StatusBadRequest, statusFor(&service.InsufficientStockError{Title: "Dune"}))
	s.Equal(http.StatusBadRequest, statusFor(&service.TransitionError{Op: service.OpUpdateStatus, From: models.OrderStatusCanceled, To: models.OrderStatusPending}))
	s.Equal(http.StatusNotFound, statusFor(service.ErrOrderNotFound))
	s.Equal(http.StatusUnauthorized, statusFor(service.ErrTokenRevoked))
	s.Equal(0, statusFor(errors.New("pq: connection reset")))
}
