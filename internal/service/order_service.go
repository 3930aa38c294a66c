package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookstore-service/internal/models"
	"bookstore-service/internal/store"
	"bookstore-service/internal/util"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderStore is the persistence the order workflow needs
type OrderStore interface {
	InTx(ctx context.Context, fn func(tx store.OrderTx) error) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrderIDByIdempotencyKey(ctx context.Context, userID int64, key string) (int64, error)
	GetOrderDetail(ctx context.Context, id int64) (*models.OrderDetail, error)
	ListOrderDetailsByUser(ctx context.Context, userID int64) ([]models.OrderDetail, error)
	ListOrderDetails(ctx context.Context, limit int) ([]models.OrderDetail, error)
	ListOrderHistory(ctx context.Context, orderID int64) ([]models.OrderHistoryEntry, error)
}

// OrderEventPublisher publishes committed order changes
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
	PublishOrderCanceled(ctx context.Context, event *models.OrderCanceledEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
}

// IdempotencyCache remembers which order a checkout key produced
type IdempotencyCache interface {
	GetOrderID(ctx context.Context, userID int64, key string) (orderID int64, found bool, err error)
	SetOrderID(ctx context.Context, userID int64, key string, orderID int64, ttl time.Duration) error
}

// OrderService handles the order lifecycle and keeps stock and payments consistent with it
type OrderService struct {
	store          OrderStore
	cache          IdempotencyCache
	eventPublisher OrderEventPublisher
	idempotencyTTL time.Duration
	logger         *zap.Logger
}

// NewOrderService creates a new order service. cache and eventPublisher may be nil.
func NewOrderService(
	store OrderStore,
	cache IdempotencyCache,
	eventPublisher OrderEventPublisher,
	idempotencyTTL time.Duration,
) *OrderService {
	return &OrderService{
		store:          store,
		cache:          cache,
		eventPublisher: eventPublisher,
		idempotencyTTL: idempotencyTTL,
		logger:         util.GetLogger(),
	}
}

// PlaceOrderRequest converts the user's cart into an order
type PlaceOrderRequest struct {
	UserID          int64           `json:"userId" binding:"required,min=1"`
	ShippingDetails json.RawMessage `json:"shippingDetails"`
	PaymentMethod   string          `json:"paymentMethod" binding:"required"`
	// TotalPrice is what the client displayed. It is never used for pricing.
	TotalPrice     *decimal.Decimal `json:"totalPrice,omitempty"`
	IdempotencyKey string           `json:"idempotencyKey,omitempty"`
}

// PlaceOrderResponse describes the placed order
type PlaceOrderResponse struct {
	OrderID    int64           `json:"orderId"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	// Replayed is set when the idempotency key matched an earlier order
	Replayed bool `json:"-"`
}

var errKeyTaken = errors.New("idempotency key already used")

// PlaceOrder validates the cart against stock and, in one transaction, creates the
// order, its items and payment, decrements stock and empties the cart.
func (s *OrderService) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*PlaceOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.PlaceOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.OrderPlacementLatency.Observe(time.Since(start).Seconds())
	}()

	key := strings.TrimSpace(req.IdempotencyKey)
	if key != "" {
		resp, err := s.findReplay(ctx, req.UserID, key)
		if err != nil {
			return nil, err
		}
		if resp != nil {
			return resp, nil
		}
	}

	var (
		order   *models.Order
		payment *models.Payment
		items   []models.OrderItemData
	)

	err := s.store.InTx(ctx, func(tx store.OrderTx) error {
		lines, err := tx.LockCartLines(ctx, req.UserID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		for _, line := range lines {
			if line.Book.Stock < line.Quantity {
				return &InsufficientStockError{
					BookID:    line.BookID,
					Title:     line.Book.Title,
					Available: line.Book.Stock,
					Requested: line.Quantity,
				}
			}
		}

		total := calculateTotal(lines)

		order = &models.Order{
			UserID:          req.UserID,
			TotalPrice:      total,
			Status:          models.OrderStatusPending,
			ShippingDetails: shippingJSON(req.ShippingDetails),
		}
		if key != "" {
			order.IdempotencyKey = &key
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			if key != "" && errors.Is(err, store.ErrConflict) {
				return errKeyTaken
			}
			return fmt.Errorf("failed to create order: %w", err)
		}

		items = make([]models.OrderItemData, 0, len(lines))
		for _, line := range lines {
			item := &models.OrderItem{
				OrderID:  order.ID,
				BookID:   line.BookID,
				Quantity: line.Quantity,
				Price:    line.Book.Price,
			}
			if err := tx.CreateOrderItem(ctx, item); err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}

			if err := tx.DecrementStock(ctx, line.BookID, line.Quantity); err != nil {
				if errors.Is(err, store.ErrInsufficientStock) {
					return &InsufficientStockError{
						BookID:    line.BookID,
						Title:     line.Book.Title,
						Available: line.Book.Stock,
						Requested: line.Quantity,
					}
				}
				return err
			}

			items = append(items, models.OrderItemData{
				BookID:   line.BookID,
				Quantity: line.Quantity,
				Price:    line.Book.Price,
			})
		}

		payment = &models.Payment{
			OrderID:    order.ID,
			Method:     strings.ToUpper(strings.TrimSpace(req.PaymentMethod)),
			Status:     models.InitialPaymentStatus(req.PaymentMethod),
			PaidAmount: total,
		}
		if err := tx.CreatePayment(ctx, payment); err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		if _, err := tx.ClearCart(ctx, req.UserID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return s.placeFailed(ctx, key, req.UserID, err)
	}

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", order.UserID),
		zap.String("total_price", order.TotalPrice.StringFixed(2)),
		zap.String("payment_status", string(payment.Status)))

	if req.TotalPrice != nil && !req.TotalPrice.Equal(order.TotalPrice) {
		s.logger.Warn("Client total differs from computed total",
			zap.Int64("order_id", order.ID),
			zap.String("client_total", req.TotalPrice.String()),
			zap.String("computed_total", order.TotalPrice.StringFixed(2)))
	}

	if key != "" && s.cache != nil {
		if err := s.cache.SetOrderID(ctx, order.UserID, key, order.ID, s.idempotencyTTL); err != nil {
			s.logger.Warn("Failed to cache idempotency key", zap.String("idempotency_key", key), zap.Error(err))
		}
	}

	if s.eventPublisher != nil {
		event := &models.OrderPlacedEvent{
			BaseEvent:     newBaseEvent(models.EventTypeOrderPlaced),
			OrderID:       order.ID,
			UserID:        order.UserID,
			TotalPrice:    order.TotalPrice,
			PaymentMethod: payment.Method,
			PaymentStatus: payment.Status,
			Items:         items,
		}
		if err := s.eventPublisher.PublishOrderPlaced(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderPlaced event", zap.Int64("order_id", order.ID), zap.Error(err))
		}
	}

	return &PlaceOrderResponse{OrderID: order.ID, TotalPrice: order.TotalPrice}, nil
}

// placeFailed classifies a rolled back placement. A lost race on the same
// idempotency key surfaces as a key conflict or an already emptied cart; both
// resolve to the order the winner created.
func (s *OrderService) placeFailed(ctx context.Context, key string, userID int64, err error) (*PlaceOrderResponse, error) {
	if key != "" && (errors.Is(err, errKeyTaken) || errors.Is(err, ErrEmptyCart)) {
		resp, lookupErr := s.findReplay(ctx, userID, key)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if resp != nil {
			return resp, nil
		}
	}

	var stockErr *InsufficientStockError
	switch {
	case errors.Is(err, ErrEmptyCart):
		util.OrdersFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, err
	case errors.As(err, &stockErr):
		util.OrdersFailedTotal.WithLabelValues("insufficient_stock").Inc()
		s.logger.Info("Order rejected for stock",
			zap.Int64("user_id", userID),
			zap.Int64("book_id", stockErr.BookID),
			zap.Int("available", stockErr.Available),
			zap.Int("requested", stockErr.Requested))
		return nil, err
	}

	util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
	s.logger.Error("Failed to place order", zap.Int64("user_id", userID), zap.Error(err))
	return nil, fmt.Errorf("failed to place order: %w", err)
}

// findReplay returns the order userID already placed under an idempotency key, or nil.
// Keys are scoped per user; another user's order is never replayed.
func (s *OrderService) findReplay(ctx context.Context, userID int64, key string) (*PlaceOrderResponse, error) {
	var orderID int64

	if s.cache != nil {
		id, found, err := s.cache.GetOrderID(ctx, userID, key)
		if err != nil {
			s.logger.Warn("Idempotency cache lookup failed", zap.String("idempotency_key", key), zap.Error(err))
		} else if found {
			orderID = id
		}
	}

	if orderID == 0 {
		id, err := s.store.GetOrderIDByIdempotencyKey(ctx, userID, key)
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to check idempotency: %w", err)
		}
		orderID = id
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load replayed order: %w", err)
	}
	if order.UserID != userID {
		return nil, nil
	}

	util.IdempotentReplaysTotal.Inc()
	s.logger.Info("Duplicate order request detected",
		zap.String("idempotency_key", key),
		zap.Int64("order_id", order.ID))

	return &PlaceOrderResponse{OrderID: order.ID, TotalPrice: order.TotalPrice, Replayed: true}, nil
}

// CancelOrder cancels a pending order, failing its payment and returning its stock
func (s *OrderService) CancelOrder(ctx context.Context, orderID int64) error {
	ctx, span := util.StartSpan(ctx, "OrderService.CancelOrder")
	defer span.End()

	var result *transitionResult
	err := s.store.InTx(ctx, func(tx store.OrderTx) error {
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if !order.Status.Cancellable() {
			return &TransitionError{Op: OpCancel, From: order.Status, To: models.OrderStatusCanceled}
		}

		effect, _ := models.OrderTransition(order.Status, models.OrderStatusCanceled)
		result, err = applyTransition(ctx, tx, order, models.OrderStatusCanceled, effect)
		return err
	})
	if err != nil {
		return s.transitionFailed("cancel", orderID, err)
	}

	util.OrdersCanceledTotal.Inc()
	util.OrderStatusTransitionsTotal.WithLabelValues(string(models.OrderStatusPending), string(models.OrderStatusCanceled)).Inc()
	s.logger.Info("Order canceled", zap.Int64("order_id", orderID), zap.Int("items_restocked", len(result.items)))

	if s.eventPublisher != nil {
		event := &models.OrderCanceledEvent{
			BaseEvent: newBaseEvent(models.EventTypeOrderCanceled),
			OrderID:   orderID,
			Items:     result.itemData(),
		}
		if err := s.eventPublisher.PublishOrderCanceled(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderCanceled event", zap.Int64("order_id", orderID), zap.Error(err))
		}
	}

	return nil
}

// UpdateOrderStatus moves an order to status, applying the side effects of the transition
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (models.OrderStatus, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateOrderStatus")
	defer span.End()

	to, err := models.ParseOrderStatus(status)
	if err != nil {
		return "", ErrInvalidStatus
	}

	var result *transitionResult
	err = s.store.InTx(ctx, func(tx store.OrderTx) error {
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		effect, ok := models.OrderTransition(order.Status, to)
		if !ok {
			return &TransitionError{Op: OpUpdateStatus, From: order.Status, To: to}
		}

		result, err = applyTransition(ctx, tx, order, to, effect)
		return err
	})
	if err != nil {
		return "", s.transitionFailed("update", orderID, err)
	}

	util.OrderStatusTransitionsTotal.WithLabelValues(string(result.from), string(to)).Inc()
	s.logger.Info("Order status updated",
		zap.Int64("order_id", orderID),
		zap.String("from", string(result.from)),
		zap.String("to", string(to)),
		zap.Bool("stock_restored", result.stockRestored))

	if s.eventPublisher != nil {
		event := &models.OrderStatusChangedEvent{
			BaseEvent:     newBaseEvent(models.EventTypeOrderStatusChanged),
			OrderID:       orderID,
			From:          result.from,
			To:            to,
			StockRestored: result.stockRestored,
			PaymentStatus: result.paymentStatus,
		}
		if err := s.eventPublisher.PublishOrderStatusChanged(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderStatusChanged event", zap.Int64("order_id", orderID), zap.Error(err))
		}
	}

	return to, nil
}

func (s *OrderService) transitionFailed(op string, orderID int64, err error) error {
	var transErr *TransitionError
	if errors.Is(err, ErrOrderNotFound) || errors.As(err, &transErr) {
		return err
	}
	s.logger.Error("Failed to "+op+" order", zap.Int64("order_id", orderID), zap.Error(err))
	return fmt.Errorf("failed to %s order: %w", op, err)
}

type transitionResult struct {
	from          models.OrderStatus
	items         []models.OrderItem
	stockRestored bool
	paymentStatus models.PaymentStatus
}

func (r *transitionResult) itemData() []models.OrderItemData {
	data := make([]models.OrderItemData, len(r.items))
	for i, item := range r.items {
		data[i] = models.OrderItemData{BookID: item.BookID, Quantity: item.Quantity, Price: item.Price}
	}
	return data
}

// applyTransition writes the new status and its effects on a locked order
func applyTransition(ctx context.Context, tx store.OrderTx, order *models.Order, to models.OrderStatus, effect models.TransitionEffect) (*transitionResult, error) {
	result := &transitionResult{from: order.Status}

	items, err := tx.GetOrderItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	result.items = items

	if err := tx.SetOrderStatus(ctx, order.ID, to); err != nil {
		return nil, fmt.Errorf("failed to set order status: %w", err)
	}

	if effect.RestoreStock {
		for _, item := range items {
			if err := tx.IncrementStock(ctx, item.BookID, item.Quantity); err != nil {
				return nil, err
			}
		}
		result.stockRestored = true
	}

	payment, err := tx.GetPayment(ctx, order.ID)
	if errors.Is(err, store.ErrNotFound) {
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	result.paymentStatus = payment.Status

	next := payment.Status
	switch {
	case effect.FailPayment:
		next = models.PaymentStatusFailed
	case effect.SettleCOD && models.IsCOD(payment.Method) && payment.Status == models.PaymentStatusPending:
		next = models.PaymentStatusSuccess
	}
	if next != payment.Status {
		if err := tx.SetPaymentStatus(ctx, order.ID, next); err != nil {
			return nil, fmt.Errorf("failed to set payment status: %w", err)
		}
		result.paymentStatus = next
	}

	return result, nil
}

// GetOrder retrieves an order with items, payment and owner
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.GetOrder")
	defer span.End()

	detail, err := s.store.GetOrderDetail(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order details: %w", err)
	}
	return detail, nil
}

// ListUserOrders returns a user's orders, newest first
func (s *OrderService) ListUserOrders(ctx context.Context, userID int64) ([]models.OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListUserOrders")
	defer span.End()

	orders, err := s.store.ListOrderDetailsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return orders, nil
}

// ListAllOrders returns every order with its owner, newest first
func (s *OrderService) ListAllOrders(ctx context.Context) ([]models.OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListAllOrders")
	defer span.End()

	orders, err := s.store.ListOrderDetails(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return orders, nil
}

// GetOrderHistory returns the recorded timeline of an order
func (s *OrderService) GetOrderHistory(ctx context.Context, orderID int64) ([]models.OrderHistoryEntry, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.GetOrderHistory")
	defer span.End()

	if _, err := s.store.GetOrderByID(ctx, orderID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order history: %w", err)
	}

	entries, err := s.store.ListOrderHistory(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order history: %w", err)
	}
	return entries, nil
}

// calculateTotal sums price × quantity over the cart
func calculateTotal(lines []models.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Book.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// shippingJSON passes shipping details through unchanged, defaulting to an empty object
func shippingJSON(raw json.RawMessage) types.JSONText {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return types.JSONText("{}")
	}
	return types.JSONText(trimmed)
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}
