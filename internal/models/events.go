package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderPlaced        = "ORDER_PLACED"
	EventTypeOrderCanceled      = "ORDER_CANCELED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent published when a cart has been converted into an order
type OrderPlacedEvent struct {
	BaseEvent
	OrderID       int64           `json:"order_id"`
	UserID        int64           `json:"user_id"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	PaymentMethod string          `json:"payment_method"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	Items         []OrderItemData `json:"items"`
}

// OrderCanceledEvent published when a customer cancels a pending order
type OrderCanceledEvent struct {
	BaseEvent
	OrderID int64           `json:"order_id"`
	Items   []OrderItemData `json:"items"`
}

// OrderStatusChangedEvent published after an admin status update
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID       int64         `json:"order_id"`
	From          OrderStatus   `json:"from"`
	To            OrderStatus   `json:"to"`
	StockRestored bool          `json:"stock_restored"`
	PaymentStatus PaymentStatus `json:"payment_status,omitempty"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	BookID   int64           `json:"book_id"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}
