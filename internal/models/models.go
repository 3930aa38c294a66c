package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// User represents a registered customer or administrator
type User struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Email     string    `db:"email" json:"email"`
	Password  string    `db:"password" json:"-"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// User roles
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// UserSummary is the public projection of a user embedded in other resources
type UserSummary struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	Email    string `db:"email" json:"email"`
}

// Book represents a catalog entry and its stock
type Book struct {
	ID          int64           `db:"id" json:"id"`
	Title       string          `db:"title" json:"title"`
	Author      string          `db:"author" json:"author"`
	Genre       string          `db:"genre" json:"genre"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Stock       int             `db:"stock" json:"stock"`
	Status      string          `db:"status" json:"status"`
	Description string          `db:"description" json:"description"`
	ImageURL    string          `db:"image_url" json:"imageUrl"`
	ISBN        *string         `db:"isbn" json:"isbn,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// Book statuses
const (
	BookStatusAvailable  = "available"
	BookStatusOutOfStock = "out_of_stock"
)

// BookStatusFor derives the catalog status from a stock count
func BookStatusFor(stock int) string {
	if stock == 0 {
		return BookStatusOutOfStock
	}
	return BookStatusAvailable
}

// CartEntry is a pending (book, quantity) pair owned by a user
type CartEntry struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	BookID    int64     `db:"book_id" json:"bookId"`
	Quantity  int       `db:"quantity" json:"quantity"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// CartLine is a cart entry joined with its book
type CartLine struct {
	CartEntry
	Book Book `db:"book" json:"book"`
}

// Order represents a placed order
type Order struct {
	ID              int64           `db:"id" json:"id"`
	UserID          int64           `db:"user_id" json:"userId"`
	TotalPrice      decimal.Decimal `db:"total_price" json:"totalPrice"`
	Status          OrderStatus     `db:"status" json:"status"`
	ShippingDetails types.JSONText  `db:"shipping_details" json:"shippingDetails"`
	IdempotencyKey  *string         `db:"idempotency_key" json:"-"`
	OrderDate       time.Time       `db:"order_date" json:"orderDate"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
}

// OrderItem is an immutable record of one purchased line
type OrderItem struct {
	ID       int64           `db:"id" json:"id"`
	OrderID  int64           `db:"order_id" json:"orderId"`
	BookID   int64           `db:"book_id" json:"bookId"`
	Quantity int             `db:"quantity" json:"quantity"`
	Price    decimal.Decimal `db:"price" json:"price"`
}

// Subtotal returns quantity × frozen unit price
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Payment is the bookkeeping record attached to an order
type Payment struct {
	ID         int64           `db:"id" json:"id"`
	OrderID    int64           `db:"order_id" json:"orderId"`
	Method     string          `db:"method" json:"method"`
	Status     PaymentStatus   `db:"status" json:"status"`
	PaidAmount decimal.Decimal `db:"paid_amount" json:"paidAmount"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updatedAt"`
}

// PaymentMethodCOD is cash on delivery
const PaymentMethodCOD = "COD"

// OrderItemDetail is an order item with the purchased book
type OrderItemDetail struct {
	OrderItem
	Book *Book `json:"book,omitempty"`
}

// OrderDetail is an order with its items, payment and owner
type OrderDetail struct {
	Order
	Items   []OrderItemDetail `json:"items"`
	Payment *Payment          `json:"payment"`
	User    *UserSummary      `json:"user,omitempty"`
}

// Review is a user's rating of a book
type Review struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	BookID    int64     `db:"book_id" json:"bookId"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// ReviewDetail is a review with reviewer and book labels
type ReviewDetail struct {
	Review
	Username  string `db:"username" json:"username"`
	BookTitle string `db:"book_title" json:"bookTitle,omitempty"`
}

// OrderHistoryEntry is one step of an order's timeline
type OrderHistoryEntry struct {
	ID         int64       `db:"id" json:"id"`
	OrderID    int64       `db:"order_id" json:"orderId"`
	EventID    string      `db:"event_id" json:"eventId"`
	EventType  string      `db:"event_type" json:"eventType"`
	Status     OrderStatus `db:"status" json:"status"`
	Note       string      `db:"note" json:"note"`
	OccurredAt time.Time   `db:"occurred_at" json:"occurredAt"`
}
