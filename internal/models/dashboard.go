package models

import "github.com/shopspring/decimal"

// DashboardCounts are the headline figures of the admin dashboard
type DashboardCounts struct {
	TotalUsers   int64           `db:"total_users" json:"totalUsers"`
	TotalBooks   int64           `db:"total_books" json:"totalBooks"`
	TotalOrders  int64           `db:"total_orders" json:"totalOrders"`
	TotalRevenue decimal.Decimal `db:"total_revenue" json:"totalRevenue"`
}

// TopSellingBook is a book with the number of copies sold across all orders
type TopSellingBook struct {
	Book
	TotalSold int64 `db:"total_sold" json:"totalSold"`
}

// StatusCount counts orders per status
type StatusCount struct {
	Status OrderStatus `db:"status" json:"status"`
	Count  int64       `db:"count" json:"count"`
}

// DateCount counts rows per calendar day (YYYY-MM-DD)
type DateCount struct {
	Date  string `db:"date" json:"date"`
	Count int64  `db:"count" json:"count"`
}

// MonthCount counts rows per month (YYYY-MM)
type MonthCount struct {
	Month string `db:"month" json:"month"`
	Count int64  `db:"count" json:"count"`
}

// GenreCount counts books per genre
type GenreCount struct {
	Genre string `db:"genre" json:"genre"`
	Count int64  `db:"count" json:"count"`
}

// RoleCount counts users per role
type RoleCount struct {
	Role  string `db:"role" json:"role"`
	Count int64  `db:"count" json:"count"`
}

// UserOrderCount is a user with their number of orders
type UserOrderCount struct {
	UserSummary
	OrderCount int64 `db:"order_count" json:"orderCount"`
}

// StockDistribution buckets books by stock level
type StockDistribution struct {
	OutOfStock    int64 `db:"out_of_stock" json:"outOfStock"`
	LowStock      int64 `db:"low_stock" json:"lowStock"`
	AdequateStock int64 `db:"adequate_stock" json:"adequateStock"`
	HighStock     int64 `db:"high_stock" json:"highStock"`
}

// MonthRevenue is completed-order revenue for one month (YYYY-MM)
type MonthRevenue struct {
	Month   string          `db:"month" json:"month"`
	Revenue decimal.Decimal `db:"revenue" json:"revenue"`
}

// MethodRevenue is successful payment volume per payment method
type MethodRevenue struct {
	Method  string          `db:"method" json:"method"`
	Revenue decimal.Decimal `db:"revenue" json:"revenue"`
}
