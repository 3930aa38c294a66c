package models

import (
	"fmt"
	"strings"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

// Order statuses
const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

// ParseOrderStatus accepts only the three recognized values, exact match
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCanceled:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// PaymentStatus is the bookkeeping state of a payment
type PaymentStatus string

// Payment statuses
const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// InitialPaymentStatus returns PENDING for cash on delivery and SUCCESS otherwise.
// No gateway is involved; non-COD methods are recorded as paid.
func InitialPaymentStatus(method string) PaymentStatus {
	if IsCOD(method) {
		return PaymentStatusPending
	}
	return PaymentStatusSuccess
}

// IsCOD reports whether method is cash on delivery, case-insensitively
func IsCOD(method string) bool {
	return strings.EqualFold(strings.TrimSpace(method), PaymentMethodCOD)
}

// TransitionEffect lists the side effects of moving an order between two statuses
type TransitionEffect struct {
	RestoreStock bool
	FailPayment  bool
	// SettleCOD flips a pending COD payment to SUCCESS
	SettleCOD bool
}

var orderTransitions = map[OrderStatus]map[OrderStatus]TransitionEffect{
	OrderStatusPending: {
		OrderStatusPending:   {},
		OrderStatusCompleted: {SettleCOD: true},
		OrderStatusCanceled:  {RestoreStock: true, FailPayment: true},
	},
	OrderStatusCompleted: {
		OrderStatusCompleted: {SettleCOD: true},
		OrderStatusCanceled:  {RestoreStock: true, FailPayment: true},
	},
	OrderStatusCanceled: {
		OrderStatusCanceled: {},
	},
}

// OrderTransition looks up the effect of from -> to. ok is false for rejected transitions.
func OrderTransition(from, to OrderStatus) (effect TransitionEffect, ok bool) {
	targets, known := orderTransitions[from]
	if !known {
		return TransitionEffect{}, false
	}
	effect, ok = targets[to]
	return effect, ok
}

// Cancellable reports whether a customer may cancel an order in this status
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending
}
