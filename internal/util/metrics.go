package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookstore_orders_placed_total",
		Help: "Total number of orders placed",
	})

	OrdersCanceledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookstore_orders_canceled_total",
		Help: "Total number of orders canceled by customers",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookstore_orders_failed_total",
		Help: "Total number of rejected or failed order placements",
	}, []string{"reason"})

	OrderStatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookstore_order_status_transitions_total",
		Help: "Total number of applied order status transitions",
	}, []string{"from", "to"})

	OrderPlacementLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bookstore_order_placement_latency_seconds",
		Help:    "Latency of order placement",
		Buckets: prometheus.DefBuckets,
	})

	IdempotentReplaysTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookstore_idempotent_replays_total",
		Help: "Total number of checkout requests answered from an earlier order",
	})

	OrderEventsRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookstore_order_events_recorded_total",
		Help: "Total number of order events appended to order history",
	}, []string{"event_type"})

	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookstore_logins_total",
		Help: "Total number of login attempts",
	}, []string{"result"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
