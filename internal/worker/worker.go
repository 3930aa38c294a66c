package worker

import (
	"context"

	"bookstore-service/internal/broker"
	"bookstore-service/internal/service"
	"bookstore-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageSource delivers topic messages to a handler until ctx is done
type MessageSource interface {
	StartConsuming(ctx context.Context, handler broker.MessageHandler) error
	Close() error
}

// OrderHistoryWorker consumes order events and records them as order history
type OrderHistoryWorker struct {
	source       MessageSource
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewOrderHistoryWorker creates a new order history worker
func NewOrderHistoryWorker(source MessageSource, history *service.HistoryService) *OrderHistoryWorker {
	eventHandler := broker.NewEventHandler()

	eventHandler.OnOrderPlaced(history.HandleOrderPlaced)
	eventHandler.OnOrderCanceled(history.HandleOrderCanceled)
	eventHandler.OnOrderStatusChanged(history.HandleOrderStatusChanged)

	return &OrderHistoryWorker{
		source:       source,
		eventHandler: eventHandler,
		logger:       util.GetLogger(),
	}
}

// Handle processes a single message
func (w *OrderHistoryWorker) Handle(ctx context.Context, msg kafka.Message) error {
	return w.eventHandler.HandleMessage(ctx, msg)
}

// Start blocks consuming messages until ctx is cancelled
func (w *OrderHistoryWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting order history worker")
	return w.source.StartConsuming(ctx, w.Handle)
}

// Stop stops the worker
func (w *OrderHistoryWorker) Stop() error {
	w.logger.Info("Stopping order history worker")
	return w.source.Close()
}
