package service

import (
	"context"
	"fmt"
	"strings"

	"bookstore-service/internal/models"
	"bookstore-service/internal/util"

	"go.uber.org/zap"
)

// HistoryStore appends order timeline entries
type HistoryStore interface {
	RecordOrderEvent(ctx context.Context, entry *models.OrderHistoryEntry) (bool, error)
}

// HistoryService turns consumed order events into order history
type HistoryService struct {
	store  HistoryStore
	logger *zap.Logger
}

// NewHistoryService creates a new history service
func NewHistoryService(store HistoryStore) *HistoryService {
	return &HistoryService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// HandleOrderPlaced records the creation of an order
func (s *HistoryService) HandleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	ctx, span := util.StartSpan(ctx, "HistoryService.HandleOrderPlaced")
	defer span.End()

	note := fmt.Sprintf("order placed: %d item(s), total %s, paid by %s (%s)",
		len(event.Items), event.TotalPrice.StringFixed(2), event.PaymentMethod, event.PaymentStatus)
	return s.record(ctx, event.BaseEvent, event.OrderID, models.OrderStatusPending, note)
}

// HandleOrderCanceled records a customer cancellation
func (s *HistoryService) HandleOrderCanceled(ctx context.Context, event *models.OrderCanceledEvent) error {
	ctx, span := util.StartSpan(ctx, "HistoryService.HandleOrderCanceled")
	defer span.End()

	note := fmt.Sprintf("order canceled by customer, stock restored for %d item(s)", len(event.Items))
	return s.record(ctx, event.BaseEvent, event.OrderID, models.OrderStatusCanceled, note)
}

// HandleOrderStatusChanged records an admin status update
func (s *HistoryService) HandleOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	ctx, span := util.StartSpan(ctx, "HistoryService.HandleOrderStatusChanged")
	defer span.End()

	parts := []string{fmt.Sprintf("status changed from %s to %s", event.From, event.To)}
	if event.StockRestored {
		parts = append(parts, "stock restored")
	}
	if event.PaymentStatus != "" {
		parts = append(parts, "payment "+string(event.PaymentStatus))
	}
	return s.record(ctx, event.BaseEvent, event.OrderID, event.To, strings.Join(parts, ", "))
}

func (s *HistoryService) record(ctx context.Context, base models.BaseEvent, orderID int64, status models.OrderStatus, note string) error {
	entry := &models.OrderHistoryEntry{
		OrderID:    orderID,
		EventID:    base.EventID,
		EventType:  base.EventType,
		Status:     status,
		Note:       note,
		OccurredAt: base.Timestamp,
	}

	recorded, err := s.store.RecordOrderEvent(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to record order event: %w", err)
	}
	if !recorded {
		s.logger.Info("Event already processed, skipping",
			zap.String("event_id", base.EventID), zap.Int64("order_id", orderID))
		return nil
	}

	util.OrderEventsRecordedTotal.WithLabelValues(base.EventType).Inc()
	s.logger.Info("Order history recorded",
		zap.Int64("order_id", orderID),
		zap.String("event_type", base.EventType),
		zap.String("status", string(status)))
	return nil
}
