package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"bookstore-service/internal/models"
	"bookstore-service/internal/util"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func message(t *testing.T, event interface{}) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: value}
}

func TestHandleMessageRoutesByEventType(t *testing.T) {
	util.SetLogger(zap.NewNop())
	ctx := context.Background()

	var (
		placed  *models.OrderPlacedEvent
		changed *models.OrderStatusChangedEvent
	)
	eh := NewEventHandler()
	eh.OnOrderPlaced(func(ctx context.Context, e *models.OrderPlacedEvent) error {
		placed = e
		return nil
	})
	eh.OnOrderStatusChanged(func(ctx context.Context, e *models.OrderStatusChangedEvent) error {
		changed = e
		return nil
	})

	require.NoError(t, eh.HandleMessage(ctx, message(t, &models.OrderPlacedEvent{
		BaseEvent:     models.BaseEvent{EventID: "e1", EventType: models.EventTypeOrderPlaced, Timestamp: time.Now()},
		OrderID:       7,
		TotalPrice:    decimal.RequireFromString("599.50"),
		PaymentMethod: "COD",
		PaymentStatus: models.PaymentStatusPending,
		Items:         []models.OrderItemData{{BookID: 1, Quantity: 2, Price: decimal.RequireFromString("250")}},
	})))
	require.NotNil(t, placed)
	assert.Equal(t, int64(7), placed.OrderID)
	assert.True(t, placed.TotalPrice.Equal(decimal.RequireFromString("599.5")))
	assert.Len(t, placed.Items, 1)

	require.NoError(t, eh.HandleMessage(ctx, message(t, &models.OrderStatusChangedEvent{
		BaseEvent:     models.BaseEvent{EventID: "e2", EventType: models.EventTypeOrderStatusChanged},
		OrderID:       7,
		From:          models.OrderStatusPending,
		To:            models.OrderStatusCompleted,
		PaymentStatus: models.PaymentStatusSuccess,
	})))
	require.NotNil(t, changed)
	assert.Equal(t, models.OrderStatusCompleted, changed.To)

	// no handler registered for cancellations
	assert.NoError(t, eh.HandleMessage(ctx, message(t, &models.OrderCanceledEvent{
		BaseEvent: models.BaseEvent{EventID: "e3", EventType: models.EventTypeOrderCanceled},
		OrderID:   7,
	})))
	assert.NoError(t, eh.HandleMessage(ctx, message(t, &models.BaseEvent{EventID: "e4", EventType: "SOMETHING_ELSE"})))
}

func TestHandleMessageErrors(t *testing.T) {
	util.SetLogger(zap.NewNop())
	boom := errors.New("boom")

	eh := NewEventHandler()
	eh.OnOrderCanceled(func(ctx context.Context, e *models.OrderCanceledEvent) error { return boom })

	err := eh.HandleMessage(context.Background(), kafka.Message{Value: []byte("{not json")})
	assert.ErrorIs(t, err, ErrMalformedMessage)

	err = eh.HandleMessage(context.Background(), message(t, &models.OrderCanceledEvent{
		BaseEvent: models.BaseEvent{EventID: "e5", EventType: models.EventTypeOrderCanceled},
		OrderID:   1,
	}))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrMalformedMessage)
}

func TestOrderKey(t *testing.T) {
	assert.Equal(t, "order-42", orderKey(42))
}
