package store

import (
	"context"
	"fmt"

	"bookstore-service/internal/models"
)

// RecordOrderEvent appends a history entry unless the event was already
// processed. Both writes share one transaction; recorded is false for duplicates.
func (s *Store) RecordOrderEvent(ctx context.Context, entry *models.OrderHistoryEntry) (recorded bool, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		entry.EventID, entry.EventType)
	if err != nil {
		return false, fmt.Errorf("failed to mark event processed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	err = tx.GetContext(ctx, &entry.ID, `
		INSERT INTO order_history (order_id, event_id, event_type, status, note, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		entry.OrderID, entry.EventID, entry.EventType, entry.Status, entry.Note, entry.OccurredAt)
	if err != nil {
		return false, fmt.Errorf("failed to append order history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// ListOrderHistory returns an order's timeline, oldest first
func (s *Store) ListOrderHistory(ctx context.Context, orderID int64) ([]models.OrderHistoryEntry, error) {
	entries := []models.OrderHistoryEntry{}
	err := s.db.SelectContext(ctx, &entries,
		"SELECT * FROM order_history WHERE order_id = $1 ORDER BY occurred_at, id", orderID)
	return entries, err
}
