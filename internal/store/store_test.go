package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"bookstore-service/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewStoreFromDB(sqlx.NewDb(db, "postgres")), mock
}

func TestMapError(t *testing.T) {
	other := errors.New("connection refused")
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"no rows", sql.ErrNoRows, ErrNotFound},
		{"unique violation", &pq.Error{Code: "23505", Constraint: "users_email_key"}, ErrConflict},
		{"foreign key violation", &pq.Error{Code: "23503", Constraint: "order_items_book_id_fkey"}, ErrInvalidReference},
		{"other", other, other},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tc.in), tc.want)
		})
	}
	assert.NoError(t, mapError(nil))
}

func TestDecrementStockRefusesToGoNegative(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE books")).
		WithArgs(3, 7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := s.InTx(context.Background(), func(tx OrderTx) error {
		return tx.DecrementStock(context.Background(), 7, 3)
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestInTxCommits(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SET stock = stock + $1")).
		WithArgs(2, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status = $1")).
		WithArgs(models.OrderStatusCanceled, 11).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.InTx(context.Background(), func(tx OrderTx) error {
		if err := tx.IncrementStock(context.Background(), 7, 2); err != nil {
			return err
		}
		return tx.SetOrderStatus(context.Background(), 11, models.OrderStatusCanceled)
	})
	assert.NoError(t, err)
}

func TestInTxRollsBackOnError(t *testing.T) {
	s, mock := newMockStore(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cart_entries WHERE user_id = $1")).
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectRollback()

	err := s.InTx(context.Background(), func(tx OrderTx) error {
		if _, err := tx.ClearCart(context.Background(), 4); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestLockOrderNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM orders WHERE id = $1 FOR UPDATE")).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := s.InTx(context.Background(), func(tx OrderTx) error {
		_, err := tx.LockOrder(context.Background(), 99)
		return err
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetOrderIDByIdempotencyKey(t *testing.T) {
	s, mock := newMockStore(t)
	q := regexp.QuoteMeta("SELECT id FROM orders WHERE user_id = $1 AND idempotency_key = $2")

	mock.ExpectQuery(q).WithArgs(7, "key-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectQuery(q).WithArgs(8, "key-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	id, err := s.GetOrderIDByIdempotencyKey(context.Background(), 7, "key-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = s.GetOrderIDByIdempotencyKey(context.Background(), 8, "key-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteBook(t *testing.T) {
	s, mock := newMockStore(t)
	q := regexp.QuoteMeta("DELETE FROM books WHERE id = $1")

	mock.ExpectExec(q).WithArgs(5).WillReturnError(&pq.Error{Code: "23503"})
	mock.ExpectExec(q).WithArgs(6).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q).WithArgs(7).WillReturnResult(sqlmock.NewResult(0, 1))

	assert.ErrorIs(t, s.DeleteBook(context.Background(), 5), ErrInvalidReference)
	assert.ErrorIs(t, s.DeleteBook(context.Background(), 6), ErrNotFound)
	assert.NoError(t, s.DeleteBook(context.Background(), 7))
}

func TestListBooksBuildsFilter(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM books WHERE TRUE AND author ILIKE $1 AND status = $2")).
		WithArgs("%sagan%", models.BookStatusAvailable).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY title ASC LIMIT $3 OFFSET $4")).
		WithArgs("%sagan%", models.BookStatusAvailable, 10, 20).
		WillReturnRows(sqlmock.NewRows(bookColumns).
			AddRow(1, "Cosmos", "Carl Sagan", "Science", "15.00", 4, models.BookStatusAvailable, "", "", nil, now, now))

	books, total, err := s.ListBooks(context.Background(), BookFilter{
		Author: "sagan",
		Status: models.BookStatusAvailable,
		Limit:  10,
		Offset: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, books, 1)
	assert.Equal(t, "15.00", books[0].Price.StringFixed(2))
	assert.Nil(t, books[0].ISBN)
}

func TestAddToCartReportsInsert(t *testing.T) {
	s, mock := newMockStore(t)
	cols := []string{"id", "user_id", "book_id", "quantity", "created_at", "inserted"}
	q := regexp.QuoteMeta("INSERT INTO cart_entries")

	mock.ExpectQuery(q).WithArgs(1, 2, 1).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(8, 1, 2, 1, time.Now(), true))
	mock.ExpectQuery(q).WithArgs(1, 2, 2).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(8, 1, 2, 3, time.Now(), false))

	entry, created, err := s.AddToCart(context.Background(), 1, 2, 1)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(8), entry.ID)

	entry, created, err = s.AddToCart(context.Background(), 1, 2, 2)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 3, entry.Quantity)
}

func TestRecordOrderEvent(t *testing.T) {
	s, mock := newMockStore(t)
	mark := regexp.QuoteMeta("INSERT INTO processed_events")

	entry := &models.OrderHistoryEntry{
		OrderID:    3,
		EventID:    "evt-1",
		EventType:  models.EventTypeOrderPlaced,
		Status:     models.OrderStatusPending,
		Note:       "order placed",
		OccurredAt: time.Now(),
	}

	mock.ExpectBegin()
	mock.ExpectExec(mark).WithArgs("evt-1", models.EventTypeOrderPlaced).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO order_history")).
		WithArgs(3, "evt-1", models.EventTypeOrderPlaced, models.OrderStatusPending, "order placed", entry.OccurredAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectCommit()

	recorded, err := s.RecordOrderEvent(context.Background(), entry)
	require.NoError(t, err)
	assert.True(t, recorded)
	assert.Equal(t, int64(9), entry.ID)

	// redelivery of the same event
	mock.ExpectBegin()
	mock.ExpectExec(mark).WithArgs("evt-1", models.EventTypeOrderPlaced).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	recorded, err = s.RecordOrderEvent(context.Background(), entry)
	require.NoError(t, err)
	assert.False(t, recorded)
}
