// Package storetest provides an in-memory stand-in for store.Store.
//
// Transactions are serialized by a single mutex and roll back by restoring a
// snapshot, so all-or-nothing behaviour can be asserted without Postgres.
package storetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bookstore-service/internal/models"
	"bookstore-service/internal/store"
)

type state struct {
	users     map[int64]models.User
	books     map[int64]models.Book
	cart      map[int64]models.CartEntry
	orders    map[int64]models.Order
	items     map[int64]models.OrderItem
	payments  map[int64]models.Payment // by order id
	reviews   map[int64]models.Review
	history   []models.OrderHistoryEntry
	processed map[string]bool
	nextID    int64
}

func newState() *state {
	return &state{
		users:     map[int64]models.User{},
		books:     map[int64]models.Book{},
		cart:      map[int64]models.CartEntry{},
		orders:    map[int64]models.Order{},
		items:     map[int64]models.OrderItem{},
		payments:  map[int64]models.Payment{},
		reviews:   map[int64]models.Review{},
		processed: map[string]bool{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.books {
		c.books[k] = v
	}
	for k, v := range s.cart {
		c.cart[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	for k, v := range s.reviews {
		c.reviews[k] = v
	}
	for k, v := range s.processed {
		c.processed[k] = v
	}
	c.history = append([]models.OrderHistoryEntry(nil), s.history...)
	c.nextID = s.nextID
	return c
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

// Memory is an in-memory store. The zero value is not usable; call New.
type Memory struct {
	mu       sync.Mutex
	st       *state
	failures map[string]error
	txCount  int
}

// New returns an empty store
func New() *Memory {
	return &Memory{st: newState(), failures: map[string]error{}}
}

// FailOn makes the next call of the named transaction method return err
func (m *Memory) FailOn(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[method] = err
}

// TxCount returns how many transactions were started
func (m *Memory) TxCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.txCount
}

func (m *Memory) injected(method string) error {
	if err, ok := m.failures[method]; ok {
		delete(m.failures, method)
		return err
	}
	return nil
}

// InTx runs fn against a snapshot that is discarded when fn fails
func (m *Memory) InTx(ctx context.Context, fn func(tx store.OrderTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.txCount++
	saved := m.st.clone()
	if err := fn(&memTx{m: m}); err != nil {
		m.st = saved
		return err
	}
	return nil
}

// Seed helpers

// AddUser stores u and returns its id
func (m *Memory) AddUser(u models.User) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = m.st.id()
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	u.CreatedAt = time.Now()
	m.st.users[u.ID] = u
	return u.ID
}

// AddBook stores b with its derived status and returns its id
func (m *Memory) AddBook(b models.Book) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = m.st.id()
	b.Status = models.BookStatusFor(b.Stock)
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	m.st.books[b.ID] = b
	return b.ID
}

// PutCart adds a cart entry and returns its id
func (m *Memory) PutCart(userID, bookID int64, quantity int) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := models.CartEntry{ID: m.st.id(), UserID: userID, BookID: bookID, Quantity: quantity, CreatedAt: time.Now()}
	m.st.cart[e.ID] = e
	return e.ID
}

// Book returns a copy of a stored book
func (m *Memory) Book(id int64) models.Book {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.books[id]
}

// Order returns a copy of a stored order and whether it exists
func (m *Memory) Order(id int64) (models.Order, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.st.orders[id]
	return o, ok
}

// Payment returns the payment of an order and whether it exists
func (m *Memory) Payment(orderID int64) (models.Payment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.st.payments[orderID]
	return p, ok
}

// OrderItems returns the items of an order ordered by book id
func (m *Memory) OrderItems(orderID int64) []models.OrderItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.orderItems(orderID)
}

// Counts returns the number of orders, order items and payments
func (m *Memory) Counts() (orders, items, payments int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.st.orders), len(m.st.items), len(m.st.payments)
}

// CartSize returns the number of cart entries a user has
func (m *Memory) CartSize(userID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.st.cartLines(userID))
}

func (s *state) orderItems(orderID int64) []models.OrderItem {
	items := []models.OrderItem{}
	for _, it := range s.items {
		if it.OrderID == orderID {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].BookID < items[j].BookID })
	return items
}

func (s *state) cartLines(userID int64) []models.CartLine {
	lines := []models.CartLine{}
	for _, e := range s.cart {
		if e.UserID != userID {
			continue
		}
		lines = append(lines, models.CartLine{CartEntry: e, Book: s.books[e.BookID]})
	}
	return lines
}

// memTx mutates the live state; Memory.mu is held by InTx for its lifetime
type memTx struct {
	m *Memory
}

var _ store.OrderTx = (*memTx)(nil)

func (t *memTx) st() *state { return t.m.st }

func (t *memTx) LockCartLines(ctx context.Context, userID int64) ([]models.CartLine, error) {
	if err := t.m.injected("LockCartLines"); err != nil {
		return nil, err
	}
	lines := t.st().cartLines(userID)
	sort.Slice(lines, func(i, j int) bool { return lines[i].BookID < lines[j].BookID })
	return lines, nil
}

func (t *memTx) CreateOrder(ctx context.Context, order *models.Order) error {
	if err := t.m.injected("CreateOrder"); err != nil {
		return err
	}
	if order.IdempotencyKey != nil {
		for _, o := range t.st().orders {
			if o.UserID == order.UserID && o.IdempotencyKey != nil && *o.IdempotencyKey == *order.IdempotencyKey {
				return store.ErrConflict
			}
		}
	}
	order.ID = t.st().id()
	order.OrderDate = time.Now()
	order.UpdatedAt = order.OrderDate
	t.st().orders[order.ID] = *order
	return nil
}

func (t *memTx) CreateOrderItem(ctx context.Context, item *models.OrderItem) error {
	if err := t.m.injected("CreateOrderItem"); err != nil {
		return err
	}
	item.ID = t.st().id()
	t.st().items[item.ID] = *item
	return nil
}

func (t *memTx) DecrementStock(ctx context.Context, bookID int64, quantity int) error {
	if err := t.m.injected("DecrementStock"); err != nil {
		return err
	}
	b, ok := t.st().books[bookID]
	if !ok || b.Stock < quantity {
		return store.ErrInsufficientStock
	}
	b.Stock -= quantity
	b.Status = models.BookStatusFor(b.Stock)
	t.st().books[bookID] = b
	return nil
}

func (t *memTx) IncrementStock(ctx context.Context, bookID int64, quantity int) error {
	if err := t.m.injected("IncrementStock"); err != nil {
		return err
	}
	b, ok := t.st().books[bookID]
	if !ok {
		return store.ErrNotFound
	}
	b.Stock += quantity
	b.Status = models.BookStatusFor(b.Stock)
	t.st().books[bookID] = b
	return nil
}

func (t *memTx) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if err := t.m.injected("CreatePayment"); err != nil {
		return err
	}
	if _, exists := t.st().payments[payment.OrderID]; exists {
		return store.ErrConflict
	}
	payment.ID = t.st().id()
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = payment.CreatedAt
	t.st().payments[payment.OrderID] = *payment
	return nil
}

func (t *memTx) ClearCart(ctx context.Context, userID int64) (int64, error) {
	if err := t.m.injected("ClearCart"); err != nil {
		return 0, err
	}
	return t.st().clearCart(userID), nil
}

func (s *state) clearCart(userID int64) int64 {
	var n int64
	for id, e := range s.cart {
		if e.UserID == userID {
			delete(s.cart, id)
			n++
		}
	}
	return n
}

func (t *memTx) LockOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	if err := t.m.injected("LockOrder"); err != nil {
		return nil, err
	}
	o, ok := t.st().orders[orderID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &o, nil
}

func (t *memTx) GetOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	if err := t.m.injected("GetOrderItems"); err != nil {
		return nil, err
	}
	return t.st().orderItems(orderID), nil
}

func (t *memTx) GetPayment(ctx context.Context, orderID int64) (*models.Payment, error) {
	if err := t.m.injected("GetPayment"); err != nil {
		return nil, err
	}
	p, ok := t.st().payments[orderID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (t *memTx) SetOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	if err := t.m.injected("SetOrderStatus"); err != nil {
		return err
	}
	o, ok := t.st().orders[orderID]
	if !ok {
		return store.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	t.st().orders[orderID] = o
	return nil
}

func (t *memTx) SetPaymentStatus(ctx context.Context, orderID int64, status models.PaymentStatus) error {
	if err := t.m.injected("SetPaymentStatus"); err != nil {
		return err
	}
	p, ok := t.st().payments[orderID]
	if !ok {
		return store.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	t.st().payments[orderID] = p
	return nil
}

// Order reads

// RemovePayment deletes an order's payment, for orders created before payments existed
func (m *Memory) RemovePayment(orderID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.st.payments, orderID)
}

func (m *Memory) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.st.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &o, nil
}

func (m *Memory) GetOrderIDByIdempotencyKey(ctx context.Context, userID int64, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.st.orders {
		if o.UserID == userID && o.IdempotencyKey != nil && *o.IdempotencyKey == key {
			return o.ID, nil
		}
	}
	return 0, store.ErrNotFound
}

func (m *Memory) GetOrderDetail(ctx context.Context, id int64) (*models.OrderDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.st.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	d := m.st.detail(o, true)
	return &d, nil
}

func (m *Memory) ListOrderDetailsByUser(ctx context.Context, userID int64) ([]models.OrderDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	details := []models.OrderDetail{}
	for _, o := range m.st.sortedOrders() {
		if o.UserID == userID {
			details = append(details, m.st.detail(o, false))
		}
	}
	return details, nil
}

func (m *Memory) ListOrderDetails(ctx context.Context, limit int) ([]models.OrderDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	details := []models.OrderDetail{}
	for _, o := range m.st.sortedOrders() {
		if limit > 0 && len(details) == limit {
			break
		}
		details = append(details, m.st.detail(o, true))
	}
	return details, nil
}

func (s *state) sortedOrders() []models.Order {
	orders := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders
}

func (s *state) detail(o models.Order, withUser bool) models.OrderDetail {
	d := models.OrderDetail{Order: o, Items: []models.OrderItemDetail{}}
	for _, it := range s.orderItems(o.ID) {
		b := s.books[it.BookID]
		d.Items = append(d.Items, models.OrderItemDetail{OrderItem: it, Book: &b})
	}
	if p, ok := s.payments[o.ID]; ok {
		d.Payment = &p
	}
	if u, ok := s.users[o.UserID]; ok && withUser {
		d.User = &models.UserSummary{ID: u.ID, Username: u.Username, Email: u.Email}
	}
	return d
}

// History

func (m *Memory) RecordOrderEvent(ctx context.Context, entry *models.OrderHistoryEntry) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.st.processed[entry.EventID] {
		return false, nil
	}
	m.st.processed[entry.EventID] = true
	entry.ID = m.st.id()
	m.st.history = append(m.st.history, *entry)
	return true, nil
}

func (m *Memory) ListOrderHistory(ctx context.Context, orderID int64) ([]models.OrderHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := []models.OrderHistoryEntry{}
	for _, e := range m.st.history {
		if e.OrderID == orderID {
			entries = append(entries, e)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].OccurredAt.Before(entries[j].OccurredAt) })
	return entries, nil
}

// Books

func (m *Memory) CreateBook(ctx context.Context, book *models.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if book.ISBN != nil {
		for _, b := range m.st.books {
			if b.ISBN != nil && *b.ISBN == *book.ISBN {
				return store.ErrConflict
			}
		}
	}
	book.ID = m.st.id()
	book.Status = models.BookStatusFor(book.Stock)
	book.CreatedAt = time.Now()
	book.UpdatedAt = book.CreatedAt
	m.st.books[book.ID] = *book
	return nil
}

func (m *Memory) GetBookByID(ctx context.Context, id int64) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.st.books[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &b, nil
}

func (m *Memory) FindDuplicateBook(ctx context.Context, isbn *string, title, author string) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.st.books {
		if (isbn != nil && b.ISBN != nil && *b.ISBN == *isbn) || (b.Title == title && b.Author == author) {
			return &b, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Memory) ListBooks(ctx context.Context, f store.BookFilter) ([]models.Book, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	contains := func(field, sub string) bool {
		return sub == "" || strings.Contains(strings.ToLower(field), strings.ToLower(sub))
	}

	matched := []models.Book{}
	for _, b := range m.st.books {
		if !contains(b.Title, f.Title) || !contains(b.Author, f.Author) || !contains(b.Genre, f.Genre) {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.MinPrice != nil && b.Price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && b.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		matched = append(matched, b)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Title < matched[j].Title })

	total := int64(len(matched))
	if f.Offset >= len(matched) {
		return []models.Book{}, total, nil
	}
	end := f.Offset + f.Limit
	if f.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[f.Offset:end], total, nil
}

func (m *Memory) UpdateBook(ctx context.Context, book *models.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.st.books[book.ID]; !ok {
		return store.ErrNotFound
	}
	book.Status = models.BookStatusFor(book.Stock)
	book.UpdatedAt = time.Now()
	m.st.books[book.ID] = *book
	return nil
}

func (m *Memory) SetBookStock(ctx context.Context, id int64, stock int) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.st.books[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	b.Stock = stock
	b.Status = models.BookStatusFor(stock)
	b.UpdatedAt = time.Now()
	m.st.books[id] = b
	return &b, nil
}

func (m *Memory) DeleteBook(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.st.books[id]; !ok {
		return store.ErrNotFound
	}
	for _, it := range m.st.items {
		if it.BookID == id {
			return store.ErrInvalidReference
		}
	}
	delete(m.st.books, id)
	for cid, e := range m.st.cart {
		if e.BookID == id {
			delete(m.st.cart, cid)
		}
	}
	return nil
}

// Cart

func (m *Memory) GetCartLines(ctx context.Context, userID int64) ([]models.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := m.st.cartLines(userID)
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines, nil
}

func (m *Memory) AddToCart(ctx context.Context, userID, bookID int64, quantity int) (*models.CartEntry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.st.books[bookID]; !ok {
		return nil, false, store.ErrInvalidReference
	}
	for id, e := range m.st.cart {
		if e.UserID == userID && e.BookID == bookID {
			e.Quantity += quantity
			m.st.cart[id] = e
			return &e, false, nil
		}
	}
	e := models.CartEntry{ID: m.st.id(), UserID: userID, BookID: bookID, Quantity: quantity, CreatedAt: time.Now()}
	m.st.cart[e.ID] = e
	return &e, true, nil
}

func (m *Memory) SetCartQuantity(ctx context.Context, id int64, quantity int) (*models.CartEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.st.cart[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	e.Quantity = quantity
	m.st.cart[id] = e
	return &e, nil
}

func (m *Memory) DeleteCartEntry(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.st.cart[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.st.cart, id)
	return nil
}

func (m *Memory) ClearCart(ctx context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.clearCart(userID), nil
}

// Users

func (m *Memory) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.st.users {
		if u.Email == user.Email {
			return store.ErrConflict
		}
	}
	user.ID = m.st.id()
	user.CreatedAt = time.Now()
	m.st.users[user.ID] = *user
	return nil
}

func (m *Memory) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.st.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.st.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Memory) EmailTaken(ctx context.Context, email string, exceptUserID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.st.users {
		if u.Email == email && u.ID != exceptUserID {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) UpdateUserProfile(ctx context.Context, id int64, username, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.st.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u.Username = username
	u.Email = email
	m.st.users[id] = u
	return &u, nil
}

func (m *Memory) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.st.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Password = passwordHash
	m.st.users[id] = u
	return nil
}

// Reviews

func (m *Memory) CreateReview(ctx context.Context, review *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.st.reviews {
		if r.UserID == review.UserID && r.BookID == review.BookID {
			return store.ErrConflict
		}
	}
	if _, ok := m.st.books[review.BookID]; !ok {
		return store.ErrInvalidReference
	}
	review.ID = m.st.id()
	review.CreatedAt = time.Now()
	m.st.reviews[review.ID] = *review
	return nil
}

func (m *Memory) GetReview(ctx context.Context, id int64) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.st.reviews[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (m *Memory) ListReviewsByBook(ctx context.Context, bookID int64, limit, offset int, ascending bool) ([]models.ReviewDetail, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := []models.ReviewDetail{}
	for _, r := range m.st.reviews {
		if r.BookID != bookID {
			continue
		}
		all = append(all, models.ReviewDetail{
			Review:    r,
			Username:  m.st.users[r.UserID].Username,
			BookTitle: m.st.books[r.BookID].Title,
		})
	}
	sort.Slice(all, func(i, j int) bool {
		if ascending {
			return all[i].ID < all[j].ID
		}
		return all[i].ID > all[j].ID
	})

	total := int64(len(all))
	if offset >= len(all) {
		return []models.ReviewDetail{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *Memory) UpdateReview(ctx context.Context, review *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.st.reviews[review.ID]
	if !ok {
		return store.ErrNotFound
	}
	r.Rating = review.Rating
	r.Comment = review.Comment
	m.st.reviews[review.ID] = r
	return nil
}

func (m *Memory) DeleteReview(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.st.reviews[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.st.reviews, id)
	return nil
}

func (m *Memory) AverageRating(ctx context.Context, bookID int64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum, n int
	for _, r := range m.st.reviews {
		if r.BookID == bookID {
			sum += r.Rating
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}
