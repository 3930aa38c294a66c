package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookstore-service/internal/models"
	"bookstore-service/internal/store"
	"bookstore-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BookStore is the persistence the catalog needs
type BookStore interface {
	CreateBook(ctx context.Context, book *models.Book) error
	GetBookByID(ctx context.Context, id int64) (*models.Book, error)
	FindDuplicateBook(ctx context.Context, isbn *string, title, author string) (*models.Book, error)
	ListBooks(ctx context.Context, filter store.BookFilter) ([]models.Book, int64, error)
	UpdateBook(ctx context.Context, book *models.Book) error
	SetBookStock(ctx context.Context, id int64, stock int) (*models.Book, error)
	DeleteBook(ctx context.Context, id int64) error
}

// CatalogService manages books and their stock counts
type CatalogService struct {
	store  BookStore
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store BookStore) *CatalogService {
	return &CatalogService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// AddBookRequest represents a new catalog entry
type AddBookRequest struct {
	Title       string           `json:"title" binding:"required"`
	Author      string           `json:"author" binding:"required"`
	Genre       string           `json:"genre"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Stock       *int             `json:"stock" binding:"required"`
	Description string           `json:"description"`
	ImageURL    string           `json:"imageUrl"`
	ISBN        *string          `json:"isbn"`
}

// UpdateBookRequest is a partial book edit; nil fields are left unchanged
type UpdateBookRequest struct {
	Title       *string          `json:"title"`
	Author      *string          `json:"author"`
	Genre       *string          `json:"genre"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Description *string          `json:"description"`
	ImageURL    *string          `json:"imageUrl"`
	ISBN        *string          `json:"isbn"`
}

// ListBooksRequest carries catalog query parameters
type ListBooksRequest struct {
	Title    string `form:"title"`
	Author   string `form:"author"`
	Genre    string `form:"genre"`
	Status   string `form:"status"`
	MinPrice string `form:"minPrice"`
	MaxPrice string `form:"maxPrice"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

// Pagination describes one page of a listing
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int64 `json:"pages"`
}

// BookPage is one page of the catalog
type BookPage struct {
	Books      []models.Book `json:"books"`
	Pagination Pagination    `json:"pagination"`
}

// AddBook creates a book unless one with the same ISBN, or the same title and author, exists
func (s *CatalogService) AddBook(ctx context.Context, req *AddBookRequest) (*models.Book, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.AddBook")
	defer span.End()

	if req.Price.IsNegative() {
		return nil, invalid("price must not be negative")
	}
	if *req.Stock < 0 {
		return nil, ErrInvalidStock
	}
	isbn := normalizeISBN(req.ISBN)

	if _, err := s.store.FindDuplicateBook(ctx, isbn, req.Title, req.Author); err == nil {
		return nil, ErrDuplicateBook
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to check duplicate book: %w", err)
	}

	book := &models.Book{
		Title:       strings.TrimSpace(req.Title),
		Author:      strings.TrimSpace(req.Author),
		Genre:       req.Genre,
		Price:       *req.Price,
		Stock:       *req.Stock,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		ISBN:        isbn,
	}
	if err := s.store.CreateBook(ctx, book); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrDuplicateBook
		}
		return nil, fmt.Errorf("failed to add book: %w", err)
	}

	s.logger.Info("Book added", zap.Int64("book_id", book.ID), zap.String("title", book.Title))
	return book, nil
}

// ListBooks returns one page of books matching the query, sorted by title
func (s *CatalogService) ListBooks(ctx context.Context, req *ListBooksRequest) (*BookPage, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListBooks")
	defer span.End()

	page, limit := normalizePage(req.Page, req.Limit)
	filter := store.BookFilter{
		Title:  req.Title,
		Author: req.Author,
		Genre:  req.Genre,
		Status: req.Status,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	var err error
	if filter.MinPrice, err = parsePrice(req.MinPrice); err != nil {
		return nil, invalid("invalid minPrice")
	}
	if filter.MaxPrice, err = parsePrice(req.MaxPrice); err != nil {
		return nil, invalid("invalid maxPrice")
	}

	books, total, err := s.store.ListBooks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch books: %w", err)
	}

	return &BookPage{
		Books:      books,
		Pagination: newPagination(total, page, limit),
	}, nil
}

// GetBook retrieves a book by ID
func (s *CatalogService) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetBook")
	defer span.End()

	book, err := s.store.GetBookByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch book: %w", err)
	}
	return book, nil
}

// UpdateBook applies a partial edit. Status is derived from the resulting stock.
func (s *CatalogService) UpdateBook(ctx context.Context, id int64, req *UpdateBookRequest) (*models.Book, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateBook")
	defer span.End()

	book, err := s.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		book.Title = strings.TrimSpace(*req.Title)
	}
	if req.Author != nil {
		book.Author = strings.TrimSpace(*req.Author)
	}
	if req.Genre != nil {
		book.Genre = *req.Genre
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, invalid("price must not be negative")
		}
		book.Price = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, ErrInvalidStock
		}
		book.Stock = *req.Stock
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.ImageURL != nil {
		book.ImageURL = *req.ImageURL
	}
	if req.ISBN != nil {
		book.ISBN = normalizeISBN(req.ISBN)
	}
	if book.Title == "" || book.Author == "" {
		return nil, invalid("title and author must not be empty")
	}

	if err := s.store.UpdateBook(ctx, book); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrBookNotFound
		case errors.Is(err, store.ErrConflict):
			return nil, ErrDuplicateBook
		}
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	s.logger.Info("Book updated", zap.Int64("book_id", book.ID), zap.Int("stock", book.Stock))
	return book, nil
}

// DeleteBook removes a book that no order references
func (s *CatalogService) DeleteBook(ctx context.Context, id int64) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.DeleteBook")
	defer span.End()

	err := s.store.DeleteBook(ctx, id)
	switch {
	case err == nil:
		s.logger.Info("Book deleted", zap.Int64("book_id", id))
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrBookNotFound
	case errors.Is(err, store.ErrInvalidReference):
		return ErrBookReferenced
	}
	return fmt.Errorf("failed to delete book: %w", err)
}

// SetStock replaces a book's stock count
func (s *CatalogService) SetStock(ctx context.Context, id int64, stock int) (*models.Book, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.SetStock")
	defer span.End()

	if stock < 0 {
		return nil, ErrInvalidStock
	}

	book, err := s.store.SetBookStock(ctx, id, stock)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	s.logger.Info("Stock updated", zap.Int64("book_id", id), zap.Int("stock", stock))
	return book, nil
}

func normalizeISBN(isbn *string) *string {
	if isbn == nil {
		return nil
	}
	v := strings.TrimSpace(*isbn)
	if v == "" {
		return nil
	}
	return &v
}

func parsePrice(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func newPagination(total int64, page, limit int) Pagination {
	return Pagination{
		Total: total,
		Page:  page,
		Pages: (total + int64(limit) - 1) / int64(limit),
	}
}
