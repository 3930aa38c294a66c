package store

import (
	"context"
	"fmt"
	"strings"

	"bookstore-service/internal/models"

	"github.com/shopspring/decimal"
)

var bookColumns = []string{
	"id", "title", "author", "genre", "price", "stock", "status",
	"description", "image_url", "isbn", "created_at", "updated_at",
}

// prefixedBookColumns selects book columns from alias into a nested struct field
func prefixedBookColumns(alias, prefix string) string {
	cols := make([]string, len(bookColumns))
	for i, c := range bookColumns {
		cols[i] = fmt.Sprintf(`%s.%s AS "%s.%s"`, alias, c, prefix, c)
	}
	return strings.Join(cols, ", ")
}

// BookFilter narrows a catalog listing
type BookFilter struct {
	Title    string
	Author   string
	Genre    string
	Status   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Limit    int
	Offset   int
}

// CreateBook inserts a catalog entry
func (s *Store) CreateBook(ctx context.Context, book *models.Book) error {
	query := `
		INSERT INTO books (title, author, genre, price, stock, status, description, image_url, isbn)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	row := s.db.QueryRowxContext(ctx, query,
		book.Title, book.Author, book.Genre, book.Price, book.Stock,
		models.BookStatusFor(book.Stock), book.Description, book.ImageURL, book.ISBN)
	if err := row.Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt); err != nil {
		return mapError(err)
	}
	book.Status = models.BookStatusFor(book.Stock)
	return nil
}

// GetBookByID retrieves a book by ID
func (s *Store) GetBookByID(ctx context.Context, id int64) (*models.Book, error) {
	var book models.Book
	if err := s.db.GetContext(ctx, &book, "SELECT * FROM books WHERE id = $1", id); err != nil {
		return nil, mapError(err)
	}
	return &book, nil
}

// FindDuplicateBook returns a book sharing the ISBN, or the same title and author
func (s *Store) FindDuplicateBook(ctx context.Context, isbn *string, title, author string) (*models.Book, error) {
	var book models.Book
	err := s.db.GetContext(ctx, &book, `
		SELECT * FROM books
		WHERE ($1::text IS NOT NULL AND isbn = $1) OR (title = $2 AND author = $3)
		LIMIT 1`,
		isbn, title, author)
	if err != nil {
		return nil, mapError(err)
	}
	return &book, nil
}

// ListBooks returns one page of books matching filter and the total match count
func (s *Store) ListBooks(ctx context.Context, filter BookFilter) ([]models.Book, int64, error) {
	where := []string{"TRUE"}
	var args []interface{}
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.Title != "" {
		add("title ILIKE $%d", "%"+filter.Title+"%")
	}
	if filter.Author != "" {
		add("author ILIKE $%d", "%"+filter.Author+"%")
	}
	if filter.Genre != "" {
		add("genre ILIKE $%d", "%"+filter.Genre+"%")
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.MinPrice != nil {
		add("price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("price <= $%d", *filter.MaxPrice)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM books WHERE "+cond, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT * FROM books WHERE %s ORDER BY title ASC LIMIT $%d OFFSET $%d",
		cond, len(args)+1, len(args)+2)
	books := []models.Book{}
	if err := s.db.SelectContext(ctx, &books, query, append(args, filter.Limit, filter.Offset)...); err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

// UpdateBook overwrites the editable fields of a book; status follows stock
func (s *Store) UpdateBook(ctx context.Context, book *models.Book) error {
	book.Status = models.BookStatusFor(book.Stock)
	row := s.db.QueryRowxContext(ctx, `
		UPDATE books
		SET title = $1, author = $2, genre = $3, price = $4, stock = $5, status = $6,
		    description = $7, image_url = $8, isbn = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at`,
		book.Title, book.Author, book.Genre, book.Price, book.Stock, book.Status,
		book.Description, book.ImageURL, book.ISBN, book.ID)
	return mapError(row.Scan(&book.UpdatedAt))
}

// SetBookStock replaces a book's stock count
func (s *Store) SetBookStock(ctx context.Context, id int64, stock int) (*models.Book, error) {
	var book models.Book
	err := s.db.GetContext(ctx, &book, `
		UPDATE books SET stock = $1, status = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING *`,
		stock, models.BookStatusFor(stock), id)
	if err != nil {
		return nil, mapError(err)
	}
	return &book, nil
}

// DeleteBook removes a book. Books referenced by orders yield ErrInvalidReference.
func (s *Store) DeleteBook(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM books WHERE id = $1", id)
	return expectOne(res, err)
}
