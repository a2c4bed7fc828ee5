package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bookshelf/bookshelf/internal/model"
)

// Common errors for book repository operations.
var (
	ErrBookNotFound  = errors.New("book not found")
	ErrSellerMissing = errors.New("book seller does not exist")
)

const bookColumns = `id, title, author, year, pages, seller_id`

// CreateBook inserts a new book and sets its generated ID.
func (r *Repository) CreateBook(ctx context.Context, book *model.Book) error {
	query := `
		INSERT INTO books (title, author, year, pages, seller_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		book.Title,
		book.Author,
		book.Year,
		book.Pages,
		book.SellerID,
	).Scan(&book.ID)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrSellerMissing
		}
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

// GetBookByID retrieves a book by its ID.
func (r *Repository) GetBookByID(ctx context.Context, id int64) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	book, err := scanBook(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book by ID: %w", err)
	}

	return book, nil
}

// ListBooks returns all books ordered by ID.
func (r *Repository) ListBooks(ctx context.Context) ([]*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY id`
	return r.queryBooks(ctx, query)
}

// ListBooksBySeller returns the books listed by a seller, ordered by ID.
func (r *Repository) ListBooksBySeller(ctx context.Context, sellerID int64) ([]*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE seller_id = $1 ORDER BY id`
	return r.queryBooks(ctx, query, sellerID)
}

// UpdateBook updates a book's descriptive fields. Ownership never changes.
func (r *Repository) UpdateBook(ctx context.Context, book *model.Book) error {
	query := `
		UPDATE books
		SET title = $2, author = $3, year = $4, pages = $5
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		book.Year,
		book.Pages,
	)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookNotFound
	}

	return nil
}

// DeleteBook removes a book.
func (r *Repository) DeleteBook(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookNotFound
	}
	return nil
}

func (r *Repository) queryBooks(ctx context.Context, query string, args ...any) ([]*model.Book, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := make([]*model.Book, 0)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}

	return books, nil
}

func scanBook(row pgx.Row) (*model.Book, error) {
	var book model.Book
	err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Year,
		&book.Pages,
		&book.SellerID,
	)
	if err != nil {
		return nil, err
	}
	return &book, nil
}
