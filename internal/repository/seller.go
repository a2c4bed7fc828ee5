package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bookshelf/bookshelf/internal/model"
)

// Common errors for seller repository operations.
var (
	ErrSellerNotFound = errors.New("seller not found")
	ErrEmailExists    = errors.New("email already exists")
)

const sellerColumns = `id, first_name, last_name, e_mail, hash_password`

// CreateSeller inserts a new seller and sets its generated ID.
func (r *Repository) CreateSeller(ctx context.Context, seller *model.Seller) error {
	query := `
		INSERT INTO sellers (first_name, last_name, e_mail, hash_password)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		seller.FirstName,
		seller.LastName,
		seller.Email,
		seller.PasswordHash,
	).Scan(&seller.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create seller: %w", err)
	}

	return nil
}

// GetSellerByID retrieves a seller by their ID.
func (r *Repository) GetSellerByID(ctx context.Context, id int64) (*model.Seller, error) {
	query := `SELECT ` + sellerColumns + ` FROM sellers WHERE id = $1`

	seller, err := scanSeller(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSellerNotFound
		}
		return nil, fmt.Errorf("failed to get seller by ID: %w", err)
	}

	return seller, nil
}

// GetSellerByEmail retrieves a seller by login key, ignoring letter case.
func (r *Repository) GetSellerByEmail(ctx context.Context, email string) (*model.Seller, error) {
	query := `SELECT ` + sellerColumns + ` FROM sellers WHERE lower(e_mail) = lower($1)`

	seller, err := scanSeller(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSellerNotFound
		}
		return nil, fmt.Errorf("failed to get seller by email: %w", err)
	}

	return seller, nil
}

// ListSellers returns all sellers ordered by ID.
func (r *Repository) ListSellers(ctx context.Context) ([]*model.Seller, error) {
	query := `SELECT ` + sellerColumns + ` FROM sellers ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sellers: %w", err)
	}
	defer rows.Close()

	sellers := make([]*model.Seller, 0)
	for rows.Next() {
		seller, err := scanSeller(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan seller: %w", err)
		}
		sellers = append(sellers, seller)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sellers: %w", err)
	}

	return sellers, nil
}

// UpdateSeller updates profile fields. The password hash is not touched.
func (r *Repository) UpdateSeller(ctx context.Context, seller *model.Seller) error {
	query := `
		UPDATE sellers
		SET first_name = $2, last_name = $3, e_mail = $4
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		seller.ID,
		seller.FirstName,
		seller.LastName,
		seller.Email,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to update seller: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSellerNotFound
	}

	return nil
}

// DeleteSeller removes a seller and their books in one transaction.
// Returns the IDs of the deleted books.
func (r *Repository) DeleteSeller(ctx context.Context, id int64) ([]int64, error) {
	var bookIDs []int64

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `DELETE FROM books WHERE seller_id = $1 RETURNING id`, id)
		if err != nil {
			return fmt.Errorf("delete books: %w", err)
		}
		bookIDs, err = pgx.CollectRows(rows, pgx.RowTo[int64])
		if err != nil {
			return fmt.Errorf("collect deleted books: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM sellers WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete seller: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrSellerNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSellerNotFound) {
			return nil, ErrSellerNotFound
		}
		return nil, fmt.Errorf("failed to delete seller: %w", err)
	}

	return bookIDs, nil
}

func scanSeller(row pgx.Row) (*model.Seller, error) {
	var seller model.Seller
	err := row.Scan(
		&seller.ID,
		&seller.FirstName,
		&seller.LastName,
		&seller.Email,
		&seller.PasswordHash,
	)
	if err != nil {
		return nil, err
	}
	return &seller, nil
}
