// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"

	"github.com/bookshelf/bookshelf/internal/model"
)

// Service errors.
var (
	ErrSellerNotFound = errors.New("seller not found")
	ErrEmailTaken     = errors.New("email already registered")
	ErrBookNotFound   = errors.New("book not found")
	ErrNotOwner       = errors.New("resource belongs to another seller")
)

// SellerStore persists sellers. repository.Repository and memory.Store implement it.
type SellerStore interface {
	CreateSeller(ctx context.Context, seller *model.Seller) error
	GetSellerByID(ctx context.Context, id int64) (*model.Seller, error)
	ListSellers(ctx context.Context) ([]*model.Seller, error)
	UpdateSeller(ctx context.Context, seller *model.Seller) error
	DeleteSeller(ctx context.Context, id int64) ([]int64, error)
}

// BookStore persists books.
type BookStore interface {
	CreateBook(ctx context.Context, book *model.Book) error
	GetBookByID(ctx context.Context, id int64) (*model.Book, error)
	ListBooks(ctx context.Context) ([]*model.Book, error)
	ListBooksBySeller(ctx context.Context, sellerID int64) ([]*model.Book, error)
	UpdateBook(ctx context.Context, book *model.Book) error
	DeleteBook(ctx context.Context, id int64) error
}

// Store is the full persistence contract used by the services.
type Store interface {
	SellerStore
	BookStore
}

// BookCache is an optional read-through cache for single books.
// GetBook returns cache.ErrCacheMiss when the entry is absent.
type BookCache interface {
	GetBook(ctx context.Context, id int64) (*model.Book, error)
	SetBook(ctx context.Context, book *model.Book) error
	DeleteBooks(ctx context.Context, ids ...int64) error
}
