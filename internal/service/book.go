package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bookshelf/bookshelf/internal/cache"
	"github.com/bookshelf/bookshelf/internal/metrics"
	"github.com/bookshelf/bookshelf/internal/model"
	"github.com/bookshelf/bookshelf/internal/repository"
)

// BookService handles book business logic.
type BookService struct {
	store   BookStore
	cache   BookCache
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewBookService creates a new BookService. cache may be nil.
func NewBookService(store BookStore, cache BookCache, recorder metrics.Recorder, logger *slog.Logger) *BookService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BookService{
		store:   store,
		cache:   cache,
		metrics: recorder,
		logger:  logger,
		now:     time.Now,
	}
}

// BookInput defines the editable fields of a book.
type BookInput struct {
	Title  string
	Author string
	Year   int
	Pages  int
}

func (s *BookService) validate(input BookInput) error {
	v := &ValidationError{}
	validateBookFields(v, input.Title, input.Author, input.Year, input.Pages, s.now().Year())
	return v.err()
}

// Create lists a new book owned by the principal.
func (s *BookService) Create(ctx context.Context, principal *model.Principal, input BookInput) (*model.Book, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	book := &model.Book{
		Title:    strings.TrimSpace(input.Title),
		Author:   strings.TrimSpace(input.Author),
		Year:     input.Year,
		Pages:    input.Pages,
		SellerID: principal.SellerID,
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		if errors.Is(err, repository.ErrSellerMissing) {
			// The seller was deleted between authorization and insert.
			return nil, ErrSellerNotFound
		}
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	s.metrics.IncBookCreated()

	return book, nil
}

// List returns every book ordered by id.
func (s *BookService) List(ctx context.Context) ([]*model.Book, error) {
	return s.store.ListBooks(ctx)
}

// Get returns a book by id, reading through the cache when one is configured.
func (s *BookService) Get(ctx context.Context, id int64) (*model.Book, error) {
	if s.cache != nil {
		book, err := s.cache.GetBook(ctx, id)
		switch {
		case err == nil:
			s.metrics.IncBookCacheHit()
			return book, nil
		case errors.Is(err, cache.ErrCacheMiss):
			s.metrics.IncBookCacheMiss()
		default:
			// Redis error - fall through to DB
			s.logger.Warn("book cache read failed", "book_id", id, "error", err)
		}
	}

	book, err := s.getBook(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetBook(ctx, book); err != nil {
			s.logger.Warn("book cache fill failed", "book_id", id, "error", err)
		}
	}

	return book, nil
}

// Update replaces the fields of a book owned by the principal.
func (s *BookService) Update(ctx context.Context, principal *model.Principal, id int64, input BookInput) (*model.Book, error) {
	book, err := s.getBook(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.Owns(book.SellerID) {
		return nil, ErrNotOwner
	}
	if err := s.validate(input); err != nil {
		return nil, err
	}

	book.Title = strings.TrimSpace(input.Title)
	book.Author = strings.TrimSpace(input.Author)
	book.Year = input.Year
	book.Pages = input.Pages

	if err := s.store.UpdateBook(ctx, book); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	s.metrics.IncBookUpdated()
	s.invalidate(ctx, id)

	return book, nil
}

// Delete removes a book owned by the principal.
func (s *BookService) Delete(ctx context.Context, principal *model.Principal, id int64) error {
	book, err := s.getBook(ctx, id)
	if err != nil {
		return err
	}
	if !principal.Owns(book.SellerID) {
		return ErrNotOwner
	}

	if err := s.store.DeleteBook(ctx, id); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return ErrBookNotFound
		}
		return fmt.Errorf("failed to delete book: %w", err)
	}

	s.metrics.IncBookDeleted()
	s.invalidate(ctx, id)

	return nil
}

func (s *BookService) getBook(ctx context.Context, id int64) (*model.Book, error) {
	book, err := s.store.GetBookByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

func (s *BookService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteBooks(ctx, id); err != nil {
		s.logger.Warn("book cache invalidation failed", "book_id", id, "error", err)
	}
}
