package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bookshelf/bookshelf/internal/metrics"
	"github.com/bookshelf/bookshelf/internal/model"
	"github.com/bookshelf/bookshelf/internal/repository"
)

// PasswordHasher derives the stored credential from a plaintext password.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// SellerService handles seller business logic.
type SellerService struct {
	store   Store
	hasher  PasswordHasher
	cache   BookCache
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewSellerService creates a new SellerService. cache may be nil.
func NewSellerService(store Store, hasher PasswordHasher, cache BookCache, recorder metrics.Recorder, logger *slog.Logger) *SellerService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SellerService{
		store:   store,
		hasher:  hasher,
		cache:   cache,
		metrics: recorder,
		logger:  logger,
	}
}

// RegisterSellerInput defines input for registering a seller.
type RegisterSellerInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Register validates the input, hashes the password and stores a new seller.
func (s *SellerService) Register(ctx context.Context, input RegisterSellerInput) (*model.Seller, error) {
	v := &ValidationError{}
	validateName(v, "first_name", input.FirstName)
	validateName(v, "last_name", input.LastName)
	validateEmail(v, input.Email)
	validatePassword(v, input.Password)
	if err := v.err(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	seller := &model.Seller{
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        input.Email,
		PasswordHash: hash,
	}

	if err := s.store.CreateSeller(ctx, seller); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create seller: %w", err)
	}

	s.metrics.IncSellerRegistered()

	return seller, nil
}

// List returns every seller ordered by id.
func (s *SellerService) List(ctx context.Context) ([]*model.Seller, error) {
	return s.store.ListSellers(ctx)
}

// Get returns a seller together with their books.
func (s *SellerService) Get(ctx context.Context, id int64) (*model.SellerWithBooks, error) {
	seller, err := s.getSeller(ctx, id)
	if err != nil {
		return nil, err
	}

	books, err := s.store.ListBooksBySeller(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list seller books: %w", err)
	}

	return &model.SellerWithBooks{Seller: *seller, Books: books}, nil
}

// UpdateSellerInput defines input for updating a seller profile.
type UpdateSellerInput struct {
	FirstName string
	LastName  string
	Email     string
}

// Update changes the profile of the seller the principal is signed in as.
func (s *SellerService) Update(ctx context.Context, principal *model.Principal, id int64, input UpdateSellerInput) (*model.Seller, error) {
	seller, err := s.getSeller(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.Owns(seller.ID) {
		return nil, ErrNotOwner
	}

	v := &ValidationError{}
	validateName(v, "first_name", input.FirstName)
	validateName(v, "last_name", input.LastName)
	validateEmail(v, input.Email)
	if err := v.err(); err != nil {
		return nil, err
	}

	seller.FirstName = strings.TrimSpace(input.FirstName)
	seller.LastName = strings.TrimSpace(input.LastName)
	seller.Email = input.Email

	if err := s.store.UpdateSeller(ctx, seller); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrSellerNotFound):
			return nil, ErrSellerNotFound
		}
		return nil, fmt.Errorf("failed to update seller: %w", err)
	}

	return seller, nil
}

// Delete removes the principal's own account and all of their books.
func (s *SellerService) Delete(ctx context.Context, principal *model.Principal, id int64) error {
	seller, err := s.getSeller(ctx, id)
	if err != nil {
		return err
	}
	if !principal.Owns(seller.ID) {
		return ErrNotOwner
	}

	bookIDs, err := s.store.DeleteSeller(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSellerNotFound) {
			return ErrSellerNotFound
		}
		return fmt.Errorf("failed to delete seller: %w", err)
	}

	s.metrics.IncSellerDeleted()

	if s.cache != nil {
		if err := s.cache.DeleteBooks(ctx, bookIDs...); err != nil {
			s.logger.Warn("book cache invalidation failed",
				"seller_id", id,
				"books", len(bookIDs),
				"error", err,
			)
		}
	}

	return nil
}

func (s *SellerService) getSeller(ctx context.Context, id int64) (*model.Seller, error) {
	seller, err := s.store.GetSellerByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSellerNotFound) {
			return nil, ErrSellerNotFound
		}
		return nil, err
	}
	return seller, nil
}
