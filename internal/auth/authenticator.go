package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookshelf/bookshelf/internal/model"
	"github.com/bookshelf/bookshelf/internal/repository"
)

// ErrInvalidCredentials is the single outcome of a failed login.
// Unknown login keys and wrong passwords are indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials")

// SellerLookup resolves a seller by login key.
// Implementations return repository.ErrSellerNotFound when none exists.
type SellerLookup interface {
	GetSellerByEmail(ctx context.Context, email string) (*model.Seller, error)
}

// Authenticator checks a login key and plaintext password against stored credentials.
type Authenticator struct {
	sellers SellerLookup
	hasher  *PasswordHasher
}

// NewAuthenticator creates a new Authenticator.
func NewAuthenticator(sellers SellerLookup, hasher *PasswordHasher) *Authenticator {
	return &Authenticator{
		sellers: sellers,
		hasher:  hasher,
	}
}

// Authenticate returns the seller whose credentials match.
// Storage failures are returned wrapped; every other failure is ErrInvalidCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, login, password string) (*model.Seller, error) {
	seller, err := a.sellers.GetSellerByEmail(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrSellerNotFound) {
			// Spend the same hashing work as a real check.
			a.hasher.Verify(password, a.hasher.DummyHash())
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup seller: %w", err)
	}

	if !a.hasher.Verify(password, seller.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return seller, nil
}
