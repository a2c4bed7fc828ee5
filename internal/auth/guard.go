package auth

import (
	"context"
	"errors"

	"github.com/bookshelf/bookshelf/internal/model"
	"github.com/bookshelf/bookshelf/internal/repository"
)

// ErrUnauthorized is the only failure visible outside the guard.
var ErrUnauthorized = errors.New("unauthorized")

// Cause says which authorization check rejected a request.
// It is meant for logs and metrics, never for responses.
type Cause string

// Rejection causes.
const (
	CauseMissingToken   Cause = "missing_token"
	CauseMalformedToken Cause = "malformed_token"
	CauseExpiredToken   Cause = "expired_token"
	CauseBadSignature   Cause = "bad_signature"
	CauseBadAlgorithm   Cause = "bad_algorithm"
	CauseInvalidClaims  Cause = "invalid_claims"
	CauseMissingSubject Cause = "missing_subject"
	CauseUnknownSubject Cause = "unknown_subject"
	CauseStaleSubject   Cause = "stale_subject"
	CauseLookupFailed   Cause = "lookup_failed"
)

// AuthError is returned by Guard.Authorize. It matches ErrUnauthorized.
type AuthError struct {
	Cause Cause
	Err   error
}

func (e *AuthError) Error() string {
	return "unauthorized: " + string(e.Cause)
}

// Is makes errors.Is(err, ErrUnauthorized) true for every AuthError.
func (e *AuthError) Is(target error) bool {
	return target == ErrUnauthorized
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// CauseOf extracts the rejection cause from err, or "" if err is not an AuthError.
func CauseOf(err error) Cause {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Cause
	}
	return ""
}

// Guard resolves bearer tokens to live principals.
// Nothing is cached: each call re-checks signature, expiry and that the seller still exists.
type Guard struct {
	codec   *TokenCodec
	sellers SellerLookup
}

// NewGuard creates a new Guard.
func NewGuard(codec *TokenCodec, sellers SellerLookup) *Guard {
	return &Guard{
		codec:   codec,
		sellers: sellers,
	}
}

// Authorize decodes token and returns the principal of the seller it names.
func (g *Guard) Authorize(ctx context.Context, token string) (*model.Principal, error) {
	if token == "" {
		return nil, &AuthError{Cause: CauseMissingToken}
	}

	claims, err := g.codec.Decode(token)
	if err != nil {
		return nil, &AuthError{Cause: decodeCause(err), Err: err}
	}

	if claims.Subject == "" {
		return nil, &AuthError{Cause: CauseMissingSubject}
	}

	seller, err := g.sellers.GetSellerByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrSellerNotFound) {
			return nil, &AuthError{Cause: CauseUnknownSubject, Err: err}
		}
		return nil, &AuthError{Cause: CauseLookupFailed, Err: err}
	}

	// The email now belongs to a different account than the one that logged in.
	if claims.SellerID != 0 && claims.SellerID != seller.ID {
		return nil, &AuthError{Cause: CauseStaleSubject}
	}

	return &model.Principal{
		SellerID: seller.ID,
		Email:    seller.Email,
	}, nil
}

func decodeCause(err error) Cause {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return CauseExpiredToken
	case errors.Is(err, ErrTokenSignature):
		return CauseBadSignature
	case errors.Is(err, ErrTokenAlgorithm):
		return CauseBadAlgorithm
	case errors.Is(err, ErrTokenMalformed):
		return CauseMalformedToken
	default:
		return CauseInvalidClaims
	}
}
