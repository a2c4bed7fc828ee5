package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	"github.com/bookshelf/bookshelf/internal/model"
)

// FallbackTTL is the token lifetime used when Issue is called without one.
const FallbackTTL = 30 * 24 * time.Hour

// supportedAlgorithms lists the HMAC methods usable with a shared secret key.
var supportedAlgorithms = []string{"HS256", "HS384", "HS512"}

// Token errors. Every decode failure wraps ErrInvalidToken and exactly one cause.
var (
	ErrInvalidToken = errors.New("invalid token")

	ErrTokenExpired   = errors.New("token expired")
	ErrTokenSignature = errors.New("token signature invalid")
	ErrTokenAlgorithm = errors.New("token algorithm mismatch")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenClaims    = errors.New("token claims invalid")

	ErrMissingSecret = errors.New("signing secret key is empty")
)

// IsSupportedAlgorithm reports whether name is an accepted signing algorithm.
func IsSupportedAlgorithm(name string) bool {
	return slices.Contains(supportedAlgorithms, name)
}

// TokenConfig is the process-wide signing configuration.
// It is built once at startup and never mutated.
type TokenConfig struct {
	SecretKey []byte
	Algorithm string
}

// Claims is the payload of an access token. Subject holds the seller email.
// SellerID pins the token to the account the email belonged to at login.
type Claims struct {
	SellerID int64 `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies signed, time-bounded access tokens.
type TokenCodec struct {
	key    []byte
	method jwt.SigningMethod
	now    func() time.Time
}

// CodecOption customizes a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock overrides the time source used for expiry and issued-at.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		c.now = now
	}
}

// NewTokenCodec creates a TokenCodec. It rejects an empty key and
// any algorithm other than the supported HMAC family.
func NewTokenCodec(cfg TokenConfig, opts ...CodecOption) (*TokenCodec, error) {
	if len(cfg.SecretKey) == 0 {
		return nil, ErrMissingSecret
	}
	if !IsSupportedAlgorithm(cfg.Algorithm) {
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}

	c := &TokenCodec{
		key:    slices.Clone(cfg.SecretKey),
		method: jwt.GetSigningMethod(cfg.Algorithm),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Algorithm returns the configured signing algorithm name.
func (c *TokenCodec) Algorithm() string {
	return c.method.Alg()
}

// Issue signs a token asserting subject until now+ttl.
// A zero ttl means FallbackTTL; a negative ttl yields an already expired token.
func (c *TokenCodec) Issue(subject string, ttl time.Duration) (string, error) {
	return c.sign(0, subject, ttl)
}

// IssueSeller is Issue for a stored seller. The token names the seller's email
// and carries its id, so it stops resolving once the email moves to another account.
func (c *TokenCodec) IssueSeller(seller *model.Seller, ttl time.Duration) (string, error) {
	return c.sign(seller.ID, seller.Email, ttl)
}

func (c *TokenCodec) sign(sellerID int64, subject string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = FallbackTTL
	}

	now := c.now()
	claims := Claims{
		SellerID: sellerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        ulid.Make().String(),
		},
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and algorithm first, then the expiry.
// Claims are returned only when every check passes.
func (c *TokenCodec) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, c.keyFunc,
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, classify(err))
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, ErrTokenClaims)
	}

	return claims, nil
}

func (c *TokenCodec) keyFunc(t *jwt.Token) (any, error) {
	if t.Method == nil || t.Method.Alg() != c.method.Alg() {
		return nil, ErrTokenAlgorithm
	}
	return c.key, nil
}

// classify maps jwt parser errors onto the package's token causes.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrTokenAlgorithm):
		return ErrTokenAlgorithm
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	default:
		return ErrTokenClaims
	}
}
