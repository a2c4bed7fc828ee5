// Package model defines domain entities for the application.
package model

// Seller represents a registered seller account.
// Email is the login key and is unique regardless of letter case.
type Seller struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"e_mail"`
	PasswordHash string `json:"-"` // Never serialize
}

// SellerWithBooks is a seller together with the books they list.
type SellerWithBooks struct {
	Seller
	Books []*Book `json:"books"`
}

// Principal is the identity resolved from a verified access token.
// It is injected into the request context by the auth middleware.
type Principal struct {
	SellerID int64
	Email    string
}

// Owns reports whether the principal is the given seller.
func (p *Principal) Owns(sellerID int64) bool {
	return p != nil && p.SellerID == sellerID
}
