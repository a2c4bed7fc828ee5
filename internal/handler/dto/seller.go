package dto

import "github.com/bookshelf/bookshelf/internal/model"

// CreateSellerRequest represents the request body for registering a seller.
type CreateSellerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"e_mail"`
	Password  string `json:"password"`
}

// UpdateSellerRequest represents the request body for updating a seller profile.
type UpdateSellerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"e_mail"`
}

// SellerResponse represents a seller in API responses. It never carries the password hash.
type SellerResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"e_mail"`
}

// SellerWithBooksResponse is a seller together with their listings.
type SellerWithBooksResponse struct {
	SellerResponse
	Books []BookResponse `json:"books"`
}

// SellerListResponse wraps the list of sellers.
type SellerListResponse struct {
	Sellers []SellerResponse `json:"sellers"`
}

// ToSellerResponse converts a Seller model to SellerResponse DTO.
func ToSellerResponse(s *model.Seller) SellerResponse {
	return SellerResponse{
		ID:        s.ID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
	}
}

// ToSellerWithBooksResponse converts a SellerWithBooks model to its DTO.
func ToSellerWithBooksResponse(s *model.SellerWithBooks) SellerWithBooksResponse {
	return SellerWithBooksResponse{
		SellerResponse: ToSellerResponse(&s.Seller),
		Books:          ToBookResponses(s.Books),
	}
}

// ToSellerListResponse converts sellers to the list DTO.
func ToSellerListResponse(sellers []*model.Seller) SellerListResponse {
	data := make([]SellerResponse, 0, len(sellers))
	for _, s := range sellers {
		data = append(data, ToSellerResponse(s))
	}
	return SellerListResponse{Sellers: data}
}
