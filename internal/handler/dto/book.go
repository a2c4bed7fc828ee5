package dto

import "github.com/bookshelf/bookshelf/internal/model"

// BookRequest represents the request body for creating or replacing a book.
type BookRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   int    `json:"year"`
	Pages  int    `json:"count_pages"`
}

// BookResponse represents a book in API responses.
type BookResponse struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Year     int    `json:"year"`
	Pages    int    `json:"count_pages"`
	SellerID int64  `json:"seller_id"`
}

// BookListResponse wraps the list of books.
type BookListResponse struct {
	Books []BookResponse `json:"books"`
}

// ToBookResponse converts a Book model to BookResponse DTO.
func ToBookResponse(b *model.Book) BookResponse {
	return BookResponse{
		ID:       b.ID,
		Title:    b.Title,
		Author:   b.Author,
		Year:     b.Year,
		Pages:    b.Pages,
		SellerID: b.SellerID,
	}
}

// ToBookResponses converts books to DTOs, never returning nil.
func ToBookResponses(books []*model.Book) []BookResponse {
	data := make([]BookResponse, 0, len(books))
	for _, b := range books {
		data = append(data, ToBookResponse(b))
	}
	return data
}
