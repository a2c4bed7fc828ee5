// Package memory provides an in-process store with the same contract
// as the PostgreSQL repository. It is used by tests and local runs.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/bookshelf/bookshelf/internal/model"
	"github.com/bookshelf/bookshelf/internal/repository"
)

// Store keeps sellers and books in maps guarded by a single mutex.
// Returned entities are copies; callers never share state with the store.
type Store struct {
	mu           sync.RWMutex
	sellers      map[int64]model.Seller
	books        map[int64]model.Book
	nextSellerID int64
	nextBookID   int64
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		sellers: make(map[int64]model.Seller),
		books:   make(map[int64]model.Book),
	}
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// CreateSeller inserts a seller, enforcing case-insensitive email uniqueness.
func (s *Store) CreateSeller(ctx context.Context, seller *model.Seller) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTakenLocked(seller.Email, 0) {
		return repository.ErrEmailExists
	}

	s.nextSellerID++
	seller.ID = s.nextSellerID
	s.sellers[seller.ID] = *seller
	return nil
}

// GetSellerByID retrieves a seller by ID.
func (s *Store) GetSellerByID(ctx context.Context, id int64) (*model.Seller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seller, ok := s.sellers[id]
	if !ok {
		return nil, repository.ErrSellerNotFound
	}
	return &seller, nil
}

// GetSellerByEmail retrieves a seller by login key, ignoring letter case.
func (s *Store) GetSellerByEmail(ctx context.Context, email string) (*model.Seller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, seller := range s.sellers {
		if strings.EqualFold(seller.Email, email) {
			return &seller, nil
		}
	}
	return nil, repository.ErrSellerNotFound
}

// ListSellers returns all sellers ordered by ID.
func (s *Store) ListSellers(ctx context.Context) ([]*model.Seller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sellers := make([]*model.Seller, 0, len(s.sellers))
	for _, seller := range s.sellers {
		sellers = append(sellers, &seller)
	}
	slices.SortFunc(sellers, func(a, b *model.Seller) int { return compareIDs(a.ID, b.ID) })
	return sellers, nil
}

// UpdateSeller updates profile fields, keeping the stored password hash.
func (s *Store) UpdateSeller(ctx context.Context, seller *model.Seller) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.sellers[seller.ID]
	if !ok {
		return repository.ErrSellerNotFound
	}
	if s.emailTakenLocked(seller.Email, seller.ID) {
		return repository.ErrEmailExists
	}

	existing.FirstName = seller.FirstName
	existing.LastName = seller.LastName
	existing.Email = seller.Email
	s.sellers[seller.ID] = existing
	return nil
}

// DeleteSeller removes a seller and their books, returning the deleted book IDs.
func (s *Store) DeleteSeller(ctx context.Context, id int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sellers[id]; !ok {
		return nil, repository.ErrSellerNotFound
	}

	var bookIDs []int64
	for bookID, book := range s.books {
		if book.SellerID == id {
			bookIDs = append(bookIDs, bookID)
			delete(s.books, bookID)
		}
	}
	slices.Sort(bookIDs)

	delete(s.sellers, id)
	return bookIDs, nil
}

// CreateBook inserts a book owned by an existing seller.
func (s *Store) CreateBook(ctx context.Context, book *model.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sellers[book.SellerID]; !ok {
		return repository.ErrSellerMissing
	}

	s.nextBookID++
	book.ID = s.nextBookID
	s.books[book.ID] = *book
	return nil
}

// GetBookByID retrieves a book by ID.
func (s *Store) GetBookByID(ctx context.Context, id int64) (*model.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[id]
	if !ok {
		return nil, repository.ErrBookNotFound
	}
	return &book, nil
}

// ListBooks returns all books ordered by ID.
func (s *Store) ListBooks(ctx context.Context) ([]*model.Book, error) {
	return s.filterBooks(func(*model.Book) bool { return true }), nil
}

// ListBooksBySeller returns a seller's books ordered by ID.
func (s *Store) ListBooksBySeller(ctx context.Context, sellerID int64) ([]*model.Book, error) {
	return s.filterBooks(func(b *model.Book) bool { return b.SellerID == sellerID }), nil
}

// UpdateBook updates descriptive fields. The owner is kept.
func (s *Store) UpdateBook(ctx context.Context, book *model.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.books[book.ID]
	if !ok {
		return repository.ErrBookNotFound
	}

	existing.Title = book.Title
	existing.Author = book.Author
	existing.Year = book.Year
	existing.Pages = book.Pages
	s.books[book.ID] = existing
	return nil
}

// DeleteBook removes a book.
func (s *Store) DeleteBook(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[id]; !ok {
		return repository.ErrBookNotFound
	}
	delete(s.books, id)
	return nil
}

func (s *Store) filterBooks(keep func(*model.Book) bool) []*model.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	books := make([]*model.Book, 0)
	for _, book := range s.books {
		if keep(&book) {
			books = append(books, &book)
		}
	}
	slices.SortFunc(books, func(a, b *model.Book) int { return compareIDs(a.ID, b.ID) })
	return books
}

func (s *Store) emailTakenLocked(email string, exceptID int64) bool {
	for id, seller := range s.sellers {
		if id != exceptID && strings.EqualFold(seller.Email, email) {
			return true
		}
	}
	return false
}

func compareIDs(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
