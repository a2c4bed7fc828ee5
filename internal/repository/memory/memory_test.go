package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelf/bookshelf/internal/model"
	"github.com/bookshelf/bookshelf/internal/repository"
)

func TestStore_SellerEmailUniqueIgnoresCase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	first := &model.Seller{FirstName: "Ivan", LastName: "Ivanov", Email: "Ivan@Ivanov.com"}
	require.NoError(t, s.CreateSeller(ctx, first))
	assert.Equal(t, int64(1), first.ID)

	dup := &model.Seller{FirstName: "Other", LastName: "Person", Email: "ivan@ivanov.COM"}
	assert.ErrorIs(t, s.CreateSeller(ctx, dup), repository.ErrEmailExists)

	got, err := s.GetSellerByEmail(ctx, "IVAN@ivanov.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "Ivan@Ivanov.com", got.Email)
}

func TestStore_ReturnsCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	seller := &model.Seller{FirstName: "Ivan", LastName: "Ivanov", Email: "a@b.com"}
	require.NoError(t, s.CreateSeller(ctx, seller))

	got, err := s.GetSellerByID(ctx, seller.ID)
	require.NoError(t, err)
	got.FirstName = "Mutated"

	again, err := s.GetSellerByID(ctx, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ivan", again.FirstName)
}

func TestStore_UpdateSeller(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	a := &model.Seller{FirstName: "A", LastName: "A", Email: "a@b.com", PasswordHash: "hash-a"}
	b := &model.Seller{FirstName: "B", LastName: "B", Email: "b@b.com"}
	require.NoError(t, s.CreateSeller(ctx, a))
	require.NoError(t, s.CreateSeller(ctx, b))

	err := s.UpdateSeller(ctx, &model.Seller{ID: a.ID, FirstName: "X", LastName: "Y", Email: "B@b.com"})
	assert.ErrorIs(t, err, repository.ErrEmailExists)

	require.NoError(t, s.UpdateSeller(ctx, &model.Seller{ID: a.ID, FirstName: "X", LastName: "Y", Email: "A@b.com"}))
	got, err := s.GetSellerByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "X", got.FirstName)
	assert.Equal(t, "A@b.com", got.Email)
	assert.Equal(t, "hash-a", got.PasswordHash)

	err = s.UpdateSeller(ctx, &model.Seller{ID: 99, Email: "z@b.com"})
	assert.ErrorIs(t, err, repository.ErrSellerNotFound)
}

func TestStore_DeleteSellerCascadesBooks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	seller := &model.Seller{FirstName: "A", LastName: "A", Email: "a@b.com"}
	other := &model.Seller{FirstName: "B", LastName: "B", Email: "b@b.com"}
	require.NoError(t, s.CreateSeller(ctx, seller))
	require.NoError(t, s.CreateSeller(ctx, other))

	b1 := &model.Book{Title: "One", Author: "A", Year: 2024, Pages: 10, SellerID: seller.ID}
	b2 := &model.Book{Title: "Two", Author: "B", Year: 2024, Pages: 10, SellerID: other.ID}
	b3 := &model.Book{Title: "Three", Author: "C", Year: 2024, Pages: 10, SellerID: seller.ID}
	for _, b := range []*model.Book{b1, b2, b3} {
		require.NoError(t, s.CreateBook(ctx, b))
	}

	deleted, err := s.DeleteSeller(ctx, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{b1.ID, b3.ID}, deleted)

	_, err = s.GetSellerByID(ctx, seller.ID)
	assert.ErrorIs(t, err, repository.ErrSellerNotFound)

	books, err := s.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, b2.ID, books[0].ID)

	_, err = s.DeleteSeller(ctx, seller.ID)
	assert.ErrorIs(t, err, repository.ErrSellerNotFound)
}

func TestStore_Books(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	err := s.CreateBook(ctx, &model.Book{Title: "Orphan", SellerID: 42})
	assert.ErrorIs(t, err, repository.ErrSellerMissing)

	seller := &model.Seller{Email: "a@b.com"}
	require.NoError(t, s.CreateSeller(ctx, seller))

	book := &model.Book{Title: "Clean Architecture", Author: "Robert Martin", Year: 2025, Pages: 300, SellerID: seller.ID}
	require.NoError(t, s.CreateBook(ctx, book))

	require.NoError(t, s.UpdateBook(ctx, &model.Book{ID: book.ID, Title: "Clean Code", Author: "Robert Martin", Year: 2024, Pages: 400, SellerID: 777}))
	got, err := s.GetBookByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Clean Code", got.Title)
	assert.Equal(t, seller.ID, got.SellerID)

	mine, err := s.ListBooksBySeller(ctx, seller.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	require.NoError(t, s.DeleteBook(ctx, book.ID))
	assert.ErrorIs(t, s.DeleteBook(ctx, book.ID), repository.ErrBookNotFound)
	_, err = s.GetBookByID(ctx, book.ID)
	assert.ErrorIs(t, err, repository.ErrBookNotFound)
}
