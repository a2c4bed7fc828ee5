package service

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/bookshelf/bookshelf/internal/cache"
	"github.com/bookshelf/bookshelf/internal/model"
)

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

// fakeCache is an in-process BookCache.
type fakeCache struct {
	mu      sync.Mutex
	books   map[int64]model.Book
	deleted []int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{books: make(map[int64]model.Book)}
}

func (c *fakeCache) GetBook(ctx context.Context, id int64) (*model.Book, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	book, ok := c.books[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return &book, nil
}

func (c *fakeCache) SetBook(ctx context.Context, book *model.Book) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.books[book.ID] = *book
	return nil
}

func (c *fakeCache) DeleteBooks(ctx context.Context, ids ...int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.books, id)
	}
	c.deleted = append(c.deleted, ids...)
	return nil
}

func (c *fakeCache) has(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.books[id]
	return ok
}

func (c *fakeCache) wasDeleted(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Contains(c.deleted, id)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
