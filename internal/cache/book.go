package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bookshelf/bookshelf/internal/model"
)

// Cache key prefix and TTL.
const (
	bookKeyPrefix = "book:"

	// DefaultBookTTL bounds how long a book row may be served from cache.
	DefaultBookTTL = 5 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

func bookKey(id int64) string {
	return bookKeyPrefix + strconv.FormatInt(id, 10)
}

// GetBook retrieves a book from cache by id.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetBook(ctx context.Context, id int64) (*model.Book, error) {
	result, err := c.client.HGetAll(ctx, bookKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(result) == 0 {
		return nil, ErrCacheMiss
	}

	book, err := decodeBook(id, result)
	if err != nil {
		// A corrupt entry is treated as absent and dropped.
		c.client.Del(ctx, bookKey(id))
		return nil, ErrCacheMiss
	}
	return book, nil
}

// SetBook stores a book in cache.
func (c *Cache) SetBook(ctx context.Context, book *model.Book) error {
	key := bookKey(book.ID)

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, encodeBook(book))
	pipe.Expire(ctx, key, c.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache book: %w", err)
	}
	return nil
}

// DeleteBooks removes the given books from cache.
func (c *Cache) DeleteBooks(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, bookKey(id))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete books from cache: %w", err)
	}
	return nil
}

func encodeBook(book *model.Book) map[string]any {
	return map[string]any{
		"title":     book.Title,
		"author":    book.Author,
		"year":      book.Year,
		"pages":     book.Pages,
		"seller_id": book.SellerID,
	}
}

func decodeBook(id int64, fields map[string]string) (*model.Book, error) {
	year, err := strconv.Atoi(fields["year"])
	if err != nil {
		return nil, fmt.Errorf("parse year: %w", err)
	}
	pages, err := strconv.Atoi(fields["pages"])
	if err != nil {
		return nil, fmt.Errorf("parse pages: %w", err)
	}
	sellerID, err := strconv.ParseInt(fields["seller_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse seller_id: %w", err)
	}

	return &model.Book{
		ID:       id,
		Title:    fields["title"],
		Author:   fields["author"],
		Year:     year,
		Pages:    pages,
		SellerID: sellerID,
	}, nil
}
