// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/bookshelf/bookshelf/internal/model"
	"github.com/bookshelf/bookshelf/internal/repository"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema rolls every migration back and applies them again.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if err := repository.ResetPool(ctx, pool); err != nil {
		return fmt.Errorf("reset schema: %w", err)
	}
	return nil
}

// NewTestDB connects to DATABASE_URL, serializes on the advisory lock
// and resets the schema. Everything is released on cleanup.
func NewTestDB(t testing.TB) (context.Context, *repository.Repository) {
	t.Helper()

	dsn := RequireEnv(t, "DATABASE_URL")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	repo, err := repository.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	t.Cleanup(func() { _ = unlock() })

	if err := ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset: %v", err)
	}

	return ctx, repo
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

var seq atomic.Int64

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d-%d@example.com", prefix, time.Now().UnixNano(), seq.Add(1))
}

// NewTestSeller creates a seller with sensible defaults and the given password hash.
func NewTestSeller(t testing.TB, passwordHash string) *model.Seller {
	t.Helper()
	return &model.Seller{
		FirstName:    "Ivan",
		LastName:     "Ivanov",
		Email:        UniqueEmail("seller"),
		PasswordHash: passwordHash,
	}
}

// NewTestBook creates a book owned by sellerID.
func NewTestBook(t testing.TB, sellerID int64) *model.Book {
	t.Helper()
	return &model.Book{
		Title:    "Clean Architecture",
		Author:   "Robert Martin",
		Year:     2021,
		Pages:    300,
		SellerID: sellerID,
	}
}
