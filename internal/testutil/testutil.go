// Package testutil provides helpers for integration tests that need a
// real PostgreSQL or Redis instance.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/notevault/notevault/internal/auth"
	"github.com/notevault/notevault/internal/model"
	"github.com/notevault/notevault/internal/repository"
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

const advisoryLockID int64 = 730731

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

// ResetSchema rolls the embedded migrations all the way down and back
// up, leaving a clean schema for the test.
func ResetSchema(ctx context.Context, databaseURL string) error {
	if err := repository.Reset(ctx, databaseURL); err != nil {
		return fmt.Errorf("roll schema down: %w", err)
	}
	if err := repository.Migrate(ctx, databaseURL); err != nil {
		return fmt.Errorf("roll schema up: %w", err)
	}
	return nil
}

// SetupDB connects to TEST_DATABASE_URL, serializes against other DB
// tests and resets the schema. Cleanup is registered on t.
func SetupDB(ctx context.Context, t testing.TB) *repository.Repository {
	t.Helper()

	databaseURL := RequireEnv(t, "TEST_DATABASE_URL")

	repo, err := repository.New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("connect to test database: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire test lock: %v", err)
	}
	t.Cleanup(func() {
		if err := unlock(); err != nil {
			t.Errorf("release test lock: %v", err)
		}
	})

	if err := ResetSchema(ctx, databaseURL); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return repo
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// CreateTestUser inserts a user with a hashed password and returns it.
func CreateTestUser(ctx context.Context, t testing.TB, repo *repository.Repository, username string) *model.User {
	t.Helper()

	hash, err := auth.HashPassword("test-password")
	if err != nil {
		t.Fatalf("hash test password: %v", err)
	}

	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

// NewTestNote creates a note with sensible defaults.
func NewTestNote(t testing.TB, title string) *model.Note {
	t.Helper()
	now := time.Now().UTC()
	return &model.Note{
		Title:     title,
		Content:   "content of " + title,
		Category:  "general",
		Published: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
