package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/everbloom-studio/booking-api/internal/adapters/postgres"
)

// OpenMigratedPool opens a pool against TEST_DATABASE_URL with migrations
// applied. Tests using it are skipped when the variable is unset, so the
// postgres contract suites only run where a database is provisioned.
func OpenMigratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping postgres tests")
	}

	if err := postgres.Migrate(dsn); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolOptions{})
	if err != nil {
		t.Fatalf("open test pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// Truncate empties the given tables between contract-suite cases.
func Truncate(t *testing.T, pool *pgxpool.Pool, tables ...string) {
	t.Helper()
	if len(tables) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := pool.Exec(ctx, fmt.Sprintf("TRUNCATE %s", strings.Join(tables, ", "))); err != nil {
		t.Fatalf("truncate %v: %v", tables, err)
	}
}
