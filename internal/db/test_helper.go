package db

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/atharvakonge/finance/internal/store/sqlstore"
	"github.com/shopspring/decimal"
)

var testDBSeq atomic.Int64

// SetupTestDB opens a private in-memory SQLite database with the schema
// applied. It is closed when the test ends.
func SetupTestDB(t testing.TB) *sqlstore.Store {
	t.Helper()

	name := fmt.Sprintf("file:finance_test_%d?mode=memory&cache=shared&_fk=1", testDBSeq.Add(1))
	store, err := OpenStore(context.Background(), sqlstore.SQLite, name)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// SetupPostgresTestDB connects to TEST_POSTGRES_DSN and skips the test when
// it is not set. Data is not cleaned up; use unique usernames.
func SetupPostgresTestDB(t testing.TB) *sqlstore.Store {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	store, err := OpenStore(context.Background(), sqlstore.Postgres, dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// CreateTestUser creates a user with the given cash and returns its id.
// The username gets a unique suffix.
func CreateTestUser(t testing.TB, store *sqlstore.Store, username string, cash float64) int64 {
	t.Helper()

	// Make username unique by adding timestamp
	unique := fmt.Sprintf("%s_%d_%d", username, time.Now().UnixNano(), testDBSeq.Add(1))
	u, err := store.CreateUser(context.Background(), unique, "x", decimal.NewFromFloat(cash))
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return u.ID
}
