package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/atharvakonge/finance/internal/store/sqlstore"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Open connects to the database, applies pool settings and verifies the
// connection.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test connection
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if driver == sqlstore.SQLite {
		// SQLite allows one writer; a single connection avoids SQLITE_BUSY
		// and keeps in-memory databases shared.
		db.SetMaxOpenConns(1)
		return db, nil
	}

	db.SetMaxOpenConns(25)                 // Max open connections
	db.SetMaxIdleConns(5)                  // Max idle connections
	db.SetConnMaxLifetime(5 * time.Minute) // Max connection lifetime
	return db, nil
}

// OpenStore opens the database, wraps it in a sqlstore and creates missing
// tables.
func OpenStore(ctx context.Context, driver, dsn string) (*sqlstore.Store, error) {
	db, err := Open(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	store, err := sqlstore.New(db, driver)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}
