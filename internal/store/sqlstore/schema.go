package sqlstore

import (
	"context"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         BIGSERIAL PRIMARY KEY,
		username   TEXT NOT NULL UNIQUE,
		hash       TEXT NOT NULL,
		cash       NUMERIC NOT NULL DEFAULT 10000.00,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id          BIGSERIAL PRIMARY KEY,
		user_id     BIGINT NOT NULL REFERENCES users(id),
		symbol      TEXT NOT NULL,
		name        TEXT NOT NULL,
		shares      BIGINT NOT NULL,
		share_price NUMERIC NOT NULL,
		datetime    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS transactions_user_id ON transactions (user_id, id)`,
	`CREATE TABLE IF NOT EXISTS display (
		user_id     BIGINT NOT NULL REFERENCES users(id),
		symbol      TEXT NOT NULL,
		name        TEXT NOT NULL,
		shares      BIGINT NOT NULL CHECK (shares >= 0),
		share_price NUMERIC NOT NULL,
		datetime    TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, symbol)
	)`,
}

// Money is kept as TEXT in SQLite so decimals survive without float rounding.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		username   TEXT NOT NULL UNIQUE,
		hash       TEXT NOT NULL,
		cash       TEXT NOT NULL DEFAULT '10000.00',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id     INTEGER NOT NULL REFERENCES users(id),
		symbol      TEXT NOT NULL,
		name        TEXT NOT NULL,
		shares      INTEGER NOT NULL,
		share_price TEXT NOT NULL,
		datetime    TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS transactions_user_id ON transactions (user_id, id)`,
	`CREATE TABLE IF NOT EXISTS display (
		user_id     INTEGER NOT NULL REFERENCES users(id),
		symbol      TEXT NOT NULL,
		name        TEXT NOT NULL,
		shares      INTEGER NOT NULL CHECK (shares >= 0),
		share_price TEXT NOT NULL,
		datetime    TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, symbol)
	)`,
}

// Migrate creates the tables that do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	schema := sqliteSchema
	if s.postgres {
		schema = postgresSchema
	}
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
