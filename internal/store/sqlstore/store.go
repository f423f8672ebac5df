// Package sqlstore keeps the ledger in a relational database, either
// PostgreSQL (lib/pq) or SQLite (go-sqlite3).
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atharvakonge/finance/internal/ledger"
	"github.com/atharvakonge/finance/internal/models"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// Driver names accepted by New.
const (
	Postgres = "postgres"
	SQLite   = "sqlite3"
)

// Store implements ledger.Store and ledger.UserStore over database/sql.
type Store struct {
	db       *sql.DB
	postgres bool
}

// New wraps db opened with driver.
func New(db *sql.DB, driver string) (*Store, error) {
	switch driver {
	case Postgres:
		return &Store{db: db, postgres: true}, nil
	case SQLite:
		return &Store{db: db}, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

// rebind rewrites ? placeholders into $1, $2... for Postgres.
func (s *Store) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// Tx runs fn inside a database transaction, rolled back unless fn succeeds.
func (s *Store) Tx(ctx context.Context, fn func(tx ledger.LedgerTx) error) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer dbTx.Rollback() // no-op after commit

	if err := fn(&sqlTx{tx: dbTx, s: s}); err != nil {
		return err
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) Cash(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var cash decimal.Decimal
	err := s.db.QueryRowContext(ctx, s.rebind("SELECT cash FROM users WHERE id = ?"), userID).Scan(&cash)
	if err == sql.ErrNoRows {
		return decimal.Zero, ledger.ErrUserNotFound
	}
	return cash, err
}

func (s *Store) Holdings(ctx context.Context, userID int64) ([]models.Holding, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT user_id, symbol, name, shares, share_price, datetime
		FROM display
		WHERE user_id = ?
		ORDER BY symbol`), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Holding, 0)
	for rows.Next() {
		var h models.Holding
		if err := rows.Scan(&h.UserID, &h.Symbol, &h.Name, &h.Shares, &h.SharePrice, &h.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) Transactions(ctx context.Context, userID int64) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, user_id, symbol, name, shares, share_price, datetime
		FROM transactions
		WHERE user_id = ?
		ORDER BY id`), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Transaction, 0)
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Symbol, &t.Name, &t.Shares, &t.SharePrice, &t.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) CreateUser(ctx context.Context, username, hash string, cash decimal.Decimal) (models.User, error) {
	u := models.User{Username: username, Hash: hash, Cash: cash, CreatedAt: time.Now().UTC()}
	err := s.db.QueryRowContext(ctx, s.rebind(`
		INSERT INTO users (username, hash, cash, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`), username, hash, cash, u.CreatedAt).Scan(&u.ID)
	if isUniqueViolation(err) {
		return models.User{}, ledger.ErrDuplicateUsername
	}
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *Store) userBy(ctx context.Context, column string, arg any) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, s.rebind(
		"SELECT id, username, hash, cash, created_at FROM users WHERE "+column+" = ?"), arg,
	).Scan(&u.ID, &u.Username, &u.Hash, &u.Cash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return models.User{}, ledger.ErrUserNotFound
	}
	return u, err
}

func (s *Store) UserByUsername(ctx context.Context, username string) (models.User, error) {
	return s.userBy(ctx, "username", username)
}

func (s *Store) UserByID(ctx context.Context, id int64) (models.User, error) {
	return s.userBy(ctx, "id", id)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type sqlTx struct {
	tx *sql.Tx
	s  *Store
}

func (t *sqlTx) Cash(ctx context.Context, userID int64) (decimal.Decimal, error) {
	query := "SELECT cash FROM users WHERE id = ?"
	if t.s.postgres {
		query += " FOR UPDATE"
	}
	var cash decimal.Decimal
	err := t.tx.QueryRowContext(ctx, t.s.rebind(query), userID).Scan(&cash)
	if err == sql.ErrNoRows {
		return decimal.Zero, ledger.ErrUserNotFound
	}
	return cash, err
}

func (t *sqlTx) SetCash(ctx context.Context, userID int64, cash decimal.Decimal) error {
	res, err := t.tx.ExecContext(ctx, t.s.rebind("UPDATE users SET cash = ? WHERE id = ?"), cash, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ledger.ErrUserNotFound
	}
	return nil
}

func (t *sqlTx) AppendTransaction(ctx context.Context, tr *models.Transaction) error {
	return t.tx.QueryRowContext(ctx, t.s.rebind(`
		INSERT INTO transactions (user_id, symbol, name, shares, share_price, datetime)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`),
		tr.UserID, tr.Symbol, tr.Name, tr.Shares, tr.SharePrice, tr.Timestamp,
	).Scan(&tr.ID)
}

func (t *sqlTx) Holding(ctx context.Context, userID int64, symbol string) (models.Holding, bool, error) {
	query := `SELECT user_id, symbol, name, shares, share_price, datetime
		FROM display WHERE user_id = ? AND symbol = ?`
	if t.s.postgres {
		query += " FOR UPDATE"
	}
	var h models.Holding
	err := t.tx.QueryRowContext(ctx, t.s.rebind(query), userID, symbol).
		Scan(&h.UserID, &h.Symbol, &h.Name, &h.Shares, &h.SharePrice, &h.Timestamp)
	if err == sql.ErrNoRows {
		return models.Holding{}, false, nil
	}
	if err != nil {
		return models.Holding{}, false, err
	}
	return h, true, nil
}

func (t *sqlTx) InsertHolding(ctx context.Context, h models.Holding) error {
	_, err := t.tx.ExecContext(ctx, t.s.rebind(`
		INSERT INTO display (user_id, symbol, name, shares, share_price, datetime)
		VALUES (?, ?, ?, ?, ?, ?)`),
		h.UserID, h.Symbol, h.Name, h.Shares, h.SharePrice, h.Timestamp)
	return err
}

func (t *sqlTx) UpdateHolding(ctx context.Context, h models.Holding) error {
	_, err := t.tx.ExecContext(ctx, t.s.rebind(`
		UPDATE display SET shares = ?, share_price = ?, datetime = ?
		WHERE user_id = ? AND symbol = ?`),
		h.Shares, h.SharePrice, h.Timestamp, h.UserID, h.Symbol)
	return err
}

// Compile-time checks
var (
	_ ledger.Store     = (*Store)(nil)
	_ ledger.UserStore = (*Store)(nil)
)
