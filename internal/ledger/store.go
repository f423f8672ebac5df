package ledger

import (
	"context"

	"github.com/atharvakonge/finance/internal/models"
	"github.com/shopspring/decimal"
)

// Store persists the three ledger relations: account cash, the transaction
// log and the holdings snapshot.
type Store interface {
	// Tx runs fn inside one all-or-nothing unit. If fn returns an error
	// nothing fn wrote is kept.
	Tx(ctx context.Context, fn func(tx LedgerTx) error) error

	Cash(ctx context.Context, userID int64) (decimal.Decimal, error)
	// Holdings returns every holding row of the user ordered by symbol,
	// including rows whose shares reached zero.
	Holdings(ctx context.Context, userID int64) ([]models.Holding, error)
	// Transactions returns the log of the user in insertion order.
	Transactions(ctx context.Context, userID int64) ([]models.Transaction, error)
}

// LedgerTx is the view of a Store inside Tx.
type LedgerTx interface {
	// Cash reads the balance and, where the backend supports it, locks the
	// account row until the unit ends. Unknown users give ErrUserNotFound.
	Cash(ctx context.Context, userID int64) (decimal.Decimal, error)
	SetCash(ctx context.Context, userID int64, cash decimal.Decimal) error
	// AppendTransaction stores t and sets t.ID.
	AppendTransaction(ctx context.Context, t *models.Transaction) error
	// Holding returns the row for (userID, symbol); ok is false when absent.
	Holding(ctx context.Context, userID int64, symbol string) (h models.Holding, ok bool, err error)
	InsertHolding(ctx context.Context, h models.Holding) error
	UpdateHolding(ctx context.Context, h models.Holding) error
}

// UserStore is the credential side of a store.
type UserStore interface {
	// CreateUser inserts a user with the given starting cash. A taken
	// username gives ErrDuplicateUsername.
	CreateUser(ctx context.Context, username, hash string, cash decimal.Decimal) (models.User, error)
	UserByUsername(ctx context.Context, username string) (models.User, error)
	UserByID(ctx context.Context, id int64) (models.User, error)
}

// QuoteService resolves a ticker symbol to its current price and name.
// Unknown symbols give an error wrapping ErrSymbolNotFound.
type QuoteService interface {
	Lookup(ctx context.Context, symbol string) (models.Quote, error)
}
