package sqlstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atharvakonge/finance/internal/db"
	"github.com/atharvakonge/finance/internal/ledger"
	"github.com/atharvakonge/finance/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsers(t *testing.T) {
	store := db.SetupTestDB(t)
	ctx := context.Background()

	u, err := store.CreateUser(ctx, "alice", "hash", decimal.RequireFromString("10000.00"))
	require.NoError(t, err)
	assert.NotZero(t, u.ID)

	_, err = store.CreateUser(ctx, "alice", "other", decimal.Zero)
	assert.ErrorIs(t, err, ledger.ErrDuplicateUsername)

	got, err := store.UserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.Hash)
	assert.True(t, got.Cash.Equal(decimal.NewFromInt(10000)), got.Cash.String())

	_, err = store.UserByUsername(ctx, "bob")
	assert.ErrorIs(t, err, ledger.ErrUserNotFound)
	_, err = store.UserByID(ctx, u.ID+100)
	assert.ErrorIs(t, err, ledger.ErrUserNotFound)
	_, err = store.Cash(ctx, u.ID+100)
	assert.ErrorIs(t, err, ledger.ErrUserNotFound)
}

func TestTx_WritesAndReads(t *testing.T) {
	store := db.SetupTestDB(t)
	ctx := context.Background()
	userID := db.CreateTestUser(t, store, "trader", 1000)
	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	err := store.Tx(ctx, func(tx ledger.LedgerTx) error {
		require.NoError(t, tx.SetCash(ctx, userID, decimal.RequireFromString("850.25")))
		for _, sym := range []string{"MSFT", "AAPL"} {
			tr := models.Transaction{UserID: userID, Symbol: sym, Name: sym + " Corp", Shares: 3, SharePrice: decimal.RequireFromString("49.91"), Timestamp: now}
			require.NoError(t, tx.AppendTransaction(ctx, &tr))
			assert.NotZero(t, tr.ID)
			require.NoError(t, tx.InsertHolding(ctx, models.Holding{UserID: userID, Symbol: sym, Name: sym + " Corp", Shares: 3, SharePrice: tr.SharePrice, Timestamp: now}))
		}

		h, ok, err := tx.Holding(ctx, userID, "AAPL")
		require.NoError(t, err)
		require.True(t, ok)
		h.Shares = 0
		require.NoError(t, tx.UpdateHolding(ctx, h))

		_, ok, err = tx.Holding(ctx, userID, "TSLA")
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	})
	require.NoError(t, err)

	cash, err := store.Cash(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "850.25", cash.StringFixed(2))

	holdings, err := store.Holdings(ctx, userID)
	require.NoError(t, err)
	require.Len(t, holdings, 2)
	assert.Equal(t, "AAPL", holdings[0].Symbol)
	assert.Equal(t, int64(0), holdings[0].Shares)
	assert.Equal(t, "MSFT", holdings[1].Symbol)
	assert.True(t, holdings[1].SharePrice.Equal(decimal.RequireFromString("49.91")))

	log, err := store.Transactions(ctx, userID)
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, "MSFT", log[0].Symbol)
	assert.Equal(t, "AAPL", log[1].Symbol)
	assert.True(t, log[0].Timestamp.Equal(now))
}

func TestTx_RollsBackOnError(t *testing.T) {
	store := db.SetupTestDB(t)
	ctx := context.Background()
	userID := db.CreateTestUser(t, store, "trader", 500)
	boom := errors.New("boom")

	err := store.Tx(ctx, func(tx ledger.LedgerTx) error {
		require.NoError(t, tx.SetCash(ctx, userID, decimal.Zero))
		tr := models.Transaction{UserID: userID, Symbol: "AAPL", Name: "Apple", Shares: 1, SharePrice: decimal.NewFromInt(500), Timestamp: time.Now()}
		require.NoError(t, tx.AppendTransaction(ctx, &tr))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	cash, err := store.Cash(ctx, userID)
	require.NoError(t, err)
	assert.True(t, cash.Equal(decimal.NewFromInt(500)))

	log, err := store.Transactions(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, log)
}

func TestDisplayRejectsNegativeShares(t *testing.T) {
	store := db.SetupTestDB(t)
	ctx := context.Background()
	userID := db.CreateTestUser(t, store, "trader", 0)

	err := store.Tx(ctx, func(tx ledger.LedgerTx) error {
		return tx.InsertHolding(ctx, models.Holding{UserID: userID, Symbol: "AAPL", Name: "Apple", Shares: -1, SharePrice: decimal.NewFromInt(1), Timestamp: time.Now()})
	})
	assert.Error(t, err)
}

func TestPostgres(t *testing.T) {
	store := db.SetupPostgresTestDB(t)
	ctx := context.Background()
	userID := db.CreateTestUser(t, store, "pg", 100)

	l := ledger.New(store, staticQuote{})
	_, err := l.Buy(ctx, userID, "AAPL", 2)
	require.NoError(t, err)
	_, err = l.Sell(ctx, userID, "AAPL", 2)
	require.NoError(t, err)
	require.NoError(t, l.CheckInvariants(ctx, userID))
}

type staticQuote struct{}

func (staticQuote) Lookup(_ context.Context, symbol string) (models.Quote, error) {
	return models.Quote{Symbol: symbol, Name: symbol, Price: decimal.NewFromInt(10)}, nil
}
