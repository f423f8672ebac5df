// Package ledger keeps cash, the transaction log and the holdings snapshot of
// every account consistent with each other.
//
// Each Buy or Sell is one logical transaction: either cash, log and holding
// all change, or none of them does. Trades for one account are serialized
// inside a Ledger, but two processes sharing a database may still interleave
// requests for the same account. Only the Postgres store adds row locks
// against that, so run a single instance when using SQLite.
package ledger

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atharvakonge/finance/internal/events"
	"github.com/atharvakonge/finance/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Ledger is the trading engine.
type Ledger struct {
	store     Store
	quotes    QuoteService
	publisher events.Publisher
	logger    *zap.Logger
	locks     *accountLocks
	now       func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithPublisher announces committed trades on p.
func WithPublisher(p events.Publisher) Option {
	return func(l *Ledger) { l.publisher = p }
}

// WithLogger sets the logger, zap.NewNop by default.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// WithClock replaces time.Now for trade timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New creates a Ledger over store, pricing trades with quotes.
func New(store Store, quotes QuoteService, opts ...Option) *Ledger {
	l := &Ledger{
		store:     store,
		quotes:    quotes,
		publisher: events.Nop{},
		logger:    zap.NewNop(),
		locks:     newAccountLocks(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ParseShares parses a share count typed by a user. Only plain digits are
// accepted and the value must be positive.
func ParseShares(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: shares not provided", ErrInvalidQuantity)
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q is not a whole number", ErrInvalidQuantity, raw)
		}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidQuantity, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: shares must be positive", ErrInvalidQuantity)
	}
	return n, nil
}

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func (l *Ledger) lookup(ctx context.Context, symbol string) (models.Quote, error) {
	if symbol == "" {
		return models.Quote{}, fmt.Errorf("%w: symbol not provided", ErrSymbolNotFound)
	}
	q, err := l.quotes.Lookup(ctx, symbol)
	if err != nil {
		return models.Quote{}, err
	}
	if !q.Price.IsPositive() {
		return models.Quote{}, fmt.Errorf("%w: %s has no price", ErrSymbolNotFound, symbol)
	}
	return q, nil
}

// Buy purchases shares of symbol at the current quote price.
func (l *Ledger) Buy(ctx context.Context, userID int64, symbol string, shares int64) (models.Receipt, error) {
	symbol = NormalizeSymbol(symbol)
	if shares <= 0 {
		return models.Receipt{}, fmt.Errorf("%w: shares must be positive", ErrInvalidQuantity)
	}

	quote, err := l.lookup(ctx, symbol)
	if err != nil {
		return models.Receipt{}, err
	}

	receipt, err := l.buy(ctx, userID, symbol, quote, shares)
	if err != nil {
		return models.Receipt{}, err
	}

	// Published after the account is unlocked.
	l.announce(ctx, receipt)
	return receipt, nil
}

func (l *Ledger) buy(ctx context.Context, userID int64, symbol string, quote models.Quote, shares int64) (models.Receipt, error) {
	unlock := l.locks.lock(userID)
	defer unlock()

	var receipt models.Receipt
	err := l.store.Tx(ctx, func(tx LedgerTx) error {
		cost := quote.Price.Mul(decimal.NewFromInt(shares))

		// 1. Check user has enough cash
		cash, err := tx.Cash(ctx, userID)
		if err != nil {
			return err
		}
		if cost.GreaterThan(cash) {
			return fmt.Errorf("%w: need %s, have %s", ErrInsufficientFunds, cost.StringFixed(2), cash.StringFixed(2))
		}

		// 2. Deduct cash
		cash = cash.Sub(cost)
		if err := tx.SetCash(ctx, userID, cash); err != nil {
			return fmt.Errorf("update cash: %w", err)
		}

		// 3. Record trade
		now := l.now()
		t := models.Transaction{
			UserID:     userID,
			Symbol:     symbol,
			Name:       quote.Name,
			Shares:     shares,
			SharePrice: quote.Price,
			Timestamp:  now,
		}
		if err := tx.AppendTransaction(ctx, &t); err != nil {
			return fmt.Errorf("record transaction: %w", err)
		}

		// 4. Update holding (or insert if it doesn't exist)
		h, ok, err := tx.Holding(ctx, userID, symbol)
		if err != nil {
			return fmt.Errorf("read holding: %w", err)
		}
		if !ok {
			h = models.Holding{UserID: userID, Symbol: symbol, Name: quote.Name, Shares: shares, SharePrice: quote.Price, Timestamp: now}
			err = tx.InsertHolding(ctx, h)
		} else {
			h.Shares += shares
			h.SharePrice = quote.Price
			h.Timestamp = now
			err = tx.UpdateHolding(ctx, h)
		}
		if err != nil {
			return fmt.Errorf("update holding: %w", err)
		}

		receipt = models.Receipt{Transaction: t, Holding: h, Cash: cash}
		return nil
	})
	if err != nil {
		return models.Receipt{}, err
	}
	return receipt, nil
}

// Sell sells shares of a held symbol at the current quote price.
//
// A holding that reaches zero shares is kept with Shares == 0. Selling from
// such a row gives ErrInsufficientShares, and a later Buy reuses it.
func (l *Ledger) Sell(ctx context.Context, userID int64, symbol string, shares int64) (models.Receipt, error) {
	symbol = NormalizeSymbol(symbol)
	if shares <= 0 {
		return models.Receipt{}, fmt.Errorf("%w: shares must be positive", ErrInvalidQuantity)
	}

	receipt, err := l.sell(ctx, userID, symbol, shares)
	if err != nil {
		return models.Receipt{}, err
	}

	// Published after the account is unlocked.
	l.announce(ctx, receipt)
	return receipt, nil
}

func (l *Ledger) sell(ctx context.Context, userID int64, symbol string, shares int64) (models.Receipt, error) {
	unlock := l.locks.lock(userID)
	defer unlock()

	// The holding is checked before pricing, and pricing happens before the
	// store transaction opens so no connection waits on the quote service.
	rows, err := l.store.Holdings(ctx, userID)
	if err != nil {
		return models.Receipt{}, fmt.Errorf("read holdings: %w", err)
	}
	h, ok := findHolding(rows, symbol)
	if err := sellable(h, ok, symbol, shares); err != nil {
		return models.Receipt{}, err
	}

	quote, err := l.lookup(ctx, symbol)
	if err != nil {
		return models.Receipt{}, err
	}

	var receipt models.Receipt
	err = l.store.Tx(ctx, func(tx LedgerTx) error {
		// 1. Check user owns enough shares
		h, ok, err := tx.Holding(ctx, userID, symbol)
		if err != nil {
			return fmt.Errorf("read holding: %w", err)
		}
		if err := sellable(h, ok, symbol, shares); err != nil {
			return err
		}

		proceeds := quote.Price.Mul(decimal.NewFromInt(shares))

		// 2. Record trade
		now := l.now()
		t := models.Transaction{
			UserID:     userID,
			Symbol:     symbol,
			Name:       quote.Name,
			Shares:     -shares,
			SharePrice: quote.Price,
			Timestamp:  now,
		}
		if err := tx.AppendTransaction(ctx, &t); err != nil {
			return fmt.Errorf("record transaction: %w", err)
		}

		// 3. Add proceeds to user's cash
		cash, err := tx.Cash(ctx, userID)
		if err != nil {
			return err
		}
		cash = cash.Add(proceeds)
		if err := tx.SetCash(ctx, userID, cash); err != nil {
			return fmt.Errorf("update cash: %w", err)
		}

		// 4. Reduce holding
		h.Shares -= shares
		h.SharePrice = quote.Price
		h.Timestamp = now
		if err := tx.UpdateHolding(ctx, h); err != nil {
			return fmt.Errorf("update holding: %w", err)
		}

		receipt = models.Receipt{Transaction: t, Holding: h, Cash: cash}
		return nil
	})
	if err != nil {
		return models.Receipt{}, err
	}
	return receipt, nil
}

func findHolding(rows []models.Holding, symbol string) (models.Holding, bool) {
	for _, h := range rows {
		if h.Symbol == symbol {
			return h, true
		}
	}
	return models.Holding{}, false
}

func sellable(h models.Holding, ok bool, symbol string, shares int64) error {
	if !ok {
		return fmt.Errorf("%w: %s", ErrSymbolNotHeld, symbol)
	}
	if shares > h.Shares {
		return fmt.Errorf("%w: you own %d, trying to sell %d", ErrInsufficientShares, h.Shares, shares)
	}
	return nil
}

// announce publishes a committed trade. A failed publish is logged only;
// the trade stays committed.
func (l *Ledger) announce(ctx context.Context, r models.Receipt) {
	t := r.Transaction
	l.logger.Info("trade executed",
		zap.Int64("user_id", t.UserID),
		zap.String("symbol", t.Symbol),
		zap.Int64("shares", t.Shares),
		zap.String("price", t.SharePrice.String()),
		zap.String("cash", r.Cash.String()),
	)

	err := l.publisher.Publish(ctx, events.TradeExecuted{
		EventID:    uuid.NewString(),
		UserID:     t.UserID,
		Symbol:     t.Symbol,
		Name:       t.Name,
		Shares:     t.Shares,
		SharePrice: t.SharePrice,
		CashAfter:  r.Cash,
		OccurredAt: t.Timestamp,
	})
	if err != nil {
		l.logger.Warn("publish trade event", zap.Int64("transaction_id", t.ID), zap.Error(err))
	}
}
