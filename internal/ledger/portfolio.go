package ledger

import (
	"context"
	"fmt"

	"github.com/atharvakonge/finance/internal/models"
	"github.com/shopspring/decimal"
)

// Cash returns the current balance of the user.
func (l *Ledger) Cash(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return l.store.Cash(ctx, userID)
}

// History returns every trade of the user, oldest first.
func (l *Ledger) History(ctx context.Context, userID int64) ([]models.Transaction, error) {
	return l.store.Transactions(ctx, userID)
}

// Holdings returns the holdings that still have shares, ordered by symbol.
func (l *Ledger) Holdings(ctx context.Context, userID int64) ([]models.Holding, error) {
	rows, err := l.store.Holdings(ctx, userID)
	if err != nil {
		return nil, err
	}
	held := make([]models.Holding, 0, len(rows))
	for _, h := range rows {
		if h.Shares > 0 {
			held = append(held, h)
		}
	}
	return held, nil
}

// Portfolio values every holding at its live quote price.
// Prices come from the quote service, not from Holding.SharePrice.
func (l *Ledger) Portfolio(ctx context.Context, userID int64) (models.Portfolio, error) {
	cash, err := l.store.Cash(ctx, userID)
	if err != nil {
		return models.Portfolio{}, err
	}
	held, err := l.Holdings(ctx, userID)
	if err != nil {
		return models.Portfolio{}, err
	}

	p := models.Portfolio{
		Positions: make([]models.Position, 0, len(held)),
		Cash:      cash,
		NetWorth:  cash,
	}
	for _, h := range held {
		q, err := l.lookup(ctx, h.Symbol)
		if err != nil {
			return models.Portfolio{}, fmt.Errorf("price %s: %w", h.Symbol, err)
		}
		total := q.Price.Mul(decimal.NewFromInt(h.Shares))
		p.Positions = append(p.Positions, models.Position{
			Symbol: h.Symbol,
			Name:   h.Name,
			Shares: h.Shares,
			Price:  q.Price,
			Total:  total,
		})
		p.NetWorth = p.NetWorth.Add(total)
	}
	return p, nil
}

// NetWorth is cash plus every holding valued at its live quote price.
func (l *Ledger) NetWorth(ctx context.Context, userID int64) (decimal.Decimal, error) {
	p, err := l.Portfolio(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return p.NetWorth, nil
}

// CheckInvariants verifies that the stored relations of the user agree:
// cash is not negative, and every holding row carries exactly the sum of the
// signed shares logged for its symbol.
func (l *Ledger) CheckInvariants(ctx context.Context, userID int64) error {
	cash, err := l.store.Cash(ctx, userID)
	if err != nil {
		return err
	}
	if cash.IsNegative() {
		return fmt.Errorf("%w: cash %s is negative", ErrInconsistent, cash)
	}

	rows, err := l.store.Holdings(ctx, userID)
	if err != nil {
		return err
	}
	log, err := l.store.Transactions(ctx, userID)
	if err != nil {
		return err
	}

	sums := make(map[string]int64)
	for _, t := range log {
		sums[t.Symbol] += t.Shares
	}
	for _, h := range rows {
		if h.Shares < 0 {
			return fmt.Errorf("%w: %s holds %d shares", ErrInconsistent, h.Symbol, h.Shares)
		}
		if sums[h.Symbol] != h.Shares {
			return fmt.Errorf("%w: %s holds %d shares, log sums to %d", ErrInconsistent, h.Symbol, h.Shares, sums[h.Symbol])
		}
		delete(sums, h.Symbol)
	}
	for symbol, n := range sums {
		if n != 0 {
			return fmt.Errorf("%w: %s has %d logged shares and no holding", ErrInconsistent, symbol, n)
		}
	}
	return nil
}
