package quote

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/atharvakonge/finance/internal/ledger"
	"github.com/atharvakonge/finance/internal/models"
	"github.com/shopspring/decimal"
)

type simStock struct {
	name  string
	price decimal.Decimal
}

// Simulated serves quotes from an in-process price table. Tick moves every
// price by a random -2% to +2%.
type Simulated struct {
	mu     sync.RWMutex
	stocks map[string]simStock
	rng    *rand.Rand
}

// NewSimulated creates a simulator seeded with a few large caps.
func NewSimulated(seed int64) *Simulated {
	s := &Simulated{
		stocks: make(map[string]simStock),
		rng:    rand.New(rand.NewSource(seed)),
	}
	s.Set("AAPL", "Apple Inc.", decimal.NewFromFloat(150.00))
	s.Set("GOOGL", "Alphabet Inc.", decimal.NewFromFloat(140.00))
	s.Set("MSFT", "Microsoft Corporation", decimal.NewFromFloat(380.00))
	s.Set("TSLA", "Tesla, Inc.", decimal.NewFromFloat(250.00))
	s.Set("AMZN", "Amazon.com, Inc.", decimal.NewFromFloat(180.00))
	s.Set("NVDA", "NVIDIA Corporation", decimal.NewFromFloat(800.00))
	s.Set("NFLX", "Netflix, Inc.", decimal.NewFromFloat(550.00))
	return s
}

// NewStatic creates a simulator with no symbols; prices only change through Set.
func NewStatic() *Simulated {
	return &Simulated{
		stocks: make(map[string]simStock),
		rng:    rand.New(rand.NewSource(1)),
	}
}

// Set adds or reprices a symbol.
func (s *Simulated) Set(symbol, name string, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stocks[ledger.NormalizeSymbol(symbol)] = simStock{name: name, price: price}
}

// Remove delists a symbol.
func (s *Simulated) Remove(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stocks, ledger.NormalizeSymbol(symbol))
}

// Symbols lists the known symbols in order.
func (s *Simulated) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.stocks))
	for sym := range s.stocks {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Tick applies one random move to every price, rounded to cents and never
// below one cent.
func (s *Simulated) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	minPrice := decimal.New(1, -2)
	for sym, st := range s.stocks {
		changePercent := (s.rng.Float64() - 0.5) * 4
		factor := decimal.NewFromFloat(1 + changePercent/100)
		st.price = st.price.Mul(factor).Round(2)
		if st.price.LessThan(minPrice) {
			st.price = minPrice
		}
		s.stocks[sym] = st
	}
}

// Run calls Tick every period until ctx is done. A non-positive period
// leaves prices fixed.
func (s *Simulated) Run(ctx context.Context, period time.Duration) {
	if period <= 0 {
		return
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

func (s *Simulated) Lookup(_ context.Context, symbol string) (models.Quote, error) {
	symbol = ledger.NormalizeSymbol(symbol)

	s.mu.RLock()
	st, ok := s.stocks[symbol]
	s.mu.RUnlock()
	if !ok {
		return models.Quote{}, fmt.Errorf("%w: %s", ledger.ErrSymbolNotFound, symbol)
	}
	return models.Quote{Symbol: symbol, Name: st.name, Price: st.price}, nil
}

var _ ledger.QuoteService = (*Simulated)(nil)
