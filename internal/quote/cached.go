package quote

import (
	"context"

	"github.com/atharvakonge/finance/internal/cache"
	"github.com/atharvakonge/finance/internal/ledger"
	"github.com/atharvakonge/finance/internal/models"
)

// Cached keeps successful lookups of next for the cache TTL.
// Misses and errors are not cached.
type Cached struct {
	next  ledger.QuoteService
	cache *cache.Cache
}

func NewCached(next ledger.QuoteService, c *cache.Cache) *Cached {
	return &Cached{next: next, cache: c}
}

func (c *Cached) Lookup(ctx context.Context, symbol string) (models.Quote, error) {
	key := ledger.NormalizeSymbol(symbol)
	if v, ok := c.cache.Get(key); ok {
		return v.(models.Quote), nil
	}

	q, err := c.next.Lookup(ctx, key)
	if err != nil {
		return models.Quote{}, err
	}
	c.cache.Set(key, q)
	return q, nil
}

var _ ledger.QuoteService = (*Cached)(nil)
