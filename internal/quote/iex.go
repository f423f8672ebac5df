// Package quote provides ticker lookups for the ledger: an HTTP client for
// an IEX Cloud compatible API, a local simulator and a caching wrapper.
package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/atharvakonge/finance/internal/ledger"
	"github.com/atharvakonge/finance/internal/models"
	"github.com/shopspring/decimal"
)

// IEXClient looks up quotes on an IEX Cloud compatible endpoint:
// GET {base}/stable/stock/{symbol}/quote?token={key}
type IEXClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewIEXClient creates a client. timeout bounds every request.
func NewIEXClient(baseURL, apiKey string, timeout time.Duration) *IEXClient {
	return &IEXClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type iexQuote struct {
	Symbol      string          `json:"symbol"`
	CompanyName string          `json:"companyName"`
	LatestPrice decimal.Decimal `json:"latestPrice"`
}

func (c *IEXClient) Lookup(ctx context.Context, symbol string) (models.Quote, error) {
	symbol = ledger.NormalizeSymbol(symbol)
	if symbol == "" {
		return models.Quote{}, fmt.Errorf("%w: symbol not provided", ledger.ErrSymbolNotFound)
	}

	u := fmt.Sprintf("%s/stable/stock/%s/quote?token=%s",
		c.baseURL, url.PathEscape(symbol), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return models.Quote{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return models.Quote{}, fmt.Errorf("quote %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest:
		return models.Quote{}, fmt.Errorf("%w: %s", ledger.ErrSymbolNotFound, symbol)
	case resp.StatusCode != http.StatusOK:
		return models.Quote{}, fmt.Errorf("quote %s: unexpected status %s", symbol, resp.Status)
	}

	var q iexQuote
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		return models.Quote{}, fmt.Errorf("quote %s: decode: %w", symbol, err)
	}
	if q.Symbol == "" || !q.LatestPrice.IsPositive() {
		return models.Quote{}, fmt.Errorf("%w: %s", ledger.ErrSymbolNotFound, symbol)
	}

	return models.Quote{
		Symbol: ledger.NormalizeSymbol(q.Symbol),
		Name:   q.CompanyName,
		Price:  q.LatestPrice,
	}, nil
}

var _ ledger.QuoteService = (*IEXClient)(nil)
