// Package events announces executed trades to other systems.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TradeExecuted is emitted once a buy or sell has been committed.
type TradeExecuted struct {
	EventID    string          `json:"event_id"`
	UserID     int64           `json:"user_id"`
	Symbol     string          `json:"symbol"`
	Name       string          `json:"name"`
	Shares     int64           `json:"shares"` // +buy / -sell
	SharePrice decimal.Decimal `json:"share_price"`
	CashAfter  decimal.Decimal `json:"cash_after"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event TradeExecuted) error
	Close() error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, TradeExecuted) error { return nil }
func (Nop) Close() error                                { return nil }

var _ Publisher = Nop{}
