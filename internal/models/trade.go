package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a registered account and its cash balance
type User struct {
	ID        int64           `json:"id"`
	Username  string          `json:"username"`
	Hash      string          `json:"-"`
	Cash      decimal.Decimal `json:"cash"`
	CreatedAt time.Time       `json:"created_at"`
}

// Transaction is one immutable row of the trade log.
// Shares is signed: positive for a buy, negative for a sell.
type Transaction struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	Symbol     string          `json:"symbol"`
	Name       string          `json:"name"`
	Shares     int64           `json:"shares"`
	SharePrice decimal.Decimal `json:"share_price"`
	Timestamp  time.Time       `json:"datetime"`
}

// Holding is the current position of a user in one symbol.
// SharePrice is the price of the last trade, not a live quote.
type Holding struct {
	UserID     int64           `json:"user_id"`
	Symbol     string          `json:"symbol"`
	Name       string          `json:"name"`
	Shares     int64           `json:"shares"`
	SharePrice decimal.Decimal `json:"share_price"`
	Timestamp  time.Time       `json:"datetime"`
}

// Quote is what the quote service returns for a symbol
type Quote struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

// Position is a holding valued at the live quote price
type Position struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Shares int64           `json:"shares"`
	Price  decimal.Decimal `json:"price"`
	Total  decimal.Decimal `json:"total"`
}

// Portfolio is what the index page shows
type Portfolio struct {
	Positions []Position      `json:"positions"`
	Cash      decimal.Decimal `json:"cash"`
	NetWorth  decimal.Decimal `json:"net_worth"`
}

// Receipt describes the outcome of a successful buy or sell
type Receipt struct {
	Transaction Transaction     `json:"transaction"`
	Holding     Holding         `json:"holding"`
	Cash        decimal.Decimal `json:"cash"`
}

// TradeRequest - what client sends to buy or sell.
// Shares stays a string so the ledger decides what a valid quantity is.
type TradeRequest struct {
	Symbol string `json:"symbol" form:"symbol" binding:"required"`
	Shares string `json:"shares" form:"shares" binding:"required"`
}

// QuoteRequest - symbol to look up
type QuoteRequest struct {
	Symbol string `json:"symbol" form:"symbol" binding:"required"`
}

// RegisterRequest - new account form
type RegisterRequest struct {
	Username     string `json:"username" form:"username"`
	Password     string `json:"password" form:"password"`
	Confirmation string `json:"confirmation" form:"confirmation"`
}

// LoginRequest - credentials form
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}
