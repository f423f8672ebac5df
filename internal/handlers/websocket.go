package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PriceUpdate represents a live quote of a held symbol
type PriceUpdate struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Change    decimal.Decimal `json:"change"` // percent since the previous update
	Timestamp time.Time       `json:"timestamp"`
}

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins (for development and demo)
	},
}

// quoteFeed handles GET /ws/quotes. Every tick it sends the live price of
// each symbol the user holds whose price moved since the last update.
func (s *Server) quoteFeed(c *gin.Context) {
	userID := currentUser(c)

	// Upgrade HTTP connection to WebSocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	s.Logger.Info("quote feed connected", zap.Int64("user_id", userID))

	// Reading is only used to notice the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ctx := c.Request.Context()
	last := make(map[string]decimal.Decimal)

	ticker := time.NewTicker(s.WSTick)
	defer ticker.Stop()

	for {
		if err := s.pushQuotes(ctx, conn, userID, last); err != nil {
			s.Logger.Info("quote feed closed", zap.Int64("user_id", userID), zap.Error(err))
			return
		}

		select {
		case <-closed:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) pushQuotes(ctx context.Context, conn *websocket.Conn, userID int64, last map[string]decimal.Decimal) error {
	held, err := s.Ledger.Holdings(ctx, userID)
	if err != nil {
		return err
	}

	for _, h := range held {
		q, err := s.Quotes.Lookup(ctx, h.Symbol)
		if err != nil {
			s.Logger.Warn("quote feed lookup", zap.String("symbol", h.Symbol), zap.Error(err))
			continue
		}

		prev, seen := last[h.Symbol]
		if seen && prev.Equal(q.Price) {
			continue
		}
		change := decimal.Zero
		if seen && !prev.IsZero() {
			change = q.Price.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Round(2)
		}
		last[h.Symbol] = q.Price

		update := PriceUpdate{
			Symbol:    q.Symbol,
			Price:     q.Price,
			Change:    change,
			Timestamp: time.Now(),
		}
		if err := conn.WriteJSON(update); err != nil {
			return err
		}
	}
	return nil
}
