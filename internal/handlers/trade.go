package handlers

import (
	"net/http"

	"github.com/atharvakonge/finance/internal/ledger"
	"github.com/atharvakonge/finance/internal/models"
	"github.com/atharvakonge/finance/internal/render"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type positionView struct {
	models.Position
	PriceUSD string `json:"price_usd"`
	TotalUSD string `json:"total_usd"`
}

type portfolioResponse struct {
	Positions   []positionView  `json:"positions"`
	Cash        decimal.Decimal `json:"cash"`
	CashUSD     string          `json:"cash_usd"`
	NetWorth    decimal.Decimal `json:"net_worth"`
	NetWorthUSD string          `json:"net_worth_usd"`
}

type receiptResponse struct {
	Message string `json:"message"`
	models.Receipt
	CashUSD string `json:"cash_usd"`
}

// portfolio handles GET /api/portfolio
func (s *Server) portfolio(c *gin.Context) {
	p, err := s.Ledger.Portfolio(c.Request.Context(), currentUser(c))
	if err != nil {
		s.fail(c, "Portfolio", err)
		return
	}

	resp := portfolioResponse{
		Positions:   make([]positionView, 0, len(p.Positions)),
		Cash:        p.Cash,
		CashUSD:     render.USD(p.Cash),
		NetWorth:    p.NetWorth,
		NetWorthUSD: render.USD(p.NetWorth),
	}
	for _, pos := range p.Positions {
		resp.Positions = append(resp.Positions, positionView{
			Position: pos,
			PriceUSD: render.USD(pos.Price),
			TotalUSD: render.USD(pos.Total),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// quote handles POST /api/quote
func (s *Server) quote(c *gin.Context) {
	var req models.QuoteRequest
	if err := c.ShouldBind(&req); err != nil {
		s.badRequest(c, "symbol not provided")
		return
	}

	q, err := s.Quotes.Lookup(c.Request.Context(), ledger.NormalizeSymbol(req.Symbol))
	if err != nil {
		s.fail(c, "Lookup", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"quote":     q,
		"price_usd": render.USD(q.Price),
	})
}

func (s *Server) bindTrade(c *gin.Context) (symbol string, shares int64, ok bool) {
	var req models.TradeRequest
	if err := c.ShouldBind(&req); err != nil {
		s.badRequest(c, "symbol and shares are required")
		return "", 0, false
	}
	shares, err := ledger.ParseShares(req.Shares)
	if err != nil {
		s.fail(c, "ParseShares", err)
		return "", 0, false
	}
	return req.Symbol, shares, true
}

// buy handles POST /api/buy
func (s *Server) buy(c *gin.Context) {
	symbol, shares, ok := s.bindTrade(c)
	if !ok {
		return
	}

	r, err := s.Ledger.Buy(c.Request.Context(), currentUser(c), symbol, shares)
	if err != nil {
		s.fail(c, "Buy", err)
		return
	}
	c.JSON(http.StatusOK, receiptResponse{Message: "Bought!", Receipt: r, CashUSD: render.USD(r.Cash)})
}

// sell handles POST /api/sell
func (s *Server) sell(c *gin.Context) {
	symbol, shares, ok := s.bindTrade(c)
	if !ok {
		return
	}

	r, err := s.Ledger.Sell(c.Request.Context(), currentUser(c), symbol, shares)
	if err != nil {
		s.fail(c, "Sell", err)
		return
	}
	c.JSON(http.StatusOK, receiptResponse{Message: "Sold!", Receipt: r, CashUSD: render.USD(r.Cash)})
}

// sellSymbols handles GET /api/sell/symbols, the choices of the sell form.
func (s *Server) sellSymbols(c *gin.Context) {
	held, err := s.Ledger.Holdings(c.Request.Context(), currentUser(c))
	if err != nil {
		s.fail(c, "Holdings", err)
		return
	}
	symbols := make([]string, 0, len(held))
	for _, h := range held {
		symbols = append(symbols, h.Symbol)
	}
	c.JSON(http.StatusOK, gin.H{"symbols": symbols})
}

// history handles GET /api/history
func (s *Server) history(c *gin.Context) {
	log, err := s.Ledger.History(c.Request.Context(), currentUser(c))
	if err != nil {
		s.fail(c, "History", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transactions": log,
		"count":        len(log),
	})
}
