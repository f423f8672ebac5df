package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/atharvakonge/finance/internal/auth"
	"github.com/atharvakonge/finance/internal/ledger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	sessionCookie = "session"
	userIDKey     = "userID"
)

// Server owns the router and everything the handlers need.
type Server struct {
	R           *gin.Engine
	Ledger      *ledger.Ledger
	Quotes      ledger.QuoteService
	Credentials *auth.Credentials
	Sessions    *auth.Sessions
	Logger      *zap.Logger
	WSTick      time.Duration
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewServer wires the router, middleware and routes.
func NewServer(l *ledger.Ledger, quotes ledger.QuoteService, creds *auth.Credentials, sessions *auth.Sessions, logger *zap.Logger, wsTick time.Duration) *Server {
	g := gin.New()

	if wsTick <= 0 {
		wsTick = time.Second
	}
	s := &Server{
		R:           g,
		Ledger:      l,
		Quotes:      quotes,
		Credentials: creds,
		Sessions:    sessions,
		Logger:      logger,
		WSTick:      wsTick,
	}

	g.Use(s.requestLogger(), gin.Recovery(), noCache())

	g.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := g.Group("/api")
	{
		api.POST("/register", s.register)
		api.POST("/login", s.login)
		api.POST("/logout", s.logout)

		private := api.Group("", s.requireLogin())
		private.GET("/portfolio", s.portfolio)
		private.POST("/quote", s.quote)
		private.POST("/buy", s.buy)
		private.POST("/sell", s.sell)
		private.GET("/sell/symbols", s.sellSymbols)
		private.GET("/history", s.history)
	}

	g.GET("/ws/quotes", s.requireLogin(), s.quoteFeed)

	return s
}

// --- Middleware ---

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Info("http_request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// noCache makes sure responses are never cached.
func noCache() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Header("Expires", "0")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}

// requireLogin rejects requests without a live session with 403.
func (s *Server) requireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(sessionCookie)
		userID, ok := s.Sessions.Lookup(token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, apiError{Code: "forbidden", Message: "login required"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func currentUser(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}

// --- Helpers ---

// statusCode maps domain errors to HTTP: bad input is 400, failed
// authentication 403.
func statusCode(err error) (int, string) {
	switch {
	case errors.Is(err, ledger.ErrInvalidQuantity):
		return http.StatusBadRequest, "invalid_quantity"
	case errors.Is(err, ledger.ErrSymbolNotFound):
		return http.StatusBadRequest, "symbol_not_found"
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusBadRequest, "insufficient_funds"
	case errors.Is(err, ledger.ErrInsufficientShares):
		return http.StatusBadRequest, "insufficient_shares"
	case errors.Is(err, ledger.ErrSymbolNotHeld):
		return http.StatusBadRequest, "symbol_not_held"
	case errors.Is(err, ledger.ErrDuplicateUsername):
		return http.StatusBadRequest, "duplicate_username"
	case errors.Is(err, auth.ErrInvalidRegistration):
		return http.StatusBadRequest, "invalid_registration"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusForbidden, "invalid_credentials"
	case errors.Is(err, ledger.ErrUserNotFound):
		return http.StatusForbidden, "unknown_user"
	default:
		return http.StatusInternalServerError, "internal_server_error"
	}
}

func (s *Server) fail(c *gin.Context, where string, err error) {
	status, code := statusCode(err)
	if status == http.StatusInternalServerError {
		s.Logger.Error("internal_error", zap.String("where", where), zap.Error(err))
		c.JSON(status, apiError{Code: code, Message: "internal server error"})
		return
	}
	c.JSON(status, apiError{Code: code, Message: err.Error()})
}

func (s *Server) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, apiError{Code: "bad_request", Message: msg})
}
