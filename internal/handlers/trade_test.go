package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/atharvakonge/finance/internal/auth"
	"github.com/atharvakonge/finance/internal/ledger"
	"github.com/atharvakonge/finance/internal/quote"
	"github.com/atharvakonge/finance/internal/store/memory"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*Server, *quote.Simulated) {
	t.Helper()

	store := memory.New()
	quotes := quote.NewStatic()
	quotes.Set("AAPL", "Apple Inc.", decimal.NewFromInt(100))
	l := ledger.New(store, quotes)
	creds := auth.NewCredentials(store, decimal.NewFromInt(10000), bcrypt.MinCost)
	s := NewServer(l, quotes, creds, auth.NewSessions(time.Hour), zap.NewNop(), 10*time.Millisecond)
	return s, quotes
}

type client struct {
	t      *testing.T
	s      *Server
	cookie *http.Cookie
}

func (c *client) do(method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	w := httptest.NewRecorder()
	c.s.R.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.Name == sessionCookie {
			if ck.MaxAge < 0 {
				c.cookie = nil
			} else {
				c.cookie = ck
			}
		}
	}

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func loggedIn(t *testing.T, s *Server) *client {
	t.Helper()
	c := &client{t: t, s: s}

	w, _ := c.do(http.MethodPost, "/api/register", map[string]string{
		"username": "alice", "password": "password1", "confirmation": "password1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, _ = c.do(http.MethodPost, "/api/login", map[string]string{"username": "alice", "password": "password1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, c.cookie)
	return c
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	c := &client{t: t, s: s}

	w, body := c.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))
}

func TestRegister_Errors(t *testing.T) {
	s, _ := newTestServer(t)
	c := loggedIn(t, s)

	w, body := c.do(http.MethodPost, "/api/register", map[string]string{
		"username": "alice", "password": "password1", "confirmation": "password1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "duplicate_username", body["code"])

	w, body = c.do(http.MethodPost, "/api/register", map[string]string{
		"username": "bob", "password": "short", "confirmation": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_registration", body["code"])
}

func TestLogin_Forbidden(t *testing.T) {
	s, _ := newTestServer(t)
	loggedIn(t, s)
	c := &client{t: t, s: s}

	w, body := c.do(http.MethodPost, "/api/login", map[string]string{"username": "alice", "password": "nope12345"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "invalid_credentials", body["code"])

	w, _ = c.do(http.MethodGet, "/api/portfolio", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTradingFlow(t *testing.T) {
	s, quotes := newTestServer(t)
	c := loggedIn(t, s)

	w, body := c.do(http.MethodPost, "/api/quote", map[string]string{"symbol": "aapl"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "$100.00", body["price_usd"])

	w, body = c.do(http.MethodPost, "/api/buy", map[string]string{"symbol": "AAPL", "shares": "10"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "$9,000.00", body["cash_usd"])

	w, body = c.do(http.MethodPost, "/api/buy", map[string]string{"symbol": "AAPL", "shares": "1000"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "insufficient_funds", body["code"])

	w, body = c.do(http.MethodPost, "/api/buy", map[string]string{"symbol": "NOPE", "shares": "1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "symbol_not_found", body["code"])

	w, body = c.do(http.MethodPost, "/api/sell", map[string]string{"symbol": "AAPL", "shares": "1.5"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_quantity", body["code"])

	w, body = c.do(http.MethodPost, "/api/sell", map[string]string{"symbol": "AAPL", "shares": "20"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "insufficient_shares", body["code"])

	w, body = c.do(http.MethodPost, "/api/sell", map[string]string{"symbol": "MSFT", "shares": "1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "symbol_not_held", body["code"])

	w, _ = c.do(http.MethodPost, "/api/sell", map[string]string{"symbol": "AAPL"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	quotes.Set("AAPL", "Apple Inc.", decimal.NewFromInt(120))
	w, body = c.do(http.MethodPost, "/api/sell", map[string]string{"symbol": "AAPL", "shares": "4"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "$9,480.00", body["cash_usd"])

	w, body = c.do(http.MethodGet, "/api/portfolio", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "$9,480.00", body["cash_usd"])
	assert.Equal(t, "$10,200.00", body["net_worth_usd"])
	positions := body["positions"].([]any)
	require.Len(t, positions, 1)
	assert.Equal(t, "$720.00", positions[0].(map[string]any)["total_usd"])

	w, body = c.do(http.MethodGet, "/api/sell/symbols", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"AAPL"}, body["symbols"])

	w, body = c.do(http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), body["count"])

	w, _ = c.do(http.MethodPost, "/api/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = c.do(http.MethodGet, "/api/history", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestQuoteFeed(t *testing.T) {
	s, _ := newTestServer(t)
	c := loggedIn(t, s)

	w, _ := c.do(http.MethodPost, "/api/buy", map[string]string{"symbol": "AAPL", "shares": "1"})
	require.Equal(t, http.StatusOK, w.Code)

	srv := httptest.NewServer(s.R)
	defer srv.Close()

	header := http.Header{}
	header.Set("Cookie", c.cookie.Name+"="+c.cookie.Value)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/quotes"
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var update PriceUpdate
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, "AAPL", update.Symbol)
	assert.True(t, update.Price.Equal(decimal.NewFromInt(100)))
}

func TestQuoteFeed_RequiresLogin(t *testing.T) {
	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.R)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/quotes"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
