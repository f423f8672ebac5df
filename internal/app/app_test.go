package app

import (
	"context"
	"testing"
	"time"

	"github.com/atharvakonge/finance/internal/config"
	"github.com/atharvakonge/finance/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func memoryConfig() config.Config {
	return config.Config{
		DBDriver:      "memory",
		StartingCash:  "10000",
		QuoteCacheTTL: time.Minute,
		SessionTTL:    time.Hour,
		WSTick:        time.Hour,
		LogLevel:      "info",
	}
}

func TestNew_Memory(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := New(ctx, memoryConfig(), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, events.Nop{}, a.Publisher)

	u, err := a.Credentials.Register(ctx, "alice", "password1", "password1")
	require.NoError(t, err)

	// Simulated prices are available without an API key.
	r, err := a.Ledger.Buy(ctx, u.ID, "aapl", 1)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", r.Transaction.Symbol)
	require.NoError(t, a.Ledger.CheckInvariants(ctx, u.ID))
}

func TestNew_SQLite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := memoryConfig()
	cfg.DBDriver = "sqlite3"
	cfg.DBPath = t.TempDir() + "/finance.db"

	a, err := New(ctx, cfg, zap.NewNop())
	require.NoError(t, err)

	_, err = a.Credentials.Register(ctx, "bob", "password1", "password1")
	require.NoError(t, err)
	require.NoError(t, a.Close())

	// A second open sees the same account.
	b, err := New(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer b.Close()
	_, err = b.Store.UserByUsername(ctx, "bob")
	assert.NoError(t, err)
}

func TestNew_BadCash(t *testing.T) {
	cfg := memoryConfig()
	cfg.StartingCash = "x"
	_, err := New(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestNew_RejectsNonPositiveDurations(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := memoryConfig()
	cfg.WSTick = 0
	_, err := New(ctx, cfg, zap.NewNop())
	assert.ErrorContains(t, err, "WS_TICK")

	cfg = memoryConfig()
	cfg.SessionTTL = 0
	_, err = New(ctx, cfg, zap.NewNop())
	assert.ErrorContains(t, err, "SESSION_TTL")
}

func TestNewLogger(t *testing.T) {
	cfg := memoryConfig()
	cfg.GinMode = "release"
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)

	cfg.LogLevel = "loud"
	_, err = NewLogger(cfg)
	assert.Error(t, err)
}
