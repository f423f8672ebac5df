// Package app builds the ledger and its collaborators from configuration.
// Both the HTTP server and the CLI start from here.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/atharvakonge/finance/internal/auth"
	"github.com/atharvakonge/finance/internal/cache"
	"github.com/atharvakonge/finance/internal/config"
	"github.com/atharvakonge/finance/internal/db"
	"github.com/atharvakonge/finance/internal/events"
	"github.com/atharvakonge/finance/internal/ledger"
	"github.com/atharvakonge/finance/internal/quote"
	"github.com/atharvakonge/finance/internal/store/memory"
	"go.uber.org/zap"
)

// Store is what the application needs from persistence.
type Store interface {
	ledger.Store
	ledger.UserStore
	Close() error
}

// App holds the wired components.
type App struct {
	Store       Store
	Quotes      ledger.QuoteService
	Publisher   events.Publisher
	Ledger      *ledger.Ledger
	Credentials *auth.Credentials
	Sessions    *auth.Sessions

	quoteCache *cache.Cache
}

// NewLogger builds a production logger in release mode and a development
// logger otherwise.
func NewLogger(cfg config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewDevelopmentConfig()
	if cfg.GinMode == "release" {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = level
	return zcfg.Build()
}

// OpenStore opens the store selected by cfg.DBDriver and creates missing
// tables.
func OpenStore(ctx context.Context, cfg config.Config) (Store, error) {
	if cfg.DBDriver == "memory" {
		return memory.New(), nil
	}
	s, err := db.OpenStore(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, err
	}
	return s, nil
}

// New wires every component. Background work (simulated prices, session
// sweeping) stops when ctx is done.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cash, err := cfg.Cash()
	if err != nil {
		return nil, err
	}

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &App{Store: store}

	var source ledger.QuoteService
	if cfg.APIKey != "" {
		source = quote.NewIEXClient(cfg.QuoteBaseURL, cfg.APIKey, cfg.QuoteTimeout)
		logger.Info("quotes from IEX", zap.String("base_url", cfg.QuoteBaseURL))
	} else {
		sim := quote.NewSimulated(time.Now().UnixNano())
		go sim.Run(ctx, cfg.WSTick)
		source = sim
		logger.Warn("API_KEY not set, using simulated quotes")
	}

	if cfg.QuoteCacheTTL > 0 {
		a.quoteCache, err = cache.New(10_000, cfg.QuoteCacheTTL)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("quote cache: %w", err)
		}
		a.Quotes = quote.NewCached(source, a.quoteCache)
	} else {
		a.Quotes = source
	}

	if len(cfg.KafkaBrokers) > 0 {
		a.Publisher = events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Info("publishing trades", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	} else {
		a.Publisher = events.Nop{}
	}

	a.Ledger = ledger.New(store, a.Quotes,
		ledger.WithPublisher(a.Publisher),
		ledger.WithLogger(logger.Named("ledger")),
	)
	a.Credentials = auth.NewCredentials(store, cash, 0)
	a.Sessions = auth.NewSessions(cfg.SessionTTL)
	go sweepSessions(ctx, a.Sessions, cfg.SessionTTL, logger)

	return a, nil
}

func sweepSessions(ctx context.Context, sessions *auth.Sessions, every time.Duration, logger *zap.Logger) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(); n > 0 {
				logger.Debug("expired sessions removed", zap.Int("count", n))
			}
		}
	}
}

// Close releases the store, the publisher and the quote cache.
func (a *App) Close() error {
	if a.quoteCache != nil {
		a.quoteCache.Close()
	}
	if err := a.Publisher.Close(); err != nil {
		a.Store.Close()
		return err
	}
	return a.Store.Close()
}
