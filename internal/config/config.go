// Package config loads settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"debug"`

	// DBDriver is sqlite3, postgres or memory.
	DBDriver   string `env:"DB_DRIVER" envDefault:"sqlite3"`
	DBPath     string `env:"DB_PATH" envDefault:"finance.db"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5433"`
	DBUser     string `env:"DB_USER" envDefault:"trader"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"trading123"`
	DBName     string `env:"DB_NAME" envDefault:"trading_db"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// Without an API key quotes come from the built-in simulator.
	APIKey        string        `env:"API_KEY"`
	QuoteBaseURL  string        `env:"QUOTE_BASE_URL" envDefault:"https://cloud.iexapis.com"`
	QuoteCacheTTL time.Duration `env:"QUOTE_CACHE_TTL" envDefault:"15s"`
	QuoteTimeout  time.Duration `env:"QUOTE_TIMEOUT" envDefault:"5s"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"trades.executed"`

	StartingCash string        `env:"STARTING_CASH" envDefault:"10000.00"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	WSTick       time.Duration `env:"WS_TICK" envDefault:"1s"`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads .env when present, then the environment.
// A missing .env file is not an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the application cannot start with.
func (c Config) Validate() error {
	if _, err := c.Cash(); err != nil {
		return err
	}
	if c.WSTick <= 0 {
		return fmt.Errorf("WS_TICK must be positive, got %s", c.WSTick)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.QuoteCacheTTL < 0 {
		return fmt.Errorf("QUOTE_CACHE_TTL must not be negative, got %s", c.QuoteCacheTTL)
	}
	return nil
}

// Cash returns the starting balance of new accounts.
func (c Config) Cash() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(c.StartingCash))
	if err != nil {
		return decimal.Zero, fmt.Errorf("STARTING_CASH: %w", err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("STARTING_CASH must not be negative, got %s", d)
	}
	return d, nil
}

// DSN returns the data source name for DBDriver.
func (c Config) DSN() string {
	if c.DBDriver == "postgres" {
		return fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
		)
	}
	return c.DBPath + "?_busy_timeout=5000&_journal_mode=WAL&_fk=1"
}
