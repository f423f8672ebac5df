// Package auth registers users, checks their passwords and tracks logged in
// sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/atharvakonge/finance/internal/ledger"
	"github.com/atharvakonge/finance/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidRegistration wraps every rejected registration form.
	ErrInvalidRegistration = errors.New("invalid registration")
	// ErrInvalidCredentials is returned for a wrong username or password.
	ErrInvalidCredentials = errors.New("invalid username and/or password")
)

const minPasswordLen = 8

// Credentials is the credential store: usernames mapped to password hashes.
type Credentials struct {
	users ledger.UserStore
	cash  decimal.Decimal
	cost  int
}

// NewCredentials creates a store giving new accounts startingCash.
// cost is the bcrypt cost; zero means bcrypt.DefaultCost.
func NewCredentials(users ledger.UserStore, startingCash decimal.Decimal, cost int) *Credentials {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Credentials{users: users, cash: startingCash, cost: cost}
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidRegistration, msg)
}

// ValidatePassword requires at least 8 characters, letters and digits only.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return invalid("password must contain at least 8 characters (letters/numbers only)")
	}
	for _, r := range password {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return invalid("password must contain at least 8 characters (letters/numbers only)")
		}
	}
	return nil
}

// Register creates an account. A taken username gives
// ledger.ErrDuplicateUsername.
func (c *Credentials) Register(ctx context.Context, username, password, confirmation string) (models.User, error) {
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		return models.User{}, invalid("must provide username")
	case password == "":
		return models.User{}, invalid("must provide password")
	}
	if err := ValidatePassword(password); err != nil {
		return models.User{}, err
	}
	switch {
	case confirmation == "":
		return models.User{}, invalid("must confirm password")
	case confirmation != password:
		return models.User{}, invalid("passwords don't match")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	return c.users.CreateUser(ctx, username, string(hash), c.cash)
}

// Authenticate returns the user when password matches its stored hash.
func (c *Credentials) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return models.User{}, ErrInvalidCredentials
	}
	u, err := c.users.UserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, ledger.ErrUserNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}
