// Package memory is an in-memory ledger store for tests and demos.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/atharvakonge/finance/internal/ledger"
	"github.com/atharvakonge/finance/internal/models"
	"github.com/shopspring/decimal"
)

type holdingKey struct {
	userID int64
	symbol string
}

// state is everything the store holds. Tx works on a clone of it.
type state struct {
	users        map[int64]models.User
	usernames    map[string]int64
	transactions []models.Transaction
	holdings     map[holdingKey]models.Holding
	nextUserID   int64
	nextTxID     int64
}

func (s *state) clone() *state {
	c := &state{
		users:        make(map[int64]models.User, len(s.users)),
		usernames:    make(map[string]int64, len(s.usernames)),
		transactions: make([]models.Transaction, len(s.transactions)),
		holdings:     make(map[holdingKey]models.Holding, len(s.holdings)),
		nextUserID:   s.nextUserID,
		nextTxID:     s.nextTxID,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.usernames {
		c.usernames[k] = v
	}
	copy(c.transactions, s.transactions)
	for k, v := range s.holdings {
		c.holdings[k] = v
	}
	return c
}

// Store is safe for concurrent use.
type Store struct {
	mu sync.RWMutex
	s  *state
}

// New creates an empty store.
func New() *Store {
	return &Store{s: &state{
		users:     make(map[int64]models.User),
		usernames: make(map[string]int64),
		holdings:  make(map[holdingKey]models.Holding),
	}}
}

// Tx applies fn to a copy of the state and keeps the copy only if fn succeeds.
func (m *Store) Tx(ctx context.Context, fn func(tx ledger.LedgerTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	work := m.s.clone()
	if err := fn(&memTx{s: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.s = work
	return nil
}

func (m *Store) Cash(_ context.Context, userID int64) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.s.users[userID]
	if !ok {
		return decimal.Zero, ledger.ErrUserNotFound
	}
	return u.Cash, nil
}

func (m *Store) Holdings(_ context.Context, userID int64) ([]models.Holding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Holding, 0)
	for k, h := range m.s.holdings {
		if k.userID == userID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (m *Store) Transactions(_ context.Context, userID int64) ([]models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Transaction, 0)
	for _, t := range m.s.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *Store) CreateUser(_ context.Context, username, hash string, cash decimal.Decimal) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.s.usernames[username]; taken {
		return models.User{}, ledger.ErrDuplicateUsername
	}
	m.s.nextUserID++
	u := models.User{
		ID:        m.s.nextUserID,
		Username:  username,
		Hash:      hash,
		Cash:      cash,
		CreatedAt: time.Now(),
	}
	m.s.users[u.ID] = u
	m.s.usernames[username] = u.ID
	return u, nil
}

func (m *Store) UserByUsername(_ context.Context, username string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.s.usernames[username]
	if !ok {
		return models.User{}, ledger.ErrUserNotFound
	}
	return m.s.users[id], nil
}

func (m *Store) UserByID(_ context.Context, id int64) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.s.users[id]
	if !ok {
		return models.User{}, ledger.ErrUserNotFound
	}
	return u, nil
}

func (m *Store) Close() error { return nil }

type memTx struct {
	s *state
}

func (t *memTx) Cash(_ context.Context, userID int64) (decimal.Decimal, error) {
	u, ok := t.s.users[userID]
	if !ok {
		return decimal.Zero, ledger.ErrUserNotFound
	}
	return u.Cash, nil
}

func (t *memTx) SetCash(_ context.Context, userID int64, cash decimal.Decimal) error {
	u, ok := t.s.users[userID]
	if !ok {
		return ledger.ErrUserNotFound
	}
	u.Cash = cash
	t.s.users[userID] = u
	return nil
}

func (t *memTx) AppendTransaction(_ context.Context, tr *models.Transaction) error {
	t.s.nextTxID++
	tr.ID = t.s.nextTxID
	t.s.transactions = append(t.s.transactions, *tr)
	return nil
}

func (t *memTx) Holding(_ context.Context, userID int64, symbol string) (models.Holding, bool, error) {
	h, ok := t.s.holdings[holdingKey{userID, symbol}]
	return h, ok, nil
}

func (t *memTx) InsertHolding(_ context.Context, h models.Holding) error {
	t.s.holdings[holdingKey{h.UserID, h.Symbol}] = h
	return nil
}

func (t *memTx) UpdateHolding(_ context.Context, h models.Holding) error {
	t.s.holdings[holdingKey{h.UserID, h.Symbol}] = h
	return nil
}

// Compile-time checks
var (
	_ ledger.Store     = (*Store)(nil)
	_ ledger.UserStore = (*Store)(nil)
)
