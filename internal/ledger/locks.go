package ledger

import "sync"

// accountLocks serializes trades per account instead of behind one global lock.
// It only protects callers sharing this process.
type accountLocks struct {
	locks map[int64]*sync.Mutex // user_id → mutex
	mu    sync.Mutex            // protects the map itself
}

func newAccountLocks() *accountLocks {
	return &accountLocks{
		locks: make(map[int64]*sync.Mutex),
	}
}

// lock locks the account of userID and returns the matching unlock.
func (a *accountLocks) lock(userID int64) (unlock func()) {
	a.mu.Lock()
	if a.locks[userID] == nil {
		a.locks[userID] = &sync.Mutex{}
	}
	m := a.locks[userID]
	a.mu.Unlock()

	m.Lock()
	return m.Unlock
}
