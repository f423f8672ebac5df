package auth

import (
	"time"

	"github.com/atharvakonge/finance/internal/cache"
	"github.com/google/uuid"
)

type session struct {
	userID  int64
	expires time.Time
}

// Sessions maps opaque tokens to logged in user ids. Sessions live in
// process memory and are lost on restart.
type Sessions struct {
	entries *cache.MapCache[string, session]
	ttl     time.Duration
	now     func() time.Time
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		entries: cache.NewMapCache[string, session](),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Create starts a session for userID and returns its token.
func (s *Sessions) Create(userID int64) string {
	token := uuid.NewString()
	s.entries.Set(token, session{userID: userID, expires: s.now().Add(s.ttl)})
	return token
}

// Lookup returns the user of a live session.
func (s *Sessions) Lookup(token string) (int64, bool) {
	if token == "" {
		return 0, false
	}
	sess, ok := s.entries.Get(token)
	if !ok {
		return 0, false
	}
	if !s.now().Before(sess.expires) {
		s.entries.Delete(token)
		return 0, false
	}
	return sess.userID, true
}

// Destroy ends a session. Unknown tokens are ignored.
func (s *Sessions) Destroy(token string) {
	s.entries.Delete(token)
}

// Sweep drops expired sessions and returns how many were removed.
func (s *Sessions) Sweep() int {
	now := s.now()
	n := 0
	s.entries.Range(func(token string, sess session) bool {
		if !now.Before(sess.expires) {
			s.entries.Delete(token)
			n++
		}
		return true
	})
	return n
}
