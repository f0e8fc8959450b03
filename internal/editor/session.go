package editor

import (
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an unlocked editor stays usable without activity.
const DefaultSessionTTL = 15 * time.Minute

// Session is the token issued on a successful unlock. It lives only in
// memory; every restart starts locked.
type Session struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func newSession(now time.Time, ttl time.Duration) *Session {
	return &Session{
		Token:     uuid.NewString(),
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s *Session) touch(now time.Time, ttl time.Duration) {
	s.ExpiresAt = now.Add(ttl)
}

// Remaining returns the time left before expiry, never negative.
func (s *Session) Remaining(now time.Time) time.Duration {
	if d := s.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}
