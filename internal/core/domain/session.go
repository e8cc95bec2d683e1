package domain

import (
	"errors"
	"time"
)

// ErrSessionNotFound covers both tokens that never existed and tokens past
// their expiry: callers must not be able to tell the two apart.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExists signals a session_token collision on insert. Tokens are
// expected to be cryptographically random, so a collision means the caller
// should mint a fresh token and retry.
var ErrSessionExists = errors.New("session token already in use")

// Session is an opaque bearer credential bound to one user. A user may hold
// any number of concurrent sessions. Rows are immutable after creation: a
// session is valid from CreatedAt until ExpiresAt (expiry is evaluated at
// read time, never written back), and revocation deletes the row.
type Session struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
