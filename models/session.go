package models

import "time"

// Session is a server-side login record. Only the digest of the bearer
// token is persisted; the plaintext token leaves the server exactly once,
// in the login response that created the session.
type Session struct {
	SessionID string `json:"-"`

	// UserID is the identifier of the account that owns the session.
	UserID string `json:"-"`

	// TokenDigest is the keyed digest of the opaque bearer token.
	TokenDigest string `json:"-"`

	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// Expired reports whether the session is past its absolute expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// TableName returns the name of the database table
// associated with the Session model.
func (s Session) TableName() string {
	return "sessions"
}

// SessionCredential is what a successful login hands back to the caller:
// the plaintext bearer token and its absolute expiry.
type SessionCredential struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
