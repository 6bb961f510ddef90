package models

import "time"

// SetupToken is a one-time password-establishment grant. The row stores
// only the SHA-256 digest of the opaque token; the plaintext is delivered
// to the user out-of-band and never persisted.
//
// A token is redeemable iff UsedAt is nil and ExpiresAt is in the future.
// Redemption marks the row used atomically, so two concurrent redemptions
// of the same plaintext can never both succeed.
type SetupToken struct {
	TokenID     string     `json:"-"`
	UserID      string     `json:"-"`
	TokenDigest string     `json:"-"`
	ExpiresAt   time.Time  `json:"expires_at"`
	UsedAt      *time.Time `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Live reports whether the token is still redeemable at now.
func (t SetupToken) Live(now time.Time) bool {
	return t.UsedAt == nil && t.ExpiresAt.After(now)
}

// TableName returns the name of the database table
// associated with the SetupToken model.
func (t SetupToken) TableName() string {
	return "password_setup_tokens"
}
