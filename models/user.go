package models

import "time"

// User represents a storefront account used for authentication and order
// ownership. It contains identity attributes and credential-related data.
// Sensitive fields must never be exposed outside trusted boundaries.
type User struct {
	// UserID is the internal unique identifier of the user.
	UserID string `json:"-"`

	// Email is the unique, lowercase-normalized address of the account.
	// It doubles as the login identifier.
	Email string `json:"email"`

	// Name is the display name of the user.
	// It is non-sensitive and may be shown in UI.
	Name string `json:"name"`

	// Phone is an optional contact number.
	Phone string `json:"phone,omitempty"`

	// PasswordHash stores the Argon2id-encoded password credential.
	// Empty means the account has no password yet and must complete
	// credential setup. Never exposed via JSON.
	PasswordHash string `json:"-"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at"`
}

// HasPassword reports whether the account has completed credential setup.
func (u User) HasPassword() bool {
	return u.PasswordHash != ""
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

// UserView is the externally visible projection of a User.
// Credential material is stripped before it ever reaches a response body.
type UserView struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	HasPassword bool   `json:"has_password"`
}

// View converts a User into its external projection.
func (u User) View() UserView {
	return UserView{
		UserID:      u.UserID,
		Email:       u.Email,
		Name:        u.Name,
		Phone:       u.Phone,
		HasPassword: u.HasPassword(),
	}
}
