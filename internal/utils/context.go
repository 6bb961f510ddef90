// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys,
// HTTP response writing, UUID generation, and other common operations.
package utils

import (
	"context"

	"github.com/mkhasanov/storefront/models"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// UserIDCtxKey is the key used to store the authenticated user identifier
// in the context. Used together with GetUserIDFromContext for type-safe
// retrieval.
var UserIDCtxKey = contextKey("userID")

// SessionIDCtxKey is the key used to store the validated session
// identifier in the context.
var SessionIDCtxKey = contextKey("sessionID")

// UserCtxKey is the key used to store the resolved account of the
// authenticated user. The auth middleware has already paid for the
// lookup; handlers read it from here instead of asking the store again.
var UserCtxKey = contextKey("user")

// GetUserIDFromContext retrieves the authenticated user identifier from
// the context.
//
// Returns the user ID and an ok flag:
//   - ok == true  — value is found and has the correct string type
//   - ok == false — value is missing or has an unexpected type
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	return userID, ok
}

// GetSessionIDFromContext retrieves the validated session identifier from
// the context. Same contract as GetUserIDFromContext.
func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(SessionIDCtxKey).(string)
	return sessionID, ok
}

// GetUserFromContext retrieves the resolved account of the authenticated
// user from the context. Same contract as GetUserIDFromContext.
func GetUserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(UserCtxKey).(models.User)
	return user, ok
}
