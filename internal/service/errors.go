package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")

	// ErrInvalidCredentials covers every credential failure on login:
	// unknown email, wrong password. One message, so callers cannot tell
	// which check failed.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrPasswordNotSet marks an account that exists but has never
	// established a password; the caller is pointed at the setup flow.
	ErrPasswordNotSet = errors.New("password is not set for this account")

	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrTokenInvalid is the single external answer for a setup token
	// that is absent, expired or already used. The distinction lives in
	// logs only.
	ErrTokenInvalid = errors.New("invalid or expired token")

	ErrRateLimited = errors.New("too many attempts")

	ErrInvalidSignature = errors.New("invalid event signature")
	ErrMalformedEvent   = errors.New("malformed payment event")
)

// RateLimitedError is a rate-limit denial carrying the duration after
// which the caller may retry. errors.Is(err, ErrRateLimited) matches it.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many attempts, retry after %s", e.RetryAfter)
}

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}
