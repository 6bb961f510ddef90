package models

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SetupPasswordRequest is the body of POST /api/auth/password/setup.
// Token is the plaintext setup token delivered to the user out-of-band.
type SetupPasswordRequest struct {
	Token    string `json:"token"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResendSetupRequest is the body of POST /api/auth/password/resend.
type ResendSetupRequest struct {
	Email string `json:"email"`
}

// LoginResponse carries the session credential and the authenticated user.
type LoginResponse struct {
	Session SessionCredential `json:"session"`
	User    UserView          `json:"user"`
}

// ErrorResponse is the uniform error body. Message is always generic for
// credential and token failures; RetryAfterSeconds is set only on
// rate-limit denials.
type ErrorResponse struct {
	Error             string `json:"error"`
	RetryAfterSeconds int64  `json:"retry_after_seconds,omitempty"`
}
