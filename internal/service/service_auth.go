package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mkhasanov/storefront/internal/config"
	"github.com/mkhasanov/storefront/internal/crypto"
	"github.com/mkhasanov/storefront/internal/logger"
	"github.com/mkhasanov/storefront/internal/ratelimit"
	"github.com/mkhasanov/storefront/internal/store"
	"github.com/mkhasanov/storefront/models"
)

// Rate-limited operation names. They form the Op part of the composite
// limiter key and never collide with subject or remote values because
// the key is a struct, not a joined string.
const (
	opLogin  = "login"
	opRedeem = "redeem"
	opResend = "resend"
)

// AuthDeps bundles the collaborators of the auth service. Everything is
// injected; the service holds no ambient globals.
type AuthDeps struct {
	Users         store.UserRepository
	Sessions      store.SessionRepository
	Tokens        store.SetupTokenRepository
	Credentials   store.CredentialRepository
	Hasher        *crypto.Hasher
	Passwords     *crypto.PasswordHasher
	LoginLimiter  *ratelimit.Limiter
	RedeemLimiter *ratelimit.Limiter
	Sender        NotificationSender
}

// authService is the concrete implementation of AuthService. It owns the
// credential checks, the session lifecycle and the setup-token flows;
// persistence is delegated to the injected repositories.
type authService struct {
	users       store.UserRepository
	sessions    store.SessionRepository
	tokens      store.SetupTokenRepository
	credentials store.CredentialRepository

	// hasher produces the keyed digest under which session tokens are
	// stored; passwords is the slow Argon2id hasher for login credentials.
	hasher    *crypto.Hasher
	passwords *crypto.PasswordHasher

	loginLimiter  *ratelimit.Limiter
	redeemLimiter *ratelimit.Limiter
	sender        NotificationSender

	sessionTTL       time.Duration
	sessionRetention int
	setupTokenTTL    time.Duration

	// now is the clock, injectable in tests.
	now func() time.Time

	logger *logger.Logger
}

// NewAuthService constructs an AuthService from its collaborators and the
// application config. The returned service is safe for concurrent use;
// all state is read-only after construction.
func NewAuthService(deps AuthDeps, cfg config.App, logger *logger.Logger) AuthService {
	return &authService{
		users:            deps.Users,
		sessions:         deps.Sessions,
		tokens:           deps.Tokens,
		credentials:      deps.Credentials,
		hasher:           deps.Hasher,
		passwords:        deps.Passwords,
		loginLimiter:     deps.LoginLimiter,
		redeemLimiter:    deps.RedeemLimiter,
		sender:           deps.Sender,
		sessionTTL:       cfg.SessionTTL,
		sessionRetention: cfg.SessionRetention,
		setupTokenTTL:    cfg.SetupTokenTTL,
		now:              time.Now,
		logger:           logger,
	}
}

// Login authenticates by email and password and opens a session.
//
// Returns:
//   - ErrInvalidDataProvided if email or password is empty.
//   - *RateLimitedError when the attempt budget for (login, email, remote)
//     is exhausted.
//   - ErrPasswordNotSet for an account that never established a password.
//   - ErrInvalidCredentials for unknown emails and wrong passwords alike.
func (a *authService) Login(ctx context.Context, req models.LoginRequest, remote string) (models.LoginResponse, error) {
	log := logger.FromContext(ctx)

	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return models.LoginResponse{}, ErrInvalidDataProvided
	}

	if denied := a.checkLimit(a.loginLimiter, opLogin, email, remote); denied != nil {
		log.Warn().Str("email", email).Str("remote", remote).Msg("login rate limit exceeded")
		return models.LoginResponse{}, denied
	}

	user, err := a.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			log.Info().Str("email", email).Msg("login attempt for unknown email")
			return models.LoginResponse{}, ErrInvalidCredentials
		}
		log.Err(err).Str("email", email).Msg("user lookup failed during login")
		return models.LoginResponse{}, fmt.Errorf("user lookup failed: %w", err)
	}

	if !user.HasPassword() {
		log.Info().Str("user_id", user.UserID).Msg("login attempt for account without password credential")
		return models.LoginResponse{}, ErrPasswordNotSet
	}

	if !a.passwords.Verify(req.Password, user.PasswordHash) {
		log.Info().Str("user_id", user.UserID).Msg("wrong password")
		return models.LoginResponse{}, ErrInvalidCredentials
	}

	credential, err := a.openSession(ctx, user.UserID)
	if err != nil {
		return models.LoginResponse{}, err
	}

	return models.LoginResponse{Session: credential, User: user.View()}, nil
}

// Logout revokes the session behind the token. Absent sessions are a
// successful no-op.
func (a *authService) Logout(ctx context.Context, token string) error {
	log := logger.FromContext(ctx)

	if token == "" {
		return nil
	}

	existed, err := a.sessions.DeleteByDigest(ctx, a.hasher.TokenDigest(token))
	if err != nil {
		log.Err(err).Msg("session revocation failed")
		return fmt.Errorf("session revocation failed: %w", err)
	}
	if !existed {
		log.Debug().Msg("logout for absent session")
	}

	return nil
}

// CurrentUser resolves the bearer token. A session past its expiry is
// deleted on sight (lazy expiry) and answered exactly like an absent one.
func (a *authService) CurrentUser(ctx context.Context, token string) (models.User, models.Session, error) {
	log := logger.FromContext(ctx)

	if token == "" {
		return models.User{}, models.Session{}, ErrNotAuthenticated
	}

	session, err := a.sessions.FindByDigest(ctx, a.hasher.TokenDigest(token))
	if err != nil {
		if errors.Is(err, store.ErrNoSessionWasFound) {
			return models.User{}, models.Session{}, ErrNotAuthenticated
		}
		log.Err(err).Msg("session lookup failed")
		return models.User{}, models.Session{}, fmt.Errorf("session lookup failed: %w", err)
	}

	if session.Expired(a.now()) {
		if delErr := a.sessions.DeleteByID(ctx, session.SessionID); delErr != nil {
			log.Err(delErr).Str("session_id", session.SessionID).Msg("expired session cleanup failed")
		}
		log.Info().Str("session_id", session.SessionID).Msg("expired session presented")
		return models.User{}, models.Session{}, ErrNotAuthenticated
	}

	// housekeeping only, a failed touch does not invalidate the session
	if touchErr := a.sessions.Touch(ctx, session.SessionID); touchErr != nil {
		log.Err(touchErr).Str("session_id", session.SessionID).Msg("session touch failed")
	}

	user, err := a.users.FindUserByID(ctx, session.UserID)
	if err != nil {
		log.Err(err).Str("user_id", session.UserID).Msg("session owner lookup failed")
		return models.User{}, models.Session{}, fmt.Errorf("session owner lookup failed: %w", err)
	}

	return user, session, nil
}

// SetupPassword redeems the setup token and establishes the password.
//
// The password is hashed up front; the redemption, the email-binding
// check, the credential write and the revocation of every pre-existing
// session then commit as one store transaction. A failure at any point
// rolls the redemption back, so the token survives for a retry —
// it is only ever consumed together with an established password.
//
// A token that is absent, used, expired, or bound to a different email is
// always answered with the one generic ErrTokenInvalid; the specific
// reason is classified into logs only.
func (a *authService) SetupPassword(ctx context.Context, req models.SetupPasswordRequest, remote string) (models.LoginResponse, error) {
	log := logger.FromContext(ctx)

	email := normalizeEmail(req.Email)
	if req.Token == "" || email == "" || req.Password == "" {
		return models.LoginResponse{}, ErrInvalidDataProvided
	}

	if denied := a.checkLimit(a.redeemLimiter, opRedeem, email, remote); denied != nil {
		log.Warn().Str("email", email).Str("remote", remote).Msg("token redemption rate limit exceeded")
		return models.LoginResponse{}, denied
	}

	hash, err := a.passwords.Hash(req.Password)
	if err != nil {
		log.Err(err).Msg("password hashing failed")
		return models.LoginResponse{}, fmt.Errorf("password hashing failed: %w", err)
	}

	digest := crypto.SetupDigest(req.Token)
	user, err := a.credentials.EstablishPassword(ctx, digest, email, hash)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrTokenNotRedeemable):
			a.classifyRedemptionFailure(ctx, digest)
			return models.LoginResponse{}, ErrTokenInvalid
		case errors.Is(err, store.ErrTokenEmailMismatch):
			log.Info().Str("email", email).Msg("setup token presented with mismatched email")
			return models.LoginResponse{}, ErrTokenInvalid
		default:
			log.Err(err).Msg("password establishment failed")
			return models.LoginResponse{}, fmt.Errorf("password establishment failed: %w", err)
		}
	}

	credential, err := a.openSession(ctx, user.UserID)
	if err != nil {
		return models.LoginResponse{}, err
	}

	log.Info().Str("user_id", user.UserID).Msg("password established via setup token")

	return models.LoginResponse{Session: credential, User: user.View()}, nil
}

// ResendSetup re-delivers a setup link. Every outcome looks identical to
// the caller: unknown email, established password and live-token
// suppression are logged, never surfaced.
func (a *authService) ResendSetup(ctx context.Context, req models.ResendSetupRequest, remote string) error {
	log := logger.FromContext(ctx)

	email := normalizeEmail(req.Email)
	if email == "" {
		return ErrInvalidDataProvided
	}

	if denied := a.checkLimit(a.redeemLimiter, opResend, email, remote); denied != nil {
		log.Warn().Str("email", email).Str("remote", remote).Msg("setup resend rate limit exceeded")
		return denied
	}

	user, err := a.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			log.Info().Str("email", email).Msg("setup resend for unknown email")
			return nil
		}
		log.Err(err).Str("email", email).Msg("user lookup failed during setup resend")
		return fmt.Errorf("user lookup failed: %w", err)
	}
	if user.HasPassword() {
		log.Info().Str("user_id", user.UserID).Msg("setup resend for account with established password")
		return nil
	}

	live, err := a.tokens.HasLiveToken(ctx, user.UserID)
	if err != nil {
		log.Err(err).Str("user_id", user.UserID).Msg("live token check failed")
		return fmt.Errorf("live token check failed: %w", err)
	}
	if live {
		log.Info().Str("user_id", user.UserID).Str("outcome", string(NotificationSkipped)).Msg("setup resend suppressed, live token exists")
		return nil
	}

	plaintext, err := crypto.NewOpaqueToken()
	if err != nil {
		log.Err(err).Msg("setup token generation failed")
		return fmt.Errorf("setup token generation failed: %w", err)
	}

	token := models.SetupToken{
		UserID:      user.UserID,
		TokenDigest: crypto.SetupDigest(plaintext),
		ExpiresAt:   a.now().Add(a.setupTokenTTL),
	}
	if _, err = a.tokens.CreateToken(ctx, token); err != nil {
		log.Err(err).Str("user_id", user.UserID).Msg("setup token insert failed")
		return fmt.Errorf("setup token insert failed: %w", err)
	}

	outcome, err := a.sender.SendPasswordSetup(ctx, user.Email, user.Name, plaintext, token.ExpiresAt)
	if err != nil {
		// token row stays valid; another resend attempt recovers
		log.Err(err).Str("user_id", user.UserID).Msg("setup notification delivery failed")
		return nil
	}
	log.Info().Str("user_id", user.UserID).Str("outcome", string(outcome)).Msg("setup notification processed")

	return nil
}

// openSession mints an opaque token, stores its digest and returns the
// plaintext credential. The plaintext leaves the server only here.
func (a *authService) openSession(ctx context.Context, userID string) (models.SessionCredential, error) {
	log := logger.FromContext(ctx)

	plaintext, err := crypto.NewOpaqueToken()
	if err != nil {
		log.Err(err).Msg("session token generation failed")
		return models.SessionCredential{}, fmt.Errorf("session token generation failed: %w", err)
	}

	session := models.Session{
		UserID:      userID,
		TokenDigest: a.hasher.TokenDigest(plaintext),
		ExpiresAt:   a.now().Add(a.sessionTTL),
	}
	created, err := a.sessions.CreateSession(ctx, session, a.sessionRetention)
	if err != nil {
		log.Err(err).Str("user_id", userID).Msg("session insert failed")
		return models.SessionCredential{}, fmt.Errorf("session insert failed: %w", err)
	}

	return models.SessionCredential{Token: plaintext, ExpiresAt: created.ExpiresAt}, nil
}

func (a *authService) checkLimit(limiter *ratelimit.Limiter, op, subject, remote string) error {
	key := ratelimit.Key{Op: op, Subject: subject, Remote: remote}
	if limiter.Allow(key) {
		return nil
	}

	return &RateLimitedError{RetryAfter: limiter.RetryAfter(key)}
}

// classifyRedemptionFailure distinguishes absent, used and expired tokens
// for the logs. The caller has already committed to the generic answer.
func (a *authService) classifyRedemptionFailure(ctx context.Context, digest string) {
	log := logger.FromContext(ctx)

	token, err := a.tokens.FindByDigest(ctx, digest)
	switch {
	case errors.Is(err, store.ErrNoTokenWasFound):
		log.Info().Str("reason", "unknown").Msg("setup token rejected")
	case err != nil:
		log.Err(err).Msg("setup token classification lookup failed")
	case token.UsedAt != nil:
		log.Info().Str("reason", "already used").Str("user_id", token.UserID).Msg("setup token rejected")
	default:
		log.Info().Str("reason", "expired").Str("user_id", token.UserID).Msg("setup token rejected")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
