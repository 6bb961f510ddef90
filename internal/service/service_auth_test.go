package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mkhasanov/storefront/internal/crypto"
	"github.com/mkhasanov/storefront/internal/logger"
	"github.com/mkhasanov/storefront/internal/ratelimit"
	"github.com/mkhasanov/storefront/internal/store"
	"github.com/mkhasanov/storefront/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─────────────────────────────────────────────
// Mocks: store repositories and the sender
// ─────────────────────────────────────────────

type mockUserRepo struct {
	createFn      func(ctx context.Context, user models.User) (models.User, error)
	findByEmailFn func(ctx context.Context, email string) (models.User, error)
	findByIDFn    func(ctx context.Context, userID string) (models.User, error)
}

func (m *mockUserRepo) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return user, nil
}

func (m *mockUserRepo) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return models.User{}, store.ErrNoUserWasFound
}

func (m *mockUserRepo) FindUserByID(ctx context.Context, userID string) (models.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, userID)
	}
	return models.User{}, store.ErrNoUserWasFound
}

type mockSessionRepo struct {
	createFn       func(ctx context.Context, session models.Session, retention int) (models.Session, error)
	findByDigestFn func(ctx context.Context, digest string) (models.Session, error)
	touchFn        func(ctx context.Context, sessionID string) error
	delByDigestFn  func(ctx context.Context, digest string) (bool, error)
	delByIDFn      func(ctx context.Context, sessionID string) error
	delAllFn       func(ctx context.Context, userID string) error
}

func (m *mockSessionRepo) CreateSession(ctx context.Context, session models.Session, retention int) (models.Session, error) {
	if m.createFn != nil {
		return m.createFn(ctx, session, retention)
	}
	session.SessionID = "s-1"
	return session, nil
}

func (m *mockSessionRepo) FindByDigest(ctx context.Context, digest string) (models.Session, error) {
	if m.findByDigestFn != nil {
		return m.findByDigestFn(ctx, digest)
	}
	return models.Session{}, store.ErrNoSessionWasFound
}

func (m *mockSessionRepo) Touch(ctx context.Context, sessionID string) error {
	if m.touchFn != nil {
		return m.touchFn(ctx, sessionID)
	}
	return nil
}

func (m *mockSessionRepo) DeleteByDigest(ctx context.Context, digest string) (bool, error) {
	if m.delByDigestFn != nil {
		return m.delByDigestFn(ctx, digest)
	}
	return false, nil
}

func (m *mockSessionRepo) DeleteByID(ctx context.Context, sessionID string) error {
	if m.delByIDFn != nil {
		return m.delByIDFn(ctx, sessionID)
	}
	return nil
}

func (m *mockSessionRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	if m.delAllFn != nil {
		return m.delAllFn(ctx, userID)
	}
	return nil
}

type mockTokenRepo struct {
	createFn  func(ctx context.Context, token models.SetupToken) (models.SetupToken, error)
	findFn    func(ctx context.Context, digest string) (models.SetupToken, error)
	hasLiveFn func(ctx context.Context, userID string) (bool, error)
}

func (m *mockTokenRepo) CreateToken(ctx context.Context, token models.SetupToken) (models.SetupToken, error) {
	if m.createFn != nil {
		return m.createFn(ctx, token)
	}
	token.TokenID = "t-1"
	return token, nil
}

func (m *mockTokenRepo) FindByDigest(ctx context.Context, digest string) (models.SetupToken, error) {
	if m.findFn != nil {
		return m.findFn(ctx, digest)
	}
	return models.SetupToken{}, store.ErrNoTokenWasFound
}

func (m *mockTokenRepo) HasLiveToken(ctx context.Context, userID string) (bool, error) {
	if m.hasLiveFn != nil {
		return m.hasLiveFn(ctx, userID)
	}
	return false, nil
}

type mockCredentialRepo struct {
	establishFn func(ctx context.Context, digest, email, passwordHash string) (models.User, error)
}

func (m *mockCredentialRepo) EstablishPassword(ctx context.Context, digest, email, passwordHash string) (models.User, error) {
	if m.establishFn != nil {
		return m.establishFn(ctx, digest, email, passwordHash)
	}
	return models.User{}, store.ErrTokenNotRedeemable
}

type mockSender struct {
	sendFn func(ctx context.Context, email, name, token string, expiresAt time.Time) (NotificationOutcome, error)
	calls  int
}

func (m *mockSender) SendPasswordSetup(ctx context.Context, email, name, token string, expiresAt time.Time) (NotificationOutcome, error) {
	m.calls++
	if m.sendFn != nil {
		return m.sendFn(ctx, email, name, token, expiresAt)
	}
	return NotificationSent, nil
}

// ─────────────────────────────────────────────
// Helper
// ─────────────────────────────────────────────

type authFixture struct {
	users       *mockUserRepo
	sessions    *mockSessionRepo
	tokens      *mockTokenRepo
	credentials *mockCredentialRepo
	sender      *mockSender
	svc         *authService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:       &mockUserRepo{},
		sessions:    &mockSessionRepo{},
		tokens:      &mockTokenRepo{},
		credentials: &mockCredentialRepo{},
		sender:      &mockSender{},
	}
	f.svc = &authService{
		users:            f.users,
		sessions:         f.sessions,
		tokens:           f.tokens,
		credentials:      f.credentials,
		hasher:           crypto.NewHasher("test-session-secret"),
		passwords:        crypto.NewPasswordHasher(8*1024, 1, 1),
		loginLimiter:     ratelimit.NewLimiter(5, time.Minute),
		redeemLimiter:    ratelimit.NewLimiter(5, time.Minute),
		sender:           f.sender,
		sessionTTL:       time.Hour,
		sessionRetention: 5,
		setupTokenTTL:    48 * time.Hour,
		now:              time.Now,
		logger:           logger.Nop(),
	}
	return f
}

func (f *authFixture) seedUser(t *testing.T, password string) models.User {
	t.Helper()

	user := models.User{
		UserID: "u-1",
		Email:  "buyer@example.com",
		Name:   "Buyer",
	}
	if password != "" {
		hash, err := f.svc.passwords.Hash(password)
		require.NoError(t, err)
		user.PasswordHash = hash
	}
	f.users.findByEmailFn = func(_ context.Context, email string) (models.User, error) {
		if email == user.Email {
			return user, nil
		}
		return models.User{}, store.ErrNoUserWasFound
	}
	f.users.findByIDFn = func(_ context.Context, userID string) (models.User, error) {
		if userID == user.UserID {
			return user, nil
		}
		return models.User{}, store.ErrNoUserWasFound
	}
	return user
}

// ─────────────────────────────────────────────
// Login
// ─────────────────────────────────────────────

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "correct horse")

	resp, err := f.svc.Login(context.Background(), models.LoginRequest{
		Email:    "Buyer@Example.com", // normalization folds the case
		Password: "correct horse",
	}, "203.0.113.7")
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Session.Token)
	assert.Len(t, resp.Session.Token, 43) // 32 bytes, base64url, unpadded
	assert.True(t, resp.Session.ExpiresAt.After(time.Now()))
	assert.Equal(t, "u-1", resp.User.UserID)
	assert.True(t, resp.User.HasPassword)
}

func TestLogin_UnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "correct horse")

	_, errUnknown := f.svc.Login(context.Background(), models.LoginRequest{
		Email:    "stranger@example.com",
		Password: "whatever",
	}, "203.0.113.7")
	_, errWrong := f.svc.Login(context.Background(), models.LoginRequest{
		Email:    "buyer@example.com",
		Password: "incorrect horse",
	}, "203.0.113.7")

	require.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	require.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error(), "credential failures must be indistinguishable")
}

func TestLogin_PasswordNotSet(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "")

	_, err := f.svc.Login(context.Background(), models.LoginRequest{
		Email:    "buyer@example.com",
		Password: "anything",
	}, "203.0.113.7")
	require.ErrorIs(t, err, ErrPasswordNotSet)
}

func TestLogin_EmptyInput(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.Login(context.Background(), models.LoginRequest{}, "203.0.113.7")
	require.ErrorIs(t, err, ErrInvalidDataProvided)
}

func TestLogin_RateLimited(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "correct horse")

	req := models.LoginRequest{Email: "buyer@example.com", Password: "incorrect horse"}
	for i := 0; i < 5; i++ {
		_, err := f.svc.Login(context.Background(), req, "203.0.113.7")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, err := f.svc.Login(context.Background(), req, "203.0.113.7")
	require.ErrorIs(t, err, ErrRateLimited)

	var denied *RateLimitedError
	require.ErrorAs(t, err, &denied)
	assert.Greater(t, denied.RetryAfter, time.Duration(0))
}

func TestLogin_RateLimitKeyedByRemote(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "correct horse")

	req := models.LoginRequest{Email: "buyer@example.com", Password: "correct horse"}
	for i := 0; i < 5; i++ {
		_, err := f.svc.Login(context.Background(), req, "203.0.113.7")
		require.NoError(t, err)
	}
	_, err := f.svc.Login(context.Background(), req, "203.0.113.7")
	require.ErrorIs(t, err, ErrRateLimited)

	// a different client address has its own budget
	_, err = f.svc.Login(context.Background(), req, "198.51.100.9")
	require.NoError(t, err)
}

// ─────────────────────────────────────────────
// Logout / CurrentUser
// ─────────────────────────────────────────────

func TestLogout_Idempotent(t *testing.T) {
	f := newAuthFixture()

	deleted := 0
	f.sessions.delByDigestFn = func(_ context.Context, digest string) (bool, error) {
		deleted++
		return deleted == 1, nil
	}

	require.NoError(t, f.svc.Logout(context.Background(), "some-token"))
	require.NoError(t, f.svc.Logout(context.Background(), "some-token"), "second revocation is a no-op")
	require.NoError(t, f.svc.Logout(context.Background(), ""), "empty token is a no-op")
	assert.Equal(t, 2, deleted)
}

func TestCurrentUser_Success(t *testing.T) {
	f := newAuthFixture()
	user := f.seedUser(t, "correct horse")

	touched := false
	digest := f.svc.hasher.TokenDigest("bearer-token")
	f.sessions.findByDigestFn = func(_ context.Context, got string) (models.Session, error) {
		require.Equal(t, digest, got, "lookup must use the keyed digest, never the plaintext")
		return models.Session{
			SessionID: "s-1",
			UserID:    user.UserID,
			ExpiresAt: time.Now().Add(time.Hour),
		}, nil
	}
	f.sessions.touchFn = func(_ context.Context, sessionID string) error {
		touched = true
		return nil
	}

	gotUser, gotSession, err := f.svc.CurrentUser(context.Background(), "bearer-token")
	require.NoError(t, err)
	assert.Equal(t, user.UserID, gotUser.UserID)
	assert.Equal(t, "s-1", gotSession.SessionID)
	assert.True(t, touched)
}

func TestCurrentUser_AbsentToken(t *testing.T) {
	f := newAuthFixture()

	_, _, err := f.svc.CurrentUser(context.Background(), "")
	require.ErrorIs(t, err, ErrNotAuthenticated)

	_, _, err = f.svc.CurrentUser(context.Background(), "unknown-token")
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestCurrentUser_LazyExpiry(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "correct horse")

	deletedID := ""
	f.sessions.findByDigestFn = func(_ context.Context, _ string) (models.Session, error) {
		return models.Session{
			SessionID: "s-old",
			UserID:    "u-1",
			ExpiresAt: time.Now().Add(-time.Minute),
		}, nil
	}
	f.sessions.delByIDFn = func(_ context.Context, sessionID string) error {
		deletedID = sessionID
		return nil
	}

	_, _, err := f.svc.CurrentUser(context.Background(), "stale-token")
	require.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, "s-old", deletedID, "expired session must be deleted on sight")
}

// ─────────────────────────────────────────────
// SetupPassword / ResendSetup
// ─────────────────────────────────────────────

func TestSetupPassword_Success(t *testing.T) {
	f := newAuthFixture()
	user := f.seedUser(t, "")

	var storedHash string
	f.credentials.establishFn = func(_ context.Context, digest, email, hash string) (models.User, error) {
		require.Equal(t, crypto.SetupDigest("plain-token"), digest)
		require.Equal(t, user.Email, email)
		storedHash = hash
		established := user
		established.PasswordHash = hash
		return established, nil
	}

	resp, err := f.svc.SetupPassword(context.Background(), models.SetupPasswordRequest{
		Token:    "plain-token",
		Email:    "buyer@example.com",
		Password: "fresh password",
	}, "203.0.113.7")
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Session.Token)
	assert.True(t, resp.User.HasPassword)
	assert.True(t, f.svc.passwords.Verify("fresh password", storedHash))
}

func TestSetupPassword_GenericFailures(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "")

	t.Run("unredeemable token", func(t *testing.T) {
		_, err := f.svc.SetupPassword(context.Background(), models.SetupPasswordRequest{
			Token:    "spent-token",
			Email:    "buyer@example.com",
			Password: "fresh password",
		}, "203.0.113.7")
		require.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("mismatched email", func(t *testing.T) {
		f.credentials.establishFn = func(_ context.Context, _, _, _ string) (models.User, error) {
			return models.User{}, store.ErrTokenEmailMismatch
		}
		_, err := f.svc.SetupPassword(context.Background(), models.SetupPasswordRequest{
			Token:    "plain-token",
			Email:    "other@example.com",
			Password: "fresh password",
		}, "203.0.113.7")
		require.ErrorIs(t, err, ErrTokenInvalid)
	})
}

// A transient store failure must not consume the token: the
// establishment transaction rolls back as a unit, so a retry with the
// same plaintext token succeeds once the store recovers.
func TestSetupPassword_RetryAfterTransientFailure(t *testing.T) {
	f := newAuthFixture()
	user := f.seedUser(t, "")

	// stateful stand-in for the transactional store: the first call
	// fails transiently without consuming the token, the second call
	// consumes it, any later call sees it spent
	consumed := false
	calls := 0
	f.credentials.establishFn = func(_ context.Context, digest, _, hash string) (models.User, error) {
		require.Equal(t, crypto.SetupDigest("plain-token"), digest)
		if consumed {
			return models.User{}, store.ErrTokenNotRedeemable
		}
		calls++
		if calls == 1 {
			return models.User{}, store.ErrTransientStore
		}
		consumed = true
		established := user
		established.PasswordHash = hash
		return established, nil
	}

	req := models.SetupPasswordRequest{
		Token:    "plain-token",
		Email:    "buyer@example.com",
		Password: "fresh password",
	}

	_, err := f.svc.SetupPassword(context.Background(), req, "203.0.113.7")
	require.ErrorIs(t, err, store.ErrTransientStore, "transient failures must stay retryable, not collapse into the generic token error")

	resp, err := f.svc.SetupPassword(context.Background(), req, "203.0.113.7")
	require.NoError(t, err, "retry with the same token must succeed")
	assert.True(t, resp.User.HasPassword)

	_, err = f.svc.SetupPassword(context.Background(), req, "203.0.113.7")
	require.ErrorIs(t, err, ErrTokenInvalid, "the token is single-use once establishment committed")
}

func TestResendSetup_Outcomes(t *testing.T) {
	t.Run("unknown email is silently accepted", func(t *testing.T) {
		f := newAuthFixture()
		require.NoError(t, f.svc.ResendSetup(context.Background(), models.ResendSetupRequest{Email: "stranger@example.com"}, "203.0.113.7"))
		assert.Zero(t, f.sender.calls)
	})

	t.Run("established password suppresses the send", func(t *testing.T) {
		f := newAuthFixture()
		f.seedUser(t, "correct horse")
		require.NoError(t, f.svc.ResendSetup(context.Background(), models.ResendSetupRequest{Email: "buyer@example.com"}, "203.0.113.7"))
		assert.Zero(t, f.sender.calls)
	})

	t.Run("live token suppresses the send", func(t *testing.T) {
		f := newAuthFixture()
		f.seedUser(t, "")
		f.tokens.hasLiveFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
		created := false
		f.tokens.createFn = func(_ context.Context, token models.SetupToken) (models.SetupToken, error) {
			created = true
			return token, nil
		}
		require.NoError(t, f.svc.ResendSetup(context.Background(), models.ResendSetupRequest{Email: "buyer@example.com"}, "203.0.113.7"))
		assert.Zero(t, f.sender.calls)
		assert.False(t, created)
	})

	t.Run("passwordless user gets a fresh token and a message", func(t *testing.T) {
		f := newAuthFixture()
		f.seedUser(t, "")

		var createdDigest string
		f.tokens.createFn = func(_ context.Context, token models.SetupToken) (models.SetupToken, error) {
			createdDigest = token.TokenDigest
			return token, nil
		}
		var sentToken string
		f.sender.sendFn = func(_ context.Context, email, name, token string, _ time.Time) (NotificationOutcome, error) {
			require.Equal(t, "buyer@example.com", email)
			sentToken = token
			return NotificationSent, nil
		}

		require.NoError(t, f.svc.ResendSetup(context.Background(), models.ResendSetupRequest{Email: "buyer@example.com"}, "203.0.113.7"))
		require.Equal(t, 1, f.sender.calls)
		assert.Equal(t, crypto.SetupDigest(sentToken), createdDigest, "stored digest must match the delivered plaintext")
	})

	t.Run("delivery failure is not surfaced", func(t *testing.T) {
		f := newAuthFixture()
		f.seedUser(t, "")
		f.sender.sendFn = func(_ context.Context, _, _, _ string, _ time.Time) (NotificationOutcome, error) {
			return "", errors.New("gateway is down")
		}
		require.NoError(t, f.svc.ResendSetup(context.Background(), models.ResendSetupRequest{Email: "buyer@example.com"}, "203.0.113.7"))
	})
}
