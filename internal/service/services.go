package service

import (
	"github.com/mkhasanov/storefront/internal/config"
	"github.com/mkhasanov/storefront/internal/crypto"
	"github.com/mkhasanov/storefront/internal/logger"
	"github.com/mkhasanov/storefront/internal/ratelimit"
	"github.com/mkhasanov/storefront/internal/store"
)

type Services struct {
	AuthService    AuthService
	AccountService AccountService
	PaymentService PaymentService

	// LoginLimiter and RedeemLimiter are exposed so the workers layer can
	// sweep their expired windows.
	LoginLimiter  *ratelimit.Limiter
	RedeemLimiter *ratelimit.Limiter
}

func NewServices(repositories *store.Repositories, cfg config.StructuredConfig, sender NotificationSender, logger *logger.Logger) *Services {
	hasher := crypto.NewHasher(cfg.App.SessionSecret)
	passwords := crypto.NewPasswordHasher(cfg.App.Argon.MemoryKiB, cfg.App.Argon.Time, cfg.App.Argon.Threads)
	loginLimiter := ratelimit.NewLimiter(cfg.App.RateLimit.LoginMaxAttempts, cfg.App.RateLimit.Window)
	redeemLimiter := ratelimit.NewLimiter(cfg.App.RateLimit.RedeemMaxAttempts, cfg.App.RateLimit.Window)

	return &Services{
		AuthService: NewAuthService(AuthDeps{
			Users:         repositories.UserRepository,
			Sessions:      repositories.SessionRepository,
			Tokens:        repositories.SetupTokenRepository,
			Credentials:   repositories.CredentialRepository,
			Hasher:        hasher,
			Passwords:     passwords,
			LoginLimiter:  loginLimiter,
			RedeemLimiter: redeemLimiter,
			Sender:        sender,
		}, cfg.App, logger),
		AccountService: NewAccountService(repositories.OrderRepository, repositories.AddressRepository, logger),
		PaymentService: NewPaymentService(repositories.PaymentRepository, sender, cfg.App, logger),
		LoginLimiter:   loginLimiter,
		RedeemLimiter:  redeemLimiter,
	}
}
