package store

import "github.com/mkhasanov/storefront/internal/logger"

// Repositories aggregates every persistence-layer dependency the service
// layer consumes.
type Repositories struct {
	UserRepository       UserRepository
	SessionRepository    SessionRepository
	SetupTokenRepository SetupTokenRepository
	CredentialRepository CredentialRepository
	OrderRepository      OrderRepository
	AddressRepository    AddressRepository
	PaymentRepository    PaymentRepository
}

// NewRepositories wires all repositories onto one database connection.
func NewRepositories(db *DB, logger *logger.Logger) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(db, logger),
		SessionRepository:    NewSessionRepository(db, logger),
		SetupTokenRepository: NewSetupTokenRepository(db, logger),
		CredentialRepository: NewCredentialRepository(db, logger),
		OrderRepository:      NewOrderRepository(db, logger),
		AddressRepository:    NewAddressRepository(db, logger),
		PaymentRepository:    NewPaymentRepository(db, logger),
	}
}
