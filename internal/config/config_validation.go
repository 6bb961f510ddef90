// SPDX-License-Identifier: Apache-2.0

package config

import "time"

// Fallback values applied when a field is absent from every source.
const (
	defaultSessionTTL       = 30 * 24 * time.Hour
	defaultSessionRetention = 5
	defaultSetupTokenTTL    = 48 * time.Hour

	defaultLoginMaxAttempts  = 5
	defaultRedeemMaxAttempts = 5
	defaultRateLimitWindow   = 15 * time.Minute
	defaultSweepInterval     = 5 * time.Minute

	defaultRequestTimeout = 30 * time.Second

	// OWASP (2024) Argon2id recommendation.
	defaultArgonMemoryKiB = 64 * 1024
	defaultArgonTime      = 1
	defaultArgonThreads   = 4
)

// applyDefaults fills zero-valued policy fields with their fallbacks.
// Secrets and addresses are never defaulted; their absence is a
// validation error instead.
func (cfg *StructuredConfig) applyDefaults() {
	if cfg.App.SessionTTL == 0 {
		cfg.App.SessionTTL = defaultSessionTTL
	}
	if cfg.App.SessionRetention == 0 {
		cfg.App.SessionRetention = defaultSessionRetention
	}
	if cfg.App.SetupTokenTTL == 0 {
		cfg.App.SetupTokenTTL = defaultSetupTokenTTL
	}

	if cfg.App.RateLimit.LoginMaxAttempts == 0 {
		cfg.App.RateLimit.LoginMaxAttempts = defaultLoginMaxAttempts
	}
	if cfg.App.RateLimit.RedeemMaxAttempts == 0 {
		cfg.App.RateLimit.RedeemMaxAttempts = defaultRedeemMaxAttempts
	}
	if cfg.App.RateLimit.Window == 0 {
		cfg.App.RateLimit.Window = defaultRateLimitWindow
	}
	if cfg.App.RateLimit.SweepInterval == 0 {
		cfg.App.RateLimit.SweepInterval = defaultSweepInterval
	}

	if cfg.App.Argon.MemoryKiB == 0 {
		cfg.App.Argon.MemoryKiB = defaultArgonMemoryKiB
	}
	if cfg.App.Argon.Time == 0 {
		cfg.App.Argon.Time = defaultArgonTime
	}
	if cfg.App.Argon.Threads == 0 {
		cfg.App.Argon.Threads = defaultArgonThreads
	}

	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = defaultRequestTimeout
	}
	if cfg.Mailer.RequestTimeout == 0 {
		cfg.Mailer.RequestTimeout = defaultRequestTimeout
	}
}

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Secrets are mandatory in every environment: a missing session secret
// would silently break digest lookups across restarts, and a missing
// webhook secret would make every production event unverifiable.
func (cfg *StructuredConfig) validate() error {
	if cfg.Server.HTTPAddress == "" {
		return ErrInvalidServerConfigs
	}

	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.App.SessionSecret == "" {
		return ErrInvalidAppConfigs
	}

	if cfg.App.IsProduction() && cfg.App.WebhookSecret == "" {
		return ErrInvalidAppConfigs
	}

	return nil
}
