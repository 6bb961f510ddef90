package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildFrom merges the given partial configs through the builder the same
// way GetStructuredConfig does, without touching process flags or env.
func buildFrom(t *testing.T, configs ...*StructuredConfig) (*StructuredConfig, error) {
	t.Helper()
	b := newConfigBuilder()
	b.configs = append(b.configs, configs...)
	return b.build()
}

func validBase() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			SessionSecret: "sess",
			WebhookSecret: "hook",
		},
		Server:  Server{HTTPAddress: "localhost:8080"},
		Storage: Storage{DB: DB{DSN: "postgres://localhost/shop"}},
	}
}

func TestBuild_AppliesDefaults(t *testing.T) {
	cfg, err := buildFrom(t, validBase())
	require.NoError(t, err)

	assert.Equal(t, 30*24*time.Hour, cfg.App.SessionTTL)
	assert.Equal(t, 5, cfg.App.SessionRetention)
	assert.Equal(t, 48*time.Hour, cfg.App.SetupTokenTTL)
	assert.Equal(t, 5, cfg.App.RateLimit.LoginMaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.App.RateLimit.Window)
	assert.Equal(t, uint32(64*1024), cfg.App.Argon.MemoryKiB)
	assert.Equal(t, uint32(1), cfg.App.Argon.Time)
	assert.Equal(t, uint8(4), cfg.App.Argon.Threads)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
}

func TestBuild_LaterSourceDoesNotOverrideNonZero(t *testing.T) {
	first := validBase()
	first.App.SessionTTL = time.Hour

	second := validBase()
	second.App.SessionTTL = 2 * time.Hour

	cfg, err := buildFrom(t, first, second)
	require.NoError(t, err)

	// mergo keeps the first non-zero value
	assert.Equal(t, time.Hour, cfg.App.SessionTTL)
}

func TestBuild_LaterSourceFillsZeroFields(t *testing.T) {
	first := validBase()
	first.Storage.DB.DSN = ""

	second := &StructuredConfig{
		Storage: Storage{DB: DB{DSN: "postgres://other/db"}},
	}

	cfg, err := buildFrom(t, first, second)
	require.NoError(t, err)
	assert.Equal(t, "postgres://other/db", cfg.Storage.DB.DSN)
}

func TestBuild_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*StructuredConfig)
		wantErr error
	}{
		{
			name:    "missing http address",
			mutate:  func(c *StructuredConfig) { c.Server.HTTPAddress = "" },
			wantErr: ErrInvalidServerConfigs,
		},
		{
			name:    "missing dsn",
			mutate:  func(c *StructuredConfig) { c.Storage.DB.DSN = "" },
			wantErr: ErrInvalidStorageConfigs,
		},
		{
			name:    "missing session secret",
			mutate:  func(c *StructuredConfig) { c.App.SessionSecret = "" },
			wantErr: ErrInvalidAppConfigs,
		},
		{
			name: "production without webhook secret",
			mutate: func(c *StructuredConfig) {
				c.App.Environment = EnvProduction
				c.App.WebhookSecret = ""
			},
			wantErr: ErrInvalidAppConfigs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validBase()
			tt.mutate(cfg)

			_, err := buildFrom(t, cfg)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBuild_NonProductionAllowsMissingWebhookSecret(t *testing.T) {
	cfg := validBase()
	cfg.App.Environment = "development"
	cfg.App.WebhookSecret = ""

	got, err := buildFrom(t, cfg)
	require.NoError(t, err)
	assert.False(t, got.App.IsProduction())
}
