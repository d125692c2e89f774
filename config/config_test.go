package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/connecta")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DurabilityStrict, cfg.Collabo.DurabilityMode)
	assert.Equal(t, 5, cfg.Collabo.InviteLimit)
	assert.False(t, cfg.Collabo.ActivationRequiresFunding)
	assert.False(t, cfg.Collabo.EnforceChannelMembership)
	assert.Equal(t, FileStorageLocal, cfg.Storage.Backend)
	assert.Equal(t, "NGN", cfg.Payment.Currency)
	assert.Equal(t, 24*time.Hour, cfg.LLM.CacheTTL)
	assert.Equal(t, 5*time.Minute, cfg.Collabo.ReconcileGrace)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/connecta")
	t.Setenv("DURABILITY_MODE", "best-effort")
	t.Setenv("INVITE_LIMIT", "3")
	t.Setenv("ACTIVATION_REQUIRES_FUNDING", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("EVENT_POLL_INTERVAL", "2s")
	t.Setenv("RECONCILE_GRACE", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DurabilityBestEffort, cfg.Collabo.DurabilityMode)
	assert.Equal(t, 3, cfg.Collabo.InviteLimit)
	assert.True(t, cfg.Collabo.ActivationRequiresFunding)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 2*time.Second, cfg.Events.PollInterval)
	assert.Equal(t, 90*time.Second, cfg.Collabo.ReconcileGrace)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "8080"},
			Database: DatabaseConfig{DSN: "postgres://x"},
			App:      AppConfig{Environment: "development"},
			Collabo:  CollaboConfig{DurabilityMode: DurabilityStrict, InviteLimit: 5},
			Storage:  StorageConfig{Backend: FileStorageLocal},
			Events:   EventsConfig{MaxAttempts: 5},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing dsn", func(c *Config) { c.Database.DSN = "" }},
		{"unknown durability mode", func(c *Config) { c.Collabo.DurabilityMode = "sometimes" }},
		{"s3 without bucket", func(c *Config) { c.Storage.Backend = FileStorageS3 }},
		{"unknown storage", func(c *Config) { c.Storage.Backend = "ftp" }},
		{"production without firebase", func(c *Config) { c.App.Environment = "production" }},
		{"zero invite limit", func(c *Config) { c.Collabo.InviteLimit = 0 }},
		{"negative reconcile grace", func(c *Config) { c.Collabo.ReconcileGrace = -time.Minute }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
