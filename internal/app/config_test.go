package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "./data/documents", cfg.Storage.DocumentsDir)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)
	require.Equal(t, "venturelink", cfg.Auth.JWT.Issuer)
	require.Equal(t, 15*time.Minute, cfg.Auth.JWT.TTL)
	require.Equal(t, 720*time.Hour, cfg.Auth.Session.RefreshTTL)
	require.False(t, cfg.Email.SMTP.Enabled)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("VENTURELINK_SERVER_PORT", "9100")
	t.Setenv("VENTURELINK_DATABASE_DRIVER", "postgres")
	t.Setenv("VENTURELINK_AUTH_JWT_SECRET", "env-secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "env-secret", cfg.Auth.JWT.Secret)
}

func TestApplyRuntimeDefaultsGeneratesSecret(t *testing.T) {
	cfg := &Config{}
	generated, err := ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)
	require.True(t, generated["auth.jwt.secret"])
	require.NotEmpty(t, cfg.Auth.JWT.Secret)

	// An existing secret is left untouched.
	cfg2 := &Config{}
	cfg2.Auth.JWT.Secret = "configured"
	generated, err = ApplyRuntimeDefaults(cfg2)
	require.NoError(t, err)
	require.Empty(t, generated)
	require.Equal(t, "configured", cfg2.Auth.JWT.Secret)
}
