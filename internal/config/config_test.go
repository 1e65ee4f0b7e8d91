package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("TOKEN_TTL", "")

	cfg := Load()
	require.Equal(t, "", cfg.ServerPort)
	require.Equal(t, 24*time.Hour, cfg.TokenTTL)
	require.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	require.Equal(t, 128, cfg.WSSendBuffer)
	require.True(t, cfg.IsProduction())
}

func TestLoad_ParsesOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("WS_SEND_BUFFER", "not-a-number")
	t.Setenv("AUTH_RATE_LIMIT_WINDOW", "1m")

	cfg := Load()
	require.Equal(t, 2*time.Hour, cfg.TokenTTL)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	require.Equal(t, 128, cfg.WSSendBuffer)
	require.Equal(t, time.Minute, cfg.AuthRateLimitWindow)
}

func TestValidate_ProductionNeedsSecret(t *testing.T) {
	cfg := &Config{Environment: "production", DatabasePath: "x.db", WSSendBuffer: 1}
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "JWT_SECRET_KEY")

	cfg.JWTSecretKey = "secret"
	require.NoError(t, cfg.Validate())
}

func TestValidate_DevelopmentAllowsEmptySecret(t *testing.T) {
	cfg := &Config{Environment: "development", DatabasePath: "x.db", WSSendBuffer: 8}
	require.NoError(t, cfg.Validate())

	cfg.WSSendBuffer = 0
	require.Error(t, cfg.Validate())
}
