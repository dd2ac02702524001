package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stucoapp/stuco"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.False(t, cfg.UseCognito)
	assert.Equal(t, stuco.DefaultConfirmationCodeLength, cfg.ConfirmationCodeLength)
	assert.Equal(t, "jwt", cfg.GetContextKey())
	assert.Equal(t, 72, cfg.GetTokenExpiration())
	assert.Equal(t, "stuco", cfg.GetIssuer())
	assert.Equal(t, []string{"stuco"}, cfg.GetAudience())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("USE_COGNITO", "true")
	t.Setenv("COGNITO_USER_POOL_ID", "us-east-1_pool")
	t.Setenv("CONFIRMATION_CODE_LENGTH", "8")
	t.Setenv("JWT_SIGNING_KEY", "secret")
	t.Setenv("JWT_TOKEN_EXPIRATION_HOURS", "24")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.True(t, cfg.UseCognito)
	assert.Equal(t, "us-east-1_pool", cfg.CognitoUserPoolID)
	assert.Equal(t, 8, cfg.ConfirmationCodeLength)
	assert.Equal(t, "secret", cfg.GetSigningKey())
	assert.Equal(t, 24, cfg.GetTokenExpiration())
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("CONFIRMATION_CODE_LENGTH", "not-a-number")
	t.Setenv("USE_COGNITO", "not-a-bool")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, stuco.DefaultConfirmationCodeLength, cfg.ConfirmationCodeLength)
	assert.False(t, cfg.UseCognito)
}
