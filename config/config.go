// Package config loads application settings from the environment, with an
// optional .env file for development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/stucoapp/stuco"
)

// App holds the full application configuration. Implements stuco.Config for
// the session surface.
type App struct {
	ListenAddr string
	BaseURL    string
	DSN        string

	UseCognito bool

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	CognitoUserPoolID   string
	CognitoClientID     string
	CognitoClientSecret string

	SystemEmailSender      string
	EmailLogoPath          string
	ConfirmationCodeLength int

	SigningKey            string
	ContextKey            string
	TokenExpiration       int
	ExtendedTokenDuration int
	Issuer                string
	Audience              []string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present.
func Load() (*App, error) {
	// missing .env is fine outside development
	_ = godotenv.Load()

	app := &App{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		BaseURL:    getEnv("WEBAPP_BASE_URL", "http://localhost:8080"),
		DSN:        getEnv("DATABASE_DSN", "file:stuco.db?cache=shared"),

		UseCognito: getEnvBool("USE_COGNITO", false),

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),

		CognitoUserPoolID:   os.Getenv("COGNITO_USER_POOL_ID"),
		CognitoClientID:     os.Getenv("COGNITO_CLIENT_ID"),
		CognitoClientSecret: os.Getenv("COGNITO_CLIENT_SECRET"),

		SystemEmailSender:      getEnv("SYSTEM_EMAIL_SENDER", ""),
		EmailLogoPath:          getEnv("EMAIL_LOGO_PATH", ""),
		ConfirmationCodeLength: getEnvInt("CONFIRMATION_CODE_LENGTH", stuco.DefaultConfirmationCodeLength),

		SigningKey:            getEnv("JWT_SIGNING_KEY", ""),
		ContextKey:            getEnv("JWT_CONTEXT_KEY", "jwt"),
		TokenExpiration:       getEnvInt("JWT_TOKEN_EXPIRATION_HOURS", 72),
		ExtendedTokenDuration: getEnvInt("JWT_EXTENDED_TOKEN_HOURS", 720),
		Issuer:                getEnv("JWT_ISSUER", "stuco"),
		Audience:              []string{getEnv("JWT_AUDIENCE", "stuco")},
	}

	return app, nil
}

// GetSigningKey implements stuco.Config
func (a *App) GetSigningKey() string { return a.SigningKey }

// GetContextKey implements stuco.Config
func (a *App) GetContextKey() string { return a.ContextKey }

// GetTokenExpiration implements stuco.Config, in hours.
func (a *App) GetTokenExpiration() int { return a.TokenExpiration }

// GetExtendedTokenDuration implements stuco.Config, in hours.
func (a *App) GetExtendedTokenDuration() int { return a.ExtendedTokenDuration }

// GetIssuer implements stuco.Config
func (a *App) GetIssuer() string { return a.Issuer }

// GetAudience implements stuco.Config
func (a *App) GetAudience() []string { return a.Audience }

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	parsed, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return parsed
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return parsed
}
