package stuco

import (
	"context"
	"fmt"
)

// Logger is the minimal logging surface the package needs. goliatone/go-logger
// loggers satisfy it; defLogger is the fallback.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// MailContext is the key/value context handed to the mail templates.
type MailContext map[string]any

// Mailer dispatches the three transactional emails of the account lifecycle.
// Implementations render a named template, attach the app logo, and deliver
// with the do-not-reply sender unless the context overrides it.
type Mailer interface {
	SendRegistrationConfirmEmail(ctx context.Context, recipient string, data MailContext) error
	SendPasswordResetEmail(ctx context.Context, recipient string, data MailContext) error
	SendPasswordResetSuccessEmail(ctx context.Context, recipient string, data MailContext) error
}

// CredentialBackend owns the password credential for an account. Exactly one
// variant is selected at configuration time: LocalHash stores a bcrypt hash on
// the user row, the Cognito backend delegates to the identity provider.
type CredentialBackend interface {
	// SignUp registers the credential. The returned hash is stored on the user
	// row; the external variant returns "" since the provider keeps the secret.
	SignUp(ctx context.Context, email, password string) (string, error)

	// ConfirmSignUp marks the credential's email as verified.
	ConfirmSignUp(ctx context.Context, email string) error

	// Authenticate verifies an email/password pair.
	Authenticate(ctx context.Context, email, password string) error

	// SetPassword replaces the credential without checking the old password.
	SetPassword(ctx context.Context, email, password string) error
}

// Identity holds the attributes of an authenticated identity.
type Identity interface {
	ID() string
	Email() string
	DisplayName() string
}

// Session holds attributes that are part of an auth session.
type Session interface {
	GetUserID() string
	GetEmail() string
	GetIssuer() string
	GetAudience() []string
}

// Authenticator logs users in and decodes session tokens.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	SessionFromToken(token string) (Session, error)
}

// LoginPayload is what the HTTP layer hands to the route authenticator.
type LoginPayload interface {
	GetIdentifier() string
	GetPassword() string
	GetExtendedSession() bool
}

// Config holds auth options.
type Config interface {
	GetSigningKey() string
	GetContextKey() string
	GetTokenExpiration() int
	GetExtendedTokenDuration() int
	GetIssuer() string
	GetAudience() []string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] STUCO "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] STUCO "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] STUCO "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] STUCO "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
