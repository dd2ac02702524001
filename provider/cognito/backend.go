package cognito

import (
	"context"

	"github.com/stucoapp/stuco"
)

// Backend implements stuco.CredentialBackend on top of a Cognito user pool.
// Local records never hold a usable hash when this backend is active.
type Backend struct {
	client *Client
	logger stuco.Logger
}

// NewBackend creates a Cognito credential backend.
func NewBackend(client *Client) *Backend {
	return &Backend{client: client}
}

// WithLogger sets the logger
func (b *Backend) WithLogger(logger stuco.Logger) *Backend {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// SignUp registers the credentials with the pool. The returned hash is a
// random sentinel so local rows stay unusable for direct login.
func (b *Backend) SignUp(ctx context.Context, email, password string) (string, error) {
	if err := stuco.ValidatePasswordStrength(password); err != nil {
		return "", err
	}

	if err := b.client.SignUp(ctx, email, password); err != nil {
		return "", err
	}

	return stuco.RandomPasswordHash(), nil
}

// ConfirmSignUp confirms the pool account for the email.
func (b *Backend) ConfirmSignUp(ctx context.Context, email string) error {
	return b.client.ConfirmSignUp(ctx, email)
}

// Authenticate verifies credentials against the pool.
func (b *Backend) Authenticate(ctx context.Context, email, password string) error {
	return b.client.Authenticate(ctx, email, password)
}

// SetPassword overwrites the pool password.
func (b *Backend) SetPassword(ctx context.Context, email, password string) error {
	if err := stuco.ValidatePasswordStrength(password); err != nil {
		return err
	}

	return b.client.SetPassword(ctx, email, password)
}
