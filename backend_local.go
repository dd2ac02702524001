package stuco

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// MaxLoginAttempts is the maximum number of attempts a user gets in a period.
var MaxLoginAttempts = 5

// CoolDownPeriod is the period in which we enforce a cool down.
var CoolDownPeriod = "24h"

// LocalHashBackend is the CredentialBackend variant that keeps a bcrypt hash
// on the local user row. It is selected when no identity provider is
// configured.
type LocalHashBackend struct {
	repo   RepositoryManager
	logger Logger
}

var _ CredentialBackend = (*LocalHashBackend)(nil)

// NewLocalHashBackend creates a local-password credential backend.
func NewLocalHashBackend(repo RepositoryManager) *LocalHashBackend {
	return &LocalHashBackend{
		repo:   repo,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the backend.
func (b *LocalHashBackend) WithLogger(logger Logger) *LocalHashBackend {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// SignUp enforces the local strength rule and returns the hash for the
// caller to persist on the user row. Nothing external is called.
func (b *LocalHashBackend) SignUp(ctx context.Context, email, password string) (string, error) {
	if err := ValidatePasswordStrength(password); err != nil {
		return "", err
	}

	hash, err := HashPassword(password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return "", goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	return hash, nil
}

// ConfirmSignUp is a no-op locally; activation state lives on the user row
// and is flipped by the confirm handler.
func (b *LocalHashBackend) ConfirmSignUp(ctx context.Context, email string) error {
	return nil
}

// Authenticate compares the password against the stored hash, counting
// failed attempts and enforcing the cool down window.
func (b *LocalHashBackend) Authenticate(ctx context.Context, email, password string) error {
	user, err := b.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrMismatchedHashAndPassword
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user.LoginAttemptAt != nil {
		expired, err := IsOutsideThresholdPeriod(*user.LoginAttemptAt, CoolDownPeriod)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to calculate login attempt cooldown")
		}

		if expired {
			user.LoginAttempts = 0
		}
	}

	// if we have too many attempts in the given window, cool off!
	if user.LoginAttempts > MaxLoginAttempts {
		return ErrTooManyLoginAttempts
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if err2 := b.repo.Users().TrackAttemptedLogin(ctx, user); err2 != nil {
			return goerrors.Wrap(err2, goerrors.CategoryInternal, "failed to track login attempt")
		}

		return ErrMismatchedHashAndPassword
	}

	if err := b.repo.Users().TrackSuccessfulLogin(ctx, user); err != nil {
		b.logger.Error("failed to track successful login", "error", err)
	}

	return nil
}

// SetPassword hashes and stores the new credential, bypassing old-password
// verification. The caller has already proven control of the email address.
func (b *LocalHashBackend) SetPassword(ctx context.Context, email, password string) error {
	user, err := b.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return NewCredentialNotFoundError(email)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password change")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
	}

	return b.repo.Users().ResetPassword(ctx, user.ID, hash)
}
