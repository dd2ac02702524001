package stuco

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type ResetPasswordMessage struct {
	Email            string `json:"email"`
	ConfirmationCode string `json:"confirmation_code"`
	Password         string `json:"password"`
	ConfirmPassword  string `json:"confirm_password"`
}

func (e ResetPasswordMessage) Type() string { return "user.password_reset_finalize" }

// ResetPasswordHandler replaces the credential once the caller proves control
// of the email address with the mailed code. All validation runs before any
// persistence or external call; a single failure leaves the account untouched.
type ResetPasswordHandler struct {
	repo   RepositoryManager
	creds  CredentialBackend
	mailer Mailer
	logger Logger
}

// NewResetPasswordHandler creates a handler with sane defaults.
func NewResetPasswordHandler(repo RepositoryManager, creds CredentialBackend, mailer Mailer) *ResetPasswordHandler {
	return &ResetPasswordHandler{
		repo:   repo,
		creds:  creds,
		mailer: mailer,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *ResetPasswordHandler) WithLogger(logger Logger) *ResetPasswordHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ResetPasswordHandler) Execute(ctx context.Context, event ResetPasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ResetPasswordHandler) execute(ctx context.Context, event ResetPasswordMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	email := NormalizeEmail(event.Email)

	user, err := h.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return NewMismatchError()
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	if !user.CodeMatches(event.ConfirmationCode) {
		return NewMismatchError()
	}

	if event.Password != event.ConfirmPassword {
		return goerrors.New("Passwords do not match.", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	if err := ValidatePasswordStrength(event.Password); err != nil {
		return err
	}

	if err := h.creds.SetPassword(ctx, email, event.Password); err != nil {
		if IsPolicyViolation(err) {
			return err
		}
		h.logger.Error("credential backend set password failed", "email", email, "error", err)
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return NewAdapterFailure(err, "failed to set new credential")
	}

	// Clears the code and ensures the account is active; a reset proves
	// control of the mailbox the same way email confirmation does.
	if err := h.repo.Users().Activate(ctx, user.ID); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to clear confirmation code")
	}

	if err := h.mailer.SendPasswordResetSuccessEmail(ctx, email, MailContext{
		"first_name": user.FirstName,
	}); err != nil {
		h.logger.Error("failed to send password reset success email", "email", email, "error", err)
		return NewDeliveryFailure(err, email)
	}

	h.logger.Info("password reset completed", "email", email, "user_id", user.ID.String())

	return nil
}
