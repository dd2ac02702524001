package stuco

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type ConfirmEmailMessage struct {
	Email            string `json:"email"`
	ConfirmationCode string `json:"confirmation_code"`
}

func (e ConfirmEmailMessage) Type() string { return "user.confirm_email" }

// ConfirmEmailHandler transitions an account from pending to active when the
// supplied code matches the stored one. Every failure mode surfaces the same
// mismatch error so the form can't be used to probe for registered emails.
type ConfirmEmailHandler struct {
	repo   RepositoryManager
	creds  CredentialBackend
	logger Logger
}

// NewConfirmEmailHandler creates a handler with sane defaults.
func NewConfirmEmailHandler(repo RepositoryManager, creds CredentialBackend) *ConfirmEmailHandler {
	return &ConfirmEmailHandler{
		repo:   repo,
		creds:  creds,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *ConfirmEmailHandler) WithLogger(logger Logger) *ConfirmEmailHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ConfirmEmailHandler) Execute(ctx context.Context, event ConfirmEmailMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during email confirmation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ConfirmEmailHandler) execute(ctx context.Context, event ConfirmEmailMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	email := NormalizeEmail(event.Email)

	user, err := h.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return NewMismatchError()
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for confirmation")
	}

	if !user.CodeMatches(event.ConfirmationCode) {
		return NewMismatchError()
	}

	if err := h.creds.ConfirmSignUp(ctx, email); err != nil {
		h.logger.Error("identity provider confirmation failed", "email", email, "error", err)
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return NewAdapterFailure(err, "failed to confirm credential")
	}

	if err := h.repo.Users().Activate(ctx, user.ID); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to activate user")
	}

	h.logger.Info("email address confirmed", "email", email, "user_id", user.ID.String())

	return nil
}
