package stuco

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type ForgotPasswordMessage struct {
	Email      string `json:"email"`
	OnResponse func(user *User)
}

func (e ForgotPasswordMessage) Type() string { return "user.password_reset" }

// ForgotPasswordHandler regenerates the confirmation code for a known account
// and mails it out. The account stays active. Unknown emails surface a field
// error; this does reveal whether an address is registered, a behavior kept
// as observed rather than unified with the confirm flow.
type ForgotPasswordHandler struct {
	repo       RepositoryManager
	mailer     Mailer
	codeLength int
	baseURL    string
	logger     Logger
}

// NewForgotPasswordHandler creates a handler with sane defaults.
func NewForgotPasswordHandler(repo RepositoryManager, mailer Mailer) *ForgotPasswordHandler {
	return &ForgotPasswordHandler{
		repo:       repo,
		mailer:     mailer,
		codeLength: DefaultConfirmationCodeLength,
		logger:     defLogger{},
	}
}

// WithCodeLength sets the confirmation code length.
func (h *ForgotPasswordHandler) WithCodeLength(length int) *ForgotPasswordHandler {
	if length > 0 {
		h.codeLength = length
	}
	return h
}

// WithBaseURL sets the web app base URL included in the reset email.
func (h *ForgotPasswordHandler) WithBaseURL(baseURL string) *ForgotPasswordHandler {
	h.baseURL = baseURL
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *ForgotPasswordHandler) WithLogger(logger Logger) *ForgotPasswordHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ForgotPasswordHandler) Execute(ctx context.Context, event ForgotPasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ForgotPasswordHandler) execute(ctx context.Context, event ForgotPasswordMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	email := NormalizeEmail(event.Email)

	user, err := h.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return goerrors.New("Sorry, we do not recognize that email address.  Want to try another?",
				goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound).
				WithMetadata(map[string]any{"email": email})
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	code, err := GenerateConfirmationCode(h.codeLength)
	if err != nil {
		return err
	}

	if err := h.repo.Users().SetConfirmationCode(ctx, user.ID, code); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store confirmation code")
	}

	if err := h.mailer.SendPasswordResetEmail(ctx, email, MailContext{
		"first_name":        user.FirstName,
		"confirmation_code": code,
		"webapp_base_url":   h.baseURL,
	}); err != nil {
		h.logger.Error("failed to send password reset email", "email", email, "error", err)
		return NewDeliveryFailure(err, email)
	}

	h.logger.Info("password reset requested", "email", email, "user_id", user.ID.String())

	if event.OnResponse != nil {
		user.ConfirmationCode = &code
		event.OnResponse(user)
	}

	return nil
}
