package stuco

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	UseHashid  bool
	OnResponse func(user *User)
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// RegisterUserHandler creates the local account record and, when an identity
// provider is configured, the provider credential first. Self-registered
// accounts are never superusers, start inactive, and get a fresh confirmation
// code delivered by email.
type RegisterUserHandler struct {
	repo       RepositoryManager
	creds      CredentialBackend
	mailer     Mailer
	codeLength int
	baseURL    string
	logger     Logger
}

// NewRegisterUserHandler creates a handler with sane defaults.
func NewRegisterUserHandler(repo RepositoryManager, creds CredentialBackend, mailer Mailer) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:       repo,
		creds:      creds,
		mailer:     mailer,
		codeLength: DefaultConfirmationCodeLength,
		logger:     defLogger{},
	}
}

// WithCodeLength sets the confirmation code length.
func (h *RegisterUserHandler) WithCodeLength(length int) *RegisterUserHandler {
	if length > 0 {
		h.codeLength = length
	}
	return h
}

// WithBaseURL sets the web app base URL included in the confirmation email.
func (h *RegisterUserHandler) WithBaseURL(baseURL string) *RegisterUserHandler {
	h.baseURL = baseURL
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *RegisterUserHandler) WithLogger(logger Logger) *RegisterUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	email := NormalizeEmail(event.Email)

	// Duplicate emails fail validation before any external or persistence call.
	if _, err := h.repo.Users().GetByEmail(ctx, email); err == nil {
		return goerrors.New("a user with this email address already exists", goerrors.CategoryConflict).
			WithCode(goerrors.CodeConflict).
			WithMetadata(map[string]any{"email": email})
	} else if !goerrors.IsNotFound(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing user")
	}

	// Register the credential first. An already-registered credential is fine:
	// the provider record survives a half-finished earlier attempt.
	hash, err := h.creds.SignUp(ctx, email, event.Password)
	if err != nil {
		if IsCredentialExists(err) {
			h.logger.Warn("credential already registered, continuing", "email", email)
		} else if IsPolicyViolation(err) {
			return err
		} else {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return richErr
			}
			return NewAdapterFailure(err, "failed to register credential")
		}
	}

	code, err := GenerateConfirmationCode(h.codeLength)
	if err != nil {
		return err
	}

	user := &User{
		Email:            email,
		FirstName:        event.FirstName,
		MiddleName:       event.MiddleName,
		LastName:         event.LastName,
		PasswordHash:     hash,
		IsActive:         false,
		ConfirmationCode: &code,
		// Self-service registration never creates privileged accounts,
		// regardless of what the caller sent.
		IsSuperuser: false,
		IsStaff:     false,
	}

	if event.UseHashid {
		if id, err := hashid.NewUUID(email); err == nil {
			user.ID = id
		}
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		created, err := h.repo.Users().CreateTx(ctx, tx, user)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}
		user = created
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	if err := h.mailer.SendRegistrationConfirmEmail(ctx, email, MailContext{
		"first_name":        user.FirstName,
		"confirmation_code": code,
		"webapp_base_url":   h.baseURL,
	}); err != nil {
		h.logger.Error("failed to send registration confirmation email", "email", email, "error", err)
		return NewDeliveryFailure(err, email)
	}

	h.logger.Info("user registered", "email", email, "user_id", user.ID.String())

	if event.OnResponse != nil {
		event.OnResponse(user)
	}

	return nil
}
