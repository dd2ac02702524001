package stuco

import (
	stderrors "errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
)

// RegisterAccountRoutes mounts the account lifecycle endpoints on the router.
func RegisterAccountRoutes[T any](app router.Router[T], opts ...AccountControllerOption) {

	controller := NewAccountController(opts...)

	app.Get(controller.Routes.Login, controller.LoginShow).
		SetName("sign-in.get")
	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("sign-in.post")
	app.Get(controller.Routes.Logout, controller.LogOut).
		SetName("sign-out.get")

	app.Get(controller.Routes.Register, controller.RegistrationShow).
		SetName("register.get")
	app.Post(controller.Routes.Register, controller.RegistrationCreate).
		SetName("register.post")

	app.Get(controller.Routes.ConfirmEmail, controller.ConfirmEmailShow).
		SetName("confirm-email.get")
	app.Post(controller.Routes.ConfirmEmail, controller.ConfirmEmailPost).
		SetName("confirm-email.post")

	app.Get(controller.Routes.ForgotPassword, controller.ForgotPasswordShow).
		SetName("forgot-pwd.get")
	app.Post(controller.Routes.ForgotPassword, controller.ForgotPasswordPost).
		SetName("forgot-pwd.post")

	app.Get(controller.Routes.ResetPassword, controller.ResetPasswordShow).
		SetName("reset-pwd.get")
	app.Post(controller.Routes.ResetPassword, controller.ResetPasswordPost).
		SetName("reset-pwd.post")
}

type AccountControllerRoutes struct {
	Login          string
	Logout         string
	Register       string
	ConfirmEmail   string
	ForgotPassword string
	ResetPassword  string
}

type AccountControllerViews struct {
	Login          string
	Register       string
	ConfirmEmail   string
	ForgotPassword string
	ResetPassword  string
}

type AccountController struct {
	Logger     Logger
	Repo       RepositoryManager
	Creds      CredentialBackend
	Mailer     Mailer
	Auther     *RouteAuthenticator
	Routes     *AccountControllerRoutes
	Views      *AccountControllerViews
	CodeLength int
	BaseURL    string

	ErrorHandler router.ErrorHandler
}

type AccountControllerOption func(*AccountController) *AccountController

func NewAccountController(opts ...AccountControllerOption) *AccountController {
	c := &AccountController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		CodeLength:   DefaultConfirmationCodeLength,
		Routes: &AccountControllerRoutes{
			Login:          "/login",
			Logout:         "/logout",
			Register:       "/register",
			ConfirmEmail:   "/confirm-email",
			ForgotPassword: "/forgot-password",
			ResetPassword:  "/reset-password",
		},
		Views: &AccountControllerViews{
			Login:          "users/login",
			Register:       "users/register",
			ConfirmEmail:   "users/confirm_email",
			ForgotPassword: "users/forgot_password",
			ResetPassword:  "users/reset_password",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in account controller...")
	}

	if c.Creds == nil {
		panic("Missing CredentialBackend in account controller...")
	}

	if c.Mailer == nil {
		panic("Missing Mailer in account controller...")
	}

	if c.Auther == nil {
		panic("Missing RouteAuthenticator in account controller...")
	}

	return c
}

func WithControllerRepo(repo RepositoryManager) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Repo = repo
		return c
	}
}

func WithControllerCredentials(creds CredentialBackend) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Creds = creds
		return c
	}
}

func WithControllerMailer(mailer Mailer) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Mailer = mailer
		return c
	}
}

func WithControllerAuther(auther *RouteAuthenticator) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Auther = auther
		return c
	}
}

func WithControllerLogger(logger Logger) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerCodeLength(length int) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		if length > 0 {
			c.CodeLength = length
		}
		return c
	}
}

func WithControllerBaseURL(baseURL string) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.BaseURL = baseURL
		return c
	}
}

// ---- login / logout

func (a *AccountController) LoginShow(ctx router.Context) error {
	return ctx.Render(a.Views.Login, router.ViewContext{
		"errors": nil,
		"record": nil,
	})
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
	RememberMe bool   `form:"remember_me" json:"remember_me"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Identifier
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// GetExtendedSession will return the remember-me flag
func (r LoginRequest) GetExtendedSession() bool {
	return r.RememberMe
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AccountController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)
	errors := map[string]string{}

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return ctx.Render(a.Views.Login, router.ViewContext{
			"record":     payload,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	if err := a.Auther.Login(ctx, payload); err != nil {
		errors["authentication"] = "Invalid email or password"
		return ctx.Render(a.Views.Login, router.ViewContext{
			"errors": errors,
			"record": payload,
		})
	}

	return ctx.Redirect("/", router.StatusSeeOther)
}

func (a *AccountController) LogOut(ctx router.Context) error {
	a.Auther.Logout(ctx)
	return ctx.Redirect("/", router.StatusTemporaryRedirect)
}

// ---- registration

func (a *AccountController) RegistrationShow(ctx router.Context) error {
	return ctx.Render(a.Views.Register, router.ViewContext{
		"errors": map[string]string{},
		"record": RegistrationCreatePayload{},
	})
}

// RegistrationCreatePayload is the form payload
type RegistrationCreatePayload struct {
	FirstName       string `form:"first_name" json:"first_name"`
	MiddleName      string `form:"middle_name" json:"middle_name"`
	LastName        string `form:"last_name" json:"last_name"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password1" json:"password1"`
	ConfirmPassword string `form:"password2" json:"password2"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 150)),
		validation.Field(&r.MiddleName, validation.Length(0, 50)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 150)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.By(ValidatePasswordRule)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AccountController) RegistrationCreate(ctx router.Context) error {
	payload := new(RegistrationCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		errors := map[string]string{}
		errors["form"] = "Failed to parse form"
		a.Logger.Error("register user parse payload: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.Register, router.ViewContext{
			"errors": errors,
			"record": payload,
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register user validate payload: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Render(a.Views.Register, router.ViewContext{
			"record":     payload,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	req := RegisterUserMessage{
		FirstName:  payload.FirstName,
		MiddleName: payload.MiddleName,
		LastName:   payload.LastName,
		Email:      payload.Email,
		Password:   payload.Password,
	}

	registerUser := NewRegisterUserHandler(a.Repo, a.Creds, a.Mailer).
		WithCodeLength(a.CodeLength).
		WithBaseURL(a.BaseURL).
		WithLogger(a.Logger)

	if err := registerUser.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("register user error: ", "error", err)

		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error registering user",
		}).Render(a.Views.Register, router.ViewContext{
			"record": payload,
			"errors": map[string]string{"registration": err.Error()},
		})
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "You have successfully registered. Please confirm your email address " +
			"with the confirmation code sent to the email address that you supplied.",
	}).Redirect(a.Routes.ConfirmEmail, fiber.StatusSeeOther)
}

// ---- email confirmation

func (a *AccountController) ConfirmEmailShow(ctx router.Context) error {
	// registration emails link here with the code in the query string
	return ctx.Render(a.Views.ConfirmEmail, router.ViewContext{
		"errors": map[string]string{},
		"record": ConfirmEmailPayload{
			ConfirmationCode: ctx.Query("confirmation_code", ""),
		},
	})
}

// ConfirmEmailPayload is the form payload
type ConfirmEmailPayload struct {
	Email            string `form:"email" json:"email"`
	ConfirmationCode string `form:"confirmation_code" json:"confirmation_code"`
}

// Validate will validate the payload
func (r ConfirmEmailPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.ConfirmationCode, validation.Required, validation.Length(1, 7)),
	)
}

func (a *AccountController) ConfirmEmailPost(ctx router.Context) error {
	payload := new(ConfirmEmailPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("confirm email parse payload: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.ConfirmEmail, router.ViewContext{
			"errors": map[string]string{"form": "Failed to parse form"},
			"record": payload,
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.Render(a.Views.ConfirmEmail, router.ViewContext{
			"record":     payload,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	confirm := NewConfirmEmailHandler(a.Repo, a.Creds).WithLogger(a.Logger)

	if err := confirm.Execute(ctx.Context(), ConfirmEmailMessage{
		Email:            payload.Email,
		ConfirmationCode: payload.ConfirmationCode,
	}); err != nil {
		msg := "Unable to confirm email address.  Please contact support."
		if IsCodeMismatch(err) {
			msg = "Email Address and Confirmation Code do not match."
		} else {
			a.Logger.Error("confirm email error: ", "error", err)
		}

		return ctx.Render(a.Views.ConfirmEmail, router.ViewContext{
			"errors": map[string]string{"confirmation": msg},
			"record": payload,
		})
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Email Address " + NormalizeEmail(payload.Email) +
			" has been confirmed.  You may now login.",
	}).Redirect(a.Routes.Login, fiber.StatusSeeOther)
}

// ---- forgot password

func (a *AccountController) ForgotPasswordShow(ctx router.Context) error {
	return ctx.Render(a.Views.ForgotPassword, router.ViewContext{
		"errors": map[string]string{},
		"record": ForgotPasswordPayload{},
	})
}

// ForgotPasswordPayload is the form payload
type ForgotPasswordPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will validate the payload
func (r ForgotPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AccountController) ForgotPasswordPost(ctx router.Context) error {
	payload := new(ForgotPasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("forgot password parse payload: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.ForgotPassword, router.ViewContext{
			"errors": map[string]string{"form": "Failed to parse form"},
			"record": payload,
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.Render(a.Views.ForgotPassword, router.ViewContext{
			"record":     payload,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	forgot := NewForgotPasswordHandler(a.Repo, a.Mailer).
		WithCodeLength(a.CodeLength).
		WithBaseURL(a.BaseURL).
		WithLogger(a.Logger)

	if err := forgot.Execute(ctx.Context(), ForgotPasswordMessage{Email: payload.Email}); err != nil {
		// unknown emails get a field error here; the confirm flow does not
		// make that distinction
		return ctx.Render(a.Views.ForgotPassword, router.ViewContext{
			"errors": map[string]string{"email": err.Error()},
			"record": payload,
		})
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Check your email for password reset instructions.",
	}).Redirect(a.Routes.ResetPassword, fiber.StatusSeeOther)
}

// ---- reset password

func (a *AccountController) ResetPasswordShow(ctx router.Context) error {
	return ctx.Render(a.Views.ResetPassword, router.ViewContext{
		"errors": map[string]string{},
		"record": ResetPasswordPayload{
			ConfirmationCode: ctx.Query("confirmation_code", ""),
		},
	})
}

// ResetPasswordPayload is the form payload
type ResetPasswordPayload struct {
	Email            string `form:"email" json:"email"`
	ConfirmationCode string `form:"confirmation_code" json:"confirmation_code"`
	Password         string `form:"password1" json:"password1"`
	ConfirmPassword  string `form:"password2" json:"password2"`
}

// Validate will validate the payload
func (r ResetPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.ConfirmationCode, validation.Required, validation.Length(1, 7)),
		validation.Field(&r.Password, validation.Required, validation.By(ValidatePasswordRule)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AccountController) ResetPasswordPost(ctx router.Context) error {
	payload := new(ResetPasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("reset password parse payload: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.ResetPassword, router.ViewContext{
			"errors": map[string]string{"form": "Failed to parse form"},
			"record": payload,
		})
	}

	if err := payload.Validate(); err != nil {
		return flash.WithError(ctx, router.ViewContext{
			"system_message": "Please correct the errors below",
		}).Render(a.Views.ResetPassword, router.ViewContext{
			"record":     payload,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	reset := NewResetPasswordHandler(a.Repo, a.Creds, a.Mailer).WithLogger(a.Logger)

	if err := reset.Execute(ctx.Context(), ResetPasswordMessage{
		Email:            payload.Email,
		ConfirmationCode: payload.ConfirmationCode,
		Password:         payload.Password,
		ConfirmPassword:  payload.ConfirmPassword,
	}); err != nil {
		msg := "Unable to reset password.  Please contact support."
		if IsCodeMismatch(err) || IsPolicyViolation(err) {
			msg = err.Error()
		} else {
			a.Logger.Error("reset password error: ", "error", err)
		}

		return ctx.Render(a.Views.ResetPassword, router.ViewContext{
			"errors": map[string]string{"reset": msg},
			"record": payload,
		})
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Password has been reset for " + NormalizeEmail(payload.Email) + ".",
	}).Redirect(a.Routes.Login, fiber.StatusSeeOther)
}

// ValidatePasswordRule adapts the password strength rule for ozzo validation.
func ValidatePasswordRule(value any) error {
	s, _ := value.(string)
	if !ValidPassword(s) {
		return stderrors.New(PasswordPolicyMessage)
	}
	return nil
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return stderrors.New("values must match")
		}
		return nil
	}
}

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field->message map for template rendering.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var verrs validation.Errors
	if stderrors.As(err, &verrs) {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	out["validation"] = err.Error()
	return out
}

func defaultErrHandler(c router.Context, err error) error {
	return c.Render("errors/500", router.ViewContext{
		"message": err.Error(),
	})
}
