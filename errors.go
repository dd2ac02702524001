package stuco

import (
	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to rich errors so callers can branch without string
// matching on messages.
const (
	TextCodeCredentialExists  = "CREDENTIAL_ALREADY_EXISTS"
	TextCodeCredentialMissing = "CREDENTIAL_NOT_FOUND"
	TextCodePolicyViolation   = "CREDENTIAL_POLICY_VIOLATION"
	TextCodeCodeMismatch      = "CONFIRMATION_CODE_MISMATCH"
	TextCodeBadCredentials    = "INVALID_CREDENTIALS"
	TextCodeAdapterFailure    = "IDENTITY_ADAPTER_FAILURE"
	TextCodeDeliveryFailure   = "MAIL_DELIVERY_FAILURE"
	TextCodeInactiveAccount   = "ACCOUNT_INACTIVE"
	TextCodeTokenExpired      = "AUTH_TOKEN_EXPIRED"
)

// ErrNoEmptyString is returned when a hash is requested for an empty password.
var ErrNoEmptyString = goerrors.New("password can not be an empty string", goerrors.CategoryBadInput).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the generic bad-password error.
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeBadCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrTooManyLoginAttempts is returned while an account is cooling down.
var ErrTooManyLoginAttempts = goerrors.New("too many failed login attempts", goerrors.CategoryRateLimit).
	WithTextCode("TOO_MANY_LOGIN_ATTEMPTS")

// ErrIdentityNotFound is the error we return for non found identities.
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrUnableToFindSession is the error when the request carries no session cookie.
var ErrUnableToFindSession = goerrors.New("unable to find session", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToMapClaims means the token parsed but its claims did not.
var ErrUnableToMapClaims = goerrors.New("unable to map claims", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned for sessions past their expiry.
var ErrTokenExpired = goerrors.New("authentication token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// NewCredentialExistsError reports a credential that is already registered at
// the identity provider. Registration swallows it to stay idempotent.
func NewCredentialExistsError(email string) *goerrors.Error {
	return goerrors.New("credential already exists", goerrors.CategoryConflict).
		WithTextCode(TextCodeCredentialExists).
		WithCode(goerrors.CodeConflict).
		WithMetadata(map[string]any{"email": email})
}

// NewCredentialNotFoundError reports a credential the provider does not know.
func NewCredentialNotFoundError(email string) *goerrors.Error {
	return goerrors.New("credential not found", goerrors.CategoryNotFound).
		WithTextCode(TextCodeCredentialMissing).
		WithCode(goerrors.CodeNotFound).
		WithMetadata(map[string]any{"email": email})
}

// NewPolicyViolationError reports a password the credential backend rejects.
// Surfaced to the user as a field error.
func NewPolicyViolationError(detail string) *goerrors.Error {
	return goerrors.New("password does not meet the credential policy", goerrors.CategoryValidation).
		WithTextCode(TextCodePolicyViolation).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{"detail": detail})
}

// NewInvalidConfirmationCodeError reports a provider-side code mismatch.
func NewInvalidConfirmationCodeError() *goerrors.Error {
	return goerrors.New("invalid confirmation code", goerrors.CategoryValidation).
		WithTextCode(TextCodeCodeMismatch).
		WithCode(goerrors.CodeBadRequest)
}

// NewInvalidCredentialsError reports a failed authentication. The message never
// distinguishes a missing account from a wrong password.
func NewInvalidCredentialsError() *goerrors.Error {
	return goerrors.New("invalid email or password", goerrors.CategoryAuth).
		WithTextCode(TextCodeBadCredentials).
		WithCode(goerrors.CodeUnauthorized)
}

// NewMismatchError is the single user-visible error for a bad email/code pair.
// "No such email" and "wrong code" collapse into it so the form cannot be used
// to enumerate accounts.
func NewMismatchError() *goerrors.Error {
	return goerrors.New("email address and confirmation code do not match", goerrors.CategoryValidation).
		WithTextCode(TextCodeCodeMismatch).
		WithCode(goerrors.CodeBadRequest)
}

// NewAdapterFailure wraps an unrecognized identity provider error. The caller
// logs the full error; the user sees a generic contact-support message.
func NewAdapterFailure(err error, msg string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryOperation, msg).
		WithTextCode(TextCodeAdapterFailure)
}

// NewDeliveryFailure wraps a failed email send. Not retried; terminal for the
// current request.
func NewDeliveryFailure(err error, recipient string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryOperation, "could not deliver notification email").
		WithTextCode(TextCodeDeliveryFailure).
		WithMetadata(map[string]any{"recipient": recipient})
}

// NewInactiveAccountError blocks login for unconfirmed accounts.
func NewInactiveAccountError() *goerrors.Error {
	return goerrors.New("account is not active, confirm your email address first", goerrors.CategoryAuth).
		WithTextCode(TextCodeInactiveAccount).
		WithCode(goerrors.CodeUnauthorized)
}

func hasTextCode(err error, code string) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == code
}

// IsCredentialExists checks for the already-registered provider error.
func IsCredentialExists(err error) bool {
	return hasTextCode(err, TextCodeCredentialExists)
}

// IsCredentialNotFound checks for the unknown-credential provider error.
func IsCredentialNotFound(err error) bool {
	return hasTextCode(err, TextCodeCredentialMissing)
}

// IsPolicyViolation checks for a backend password policy rejection.
func IsPolicyViolation(err error) bool {
	return hasTextCode(err, TextCodePolicyViolation)
}

// IsCodeMismatch checks for the generic email/code mismatch error.
func IsCodeMismatch(err error) bool {
	return hasTextCode(err, TextCodeCodeMismatch)
}

// IsInvalidCredentials checks for a failed authentication.
func IsInvalidCredentials(err error) bool {
	return hasTextCode(err, TextCodeBadCredentials)
}

// IsAdapterFailure checks for an unmapped identity provider error.
func IsAdapterFailure(err error) bool {
	return hasTextCode(err, TextCodeAdapterFailure)
}

// IsDeliveryFailure checks for a failed email delivery.
func IsDeliveryFailure(err error) bool {
	return hasTextCode(err, TextCodeDeliveryFailure)
}
