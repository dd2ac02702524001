package stuco

import (
	"regexp"

	goerrors "github.com/goliatone/go-errors"
)

// PasswordPolicyMessage is the field error shown for a weak password.
const PasswordPolicyMessage = "Password must be between 8 and 24 characters, contain at least one uppercase letter, " +
	"one lowercase letter, one number, and one special character."

var (
	passwordLowerRE   = regexp.MustCompile(`[a-z]`)
	passwordUpperRE   = regexp.MustCompile(`[A-Z]`)
	passwordDigitRE   = regexp.MustCompile(`[0-9]`)
	passwordSpecialRE = regexp.MustCompile(`[!@#$%]`)
)

// ValidPassword reports whether the password satisfies the local strength
// rule: one lowercase, one uppercase, one digit, one of !@#$%, length 8-24.
func ValidPassword(password string) bool {
	if len(password) < 8 || len(password) > 24 {
		return false
	}
	return passwordLowerRE.MatchString(password) &&
		passwordUpperRE.MatchString(password) &&
		passwordDigitRE.MatchString(password) &&
		passwordSpecialRE.MatchString(password)
}

// ValidatePasswordStrength returns a policy violation error for passwords the
// local rule rejects.
func ValidatePasswordStrength(password string) error {
	if ValidPassword(password) {
		return nil
	}
	return goerrors.New(PasswordPolicyMessage, goerrors.CategoryValidation).
		WithTextCode(TextCodePolicyViolation).
		WithCode(goerrors.CodeBadRequest)
}
