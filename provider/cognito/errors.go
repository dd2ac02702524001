package cognito

import (
	"github.com/aws/smithy-go"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stucoapp/stuco"
)

// mapError translates Cognito service errors into the application error
// taxonomy. Unrecognized errors become adapter failures.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if !goerrors.As(err, &apiErr) {
		return stuco.NewAdapterFailure(err, "identity provider request failed")
	}

	switch apiErr.ErrorCode() {
	case "UsernameExistsException":
		return goerrors.Wrap(err, goerrors.CategoryConflict, "identity already registered").
			WithTextCode(stuco.TextCodeCredentialExists).
			WithCode(goerrors.CodeConflict)
	case "UserNotFoundException":
		return goerrors.Wrap(err, goerrors.CategoryNotFound, "credential not found").
			WithTextCode(stuco.TextCodeCredentialMissing).
			WithCode(goerrors.CodeNotFound)
	case "InvalidPasswordException", "InvalidParameterException":
		return goerrors.Wrap(err, goerrors.CategoryValidation, stuco.PasswordPolicyMessage).
			WithTextCode(stuco.TextCodePolicyViolation).
			WithCode(goerrors.CodeBadRequest)
	case "CodeMismatchException":
		return stuco.NewInvalidConfirmationCodeError()
	case "NotAuthorizedException":
		return stuco.NewInvalidCredentialsError()
	default:
		return stuco.NewAdapterFailure(err, "identity provider request failed")
	}
}
