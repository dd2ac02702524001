package stuco

import (
	"crypto/rand"
	"math/big"

	goerrors "github.com/goliatone/go-errors"
)

// DefaultConfirmationCodeLength is the code length used when the configured
// length is zero or negative.
const DefaultConfirmationCodeLength = 6

// GenerateConfirmationCode returns a random numeric string of the given
// length. Codes are single-use and compared by exact string match; they carry
// no expiry and no attempt limit, matching the observed behavior of the
// system this replaces.
func GenerateConfirmationCode(length int) (string, error) {
	if length <= 0 {
		length = DefaultConfirmationCodeLength
	}

	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate confirmation code")
		}
		digits[i] = byte('0' + n.Int64())
	}

	return string(digits), nil
}
