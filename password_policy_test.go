package stuco_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stucoapp/stuco"
)

func TestValidPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		expected bool
	}{
		{"valid", "Sup3rSecret!", true},
		{"valid at min length", "Aa1!aaaa", true},
		{"valid at max length", "Aa1!aaaaaaaaaaaaaaaaaaaa", true},
		{"too short", "Aa1!aaa", false},
		{"too long", "Aa1!aaaaaaaaaaaaaaaaaaaaa", false},
		{"no uppercase", "sup3rsecret!", false},
		{"no lowercase", "SUP3RSECRET!", false},
		{"no digit", "SuperSecret!", false},
		{"no special", "Sup3rSecret", false},
		{"special outside allowed set", "Sup3rSecret?", false},
		{"empty", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, stuco.ValidPassword(tc.password))
		})
	}
}

func TestValidatePasswordStrength(t *testing.T) {
	require.NoError(t, stuco.ValidatePasswordStrength("Sup3rSecret!"))

	err := stuco.ValidatePasswordStrength("weak")
	require.Error(t, err)
	require.True(t, stuco.IsPolicyViolation(err))
	require.Equal(t, stuco.PasswordPolicyMessage, err.Error())
}
