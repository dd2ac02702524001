package stuco_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stucoapp/stuco"
)

func TestGenerateConfirmationCode(t *testing.T) {
	code, err := stuco.GenerateConfirmationCode(6)
	require.NoError(t, err)
	require.Len(t, code, 6)

	for _, c := range code {
		assert.True(t, c >= '0' && c <= '9', "expected digit, got %q", c)
	}
}

func TestGenerateConfirmationCodeDefaultsLength(t *testing.T) {
	code, err := stuco.GenerateConfirmationCode(0)
	require.NoError(t, err)
	require.Len(t, code, stuco.DefaultConfirmationCodeLength)

	code, err = stuco.GenerateConfirmationCode(-3)
	require.NoError(t, err)
	require.Len(t, code, stuco.DefaultConfirmationCodeLength)
}

func TestGenerateConfirmationCodeVaries(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		code, err := stuco.GenerateConfirmationCode(8)
		require.NoError(t, err)
		seen[code] = true
	}
	// 20 draws of 8 digits colliding down to one value means a broken source
	assert.Greater(t, len(seen), 1)
}
