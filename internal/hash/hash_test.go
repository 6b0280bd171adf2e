package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	encoded, err := HashPassword("password")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(encoded, "pbkdf2_sha256$"))
	require.NotContains(t, encoded, "password")

	require.True(t, CheckPassword(encoded, "password"))
	require.False(t, CheckPassword(encoded, "Password"))
	require.False(t, CheckPassword(encoded, ""))
}

func TestHashPasswordSalted(t *testing.T) {
	first, err := HashPassword("password")
	require.NoError(t, err)
	second, err := HashPassword("password")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestCheckPasswordMalformed(t *testing.T) {
	require.False(t, CheckPassword("", "password"))
	require.False(t, CheckPassword("bcrypt$whatever", "password"))
	require.False(t, CheckPassword("pbkdf2_sha256$abc$x$y", "password"))
	require.False(t, CheckPassword("pbkdf2_sha256$29000$not-base64!$x", "password"))
}
