package utils_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/blog-service/internal/utils"
)

func TestHashPassword(t *testing.T) {
	for _, plain := range []string{"secret1", "password123", "ünïcødé-pässwörd"} {
		hash, err := utils.HashPassword(plain)
		require.NoError(t, err)

		assert.NotEqual(t, plain, hash)
		assert.True(t, utils.CheckPassword(hash, plain))
		assert.False(t, utils.CheckPassword(hash, plain+"x"))
		assert.False(t, utils.CheckPassword(hash, ""))
	}
}

func TestHashPasswordSalted(t *testing.T) {
	a, err := utils.HashPassword("secret1")
	require.NoError(t, err)
	b, err := utils.HashPassword("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHashPasswordTooLong(t *testing.T) {
	_, err := utils.HashPassword(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, utils.ErrPasswordTooLong)
}

func TestCheckPasswordGarbageHash(t *testing.T) {
	assert.False(t, utils.CheckPassword("not-a-bcrypt-hash", "secret1"))
}

func TestGenerateSecret(t *testing.T) {
	s, err := utils.GenerateSecret(32)
	require.NoError(t, err)
	assert.Len(t, s, 64)

	other, err := utils.GenerateSecret(32)
	require.NoError(t, err)
	assert.NotEqual(t, s, other)

	_, err = utils.GenerateSecret(0)
	assert.Error(t, err)
}
