package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRefreshToken_RoundTrip(t *testing.T) {
	token, err := NewRefreshToken("7d1f3c0e-acc")
	require.NoError(t, err)

	accountID, ok := ParseRefreshToken(token)
	require.True(t, ok)
	assert.Equal(t, "7d1f3c0e-acc", accountID)

	other, err := NewRefreshToken("7d1f3c0e-acc")
	require.NoError(t, err)
	assert.NotEqual(t, token, other)

	hash := HashRefreshToken(token)
	assert.Len(t, hash, 64)
	assert.True(t, CompareRefreshTokenHash(token, hash))
	assert.False(t, CompareRefreshTokenHash(other, hash))
	assert.False(t, CompareRefreshTokenHash(token, ""))
}

func TestNewRefreshToken_RejectsBadAccountID(t *testing.T) {
	_, err := NewRefreshToken("")
	assert.Error(t, err)

	_, err = NewRefreshToken("a.b")
	assert.Error(t, err)
}

func TestParseRefreshToken_Malformed(t *testing.T) {
	for _, token := range []string{"", "no-dot", ".abcdef", "acc.short"} {
		_, ok := ParseRefreshToken(token)
		assert.False(t, ok, token)
	}
}
