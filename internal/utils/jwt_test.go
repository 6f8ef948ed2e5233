package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("player-abc")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "player-abc", claims.PlayerID)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("這不是令牌")
	assert.Error(t, err)
}
