package utils

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReferralCode(t *testing.T) {
	code := GenerateReferralCode(8)
	assert.Len(t, code, 8)

	other := GenerateReferralCode(8)
	assert.NotEqual(t, code, other)
}

func TestGenerateReferencePrefix(t *testing.T) {
	ref := GenerateReference("INV")
	assert.True(t, strings.HasPrefix(ref, "INV_"))
	assert.Equal(t, ref, strings.ToUpper(ref))
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("correct horse battery staple", hash))
	assert.False(t, CheckPasswordHash("wrong password", hash))
}

func TestTokenPairRoundTrip(t *testing.T) {
	userID := uuid.New()
	tokens, err := GenerateTokenPair(userID, "user@example.com", true)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tokens.TokenType)

	claims, err := ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)

	refreshClaims, err := ValidateToken(tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, userID, refreshClaims.UserID)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestHMACSignatures(t *testing.T) {
	body := `{"event":"charge.paid"}`
	sig := SignHMAC(body, "secret")

	assert.True(t, VerifyHMAC(body, sig, "secret"))
	assert.False(t, VerifyHMAC(body, sig, "other-secret"))
	assert.False(t, VerifyHMAC(body+" ", sig, "secret"))
}
