package auth_test

import (
	"testing"
	"time"

	"taskflow/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func sign(t *testing.T, claims jwt.MapClaims, method jwt.SigningMethod, key interface{}) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestGenerateAndParseToken(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret, 24*time.Hour)

	userID := "test-user-id"
	token, err := tokens.GenerateToken(userID)

	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	parsedUserID, err := tokens.ParseToken(token)

	assert.NoError(t, err)
	assert.Equal(t, userID, parsedUserID)
}

func TestParseToken_InvalidToken(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret, time.Hour)

	_, err := tokens.ParseToken("invalid-token")

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
	assert.Equal(t, "invalid token", err.Error())
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := auth.NewTokenManager("other-secret", time.Hour).GenerateToken("u1")
	require.NoError(t, err)

	_, err = auth.NewTokenManager(testSecret, time.Hour).ParseToken(token)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_ExpiredToken(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	expired := sign(t, jwt.MapClaims{
		"user_id": "test-user-id",
		"exp":     time.Now().Add(-1 * time.Hour).Unix(),
	}, jwt.SigningMethodHS256, []byte(testSecret))

	_, err := tokens.ParseToken(expired)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_MissingExpiry(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	forever := sign(t, jwt.MapClaims{"user_id": "test-user-id"}, jwt.SigningMethodHS256, []byte(testSecret))

	_, err := tokens.ParseToken(forever)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_OtherAlgorithm(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	token := sign(t, jwt.MapClaims{
		"user_id": "test-user-id",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}, jwt.SigningMethodHS512, []byte(testSecret))

	_, err := tokens.ParseToken(token)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_MissingClaims(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	token := sign(t, jwt.MapClaims{
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}, jwt.SigningMethodHS256, []byte(testSecret))

	_, err := tokens.ParseToken(token)

	assert.ErrorIs(t, err, auth.ErrInvalidClaims)
	assert.Equal(t, "invalid claims", err.Error())
}
