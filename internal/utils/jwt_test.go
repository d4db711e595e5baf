package utils_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/earl-stephens/little-shop-base/internal/utils"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	defer goleak.VerifyNone(t)

	userID := uuid.New()

	token, err := utils.GenerateJWT(userID, "banana_stand", "merchant", 1)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := utils.ValidateJWT(token)
	require.NoError(t, err)

	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "banana_stand", claims.Username)
	assert.Equal(t, "merchant", claims.UserType)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	defer goleak.VerifyNone(t)

	_, err := utils.ValidateJWT("not-a-token")
	require.Error(t, err)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	defer goleak.VerifyNone(t)

	userID := uuid.New()

	token, err := utils.GenerateRefreshToken(userID, 1)
	require.NoError(t, err)

	subject, err := utils.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), subject)
}
