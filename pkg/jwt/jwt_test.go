package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landlink/survey-backend/internal/models"
)

func TestGenerateAndValidateToken(t *testing.T) {
	service := NewService("test-secret", 30*24*time.Hour)
	userID := uuid.New()

	token, err := service.GenerateToken(userID, "client@example.com", models.RoleClient)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "client@example.com", claims.Email)
	assert.Equal(t, models.RoleClient, claims.Role)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestGenerateToken_MissingSecret(t *testing.T) {
	service := NewService("", 30*24*time.Hour)

	_, err := service.GenerateToken(uuid.New(), "client@example.com", models.RoleClient)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	service := NewService("test-secret", time.Hour)
	other := NewService("other-secret", time.Hour)

	token, err := service.GenerateToken(uuid.New(), "admin@example.com", models.RoleAdmin)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	service := NewService("test-secret", -time.Minute)

	token, err := service.GenerateToken(uuid.New(), "client@example.com", models.RoleClient)
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Error(t, err)
	assert.True(t, service.IsTokenExpired(token))
}

func TestValidateToken_Garbage(t *testing.T) {
	service := NewService("test-secret", time.Hour)

	_, err := service.ValidateToken("not-a-token")
	assert.Error(t, err)
	assert.True(t, service.IsTokenExpired("not-a-token"))
}
