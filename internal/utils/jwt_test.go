package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"klinik-app-server/internal/config"
	"klinik-app-server/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:                 "access-secret",
		JWTRefreshSecret:          "refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 168,
	}
}

func TestGenerateAndValidateTokens(t *testing.T) {
	doctorID := "doc-1"
	user := &models.User{
		BaseModel: models.BaseModel{ID: "user-1"},
		Role:      models.RoleDoctor,
		DoctorID:  &doctorID,
	}

	access, refresh, err := GenerateTokens(user, testConfig())
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := ValidateToken(access, "access-secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleDoctor, claims.Role)
	assert.Equal(t, "doc-1", claims.DoctorID)
	assert.Empty(t, claims.PatientID)

	refreshClaims, err := ValidateToken(refresh, "refresh-secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", refreshClaims.UserID)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	user := &models.User{
		BaseModel: models.BaseModel{ID: "user-1"},
		Role:      models.RolePatient,
	}
	access, _, err := GenerateTokens(user, testConfig())
	require.NoError(t, err)

	_, err = ValidateToken(access, "some-other-secret")
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token", "access-secret")
	assert.Error(t, err)
}
