package services

import (
	"testing"

	"bloodbridge-http-service/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginResolvesRoleByAccountTable(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	svc := NewJWTService(cfg, db)

	require.NoError(t, db.Create(&models.Admin{Username: "root", Password: "admin123"}).Error)
	donor := createTestDonor(t, db, "don_login")
	require.NoError(t, db.Create(&models.Patient{
		Username: "pat_login", Password: "secret123", FirstName: "Pat",
		BloodGroup: "A+", Mobile: "+919000000030",
	}).Error)

	result, err := svc.Login("root", "admin123")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, result.Role)
	assert.NotEmpty(t, result.Token)

	result, err = svc.Login("don_login", "secret123")
	require.NoError(t, err)
	assert.Equal(t, RoleDonor, result.Role)
	assert.Equal(t, donor.ID, result.UserID)

	result, err = svc.Login("pat_login", "secret123")
	require.NoError(t, err)
	assert.Equal(t, RolePatient, result.Role)

	_, err = svc.Login("root", "wrong-password")
	require.Error(t, err)
	_, err = svc.Login("nobody", "admin123")
	require.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	svc := NewJWTService(cfg, db)

	token, err := svc.GenerateToken(42, RoleDonor)
	require.NoError(t, err)

	claims, err := svc.ExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, RoleDonor, claims.Role)
	assert.Equal(t, "bloodbridge-http-service", claims.Issuer)

	_, err = svc.ExtractClaims(token + "tampered")
	require.Error(t, err)
}
