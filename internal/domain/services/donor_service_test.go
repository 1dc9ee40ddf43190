package services

import (
	"testing"

	"bloodbridge-http-service/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newDonorTestService(t *testing.T, db *gorm.DB) InterfaceDonorService {
	t.Helper()
	cfg := newTestConfig()
	return NewDonorService(db, cfg, NewGeocodingService(cfg))
}

func TestRegisterDonorStartsAvailable(t *testing.T) {
	db := newTestDB(t)
	svc := newDonorTestService(t, db)

	donor := &models.Donor{
		Username: "don_new", Password: "x", FirstName: "New",
		BloodGroup: "O+", Mobile: "+919385426550",
	}
	require.NoError(t, svc.RegisterDonor(donor))

	var loaded models.Donor
	require.NoError(t, db.First(&loaded, donor.ID).Error)
	assert.True(t, loaded.IsAvailable)
}

func TestDonorAvailabilityFalsePersists(t *testing.T) {
	db := newTestDB(t)
	svc := newDonorTestService(t, db)

	donor := &models.Donor{
		Username: "don_opt", Password: "x", FirstName: "Opt",
		BloodGroup: "O+", Mobile: "+919385426551",
	}
	require.NoError(t, svc.RegisterDonor(donor))

	// An explicit opt-out must survive the round trip; a column default
	// would silently flip the stored value back to true
	_, err := svc.SetAvailability(donor.ID, false)
	require.NoError(t, err)

	var loaded models.Donor
	require.NoError(t, db.First(&loaded, donor.ID).Error)
	assert.False(t, loaded.IsAvailable)

	offline := &models.Donor{
		Username: "don_off", Password: "x", FirstName: "Off",
		BloodGroup: "A+", Mobile: "+919385426552",
		IsAvailable: false,
	}
	require.NoError(t, db.Create(offline).Error)
	// Fresh destination: reusing `loaded` would make GORM add its stale
	// primary key as an extra query condition
	var offlineLoaded models.Donor
	require.NoError(t, db.First(&offlineLoaded, offline.ID).Error)
	assert.False(t, offlineLoaded.IsAvailable)
}
