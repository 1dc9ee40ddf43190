package services

import (
	"testing"
	"time"

	"bloodbridge-http-service/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newDonationTestService(t *testing.T, db *gorm.DB) (InterfaceDonationService, InterfaceStockService) {
	t.Helper()
	cfg := newTestConfig()
	audit := NewAuditService(db, cfg)
	stock := NewStockService(db, cfg, audit, nil)
	require.NoError(t, stock.SeedStocks())
	notify := NewNotificationService(db, cfg)
	badges := NewBadgeService(db, cfg, notify)
	return NewDonationService(db, cfg, stock, audit, notify, badges), stock
}

func createTestDonor(t *testing.T, db *gorm.DB, username string) *models.Donor {
	t.Helper()
	donor := &models.Donor{
		Username:    username,
		Password:    "secret123",
		FirstName:   "Arun",
		BloodGroup:  "O-",
		Mobile:      "+919385426552",
		IsAvailable: true,
	}
	require.NoError(t, db.Create(donor).Error)
	return donor
}

func TestApproveDonationAddsStockAndStampsDonor(t *testing.T) {
	db := newTestDB(t)
	svc, stock := newDonationTestService(t, db)
	donor := createTestDonor(t, db, "don_arun")

	donation := &models.BloodDonate{Age: 29, BloodGroup: "O-", Unit: 450}
	require.NoError(t, svc.CreateDonation(donor.ID, donation))
	assert.Equal(t, models.StatusPending, donation.Status)

	approved, err := svc.ApproveDonation(1, donation.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)

	row, err := stock.GetStockByGroup("O-")
	require.NoError(t, err)
	assert.Equal(t, uint(450), row.Unit)

	var refreshed models.Donor
	require.NoError(t, db.First(&refreshed, donor.ID).Error)
	require.NotNil(t, refreshed.LastDonatedAt)

	// First approved donation earns the Bronze badge
	var badges []models.VerificationBadge
	require.NoError(t, db.Where("donor_id = ?", donor.ID).Find(&badges).Error)
	require.Len(t, badges, 1)
	assert.Equal(t, models.BadgeBronze, badges[0].Level)

	var log models.ActionAuditLog
	require.NoError(t, db.Where("action = ?", models.AuditActionDonationApproved).First(&log).Error)
	assert.Equal(t, 450, log.UnitsDelta)
}

func TestApproveDonationTwiceFails(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newDonationTestService(t, db)
	donor := createTestDonor(t, db, "don_once")

	donation := &models.BloodDonate{Age: 35, BloodGroup: "O-", Unit: 300}
	require.NoError(t, svc.CreateDonation(donor.ID, donation))

	_, err := svc.ApproveDonation(1, donation.ID)
	require.NoError(t, err)

	_, err = svc.ApproveDonation(1, donation.ID)
	require.ErrorIs(t, err, ErrDonationAlreadyProcessed)

	_, err = svc.RejectDonation(1, donation.ID, "late review")
	require.ErrorIs(t, err, ErrDonationAlreadyProcessed)
}

func TestCreateDonationBlockedDuringRecovery(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newDonationTestService(t, db)
	donor := createTestDonor(t, db, "don_recent")

	lastWeek := time.Now().AddDate(0, 0, -7)
	require.NoError(t, db.Model(&models.Donor{}).Where("id = ?", donor.ID).
		Update("last_donated_at", lastWeek).Error)

	donation := &models.BloodDonate{Age: 29, BloodGroup: "O-", Unit: 450}
	err := svc.CreateDonation(donor.ID, donation)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recovery window")

	// A donation from 70 days ago clears the 56 day window
	longAgo := time.Now().AddDate(0, 0, -70)
	require.NoError(t, db.Model(&models.Donor{}).Where("id = ?", donor.ID).
		Update("last_donated_at", longAgo).Error)
	require.NoError(t, svc.CreateDonation(donor.ID, donation))
}

func TestCreateDonationValidation(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newDonationTestService(t, db)
	donor := createTestDonor(t, db, "don_valid")

	cases := []struct {
		name     string
		donation models.BloodDonate
	}{
		{"invalid group", models.BloodDonate{Age: 30, BloodGroup: "Z+", Unit: 300}},
		{"unit too low", models.BloodDonate{Age: 30, BloodGroup: "O-", Unit: 50}},
		{"unit too high", models.BloodDonate{Age: 30, BloodGroup: "O-", Unit: 600}},
		{"too young", models.BloodDonate{Age: 16, BloodGroup: "O-", Unit: 300}},
		{"too old", models.BloodDonate{Age: 70, BloodGroup: "O-", Unit: 300}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			donation := tc.donation
			require.Error(t, svc.CreateDonation(donor.ID, &donation))
		})
	}
}

func TestRejectDonationLeavesStockAlone(t *testing.T) {
	db := newTestDB(t)
	svc, stock := newDonationTestService(t, db)
	donor := createTestDonor(t, db, "don_reject")

	donation := &models.BloodDonate{Age: 40, BloodGroup: "O-", Unit: 400}
	require.NoError(t, svc.CreateDonation(donor.ID, donation))

	rejected, err := svc.RejectDonation(2, donation.ID, "failed screening")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)

	row, err := stock.GetStockByGroup("O-")
	require.NoError(t, err)
	assert.Equal(t, uint(0), row.Unit)

	var refreshed models.Donor
	require.NoError(t, db.First(&refreshed, donor.ID).Error)
	assert.Nil(t, refreshed.LastDonatedAt)
}

func TestBadgeLevelsFromDonationCount(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newDonationTestService(t, db)
	donor := createTestDonor(t, db, "don_badges")

	// Five approved donations spaced outside the recovery window
	for i := 0; i < 5; i++ {
		require.NoError(t, db.Model(&models.Donor{}).Where("id = ?", donor.ID).
			Update("last_donated_at", nil).Error)
		donation := &models.BloodDonate{Age: 30, BloodGroup: "O-", Unit: 300}
		require.NoError(t, svc.CreateDonation(donor.ID, donation))
		_, err := svc.ApproveDonation(1, donation.ID)
		require.NoError(t, err)
	}

	var badges []models.VerificationBadge
	require.NoError(t, db.Where("donor_id = ?", donor.ID).Order("id").Find(&badges).Error)
	require.Len(t, badges, 2)
	assert.Equal(t, models.BadgeBronze, badges[0].Level)
	assert.Equal(t, models.BadgeSilver, badges[1].Level)
}
