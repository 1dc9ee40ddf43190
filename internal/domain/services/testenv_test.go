package services

import (
	"testing"

	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/infrastructure/config"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an in-memory SQLite database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Admin{},
		&models.Donor{},
		&models.Patient{},
		&models.Stock{},
		&models.BloodRequest{},
		&models.BloodDonate{},
		&models.Feedback{},
		&models.ActionAuditLog{},
		&models.ReportExportLog{},
		&models.EmergencyBroadcast{},
		&models.BroadcastDelivery{},
		&models.InAppNotification{},
		&models.SMSOutbox{},
		&models.DonationAppointmentSlot{},
		&models.DonationAppointment{},
		&models.VerificationBadge{},
	))

	return db
}

// newTestConfig returns a config with production-like defaults and SMS/remote
// calls disabled
func newTestConfig() *config.Config {
	return &config.Config{
		JWTSecretKey:         "test-secret",
		DefaultAdminPassword: "admin123",

		SMSEnabled:            false,
		SMSSenderID:           "BLOODBRIDGE",
		SMSDefaultCountryCode: "+91",
		SMSMaxRecipients:      25,
		SMSMinNotificationGap: 21600,
		LowStockThresholdMl:   500,

		DonationRecoveryDays: 56,
		DonorWeightMinKg:     50,
		DonorHbMinMale:       13.0,
		DonorHbMinFemale:     12.5,
		DonorHbMinUnknown:    12.5,

		GeocoderAllowRemote: false,
		GeocoderFixtures:    map[string][2]float64{},
	}
}

// seedStocksForTest creates all eight stock rows and sets one group's units
func seedStocksForTest(t *testing.T, db *gorm.DB, cfg *config.Config, bloodGroup string, units uint) InterfaceStockService {
	t.Helper()

	audit := NewAuditService(db, cfg)
	stock := NewStockService(db, cfg, audit, nil)
	require.NoError(t, stock.SeedStocks())
	if units > 0 {
		require.NoError(t, db.Model(&models.Stock{}).
			Where("blood_group = ?", bloodGroup).Update("unit", units).Error)
	}
	return stock
}
