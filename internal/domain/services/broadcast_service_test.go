package services

import (
	"strings"
	"testing"

	"bloodbridge-http-service/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newBroadcastTestService(t *testing.T, db *gorm.DB) InterfaceBroadcastService {
	t.Helper()
	cfg := newTestConfig()
	audit := NewAuditService(db, cfg)
	sms := NewSMSService(db, cfg)
	return NewBroadcastService(db, cfg, sms, audit, nil)
}

func TestSendBroadcastQueuesDeliveries(t *testing.T) {
	db := newTestDB(t)
	svc := newBroadcastTestService(t, db)

	require.NoError(t, db.Create(smsTestDonor("d_bc1", "O-", "+919000000041", "560001", nil)).Error)
	require.NoError(t, db.Create(smsTestDonor("d_bc2", "O-", "+919000000042", "", nil)).Error)
	// Wrong group stays out
	require.NoError(t, db.Create(smsTestDonor("d_bc3", "A+", "+919000000043", "", nil)).Error)

	broadcast, err := svc.SendBroadcast(1, "O-", "Mass casualty event, O- urgently needed", "560001", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, broadcast.RecipientCount)

	var deliveries []models.BroadcastDelivery
	require.NoError(t, db.Where("broadcast_id = ?", broadcast.ID).Order("id").Find(&deliveries).Error)
	require.Len(t, deliveries, 2)
	// Zipcode match leads
	assert.Equal(t, "+919000000041", deliveries[0].Phone)
	for _, delivery := range deliveries {
		assert.Equal(t, models.DeliveryQueued, delivery.Status)
	}

	// Every outbox row points back at its delivery so the dispatcher can
	// report the send outcome
	var outbox []models.SMSOutbox
	require.NoError(t, db.Find(&outbox).Error)
	require.Len(t, outbox, 2)
	deliveryIDs := map[uint]bool{deliveries[0].ID: true, deliveries[1].ID: true}
	for _, row := range outbox {
		require.NotNil(t, row.DeliveryID)
		assert.True(t, deliveryIDs[*row.DeliveryID])
	}

	var log models.ActionAuditLog
	require.NoError(t, db.Where("action = ?", models.AuditActionBroadcastSent).First(&log).Error)
	assert.Equal(t, broadcast.ID, log.TargetID)

	loaded, err := svc.GetBroadcastByID(broadcast.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Deliveries, 2)
}

func TestSendBroadcastValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newBroadcastTestService(t, db)

	_, err := svc.SendBroadcast(1, "O-", "   ", "", 0)
	require.Error(t, err)

	_, err = svc.SendBroadcast(1, "X-", "need blood now", "", 0)
	require.Error(t, err)

	_, err = svc.SendBroadcast(1, "O-", strings.Repeat("x", 1201), "", 0)
	require.Error(t, err)

	// No matching donors at all
	_, err = svc.SendBroadcast(1, "O-", "need blood now", "", 0)
	require.Error(t, err)
	assert.Equal(t, "no eligible donors for broadcast", err.Error())
}
