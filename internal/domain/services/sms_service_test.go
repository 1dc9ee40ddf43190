package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"bloodbridge-http-service/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func smsTestDonor(username, group, mobile, zipcode string, lastNotified *time.Time) *models.Donor {
	return &models.Donor{
		Username: username, Password: "x", FirstName: username,
		BloodGroup: group, Mobile: mobile, Zipcode: zipcode,
		IsAvailable: true, LastNotifiedAt: lastNotified,
	}
}

func TestSelectRecipientsCooldown(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	svc := NewSMSService(db, cfg)
	now := time.Now()

	recent := now.Add(-1 * time.Hour) // inside the 6h cooldown
	stale := now.Add(-12 * time.Hour) // outside
	require.NoError(t, db.Create(smsTestDonor("d_recent", "O+", "+919000000001", "", &recent)).Error)
	require.NoError(t, db.Create(smsTestDonor("d_stale", "O+", "+919000000002", "", &stale)).Error)
	require.NoError(t, db.Create(smsTestDonor("d_never", "O+", "+919000000003", "", nil)).Error)

	donors, err := svc.SelectRecipients("O+", "", 10, now)
	require.NoError(t, err)
	require.Len(t, donors, 2)
	// Never-notified donors lead the queue
	assert.Equal(t, "d_never", donors[0].Username)
	assert.Equal(t, "d_stale", donors[1].Username)
}

func TestSelectRecipientsSkipsUnavailableAndWrongGroup(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	svc := NewSMSService(db, cfg)

	unavailable := smsTestDonor("d_off", "O+", "+919000000001", "", nil)
	unavailable.IsAvailable = false
	require.NoError(t, db.Create(unavailable).Error)
	require.NoError(t, db.Create(smsTestDonor("d_wrong", "A+", "+919000000002", "", nil)).Error)
	require.NoError(t, db.Create(smsTestDonor("d_nophone", "O+", "", "", nil)).Error)
	require.NoError(t, db.Create(smsTestDonor("d_ok", "O+", "+919000000004", "", nil)).Error)

	donors, err := svc.SelectRecipients("O+", "", 10, time.Now())
	require.NoError(t, err)
	require.Len(t, donors, 1)
	assert.Equal(t, "d_ok", donors[0].Username)
}

func TestSelectRecipientsZipcodeMatchesFirst(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	svc := NewSMSService(db, cfg)
	now := time.Now()

	older := now.Add(-48 * time.Hour)
	newer := now.Add(-24 * time.Hour)
	require.NoError(t, db.Create(smsTestDonor("d_far", "B-", "+919000000001", "110001", &older)).Error)
	require.NoError(t, db.Create(smsTestDonor("d_near", "B-", "+919000000002", "560001", &newer)).Error)

	donors, err := svc.SelectRecipients("B-", "560001", 10, now)
	require.NoError(t, err)
	require.Len(t, donors, 2)
	assert.Equal(t, "d_near", donors[0].Username)
}

func TestSelectRecipientsDedupesNormalizedPhones(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	svc := NewSMSService(db, cfg)

	// Same number written three ways
	require.NoError(t, db.Create(smsTestDonor("d_a", "AB+", "+91 93854 26550", "", nil)).Error)
	require.NoError(t, db.Create(smsTestDonor("d_b", "AB+", "9385426550", "", nil)).Error)
	require.NoError(t, db.Create(smsTestDonor("d_c", "AB+", "+919385426550", "", nil)).Error)

	donors, err := svc.SelectRecipients("AB+", "", 10, time.Now())
	require.NoError(t, err)
	require.Len(t, donors, 1)
	assert.Equal(t, "+919385426550", donors[0].Mobile)
}

func TestSelectRecipientsCapsAtConfiguredMax(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	cfg.SMSMaxRecipients = 3
	svc := NewSMSService(db, cfg)

	for i := 0; i < 6; i++ {
		donor := smsTestDonor(
			fmt.Sprintf("d_cap_%d", i), "O-",
			fmt.Sprintf("+91900000110%d", i), "", nil)
		require.NoError(t, db.Create(donor).Error)
	}

	donors, err := svc.SelectRecipients("O-", "", 100, time.Now())
	require.NoError(t, err)
	assert.Len(t, donors, 3)
}

func TestSelectRecipientsTxSeesUncommittedDonors(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	svc := NewSMSService(db, cfg)
	now := time.Now()

	// A donor created inside an open transaction must be visible to a
	// selection running on that same transaction
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(smsTestDonor("d_intx", "AB-", "+919000000031", "", nil)).Error; err != nil {
			return err
		}

		donors, err := svc.SelectRecipientsTx(tx, "AB-", "", 10, now)
		require.NoError(t, err)
		require.Len(t, donors, 1)
		assert.Equal(t, "d_intx", donors[0].Username)
		return nil
	})
	require.NoError(t, err)
}

func TestBuildRequestAlertAndTruncation(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	svc := NewSMSService(db, cfg)

	request := &models.BloodRequest{
		PatientName: "Jane Doe", BloodGroup: "O-", Unit: 350,
		Reason: "emergency surgery",
	}
	body := svc.BuildRequestAlert(request)
	assert.Contains(t, body, "O-")
	assert.Contains(t, body, "350ml")
	assert.Contains(t, body, "Jane Doe")

	long := strings.Repeat("x", 2000)
	truncated := TruncateSMSBody(long)
	assert.Len(t, truncated, maxSMSBodyLength)
	assert.True(t, strings.HasSuffix(truncated, "..."))

	short := "short message"
	assert.Equal(t, short, TruncateSMSBody(short))
}

func TestEnqueueForRequestTxQueuesAndStamps(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	svc := NewSMSService(db, cfg)
	now := time.Now()

	require.NoError(t, db.Create(smsTestDonor("d_q1", "A-", "+919000000021", "", nil)).Error)
	require.NoError(t, db.Create(smsTestDonor("d_q2", "A-", "+919000000022", "", nil)).Error)

	request := &models.BloodRequest{
		PatientName: "Jane Doe", PatientAge: 41,
		Reason: "scheduled surgery next week", BloodGroup: "A-", Unit: 200,
		Status: models.StatusPending,
	}
	require.NoError(t, db.Create(request).Error)

	var enqueued int
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		enqueued, err = svc.EnqueueForRequestTx(tx, request, now)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, enqueued)

	var outbox []models.SMSOutbox
	require.NoError(t, db.Find(&outbox).Error)
	require.Len(t, outbox, 2)
	for _, row := range outbox {
		assert.Equal(t, models.OutboxPending, row.Status)
		require.NotNil(t, row.RequestID)
		assert.Equal(t, request.ID, *row.RequestID)
	}

	var stamped int64
	require.NoError(t, db.Model(&models.Donor{}).
		Where("last_notified_at IS NOT NULL").Count(&stamped).Error)
	assert.Equal(t, int64(2), stamped)
}

func TestEnqueueRejectsInvalidPhone(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	svc := NewSMSService(db, cfg)

	require.Error(t, svc.Enqueue("", "hello", nil, nil))
	require.Error(t, svc.Enqueue("+1", "hello", nil, nil))
	require.NoError(t, svc.Enqueue("+919385426550", "hello", nil, nil))
}

func TestSendDirectNoopWhenDisabled(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	cfg.SMSEnabled = false
	svc := NewSMSService(db, cfg)

	// Disabled SMS drops the message without error so approvals never fail
	// on gateway config.
	require.NoError(t, svc.SendDirect("+919385426550", "test"))
}
