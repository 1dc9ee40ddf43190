package services

import (
	"testing"
	"time"

	"bloodbridge-http-service/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRequestTestService(t *testing.T, db *gorm.DB) (InterfaceRequestService, InterfaceStockService) {
	t.Helper()
	cfg := newTestConfig()
	audit := NewAuditService(db, cfg)
	stock := NewStockService(db, cfg, audit, nil)
	require.NoError(t, stock.SeedStocks())
	sms := NewSMSService(db, cfg)
	notify := NewNotificationService(db, cfg)
	return NewRequestService(db, cfg, stock, audit, sms, notify, nil), stock
}

func createTestPatient(t *testing.T, db *gorm.DB) *models.Patient {
	t.Helper()
	patient := &models.Patient{
		Username:   "pat_jane",
		Password:   "secret123",
		FirstName:  "Jane",
		Age:        41,
		BloodGroup: "O+",
		Mobile:     "+919385426550",
		Zipcode:    "560001",
	}
	require.NoError(t, db.Create(patient).Error)
	return patient
}

func createPendingRequest(t *testing.T, db *gorm.DB, svc InterfaceRequestService, patientID uint, group string, unit uint) *models.BloodRequest {
	t.Helper()
	request := &models.BloodRequest{
		PatientName: "Jane Doe",
		PatientAge:  41,
		Reason:      "scheduled surgery next week",
		BloodGroup:  group,
		Unit:        unit,
	}
	require.NoError(t, svc.CreatePatientRequest(patientID, request))
	return request
}

func TestApproveRequestDeductsStockExactly(t *testing.T) {
	db := newTestDB(t)
	svc, stock := newRequestTestService(t, db)
	require.NoError(t, db.Model(&models.Stock{}).Where("blood_group = ?", "O+").Update("unit", 500).Error)

	// A matching donor should be queued for an SMS alert
	donor := &models.Donor{
		Username:    "don_ravi",
		Password:    "secret123",
		FirstName:   "Ravi",
		BloodGroup:  "O+",
		Mobile:      "+919385426551",
		IsAvailable: true,
	}
	require.NoError(t, db.Create(donor).Error)

	patient := createTestPatient(t, db)
	request := createPendingRequest(t, db, svc, patient.ID, "O+", 350)

	result, err := svc.ApproveRequest(1, request.ID)
	require.NoError(t, err)
	assert.False(t, result.AutoRejected)
	assert.Equal(t, models.StatusApproved, result.Request.Status)
	assert.Equal(t, 1, result.SMSEnqueued)

	row, err := stock.GetStockByGroup("O+")
	require.NoError(t, err)
	assert.Equal(t, uint(150), row.Unit)

	var outbox []models.SMSOutbox
	require.NoError(t, db.Find(&outbox).Error)
	require.Len(t, outbox, 1)
	assert.Equal(t, models.OutboxPending, outbox[0].Status)
	assert.Equal(t, "+919385426551", outbox[0].Phone)

	var refreshed models.Donor
	require.NoError(t, db.First(&refreshed, donor.ID).Error)
	assert.NotNil(t, refreshed.LastNotifiedAt)

	// The patient gets an in-app notification
	var notifications []models.InAppNotification
	require.NoError(t, db.Where("recipient_type = ? AND recipient_id = ?",
		models.NotifyRecipientPatient, patient.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Contains(t, notifications[0].Title, "approved")
}

// recordingAlerts captures published MQTT events for assertions
type recordingAlerts struct {
	approvedRequests []uint
	stockAlerts      map[string]uint
}

func newRecordingAlerts() *recordingAlerts {
	return &recordingAlerts{stockAlerts: map[string]uint{}}
}

func (a *recordingAlerts) Connect() error { return nil }
func (a *recordingAlerts) Disconnect()    {}
func (a *recordingAlerts) PublishRequestApproved(request *models.BloodRequest) error {
	a.approvedRequests = append(a.approvedRequests, request.ID)
	return nil
}
func (a *recordingAlerts) PublishBroadcast(broadcast *models.EmergencyBroadcast) error { return nil }
func (a *recordingAlerts) PublishStockAlert(bloodGroup string, units uint) error {
	a.stockAlerts[bloodGroup] = units
	return nil
}

func TestApproveRequestAlertsOnLowStock(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	audit := NewAuditService(db, cfg)
	stock := NewStockService(db, cfg, audit, nil)
	require.NoError(t, stock.SeedStocks())
	alerts := newRecordingAlerts()
	svc := NewRequestService(db, cfg, stock, audit, NewSMSService(db, cfg), NewNotificationService(db, cfg), alerts)

	patient := createTestPatient(t, db)

	// First approval leaves 700ml, above the 500ml threshold
	require.NoError(t, db.Model(&models.Stock{}).Where("blood_group = ?", "O+").Update("unit", 900).Error)
	first := createPendingRequest(t, db, svc, patient.ID, "O+", 200)
	_, err := svc.ApproveRequest(1, first.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{first.ID}, alerts.approvedRequests)
	assert.Empty(t, alerts.stockAlerts)

	// Second approval dips below the threshold and raises the alert
	second := createPendingRequest(t, db, svc, patient.ID, "O+", 300)
	_, err = svc.ApproveRequest(1, second.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(400), alerts.stockAlerts["O+"])
}

func TestApproveRequestAutoRejectsOnShortStock(t *testing.T) {
	db := newTestDB(t)
	svc, stock := newRequestTestService(t, db)
	require.NoError(t, db.Model(&models.Stock{}).Where("blood_group = ?", "B-").Update("unit", 100).Error)

	patient := createTestPatient(t, db)
	request := createPendingRequest(t, db, svc, patient.ID, "B-", 300)

	result, err := svc.ApproveRequest(1, request.ID)
	require.NoError(t, err)
	assert.True(t, result.AutoRejected)
	assert.Equal(t, models.StatusRejected, result.Request.Status)

	// Stock stays untouched
	row, err := stock.GetStockByGroup("B-")
	require.NoError(t, err)
	assert.Equal(t, uint(100), row.Unit)

	var logs []models.ActionAuditLog
	require.NoError(t, db.Where("action = ?", models.AuditActionRequestRejected).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Detail, "auto-rejected")
}

func TestApproveRequestTwiceFails(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newRequestTestService(t, db)
	require.NoError(t, db.Model(&models.Stock{}).Where("blood_group = ?", "A+").Update("unit", 1000).Error)

	patient := createTestPatient(t, db)
	request := createPendingRequest(t, db, svc, patient.ID, "A+", 200)

	_, err := svc.ApproveRequest(1, request.ID)
	require.NoError(t, err)

	_, err = svc.ApproveRequest(1, request.ID)
	require.ErrorIs(t, err, ErrRequestAlreadyProcessed)

	_, err = svc.RejectRequest(1, request.ID, "changed my mind")
	require.ErrorIs(t, err, ErrRequestAlreadyProcessed)
}

func TestRejectRequestRecordsReason(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newRequestTestService(t, db)

	patient := createTestPatient(t, db)
	request := createPendingRequest(t, db, svc, patient.ID, "O+", 200)

	rejected, err := svc.RejectRequest(7, request.ID, "duplicate request")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)

	var log models.ActionAuditLog
	require.NoError(t, db.Where("action = ?", models.AuditActionRequestRejected).First(&log).Error)
	assert.Equal(t, uint(7), log.AdminID)
	assert.Contains(t, log.Detail, "duplicate request")
}

func TestCreateQuickRequestValidation(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newRequestTestService(t, db)

	valid := QuickRequestInput{
		PatientName:   "Walk-in Patient",
		PatientAge:    50,
		Reason:        "emergency transfusion after accident",
		BloodGroup:    "AB+",
		Unit:          250,
		ContactMobile: "93854 26550",
	}

	t.Run("reason too short", func(t *testing.T) {
		input := valid
		input.Reason = "urgent"
		_, err := svc.CreateQuickRequest(&input)
		require.Error(t, err)
	})

	t.Run("invalid blood group", func(t *testing.T) {
		input := valid
		input.BloodGroup = "C+"
		_, err := svc.CreateQuickRequest(&input)
		require.Error(t, err)
	})

	t.Run("unit out of range", func(t *testing.T) {
		input := valid
		input.Unit = 50
		_, err := svc.CreateQuickRequest(&input)
		require.Error(t, err)
	})

	t.Run("contact too short", func(t *testing.T) {
		input := valid
		input.ContactMobile = "12345"
		_, err := svc.CreateQuickRequest(&input)
		require.Error(t, err)
	})

	t.Run("valid input", func(t *testing.T) {
		input := valid
		request, err := svc.CreateQuickRequest(&input)
		require.NoError(t, err)
		assert.Equal(t, models.RequestChannelQuick, request.Channel)
		assert.Equal(t, models.StatusPending, request.Status)
		assert.Equal(t, "+919385426550", request.ContactMobile)
		assert.Nil(t, request.DonorID)
		assert.Nil(t, request.PatientID)
	})
}

func TestRequestChannelsSetOwner(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newRequestTestService(t, db)

	donor := &models.Donor{
		Username: "don_leela", Password: "secret123", FirstName: "Leela",
		BloodGroup: "A-", Mobile: "+919000000001",
	}
	require.NoError(t, db.Create(donor).Error)

	request := &models.BloodRequest{
		PatientName: "Leela K",
		PatientAge:  30,
		Reason:      "blood needed for family member",
		BloodGroup:  "A-",
		Unit:        200,
	}
	require.NoError(t, svc.CreateDonorRequest(donor.ID, request))
	assert.Equal(t, models.RequestChannelDonor, request.Channel)
	require.NotNil(t, request.DonorID)
	assert.Equal(t, donor.ID, *request.DonorID)

	list, err := svc.GetRequestsForDonor(donor.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGetAllRequestsFilters(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newRequestTestService(t, db)
	patient := createTestPatient(t, db)

	createPendingRequest(t, db, svc, patient.ID, "O+", 200)
	approved := createPendingRequest(t, db, svc, patient.ID, "A+", 200)
	require.NoError(t, db.Model(&models.BloodRequest{}).Where("id = ?", approved.ID).
		Update("status", models.StatusApproved).Error)

	pending, total, err := svc.GetAllRequests(1, 10, models.StatusPending, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, pending, 1)
	assert.Equal(t, "O+", pending[0].BloodGroup)

	_, total, err = svc.GetAllRequests(1, 10, "", "A+")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// SMS dispatch metadata defaults stay zeroed until approval
	assert.Equal(t, 0, pending[0].SMSNotifiedCount)
	var tm *time.Time
	assert.Equal(t, tm, pending[0].SMSLastDispatchAt)
}
