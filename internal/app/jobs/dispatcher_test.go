package jobs

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/domain/services"
	"bloodbridge-http-service/internal/infrastructure/config"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newDispatcherTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Donor{}, &models.BloodRequest{}, &models.SMSOutbox{},
		&models.EmergencyBroadcast{}, &models.BroadcastDelivery{}))
	return db
}

func newDispatcherTestConfig(gatewayURL string) *config.Config {
	return &config.Config{
		SMSEnabled:            true,
		SMSGatewayURL:         gatewayURL,
		SMSSenderID:           "BLOODBRIDGE",
		SMSDefaultCountryCode: "+91",
		SMSMaxRecipients:      25,
		SMSMinNotificationGap: 21600,
	}
}

func enqueueTestMessage(t *testing.T, db *gorm.DB, sms services.InterfaceSMSService) {
	t.Helper()
	require.NoError(t, sms.Enqueue("+919385426550", "URGENT: O- blood needed", nil, nil))
}

func TestDispatchPendingSendsDueMessages(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	db := newDispatcherTestDB(t)
	sms := services.NewSMSService(db, newDispatcherTestConfig(gateway.URL))
	dispatcher := NewSMSDispatcher(db, sms)
	enqueueTestMessage(t, db, sms)

	sent, err := dispatcher.DispatchPending(time.Now().Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	var message models.SMSOutbox
	require.NoError(t, db.First(&message).Error)
	assert.Equal(t, models.OutboxSent, message.Status)
	assert.Equal(t, 1, message.Attempts)
	assert.NotNil(t, message.SentAt)
}

func TestDispatchPendingSkipsFutureMessages(t *testing.T) {
	db := newDispatcherTestDB(t)
	sms := services.NewSMSService(db, newDispatcherTestConfig("http://gateway.invalid"))
	dispatcher := NewSMSDispatcher(db, sms)
	enqueueTestMessage(t, db, sms)

	// Push the message into the future; nothing is due yet
	require.NoError(t, db.Model(&models.SMSOutbox{}).Where("1 = 1").
		Update("next_attempt", time.Now().Add(time.Hour)).Error)

	sent, err := dispatcher.DispatchPending(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	var message models.SMSOutbox
	require.NoError(t, db.First(&message).Error)
	assert.Equal(t, models.OutboxPending, message.Status)
	assert.Equal(t, 0, message.Attempts)
}

func TestDispatchBackoffThenDead(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer gateway.Close()

	db := newDispatcherTestDB(t)
	sms := services.NewSMSService(db, newDispatcherTestConfig(gateway.URL))
	dispatcher := NewSMSDispatcher(db, sms)
	enqueueTestMessage(t, db, sms)

	now := time.Now().Add(time.Second)

	// First failure reschedules 30s out
	sent, err := dispatcher.DispatchPending(now)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	var message models.SMSOutbox
	require.NoError(t, db.First(&message).Error)
	assert.Equal(t, models.OutboxPending, message.Status)
	assert.Equal(t, 1, message.Attempts)
	assert.NotEmpty(t, message.LastError)
	assert.WithinDuration(t, now.Add(30*time.Second), message.NextAttempt, 2*time.Second)

	// Second failure doubles the delay
	now = message.NextAttempt.Add(time.Second)
	_, err = dispatcher.DispatchPending(now)
	require.NoError(t, err)
	require.NoError(t, db.First(&message).Error)
	assert.Equal(t, models.OutboxPending, message.Status)
	assert.Equal(t, 2, message.Attempts)
	assert.WithinDuration(t, now.Add(60*time.Second), message.NextAttempt, 2*time.Second)

	// Third failure exhausts the budget and kills the message
	now = message.NextAttempt.Add(time.Second)
	_, err = dispatcher.DispatchPending(now)
	require.NoError(t, err)
	require.NoError(t, db.First(&message).Error)
	assert.Equal(t, models.OutboxDead, message.Status)
	assert.Equal(t, 3, message.Attempts)
}

func seedBroadcastDelivery(t *testing.T, db *gorm.DB, sms services.InterfaceSMSService) *models.BroadcastDelivery {
	t.Helper()

	broadcast := &models.EmergencyBroadcast{AdminID: 1, BloodGroup: "O-", Message: "urgent"}
	require.NoError(t, db.Create(broadcast).Error)

	delivery := &models.BroadcastDelivery{
		BroadcastID: broadcast.ID,
		DonorID:     7,
		Phone:       "+919385426550",
		Status:      models.DeliveryQueued,
	}
	require.NoError(t, db.Create(delivery).Error)
	require.NoError(t, sms.EnqueueDeliveryTx(db, delivery, "urgent"))
	return delivery
}

func TestDispatchMarksDeliverySent(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	db := newDispatcherTestDB(t)
	sms := services.NewSMSService(db, newDispatcherTestConfig(gateway.URL))
	dispatcher := NewSMSDispatcher(db, sms)
	delivery := seedBroadcastDelivery(t, db, sms)

	sent, err := dispatcher.DispatchPending(time.Now().Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	require.NoError(t, db.First(delivery, delivery.ID).Error)
	assert.Equal(t, models.DeliverySent, delivery.Status)
	assert.Empty(t, delivery.Error)
}

func TestDispatchMarksDeliveryFailedWhenDead(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer gateway.Close()

	db := newDispatcherTestDB(t)
	sms := services.NewSMSService(db, newDispatcherTestConfig(gateway.URL))
	dispatcher := NewSMSDispatcher(db, sms)
	delivery := seedBroadcastDelivery(t, db, sms)

	// Burn through the retry budget
	now := time.Now().Add(time.Second)
	for i := 0; i < maxDispatchRetries; i++ {
		_, err := dispatcher.DispatchPending(now)
		require.NoError(t, err)

		var message models.SMSOutbox
		require.NoError(t, db.First(&message).Error)
		now = message.NextAttempt.Add(time.Second)
	}

	var message models.SMSOutbox
	require.NoError(t, db.First(&message).Error)
	require.Equal(t, models.OutboxDead, message.Status)

	require.NoError(t, db.First(delivery, delivery.ID).Error)
	assert.Equal(t, models.DeliveryFailed, delivery.Status)
	assert.NotEmpty(t, delivery.Error)
}
