package jobs

import (
	"time"

	"bloodbridge-http-service/internal/app/middleware"
	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/domain/services"
	"bloodbridge-http-service/pkg/logger"

	"github.com/go-co-op/gocron"
	"gorm.io/gorm"
)

// Retry policy for the SMS outbox. The backoff doubles per attempt.
const (
	dispatchBatchSize  = 50
	maxDispatchRetries = 3
	baseRetryDelay     = 30 * time.Second
)

// SMSDispatcher drains the SMS outbox through the gateway.
type SMSDispatcher struct {
	DB  *gorm.DB
	SMS services.InterfaceSMSService
}

// NewSMSDispatcher creates a new outbox dispatcher
func NewSMSDispatcher(db *gorm.DB, sms services.InterfaceSMSService) *SMSDispatcher {
	return &SMSDispatcher{
		DB:  db,
		SMS: sms,
	}
}

// StartDispatchCron runs the outbox drain every 15 seconds
func (d *SMSDispatcher) StartDispatchCron() *gocron.Scheduler {
	scheduler := gocron.NewScheduler(time.Local)

	scheduler.Every(15).Seconds().Do(func() {
		if _, err := d.DispatchPending(time.Now()); err != nil {
			logger.Error("SMS outbox dispatch failed: %v", err)
		}
	})

	scheduler.StartAsync()
	logger.Info("SMS outbox dispatcher started")

	return scheduler
}

// DispatchPending sends every due Pending message once. Failures reschedule
// the message with doubled delay until the retry budget runs out, then the
// message moves to Dead.
func (d *SMSDispatcher) DispatchPending(now time.Time) (int, error) {
	var pending []models.SMSOutbox
	if err := d.DB.Where("status = ? AND next_attempt <= ?", models.OutboxPending, now).
		Order("next_attempt ASC").Limit(dispatchBatchSize).Find(&pending).Error; err != nil {
		return 0, err
	}

	sent := 0
	for i := range pending {
		message := &pending[i]

		if err := d.SMS.SendDirect(message.Phone, message.Body); err != nil {
			if failErr := d.markFailure(message, now, err); failErr != nil {
				return sent, failErr
			}
			continue
		}

		if err := d.DB.Model(message).Updates(map[string]interface{}{
			"status":   models.OutboxSent,
			"attempts": message.Attempts + 1,
			"sent_at":  now,
		}).Error; err != nil {
			return sent, err
		}
		if err := d.updateDelivery(message, models.DeliverySent, ""); err != nil {
			return sent, err
		}
		middleware.CountSMSDispatched("sent")
		sent++
	}

	return sent, nil
}

// markFailure reschedules a failed message or kills it after the last retry
func (d *SMSDispatcher) markFailure(message *models.SMSOutbox, now time.Time, sendErr error) error {
	attempts := message.Attempts + 1
	updates := map[string]interface{}{
		"attempts":   attempts,
		"last_error": sendErr.Error(),
	}

	if attempts >= maxDispatchRetries {
		updates["status"] = models.OutboxDead
		if err := d.updateDelivery(message, models.DeliveryFailed, sendErr.Error()); err != nil {
			return err
		}
		middleware.CountSMSDispatched("dead")
		logger.Error("SMS to %s dead after %d attempts: %v", message.Phone, attempts, sendErr)
	} else {
		delay := baseRetryDelay << (attempts - 1)
		updates["next_attempt"] = now.Add(delay)
		middleware.CountSMSDispatched("retried")
		logger.Warning("SMS to %s failed (attempt %d), retrying in %s: %v", message.Phone, attempts, delay, sendErr)
	}

	return d.DB.Model(message).Updates(updates).Error
}

// updateDelivery mirrors a terminal send outcome onto the broadcast delivery
// row, when the message belongs to a broadcast
func (d *SMSDispatcher) updateDelivery(message *models.SMSOutbox, status, errText string) error {
	if message.DeliveryID == nil {
		return nil
	}
	return d.DB.Model(&models.BroadcastDelivery{}).Where("id = ?", *message.DeliveryID).
		Updates(map[string]interface{}{
			"status": status,
			"error":  errText,
		}).Error
}
