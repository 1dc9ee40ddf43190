package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/infrastructure/config"
	"bloodbridge-http-service/pkg/logger"
	"bloodbridge-http-service/utils"

	"gorm.io/gorm"
)

// maxSMSBodyLength caps outgoing message bodies. Longer bodies are truncated
// with an ellipsis rather than rejected.
const maxSMSBodyLength = 1200

// InterfaceSMSService defines the SMS service interface
type InterfaceSMSService interface {
	SelectRecipients(bloodGroup, zipcode string, limit int, now time.Time) ([]models.Donor, error)
	SelectRecipientsTx(tx *gorm.DB, bloodGroup, zipcode string, limit int, now time.Time) ([]models.Donor, error)
	BuildRequestAlert(request *models.BloodRequest) string
	EnqueueForRequestTx(tx *gorm.DB, request *models.BloodRequest, now time.Time) (int, error)
	Enqueue(phone, body string, donorID, requestID *uint) error
	EnqueueTx(tx *gorm.DB, phone, body string, donorID, requestID *uint) error
	EnqueueDeliveryTx(tx *gorm.DB, delivery *models.BroadcastDelivery, body string) error
	SendDirect(phone, body string) error
}

// SMSService selects donors to alert and talks to the HTTP SMS gateway.
// Messages are never sent inline; they go through the outbox table and the
// dispatcher job drains it.
type SMSService struct {
	DB     *gorm.DB
	Config *config.Config
	Client *http.Client
}

type smsGatewayPayload struct {
	To     string `json:"to"`
	Body   string `json:"body"`
	Sender string `json:"sender,omitempty"`
}

// NewSMSService creates a new SMS service
func NewSMSService(db *gorm.DB, cfg *config.Config) InterfaceSMSService {
	return &SMSService{
		DB:     db,
		Config: cfg,
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

// SelectRecipients picks donors to alert for a blood group, reading through
// the service's own connection.
func (s *SMSService) SelectRecipients(bloodGroup, zipcode string, limit int, now time.Time) ([]models.Donor, error) {
	return s.SelectRecipientsTx(s.DB, bloodGroup, zipcode, limit, now)
}

// SelectRecipientsTx picks donors to alert for a blood group, reading through
// the caller's transaction so selection and the cooldown stamp commit
// together. Donors must be available, match the group, carry a mobile number,
// and be outside their notification cooldown. Zipcode matches rank first,
// then donors notified longest ago. Duplicate phone numbers are dropped after
// normalization.
func (s *SMSService) SelectRecipientsTx(tx *gorm.DB, bloodGroup, zipcode string, limit int, now time.Time) ([]models.Donor, error) {
	if limit <= 0 {
		limit = s.Config.SMSMaxRecipients
	}
	if limit > s.Config.SMSMaxRecipients {
		limit = s.Config.SMSMaxRecipients
	}

	cooldownCutoff := now.Add(-time.Duration(s.Config.SMSMinNotificationGap) * time.Second)

	var candidates []models.Donor
	// Over-fetch so dedupe still leaves enough rows after filtering.
	fetchLimit := limit * 2
	// NULL last_notified_at sorts first on both MySQL and SQLite, so
	// never-notified donors lead the queue.
	if err := tx.Model(&models.Donor{}).
		Where("is_available = ?", true).
		Where("blood_group = ?", bloodGroup).
		Where("mobile <> ''").
		Where("last_notified_at IS NULL OR last_notified_at <= ?", cooldownCutoff).
		Order("last_notified_at ASC").
		Limit(fetchLimit).Find(&candidates).Error; err != nil {
		return nil, err
	}

	// Zipcode matches move to the front, preserving the notification order
	// within each half.
	if zipcode != "" {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Zipcode == zipcode && candidates[j].Zipcode != zipcode
		})
	}

	seen := make(map[string]bool)
	selected := make([]models.Donor, 0, limit)
	for _, donor := range candidates {
		phone := utils.NormalizePhoneNumber(donor.Mobile, s.Config.SMSDefaultCountryCode)
		if phone == "" || seen[phone] {
			continue
		}
		seen[phone] = true
		donor.Mobile = phone
		selected = append(selected, donor)
		if len(selected) >= limit {
			break
		}
	}

	return selected, nil
}

// BuildRequestAlert renders the alert body for one blood request
func (s *SMSService) BuildRequestAlert(request *models.BloodRequest) string {
	body := fmt.Sprintf("URGENT: %s blood needed (%dml) for %s. Reason: %s. Reply or open the app if you can donate.",
		request.BloodGroup, request.Unit, request.PatientName, request.Reason)
	return TruncateSMSBody(body)
}

// TruncateSMSBody enforces the outgoing body length cap.
func TruncateSMSBody(body string) string {
	if len(body) <= maxSMSBodyLength {
		return body
	}
	return body[:maxSMSBodyLength-3] + "..."
}

// EnqueueForRequestTx selects donors for a request and queues one outbox row
// per donor, inside the caller's transaction. It stamps each donor's
// last_notified_at so the cooldown starts immediately.
func (s *SMSService) EnqueueForRequestTx(tx *gorm.DB, request *models.BloodRequest, now time.Time) (int, error) {
	zipcode := ""
	if request.Patient != nil {
		zipcode = request.Patient.Zipcode
	} else if request.Donor != nil {
		zipcode = request.Donor.Zipcode
	}

	donors, err := s.SelectRecipientsTx(tx, request.BloodGroup, zipcode, s.Config.SMSMaxRecipients, now)
	if err != nil {
		return 0, err
	}
	if len(donors) == 0 {
		return 0, nil
	}

	body := s.BuildRequestAlert(request)
	for i := range donors {
		donor := &donors[i]
		if err := s.EnqueueTx(tx, donor.Mobile, body, &donor.ID, &request.ID); err != nil {
			return 0, err
		}
		if err := tx.Model(&models.Donor{}).Where("id = ?", donor.ID).
			Update("last_notified_at", now).Error; err != nil {
			return 0, err
		}
	}

	return len(donors), nil
}

// Enqueue queues one outbox row
func (s *SMSService) Enqueue(phone, body string, donorID, requestID *uint) error {
	return s.EnqueueTx(s.DB, phone, body, donorID, requestID)
}

// EnqueueTx queues one outbox row inside an existing transaction
func (s *SMSService) EnqueueTx(tx *gorm.DB, phone, body string, donorID, requestID *uint) error {
	phone = utils.NormalizePhoneNumber(phone, s.Config.SMSDefaultCountryCode)
	if phone == "" {
		return errors.New("invalid phone number")
	}

	return tx.Create(&models.SMSOutbox{
		Phone:       phone,
		Body:        TruncateSMSBody(body),
		DonorID:     donorID,
		RequestID:   requestID,
		Status:      models.OutboxPending,
		NextAttempt: time.Now(),
	}).Error
}

// EnqueueDeliveryTx queues one outbox row tied to a broadcast delivery, so
// the dispatcher can report the send outcome back onto the delivery row
func (s *SMSService) EnqueueDeliveryTx(tx *gorm.DB, delivery *models.BroadcastDelivery, body string) error {
	phone := utils.NormalizePhoneNumber(delivery.Phone, s.Config.SMSDefaultCountryCode)
	if phone == "" {
		return errors.New("invalid phone number")
	}

	return tx.Create(&models.SMSOutbox{
		Phone:       phone,
		Body:        TruncateSMSBody(body),
		DonorID:     &delivery.DonorID,
		DeliveryID:  &delivery.ID,
		Status:      models.OutboxPending,
		NextAttempt: time.Now(),
	}).Error
}

// SendDirect posts one message to the SMS gateway. Used by the outbox
// dispatcher, not by request handlers.
func (s *SMSService) SendDirect(phone, body string) error {
	if !s.Config.SMSEnabled {
		logger.Info("SMS disabled, dropping message to %s", phone)
		return nil
	}
	if s.Config.SMSGatewayURL == "" {
		return errors.New("SMS gateway URL not configured")
	}

	payload, err := json.Marshal(smsGatewayPayload{
		To:     phone,
		Body:   body,
		Sender: s.Config.SMSSenderID,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.Config.SMSGatewayURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.Config.SMSGatewayToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.Config.SMSGatewayToken)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("SMS gateway returned status %d", resp.StatusCode)
	}
	return nil
}
