package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/infrastructure/config"
	"bloodbridge-http-service/pkg/logger"

	"gorm.io/gorm"
)

// InterfaceBroadcastService defines the emergency broadcast service interface
type InterfaceBroadcastService interface {
	SendBroadcast(adminID uint, bloodGroup, message, zipcode string, maxRecipients int) (*models.EmergencyBroadcast, error)
	GetBroadcasts(page, pageSize int) ([]models.EmergencyBroadcast, int64, error)
	GetBroadcastByID(id uint) (*models.EmergencyBroadcast, error)
}

// BroadcastService fans urgent admin messages out to matching donors via the
// SMS outbox and the MQTT alert topic
type BroadcastService struct {
	DB     *gorm.DB
	Config *config.Config
	SMS    InterfaceSMSService
	Audit  InterfaceAuditService
	Alerts InterfaceMQTTAlertService
}

// NewBroadcastService creates a new broadcast service
func NewBroadcastService(db *gorm.DB, cfg *config.Config, sms InterfaceSMSService, audit InterfaceAuditService, alerts InterfaceMQTTAlertService) InterfaceBroadcastService {
	return &BroadcastService{
		DB:     db,
		Config: cfg,
		SMS:    sms,
		Audit:  audit,
		Alerts: alerts,
	}
}

// SendBroadcast selects matching donors, stores the broadcast with one
// delivery row per donor, and queues the SMS messages. Selection and
// queueing commit atomically.
func (s *BroadcastService) SendBroadcast(adminID uint, bloodGroup, message, zipcode string, maxRecipients int) (*models.EmergencyBroadcast, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, errors.New("message must not be empty")
	}
	if len(message) > 1200 {
		return nil, errors.New("message must be at most 1200 characters")
	}
	if !models.IsValidBloodGroup(bloodGroup) {
		return nil, errors.New("invalid blood group")
	}
	if maxRecipients <= 0 || maxRecipients > s.Config.SMSMaxRecipients {
		maxRecipients = s.Config.SMSMaxRecipients
	}

	now := time.Now()
	broadcast := &models.EmergencyBroadcast{
		AdminID:       adminID,
		BloodGroup:    bloodGroup,
		Message:       message,
		Zipcode:       zipcode,
		MaxRecipients: maxRecipients,
	}

	// Selection runs inside the transaction so the cooldown check and the
	// cooldown stamp commit together.
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		donors, err := s.SMS.SelectRecipientsTx(tx, bloodGroup, zipcode, maxRecipients, now)
		if err != nil {
			return err
		}
		if len(donors) == 0 {
			return errors.New("no eligible donors for broadcast")
		}

		broadcast.RecipientCount = len(donors)
		if err := tx.Create(broadcast).Error; err != nil {
			return err
		}

		for i := range donors {
			donor := &donors[i]
			delivery := &models.BroadcastDelivery{
				BroadcastID: broadcast.ID,
				DonorID:     donor.ID,
				Phone:       donor.Mobile,
				Status:      models.DeliveryQueued,
			}
			if err := tx.Create(delivery).Error; err != nil {
				return err
			}
			if err := s.SMS.EnqueueDeliveryTx(tx, delivery, message); err != nil {
				return err
			}
			if err := tx.Model(&models.Donor{}).Where("id = ?", donor.ID).
				Update("last_notified_at", now).Error; err != nil {
				return err
			}
		}

		return s.Audit.RecordTx(tx, &models.ActionAuditLog{
			AdminID:    adminID,
			Action:     models.AuditActionBroadcastSent,
			TargetType: "emergency_broadcast",
			TargetID:   broadcast.ID,
			BloodGroup: bloodGroup,
			Detail:     fmt.Sprintf("broadcast queued to %d donors", len(donors)),
		})
	})
	if err != nil {
		return nil, err
	}

	if s.Alerts != nil {
		if err := s.Alerts.PublishBroadcast(broadcast); err != nil {
			logger.Warning("MQTT broadcast %d publish failed: %v", broadcast.ID, err)
		}
	}

	return broadcast, nil
}

// GetBroadcasts lists broadcasts, newest first
func (s *BroadcastService) GetBroadcasts(page, pageSize int) ([]models.EmergencyBroadcast, int64, error) {
	var broadcasts []models.EmergencyBroadcast
	var total int64

	if err := s.DB.Model(&models.EmergencyBroadcast{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := s.DB.Order("created_at DESC").Limit(pageSize).Offset(offset).Find(&broadcasts).Error; err != nil {
		return nil, 0, err
	}

	return broadcasts, total, nil
}

// GetBroadcastByID fetches one broadcast with its deliveries
func (s *BroadcastService) GetBroadcastByID(id uint) (*models.EmergencyBroadcast, error) {
	var broadcast models.EmergencyBroadcast
	if err := s.DB.Preload("Deliveries").First(&broadcast, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("broadcast not found")
		}
		return nil, err
	}
	return &broadcast, nil
}
