package services

import (
	"errors"

	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/infrastructure/config"

	"gorm.io/gorm"
)

// InterfaceNotificationService defines the in-app notification service
// interface
type InterfaceNotificationService interface {
	Notify(recipientType string, recipientID uint, title, body, kind string, refID uint) error
	NotifyTx(tx *gorm.DB, recipientType string, recipientID uint, title, body, kind string, refID uint) error
	GetNotifications(recipientType string, recipientID uint, unreadOnly bool, page, pageSize int) ([]models.InAppNotification, int64, error)
	MarkRead(recipientType string, recipientID, notificationID uint) error
	MarkAllRead(recipientType string, recipientID uint) (int64, error)
}

// NotificationService stores and serves in-app notifications
type NotificationService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewNotificationService creates a new notification service
func NewNotificationService(db *gorm.DB, cfg *config.Config) InterfaceNotificationService {
	return &NotificationService{
		DB:     db,
		Config: cfg,
	}
}

// Notify stores one notification for a recipient
func (s *NotificationService) Notify(recipientType string, recipientID uint, title, body, kind string, refID uint) error {
	return s.NotifyTx(s.DB, recipientType, recipientID, title, body, kind, refID)
}

// NotifyTx stores one notification inside an existing transaction
func (s *NotificationService) NotifyTx(tx *gorm.DB, recipientType string, recipientID uint, title, body, kind string, refID uint) error {
	return tx.Create(&models.InAppNotification{
		RecipientType: recipientType,
		RecipientID:   recipientID,
		Title:         title,
		Body:          body,
		Kind:          kind,
		RefID:         refID,
	}).Error
}

// GetNotifications lists a recipient's notifications, newest first
func (s *NotificationService) GetNotifications(recipientType string, recipientID uint, unreadOnly bool, page, pageSize int) ([]models.InAppNotification, int64, error) {
	var notifications []models.InAppNotification
	var total int64

	query := s.DB.Model(&models.InAppNotification{}).
		Where("recipient_type = ? AND recipient_id = ?", recipientType, recipientID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Limit(pageSize).Offset(offset).Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

// MarkRead marks one notification as read, scoped to its owner
func (s *NotificationService) MarkRead(recipientType string, recipientID, notificationID uint) error {
	result := s.DB.Model(&models.InAppNotification{}).
		Where("id = ? AND recipient_type = ? AND recipient_id = ?", notificationID, recipientType, recipientID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("notification not found")
	}
	return nil
}

// MarkAllRead marks every unread notification of a recipient as read
func (s *NotificationService) MarkAllRead(recipientType string, recipientID uint) (int64, error) {
	result := s.DB.Model(&models.InAppNotification{}).
		Where("recipient_type = ? AND recipient_id = ? AND is_read = ?", recipientType, recipientID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}
