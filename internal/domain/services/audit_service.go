package services

import (
	"time"

	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/infrastructure/config"

	"gorm.io/gorm"
)

// InterfaceAuditService defines the audit service interface
type InterfaceAuditService interface {
	Record(entry *models.ActionAuditLog) error
	RecordTx(tx *gorm.DB, entry *models.ActionAuditLog) error
	GetAuditLogs(page, pageSize int, action string, from, to *time.Time) ([]models.ActionAuditLog, int64, error)
	RecordExport(entry *models.ReportExportLog) error
	GetExportLogs(page, pageSize int) ([]models.ReportExportLog, int64, error)
}

// AuditService persists admin action trails
type AuditService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewAuditService creates a new audit service
func NewAuditService(db *gorm.DB, cfg *config.Config) InterfaceAuditService {
	return &AuditService{
		DB:     db,
		Config: cfg,
	}
}

// Record writes one audit entry
func (s *AuditService) Record(entry *models.ActionAuditLog) error {
	return s.DB.Create(entry).Error
}

// RecordTx writes one audit entry inside an existing transaction, so the
// trail commits atomically with the decision it describes
func (s *AuditService) RecordTx(tx *gorm.DB, entry *models.ActionAuditLog) error {
	return tx.Create(entry).Error
}

// GetAuditLogs lists audit entries with pagination, optional action and time
// range filters
func (s *AuditService) GetAuditLogs(page, pageSize int, action string, from, to *time.Time) ([]models.ActionAuditLog, int64, error) {
	var logs []models.ActionAuditLog
	var total int64

	query := s.DB.Model(&models.ActionAuditLog{})
	if action != "" {
		query = query.Where("action = ?", action)
	}
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Limit(pageSize).Offset(offset).Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// RecordExport writes one report export entry
func (s *AuditService) RecordExport(entry *models.ReportExportLog) error {
	return s.DB.Create(entry).Error
}

// GetExportLogs lists report export entries, newest first
func (s *AuditService) GetExportLogs(page, pageSize int) ([]models.ReportExportLog, int64, error) {
	var logs []models.ReportExportLog
	var total int64

	if err := s.DB.Model(&models.ReportExportLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := s.DB.Order("created_at DESC").Limit(pageSize).Offset(offset).Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
