package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/infrastructure/config"
	"bloodbridge-http-service/pkg/logger"
	"bloodbridge-http-service/utils"

	"gorm.io/gorm"
)

// ErrRequestAlreadyProcessed is returned when a decision targets a request
// that already left the Pending state.
var ErrRequestAlreadyProcessed = errors.New("request already processed")

// ReviewResult describes the outcome of an admin decision on a request.
type ReviewResult struct {
	Request      *models.BloodRequest `json:"request"`
	AutoRejected bool                 `json:"auto_rejected"`
	SMSEnqueued  int                  `json:"sms_enqueued"`
}

// QuickRequestInput is the anonymous request form payload.
type QuickRequestInput struct {
	PatientName   string `json:"patient_name"`
	PatientAge    int    `json:"patient_age"`
	Reason        string `json:"reason"`
	BloodGroup    string `json:"blood_group"`
	Unit          uint   `json:"unit"`
	ContactMobile string `json:"contact_mobile"`
}

// InterfaceRequestService defines the blood request service interface
type InterfaceRequestService interface {
	GetAllRequests(page, pageSize int, status, bloodGroup string) ([]models.BloodRequest, int64, error)
	GetRequestByID(id uint) (*models.BloodRequest, error)
	CreateDonorRequest(donorID uint, request *models.BloodRequest) error
	CreatePatientRequest(patientID uint, request *models.BloodRequest) error
	CreateQuickRequest(input *QuickRequestInput) (*models.BloodRequest, error)
	ApproveRequest(adminID, requestID uint) (*ReviewResult, error)
	RejectRequest(adminID, requestID uint, reason string) (*models.BloodRequest, error)
	GetRequestsForDonor(donorID uint) ([]models.BloodRequest, error)
}

// RequestService manages blood requests and their review lifecycle
type RequestService struct {
	DB     *gorm.DB
	Config *config.Config
	Stock  InterfaceStockService
	Audit  InterfaceAuditService
	SMS    InterfaceSMSService
	Notify InterfaceNotificationService
	Alerts InterfaceMQTTAlertService
}

// NewRequestService creates a new blood request service
func NewRequestService(db *gorm.DB, cfg *config.Config, stock InterfaceStockService, audit InterfaceAuditService, sms InterfaceSMSService, notify InterfaceNotificationService, alerts InterfaceMQTTAlertService) InterfaceRequestService {
	return &RequestService{
		DB:     db,
		Config: cfg,
		Stock:  stock,
		Audit:  audit,
		SMS:    sms,
		Notify: notify,
		Alerts: alerts,
	}
}

// GetAllRequests lists requests with pagination and optional filters
func (s *RequestService) GetAllRequests(page, pageSize int, status, bloodGroup string) ([]models.BloodRequest, int64, error) {
	var requests []models.BloodRequest
	var total int64

	query := s.DB.Model(&models.BloodRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if bloodGroup != "" {
		query = query.Where("blood_group = ?", bloodGroup)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Limit(pageSize).Offset(offset).
		Preload("Donor").Preload("Patient").Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// GetRequestByID fetches one request with its requester
func (s *RequestService) GetRequestByID(id uint) (*models.BloodRequest, error) {
	var request models.BloodRequest
	if err := s.DB.Preload("Donor").Preload("Patient").First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("request not found")
		}
		return nil, err
	}
	return &request, nil
}

// CreateDonorRequest creates a request on behalf of a donor account
func (s *RequestService) CreateDonorRequest(donorID uint, request *models.BloodRequest) error {
	if err := validateRequestCore(request); err != nil {
		return err
	}
	request.DonorID = &donorID
	request.PatientID = nil
	request.Channel = models.RequestChannelDonor
	request.Status = models.StatusPending
	return s.DB.Create(request).Error
}

// CreatePatientRequest creates a request on behalf of a patient account
func (s *RequestService) CreatePatientRequest(patientID uint, request *models.BloodRequest) error {
	if err := validateRequestCore(request); err != nil {
		return err
	}
	request.PatientID = &patientID
	request.DonorID = nil
	request.Channel = models.RequestChannelPatient
	request.Status = models.StatusPending
	return s.DB.Create(request).Error
}

// CreateQuickRequest validates and stores an anonymous request
func (s *RequestService) CreateQuickRequest(input *QuickRequestInput) (*models.BloodRequest, error) {
	request := &models.BloodRequest{
		PatientName:   strings.TrimSpace(input.PatientName),
		PatientAge:    input.PatientAge,
		Reason:        strings.TrimSpace(input.Reason),
		BloodGroup:    input.BloodGroup,
		Unit:          input.Unit,
		Channel:       models.RequestChannelQuick,
		Status:        models.StatusPending,
		ContactMobile: utils.NormalizePhoneNumber(input.ContactMobile, s.Config.SMSDefaultCountryCode),
	}

	if err := validateRequestCore(request); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(input.ContactMobile)) < 10 {
		return nil, errors.New("contact number must be at least 10 characters")
	}
	if request.ContactMobile == "" {
		return nil, errors.New("invalid contact number")
	}

	if err := s.DB.Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

// ApproveRequest approves a pending request, deducting stock atomically.
// When stock cannot cover the requested units the request is auto-rejected
// instead, and the result reports that.
func (s *RequestService) ApproveRequest(adminID, requestID uint) (*ReviewResult, error) {
	result := &ReviewResult{}
	var remaining uint

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var request models.BloodRequest
		if err := tx.Clauses(rowLock(tx)...).Preload("Donor").Preload("Patient").
			First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("request not found")
			}
			return err
		}
		if !request.IsPending() {
			return ErrRequestAlreadyProcessed
		}

		before, after, err := s.Stock.WithdrawTx(tx, request.BloodGroup, request.Unit)
		if err != nil {
			if errors.Is(err, ErrInsufficientStock) {
				return s.autoRejectTx(tx, adminID, &request, before, result)
			}
			return err
		}
		remaining = after

		now := time.Now()
		enqueued, err := s.SMS.EnqueueForRequestTx(tx, &request, now)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":             models.StatusApproved,
			"sms_notified_count": enqueued,
		}
		if enqueued > 0 {
			updates["sms_last_dispatch_at"] = now
		}
		if err := tx.Model(&request).Updates(updates).Error; err != nil {
			return err
		}

		if err := s.Audit.RecordTx(tx, &models.ActionAuditLog{
			AdminID:          adminID,
			Action:           models.AuditActionRequestApproved,
			TargetType:       "blood_request",
			TargetID:         request.ID,
			BloodGroup:       request.BloodGroup,
			UnitsDelta:       -int(request.Unit),
			StockUnitsBefore: &before,
			StockUnitsAfter:  &after,
			Detail:           fmt.Sprintf("approved %dml for %s", request.Unit, request.PatientName),
		}); err != nil {
			return err
		}

		if err := s.notifyRequesterTx(tx, &request, "Blood request approved",
			fmt.Sprintf("Your request for %dml of %s has been approved.", request.Unit, request.BloodGroup)); err != nil {
			return err
		}

		result.Request = &request
		result.SMSEnqueued = enqueued
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Alerts != nil && !result.AutoRejected {
		if err := s.Alerts.PublishRequestApproved(result.Request); err != nil {
			logger.Warning("MQTT alert for request %d failed: %v", requestID, err)
		}
		if remaining < uint(s.Config.LowStockThresholdMl) {
			if err := s.Alerts.PublishStockAlert(result.Request.BloodGroup, remaining); err != nil {
				logger.Warning("MQTT stock alert for %s failed: %v", result.Request.BloodGroup, err)
			}
		}
	}

	return result, nil
}

// autoRejectTx rejects a request that stock cannot cover, inside the caller's
// transaction
func (s *RequestService) autoRejectTx(tx *gorm.DB, adminID uint, request *models.BloodRequest, available uint, result *ReviewResult) error {
	if err := tx.Model(request).Update("status", models.StatusRejected).Error; err != nil {
		return err
	}

	if err := s.Audit.RecordTx(tx, &models.ActionAuditLog{
		AdminID:    adminID,
		Action:     models.AuditActionRequestRejected,
		TargetType: "blood_request",
		TargetID:   request.ID,
		BloodGroup: request.BloodGroup,
		Detail:     fmt.Sprintf("auto-rejected: need %dml, stock has %dml", request.Unit, available),
	}); err != nil {
		return err
	}

	if err := s.notifyRequesterTx(tx, request, "Blood request rejected",
		fmt.Sprintf("Your request for %dml of %s was rejected: not enough stock.", request.Unit, request.BloodGroup)); err != nil {
		return err
	}

	result.Request = request
	result.AutoRejected = true
	return nil
}

// RejectRequest rejects a pending request with an optional reason
func (s *RequestService) RejectRequest(adminID, requestID uint, reason string) (*models.BloodRequest, error) {
	var rejected *models.BloodRequest

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var request models.BloodRequest
		if err := tx.Clauses(rowLock(tx)...).First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("request not found")
			}
			return err
		}
		if !request.IsPending() {
			return ErrRequestAlreadyProcessed
		}

		if err := tx.Model(&request).Update("status", models.StatusRejected).Error; err != nil {
			return err
		}

		detail := "rejected by admin"
		if reason != "" {
			detail = "rejected: " + reason
		}
		if err := s.Audit.RecordTx(tx, &models.ActionAuditLog{
			AdminID:    adminID,
			Action:     models.AuditActionRequestRejected,
			TargetType: "blood_request",
			TargetID:   request.ID,
			BloodGroup: request.BloodGroup,
			Detail:     detail,
		}); err != nil {
			return err
		}

		body := fmt.Sprintf("Your request for %dml of %s was rejected.", request.Unit, request.BloodGroup)
		if reason != "" {
			body += " Reason: " + reason
		}
		if err := s.notifyRequesterTx(tx, &request, "Blood request rejected", body); err != nil {
			return err
		}

		rejected = &request
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rejected, nil
}

// GetRequestsForDonor lists a donor's own requests, newest first
func (s *RequestService) GetRequestsForDonor(donorID uint) ([]models.BloodRequest, error) {
	var requests []models.BloodRequest
	if err := s.DB.Where("donor_id = ?", donorID).Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// notifyRequesterTx stores an in-app notification for the request's owner.
// Quick requests have no account, so nothing is stored for them.
func (s *RequestService) notifyRequesterTx(tx *gorm.DB, request *models.BloodRequest, title, body string) error {
	switch {
	case request.DonorID != nil:
		return s.Notify.NotifyTx(tx, models.NotifyRecipientDonor, *request.DonorID, title, body, "blood_request", request.ID)
	case request.PatientID != nil:
		return s.Notify.NotifyTx(tx, models.NotifyRecipientPatient, *request.PatientID, title, body, "blood_request", request.ID)
	default:
		return nil
	}
}

// validateRequestCore applies the shared request field validation
func validateRequestCore(request *models.BloodRequest) error {
	if len(strings.TrimSpace(request.PatientName)) < 2 {
		return errors.New("patient name must be at least 2 characters")
	}
	if request.PatientAge < 1 || request.PatientAge > 120 {
		return errors.New("patient age must be between 1 and 120")
	}
	if len(strings.TrimSpace(request.Reason)) < 10 {
		return errors.New("reason must be at least 10 characters")
	}
	if !models.IsValidBloodGroup(request.BloodGroup) {
		return errors.New("invalid blood group")
	}
	if request.Unit < 100 || request.Unit > 500 {
		return errors.New("unit must be between 100 and 500 ml")
	}
	return nil
}
