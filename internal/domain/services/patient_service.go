package services

import (
	"errors"

	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/infrastructure/config"
	"bloodbridge-http-service/utils"

	"gorm.io/gorm"
)

// InterfacePatientService defines the patient service interface
type InterfacePatientService interface {
	GetAllPatients(page, pageSize int, search string) ([]models.Patient, int64, error)
	GetPatientByID(id uint) (*models.Patient, error)
	RegisterPatient(patient *models.Patient) error
	UpdatePatient(id uint, updates map[string]interface{}) (*models.Patient, error)
	DeletePatient(id uint) error
	GetPatientRequests(patientID uint) ([]models.BloodRequest, error)
}

// PatientService provides patient account management
type PatientService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewPatientService creates a new patient service
func NewPatientService(db *gorm.DB, cfg *config.Config) InterfacePatientService {
	return &PatientService{
		DB:     db,
		Config: cfg,
	}
}

// GetAllPatients lists patients with pagination and optional search
func (s *PatientService) GetAllPatients(page, pageSize int, search string) ([]models.Patient, int64, error) {
	var patients []models.Patient
	var total int64

	query := s.DB.Model(&models.Patient{})

	if search != "" {
		query = query.Where("username LIKE ? OR first_name LIKE ? OR last_name LIKE ? OR disease LIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Limit(pageSize).Offset(offset).Find(&patients).Error; err != nil {
		return nil, 0, err
	}

	return patients, total, nil
}

// GetPatientByID fetches one patient
func (s *PatientService) GetPatientByID(id uint) (*models.Patient, error) {
	var patient models.Patient
	if err := s.DB.First(&patient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("patient not found")
		}
		return nil, err
	}
	return &patient, nil
}

// RegisterPatient creates a patient account
func (s *PatientService) RegisterPatient(patient *models.Patient) error {
	if !models.IsValidBloodGroup(patient.BloodGroup) {
		return errors.New("invalid blood group")
	}
	if patient.Age < 1 || patient.Age > 120 {
		return errors.New("age must be between 1 and 120")
	}

	var count int64
	if err := s.DB.Model(&models.Patient{}).Where("username = ?", patient.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("username already exists")
	}

	patient.Mobile = utils.NormalizePhoneNumber(patient.Mobile, s.Config.SMSDefaultCountryCode)
	if patient.Mobile == "" {
		return errors.New("invalid mobile number")
	}

	return s.DB.Create(patient).Error
}

// UpdatePatient applies partial updates to a patient account
func (s *PatientService) UpdatePatient(id uint, updates map[string]interface{}) (*models.Patient, error) {
	patient, err := s.GetPatientByID(id)
	if err != nil {
		return nil, err
	}

	if username, ok := updates["username"].(string); ok && username != patient.Username {
		var count int64
		if err := s.DB.Model(&models.Patient{}).Where("username = ? AND id != ?", username, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, errors.New("username already taken by another patient")
		}
	}

	if group, ok := updates["blood_group"].(string); ok && !models.IsValidBloodGroup(group) {
		return nil, errors.New("invalid blood group")
	}

	if mobile, ok := updates["mobile"].(string); ok {
		normalized := utils.NormalizePhoneNumber(mobile, s.Config.SMSDefaultCountryCode)
		if normalized == "" {
			return nil, errors.New("invalid mobile number")
		}
		updates["mobile"] = normalized
	}

	if password, ok := updates["password"].(string); ok {
		hashedPassword, err := utils.HashPassword(password)
		if err != nil {
			return nil, errors.New("failed to hash password")
		}
		updates["password"] = hashedPassword
	}

	if err := s.DB.Model(patient).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.GetPatientByID(id)
}

// DeletePatient removes a patient account
func (s *PatientService) DeletePatient(id uint) error {
	patient, err := s.GetPatientByID(id)
	if err != nil {
		return err
	}
	return s.DB.Delete(patient).Error
}

// GetPatientRequests lists a patient's blood requests, newest first
func (s *PatientService) GetPatientRequests(patientID uint) ([]models.BloodRequest, error) {
	if _, err := s.GetPatientByID(patientID); err != nil {
		return nil, err
	}

	var requests []models.BloodRequest
	if err := s.DB.Where("patient_id = ?", patientID).Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}
