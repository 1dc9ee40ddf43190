package services

import (
	"errors"
	"strings"

	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/infrastructure/config"

	"gorm.io/gorm"
)

// InterfaceFeedbackService defines the feedback service interface
type InterfaceFeedbackService interface {
	CreateDonorFeedback(donorID uint, rating int, comment string) (*models.Feedback, error)
	CreatePatientFeedback(patientID uint, rating int, comment string) (*models.Feedback, error)
	GetAllFeedback(page, pageSize int, authorType string) ([]models.Feedback, int64, error)
	DeleteFeedback(id uint) error
}

// FeedbackService stores ratings and comments from donors and patients
type FeedbackService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(db *gorm.DB, cfg *config.Config) InterfaceFeedbackService {
	return &FeedbackService{
		DB:     db,
		Config: cfg,
	}
}

// CreateDonorFeedback stores feedback authored by a donor
func (s *FeedbackService) CreateDonorFeedback(donorID uint, rating int, comment string) (*models.Feedback, error) {
	if err := validateFeedback(rating, comment); err != nil {
		return nil, err
	}

	var donor models.Donor
	if err := s.DB.First(&donor, donorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("donor not found")
		}
		return nil, err
	}

	feedback := &models.Feedback{
		AuthorType: models.FeedbackAuthorDonor,
		DonorID:    &donorID,
		Rating:     rating,
		Comment:    strings.TrimSpace(comment),
	}
	if err := s.DB.Create(feedback).Error; err != nil {
		return nil, err
	}
	return feedback, nil
}

// CreatePatientFeedback stores feedback authored by a patient
func (s *FeedbackService) CreatePatientFeedback(patientID uint, rating int, comment string) (*models.Feedback, error) {
	if err := validateFeedback(rating, comment); err != nil {
		return nil, err
	}

	var patient models.Patient
	if err := s.DB.First(&patient, patientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("patient not found")
		}
		return nil, err
	}

	feedback := &models.Feedback{
		AuthorType: models.FeedbackAuthorPatient,
		PatientID:  &patientID,
		Rating:     rating,
		Comment:    strings.TrimSpace(comment),
	}
	if err := s.DB.Create(feedback).Error; err != nil {
		return nil, err
	}
	return feedback, nil
}

// GetAllFeedback lists feedback with pagination and optional author filter
func (s *FeedbackService) GetAllFeedback(page, pageSize int, authorType string) ([]models.Feedback, int64, error) {
	var feedback []models.Feedback
	var total int64

	query := s.DB.Model(&models.Feedback{})
	if authorType != "" {
		query = query.Where("author_type = ?", authorType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Limit(pageSize).Offset(offset).
		Preload("Donor").Preload("Patient").Find(&feedback).Error; err != nil {
		return nil, 0, err
	}

	return feedback, total, nil
}

// DeleteFeedback removes one feedback entry
func (s *FeedbackService) DeleteFeedback(id uint) error {
	result := s.DB.Delete(&models.Feedback{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("feedback not found")
	}
	return nil
}

func validateFeedback(rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return errors.New("rating must be between 1 and 5")
	}
	if len(comment) > 1000 {
		return errors.New("comment must be at most 1000 characters")
	}
	return nil
}
