package services

import (
	"errors"
	"fmt"
	"time"

	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/infrastructure/config"
	"bloodbridge-http-service/pkg/logger"
	"bloodbridge-http-service/utils"

	"gorm.io/gorm"
)

// InterfaceDonorService defines the donor service interface
type InterfaceDonorService interface {
	GetAllDonors(page, pageSize int, search, bloodGroup string) ([]models.Donor, int64, error)
	GetDonorByID(id uint) (*models.Donor, error)
	RegisterDonor(donor *models.Donor) error
	UpdateDonor(id uint, updates map[string]interface{}) (*models.Donor, error)
	DeleteDonor(id uint) error
	SetAvailability(id uint, available bool) (*models.Donor, error)
	UpdateMedicalProfile(id uint, updates map[string]interface{}) (*models.Donor, error)
	GetDonorDonations(donorID uint) ([]models.BloodDonate, error)
}

// DonorService provides donor account and profile management
type DonorService struct {
	DB       *gorm.DB
	Config   *config.Config
	Geocoder InterfaceGeocodingService
}

// NewDonorService creates a new donor service
func NewDonorService(db *gorm.DB, cfg *config.Config, geocoder InterfaceGeocodingService) InterfaceDonorService {
	return &DonorService{
		DB:       db,
		Config:   cfg,
		Geocoder: geocoder,
	}
}

// GetAllDonors lists donors with pagination, optional search and blood group
// filter
func (s *DonorService) GetAllDonors(page, pageSize int, search, bloodGroup string) ([]models.Donor, int64, error) {
	var donors []models.Donor
	var total int64

	query := s.DB.Model(&models.Donor{})

	if search != "" {
		query = query.Where("username LIKE ? OR first_name LIKE ? OR last_name LIKE ? OR mobile LIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%", "%"+search+"%")
	}
	if bloodGroup != "" {
		query = query.Where("blood_group = ?", bloodGroup)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Limit(pageSize).Offset(offset).Find(&donors).Error; err != nil {
		return nil, 0, err
	}

	return donors, total, nil
}

// GetDonorByID fetches one donor
func (s *DonorService) GetDonorByID(id uint) (*models.Donor, error) {
	var donor models.Donor
	if err := s.DB.First(&donor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("donor not found")
		}
		return nil, err
	}
	return &donor, nil
}

// RegisterDonor creates a donor account, normalizing the mobile number and
// filling coordinates from the address
func (s *DonorService) RegisterDonor(donor *models.Donor) error {
	if !models.IsValidBloodGroup(donor.BloodGroup) {
		return errors.New("invalid blood group")
	}

	var count int64
	if err := s.DB.Model(&models.Donor{}).Where("username = ?", donor.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("username already exists")
	}

	donor.Mobile = utils.NormalizePhoneNumber(donor.Mobile, s.Config.SMSDefaultCountryCode)
	if donor.Mobile == "" {
		return errors.New("invalid mobile number")
	}

	// New donors start available until they opt out
	donor.IsAvailable = true

	s.fillCoordinates(donor)

	return s.DB.Create(donor).Error
}

// UpdateDonor applies partial updates, re-geocoding when the address changed
func (s *DonorService) UpdateDonor(id uint, updates map[string]interface{}) (*models.Donor, error) {
	donor, err := s.GetDonorByID(id)
	if err != nil {
		return nil, err
	}

	if username, ok := updates["username"].(string); ok && username != donor.Username {
		var count int64
		if err := s.DB.Model(&models.Donor{}).Where("username = ? AND id != ?", username, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, errors.New("username already taken by another donor")
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

	addressChanged := false
	if address, ok := updates["address"].(string); ok && address != donor.Address {
		addressChanged = true
	}
	if zipcode, ok := updates["zipcode"].(string); ok && zipcode != donor.Zipcode {
		addressChanged = true
	}

	if err := s.DB.Model(donor).Updates(updates).Error; err != nil {
		return nil, err
	}

	donor, err = s.GetDonorByID(id)
	if err != nil {
		return nil, err
	}

	if addressChanged {
		s.fillCoordinates(donor)
		coordUpdates := map[string]interface{}{
			"latitude":          donor.Latitude,
			"longitude":         donor.Longitude,
			"location_verified": donor.LocationVerified,
		}
		if err := s.DB.Model(donor).Updates(coordUpdates).Error; err != nil {
			return nil, err
		}
	}

	return donor, nil
}

// DeleteDonor removes a donor account
func (s *DonorService) DeleteDonor(id uint) error {
	donor, err := s.GetDonorByID(id)
	if err != nil {
		return err
	}
	return s.DB.Delete(donor).Error
}

// SetAvailability flips a donor's availability flag
func (s *DonorService) SetAvailability(id uint, available bool) (*models.Donor, error) {
	donor, err := s.GetDonorByID(id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	donor.MarkAvailability(available, now)
	if err := s.DB.Model(donor).Updates(map[string]interface{}{
		"is_available":            available,
		"availability_updated_at": now,
	}).Error; err != nil {
		return nil, err
	}

	return donor, nil
}

// UpdateMedicalProfile updates only the whitelisted medical fields
func (s *DonorService) UpdateMedicalProfile(id uint, updates map[string]interface{}) (*models.Donor, error) {
	allowed := map[string]bool{
		"sex":                      true,
		"date_of_birth":            true,
		"weight_kg":                true,
		"hemoglobin_g_dl":          true,
		"blood_pressure_systolic":  true,
		"blood_pressure_diastolic": true,
		"has_chronic_disease":      true,
		"chronic_disease_details":  true,
		"on_medication":            true,
		"medication_details":       true,
		"smokes":                   true,
	}
	filtered := make(map[string]interface{})
	for key, value := range updates {
		if allowed[key] {
			filtered[key] = value
		}
	}
	if len(filtered) == 0 {
		return nil, errors.New("no medical fields to update")
	}

	donor, err := s.GetDonorByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.Model(donor).Updates(filtered).Error; err != nil {
		return nil, err
	}
	return s.GetDonorByID(id)
}

// GetDonorDonations lists a donor's donation history, newest first
func (s *DonorService) GetDonorDonations(donorID uint) ([]models.BloodDonate, error) {
	if _, err := s.GetDonorByID(donorID); err != nil {
		return nil, err
	}

	var donations []models.BloodDonate
	if err := s.DB.Where("donor_id = ?", donorID).Order("created_at DESC").Find(&donations).Error; err != nil {
		return nil, err
	}
	return donations, nil
}

// fillCoordinates resolves the donor's address when coordinates are absent or
// the address changed. Failures only log; registration still succeeds.
func (s *DonorService) fillCoordinates(donor *models.Donor) {
	lat, lon, verified, err := s.Geocoder.Geocode(donor.Address, donor.Zipcode)
	if err != nil {
		logger.Warning("geocoding donor %s failed: %v", donor.Username, err)
		return
	}
	if !verified && donor.Address == "" && donor.Zipcode == "" {
		// Nothing to anchor on; derive from the identity instead so the
		// point stays stable across updates.
		lat, lon = s.Geocoder.SyntheticCoordinates(fmt.Sprintf("donor|%s", donor.Username))
	}
	donor.Latitude = &lat
	donor.Longitude = &lon
	donor.LocationVerified = verified
}
