package services

import (
	"time"

	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/infrastructure/config"
	"bloodbridge-http-service/pkg/logger"

	"gorm.io/gorm"
)

// InterfaceBadgeService defines the donor badge service interface
type InterfaceBadgeService interface {
	EvaluateDonor(donorID uint) (awarded []models.VerificationBadge, err error)
	GetDonorBadges(donorID uint) ([]models.VerificationBadge, error)
}

// BadgeService awards milestone badges from approved donation counts
type BadgeService struct {
	DB     *gorm.DB
	Config *config.Config
	Notify InterfaceNotificationService
}

// NewBadgeService creates a new badge service
func NewBadgeService(db *gorm.DB, cfg *config.Config, notify InterfaceNotificationService) InterfaceBadgeService {
	return &BadgeService{
		DB:     db,
		Config: cfg,
		Notify: notify,
	}
}

// EvaluateDonor awards any badge levels the donor has newly earned. Already
// held levels are skipped, so the call is idempotent.
func (s *BadgeService) EvaluateDonor(donorID uint) ([]models.VerificationBadge, error) {
	var approvedCount int64
	if err := s.DB.Model(&models.BloodDonate{}).
		Where("donor_id = ? AND status = ?", donorID, models.StatusApproved).
		Count(&approvedCount).Error; err != nil {
		return nil, err
	}

	earned := earnedLevels(int(approvedCount))
	if len(earned) == 0 {
		return nil, nil
	}

	var held []models.VerificationBadge
	if err := s.DB.Where("donor_id = ?", donorID).Find(&held).Error; err != nil {
		return nil, err
	}
	heldLevels := make(map[string]bool, len(held))
	for _, badge := range held {
		heldLevels[badge.Level] = true
	}

	var awarded []models.VerificationBadge
	for _, level := range earned {
		if heldLevels[level] {
			continue
		}
		badge := models.VerificationBadge{
			DonorID:   donorID,
			Level:     level,
			AwardedAt: time.Now(),
		}
		if err := s.DB.Create(&badge).Error; err != nil {
			return awarded, err
		}
		awarded = append(awarded, badge)

		if err := s.Notify.Notify(models.NotifyRecipientDonor, donorID,
			"New badge earned", "You earned the "+level+" donor badge. Thank you for donating!",
			"badge", badge.ID); err != nil {
			logger.Warning("badge notification for donor %d failed: %v", donorID, err)
		}
	}

	return awarded, nil
}

// GetDonorBadges lists a donor's badges, newest first
func (s *BadgeService) GetDonorBadges(donorID uint) ([]models.VerificationBadge, error) {
	var badges []models.VerificationBadge
	if err := s.DB.Where("donor_id = ?", donorID).Order("awarded_at DESC").Find(&badges).Error; err != nil {
		return nil, err
	}
	return badges, nil
}

// earnedLevels returns every level covered by the donation count, lowest
// first
func earnedLevels(approvedDonations int) []string {
	var levels []string
	if approvedDonations >= models.BadgeBronzeThreshold {
		levels = append(levels, models.BadgeBronze)
	}
	if approvedDonations >= models.BadgeSilverThreshold {
		levels = append(levels, models.BadgeSilver)
	}
	if approvedDonations >= models.BadgeGoldThreshold {
		levels = append(levels, models.BadgeGold)
	}
	return levels
}
