package services

import (
	"errors"
	"fmt"
	"time"

	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/infrastructure/config"

	"gorm.io/gorm"
)

// ErrDonationAlreadyProcessed is returned when a decision targets a donation
// that already left the Pending state.
var ErrDonationAlreadyProcessed = errors.New("donation already processed")

// InterfaceDonationService defines the blood donation service interface
type InterfaceDonationService interface {
	GetAllDonations(page, pageSize int, status, bloodGroup string) ([]models.BloodDonate, int64, error)
	GetDonationByID(id uint) (*models.BloodDonate, error)
	CreateDonation(donorID uint, donation *models.BloodDonate) error
	ApproveDonation(adminID, donationID uint) (*models.BloodDonate, error)
	RejectDonation(adminID, donationID uint, reason string) (*models.BloodDonate, error)
}

// DonationService manages donation offers and their review lifecycle
type DonationService struct {
	DB     *gorm.DB
	Config *config.Config
	Stock  InterfaceStockService
	Audit  InterfaceAuditService
	Notify InterfaceNotificationService
	Badges InterfaceBadgeService
}

// NewDonationService creates a new donation service
func NewDonationService(db *gorm.DB, cfg *config.Config, stock InterfaceStockService, audit InterfaceAuditService, notify InterfaceNotificationService, badges InterfaceBadgeService) InterfaceDonationService {
	return &DonationService{
		DB:     db,
		Config: cfg,
		Stock:  stock,
		Audit:  audit,
		Notify: notify,
		Badges: badges,
	}
}

// GetAllDonations lists donations with pagination and optional filters
func (s *DonationService) GetAllDonations(page, pageSize int, status, bloodGroup string) ([]models.BloodDonate, int64, error) {
	var donations []models.BloodDonate
	var total int64

	query := s.DB.Model(&models.BloodDonate{})
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
		Preload("Donor").Find(&donations).Error; err != nil {
		return nil, 0, err
	}

	return donations, total, nil
}

// GetDonationByID fetches one donation with its donor
func (s *DonationService) GetDonationByID(id uint) (*models.BloodDonate, error) {
	var donation models.BloodDonate
	if err := s.DB.Preload("Donor").First(&donation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("donation not found")
		}
		return nil, err
	}
	return &donation, nil
}

// CreateDonation stores a donation offer from a donor
func (s *DonationService) CreateDonation(donorID uint, donation *models.BloodDonate) error {
	if !models.IsValidBloodGroup(donation.BloodGroup) {
		return errors.New("invalid blood group")
	}
	if donation.Unit < 100 || donation.Unit > 500 {
		return errors.New("unit must be between 100 and 500 ml")
	}
	if donation.Age < 18 || donation.Age > 65 {
		return errors.New("donor age must be between 18 and 65")
	}

	var donor models.Donor
	if err := s.DB.First(&donor, donorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("donor not found")
		}
		return err
	}

	if next := donor.NextEligibleDonationDate(s.Config.DonationRecoveryDays); next != nil && next.After(time.Now()) {
		return fmt.Errorf("donor is in the recovery window until %s", next.Format("2006-01-02"))
	}

	donation.DonorID = donorID
	donation.Status = models.StatusPending
	return s.DB.Create(donation).Error
}

// ApproveDonation approves a pending donation, adds the units to stock, and
// stamps the donor's last donation date. Badges are evaluated after commit.
func (s *DonationService) ApproveDonation(adminID, donationID uint) (*models.BloodDonate, error) {
	var approved *models.BloodDonate
	var donorID uint

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var donation models.BloodDonate
		if err := tx.Clauses(rowLock(tx)...).Preload("Donor").First(&donation, donationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("donation not found")
			}
			return err
		}
		if !donation.IsPending() {
			return ErrDonationAlreadyProcessed
		}

		before, after, err := s.Stock.DepositTx(tx, donation.BloodGroup, donation.Unit)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&donation).Update("status", models.StatusApproved).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Donor{}).Where("id = ?", donation.DonorID).
			Update("last_donated_at", now).Error; err != nil {
			return err
		}

		if err := s.Audit.RecordTx(tx, &models.ActionAuditLog{
			AdminID:          adminID,
			Action:           models.AuditActionDonationApproved,
			TargetType:       "blood_donate",
			TargetID:         donation.ID,
			BloodGroup:       donation.BloodGroup,
			UnitsDelta:       int(donation.Unit),
			StockUnitsBefore: &before,
			StockUnitsAfter:  &after,
			Detail:           fmt.Sprintf("approved %dml donation from donor %d", donation.Unit, donation.DonorID),
		}); err != nil {
			return err
		}

		if err := s.Notify.NotifyTx(tx, models.NotifyRecipientDonor, donation.DonorID,
			"Donation approved",
			fmt.Sprintf("Thank you! Your %dml donation of %s was approved.", donation.Unit, donation.BloodGroup),
			"blood_donate", donation.ID); err != nil {
			return err
		}

		approved = &donation
		donorID = donation.DonorID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Badges != nil {
		if _, err := s.Badges.EvaluateDonor(donorID); err != nil {
			return approved, err
		}
	}

	return approved, nil
}

// RejectDonation rejects a pending donation with an optional reason
func (s *DonationService) RejectDonation(adminID, donationID uint, reason string) (*models.BloodDonate, error) {
	var rejected *models.BloodDonate

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var donation models.BloodDonate
		if err := tx.Clauses(rowLock(tx)...).First(&donation, donationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("donation not found")
			}
			return err
		}
		if !donation.IsPending() {
			return ErrDonationAlreadyProcessed
		}

		if err := tx.Model(&donation).Update("status", models.StatusRejected).Error; err != nil {
			return err
		}

		detail := "rejected by admin"
		if reason != "" {
			detail = "rejected: " + reason
		}
		if err := s.Audit.RecordTx(tx, &models.ActionAuditLog{
			AdminID:    adminID,
			Action:     models.AuditActionDonationRejected,
			TargetType: "blood_donate",
			TargetID:   donation.ID,
			BloodGroup: donation.BloodGroup,
			Detail:     detail,
		}); err != nil {
			return err
		}

		body := fmt.Sprintf("Your %dml donation of %s was rejected.", donation.Unit, donation.BloodGroup)
		if reason != "" {
			body += " Reason: " + reason
		}
		if err := s.Notify.NotifyTx(tx, models.NotifyRecipientDonor, donation.DonorID,
			"Donation rejected", body, "blood_donate", donation.ID); err != nil {
			return err
		}

		rejected = &donation
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rejected, nil
}
