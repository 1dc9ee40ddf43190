package services

import (
	"errors"
	"fmt"
	"time"

	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/infrastructure/config"
	"bloodbridge-http-service/pkg/logger"

	"gorm.io/gorm"
)

// reminderLeadTime is how long before the slot start the reminder fires.
const reminderLeadTime = 24 * time.Hour

// InterfaceAppointmentService defines the donation appointment service
// interface
type InterfaceAppointmentService interface {
	CreateSlot(startsAt, endsAt time.Time, capacity int, location string) (*models.DonationAppointmentSlot, error)
	GetUpcomingSlots(page, pageSize int) ([]models.DonationAppointmentSlot, int64, error)
	DeleteSlot(id uint) error
	BookAppointment(donorID, slotID uint) (*models.DonationAppointment, error)
	CancelAppointment(donorID, appointmentID uint) error
	GetDonorAppointments(donorID uint) ([]models.DonationAppointment, error)
	SendDueReminders(now time.Time) (int, error)
}

// AppointmentService manages donation slots and donor bookings
type AppointmentService struct {
	DB     *gorm.DB
	Config *config.Config
	Notify InterfaceNotificationService
	SMS    InterfaceSMSService
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(db *gorm.DB, cfg *config.Config, notify InterfaceNotificationService, sms InterfaceSMSService) InterfaceAppointmentService {
	return &AppointmentService{
		DB:     db,
		Config: cfg,
		Notify: notify,
		SMS:    sms,
	}
}

// CreateSlot publishes a new bookable slot
func (s *AppointmentService) CreateSlot(startsAt, endsAt time.Time, capacity int, location string) (*models.DonationAppointmentSlot, error) {
	if !endsAt.After(startsAt) {
		return nil, errors.New("slot must end after it starts")
	}
	if startsAt.Before(time.Now()) {
		return nil, errors.New("slot must start in the future")
	}
	if capacity < 1 {
		return nil, errors.New("capacity must be at least 1")
	}

	slot := &models.DonationAppointmentSlot{
		StartsAt: startsAt,
		EndsAt:   endsAt,
		Capacity: capacity,
		Location: location,
	}
	if err := s.DB.Create(slot).Error; err != nil {
		return nil, err
	}
	return slot, nil
}

// GetUpcomingSlots lists future slots with their bookings
func (s *AppointmentService) GetUpcomingSlots(page, pageSize int) ([]models.DonationAppointmentSlot, int64, error) {
	var slots []models.DonationAppointmentSlot
	var total int64

	query := s.DB.Model(&models.DonationAppointmentSlot{}).Where("starts_at > ?", time.Now())
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("starts_at ASC").Limit(pageSize).Offset(offset).
		Preload("Appointments").Find(&slots).Error; err != nil {
		return nil, 0, err
	}

	return slots, total, nil
}

// DeleteSlot removes a slot that has no active bookings
func (s *AppointmentService) DeleteSlot(id uint) error {
	var count int64
	if err := s.DB.Model(&models.DonationAppointment{}).
		Where("slot_id = ? AND status = ?", id, models.AppointmentBooked).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("slot still has active bookings")
	}

	result := s.DB.Delete(&models.DonationAppointmentSlot{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("slot not found")
	}
	return nil
}

// BookAppointment books a donor into a slot, enforcing capacity and one
// active booking per donor per slot
func (s *AppointmentService) BookAppointment(donorID, slotID uint) (*models.DonationAppointment, error) {
	var appointment *models.DonationAppointment

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var slot models.DonationAppointmentSlot
		if err := tx.Clauses(rowLock(tx)...).First(&slot, slotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("slot not found")
			}
			return err
		}
		if slot.StartsAt.Before(time.Now()) {
			return errors.New("slot already started")
		}

		// Duplicate check first, so a rebooking donor hears about their
		// existing booking even when the slot is full
		var existing int64
		if err := tx.Model(&models.DonationAppointment{}).
			Where("slot_id = ? AND donor_id = ? AND status = ?", slotID, donorID, models.AppointmentBooked).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return errors.New("donor already booked this slot")
		}

		var booked int64
		if err := tx.Model(&models.DonationAppointment{}).
			Where("slot_id = ? AND status = ?", slotID, models.AppointmentBooked).
			Count(&booked).Error; err != nil {
			return err
		}
		if booked >= int64(slot.Capacity) {
			return errors.New("slot is full")
		}

		reminderAt := slot.StartsAt.Add(-reminderLeadTime)
		appointment = &models.DonationAppointment{
			SlotID:     slotID,
			DonorID:    donorID,
			Status:     models.AppointmentBooked,
			ReminderAt: &reminderAt,
		}
		if err := tx.Create(appointment).Error; err != nil {
			return err
		}

		return s.Notify.NotifyTx(tx, models.NotifyRecipientDonor, donorID,
			"Appointment booked",
			fmt.Sprintf("Your donation appointment on %s at %s is confirmed.",
				slot.StartsAt.Format("2006-01-02 15:04"), slot.Location),
			"appointment", appointment.ID)
	})
	if err != nil {
		return nil, err
	}

	return appointment, nil
}

// CancelAppointment cancels a donor's own booking
func (s *AppointmentService) CancelAppointment(donorID, appointmentID uint) error {
	result := s.DB.Model(&models.DonationAppointment{}).
		Where("id = ? AND donor_id = ? AND status = ?", appointmentID, donorID, models.AppointmentBooked).
		Update("status", models.AppointmentCancelled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("active appointment not found")
	}
	return nil
}

// GetDonorAppointments lists a donor's bookings with their slots, soonest
// first
func (s *AppointmentService) GetDonorAppointments(donorID uint) ([]models.DonationAppointment, error) {
	var appointments []models.DonationAppointment
	if err := s.DB.Where("donor_id = ?", donorID).
		Preload("Slot").Order("created_at DESC").Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

// SendDueReminders delivers reminders whose time has come and marks them
// sent. Called by the cron scheduler.
func (s *AppointmentService) SendDueReminders(now time.Time) (int, error) {
	var due []models.DonationAppointment
	if err := s.DB.Where("status = ? AND reminder_at IS NOT NULL AND reminder_at <= ? AND reminded_at IS NULL",
		models.AppointmentBooked, now).
		Preload("Slot").Preload("Donor").Find(&due).Error; err != nil {
		return 0, err
	}

	sent := 0
	for i := range due {
		appointment := &due[i]
		if appointment.Slot == nil || appointment.Donor == nil {
			continue
		}

		body := fmt.Sprintf("Reminder: your blood donation appointment is on %s at %s.",
			appointment.Slot.StartsAt.Format("2006-01-02 15:04"), appointment.Slot.Location)

		if err := s.Notify.Notify(models.NotifyRecipientDonor, appointment.DonorID,
			"Donation reminder", body, "appointment", appointment.ID); err != nil {
			logger.Warning("reminder notification for appointment %d failed: %v", appointment.ID, err)
			continue
		}
		if appointment.Donor.Mobile != "" {
			if err := s.SMS.Enqueue(appointment.Donor.Mobile, body, &appointment.DonorID, nil); err != nil {
				logger.Warning("reminder SMS for appointment %d failed: %v", appointment.ID, err)
			}
		}

		if err := s.DB.Model(appointment).Update("reminded_at", now).Error; err != nil {
			return sent, err
		}
		sent++
	}

	return sent, nil
}
