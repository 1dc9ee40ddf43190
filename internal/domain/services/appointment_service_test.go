package services

import (
	"testing"
	"time"

	"bloodbridge-http-service/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAppointmentTestService(t *testing.T, db *gorm.DB) InterfaceAppointmentService {
	t.Helper()
	cfg := newTestConfig()
	notify := NewNotificationService(db, cfg)
	sms := NewSMSService(db, cfg)
	return NewAppointmentService(db, cfg, notify, sms)
}

func createTestSlot(t *testing.T, svc InterfaceAppointmentService, capacity int) *models.DonationAppointmentSlot {
	t.Helper()
	start := time.Now().Add(48 * time.Hour)
	slot, err := svc.CreateSlot(start, start.Add(3*time.Hour), capacity, "Central Blood Bank")
	require.NoError(t, err)
	return slot
}

func TestCreateSlotValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newAppointmentTestService(t, db)
	future := time.Now().Add(24 * time.Hour)

	_, err := svc.CreateSlot(future, future.Add(-time.Hour), 5, "x")
	require.Error(t, err)

	_, err = svc.CreateSlot(time.Now().Add(-time.Hour), future, 5, "x")
	require.Error(t, err)

	_, err = svc.CreateSlot(future, future.Add(time.Hour), 0, "x")
	require.Error(t, err)

	slot, err := svc.CreateSlot(future, future.Add(time.Hour), 5, "Hall B")
	require.NoError(t, err)
	assert.Equal(t, "Hall B", slot.Location)
}

func TestBookAppointmentCapacityAndDuplicates(t *testing.T) {
	db := newTestDB(t)
	svc := newAppointmentTestService(t, db)
	slot := createTestSlot(t, svc, 1)

	first := createTestDonor(t, db, "don_book_1")
	second := createTestDonor(t, db, "don_book_2")

	appointment, err := svc.BookAppointment(first.ID, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentBooked, appointment.Status)
	require.NotNil(t, appointment.ReminderAt)

	// Same donor cannot double-book
	_, err = svc.BookAppointment(first.ID, slot.ID)
	require.Error(t, err)
	assert.Equal(t, "donor already booked this slot", err.Error())

	// Capacity of one is now exhausted
	_, err = svc.BookAppointment(second.ID, slot.ID)
	require.Error(t, err)
	assert.Equal(t, "slot is full", err.Error())

	// Cancelling frees the seat
	require.NoError(t, svc.CancelAppointment(first.ID, appointment.ID))
	_, err = svc.BookAppointment(second.ID, slot.ID)
	require.NoError(t, err)
}

func TestBookAppointmentReportsDuplicateOverFull(t *testing.T) {
	db := newTestDB(t)
	svc := newAppointmentTestService(t, db)
	slot := createTestSlot(t, svc, 1)
	donor := createTestDonor(t, db, "don_rebook")

	_, err := svc.BookAppointment(donor.ID, slot.ID)
	require.NoError(t, err)

	// The rebooking donor filled the slot themselves; they should hear
	// about their existing booking, not the capacity
	_, err = svc.BookAppointment(donor.ID, slot.ID)
	require.Error(t, err)
	assert.Equal(t, "donor already booked this slot", err.Error())
}

func TestCancelAppointmentOnlyOwn(t *testing.T) {
	db := newTestDB(t)
	svc := newAppointmentTestService(t, db)
	slot := createTestSlot(t, svc, 3)

	owner := createTestDonor(t, db, "don_owner")
	other := createTestDonor(t, db, "don_other")

	appointment, err := svc.BookAppointment(owner.ID, slot.ID)
	require.NoError(t, err)

	err = svc.CancelAppointment(other.ID, appointment.ID)
	require.Error(t, err)

	require.NoError(t, svc.CancelAppointment(owner.ID, appointment.ID))
	// Already cancelled
	require.Error(t, svc.CancelAppointment(owner.ID, appointment.ID))
}

func TestDeleteSlotBlockedByActiveBookings(t *testing.T) {
	db := newTestDB(t)
	svc := newAppointmentTestService(t, db)
	slot := createTestSlot(t, svc, 2)
	donor := createTestDonor(t, db, "don_del")

	appointment, err := svc.BookAppointment(donor.ID, slot.ID)
	require.NoError(t, err)

	err = svc.DeleteSlot(slot.ID)
	require.Error(t, err)
	assert.Equal(t, "slot still has active bookings", err.Error())

	require.NoError(t, svc.CancelAppointment(donor.ID, appointment.ID))
	require.NoError(t, svc.DeleteSlot(slot.ID))
	require.Error(t, svc.DeleteSlot(slot.ID))
}

func TestSendDueRemindersMarksAndQueues(t *testing.T) {
	db := newTestDB(t)
	svc := newAppointmentTestService(t, db)
	slot := createTestSlot(t, svc, 2)
	donor := createTestDonor(t, db, "don_remind")

	appointment, err := svc.BookAppointment(donor.ID, slot.ID)
	require.NoError(t, err)

	// Not due yet: the slot starts in 48h, the reminder fires 24h before
	sent, err := svc.SendDueReminders(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	sent, err = svc.SendDueReminders(time.Now().Add(30 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	var refreshed models.DonationAppointment
	require.NoError(t, db.First(&refreshed, appointment.ID).Error)
	assert.NotNil(t, refreshed.RemindedAt)

	// Reminder SMS lands in the outbox
	var outbox int64
	require.NoError(t, db.Model(&models.SMSOutbox{}).Count(&outbox).Error)
	assert.Equal(t, int64(1), outbox)

	// Second sweep finds nothing new
	sent, err = svc.SendDueReminders(time.Now().Add(31 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}
