package models

import "time"

// Appointment statuses.
const (
	AppointmentBooked    = "Booked"
	AppointmentCancelled = "Cancelled"
	AppointmentCompleted = "Completed"
)

// DonationAppointmentSlot is an admin-published time window donors can book
// into, with a fixed capacity.
type DonationAppointmentSlot struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	StartsAt time.Time `gorm:"not null;index" json:"starts_at"`
	EndsAt   time.Time `gorm:"not null" json:"ends_at"`
	Capacity int       `gorm:"default:10" json:"capacity"`
	Location string    `gorm:"type:varchar(255)" json:"location"`

	CreatedAt time.Time `json:"created_at"`

	Appointments []DonationAppointment `gorm:"foreignKey:SlotID" json:"appointments,omitempty"`
}

// BookedCount returns how many non-cancelled appointments occupy the slot.
func (s *DonationAppointmentSlot) BookedCount() int {
	n := 0
	for _, a := range s.Appointments {
		if a.Status != AppointmentCancelled {
			n++
		}
	}
	return n
}

// DonationAppointment is a donor booking for one slot. A donor holds at most
// one active booking per slot.
type DonationAppointment struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	SlotID  uint `gorm:"not null;index" json:"slot_id"`
	DonorID uint `gorm:"not null;index" json:"donor_id"`

	Status     string     `gorm:"type:varchar(12);default:'Booked'" json:"status"`
	ReminderAt *time.Time `json:"reminder_at,omitempty"`
	RemindedAt *time.Time `json:"reminded_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Slot  *DonationAppointmentSlot `gorm:"foreignKey:SlotID" json:"slot,omitempty"`
	Donor *Donor                   `gorm:"foreignKey:DonorID" json:"donor,omitempty"`
}
