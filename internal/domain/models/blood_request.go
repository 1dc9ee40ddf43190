package models

import "time"

// Request channels. Quick requests are submitted without an account.
const (
	RequestChannelDonor   = "donor"
	RequestChannelPatient = "patient"
	RequestChannelQuick   = "quick"
)

// BloodRequest is a request for blood units, raised by a donor, a patient, or
// anonymously through the quick-request form. At most one of DonorID and
// PatientID is set; quick requests have neither.
type BloodRequest struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	DonorID   *uint `gorm:"index" json:"donor_id,omitempty"`
	PatientID *uint `gorm:"index" json:"patient_id,omitempty"`

	PatientName string `gorm:"type:varchar(100);not null" json:"patient_name"`
	PatientAge  int    `gorm:"not null" json:"patient_age"`
	Reason      string `gorm:"type:varchar(500);not null" json:"reason"`
	BloodGroup  string `gorm:"type:varchar(10);not null;index" json:"blood_group"`
	Unit        uint   `gorm:"not null" json:"unit"`
	Status      string `gorm:"type:varchar(20);default:'Pending';index" json:"status"`

	// Quick-request contact details; empty for account-backed requests.
	ContactMobile string `gorm:"type:varchar(20)" json:"contact_mobile,omitempty"`
	Channel       string `gorm:"type:varchar(10);default:'patient'" json:"channel"`

	// SMS dispatch diagnostics populated when donors were alerted.
	SMSNotifiedCount  int        `gorm:"default:0" json:"sms_notified_count"`
	SMSLastDispatchAt *time.Time `json:"sms_last_dispatch_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Donor   *Donor   `gorm:"foreignKey:DonorID" json:"donor,omitempty"`
	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

// IsPending reports whether the request still awaits review.
func (r *BloodRequest) IsPending() bool {
	return r.Status == StatusPending
}

// RequesterKind returns which channel the request came through.
func (r *BloodRequest) RequesterKind() string {
	switch {
	case r.DonorID != nil:
		return RequestChannelDonor
	case r.PatientID != nil:
		return RequestChannelPatient
	default:
		return RequestChannelQuick
	}
}
