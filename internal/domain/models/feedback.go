package models

import "time"

// Feedback author kinds.
const (
	FeedbackAuthorDonor   = "donor"
	FeedbackAuthorPatient = "patient"
)

// Feedback is a rating and comment left by a donor or a patient. Exactly one
// of DonorID and PatientID is set, matching AuthorType.
type Feedback struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	AuthorType string `gorm:"type:varchar(10);not null" json:"author_type"`
	DonorID    *uint  `gorm:"index" json:"donor_id,omitempty"`
	PatientID  *uint  `gorm:"index" json:"patient_id,omitempty"`

	Rating  int    `gorm:"not null" json:"rating"`
	Comment string `gorm:"type:varchar(1000)" json:"comment"`

	CreatedAt time.Time `json:"created_at"`

	Donor   *Donor   `gorm:"foreignKey:DonorID" json:"donor,omitempty"`
	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}
