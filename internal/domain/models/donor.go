package models

import (
	"time"

	"gorm.io/gorm"

	"bloodbridge-http-service/utils"
)

// Donor sex choices. "U" means the donor preferred not to say.
const (
	SexMale    = "M"
	SexFemale  = "F"
	SexOther   = "O"
	SexUnknown = "U"
)

// Donor represents a registered blood donor with the medical profile used by
// the recommender.
type Donor struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Username  string `gorm:"type:varchar(50);not null;unique" json:"username"`
	Password  string `gorm:"type:varchar(100);not null" json:"-"`
	FirstName string `gorm:"type:varchar(50);not null" json:"first_name"`
	LastName  string `gorm:"type:varchar(50)" json:"last_name"`

	BloodGroup string `gorm:"type:varchar(10);not null;index" json:"blood_group"`
	Address    string `gorm:"type:varchar(255)" json:"address"`
	Mobile     string `gorm:"type:varchar(20);not null" json:"mobile"`
	Zipcode    string `gorm:"type:varchar(12)" json:"zipcode"`

	// Coordinates are filled from the address by the geocoder when absent.
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	LocationVerified bool     `gorm:"default:false" json:"location_verified"`

	// No column default: a plain bool's false zero value would be dropped
	// from INSERTs and silently replaced by the default. Registration sets
	// the initial value explicitly.
	IsAvailable           bool       `json:"is_available"`
	AvailabilityUpdatedAt *time.Time `json:"availability_updated_at,omitempty"`
	LastNotifiedAt        *time.Time `json:"last_notified_at,omitempty"`

	// Medical profile (all optional; the recommender penalizes gaps).
	Sex                    string     `gorm:"type:varchar(1);default:'U'" json:"sex"`
	DateOfBirth            *time.Time `json:"date_of_birth,omitempty"`
	WeightKg               *int       `json:"weight_kg,omitempty"`
	HemoglobinGdl          *float64   `json:"hemoglobin_g_dl,omitempty"`
	BloodPressureSystolic  *int       `json:"blood_pressure_systolic,omitempty"`
	BloodPressureDiastolic *int       `json:"blood_pressure_diastolic,omitempty"`
	HasChronicDisease      bool       `gorm:"default:false" json:"has_chronic_disease"`
	ChronicDiseaseDetails  string     `gorm:"type:varchar(255)" json:"chronic_disease_details"`
	OnMedication           bool       `gorm:"default:false" json:"on_medication"`
	MedicationDetails      string     `gorm:"type:varchar(255)" json:"medication_details"`
	Smokes                 bool       `gorm:"default:false" json:"smokes"`
	LastDonatedAt          *time.Time `json:"last_donated_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Donations []BloodDonate `gorm:"foreignKey:DonorID" json:"donations,omitempty"`
}

// GetName returns the donor's display name.
func (d *Donor) GetName() string {
	if d.LastName == "" {
		return d.FirstName
	}
	return d.FirstName + " " + d.LastName
}

// NextEligibleDonationDate returns the first date the donor may donate again,
// or nil when the donor has never donated.
func (d *Donor) NextEligibleDonationDate(recoveryDays int) *time.Time {
	if d.LastDonatedAt == nil {
		return nil
	}
	next := d.LastDonatedAt.AddDate(0, 0, recoveryDays)
	return &next
}

// AgeYears returns the donor's age in full years at the given date, or nil
// when the date of birth is unknown.
func (d *Donor) AgeYears(at time.Time) *int {
	if d.DateOfBirth == nil {
		return nil
	}
	dob := *d.DateOfBirth
	years := at.Year() - dob.Year()
	if at.Month() < dob.Month() || (at.Month() == dob.Month() && at.Day() < dob.Day()) {
		years--
	}
	return &years
}

// MarkAvailability flips the availability flag and records when it changed.
func (d *Donor) MarkAvailability(available bool, now time.Time) {
	d.IsAvailable = available
	d.AvailabilityUpdatedAt = &now
}

// BeforeSave hashes the password when a plaintext one was assigned.
func (d *Donor) BeforeSave(tx *gorm.DB) error {
	if d.Password != "" && len(d.Password) < 60 {
		hashedPassword, err := utils.HashPassword(d.Password)
		if err != nil {
			return err
		}
		d.Password = hashedPassword
	}
	return nil
}
