package models

import "time"

// BloodDonate is a donation offer from a donor. Approving it adds the donated
// units to stock and stamps the donor's last donation date.
type BloodDonate struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	DonorID uint `gorm:"not null;index" json:"donor_id"`

	Disease    string `gorm:"type:varchar(100)" json:"disease"`
	Age        int    `gorm:"not null" json:"age"`
	BloodGroup string `gorm:"type:varchar(10);not null" json:"blood_group"`
	Unit       uint   `gorm:"not null" json:"unit"`
	Status     string `gorm:"type:varchar(20);default:'Pending';index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Donor *Donor `gorm:"foreignKey:DonorID" json:"donor,omitempty"`
}

// IsPending reports whether the donation still awaits review.
func (d *BloodDonate) IsPending() bool {
	return d.Status == StatusPending
}
