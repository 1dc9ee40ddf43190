package models

import (
	"time"

	"gorm.io/gorm"

	"bloodbridge-http-service/utils"
)

// Patient represents a registered patient account.
type Patient struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Username  string `gorm:"type:varchar(50);not null;unique" json:"username"`
	Password  string `gorm:"type:varchar(100);not null" json:"-"`
	FirstName string `gorm:"type:varchar(50);not null" json:"first_name"`
	LastName  string `gorm:"type:varchar(50)" json:"last_name"`

	Age        int    `json:"age"`
	BloodGroup string `gorm:"type:varchar(10);not null" json:"blood_group"`
	Disease    string `gorm:"type:varchar(100)" json:"disease"`
	Address    string `gorm:"type:varchar(255)" json:"address"`
	Mobile     string `gorm:"type:varchar(20);not null" json:"mobile"`
	Zipcode    string `gorm:"type:varchar(12)" json:"zipcode"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetName returns the patient's display name.
func (p *Patient) GetName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// BeforeSave hashes the password when a plaintext one was assigned.
func (p *Patient) BeforeSave(tx *gorm.DB) error {
	if p.Password != "" && len(p.Password) < 60 {
		hashedPassword, err := utils.HashPassword(p.Password)
		if err != nil {
			return err
		}
		p.Password = hashedPassword
	}
	return nil
}
