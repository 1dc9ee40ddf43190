package models

import (
	"time"

	"gorm.io/gorm"

	"bloodbridge-http-service/utils"
)

// Admin represents a blood bank administrator account.
type Admin struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(50);not null;unique" json:"username"`
	Password  string    `gorm:"type:varchar(100);not null" json:"-"`
	Email     string    `gorm:"type:varchar(100)" json:"email"`
	Phone     string    `gorm:"type:varchar(20)" json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeSave hashes the password when a plaintext one was assigned.
func (a *Admin) BeforeSave(tx *gorm.DB) error {
	if a.Password != "" && len(a.Password) < 60 {
		hashedPassword, err := utils.HashPassword(a.Password)
		if err != nil {
			return err
		}
		a.Password = hashedPassword
	}
	return nil
}
