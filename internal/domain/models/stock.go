package models

import "time"

// Stock is the per-blood-group inventory counter in milliliters. One row per
// blood group, seeded at startup. Units never go negative.
type Stock struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BloodGroup string    `gorm:"type:varchar(10);not null;unique" json:"blood_group"`
	Unit       uint      `gorm:"default:0" json:"unit"`
	UpdatedAt  time.Time `json:"updated_at"`
}
