package models

import "time"

// Broadcast delivery states.
const (
	DeliveryQueued = "Queued"
	DeliverySent   = "Sent"
	DeliveryFailed = "Failed"
)

// EmergencyBroadcast is an urgent admin message fanned out to matching donors
// over SMS and the MQTT alert topic.
type EmergencyBroadcast struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	AdminID uint `gorm:"not null;index" json:"admin_id"`

	BloodGroup string `gorm:"type:varchar(10);not null" json:"blood_group"`
	Message    string `gorm:"type:varchar(1200);not null" json:"message"`
	Zipcode    string `gorm:"type:varchar(12)" json:"zipcode"`

	MaxRecipients  int `gorm:"default:50" json:"max_recipients"`
	RecipientCount int `gorm:"default:0" json:"recipient_count"`

	CreatedAt time.Time `json:"created_at"`

	Deliveries []BroadcastDelivery `gorm:"foreignKey:BroadcastID" json:"deliveries,omitempty"`
}

// BroadcastDelivery tracks the per-donor fate of one broadcast.
type BroadcastDelivery struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	BroadcastID uint   `gorm:"not null;index" json:"broadcast_id"`
	DonorID     uint   `gorm:"not null;index" json:"donor_id"`
	Phone       string `gorm:"type:varchar(20);not null" json:"phone"`
	Status      string `gorm:"type:varchar(10);default:'Queued'" json:"status"`
	Error       string `gorm:"type:varchar(255)" json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
