package models

import "time"

// In-app notification recipient kinds.
const (
	NotifyRecipientDonor   = "donor"
	NotifyRecipientPatient = "patient"
	NotifyRecipientAdmin   = "admin"
)

// SMS outbox states. Messages move Pending -> Sent, or Pending -> Dead after
// the retry budget is exhausted.
const (
	OutboxPending = "Pending"
	OutboxSent    = "Sent"
	OutboxDead    = "Dead"
)

// InAppNotification is a message shown to a user inside the application.
type InAppNotification struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	RecipientType string `gorm:"type:varchar(10);not null;index:idx_notify_recipient" json:"recipient_type"`
	RecipientID   uint   `gorm:"not null;index:idx_notify_recipient" json:"recipient_id"`

	Title  string `gorm:"type:varchar(120);not null" json:"title"`
	Body   string `gorm:"type:varchar(1200)" json:"body"`
	IsRead bool   `gorm:"default:false" json:"is_read"`
	Kind   string `gorm:"type:varchar(30)" json:"kind"`
	RefID  uint   `json:"ref_id,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// SMSOutbox is a durable queue row for one outgoing SMS. The dispatcher job
// drains Pending rows with exponential backoff between attempts.
type SMSOutbox struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Phone string `gorm:"type:varchar(20);not null" json:"phone"`
	Body  string `gorm:"type:varchar(1200);not null" json:"body"`

	DonorID   *uint `gorm:"index" json:"donor_id,omitempty"`
	RequestID *uint `gorm:"index" json:"request_id,omitempty"`

	// Set for broadcast messages; the dispatcher mirrors the send outcome
	// onto the linked BroadcastDelivery row.
	DeliveryID *uint `gorm:"index" json:"delivery_id,omitempty"`

	Status      string     `gorm:"type:varchar(10);default:'Pending';index" json:"status"`
	Attempts    int        `gorm:"default:0" json:"attempts"`
	NextAttempt time.Time  `gorm:"index" json:"next_attempt"`
	LastError   string     `gorm:"type:varchar(255)" json:"last_error,omitempty"`
	SentAt      *time.Time `json:"sent_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
