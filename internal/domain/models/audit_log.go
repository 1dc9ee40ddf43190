package models

import "time"

// Audit action names recorded by admin review flows.
const (
	AuditActionRequestApproved  = "request_approved"
	AuditActionRequestRejected  = "request_rejected"
	AuditActionDonationApproved = "donation_approved"
	AuditActionDonationRejected = "donation_rejected"
	AuditActionStockAdjusted    = "stock_adjusted"
	AuditActionBroadcastSent    = "broadcast_sent"
)

// ActionAuditLog records an admin decision with before/after stock units so
// inventory changes can be reconstructed.
type ActionAuditLog struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	AdminID uint   `gorm:"not null;index" json:"admin_id"`
	Action  string `gorm:"type:varchar(40);not null;index" json:"action"`

	TargetType       string `gorm:"type:varchar(30)" json:"target_type"`
	TargetID         uint   `json:"target_id"`
	BloodGroup       string `gorm:"type:varchar(10)" json:"blood_group"`
	UnitsDelta       int    `json:"units_delta"`
	StockUnitsBefore *uint  `json:"stock_units_before,omitempty"`
	StockUnitsAfter  *uint  `json:"stock_units_after,omitempty"`
	Detail           string `gorm:"type:varchar(500)" json:"detail"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// ReportExportLog records each generated report file for traceability.
type ReportExportLog struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	AdminID  uint   `gorm:"not null;index" json:"admin_id"`
	Kind     string `gorm:"type:varchar(30);not null" json:"kind"`
	FileName string `gorm:"type:varchar(255);not null" json:"file_name"`
	RowCount int    `json:"row_count"`

	// Date filter the export was run with, when one was given
	FromDate *time.Time `json:"from_date,omitempty"`
	ToDate   *time.Time `json:"to_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
