package models

import "time"

// Badge levels awarded by cumulative approved donations.
const (
	BadgeBronze = "Bronze"
	BadgeSilver = "Silver"
	BadgeGold   = "Gold"
)

// Donation counts required for each badge level.
const (
	BadgeBronzeThreshold = 1
	BadgeSilverThreshold = 5
	BadgeGoldThreshold   = 10
)

// VerificationBadge marks a donor milestone. One row per donor per level.
type VerificationBadge struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	DonorID uint   `gorm:"not null;uniqueIndex:idx_badge_donor_level" json:"donor_id"`
	Level   string `gorm:"type:varchar(10);not null;uniqueIndex:idx_badge_donor_level" json:"level"`

	AwardedAt time.Time `json:"awarded_at"`
}

// BadgeLevelFor returns the highest badge earned by the given approved
// donation count, or "" when none is earned yet.
func BadgeLevelFor(approvedDonations int) string {
	switch {
	case approvedDonations >= BadgeGoldThreshold:
		return BadgeGold
	case approvedDonations >= BadgeSilverThreshold:
		return BadgeSilver
	case approvedDonations >= BadgeBronzeThreshold:
		return BadgeBronze
	default:
		return ""
	}
}
