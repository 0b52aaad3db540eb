package models

import "time"

const (
	PointTypeEarned   = "earned"
	PointTypeRedeemed = "redeemed"
)

// Point is an append-only ledger entry. Rows are never updated or deleted;
// balances derive from summing Amount (positive = earned, negative = redeemed).
type Point struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `json:"-" gorm:"foreignKey:UserID"`
	Type        string    `gorm:"not null;type:varchar(20)" json:"type"`
	Amount      int       `gorm:"not null" json:"amount"`
	Description string    `gorm:"not null" json:"description"`
	ReportID    *uint     `json:"report_id"`
}
