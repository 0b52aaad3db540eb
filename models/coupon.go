package models

import "time"

const (
	CouponStatusActive = "active"
	CouponStatusUsed   = "used"
)

type Coupon struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	User       User       `json:"-" gorm:"foreignKey:UserID"`
	Brand      string     `gorm:"not null;type:varchar(50)" json:"brand"`
	CouponCode string     `gorm:"unique;not null;type:varchar(30)" json:"coupon_code"`
	Value      int        `gorm:"not null" json:"value"`
	PointsCost int        `gorm:"not null" json:"points_cost"`
	Status     string     `gorm:"not null;default:'active';type:varchar(20)" json:"status"`
	RedeemedAt time.Time  `gorm:"autoCreateTime" json:"redeemed_at"`
	UsedAt     *time.Time `json:"used_at"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
}
