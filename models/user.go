package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"unique;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"` // Don't expose password in JSON
	Role      Role           `gorm:"not null;default:'user';type:varchar(20)" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`

	// Denormalized caches over the points ledger. Every write to Points must
	// adjust these in the same transaction; Point rows remain the source of truth.
	TotalPoints     int `gorm:"default:0" json:"total_points"`
	AvailablePoints int `gorm:"default:0" json:"available_points"`

	Reports []Report `json:"reports,omitempty" gorm:"foreignKey:UserID"`
	Points  []Point  `json:"points,omitempty" gorm:"foreignKey:UserID"`
}
