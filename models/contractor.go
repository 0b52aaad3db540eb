package models

import (
	"time"

	"gorm.io/gorm"
)

type Contractor struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	UserID *uint `gorm:"unique" json:"user_id"`
	User   *User `json:"user,omitempty" gorm:"foreignKey:UserID"`

	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"unique;not null" json:"email"`
	Phone string `gorm:"not null" json:"phone"`

	// Registered dispatch location. Nil until the contractor sets it; the job
	// feed returns nothing (with an explicit signal) while unset.
	Latitude  *float64 `gorm:"type:decimal(10,8)" json:"latitude"`
	Longitude *float64 `gorm:"type:decimal(11,8)" json:"longitude"`

	Status        string  `gorm:"not null;default:'active';type:varchar(20)" json:"status"` // active, inactive, suspended
	Rating        float64 `gorm:"default:0;type:decimal(3,2)" json:"rating"`
	TotalJobs     int     `gorm:"default:0" json:"total_jobs"`
	CompletedJobs int     `gorm:"default:0" json:"completed_jobs"`
	IsAvailable   bool    `gorm:"default:true" json:"is_available"`
}
