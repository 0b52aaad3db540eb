package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ReportStatusPending    = "pending"
	ReportStatusInProgress = "in_progress"
	ReportStatusResolved   = "resolved"
)

type Report struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	Lat         float64 `gorm:"not null;type:decimal(10,8)" json:"lat"`
	Lng         float64 `gorm:"not null;type:decimal(11,8)" json:"lng"`
	ImageURL    string  `gorm:"not null" json:"image_url"`
	IssueType   string  `gorm:"not null;type:varchar(30)" json:"issue_type"`
	Severity    float64 `gorm:"not null;type:decimal(4,2)" json:"severity"` // 1-10
	Description string  `gorm:"type:text" json:"description"`
	Status      string  `gorm:"not null;default:'pending';type:varchar(20)" json:"status"`

	// Email of the contractor working the report; nil while pending.
	AssignedTo *string `gorm:"type:varchar(255)" json:"assigned_to"`

	AvgTimeToFix  int `gorm:"default:0" json:"avg_time_to_fix"` // estimated days
	PointsAwarded int `gorm:"default:0" json:"points_awarded"`

	UserID uint `gorm:"not null" json:"user_id"`
	User   User `json:"user,omitempty" gorm:"foreignKey:UserID"`

	Distance float64 `json:"distance,omitempty" gorm:"-"` // km from the querying contractor
}
