package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	AuditUpdateComplaintStatus = "UPDATE_COMPLAINT_STATUS"
	AuditAssignComplaint       = "ASSIGN_COMPLAINT"
	AuditDeleteComplaint       = "DELETE_COMPLAINT"

	TargetComplaint = "COMPLAINT"
)

// AuditLog is append-only; rows are never updated or deleted
type AuditLog struct {
	ID         string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID     string         `json:"userId" gorm:"type:varchar(36);not null;index"`
	Action     string         `json:"action" gorm:"type:varchar(64);not null"`
	TargetType string         `json:"targetType" gorm:"type:varchar(64);not null"`
	TargetID   string         `json:"targetId" gorm:"type:varchar(36);not null;index"`
	Details    datatypes.JSON `json:"details"`
	IPAddress  string         `json:"ipAddress,omitempty" gorm:"type:varchar(45)"`
	UserAgent  string         `json:"userAgent,omitempty" gorm:"type:varchar(500)"`
	CreatedAt  time.Time      `json:"createdAt" gorm:"index"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
