package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	NotificationNewComplaint    = "NEW_COMPLAINT"
	NotificationComplaintUpdate = "COMPLAINT_UPDATE"
)

type Notification struct {
	ID        string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID    string         `json:"userId" gorm:"type:varchar(36);not null;index"`
	Type      string         `json:"type" gorm:"type:varchar(64);not null"`
	Message   string         `json:"message" gorm:"type:text;not null"`
	Payload   datatypes.JSON `json:"payload,omitempty"`
	Read      bool           `json:"read" gorm:"column:is_read;default:false;index"`
	CreatedAt time.Time      `json:"createdAt" gorm:"index"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
