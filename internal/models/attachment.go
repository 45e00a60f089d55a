package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Attachment struct {
	ID          string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	ComplaintID string    `json:"complaintId" gorm:"type:varchar(36);not null;index"`
	FileName    string    `json:"fileName" gorm:"type:varchar(255);not null"`
	FileKey     string    `json:"fileKey" gorm:"type:varchar(512);not null"`
	MimeType    string    `json:"mimeType" gorm:"type:varchar(100);not null"`
	FileSize    int64     `json:"fileSize" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`

	// URL is resolved from FileKey by the storage backend, never persisted
	URL string `json:"url,omitempty" gorm:"-"`
}

func (a *Attachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
