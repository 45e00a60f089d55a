package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category string

const (
	CategoryHostel         Category = "HOSTEL"
	CategoryPlacement      Category = "PLACEMENT"
	CategoryMentor         Category = "MENTOR"
	CategorySystemIssue    Category = "SYSTEM_ISSUE"
	CategoryInfrastructure Category = "INFRASTRUCTURE"
	CategoryAcademics      Category = "ACADEMICS"
	CategoryOther          Category = "OTHER"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusReopened   Status = "REOPENED"
	StatusClosed     Status = "CLOSED"
)

type Complaint struct {
	ID              string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	Title           string     `json:"title" gorm:"type:varchar(255);not null"`
	Description     string     `json:"description" gorm:"type:text;not null"`
	Category        Category   `json:"category" gorm:"type:varchar(32);not null;index"`
	Priority        Priority   `json:"priority" gorm:"type:varchar(16);default:'MEDIUM';not null"`
	Status          Status     `json:"status" gorm:"type:varchar(16);default:'PENDING';not null;index"`
	AdminResponse   *string    `json:"adminResponse,omitempty" gorm:"type:text"`
	StudentID       string     `json:"studentId" gorm:"type:varchar(36);not null;index"`
	AssignedAdminID *string    `json:"assignedAdminId,omitempty" gorm:"type:varchar(36);index"`
	CreatedAt       time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	ResolvedAt      *time.Time `json:"resolvedAt,omitempty"`

	Student       *UserSummary `json:"student,omitempty" gorm:"foreignKey:StudentID;references:ID"`
	AssignedAdmin *UserSummary `json:"assignedAdmin,omitempty" gorm:"foreignKey:AssignedAdminID;references:ID"`
	Attachments   []Attachment `json:"attachments" gorm:"foreignKey:ComplaintID;constraint:OnDelete:CASCADE"`
}

func (c *Complaint) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Priority == "" {
		c.Priority = PriorityMedium
	}
	if c.Status == "" {
		c.Status = StatusPending
	}
	return nil
}
